package impl

import (
	"context"
	"time"

	"qimat/config"
	"qimat/internal/domain/entity"
	domainerrors "qimat/internal/domain/errors"
	"qimat/internal/domain/repository"
	"qimat/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// catalogService implements the CatalogUsecase interface.
type catalogService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	sourceRepo   repository.SourceRepository
	priceRepo    repository.PriceRepository
	tickerRepo   repository.TickerRepository
	location     *time.Location
	historyDays  int
	now          func() time.Time
}

// CatalogServiceParams holds dependencies for CatalogService, injected by Fx.
type CatalogServiceParams struct {
	fx.In

	ProductRepo  repository.ProductRepository
	CategoryRepo repository.CategoryRepository
	SourceRepo   repository.SourceRepository
	PriceRepo    repository.PriceRepository
	TickerRepo   repository.TickerRepository
	Config       *config.Config
}

// NewCatalogService is the constructor for catalogService.
func NewCatalogService(params CatalogServiceParams) usecase.CatalogUsecase {
	historyDays := 30
	if params.Config != nil && params.Config.Prices != nil && params.Config.Prices.HistoryDays > 0 {
		historyDays = params.Config.Prices.HistoryDays
	}

	location, _ := priceLocation(params.Config)

	return &catalogService{
		productRepo:  params.ProductRepo,
		categoryRepo: params.CategoryRepo,
		sourceRepo:   params.SourceRepo,
		priceRepo:    params.PriceRepo,
		tickerRepo:   params.TickerRepo,
		location:     location,
		historyDays:  historyDays,
		now:          time.Now,
	}
}

func (srv *catalogService) ListCategories(ctx context.Context) ([]*entity.Category, error) {
	categories, err := srv.categoryRepo.FindCategories(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list categories")
	}

	return categories, nil
}

func (srv *catalogService) ListSources(ctx context.Context) ([]*entity.Source, error) {
	sources, err := srv.sourceRepo.FindSources(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list sources")
	}

	return sources, nil
}

// ListProducts returns one page of active products with their latest prices.
func (srv *catalogService) ListProducts(ctx context.Context, query *usecase.ProductQuery) (*usecase.ProductPage, error) {
	if query == nil {
		query = &usecase.ProductQuery{}
	}

	page, limit, offset := pageBounds(query.Page, query.Limit)

	return listProductPage(ctx, srv.productRepo, srv.priceRepo, entity.ProductFilter{
		CategorySlug: normalizeSlug(query.CategorySlug),
		Query:        query.Query,
		FeaturedOnly: query.FeaturedOnly,
		Limit:        limit,
		Offset:       offset,
	}, page)
}

// GetProduct returns an active product by slug together with its price history.
func (srv *catalogService) GetProduct(ctx context.Context, slug string, days int) (*usecase.ProductDetail, error) {
	slug = normalizeSlug(slug)
	if slug == "" {
		return nil, domainerrors.ErrValidationFailed.WithDetails("slug is required")
	}

	product, err := srv.productRepo.FindProductBySlug(ctx, slug)
	if err != nil {
		return nil, mapRepoError(err, "failed to find product")
	}
	if !product.IsActive {
		return nil, domainerrors.ErrProductNotFound
	}

	today := entity.NormalizeDate(srv.now().In(srv.location))
	history, err := srv.priceRepo.FindHistory(ctx, product.ID, historySince(today, days, srv.historyDays))
	if err != nil {
		return nil, errors.Wrap(err, "failed to load price history")
	}

	latest, err := srv.priceRepo.FindLatestByProducts(ctx, []int64{product.ID}, 2)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load latest prices")
	}

	return &usecase.ProductDetail{
		Product: withPrices(product, latest[product.ID]),
		History: history,
	}, nil
}

// GetTicker returns the active ticker products in position order.
func (srv *catalogService) GetTicker(ctx context.Context) ([]*entity.ProductWithPrice, error) {
	items, err := srv.tickerRepo.FindTickerItems(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load ticker")
	}
	if len(items) == 0 {
		return []*entity.ProductWithPrice{}, nil
	}

	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	products, err := srv.productRepo.FindProductsByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load ticker products")
	}

	byID := make(map[int64]*entity.Product, len(products))
	for _, p := range products {
		if p.IsActive {
			byID[p.ID] = p
		}
	}

	ordered := make([]*entity.Product, 0, len(items))
	for _, item := range items {
		if p, ok := byID[item.ProductID]; ok {
			ordered = append(ordered, p)
		}
	}

	return attachPrices(ctx, srv.priceRepo, ordered)
}

// listProductPage runs a product query and enriches the page with prices.
func listProductPage(
	ctx context.Context,
	productRepo repository.ProductRepository,
	priceRepo repository.PriceRepository,
	filter entity.ProductFilter,
	page int,
) (*usecase.ProductPage, error) {
	products, total, err := productRepo.FindProducts(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list products")
	}

	items, err := attachPrices(ctx, priceRepo, products)
	if err != nil {
		return nil, err
	}

	return &usecase.ProductPage{
		Items: items,
		Total: total,
		Page:  page,
		Limit: filter.Limit,
	}, nil
}
