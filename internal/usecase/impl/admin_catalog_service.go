package impl

import (
	"context"
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"qimat/config"
	deliverycontext "qimat/internal/delivery/context"
	"qimat/internal/domain/entity"
	domainerrors "qimat/internal/domain/errors"
	"qimat/internal/domain/repository"
	"qimat/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

var slugRe = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// adminCatalogService implements the AdminCatalogUsecase interface.
type adminCatalogService struct {
	txManager        repository.TransactionManager
	productRepo      repository.ProductRepository
	categoryRepo     repository.CategoryRepository
	sourceRepo       repository.SourceRepository
	priceRepo        repository.PriceRepository
	tickerRepo       repository.TickerRepository
	subscriptionRepo repository.PushSubscriptionRepository
	location         *time.Location
	now              func() time.Time
	logger           *slog.Logger
}

// AdminCatalogServiceParams holds dependencies for AdminCatalogService, injected by Fx.
type AdminCatalogServiceParams struct {
	fx.In

	TxManager        repository.TransactionManager
	ProductRepo      repository.ProductRepository
	CategoryRepo     repository.CategoryRepository
	SourceRepo       repository.SourceRepository
	PriceRepo        repository.PriceRepository
	TickerRepo       repository.TickerRepository
	SubscriptionRepo repository.PushSubscriptionRepository
	Config           *config.Config
	Logger           *slog.Logger
}

// NewAdminCatalogService is the constructor for adminCatalogService.
func NewAdminCatalogService(params AdminCatalogServiceParams) usecase.AdminCatalogUsecase {
	location, _ := priceLocation(params.Config)

	return &adminCatalogService{
		txManager:        params.TxManager,
		productRepo:      params.ProductRepo,
		categoryRepo:     params.CategoryRepo,
		sourceRepo:       params.SourceRepo,
		priceRepo:        params.PriceRepo,
		tickerRepo:       params.TickerRepo,
		subscriptionRepo: params.SubscriptionRepo,
		location:         location,
		now:              time.Now,
		logger:           params.Logger,
	}
}

func (srv *adminCatalogService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.LoggerOr(ctx, srv.logger)
}

func (srv *adminCatalogService) today() time.Time {
	return entity.NormalizeDate(srv.now().In(srv.location))
}

// --- Categories ---

func (srv *adminCatalogService) CreateCategory(ctx context.Context, input *usecase.CategoryInput) (*entity.Category, error) {
	category := &entity.Category{}
	if err := applyCategoryInput(category, input); err != nil {
		return nil, err
	}

	if err := srv.categoryRepo.CreateCategory(ctx, category); err != nil {
		return nil, mapRepoError(err, "failed to create category")
	}

	srv.log(ctx).Info("Category created", slog.Int64("categoryId", category.ID), slog.String("slug", category.Slug))

	return category, nil
}

func (srv *adminCatalogService) UpdateCategory(ctx context.Context, id int64, input *usecase.CategoryInput) (*entity.Category, error) {
	category, err := srv.categoryRepo.FindCategoryByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "failed to find category")
	}

	if err := applyCategoryInput(category, input); err != nil {
		return nil, err
	}

	if err := srv.categoryRepo.UpdateCategory(ctx, category); err != nil {
		return nil, mapRepoError(err, "failed to update category")
	}

	return category, nil
}

func (srv *adminCatalogService) DeleteCategory(ctx context.Context, id int64) error {
	if _, err := srv.categoryRepo.FindCategoryByID(ctx, id); err != nil {
		return mapRepoError(err, "failed to find category")
	}

	count, err := srv.productRepo.CountProductsByCategory(ctx, id)
	if err != nil {
		return errors.Wrap(err, "failed to count category products")
	}
	if count > 0 {
		return domainerrors.ErrCategoryInUse
	}

	if err := srv.categoryRepo.DeleteCategory(ctx, id); err != nil {
		return mapRepoError(err, "failed to delete category")
	}

	srv.log(ctx).Info("Category deleted", slog.Int64("categoryId", id))

	return nil
}

func applyCategoryInput(category *entity.Category, input *usecase.CategoryInput) error {
	if input == nil {
		return domainerrors.ErrValidationFailed.WithDetails("category is required")
	}

	slug := normalizeSlug(input.Slug)
	name := strings.TrimSpace(input.Name)
	if !slugRe.MatchString(slug) {
		return domainerrors.ErrValidationFailed.WithDetails("slug must contain lowercase letters, digits and dashes")
	}
	if name == "" {
		return domainerrors.ErrValidationFailed.WithDetails("name is required")
	}

	category.Slug = slug
	category.Name = name
	category.NameRu = strings.TrimSpace(input.NameRu)
	category.NameEn = strings.TrimSpace(input.NameEn)
	category.Icon = strings.TrimSpace(input.Icon)
	category.SortOrder = input.SortOrder

	return nil
}

// --- Sources ---

func (srv *adminCatalogService) CreateSource(ctx context.Context, input *usecase.SourceInput) (*entity.Source, error) {
	source := &entity.Source{}
	if err := applySourceInput(source, input); err != nil {
		return nil, err
	}

	if err := srv.sourceRepo.CreateSource(ctx, source); err != nil {
		return nil, mapRepoError(err, "failed to create source")
	}

	return source, nil
}

func (srv *adminCatalogService) UpdateSource(ctx context.Context, id int64, input *usecase.SourceInput) (*entity.Source, error) {
	source, err := srv.sourceRepo.FindSourceByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "failed to find source")
	}

	if err := applySourceInput(source, input); err != nil {
		return nil, err
	}

	if err := srv.sourceRepo.UpdateSource(ctx, source); err != nil {
		return nil, mapRepoError(err, "failed to update source")
	}

	return source, nil
}

func (srv *adminCatalogService) DeleteSource(ctx context.Context, id int64) error {
	if _, err := srv.sourceRepo.FindSourceByID(ctx, id); err != nil {
		return mapRepoError(err, "failed to find source")
	}

	count, err := srv.productRepo.CountProductsBySource(ctx, id)
	if err != nil {
		return errors.Wrap(err, "failed to count source products")
	}
	if count > 0 {
		return domainerrors.ErrSourceInUse
	}

	if err := srv.sourceRepo.DeleteSource(ctx, id); err != nil {
		return mapRepoError(err, "failed to delete source")
	}

	return nil
}

func applySourceInput(source *entity.Source, input *usecase.SourceInput) error {
	if input == nil || strings.TrimSpace(input.Name) == "" {
		return domainerrors.ErrValidationFailed.WithDetails("name is required")
	}

	source.Name = strings.TrimSpace(input.Name)
	source.URL = strings.TrimSpace(input.URL)

	return nil
}

// --- Products ---

// ListProducts lists products for the dashboard, inactive ones included.
func (srv *adminCatalogService) ListProducts(ctx context.Context, query *usecase.AdminProductQuery) (*usecase.ProductPage, error) {
	if query == nil {
		query = &usecase.AdminProductQuery{}
	}

	page, limit, offset := pageBounds(query.Page, query.Limit)

	return listProductPage(ctx, srv.productRepo, srv.priceRepo, entity.ProductFilter{
		CategorySlug:    normalizeSlug(query.CategorySlug),
		Query:           query.Query,
		IncludeInactive: true,
		Limit:           limit,
		Offset:          offset,
	}, page)
}

// CreateProduct stores a product and, when given, its first price for today in one transaction.
func (srv *adminCatalogService) CreateProduct(ctx context.Context, input *usecase.ProductInput) (*entity.ProductWithPrice, error) {
	product := &entity.Product{}
	if err := applyProductInput(product, input); err != nil {
		return nil, err
	}
	if err := srv.checkReferences(ctx, product); err != nil {
		return nil, err
	}

	if input.InitialPrice != nil && !input.InitialPrice.IsPositive() {
		return nil, domainerrors.ErrValidationFailed.WithDetails("initialPrice must be positive")
	}

	var records []*entity.PriceRecord
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.NewProductRepository().CreateProduct(ctx, product); err != nil {
			return err
		}

		if input.InitialPrice == nil {
			return nil
		}

		record := &entity.PriceRecord{
			ProductID: product.ID,
			Date:      srv.today(),
			Price:     input.InitialPrice.Round(2),
		}
		if err := repoFactory.NewPriceRepository().UpsertPrice(ctx, record); err != nil {
			return err
		}
		records = append(records, record)

		return nil
	})
	if err != nil {
		return nil, mapRepoError(err, "failed to create product")
	}

	srv.log(ctx).Info("Product created", slog.Int64("productId", product.ID), slog.String("slug", product.Slug))

	return withPrices(product, records), nil
}

func (srv *adminCatalogService) UpdateProduct(ctx context.Context, id int64, input *usecase.ProductInput) (*entity.Product, error) {
	product, err := srv.productRepo.FindProductByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "failed to find product")
	}

	if err := applyProductInput(product, input); err != nil {
		return nil, err
	}
	if err := srv.checkReferences(ctx, product); err != nil {
		return nil, err
	}

	if err := srv.productRepo.UpdateProduct(ctx, product); err != nil {
		return nil, mapRepoError(err, "failed to update product")
	}

	return product, nil
}

func (srv *adminCatalogService) DeactivateProduct(ctx context.Context, id int64) error {
	if err := srv.productRepo.SetProductActive(ctx, id, false); err != nil {
		return mapRepoError(err, "failed to deactivate product")
	}

	srv.log(ctx).Info("Product deactivated", slog.Int64("productId", id))

	return nil
}

// DeleteProduct hard-deletes a product without price history.
func (srv *adminCatalogService) DeleteProduct(ctx context.Context, id int64) error {
	if _, err := srv.productRepo.FindProductByID(ctx, id); err != nil {
		return mapRepoError(err, "failed to find product")
	}

	count, err := srv.priceRepo.CountByProduct(ctx, id)
	if err != nil {
		return errors.Wrap(err, "failed to count product prices")
	}
	if count > 0 {
		return domainerrors.ErrProductInUse
	}

	if err := srv.productRepo.DeleteProduct(ctx, id); err != nil {
		return mapRepoError(err, "failed to delete product")
	}

	srv.log(ctx).Info("Product deleted", slog.Int64("productId", id))

	return nil
}

// checkReferences verifies the category and source of a product exist.
func (srv *adminCatalogService) checkReferences(ctx context.Context, product *entity.Product) error {
	if product.CategoryID != nil {
		if _, err := srv.categoryRepo.FindCategoryByID(ctx, *product.CategoryID); err != nil {
			return mapRepoError(err, "failed to find category")
		}
	}
	if product.SourceID != nil {
		if _, err := srv.sourceRepo.FindSourceByID(ctx, *product.SourceID); err != nil {
			return mapRepoError(err, "failed to find source")
		}
	}

	return nil
}

func applyProductInput(product *entity.Product, input *usecase.ProductInput) error {
	if input == nil {
		return domainerrors.ErrValidationFailed.WithDetails("product is required")
	}

	slug := normalizeSlug(input.Slug)
	name := strings.TrimSpace(input.Name)
	switch {
	case !slugRe.MatchString(slug):
		return domainerrors.ErrValidationFailed.WithDetails("slug must contain lowercase letters, digits and dashes")
	case name == "":
		return domainerrors.ErrValidationFailed.WithDetails("name is required")
	case len(input.CalculatorConfig) > 0 && !isJSONObject(input.CalculatorConfig):
		return domainerrors.ErrValidationFailed.WithDetails("calculatorConfig must be a JSON object")
	}

	units := make([]string, 0, len(input.PriceUnits))
	for _, unit := range input.PriceUnits {
		if unit = strings.TrimSpace(unit); unit != "" {
			units = append(units, unit)
		}
	}

	product.Slug = slug
	product.Name = name
	product.NameRu = strings.TrimSpace(input.NameRu)
	product.NameEn = strings.TrimSpace(input.NameEn)
	product.Unit = strings.TrimSpace(input.Unit)
	product.CurrencyLabel = strings.TrimSpace(input.CurrencyLabel)
	product.CategoryID = input.CategoryID
	product.SourceID = input.SourceID
	product.IsActive = input.IsActive
	product.IsFeatured = input.IsFeatured
	product.CalculatorConfig = input.CalculatorConfig
	product.PriceUnits = units
	product.SortOrder = input.SortOrder

	return nil
}

func isJSONObject(raw json.RawMessage) bool {
	var obj map[string]any

	return json.Unmarshal(raw, &obj) == nil && obj != nil
}

// --- Ticker ---

func (srv *adminCatalogService) GetTicker(ctx context.Context) ([]*entity.TickerItem, error) {
	items, err := srv.tickerRepo.FindTickerItems(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load ticker")
	}

	return items, nil
}

// ReplaceTicker validates the product ids and swaps the ticker atomically.
func (srv *adminCatalogService) ReplaceTicker(ctx context.Context, productIDs []int64) ([]*entity.TickerItem, error) {
	seen := make(map[int64]struct{}, len(productIDs))
	items := make([]*entity.TickerItem, 0, len(productIDs))
	for i, id := range productIDs {
		if id <= 0 {
			return nil, domainerrors.ErrValidationFailed.WithDetails("productIds must be positive")
		}
		if _, dup := seen[id]; dup {
			return nil, domainerrors.ErrValidationFailed.WithDetails("productIds must be unique")
		}
		seen[id] = struct{}{}
		items = append(items, &entity.TickerItem{Position: i + 1, ProductID: id})
	}

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		products, err := repoFactory.NewProductRepository().FindProductsByIDs(ctx, productIDs)
		if err != nil {
			return err
		}
		if len(products) != len(productIDs) {
			return domainerrors.ErrProductNotFound.WithDetails("ticker references an unknown product")
		}

		return repoFactory.NewTickerRepository().ReplaceTickerItems(ctx, items)
	})
	if err != nil {
		return nil, mapRepoError(err, "failed to replace ticker")
	}

	return items, nil
}

// --- Stats ---

func (srv *adminCatalogService) Stats(ctx context.Context) (*entity.CatalogStats, error) {
	stats := &entity.CatalogStats{}

	var err error
	if stats.Products, stats.ActiveProducts, err = srv.productRepo.CountProducts(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to count products")
	}
	if stats.Categories, err = srv.categoryRepo.CountCategories(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to count categories")
	}
	if stats.Sources, err = srv.sourceRepo.CountSources(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to count sources")
	}
	if stats.ActiveSubscriptions, err = srv.subscriptionRepo.CountActive(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to count subscriptions")
	}
	if stats.PricesToday, err = srv.priceRepo.CountByDate(ctx, srv.today()); err != nil {
		return nil, errors.Wrap(err, "failed to count today's prices")
	}

	return stats, nil
}
