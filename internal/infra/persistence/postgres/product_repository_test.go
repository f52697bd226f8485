package postgres

import (
	"context"
	"encoding/json"
	"testing"

	"qimat/internal/domain/entity"
	"qimat/internal/domain/repository"
	"qimat/internal/infra/persistence/sqlitetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductRepository_CRUD(t *testing.T) {
	db := sqlitetest.New(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	product := &entity.Product{
		Slug:             "cement",
		Name:             "Sement",
		NameRu:           "Цемент",
		Unit:             "bag",
		CurrencyLabel:    "so'm",
		IsActive:         true,
		CalculatorConfig: json.RawMessage(`{"bagKg":50}`),
		PriceUnits:       []string{"bag", "ton"},
	}
	require.NoError(t, repo.CreateProduct(ctx, product))
	require.NotZero(t, product.ID)

	err := repo.CreateProduct(ctx, &entity.Product{Slug: "cement", Name: "dup"})
	assert.ErrorIs(t, err, repository.ErrDuplicateProductSlug)

	stored, err := repo.FindProductBySlug(ctx, "cement")
	require.NoError(t, err)
	assert.Equal(t, []string{"bag", "ton"}, stored.PriceUnits)
	assert.JSONEq(t, `{"bagKg":50}`, string(stored.CalculatorConfig))

	stored.Name = "Sement M400"
	stored.IsFeatured = true
	require.NoError(t, repo.UpdateProduct(ctx, stored))

	reloaded, err := repo.FindProductByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sement M400", reloaded.Name)
	assert.True(t, reloaded.IsFeatured)

	require.NoError(t, repo.SetProductActive(ctx, product.ID, false))
	total, active, err := repo.CountProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, int64(0), active)

	require.NoError(t, repo.DeleteProduct(ctx, product.ID))
	_, err = repo.FindProductByID(ctx, product.ID)
	assert.ErrorIs(t, err, repository.ErrProductNotFound)
	assert.ErrorIs(t, repo.DeleteProduct(ctx, product.ID), repository.ErrProductNotFound)
	assert.ErrorIs(t, repo.SetProductActive(ctx, product.ID, true), repository.ErrProductNotFound)
}

func TestProductRepository_FindProductsFilter(t *testing.T) {
	db := sqlitetest.New(t)
	repo := NewProductRepository(db)
	categories := NewCategoryRepository(db)
	ctx := context.Background()

	food := &entity.Category{Slug: "food", Name: "Oziq-ovqat"}
	require.NoError(t, categories.CreateCategory(ctx, food))

	fixtures := []*entity.Product{
		{Slug: "sugar", Name: "Shakar", NameEn: "Sugar", CategoryID: &food.ID, IsActive: true, IsFeatured: true, SortOrder: 1},
		{Slug: "salt", Name: "Tuz", NameEn: "Salt", CategoryID: &food.ID, IsActive: true, SortOrder: 2},
		{Slug: "usd", Name: "Dollar", IsActive: true},
		{Slug: "old-phone", Name: "Telefon", IsActive: false},
	}
	for _, p := range fixtures {
		require.NoError(t, repo.CreateProduct(ctx, p))
	}

	products, total, err := repo.FindProducts(ctx, entity.ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, products, 3)

	products, total, err = repo.FindProducts(ctx, entity.ProductFilter{CategorySlug: "food", Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, products, 1)
	assert.Equal(t, "sugar", products[0].Slug)

	products, _, err = repo.FindProducts(ctx, entity.ProductFilter{Query: "SALT"})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "salt", products[0].Slug)

	products, _, err = repo.FindProducts(ctx, entity.ProductFilter{FeaturedOnly: true})
	require.NoError(t, err)
	require.Len(t, products, 1)

	_, total, err = repo.FindProducts(ctx, entity.ProductFilter{IncludeInactive: true})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)

	count, err := repo.CountProductsByCategory(ctx, food.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestTickerRepository_Replace(t *testing.T) {
	db := sqlitetest.New(t)
	repo := NewTickerRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.ReplaceTickerItems(ctx, []*entity.TickerItem{
		{Position: 1, ProductID: 5}, {Position: 2, ProductID: 2},
	}))
	require.NoError(t, repo.ReplaceTickerItems(ctx, []*entity.TickerItem{
		{Position: 1, ProductID: 2}, {Position: 2, ProductID: 9}, {Position: 3, ProductID: 5},
	}))

	items, err := repo.FindTickerItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, int64(2), items[0].ProductID)
	assert.Equal(t, int64(9), items[1].ProductID)
	assert.Equal(t, int64(5), items[2].ProductID)
}
