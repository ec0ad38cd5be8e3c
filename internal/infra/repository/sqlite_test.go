package repository_test

import (
	"context"
	"testing"

	"storefront/internal/config"
	"storefront/internal/domain/model"
	"storefront/internal/infra/db"
	infraRepo "storefront/internal/infra/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// テストごとに空の :memory: DB
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := db.Connect(config.DBConfig{Driver: config.DriverSQLite, URL: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

type fixture struct {
	collection model.Collection
	productA   model.Product
	productB   model.Product
}

// コレクション1つと商品2つ（A=10.00, B=5.00）
func seedCatalog(t *testing.T, gdb *gorm.DB) fixture {
	t.Helper()
	ctx := context.Background()

	col, err := infraRepo.NewCollectionGormRepository(gdb).Create(ctx, model.Collection{Title: "Beverages"})
	require.NoError(t, err)

	products := infraRepo.NewProductGormRepository(gdb)
	a, err := products.Create(ctx, model.Product{
		Title:        "Coffee",
		Slug:         "coffee",
		Description:  "dark roast",
		UnitPrice:    decimal.RequireFromString("10.00"),
		Inventory:    50,
		CollectionID: col.ID,
	})
	require.NoError(t, err)
	b, err := products.Create(ctx, model.Product{
		Title:        "Tea",
		Slug:         "tea",
		Description:  "green",
		UnitPrice:    decimal.RequireFromString("5.00"),
		Inventory:    3,
		CollectionID: col.ID,
	})
	require.NoError(t, err)

	return fixture{collection: col, productA: a, productB: b}
}
