package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	require.NoError(t, Validate())
}

func TestMigrationsCreateEveryTable(t *testing.T) {
	var all strings.Builder
	err := fs.WalkDir(files, dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		body, err := fs.ReadFile(files, path)
		if err != nil {
			return err
		}
		all.Write(body)

		return nil
	})
	require.NoError(t, err)

	for _, stmt := range []string{
		"CREATE TABLE IF NOT EXISTS categories",
		"CREATE TABLE IF NOT EXISTS sources",
		"CREATE TABLE IF NOT EXISTS products",
		"CREATE TABLE IF NOT EXISTS price_records",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_price_records_product_date ON price_records (product_id, date)",
		"CREATE TABLE IF NOT EXISTS push_subscriptions",
		"CREATE TABLE IF NOT EXISTS push_subscription_favorites",
		"CREATE INDEX IF NOT EXISTS idx_push_subscription_favorites_product_id",
		"CREATE TABLE IF NOT EXISTS ticker_items",
		"REFERENCES products (id) ON DELETE RESTRICT",
		"REFERENCES categories (id) ON DELETE RESTRICT",
		"REFERENCES sources (id) ON DELETE RESTRICT",
		"NUMERIC(14, 2) NOT NULL CHECK (price > 0)",
	} {
		assert.Contains(t, all.String(), stmt)
	}
}
