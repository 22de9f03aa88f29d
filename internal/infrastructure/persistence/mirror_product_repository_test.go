package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/erp/zidsync/internal/domain/mirror"
	"github.com/erp/zidsync/internal/domain/shared"
)

// newMockProductRepository creates a GormProductRepository with a mocked SQL connection
func newMockProductRepository(t *testing.T) (*GormProductRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	return NewGormProductRepository(gormDB), mock, mockDB
}

func TestGormProductRepository_GetByRemoteID(t *testing.T) {
	t.Run("finds mirror by connector and remote id", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		productID := uuid.New()
		connectorID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "connector_id", "remote_id", "name_primary", "sku", "price", "quantity", "active", "category_ids"}).
			AddRow(productID, connectorID, "prod-1", "Blue Shirt", "SKU-1", decimal.NewFromInt(50), decimal.NewFromInt(3), true, `["cat-1"]`)

		mock.ExpectQuery(`SELECT \* FROM "mirror_products" WHERE connector_id = \$1 AND remote_id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(connectorID, "prod-1", 1).
			WillReturnRows(rows)

		p, err := repo.GetByRemoteID(context.Background(), connectorID, "prod-1")

		assert.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, "prod-1", p.RemoteID)
		assert.Equal(t, "Blue Shirt", p.Name.Primary)
		assert.Equal(t, []string{"cat-1"}, p.CategoryIDs)
		assert.True(t, p.Price.Equal(decimal.NewFromInt(50)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns domain error for missing mirror", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		connectorID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "mirror_products" WHERE connector_id = \$1 AND remote_id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(connectorID, "missing", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		p, err := repo.GetByRemoteID(context.Background(), connectorID, "missing")

		assert.Nil(t, p)
		assert.ErrorIs(t, err, mirror.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormProductRepository_FindBySKU(t *testing.T) {
	t.Run("matches only active mirrors", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		productID := uuid.New()
		connectorID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "connector_id", "remote_id", "sku", "active"}).
			AddRow(productID, connectorID, "prod-1", "SKU-1", true)

		mock.ExpectQuery(`SELECT \* FROM "mirror_products" WHERE connector_id = \$1 AND active = \$2 AND sku = \$3 ORDER BY .* LIMIT .*`).
			WithArgs(connectorID, true, "SKU-1", 1).
			WillReturnRows(rows)

		p, err := repo.FindBySKU(context.Background(), connectorID, "SKU-1")

		assert.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, "SKU-1", p.SKU)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty sku resolves to not found without querying", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		p, err := repo.FindBySKU(context.Background(), uuid.New(), "")

		assert.Nil(t, p)
		assert.ErrorIs(t, err, mirror.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormProductRepository_FindByName(t *testing.T) {
	t.Run("matches either name variant", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		productID := uuid.New()
		connectorID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "connector_id", "remote_id", "name_primary", "name_secondary", "active"}).
			AddRow(productID, connectorID, "prod-1", "Blue Shirt", "قميص أزرق", true)

		mock.ExpectQuery(`SELECT \* FROM "mirror_products" WHERE connector_id = \$1 AND active = \$2 AND \(name_primary = \$3 OR name_secondary = \$4\) ORDER BY .* LIMIT .*`).
			WithArgs(connectorID, true, "Blue Shirt", "Blue Shirt", 1).
			WillReturnRows(rows)

		p, err := repo.FindByName(context.Background(), connectorID, "Blue Shirt")

		assert.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, "Blue Shirt", p.Name.Primary)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormProductRepository_List(t *testing.T) {
	t.Run("scopes to connector with pagination", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		connectorID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "connector_id", "remote_id", "sku", "active"}).
			AddRow(uuid.New(), connectorID, "prod-1", "SKU-1", true).
			AddRow(uuid.New(), connectorID, "prod-2", "SKU-2", true)

		mock.ExpectQuery(`SELECT \* FROM "mirror_products" WHERE connector_id = \$1 ORDER BY created_at DESC LIMIT \$2`).
			WithArgs(connectorID, 20).
			WillReturnRows(rows)

		products, err := repo.List(context.Background(), mirror.Filter{ConnectorID: connectorID, Limit: 20})

		assert.NoError(t, err)
		assert.Len(t, products, 2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("active filter narrows the query", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		connectorID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "mirror_products" WHERE connector_id = \$1 AND active = \$2 ORDER BY created_at DESC`).
			WithArgs(connectorID, true).
			WillReturnRows(sqlmock.NewRows([]string{"id", "connector_id", "remote_id"}))

		products, err := repo.List(context.Background(), mirror.Filter{ConnectorID: connectorID, ActiveOnly: true})

		assert.NoError(t, err)
		assert.Empty(t, products)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormProductRepository_Count(t *testing.T) {
	t.Run("counts mirrors for connector", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		connectorID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "mirror_products" WHERE connector_id = \$1`).
			WithArgs(connectorID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

		count, err := repo.Count(context.Background(), mirror.Filter{ConnectorID: connectorID})

		assert.NoError(t, err)
		assert.Equal(t, int64(12), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormProductRepository_Save(t *testing.T) {
	t.Run("updates an existing mirror row", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		p := newTestMirrorProduct(uuid.New())

		mock.ExpectExec(`UPDATE "mirror_products" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Save(context.Background(), p)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps unique violation to duplicate error", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		p := newTestMirrorProduct(uuid.New())

		mock.ExpectExec(`UPDATE "mirror_products" SET`).
			WillReturnError(gorm.ErrDuplicatedKey)

		err := repo.Save(context.Background(), p)

		assert.ErrorIs(t, err, mirror.ErrDuplicate)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormProductRepository_DeleteByConnector(t *testing.T) {
	t.Run("removes all mirrors of a connector", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		connectorID := uuid.New()

		mock.ExpectExec(`DELETE FROM "mirror_products" WHERE connector_id = \$1`).
			WithArgs(connectorID).
			WillReturnResult(sqlmock.NewResult(0, 5))

		err := repo.DeleteByConnector(context.Background(), connectorID)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// newTestMirrorProduct builds a product mirror with every defaulted
// column populated so inserts and updates carry explicit values.
func newTestMirrorProduct(connectorID uuid.UUID) *mirror.Product {
	return &mirror.Product{
		BaseEntity:   shared.NewBaseEntity(),
		ConnectorID:  connectorID,
		RemoteID:     "prod-1",
		Name:         mirror.LocalizedText{Primary: "Blue Shirt"},
		SKU:          "SKU-1",
		Price:        decimal.NewFromInt(50),
		SalePrice:    decimal.NewFromInt(45),
		Currency:     "SAR",
		Quantity:     decimal.NewFromInt(3),
		IsPublished:  true,
		CategoryIDs:  []string{"cat-1"},
		Active:       true,
		LastImportAt: time.Now(),
	}
}
