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

	"github.com/erp/zidsync/internal/domain/stocksync"
)

func newMockStockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
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

	return gormDB, mock, mockDB
}

func newSyncedTestMapping(t *testing.T) *stocksync.LocationMapping {
	m, err := stocksync.NewLocationMapping(uuid.New(), uuid.New(), uuid.New(), uuid.New(), uuid.New())
	require.NoError(t, err)
	m.RecordSuccess(decimal.NewFromInt(3), time.Now())
	return m
}

func TestGormMappingRepository_FindForCell(t *testing.T) {
	t.Run("resolves mapping for product and location", func(t *testing.T) {
		db, mock, mockDB := newMockStockDB(t)
		defer mockDB.Close()
		repo := NewGormMappingRepository(db)

		mappingID := uuid.New()
		connectorID := uuid.New()
		productID := uuid.New()
		locationID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "connector_id", "local_product_id", "local_location_id", "remote_location_id", "is_active", "last_synced_qty"}).
			AddRow(mappingID, connectorID, productID, locationID, uuid.New(), true, decimal.NewFromInt(7))

		mock.ExpectQuery(`SELECT \* FROM "stock_location_mappings" WHERE connector_id = \$1 AND local_product_id = \$2 AND local_location_id = \$3 ORDER BY .* LIMIT .*`).
			WithArgs(connectorID, productID, locationID, 1).
			WillReturnRows(rows)

		m, err := repo.FindForCell(context.Background(), connectorID, productID, locationID)

		assert.NoError(t, err)
		require.NotNil(t, m)
		assert.Equal(t, mappingID, m.ID)
		assert.True(t, m.LastSyncedQty.Equal(decimal.NewFromInt(7)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns domain error for unmapped cell", func(t *testing.T) {
		db, mock, mockDB := newMockStockDB(t)
		defer mockDB.Close()
		repo := NewGormMappingRepository(db)

		connectorID := uuid.New()
		productID := uuid.New()
		locationID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "stock_location_mappings" WHERE connector_id = \$1 AND local_product_id = \$2 AND local_location_id = \$3 ORDER BY .* LIMIT .*`).
			WithArgs(connectorID, productID, locationID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		m, err := repo.FindForCell(context.Background(), connectorID, productID, locationID)

		assert.Nil(t, m)
		assert.ErrorIs(t, err, stocksync.ErrMappingNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormMappingRepository_Create(t *testing.T) {
	t.Run("inserts mapping", func(t *testing.T) {
		db, mock, mockDB := newMockStockDB(t)
		defer mockDB.Close()
		repo := NewGormMappingRepository(db)

		mock.ExpectExec(`INSERT INTO "stock_location_mappings"`).
			WillReturnResult(sqlmock.NewResult(1, 1))

		err := repo.Create(context.Background(), newSyncedTestMapping(t))

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps unique violation to duplicate mapping error", func(t *testing.T) {
		db, mock, mockDB := newMockStockDB(t)
		defer mockDB.Close()
		repo := NewGormMappingRepository(db)

		mock.ExpectExec(`INSERT INTO "stock_location_mappings"`).
			WillReturnError(gorm.ErrDuplicatedKey)

		err := repo.Create(context.Background(), newSyncedTestMapping(t))

		assert.ErrorIs(t, err, stocksync.ErrDuplicateMapping)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormMappingRepository_Update(t *testing.T) {
	t.Run("persists sync baseline", func(t *testing.T) {
		db, mock, mockDB := newMockStockDB(t)
		defer mockDB.Close()
		repo := NewGormMappingRepository(db)

		mock.ExpectExec(`UPDATE "stock_location_mappings" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Update(context.Background(), newSyncedTestMapping(t))

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns domain error when mapping is missing", func(t *testing.T) {
		db, mock, mockDB := newMockStockDB(t)
		defer mockDB.Close()
		repo := NewGormMappingRepository(db)

		mock.ExpectExec(`UPDATE "stock_location_mappings" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(context.Background(), newSyncedTestMapping(t))

		assert.ErrorIs(t, err, stocksync.ErrMappingNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormMappingRepository_List(t *testing.T) {
	t.Run("filters active mappings of a connector", func(t *testing.T) {
		db, mock, mockDB := newMockStockDB(t)
		defer mockDB.Close()
		repo := NewGormMappingRepository(db)

		connectorID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "connector_id", "is_active", "last_synced_qty"}).
			AddRow(uuid.New(), connectorID, true, decimal.Zero)

		mock.ExpectQuery(`SELECT \* FROM "stock_location_mappings" WHERE connector_id = \$1 AND is_active = \$2 ORDER BY created_at DESC`).
			WithArgs(connectorID, true).
			WillReturnRows(rows)

		mappings, err := repo.List(context.Background(), stocksync.MappingFilter{
			ConnectorID: &connectorID,
			ActiveOnly:  true,
		})

		assert.NoError(t, err)
		require.Len(t, mappings, 1)
		assert.True(t, mappings[0].IsActive)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormSyncLogRepository_Append(t *testing.T) {
	t.Run("inserts audit record", func(t *testing.T) {
		db, mock, mockDB := newMockStockDB(t)
		defer mockDB.Close()
		repo := NewGormSyncLogRepository(db)

		log := stocksync.NewSuccessLog(uuid.New(), uuid.New(), decimal.NewFromInt(3), decimal.NewFromInt(5), time.Now())

		mock.ExpectExec(`INSERT INTO "stock_sync_logs"`).
			WillReturnResult(sqlmock.NewResult(1, 1))

		err := repo.Append(context.Background(), log)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormSyncLogRepository_List(t *testing.T) {
	t.Run("filters by status newest first", func(t *testing.T) {
		db, mock, mockDB := newMockStockDB(t)
		defer mockDB.Close()
		repo := NewGormSyncLogRepository(db)

		connectorID := uuid.New()
		status := stocksync.SyncFailed

		rows := sqlmock.NewRows([]string{"id", "connector_id", "status", "error_message", "synced_at"}).
			AddRow(uuid.New(), connectorID, "failed", "remote rejected quantity", time.Now())

		mock.ExpectQuery(`SELECT \* FROM "stock_sync_logs" WHERE connector_id = \$1 AND status = \$2 ORDER BY synced_at DESC`).
			WithArgs(connectorID, status).
			WillReturnRows(rows)

		logs, err := repo.List(context.Background(), stocksync.LogFilter{
			ConnectorID: &connectorID,
			Status:      &status,
		})

		assert.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, stocksync.SyncFailed, logs[0].Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormSyncLogRepository_DeleteBefore(t *testing.T) {
	t.Run("prunes old entries", func(t *testing.T) {
		db, mock, mockDB := newMockStockDB(t)
		defer mockDB.Close()
		repo := NewGormSyncLogRepository(db)

		cutoff := time.Now().Add(-30 * 24 * time.Hour)

		mock.ExpectExec(`DELETE FROM "stock_sync_logs" WHERE synced_at < \$1`).
			WithArgs(cutoff).
			WillReturnResult(sqlmock.NewResult(0, 9))

		deleted, err := repo.DeleteBefore(context.Background(), cutoff)

		assert.NoError(t, err)
		assert.Equal(t, int64(9), deleted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
