package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/erp/zidsync/internal/domain/queue"
)

// newMockQueueRepository creates a GormQueueRepository with a mocked SQL connection
func newMockQueueRepository(t *testing.T) (*GormQueueRepository, sqlmock.Sqlmock, *sql.DB) {
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

	return NewGormQueueRepository(gormDB), mock, mockDB
}

func TestGormQueueRepository_GetByID(t *testing.T) {
	t.Run("loads queue with lines in creation order", func(t *testing.T) {
		repo, mock, mockDB := newMockQueueRepository(t)
		defer mockDB.Close()

		queueID := uuid.New()
		connectorID := uuid.New()
		lineID := uuid.New()

		queueRows := sqlmock.NewRows([]string{"id", "connector_id", "name", "model_type"}).
			AddRow(queueID, connectorID, "ORD/00001", "order")

		mock.ExpectQuery(`SELECT \* FROM "import_queues" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(queueID, 1).
			WillReturnRows(queueRows)

		lineRows := sqlmock.NewRows([]string{"id", "queue_id", "remote_id", "state", "created_at"}).
			AddRow(lineID, queueID, "1001", "draft", time.Now())

		mock.ExpectQuery(`SELECT \* FROM "import_queue_lines" WHERE queue_id = \$1 ORDER BY created_at ASC`).
			WithArgs(queueID).
			WillReturnRows(lineRows)

		q, err := repo.GetByID(context.Background(), queueID)

		assert.NoError(t, err)
		require.NotNil(t, q)
		assert.Equal(t, queueID, q.ID)
		assert.Equal(t, queue.ModelOrder, q.ModelType)
		require.Len(t, q.Lines, 1)
		assert.Equal(t, "1001", q.Lines[0].RemoteID)
		assert.Equal(t, queue.LineDraft, q.Lines[0].State)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns domain error for missing queue", func(t *testing.T) {
		repo, mock, mockDB := newMockQueueRepository(t)
		defer mockDB.Close()

		queueID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "import_queues" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(queueID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		q, err := repo.GetByID(context.Background(), queueID)

		assert.Nil(t, q)
		assert.ErrorIs(t, err, queue.ErrQueueNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormQueueRepository_SaveLine(t *testing.T) {
	t.Run("persists line state", func(t *testing.T) {
		repo, mock, mockDB := newMockQueueRepository(t)
		defer mockDB.Close()

		now := time.Now()
		line := &queue.Line{
			ID:          uuid.New(),
			QueueID:     uuid.New(),
			RemoteID:    "1001",
			State:       queue.LineDone,
			ProcessedAt: &now,
			CreatedAt:   now,
		}

		mock.ExpectExec(`UPDATE "import_queue_lines" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.SaveLine(context.Background(), line)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns domain error when line is missing", func(t *testing.T) {
		repo, mock, mockDB := newMockQueueRepository(t)
		defer mockDB.Close()

		line := &queue.Line{
			ID:       uuid.New(),
			QueueID:  uuid.New(),
			RemoteID: "1001",
			State:    queue.LineFailed,
			Log:      "remote record vanished",
		}

		mock.ExpectExec(`UPDATE "import_queue_lines" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SaveLine(context.Background(), line)

		assert.ErrorIs(t, err, queue.ErrLineNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormQueueRepository_NextSequence(t *testing.T) {
	t.Run("starts a new counter at one", func(t *testing.T) {
		repo, mock, mockDB := newMockQueueRepository(t)
		defer mockDB.Close()

		connectorID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "import_sequences" WHERE connector_id = \$1 AND model_type = \$2 .* FOR UPDATE`).
			WithArgs(connectorID, queue.ModelOrder, 1).
			WillReturnError(gorm.ErrRecordNotFound)
		mock.ExpectExec(`INSERT INTO "import_sequences"`).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		next, err := repo.NextSequence(context.Background(), connectorID, queue.ModelOrder)

		assert.NoError(t, err)
		assert.Equal(t, int64(1), next)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("advances an existing counter", func(t *testing.T) {
		repo, mock, mockDB := newMockQueueRepository(t)
		defer mockDB.Close()

		connectorID := uuid.New()

		rows := sqlmock.NewRows([]string{"connector_id", "model_type", "next_value"}).
			AddRow(connectorID, "order", 7)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "import_sequences" WHERE connector_id = \$1 AND model_type = \$2 .* FOR UPDATE`).
			WithArgs(connectorID, queue.ModelOrder, 1).
			WillReturnRows(rows)
		mock.ExpectExec(`UPDATE "import_sequences" SET "next_value"=\$1`).
			WithArgs(int64(8), connectorID, queue.ModelOrder).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		next, err := repo.NextSequence(context.Background(), connectorID, queue.ModelOrder)

		assert.NoError(t, err)
		assert.Equal(t, int64(7), next)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormQueueRepository_Delete(t *testing.T) {
	t.Run("removes queue with its lines", func(t *testing.T) {
		repo, mock, mockDB := newMockQueueRepository(t)
		defer mockDB.Close()

		queueID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "import_queue_lines" WHERE queue_id = \$1`).
			WithArgs(queueID).
			WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectExec(`DELETE FROM "import_queues" WHERE id = \$1`).
			WithArgs(queueID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.Delete(context.Background(), queueID)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns domain error when queue is missing", func(t *testing.T) {
		repo, mock, mockDB := newMockQueueRepository(t)
		defer mockDB.Close()

		queueID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "import_queue_lines" WHERE queue_id = \$1`).
			WithArgs(queueID).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM "import_queues" WHERE id = \$1`).
			WithArgs(queueID).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.Delete(context.Background(), queueID)

		assert.ErrorIs(t, err, queue.ErrQueueNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormQueueRepository_DeleteEmptyBefore(t *testing.T) {
	t.Run("reports number of removed queues", func(t *testing.T) {
		repo, mock, mockDB := newMockQueueRepository(t)
		defer mockDB.Close()

		cutoff := time.Now().Add(-24 * time.Hour)

		mock.ExpectExec(`DELETE FROM "import_queues" WHERE created_at < \$1 AND id NOT IN`).
			WithArgs(cutoff).
			WillReturnResult(sqlmock.NewResult(0, 2))

		deleted, err := repo.DeleteEmptyBefore(context.Background(), cutoff)

		assert.NoError(t, err)
		assert.Equal(t, int64(2), deleted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
