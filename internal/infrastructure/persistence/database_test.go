package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/orderwatch/backend/internal/domain/order"
	"github.com/orderwatch/backend/internal/infrastructure/config"
)

// newMockDatabase creates a Database instance backed by a mocked SQL connection.
// The sqlite dialector probes the engine version on open, so every test
// expects that query first.
func newMockDatabase(t *testing.T) (*Database, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	mock.ExpectQuery(`select sqlite_version\(\)`).
		WillReturnRows(sqlmock.NewRows([]string{"sqlite_version()"}).AddRow("3.45.1"))

	gormDB, err := gorm.Open(sqlite.Dialector{Conn: mockDB}, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return &Database{DB: gormDB}, mock, mockDB
}

func TestDatabase_Ping(t *testing.T) {
	t.Run("ping is forwarded to the underlying connection", func(t *testing.T) {
		mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer mockDB.Close()

		// The dialector probes the engine version first, then GORM pings
		mock.ExpectQuery(`select sqlite_version\(\)`).
			WillReturnRows(sqlmock.NewRows([]string{"sqlite_version()"}).AddRow("3.45.1"))
		mock.ExpectPing()

		gormDB, err := gorm.Open(sqlite.Dialector{Conn: mockDB}, &gorm.Config{
			SkipDefaultTransaction: true,
		})
		require.NoError(t, err)

		db := &Database{DB: gormDB}

		mock.ExpectPing()
		assert.NoError(t, db.Ping())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDatabase_MockedQueries(t *testing.T) {
	t.Run("FindByOrderID issues a single keyed select", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		orderedAt := time.Date(2026, 8, 30, 14, 30, 0, 0, time.UTC)
		mock.ExpectQuery(`SELECT \* FROM .orders. WHERE order_id = \?`).
			WithArgs("2026083012345").
			WillReturnRows(sqlmock.NewRows([]string{
				"order_id", "status", "ordered_at", "total_amount", "attributes", "created_at", "updated_at",
			}).AddRow("2026083012345", "NEW", orderedAt, "25000", `{"product_name":"Widget"}`, orderedAt, orderedAt))

		repo := NewGormOrderRepository(db.DB)
		found, err := repo.FindByOrderID(context.Background(), "2026083012345")
		require.NoError(t, err)
		assert.Equal(t, order.StatusNew, found.Status)
		assert.Equal(t, "Widget", found.Attributes["product_name"])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("CountByStatus groups by status", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT status, COUNT\(\*\) as count FROM .orders. GROUP BY .status.`).
			WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
				AddRow("NEW", 2).
				AddRow("SHIPPING", 1))

		repo := NewGormOrderRepository(db.DB)
		counts, err := repo.CountByStatus(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, counts[order.StatusNew])
		assert.Equal(t, 1, counts[order.StatusShipping])
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("memory path passes through", func(t *testing.T) {
		cfg := &config.DatabaseConfig{Path: ":memory:"}
		assert.Equal(t, ":memory:", cfg.DSN())
	})

	t.Run("file path carries the busy timeout", func(t *testing.T) {
		cfg := &config.DatabaseConfig{Path: "orderwatch.db", BusyTimeoutMS: 5000}
		assert.Equal(t, "file:orderwatch.db?_busy_timeout=5000", cfg.DSN())
	})
}

func TestNewDatabase(t *testing.T) {
	t.Run("opens, migrates and closes an in-memory database", func(t *testing.T) {
		cfg := &config.DatabaseConfig{Path: ":memory:", BusyTimeoutMS: 5000}

		db, err := NewDatabase(cfg)
		require.NoError(t, err)
		defer db.Close()

		require.NoError(t, db.Migrate())
		assert.NoError(t, db.Ping())
	})
}
