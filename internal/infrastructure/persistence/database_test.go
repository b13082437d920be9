package persistence

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newMockGorm opens gorm on a sqlmock connection speaking the postgres dialect
func newMockGorm(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return gormDB, mock, mockDB
}

func TestDatabase_Ping(t *testing.T) {
	gormDB, mock, _ := newMockGorm(t)
	db := &Database{DB: gormDB}

	assert.NoError(t, db.Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabase_StatsCollector(t *testing.T) {
	gormDB, _, mockDB := newMockGorm(t)
	mockDB.SetMaxOpenConns(7)
	db := &Database{DB: gormDB}

	collector, err := db.StatsCollector("wms")
	require.NoError(t, err)
	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(collector))

	expected := `
# HELP go_sql_max_open_connections Maximum number of open connections to the database.
# TYPE go_sql_max_open_connections gauge
go_sql_max_open_connections{db_name="wms"} 7
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "go_sql_max_open_connections"))
}

func TestDatabase_Close(t *testing.T) {
	gormDB, mock, _ := newMockGorm(t)
	db := &Database{DB: gormDB}

	mock.ExpectClose()
	assert.NoError(t, db.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}
