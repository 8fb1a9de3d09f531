package database

import (
	"testing"

	"household/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)
	return db, mock
}

func TestSeed_EmptyTables(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `categories`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `categories`").
		WillReturnResult(sqlmock.NewResult(1, 14))
	mock.ExpectCommit()

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `tags`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `tags`").
		WillReturnResult(sqlmock.NewResult(1, 15))
	mock.ExpectCommit()

	require.NoError(t, Seed(db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeed_SkipsExistingData(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `categories`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `tags`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	require.NoError(t, Seed(db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, logger.Silent, parseLogLevel("silent"))
	assert.Equal(t, logger.Error, parseLogLevel("ERROR"))
	assert.Equal(t, logger.Info, parseLogLevel("info"))
	assert.Equal(t, logger.Warn, parseLogLevel(""))
	assert.Equal(t, logger.Warn, parseLogLevel("verbose"))
}

func TestOpen_SQLite(t *testing.T) {
	cfg := config.DatabaseConfig{
		Driver:   config.DriverSQLite,
		Path:     t.TempDir() + "/data/household.db",
		LogLevel: "silent",
	}
	db, err := Open(cfg)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	require.NoError(t, Seed(db))

	var count int64
	require.NoError(t, db.Table("categories").Count(&count).Error)
	assert.Equal(t, int64(14), count)

	// 再次执行不会重复写入
	require.NoError(t, Seed(db))
	require.NoError(t, db.Table("tags").Count(&count).Error)
	assert.Equal(t, int64(15), count)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.Close()
}
