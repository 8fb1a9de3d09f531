package service

import (
	"testing"
	"time"

	"household/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
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

func TestLoadBudgetSpent(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery("SELECT budget_id, COALESCE\\(SUM\\(amount\\), 0\\) AS spent FROM `transactions` WHERE budget_id IN").
		WithArgs(1, 2, 3, models.TransactionExpense).
		WillReturnRows(sqlmock.NewRows([]string{"budget_id", "spent"}).
			AddRow(1, 8000).
			AddRow(3, 12000))

	budgets := []models.Budget{
		{ID: 1, Amount: 10000},
		{ID: 2, Amount: 10000, Spent: 999},
		{ID: 3, Amount: 10000},
	}
	require.NoError(t, LoadBudgetSpent(db, budgets))
	assert.Equal(t, models.Money(8000), budgets[0].Spent)
	assert.Equal(t, models.Money(0), budgets[1].Spent)
	assert.Equal(t, models.Money(12000), budgets[2].Spent)

	views := BudgetViews(budgets)
	assert.Equal(t, models.BudgetStatusWarning, views[0].Status)
	assert.Equal(t, models.BudgetStatusGood, views[1].Status)
	assert.True(t, views[2].IsExceeded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadBudgetSpent_Empty(t *testing.T) {
	db, mock := setupMockDB(t)
	require.NoError(t, LoadBudgetSpent(db, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncTags(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `tags` WHERE id IN").
		WithArgs(2, 5).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectExec("DELETE FROM `taggables` WHERE taggable_type = \\? AND taggable_id = \\?").
		WithArgs(models.TaggableProduct, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `taggables`").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	// 重复和 0 会被去掉
	require.NoError(t, SyncTags(db, models.TaggableProduct, 7, []uint{2, 5, 2, 0}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncTags_UnknownTag(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `tags`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	err := SyncTags(db, models.TaggableWallet, 1, []uint{1, 99})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncTags_Clear(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `taggables`").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	require.NoError(t, SyncTags(db, models.TaggableBudget, 4, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadTags(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery("SELECT tags.\\*, taggables.taggable_id FROM `tags` JOIN taggables").
		WithArgs(models.TaggableStuff, 1, 2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "color", "taggable_id"}).
			AddRow(3, "Household", "#64748b", 1).
			AddRow(4, "Pantry", "#f59e0b", 1).
			AddRow(4, "Pantry", "#f59e0b", 2))

	tags, err := LoadTags(db, models.TaggableStuff, []uint{1, 2})
	require.NoError(t, err)
	require.Len(t, tags[1], 2)
	assert.Equal(t, "Household", tags[1][0].Name)
	require.Len(t, tags[2], 1)
	assert.Equal(t, uint(4), tags[2][0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func expectDashboardQueries(mock sqlmock.Sqlmock) {
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `products`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `stuffs`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery("SELECT \\* FROM `products` WHERE .*current_amount <= threshold_amount").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "purchased_amount", "current_amount", "threshold_amount", "unit", "last_purchased_at"}).
			AddRow(1, "Milk", "2", "0.5", "1", "l", time.Date(2025, 8, 10, 0, 0, 0, 0, time.UTC)))
	mock.ExpectQuery("SELECT \\* FROM `budgets`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "amount"}).
			AddRow(1, "Food", 10000))
	mock.ExpectQuery("SELECT budget_id, COALESCE").
		WillReturnRows(sqlmock.NewRows([]string{"budget_id", "spent"}).AddRow(1, 10000))
	mock.ExpectQuery("SELECT currency, COALESCE\\(SUM\\(balance\\), 0\\) AS balance, COUNT\\(\\*\\) AS wallets FROM `wallets`").
		WillReturnRows(sqlmock.NewRows([]string{"currency", "balance", "wallets"}).
			AddRow("EUR", 150000, 2).
			AddRow("USD", 2500, 1))
	mock.ExpectQuery("SELECT type, COALESCE\\(SUM\\(amount\\), 0\\) AS total FROM `transactions`").
		WillReturnRows(sqlmock.NewRows([]string{"type", "total"}).
			AddRow("income", 300000).
			AddRow("expense", 120050))
}

func TestDashboardService_CachesUntilInvalidated(t *testing.T) {
	db, mock := setupMockDB(t)
	now := time.Date(2025, 8, 20, 9, 0, 0, 0, time.UTC)
	s := NewDashboardService(time.Minute)

	expectDashboardQueries(mock)
	d, err := s.Get(db, now)
	require.NoError(t, err)
	assert.Equal(t, int64(4), d.ProductCount)
	assert.Equal(t, int64(2), d.StuffCount)
	require.Len(t, d.Restock, 1)
	assert.True(t, d.Restock[0].NeedsRestock)
	assert.Equal(t, 25.0, d.Restock[0].PercentageRemaining)
	require.Len(t, d.Budgets, 1)
	assert.Equal(t, models.BudgetStatusExceeded, d.Budgets[0].Status)
	assert.Equal(t, 1, d.ExceededBudget)
	assert.Equal(t, []CurrencyTotal{
		{Currency: "EUR", Balance: 150000, Wallets: 2},
		{Currency: "USD", Balance: 2500, Wallets: 1},
	}, d.WalletTotals)
	assert.Equal(t, MonthTotals{Month: "2025-08", Income: 300000, Expense: 120050}, d.Month)
	require.NoError(t, mock.ExpectationsWereMet())

	require.NotNil(t, d.Restock[0].ConsumptionRate)
	assert.Equal(t, 0.15, *d.Restock[0].ConsumptionRate)

	// 命中缓存，不再查询；派生字段按新的 now 重新计算
	later := now.AddDate(0, 0, 2)
	cached, err := s.Get(db, later)
	require.NoError(t, err)
	assert.Equal(t, later, cached.GeneratedAt)
	assert.Equal(t, int64(4), cached.ProductCount)
	require.Len(t, cached.Restock, 1)
	require.NotNil(t, cached.Restock[0].ConsumptionRate)
	assert.Equal(t, 0.125, *cached.Restock[0].ConsumptionRate)
	assert.Equal(t, 1, cached.ExceededBudget)
	require.NoError(t, mock.ExpectationsWereMet())

	// 跨月后按新月份重新汇总
	expectDashboardQueries(mock)
	_, err = s.Get(db, time.Date(2025, 9, 1, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	// 失效后重新汇总
	s.Invalidate()
	expectDashboardQueries(mock)
	_, err = s.Get(db, now)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())

	var nilService *DashboardService
	assert.NotPanics(t, func() { nilService.Invalidate() })
}
