package api

import (
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalletHandler_Delete_RemovesTransactions(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT `id` FROM `transactions` WHERE wallet_id = \\?").
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5).AddRow(6))
	mock.ExpectExec("DELETE FROM `taggables` WHERE taggable_type = \\? AND taggable_id IN \\(\\?,\\?\\)").
		WithArgs("transaction", 5, 6).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM `transactions` WHERE wallet_id = \\?").
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM `taggables` WHERE taggable_type = \\? AND taggable_id IN \\(\\?\\)").
		WithArgs("wallet", 3).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM `wallets` WHERE `wallets`.`id` = \\?").
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	router := newTestRouter()
	router.DELETE("/wallets/:id", NewWalletHandler(nil).Delete)

	code, resp := doJSON(t, router, "DELETE", "/wallets/3", "")
	assert.Equal(t, 200, code)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["deleted_transactions"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletHandler_Delete_NotFound(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT `id` FROM `transactions`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("DELETE FROM `taggables`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM `wallets`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	router := newTestRouter()
	router.DELETE("/wallets/:id", NewWalletHandler(nil).Delete)

	code, resp := doJSON(t, router, "DELETE", "/wallets/9", "")
	assert.Equal(t, 404, code)
	assert.Equal(t, "钱包不存在", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletHandler_Create_InvalidBalance(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()

	router := newTestRouter()
	router.POST("/wallets", NewWalletHandler(nil).Create)

	for _, balance := range []string{`-5`, `"12,50"`, `"abc"`, `"-0.01"`} {
		body := `{"name":"Cash","balance":` + balance + `,"currency":"CNY"}`
		code, resp := doJSON(t, router, "POST", "/wallets", body)
		assert.Equal(t, 422, code, balance)
		assert.Equal(t, "金额必须是不小于 0 的数字", fieldErrors(t, resp)["balance"], balance)
	}
}

func TestBudgetHandler_List_Spent(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	start := time.Date(2025, 8, 1, 0, 0, 0, 0, time.Local)
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `budgets`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery("SELECT \\* FROM `budgets` WHERE is_active = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "amount", "period", "start_date", "is_active"}).
			AddRow(1, "Food", int64(10000), "monthly", start, true).
			AddRow(2, "Fun", int64(5000), "monthly", start, true))
	mock.ExpectQuery("SELECT budget_id, COALESCE\\(SUM\\(amount\\), 0\\) AS spent FROM `transactions` WHERE budget_id IN \\(\\?,\\?\\) AND type = \\?").
		WithArgs(1, 2, "expense").
		WillReturnRows(sqlmock.NewRows([]string{"budget_id", "spent"}).AddRow(1, int64(8500)))
	mock.ExpectQuery("SELECT tags.\\*, taggables.taggable_id FROM `tags`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "taggable_id"}))

	router := newTestRouter()
	router.GET("/budgets", NewBudgetHandler(nil).List)

	code, resp := doJSON(t, router, "GET", "/budgets", "")
	assert.Equal(t, 200, code)
	list := resp["data"].(map[string]interface{})["list"].([]interface{})
	require.Len(t, list, 2)

	food := list[0].(map[string]interface{})
	assert.Equal(t, float64(85), food["spent"])
	assert.Equal(t, float64(15), food["remaining"])
	assert.Equal(t, float64(85), food["percentage_used"])
	assert.Equal(t, "warning", food["status"])
	assert.Equal(t, false, food["is_exceeded"])

	fun := list[1].(map[string]interface{})
	assert.Equal(t, float64(0), fun["spent"])
	assert.Equal(t, "good", fun["status"])

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetHandler_Create_Validation(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()

	router := newTestRouter()
	router.POST("/budgets", NewBudgetHandler(nil).Create)

	code, resp := doJSON(t, router, "POST", "/budgets",
		`{"name":"Food","amount":10000,"period":"daily","start_date":"2025-08-01"}`)
	assert.Equal(t, 422, code)
	assert.Contains(t, fieldErrors(t, resp)["period"], "weekly monthly quarterly yearly")

	code, resp = doJSON(t, router, "POST", "/budgets",
		`{"name":"Food","amount":-1,"period":"monthly","start_date":"2025-08-01"}`)
	assert.Equal(t, 422, code)
	assert.Equal(t, "不能小于 0", fieldErrors(t, resp)["amount"])

	code, resp = doJSON(t, router, "POST", "/budgets",
		`{"name":"Food","amount":10000,"period":"monthly","start_date":"2025-08-01","end_date":"2025-07-01"}`)
	assert.Equal(t, 422, code)
	assert.Equal(t, "结束日期不能早于开始日期", fieldErrors(t, resp)["end_date"])
}

func TestTransactionHandler_Create(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `wallets` WHERE id = \\?").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `transactions`").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectCommit()

	router := newTestRouter()
	router.POST("/transactions", NewTransactionHandler(nil).Create)

	body := `{"wallet_id":1,"type":"expense","amount":35.8,"description":"超市采购","transaction_date":"2025-08-20"}`
	code, resp := doJSON(t, router, "POST", "/transactions", body)
	assert.Equal(t, 201, code)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(7), data["id"])
	assert.Equal(t, 35.8, data["amount"])
	assert.Equal(t, "expense", data["type"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_Create_RejectsNonEditableType(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	router := newTestRouter()
	router.POST("/transactions", NewTransactionHandler(nil).Create)

	for _, typ := range []string{"investment", "return", "gift"} {
		mock.ExpectQuery("SELECT count\\(\\*\\) FROM `wallets`").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		body := `{"wallet_id":1,"type":"` + typ + `","amount":1,"description":"x","transaction_date":"2025-08-20"}`
		code, resp := doJSON(t, router, "POST", "/transactions", body)
		assert.Equal(t, 422, code, typ)
		assert.Contains(t, fieldErrors(t, resp)["type"], "income expense transfer")
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_Create_MalformedAmount(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	router := newTestRouter()
	router.POST("/transactions", NewTransactionHandler(nil).Create)

	for _, amount := range []string{`"abc"`, `"35,80"`, `true`} {
		mock.ExpectQuery("SELECT count\\(\\*\\) FROM `wallets`").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		body := `{"wallet_id":1,"type":"expense","amount":` + amount + `,"description":"x","transaction_date":"2025-08-20"}`
		code, resp := doJSON(t, router, "POST", "/transactions", body)
		assert.Equal(t, 422, code, amount)
		assert.Equal(t, "金额必须是不小于 0 的数字", fieldErrors(t, resp)["amount"], amount)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_Create_MissingReferences(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `wallets`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `categories`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	router := newTestRouter()
	router.POST("/transactions", NewTransactionHandler(nil).Create)

	body := `{"wallet_id":99,"category_id":42,"type":"income","amount":"-3","description":"工资","transaction_date":"2025-08-20"}`
	code, resp := doJSON(t, router, "POST", "/transactions", body)
	assert.Equal(t, 422, code)
	errs := fieldErrors(t, resp)
	assert.Equal(t, "钱包不存在", errs["wallet_id"])
	assert.Equal(t, "分类不存在", errs["category_id"])
	assert.NotEmpty(t, errs["amount"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_Summary(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT type, COALESCE\\(SUM\\(amount\\), 0\\) AS total, COUNT\\(\\*\\) AS count FROM `transactions` WHERE transaction_date >= \\? AND transaction_date <= \\? GROUP BY `type`").
		WillReturnRows(sqlmock.NewRows([]string{"type", "total", "count"}).
			AddRow("income", int64(500000), int64(2)).
			AddRow("expense", int64(12345), int64(3)))

	router := newTestRouter()
	router.GET("/transactions/summary", NewTransactionHandler(nil).Summary)

	code, resp := doJSON(t, router, "GET", "/transactions/summary?start_date=2025-08-01&end_date=2025-08-31", "")
	assert.Equal(t, 200, code)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(5000), data["total_income"])
	assert.Equal(t, 123.45, data["total_expense"])

	byType := data["by_type"].([]interface{})
	require.Len(t, byType, 5)
	investment := byType[3].(map[string]interface{})
	assert.Equal(t, "investment", investment["type"])
	assert.Equal(t, float64(0), investment["total"])
	assert.Equal(t, float64(0), investment["count"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExportHandler_TransactionsCSV(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	mock.MatchExpectationsInOrder(false)

	date := time.Date(2025, 8, 20, 0, 0, 0, 0, time.Local)
	mock.ExpectQuery("SELECT \\* FROM `transactions` WHERE transaction_date >= \\? AND transaction_date <= \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "wallet_id", "budget_id", "category_id", "type", "amount", "description", "notes", "transaction_date"}).
			AddRow(1, 1, 2, 3, "expense", int64(3580), "超市采购", "牛奶, 鸡蛋", date))
	mock.ExpectQuery("SELECT \\* FROM `wallets` WHERE `wallets`.`id` = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "currency"}).AddRow(1, "现金", "CNY"))
	mock.ExpectQuery("SELECT \\* FROM `budgets` WHERE `budgets`.`id` = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(2, "伙食"))
	mock.ExpectQuery("SELECT \\* FROM `categories` WHERE `categories`.`id` = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(3, "Groceries"))

	router := newTestRouter()
	router.GET("/export/transactions.csv", NewExportHandler().ExportTransactionsCSV)

	w := serve(router, "GET", "/export/transactions.csv?start_date=2025-08-01&end_date=2025-08-31")
	assert.Equal(t, 200, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "transactions_2025-08-01_2025-08-31.csv")

	body := w.Body.String()
	assert.True(t, strings.HasPrefix(body, "\xEF\xBB\xBF"))
	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(body, "\xEF\xBB\xBF")), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "ID,日期,类型,金额,币种,钱包,分类,预算,描述,备注", lines[0])
	assert.Equal(t, `1,2025-08-20,Expense,35.80,CNY,现金,Groceries,伙食,超市采购,"牛奶, 鸡蛋"`, lines[1])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExportHandler_TransactionsCSV_BadParams(t *testing.T) {
	router := newTestRouter()
	router.GET("/export/transactions.csv", NewExportHandler().ExportTransactionsCSV)

	for _, path := range []string{
		"/export/transactions.csv",
		"/export/transactions.csv?start_date=2025-08-01",
		"/export/transactions.csv?start_date=2025/08/01&end_date=2025-08-31",
		"/export/transactions.csv?start_date=2025-08-31&end_date=2025-08-01",
	} {
		w := serve(router, "GET", path)
		assert.Equal(t, 400, w.Code, path)
	}
}
