package api

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProductHandler(now time.Time) *ProductHandler {
	h := NewProductHandler(nil, nil)
	h.now = func() time.Time { return now }
	return h
}

func TestProductHandler_List(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Date(2025, 8, 11, 9, 0, 0, 0, time.Local)
	bought := time.Date(2025, 8, 1, 0, 0, 0, 0, time.Local)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `products` WHERE .*is_active = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT \\* FROM `products` WHERE .*ORDER BY name ASC").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "purchased_amount", "current_amount", "unit", "threshold_amount", "last_purchased_at", "is_active"}).
			AddRow(1, "Rice", "10.00", "5.00", "kg", "2.00", bought, true))
	mock.ExpectQuery("SELECT tags.\\*, taggables.taggable_id FROM `tags` JOIN taggables").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "taggable_id"}).AddRow(3, "Pantry", 1))

	router := newTestRouter()
	router.GET("/products", testProductHandler(now).List)

	code, resp := doJSON(t, router, "GET", "/products?search=rice", "")
	assert.Equal(t, 200, code)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["total"])
	assert.Equal(t, float64(15), data["page_size"])

	list := data["list"].([]interface{})
	require.Len(t, list, 1)
	item := list[0].(map[string]interface{})
	assert.Equal(t, "Rice", item["name"])
	assert.Equal(t, float64(50), item["percentage_remaining"])
	assert.Equal(t, false, item["needs_restock"])
	assert.Equal(t, 0.5, item["consumption_rate"])
	assert.Equal(t, float64(6), item["days_until_threshold"])
	assert.Equal(t, "2025-08-01", item["last_purchased_date"])
	assert.Nil(t, item["last_purchase_price"])
	tags := item["tags"].([]interface{})
	require.Len(t, tags, 1)
	assert.Equal(t, "Pantry", tags[0].(map[string]interface{})["name"])

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductHandler_Create(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `products`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	router := newTestRouter()
	router.POST("/products", testProductHandler(time.Now()).Create)

	body := `{"name":" Milk ","purchased_amount":2,"current_amount":0.5,"unit":"l","threshold_amount":0.5,"last_purchase_price_cents":399}`
	code, resp := doJSON(t, router, "POST", "/products", body)
	assert.Equal(t, 201, code)
	assert.Equal(t, float64(201), resp["code"])

	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["id"])
	assert.Equal(t, "Milk", data["name"])
	assert.Equal(t, "l", data["unit"])
	assert.Equal(t, true, data["is_active"])
	assert.Equal(t, true, data["needs_restock"])
	assert.Equal(t, float64(399), data["last_purchase_price_cents"])
	assert.Equal(t, 3.99, data["last_purchase_price"])
	assert.Nil(t, data["consumption_rate"])

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductHandler_Create_RoundsQuantities(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `products`").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	router := newTestRouter()
	router.POST("/products", testProductHandler(time.Now()).Create)

	body := `{"name":"Rice","purchased_amount":"5.004","current_amount":1.005,"unit":"kg","threshold_amount":"0.5"}`
	code, resp := doJSON(t, router, "POST", "/products", body)
	assert.Equal(t, 201, code)

	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "5", data["purchased_amount"])
	assert.Equal(t, "1.01", data["current_amount"])
	assert.Equal(t, "0.5", data["threshold_amount"])
	assert.Equal(t, false, data["needs_restock"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductHandler_Create_Validation(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()

	router := newTestRouter()
	router.POST("/products", testProductHandler(time.Now()).Create)

	tests := []struct {
		name  string
		body  string
		field string
		msg   string
	}{
		{"缺少名称", `{"purchased_amount":1,"current_amount":1,"unit":"kg","threshold_amount":0}`, "name", "不能为空"},
		{"未知单位", `{"name":"Rice","purchased_amount":1,"current_amount":1,"unit":"bushel","threshold_amount":0}`, "unit", "无效的单位"},
		{"数量为负", `{"name":"Rice","purchased_amount":1,"current_amount":-1,"unit":"kg","threshold_amount":0}`, "current_amount", "不能小于 0"},
		{"日期格式", `{"name":"Rice","purchased_amount":1,"current_amount":1,"unit":"kg","threshold_amount":0,"last_purchased_at":"yesterday"}`, "last_purchased_at", "日期格式错误，应为: 2006-01-02"},
		{"数量不是数字", `{"name":"Rice","purchased_amount":"abc","current_amount":1,"unit":"kg","threshold_amount":0}`, "purchased_amount", "必须是数字"},
		{"数量含逗号", `{"name":"Rice","purchased_amount":1,"current_amount":"1,5","unit":"kg","threshold_amount":0}`, "current_amount", "必须是数字"},
		{"阈值为空", `{"name":"Rice","purchased_amount":1,"current_amount":1,"unit":"kg","threshold_amount":null}`, "threshold_amount", "不能为空"},
		{"价格为负", `{"name":"Rice","purchased_amount":1,"current_amount":1,"unit":"kg","threshold_amount":0,"last_purchase_price_cents":-5}`, "last_purchase_price_cents", "不能小于 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := doJSON(t, router, "POST", "/products", tt.body)
			assert.Equal(t, 422, code)
			assert.Equal(t, tt.msg, fieldErrors(t, resp)[tt.field])
		})
	}
}

func TestProductHandler_Get_NotFound(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT \\* FROM `products` WHERE `products`.`id` = \\?").
		WillReturnRows(sqlmock.NewRows([]string{}))

	router := newTestRouter()
	router.GET("/products/:id", testProductHandler(time.Now()).Get)

	code, resp := doJSON(t, router, "GET", "/products/42", "")
	assert.Equal(t, 404, code)
	assert.Equal(t, "商品不存在", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductHandler_Delete_SoftDelete(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `products` SET `deleted_at`=\\? WHERE `products`.`id` = \\?").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `products` SET `deleted_at`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	router := newTestRouter()
	router.DELETE("/products/:id", testProductHandler(time.Now()).Delete)

	code, resp := doJSON(t, router, "DELETE", "/products/1", "")
	assert.Equal(t, 200, code)
	assert.Equal(t, "删除成功", resp["message"])

	code, _ = doJSON(t, router, "DELETE", "/products/1", "")
	assert.Equal(t, 404, code)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductHandler_RestockNotify_MailDisabled(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()

	router := newTestRouter()
	router.POST("/products/restock/notify", testProductHandler(time.Now()).RestockNotify)

	code, resp := doJSON(t, router, "POST", "/products/restock/notify", "")
	assert.Equal(t, 503, code)
	assert.Contains(t, resp["message"], "邮件服务未启用")
}

func TestProductHandler_Options(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT \\* FROM `tags` ORDER BY name ASC").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "Groceries"))

	router := newTestRouter()
	router.GET("/products/options", testProductHandler(time.Now()).Options)

	code, resp := doJSON(t, router, "GET", "/products/options", "")
	assert.Equal(t, 200, code)
	data := resp["data"].(map[string]interface{})
	groups := data["unit_groups"].([]interface{})
	assert.Len(t, groups, 6)
	first := groups[0].(map[string]interface{})
	assert.Equal(t, "Count", first["name"])
	assert.NotEmpty(t, data["unit_options"])
	assert.Len(t, data["tags"], 1)
	require.NoError(t, mock.ExpectationsWereMet())
}
