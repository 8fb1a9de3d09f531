package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestWriteRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// 每秒补充 0.001 个，桶容量 2，测试期间不会补充
	router := gin.New()
	router.Use(WriteRateLimit(0.001, 2, time.Minute))
	router.POST("/products", func(c *gin.Context) {
		c.String(200, "ok")
	})
	router.GET("/products", func(c *gin.Context) {
		c.String(200, "ok")
	})

	doReq := func(method, ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/products", nil)
		req.RemoteAddr = ip + ":12345"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	// 同一 IP 连续 3 次写入，第 3 次应返回 429
	assert.Equal(t, 200, doReq("POST", "192.168.1.1").Code)
	assert.Equal(t, 200, doReq("POST", "192.168.1.1").Code)
	w3 := doReq("POST", "192.168.1.1")
	assert.Equal(t, http.StatusTooManyRequests, w3.Code)
	assert.Contains(t, w3.Body.String(), "频繁")

	// 读请求不受限制
	for i := 0; i < 5; i++ {
		assert.Equal(t, 200, doReq("GET", "192.168.1.1").Code)
	}

	// 不同 IP 互不影响
	assert.Equal(t, 200, doReq("POST", "192.168.1.2").Code)
	assert.Equal(t, 200, doReq("POST", "192.168.1.2").Code)
}
