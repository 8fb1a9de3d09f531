package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// WriteRateLimit 写接口限流中间件
// 每个 IP 一个令牌桶，rps 为每秒补充速率，burst 为桶容量；超过则返回 429
// 空闲超过 idle 的 IP 会被清理
func WriteRateLimit(rps float64, burst int, idle time.Duration) gin.HandlerFunc {
	var mu sync.Mutex
	limiters := cache.New(idle, 2*idle)

	get := func(ip string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		if v, ok := limiters.Get(ip); ok {
			l := v.(*rate.Limiter)
			// 刷新过期时间
			limiters.SetDefault(ip, l)
			return l
		}
		l := rate.NewLimiter(rate.Limit(rps), burst)
		limiters.SetDefault(ip, l)
		return l
	}

	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}
		if !get(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    http.StatusTooManyRequests,
				"message": "请求过于频繁，请稍后再试",
			})
			return
		}
		c.Next()
	}
}
