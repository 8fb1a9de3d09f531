package router

import (
	"io/fs"
	"net/http"
	"time"

	"household/api"
	"household/config"
	_ "household/docs"
	"household/middleware"
	"household/service"
	"household/web"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// limiterIdle 限流器闲置多久后回收
const limiterIdle = 10 * time.Minute

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config) *gin.Engine {
	// 设置运行模式
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery())

	// CORS 中间件
	r.Use(CORSMiddleware())

	// 嵌入的静态文件 - 首页
	staticFS, _ := fs.Sub(web.StaticFS, ".")
	r.GET("/", func(c *gin.Context) {
		content, err := fs.ReadFile(staticFS, "index.html")
		if err != nil {
			c.String(http.StatusInternalServerError, "加载页面失败")
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", content)
	})

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	dashboard := service.NewDashboardService(cfg.Cache.TTL)
	mail := service.NewEmailService(&cfg.Email)

	v1 := r.Group("/api/v1")
	if cfg.RateLimit.Enabled {
		v1.Use(middleware.WriteRateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst, limiterIdle))
	}
	{
		dashboardHandler := api.NewDashboardHandler(dashboard)
		v1.GET("/dashboard", dashboardHandler.Get)

		// 消耗品
		productHandler := api.NewProductHandler(dashboard, mail)
		products := v1.Group("/products")
		{
			products.GET("", productHandler.List)
			products.POST("", productHandler.Create)
			products.GET("/options", productHandler.Options)
			products.GET("/restock", productHandler.Restock)
			products.POST("/restock/notify", productHandler.RestockNotify)
			products.GET("/:id", productHandler.Get)
			products.PUT("/:id", productHandler.Update)
			products.DELETE("/:id", productHandler.Delete)
			products.PUT("/:id/tags", productHandler.SyncTags)
		}

		// 物品与存放位置
		stuffHandler := api.NewStuffHandler(dashboard)
		stuff := v1.Group("/stuff")
		{
			stuff.GET("", stuffHandler.List)
			stuff.POST("", stuffHandler.Create)
			stuff.GET("/:id", stuffHandler.Get)
			stuff.PUT("/:id", stuffHandler.Update)
			stuff.DELETE("/:id", stuffHandler.Delete)
			stuff.PUT("/:id/tags", stuffHandler.SyncTags)
		}
		storageHandler := api.NewStorageHandler()
		v1.GET("/storages", storageHandler.List)
		v1.POST("/storages", storageHandler.Create)

		// 钱包
		walletHandler := api.NewWalletHandler(dashboard)
		wallets := v1.Group("/wallets")
		{
			wallets.GET("", walletHandler.List)
			wallets.POST("", walletHandler.Create)
			wallets.GET("/:id", walletHandler.Get)
			wallets.PUT("/:id", walletHandler.Update)
			wallets.DELETE("/:id", walletHandler.Delete)
			wallets.PUT("/:id/tags", walletHandler.SyncTags)
		}

		// 预算
		budgetHandler := api.NewBudgetHandler(dashboard)
		budgets := v1.Group("/budgets")
		{
			budgets.GET("", budgetHandler.List)
			budgets.POST("", budgetHandler.Create)
			budgets.GET("/:id", budgetHandler.Get)
			budgets.PUT("/:id", budgetHandler.Update)
			budgets.DELETE("/:id", budgetHandler.Delete)
			budgets.PUT("/:id/tags", budgetHandler.SyncTags)
		}

		// 交易
		transactionHandler := api.NewTransactionHandler(dashboard)
		transactions := v1.Group("/transactions")
		{
			transactions.GET("", transactionHandler.List)
			transactions.POST("", transactionHandler.Create)
			transactions.GET("/options", transactionHandler.Options)
			transactions.GET("/summary", transactionHandler.Summary)
			transactions.GET("/:id", transactionHandler.Get)
			transactions.PUT("/:id", transactionHandler.Update)
			transactions.DELETE("/:id", transactionHandler.Delete)
			transactions.PUT("/:id/tags", transactionHandler.SyncTags)
		}

		categoryHandler := api.NewCategoryHandler(dashboard)
		categories := v1.Group("/categories")
		{
			categories.GET("", categoryHandler.List)
			categories.POST("", categoryHandler.Create)
			categories.PUT("/:id", categoryHandler.Update)
			categories.DELETE("/:id", categoryHandler.Delete)
		}

		tagHandler := api.NewTagHandler()
		tags := v1.Group("/tags")
		{
			tags.GET("", tagHandler.List)
			tags.POST("", tagHandler.Create)
			tags.PUT("/:id", tagHandler.Update)
			tags.DELETE("/:id", tagHandler.Delete)
		}

		// 导出相关
		exportHandler := api.NewExportHandler()
		export := v1.Group("/export")
		{
			export.GET("/transactions.csv", exportHandler.ExportTransactionsCSV)
			export.GET("/inventory.xlsx", exportHandler.ExportInventoryExcel)
		}

		emailHandler := api.NewEmailHandler(&cfg.Email, mail)
		v1.GET("/email/config", emailHandler.GetConfig)
		v1.POST("/email/test", emailHandler.SendTest)
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	return r
}

// CORSMiddleware CORS 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Accept, Origin, Cache-Control, X-Requested-With, "+middleware.RequestIDHeader)
		c.Writer.Header().Set("Access-Control-Expose-Headers", middleware.RequestIDHeader+", Content-Disposition")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
