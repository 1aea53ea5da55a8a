package web

import (
	"net/http"

	"github.com/afumu/gptrace/web/transport"
	"github.com/gin-gonic/gin"
)

// setupRoutes 初始化所有应用程序路由。
func (s *Service) setupRoutes() {
	v1 := s.router.Group("/api/v1")
	{
		// 系统路由
		system := v1.Group("/system")
		{
			system.GET("/status", s.api.GetSystemStatus)
			system.POST("/rescan", s.api.TriggerRescan)
			system.POST("/scheduler", s.api.UpdateScheduler)
		}

		// 无状态分析
		v1.POST("/analyze", s.api.AnalyzeUpload)

		// 导出文件路由
		exports := v1.Group("/exports")
		{
			exports.POST("", s.api.UploadExport)
			exports.GET("", s.api.ListExports)
			exports.GET("/:id", s.api.GetExport)
			exports.DELETE("/:id", s.api.DeleteExport)

			// 分析路由
			exports.GET("/:id/report", s.api.GetReport)
			exports.GET("/:id/metrics", s.api.GetMetrics)
			exports.GET("/:id/daily", s.api.GetDailyVolume)
			exports.GET("/:id/hourly", s.api.GetHourlyVolume)
			exports.GET("/:id/lengths", s.api.GetMessageLengths)
			exports.GET("/:id/groups", s.api.GetConversationGroups)
			exports.GET("/:id/wordcloud", s.api.GetWordCloud)
			exports.GET("/:id/download", s.api.DownloadReport)
		}
	}

	// 健康检查
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	s.router.NoRoute(func(c *gin.Context) {
		transport.NotFound(c, "API route not found")
	})
}
