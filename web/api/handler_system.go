package api

import (
	"net/http"
	"runtime"

	"github.com/afumu/gptrace/internal/config"
	"github.com/afumu/gptrace/store/types"
	"github.com/afumu/gptrace/web/transport"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// GetSystemStatus 返回服务状态
func (a *API) GetSystemStatus(c *gin.Context) {
	exports, err := a.Store.ListExports(c.Request.Context(), types.ExportQuery{Limit: 1})
	if err != nil {
		handleError(c, err)
		return
	}

	status := gin.H{
		"version":    a.Conf.Version,
		"go_version": runtime.Version(),
		"timezone":   a.Conf.Location.String(),
		"inbox_dir":  a.Store.InboxDir(),
		"has_data":   len(exports) > 0,
	}
	if a.Scheduler != nil {
		status["scheduler"] = a.Scheduler.GetStatus()
	}
	transport.SendSuccess(c, status)
}

// TriggerRescan 手动触发一次收件箱扫描
func (a *API) TriggerRescan(c *gin.Context) {
	if a.Scheduler == nil {
		transport.InternalServerError(c, "扫描调度器未初始化")
		return
	}
	if !a.Scheduler.StartScan() {
		transport.Conflict(c, "扫描正在进行中")
		return
	}

	go a.Scheduler.RunScan()
	transport.SendStatus(c, http.StatusAccepted, gin.H{"status": "scanning"})
}

// UpdateScheduler 更新定时扫描配置并写回 .env
func (a *API) UpdateScheduler(c *gin.Context) {
	if a.Scheduler == nil {
		transport.InternalServerError(c, "扫描调度器未初始化")
		return
	}

	var req transport.SchedulerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		transport.BadRequest(c, "参数错误")
		return
	}
	if req.IntervalMin < 1 || req.IntervalMin > 1440 {
		transport.BadRequest(c, "扫描间隔必须在 1-1440 分钟之间")
		return
	}

	a.Scheduler.Configure(req.Enabled, req.IntervalMin)

	viper.Set(config.KeyScanEnabled, req.Enabled)
	viper.Set(config.KeyScanInterval, req.IntervalMin)
	if err := viper.WriteConfig(); err != nil {
		log.Debug().Err(err).Msg("写回 .env 失败")
	}

	transport.SendSuccess(c, a.Scheduler.GetStatus())
}
