package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/afumu/gptrace/internal/analyzer"
	"github.com/afumu/gptrace/internal/config"
	"github.com/afumu/gptrace/internal/ingest"
	"github.com/afumu/gptrace/store"
	"github.com/afumu/gptrace/web/transport"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// API 封装了 API 处理器所需的所有依赖。
type API struct {
	Store     store.Store
	Ingest    *ingest.Service
	Scheduler *ingest.Scheduler
	Conf      *Config
}

type Config struct {
	Version        string
	Location       *time.Location
	MaxUploadBytes int64
}

// NewAPI 创建一个新的 API 处理器。
func NewAPI(s store.Store, ing *ingest.Service, scheduler *ingest.Scheduler, conf *Config) *API {
	if conf.Location == nil {
		conf.Location = time.Local
	}
	return &API{
		Store:     s,
		Ingest:    ing,
		Scheduler: scheduler,
		Conf:      conf,
	}
}

// location 解析请求中的 tz 参数，为空时使用服务端配置
func (a *API) location(tz string) (*time.Location, error) {
	if tz == "" {
		return a.Conf.Location, nil
	}
	return config.ParseLocation(tz)
}

// handleError 把领域错误映射为对应的 HTTP 状态码
func handleError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, analyzer.ErrArchiveTooLarge):
		transport.PayloadTooLarge(c, err.Error())
	case analyzer.IsDecodeError(err):
		transport.BadRequest(c, err.Error())
	case errors.Is(err, store.ErrNotFound):
		transport.NotFound(c, "导出记录不存在")
	case errors.As(err, &tooLarge):
		transport.PayloadTooLarge(c, "上传文件超过大小限制")
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("请求处理失败")
		transport.InternalServerError(c, err.Error())
	}
}
