package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/afumu/gptrace/internal/ingest"
	"github.com/afumu/gptrace/store"
	"github.com/afumu/gptrace/web/api"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Service 定义了 web 服务。
type Service struct {
	store     store.Store
	router    *gin.Engine
	server    *http.Server
	conf      *Config
	api       *api.API
	scheduler *ingest.Scheduler
}

// Config 保存 web 服务的配置。
type Config struct {
	ListenAddr     string
	Version        string
	Location       *time.Location
	MaxUploadBytes int64
	ScanEnabled    bool
	ScanInterval   int
}

// NewService 创建一个新的 web 服务。
func NewService(store store.Store, ing *ingest.Service, conf *Config) *Service {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.MaxMultipartMemory = 32 << 20

	scheduler := ingest.NewScheduler(ing.ScanFunc())
	if conf.ScanEnabled {
		scheduler.Configure(true, conf.ScanInterval)
	}

	apiHandler := api.NewAPI(store, ing, scheduler, &api.Config{
		Version:        conf.Version,
		Location:       conf.Location,
		MaxUploadBytes: conf.MaxUploadBytes,
	})

	s := &Service{
		store:     store,
		router:    router,
		conf:      conf,
		api:       apiHandler,
		scheduler: scheduler,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Start 开始提供 web 应用服务。
func (s *Service) Start() error {
	s.server = &http.Server{
		Addr:              s.conf.ListenAddr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info().Msg(fmt.Sprintf("在 %s 上启动 web 服务", s.conf.ListenAddr))

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Web 服务启动失败")
		}
	}()

	return nil
}

// Stop 优雅地关闭 web 服务器。
func (s *Service) Stop() error {
	s.scheduler.Stop()
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("优雅关闭 web 服务器失败")
		return err
	}

	log.Info().Msg("Web 服务已停止")
	return nil
}

func (s *Service) GetRouter() *gin.Engine {
	return s.router
}
