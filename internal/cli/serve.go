package cli

import (
	"context"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/afumu/gptrace/internal/config"
	"github.com/afumu/gptrace/internal/ingest"
	"github.com/afumu/gptrace/store"
	"github.com/afumu/gptrace/web"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP 服务",
		Long:  `启动 HTTP 服务，提供上传、报告查询与下载接口，并监听收件箱目录自动导入。`,
		RunE:  runServe,
	}

	cmd.Flags().String("listen", "", "监听地址（默认 127.0.0.1:5210）")
	cmd.Flags().Bool("open", false, "启动后自动打开浏览器")
	_ = viper.BindPFlag(config.KeyListenAddr, cmd.Flags().Lookup("listen"))

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	conf := config.Load(viper.GetViper())
	loc := conf.Location()
	log.Info().Str("work_dir", conf.WorkDir).Str("inbox", conf.InboxDir).Str("timezone", loc.String()).Msg("使用工作目录")

	// --- 初始化 Store ---
	st, err := store.NewStore(store.Options{WorkDir: conf.WorkDir, InboxDir: conf.InboxDir})
	if err != nil {
		return err
	}
	defer st.Close()

	// --- 收件箱：先处理已有文件，再监听新文件 ---
	ing := ingest.NewService(st, loc)
	if err := ing.Watch(); err != nil {
		return err
	}
	go func() {
		if _, err := ing.ScanInbox(context.Background()); err != nil {
			log.Warn().Err(err).Msg("启动时扫描收件箱失败")
		}
	}()

	// --- 初始化 Web 服务 ---
	webService := web.NewService(st, ing, &web.Config{
		ListenAddr:     conf.ListenAddr,
		Version:        Version,
		Location:       loc,
		MaxUploadBytes: conf.MaxUploadBytes(),
		ScanEnabled:    conf.ScanEnabled,
		ScanInterval:   conf.ScanInterval,
	})
	if err := webService.Start(); err != nil {
		return err
	}

	baseURL := conf.ListenAddr
	if len(baseURL) > 0 && baseURL[0] == ':' {
		baseURL = "127.0.0.1" + baseURL
	}
	url := "http://" + baseURL
	log.Info().Msgf("服务已启动，请访问: %s", url)
	if open, _ := cmd.Flags().GetBool("open"); open {
		openBrowser(url)
	}

	// --- 等待中断信号以实现优雅关闭 ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("接收到关闭信号，正在关闭服务...")

	if err := webService.Stop(); err != nil {
		return err
	}
	log.Info().Msg("服务已成功关闭。")
	return nil
}

func openBrowser(url string) {
	var err error
	switch runtime.GOOS {
	case "linux":
		err = exec.Command("xdg-open", url).Start()
	case "windows":
		err = exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "darwin":
		err = exec.Command("open", url).Start()
	}
	if err != nil {
		log.Warn().Err(err).Msg("无法自动打开浏览器")
	}
}
