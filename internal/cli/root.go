package cli

import (
	"fmt"
	"os"

	"github.com/afumu/gptrace/internal/analyzer"
	"github.com/afumu/gptrace/internal/config"
	"github.com/afumu/gptrace/web/render"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version 构建时通过 -ldflags 注入
var Version = "dev"

var envFile string

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gptrace",
		Short: "ChatGPT 导出数据分析工具",
		Long: `gptrace 读取 ChatGPT 官方导出的 conversations.json（或整个导出压缩包），
统计使用习惯：消息量、活跃时段、消息长度、代码占比、会话分组等。

不带子命令运行时启动 HTTP 服务。`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			v := viper.GetViper()
			config.SetDefaults(v)
			config.ReadEnvFile(v, envFile)
			config.SetupLogger(v.GetString(config.KeyLogLevel), v.GetBool(config.KeyLogPretty))
			render.FontPath = v.GetString(config.KeyPDFFont)
			analyzer.MaxArchiveBytes = config.Load(v).MaxUploadBytes() * analyzer.ArchiveExpansion
		},
		RunE: runServe,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&envFile, "env", ".env", "配置文件路径")
	flags.String("work-dir", "", "工作目录（数据库与收件箱所在位置）")
	flags.String("tz", "", "统计使用的时区，例如 Asia/Shanghai（默认本地时区）")
	flags.String("log-level", "", "日志级别: debug|info|warn|error")

	_ = viper.BindPFlag(config.KeyWorkDir, flags.Lookup("work-dir"))
	_ = viper.BindPFlag(config.KeyTimezone, flags.Lookup("tz"))
	_ = viper.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))

	rootCmd.AddCommand(
		NewServeCommand(),
		NewAnalyzeCommand(),
	)

	return rootCmd
}

func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
