package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// 配置项名称，同时也是 .env 中的键
const (
	KeyWorkDir      = "WORK_DIR"
	KeyListenAddr   = "LISTEN_ADDR"
	KeyPort         = "PORT"
	KeyTimezone     = "TIMEZONE"
	KeyInboxDir     = "INBOX_DIR"
	KeyMaxUploadMB  = "MAX_UPLOAD_MB"
	KeyScanEnabled  = "SCAN_ENABLED"
	KeyScanInterval = "SCAN_INTERVAL_MINUTES"
	KeyLogLevel     = "LOG_LEVEL"
	KeyLogPretty    = "LOG_PRETTY"
	KeyPDFFont      = "PDF_FONT"
)

const (
	DefaultWorkDir     = "data"
	DefaultListenAddr  = "127.0.0.1:5210"
	DefaultMaxUploadMB = 256
	DefaultScanMinutes = 10
)

// Config 运行时配置
type Config struct {
	WorkDir      string
	ListenAddr   string
	Timezone     string
	InboxDir     string
	MaxUploadMB  int
	ScanEnabled  bool
	ScanInterval int
	LogLevel     string
	LogPretty    bool
	PDFFont      string
}

// SetDefaults 注册默认值，写入默认 .env 时也使用它们
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyWorkDir, DefaultWorkDir)
	v.SetDefault(KeyTimezone, "Local")
	v.SetDefault(KeyMaxUploadMB, DefaultMaxUploadMB)
	v.SetDefault(KeyScanEnabled, false)
	v.SetDefault(KeyScanInterval, DefaultScanMinutes)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogPretty, true)
}

// ReadEnvFile 读取 .env；文件不存在时写入一份默认配置
func ReadEnvFile(v *viper.Viper, path string) {
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err == nil {
		return
	}
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) || os.IsNotExist(err) {
		if err := v.SafeWriteConfigAs(path); err != nil {
			log.Warn().Err(err).Msg("无法创建默认 .env 文件")
		} else {
			log.Info().Str("path", path).Msg("已自动创建并初始化 .env 配置文件")
		}
		return
	}
	log.Warn().Err(err).Msg("读取 .env 文件出错，将使用默认值或环境变量")
}

// Load 从 viper 中解析配置
func Load(v *viper.Viper) *Config {
	conf := &Config{
		WorkDir:      v.GetString(KeyWorkDir),
		ListenAddr:   v.GetString(KeyListenAddr),
		Timezone:     v.GetString(KeyTimezone),
		InboxDir:     v.GetString(KeyInboxDir),
		MaxUploadMB:  v.GetInt(KeyMaxUploadMB),
		ScanEnabled:  v.GetBool(KeyScanEnabled),
		ScanInterval: v.GetInt(KeyScanInterval),
		LogLevel:     v.GetString(KeyLogLevel),
		LogPretty:    v.GetBool(KeyLogPretty),
		PDFFont:      v.GetString(KeyPDFFont),
	}

	if conf.WorkDir == "" {
		conf.WorkDir = DefaultWorkDir
	}
	// 端口配置：优先使用 LISTEN_ADDR，其次使用 PORT
	if conf.ListenAddr == "" {
		if port := v.GetString(KeyPort); port != "" {
			conf.ListenAddr = "127.0.0.1:" + port
		} else {
			conf.ListenAddr = DefaultListenAddr
		}
	}
	if conf.InboxDir == "" {
		conf.InboxDir = filepath.Join(conf.WorkDir, "inbox")
	}
	if conf.MaxUploadMB <= 0 {
		conf.MaxUploadMB = DefaultMaxUploadMB
	}
	if conf.ScanInterval < 1 || conf.ScanInterval > 1440 {
		conf.ScanInterval = DefaultScanMinutes
	}
	return conf
}

// MaxUploadBytes 上传大小上限
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// Location 解析配置的时区，无法识别时回退到本地时区
func (c *Config) Location() *time.Location {
	loc, err := ParseLocation(c.Timezone)
	if err != nil {
		log.Warn().Err(err).Str("timezone", c.Timezone).Msg("无法识别的时区，使用本地时区")
		return time.Local
	}
	return loc
}

// ParseLocation 解析 IANA 时区名，空串和 Local 表示本地时区
func ParseLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("加载时区 %s 失败: %w", name, err)
	}
	return loc, nil
}

// SetupLogger 配置全局 zerolog
func SetupLogger(level string, pretty bool) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339

	if pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "2006-01-02 15:04:05"})
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
}
