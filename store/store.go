package store

import (
	"context"
	"time"

	"github.com/afumu/gptrace/internal/model"
	"github.com/afumu/gptrace/store/repo"
	"github.com/afumu/gptrace/store/types"
	"github.com/fsnotify/fsnotify"
)

// ErrNotFound 导出记录不存在
var ErrNotFound = repo.ErrNotFound

// Store 定义了数据访问的统一接口。
// 它屏蔽了数据库文件、压缩格式和收件箱目录的细节。
type Store interface {
	// 导出文件操作
	SaveExport(ctx context.Context, name, source string, data []byte) (*model.ExportRecord, bool, error)
	ListExports(ctx context.Context, query types.ExportQuery) ([]*model.ExportRecord, error)
	GetExport(ctx context.Context, id string) (*model.ExportRecord, error)
	DeleteExport(ctx context.Context, id string) error
	LoadConversations(ctx context.Context, id string) ([]model.Conversation, error)

	// 分析报告，按时区缓存
	GetReport(ctx context.Context, id string, loc *time.Location) (*model.Report, error)

	// Watch 注册收件箱目录的文件事件回调
	Watch(callback func(event fsnotify.Event)) error

	// InboxDir 返回收件箱目录
	InboxDir() string

	// 生命周期管理
	Close() error
}
