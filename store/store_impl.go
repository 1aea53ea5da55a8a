package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/afumu/gptrace/internal/analyzer"
	"github.com/afumu/gptrace/internal/model"
	"github.com/afumu/gptrace/store/core"
	"github.com/afumu/gptrace/store/repo"
	"github.com/afumu/gptrace/store/types"
	"github.com/cespare/xxhash"
	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Options 存储初始化参数
type Options struct {
	WorkDir  string // 数据库所在目录
	InboxDir string // 收件箱目录，为空时不监听
	Debounce time.Duration
}

// DefaultStore 是 Store 接口的默认实现
type DefaultStore struct {
	pool    *core.ConnectionPool
	watcher *core.Watcher
	repo    *repo.Repository
	inbox   string
	now     func() time.Time
}

// NewStore 初始化一个新的存储实例
func NewStore(opts Options) (*DefaultStore, error) {
	if err := os.MkdirAll(opts.WorkDir, 0755); err != nil {
		return nil, fmt.Errorf("创建工作目录失败: %w", err)
	}

	// 1. 连接池与仓储，首次连接时建表
	pool := core.NewConnectionPool(opts.WorkDir, repo.Schema)
	r := repo.New(pool, repo.DBFile)
	if _, err := pool.GetConnection(repo.DBFile); err != nil {
		return nil, err
	}

	s := &DefaultStore{
		pool:  pool,
		repo:  r,
		inbox: opts.InboxDir,
		now:   time.Now,
	}

	// 2. 收件箱监听
	if opts.InboxDir != "" {
		if err := os.MkdirAll(opts.InboxDir, 0755); err != nil {
			pool.CloseAll()
			return nil, fmt.Errorf("创建收件箱目录失败: %w", err)
		}
		debounce := opts.Debounce
		if debounce == 0 {
			debounce = core.DefaultDebounce
		}
		watcher, err := core.NewWatcher(opts.InboxDir, debounce, ".json", ".zip")
		if err != nil {
			pool.CloseAll()
			return nil, err
		}
		watcher.Start()
		s.watcher = watcher
	}

	return s, nil
}

func (s *DefaultStore) Close() error {
	if s.watcher != nil {
		s.watcher.Stop()
	}
	return s.pool.CloseAll()
}

func (s *DefaultStore) InboxDir() string { return s.inbox }

// ContentHash 计算导出内容的去重哈希
func ContentHash(data []byte) string {
	return strconv.FormatUint(xxhash.Sum64(data), 16)
}

// SaveExport 解码校验后保存导出内容。
// 内容已存在时返回已有记录，created 为 false。
func (s *DefaultStore) SaveExport(ctx context.Context, name, source string, data []byte) (*model.ExportRecord, bool, error) {
	hash := ContentHash(data)
	if rec, err := s.repo.FindByHash(ctx, hash); err == nil {
		return rec, false, nil
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, false, err
	}

	convs, err := analyzer.DecodeFile(name, data)
	if err != nil {
		return nil, false, err
	}

	rec := &model.ExportRecord{
		ID:            uuid.NewString(),
		Name:          filepath.Base(name),
		Source:        source,
		ContentHash:   hash,
		SizeBytes:     int64(len(data)),
		Conversations: len(convs),
		Messages:      countMessages(convs),
		CreatedAt:     s.now().UTC(),
	}

	err = s.repo.InsertExport(ctx, rec, data)
	if errors.Is(err, repo.ErrDuplicate) {
		// 并发上传同一文件，以先入库的为准
		existing, findErr := s.repo.FindByHash(ctx, hash)
		if findErr != nil {
			return nil, false, findErr
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	log.Info().Str("id", rec.ID).Str("name", rec.Name).Str("source", source).
		Int("conversations", rec.Conversations).Int("messages", rec.Messages).Msg("导出文件已入库")
	return rec, true, nil
}

func countMessages(convs []model.Conversation) int {
	n := 0
	for i := range convs {
		for _, node := range convs[i].Mapping.Nodes() {
			if node.Message != nil {
				n++
			}
		}
	}
	return n
}

func (s *DefaultStore) ListExports(ctx context.Context, query types.ExportQuery) ([]*model.ExportRecord, error) {
	return s.repo.ListExports(ctx, query)
}

func (s *DefaultStore) GetExport(ctx context.Context, id string) (*model.ExportRecord, error) {
	return s.repo.GetExport(ctx, id)
}

func (s *DefaultStore) DeleteExport(ctx context.Context, id string) error {
	if err := s.repo.DeleteExport(ctx, id); err != nil {
		return err
	}
	log.Info().Str("id", id).Msg("导出文件已删除")
	return nil
}

// LoadConversations 读取原始内容并重新解码
func (s *DefaultStore) LoadConversations(ctx context.Context, id string) ([]model.Conversation, error) {
	rec, err := s.repo.GetExport(ctx, id)
	if err != nil {
		return nil, err
	}
	data, err := s.repo.LoadPayload(ctx, id)
	if err != nil {
		return nil, err
	}
	return analyzer.DecodeFile(rec.Name, data)
}

// GetReport 获取指定时区下的分析报告，未命中缓存时现场计算并写入缓存
func (s *DefaultStore) GetReport(ctx context.Context, id string, loc *time.Location) (*model.Report, error) {
	if loc == nil {
		loc = time.Local
	}
	tz := loc.String()

	if body, err := s.repo.GetReport(ctx, id, tz); err == nil {
		var report model.Report
		if err := json.Unmarshal(body, &report); err == nil {
			return &report, nil
		}
		log.Warn().Str("id", id).Str("tz", tz).Msg("报告缓存损坏，重新计算")
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	convs, err := s.LoadConversations(ctx, id)
	if err != nil {
		return nil, err
	}
	report := analyzer.New(analyzer.WithLocation(loc), analyzer.WithNow(s.now)).Analyze(convs)

	body, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("序列化报告失败: %w", err)
	}
	if err := s.repo.SaveReport(ctx, id, tz, report.GeneratedAt, body); err != nil {
		// 缓存失败不影响本次结果
		log.Warn().Err(err).Str("id", id).Msg("写入报告缓存失败")
	}
	return report, nil
}

// Watch 注册收件箱目录的文件事件回调
func (s *DefaultStore) Watch(callback func(event fsnotify.Event)) error {
	if s.watcher == nil {
		return errors.New("未配置收件箱目录")
	}
	s.watcher.AddCallback(callback)
	return nil
}
