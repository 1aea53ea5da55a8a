package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/afumu/gptrace/internal/analyzer"
	"github.com/afumu/gptrace/internal/model"
	"github.com/afumu/gptrace/store"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

const (
	ProcessedDir = "processed"
	FailedDir    = "failed"
)

// ScanResult 一次收件箱扫描的结果
type ScanResult struct {
	Processed  int `json:"processed"`
	Duplicates int `json:"duplicates"`
	Failed     int `json:"failed"`
}

// Service 负责把导出文件写入存储并预热报告缓存
type Service struct {
	store store.Store
	loc   *time.Location
	mu    sync.Mutex // 串行处理收件箱文件，扫描与监听回调不会重复处理同一文件
}

func NewService(st store.Store, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{store: st, loc: loc}
}

// Location 报告默认使用的时区
func (s *Service) Location() *time.Location { return s.loc }

// Ingest 解码、入库并预热默认时区的报告。
// 解码失败时返回 analyzer 的解码错误，内容已存在时 created 为 false。
func (s *Service) Ingest(ctx context.Context, name, source string, data []byte) (*model.ExportRecord, bool, error) {
	rec, created, err := s.store.SaveExport(ctx, name, source, data)
	if err != nil {
		return nil, false, err
	}
	if created {
		if _, err := s.store.GetReport(ctx, rec.ID, s.loc); err != nil {
			log.Warn().Err(err).Str("id", rec.ID).Msg("预热报告缓存失败")
		}
	}
	return rec, created, nil
}

// Watch 监听收件箱，新文件写入完成后自动导入
func (s *Service) Watch() error {
	return s.store.Watch(s.HandleEvent)
}

// HandleEvent 处理收件箱中的文件事件
func (s *Service) HandleEvent(event fsnotify.Event) {
	if filepath.Dir(event.Name) != filepath.Clean(s.store.InboxDir()) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	outcome, err := s.ingestFile(context.Background(), event.Name)
	if err != nil {
		log.Warn().Err(err).Str("file", event.Name).Msg("收件箱文件导入失败")
		return
	}
	log.Debug().Str("file", event.Name).Str("outcome", outcome.String()).Msg("收件箱文件已处理")
}

// ScanInbox 处理收件箱中现有的全部 .json / .zip 文件
func (s *Service) ScanInbox(ctx context.Context) (ScanResult, error) {
	var result ScanResult
	inbox := s.store.InboxDir()
	if inbox == "" {
		return result, fmt.Errorf("未配置收件箱目录")
	}

	entries, err := os.ReadDir(inbox)
	if err != nil {
		return result, fmt.Errorf("读取收件箱失败: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range entries {
		if entry.IsDir() || !Accepts(entry.Name()) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}

		outcome, err := s.ingestFile(ctx, filepath.Join(inbox, entry.Name()))
		if err != nil {
			log.Warn().Err(err).Str("file", entry.Name()).Msg("收件箱文件导入失败")
		}
		switch outcome {
		case outcomeCreated:
			result.Processed++
		case outcomeDuplicate:
			result.Duplicates++
		case outcomeFailed:
			result.Failed++
		}
	}

	log.Info().Int("processed", result.Processed).Int("duplicates", result.Duplicates).
		Int("failed", result.Failed).Msg("收件箱扫描完成")
	return result, nil
}

// ScanFunc 供调度器定时调用
func (s *Service) ScanFunc() ScanFunc {
	return func() error {
		_, err := s.ScanInbox(context.Background())
		return err
	}
}

// Accepts 判断文件是否是可导入的导出文件
func Accepts(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".json" || ext == ".zip"
}

type outcome int

const (
	outcomeSkipped outcome = iota
	outcomeCreated
	outcomeDuplicate
	outcomeFailed
)

func (o outcome) String() string {
	switch o {
	case outcomeCreated:
		return "created"
	case outcomeDuplicate:
		return "duplicate"
	case outcomeFailed:
		return "failed"
	}
	return "skipped"
}

func (s *Service) ingestFile(ctx context.Context, path string) (outcome, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		// 已被另一次处理移走
		return outcomeSkipped, nil
	}
	if err != nil {
		return outcomeFailed, fmt.Errorf("读取文件失败: %w", err)
	}

	_, created, ingestErr := s.Ingest(ctx, filepath.Base(path), "inbox", data)

	dest := ProcessedDir
	result := outcomeDuplicate
	switch {
	case ingestErr != nil && analyzer.IsDecodeError(ingestErr):
		dest, result = FailedDir, outcomeFailed
	case ingestErr != nil:
		// 存储错误保留原文件，等待下次扫描重试
		return outcomeFailed, ingestErr
	case created:
		result = outcomeCreated
	}

	if err := moveInto(path, filepath.Join(filepath.Dir(path), dest)); err != nil {
		return result, err
	}
	return result, ingestErr
}

// moveInto 把文件移动到目标目录，重名时追加时间戳
func moveInto(path, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}
	target := filepath.Join(dir, filepath.Base(path))
	if _, err := os.Stat(target); err == nil {
		ext := filepath.Ext(path)
		base := strings.TrimSuffix(filepath.Base(path), ext)
		target = filepath.Join(dir, fmt.Sprintf("%s_%s%s", base, time.Now().Format("20060102150405.000"), ext))
	}
	if err := os.Rename(path, target); err != nil {
		return fmt.Errorf("移动文件失败: %w", err)
	}
	return nil
}
