package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/afumu/gptrace/store/core"
)

// SaveReport 缓存某个时区下的报告 JSON（lz4 压缩）
func (r *Repository) SaveReport(ctx context.Context, exportID, timezone string, generatedAt time.Time, body []byte) error {
	db, err := r.db()
	if err != nil {
		return err
	}
	packed, err := core.CompressReport(body)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx,
		"INSERT OR REPLACE INTO reports (export_id, timezone, generated_at, body) VALUES (?, ?, ?, ?)",
		exportID, timezone, generatedAt.UnixMilli(), packed)
	if err != nil {
		return fmt.Errorf("保存报告缓存失败: %w", err)
	}
	return nil
}

// GetReport 读取缓存的报告 JSON，未命中时返回 ErrNotFound
func (r *Repository) GetReport(ctx context.Context, exportID, timezone string) ([]byte, error) {
	db, err := r.db()
	if err != nil {
		return nil, err
	}
	var packed []byte
	err = db.QueryRowContext(ctx,
		"SELECT body FROM reports WHERE export_id = ? AND timezone = ?", exportID, timezone).Scan(&packed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return core.DecompressReport(packed)
}
