package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/afumu/gptrace/internal/model"
	"github.com/afumu/gptrace/store/core"
	"github.com/afumu/gptrace/store/types"
	"github.com/mattn/go-sqlite3"
)

const exportColumns = "id, name, source, content_hash, size_bytes, conversations, messages, created_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExport(row rowScanner) (*model.ExportRecord, error) {
	var (
		rec       model.ExportRecord
		createdAt int64
	)
	if err := row.Scan(&rec.ID, &rec.Name, &rec.Source, &rec.ContentHash,
		&rec.SizeBytes, &rec.Conversations, &rec.Messages, &createdAt); err != nil {
		return nil, err
	}
	rec.CreatedAt = time.UnixMilli(createdAt).UTC()
	return &rec, nil
}

// InsertExport 保存导出记录和原始内容（zstd 压缩后存储）
func (r *Repository) InsertExport(ctx context.Context, rec *model.ExportRecord, payload []byte) error {
	db, err := r.db()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx,
		"INSERT INTO exports ("+exportColumns+", payload) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		rec.ID, rec.Name, rec.Source, rec.ContentHash, rec.SizeBytes,
		rec.Conversations, rec.Messages, rec.CreatedAt.UnixMilli(), core.CompressPayload(payload))
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return ErrDuplicate
		}
		return fmt.Errorf("保存导出记录失败: %w", err)
	}
	return nil
}

// FindByHash 按内容哈希查找导出记录
func (r *Repository) FindByHash(ctx context.Context, hash string) (*model.ExportRecord, error) {
	db, err := r.db()
	if err != nil {
		return nil, err
	}
	rec, err := scanExport(db.QueryRowContext(ctx,
		"SELECT "+exportColumns+" FROM exports WHERE content_hash = ?", hash))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

// GetExport 按 ID 获取导出记录
func (r *Repository) GetExport(ctx context.Context, id string) (*model.ExportRecord, error) {
	db, err := r.db()
	if err != nil {
		return nil, err
	}
	rec, err := scanExport(db.QueryRowContext(ctx,
		"SELECT "+exportColumns+" FROM exports WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

// ListExports 按入库时间倒序列出导出记录
func (r *Repository) ListExports(ctx context.Context, q types.ExportQuery) ([]*model.ExportRecord, error) {
	db, err := r.db()
	if err != nil {
		return nil, err
	}
	q = q.Normalize()

	rows, err := db.QueryContext(ctx,
		"SELECT "+exportColumns+" FROM exports ORDER BY created_at DESC, id LIMIT ? OFFSET ?",
		q.Limit, q.Offset)
	if err != nil {
		return nil, fmt.Errorf("查询导出记录失败: %w", err)
	}
	defer rows.Close()

	result := make([]*model.ExportRecord, 0)
	for rows.Next() {
		rec, err := scanExport(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

// DeleteExport 删除导出记录，关联的报告缓存随外键级联删除
func (r *Repository) DeleteExport(ctx context.Context, id string) error {
	db, err := r.db()
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, "DELETE FROM exports WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("删除导出记录失败: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// LoadPayload 读取并解压原始导出内容
func (r *Repository) LoadPayload(ctx context.Context, id string) ([]byte, error) {
	db, err := r.db()
	if err != nil {
		return nil, err
	}
	var packed []byte
	err = db.QueryRowContext(ctx, "SELECT payload FROM exports WHERE id = ?", id).Scan(&packed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return core.DecompressPayload(packed)
}
