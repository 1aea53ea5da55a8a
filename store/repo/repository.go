package repo

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/afumu/gptrace/store/core"
)

var (
	// ErrNotFound 记录不存在
	ErrNotFound = errors.New("记录不存在")
	// ErrDuplicate 相同内容的导出已入库
	ErrDuplicate = errors.New("导出内容已存在")
)

// DBFile 默认的数据库文件名（相对工作目录）
const DBFile = "gptrace.db"

const schema = `
CREATE TABLE IF NOT EXISTS exports (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	source        TEXT NOT NULL,
	content_hash  TEXT NOT NULL UNIQUE,
	size_bytes    INTEGER NOT NULL,
	conversations INTEGER NOT NULL,
	messages      INTEGER NOT NULL,
	created_at    INTEGER NOT NULL,
	payload       BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_exports_created ON exports(created_at DESC);
CREATE TABLE IF NOT EXISTS reports (
	export_id    TEXT NOT NULL REFERENCES exports(id) ON DELETE CASCADE,
	timezone     TEXT NOT NULL,
	generated_at INTEGER NOT NULL,
	body         BLOB NOT NULL,
	PRIMARY KEY (export_id, timezone)
);
`

// Schema 建表，作为连接池的初始化函数使用
func Schema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("建表失败: %w", err)
	}
	return nil
}

// Repository 是数据访问层的入口，所有表都在同一个数据库文件中
type Repository struct {
	pool   *core.ConnectionPool
	dbPath string
}

// New 创建一个新的 Repository；pool 需要以 Schema 作为初始化函数
func New(pool *core.ConnectionPool, dbPath string) *Repository {
	if dbPath == "" {
		dbPath = DBFile
	}
	return &Repository{
		pool:   pool,
		dbPath: dbPath,
	}
}

func (r *Repository) db() (*sql.DB, error) {
	return r.pool.GetConnection(r.dbPath)
}
