package core

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
)

func TestConnectionPool(t *testing.T) {
	tmpDir := t.TempDir()

	initCalls := 0
	pool := NewConnectionPool(tmpDir, func(db *sql.DB) error {
		initCalls++
		_, err := db.Exec("CREATE TABLE IF NOT EXISTS test_table (id INTEGER PRIMARY KEY, content TEXT)")
		return err
	})
	defer pool.CloseAll()

	// 1. 相对路径解析到工作目录下，文件不存在时自动创建
	db, err := pool.GetConnection("test.db")
	if err != nil {
		t.Fatalf("GetConnection 失败: %v", err)
	}
	if initCalls != 1 {
		t.Errorf("初始化函数应执行 1 次, 实际 %d 次", initCalls)
	}

	// 2. 写入并查询
	if _, err := db.Exec("INSERT INTO test_table (content) VALUES (?)", "hello world"); err != nil {
		t.Fatalf("插入失败: %v", err)
	}
	var result string
	if err := db.QueryRow("SELECT content FROM test_table LIMIT 1").Scan(&result); err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if result != "hello world" {
		t.Errorf("期望 'hello world', 实际得到 '%s'", result)
	}

	// 3. 连接复用（绝对路径与相对路径指向同一个连接）
	db2, err := pool.GetConnection(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("获取缓存连接失败: %v", err)
	}
	if db != db2 {
		t.Error("对于相同的路径，连接池应该返回相同的实例")
	}
	if initCalls != 1 {
		t.Errorf("复用连接不应再次初始化, 实际 %d 次", initCalls)
	}

	// 4. 关闭连接
	if err := pool.CloseConnection("test.db"); err != nil {
		t.Fatalf("CloseConnection 失败: %v", err)
	}
	if err := db.Ping(); err == nil {
		t.Error("数据库连接应该已关闭")
	}
}

func TestConnectionPool_InitFailure(t *testing.T) {
	pool := NewConnectionPool(t.TempDir(), func(db *sql.DB) error {
		return errors.New("boom")
	})
	defer pool.CloseAll()

	if _, err := pool.GetConnection("broken.db"); err == nil {
		t.Fatal("初始化失败时应返回错误")
	}
}
