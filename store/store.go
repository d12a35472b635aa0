// Package store 将工程快照保存到 SQLite 数据库。
package store

import (
	"accircuit"
	"accircuit/savefile"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// ErrNoSnapshot 快照不存在
var ErrNoSnapshot = errors.New("快照不存在")

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id       TEXT PRIMARY KEY,
	name     TEXT NOT NULL,
	saved_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_name ON snapshots(name, saved_at);
CREATE TABLE IF NOT EXISTS components (
	snapshot_id TEXT NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
	seq         INTEGER NOT NULL,
	label       TEXT NOT NULL,
	kind        TEXT NOT NULL,
	value       REAL NOT NULL,
	PRIMARY KEY (snapshot_id, seq)
);
CREATE TABLE IF NOT EXISTS circuits (
	snapshot_id TEXT NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
	seq         INTEGER NOT NULL,
	label       TEXT NOT NULL,
	connection  TEXT NOT NULL,
	frequency   REAL NOT NULL,
	PRIMARY KEY (snapshot_id, seq)
);
CREATE TABLE IF NOT EXISTS members (
	snapshot_id TEXT NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
	circuit_seq INTEGER NOT NULL,
	seq         INTEGER NOT NULL,
	label       TEXT NOT NULL,
	PRIMARY KEY (snapshot_id, circuit_seq, seq)
);
`

// Snapshot 快照摘要
type Snapshot struct {
	ID         string
	Name       string
	SavedAt    time.Time
	Components int
	Circuits   int
}

// Store 快照数据库
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open 打开或创建数据库
func Open(ctx context.Context, path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("创建数据库目录失败: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}
	// SQLite 单写者
	db.SetMaxOpenConns(1)
	for _, stmt := range []string{"PRAGMA foreign_keys = ON", schema} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("初始化数据库失败: %w", err)
		}
	}
	logger.Debug("快照数据库已打开", zap.String("path", path))
	return &Store{db: db, logger: logger}, nil
}

// Close 关闭数据库
func (s *Store) Close() error {
	return s.db.Close()
}

// Save 保存工程快照，返回快照 ID
func (s *Store) Save(ctx context.Context, name string, p *accircuit.Project) (string, error) {
	return s.SaveDocument(ctx, name, p.Document())
}

// SaveDocument 保存存档内容
func (s *Store) SaveDocument(ctx context.Context, name string, doc *savefile.Document) (string, error) {
	if name == "" {
		return "", fmt.Errorf("快照名称不能为空")
	}
	id := uuid.NewString()
	savedAt := doc.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshots (id, name, saved_at) VALUES (?, ?, ?)`,
		id, name, savedAt.UnixNano()); err != nil {
		return "", fmt.Errorf("写入快照失败: %w", err)
	}
	for i, rec := range doc.Components {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO components (snapshot_id, seq, label, kind, value) VALUES (?, ?, ?, ?, ?)`,
			id, i, rec.Label, rec.Kind, rec.Value); err != nil {
			return "", fmt.Errorf("写入元件 %s 失败: %w", rec.Label, err)
		}
	}
	for i, rec := range doc.Circuits {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO circuits (snapshot_id, seq, label, connection, frequency) VALUES (?, ?, ?, ?, ?)`,
			id, i, rec.Label, rec.Connection, rec.Frequency); err != nil {
			return "", fmt.Errorf("写入电路 %s 失败: %w", rec.Label, err)
		}
		for j, member := range rec.Members {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO members (snapshot_id, circuit_seq, seq, label) VALUES (?, ?, ?, ?)`,
				id, i, j, member); err != nil {
				return "", fmt.Errorf("写入电路 %s 成员失败: %w", rec.Label, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	s.logger.Info("快照已保存",
		zap.String("id", id),
		zap.String("name", name),
		zap.Int("components", len(doc.Components)),
		zap.Int("circuits", len(doc.Circuits)))
	return id, nil
}

// Load 读取快照并重建工程，ref 为快照 ID 或名称(取最新一次)
func (s *Store) Load(ctx context.Context, ref string) (*accircuit.Project, error) {
	doc, err := s.LoadDocument(ctx, ref)
	if err != nil {
		return nil, err
	}
	return accircuit.FromDocument(doc)
}

// resolve 将快照 ID 或名称解析为 ID，名称取最新一次
func (s *Store) resolve(ctx context.Context, ref string) (id string, savedAt int64, err error) {
	err = s.db.QueryRowContext(ctx,
		`SELECT id, saved_at FROM snapshots WHERE id = ? OR name = ?
		 ORDER BY (id = ?) DESC, saved_at DESC, rowid DESC LIMIT 1`,
		ref, ref, ref).Scan(&id, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", 0, fmt.Errorf("%w: %s", ErrNoSnapshot, ref)
	}
	return id, savedAt, err
}

// LoadDocument 读取快照内容
func (s *Store) LoadDocument(ctx context.Context, ref string) (*savefile.Document, error) {
	id, savedAt, err := s.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	doc := &savefile.Document{SavedAt: time.Unix(0, savedAt)}

	rows, err := s.db.QueryContext(ctx,
		`SELECT label, kind, value FROM components WHERE snapshot_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var rec savefile.ComponentRecord
		if err := rows.Scan(&rec.Label, &rec.Kind, &rec.Value); err != nil {
			rows.Close()
			return nil, err
		}
		doc.Components = append(doc.Components, rec)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx,
		`SELECT seq, label, connection, frequency FROM circuits WHERE snapshot_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	var seqs []int
	for rows.Next() {
		var seq int
		var rec savefile.CircuitRecord
		if err := rows.Scan(&seq, &rec.Label, &rec.Connection, &rec.Frequency); err != nil {
			rows.Close()
			return nil, err
		}
		rec.Members = []string{}
		seqs = append(seqs, seq)
		doc.Circuits = append(doc.Circuits, rec)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	index := make(map[int]int, len(seqs))
	for i, seq := range seqs {
		index[seq] = i
	}
	rows, err = s.db.QueryContext(ctx,
		`SELECT circuit_seq, label FROM members WHERE snapshot_id = ? ORDER BY circuit_seq, seq`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var seq int
		var label string
		if err := rows.Scan(&seq, &label); err != nil {
			return nil, err
		}
		if i, ok := index[seq]; ok {
			doc.Circuits[i].Members = append(doc.Circuits[i].Members, label)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	s.logger.Debug("快照已读取", zap.String("id", id), zap.String("ref", ref))
	return doc, nil
}

// List 列出全部快照，最新的在前
func (s *Store) List(ctx context.Context) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.name, s.saved_at,
			(SELECT COUNT(*) FROM components c WHERE c.snapshot_id = s.id),
			(SELECT COUNT(*) FROM circuits r WHERE r.snapshot_id = s.id)
		FROM snapshots s
		ORDER BY s.saved_at DESC, s.rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Snapshot
	for rows.Next() {
		var snap Snapshot
		var savedAt int64
		if err := rows.Scan(&snap.ID, &snap.Name, &savedAt, &snap.Components, &snap.Circuits); err != nil {
			return nil, err
		}
		snap.SavedAt = time.Unix(0, savedAt)
		list = append(list, snap)
	}
	return list, rows.Err()
}

// Delete 删除快照，ref 与 Load 相同，按名称时只删除最新一次
func (s *Store) Delete(ctx context.Context, ref string) error {
	id, _, err := s.resolve(ctx, ref)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNoSnapshot, id)
	}
	s.logger.Info("快照已删除", zap.String("id", id), zap.String("ref", ref))
	return nil
}
