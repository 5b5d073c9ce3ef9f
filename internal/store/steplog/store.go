// Package steplog 把每次运行合并后的步骤写入 SQLite，便于按失败步骤检索。
package steplog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"krakenreport/internal/store"
	"krakenreport/internal/store/model"
	"krakenreport/internal/types"

	_ "modernc.org/sqlite"
)

// Store 是 step 索引，使用 database/sql + modernc sqlite。
type Store struct {
	mu     sync.Mutex
	db     *sql.DB
	ownsDB bool
}

var _ store.StepIndex = (*Store)(nil)

func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("step index path 不能为空")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(2)
	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, ownsDB: true}, nil
}

// NewFromDB 复用外部连接，Close 不会关闭它。
func NewFromDB(db *sql.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("external db 不能为空")
	}
	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func ensureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS step_index (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			execution_id TEXT NOT NULL,
			feature_id TEXT NOT NULL,
			feature_name TEXT NOT NULL,
			device_id TEXT NOT NULL,
			device_model TEXT NOT NULL,
			position INTEGER NOT NULL,
			keyword TEXT,
			name TEXT NOT NULL,
			status TEXT NOT NULL,
			duration INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_step_index_exec ON step_index(execution_id, feature_id, device_id, position)`,
		`CREATE INDEX IF NOT EXISTS idx_step_index_status ON step_index(execution_id, status)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("init step index schema: %w", err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	var err error
	if s.ownsDB {
		err = s.db.Close()
	}
	s.db = nil
	return err
}

func (s *Store) handle() (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, fmt.Errorf("step index 已关闭")
	}
	return s.db, nil
}

// Record replaces every indexed step of executionID with the steps of r.
func (s *Store) Record(ctx context.Context, executionID string, r *types.ConsolidatedReport) error {
	if r == nil {
		return nil
	}
	db, err := s.handle()
	if err != nil {
		return err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM step_index WHERE execution_id = ?`, executionID); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO step_index
		(execution_id, feature_id, feature_name, device_id, device_model, position, keyword, name, status, duration)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, f := range r.OrderedFeatures() {
		for _, deviceID := range f.DeviceOrder() {
			for i, step := range f.Devices[deviceID] {
				deviceModel := step.DeviceModel
				if deviceModel == "" {
					deviceModel = types.UnknownModel
				}
				if _, err := stmt.ExecContext(ctx,
					executionID, f.ID, f.Name, deviceID, deviceModel, i,
					step.Keyword, step.Name, string(step.Status), step.DurationNanos,
				); err != nil {
					return fmt.Errorf("index step %s/%s#%d: %w", f.ID, deviceID, i, err)
				}
			}
		}
	}
	return tx.Commit()
}

// Failures lists the failed steps of executionID in feature, device, position order.
func (s *Store) Failures(ctx context.Context, executionID string) ([]model.StepRow, error) {
	return s.query(ctx, `SELECT execution_id, feature_id, feature_name, device_id, device_model, position, keyword, name, status, duration
		FROM step_index WHERE execution_id = ? AND status = ? ORDER BY id`, executionID, string(types.StatusFailed))
}

// Steps lists the indexed steps of one feature.
func (s *Store) Steps(ctx context.Context, executionID, featureID string) ([]model.StepRow, error) {
	return s.query(ctx, `SELECT execution_id, feature_id, feature_name, device_id, device_model, position, keyword, name, status, duration
		FROM step_index WHERE execution_id = ? AND feature_id = ? ORDER BY id`, executionID, featureID)
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]model.StepRow, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.StepRow
	for rows.Next() {
		var (
			row     model.StepRow
			keyword sql.NullString
		)
		if err := rows.Scan(&row.ExecutionID, &row.FeatureID, &row.FeatureName, &row.DeviceID, &row.DeviceModel,
			&row.Position, &keyword, &row.Name, &row.Status, &row.Duration); err != nil {
			return nil, err
		}
		row.Keyword = keyword.String
		out = append(out, row)
	}
	return out, rows.Err()
}
