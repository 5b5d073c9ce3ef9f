package gormstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"krakenreport/internal/store"
	storemodel "krakenreport/internal/store/model"
	"krakenreport/internal/types"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type runModel = storemodel.ReportRunModel

// RunStore keeps the run history using Gorm + SQLite.
type RunStore struct {
	db     *gorm.DB
	engine string
}

var _ store.RunRepository = (*RunStore)(nil)

// NewRunStore opens (and migrates) the sqlite database at path.
func NewRunStore(path string) (*RunStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("run store: 数据库路径不能为空")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, err
	}
	return NewRunStoreFromDB(db)
}

func NewRunStoreFromDB(db *gorm.DB) (*RunStore, error) {
	if db == nil {
		return nil, fmt.Errorf("gorm db 不能为空")
	}
	if err := db.AutoMigrate(&runModel{}); err != nil {
		return nil, err
	}
	if sqlDB, err := db.DB(); err == nil {
		// HTTP 读与报告写并发，WAL 下保留少量并行。
		sqlDB.SetMaxOpenConns(2)
		sqlDB.SetMaxIdleConns(2)
	}
	return &RunStore{db: db}, nil
}

// WithEngine tags subsequent records with the reporter engine name.
func (s *RunStore) WithEngine(engine string) *RunStore {
	if s == nil {
		return nil
	}
	cp := *s
	cp.engine = engine
	return &cp
}

func (s *RunStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Record upserts the summary of executionID.
func (s *RunStore) Record(ctx context.Context, executionID string, r *types.ConsolidatedReport) error {
	if s == nil || s.db == nil || r == nil {
		return nil
	}
	executionID = strings.TrimSpace(executionID)
	if executionID == "" {
		return fmt.Errorf("run store: execution id 不能为空")
	}
	m, err := newRunModel(executionID, s.engine, r, time.Now())
	if err != nil {
		return err
	}
	updates := clause.Assignments(map[string]interface{}{
		"engine":           gorm.Expr("excluded.engine"),
		"total_devices":    gorm.Expr("excluded.total_devices"),
		"total_scenarios":  gorm.Expr("excluded.total_scenarios"),
		"passed_scenarios": gorm.Expr("excluded.passed_scenarios"),
		"failed_scenarios": gorm.Expr("excluded.failed_scenarios"),
		"feature_count":    gorm.Expr("excluded.feature_count"),
		"devices_json":     gorm.Expr("excluded.devices_json"),
		"graph_json":       gorm.Expr("excluded.graph_json"),
		"report_json":      gorm.Expr("excluded.report_json"),
		"updated_at":       gorm.Expr("excluded.updated_at"),
	})
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "execution_id"}},
		DoUpdates: updates,
	}).Create(&m).Error
}

func (s *RunStore) FindByExecution(ctx context.Context, executionID string) (*runModel, error) {
	var m runModel
	err := s.db.WithContext(ctx).Where("execution_id = ?", executionID).Take(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	hydrate(&m)
	return &m, nil
}

// ListRecent returns the latest runs first, without the heavy JSON columns.
func (s *RunStore) ListRecent(ctx context.Context, limit int) ([]runModel, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []runModel
	err := s.db.WithContext(ctx).
		Omit("report_json", "graph_json").
		Order("updated_at DESC").Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for i := range rows {
		hydrate(&rows[i])
	}
	return rows, nil
}

func newRunModel(executionID, engine string, r *types.ConsolidatedReport, now time.Time) (runModel, error) {
	devices, err := json.Marshal(r.Devices)
	if err != nil {
		return runModel{}, err
	}
	graph, err := json.Marshal(r.Graph)
	if err != nil {
		return runModel{}, err
	}
	full, err := json.Marshal(r)
	if err != nil {
		return runModel{}, err
	}
	ts := now.Unix()
	return runModel{
		ExecutionID:     executionID,
		Engine:          engine,
		TotalDevices:    r.Metrics.TotalDevices,
		TotalScenarios:  r.Metrics.TotalScenarios,
		PassedScenarios: r.Metrics.PassedScenarios,
		FailedScenarios: r.Metrics.FailedScenarios,
		FeatureCount:    len(r.FeaturesReport),
		DevicesJSON:     datatypes.JSON(devices),
		GraphJSON:       datatypes.JSON(graph),
		ReportJSON:      datatypes.JSON(full),
		CreatedAtUnix:   ts,
		UpdatedAtUnix:   ts,
	}, nil
}

func hydrate(m *runModel) {
	if m.CreatedAtUnix > 0 {
		m.CreatedAt = time.Unix(m.CreatedAtUnix, 0)
	}
	if m.UpdatedAtUnix > 0 {
		m.UpdatedAt = time.Unix(m.UpdatedAtUnix, 0)
	}
}
