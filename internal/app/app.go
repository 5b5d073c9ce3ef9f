package app

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"krakenreport/internal/config"
	"krakenreport/internal/loader"
	"krakenreport/internal/logger"
	"krakenreport/internal/report"
	"krakenreport/internal/reporter"
	"krakenreport/internal/storage"
	"krakenreport/internal/store/gormstore"
	"krakenreport/internal/store/steplog"
	reportshttp "krakenreport/internal/transport/http/reports"
	"krakenreport/internal/types"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// App 负责应用级编排：准备运行目录、合并设备日志生成报告、提供浏览服务。
type App struct {
	cfg      *config.Config
	reporter *reporter.Facade
	loader   *loader.DeviceLogLoader
	storage  *storage.FileSystem
	runs     *gormstore.RunStore
	steps    *steplog.Store
	newHTTP  func() (*reportshttp.Server, error)
	closers  []func() error
	Summary  *StartupSummary
}

// NewApp 根据配置构建应用对象（不启动）
func NewApp(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)
	return buildAppWithWire(context.Background(), cfg)
}

// Create prepares the folder of a new execution and writes its device list.
// An empty executionID falls back to report.execution_id, then to a fresh uuid.
func (a *App) Create(ctx context.Context, executionID string, devices []*types.Device) (string, error) {
	if a == nil || a.reporter == nil {
		return "", fmt.Errorf("app not initialized")
	}
	executionID = a.executionID(executionID)
	if types.CountDevices(devices) == 0 {
		return "", fmt.Errorf("execution %s: no devices", executionID)
	}
	run := &types.Run{ExecutionID: executionID, Devices: devices}
	if err := a.reporter.CreateReport(ctx, run); err != nil {
		return "", err
	}
	logger.Infof("✓ execution %s created with %d devices (%s engine)", executionID, types.CountDevices(devices), a.reporter.Engine())
	return executionID, nil
}

// Generate loads the execution's device list, device logs and tag manifest, then saves the report.
func (a *App) Generate(ctx context.Context, executionID string) (*types.ConsolidatedReport, error) {
	if a == nil || a.reporter == nil {
		return nil, fmt.Errorf("app not initialized")
	}
	executionID = strings.TrimSpace(executionID)
	if executionID == "" {
		executionID = strings.TrimSpace(a.cfg.Report.ExecutionID)
	}
	if executionID == "" {
		return nil, fmt.Errorf("execution id required")
	}
	devicesPath, err := a.storage.Path(path.Join(executionID, a.cfg.Report.DevicesFile))
	if err != nil {
		return nil, err
	}
	devices, err := loader.LoadDevices(devicesPath)
	if err != nil {
		return nil, fmt.Errorf("execution %s: %w", executionID, err)
	}
	logs, err := a.loader.LoadAll(ctx, executionID, devices)
	if err != nil {
		var perr *loader.ParseError
		if errors.As(err, &perr) {
			logger.Errorf("execution %s: device %s log rejected: %v", executionID, perr.DeviceID, perr.Err)
		}
		return nil, err
	}
	manifest, err := loader.LoadManifest(a.cfg.Report.ManifestPath)
	if err != nil {
		return nil, err
	}
	run := &types.Run{
		ExecutionID: executionID,
		Devices:     devices,
		Logs:        logs,
		Manifest:    manifest,
	}
	r, err := a.reporter.SaveReport(ctx, run)
	if err != nil {
		return nil, err
	}
	if payload, err := report.Encode(r, true); err == nil {
		logger.DumpPayload("report", executionID, string(payload))
	}
	return r, nil
}

// Serve runs the report browsing server until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	if a == nil || a.newHTTP == nil {
		return fmt.Errorf("app not initialized")
	}
	if a.Summary != nil {
		a.Summary.Print()
	}
	srv, err := a.newHTTP()
	if err != nil {
		return err
	}
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Infof("reports http listening on %s", srv.Addr())
		if err := srv.Start(ctx); err != nil {
			return fmt.Errorf("reports http server error: %w", err)
		}
		return nil
	})
	return group.Wait()
}

// Close 释放数据库连接。
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) executionID(explicit string) string {
	if id := strings.TrimSpace(explicit); id != "" {
		return id
	}
	if id := strings.TrimSpace(a.cfg.Report.ExecutionID); id != "" {
		return id
	}
	return uuid.NewString()
}
