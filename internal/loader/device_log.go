// Package loader 读取一次运行在磁盘上的输入：设备列表、各设备的 report.json 以及 tag manifest。
package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"krakenreport/internal/logger"
	"krakenreport/internal/types"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultReportFile  = "report.json"
	DefaultDevicesFile = "devices.json"
	defaultConcurrency = 4
)

// ParseError reports a structurally invalid device log.
type ParseError struct {
	DeviceID string
	Path     string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("device %s: invalid report %s: %v", e.DeviceID, e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// DeviceLogLoader reads <root>/<executionId>/<deviceId>/<reportFile>.
type DeviceLogLoader struct {
	root        string
	reportFile  string
	concurrency int
}

type Option func(*DeviceLogLoader)

func WithReportFile(name string) Option {
	return func(l *DeviceLogLoader) {
		if name = strings.TrimSpace(name); name != "" {
			l.reportFile = name
		}
	}
}

func WithConcurrency(n int) Option {
	return func(l *DeviceLogLoader) {
		if n > 0 {
			l.concurrency = n
		}
	}
}

func NewDeviceLogLoader(root string, opts ...Option) *DeviceLogLoader {
	l := &DeviceLogLoader{
		root:        root,
		reportFile:  DefaultReportFile,
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Path returns the report location of device in the given execution.
func (l *DeviceLogLoader) Path(executionID, deviceID string) string {
	return filepath.Join(l.root, executionID, deviceID, l.reportFile)
}

// Load reads one device's log. A missing file is not an error and yields nil.
func (l *DeviceLogLoader) Load(executionID string, device *types.Device) (types.DeviceLog, error) {
	if device == nil {
		return nil, nil
	}
	path := l.Path(executionID, device.ID)
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Debugf("loader: no report for device %s at %s", device.ID, path)
			return nil, nil
		}
		return nil, fmt.Errorf("read report of device %s: %w", device.ID, err)
	}
	log, err := ParseReport(raw)
	if err != nil {
		return nil, &ParseError{DeviceID: device.ID, Path: path, Err: err}
	}
	if log == nil {
		log = types.DeviceLog{}
	}
	return log, nil
}

// LoadAll reads every device log concurrently. The result is indexed like devices.
// The first structural failure cancels the remaining reads and is returned.
func (l *DeviceLogLoader) LoadAll(ctx context.Context, executionID string, devices []*types.Device) ([]types.DeviceLog, error) {
	logs := make([]types.DeviceLog, len(devices))
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(l.concurrency)
	for i, device := range devices {
		if device == nil {
			continue
		}
		i, device := i, device
		group.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			log, err := l.Load(executionID, device)
			if err != nil {
				return err
			}
			logs[i] = log
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return logs, nil
}
