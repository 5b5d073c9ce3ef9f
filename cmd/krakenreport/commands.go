package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"krakenreport/internal/app"
	"krakenreport/internal/config"
	"krakenreport/internal/loader"
	"krakenreport/internal/logger"

	"github.com/spf13/cobra"
)

var (
	devicesFile string
	executionID string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Prepare an execution folder and write its device list",
	Args:  cobra.NoArgs,
	RunE:  runCreate,
}

var generateCmd = &cobra.Command{
	Use:   "generate [executionId]",
	Short: "Merge the device logs of an execution and write the report",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runGenerate,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve generated reports and the run history over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	createCmd.Flags().StringVarP(&devicesFile, "devices", "d", "", "device list JSON (same layout as devices.json)")
	createCmd.Flags().StringVarP(&executionID, "execution", "e", "", "execution id (default: report.execution_id or a new uuid)")
	_ = createCmd.MarkFlagRequired("devices")
}

func runCreate(cmd *cobra.Command, _ []string) error {
	a, cleanup, err := newApp()
	if err != nil {
		return err
	}
	defer cleanup()
	devices, err := loader.LoadDevices(devicesFile)
	if err != nil {
		return err
	}
	id, err := a.Create(cmd.Context(), executionID, devices)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), id)
	return nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	a, cleanup, err := newApp()
	if err != nil {
		return err
	}
	defer cleanup()
	var id string
	if len(args) > 0 {
		id = args[0]
	}
	r, err := a.Generate(cmd.Context(), id)
	if err != nil {
		return err
	}
	m := r.Metrics
	fmt.Fprintf(cmd.OutOrStdout(), "devices=%d scenarios=%d passed=%d failed=%d\n",
		m.TotalDevices, m.TotalScenarios, m.PassedScenarios, m.FailedScenarios)
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, cleanup, err := newApp()
	if err != nil {
		return err
	}
	defer cleanup()

	path := config.ResolvePath(configPath)
	if _, statErr := os.Stat(path); statErr == nil {
		w, err := config.Watch(path)
		if err != nil {
			logger.Warnf("配置热加载未启用: %v", err)
		} else {
			w.Subscribe(config.ApplyLogging)
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.Serve(ctx)
}

func newApp() (*app.App, func(), error) {
	cfg, closeLogs, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("读取配置失败: %w", err)
	}
	a, err := app.NewApp(cfg)
	if err != nil {
		closeLogs()
		return nil, nil, fmt.Errorf("初始化应用失败: %w", err)
	}
	return a, func() {
		if err := a.Close(); err != nil {
			logger.Warnf("关闭失败: %v", err)
		}
		closeLogs()
	}, nil
}
