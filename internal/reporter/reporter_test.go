package reporter

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"krakenreport/internal/format"
	"krakenreport/internal/report"
	"krakenreport/internal/storage"
	"krakenreport/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) Record(ctx context.Context, executionID string, r *types.ConsolidatedReport) error {
	args := m.Called(ctx, executionID, r)
	return args.Error(0)
}

type MockFileFormatter struct {
	mock.Mock
}

func (m *MockFileFormatter) FormatToFile(ctx context.Context, path string, r *types.ConsolidatedReport) error {
	args := m.Called(ctx, path, r)
	if err := args.Error(0); err != nil {
		return err
	}
	return os.WriteFile(path, []byte("%PDF-1.4"), 0o644)
}

type MockReporter struct {
	mock.Mock
}

func (m *MockReporter) CreateReport(ctx context.Context, run *types.Run) error {
	return m.Called(ctx, run).Error(0)
}

func (m *MockReporter) SaveReport(ctx context.Context, run *types.Run) (*types.ConsolidatedReport, error) {
	args := m.Called(ctx, run)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ConsolidatedReport), args.Error(1)
}

func sampleRun() *types.Run {
	return &types.Run{
		ExecutionID: "exec-1",
		Devices: []*types.Device{
			{ID: "emulator-5554", Model: "Pixel 7", Type: types.DeviceAndroid},
			{ID: "emulator-5556", Model: "Galaxy S22", Type: types.DeviceAndroid},
		},
		Logs: []types.DeviceLog{
			{{Key: "chat", Name: "Chat", Steps: []types.StepRecord{
				{Keyword: "Then", Name: `I send a signal to user 2 containing "ping"`, Status: types.StatusPassed},
			}}},
			{{Key: "chat", Name: "Chat", Steps: []types.StepRecord{
				{Keyword: "Then", Name: `I wait for a signal containing "ping"`, Status: types.StatusPassed},
				{Keyword: "Then", Name: "I read the message", Status: types.StatusFailed},
			}}},
		},
	}
}

func newEngines(t *testing.T, opts ...ModernOption) (*ModernEngine, *LegacyEngine, string) {
	t.Helper()
	root := t.TempDir()
	fs := storage.NewFileSystem(root)
	html, err := format.NewHTMLFormatter("")
	require.NoError(t, err)
	gen := report.NewGenerator(nil)
	return NewModernEngine(gen, fs, html, opts...), NewLegacyEngine(gen, fs, html), root
}

func TestModernEngineWritesArtifacts(t *testing.T) {
	modern, _, root := newEngines(t, WithGraphFormatter(format.NewGraphFormatter("")))

	ctx := context.Background()
	run := sampleRun()
	require.NoError(t, modern.CreateReport(ctx, run))
	r, err := modern.SaveReport(ctx, run)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Metrics.FailedScenarios)

	for _, rel := range []string{
		"devices.json",
		"report.json",
		"index.html",
		"graph.html",
		"emulator-5554/feature_report.html",
		"emulator-5556/features_report/chat.html",
	} {
		assert.FileExists(t, filepath.Join(root, "exec-1", rel))
	}

	raw, err := os.ReadFile(filepath.Join(root, "exec-1", "report.json"))
	require.NoError(t, err)
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Contains(t, doc, "featuresReport")
	assert.Contains(t, doc, "graph")
}

func TestFacadeFeedsRecorders(t *testing.T) {
	ok, failing := new(MockRecorder), new(MockRecorder)
	ok.On("Record", mock.Anything, "exec-1", mock.AnythingOfType("*types.ConsolidatedReport")).Return(nil).Once()
	failing.On("Record", mock.Anything, "exec-1", mock.Anything).Return(errors.New("db locked")).Once()
	_, legacy, _ := newEngines(t)

	f := NewFacade(nil, legacy, false, ok, nil, failing)
	r, err := f.SaveReport(context.Background(), sampleRun())
	require.NoError(t, err)
	assert.Equal(t, 2, r.Metrics.TotalScenarios)
	ok.AssertExpectations(t)
	failing.AssertExpectations(t)
}

func TestModernEngineUsesFileFormatter(t *testing.T) {
	pdf := new(MockFileFormatter)
	modern, _, root := newEngines(t, WithFileFormatter(pdf))
	target := filepath.Join(root, "exec-1", "index.pdf")
	pdf.On("FormatToFile", mock.Anything, target, mock.Anything).Return(nil).Once()

	require.NoError(t, os.MkdirAll(filepath.Join(root, "exec-1"), 0o755))
	_, err := modern.SaveReport(context.Background(), sampleRun())
	require.NoError(t, err)
	assert.FileExists(t, target)
	assert.NoFileExists(t, filepath.Join(root, "exec-1", "index.html"))
	pdf.AssertExpectations(t)
}

func TestModernEnginePropagatesGeneratorErrors(t *testing.T) {
	modern, _, _ := newEngines(t)
	_, err := modern.SaveReport(context.Background(), &types.Run{Logs: []types.DeviceLog{{}}})
	assert.Error(t, err)
}

func TestLegacyEngineLayout(t *testing.T) {
	_, legacy, root := newEngines(t)
	ctx := context.Background()
	run := sampleRun()

	require.NoError(t, legacy.CreateReport(ctx, run))
	assert.DirExists(t, filepath.Join(root, "exec-1", "assets", "js"))

	_, err := legacy.SaveReport(ctx, run)
	require.NoError(t, err)
	raw, err := os.ReadFile(filepath.Join(root, "exec-1", "assets", "js", "data.json"))
	require.NoError(t, err)
	var graphs []types.FeatureGraph
	require.NoError(t, json.Unmarshal(raw, &graphs))
	require.Len(t, graphs, 1)
	assert.Equal(t, "Chat", graphs[0].Name)
	assert.FileExists(t, filepath.Join(root, "exec-1", "index.html"))
	assert.NoFileExists(t, filepath.Join(root, "exec-1", "report.json"))

	assert.Error(t, legacy.CreateReport(ctx, nil))
}

func TestFacadeDispatch(t *testing.T) {
	run := sampleRun()
	ctx := context.Background()

	modern, legacy := new(MockReporter), new(MockReporter)
	modern.On("CreateReport", ctx, run).Return(nil).Once()
	modern.On("SaveReport", ctx, run).Return(&types.ConsolidatedReport{}, nil).Once()

	f := NewFacade(modern, legacy, true)
	assert.Equal(t, EngineModern, f.Engine())
	require.NoError(t, f.CreateReport(ctx, run))
	_, err := f.SaveReport(ctx, run)
	require.NoError(t, err)
	modern.AssertExpectations(t)
	legacy.AssertNotCalled(t, "CreateReport", mock.Anything, mock.Anything)

	rec := new(MockRecorder)
	legacy.On("SaveReport", ctx, run).Return(nil, errors.New("boom")).Once()
	f = NewFacade(modern, legacy, false, rec)
	assert.Equal(t, EngineLegacy, f.Engine())
	_, err = f.SaveReport(ctx, run)
	assert.EqualError(t, err, "boom")
	rec.AssertNotCalled(t, "Record", mock.Anything, mock.Anything, mock.Anything)
}

func TestUseModern(t *testing.T) {
	t.Setenv(NewReporterEnv, "")
	assert.True(t, UseModern("Modern"))
	assert.False(t, UseModern("legacy"))
	assert.False(t, UseModern(""))

	t.Setenv(NewReporterEnv, "1")
	assert.True(t, UseModern("legacy"))
}

func TestSafeName(t *testing.T) {
	assert.Equal(t, "chat", safeName("chat"))
	assert.Equal(t, "a_b", safeName("a/b"))
	assert.Equal(t, "_", safeName("../"))
	assert.Equal(t, "unknown-user3", safeName("unknown-user3"))
}
