package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"krakenreport/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveCreatesParents(t *testing.T) {
	root := t.TempDir()
	fs := NewFileSystem(root)

	require.NoError(t, fs.Save([]byte("first"), "exec/assets/js/data.json"))
	require.NoError(t, fs.Save([]byte("second"), "exec/assets/js/data.json"))

	raw, err := os.ReadFile(filepath.Join(root, "exec", "assets", "js", "data.json"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(raw))
}

func TestPathRejectsEscapes(t *testing.T) {
	fs := NewFileSystem(t.TempDir())
	for _, dest := range []string{"", "..", "../x", "/etc/passwd", "a/../../b"} {
		_, err := fs.Path(dest)
		assert.Error(t, err, dest)
	}
	p, err := fs.Path("exec/index.html")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(fs.Root(), "exec", "index.html"), p)
}

func TestEnsureFolder(t *testing.T) {
	root := t.TempDir()
	fs := NewFileSystem(root)
	require.NoError(t, fs.EnsureFolder("exec/d1/features_report"))
	info, err := os.Stat(filepath.Join(root, "exec", "d1", "features_report"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestSaveDeviceList(t *testing.T) {
	root := t.TempDir()
	fs := NewFileSystem(root)
	run := &types.Run{
		ExecutionID: "exec",
		Devices: []*types.Device{
			{ID: "emulator-5554", Model: "Pixel 7", SDKVersion: "34", Type: types.DeviceAndroid, ScreenWidth: 1080, ScreenHeight: 2400},
			nil,
			{ID: "web-1", Type: types.DeviceWeb},
		},
	}
	require.NoError(t, fs.SaveDeviceList(run))

	raw, err := os.ReadFile(filepath.Join(root, "exec", DevicesFile))
	require.NoError(t, err)
	var got []map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	require.Len(t, got, 2)
	assert.EqualValues(t, 1, got[0]["user"])
	assert.Equal(t, "34", got[0]["sdk"])
	assert.EqualValues(t, 2400, got[0]["screen_height"])
	assert.EqualValues(t, 3, got[1]["user"])
	assert.Equal(t, "Unknown", got[1]["model"])

	assert.Error(t, fs.SaveDeviceList(nil))
}

func TestDefaultRoot(t *testing.T) {
	assert.Equal(t, "reports", NewFileSystem(" ").Root())
}
