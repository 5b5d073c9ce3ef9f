// Package storage 负责把报告产物写到报告根目录下。
package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"krakenreport/internal/types"
)

const DevicesFile = "devices.json"

// FileSystem writes report artifacts under root. All destinations are relative to root.
type FileSystem struct {
	root string
}

func NewFileSystem(root string) *FileSystem {
	if strings.TrimSpace(root) == "" {
		root = "reports"
	}
	return &FileSystem{root: root}
}

func (fs *FileSystem) Root() string { return fs.root }

// Path resolves destination under root. Destinations escaping root are rejected.
func (fs *FileSystem) Path(destination string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(strings.TrimSpace(destination)))
	if clean == "." || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("storage: invalid destination %q", destination)
	}
	return filepath.Join(fs.root, clean), nil
}

// EnsureFolder creates destination (relative to root) and its parents.
func (fs *FileSystem) EnsureFolder(destination string) error {
	dir, err := fs.Path(destination)
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}

// Save writes content to destination, replacing any previous file.
func (fs *FileSystem) Save(content []byte, destination string) error {
	path, err := fs.Path(destination)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("storage: mkdir %s: %w", filepath.Dir(path), err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return fmt.Errorf("storage: write %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("storage: rename %s: %w", path, err)
	}
	return nil
}

// SaveDeviceList writes <exec>/devices.json with the run's device summaries.
func (fs *FileSystem) SaveDeviceList(run *types.Run) error {
	if run == nil {
		return fmt.Errorf("storage: nil run")
	}
	summaries := types.SummarizeDevices(run.Devices)
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summaries); err != nil {
		return err
	}
	return fs.Save(buf.Bytes(), filepath.Join(run.ExecutionID, DevicesFile))
}
