package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

const (
	// PathEnv 指定配置文件路径。
	PathEnv     = "KRAKEN_REPORT_CONFIG"
	DefaultPath = "configs/config.yaml"
)

// ResolvePath returns explicit, then $KRAKEN_REPORT_CONFIG, then the default path.
func ResolvePath(explicit string) string {
	if p := strings.TrimSpace(explicit); p != "" {
		return p
	}
	if p := strings.TrimSpace(os.Getenv(PathEnv)); p != "" {
		return p
	}
	return DefaultPath
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults(make(keySet))
	return &cfg
}

// LoadOrDefault loads path, falling back to Default when the file is absent.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil && os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// Load 读取 path 及其 include 链；被 include 的文件先合并，path 本身最后覆盖。
func Load(path string) (*Config, error) {
	layers, err := newIncludeWalker().walk(path)
	if err != nil {
		return nil, err
	}
	v := viper.New()
	v.SetConfigType("yaml")
	for _, layer := range layers {
		if err := v.MergeConfigMap(layer.settings); err != nil {
			return nil, fmt.Errorf("merge config %s: %w", layer.file, err)
		}
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "toml"
		dc.WeaklyTypedInput = true
	})
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	keys := make(keySet)
	markKeys("", v.AllSettings(), keys)
	cfg.applyDefaults(keys)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// configLayer 是一个已读取的配置文件。
type configLayer struct {
	file     string
	settings map[string]any
}

// includeWalker 深度优先展开 include，active 用于检测环。
type includeWalker struct {
	active map[string]bool
	done   map[string]bool
	layers []configLayer
}

func newIncludeWalker() *includeWalker {
	return &includeWalker{active: map[string]bool{}, done: map[string]bool{}}
}

func (w *includeWalker) walk(path string) ([]configLayer, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("config path cannot be empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if err := w.visit(abs); err != nil {
		return nil, err
	}
	return w.layers, nil
}

func (w *includeWalker) visit(file string) error {
	file = filepath.Clean(file)
	switch {
	case w.active[file]:
		return fmt.Errorf("include cycle detected: %s", file)
	case w.done[file]:
		return nil
	}
	w.active[file] = true
	defer delete(w.active, file)

	v := viper.New()
	v.SetConfigFile(file)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", file, err)
	}
	includes, err := includeList(v.Get("include"))
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}
	for _, inc := range includes {
		if !filepath.IsAbs(inc) {
			inc = filepath.Join(filepath.Dir(file), inc)
		}
		if err := w.visit(inc); err != nil {
			return err
		}
	}
	w.done[file] = true
	w.layers = append(w.layers, configLayer{file: file, settings: v.AllSettings()})
	return nil
}

func includeList(raw any) ([]string, error) {
	if raw == nil {
		return nil, nil
	}
	if _, ok := raw.(string); ok {
		return nil, fmt.Errorf("include must be a string array")
	}
	items, err := cast.ToSliceE(raw)
	if err != nil {
		return nil, fmt.Errorf("include must be a string array")
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		str, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("include only supports strings")
		}
		if str = strings.TrimSpace(str); str != "" {
			out = append(out, str)
		}
	}
	return out, nil
}

// markKeys 记录配置文件中出现过的叶子路径（小写、点分隔）。
func markKeys(prefix string, node any, keys keySet) {
	switch val := node.(type) {
	case map[string]any:
		for k, child := range val {
			markKeys(joinKey(prefix, k), child, keys)
		}
	case map[any]any:
		for k, child := range val {
			if name, ok := k.(string); ok {
				markKeys(joinKey(prefix, name), child, keys)
			}
		}
	default:
		if prefix != "" {
			keys.mark(prefix)
		}
	}
}

func joinKey(prefix, key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	if prefix == "" || key == "" {
		return prefix + key
	}
	return prefix + "." + key
}
