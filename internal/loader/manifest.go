package loader

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"krakenreport/internal/types"

	"gopkg.in/yaml.v3"
)

// manifestFile 映射 tag manifest 文件（YAML 或 JSON）。
type manifestFile struct {
	Scenarios []types.ScenarioTag `yaml:"scenarios"`
}

// LoadManifest reads the scenario tag manifest. An empty path yields no manifest.
func LoadManifest(path string) ([]types.ScenarioTag, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tag manifest failed: %w", err)
	}
	return ParseManifest(raw)
}

func ParseManifest(raw []byte) ([]types.ScenarioTag, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	var cfg manifestFile
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse tag manifest failed: %w", err)
	}
	out := make([]types.ScenarioTag, 0, len(cfg.Scenarios))
	for _, sc := range cfg.Scenarios {
		sc.Name = strings.TrimSpace(sc.Name)
		tags := make([]string, 0, len(sc.Tags))
		for _, t := range sc.Tags {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
		sc.Tags = tags
		out = append(out, sc)
	}
	return out, nil
}
