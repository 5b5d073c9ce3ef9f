package loader

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"krakenreport/internal/types"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"
)

//go:embed schema/cucumber_report.json
var cucumberSchemaJSON string

var (
	schemaOnce     sync.Once
	schemaCompiled *jsonschema.Schema
	schemaErr      error
)

type cucumberFeature struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Elements []cucumberElement `json:"elements"`
}

type cucumberElement struct {
	Name  string         `json:"name"`
	Type  string         `json:"type"`
	Tags  []cucumberTag  `json:"tags"`
	Steps []cucumberStep `json:"steps"`
}

type cucumberTag struct {
	Name string `json:"name"`
}

type cucumberStep struct {
	Keyword    string              `json:"keyword"`
	Name       string              `json:"name"`
	Result     cucumberResult      `json:"result"`
	Embeddings []cucumberEmbedding `json:"embeddings"`
}

type cucumberResult struct {
	Status   string  `json:"status"`
	Duration float64 `json:"duration"`
}

type cucumberEmbedding struct {
	Data     string `json:"data"`
	MimeType string `json:"mime_type"`
}

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("cucumber_report.json", strings.NewReader(cucumberSchemaJSON)); err != nil {
			schemaErr = err
			return
		}
		schemaCompiled, schemaErr = compiler.Compile("cucumber_report.json")
	})
	return schemaCompiled, schemaErr
}

// CheckStructure 用 gjson 做快速结构检查：根节点必须是 feature 对象数组。
func CheckStructure(raw []byte) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return fmt.Errorf("report is empty")
	}
	if !gjson.ValidBytes(raw) {
		return fmt.Errorf("report is not valid json")
	}
	parsed := gjson.ParseBytes(raw)
	if !parsed.IsArray() {
		return fmt.Errorf("report root must be a json array")
	}
	idx := 0
	var structErr error
	parsed.ForEach(func(_, value gjson.Result) bool {
		idx++
		if !value.IsObject() {
			structErr = fmt.Errorf("feature#%d must be an object", idx)
			return false
		}
		if els := value.Get("elements"); els.Exists() && !els.IsArray() {
			structErr = fmt.Errorf("feature#%d elements must be an array", idx)
			return false
		}
		return true
	})
	return structErr
}

// ParseReport validates raw against the report schema and flattens it into feature logs.
// Steps of all elements of a feature are concatenated in element order; hooks are not steps.
func ParseReport(raw []byte) (types.DeviceLog, error) {
	if err := CheckStructure(raw); err != nil {
		return nil, err
	}
	schema, err := compiledSchema()
	if err != nil {
		return nil, fmt.Errorf("compile report schema: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("report schema: %w", err)
	}
	var features []cucumberFeature
	if err := json.Unmarshal(raw, &features); err != nil {
		return nil, err
	}
	out := make(types.DeviceLog, 0, len(features))
	for _, f := range features {
		fl := types.FeatureLog{
			Key:  strings.TrimSpace(f.ID),
			Name: strings.TrimSpace(f.Name),
		}
		for _, el := range f.Elements {
			if name := strings.TrimSpace(el.Name); name != "" {
				fl.ScenarioNames = append(fl.ScenarioNames, name)
			}
			for _, s := range el.Steps {
				fl.Steps = append(fl.Steps, convertStep(s))
			}
		}
		out = append(out, fl)
	}
	return out, nil
}

func convertStep(s cucumberStep) types.StepRecord {
	rec := types.StepRecord{
		Keyword:       s.Keyword,
		Name:          s.Name,
		Status:        types.NormalizeStatus(s.Result.Status),
		DurationNanos: int64(s.Result.Duration),
	}
	for _, emb := range s.Embeddings {
		if emb.Data != "" {
			rec.Screenshot = emb.Data
			break
		}
	}
	return rec
}
