// Package chart interprets fenced blocks tagged "chart" as chart
// descriptors. Interpretation is total: anything that is not a valid
// descriptor signals fallback so the caller can render the raw text instead.
package chart

import (
	"encoding/json"
	"sync"

	"github.com/kaptinlin/jsonschema"
)

// Descriptor is a validated chart specification.
type Descriptor struct {
	Type     string    `json:"type"` // "bar", "line" or "doughnut"
	Title    string    `json:"title,omitempty"`
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Dataset is one named series of values, index-aligned with Labels.
type Dataset struct {
	Label string    `json:"label"`
	Data  []float64 `json:"data"`
}

const descriptorSchema = `{
	"type": "object",
	"required": ["type", "labels", "datasets"],
	"properties": {
		"type": {"enum": ["bar", "line", "doughnut"]},
		"title": {"type": "string"},
		"labels": {"type": "array", "items": {"type": "string"}},
		"datasets": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["data"],
				"properties": {
					"label": {"type": "string"},
					"data": {"type": "array", "items": {"type": "number"}}
				}
			}
		}
	}
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.NewCompiler().Compile([]byte(descriptorSchema))
	})
	return schema, schemaErr
}

// Parse attempts a strict JSON parse and schema validation of fenced block
// content. ok is false on any failure, parse error or shape mismatch alike,
// and the caller renders the raw content as preformatted text instead.
func Parse(content string) (*Descriptor, bool) {
	sch, err := compiledSchema()
	if err != nil {
		return nil, false
	}

	var raw any
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, false
	}
	if result := sch.Validate(raw); !result.IsValid() {
		return nil, false
	}

	var d Descriptor
	if err := json.Unmarshal([]byte(content), &d); err != nil {
		return nil, false
	}
	return &d, true
}

// MaxValue returns the largest value across all datasets. Bar widths are
// scaled against it.
func (d *Descriptor) MaxValue() float64 {
	max := 0.0
	for _, ds := range d.Datasets {
		for _, v := range ds.Data {
			if v > max {
				max = v
			}
		}
	}
	return max
}
