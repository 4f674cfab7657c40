package domain

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ShiftAll is the key used when a grade or fee applies to every shift.
const ShiftAll = "all"

// ShiftValues holds a grade or fee figure per study shift. Source data uses
// two representations for the same field: a plain scalar ("79.5%") or a
// per-shift mapping ({morning: "79.5%", evening: "78%"}). Scalars decode
// under the ShiftAll key.
type ShiftValues map[string]string

func (v *ShiftValues) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var scalar string
		if err := node.Decode(&scalar); err != nil {
			return err
		}
		*v = ShiftValues{ShiftAll: scalar}
		return nil
	case yaml.MappingNode:
		var m map[string]string
		if err := node.Decode(&m); err != nil {
			return err
		}
		*v = m
		return nil
	case 0:
		*v = nil
		return nil
	default:
		return fmt.Errorf("shift values: unsupported yaml node kind %d", node.Kind)
	}
}

func (v *ShiftValues) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*v = nil
		return nil
	}
	if data[0] == '"' {
		var scalar string
		if err := json.Unmarshal(data, &scalar); err != nil {
			return err
		}
		*v = ShiftValues{ShiftAll: scalar}
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("shift values: %w", err)
	}
	*v = m
	return nil
}

// Value returns the figure for a shift, falling back to the scalar form.
func (v ShiftValues) Value(shift string) string {
	if val, ok := v[shift]; ok {
		return val
	}
	return v[ShiftAll]
}

// DepartmentRecord is one structured admissions source record. The record
// source (Postgres, YAML, or XLSX) produces these; the document processor
// turns each into department/admission/fee documents.
type DepartmentRecord struct {
	Name              string      `json:"name" yaml:"name"`
	LocalizedName     string      `json:"localized_name" yaml:"localized_name"`
	College           string      `json:"college,omitempty" yaml:"college,omitempty"`
	MinimumGrade      ShiftValues `json:"minimum_grade,omitempty" yaml:"minimum_grade,omitempty"`
	TuitionFee        ShiftValues `json:"tuition_fee,omitempty" yaml:"tuition_fee,omitempty"`
	Shifts            []string    `json:"shifts,omitempty" yaml:"shifts,omitempty"`
	AdmissionChannels []string    `json:"admission_channels,omitempty" yaml:"admission_channels,omitempty"`
	Description       string      `json:"description,omitempty" yaml:"description,omitempty"`
}
