package prefabs

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ApplyOverrides decodes loosely typed props (from a layout entity) over
// an existing spec. Keys absent from props leave the spec untouched.
func ApplyOverrides[T any](spec *T, props map[string]any) error {
	if spec == nil || len(props) == 0 {
		return nil
	}
	b, err := yaml.Marshal(props)
	if err != nil {
		return fmt.Errorf("prefabs: encode overrides: %w", err)
	}
	if err := yaml.Unmarshal(b, spec); err != nil {
		return fmt.Errorf("prefabs: apply overrides: %w", err)
	}
	return nil
}
