package source

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// AttributeSet holds the previously-extracted structure, utility, and
// layout attribute maps, keyed by "property_<parcel>". Loaded once per
// batch run; read-only afterwards.
type AttributeSet struct {
	Structure map[string]map[string]any
	Utility   map[string]map[string]any
	Layout    map[string]map[string]any
}

// PropertyKey is the attribute-map key for a parcel.
func PropertyKey(parcelID string) string {
	return "property_" + parcelID
}

// LoadAttributes reads structure_data.json, utility_data.json, and
// layout_data.json from dir. A missing file leaves that map empty; the
// attributes are optional enrichment, not required inputs.
func LoadAttributes(dir string) (*AttributeSet, error) {
	set := &AttributeSet{}
	for _, spec := range []struct {
		file   string
		target *map[string]map[string]any
	}{
		{"structure_data.json", &set.Structure},
		{"utility_data.json", &set.Utility},
		{"layout_data.json", &set.Layout},
	} {
		path := filepath.Join(dir, spec.file)
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			*spec.target = map[string]map[string]any{}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("source: read %s: %w", spec.file, err)
		}
		if err := json.Unmarshal(data, spec.target); err != nil {
			return nil, fmt.Errorf("source: parse %s: %w", spec.file, err)
		}
	}
	return set, nil
}

// LayoutTemplate returns the first layout entry recorded for the parcel,
// or nil when none exists. The template is copied so callers can stamp
// their own space_type without aliasing the shared map.
func (a *AttributeSet) LayoutTemplate(parcelID string) map[string]any {
	entry, ok := a.Layout[PropertyKey(parcelID)]
	if !ok {
		return nil
	}
	layouts, ok := entry["layouts"].([]any)
	if !ok || len(layouts) == 0 {
		return nil
	}
	first, ok := layouts[0].(map[string]any)
	if !ok {
		return nil
	}
	copied := make(map[string]any, len(first))
	for k, v := range first {
		copied[k] = v
	}
	return copied
}
