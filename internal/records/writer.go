package records

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Writer persists entity records as individual JSON files under
// <DataDir>/<parcelID>/.
type Writer struct {
	DataDir string
}

// ParcelDir is the output directory for one parcel.
func (w Writer) ParcelDir(parcelID string) string {
	return filepath.Join(w.DataDir, parcelID)
}

// Write marshals v with two-space indentation into
// <DataDir>/<parcelID>/<name>.json, creating the parcel directory as
// needed.
func (w Writer) Write(parcelID, name string, v any) error {
	dir := w.ParcelDir(parcelID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("records: create %s: %w", dir, err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("records: marshal %s for %s: %w", name, parcelID, err)
	}
	path := filepath.Join(dir, name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("records: write %s: %w", path, err)
	}
	return nil
}
