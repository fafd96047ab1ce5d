package source

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/parcelgraph/internal/address"
)

// LoadCandidates reads the geocoded candidate list for one parcel from
// <dir>/<parcelID>.json. A missing file surfaces as an os.ErrNotExist
// wrapped error; the caller treats it as an unresolvable address, not a
// batch failure.
func LoadCandidates(dir, parcelID string) ([]address.Candidate, error) {
	path := filepath.Join(dir, parcelID+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("source: candidates for %s: %w", parcelID, err)
	}
	var candidates []address.Candidate
	if err := json.Unmarshal(data, &candidates); err != nil {
		return nil, fmt.Errorf("source: parse candidates for %s: %w", parcelID, err)
	}
	return candidates, nil
}
