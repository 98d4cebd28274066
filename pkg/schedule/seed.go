package schedule

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadDirectory seeds a directory from a JSON file of participants. Windows
// are normalized on load so hand-edited files with overlaps still satisfy
// the directory invariant.
func LoadDirectory(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read availability file: %w", err)
	}

	var participants []Participant
	if err := json.Unmarshal(data, &participants); err != nil {
		return nil, fmt.Errorf("parse availability file: %w", err)
	}

	d := NewDirectory()
	for _, p := range participants {
		if p.ID == "" {
			return nil, fmt.Errorf("availability entry without id in %s", path)
		}
		d.Upsert(p.ID, p.Windows)
	}
	return d, nil
}
