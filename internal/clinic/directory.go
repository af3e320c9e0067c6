package clinic

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed directory.yaml
var directoryYAML []byte

// Directory is a read-only list of providers. Search never mutates it.
type Directory struct {
	records []ClinicRecord
}

// LoadDirectory parses a YAML list of ClinicRecord.
func LoadDirectory(data []byte) (*Directory, error) {
	var records []ClinicRecord
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse clinic directory: %w", err)
	}
	return &Directory{records: records}, nil
}

// DefaultDirectory returns the embedded Iloilo directory.
func DefaultDirectory() *Directory {
	d, err := LoadDirectory(directoryYAML)
	if err != nil {
		panic(err)
	}
	return d
}

// Search returns every record whose name, address or notes contain query,
// case-insensitively, in directory order. A blank query returns everything.
func (d *Directory) Search(query string) []ClinicRecord {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]ClinicRecord, 0, len(d.records))
	for _, r := range d.records {
		if q == "" ||
			strings.Contains(strings.ToLower(r.Name), q) ||
			strings.Contains(strings.ToLower(r.Address), q) ||
			strings.Contains(strings.ToLower(r.Notes), q) {
			out = append(out, r)
		}
	}
	return out
}

func (d *Directory) Len() int {
	return len(d.records)
}
