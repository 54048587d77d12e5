// Package location resolves department and municipality codes to names.
//
// The table is built once and never mutated afterwards, so a *Table can be
// shared by every request without locking.
package location

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/goccy/go-yaml"
)

//go:embed data/divipola.yaml
var embeddedTable []byte

// Reference is a resolved place of issue.
type Reference struct {
	DepartmentCode   string `json:"departmentCode"`
	DepartmentName   string `json:"departmentName"`
	MunicipalityCode string `json:"municipalityCode"`
	MunicipalityName string `json:"municipalityName"`
}

// Key returns the lookup key: department code followed by municipality code.
func (r Reference) Key() string {
	return r.DepartmentCode + r.MunicipalityCode
}

// Table maps concatenated department+municipality codes to references.
type Table struct {
	entries map[string]Reference
}

type tableFile struct {
	Departments []struct {
		Code           string `yaml:"code"`
		Name           string `yaml:"name"`
		Municipalities []struct {
			Code string `yaml:"code"`
			Name string `yaml:"name"`
		} `yaml:"municipalities"`
	} `yaml:"departments"`
}

// Load reads a YAML table. Department codes must be two digits and
// municipality codes three digits; duplicate pairs are rejected.
func Load(r io.Reader) (*Table, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read location table: %w", err)
	}
	var f tableFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse location table: %w", err)
	}

	t := &Table{entries: make(map[string]Reference)}
	for _, d := range f.Departments {
		if !isDigits(d.Code, 2) {
			return nil, fmt.Errorf("department %q: code must be 2 digits", d.Code)
		}
		for _, m := range d.Municipalities {
			if !isDigits(m.Code, 3) {
				return nil, fmt.Errorf("municipality %q in department %s: code must be 3 digits", m.Code, d.Code)
			}
			ref := Reference{
				DepartmentCode:   d.Code,
				DepartmentName:   d.Name,
				MunicipalityCode: m.Code,
				MunicipalityName: m.Name,
			}
			if _, dup := t.entries[ref.Key()]; dup {
				return nil, fmt.Errorf("duplicate location %s", ref.Key())
			}
			t.entries[ref.Key()] = ref
		}
	}
	return t, nil
}

// LoadFile reads a YAML table from disk.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open location table: %w", err)
	}
	defer f.Close()
	return Load(f)
}

var defaultTable = sync.OnceValues(func() (*Table, error) {
	return Load(bytes.NewReader(embeddedTable))
})

// Default returns the process-wide table built from the embedded data.
func Default() (*Table, error) {
	return defaultTable()
}

// Resolve looks up a department/municipality code pair. Unknown pairs
// return false; they are never an error.
func (t *Table) Resolve(department, municipality string) (Reference, bool) {
	if t == nil {
		return Reference{}, false
	}
	ref, ok := t.entries[department+municipality]
	return ref, ok
}

// Len returns the number of entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

func isDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
