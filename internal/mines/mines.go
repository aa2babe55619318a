// Package mines serves static metadata about known mines.
package mines

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed mines.yaml
var defaultMines []byte

// Mine is the metadata served for one mine.
type Mine struct {
	Name     string  `yaml:"name" json:"name"`
	State    string  `yaml:"state" json:"state"`
	District string  `yaml:"district" json:"district"`
	Operator string  `yaml:"operator" json:"operator"`
	Mineral  string  `yaml:"mineral" json:"mineral"`
	Method   string  `yaml:"method" json:"method"`
	Lat      float64 `yaml:"lat" json:"lat"`
	Lon      float64 `yaml:"lon" json:"lon"`
}

// Directory is a read-only name index of mines.
type Directory struct {
	byName map[string]Mine
}

// Default returns the embedded directory.
func Default() (*Directory, error) {
	return Parse(defaultMines)
}

// Parse builds a directory from YAML with a top-level "mines" list.
func Parse(data []byte) (*Directory, error) {
	var doc struct {
		Mines []Mine `yaml:"mines"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse mine directory: %w", err)
	}

	d := &Directory{byName: make(map[string]Mine, len(doc.Mines))}
	for _, m := range doc.Mines {
		key := normalize(m.Name)
		if key == "" {
			return nil, errors.New("mine directory: entry without a name")
		}
		if _, dup := d.byName[key]; dup {
			return nil, fmt.Errorf("mine directory: duplicate mine %q", m.Name)
		}
		d.byName[key] = m
	}
	return d, nil
}

// Lookup finds a mine by name, ignoring case and surrounding or repeated
// whitespace.
func (d *Directory) Lookup(name string) (Mine, bool) {
	m, ok := d.byName[normalize(name)]
	return m, ok
}

// Len returns the number of mines.
func (d *Directory) Len() int {
	return len(d.byName)
}

func normalize(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
