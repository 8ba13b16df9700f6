// Package batch reads YAML import files that bulk-add remote URLs to a
// collection.
package batch

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"musicsync/internal/library"
)

type File struct {
	Version    int    `yaml:"version"`
	Collection string `yaml:"collection"`
	URLs       []URL  `yaml:"urls"`
}

type URL struct {
	URL      string `yaml:"url"`
	Name     string `yaml:"name"`
	Concat   bool   `yaml:"concat"`
	Excluded bool   `yaml:"excluded"`
}

func Load(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, err
	}
	if f.Version != 1 {
		return nil, fmt.Errorf("unsupported import version: %d", f.Version)
	}
	if len(f.URLs) == 0 {
		return nil, fmt.Errorf("import file has no urls")
	}
	for i, u := range f.URLs {
		if strings.TrimSpace(u.URL) == "" {
			return nil, fmt.Errorf("url %d is empty", i+1)
		}
	}
	return &f, nil
}

// Apply adds the file's URLs to col, skipping ones already tracked. It
// returns how many were added.
func (f *File) Apply(col *library.Collection) int {
	added := 0
	for _, u := range f.URLs {
		if col.URLByString(u.URL) != nil {
			continue
		}
		cu := &library.CollectionUrl{
			URL:      u.URL,
			Name:     u.Name,
			Excluded: u.Excluded,
			Concat:   u.Concat || col.InAutoConcat(u.URL),
		}
		col.URLs = append(col.URLs, cu)
		added++
	}
	return added
}
