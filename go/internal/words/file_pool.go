package words

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// FilePool is an in-memory Pool loaded from a YAML (or JSON) document of the form
//
//	Animals:
//	  - word: Elephant
//	    hint: Largest land mammal
type FilePool struct {
	categories []string
	entries    map[string][]Entry
}

// LoadFile reads a word list file from disk.
func LoadFile(path string) (*FilePool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read word list: %w", err)
	}
	return Parse(data)
}

// Parse builds a FilePool from raw YAML or JSON.
func Parse(data []byte) (*FilePool, error) {
	var raw map[string][]Entry
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse word list: %w", err)
	}

	p := &FilePool{entries: make(map[string][]Entry, len(raw))}
	for category, list := range raw {
		category = strings.TrimSpace(category)
		if category == "" {
			continue
		}
		for _, e := range list {
			word := strings.TrimSpace(e.Word)
			if word == "" {
				continue
			}
			p.entries[category] = append(p.entries[category], Entry{
				Word:     word,
				Category: category,
				Hint:     strings.TrimSpace(e.Hint),
			})
		}
		if len(p.entries[category]) > 0 {
			p.categories = append(p.categories, category)
		}
	}
	sort.Strings(p.categories)
	return p, nil
}

// Categories implements Pool.
func (p *FilePool) Categories(ctx context.Context) ([]string, error) {
	out := make([]string, len(p.categories))
	copy(out, p.categories)
	return out, nil
}

// Entries implements Pool.
func (p *FilePool) Entries(ctx context.Context, categories []string) ([]Entry, error) {
	var out []Entry
	for _, c := range dedupe(categories) {
		out = append(out, p.entries[c]...)
	}
	return out, nil
}

// Size returns the total number of words in the pool.
func (p *FilePool) Size() int {
	n := 0
	for _, list := range p.entries {
		n += len(list)
	}
	return n
}

func dedupe(categories []string) []string {
	seen := make(map[string]bool, len(categories))
	out := make([]string, 0, len(categories))
	for _, c := range categories {
		c = strings.TrimSpace(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
