package availability

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/Bizimana-jeanluc/moviesBox/models"
)

// Table is the closed, hand-curated overlay of titles that can be played or
// downloaded. It is built once and never mutated afterwards, so it is safe for
// concurrent readers without locking.
type Table struct {
	byID   map[string]models.AvailabilityDescriptor
	bySlug map[string]string
}

// New builds a table from the given descriptors. Ids must be unique and non-empty.
func New(entries []models.AvailabilityDescriptor) (*Table, error) {
	t := &Table{
		byID:   make(map[string]models.AvailabilityDescriptor, len(entries)),
		bySlug: make(map[string]string, len(entries)),
	}
	for i, entry := range entries {
		entry.ID = strings.TrimSpace(entry.ID)
		if entry.ID == "" {
			return nil, fmt.Errorf("availability entry %d: empty id", i)
		}
		if _, dup := t.byID[entry.ID]; dup {
			return nil, fmt.Errorf("availability entry %d: duplicate id %q", i, entry.ID)
		}
		t.byID[entry.ID] = entry
		if slug := strings.TrimSpace(entry.Slug); slug != "" {
			t.bySlug[slug] = entry.ID
		}
	}
	return t, nil
}

// Load reads a JSON array of descriptors from path. Every entry must carry
// both a stream and a download reference.
func Load(fsys afero.Fs, path string) (*Table, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read availability file: %w", err)
	}
	var entries []models.AvailabilityDescriptor
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode availability file %s: %w", path, err)
	}
	for i, entry := range entries {
		if strings.TrimSpace(entry.StreamURL) == "" || strings.TrimSpace(entry.DownloadURL) == "" {
			return nil, fmt.Errorf("availability file %s entry %d (%q): missing stream or download reference", path, i, entry.ID)
		}
	}
	return New(entries)
}

// Lookup returns the descriptor for a provider id.
func (t *Table) Lookup(id string) (models.AvailabilityDescriptor, bool) {
	if t == nil {
		return models.AvailabilityDescriptor{}, false
	}
	d, ok := t.byID[strings.TrimSpace(id)]
	return d, ok
}

// LookupSlug returns the descriptor whose slug addresses the synthetic stream
// and download routes.
func (t *Table) LookupSlug(slug string) (models.AvailabilityDescriptor, bool) {
	if t == nil {
		return models.AvailabilityDescriptor{}, false
	}
	id, ok := t.bySlug[strings.TrimSpace(slug)]
	if !ok {
		return models.AvailabilityDescriptor{}, false
	}
	return t.byID[id], true
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.byID)
}

// IDs returns every id in the table, sorted.
func (t *Table) IDs() []string {
	if t == nil {
		return nil
	}
	ids := make([]string, 0, len(t.byID))
	for id := range t.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
