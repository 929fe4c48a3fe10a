package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/goccy/go-json"
)

// Manager maintains the user's custom schema catalog on disk, unioned with
// the built-in schemas. Custom schemas are stored as normalized JSON, one
// file per id, and may not shadow built-in ids.
type Manager struct {
	dir string
}

var schemaIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// DefaultCatalogDir returns the per-user schema catalog directory.
func DefaultCatalogDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".vectorgen", "schemas"), nil
}

// NewManager opens (creating if needed) the catalog at dir. An empty dir
// selects DefaultCatalogDir.
func NewManager(dir string) (*Manager, error) {
	if dir == "" {
		var err error
		dir, err = DefaultCatalogDir()
		if err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating schema catalog dir: %w", err)
	}
	return &Manager{dir: dir}, nil
}

// Dir returns the catalog directory.
func (m *Manager) Dir() string { return m.dir }

// Add validates the schema at sourcePath and stores it under id.
func (m *Manager) Add(id, sourcePath string) error {
	if !schemaIDPattern.MatchString(id) {
		return fmt.Errorf("invalid schema id %q: use lowercase letters, digits, '-' and '_'", id)
	}
	if IsBuiltin(id) {
		return fmt.Errorf("schema id %q is reserved by a built-in schema", id)
	}

	s, err := Load(sourcePath)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding schema: %w", err)
	}
	if err := os.WriteFile(m.path(id), data, 0644); err != nil {
		return fmt.Errorf("writing schema %q: %w", id, err)
	}
	return nil
}

// Remove deletes a custom schema. Built-in schemas cannot be removed.
func (m *Manager) Remove(id string) error {
	if IsBuiltin(id) {
		return fmt.Errorf("cannot remove built-in schema %q", id)
	}
	if err := os.Remove(m.path(id)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("no custom schema %q", id)
		}
		return fmt.Errorf("removing schema %q: %w", id, err)
	}
	return nil
}

// Get resolves id against built-ins first, then the custom catalog.
func (m *Manager) Get(id string) (*CollectionSchema, error) {
	if b, err := GetBuiltin(id); err == nil {
		s := b.Schema
		return &s, nil
	}
	s, err := Load(m.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no schema named %q (built-in or custom)", id)
		}
		return nil, err
	}
	return s, nil
}

// Entry describes one catalog schema for listings.
type Entry struct {
	ID          string
	Description string
	Builtin     bool
	Fields      int
}

// List returns built-in and custom schemas, built-ins first, each group
// sorted by id.
func (m *Manager) List() ([]Entry, error) {
	var entries []Entry
	for _, b := range ListBuiltin() {
		entries = append(entries, Entry{
			ID:          b.ID,
			Description: b.Description,
			Builtin:     true,
			Fields:      len(b.Schema.Fields),
		})
	}

	files, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("reading schema catalog: %w", err)
	}
	var custom []Entry
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(f.Name(), ".json")
		e := Entry{ID: id}
		if s, err := Load(filepath.Join(m.dir, f.Name())); err == nil {
			e.Fields = len(s.Fields)
			e.Description = fmt.Sprintf("custom schema for collection %q", s.CollectionName)
		} else {
			e.Description = "invalid schema file"
		}
		custom = append(custom, e)
	}
	sort.Slice(custom, func(i, j int) bool { return custom[i].ID < custom[j].ID })
	return append(entries, custom...), nil
}

// Save writes the schema identified by id (built-in or custom) to destPath
// as indented JSON, for use as a starting point for custom schemas.
func (m *Manager) Save(id, destPath string) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding schema: %w", err)
	}
	if err := os.WriteFile(destPath, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", destPath, err)
	}
	return nil
}

func (m *Manager) path(id string) string {
	return filepath.Join(m.dir, id+".json")
}
