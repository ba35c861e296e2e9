// Package catalog serves the read-only modules, elements and parameters a
// proposal is priced from.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/pluqqy/proposal-cli/pkg/files"
	"github.com/pluqqy/proposal-cli/pkg/models"
)

// Registry holds a validated catalog
type Registry struct {
	mu      sync.RWMutex
	catalog *models.Catalog
	path    string
}

// NewRegistry loads the project catalog. A missing file yields an empty one.
func NewRegistry() (*Registry, error) {
	return Open(filepath.Join(files.ProjectDir, files.CatalogFile))
}

// Open loads the catalog at path
func Open(path string) (*Registry, error) {
	r := &Registry{path: path}

	if err := r.Load(); err != nil {
		if os.IsNotExist(err) {
			r.catalog = &models.Catalog{}
			return r, nil
		}
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	return r, nil
}

// FromCatalog wraps an in-memory catalog after validating it
func FromCatalog(c models.Catalog) (*Registry, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return &Registry{catalog: &c}, nil
}

// Load reads and validates the catalog from disk
func (r *Registry) Load() error {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return err
	}

	var catalog models.Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := catalog.Validate(); err != nil {
		return fmt.Errorf("invalid catalog: %w", err)
	}

	r.mu.Lock()
	r.catalog = &catalog
	r.mu.Unlock()
	return nil
}

// Save writes the catalog to disk
func (r *Registry) Save() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.path == "" {
		return fmt.Errorf("catalog has no backing file")
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0755); err != nil {
		return fmt.Errorf("failed to create catalog directory: %w", err)
	}

	data, err := yaml.Marshal(r.catalog)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}

	// Write atomically
	tmpFile := r.path + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}

	if err := os.Rename(tmpFile, r.path); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to save catalog: %w", err)
	}

	return nil
}

// SaveTo binds the registry to path and writes it there
func (r *Registry) SaveTo(path string) error {
	r.mu.Lock()
	r.path = path
	r.mu.Unlock()
	return r.Save()
}

// Catalog returns a copy of the catalog
func (r *Registry) Catalog() models.Catalog {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return models.Catalog{
		Modules:    append([]models.Module(nil), r.catalog.Modules...),
		Elements:   append([]models.Element(nil), r.catalog.Elements...),
		Parameters: append([]models.Parameter(nil), r.catalog.Parameters...),
	}
}

func (r *Registry) Module(id int) (models.Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.catalog.Modules {
		if m.ID == id {
			return m, true
		}
	}
	return models.Module{}, false
}

func (r *Registry) Element(id int) (models.Element, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, el := range r.catalog.Elements {
		if el.ID == id {
			return el, true
		}
	}
	return models.Element{}, false
}

func (r *Registry) Parameter(id int) (models.Parameter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.catalog.Parameters {
		if p.ID == id {
			return p, true
		}
	}
	return models.Parameter{}, false
}

// ParameterByName finds a parameter by its exact name
func (r *Registry) ParameterByName(name string) (models.Parameter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.catalog.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return models.Parameter{}, false
}

// Selected returns the parameters whose ids are in ids, in catalog order.
// Unknown ids are ignored.
func (r *Registry) Selected(ids []int) []models.Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	want := make(map[int]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	var out []models.Parameter
	for _, p := range r.catalog.Parameters {
		if want[p.ID] {
			out = append(out, p)
		}
	}
	return out
}

// SelectedNames returns the names of the selected parameters in catalog order
func (r *Registry) SelectedNames(ids []int) []string {
	params := r.Selected(ids)
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return names
}

// ModuleName and ElementName adapt the registry for display lookups
func (r *Registry) ModuleName(id int) (string, bool) {
	m, ok := r.Module(id)
	return m.Name, ok
}

func (r *Registry) ElementName(id int) (string, bool) {
	el, ok := r.Element(id)
	return el.Name, ok
}
