// internal/domain/ofday/category.go
package ofday

// SourceKind selects where a category's yearly data comes from.
type SourceKind string

const (
	SourceFile     SourceKind = "file"
	SourceDatabase SourceKind = "database"
)

// CategoryConfig describes one "of the day" stream. Immutable after load.
type CategoryConfig struct {
	Key         string
	Enabled     bool
	DataFile    string
	DisplayName string
	Source      SourceKind
}

// Registry holds the ordered enabled categories. Read-only after construction.
type Registry struct {
	enabled []CategoryConfig
	byKey   map[string]int
	skipped []string
}

// NewRegistry orders categories by order, skipping keys that are unknown or disabled.
// It fails with a ConfigError when order is empty or nothing listed is enabled.
func NewRegistry(categories map[string]CategoryConfig, order []string) (*Registry, error) {
	if len(order) == 0 {
		return nil, NewConfigError("category_order is empty")
	}

	r := &Registry{byKey: make(map[string]int)}
	for _, key := range order {
		cfg, ok := categories[key]
		if !ok || !cfg.Enabled {
			r.skipped = append(r.skipped, key)
			continue
		}
		if _, dup := r.byKey[key]; dup { // listed twice: first position wins
			continue
		}
		if cfg.Key == "" {
			cfg.Key = key
		}
		if cfg.DisplayName == "" {
			cfg.DisplayName = key
		}
		if cfg.Source == "" {
			cfg.Source = SourceFile
		}
		r.byKey[key] = len(r.enabled)
		r.enabled = append(r.enabled, cfg)
	}

	if len(r.enabled) == 0 {
		return nil, NewConfigError("no category in category_order is enabled")
	}
	return r, nil
}

// Enabled returns a copy of the enabled categories in display order.
func (r *Registry) Enabled() []CategoryConfig {
	out := make([]CategoryConfig, len(r.enabled))
	copy(out, r.enabled)
	return out
}

// Len is the number of enabled categories (N).
func (r *Registry) Len() int {
	return len(r.enabled)
}

// At returns the category at index i of the enabled list.
func (r *Registry) At(i int) CategoryConfig {
	return r.enabled[i]
}

// Lookup finds an enabled category by key.
func (r *Registry) Lookup(key string) (CategoryConfig, bool) {
	i, ok := r.byKey[key]
	if !ok {
		return CategoryConfig{}, false
	}
	return r.enabled[i], true
}

// Skipped lists keys from the order that were unknown or disabled.
func (r *Registry) Skipped() []string {
	out := make([]string, len(r.skipped))
	copy(out, r.skipped)
	return out
}
