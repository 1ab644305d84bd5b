package model

// PluginType discriminates the two plugin families the katalogus serves.
type PluginType string

const (
	// PluginTypeBoefje marks a data-collection plugin.
	PluginTypeBoefje PluginType = "boefje"
	// PluginTypeNormalizer marks a raw-output parsing plugin.
	PluginTypeNormalizer PluginType = "normalizer"
)

// Plugin is the katalogus representation of an installed plugin, shared by
// boefjes and normalizers. Consumes lists OOI types for boefjes and mime
// types for normalizers; a plugin with an empty Consumes matches nothing.
type Plugin struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Version   string     `json:"version,omitempty"`
	Type      PluginType `json:"type"`
	ScanLevel int        `json:"scan_level"`
	Consumes  []string   `json:"consumes"`
	Produces  []string   `json:"produces"`
	Enabled   bool       `json:"enabled"`
}

// Boefje is the task-payload view of a data-collection plugin.
type Boefje struct {
	ID        string   `json:"id"`
	Name      string   `json:"name,omitempty"`
	Version   string   `json:"version,omitempty"`
	ScanLevel int      `json:"scan_level"`
	Consumes  []string `json:"consumes,omitempty"`
	Produces  []string `json:"produces,omitempty"`
	Enabled   bool     `json:"enabled"`
}

// Normalizer is the task-payload view of a raw-output parsing plugin.
type Normalizer struct {
	ID      string `json:"id"`
	Name    string `json:"name,omitempty"`
	Version string `json:"version,omitempty"`
}

// AsBoefje converts a katalogus plugin to its task-payload view.
func (p Plugin) AsBoefje() Boefje {
	return Boefje{
		ID:        p.ID,
		Name:      p.Name,
		Version:   p.Version,
		ScanLevel: p.ScanLevel,
		Consumes:  p.Consumes,
		Produces:  p.Produces,
		Enabled:   p.Enabled,
	}
}

// AsNormalizer converts a katalogus plugin to its task-payload view.
func (p Plugin) AsNormalizer() Normalizer {
	return Normalizer{
		ID:      p.ID,
		Name:    p.Name,
		Version: p.Version,
	}
}

// ConsumesType reports whether the plugin consumes the given OOI or mime
// type.
func (p Plugin) ConsumesType(t string) bool {
	for _, c := range p.Consumes {
		if c == t {
			return true
		}
	}
	return false
}
