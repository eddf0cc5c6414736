package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ObjectTemplate holds static data for an object/NPC type. Object layer
// placements reference templates by ID; the loader resolves them through a
// TemplateTable (or the Postgres-backed repository).
type ObjectTemplate struct {
	ID       string            `yaml:"id"`
	Kind     string            `yaml:"kind"` // "npc", "sign", "warp", ...
	Manifest string            `yaml:"manifest"` // sprite manifest name
	Sprite   uint32            `yaml:"sprite"`   // default tile/sprite id
	Speed    float64           `yaml:"speed"`    // pixels per second when moving
	Solid    bool              `yaml:"solid"`
	Props    map[string]string `yaml:"props"`
	OnSpawn  string            `yaml:"on_spawn"` // lua hook, optional
}

type templateListFile struct {
	Templates []ObjectTemplate `yaml:"templates"`
}

// TemplateTable holds all object templates indexed by ID.
type TemplateTable struct {
	templates map[string]*ObjectTemplate
}

// NewTemplateTable builds a table from already-loaded templates.
func NewTemplateTable(templates []ObjectTemplate) *TemplateTable {
	t := &TemplateTable{templates: make(map[string]*ObjectTemplate, len(templates))}
	for i := range templates {
		tpl := &templates[i]
		t.templates[tpl.ID] = tpl
	}
	return t
}

// LoadTemplateTable loads object templates from a YAML file.
func LoadTemplateTable(path string) (*TemplateTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template list: %w", err)
	}
	var f templateListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse template list: %w", err)
	}
	return NewTemplateTable(f.Templates), nil
}

// Resolve returns the template for an ID, or false if unknown.
func (t *TemplateTable) Resolve(id string) (*ObjectTemplate, bool) {
	tpl, ok := t.templates[id]
	return tpl, ok
}

// Count returns the number of templates loaded.
func (t *TemplateTable) Count() int {
	return len(t.templates)
}

// All returns every template, in no particular order.
func (t *TemplateTable) All() []ObjectTemplate {
	out := make([]ObjectTemplate, 0, len(t.templates))
	for _, tpl := range t.templates {
		out = append(out, *tpl)
	}
	return out
}
