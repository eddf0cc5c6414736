package data

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/pokerune/engine/internal/component"
)

// SpriteManifest names a sprite's animations ("walk_south", "idle_north",
// ...) and their frame sequences.
type SpriteManifest struct {
	Name       string                  `yaml:"name"`
	Animations map[string]AnimationDef `yaml:"animations"`
}

// AnimationDef is one named animation: sprite-sheet frame indices with
// per-frame durations, plus loop behavior.
type AnimationDef struct {
	Frames []SpriteFrame `yaml:"frames"`
	Loop   bool          `yaml:"loop"`
}

type SpriteFrame struct {
	Index      int    `yaml:"index"` // frame within the sprite sheet
	DurationMS int    `yaml:"duration_ms"`
	Event      string `yaml:"event"` // fired once when the frame is entered
}

// Duration returns the frame's duration in seconds.
func (f SpriteFrame) Duration() float64 {
	return float64(f.DurationMS) / 1000.0
}

type manifestListFile struct {
	Manifests []SpriteManifest `yaml:"manifests"`
}

// ManifestCache maps stable ManifestIDs to sprite manifests. IDs are handed
// out at registration (sprite-creation) time; per-frame animation lookups go
// through the ID, never through a recomputed composite string key.
// Populated at load, read concurrently afterwards, invalidated only on asset
// reload.
type ManifestCache struct {
	mu     sync.RWMutex
	byID   []*SpriteManifest
	byName map[string]component.ManifestID
}

func NewManifestCache() *ManifestCache {
	return &ManifestCache{byName: make(map[string]component.ManifestID, 32)}
}

// LoadManifests reads a YAML manifest list into a fresh cache.
func LoadManifests(path string) (*ManifestCache, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sprite manifests: %w", err)
	}
	var f manifestListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse sprite manifests: %w", err)
	}
	c := NewManifestCache()
	for i := range f.Manifests {
		m := f.Manifests[i]
		if err := validateManifest(&m); err != nil {
			return nil, err
		}
		c.Register(&m)
	}
	return c, nil
}

func validateManifest(m *SpriteManifest) error {
	if m.Name == "" {
		return fmt.Errorf("sprite manifest with no name")
	}
	for name, anim := range m.Animations {
		if len(anim.Frames) == 0 {
			return fmt.Errorf("manifest %q animation %q has no frames", m.Name, name)
		}
		if len(anim.Frames) > component.MaxAnimationFrames {
			return fmt.Errorf("manifest %q animation %q has %d frames (max %d)",
				m.Name, name, len(anim.Frames), component.MaxAnimationFrames)
		}
		for _, f := range anim.Frames {
			if f.DurationMS <= 0 {
				return fmt.Errorf("manifest %q animation %q has frame duration %dms", m.Name, name, f.DurationMS)
			}
		}
	}
	return nil
}

// Register adds a manifest and returns its stable ID. Registering a name
// twice returns the original ID with the original content kept.
func (c *ManifestCache) Register(m *SpriteManifest) component.ManifestID {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id, ok := c.byName[m.Name]; ok {
		return id
	}
	id := component.ManifestID(len(c.byID))
	c.byID = append(c.byID, m)
	c.byName[m.Name] = id
	return id
}

// Lookup resolves a ManifestID. The hot path for the animation system.
func (c *ManifestCache) Lookup(id component.ManifestID) (*SpriteManifest, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if int(id) >= len(c.byID) {
		return nil, false
	}
	return c.byID[id], true
}

// LookupName resolves a manifest name to its stable ID.
func (c *ManifestCache) LookupName(name string) (component.ManifestID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.byName[name]
	return id, ok
}

// Animation resolves an animation by ID + name in one call.
func (c *ManifestCache) Animation(id component.ManifestID, name string) (*AnimationDef, bool) {
	m, ok := c.Lookup(id)
	if !ok {
		return nil, false
	}
	anim, ok := m.Animations[name]
	if !ok {
		return nil, false
	}
	return &anim, true
}

// Count returns the number of registered manifests.
func (c *ManifestCache) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byID)
}
