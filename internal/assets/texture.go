package assets

import (
	"bytes"
	"fmt"
	"image"
	_ "image/png" // tileset sheets are PNG
	"os"
	"path/filepath"
)

// Texture is one loaded tileset or sprite sheet. Data holds the raw encoded
// bytes; the renderer decodes them once on upload.
type Texture struct {
	Name   string
	Width  int32
	Height int32
	Data   []byte
}

// SizeBytes is the cache weight of the texture.
func (t *Texture) SizeBytes() int { return len(t.Data) }

// TextureSource loads textures by name. Implementations must be safe for
// concurrent use; the async map loader probes sources off the game loop.
type TextureSource interface {
	Load(name string) (*Texture, error)
}

// FileSource loads textures from a directory tree.
type FileSource struct {
	Root string
}

func NewFileSource(root string) *FileSource {
	return &FileSource{Root: root}
}

func (s *FileSource) Load(name string) (*Texture, error) {
	path := filepath.Join(s.Root, filepath.FromSlash(name))
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load texture %s: %w", name, err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode texture %s: %w", name, err)
	}
	return &Texture{
		Name:   name,
		Width:  int32(cfg.Width),
		Height: int32(cfg.Height),
		Data:   raw,
	}, nil
}
