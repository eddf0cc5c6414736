package assets

import (
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"
)

type fakeSource struct {
	loads map[string]int
	fail  map[string]error
}

func newFakeSource() *fakeSource {
	return &fakeSource{loads: make(map[string]int), fail: make(map[string]error)}
}

func (s *fakeSource) Load(name string) (*Texture, error) {
	s.loads[name]++
	if err := s.fail[name]; err != nil {
		return nil, err
	}
	return &Texture{Name: name, Width: 16, Height: 16, Data: make([]byte, 100)}, nil
}

func TestCacheHitSkipsSource(t *testing.T) {
	src := newFakeSource()
	c := NewCache(src, 1<<20, zap.NewNop())

	for i := 0; i < 3; i++ {
		if _, err := c.Get("tiles.png"); err != nil {
			t.Fatalf("Get: %v", err)
		}
	}
	if src.loads["tiles.png"] != 1 {
		t.Fatalf("source loaded %d times, want 1", src.loads["tiles.png"])
	}
}

func TestCacheEvictsLRU(t *testing.T) {
	src := newFakeSource()
	c := NewCache(src, 250, zap.NewNop()) // room for two 100-byte textures

	for i := 0; i < 3; i++ {
		if _, err := c.Get(fmt.Sprintf("sheet%d.png", i)); err != nil {
			t.Fatalf("Get: %v", err)
		}
	}
	if c.Len() != 2 {
		t.Fatalf("cache holds %d textures, want 2", c.Len())
	}
	// sheet0 was least recently used; fetching it again must reload.
	if _, err := c.Get("sheet0.png"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if src.loads["sheet0.png"] != 2 {
		t.Fatalf("evicted texture loaded %d times, want 2", src.loads["sheet0.png"])
	}
}

func TestCacheProbePropagatesError(t *testing.T) {
	src := newFakeSource()
	sentinel := errors.New("corrupt")
	src.fail["bad.png"] = sentinel
	c := NewCache(src, 1<<20, zap.NewNop())

	if err := c.Probe("bad.png"); !errors.Is(err, sentinel) {
		t.Fatalf("Probe error = %v, want %v", err, sentinel)
	}
}
