package render

import (
	"fmt"
	"io"
	"sort"
	"sync"
)

// Renderer writes a Report in one output format.
type Renderer interface {
	Name() string
	Render(io.Writer, Report) error
}

var (
	regMu    sync.RWMutex
	registry = map[string]Renderer{}
)

// Register makes a renderer available under its name, replacing any previous
// one with the same name.
func Register(r Renderer) {
	regMu.Lock()
	defer regMu.Unlock()
	registry[r.Name()] = r
}

// Lookup returns the renderer registered under name.
func Lookup(name string) (Renderer, error) {
	regMu.RLock()
	defer regMu.RUnlock()
	if r, ok := registry[name]; ok {
		return r, nil
	}
	return nil, fmt.Errorf("renderer not found for format %q", name)
}

// Names lists the registered formats in sorted order.
func Names() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
