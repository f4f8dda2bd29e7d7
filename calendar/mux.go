package calendar

import (
	"fmt"
	"sync"

	"github.com/guilherme-santos/synctasks/internal"
)

type Mux struct {
	mu      sync.Mutex
	sources map[string]internal.Source
}

func NewMux() *Mux {
	return &Mux{
		sources: make(map[string]internal.Source),
	}
}

func (m *Mux) Get(platform string) (internal.Source, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	source, ok := m.sources[platform]
	if !ok {
		return nil, fmt.Errorf("platform %q is not configured", platform)
	}
	return source, nil
}

func (m *Mux) Register(platform string, source internal.Source) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sources[platform] = source
}
