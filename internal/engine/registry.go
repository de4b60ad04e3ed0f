package engine

import (
	"sync"

	"go.uber.org/zap"

	"go-dash/internal/config"
	"go-dash/internal/engine/backend"
)

// Registry hands out one engine per session key. Engines are created lazily
// on first use and live until released; two sessions never share a store or
// an undo ledger.
type Registry struct {
	svc backend.Service
	cfg *config.Config
	log *zap.Logger

	mu      sync.Mutex
	engines map[string]*Engine
}

func NewRegistry(svc backend.Service, cfg *config.Config, log *zap.Logger) *Registry {
	return &Registry{
		svc:     svc,
		cfg:     cfg,
		log:     log,
		engines: make(map[string]*Engine),
	}
}

// Get returns the engine bound to the session key, creating it on first use.
func (r *Registry) Get(key string) *Engine {
	r.mu.Lock()
	defer r.mu.Unlock()
	if eng, ok := r.engines[key]; ok {
		return eng
	}
	eng := New(r.svc, r.cfg, r.log.With(zap.String("session", key)))
	r.engines[key] = eng
	return eng
}

// Release closes and forgets the engine bound to the session key.
func (r *Registry) Release(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if eng, ok := r.engines[key]; ok {
		eng.Close()
		delete(r.engines, key)
	}
}

// CloseAll shuts down every live engine. Called on application stop.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, eng := range r.engines {
		eng.Close()
		delete(r.engines, key)
	}
}
