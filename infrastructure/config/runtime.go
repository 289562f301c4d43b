package config

import "sync"

// RuntimeSettings holds the values that may change while the server runs
type RuntimeSettings struct {
	mu       sync.RWMutex
	image    ImageConfig
	pageSize int
}

// NewRuntimeSettings seeds runtime settings from cfg
func NewRuntimeSettings(cfg *Config) *RuntimeSettings {
	return &RuntimeSettings{
		image:    cfg.Image,
		pageSize: cfg.PageSize,
	}
}

// Image returns the current image settings
func (r *RuntimeSettings) Image() ImageConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.image
}

// PageSize returns the current default page size
func (r *RuntimeSettings) PageSize() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pageSize
}

// Apply copies the runtime-tunable values out of cfg
func (r *RuntimeSettings) Apply(cfg *Config) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.image = cfg.Image
	r.pageSize = cfg.PageSize
}
