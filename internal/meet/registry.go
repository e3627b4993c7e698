package meet

import "sync"

// Registry — контроллер на пользователя; виджет каждого живет независимо
type Registry struct {
	cfg     ControllerConfig
	loader  *ScriptLoader
	factory func(userID string) WidgetFactory

	mu          sync.Mutex
	controllers map[string]*Controller
}

func NewRegistry(cfg ControllerConfig, loader *ScriptLoader, factory func(userID string) WidgetFactory) *Registry {
	return &Registry{
		cfg:         cfg,
		loader:      loader,
		factory:     factory,
		controllers: make(map[string]*Controller),
	}
}

func (r *Registry) For(userID string) *Controller {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.controllers[userID]
	if !ok {
		c = NewController(r.cfg, r.loader, r.factory(userID))
		r.controllers[userID] = c
	}
	return c
}

// Drop гасит контроллер пользователя (logout, обрыв соединения)
func (r *Registry) Drop(userID string) {
	r.mu.Lock()
	c := r.controllers[userID]
	delete(r.controllers, userID)
	r.mu.Unlock()

	if c != nil {
		c.Dispose()
	}
}
