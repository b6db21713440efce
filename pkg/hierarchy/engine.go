package hierarchy

// Engine is the composition root for the four hierarchy kinds. It replaces
// the per-kind static singletons of older RBAC engines: construct one
// Engine at service start, hand it to callers, tear it down at shutdown.
type Engine struct {
	role      *Service
	adminRole *Service
	userOU    *Service
	permOU    *Service
}

// NewEngine builds one Service per hierarchy kind over a shared edge store.
func NewEngine(store EdgeStore, cfg ServiceConfig) *Engine {
	return &Engine{
		role:      NewService(KindRole, store, cfg),
		adminRole: NewService(KindAdminRole, store, cfg),
		userOU:    NewService(KindUserOU, store, cfg),
		permOU:    NewService(KindPermOU, store, cfg),
	}
}

// Role returns the RBAC role hierarchy service.
func (e *Engine) Role() *Service {
	return e.role
}

// AdminRole returns the administrative role hierarchy service.
func (e *Engine) AdminRole() *Service {
	return e.adminRole
}

// UserOU returns the user organizational unit hierarchy service.
func (e *Engine) UserOU() *Service {
	return e.userOU
}

// PermOU returns the permission organizational unit hierarchy service.
func (e *Engine) PermOU() *Service {
	return e.permOU
}

// Service returns the service for an arbitrary kind, or nil for an unknown
// kind.
func (e *Engine) Service(kind Kind) *Service {
	switch kind {
	case KindRole:
		return e.role
	case KindAdminRole:
		return e.adminRole
	case KindUserOU:
		return e.userOU
	case KindPermOU:
		return e.permOU
	default:
		return nil
	}
}

// Caches returns every graph cache owned by the engine.
func (e *Engine) Caches() []*GraphCache {
	return []*GraphCache{
		e.role.Cache(),
		e.adminRole.Cache(),
		e.userOU.Cache(),
		e.permOU.Cache(),
	}
}
