package authz

// Resolver answers permission questions against a catalog. It is pure and
// side-effect free: unknown roles, modules or actions are denials, never
// errors.
type Resolver struct {
	catalog *Catalog
}

// NewResolver creates a resolver over the given catalog.
func NewResolver(catalog *Catalog) *Resolver {
	return &Resolver{catalog: catalog}
}

// CanPerform reports whether role may perform action on module.
// Admin is allowed unconditionally. Everything else resolves through the
// role permission table and the fixed level->actions mapping, failing
// closed on any unknown input.
func (r *Resolver) CanPerform(role Role, module Module, action Action) bool {
	if role == RoleAdmin {
		return true
	}
	level, ok := r.catalog.Level(role, module)
	if !ok {
		return false
	}
	return LevelAllows(level, action)
}

// CanRead is the module-level presence check used for route resolution:
// whether the role has any read-capable level on the module.
func (r *Resolver) CanRead(role Role, module Module) bool {
	return r.CanPerform(role, module, ActionRead)
}
