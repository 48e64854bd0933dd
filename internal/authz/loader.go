package authz

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TableFile is the on-disk shape of the declarative access tables. Every
// section is optional; absent sections keep the shipped defaults.
type TableFile struct {
	Permissions    map[string]map[string]string `yaml:"permissions"`
	RouteModules   map[string]string            `yaml:"routeModules"`
	RouteOverrides map[string][]string          `yaml:"routeOverrides"`
}

// LoadTables reads an access-table override file and returns the catalog and
// route tables to run with. It validates roles, modules and levels strictly:
// a typo in the table must fail startup, not silently grant or deny.
func LoadTables(path string) (*Catalog, RouteTables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, RouteTables{}, fmt.Errorf("failed to read access tables: %w", err)
	}

	var file TableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, RouteTables{}, fmt.Errorf("failed to parse access tables: %w", err)
	}

	overrides := make(map[Role]RolePermissionSet, len(file.Permissions))
	for rawRole, modules := range file.Permissions {
		role, ok := NormalizeRole(rawRole)
		if !ok {
			return nil, RouteTables{}, fmt.Errorf("access tables: unknown role %q", rawRole)
		}
		set := make(RolePermissionSet, len(modules))
		for rawModule, rawLevel := range modules {
			module := Module(rawModule)
			if !validModule(module) {
				return nil, RouteTables{}, fmt.Errorf("access tables: unknown module %q for role %q", rawModule, rawRole)
			}
			level := PermissionLevel(rawLevel)
			if !level.Valid() {
				return nil, RouteTables{}, fmt.Errorf("access tables: unknown permission level %q for %q/%q", rawLevel, rawRole, rawModule)
			}
			set[module] = level
		}
		overrides[role] = set
	}

	tables := DefaultRouteTables()

	if len(file.RouteModules) > 0 {
		routeModules := make(map[string]Module, len(file.RouteModules))
		for route, rawModule := range file.RouteModules {
			module := Module(rawModule)
			if !validModule(module) {
				return nil, RouteTables{}, fmt.Errorf("access tables: unknown module %q for route %q", rawModule, route)
			}
			routeModules[normalizeRoute(route)] = module
		}
		tables.RouteModules = routeModules
	}

	if len(file.RouteOverrides) > 0 {
		routeOverrides := make(map[string][]Role, len(file.RouteOverrides))
		for route, rawRoles := range file.RouteOverrides {
			roles := make([]Role, 0, len(rawRoles))
			for _, rawRole := range rawRoles {
				role, ok := NormalizeRole(rawRole)
				if !ok {
					return nil, RouteTables{}, fmt.Errorf("access tables: unknown role %q for route %q", rawRole, route)
				}
				roles = append(roles, role)
			}
			routeOverrides[normalizeRoute(route)] = roles
		}
		tables.RouteOverrides = routeOverrides
	}

	return NewCatalogWithOverrides(overrides), tables, nil
}

func validModule(m Module) bool {
	for _, known := range AllModules {
		if m == known {
			return true
		}
	}
	return false
}
