package auth

import (
	userModel "github.com/frahmantamala/farm-management/internal/core/datamodel/user"
)

// FlattenPermissions projects the module -> action -> path_endpoint graph
// onto the flat set of route patterns a user may invoke. Inactive modules
// contribute nothing. Pure function; routing-framework agnostic.
func FlattenPermissions(modules []userModel.Module) []string {
	seen := make(map[string]struct{})
	var endpoints []string

	for _, module := range modules {
		if !module.IsActive {
			continue
		}
		for _, action := range module.Actions {
			if action.PathEndpoint == "" {
				continue
			}
			if _, dup := seen[action.PathEndpoint]; dup {
				continue
			}
			seen[action.PathEndpoint] = struct{}{}
			endpoints = append(endpoints, action.PathEndpoint)
		}
	}

	return endpoints
}
