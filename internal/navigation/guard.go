package navigation

import "github.com/novelplatform/novelshell/internal/models"

// Principal is the part of the session the guard decides on
type Principal struct {
	HasToken bool
	Role     models.Role
}

// Guard decides whether principal may enter route.
// It returns "" to allow the navigation, or the path to redirect to.
func Guard(route Route, principal Principal) string {
	isAdmin := principal.Role.IsAdmin()

	if route.Meta.RequiresAdmin {
		if !principal.HasToken {
			return PathAdminLogin
		}
		if !isAdmin {
			return PathMain
		}
		return ""
	}

	if (route.Name == RouteAdminLogin || route.Name == RouteAdminRegister) && principal.HasToken && isAdmin {
		return PathAdmin
	}

	if route.Meta.RequiresAuth && !principal.HasToken {
		return PathLogin
	}
	if route.Meta.RequiresAuthor && principal.Role != models.AuthorRole {
		return PathMain
	}
	return ""
}
