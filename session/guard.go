package session

import "github.com/photoshare/identity/domain"

// Require gates a privileged operation: the identity's role must belong to
// the allowed set. Pure membership check, no I/O.
func Require(identity *domain.Identity, allowed ...domain.Role) error {
	if identity == nil {
		return ErrForbidden
	}
	for _, role := range allowed {
		if identity.Role == role {
			return nil
		}
	}
	return ErrForbidden
}
