package domain

// Identity is the public-facing snapshot of a user handed to request handlers
// after token resolution. It never carries the password hash or the renewal
// credential.
type Identity struct {
	ID       string
	Username string
	Email    string
	Role     Role
	Avatar   string
	Active   bool
}

// IdentityOf projects a user record onto its public snapshot.
func IdentityOf(u *User) Identity {
	return Identity{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
		Avatar:   u.Avatar,
		Active:   u.Active,
	}
}
