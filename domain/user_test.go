package domain

import "testing"

func TestParseRole(t *testing.T) {
	for _, valid := range []string{"admin", "moderator", "standard"} {
		role, err := ParseRole(valid)
		if err != nil {
			t.Fatalf("parse %q: %v", valid, err)
		}
		if !role.Valid() {
			t.Fatalf("expected %q to be valid", valid)
		}
	}
	for _, invalid := range []string{"", "Admin", "superuser", "root"} {
		if _, err := ParseRole(invalid); err == nil {
			t.Fatalf("expected %q to be rejected", invalid)
		}
	}
}

func TestIdentityOfOmitsSecrets(t *testing.T) {
	u := &User{
		ID:                "id-1",
		Username:          "alice",
		Email:             "alice@example.com",
		PasswordHash:      []byte("digest"),
		Role:              RoleModerator,
		Active:            true,
		Avatar:            "https://example.com/a.png",
		RenewalCredential: "renewal-token",
	}
	id := IdentityOf(u)
	if id.ID != u.ID || id.Email != u.Email || id.Role != u.Role || !id.Active {
		t.Fatalf("unexpected projection: %+v", id)
	}
}
