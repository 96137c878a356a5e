package models

// Authentication methods accepted in the user file. New accounts are
// created with bcrypt; cleartext exists for the seeded demo credential.
const (
	AuthBcrypt    = "bcrypt"
	AuthCleartext = "cleartext"
)

// User is an account record from the user store.
type User struct {
	Name       string   `json:"-"`
	Active     bool     `json:"active"`
	AuthMethod string   `json:"authentication_method"`
	Password   string   `json:"password,omitempty"`
	Hash       string   `json:"hash,omitempty"`
	Roles      []string `json:"roles"`
}

// HasRole reports whether the user carries the given role.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
