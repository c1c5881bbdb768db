package model

import "golang.org/x/crypto/bcrypt"

// User is an account known to the store, identified by its usersign.
type User struct {
	Name  string
	Note  string
	Roles []string

	// PasswordHash is the bcrypt hash of the user's password. Set it via
	// SetPassword; the store persists it verbatim.
	PasswordHash string
}

// NewUser returns a user with the given usersign.
func NewUser(name string) *User {
	return &User{Name: name}
}

// SetPassword hashes the plaintext password with bcrypt and stores the
// hash on the user.
func (u *User) SetPassword(plain string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword reports whether plain matches the stored password hash.
func (u *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plain)) == nil
}

// AddRole adds a role to the user if not already present.
func (u *User) AddRole(role string) {
	for _, r := range u.Roles {
		if r == role {
			return
		}
	}
	u.Roles = append(u.Roles, role)
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
