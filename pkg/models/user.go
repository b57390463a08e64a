package models

// User owns workflows. The password is only ever kept as a bcrypt hash
// and is never serialized.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash []byte `json:"-"`
}
