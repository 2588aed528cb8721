package domain

import "time"

// User is an account as stored by the identity backend.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"nombre"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"rol"`
	Phone        string    `json:"telefono,omitempty"`
	Verified     bool      `json:"verificado"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Identity projects the account into the record handed to browser sessions.
func (u *User) Identity() *Identity {
	fields := map[string]any{
		FieldID:       u.ID,
		FieldName:     u.Name,
		FieldEmail:    u.Email,
		FieldRole:     u.Role,
		FieldVerified: u.Verified,
	}
	if u.Phone != "" {
		fields[FieldPhone] = u.Phone
	}
	return &Identity{fields: fields, role: ParseRole(u.Role)}
}
