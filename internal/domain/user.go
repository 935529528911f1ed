package domain

// User roles.
const (
	RoleAdmin   = "admin"
	RoleDefault = "default"
)

// User is a registered bot member. ID is the Telegram user id.
type User struct {
	ID        int64  `db:"id"`
	FirstName string `db:"first_name"`
	LastName  string `db:"last_name"`
	Username  string `db:"username"`
	IsBot     bool   `db:"is_bot"`
	Role      string `db:"role"`
}

// FullName joins first and last name the way Telegram displays them.
func (u User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// URL returns the public profile link, or empty if the user has no username.
func (u User) URL() string {
	if u.Username == "" {
		return ""
	}
	return "https://t.me/" + u.Username
}

// IsAdmin reports whether the user carries the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
