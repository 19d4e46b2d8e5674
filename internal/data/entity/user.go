package entity

type UserRole string

const (
	RoleUser      UserRole = "user"
	RoleModerator UserRole = "moderator"
	RoleAdmin     UserRole = "admin"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	Base
	Username    string   `db:"username"`
	Email       string   `db:"email"`
	FirstName   *string  `db:"first_name"`
	LastName    *string  `db:"last_name"`
	Bio         *string  `db:"bio"`
	Role        UserRole `db:"role"`
	IsSuperuser bool     `db:"is_superuser"`
}

// IsAdmin reports whether the user holds admin powers, either through the
// admin role or the superuser flag.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.IsSuperuser
}

func (u *User) IsModerator() bool {
	return u.Role == RoleModerator
}
