package domain

type User struct {
	ID        string `db:"id"`
	Email     string `db:"email"`
	Name      string `db:"name"`
	Phone     string `db:"phone"`
	Address   string `db:"address"`
	AvatarURL string `db:"avatar_url"`
	Hash      string `db:"password_hash"`
	Role      string `db:"role"`
}

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// UserDetails is the public shape of a user returned by the API. It never
// carries the password hash or the role.
type UserDetails struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

func (u User) Details() UserDetails {
	return UserDetails{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Phone:     u.Phone,
		Address:   u.Address,
		AvatarURL: u.AvatarURL,
	}
}
