package types

// Roles recognized by the route guard.
const (
	RoleAdmin      = "admin"
	RoleManager    = "manager"
	RoleResearcher = "researcher"
	RoleExpert     = "expert"
	RoleGuest      = "guest"
)

// UserProfile is the identity attached to a session. A profile parsed from
// a token alone may lack Department and ID until the backend confirms it.
type UserProfile struct {
	ID         string   `json:"id" yaml:"id"`
	UUID       string   `json:"uuid,omitempty" yaml:"uuid,omitempty"`
	Username   string   `json:"username" yaml:"username"`
	Name       string   `json:"name" yaml:"name"`
	Email      string   `json:"email,omitempty" yaml:"email,omitempty"`
	Role       string   `json:"role,omitempty" yaml:"role,omitempty"`
	Roles      []string `json:"roles" yaml:"roles"`
	Department string   `json:"department,omitempty" yaml:"department,omitempty"`
	Avatar     string   `json:"avatar,omitempty" yaml:"avatar,omitempty"`
}

// Tokens is an access/refresh pair. The two are always replaced together.
type Tokens struct {
	AccessToken  string `json:"accessToken" yaml:"accessToken"`
	RefreshToken string `json:"refreshToken" yaml:"refreshToken"`
}

// AuthReply is the backend's answer to a login or refresh call.
type AuthReply struct {
	Token        string       `json:"token" yaml:"token"`
	RefreshToken string       `json:"refreshToken" yaml:"refreshToken"`
	User         *UserProfile `json:"user,omitempty" yaml:"user,omitempty"`
}
