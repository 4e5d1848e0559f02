package domain

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
	RoleOwner Role = "owner"
)

// Session identifies the caller of an operation. It is passed explicitly
// instead of being kept as process-wide state.
type Session struct {
	Role        Role
	PrincipalID int64
}

func UserSession(id int64) Session  { return Session{Role: RoleUser, PrincipalID: id} }
func AdminSession(id int64) Session { return Session{Role: RoleAdmin, PrincipalID: id} }
func OwnerSession(id int64) Session { return Session{Role: RoleOwner, PrincipalID: id} }

func (s Session) IsAdmin() bool { return s.Role == RoleAdmin }

func (s Session) IsUser(id int64) bool { return s.Role == RoleUser && s.PrincipalID == id }

func (s Session) IsOwner(id int64) bool { return s.Role == RoleOwner && s.PrincipalID == id }
