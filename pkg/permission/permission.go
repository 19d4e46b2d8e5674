package permission

import (
	"net/http"

	"github.com/google/uuid"

	"mediateka/internal/data/entity"
)

// Identity describes the requester a policy decides about. It is rebuilt
// from the store on every request and never cached across requests.
type Identity struct {
	UserID        uuid.UUID
	Username      string
	Role          entity.UserRole
	Superuser     bool
	Authenticated bool
}

func (i Identity) IsAdmin() bool {
	return i.Authenticated && (i.Role == entity.RoleAdmin || i.Superuser)
}

func (i Identity) IsModerator() bool {
	return i.Authenticated && i.Role == entity.RoleModerator
}

// Anonymous is the identity of a request without credentials.
func Anonymous() Identity {
	return Identity{}
}

func FromUser(u *entity.User) Identity {
	return Identity{
		UserID:        u.ID,
		Username:      u.Username,
		Role:          u.Role,
		Superuser:     u.IsSuperuser,
		Authenticated: true,
	}
}

// Request carries exactly what a policy needs: the HTTP method and the
// identity attached to it.
type Request struct {
	Method   string
	Identity Identity
}

// Authored is implemented by records that remember who wrote them.
type Authored interface {
	Author() uuid.UUID
}

// Policy authorizes a request against a collection and, where it matters,
// against a single record. Denial carries no side effects.
type Policy interface {
	Authorize(req Request) bool
	AuthorizeObject(req Request, obj Authored) bool
}

// SafeMethod reports whether the method is read-only for authorization
// purposes (GET, HEAD, OPTIONS).
func SafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
