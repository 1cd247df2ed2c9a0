// Package auth implements the route-level access guard: policy
// middleware over the per-role user repositories plus the shared admin
// secret.
package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/ClassTrack/CT-Backend/internal/users"
	"github.com/ClassTrack/CT-Backend/internal/utils"
)

// Policy selects what a route accepts.
type Policy int

const (
	// PolicyNone authorizes every request; credentials are not inspected.
	PolicyNone Policy = iota
	// PolicyStudent requires valid student credentials.
	PolicyStudent
	// PolicyTeacher requires valid teacher credentials.
	PolicyTeacher
	// PolicyAny accepts a valid student or teacher, student checked first.
	PolicyAny
	// PolicyAdmin accepts the shared admin code in the "admin" form
	// field, or valid teacher credentials.
	PolicyAdmin
)

// Principal is the identity a guarded route runs as. Admin principals
// (resolved from the admin code) carry no user record.
type Principal struct {
	Admin bool
	User  *users.Record
}

type Guard struct {
	students *users.Repository
	teachers *users.Repository
	admin    *AdminValidator
}

func NewGuard(students, teachers *users.Repository, admin *AdminValidator) *Guard {
	return &Guard{students: students, teachers: teachers, admin: admin}
}

// Require returns middleware enforcing the policy. On success the
// resolved principal is attached to the request context; handlers that
// want it read it back with PrincipalFromContext. Malformed credentials
// are a 400 (a protocol error, not a failed login); well-formed but
// invalid credentials are a 401.
func (g *Guard) Require(policy Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if policy == PolicyNone {
				next.ServeHTTP(w, r)
				return
			}

			principal, status := g.resolve(r, policy)
			switch status {
			case http.StatusOK:
				ctx := utils.WithPrincipal(r.Context(), principal)
				next.ServeHTTP(w, r.WithContext(ctx))
			case http.StatusBadRequest:
				http.Error(w, "Malformed Authorization header", http.StatusBadRequest)
			case http.StatusUnauthorized:
				http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			default:
				http.Error(w, "Authorization check failed", http.StatusInternalServerError)
			}
		})
	}
}

func (g *Guard) resolve(r *http.Request, policy Policy) (Principal, int) {
	// The admin code branch never touches the Authorization header.
	if policy == PolicyAdmin {
		if code := r.FormValue("admin"); code != "" {
			if g.admin.IsValid(code) {
				return Principal{Admin: true}, http.StatusOK
			}
			return Principal{}, http.StatusUnauthorized
		}
	}

	username, password, ok := credentials(r)
	if !ok {
		return Principal{}, http.StatusBadRequest
	}

	ctx := r.Context()
	switch policy {
	case PolicyStudent:
		return validateWith(ctx, g.students, username, password)
	case PolicyTeacher, PolicyAdmin:
		return validateWith(ctx, g.teachers, username, password)
	case PolicyAny:
		principal, status := validateWith(ctx, g.students, username, password)
		if status == http.StatusUnauthorized {
			return validateWith(ctx, g.teachers, username, password)
		}
		return principal, status
	}
	return Principal{}, http.StatusUnauthorized
}

// credentials pulls username and password out of the Authorization
// header: base64 over "username:password", split on the first colon.
func credentials(r *http.Request) (username, password string, ok bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(header)
	if err != nil {
		return "", "", false
	}
	username, password, found := strings.Cut(string(decoded), ":")
	if !found {
		return "", "", false
	}
	return username, password, true
}

func validateWith(ctx context.Context, repo *users.Repository, username, password string) (Principal, int) {
	rec, err := repo.Validate(ctx, username, password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			return Principal{}, http.StatusUnauthorized
		}
		return Principal{}, http.StatusInternalServerError
	}
	return Principal{User: rec}, http.StatusOK
}

// PrincipalFromContext returns the identity the guard resolved for this
// request, if the route was guarded by a credential-checking policy.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	principal, ok := utils.PrincipalValue(ctx).(Principal)
	return principal, ok
}
