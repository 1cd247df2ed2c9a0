package users

import "context"

// RoleKind discriminates the two account tables. It replaces any dynamic
// role dispatch: everything role-specific hangs off this enum.
type RoleKind int

const (
	RoleStudent RoleKind = iota
	RoleTeacher
)

func (r RoleKind) String() string {
	if r == RoleTeacher {
		return "teacher"
	}
	return "student"
}

// MaxAlps bounds the student ALPS attribute.
const MaxAlps = 90

// Credential is a salted password digest. Salt is 16 random bytes, hex
// encoded; Hash is the hex SHA-256 of the password bytes followed by the
// salt bytes. Salts are unique across both account tables.
type Credential struct {
	Salt string
	Hash string
}

// Record is a student or teacher account. Credential is nil when no
// password has been set, in which case the account cannot authenticate.
// Alps is meaningful for students, Title for teachers.
type Record struct {
	ID       int
	Role     RoleKind
	Username string
	Forename string
	Surname  string

	Credential *Credential

	Alps  int
	Title string
}

// Store is the narrow persistence collaborator the repositories call
// through. Implementations persist one row per record, assign IDs on
// insert, and report absence as ErrNotFound. ExistsSalt covers both role
// tables at once.
type Store interface {
	FetchAll(ctx context.Context, role RoleKind) ([]Record, error)
	FetchByID(ctx context.Context, role RoleKind, id int) (*Record, error)
	FetchByUsername(ctx context.Context, role RoleKind, username string) (*Record, error)
	ExistsUsername(ctx context.Context, role RoleKind, username string) (bool, error)
	ExistsSalt(ctx context.Context, saltHex string) (bool, error)
	Insert(ctx context.Context, rec *Record) error
	Update(ctx context.Context, rec *Record) error
	Delete(ctx context.Context, role RoleKind, id int) error
}
