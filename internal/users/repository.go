package users

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/ClassTrack/CT-Backend/internal/cache"
)

const autoUsernameLimit = 99

// Repository manages the accounts of a single role. Each repository owns
// its cache of recently verified records, keyed by username; the store
// stays the source of truth for every mutation.
type Repository struct {
	role   RoleKind
	store  Store
	hasher *Hasher
	cache  *cache.Cache[*Record]
}

func NewRepository(role RoleKind, store Store, hasher *Hasher) *Repository {
	return &Repository{
		role:   role,
		store:  store,
		hasher: hasher,
		cache:  cache.New[*Record](cache.DefaultLimit),
	}
}

func (r *Repository) Role() RoleKind { return r.role }

// GetByID looks the record up by id. The cache is keyed by username, so
// this is a linear scan over the cached entries before falling back to
// the store.
func (r *Repository) GetByID(ctx context.Context, id int) (*Record, error) {
	if _, rec, ok := r.cache.Find(func(rec *Record) bool { return rec.ID == id }); ok {
		return rec, nil
	}

	rec, err := r.store.FetchByID(ctx, r.role, id)
	if err != nil {
		return nil, err
	}
	r.cache.Put(rec.Username, rec)
	return rec, nil
}

func (r *Repository) GetByUsername(ctx context.Context, username string) (*Record, error) {
	if rec, ok := r.cache.Get(username); ok {
		return rec, nil
	}

	rec, err := r.store.FetchByUsername(ctx, r.role, username)
	if err != nil {
		return nil, err
	}
	r.cache.Put(username, rec)
	return rec, nil
}

// All returns every record of the role in store order, bypassing the
// cache.
func (r *Repository) All(ctx context.Context) ([]Record, error) {
	return r.store.FetchAll(ctx, r.role)
}

// CreateParams carries the fields for a new account. Password nil means
// no credential is generated and the account cannot log in until a
// password is set. An empty Username asks for an auto-derived one
// (teachers only).
type CreateParams struct {
	Forename string
	Surname  string
	Username string
	Alps     int
	Title    string
	Password *string
}

func (r *Repository) Create(ctx context.Context, p CreateParams) (*Record, error) {
	username := p.Username
	if username == "" {
		if r.role != RoleTeacher {
			return nil, fmt.Errorf("username is required for %s accounts", r.role)
		}
		derived, err := r.deriveUsername(ctx, p.Forename, p.Surname)
		if err != nil {
			return nil, err
		}
		username = derived
	} else {
		taken, err := r.store.ExistsUsername(ctx, r.role, username)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrUsernameTaken
		}
	}

	var cred *Credential
	if p.Password != nil {
		c, err := r.hasher.Generate(ctx, *p.Password)
		if err != nil {
			return nil, err
		}
		cred = c
	}

	rec := &Record{
		Role:       r.role,
		Username:   username,
		Forename:   p.Forename,
		Surname:    p.Surname,
		Alps:       p.Alps,
		Title:      p.Title,
		Credential: cred,
	}
	if err := r.store.Insert(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// deriveUsername tries "first initial + surname" with suffixes 1..99 and
// takes the first free candidate.
func (r *Repository) deriveUsername(ctx context.Context, forename, surname string) (string, error) {
	base := baseUsername(forename, surname)
	if base == "" {
		return "", fmt.Errorf("cannot derive a username from %q %q", forename, surname)
	}

	for i := 1; i <= autoUsernameLimit; i++ {
		candidate := base + strconv.Itoa(i)
		taken, err := r.store.ExistsUsername(ctx, r.role, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", ErrUsernameTaken
}

// Update replaces the mutable fields of current with those of updated.
// The username uniqueness re-check excludes the record's own id, so
// writing a record back with its own username is not a collision. The
// cache entry under the pre-update username is dropped either way.
//
// Credential handling: resetPassword clears it (login disabled),
// otherwise a non-nil newPassword replaces it, otherwise it is carried
// over untouched.
func (r *Repository) Update(ctx context.Context, current *Record, updated Record, resetPassword bool, newPassword *string) (*Record, error) {
	owner, err := r.store.FetchByUsername(ctx, r.role, updated.Username)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if owner != nil && owner.ID != current.ID {
		return nil, ErrUsernameTaken
	}

	r.cache.Invalidate(current.Username)

	rec := updated
	rec.ID = current.ID
	rec.Role = r.role
	switch {
	case resetPassword:
		rec.Credential = nil
	case newPassword != nil:
		cred, err := r.hasher.Generate(ctx, *newPassword)
		if err != nil {
			return nil, err
		}
		rec.Credential = cred
	default:
		rec.Credential = current.Credential
	}

	if err := r.store.Update(ctx, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Delete removes the row and drops any cache entry holding it, so a
// deleted account cannot keep authenticating out of the cache.
func (r *Repository) Delete(ctx context.Context, id int) error {
	if key, _, ok := r.cache.Find(func(rec *Record) bool { return rec.ID == id }); ok {
		r.cache.Invalidate(key)
	}
	return r.store.Delete(ctx, r.role, id)
}

// Validate is the authentication entry point. A cache hit is not trusted
// as already-authenticated: the password is verified against the cached
// credential every time. Accounts with no credential set never validate,
// whatever the attempt.
func (r *Repository) Validate(ctx context.Context, username, password string) (*Record, error) {
	if rec, ok := r.cache.Get(username); ok {
		if r.hasher.Verify(password, rec.Credential) {
			return rec, nil
		}
		return nil, ErrInvalidCredentials
	}

	rec, err := r.store.FetchByUsername(ctx, r.role, username)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if rec.Credential == nil {
		return nil, ErrInvalidCredentials
	}
	if !r.hasher.Verify(password, rec.Credential) {
		return nil, ErrInvalidCredentials
	}

	r.cache.Put(username, rec)
	return rec, nil
}

func (r *Repository) UsernameTaken(ctx context.Context, username string) (bool, error) {
	return r.store.ExistsUsername(ctx, r.role, username)
}
