package users_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ClassTrack/CT-Backend/internal/users"
)

// fakeStore is an in-memory users.Store. It counts fetches so tests can
// tell cache hits from store round-trips.
type fakeStore struct {
	mu     sync.Mutex
	nextID int
	rows   map[users.RoleKind]map[int]users.Record

	fetchByIDCalls       int
	fetchByUsernameCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nextID: 1,
		rows: map[users.RoleKind]map[int]users.Record{
			users.RoleStudent: {},
			users.RoleTeacher: {},
		},
	}
}

func (s *fakeStore) FetchAll(_ context.Context, role users.RoleKind) ([]users.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []users.Record
	for _, rec := range s.rows[role] {
		out = append(out, rec)
	}
	return out, nil
}

func (s *fakeStore) FetchByID(_ context.Context, role users.RoleKind, id int) (*users.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetchByIDCalls++
	if rec, ok := s.rows[role][id]; ok {
		out := rec
		return &out, nil
	}
	return nil, users.ErrNotFound
}

func (s *fakeStore) FetchByUsername(_ context.Context, role users.RoleKind, username string) (*users.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetchByUsernameCalls++
	for _, rec := range s.rows[role] {
		if rec.Username == username {
			out := rec
			return &out, nil
		}
	}
	return nil, users.ErrNotFound
}

func (s *fakeStore) ExistsUsername(_ context.Context, role users.RoleKind, username string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.rows[role] {
		if rec.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) ExistsSalt(_ context.Context, saltHex string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, byID := range s.rows {
		for _, rec := range byID {
			if rec.Credential != nil && rec.Credential.Salt == saltHex {
				return true, nil
			}
		}
	}
	return false, nil
}

func (s *fakeStore) Insert(_ context.Context, rec *users.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.ID = s.nextID
	s.nextID++
	s.rows[rec.Role][rec.ID] = *rec
	return nil
}

func (s *fakeStore) Update(_ context.Context, rec *users.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[rec.Role][rec.ID] = *rec
	return nil
}

func (s *fakeStore) Delete(_ context.Context, role users.RoleKind, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows[role], id)
	return nil
}

func newTestRepos(t *testing.T) (*fakeStore, *users.Repository, *users.Repository) {
	t.Helper()
	store := newFakeStore()
	hasher := users.NewHasher(store)
	return store,
		users.NewRepository(users.RoleStudent, store, hasher),
		users.NewRepository(users.RoleTeacher, store, hasher)
}

func strptr(s string) *string { return &s }

func TestValidate(t *testing.T) {
	_, studentRepo, _ := newTestRepos(t)
	ctx := context.Background()

	_, err := studentRepo.Create(ctx, users.CreateParams{
		Forename: "Amy", Surname: "Pond", Username: "apond", Alps: 58,
		Password: strptr("fish-fingers"),
	})
	require.NoError(t, err)

	rec, err := studentRepo.Validate(ctx, "apond", "fish-fingers")
	require.NoError(t, err)
	assert.Equal(t, "apond", rec.Username)

	_, err = studentRepo.Validate(ctx, "apond", "custard")
	assert.ErrorIs(t, err, users.ErrInvalidCredentials)

	_, err = studentRepo.Validate(ctx, "nobody", "fish-fingers")
	assert.ErrorIs(t, err, users.ErrInvalidCredentials)
}

func TestValidateUnsetCredential(t *testing.T) {
	_, studentRepo, _ := newTestRepos(t)
	ctx := context.Background()

	_, err := studentRepo.Create(ctx, users.CreateParams{
		Forename: "Rory", Surname: "Williams", Username: "rwilliams", Alps: 40,
	})
	require.NoError(t, err)

	// No password was ever set; even an empty attempt must fail.
	_, err = studentRepo.Validate(ctx, "rwilliams", "")
	assert.ErrorIs(t, err, users.ErrInvalidCredentials)
	_, err = studentRepo.Validate(ctx, "rwilliams", "anything")
	assert.ErrorIs(t, err, users.ErrInvalidCredentials)
}

func TestValidateCacheHitStillChecksPassword(t *testing.T) {
	store, studentRepo, _ := newTestRepos(t)
	ctx := context.Background()

	_, err := studentRepo.Create(ctx, users.CreateParams{
		Forename: "Amy", Surname: "Pond", Username: "apond", Alps: 58,
		Password: strptr("fish-fingers"),
	})
	require.NoError(t, err)

	_, err = studentRepo.Validate(ctx, "apond", "fish-fingers")
	require.NoError(t, err)
	fetches := store.fetchByUsernameCalls

	// Cached now, but a wrong password must still be rejected.
	_, err = studentRepo.Validate(ctx, "apond", "wrong")
	assert.ErrorIs(t, err, users.ErrInvalidCredentials)
	// And the right one must pass, without another store round-trip.
	_, err = studentRepo.Validate(ctx, "apond", "fish-fingers")
	assert.NoError(t, err)
	assert.Equal(t, fetches, store.fetchByUsernameCalls)
}

func TestGetByUsernameUsesCache(t *testing.T) {
	store, studentRepo, _ := newTestRepos(t)
	ctx := context.Background()

	_, err := studentRepo.Create(ctx, users.CreateParams{
		Forename: "Amy", Surname: "Pond", Username: "apond", Alps: 58,
	})
	require.NoError(t, err)

	_, err = studentRepo.GetByUsername(ctx, "apond")
	require.NoError(t, err)
	fetches := store.fetchByUsernameCalls

	_, err = studentRepo.GetByUsername(ctx, "apond")
	require.NoError(t, err)
	assert.Equal(t, fetches, store.fetchByUsernameCalls, "second lookup should come from the cache")
}

func TestGetByIDScansCache(t *testing.T) {
	store, studentRepo, _ := newTestRepos(t)
	ctx := context.Background()

	created, err := studentRepo.Create(ctx, users.CreateParams{
		Forename: "Amy", Surname: "Pond", Username: "apond", Alps: 58,
	})
	require.NoError(t, err)

	// Populate the cache through a username lookup, then fetch by id.
	_, err = studentRepo.GetByUsername(ctx, "apond")
	require.NoError(t, err)

	rec, err := studentRepo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "apond", rec.Username)
	assert.Equal(t, 0, store.fetchByIDCalls, "id lookup should have been served by the cache scan")

	_, err = studentRepo.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, users.ErrNotFound)
}

func TestCreateUsernameTaken(t *testing.T) {
	_, studentRepo, _ := newTestRepos(t)
	ctx := context.Background()

	_, err := studentRepo.Create(ctx, users.CreateParams{
		Forename: "Amy", Surname: "Pond", Username: "apond", Alps: 58,
	})
	require.NoError(t, err)

	taken, err := studentRepo.UsernameTaken(ctx, "apond")
	require.NoError(t, err)
	assert.True(t, taken)

	_, err = studentRepo.Create(ctx, users.CreateParams{
		Forename: "Amelia", Surname: "Pond", Username: "apond", Alps: 60,
	})
	assert.ErrorIs(t, err, users.ErrUsernameTaken)
}

func TestTeacherAutoUsername(t *testing.T) {
	_, _, teacherRepo := newTestRepos(t)
	ctx := context.Background()

	first, err := teacherRepo.Create(ctx, users.CreateParams{
		Forename: "John", Surname: "Smith", Title: "Dr",
		Password: strptr("tardis"),
	})
	require.NoError(t, err)
	assert.Equal(t, "jsmith1", first.Username)

	second, err := teacherRepo.Create(ctx, users.CreateParams{
		Forename: "Jane", Surname: "Smith", Title: "Ms",
		Password: strptr("sonic"),
	})
	require.NoError(t, err)
	assert.Equal(t, "jsmith2", second.Username)
}

func TestAutoUsernameExhausted(t *testing.T) {
	_, _, teacherRepo := newTestRepos(t)
	ctx := context.Background()

	for i := 1; i <= 99; i++ {
		_, err := teacherRepo.Create(ctx, users.CreateParams{
			Forename: "Taken", Surname: "User",
			Username: fmt.Sprintf("jsmith%d", i),
			Password: strptr("pw"),
		})
		require.NoError(t, err)
	}

	_, err := teacherRepo.Create(ctx, users.CreateParams{
		Forename: "John", Surname: "Smith", Password: strptr("pw"),
	})
	assert.ErrorIs(t, err, users.ErrUsernameTaken)
}

func TestStudentRequiresUsername(t *testing.T) {
	_, studentRepo, _ := newTestRepos(t)

	_, err := studentRepo.Create(context.Background(), users.CreateParams{
		Forename: "Amy", Surname: "Pond", Alps: 58,
	})
	assert.Error(t, err, "auto-usernames are a teacher-only convenience")
}

func TestUpdateUsernameChecks(t *testing.T) {
	_, studentRepo, _ := newTestRepos(t)
	ctx := context.Background()

	a, err := studentRepo.Create(ctx, users.CreateParams{
		Forename: "Amy", Surname: "Pond", Username: "apond", Alps: 58,
	})
	require.NoError(t, err)
	_, err = studentRepo.Create(ctx, users.CreateParams{
		Forename: "Rory", Surname: "Williams", Username: "rwilliams", Alps: 40,
	})
	require.NoError(t, err)

	// Updating to a username another record owns is a collision.
	updated := *a
	updated.Username = "rwilliams"
	_, err = studentRepo.Update(ctx, a, updated, false, nil)
	assert.ErrorIs(t, err, users.ErrUsernameTaken)

	// Writing a record back with its own username is not.
	updated = *a
	updated.Surname = "Pond-Williams"
	rec, err := studentRepo.Update(ctx, a, updated, false, nil)
	require.NoError(t, err)
	assert.Equal(t, "apond", rec.Username)
	assert.Equal(t, "Pond-Williams", rec.Surname)
}

func TestUpdateInvalidatesCache(t *testing.T) {
	store, studentRepo, _ := newTestRepos(t)
	ctx := context.Background()

	a, err := studentRepo.Create(ctx, users.CreateParams{
		Forename: "Amy", Surname: "Pond", Username: "apond", Alps: 58,
	})
	require.NoError(t, err)

	_, err = studentRepo.GetByUsername(ctx, "apond")
	require.NoError(t, err)
	fetches := store.fetchByUsernameCalls

	updated := *a
	updated.Surname = "Song"
	_, err = studentRepo.Update(ctx, a, updated, false, nil)
	require.NoError(t, err)

	// The stale cache entry is gone: the next lookup goes to the store
	// and sees the new surname. (Update itself re-checks the username
	// against the store, which accounts for one extra fetch.)
	rec, err := studentRepo.GetByUsername(ctx, "apond")
	require.NoError(t, err)
	assert.Equal(t, "Song", rec.Surname)
	assert.Greater(t, store.fetchByUsernameCalls, fetches)
}

func TestUpdatePasswordHandling(t *testing.T) {
	_, studentRepo, _ := newTestRepos(t)
	ctx := context.Background()

	a, err := studentRepo.Create(ctx, users.CreateParams{
		Forename: "Amy", Surname: "Pond", Username: "apond", Alps: 58,
		Password: strptr("old-password"),
	})
	require.NoError(t, err)

	// Unrelated update keeps the credential.
	updated := *a
	updated.Alps = 60
	a2, err := studentRepo.Update(ctx, a, updated, false, nil)
	require.NoError(t, err)
	_, err = studentRepo.Validate(ctx, "apond", "old-password")
	assert.NoError(t, err)

	// New password replaces it.
	a3, err := studentRepo.Update(ctx, a2, *a2, false, strptr("new-password"))
	require.NoError(t, err)
	_, err = studentRepo.Validate(ctx, "apond", "old-password")
	assert.ErrorIs(t, err, users.ErrInvalidCredentials)
	_, err = studentRepo.Validate(ctx, "apond", "new-password")
	assert.NoError(t, err)

	// Reset clears it entirely: no password works any more.
	_, err = studentRepo.Update(ctx, a3, *a3, true, nil)
	require.NoError(t, err)
	_, err = studentRepo.Validate(ctx, "apond", "new-password")
	assert.ErrorIs(t, err, users.ErrInvalidCredentials)
	_, err = studentRepo.Validate(ctx, "apond", "")
	assert.ErrorIs(t, err, users.ErrInvalidCredentials)
}

func TestDeleteInvalidatesCache(t *testing.T) {
	_, studentRepo, _ := newTestRepos(t)
	ctx := context.Background()

	a, err := studentRepo.Create(ctx, users.CreateParams{
		Forename: "Amy", Surname: "Pond", Username: "apond", Alps: 58,
		Password: strptr("fish-fingers"),
	})
	require.NoError(t, err)

	_, err = studentRepo.Validate(ctx, "apond", "fish-fingers")
	require.NoError(t, err)

	require.NoError(t, studentRepo.Delete(ctx, a.ID))

	// A deleted account must not keep authenticating out of the cache.
	_, err = studentRepo.Validate(ctx, "apond", "fish-fingers")
	assert.ErrorIs(t, err, users.ErrInvalidCredentials)
}

func TestAllBypassesCache(t *testing.T) {
	_, studentRepo, _ := newTestRepos(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := studentRepo.Create(ctx, users.CreateParams{
			Forename: "S", Surname: "Tudent",
			Username: fmt.Sprintf("student%d", i), Alps: i,
		})
		require.NoError(t, err)
	}

	all, err := studentRepo.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
