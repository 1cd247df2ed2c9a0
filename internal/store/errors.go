package store

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/ClassTrack/CT-Backend/internal/users"
)

// Postgres unique_violation.
const uniqueViolation = "23505"

// translate maps driver and GORM errors onto the domain sentinels the
// repositories branch on. The only unique constraints on the role tables
// are the username indexes, so a unique violation here is a username
// collision that slipped past the pre-insert check.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return users.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return users.ErrUsernameTaken
	}

	return fmt.Errorf("store: %w", err)
}
