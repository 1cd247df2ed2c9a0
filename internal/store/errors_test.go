package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/ClassTrack/CT-Backend/internal/users"
)

func TestTranslateNil(t *testing.T) {
	if got := translate(nil); got != nil {
		t.Errorf("translate(nil) = %v, want nil", got)
	}
}

func TestTranslateSentinels(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"record not found", gorm.ErrRecordNotFound, users.ErrNotFound},
		{"wrapped record not found", fmt.Errorf("query: %w", gorm.ErrRecordNotFound), users.ErrNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505"}, users.ErrUsernameTaken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := translate(tt.in); !errors.Is(got, tt.want) {
				t.Errorf("translate(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestTranslateWrapsOtherErrors(t *testing.T) {
	tests := []struct {
		name string
		in   error
	}{
		{"other pg error", &pgconn.PgError{Code: "40001"}},
		{"opaque error", errors.New("connection reset")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translate(tt.in)
			if got == nil {
				t.Fatal("expected wrapped error, got nil")
			}
			if errors.Is(got, users.ErrNotFound) || errors.Is(got, users.ErrUsernameTaken) {
				t.Errorf("must not map to a domain sentinel, got %v", got)
			}
			if !errors.Is(got, tt.in) {
				t.Errorf("wrapped error lost the cause: %v", got)
			}
		})
	}
}
