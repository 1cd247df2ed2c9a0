// Package store implements the persistence collaborator behind the user
// repositories: single-statement row fetches and writes over GORM, one
// table per role.
package store

import (
	"context"
	"log"

	"gorm.io/gorm"

	"github.com/ClassTrack/CT-Backend/internal/db"
	"github.com/ClassTrack/CT-Backend/internal/users"
)

type studentRow struct {
	ID       int    `gorm:"primaryKey"`
	Forename string `gorm:"not null"`
	Surname  string `gorm:"not null"`
	Username string `gorm:"uniqueIndex;not null"`
	Salt     *string
	Password *string
	Alps     int
}

func (studentRow) TableName() string { return "classtrack.students" }

type teacherRow struct {
	ID       int    `gorm:"primaryKey"`
	Forename string `gorm:"not null"`
	Surname  string `gorm:"not null"`
	Username string `gorm:"uniqueIndex;not null"`
	Title    string
	Salt     *string
	Password *string
}

func (teacherRow) TableName() string { return "classtrack.teachers" }

// Store issues the row-level statements the repositories need. Every
// operation is a single statement; transactional semantics stay with
// Postgres.
type Store struct {
	db *gorm.DB
}

func New(gdb *gorm.DB) *Store {
	return &Store{db: gdb}
}

// Init creates the schema and role tables.
func Init() {
	if err := db.EnsureSchema(db.DB, "classtrack"); err != nil {
		log.Fatal("Failed to ensure schema classtrack: ", err)
	}
	if err := db.DB.AutoMigrate(&studentRow{}, &teacherRow{}); err != nil {
		log.Fatal("Failed to auto-migrate user tables: ", err)
	}
}

func (s *Store) FetchAll(ctx context.Context, role users.RoleKind) ([]users.Record, error) {
	if role == users.RoleTeacher {
		var rows []teacherRow
		if err := s.db.WithContext(ctx).Order("id DESC").Find(&rows).Error; err != nil {
			return nil, translate(err)
		}
		records := make([]users.Record, 0, len(rows))
		for _, row := range rows {
			records = append(records, *row.record())
		}
		return records, nil
	}

	var rows []studentRow
	if err := s.db.WithContext(ctx).Order("id DESC").Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	records := make([]users.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, *row.record())
	}
	return records, nil
}

func (s *Store) FetchByID(ctx context.Context, role users.RoleKind, id int) (*users.Record, error) {
	if role == users.RoleTeacher {
		var row teacherRow
		if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
			return nil, translate(err)
		}
		return row.record(), nil
	}

	var row studentRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return row.record(), nil
}

func (s *Store) FetchByUsername(ctx context.Context, role users.RoleKind, username string) (*users.Record, error) {
	if role == users.RoleTeacher {
		var row teacherRow
		if err := s.db.WithContext(ctx).First(&row, "username = ?", username).Error; err != nil {
			return nil, translate(err)
		}
		return row.record(), nil
	}

	var row studentRow
	if err := s.db.WithContext(ctx).First(&row, "username = ?", username).Error; err != nil {
		return nil, translate(err)
	}
	return row.record(), nil
}

func (s *Store) ExistsUsername(ctx context.Context, role users.RoleKind, username string) (bool, error) {
	table := studentRow{}.TableName()
	if role == users.RoleTeacher {
		table = teacherRow{}.TableName()
	}

	var exists bool
	err := s.db.WithContext(ctx).
		Raw(`SELECT EXISTS (SELECT 1 FROM `+table+` WHERE username = ?)`, username).
		Scan(&exists).Error
	if err != nil {
		return false, translate(err)
	}
	return exists, nil
}

// ExistsSalt checks both role tables at once: salt uniqueness holds
// across the whole account population, not per role.
func (s *Store) ExistsSalt(ctx context.Context, saltHex string) (bool, error) {
	var exists bool
	err := s.db.WithContext(ctx).
		Raw(`SELECT EXISTS (
			SELECT salt FROM `+studentRow{}.TableName()+` WHERE salt = ?
			UNION
			SELECT salt FROM `+teacherRow{}.TableName()+` WHERE salt = ?
		)`, saltHex, saltHex).
		Scan(&exists).Error
	if err != nil {
		return false, translate(err)
	}
	return exists, nil
}

func (s *Store) Insert(ctx context.Context, rec *users.Record) error {
	if rec.Role == users.RoleTeacher {
		row := teacherRowFrom(rec)
		if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
			return translate(err)
		}
		rec.ID = row.ID
		return nil
	}

	row := studentRowFrom(rec)
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return translate(err)
	}
	rec.ID = row.ID
	return nil
}

func (s *Store) Update(ctx context.Context, rec *users.Record) error {
	// Save writes the full row, including nil salt/password when a
	// credential has been reset.
	if rec.Role == users.RoleTeacher {
		return translate(s.db.WithContext(ctx).Save(teacherRowFrom(rec)).Error)
	}
	return translate(s.db.WithContext(ctx).Save(studentRowFrom(rec)).Error)
}

func (s *Store) Delete(ctx context.Context, role users.RoleKind, id int) error {
	if role == users.RoleTeacher {
		return translate(s.db.WithContext(ctx).Delete(&teacherRow{}, id).Error)
	}
	return translate(s.db.WithContext(ctx).Delete(&studentRow{}, id).Error)
}

func (r studentRow) record() *users.Record {
	return &users.Record{
		ID:         r.ID,
		Role:       users.RoleStudent,
		Username:   r.Username,
		Forename:   r.Forename,
		Surname:    r.Surname,
		Alps:       r.Alps,
		Credential: credentialFrom(r.Salt, r.Password),
	}
}

func (r teacherRow) record() *users.Record {
	return &users.Record{
		ID:         r.ID,
		Role:       users.RoleTeacher,
		Username:   r.Username,
		Forename:   r.Forename,
		Surname:    r.Surname,
		Title:      r.Title,
		Credential: credentialFrom(r.Salt, r.Password),
	}
}

func studentRowFrom(rec *users.Record) *studentRow {
	salt, password := credentialColumns(rec.Credential)
	return &studentRow{
		ID:       rec.ID,
		Forename: rec.Forename,
		Surname:  rec.Surname,
		Username: rec.Username,
		Salt:     salt,
		Password: password,
		Alps:     rec.Alps,
	}
}

func teacherRowFrom(rec *users.Record) *teacherRow {
	salt, password := credentialColumns(rec.Credential)
	return &teacherRow{
		ID:       rec.ID,
		Forename: rec.Forename,
		Surname:  rec.Surname,
		Username: rec.Username,
		Title:    rec.Title,
		Salt:     salt,
		Password: password,
	}
}

func credentialFrom(salt, password *string) *users.Credential {
	if salt == nil || password == nil {
		return nil
	}
	return &users.Credential{Salt: *salt, Hash: *password}
}

func credentialColumns(cred *users.Credential) (salt, password *string) {
	if cred == nil {
		return nil, nil
	}
	return &cred.Salt, &cred.Hash
}
