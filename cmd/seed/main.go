// Command seed loads a YAML roster of teachers, students and groups
// into the database. Records go through the user repositories so that
// passwords are salted and hashed exactly as production writes them.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/ClassTrack/CT-Backend/internal/db"
	"github.com/ClassTrack/CT-Backend/internal/groups"
	"github.com/ClassTrack/CT-Backend/internal/store"
	"github.com/ClassTrack/CT-Backend/internal/users"
)

var (
	rosterPath = flag.String("roster", "", "Path to the YAML roster (required)")
	dryRun     = flag.Bool("dry-run", false, "Parse + validate only; no DB writes")
)

type rosterTeacher struct {
	Forename string `yaml:"forename"`
	Surname  string `yaml:"surname"`
	Username string `yaml:"username"`
	Title    string `yaml:"title"`
	Password string `yaml:"password"`
}

type rosterStudent struct {
	Forename string `yaml:"forename"`
	Surname  string `yaml:"surname"`
	Username string `yaml:"username"`
	Alps     int    `yaml:"alps"`
	Password string `yaml:"password"`
}

type rosterGroup struct {
	Name    string   `yaml:"name"`
	Subject string   `yaml:"subject"`
	Teacher string   `yaml:"teacher"` // username
	Members []string `yaml:"members"` // student usernames
}

type roster struct {
	Teachers []rosterTeacher `yaml:"teachers"`
	Students []rosterStudent `yaml:"students"`
	Groups   []rosterGroup   `yaml:"groups"`
}

func main() {
	_ = godotenv.Load(".env.local")
	flag.Parse()

	if *rosterPath == "" {
		log.Fatal("-roster is required")
	}

	raw, err := os.ReadFile(*rosterPath)
	if err != nil {
		log.Fatal("Failed to read roster: ", err)
	}
	var r roster
	if err := yaml.Unmarshal(raw, &r); err != nil {
		log.Fatal("Failed to parse roster: ", err)
	}

	if err := validate(&r); err != nil {
		log.Fatal("Invalid roster: ", err)
	}
	fmt.Printf("Roster: %d teachers, %d students, %d groups\n",
		len(r.Teachers), len(r.Students), len(r.Groups))

	if *dryRun {
		fmt.Println("Dry run, nothing written")
		return
	}

	db.Connect()
	store.Init()
	groups.Init()

	batch := uuid.NewString()[:8]
	log.Println("Seeding batch", batch)

	st := store.New(db.DB)
	hasher := users.NewHasher(st)
	studentRepo := users.NewRepository(users.RoleStudent, st, hasher)
	teacherRepo := users.NewRepository(users.RoleTeacher, st, hasher)

	ctx := context.Background()
	teacherIDs := make(map[string]int)
	studentIDs := make(map[string]int)

	for _, t := range r.Teachers {
		password := t.Password
		rec, err := teacherRepo.Create(ctx, users.CreateParams{
			Forename: t.Forename,
			Surname:  t.Surname,
			Username: t.Username,
			Title:    t.Title,
			Password: &password,
		})
		if err != nil {
			log.Fatalf("Failed to create teacher %s %s: %v", t.Forename, t.Surname, err)
		}
		teacherIDs[rec.Username] = rec.ID
		log.Printf("[%s] teacher %s (id %d)", batch, rec.Username, rec.ID)
	}

	for _, s := range r.Students {
		var password *string
		if s.Password != "" {
			password = &s.Password
		}
		rec, err := studentRepo.Create(ctx, users.CreateParams{
			Forename: s.Forename,
			Surname:  s.Surname,
			Username: s.Username,
			Alps:     s.Alps,
			Password: password,
		})
		if err != nil {
			log.Fatalf("Failed to create student %s: %v", s.Username, err)
		}
		studentIDs[rec.Username] = rec.ID
		log.Printf("[%s] student %s (id %d)", batch, rec.Username, rec.ID)
	}

	for _, g := range r.Groups {
		teacherID, ok := teacherIDs[g.Teacher]
		if !ok {
			log.Fatalf("Group %q references unknown teacher %q", g.Name, g.Teacher)
		}
		group := groups.Group{TeacherID: teacherID, Name: g.Name, Subject: g.Subject}
		if err := db.DB.Create(&group).Error; err != nil {
			log.Fatalf("Failed to create group %q: %v", g.Name, err)
		}
		for _, member := range g.Members {
			studentID, ok := studentIDs[member]
			if !ok {
				log.Fatalf("Group %q references unknown student %q", g.Name, member)
			}
			m := groups.Membership{GroupID: group.ID, StudentID: studentID}
			if err := db.DB.Create(&m).Error; err != nil {
				log.Fatalf("Failed to enrol %q in %q: %v", member, g.Name, err)
			}
		}
		log.Printf("[%s] group %s (id %d, %d members)", batch, g.Name, group.ID, len(g.Members))
	}

	log.Println("Seeding complete")
}

func validate(r *roster) error {
	for _, t := range r.Teachers {
		if t.Forename == "" || t.Surname == "" || t.Password == "" {
			return fmt.Errorf("teacher %q %q needs forename, surname and password", t.Forename, t.Surname)
		}
	}
	for _, s := range r.Students {
		if s.Forename == "" || s.Surname == "" || s.Username == "" {
			return fmt.Errorf("student %q %q needs forename, surname and username", s.Forename, s.Surname)
		}
		if s.Alps < 0 || s.Alps > users.MaxAlps {
			return fmt.Errorf("student %q: alps %d out of range", s.Username, s.Alps)
		}
	}
	for _, g := range r.Groups {
		if g.Name == "" || g.Teacher == "" {
			return fmt.Errorf("group %q needs a name and a teacher", g.Name)
		}
	}
	return nil
}
