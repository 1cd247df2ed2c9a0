package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/ClassTrack/CT-Backend/internal/auth"
	"github.com/ClassTrack/CT-Backend/internal/db"
	"github.com/ClassTrack/CT-Backend/internal/groups"
	"github.com/ClassTrack/CT-Backend/internal/marks"
	"github.com/ClassTrack/CT-Backend/internal/middleware"
	"github.com/ClassTrack/CT-Backend/internal/store"
	"github.com/ClassTrack/CT-Backend/internal/students"
	"github.com/ClassTrack/CT-Backend/internal/tasks"
	"github.com/ClassTrack/CT-Backend/internal/teachers"
	"github.com/ClassTrack/CT-Backend/internal/users"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	response := "Server is up!"
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, response)
}

func main() {
	_ = godotenv.Load(".env.local")
	db.Connect()

	port := os.Getenv("PORT")
	if port == "" {
		port = "5050"
	}

	store.Init()
	groups.Init()
	tasks.Init()
	marks.Init()

	st := store.New(db.DB)
	hasher := users.NewHasher(st)
	studentRepo := users.NewRepository(users.RoleStudent, st, hasher)
	teacherRepo := users.NewRepository(users.RoleTeacher, st, hasher)
	guard := auth.NewGuard(studentRepo, teacherRepo, auth.NewAdminValidator(os.Getenv("ADMIN_CODE")))
	limiter := middleware.NewRateLimiter(5, 10)

	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware)
	r.Get("/", RootHandler)

	r.Mount("/students", students.SetupRoutes(studentRepo, guard, limiter))
	r.Mount("/teachers", teachers.SetupRoutes(teacherRepo, guard, limiter))
	r.Mount("/groups", groups.SetupRoutes(studentRepo, guard))
	r.Mount("/tasks", tasks.SetupRoutes(guard))
	r.Mount("/marks", marks.SetupRoutes(guard))

	fmt.Println("Server listening on port :" + port + "...")

	http.ListenAndServe("0.0.0.0:"+port, r)
}
