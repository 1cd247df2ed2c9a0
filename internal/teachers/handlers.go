package teachers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ClassTrack/CT-Backend/internal/users"
)

type Handler struct {
	repo *users.Repository
}

type teacherResponse struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Forename string `json:"forename"`
	Surname  string `json:"surname"`
	Title    string `json:"title"`
}

func response(rec *users.Record) teacherResponse {
	return teacherResponse{
		ID:       rec.ID,
		Username: rec.Username,
		Forename: rec.Forename,
		Surname:  rec.Surname,
		Title:    rec.Title,
	}
}

func (h *Handler) AuthHandler(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password")

	rec, err := h.repo.Validate(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}
		http.Error(w, "Failed to check credentials", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response(rec))
}

func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	records, err := h.repo.All(r.Context())
	if err != nil {
		http.Error(w, "Failed to list teachers", http.StatusInternalServerError)
		return
	}

	out := make([]teacherResponse, 0, len(records))
	for i := range records {
		out = append(out, response(&records[i]))
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

func (h *Handler) GetHandler(w http.ResponseWriter, r *http.Request) {
	var rec *users.Record
	var err error

	if username := r.URL.Query().Get("username"); username != "" {
		rec, err = h.repo.GetByUsername(r.Context(), username)
	} else {
		id, convErr := strconv.Atoi(chi.URLParam(r, "id"))
		if convErr != nil {
			http.Error(w, "Teacher id must be numeric", http.StatusBadRequest)
			return
		}
		rec, err = h.repo.GetByID(r.Context(), id)
	}

	if errors.Is(err, users.ErrNotFound) {
		http.Error(w, "Teacher not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to fetch teacher", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response(rec))
}

// CreateHandler makes a new teacher. Username may be omitted: a free one
// is derived from the first initial and surname. Password is required —
// unlike students, teachers always log in.
func (h *Handler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	forename := r.FormValue("forename")
	surname := r.FormValue("surname")
	title := r.FormValue("title")
	password := r.FormValue("password")
	if forename == "" || surname == "" || password == "" {
		http.Error(w, "forename, surname and password are required", http.StatusBadRequest)
		return
	}

	rec, err := h.repo.Create(r.Context(), users.CreateParams{
		Forename: forename,
		Surname:  surname,
		Username: r.FormValue("username"),
		Title:    title,
		Password: &password,
	})
	if err != nil {
		if errors.Is(err, users.ErrUsernameTaken) {
			http.Error(w, "Username already taken", http.StatusConflict)
			return
		}
		http.Error(w, "Failed to create teacher", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(response(rec))
}

func (h *Handler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Teacher id must be numeric", http.StatusBadRequest)
		return
	}

	current, err := h.repo.GetByID(r.Context(), id)
	if errors.Is(err, users.ErrNotFound) {
		http.Error(w, "Teacher not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to fetch teacher", http.StatusInternalServerError)
		return
	}

	forename := r.FormValue("forename")
	surname := r.FormValue("surname")
	username := r.FormValue("username")
	if forename == "" || surname == "" || username == "" {
		http.Error(w, "forename, surname and username are required", http.StatusBadRequest)
		return
	}

	resetPassword := r.FormValue("reset_password") == "true"
	var newPassword *string
	if p := r.FormValue("password"); p != "" {
		newPassword = &p
	}

	updated := users.Record{
		Username: username,
		Forename: forename,
		Surname:  surname,
		Title:    r.FormValue("title"),
	}
	rec, err := h.repo.Update(r.Context(), current, updated, resetPassword, newPassword)
	if err != nil {
		if errors.Is(err, users.ErrUsernameTaken) {
			http.Error(w, "Username already taken", http.StatusConflict)
			return
		}
		http.Error(w, "Failed to update teacher", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response(rec))
}

func (h *Handler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Teacher id must be numeric", http.StatusBadRequest)
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		http.Error(w, "Failed to delete teacher", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
