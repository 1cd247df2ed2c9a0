package students

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

type studentResponse struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Forename string `json:"forename"`
	Surname  string `json:"surname"`
	Alps     int    `json:"alps"`
}

func response(rec *users.Record) studentResponse {
	return studentResponse{
		ID:       rec.ID,
		Username: rec.Username,
		Forename: rec.Forename,
		Surname:  rec.Surname,
		Alps:     rec.Alps,
	}
}

// AuthHandler checks a username/password pair and returns the matching
// student. The client uses this as its login probe.
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
		http.Error(w, "Failed to list students", http.StatusInternalServerError)
		return
	}

	out := make([]studentResponse, 0, len(records))
	for i := range records {
		out = append(out, response(&records[i]))
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

// GetHandler fetches one student, by id from the path or by the
// username query parameter when present.
func (h *Handler) GetHandler(w http.ResponseWriter, r *http.Request) {
	var rec *users.Record
	var err error

	if username := r.URL.Query().Get("username"); username != "" {
		rec, err = h.repo.GetByUsername(r.Context(), username)
	} else {
		id, convErr := strconv.Atoi(chi.URLParam(r, "id"))
		if convErr != nil {
			http.Error(w, "Student id must be numeric", http.StatusBadRequest)
			return
		}
		rec, err = h.repo.GetByID(r.Context(), id)
	}

	if errors.Is(err, users.ErrNotFound) {
		http.Error(w, "Student not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to fetch student", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response(rec))
}

// CreateHandler makes a new student. Password is optional: a student
// created without one cannot log in until a password-reset sets it.
func (h *Handler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	forename := r.FormValue("forename")
	surname := r.FormValue("surname")
	username := r.FormValue("username")
	if forename == "" || surname == "" || username == "" {
		http.Error(w, "forename, surname and username are required", http.StatusBadRequest)
		return
	}

	alps, err := strconv.Atoi(r.FormValue("alps"))
	if err != nil || alps < 0 || alps > users.MaxAlps {
		http.Error(w, "alps must be a number between 0 and 90", http.StatusBadRequest)
		return
	}

	var password *string
	if p := r.FormValue("password"); p != "" {
		password = &p
	}

	rec, err := h.repo.Create(r.Context(), users.CreateParams{
		Forename: forename,
		Surname:  surname,
		Username: username,
		Alps:     alps,
		Password: password,
	})
	if err != nil {
		if errors.Is(err, users.ErrUsernameTaken) {
			http.Error(w, "Username already taken", http.StatusConflict)
			return
		}
		http.Error(w, "Failed to create student", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(response(rec))
}

// UpdateHandler replaces a student's mutable fields. reset_password=true
// clears the credential; a non-empty password replaces it; otherwise the
// credential is untouched.
func (h *Handler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Student id must be numeric", http.StatusBadRequest)
		return
	}

	current, err := h.repo.GetByID(r.Context(), id)
	if errors.Is(err, users.ErrNotFound) {
		http.Error(w, "Student not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to fetch student", http.StatusInternalServerError)
		return
	}

	forename := r.FormValue("forename")
	surname := r.FormValue("surname")
	username := r.FormValue("username")
	if forename == "" || surname == "" || username == "" {
		http.Error(w, "forename, surname and username are required", http.StatusBadRequest)
		return
	}
	alps, err := strconv.Atoi(r.FormValue("alps"))
	if err != nil || alps < 0 || alps > users.MaxAlps {
		http.Error(w, "alps must be a number between 0 and 90", http.StatusBadRequest)
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
		Alps:     alps,
	}
	rec, err := h.repo.Update(r.Context(), current, updated, resetPassword, newPassword)
	if err != nil {
		if errors.Is(err, users.ErrUsernameTaken) {
			http.Error(w, "Username already taken", http.StatusConflict)
			return
		}
		http.Error(w, "Failed to update student", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response(rec))
}

func (h *Handler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Student id must be numeric", http.StatusBadRequest)
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		http.Error(w, "Failed to delete student", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
