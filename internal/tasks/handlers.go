package tasks

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/ClassTrack/CT-Backend/internal/auth"
	"github.com/ClassTrack/CT-Backend/internal/db"
	"github.com/ClassTrack/CT-Backend/internal/groups"
	"github.com/ClassTrack/CT-Backend/internal/users"
)

type Handler struct{}

// parseDue accepts RFC 3339 or a bare date.
func parseDue(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

// ListHandler returns the tasks visible to the caller: a student sees
// the tasks of groups they belong to, a teacher the tasks of groups they
// own.
func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok || principal.User == nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	var list []Task
	query := db.DB.Order("id")
	if principal.User.Role == users.RoleStudent {
		query = query.Where(
			"group_id IN (SELECT group_id FROM classtrack.group_members WHERE student_id = ?)",
			principal.User.ID,
		)
	} else {
		query = query.Where(
			"group_id IN (SELECT id FROM classtrack.groups WHERE teacher_id = ?)",
			principal.User.ID,
		)
	}
	if err := query.Find(&list).Error; err != nil {
		http.Error(w, "Failed to list tasks", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

func (h *Handler) GetHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Task id must be numeric", http.StatusBadRequest)
		return
	}

	var task Task
	if err := db.DB.First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "Task not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to fetch task", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(task)
}

// CreateHandler sets a new task for a group the authenticated teacher
// owns.
func (h *Handler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok || principal.User == nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	groupID, err := strconv.Atoi(r.FormValue("group_id"))
	if err != nil {
		http.Error(w, "group_id must be numeric", http.StatusBadRequest)
		return
	}
	title := r.FormValue("title")
	if title == "" {
		http.Error(w, "title is required", http.StatusBadRequest)
		return
	}
	maxScore, err := strconv.Atoi(r.FormValue("max_score"))
	if err != nil || maxScore <= 0 {
		http.Error(w, "max_score must be a positive number", http.StatusBadRequest)
		return
	}
	dateDue, err := parseDue(r.FormValue("date_due"))
	if err != nil {
		http.Error(w, "date_due is not a valid date", http.StatusBadRequest)
		return
	}

	if !ownsGroup(principal.User.ID, groupID) {
		http.Error(w, "Not your group", http.StatusUnauthorized)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	task := Task{
		GroupID:     groupID,
		Title:       title,
		Description: r.FormValue("description"),
		DateSet:     time.Now(),
		DateDue:     dateDue,
		MaxScore:    maxScore,
		Attachments: r.Form["attachment"],
	}
	if err := db.DB.Create(&task).Error; err != nil {
		http.Error(w, "Failed to create task", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(task)
}

// PatchHandler applies the supplied fields only, leaving the rest alone.
func (h *Handler) PatchHandler(w http.ResponseWriter, r *http.Request) {
	task, ok := h.ownedTask(w, r)
	if !ok {
		return
	}

	if title := r.FormValue("title"); title != "" {
		task.Title = title
	}
	if description := r.FormValue("description"); description != "" {
		task.Description = description
	}
	if raw := r.FormValue("max_score"); raw != "" {
		maxScore, err := strconv.Atoi(raw)
		if err != nil || maxScore <= 0 {
			http.Error(w, "max_score must be a positive number", http.StatusBadRequest)
			return
		}
		task.MaxScore = maxScore
	}
	if raw := r.FormValue("date_due"); raw != "" {
		dateDue, err := parseDue(raw)
		if err != nil {
			http.Error(w, "date_due is not a valid date", http.StatusBadRequest)
			return
		}
		task.DateDue = dateDue
	}

	if err := db.DB.Save(task).Error; err != nil {
		http.Error(w, "Failed to update task", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(task)
}

// PutHandler replaces every mutable field; all of them are required.
func (h *Handler) PutHandler(w http.ResponseWriter, r *http.Request) {
	task, ok := h.ownedTask(w, r)
	if !ok {
		return
	}

	title := r.FormValue("title")
	description := r.FormValue("description")
	rawScore := r.FormValue("max_score")
	rawDue := r.FormValue("date_due")
	if title == "" || description == "" || rawScore == "" || rawDue == "" {
		http.Error(w, "title, description, max_score and date_due are required", http.StatusBadRequest)
		return
	}
	maxScore, err := strconv.Atoi(rawScore)
	if err != nil || maxScore <= 0 {
		http.Error(w, "max_score must be a positive number", http.StatusBadRequest)
		return
	}
	dateDue, err := parseDue(rawDue)
	if err != nil {
		http.Error(w, "date_due is not a valid date", http.StatusBadRequest)
		return
	}

	task.Title = title
	task.Description = description
	task.MaxScore = maxScore
	task.DateDue = dateDue

	if err := db.DB.Save(task).Error; err != nil {
		http.Error(w, "Failed to update task", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(task)
}

func (h *Handler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	task, ok := h.ownedTask(w, r)
	if !ok {
		return
	}

	if err := db.DB.Delete(task).Error; err != nil {
		http.Error(w, "Failed to delete task", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// ownedTask loads the task from the path and checks the authenticated
// teacher owns the task's group.
func (h *Handler) ownedTask(w http.ResponseWriter, r *http.Request) (*Task, bool) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok || principal.User == nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return nil, false
	}

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Task id must be numeric", http.StatusBadRequest)
		return nil, false
	}

	var task Task
	if err := db.DB.First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "Task not found", http.StatusNotFound)
			return nil, false
		}
		http.Error(w, "Failed to fetch task", http.StatusInternalServerError)
		return nil, false
	}

	if !ownsGroup(principal.User.ID, task.GroupID) {
		http.Error(w, "Not your group", http.StatusUnauthorized)
		return nil, false
	}
	return &task, true
}

func ownsGroup(teacherID, groupID int) bool {
	var group groups.Group
	if err := db.DB.First(&group, groupID).Error; err != nil {
		return false
	}
	return group.TeacherID == teacherID
}
