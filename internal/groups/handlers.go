package groups

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/ClassTrack/CT-Backend/internal/auth"
	"github.com/ClassTrack/CT-Backend/internal/db"
	"github.com/ClassTrack/CT-Backend/internal/users"
)

type Handler struct {
	students *users.Repository
}

func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	var list []Group
	if err := db.DB.Order("id").Find(&list).Error; err != nil {
		http.Error(w, "Failed to list groups", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

func (h *Handler) GetHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Group id must be numeric", http.StatusBadRequest)
		return
	}

	var group Group
	if err := db.DB.First(&group, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "Group not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to fetch group", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(group)
}

// CreateHandler creates a group owned by the authenticated teacher.
func (h *Handler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok || principal.User == nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	name := r.FormValue("name")
	if name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	group := Group{
		TeacherID: principal.User.ID,
		Name:      name,
		Subject:   r.FormValue("subject"),
	}
	if err := db.DB.Create(&group).Error; err != nil {
		http.Error(w, "Failed to create group", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(group)
}

func (h *Handler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	group, ok := h.ownedGroup(w, r)
	if !ok {
		return
	}

	name := r.FormValue("name")
	if name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	group.Name = name
	group.Subject = r.FormValue("subject")

	if err := db.DB.Save(group).Error; err != nil {
		http.Error(w, "Failed to update group", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(group)
}

func (h *Handler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	group, ok := h.ownedGroup(w, r)
	if !ok {
		return
	}

	if err := db.DB.Where("group_id = ?", group.ID).Delete(&Membership{}).Error; err != nil {
		http.Error(w, "Failed to delete group members", http.StatusInternalServerError)
		return
	}
	if err := db.DB.Delete(group).Error; err != nil {
		http.Error(w, "Failed to delete group", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) MembersHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Group id must be numeric", http.StatusBadRequest)
		return
	}

	var members []Membership
	if err := db.DB.Where("group_id = ?", id).Find(&members).Error; err != nil {
		http.Error(w, "Failed to list members", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(members)
}

// AddMemberHandler enrols a student into a group the authenticated
// teacher owns.
func (h *Handler) AddMemberHandler(w http.ResponseWriter, r *http.Request) {
	group, ok := h.ownedGroup(w, r)
	if !ok {
		return
	}

	studentID, err := strconv.Atoi(r.FormValue("student_id"))
	if err != nil {
		http.Error(w, "student_id must be numeric", http.StatusBadRequest)
		return
	}
	if _, err := h.students.GetByID(r.Context(), studentID); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			http.Error(w, "Student not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to fetch student", http.StatusInternalServerError)
		return
	}

	member := Membership{GroupID: group.ID, StudentID: studentID}
	if err := db.DB.Create(&member).Error; err != nil {
		http.Error(w, "Failed to add member", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) RemoveMemberHandler(w http.ResponseWriter, r *http.Request) {
	group, ok := h.ownedGroup(w, r)
	if !ok {
		return
	}

	studentID, err := strconv.Atoi(chi.URLParam(r, "studentID"))
	if err != nil {
		http.Error(w, "Student id must be numeric", http.StatusBadRequest)
		return
	}

	err = db.DB.Where("group_id = ? AND student_id = ?", group.ID, studentID).
		Delete(&Membership{}).Error
	if err != nil {
		http.Error(w, "Failed to remove member", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// ownedGroup loads the group from the path and checks the authenticated
// teacher owns it. Ownership failures surface as 401, not 403: the
// caller's credentials simply do not authorize this group.
func (h *Handler) ownedGroup(w http.ResponseWriter, r *http.Request) (*Group, bool) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok || principal.User == nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return nil, false
	}

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Group id must be numeric", http.StatusBadRequest)
		return nil, false
	}

	var group Group
	if err := db.DB.First(&group, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "Group not found", http.StatusNotFound)
			return nil, false
		}
		http.Error(w, "Failed to fetch group", http.StatusInternalServerError)
		return nil, false
	}

	if group.TeacherID != principal.User.ID {
		http.Error(w, "Not your group", http.StatusUnauthorized)
		return nil, false
	}
	return &group, true
}
