package marks

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"gorm.io/gorm"

	"github.com/ClassTrack/CT-Backend/internal/auth"
	"github.com/ClassTrack/CT-Backend/internal/db"
	"github.com/ClassTrack/CT-Backend/internal/groups"
	"github.com/ClassTrack/CT-Backend/internal/tasks"
)

type Handler struct{}

// ListHandler filters marks by exactly one of the student, group or
// task query parameters.
func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	studentID := r.URL.Query().Get("student")
	groupID := r.URL.Query().Get("group")
	taskID := r.URL.Query().Get("task")

	var list []Mark
	var err error

	switch {
	case studentID != "":
		id, convErr := strconv.Atoi(studentID)
		if convErr != nil {
			http.Error(w, "student must be numeric", http.StatusBadRequest)
			return
		}
		err = db.DB.Where("student_id = ?", id).Find(&list).Error

	case groupID != "":
		id, convErr := strconv.Atoi(groupID)
		if convErr != nil {
			http.Error(w, "group must be numeric", http.StatusBadRequest)
			return
		}
		err = db.DB.Where(
			"task_id IN (SELECT id FROM classtrack.tasks WHERE group_id = ?)", id,
		).Find(&list).Error

	case taskID != "":
		id, convErr := strconv.Atoi(taskID)
		if convErr != nil {
			http.Error(w, "task must be numeric", http.StatusBadRequest)
			return
		}
		err = db.DB.Where("task_id = ?", id).Find(&list).Error

	default:
		http.Error(w, "One of student, group or task is required", http.StatusBadRequest)
		return
	}

	if err != nil {
		http.Error(w, "Failed to list marks", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

// CompleteHandler lets a student flag one of their tasks as done. The
// task must belong to a group the student is a member of.
func (h *Handler) CompleteHandler(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok || principal.User == nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	taskID, err := strconv.Atoi(r.FormValue("task_id"))
	if err != nil {
		http.Error(w, "task_id must be numeric", http.StatusBadRequest)
		return
	}

	var task tasks.Task
	if err := db.DB.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "Task not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to fetch task", http.StatusInternalServerError)
		return
	}

	var member groups.Membership
	err = db.DB.Where("group_id = ? AND student_id = ?", task.GroupID, principal.User.ID).
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		http.Error(w, "Task is not set for any of your groups", http.StatusUnauthorized)
		return
	}
	if err != nil {
		http.Error(w, "Failed to check group membership", http.StatusInternalServerError)
		return
	}

	mark, err := upsert(principal.User.ID, taskID, func(m *Mark) {
		m.HasCompleted = true
	})
	if err != nil {
		http.Error(w, "Failed to record completion", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(mark)
}

// FeedbackHandler lets a teacher score a student's work. Only the
// teacher who owns the task's group may mark it.
func (h *Handler) FeedbackHandler(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok || principal.User == nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	studentID, err := strconv.Atoi(r.FormValue("student_id"))
	if err != nil {
		http.Error(w, "student_id must be numeric", http.StatusBadRequest)
		return
	}
	taskID, err := strconv.Atoi(r.FormValue("task_id"))
	if err != nil {
		http.Error(w, "task_id must be numeric", http.StatusBadRequest)
		return
	}

	var task tasks.Task
	if err := db.DB.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "Task not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to fetch task", http.StatusInternalServerError)
		return
	}

	var group groups.Group
	if err := db.DB.First(&group, task.GroupID).Error; err != nil {
		http.Error(w, "Failed to fetch group", http.StatusInternalServerError)
		return
	}
	if group.TeacherID != principal.User.ID {
		http.Error(w, "You did not set this task", http.StatusUnauthorized)
		return
	}

	score, err := strconv.Atoi(r.FormValue("score"))
	if err != nil || score < 0 || score > task.MaxScore {
		http.Error(w, "score must be between 0 and the task's max_score", http.StatusBadRequest)
		return
	}
	feedback := r.FormValue("feedback")

	mark, err := upsert(studentID, taskID, func(m *Mark) {
		m.HasMarked = true
		m.Score = score
		m.Feedback = feedback
	})
	if err != nil {
		http.Error(w, "Failed to record feedback", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(mark)
}

// upsert loads or creates the mark for (studentID, taskID), applies the
// mutation and persists it.
func upsert(studentID, taskID int, apply func(*Mark)) (*Mark, error) {
	mark := Mark{StudentID: studentID, TaskID: taskID}
	err := db.DB.Where("student_id = ? AND task_id = ?", studentID, taskID).
		First(&mark).Error
	fresh := errors.Is(err, gorm.ErrRecordNotFound)
	if err != nil && !fresh {
		return nil, err
	}

	apply(&mark)

	if fresh {
		if err := db.DB.Create(&mark).Error; err != nil {
			return nil, err
		}
		return &mark, nil
	}
	if err := db.DB.Save(&mark).Error; err != nil {
		return nil, err
	}
	return &mark, nil
}
