package marks

// Mark records one student's progress on one task: completion claimed
// by the student, score and feedback set by the teacher who marked it.
type Mark struct {
	StudentID    int    `gorm:"primaryKey" json:"student_id"`
	TaskID       int    `gorm:"primaryKey" json:"task_id"`
	HasCompleted bool   `json:"has_completed"`
	HasMarked    bool   `json:"has_marked"`
	Score        int    `json:"score"`
	Feedback     string `json:"feedback"`
}

func (Mark) TableName() string { return "classtrack.marks" }
