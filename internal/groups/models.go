package groups

// Group is a teaching group owned by one teacher.
type Group struct {
	ID        int    `gorm:"primaryKey" json:"id"`
	TeacherID int    `gorm:"not null;index" json:"teacher_id"`
	Name      string `gorm:"not null" json:"name"`
	Subject   string `json:"subject"`
}

// Membership links a student into a group.
type Membership struct {
	GroupID   int `gorm:"primaryKey" json:"group_id"`
	StudentID int `gorm:"primaryKey" json:"student_id"`
}

func (Group) TableName() string      { return "classtrack.groups" }
func (Membership) TableName() string { return "classtrack.group_members" }
