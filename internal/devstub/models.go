package devstub

import "time"

type User struct {
	ID             int64  `gorm:"primaryKey" json:"id"`
	Name           string `json:"name"`
	Email          string `gorm:"uniqueIndex;not null" json:"email"`
	HashedPassword string `json:"-"`
	Role           string `gorm:"default:'CITIZEN'" json:"role"`
}

type Session struct {
	Token     string    `gorm:"primaryKey" json:"-"`
	UserID    int64     `gorm:"not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"-"`
}

type Complaint struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	UserID      int64     `json:"-"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Area        string    `json:"area"`
	Status      string    `gorm:"default:'OPEN'" json:"status"`
	AssignedTo  int64     `json:"assignedTo,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CollectionRecord keeps the request id from replayed submissions unique so
// an at-least-once client never double-books a waypoint.
type CollectionRecord struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	UserID     int64     `json:"-"`
	RequestID  string    `gorm:"uniqueIndex" json:"-"`
	WaypointID int64     `json:"waypointId"`
	Timestamp  time.Time `json:"timestamp"`
	PhotoBytes int64     `json:"-"`
	Status     string    `gorm:"default:'COLLECTED'" json:"status"`
}

type Attendance struct {
	ID      int64  `gorm:"primaryKey" json:"id"`
	UserID  int64  `json:"-"`
	Date    string `json:"date"`
	Status  string `json:"status"`
	Remarks string `json:"remarks,omitempty"`
}

func (User) TableName() string             { return "stub_users" }
func (Session) TableName() string          { return "stub_sessions" }
func (Complaint) TableName() string        { return "stub_complaints" }
func (CollectionRecord) TableName() string { return "stub_collections" }
func (Attendance) TableName() string       { return "stub_attendance" }
