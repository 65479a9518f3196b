package models

import (
	"time"

	"github.com/lib/pq"
)

// Faculty represents a teaching staff member.
type Faculty struct {
	ID          string         `db:"id" json:"id"`
	EmployeeID  string         `db:"employee_id" json:"employee_id"`
	FullName    string         `db:"full_name" json:"full_name"`
	Email       string         `db:"email" json:"email"`
	Phone       *string        `db:"phone" json:"phone,omitempty"`
	Designation *string        `db:"designation" json:"designation,omitempty"`
	Subjects    pq.StringArray `db:"subjects" json:"subjects"`
	Active      bool           `db:"active" json:"active"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// FacultyInfo is the lightweight projection embedded in derived views.
type FacultyInfo struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	FullName   string `json:"full_name"`
}

// Info returns the lightweight projection of the faculty record.
func (f *Faculty) Info() FacultyInfo {
	return FacultyInfo{ID: f.ID, EmployeeID: f.EmployeeID, FullName: f.FullName}
}

// FacultyFilter captures filtering criteria for listing faculties.
type FacultyFilter struct {
	Designation string
	Active      *bool
	Search      string
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}
