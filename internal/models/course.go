package models

import "time"

// Course represents a taught course referenced by timetable slots.
type Course struct {
	ID              string    `db:"id" json:"id"`
	Code            string    `db:"code" json:"code"`
	Title           string    `db:"title" json:"title"`
	Credits         int       `db:"credits" json:"credits"`
	Semester        int       `db:"semester" json:"semester"`
	FacultyInCharge *string   `db:"faculty_in_charge" json:"faculty_in_charge,omitempty"`
	Description     *string   `db:"description" json:"description,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// CourseFilter captures filtering criteria for listing courses.
type CourseFilter struct {
	Semester  int
	FacultyID string
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
