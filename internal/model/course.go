package model

import "time"

type Course struct {
	BaseModel
	Name         string `gorm:"size:255;not null" json:"name"`
	Number       string `gorm:"size:50" json:"number"`
	Organization string `gorm:"size:255" json:"organization"`
}

func (Course) TableName() string {
	return "courses"
}

type Term struct {
	BaseModel
	Season   string    `gorm:"size:20" json:"season"`
	Year     int       `json:"year"`
	StartsOn time.Time `json:"startsOn"`
	EndsOn   time.Time `json:"endsOn"`
}

func (Term) TableName() string {
	return "terms"
}

// CourseOffering is one section of a course in one term.
type CourseOffering struct {
	BaseModel
	CourseID uint   `gorm:"index;not null" json:"courseId"`
	TermID   uint   `gorm:"index;not null" json:"termId"`
	Label    string `gorm:"size:100" json:"label"`

	Course Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	Term   Term   `gorm:"foreignKey:TermID" json:"term,omitempty"`
}

func (CourseOffering) TableName() string {
	return "course_offerings"
}

type CourseRole string

const (
	RoleStudent CourseRole = "student"
	RoleGrader  CourseRole = "grader"
	RoleStaff   CourseRole = "staff"
)

// CourseEnrollment ties a user to a course offering with a role. Staff
// enrollments are what make non-public workouts visible to instructors.
type CourseEnrollment struct {
	BaseModel
	UserID           uint       `gorm:"uniqueIndex:idx_enrollment_user_offering;not null" json:"userId"`
	CourseOfferingID uint       `gorm:"uniqueIndex:idx_enrollment_user_offering;not null" json:"courseOfferingId"`
	Role             CourseRole `gorm:"size:20;default:'student'" json:"role"`
}

func (CourseEnrollment) TableName() string {
	return "course_enrollments"
}
