package models

import "time"

// Enrollment captures a user's registration in a course together with their
// playback progress. At most one row exists per (user_id, course_id); the
// enrollments table enforces this with a unique constraint so concurrent
// enroll requests cannot slip past a read-then-write check.
type Enrollment struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	CourseID  string    `db:"course_id" json:"course_id"`
	Progress  int       `db:"progress" json:"progress"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// EnrolledCourse is an enrollment joined with its course's display fields
// plus the total number of students enrolled in that course. Enrollments
// whose course has been deleted are filtered out by the join.
type EnrolledCourse struct {
	Enrollment
	CourseName        string `db:"course_name" json:"course_name"`
	CourseDescription string `db:"course_description" json:"course_description"`
	CourseVideo       string `db:"course_video" json:"course_video"`
	EnrolledStudents  int    `db:"enrolled_students" json:"enrolled_students"`
}

// EnrolledStat is the per-course aggregate returned by the stats endpoint.
// Ordering (ascending course name) is part of the response contract.
type EnrolledStat struct {
	CourseID          string `db:"course_id" json:"course_id"`
	CourseName        string `db:"course_name" json:"course_name"`
	CourseDescription string `db:"course_description" json:"course_description"`
	CourseVideo       string `db:"course_video" json:"course_video"`
	EnrolledStudents  int    `db:"enrolled_students" json:"enrolled_students"`
}

// EnrolledStudent identifies one user enrolled in a course.
type EnrolledStudent struct {
	Name  string `db:"name" json:"name"`
	Email string `db:"email" json:"email"`
}
