package models

import "time"

// Course represents a published course in the catalog. The enrollment
// subsystem treats courses as read-only joined entities; only the course
// admin endpoints mutate them.
type Course struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"course_name"`
	Description string    `db:"description" json:"course_description"`
	VideoURL    string    `db:"video_url" json:"course_video"`
	OwnerID     string    `db:"owner_id" json:"owner_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// CourseDetail enriches Course with the owner's display fields.
type CourseDetail struct {
	Course
	OwnerName  string `db:"owner_name" json:"owner_name"`
	OwnerEmail string `db:"owner_email" json:"owner_email"`
}
