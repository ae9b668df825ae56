package domain

import "time"

// Project groups requests and member users under a named area.
type Project struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Area      string    `db:"area"`
	CreatedAt time.Time `db:"created_at"`
}

// Membership records that a user participates in a project.
type Membership struct {
	ProjectID string    `db:"project_id"`
	UserID    string    `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
}
