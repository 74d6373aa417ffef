package models

// User is a named portfolio owner inside a workspace. Every asset belongs to
// exactly one user.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"createdAt"`
}
