package domain

// User is the read-only view of a marketplace member that booking notifications need.
type User struct {
	ID    int32  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
