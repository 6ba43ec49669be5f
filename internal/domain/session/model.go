package session

import "time"

// Identity is the authenticated user persisted under the "user" document.
// At most one identity is active per client.
type Identity struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Approved bool   `json:"approved"`
}

// PendingUser is a self-service registration request awaiting an
// administrator's decision.
type PendingUser struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Password    string    `json:"password"`
	RequestDate time.Time `json:"requestDate"`
}

// Credential is an approved username/password pair. Matching is exact and
// case-sensitive on both fields.
type Credential struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
