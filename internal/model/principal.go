package model

import "github.com/google/uuid"

// Principal is the already-authorized caller identity supplied by the auth
// collaborator. The engine only consumes the user id for audit entries;
// authorization decisions happen upstream.
type Principal struct {
	UserID uuid.UUID
	Roles  []string
}

func (p Principal) Valid() bool {
	return p.UserID != uuid.Nil
}
