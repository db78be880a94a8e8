package domain

import (
	"time"

	"github.com/google/uuid"
)

// Namespace groups the credentials of one user. Name is unique per user.
type Namespace struct {
	ID               uuid.UUID
	Zrn              string
	UserID           uuid.UUID
	Name             string
	Description      string
	ActiveKeyVersion int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
