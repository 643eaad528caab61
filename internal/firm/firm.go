package firm

import (
	"time"

	"github.com/google/uuid"
)

// Firm is the tenant that owns users and projects.
type Firm struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

type User struct {
	ID        uuid.UUID
	FirmID    uuid.UUID
	Email     string
	FullName  *string
	CreatedAt time.Time
}
