package domain

import (
	"time"

	"github.com/google/uuid"
)

// Comment is free-form feedback an assessor leaves about the assessment task.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	Assessor  string    `json:"assessor"`
	Text      string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}
