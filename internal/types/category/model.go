package category

import (
	"time"

	"github.com/google/uuid"
)

type Category struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	AddedBy     uuid.UUID `db:"added_by" json:"added_by"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type CreateCategoryRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type UpdateCategoryRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}
