package review

import (
	"time"

	"github.com/google/uuid"
)

type Review struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	ProductID uuid.UUID `db:"product_id" json:"product_id"`
	Ratings   int       `db:"ratings" json:"ratings"`
	Comment   string    `db:"comment" json:"comment"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type CreateReviewRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Ratings   int       `json:"ratings"`
	Comment   string    `json:"comment"`
}

type UpdateReviewRequest struct {
	Ratings *int    `json:"ratings"`
	Comment *string `json:"comment"`
}
