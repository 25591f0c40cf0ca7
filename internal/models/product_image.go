package models

import "time"

type ProductImage struct {
	ID        int64     `json:"id" db:"id"`
	ProductID int64     `json:"product_id" db:"product_id"`
	ObjectKey string    `json:"object_key" db:"object_key"`
	AltText   *string   `json:"alt_text" db:"alt_text"`
	IsPrimary bool      `json:"is_primary" db:"is_primary"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
