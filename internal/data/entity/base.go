package entity

import (
	"time"
)

type Timestamps struct {
	CreatedAt time.Time `db:"created_at" firestore:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" firestore:"updatedAt" json:"updatedAt"`
}
