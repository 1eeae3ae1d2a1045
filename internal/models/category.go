package models

import (
	"time"
)

// Category is a user-owned named tag optionally attached to tasks.
// Names are unique per user, compared case-insensitively.
type Category struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	Color     *string   `json:"color"`
	UserID    string    `json:"-" gorm:"column:user_id;index;not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name for Category Model
func (Category) TableName() string {
	return "categories"
}
