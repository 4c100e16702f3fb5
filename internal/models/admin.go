package models

import "time"

// Admin is an operator allowed to mutate the inventory.
type Admin struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Username  string    `json:"username" gorm:"uniqueIndex;type:varchar(100);not null" validate:"required,min=3,max=100"`
	Password  string    `json:"-" gorm:"type:varchar(255);not null" validate:"required,min=6"` // bcrypt hash once stored
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name.
func (Admin) TableName() string { return "admins" }

// Identity is the verified caller of an admin operation.
type Identity struct {
	AdminID  string `json:"admin_id"`
	Username string `json:"username"`
}
