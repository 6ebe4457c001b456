package voter

import (
	"time"
)

// Voter represents a registered voter identified by phone number
type Voter struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PhoneNumber string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"phone_number"`
	FirstName   string    `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName    string    `gorm:"type:varchar(100);not null" json:"last_name"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}
