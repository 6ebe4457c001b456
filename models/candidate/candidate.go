package candidate

import (
	"time"
)

// Candidate represents a candidate on the ballot. Rows are created by the
// seeder and never changed while voting is open.
type Candidate struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(150);not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
