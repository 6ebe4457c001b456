package vote

import (
	"time"

	"voting-system/models/candidate"
	"voting-system/models/voter"
)

// Vote is one row of the append-only ledger. Rows are only ever inserted,
// never updated or deleted.
type Vote struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	VoterID uint        `gorm:"not null;index" json:"voter_id"`
	Voter   voter.Voter `gorm:"foreignKey:VoterID" json:"-"`

	CandidateID uint                `gorm:"not null;index" json:"candidate_id"`
	Candidate   candidate.Candidate `gorm:"foreignKey:CandidateID" json:"-"`

	Timestamp time.Time `gorm:"autoCreateTime;index" json:"timestamp"`
}
