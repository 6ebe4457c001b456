package vote

import (
	"fmt"
	"os"
	"strconv"
	"sync"

	"voting-system/database"
	"voting-system/models/candidate"
	"voting-system/models/vote"
	typesVote "voting-system/types/vote"

	"github.com/jinzhu/now"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultMaxVotesPerVoter = 2

// Service enforces the per-voter vote quota and serves the tally.
type Service struct {
	DB               *gorm.DB
	MaxVotesPerVoter int

	// voterLocks serializes CastVotes per voter id. Unrelated voters never
	// contend; two ballots for the same voter cannot both read a stale count.
	// Entries are never evicted, so the map holds one mutex per voter who has
	// ever cast; that stays bounded by the registered-voter population.
	voterLocks sync.Map
}

// NewService creates a new vote service. MAX_VOTES_PER_VOTER overrides the
// default quota of 2.
func NewService(db *gorm.DB) *Service {
	maxVotes := defaultMaxVotesPerVoter
	if v := os.Getenv("MAX_VOTES_PER_VOTER"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			maxVotes = parsed
		}
	}
	return &Service{
		DB:               db,
		MaxVotesPerVoter: maxVotes,
	}
}

func (s *Service) voterLock(voterID uint) *sync.Mutex {
	lock, _ := s.voterLocks.LoadOrStore(voterID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// CastVotes validates the selection and appends one ledger row per candidate,
// all-or-nothing, returning how many rows were recorded. Duplicate candidate
// ids in the selection collapse to one row, so the returned count can be
// smaller than the submitted ballot. The count-then-insert runs under a
// per-voter mutex and a transaction that locks the voter row where the
// dialect supports it, so the quota holds under concurrent submissions for
// the same voter.
func (s *Service) CastVotes(voterID uint, candidateIDs []uint) (int, error) {
	selection := dedupe(candidateIDs)

	if len(selection) == 0 {
		return 0, ErrNoCandidateSelected
	}
	if len(selection) > s.MaxVotesPerVoter {
		return 0, ErrTooManySelections
	}

	lock := s.voterLock(voterID)
	lock.Lock()
	defer lock.Unlock()

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		// Pin the voter row for the length of the transaction. SQLite has no
		// row locks; there the whole database write lock plus the per-voter
		// mutex above give the same guarantee.
		voterQuery := tx.Table("voters")
		if tx.Dialector.Name() == "postgres" {
			voterQuery = voterQuery.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var voterRow struct{ ID uint }
		if err := voterQuery.Where("id = ?", voterID).Take(&voterRow).Error; err != nil {
			return fmt.Errorf("failed to load voter %d: %w", voterID, err)
		}

		var known int64
		if err := tx.Model(&candidate.Candidate{}).
			Where("id IN ?", selection).
			Count(&known).Error; err != nil {
			return fmt.Errorf("failed to check candidates: %w", err)
		}
		if int(known) != len(selection) {
			return ErrUnknownCandidate
		}

		var existing int64
		if err := tx.Model(&vote.Vote{}).
			Where("voter_id = ?", voterID).
			Count(&existing).Error; err != nil {
			return fmt.Errorf("failed to count existing votes: %w", err)
		}

		if int(existing)+len(selection) > s.MaxVotesPerVoter {
			return &QuotaError{Remaining: s.MaxVotesPerVoter - int(existing)}
		}

		records := make([]vote.Vote, 0, len(selection))
		for _, candidateID := range selection {
			records = append(records, vote.Vote{
				VoterID:     voterID,
				CandidateID: candidateID,
			})
		}
		if err := tx.Omit(clause.Associations).Create(&records).Error; err != nil {
			return fmt.Errorf("failed to record votes: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(selection), nil
}

// RemainingVotes returns how many votes the voter may still cast.
func (s *Service) RemainingVotes(voterID uint) (int, error) {
	var existing int64
	err := database.RetryRead(func() error {
		return s.DB.Model(&vote.Vote{}).Where("voter_id = ?", voterID).Count(&existing).Error
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	remaining := s.MaxVotesPerVoter - int(existing)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// VoteCounts returns every candidate with its vote count, ordered by count
// descending; ties keep candidate insertion order. Candidates with zero votes
// are included.
func (s *Service) VoteCounts() ([]typesVote.CandidateResult, error) {
	var results []typesVote.CandidateResult
	err := database.RetryRead(func() error {
		return s.DB.Table("candidates").
			Select("candidates.id AS candidate_id, candidates.name AS name, COUNT(votes.id) AS vote_count").
			Joins("LEFT JOIN votes ON votes.candidate_id = candidates.id").
			Group("candidates.id, candidates.name").
			Order("vote_count DESC, candidates.id ASC").
			Scan(&results).Error
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return results, nil
}

// TotalVotes counts the raw ledger rows, independently of the per-candidate
// tally, so the two can be checked against each other.
func (s *Service) TotalVotes() (int64, error) {
	var total int64
	err := database.RetryRead(func() error {
		return s.DB.Model(&vote.Vote{}).Count(&total).Error
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return total, nil
}

// TotalVotesToday counts ledger rows recorded since local midnight.
func (s *Service) TotalVotesToday() (int64, error) {
	var total int64
	err := database.RetryRead(func() error {
		return s.DB.Model(&vote.Vote{}).
			Where("timestamp >= ?", now.BeginningOfDay()).
			Count(&total).Error
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return total, nil
}

// dedupe keeps the first occurrence of each candidate id, preserving order.
func dedupe(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
