// Package testutil provides shared helpers for service tests. Tests run
// against a real SQL engine (file-backed sqlite with WAL) so transactional
// behavior is exercised, not mocked.
package testutil

import (
	"path/filepath"
	"testing"

	"voting-system/database"
	"voting-system/models/candidate"
	"voting-system/models/voter"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// SetupTestDB opens a fresh migrated database in the test's temp directory.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "voting_test.db") +
		"?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

// CreateTestVoter inserts a voter and returns it.
func CreateTestVoter(t *testing.T, db *gorm.DB, phone, firstName, lastName string) *voter.Voter {
	t.Helper()

	v := &voter.Voter{
		PhoneNumber: phone,
		FirstName:   firstName,
		LastName:    lastName,
	}
	require.NoError(t, db.Create(v).Error)
	return v
}

// CreateTestCandidate inserts a candidate and returns it.
func CreateTestCandidate(t *testing.T, db *gorm.DB, name string) *candidate.Candidate {
	t.Helper()

	c := &candidate.Candidate{Name: name}
	require.NoError(t, db.Create(c).Error)
	return c
}
