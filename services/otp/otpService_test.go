package otp

import (
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"voting-system/models/otp"
	"voting-system/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPhone = "09137901844"

func newTestService(t *testing.T) (*Service, func() *otp.OTP) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	testutil.CreateTestVoter(t, db, testPhone, "Reza", "Ahmadi")
	svc := NewService(db)

	latest := func() *otp.OTP {
		var record otp.OTP
		require.NoError(t, db.Where("phone_number = ? AND is_used = false", testPhone).
			Order("created_at DESC").First(&record).Error)
		return &record
	}
	return svc, latest
}

func TestGenerateCodeRange(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewService(db)

	for i := 0; i < 1000; i++ {
		code, err := svc.GenerateCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, 100000)
		require.LessOrEqual(t, n, 999999)
	}
}

func TestIssueRequiresRegisteredVoter(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Issue("09990000000")
	assert.ErrorIs(t, err, ErrInvalidPhoneNumber)
}

func TestIssueAndVerify(t *testing.T) {
	svc, latest := newTestService(t)

	challenge, err := svc.Issue(testPhone)
	require.NoError(t, err)
	assert.Len(t, challenge.Code, 6)
	assert.WithinDuration(t, time.Now().Add(svc.TTL), challenge.ExpiresAt, 2*time.Second)

	v, err := svc.Verify(testPhone, latest().Code)
	require.NoError(t, err)
	assert.Equal(t, testPhone, v.PhoneNumber)
	assert.Equal(t, "Reza", v.FirstName)
}

func TestVerifyWithoutChallenge(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Verify(testPhone, "123456")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestVerifyMismatchKeepsChallengeAlive(t *testing.T) {
	svc, latest := newTestService(t)

	_, err := svc.Issue(testPhone)
	require.NoError(t, err)
	code := latest().Code

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	_, err = svc.Verify(testPhone, wrong)
	assert.ErrorIs(t, err, ErrMismatch)

	// A failed attempt does not consume the challenge.
	_, err = svc.Verify(testPhone, code)
	assert.NoError(t, err)
}

func TestVerifyReplayRejected(t *testing.T) {
	svc, latest := newTestService(t)

	_, err := svc.Issue(testPhone)
	require.NoError(t, err)
	code := latest().Code

	_, err = svc.Verify(testPhone, code)
	require.NoError(t, err)

	// The code was consumed by the successful verification.
	_, err = svc.Verify(testPhone, code)
	assert.ErrorIs(t, err, ErrNotFound)
}

// TestConcurrentVerifyConsumesOnce races many verifications of the same
// correct code. Exactly one may succeed; the rest must see the code as
// already consumed.
func TestConcurrentVerifyConsumesOnce(t *testing.T) {
	svc, latest := newTestService(t)

	_, err := svc.Issue(testPhone)
	require.NoError(t, err)
	code := latest().Code

	attempts := 20
	var successCount, notFoundCount atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := svc.Verify(testPhone, code)
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, ErrNotFound):
				notFoundCount.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, successCount.Load())
	assert.EqualValues(t, attempts-1, notFoundCount.Load())
}

func TestReissueSupersedesOldCode(t *testing.T) {
	svc, latest := newTestService(t)

	_, err := svc.Issue(testPhone)
	require.NoError(t, err)

	// Force distinct codes so the supersede is observable.
	require.NoError(t, svc.DB.Model(&otp.OTP{}).
		Where("phone_number = ? AND is_used = false", testPhone).
		Update("code", "111111").Error)
	oldCode := "111111"

	_, err = svc.Issue(testPhone)
	require.NoError(t, err)
	newRecord := latest()
	require.NoError(t, svc.DB.Model(newRecord).Update("code", "222222").Error)

	_, err = svc.Verify(testPhone, oldCode)
	assert.ErrorIs(t, err, ErrMismatch)

	_, err = svc.Verify(testPhone, "222222")
	assert.NoError(t, err)
}

func TestVerifyExpiryBoundary(t *testing.T) {
	svc, latest := newTestService(t)

	_, err := svc.Issue(testPhone)
	require.NoError(t, err)
	record := latest()

	// One second past expiry the code is dead.
	require.NoError(t, svc.DB.Model(record).
		Update("expires_at", time.Now().Add(-1*time.Second)).Error)
	_, err = svc.Verify(testPhone, record.Code)
	assert.ErrorIs(t, err, ErrExpired)

	// One second before expiry it still verifies.
	require.NoError(t, svc.DB.Model(record).
		Update("expires_at", time.Now().Add(1*time.Second)).Error)
	_, err = svc.Verify(testPhone, record.Code)
	assert.NoError(t, err)
}

func TestCleanupExpired(t *testing.T) {
	svc, latest := newTestService(t)

	_, err := svc.Issue(testPhone)
	require.NoError(t, err)
	require.NoError(t, svc.DB.Model(latest()).
		Update("expires_at", time.Now().Add(-time.Minute)).Error)

	require.NoError(t, svc.CleanupExpired())

	var count int64
	require.NoError(t, svc.DB.Model(&otp.OTP{}).Count(&count).Error)
	assert.Zero(t, count)
}
