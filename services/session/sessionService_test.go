package session

import (
	"testing"
	"time"

	sessionModel "voting-system/models/session"
	"voting-system/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	t.Setenv("SESSION_SECRET", "test-secret")
	return NewService(testutil.SetupTestDB(t))
}

func TestBeginOTPPendingCreatesSession(t *testing.T) {
	svc := newTestService(t)

	sess, err := svc.BeginOTPPending("", "09137901844")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, sessionModel.StateOTPPending, sess.State)
	assert.Equal(t, "09137901844", sess.PhoneNumber)
	assert.Nil(t, sess.VoterID)
	assert.False(t, sess.IsAuthenticated())
}

func TestAuthenticateBindsVoter(t *testing.T) {
	svc := newTestService(t)

	sess, err := svc.BeginOTPPending("", "09137901844")
	require.NoError(t, err)

	authSess, err := svc.Authenticate(sess.ID, 42)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, authSess.ID)
	require.NotNil(t, authSess.VoterID)
	assert.EqualValues(t, 42, *authSess.VoterID)
	assert.True(t, authSess.IsAuthenticated())
}

func TestRebindOverwritesIdentity(t *testing.T) {
	svc := newTestService(t)

	sess, err := svc.BeginOTPPending("", "09137901844")
	require.NoError(t, err)
	_, err = svc.Authenticate(sess.ID, 42)
	require.NoError(t, err)

	// Requesting a code for another phone inside the same session drops the
	// previous binding instead of merging identities.
	rebound, err := svc.BeginOTPPending(sess.ID, "09387275159")
	require.NoError(t, err)
	assert.Equal(t, sess.ID, rebound.ID)
	assert.Equal(t, "09387275159", rebound.PhoneNumber)
	assert.Equal(t, sessionModel.StateOTPPending, rebound.State)
	assert.Nil(t, rebound.VoterID)
}

func TestTokenRoundTrip(t *testing.T) {
	svc := newTestService(t)

	sess, err := svc.BeginOTPPending("", "09137901844")
	require.NoError(t, err)

	token, err := svc.IssueToken(sess)
	require.NoError(t, err)

	sid, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, sid)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.ParseToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogoutDestroysSession(t *testing.T) {
	svc := newTestService(t)

	sess, err := svc.BeginOTPPending("", "09137901844")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(sess.ID))

	_, err = svc.Get(sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExpiredSessionIsRejectedAndDeleted(t *testing.T) {
	svc := newTestService(t)

	sess, err := svc.BeginOTPPending("", "09137901844")
	require.NoError(t, err)

	require.NoError(t, svc.DB.Model(&sessionModel.Session{}).
		Where("id = ?", sess.ID).
		Update("expires_at", time.Now().Add(-time.Minute)).Error)

	_, err = svc.Get(sess.ID)
	assert.ErrorIs(t, err, ErrExpired)

	_, err = svc.Get(sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
