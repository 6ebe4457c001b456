package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	sessionService "voting-system/services/session"
	"voting-system/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupApp(t *testing.T) (*fiber.App, *sessionService.Service) {
	t.Helper()
	t.Setenv("SESSION_SECRET", "test-secret")

	db := testutil.SetupTestDB(t)
	sessions := sessionService.NewService(db)

	app := fiber.New()
	ok := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }
	app.Get("/session-only", RequireSession(sessions), ok)
	app.Get("/voter-only", RequireVoter(sessions), ok)
	return app, sessions
}

func doRequest(t *testing.T, app *fiber.App, path, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestRequireSessionWithoutToken(t *testing.T) {
	app, _ := setupApp(t)

	resp := doRequest(t, app, "/session-only", "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireSessionWithGarbageToken(t *testing.T) {
	app, _ := setupApp(t)

	resp := doRequest(t, app, "/session-only", "garbage")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestPendingSessionPassesSessionGateButNotVoterGate(t *testing.T) {
	app, sessions := setupApp(t)

	sess, err := sessions.BeginOTPPending("", "09137901844")
	require.NoError(t, err)
	token, err := sessions.IssueToken(sess)
	require.NoError(t, err)

	resp := doRequest(t, app, "/session-only", token)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doRequest(t, app, "/voter-only", token)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestAuthenticatedSessionPassesVoterGate(t *testing.T) {
	app, sessions := setupApp(t)

	sess, err := sessions.BeginOTPPending("", "09137901844")
	require.NoError(t, err)
	authSess, err := sessions.Authenticate(sess.ID, 7)
	require.NoError(t, err)
	token, err := sessions.IssueToken(authSess)
	require.NoError(t, err)

	resp := doRequest(t, app, "/voter-only", token)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestLoggedOutSessionIsRejected(t *testing.T) {
	app, sessions := setupApp(t)

	sess, err := sessions.BeginOTPPending("", "09137901844")
	require.NoError(t, err)
	token, err := sessions.IssueToken(sess)
	require.NoError(t, err)
	require.NoError(t, sessions.Logout(sess.ID))

	resp := doRequest(t, app, "/session-only", token)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
