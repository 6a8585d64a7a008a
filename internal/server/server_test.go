package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"

	"agora/internal/config"
	"agora/internal/database"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestApp(t *testing.T) (*fiber.App, *Server) {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		Port:            "8080",
		JWTSecret:       "test-secret",
		Env:             "test",
		PinLimit:        1,
		PostPageSize:    8,
		CommentPageSize: 20,
	}

	srv, err := NewServerWithDeps(cfg, db, nil)
	require.NoError(t, err)

	app := fiber.New()
	srv.SetupRoutes(app)
	return app, srv
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	}
	return resp, decoded
}

func signup(t *testing.T, app *fiber.App, username string) string {
	t.Helper()
	resp, body := doJSON(t, app, http.MethodPost, "/api/auth/signup", "", fiber.Map{
		"username": username,
		"password": "CorrectHorse9battery",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "signup body: %v", body)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestAPIFlow(t *testing.T) {
	app, _ := newTestApp(t)

	aliceToken := signup(t, app, "alice_tester")
	bobToken := signup(t, app, "bob_tester")

	// Duplicate username is rejected.
	resp, _ := doJSON(t, app, http.MethodPost, "/api/auth/signup", "", fiber.Map{
		"username": "alice_tester",
		"password": "CorrectHorse9battery",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Login round-trip.
	resp, body := doJSON(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"username": "alice_tester",
		"password": "CorrectHorse9battery",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, body["token"])

	resp, _ = doJSON(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"username": "alice_tester",
		"password": "wrong-password-123A",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Alice creates a post.
	resp, body = doJSON(t, app, http.MethodPost, "/api/posts/", aliceToken, fiber.Map{
		"title":   "hello",
		"content": "first post",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "create post body: %v", body)
	postID := uint(body["id"].(float64))

	// Unauthenticated create is rejected.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/posts/", "", fiber.Map{
		"title": "x", "content": "y",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Bob comments; Alice's notification feed picks it up.
	resp, body = doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/api/posts/%d/comments", postID), bobToken, fiber.Map{
			"content": "nice post",
		})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "comment body: %v", body)
	commentID := uint(body["id"].(float64))

	resp, body = doJSON(t, app, http.MethodGet, "/api/notifications/", aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["unread"])

	// Alice replies to Bob under her own post.
	resp, _ = doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/api/comments/%d/replies", commentID), aliceToken, fiber.Map{
			"post_id": postID,
			"content": "thanks",
		})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Thread shows one top-level comment with one reply; counters include both.
	resp, body = doJSON(t, app, http.MethodGet,
		fmt.Sprintf("/api/posts/%d/comments", postID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), body["total_comments"])
	comments := body["comments"].([]interface{})
	require.Len(t, comments, 1)

	// Votes: new, duplicate rejected, flip allowed.
	resp, body = doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/api/posts/%d/vote", postID), bobToken, fiber.Map{"direction": "up"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["upvotes"])

	resp, _ = doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/api/posts/%d/vote", postID), bobToken, fiber.Map{"direction": "up"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/api/posts/%d/vote", postID), bobToken, fiber.Map{"direction": "down"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), body["upvotes"])
	assert.Equal(t, float64(1), body["downvotes"])

	// Pins: author only, reflected in the feed ordering flag.
	resp, _ = doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/api/posts/%d/pin", postID), bobToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/api/posts/%d/pin", postID), aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["pinned"])

	// Notification reset zeroes the unread counter and is safe to repeat.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/notifications/reset", aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = doJSON(t, app, http.MethodPost, "/api/notifications/reset", aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodGet, "/api/notifications/", aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), body["unread"])

	// Invalid route parameter.
	resp, _ = doJSON(t, app, http.MethodGet, "/api/posts/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetUserPostsAuthorization(t *testing.T) {
	app, _ := newTestApp(t)

	aliceToken := signup(t, app, "alice_owner")
	bobToken := signup(t, app, "bob_other")

	resp, body := doJSON(t, app, http.MethodPost, "/api/posts/", aliceToken, fiber.Map{
		"title":   "mine",
		"content": "only for me",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "create post body: %v", body)
	authorID := uint(body["user_id"].(float64))

	path := fmt.Sprintf("/api/users/%d/posts", authorID)

	// No token at all.
	resp, _ = doJSON(t, app, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Authenticated, but not the owner.
	resp, _ = doJSON(t, app, http.MethodGet, path, bobToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// The owner sees their posts.
	resp, body = doJSON(t, app, http.MethodGet, path, aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	posts := body["posts"].([]interface{})
	assert.Len(t, posts, 1)
}

func TestSignupValidation(t *testing.T) {
	app, _ := newTestApp(t)

	cases := []struct {
		name string
		body fiber.Map
	}{
		{"missing fields", fiber.Map{"username": "only_name"}},
		{"bad username", fiber.Map{"username": "x", "password": "CorrectHorse9battery"}},
		{"weak password", fiber.Map{"username": "valid_name", "password": "short"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, _ := doJSON(t, app, http.MethodPost, "/api/auth/signup", "", tc.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}
