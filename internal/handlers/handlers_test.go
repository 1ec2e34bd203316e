package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/anonto42/insyd/backend/internal/delivery"
	"github.com/anonto42/insyd/backend/internal/fanout"
	"github.com/anonto42/insyd/backend/internal/models"
	"github.com/anonto42/insyd/backend/internal/repositories"
	"github.com/anonto42/insyd/backend/pkg/logger"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type testServer struct {
	e     *echo.Echo
	db    *gorm.DB
	posts *memoryPosts
	log   *repositories.MemoryNotificationLog
}

// newTestServer wires every handler on SQLite, in-memory posts and an in-memory log.
// A nil notifier uses the real fan-out engine.
func newTestServer(t *testing.T, notifier Notifier) *testServer {
	t.Helper()
	db := newTestDB(t)
	e, api := newEcho()
	posts := newMemoryPosts()
	log := repositories.NewMemoryNotificationLog()

	users := repositories.NewPostgresUserRepository(db)
	follows := repositories.NewPostgresFollowRepository(db)
	if notifier == nil {
		notifier = fanout.NewEngine(follows, posts, users, log, logger.Discard())
	}

	NewUserHandler(users).RegisterUserRoutes(api)
	NewFollowHandler(follows).RegisterFollowRoutes(api)
	NewPostHandler(posts, notifier, logger.Discard()).RegisterPostRoutes(api)
	NewLikeHandler(repositories.NewPostgresLikeRepository(db), posts, notifier, logger.Discard()).RegisterLikeRoutes(api)
	NewCommentHandler(repositories.NewPostgresCommentRepository(db), posts, notifier, logger.Discard()).RegisterCommentRoutes(api)
	NewNotificationHandler(delivery.NewService(log, 0), users).RegisterNotificationRoutes(api)

	if err := repositories.SeedUsers(context.Background(), users, "Alice", "Bob", "Cara"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return &testServer{e: e, db: db, posts: posts, log: log}
}

func (s *testServer) publish(t *testing.T, userID uint, content string) string {
	t.Helper()
	rec := do(t, s.e, http.MethodPost, "/api/v1/posts", fmt.Sprintf(`{"user_id":%d,"content":%q}`, userID, content))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create post: status %d body %s", rec.Code, rec.Body.String())
	}
	var post models.Post
	envelope(t, rec, &post)
	return post.ID.Hex()
}

func TestValidation(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name   string
		method string
		target string
		body   string
	}{
		{"user without name", http.MethodPost, "/api/v1/users", `{"name":""}`},
		{"follow without follower", http.MethodPost, "/api/v1/follows", `{"followed_id":1}`},
		{"post without content", http.MethodPost, "/api/v1/posts", `{"user_id":1}`},
		{"like without post", http.MethodPost, "/api/v1/likes", `{"user_id":1}`},
		{"comment too long", http.MethodPost, "/api/v1/comments", fmt.Sprintf(`{"user_id":1,"post_id":"p","content":%q}`, strings.Repeat("a", 501))},
		{"discover without viewer", http.MethodPost, "/api/v1/discover", `{"post_id":"p"}`},
		{"malformed json", http.MethodPost, "/api/v1/likes", `{"user_id":`},
		{"poll without user", http.MethodGet, "/api/v1/notifications", ""},
		{"poll with bad cursor", http.MethodGet, "/api/v1/notifications?user_id=1&since_id=abc", ""},
		{"mark read without ids", http.MethodPost, "/api/v1/notifications/read", `{"user_id":1}`},
		{"bad user id", http.MethodGet, "/api/v1/users/abc", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s.e, tt.method, tt.target, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400; body %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestUsers(t *testing.T) {
	s := newTestServer(t, nil)

	var users []models.User
	envelope(t, do(t, s.e, http.MethodGet, "/api/v1/users", ""), &users)
	if len(users) != 3 || users[0].Name != "Alice" {
		t.Fatalf("users = %+v, want the three seeded users", users)
	}

	rec := do(t, s.e, http.MethodPost, "/api/v1/users", `{"name":"Dan"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create user: status %d", rec.Code)
	}

	if rec := do(t, s.e, http.MethodGet, "/api/v1/users/404", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown user: status %d, want 404", rec.Code)
	}
}

func TestFollow(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s.e, http.MethodPost, "/api/v1/follows", `{"follower_id":2,"followed_id":1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("follow: status %d body %s", rec.Code, rec.Body.String())
	}
	if rec := do(t, s.e, http.MethodPost, "/api/v1/follows", `{"follower_id":2,"followed_id":1}`); rec.Code != http.StatusConflict {
		t.Fatalf("duplicate follow: status %d, want 409", rec.Code)
	}

	var data struct {
		Followers []uint `json:"followers"`
		Count     int    `json:"count"`
	}
	envelope(t, do(t, s.e, http.MethodGet, "/api/v1/users/1/followers", ""), &data)
	if data.Count != 1 || len(data.Followers) != 1 || data.Followers[0] != 2 {
		t.Fatalf("followers = %+v, want [2]", data)
	}
}

func TestActionsFanOut(t *testing.T) {
	s := newTestServer(t, nil)
	do(t, s.e, http.MethodPost, "/api/v1/follows", `{"follower_id":2,"followed_id":1}`)

	postID := s.publish(t, 1, "hello")

	rec := do(t, s.e, http.MethodPost, "/api/v1/likes", fmt.Sprintf(`{"user_id":2,"post_id":%q}`, postID))
	if rec.Code != http.StatusCreated {
		t.Fatalf("like: status %d body %s", rec.Code, rec.Body.String())
	}
	if rec := do(t, s.e, http.MethodPost, "/api/v1/likes", fmt.Sprintf(`{"user_id":2,"post_id":%q}`, postID)); rec.Code != http.StatusConflict {
		t.Fatalf("duplicate like: status %d, want 409", rec.Code)
	}

	rec = do(t, s.e, http.MethodPost, "/api/v1/comments", fmt.Sprintf(`{"user_id":3,"post_id":%q,"content":"nice"}`, postID))
	if rec.Code != http.StatusCreated {
		t.Fatalf("comment: status %d body %s", rec.Code, rec.Body.String())
	}
	var comment models.Comment
	envelope(t, rec, &comment)

	if rec := do(t, s.e, http.MethodPost, "/api/v1/discover", fmt.Sprintf(`{"viewer_id":3,"post_id":%q}`, postID)); rec.Code != http.StatusOK {
		t.Fatalf("discover: status %d", rec.Code)
	}

	post, err := s.posts.GetPostByID(context.Background(), postID)
	if err != nil {
		t.Fatalf("GetPostByID: %v", err)
	}
	if post.LikesCount != 1 || post.CommentsCount != 1 {
		t.Fatalf("counters = %d likes, %d comments", post.LikesCount, post.CommentsCount)
	}

	var page delivery.Page
	envelope(t, do(t, s.e, http.MethodGet, "/api/v1/notifications?user_id=1", ""), &page)
	wantVerbs := []models.Verb{models.VerbDiscovered, models.VerbCommented, models.VerbLiked}
	if len(page.Notifications) != len(wantVerbs) {
		t.Fatalf("author has %d notifications, want %d", len(page.Notifications), len(wantVerbs))
	}
	for i, verb := range wantVerbs {
		if page.Notifications[i].Verb != verb {
			t.Fatalf("notification %d verb = %s, want %s", i, page.Notifications[i].Verb, verb)
		}
	}
	if got := page.Notifications[1]; got.SubjectType != models.SubjectComment || got.SubjectID != fmt.Sprint(comment.ID) {
		t.Fatalf("comment notification subject = %s/%s", got.SubjectType, got.SubjectID)
	}

	envelope(t, do(t, s.e, http.MethodGet, "/api/v1/notifications?user_id=2", ""), &page)
	if len(page.Notifications) != 1 || page.Notifications[0].Message != `Alice posted: "hello"` {
		t.Fatalf("follower page = %+v", page.Notifications)
	}
}

func TestActionOnUnknownPostIsAccepted(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s.e, http.MethodPost, "/api/v1/likes", `{"user_id":2,"post_id":"does-not-exist"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("like: status %d body %s", rec.Code, rec.Body.String())
	}
	for _, u := range []uint{1, 2, 3} {
		got, _ := s.log.QueryIncremental(context.Background(), u, 0)
		if len(got) != 0 {
			t.Fatalf("user %d got %d notifications", u, len(got))
		}
	}
}

func TestFanOutFailureDoesNotChangeResponse(t *testing.T) {
	notifier := &failingNotifier{}
	s := newTestServer(t, notifier)

	postID := s.publish(t, 1, "hello")

	steps := []struct {
		target string
		body   string
		want   int
	}{
		{"/api/v1/likes", fmt.Sprintf(`{"user_id":2,"post_id":%q}`, postID), http.StatusCreated},
		{"/api/v1/comments", fmt.Sprintf(`{"user_id":2,"post_id":%q,"content":"hi"}`, postID), http.StatusCreated},
		{"/api/v1/discover", fmt.Sprintf(`{"viewer_id":2,"post_id":%q}`, postID), http.StatusOK},
	}
	for _, step := range steps {
		rec := do(t, s.e, http.MethodPost, step.target, step.body)
		if rec.Code != step.want {
			t.Fatalf("%s: status %d, want %d", step.target, rec.Code, step.want)
		}
		envelope(t, rec, nil)
	}

	if notifier.calls != 4 {
		t.Fatalf("notifier called %d times, want 4", notifier.calls)
	}
}

func TestComments(t *testing.T) {
	s := newTestServer(t, nil)
	postID := s.publish(t, 1, "hello")

	for _, content := range []string{"first", "second"} {
		do(t, s.e, http.MethodPost, "/api/v1/comments", fmt.Sprintf(`{"user_id":2,"post_id":%q,"content":%q}`, postID, content))
	}

	var comments []models.Comment
	envelope(t, do(t, s.e, http.MethodGet, "/api/v1/posts/"+postID+"/comments", ""), &comments)
	if len(comments) != 2 || comments[0].Content != "first" {
		t.Fatalf("comments = %+v", comments)
	}
}

func TestGetPost(t *testing.T) {
	s := newTestServer(t, nil)
	postID := s.publish(t, 1, "hello")

	var post models.Post
	envelope(t, do(t, s.e, http.MethodGet, "/api/v1/posts/"+postID, ""), &post)
	if post.Content != "hello" || post.UserID != 1 {
		t.Fatalf("post = %+v", post)
	}
	if rec := do(t, s.e, http.MethodGet, "/api/v1/posts/missing", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("missing post: status %d, want 404", rec.Code)
	}
}

func TestNotificationEndpoints(t *testing.T) {
	s := newTestServer(t, nil)
	do(t, s.e, http.MethodPost, "/api/v1/follows", `{"follower_id":2,"followed_id":1}`)
	s.publish(t, 1, "one")

	var page delivery.Page
	envelope(t, do(t, s.e, http.MethodGet, "/api/v1/notifications?user_id=2", ""), &page)
	if len(page.Notifications) != 1 || page.Cursor != page.Notifications[0].ID {
		t.Fatalf("bootstrap page = %+v", page)
	}
	cursor := page.Cursor

	envelope(t, do(t, s.e, http.MethodGet, fmt.Sprintf("/api/v1/notifications?user_id=2&since_id=%d", cursor), ""), &page)
	if len(page.Notifications) != 0 || page.Cursor != cursor {
		t.Fatalf("empty delta = %+v", page)
	}

	s.publish(t, 1, "two")
	envelope(t, do(t, s.e, http.MethodGet, fmt.Sprintf("/api/v1/notifications?user_id=2&since_id=%d", cursor), ""), &page)
	if len(page.Notifications) != 1 || page.Notifications[0].Message != `Alice posted: "two"` {
		t.Fatalf("delta = %+v", page.Notifications)
	}

	var count struct {
		Count int64 `json:"count"`
	}
	envelope(t, do(t, s.e, http.MethodGet, "/api/v1/notifications/unread-count?user_id=2", ""), &count)
	if count.Count != 2 {
		t.Fatalf("unread = %d, want 2", count.Count)
	}

	body := fmt.Sprintf(`{"user_id":2,"ids":[%d]}`, cursor)
	for i := 0; i < 2; i++ {
		if rec := do(t, s.e, http.MethodPost, "/api/v1/notifications/read", body); rec.Code != http.StatusOK {
			t.Fatalf("mark read: status %d", rec.Code)
		}
	}
	// Someone else's id is ignored.
	do(t, s.e, http.MethodPost, "/api/v1/notifications/read", fmt.Sprintf(`{"user_id":3,"ids":[%d]}`, page.Notifications[0].ID))

	envelope(t, do(t, s.e, http.MethodGet, "/api/v1/notifications/unread-count?user_id=2", ""), &count)
	if count.Count != 1 {
		t.Fatalf("unread = %d, want 1", count.Count)
	}
}

func TestNotificationsCarryCurrentActor(t *testing.T) {
	s := newTestServer(t, nil)
	do(t, s.e, http.MethodPost, "/api/v1/follows", `{"follower_id":2,"followed_id":1}`)
	s.publish(t, 1, "hello")

	if err := s.db.Model(&models.User{}).Where("id = ?", 1).Update("name", "Alicia").Error; err != nil {
		t.Fatalf("rename: %v", err)
	}
	// A record whose actor no longer exists is served without one.
	if _, err := s.log.AppendBatch(context.Background(), []models.Notification{{
		RecipientID: 2, ActorID: 99, Verb: models.VerbLiked,
		SubjectType: models.SubjectPost, SubjectID: "p", Message: "Ghost liked your post",
	}}); err != nil {
		t.Fatalf("AppendBatch: %v", err)
	}

	var data struct {
		Notifications []EnrichedNotification `json:"notifications"`
		Cursor        uint64                 `json:"cursor"`
	}
	envelope(t, do(t, s.e, http.MethodGet, "/api/v1/notifications?user_id=2", ""), &data)
	if len(data.Notifications) != 2 || data.Cursor != data.Notifications[0].ID {
		t.Fatalf("page = %+v", data)
	}

	if ghost := data.Notifications[0]; ghost.Actor != nil {
		t.Fatalf("unknown actor enriched as %+v", ghost.Actor)
	}
	n := data.Notifications[1]
	if n.Actor == nil || n.Actor.ID != 1 || n.Actor.Name != "Alicia" {
		t.Fatalf("actor = %+v, want current name Alicia", n.Actor)
	}
	if n.Message != `Alice posted: "hello"` {
		t.Fatalf("message = %q, want the name frozen at write time", n.Message)
	}
}
