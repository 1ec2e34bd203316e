package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/anonto42/insyd/backend/internal/fanout"
	"github.com/anonto42/insyd/backend/internal/models"
	"github.com/anonto42/insyd/backend/internal/repositories"
	"github.com/anonto42/insyd/backend/pkg/config"
	"github.com/anonto42/insyd/backend/validators"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"
)

// memoryPosts is an in-process PostRepository.
type memoryPosts struct {
	mu    sync.Mutex
	posts map[string]*models.Post
}

func newMemoryPosts() *memoryPosts {
	return &memoryPosts{posts: map[string]*models.Post{}}
}

func (m *memoryPosts) CreatePost(_ context.Context, post *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	post.ID = primitive.NewObjectID()
	stored := *post
	m.posts[post.ID.Hex()] = &stored
	return nil
}

func (m *memoryPosts) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	post, ok := m.posts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	out := *post
	return &out, nil
}

func (m *memoryPosts) AuthorOf(ctx context.Context, postID string) (uint, error) {
	post, err := m.GetPostByID(ctx, postID)
	if err != nil {
		return 0, err
	}
	return post.UserID, nil
}

func (m *memoryPosts) IncrementLikesCount(_ context.Context, postID string) error {
	return m.inc(postID, func(p *models.Post) { p.LikesCount++ })
}

func (m *memoryPosts) IncrementCommentsCount(_ context.Context, postID string) error {
	return m.inc(postID, func(p *models.Post) { p.CommentsCount++ })
}

func (m *memoryPosts) inc(postID string, apply func(*models.Post)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	post, ok := m.posts[postID]
	if !ok {
		return repositories.ErrNotFound
	}
	apply(post)
	return nil
}

// failingNotifier fails every fan-out.
type failingNotifier struct {
	calls int
}

func (f *failingNotifier) fail(verb models.Verb) error {
	f.calls++
	return &fanout.Error{Verb: verb, Err: errors.New("log unavailable")}
}

func (f *failingNotifier) Publish(context.Context, uint, string, string) error {
	return f.fail(models.VerbPublished)
}

func (f *failingNotifier) Like(context.Context, uint, string) error {
	return f.fail(models.VerbLiked)
}

func (f *failingNotifier) Comment(context.Context, uint, string, uint, string) error {
	return f.fail(models.VerbCommented)
}

func (f *failingNotifier) Discover(context.Context, uint, string) error {
	return f.fail(models.VerbDiscovered)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := config.OpenSQL("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	if err := repositories.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newEcho() (*echo.Echo, *echo.Group) {
	e := echo.New()
	e.Validator = validators.NewValidator()
	return e, e.Group("/api/v1")
}

func do(t *testing.T, e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// envelope decodes {"success": ..., "data": ...} into data.
func envelope(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) {
	t.Helper()
	var body struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	if !body.Success {
		t.Fatalf("success = false in %s", rec.Body.String())
	}
	if data != nil {
		if err := json.Unmarshal(body.Data, data); err != nil {
			t.Fatalf("decode data %s: %v", body.Data, err)
		}
	}
}
