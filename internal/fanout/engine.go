package fanout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/anonto42/insyd/backend/internal/models"
	"github.com/anonto42/insyd/backend/internal/repositories"
	"github.com/google/uuid"
)

// FollowerLookup answers "who follows userID".
type FollowerLookup interface {
	FollowersOf(ctx context.Context, userID uint) ([]uint, error)
}

// AuthorLookup resolves the author of a post; repositories.ErrNotFound when the post is unknown.
type AuthorLookup interface {
	AuthorOf(ctx context.Context, postID string) (uint, error)
}

// NameLookup resolves a user's current display name; repositories.ErrNotFound when the user is unknown.
type NameLookup interface {
	DisplayNameOf(ctx context.Context, userID uint) (string, error)
}

// Engine computes recipients for an action and writes their notifications.
// It is the only writer of the notification log.
type Engine struct {
	followers FollowerLookup
	authors   AuthorLookup
	names     NameLookup
	log       repositories.NotificationLog
	logger    *slog.Logger
}

// NewEngine creates a new Engine
func NewEngine(followers FollowerLookup, authors AuthorLookup, names NameLookup, log repositories.NotificationLog, logger *slog.Logger) *Engine {
	return &Engine{
		followers: followers,
		authors:   authors,
		names:     names,
		log:       log,
		logger:    logger,
	}
}

// Publish notifies every follower of authorID that postID was published.
// The author is never a recipient, even when following themself.
func (e *Engine) Publish(ctx context.Context, authorID uint, postID, content string) error {
	name, ok, err := e.actorName(ctx, models.VerbPublished, authorID)
	if err != nil || !ok {
		return err
	}

	followers, err := e.followers.FollowersOf(ctx, authorID)
	if err != nil {
		return e.fail(models.VerbPublished, fmt.Errorf("resolve followers of %d: %w", authorID, err))
	}

	message := fmt.Sprintf("%s posted: \"%s\"", name, Excerpt(content, ExcerptLength))
	seen := make(map[uint]struct{}, len(followers))
	records := make([]models.Notification, 0, len(followers))
	for _, followerID := range followers {
		if followerID == authorID {
			continue
		}
		if _, dup := seen[followerID]; dup {
			continue
		}
		seen[followerID] = struct{}{}
		records = append(records, models.Notification{
			RecipientID: followerID,
			ActorID:     authorID,
			Verb:        models.VerbPublished,
			SubjectType: models.SubjectPost,
			SubjectID:   postID,
			Message:     message,
		})
	}

	return e.write(ctx, models.VerbPublished, records)
}

// Like notifies the author of postID that userID liked it.
func (e *Engine) Like(ctx context.Context, userID uint, postID string) error {
	return e.notifyAuthor(ctx, models.VerbLiked, userID, postID, models.SubjectPost, postID, func(name string) string {
		return name + " liked your post"
	})
}

// Comment notifies the author of postID that userID commented on it. The
// subject is the comment when commentID is set, the post otherwise.
func (e *Engine) Comment(ctx context.Context, userID uint, postID string, commentID uint, content string) error {
	subjectType, subjectID := models.SubjectComment, strconv.FormatUint(uint64(commentID), 10)
	if commentID == 0 {
		subjectType, subjectID = models.SubjectPost, postID
	}
	return e.notifyAuthor(ctx, models.VerbCommented, userID, postID, subjectType, subjectID, func(name string) string {
		return fmt.Sprintf("%s commented: \"%s\"", name, Excerpt(content, ExcerptLength))
	})
}

// Discover notifies the author of postID that viewerID came across it.
func (e *Engine) Discover(ctx context.Context, viewerID uint, postID string) error {
	return e.notifyAuthor(ctx, models.VerbDiscovered, viewerID, postID, models.SubjectPost, postID, func(name string) string {
		return name + " discovered your post"
	})
}

func (e *Engine) notifyAuthor(ctx context.Context, verb models.Verb, actorID uint, postID, subjectType, subjectID string, render func(name string) string) error {
	authorID, err := e.authors.AuthorOf(ctx, postID)
	if errors.Is(err, repositories.ErrNotFound) {
		e.suppress(verb, reasonNotFound, "post_id", postID)
		return nil
	}
	if err != nil {
		return e.fail(verb, fmt.Errorf("resolve author of post %s: %w", postID, err))
	}
	if authorID == actorID {
		e.suppress(verb, reasonSelf, "post_id", postID, "actor_id", actorID)
		return nil
	}

	name, ok, err := e.actorName(ctx, verb, actorID)
	if err != nil || !ok {
		return err
	}

	return e.write(ctx, verb, []models.Notification{{
		RecipientID: authorID,
		ActorID:     actorID,
		Verb:        verb,
		SubjectType: subjectType,
		SubjectID:   subjectID,
		Message:     render(name),
	}})
}

// actorName reports ok=false, err=nil when the actor does not exist.
func (e *Engine) actorName(ctx context.Context, verb models.Verb, actorID uint) (string, bool, error) {
	name, err := e.names.DisplayNameOf(ctx, actorID)
	if errors.Is(err, repositories.ErrNotFound) {
		e.suppress(verb, reasonNotFound, "actor_id", actorID)
		return "", false, nil
	}
	if err != nil {
		return "", false, e.fail(verb, fmt.Errorf("resolve name of user %d: %w", actorID, err))
	}
	return name, true, nil
}

func (e *Engine) write(ctx context.Context, verb models.Verb, records []models.Notification) error {
	if len(records) == 0 {
		e.suppress(verb, reasonNoRecipients)
		return nil
	}

	batchID := uuid.NewString()
	for i := range records {
		records[i].BatchID = batchID
	}

	ids, err := e.log.AppendBatch(ctx, records)
	if err != nil {
		return e.fail(verb, fmt.Errorf("append batch %s: %w", batchID, err))
	}

	notificationsWritten.WithLabelValues(string(verb)).Add(float64(len(ids)))
	e.logger.Debug("fan-out written", "verb", verb, "batch_id", batchID, "recipients", len(ids))
	return nil
}

func (e *Engine) suppress(verb models.Verb, reason string, attrs ...any) {
	fanOutSuppressed.WithLabelValues(string(verb), reason).Inc()
	e.logger.Debug("fan-out suppressed", append([]any{"verb", verb, "reason", reason}, attrs...)...)
}

func (e *Engine) fail(verb models.Verb, err error) error {
	fanOutFailures.WithLabelValues(string(verb)).Inc()
	return &Error{Verb: verb, Err: err}
}
