package server

import (
	"context"
	"log/slog"
	"time"

	"devconnector/internal/middleware"
	"devconnector/internal/models"
	"devconnector/internal/notifications"
	"devconnector/internal/observability"

	"github.com/gofiber/fiber/v2"
)

const publishTimeout = 2 * time.Second

// publishPostEvent sends evt to Redis after a successful mutation.
// Publishing is best effort: failures are logged and counted, never returned to the client.
func (s *Server) publishPostEvent(c *fiber.Ctx, evt notifications.PostEvent) {
	if s.redis == nil {
		observability.EventsPublished.WithLabelValues(evt.Type, "skipped").Inc()
		return
	}

	// The request context ends with the response; publish on a detached one.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.UserContext()), publishTimeout)
	defer cancel()

	if err := s.notifier.PublishPostEvent(ctx, evt); err != nil {
		observability.EventsPublished.WithLabelValues(evt.Type, "error").Inc()
		middleware.Logger.WarnContext(ctx, "failed to publish post event",
			slog.String("event", evt.Type),
			slog.String("post_id", evt.PostID),
			slog.String("error", err.Error()),
		)
		return
	}
	observability.EventsPublished.WithLabelValues(evt.Type, "ok").Inc()
}

func reactionEvent(post *models.Post, actorID string, liked bool) notifications.PostEvent {
	return notifications.PostEvent{
		Type:     notifications.EventPostReactionUpdated,
		PostID:   post.ID,
		ActorID:  actorID,
		OwnerID:  post.UserID,
		Liked:    &liked,
		Likes:    len(post.Likes),
		Comments: len(post.Comments),
	}
}
