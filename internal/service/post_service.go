package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"devconnector/internal/models"
	"devconnector/internal/observability"
	"devconnector/internal/repository"
	"devconnector/internal/validation"
)

type PostService struct {
	postRepo repository.PostRepository
	now      func() time.Time
}

// CreatePostInput is the payload of a new post. UserID comes from the verified token.
type CreatePostInput struct {
	UserID string `json:"-"`
	Text   string `json:"text" validate:"required,min=10,max=300"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// CommentInput is the payload of a new comment. UserID comes from the verified token.
type CommentInput struct {
	UserID string `json:"-"`
	Text   string `json:"text" validate:"required,min=10,max=300"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

var textMessages = validation.Messages{
	"text.required": "Text field is required",
	"text":          "Post must be between 10 and 300 characters",
}

func NewPostService(postRepo repository.PostRepository) *PostService {
	return &PostService{postRepo: postRepo, now: time.Now}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (post *models.Post, err error) {
	defer func() { recordMutation("create", err) }()

	in.Text = strings.TrimSpace(in.Text)
	if err := validate(in, textMessages); err != nil {
		return nil, err
	}

	post = &models.Post{
		Text:   in.Text,
		Name:   in.Name,
		Avatar: in.Avatar,
		UserID: in.UserID,
		Date:   s.now().UTC(),
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// ListPosts returns all posts, newest first.
func (s *PostService) ListPosts(ctx context.Context) ([]*models.Post, error) {
	return s.postRepo.List(ctx)
}

func (s *PostService) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, postID)
}

// DeletePost removes a post owned by actorID and returns what was deleted.
// A concurrent delete of the same post makes the loser see NOT_FOUND.
func (s *PostService) DeletePost(ctx context.Context, postID, actorID string) (post *models.Post, err error) {
	defer func() { recordMutation("delete", err) }()

	post, err = s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.UserID != actorID {
		return nil, models.NewForbiddenError("User not authorized")
	}
	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) LikePost(ctx context.Context, postID, actorID string) (post *models.Post, err error) {
	defer func() { recordMutation("like", err) }()

	if err := s.postRepo.AddLike(ctx, postID, actorID); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, postID)
}

func (s *PostService) UnlikePost(ctx context.Context, postID, actorID string) (post *models.Post, err error) {
	defer func() { recordMutation("unlike", err) }()

	if err := s.postRepo.RemoveLike(ctx, postID, actorID); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, postID)
}

// AddComment prepends a comment and returns the updated post along with the new comment.
func (s *PostService) AddComment(ctx context.Context, postID string, in CommentInput) (post *models.Post, comment *models.Comment, err error) {
	defer func() { recordMutation("comment", err) }()

	in.Text = strings.TrimSpace(in.Text)
	if err := validate(in, textMessages); err != nil {
		return nil, nil, err
	}

	comment = &models.Comment{
		Text:   in.Text,
		Name:   in.Name,
		Avatar: in.Avatar,
		UserID: in.UserID,
		Date:   s.now().UTC(),
	}
	if err := s.postRepo.AddComment(ctx, postID, comment); err != nil {
		return nil, nil, err
	}
	post, err = s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, nil, err
	}
	return post, comment, nil
}

// RemoveComment deletes one comment. Any authenticated user may remove any comment.
func (s *PostService) RemoveComment(ctx context.Context, postID, commentID, actorID string) (post *models.Post, err error) {
	defer func() { recordMutation("uncomment", err) }()

	if err := s.postRepo.RemoveComment(ctx, postID, commentID); err != nil {
		return nil, err
	}
	slog.DebugContext(ctx, "comment removed",
		slog.String("post_id", postID),
		slog.String("comment_id", commentID),
		slog.String("actor_id", actorID),
	)
	return s.postRepo.GetByID(ctx, postID)
}

func recordMutation(operation string, err error) {
	observability.PostMutations.WithLabelValues(operation, outcome(err)).Inc()
}
