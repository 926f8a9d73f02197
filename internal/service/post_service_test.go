package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"devconnector/internal/database"
	"devconnector/internal/models"
	"devconnector/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn        func(context.Context, *models.Post) error
	getByIDFn       func(context.Context, string) (*models.Post, error)
	listFn          func(context.Context) ([]*models.Post, error)
	deleteFn        func(context.Context, string) error
	addLikeFn       func(context.Context, string, string) error
	removeLikeFn    func(context.Context, string, string) error
	addCommentFn    func(context.Context, string, *models.Comment) error
	removeCommentFn func(context.Context, string, string) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id string) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) List(ctx context.Context) ([]*models.Post, error) {
	return s.listFn(ctx)
}
func (s *postRepoStub) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) AddLike(ctx context.Context, postID, userID string) error {
	return s.addLikeFn(ctx, postID, userID)
}
func (s *postRepoStub) RemoveLike(ctx context.Context, postID, userID string) error {
	return s.removeLikeFn(ctx, postID, userID)
}
func (s *postRepoStub) AddComment(ctx context.Context, postID string, c *models.Comment) error {
	return s.addCommentFn(ctx, postID, c)
}
func (s *postRepoStub) RemoveComment(ctx context.Context, postID, commentID string) error {
	return s.removeCommentFn(ctx, postID, commentID)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:        func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn:       func(_ context.Context, id string) (*models.Post, error) { return &models.Post{ID: id}, nil },
		listFn:          func(_ context.Context) ([]*models.Post, error) { return nil, nil },
		deleteFn:        func(_ context.Context, _ string) error { return nil },
		addLikeFn:       func(_ context.Context, _, _ string) error { return nil },
		removeLikeFn:    func(_ context.Context, _, _ string) error { return nil },
		addCommentFn:    func(_ context.Context, _ string, _ *models.Comment) error { return nil },
		removeCommentFn: func(_ context.Context, _, _ string) error { return nil },
	}
}

func TestPostService_CreatePostValidation(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		message string
	}{
		{"empty", "", "Text field is required"},
		{"whitespace only", "   \t ", "Text field is required"},
		{"too short", "too short", "Post must be between 10 and 300 characters"},
		{"too long", strings.Repeat("x", 301), "Post must be between 10 and 300 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := noopPostRepo()
			repo.createFn = func(context.Context, *models.Post) error {
				t.Fatal("create must not be called")
				return nil
			}
			svc := NewPostService(repo)

			_, err := svc.CreatePost(context.Background(), CreatePostInput{UserID: "u1", Text: tt.text})
			appErr := appErrorOf(t, err)
			assert.Equal(t, models.CodeValidation, appErr.Code)
			assert.Equal(t, map[string]string{"text": tt.message}, appErr.Fields)
		})
	}
}

func TestPostService_CreatePost(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	repo := noopPostRepo()
	repo.createFn = func(_ context.Context, p *models.Post) error {
		p.ID = "p1"
		return nil
	}
	svc := NewPostService(repo)
	svc.now = func() time.Time { return fixed }

	post, err := svc.CreatePost(context.Background(), CreatePostInput{
		UserID: "u1", Text: "  exactly ten  ", Name: "Jane", Avatar: "//img",
	})
	require.NoError(t, err)
	assert.Equal(t, "p1", post.ID)
	assert.Equal(t, "exactly ten", post.Text)
	assert.Equal(t, "u1", post.UserID)
	assert.Equal(t, fixed, post.Date)
}

func TestPostService_DeletePost(t *testing.T) {
	ctx := context.Background()

	t.Run("non-owner is forbidden", func(t *testing.T) {
		repo := noopPostRepo()
		repo.getByIDFn = func(context.Context, string) (*models.Post, error) {
			return &models.Post{ID: "p1", UserID: "owner"}, nil
		}
		repo.deleteFn = func(context.Context, string) error {
			t.Fatal("delete must not be called")
			return nil
		}

		_, err := NewPostService(repo).DeletePost(ctx, "p1", "intruder")
		appErr := appErrorOf(t, err)
		assert.Equal(t, models.CodeForbidden, appErr.Code)
		assert.Equal(t, 403, appErr.Status())
	})

	t.Run("owner deletes", func(t *testing.T) {
		repo := noopPostRepo()
		repo.getByIDFn = func(context.Context, string) (*models.Post, error) {
			return &models.Post{ID: "p1", UserID: "owner"}, nil
		}
		deleted := ""
		repo.deleteFn = func(_ context.Context, id string) error {
			deleted = id
			return nil
		}

		post, err := NewPostService(repo).DeletePost(ctx, "p1", "owner")
		require.NoError(t, err)
		assert.Equal(t, "p1", deleted)
		assert.Equal(t, "owner", post.UserID)
	})

	t.Run("missing post", func(t *testing.T) {
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, id string) (*models.Post, error) {
			return nil, models.NewNotFoundError("Post", id)
		}

		_, err := NewPostService(repo).DeletePost(ctx, "p404", "owner")
		assert.Equal(t, models.CodeNotFound, appErrorOf(t, err).Code)
	})
}

func TestPostService_LikeErrorsSkipReread(t *testing.T) {
	repo := noopPostRepo()
	repo.addLikeFn = func(context.Context, string, string) error { return models.NewAlreadyLikedError() }
	repo.getByIDFn = func(context.Context, string) (*models.Post, error) {
		t.Fatal("post must not be re-read after a failed like")
		return nil, nil
	}

	_, err := NewPostService(repo).LikePost(context.Background(), "p1", "u1")
	assert.Equal(t, models.CodeAlreadyLiked, appErrorOf(t, err).Code)
}

func TestPostService_AddCommentValidatesFirst(t *testing.T) {
	repo := noopPostRepo()
	repo.addCommentFn = func(context.Context, string, *models.Comment) error {
		t.Fatal("add comment must not be called")
		return nil
	}

	_, _, err := NewPostService(repo).AddComment(context.Background(), "p1", CommentInput{UserID: "u1", Text: "short"})
	assert.Equal(t, models.CodeValidation, appErrorOf(t, err).Code)
}

func newSQLitePostService(t *testing.T) *PostService {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	store := repository.NewGormStore(db)
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	return NewPostService(store.Posts)
}

func TestPostService_AggregateMutations(t *testing.T) {
	ctx := context.Background()
	svc := newSQLitePostService(t)

	post, err := svc.CreatePost(ctx, CreatePostInput{UserID: "owner", Text: "Mutations on an aggregate", Name: "Owner"})
	require.NoError(t, err)

	t.Run("like twice keeps one entry", func(t *testing.T) {
		liked, err := svc.LikePost(ctx, post.ID, "alice")
		require.NoError(t, err)
		require.Len(t, liked.Likes, 1)

		_, err = svc.LikePost(ctx, post.ID, "alice")
		assert.Equal(t, models.CodeAlreadyLiked, appErrorOf(t, err).Code)

		got, err := svc.GetPost(ctx, post.ID)
		require.NoError(t, err)
		assert.Len(t, got.Likes, 1)
	})

	t.Run("unlike removes exactly the actor", func(t *testing.T) {
		_, err := svc.LikePost(ctx, post.ID, "bob")
		require.NoError(t, err)

		unliked, err := svc.UnlikePost(ctx, post.ID, "alice")
		require.NoError(t, err)
		require.Len(t, unliked.Likes, 1)
		assert.Equal(t, "bob", unliked.Likes[0].UserID)

		_, err = svc.UnlikePost(ctx, post.ID, "alice")
		assert.Equal(t, models.CodeNotLiked, appErrorOf(t, err).Code)
	})

	t.Run("comments prepend and remove precisely", func(t *testing.T) {
		_, first, err := svc.AddComment(ctx, post.ID, CommentInput{UserID: "alice", Text: "First comment here"})
		require.NoError(t, err)
		withTwo, second, err := svc.AddComment(ctx, post.ID, CommentInput{UserID: "bob", Text: "Second comment here"})
		require.NoError(t, err)
		require.Len(t, withTwo.Comments, 2)
		assert.Equal(t, second.ID, withTwo.Comments[0].ID)

		withOne, err := svc.RemoveComment(ctx, post.ID, first.ID, "bob")
		require.NoError(t, err)
		require.Len(t, withOne.Comments, 1)
		assert.Equal(t, second.ID, withOne.Comments[0].ID)

		_, err = svc.RemoveComment(ctx, post.ID, "no-such-comment", "bob")
		assert.Equal(t, models.CodeCommentNotFound, appErrorOf(t, err).Code)
	})

	t.Run("only the owner deletes", func(t *testing.T) {
		_, err := svc.DeletePost(ctx, post.ID, "alice")
		assert.Equal(t, models.CodeForbidden, appErrorOf(t, err).Code)

		_, err = svc.GetPost(ctx, post.ID)
		require.NoError(t, err, "post survives a forbidden delete")

		_, err = svc.DeletePost(ctx, post.ID, "owner")
		require.NoError(t, err)

		_, err = svc.GetPost(ctx, post.ID)
		assert.Equal(t, models.CodeNotFound, appErrorOf(t, err).Code)
	})
}
