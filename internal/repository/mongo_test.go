package repository

import (
	"context"
	"testing"
	"time"

	"devconnector/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func matched(n int) bson.D {
	return mtest.CreateSuccessResponse(
		bson.E{Key: "n", Value: n},
		bson.E{Key: "nModified", Value: n},
	)
}

func postsNS(mt *mtest.T) string {
	return mt.DB.Name() + ".posts"
}

func TestMongoUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("create assigns id", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		user := &models.User{Name: "Jane", Email: "jane@example.com", Password: "hash", Date: time.Now()}
		require.NoError(t, repo.Create(ctx, user))
		assert.NotEmpty(t, user.ID)
	})

	mt.Run("create maps duplicate key", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: users index: uniq_email",
		}))

		err := repo.Create(ctx, &models.User{Name: "Jane", Email: "jane@example.com"})
		assertCode(t, err, models.CodeDuplicateEmail)
	})

	mt.Run("get by email decodes", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(1, mt.DB.Name()+".users", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "u1"},
			{Key: "name", Value: "Jane"},
			{Key: "email", Value: "jane@example.com"},
			{Key: "password", Value: "hash"},
		}))

		user, err := repo.GetByEmail(ctx, "jane@example.com")
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, "u1", user.ID)
		assert.Equal(t, "hash", user.Password)
	})

	mt.Run("get by email returns nil when absent", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+".users", mtest.FirstBatch))

		user, err := repo.GetByEmail(ctx, "nobody@example.com")
		assert.NoError(t, err)
		assert.Nil(t, user)
	})

	mt.Run("get by email maps command failure to internal error", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "bad query",
		}))

		_, err := repo.GetByEmail(ctx, "jane@example.com")
		assertCode(t, err, models.CodeInternal)
	})
}

func TestMongoPostRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("create normalizes collections", func(mt *mtest.T) {
		repo := NewMongoPostRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		post := newPost("author", "Hello from mongo", time.Now())
		require.NoError(t, repo.Create(ctx, post))
		assert.NotEmpty(t, post.ID)
		assert.NotNil(t, post.Likes)
		assert.NotNil(t, post.Comments)
	})

	mt.Run("list decodes and normalizes", func(mt *mtest.T) {
		repo := NewMongoPostRepository(mt.DB)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(1, postsNS(mt), mtest.FirstBatch,
				bson.D{{Key: "_id", Value: "p2"}, {Key: "text", Value: "newer"}, {Key: "user", Value: "u1"}},
				bson.D{{Key: "_id", Value: "p1"}, {Key: "text", Value: "older"}, {Key: "user", Value: "u1"},
					{Key: "likes", Value: bson.A{bson.D{{Key: "user", Value: "u9"}}}}},
			),
			mtest.CreateCursorResponse(0, postsNS(mt), mtest.NextBatch),
		)

		posts, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, posts, 2)
		assert.Equal(t, "p2", posts[0].ID)
		assert.NotNil(t, posts[0].Likes)
		require.Len(t, posts[1].Likes, 1)
		assert.Equal(t, "u9", posts[1].Likes[0].UserID)
	})

	mt.Run("get missing post", func(mt *mtest.T) {
		repo := NewMongoPostRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, postsNS(mt), mtest.FirstBatch))

		_, err := repo.GetByID(ctx, "p404")
		assertCode(t, err, models.CodeNotFound)
	})

	mt.Run("like succeeds", func(mt *mtest.T) {
		repo := NewMongoPostRepository(mt.DB)
		mt.AddMockResponses(matched(1))
		assert.NoError(t, repo.AddLike(ctx, "p1", "u1"))
	})

	mt.Run("like twice", func(mt *mtest.T) {
		repo := NewMongoPostRepository(mt.DB)
		mt.AddMockResponses(
			matched(0),
			mtest.CreateCursorResponse(1, postsNS(mt), mtest.FirstBatch, bson.D{{Key: "_id", Value: "p1"}}),
		)
		assertCode(t, repo.AddLike(ctx, "p1", "u1"), models.CodeAlreadyLiked)
	})

	mt.Run("like missing post", func(mt *mtest.T) {
		repo := NewMongoPostRepository(mt.DB)
		mt.AddMockResponses(matched(0), mtest.CreateCursorResponse(0, postsNS(mt), mtest.FirstBatch))
		assertCode(t, repo.AddLike(ctx, "p404", "u1"), models.CodeNotFound)
	})

	mt.Run("unlike without like", func(mt *mtest.T) {
		repo := NewMongoPostRepository(mt.DB)
		mt.AddMockResponses(
			matched(0),
			mtest.CreateCursorResponse(1, postsNS(mt), mtest.FirstBatch, bson.D{{Key: "_id", Value: "p1"}}),
		)
		assertCode(t, repo.RemoveLike(ctx, "p1", "u1"), models.CodeNotLiked)
	})

	mt.Run("comment on missing post", func(mt *mtest.T) {
		repo := NewMongoPostRepository(mt.DB)
		mt.AddMockResponses(matched(0))

		comment := &models.Comment{Text: "hi", UserID: "u1"}
		assertCode(t, repo.AddComment(ctx, "p404", comment), models.CodeNotFound)
	})

	mt.Run("comment assigns id", func(mt *mtest.T) {
		repo := NewMongoPostRepository(mt.DB)
		mt.AddMockResponses(matched(1))

		comment := &models.Comment{Text: "hi", UserID: "u1"}
		require.NoError(t, repo.AddComment(ctx, "p1", comment))
		assert.NotEmpty(t, comment.ID)
	})

	mt.Run("remove unknown comment", func(mt *mtest.T) {
		repo := NewMongoPostRepository(mt.DB)
		mt.AddMockResponses(
			matched(0),
			mtest.CreateCursorResponse(1, postsNS(mt), mtest.FirstBatch, bson.D{{Key: "_id", Value: "p1"}}),
		)
		assertCode(t, repo.RemoveComment(ctx, "p1", "c404"), models.CodeCommentNotFound)
	})

	mt.Run("delete missing post", func(mt *mtest.T) {
		repo := NewMongoPostRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))
		assertCode(t, repo.Delete(ctx, "p404"), models.CodeNotFound)
	})

	mt.Run("delete existing post", func(mt *mtest.T) {
		repo := NewMongoPostRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))
		assert.NoError(t, repo.Delete(ctx, "p1"))
	})
}
