package repository

import (
	"context"
	"errors"

	"devconnector/internal/database"
	"devconnector/internal/models"
	"devconnector/internal/observability"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoPostRepository stores each post as one document with embedded likes and comments.
// Mutations are single-document updates, so they are atomic without transactions.
type mongoPostRepository struct {
	posts *mongo.Collection
	timer *observability.QueryTimer
}

// NewMongoPostRepository returns a PostRepository on the posts collection of db.
func NewMongoPostRepository(db *mongo.Database) PostRepository {
	return &mongoPostRepository{
		posts: db.Collection(database.PostsCollection),
		timer: observability.NewQueryTimer(mongoSystem),
	}
}

func (r *mongoPostRepository) start(ctx context.Context, op string) (context.Context, func(*error)) {
	return instrument(ctx, r.timer, mongoSystem, op, database.PostsCollection)
}

func (r *mongoPostRepository) Create(ctx context.Context, post *models.Post) (err error) {
	ctx, end := r.start(ctx, "Create")
	defer end(&err)

	assignID(&post.ID)
	post.Normalize()
	if _, err = r.posts.InsertOne(ctx, post); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *mongoPostRepository) GetByID(ctx context.Context, id string) (post *models.Post, err error) {
	ctx, end := r.start(ctx, "GetByID")
	defer end(&err)

	var p models.Post
	if err = r.posts.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	p.Normalize()
	return &p, nil
}

func (r *mongoPostRepository) List(ctx context.Context) (posts []*models.Post, err error) {
	ctx, end := r.start(ctx, "List")
	defer end(&err)

	cursor, err := r.posts.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	posts = []*models.Post{}
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, p := range posts {
		p.Normalize()
	}
	return posts, nil
}

func (r *mongoPostRepository) Delete(ctx context.Context, id string) (err error) {
	ctx, end := r.start(ctx, "Delete")
	defer end(&err)

	res, err := r.posts.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return models.NewInternalError(err)
	}
	if res.DeletedCount == 0 {
		return models.NewNotFoundError("Post", id)
	}
	return nil
}

func (r *mongoPostRepository) AddLike(ctx context.Context, postID, userID string) (err error) {
	ctx, end := r.start(ctx, "AddLike")
	defer end(&err)

	// The $ne guard makes check-and-insert a single atomic update.
	filter := bson.M{"_id": postID, "likes.user": bson.M{"$ne": userID}}
	update := bson.M{"$push": bson.M{"likes": bson.M{
		"$each":     []models.Like{{UserID: userID}},
		"$position": 0,
	}}}
	res, err := r.posts.UpdateOne(ctx, filter, update)
	if err != nil {
		return models.NewInternalError(err)
	}
	if res.MatchedCount > 0 {
		return nil
	}
	return r.missOr(ctx, postID, models.NewAlreadyLikedError())
}

func (r *mongoPostRepository) RemoveLike(ctx context.Context, postID, userID string) (err error) {
	ctx, end := r.start(ctx, "RemoveLike")
	defer end(&err)

	filter := bson.M{"_id": postID, "likes.user": userID}
	update := bson.M{"$pull": bson.M{"likes": bson.M{"user": userID}}}
	res, err := r.posts.UpdateOne(ctx, filter, update)
	if err != nil {
		return models.NewInternalError(err)
	}
	if res.MatchedCount > 0 {
		return nil
	}
	return r.missOr(ctx, postID, models.NewNotLikedError())
}

func (r *mongoPostRepository) AddComment(ctx context.Context, postID string, comment *models.Comment) (err error) {
	ctx, end := r.start(ctx, "AddComment")
	defer end(&err)

	assignID(&comment.ID)
	comment.PostID = postID
	update := bson.M{"$push": bson.M{"comments": bson.M{
		"$each":     []models.Comment{*comment},
		"$position": 0,
	}}}
	res, err := r.posts.UpdateOne(ctx, bson.M{"_id": postID}, update)
	if err != nil {
		return models.NewInternalError(err)
	}
	if res.MatchedCount == 0 {
		return models.NewNotFoundError("Post", postID)
	}
	return nil
}

func (r *mongoPostRepository) RemoveComment(ctx context.Context, postID, commentID string) (err error) {
	ctx, end := r.start(ctx, "RemoveComment")
	defer end(&err)

	filter := bson.M{"_id": postID, "comments._id": commentID}
	update := bson.M{"$pull": bson.M{"comments": bson.M{"_id": commentID}}}
	res, err := r.posts.UpdateOne(ctx, filter, update)
	if err != nil {
		return models.NewInternalError(err)
	}
	if res.MatchedCount > 0 {
		return nil
	}
	return r.missOr(ctx, postID, models.NewCommentNotFoundError(commentID))
}

// missOr explains a guarded update that matched nothing: NOT_FOUND when the
// post is gone, otherwise the guard's own error.
func (r *mongoPostRepository) missOr(ctx context.Context, postID string, guardErr error) error {
	err := r.posts.FindOne(ctx, bson.M{"_id": postID},
		options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return models.NewNotFoundError("Post", postID)
	case err != nil:
		return models.NewInternalError(err)
	default:
		return guardErr
	}
}
