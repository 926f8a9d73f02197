package repository

import (
	"context"
	"errors"

	"devconnector/internal/models"
	"devconnector/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines persistence operations on the post aggregate.
// Every mutation is atomic per call; none reads-modifies-writes the whole aggregate.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	// List returns every post, newest first.
	List(ctx context.Context) ([]*models.Post, error)
	// Delete permanently removes the post with its likes and comments.
	Delete(ctx context.Context, id string) error
	// AddLike prepends userID to the like set, or fails with ALREADY_LIKED.
	AddLike(ctx context.Context, postID, userID string) error
	// RemoveLike removes userID from the like set, or fails with NOT_LIKED.
	RemoveLike(ctx context.Context, postID, userID string) error
	// AddComment prepends comment, assigning its ID when empty.
	AddComment(ctx context.Context, postID string, comment *models.Comment) error
	// RemoveComment removes one comment, or fails with COMMENT_NOT_FOUND.
	RemoveComment(ctx context.Context, postID, commentID string) error
}

// postRepository implements PostRepository on GORM.
type postRepository struct {
	db     *gorm.DB
	system string
	timer  *observability.QueryTimer
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	system := db.Dialector.Name()
	return &postRepository{db: db, system: system, timer: observability.NewQueryTimer(system)}
}

func (r *postRepository) start(ctx context.Context, op, table string) (context.Context, func(*error)) {
	return instrument(ctx, r.timer, r.system, op, table)
}

// withDetails preloads likes and comments newest first.
func withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Likes", func(db *gorm.DB) *gorm.DB {
			return db.Order("seq DESC")
		}).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("seq DESC")
		})
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) (err error) {
	ctx, end := r.start(ctx, "Create", "posts")
	defer end(&err)

	assignID(&post.ID)
	// Likes and comments are only ever added through AddLike/AddComment.
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	post.Normalize()
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id string) (_ *models.Post, err error) {
	ctx, end := r.start(ctx, "GetByID", "posts")
	defer end(&err)

	var post models.Post
	if err := withDetails(r.db.WithContext(ctx)).Where("id = ?", id).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	post.Normalize()
	return &post, nil
}

func (r *postRepository) List(ctx context.Context) (_ []*models.Post, err error) {
	ctx, end := r.start(ctx, "List", "posts")
	defer end(&err)

	var posts []*models.Post
	if err := withDetails(r.db.WithContext(ctx)).Order("date DESC").Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, p := range posts {
		p.Normalize()
	}
	return posts, nil
}

func (r *postRepository) Delete(ctx context.Context, id string) (err error) {
	ctx, end := r.start(ctx, "Delete", "posts")
	defer end(&err)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		res := tx.Where("id = ?", id).Delete(&models.Post{})
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Post", id)
		}
		return nil
	})
}

func (r *postRepository) AddLike(ctx context.Context, postID, userID string) (err error) {
	ctx, end := r.start(ctx, "AddLike", "likes")
	defer end(&err)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensurePost(tx, postID); err != nil {
			return err
		}
		// The (post_id, user_id) unique index makes the set insert race-free.
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Like{PostID: postID, UserID: userID})
		if res.Error != nil {
			if isUniqueConstraintError(res.Error) {
				return models.NewAlreadyLikedError()
			}
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewAlreadyLikedError()
		}
		return nil
	})
}

func (r *postRepository) RemoveLike(ctx context.Context, postID, userID string) (err error) {
	ctx, end := r.start(ctx, "RemoveLike", "likes")
	defer end(&err)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.Like{})
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected > 0 {
			return nil
		}
		if err := ensurePost(tx, postID); err != nil {
			return err
		}
		return models.NewNotLikedError()
	})
}

func (r *postRepository) AddComment(ctx context.Context, postID string, comment *models.Comment) (err error) {
	ctx, end := r.start(ctx, "AddComment", "comments")
	defer end(&err)

	assignID(&comment.ID)
	comment.PostID = postID
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensurePost(tx, postID); err != nil {
			return err
		}
		if err := tx.Create(comment).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
}

func (r *postRepository) RemoveComment(ctx context.Context, postID, commentID string) (err error) {
	ctx, end := r.start(ctx, "RemoveComment", "comments")
	defer end(&err)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("post_id = ? AND id = ?", postID, commentID).Delete(&models.Comment{})
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected > 0 {
			return nil
		}
		if err := ensurePost(tx, postID); err != nil {
			return err
		}
		return models.NewCommentNotFoundError(commentID)
	})
}

// ensurePost returns a NOT_FOUND AppError unless the post exists.
func ensurePost(tx *gorm.DB, postID string) error {
	var count int64
	if err := tx.Model(&models.Post{}).Where("id = ?", postID).Limit(1).Count(&count).Error; err != nil {
		return models.NewInternalError(err)
	}
	if count == 0 {
		return models.NewNotFoundError("Post", postID)
	}
	return nil
}
