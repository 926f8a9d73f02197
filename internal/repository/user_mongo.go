package repository

import (
	"context"
	"errors"

	"devconnector/internal/database"
	"devconnector/internal/models"
	"devconnector/internal/observability"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const mongoSystem = "mongodb"

type mongoUserRepository struct {
	users *mongo.Collection
	timer *observability.QueryTimer
}

// NewMongoUserRepository returns a UserRepository on the users collection of db.
func NewMongoUserRepository(db *mongo.Database) UserRepository {
	return &mongoUserRepository{
		users: db.Collection(database.UsersCollection),
		timer: observability.NewQueryTimer(mongoSystem),
	}
}

func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (user *models.User, err error) {
	ctx, end := instrument(ctx, r.timer, mongoSystem, "GetByEmail", database.UsersCollection)
	defer end(&err)

	return r.findOne(ctx, bson.M{"email": email})
}

func (r *mongoUserRepository) Create(ctx context.Context, user *models.User) (err error) {
	ctx, end := instrument(ctx, r.timer, mongoSystem, "Create", database.UsersCollection)
	defer end(&err)

	assignID(&user.ID)
	if _, err = r.users.InsertOne(ctx, user); err != nil {
		// uniq_email backs the duplicate check against concurrent registrations.
		if mongo.IsDuplicateKeyError(err) {
			return models.NewDuplicateEmailError()
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := r.users.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}
