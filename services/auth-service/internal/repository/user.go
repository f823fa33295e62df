package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/vasapolrittideah/credential-auth/services/auth-service/internal/model"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// UserRepository defines the interface for user-related database operations.
// Implementations return ErrUserNotFound and ErrDuplicateEmail instead of
// driver specific errors.
type UserRepository interface {
	// CreateUser inserts a new user and assigns its ID.
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)

	// GetUser retrieves a user by ID.
	GetUser(ctx context.Context, id string) (*model.User, error)

	// GetUserByEmail retrieves a user by its unique email.
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)

	// SaveUser persists every mutable field of user.
	SaveUser(ctx context.Context, user *model.User) (*model.User, error)

	// ClearActiveSession removes the active session marker of a user.
	ClearActiveSession(ctx context.Context, id string) error
}

const userCollection = "users"

type userMongoRepository struct {
	db *mongo.Database
}

// NewUserMongoRepository creates a MongoDB backed UserRepository and ensures
// its indexes exist.
func NewUserMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) UserRepository {
	collection := db.Collection(userCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "active_session_id", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create user indexes")
	}

	return &userMongoRepository{db: db}
}

func (r *userMongoRepository) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.ID == "" {
		user.ID = bson.NewObjectID().Hex()
	}

	if _, err := r.db.Collection(userCollection).InsertOne(ctx, user); err != nil {
		return nil, mongoWriteError("insert user", err)
	}

	return user, nil
}

func (r *userMongoRepository) GetUser(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *userMongoRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *userMongoRepository) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	var user model.User
	err := r.db.Collection(userCollection).FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	return &user, nil
}

func (r *userMongoRepository) SaveUser(ctx context.Context, user *model.User) (*model.User, error) {
	user.UpdatedAt = time.Now()

	result, err := r.db.Collection(userCollection).ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		return nil, mongoWriteError("save user", err)
	}

	if result.MatchedCount == 0 {
		return nil, ErrUserNotFound
	}

	return user, nil
}

func (r *userMongoRepository) ClearActiveSession(ctx context.Context, id string) error {
	result, err := r.db.Collection(userCollection).UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{
			"$unset": bson.M{"active_session_id": ""},
			"$set":   bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("clear active session: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrUserNotFound
	}

	return nil
}

// mongoWriteError maps a unique index violation on email to ErrDuplicateEmail.
func mongoWriteError(op string, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateEmail
	}
	return fmt.Errorf("%s: %w", op, err)
}
