package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/gametopup/storefront/domain"
)

// UserRepository implements domain.UserRepository on MongoDB.
type UserRepository struct {
	users *mongo.Collection
}

// NewUserRepository creates a UserRepository and ensures its indexes.
func NewUserRepository(ctx context.Context, db *mongo.Database) (domain.UserRepository, error) {
	repo := &UserRepository{users: db.Collection(UsersCollection)}
	if err := repo.createIndexes(ctx); err != nil {
		// Index creation can fail against existing compatible indexes;
		// that is not worth refusing to start over.
		log.Warn().Err(err).Msg("failed to create user indexes")
	}
	return repo, nil
}

func (r *UserRepository) createIndexes(ctx context.Context) error {
	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetCollation(&options.Collation{Locale: "en", Strength: 2}),
		},
		{
			Keys:    bson.D{{Key: "phone", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}
	if _, err := r.users.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("creating indexes for users collection: %w", err)
	}
	return nil
}

// CreateUser inserts a new user record.
func (r *UserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = NewObjectID()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = domain.RoleCustomer
	}

	if _, err := r.users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrEmailTaken
		}
		log.Error().Err(err).Str("email", user.Email).Msg("error creating user")
		return err
	}
	return nil
}

// GetUserByID retrieves a user by ID.
func (r *UserRepository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetUserByEmail retrieves a user by email.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// GetUserByPhone retrieves a user by phone number.
func (r *UserRepository) GetUserByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"phone": phone})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var user domain.User
	err := r.users.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		log.Error().Err(err).Interface("filter", filter).Msg("error getting user")
		return nil, err
	}
	return &user, nil
}

// UpdateUser updates the durable profile fields of a user. The OTP
// challenge pair is deliberately excluded: those fields are owned by
// SetOTPChallenge/ClearOTPChallenge so a stale in-memory copy can never
// resurrect a consumed challenge.
func (r *UserRepository) UpdateUser(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		return errors.New("user ID is required for update")
	}
	user.UpdatedAt = time.Now().UTC()

	update := bson.M{"$set": bson.M{
		"email":         user.Email,
		"name":          user.Name,
		"phone":         user.Phone,
		"password_hash": user.PasswordHash,
		"role":          user.Role,
		"updated_at":    user.UpdatedAt,
		"last_login_at": user.LastLoginAt,
	}}
	result, err := r.users.UpdateOne(ctx, bson.M{"_id": user.ID}, update)
	if err != nil {
		log.Error().Err(err).Str("userID", user.ID).Msg("error updating user")
		return err
	}
	if result.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// SetOTPChallenge writes the hashed code and expiry as one atomic
// document update, overwriting any outstanding challenge.
func (r *UserRepository) SetOTPChallenge(ctx context.Context, userID, codeHash string, expiresAt time.Time) error {
	update := bson.M{"$set": bson.M{
		"otp_code_hash":  codeHash,
		"otp_expires_at": expiresAt.UTC(),
		"updated_at":     time.Now().UTC(),
	}}
	result, err := r.users.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		log.Error().Err(err).Str("userID", userID).Msg("error storing otp challenge")
		return err
	}
	if result.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// ClearOTPChallenge removes both challenge fields in one update, keeping
// the both-present-or-both-absent invariant.
func (r *UserRepository) ClearOTPChallenge(ctx context.Context, userID string) error {
	update := bson.M{
		"$unset": bson.M{"otp_code_hash": "", "otp_expires_at": ""},
		"$set":   bson.M{"updated_at": time.Now().UTC()},
	}
	result, err := r.users.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		log.Error().Err(err).Str("userID", userID).Msg("error clearing otp challenge")
		return err
	}
	if result.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// ListUsers returns a page of users. pageToken is a numeric offset.
func (r *UserRepository) ListUsers(ctx context.Context, pageToken string, pageSize int) ([]*domain.User, string, error) {
	if pageSize <= 0 {
		pageSize = 50
	}
	offset := 0
	if pageToken != "" {
		parsed, err := strconv.Atoi(pageToken)
		if err != nil || parsed < 0 {
			return nil, "", fmt.Errorf("invalid page token %q", pageToken)
		}
		offset = parsed
	}

	opts := options.Find().
		SetSkip(int64(offset)).
		SetLimit(int64(pageSize)).
		SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.users.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, "", err
	}
	defer cursor.Close(ctx)

	var users []*domain.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, "", err
	}

	nextToken := ""
	if len(users) == pageSize {
		nextToken = strconv.Itoa(offset + pageSize)
	}
	return users, nextToken, nil
}
