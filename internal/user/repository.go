package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/Amityadav08/SLVNK-Backend/internal/apperr"
)

// Repository persists user records.
type Repository interface {
	Create(ctx context.Context, u *User) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, id string, fields UpdateFields) (*User, error)
	Delete(ctx context.Context, id string) (*User, error)
	// List returns a pure pagination scan, newest first. A non-zero since
	// bounds results to records created at or after it.
	List(ctx context.Context, page, limit int64, since time.Time) (Page, error)
	// Search returns a filtered, paginated scan, newest first, excluding
	// excludeID when set.
	Search(ctx context.Context, f SearchFilter, excludeID string) (Page, error)
}

// UpdateFields carries the optional fields of a partial update. Only non-nil
// fields are written.
type UpdateFields struct {
	FirstName     *string
	LastName      *string
	Mobile        *string
	PasswordHash  *string
	Gender        *string
	DateOfBirth   *string
	Age           *int
	Religion      *string
	Caste         *string
	MotherTongue  *string
	MaritalStatus *string
	Height        *string
	Education     *string
	Occupation    *string
	AnnualIncome  *string
	Country       *string
	State         *string
	City          *string
	About         *string
	ProfileImage  *string

	// Privileged fields, set only by the admin surface.
	Role       *string
	IsVerified *bool
	IsActive   *bool
}

func (f UpdateFields) setMap() bson.M {
	set := bson.M{}
	str := func(key string, v *string) {
		if v != nil {
			set[key] = *v
		}
	}

	str("first_name", f.FirstName)
	str("last_name", f.LastName)
	str("mobile", f.Mobile)
	str("password_hash", f.PasswordHash)
	str("gender", f.Gender)
	str("date_of_birth", f.DateOfBirth)
	str("religion", f.Religion)
	str("caste", f.Caste)
	str("mother_tongue", f.MotherTongue)
	str("marital_status", f.MaritalStatus)
	str("height", f.Height)
	str("education", f.Education)
	str("occupation", f.Occupation)
	str("annual_income", f.AnnualIncome)
	str("country", f.Country)
	str("state", f.State)
	str("city", f.City)
	str("about", f.About)
	str("profile_image", f.ProfileImage)
	str("role", f.Role)
	if f.Age != nil {
		set["age"] = *f.Age
	}
	if f.IsVerified != nil {
		set["is_verified"] = *f.IsVerified
	}
	if f.IsActive != nil {
		set["is_active"] = *f.IsActive
	}

	return set
}

const userCollection = "users"

type mongoRepository struct {
	db *mongo.Database
}

// NewMongoRepository builds a Mongo-backed user repository. Unique indexes on
// email and mobile are (re)created up front; they are the sole concurrency
// primitive guarding duplicate registrations.
func NewMongoRepository(ctx context.Context, logger zerolog.Logger, db *mongo.Database) Repository {
	collection := db.Collection(userCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "mobile", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Fatal().Err(err).Msg("failed to create user indexes")
	}

	return &mongoRepository{db: db}
}

func (r *mongoRepository) Create(ctx context.Context, u *User) (*User, error) {
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	result, err := r.db.Collection(userCollection).InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, conflictError(err.Error())
		}
		return nil, err
	}

	objectID, ok := result.InsertedID.(bson.ObjectID)
	if !ok {
		return nil, fmt.Errorf("unexpected inserted ID type %T", result.InsertedID)
	}
	u.ID = objectID

	return u, nil
}

func (r *mongoRepository) GetByID(ctx context.Context, id string) (*User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", apperr.ErrMalformedID, id)
	}

	return r.findOne(ctx, bson.M{"_id": objectID})
}

func (r *mongoRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *mongoRepository) findOne(ctx context.Context, filter bson.M) (*User, error) {
	result := r.db.Collection(userCollection).FindOne(ctx, filter)

	var u User
	if err := result.Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}

	return &u, nil
}

func (r *mongoRepository) Update(ctx context.Context, id string, fields UpdateFields) (*User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", apperr.ErrMalformedID, id)
	}

	set := fields.setMap()
	if len(set) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", apperr.ErrValidation)
	}
	set["updated_at"] = time.Now()

	result := r.db.Collection(userCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var u User
	if err := result.Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, conflictError(err.Error())
		}
		return nil, err
	}

	return &u, nil
}

func (r *mongoRepository) Delete(ctx context.Context, id string) (*User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", apperr.ErrMalformedID, id)
	}

	result := r.db.Collection(userCollection).FindOneAndDelete(ctx, bson.M{"_id": objectID})

	var u User
	if err := result.Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}

	return &u, nil
}

func (r *mongoRepository) List(ctx context.Context, page, limit int64, since time.Time) (Page, error) {
	filter := bson.M{}
	if !since.IsZero() {
		filter["created_at"] = bson.M{"$gte": since}
	}

	return r.scan(ctx, filter, page, limit)
}

func (r *mongoRepository) Search(ctx context.Context, f SearchFilter, excludeID string) (Page, error) {
	filter := f.Criteria()

	if excludeID != "" {
		objectID, err := bson.ObjectIDFromHex(excludeID)
		if err != nil {
			return Page{}, fmt.Errorf("%w: %q", apperr.ErrMalformedID, excludeID)
		}
		filter["_id"] = bson.M{"$ne": objectID}
	}

	return r.scan(ctx, filter, f.Page, f.Limit)
}

// scan runs the bounded newest-first query and the matching total count.
func (r *mongoRepository) scan(ctx context.Context, filter bson.M, page, limit int64) (Page, error) {
	collection := r.db.Collection(userCollection)

	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		return Page{}, err
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, err := collection.Find(ctx, filter, findOptions)
	if err != nil {
		return Page{}, err
	}
	defer cursor.Close(ctx)

	users := []*User{}
	for cursor.Next(ctx) {
		var u User
		if err := cursor.Decode(&u); err != nil {
			return Page{}, err
		}
		users = append(users, &u)
	}
	if err := cursor.Err(); err != nil {
		return Page{}, err
	}

	return Page{
		Users:      users,
		Total:      total,
		TotalPages: totalPages(total, limit),
		Page:       page,
		Limit:      limit,
	}, nil
}

// conflictError maps a duplicate-key failure to the conflict sentinel,
// naming the offending field when the index name is recoverable.
func conflictError(raw string) error {
	field := "email or mobile"
	switch {
	case strings.Contains(raw, "mobile"):
		field = "mobile"
	case strings.Contains(raw, "email"):
		field = "email"
	}
	return fmt.Errorf("%w: %s already registered", apperr.ErrConflict, field)
}
