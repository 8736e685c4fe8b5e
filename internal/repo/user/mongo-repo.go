package user_repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xenn00/apibench/internal/entity"
	app_error "github.com/xenn00/apibench/internal/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const UsersCollection = "users"

type userDocument struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Name      string        `bson:"name"`
	Email     string        `bson:"email"`
	Password  string        `bson:"password,omitempty"`
	Username  string        `bson:"username"`
	IsActive  bool          `bson:"isActive"`
	CreatedAt time.Time     `bson:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt"`
}

func (d userDocument) toEntity() entity.User {
	return entity.User{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Email:     d.Email,
		Username:  d.Username,
		IsActive:  d.IsActive,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// passwordProjection keeps the digest out of every read.
var passwordProjection = bson.D{{Key: "password", Value: 0}}

var sortFields = map[entity.SortField]string{
	entity.SortByCreatedAt: "createdAt",
}

type MongoUserRepo struct {
	Collection *mongo.Collection
}

func NewMongoUserRepo(db *mongo.Database) *MongoUserRepo {
	return &MongoUserRepo{
		Collection: db.Collection(UsersCollection),
	}
}

func (r *MongoUserRepo) EnsureSchema(ctx context.Context) *app_error.AppError {
	_, err := r.Collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("username_unique"),
	})
	if err != nil {
		return app_error.NewUnclassifiedError("mongo-index", fmt.Errorf("failed to create username index: %w", err))
	}

	return nil
}

func (r *MongoUserRepo) FindByUsername(ctx context.Context, username string) (*entity.User, *app_error.AppError) {
	var doc userDocument
	err := r.Collection.FindOne(ctx, bson.M{"username": username}, options.FindOne().SetProjection(passwordProjection)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, app_error.NewUnclassifiedError("mongo-find", fmt.Errorf("failed to fetch user %s: %w", username, err))
	}

	user := doc.toEntity()
	return &user, nil
}

func (r *MongoUserRepo) Insert(ctx context.Context, model entity.User) (string, *app_error.AppError) {
	doc := userDocument{
		Name:      model.Name,
		Email:     model.Email,
		Password:  model.Password,
		Username:  model.Username,
		IsActive:  model.IsActive,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}

	result, err := r.Collection.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", app_error.NewDuplicateKeyError("username", model.Username, err)
		}
		return "", app_error.NewUnclassifiedError("mongo-insert", fmt.Errorf("failed to insert user: %w", err))
	}

	if result == nil || result.InsertedID == nil {
		return "", app_error.NewOperationFailedError("mongo-insert", errors.New("insert returned no id"))
	}

	switch id := result.InsertedID.(type) {
	case bson.ObjectID:
		if id.IsZero() {
			return "", app_error.NewOperationFailedError("mongo-insert", errors.New("insert returned a zero id"))
		}
		return id.Hex(), nil
	default:
		log.Warn().Msgf("unexpected inserted id type %T", id)
		return fmt.Sprint(id), nil
	}
}

func (r *MongoUserRepo) ListSorted(ctx context.Context, field entity.SortField, dir entity.SortDirection) ([]entity.User, *app_error.AppError) {
	key, ok := sortFields[field]
	if !ok {
		return nil, app_error.NewUnclassifiedError("sort", fmt.Errorf("unsupported sort field %q", field))
	}

	opts := options.Find().
		SetProjection(passwordProjection).
		SetSort(bson.D{{Key: key, Value: int(dir)}})

	cur, err := r.Collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, app_error.NewUnclassifiedError("mongo-find", fmt.Errorf("failed to list users: %w", err))
	}
	defer cur.Close(ctx)

	var docs []userDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, app_error.NewUnclassifiedError("mongo-decode", fmt.Errorf("failed to decode users: %w", err))
	}

	users := make([]entity.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, d.toEntity())
	}
	return users, nil
}
