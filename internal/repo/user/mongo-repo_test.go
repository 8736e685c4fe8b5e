package user_repo

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Runs only against a real server, e.g. MONGO_TEST_URL=mongodb://localhost:27017.
func newMongoTestDB(t *testing.T) *mongo.Database {
	uri := os.Getenv("MONGO_TEST_URL")
	if uri == "" {
		t.Skip("MONGO_TEST_URL is not set")
	}

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, client.Ping(ctx, nil))

	name := strings.NewReplacer("/", "_", " ", "_").Replace(fmt.Sprintf("apibench_%s_%d", t.Name(), time.Now().UnixNano()))
	if len(name) > 60 {
		name = name[len(name)-60:]
	}
	db := client.Database(name)
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	return db
}

func TestMongoUserRepo_Contract(t *testing.T) {
	runRepoContract(t, func(t *testing.T) UserRepoContract {
		repo := NewMongoUserRepo(newMongoTestDB(t))
		require.Nil(t, repo.EnsureSchema(context.Background()))
		return repo
	})
}

func TestMongoUserRepo_PasswordOnlyInStorage(t *testing.T) {
	db := newMongoTestDB(t)
	repo := NewMongoUserRepo(db)
	ctx := context.Background()
	require.Nil(t, repo.EnsureSchema(ctx))

	id, err := repo.Insert(ctx, sampleUser("hash-user", time.Now().UTC()))
	require.Nil(t, err)

	objID, parseErr := bson.ObjectIDFromHex(id)
	require.NoError(t, parseErr)

	var raw bson.M
	require.NoError(t, db.Collection(UsersCollection).FindOne(ctx, bson.M{"_id": objID}).Decode(&raw))
	assert.Equal(t, "$2a$10$abcdefghijklmnopqrstuv", raw["password"])
	assert.Equal(t, "hash-user", raw["username"])
	assert.NotContains(t, raw, "id")
}
