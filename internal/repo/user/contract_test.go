package user_repo

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xenn00/apibench/internal/entity"
	app_error "github.com/xenn00/apibench/internal/errors"
)

func sampleUser(username string, createdAt time.Time) entity.User {
	return entity.User{
		Name:      "Sample " + username,
		Email:     username + "@example.com",
		Password:  "$2a$10$abcdefghijklmnopqrstuv",
		Username:  username,
		IsActive:  true,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

// runRepoContract exercises behaviour every backend must share. newRepo must
// return an empty, schema-ready repo.
func runRepoContract(t *testing.T, newRepo func(t *testing.T) UserRepoContract) {
	ctx := context.Background()
	older := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("insert then find without password", func(t *testing.T) {
		repo := newRepo(t)

		id, err := repo.Insert(ctx, sampleUser("aaa-user", older))
		require.Nil(t, err)
		assert.NotEmpty(t, id)

		found, err := repo.FindByUsername(ctx, "aaa-user")
		require.Nil(t, err)
		require.NotNil(t, found)
		assert.Equal(t, id, found.ID)
		assert.Equal(t, "Sample aaa-user", found.Name)
		assert.True(t, found.IsActive)
		assert.Empty(t, found.Password)
		assert.True(t, older.Equal(found.CreatedAt))
	})

	t.Run("find missing returns nil", func(t *testing.T) {
		repo := newRepo(t)

		found, err := repo.FindByUsername(ctx, "ghost")
		assert.Nil(t, err)
		assert.Nil(t, found)
	})

	t.Run("duplicate username is rejected", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.Insert(ctx, sampleUser("dup", older))
		require.Nil(t, err)

		id, err := repo.Insert(ctx, sampleUser("dup", newer))
		require.NotNil(t, err)
		assert.Empty(t, id)
		assert.Equal(t, app_error.KindDuplicateKey, err.Kind)
		assert.Contains(t, err.Message, "dup")
	})

	t.Run("list sorted by creation time", func(t *testing.T) {
		repo := newRepo(t)

		empty, err := repo.ListSorted(ctx, entity.SortByCreatedAt, entity.Descending)
		require.Nil(t, err)
		assert.NotNil(t, empty)
		assert.Empty(t, empty)

		_, err = repo.Insert(ctx, sampleUser("bbb-user", newer))
		require.Nil(t, err)
		_, err = repo.Insert(ctx, sampleUser("aaa-user", older))
		require.Nil(t, err)

		asc, err := repo.ListSorted(ctx, entity.SortByCreatedAt, entity.Ascending)
		require.Nil(t, err)
		require.Len(t, asc, 2)
		assert.Equal(t, "aaa-user", asc[0].Username)
		assert.Equal(t, "bbb-user", asc[1].Username)

		desc, err := repo.ListSorted(ctx, entity.SortByCreatedAt, entity.Descending)
		require.Nil(t, err)
		require.Len(t, desc, 2)
		assert.Equal(t, "bbb-user", desc[0].Username)
		assert.Equal(t, "aaa-user", desc[1].Username)

		for _, u := range append(asc, desc...) {
			assert.Empty(t, u.Password)
			assert.NotEmpty(t, u.ID)
		}
	})

	t.Run("unsupported sort field", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.ListSorted(ctx, entity.SortField("email"), entity.Ascending)
		require.NotNil(t, err)
		assert.Equal(t, app_error.KindUnclassified, err.Kind)
	})

	t.Run("concurrent inserts keep one record", func(t *testing.T) {
		repo := newRepo(t)

		const attempts = 8
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			successes int
			conflicts int
		)
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				u := sampleUser("race", older)
				u.Email = fmt.Sprintf("race%d@example.com", i)
				_, err := repo.Insert(ctx, u)

				mu.Lock()
				defer mu.Unlock()
				if err == nil {
					successes++
				} else if err.Kind == app_error.KindDuplicateKey {
					conflicts++
				}
			}(i)
		}
		wg.Wait()

		assert.Equal(t, 1, successes)
		assert.Equal(t, attempts-1, conflicts)

		list, err := repo.ListSorted(ctx, entity.SortByCreatedAt, entity.Ascending)
		require.Nil(t, err)
		assert.Len(t, list, 1)
	})
}
