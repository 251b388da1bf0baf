package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/gamematch/backend/internal/models"
	"github.com/anonto42/gamematch/backend/internal/testutil"
	"github.com/anonto42/gamematch/backend/pkg/errorx"
)

func TestResolveUserCreatesOnFirstUse(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	svc := NewIdentityService(store)

	p := models.Principal{ID: "ext-1", Name: "Kai", Picture: "https://img/kai.png", Email: "kai@example.com"}
	user, err := svc.ResolveUser(ctx, p)
	require.NoError(t, err)
	require.NotZero(t, user.ID)
	require.Equal(t, "Kai", user.DisplayName)
	require.Equal(t, "https://img/kai.png", user.AvatarURL)
	require.Equal(t, "kai@example.com", user.Email)

	again, err := svc.ResolveUser(ctx, p)
	require.NoError(t, err)
	require.Equal(t, user.ID, again.ID)
}

func TestResolveUserNeverOverwritesProfile(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	svc := NewIdentityService(store)

	user, err := svc.ResolveUser(ctx, models.Principal{ID: "ext-1", Name: "Provider Name", Picture: "old.png"})
	require.NoError(t, err)

	name, avatar := "Edited", "custom.png"
	_, err = svc.UpdateProfile(ctx, user.ID, models.ProfileEdit{DisplayName: &name, AvatarURL: &avatar})
	require.NoError(t, err)

	again, err := svc.ResolveUser(ctx, models.Principal{ID: "ext-1", Name: "Provider Name", Picture: "new.png"})
	require.NoError(t, err)
	require.Equal(t, "Edited", again.DisplayName)
	require.Equal(t, "custom.png", again.AvatarURL)
}

func TestResolveUserDisplayNameFallback(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	svc := NewIdentityService(store)

	byEmail, err := svc.ResolveUser(ctx, models.Principal{ID: "a", Email: "nova@example.com"})
	require.NoError(t, err)
	require.Equal(t, "nova", byEmail.DisplayName)

	guest, err := svc.ResolveUser(ctx, models.Principal{ID: "b"})
	require.NoError(t, err)
	require.Equal(t, models.GuestDisplayName, guest.DisplayName)
}

func TestResolveUserRequiresPrincipal(t *testing.T) {
	svc := NewIdentityService(testutil.NewStore(t))

	_, err := svc.ResolveUser(context.Background(), models.Principal{ID: "  "})
	require.ErrorIs(t, err, errorx.ErrAuthRequired)
}

func TestResolveUserConcurrentFirstRequests(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	svc := NewIdentityService(store)

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = map[uint]bool{}
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u, err := svc.ResolveUser(ctx, models.Principal{ID: "same", Name: fmt.Sprintf("name %d", i)})
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			ids[u.ID] = true
			mu.Unlock()
		}(i)
	}
	wg.Wait()
	require.Len(t, ids, 1)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	svc := NewIdentityService(store)
	user := testutil.CreateUser(t, store, "ext", "Before")

	status := "  LF duo for ranked  "
	updated, err := svc.UpdateProfile(ctx, user.ID, models.ProfileEdit{StatusMessage: &status})
	require.NoError(t, err)
	require.Equal(t, "Before", updated.DisplayName)
	require.Equal(t, "LF duo for ranked", updated.StatusMessage)

	blank := " "
	_, err = svc.UpdateProfile(ctx, user.ID, models.ProfileEdit{DisplayName: &blank})
	require.Equal(t, errorx.InvalidInput, errorx.KindOf(err))

	_, err = svc.UpdateProfile(ctx, 9999, models.ProfileEdit{StatusMessage: &status})
	require.ErrorIs(t, err, errorx.ErrUserNotFound)
}

func TestGetProfile(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	svc := NewIdentityService(store)

	alice := testutil.CreateUser(t, store, "alice", "Alice")
	bob := testutil.CreateUser(t, store, "bob", "Bob")
	testutil.Follow(t, store, bob, alice)

	profile, err := svc.GetProfile(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "Alice", profile.DisplayName)
	require.Equal(t, int64(1), profile.Followers)
	require.Zero(t, profile.Following)

	own, err := svc.GetOwnProfile(ctx, bob)
	require.NoError(t, err)
	require.Equal(t, "bob@example.com", own.Email)
	require.Equal(t, int64(1), own.Following)

	_, err = svc.GetProfile(ctx, "ghost")
	require.ErrorIs(t, err, errorx.ErrUserNotFound)
}
