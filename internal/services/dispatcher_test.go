package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/anonto42/gamematch/backend/internal/models"
	"github.com/anonto42/gamematch/backend/internal/repositories"
	"github.com/anonto42/gamematch/backend/internal/testutil"
	"github.com/anonto42/gamematch/backend/pkg/pubsub"
)

func TestDispatcherPublishesAndStores(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	store := repositories.NewStore(db)
	inbox := repositories.NewPostgresNotificationRepository(db)
	pub := &testutil.MockPublisher{}
	d := NewDispatcher(pub, inbox, time.Second)

	actor := testutil.CreateUser(t, store, "actor", "Actor")
	target := testutil.CreateUser(t, store, "target", "Target")

	d.Notify(ctx, target, newFollowNotification(actor, target))
	d.Wait()

	msgs := pub.Messages()
	require.Len(t, msgs, 1)
	require.Equal(t, "user-target", msgs[0].Channel)
	require.Equal(t, "new-follow", msgs[0].Event)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(msgs[0].Data, &payload))
	require.Equal(t, "follow", payload["type"])
	require.Equal(t, "Actor", payload["actorName"])
	require.Equal(t, "actor", payload["actorId"])

	items, total, err := inbox.GetByRecipientID(ctx, target.ID, 1, 10)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, models.NotificationFollow, items[0].Type)
}

func TestDispatcherSwallowsPublishFailure(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	store := repositories.NewStore(db)
	inbox := repositories.NewPostgresNotificationRepository(db)
	pub := &testutil.MockPublisher{
		PublishFunc: func(context.Context, *pubsub.Message) error { return testutil.ErrTransportDown },
	}
	d := NewDispatcher(pub, inbox, time.Second)

	owner := testutil.CreateUser(t, store, "owner", "Owner")
	liker := testutil.CreateUser(t, store, "liker", "Liker")
	post := testutil.CreatePost(t, store, owner, "Halo LAN", time.Now())

	// The like commits even though delivery fails.
	engagement := NewEngagementService(store, d)
	view, err := engagement.Like(ctx, liker, post.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), view.LikeCount)
	d.Wait()

	msgs := pub.Messages()
	require.Len(t, msgs, 1)
	require.Equal(t, "user-owner", msgs[0].Channel)
	require.Equal(t, "new-like", msgs[0].Event)

	unread, err := inbox.GetUnreadCount(ctx, owner.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), unread)
}

func TestDispatcherOutlivesRequestContext(t *testing.T) {
	var publishErr error
	pub := &testutil.MockPublisher{
		PublishFunc: func(ctx context.Context, _ *pubsub.Message) error {
			publishErr = ctx.Err()
			return publishErr
		},
	}
	d := NewDispatcher(pub, nil, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	target := &models.User{ID: 1, ExternalID: "t"}
	actor := &models.User{ID: 2, ExternalID: "a", DisplayName: "A"}
	d.Notify(ctx, target, newFollowNotification(actor, target))
	d.Wait()

	require.Len(t, pub.Messages(), 1)
	require.NoError(t, publishErr)
}
