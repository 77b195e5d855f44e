package notifications

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aimd54/cricket-predictor/internal/domain"
	"github.com/aimd54/cricket-predictor/internal/models"
	"github.com/aimd54/cricket-predictor/internal/repository"
	"github.com/aimd54/cricket-predictor/internal/repository/repotest"
	"github.com/aimd54/cricket-predictor/pkg/logger"
)

func newService(t *testing.T) (*Service, *repository.DB) {
	t.Helper()
	db := repotest.NewDB(t)
	return NewService(
		repository.NewNotificationRepository(db),
		repository.NewUserRepository(db),
		repository.NewRoomRepository(db),
		logger.Nop(),
	), db
}

func TestBroadcast(t *testing.T) {
	svc, db := newService(t)
	ctx := t.Context()
	users := repository.NewUserRepository(db)

	alice := repotest.CreateUser(t, db, "alice", models.RoleUser)
	bob := repotest.CreateUser(t, db, "bob", models.RoleUser)
	carol := repotest.CreateUser(t, db, "carol", models.RoleUser)
	require.NoError(t, users.SetApproved(ctx, carol.ID, false))

	rooms := repository.NewRoomRepository(db)
	room := &models.Room{Name: "Office", Type: models.RoomTypeRequest, AdminID: alice.ID}
	require.NoError(t, rooms.Create(ctx, room))
	require.NoError(t, rooms.AddMember(ctx, &models.RoomMember{RoomID: room.ID, UserID: bob.ID}))

	sent, err := svc.Broadcast(ctx, BroadcastInput{Target: "all", Title: "Welcome", Message: "Season starts Friday"})
	require.NoError(t, err)
	assert.Equal(t, 2, sent, "unapproved users are skipped")

	sent, err = svc.Broadcast(ctx, BroadcastInput{Target: fmt.Sprintf("ROOM:%d", room.ID), Title: "Room", Message: "Hi room"})
	require.NoError(t, err)
	assert.Equal(t, 1, sent, "pending members are skipped")

	sent, err = svc.Broadcast(ctx, BroadcastInput{Target: fmt.Sprintf("USER:%d", bob.ID), Title: "Direct", Message: "Hi bob"})
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	aliceInbox, err := svc.ListForUser(ctx, alice.ID, false)
	require.NoError(t, err)
	assert.Len(t, aliceInbox, 2)

	bobInbox, err := svc.ListForUser(ctx, bob.ID, false)
	require.NoError(t, err)
	require.Len(t, bobInbox, 2)
	assert.Equal(t, "Direct", bobInbox[0].Title, "newest first")
	assert.Equal(t, models.NotificationTypeInfo, bobInbox[0].Type)
	assert.Nil(t, bobInbox[0].Payload())
}

func TestBroadcast_Errors(t *testing.T) {
	svc, _ := newService(t)
	ctx := t.Context()

	tests := []struct {
		target string
		err    error
	}{
		{"EVERYONE", domain.ErrValidation},
		{"ROOM:abc", domain.ErrValidation},
		{"USER:0", domain.ErrValidation},
		{"ROOM:42", domain.ErrNotFound},
		{"USER:42", domain.ErrNotFound},
		{"", domain.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			_, err := svc.Broadcast(ctx, BroadcastInput{Target: tt.target, Title: "t", Message: "m"})
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestMarkRead(t *testing.T) {
	svc, db := newService(t)
	ctx := t.Context()

	alice := repotest.CreateUser(t, db, "alice", models.RoleUser)
	bob := repotest.CreateUser(t, db, "bob", models.RoleUser)

	_, err := svc.Broadcast(ctx, BroadcastInput{Target: fmt.Sprintf("USER:%d", alice.ID), Title: "Hi", Message: "hello"})
	require.NoError(t, err)

	unread, err := svc.ListForUser(ctx, alice.ID, true)
	require.NoError(t, err)
	require.Len(t, unread, 1)

	assert.ErrorIs(t, svc.MarkRead(ctx, bob.ID, unread[0].ID), domain.ErrNotFound, "cannot read someone else's notification")
	require.NoError(t, svc.MarkRead(ctx, alice.ID, unread[0].ID))

	unread, err = svc.ListForUser(ctx, alice.ID, true)
	require.NoError(t, err)
	assert.Empty(t, unread)
}
