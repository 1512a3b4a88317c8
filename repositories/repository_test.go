package repositories

import (
	"chat-core/domain"
	"chat-core/domain/event"
	cerrors "chat-core/errors"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRepository(db, logs.GetLoggerFromLevel(slog.LevelDebug))
}

func ptr(s string) *string { return &s }

func insertMessages(t *testing.T, r *Repository, messages ...domain.Message) {
	t.Helper()
	err := r.WithTx(context.Background(), func(txn *badger.Txn) error {
		for _, m := range messages {
			if err := r.InsertMessage(txn, m); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func TestRepository_Conversation(t *testing.T) {
	req := require.New(t)
	r := newTestRepository(t)
	ctx := context.Background()
	c := domain.NewConversation("c1", []string{"bob", "alice", "bob"}, t0)

	// Given a stored conversation
	req.NoError(r.WithTx(ctx, func(txn *badger.Txn) error { return r.InsertConversation(txn, c) }))

	// When it is read back
	got, err := r.FindConversation(ctx, "c1")

	// Then participants are unique and sorted
	req.NoError(err)
	req.Equal([]string{"alice", "bob"}, got.Participants)

	// When alice leaves
	req.NoError(r.WithTx(ctx, func(txn *badger.Txn) error { return r.RemoveParticipant(txn, "c1", "alice") }))

	// Then the membership index follows
	err = r.View(ctx, func(txn *badger.Txn) error {
		ids, err := r.ConversationsOf(txn, "alice")
		req.Empty(ids)
		return err
	})
	req.NoError(err)
	got, err = r.FindConversation(ctx, "c1")
	req.NoError(err)
	req.Equal([]string{"bob"}, got.Participants)
}

func TestRepository_MissingEntities(t *testing.T) {
	req := require.New(t)
	r := newTestRepository(t)
	ctx := context.Background()

	_, err := r.FindConversation(ctx, "nope")
	req.ErrorIs(err, cerrors.ErrNotFound)
	_, err = r.FindMessage(ctx, "nope")
	req.ErrorIs(err, cerrors.ErrNotFound)
}

func TestRepository_ChildrenOfOrderedByCreationThenID(t *testing.T) {
	req := require.New(t)
	r := newTestRepository(t)
	ctx := context.Background()

	// Given a root with three replies, two of them sharing a timestamp
	root := domain.Message{ID: "r", ConversationID: "c1", SenderID: "alice", Content: "root", CreatedAt: t0}
	late := domain.Message{ID: "a", ConversationID: "c1", SenderID: "bob", Content: "late", ParentID: ptr("r"), CreatedAt: t0.Add(2 * time.Second)}
	tieB := domain.Message{ID: "b", ConversationID: "c1", SenderID: "bob", Content: "tie b", ParentID: ptr("r"), CreatedAt: t0.Add(time.Second)}
	tieA := domain.Message{ID: "0", ConversationID: "c1", SenderID: "bob", Content: "tie 0", ParentID: ptr("r"), CreatedAt: t0.Add(time.Second)}
	insertMessages(t, r, root, late, tieB, tieA)

	// When the replies are fetched
	children, err := r.ChildrenOf(ctx, []string{"r"})

	// Then they come ordered by (created, id)
	req.NoError(err)
	req.Equal([]string{"0", "b", "a"}, ids(children))
}

func TestRepository_DetachAndDelete(t *testing.T) {
	req := require.New(t)
	r := newTestRepository(t)
	ctx := context.Background()
	root := domain.Message{ID: "r", ConversationID: "c1", SenderID: "alice", Content: "root", CreatedAt: t0}
	child := domain.Message{ID: "c", ConversationID: "c1", SenderID: "bob", Content: "child", ParentID: ptr("r"), CreatedAt: t0.Add(time.Second)}
	insertMessages(t, r, root, child)

	// When the child is detached and the root deleted
	err := r.WithTx(ctx, func(txn *badger.Txn) error {
		if _, err := r.DetachMessage(txn, child); err != nil {
			return err
		}
		return r.DeleteMessage(txn, root)
	})
	req.NoError(err)

	// Then the child survives as a root
	got, err := r.FindMessage(ctx, "c")
	req.NoError(err)
	req.True(got.IsRoot())
	_, err = r.FindMessage(ctx, "r")
	req.ErrorIs(err, cerrors.ErrNotFound)
	children, err := r.ChildrenOf(ctx, []string{"r"})
	req.NoError(err)
	req.Empty(children)
}

func TestRepository_EditRecordsStrictlyIncreasing(t *testing.T) {
	req := require.New(t)
	r := newTestRepository(t)
	ctx := context.Background()

	// Given three records logged with the same clock reading
	var stored []domain.EditRecord
	for i, content := range []string{"b", "c", "d"} {
		err := r.WithTx(ctx, func(txn *badger.Txn) error {
			rec, err := r.InsertEditRecord(txn, domain.EditRecord{
				ID: string(rune('x' + i)), MessageID: "m1", NewContent: content, EditorID: "alice", LoggedAt: t0,
			})
			stored = append(stored, rec)
			return err
		})
		req.NoError(err)
	}

	// When the history is read
	records, err := r.FindEditRecords(ctx, "m1")

	// Then logged-at is strictly increasing
	req.NoError(err)
	req.Equal(stored, records)
	for i := 1; i < len(records); i++ {
		req.True(records[i].LoggedAt.After(records[i-1].LoggedAt))
	}
	req.Equal([]string{"b", "c", "d"}, []string{records[0].NewContent, records[1].NewContent, records[2].NewContent})
}

func TestRepository_NotificationUniquePerPair(t *testing.T) {
	req := require.New(t)
	r := newTestRepository(t)
	ctx := context.Background()
	n := domain.Notification{ID: "n1", RecipientID: "bob", MessageID: "m1", CreatedAt: t0}

	var created []bool
	for _, id := range []string{"n1", "n2"} {
		n.ID = id
		err := r.WithTx(ctx, func(txn *badger.Txn) error {
			ok, err := r.InsertNotification(txn, n)
			created = append(created, ok)
			return err
		})
		req.NoError(err)
	}

	// Then the second insert is absorbed
	req.Equal([]bool{true, false}, created)
	notifications, err := r.Notifications(ctx, "bob", false)
	req.NoError(err)
	req.Len(notifications, 1)
	req.Equal("n1", notifications[0].ID)

	// When the message notifications are dropped
	req.NoError(r.WithTx(ctx, func(txn *badger.Txn) error { return r.DeleteNotificationsForMessage(txn, "m1") }))
	notifications, err = r.Notifications(ctx, "bob", false)
	req.NoError(err)
	req.Empty(notifications)
}

func TestRepository_OutboxStageAckPending(t *testing.T) {
	req := require.New(t)
	r := newTestRepository(t)
	ctx := context.Background()
	e1 := event.New(event.MessageEditedType, event.MessageEdited{MessageID: "m1", Previous: "a", New: "b"}, t0)
	e2 := event.New(event.MessageEditedType, event.MessageEdited{MessageID: "m1", Previous: "b", New: "c"}, t0.Add(time.Second))

	// Given one transaction that commits and one that fails
	req.NoError(r.WithTx(ctx, func(txn *badger.Txn) error { return r.Stage(txn, e1) }))
	boom := errors.New("boom")
	err := r.WithTx(ctx, func(txn *badger.Txn) error {
		if err := r.Stage(txn, e2); err != nil {
			return err
		}
		return boom
	})
	req.ErrorIs(err, boom)

	// Then only the committed event is pending
	pending, err := r.Pending(ctx)
	req.NoError(err)
	req.Len(pending, 1)
	req.Equal(e1.ID, pending[0].ID)
	req.Equal(e1.Payload, pending[0].Payload)

	// When it is acknowledged
	req.NoError(r.Ack(ctx, pending[0]))
	pending, err = r.Pending(ctx)
	req.NoError(err)
	req.Empty(pending)
}

func TestRepository_Profiles(t *testing.T) {
	req := require.New(t)
	r := newTestRepository(t)
	ctx := context.Background()
	req.NoError(r.UpsertProfile(ctx, domain.Profile{UserID: "alice", DisplayName: "Alice"}))
	req.NoError(r.UpsertProfile(ctx, domain.Profile{UserID: "alice", DisplayName: "Alice L."}))

	profiles, err := r.Profiles(ctx, []string{"alice", "ghost"})
	req.NoError(err)
	req.Len(profiles, 1)
	req.Equal("Alice L.", profiles["alice"].DisplayName)
}

func TestRepository_ListMessagesFilter(t *testing.T) {
	req := require.New(t)
	r := newTestRepository(t)
	insertMessages(t, r,
		domain.Message{ID: "m1", ConversationID: "c1", SenderID: "alice", Content: "1", CreatedAt: t0},
		domain.Message{ID: "m2", ConversationID: "c1", SenderID: "bob", Content: "2", CreatedAt: t0.Add(time.Minute)},
		domain.Message{ID: "m3", ConversationID: "c1", SenderID: "alice", Content: "3", CreatedAt: t0.Add(2 * time.Minute)},
		domain.Message{ID: "m4", ConversationID: "c2", SenderID: "alice", Content: "4", CreatedAt: t0},
	)

	all, err := r.ListMessages(context.Background(), "c1", domain.MessageFilter{})
	req.NoError(err)
	req.Equal([]string{"m1", "m2", "m3"}, ids(all))

	fromAlice, err := r.ListMessages(context.Background(), "c1", domain.MessageFilter{SenderID: "alice", After: t0.Add(time.Second)})
	req.NoError(err)
	req.Equal([]string{"m3"}, ids(fromAlice))
}

func TestRepository_ReceivedByFollowsDirectMessages(t *testing.T) {
	req := require.New(t)
	r := newTestRepository(t)
	ctx := context.Background()
	direct := domain.Message{ID: "d", ConversationID: "c1", SenderID: "alice", ReceiverID: "bob", Content: "hi", CreatedAt: t0}
	group := domain.Message{ID: "g", ConversationID: "c2", SenderID: "alice", Content: "hi all", CreatedAt: t0}
	insertMessages(t, r, direct, group)

	received := func() []string {
		var res []string
		req.NoError(r.View(ctx, func(txn *badger.Txn) error {
			var err error
			res, err = r.ReceivedBy(txn, "bob")
			return err
		}))
		return res
	}
	req.Equal([]string{"d"}, received())

	// When the direct message is deleted its index entry goes too
	req.NoError(r.WithTx(ctx, func(txn *badger.Txn) error { return r.DeleteMessage(txn, direct) }))
	req.Empty(received())
}

func TestRepository_ClearActivityConflictsWithConcurrentMessage(t *testing.T) {
	req := require.New(t)
	r := newTestRepository(t)

	// Given a transaction that cleared bob's activity
	txn := r.db.NewTransaction(true)
	defer txn.Discard()
	req.NoError(r.ClearActivity(txn, "bob"))

	// When a message to bob commits before it
	insertMessages(t, r, domain.Message{ID: "d", ConversationID: "c1", SenderID: "alice", ReceiverID: "bob", Content: "hi", CreatedAt: t0})

	// Then it cannot commit
	req.ErrorIs(txn.Commit(), badger.ErrConflict)
}

func TestRepository_WithTxCanceledContext(t *testing.T) {
	r := newTestRepository(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := r.WithTx(ctx, func(txn *badger.Txn) error { return nil })
	require.ErrorIs(t, err, context.Canceled)
}

func ids(messages []domain.Message) []string {
	res := make([]string, 0, len(messages))
	for _, m := range messages {
		res = append(res, m.ID)
	}
	return res
}
