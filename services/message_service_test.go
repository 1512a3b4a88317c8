package services

import (
	"chat-core/domain"
	"chat-core/domain/event"
	cerrors "chat-core/errors"
	"chat-core/mocks"
	"chat-core/moderation"
	"chat-core/repositories"
	"chat-core/runtime"
	"chat-core/runtime/workers"
	"chat-core/sink"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	repo    *repositories.Repository
	bus     *runtime.EventBus
	service *MessageService
}

// newFixture wires the service the way the binary does, with the delivery
// workers running until the test ends.
func newFixture(t *testing.T, policy domain.OrphanPolicy) fixture {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)

	repo := repositories.NewRepository(db, log)
	bus := runtime.NewEventBus(log, repo, 4, 64, time.Second)
	bus.SubscribeTx(event.MessageEditedType, sink.NewAuditRecorder(log, repo, nil))
	bus.Subscribe(sink.NewNotificationDispatcher(log, repo, nil))

	ctx, cancel := context.WithCancel(context.Background())
	sup := workers.NewSupervisor(log)
	sup.Add(bus.Workers()...)
	done := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		_ = db.Close()
	})

	return fixture{
		repo:    repo,
		bus:     bus,
		service: NewMessageService(log, repo, bus).WithOrphanPolicy(policy),
	}
}

func (f fixture) conversation(t *testing.T, participants ...string) domain.Conversation {
	t.Helper()
	c, err := f.service.CreateConversation(context.Background(), domain.CreateConversationCommand{Participants: participants})
	require.NoError(t, err)
	return c
}

func (f fixture) post(t *testing.T, conv domain.Conversation, sender, content string, parent *domain.Message) domain.Message {
	t.Helper()
	cmd := domain.CreateMessageCommand{ConversationID: conv.ID, SenderID: sender, Content: content}
	if parent != nil {
		cmd.ParentID = &parent.ID
	}
	m, err := f.service.Create(context.Background(), cmd)
	require.NoError(t, err)
	return m
}

// drain waits until every committed event went through the subscribers.
func (f fixture) drain(t *testing.T) {
	t.Helper()
	require.Eventually(t, func() bool {
		pending, err := f.repo.Pending(context.Background())
		return err == nil && len(pending) == 0
	}, time.Second, 5*time.Millisecond)
}

func TestMessageService_CreateInDirectConversation(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, domain.OrphanCascade)
	ctx := context.Background()
	conv := f.conversation(t, "alice", "bob")

	// When alice writes to bob
	m := f.post(t, conv, "alice", "hello", nil)

	// Then bob is the receiver and gets exactly one notification
	req.Equal("bob", m.ReceiverID)
	req.True(m.IsRoot())
	req.Eventually(func() bool {
		n, err := f.service.Notifications(ctx, "bob", true)
		return err == nil && len(n) == 1 && n[0].MessageID == m.ID
	}, time.Second, 5*time.Millisecond)
	own, err := f.service.Notifications(ctx, "alice", false)
	req.NoError(err)
	req.Empty(own)
}

func TestMessageService_CreateInGroupConversation(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, domain.OrphanCascade)
	conv := f.conversation(t, "alice", "bob", "carol")

	m := f.post(t, conv, "carol", "hi all", nil)

	req.Empty(m.ReceiverID)
	for _, user := range []string{"alice", "bob"} {
		req.Eventually(func() bool {
			n, err := f.service.Notifications(context.Background(), user, false)
			return err == nil && len(n) == 1
		}, time.Second, 5*time.Millisecond)
	}
}

func TestMessageService_CreateRejections(t *testing.T) {
	f := newFixture(t, domain.OrphanCascade)
	conv := f.conversation(t, "alice", "bob")
	other := f.conversation(t, "alice", "carol")
	foreign := f.post(t, other, "alice", "elsewhere", nil)
	missing := "nope"

	tests := []struct {
		name string
		cmd  domain.CreateMessageCommand
		want error
	}{
		{"Unknown conversation", domain.CreateMessageCommand{ConversationID: "nope", SenderID: "alice", Content: "x"}, cerrors.ErrNotFound},
		{"Sender outside conversation", domain.CreateMessageCommand{ConversationID: conv.ID, SenderID: "carol", Content: "x"}, cerrors.ErrForbidden},
		{"Unknown parent", domain.CreateMessageCommand{ConversationID: conv.ID, SenderID: "alice", Content: "x", ParentID: &missing}, cerrors.ErrNotFound},
		{"Parent from another conversation", domain.CreateMessageCommand{ConversationID: conv.ID, SenderID: "alice", Content: "x", ParentID: &foreign.ID}, cerrors.ErrInvalidReference},
		{"Empty content", domain.CreateMessageCommand{ConversationID: conv.ID, SenderID: "alice"}, cerrors.ErrInvalidInput},
		{"Colon in identifier", domain.CreateMessageCommand{ConversationID: conv.ID, SenderID: "al:ice", Content: "x"}, cerrors.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Create(context.Background(), tt.cmd)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestMessageService_EditTwiceKeepsBothSnapshots(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, domain.OrphanCascade)
	ctx := context.Background()
	conv := f.conversation(t, "alice", "bob")
	m := f.post(t, conv, "alice", "a", nil)

	// When alice edits to "b" and bob edits to "c"
	_, err := f.service.Edit(ctx, domain.EditMessageCommand{MessageID: m.ID, EditorID: "alice", Content: "b"})
	req.NoError(err)
	edited, err := f.service.Edit(ctx, domain.EditMessageCommand{MessageID: m.ID, EditorID: "bob", Content: "c"})
	req.NoError(err)

	// Then the message holds "c" with bob as last editor
	req.Equal("c", edited.Content)
	req.True(edited.Edited)
	req.Equal("bob", edited.EditedBy)
	req.NotNil(edited.EditedAt)

	// And the history holds both previous contents in order
	records, err := f.service.History(ctx, m.ID, "alice")
	req.NoError(err)
	req.Len(records, 2)
	req.Equal("a", records[0].PreviousContent)
	req.Equal("alice", records[0].EditorID)
	req.Equal("b", records[1].PreviousContent)
	req.Equal("bob", records[1].EditorID)
	req.True(records[1].LoggedAt.After(records[0].LoggedAt))
}

func TestMessageService_EditWithSameContentIsNoop(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, domain.OrphanCascade)
	ctx := context.Background()
	conv := f.conversation(t, "alice", "bob")
	m := f.post(t, conv, "alice", "same", nil)

	got, err := f.service.Edit(ctx, domain.EditMessageCommand{MessageID: m.ID, EditorID: "bob", Content: "same"})

	req.NoError(err)
	req.False(got.Edited)
	req.Nil(got.EditedAt)
	records, err := f.service.History(ctx, m.ID, "bob")
	req.NoError(err)
	req.Empty(records)
}

func TestMessageService_EditRejections(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, domain.OrphanCascade)
	ctx := context.Background()
	conv := f.conversation(t, "alice", "bob")
	m := f.post(t, conv, "alice", "a", nil)

	_, err := f.service.Edit(ctx, domain.EditMessageCommand{MessageID: "nope", EditorID: "alice", Content: "b"})
	req.ErrorIs(err, cerrors.ErrNotFound)
	_, err = f.service.Edit(ctx, domain.EditMessageCommand{MessageID: m.ID, EditorID: "mallory", Content: "b"})
	req.ErrorIs(err, cerrors.ErrForbidden)
}

func TestMessageService_EditAbortsWhenAuditFails(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, domain.OrphanCascade)
	ctx := context.Background()
	conv := f.conversation(t, "alice", "bob")
	m := f.post(t, conv, "alice", "a", nil)

	// Given an audit subscriber failing to persist
	ctrl := gomock.NewController(t)
	failing := mocks.NewMockTxSink(ctrl)
	failing.EXPECT().ConsumeTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("disk full"))
	f.bus.SubscribeTx(event.MessageEditedType, failing)

	// When editing
	_, err := f.service.Edit(ctx, domain.EditMessageCommand{MessageID: m.ID, EditorID: "alice", Content: "b"})

	// Then nothing changed and the failure is reported as a storage failure
	req.ErrorIs(err, cerrors.ErrStorageFailure)
	got, err := f.service.Get(ctx, m.ID)
	req.NoError(err)
	req.Equal("a", got.Content)
	req.False(got.Edited)
	records, err := f.service.History(ctx, m.ID, "alice")
	req.NoError(err)
	req.Empty(records)
}

func TestMessageService_ConcurrentEditsLoseNoRecord(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, domain.OrphanCascade)
	ctx := context.Background()
	conv := f.conversation(t, "alice", "bob")
	m := f.post(t, conv, "alice", "v0", nil)

	// When twenty editors race on the same message
	const editors = 20
	var wg sync.WaitGroup
	errs := make(chan error, editors)
	for i := 1; i <= editors; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			editor := "alice"
			if i%2 == 0 {
				editor = "bob"
			}
			_, err := f.service.Edit(ctx, domain.EditMessageCommand{MessageID: m.ID, EditorID: editor, Content: fmt.Sprintf("v%d", i)})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		req.NoError(err)
	}

	// Then every edit left a record chained on the previous one
	records, err := f.service.History(ctx, m.ID, "alice")
	req.NoError(err)
	req.Len(records, editors)
	req.Equal("v0", records[0].PreviousContent)
	for i := 1; i < len(records); i++ {
		req.Equal(records[i-1].NewContent, records[i].PreviousContent)
	}
	got, err := f.service.Get(ctx, m.ID)
	req.NoError(err)
	req.Equal(records[editors-1].NewContent, got.Content)
}

func TestMessageService_DeleteCascades(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, domain.OrphanCascade)
	ctx := context.Background()
	conv := f.conversation(t, "alice", "bob")
	root := f.post(t, conv, "alice", "root", nil)
	child := f.post(t, conv, "bob", "child", &root)
	grandChild := f.post(t, conv, "alice", "grand child", &child)
	_, err := f.service.Edit(ctx, domain.EditMessageCommand{MessageID: child.ID, EditorID: "bob", Content: "child!"})
	req.NoError(err)
	f.drain(t)

	// When alice deletes the root
	req.NoError(f.service.Delete(ctx, domain.DeleteMessageCommand{MessageID: root.ID, RequesterID: "alice"}))

	// Then the whole subtree, its history and notifications are gone
	for _, id := range []string{root.ID, child.ID, grandChild.ID} {
		_, err = f.service.Get(ctx, id)
		req.ErrorIs(err, cerrors.ErrNotFound)
	}
	records, err := f.repo.FindEditRecords(ctx, child.ID)
	req.NoError(err)
	req.Empty(records)
	f.drain(t)
	for _, user := range []string{"alice", "bob"} {
		n, err := f.service.Notifications(ctx, user, false)
		req.NoError(err)
		req.Empty(n)
	}
}

func TestMessageService_DeleteDetachesReplies(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, domain.OrphanDetach)
	ctx := context.Background()
	conv := f.conversation(t, "alice", "bob")
	root := f.post(t, conv, "alice", "root", nil)
	child := f.post(t, conv, "bob", "child", &root)
	grandChild := f.post(t, conv, "alice", "grand child", &child)

	req.NoError(f.service.Delete(ctx, domain.DeleteMessageCommand{MessageID: root.ID, RequesterID: "alice"}))

	_, err := f.service.Get(ctx, root.ID)
	req.ErrorIs(err, cerrors.ErrNotFound)
	got, err := f.service.Get(ctx, child.ID)
	req.NoError(err)
	req.True(got.IsRoot())
	got, err = f.service.Get(ctx, grandChild.ID)
	req.NoError(err)
	req.Equal(child.ID, *got.ParentID)
}

func TestMessageService_OnlySenderDeletes(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, domain.OrphanCascade)
	conv := f.conversation(t, "alice", "bob")
	m := f.post(t, conv, "alice", "mine", nil)

	err := f.service.Delete(context.Background(), domain.DeleteMessageCommand{MessageID: m.ID, RequesterID: "bob"})
	req.ErrorIs(err, cerrors.ErrForbidden)
	err = f.service.Delete(context.Background(), domain.DeleteMessageCommand{MessageID: "nope", RequesterID: "bob"})
	req.ErrorIs(err, cerrors.ErrNotFound)
}

func TestMessageService_DeleteAccount(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, domain.OrphanCascade)
	ctx := context.Background()
	conv := f.conversation(t, "alice", "bob", "carol")
	req.NoError(f.service.UpsertProfile(ctx, domain.Profile{UserID: "bob", DisplayName: "Bob"}))
	fromAlice := f.post(t, conv, "alice", "for bob", nil)
	fromBob := f.post(t, conv, "bob", "from bob", nil)
	bobReply := f.post(t, conv, "bob", "bob again", &fromBob)
	_, err := f.service.Edit(ctx, domain.EditMessageCommand{MessageID: fromAlice.ID, EditorID: "bob", Content: "edited by bob"})
	req.NoError(err)
	req.Eventually(func() bool {
		n, err := f.service.Notifications(ctx, "bob", false)
		return err == nil && len(n) == 1
	}, time.Second, 5*time.Millisecond)

	// When bob's account is deleted
	res, err := f.service.DeleteAccount(ctx, "bob")
	req.NoError(err)

	// Then his messages, notifications, profile and memberships are gone
	req.ElementsMatch([]string{fromBob.ID, bobReply.ID}, res.Messages)
	req.Equal([]string{conv.ID}, res.Conversations)
	_, err = f.service.Get(ctx, fromBob.ID)
	req.ErrorIs(err, cerrors.ErrNotFound)
	n, err := f.service.Notifications(ctx, "bob", false)
	req.NoError(err)
	req.Empty(n)
	participants, err := f.service.ListParticipants(ctx, conv.ID)
	req.NoError(err)
	req.Equal([]string{"alice", "carol"}, participants)
	profiles, err := f.repo.Profiles(ctx, []string{"bob"})
	req.NoError(err)
	req.Empty(profiles)

	// And alice's message keeps the history bob contributed to
	records, err := f.service.History(ctx, fromAlice.ID, "alice")
	req.NoError(err)
	req.Len(records, 1)
	req.Equal("bob", records[0].EditorID)
}

func TestMessageService_DeleteAccountRemovesReceivedMessages(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, domain.OrphanDetach)
	ctx := context.Background()
	conv := f.conversation(t, "alice", "bob")
	toBob := f.post(t, conv, "alice", "for bob", nil)
	reply := f.post(t, conv, "alice", "still for bob", &toBob)
	req.Equal("bob", toBob.ReceiverID)
	f.drain(t)

	// When bob's account is deleted
	res, err := f.service.DeleteAccount(ctx, "bob")
	req.NoError(err)

	// Then no remaining message names him as sender or receiver
	req.ElementsMatch([]string{toBob.ID, reply.ID}, res.Messages)
	left, err := f.service.ListMessages(ctx, conv.ID, "alice", domain.MessageFilter{})
	req.NoError(err)
	for _, m := range left {
		req.NotEqual("bob", m.SenderID)
		req.NotEqual("bob", m.ReceiverID)
	}
	err = f.repo.View(ctx, func(txn *badger.Txn) error {
		received, err := f.repo.ReceivedBy(txn, "bob")
		req.Empty(received)
		return err
	})
	req.NoError(err)
}

func TestMessageService_DeleteAccountWhileMessagesArrive(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, domain.OrphanCascade)
	ctx := context.Background()
	conv := f.conversation(t, "alice", "bob")
	f.post(t, conv, "alice", "first", nil)

	// Given alice writing to bob while his account is deleted
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			_, _ = f.service.Create(ctx, domain.CreateMessageCommand{ConversationID: conv.ID, SenderID: "alice", Content: fmt.Sprintf("m%d", i)})
		}
	}()
	_, err := f.service.DeleteAccount(ctx, "bob")
	wg.Wait()
	if errors.Is(err, cerrors.ErrConcurrentConflict) {
		_, err = f.service.DeleteAccount(ctx, "bob")
	}
	req.NoError(err)

	// Then every message addressed to bob went with the account
	err = f.repo.View(ctx, func(txn *badger.Txn) error {
		received, err := f.repo.ReceivedBy(txn, "bob")
		req.Empty(received)
		return err
	})
	req.NoError(err)
}

func TestMessageService_ListConversations(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, domain.OrphanCascade)
	ctx := context.Background()
	first := f.conversation(t, "alice", "bob")
	second := f.conversation(t, "carol", "alice", "dave")
	f.conversation(t, "bob", "carol")

	conversations, err := f.service.ListConversations(ctx, "alice")
	req.NoError(err)
	req.Len(conversations, 2)
	req.ElementsMatch([]string{first.ID, second.ID}, []string{conversations[0].ID, conversations[1].ID})

	none, err := f.service.ListConversations(ctx, "erin")
	req.NoError(err)
	req.Empty(none)

	_, err = f.service.ListConversations(ctx, "")
	req.ErrorIs(err, cerrors.ErrInvalidInput)
}

func TestMessageService_ReadsRequireMembership(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, domain.OrphanCascade)
	ctx := context.Background()
	conv := f.conversation(t, "alice", "bob")
	m1 := f.post(t, conv, "alice", "one", nil)
	f.post(t, conv, "bob", "two", nil)

	_, err := f.service.History(ctx, m1.ID, "mallory")
	req.ErrorIs(err, cerrors.ErrForbidden)
	_, err = f.service.ListMessages(ctx, conv.ID, "mallory", domain.MessageFilter{})
	req.ErrorIs(err, cerrors.ErrForbidden)

	fromAlice, err := f.service.ListMessages(ctx, conv.ID, "bob", domain.MessageFilter{SenderID: "alice"})
	req.NoError(err)
	req.Len(fromAlice, 1)
	req.Equal(m1.ID, fromAlice[0].ID)
}

func TestMessageService_ModeratorMasksContent(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, domain.OrphanCascade)
	mod, err := moderation.NewModerator([]string{"badger"}, '*', slog.Default())
	req.NoError(err)
	f.service.WithModerator(mod).WithMaxContentLength(20)
	conv := f.conversation(t, "alice", "bob")

	m := f.post(t, conv, "alice", "a b4dger here", nil)
	req.Equal("a ****** here", m.Content)

	_, err = f.service.Create(context.Background(), domain.CreateMessageCommand{
		ConversationID: conv.ID, SenderID: "alice", Content: "this content is far too long",
	})
	req.ErrorIs(err, cerrors.ErrInvalidInput)
}

func TestMessageService_CreateConversationNeedsTwoPeople(t *testing.T) {
	f := newFixture(t, domain.OrphanCascade)
	_, err := f.service.CreateConversation(context.Background(), domain.CreateConversationCommand{Participants: []string{"alice", "alice"}})
	require.ErrorIs(t, err, cerrors.ErrInvalidInput)
}

func TestStorageFailure(t *testing.T) {
	req := require.New(t)
	req.NoError(storageFailure(nil))
	req.ErrorIs(storageFailure(fmt.Errorf("wrapped: %w", cerrors.ErrNotFound)), cerrors.ErrNotFound)
	req.ErrorIs(storageFailure(badger.ErrTxnTooBig), cerrors.ErrStorageFailure)
}

func TestStripedLock_LockAllDeduplicatesStripes(t *testing.T) {
	l := &stripedLock{}
	unlock := l.lockAll([]string{"a", "a", "b"})
	unlock()
	// Locking again proves every stripe was released
	l.lockAll([]string{"a", "b"})()
}
