package services

import (
	"chat-core/contract"
	"chat-core/domain"
	"chat-core/domain/event"
	cerrors "chat-core/errors"
	"chat-core/moderation"
	"chat-core/repositories"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

const (
	defaultMaxContentLength = 4000
	defaultPublishTimeout   = time.Second
)

type IMessageService interface {
	CreateConversation(ctx context.Context, cmd domain.CreateConversationCommand) (domain.Conversation, error)
	Create(ctx context.Context, cmd domain.CreateMessageCommand) (domain.Message, error)
	Edit(ctx context.Context, cmd domain.EditMessageCommand) (domain.Message, error)
	Delete(ctx context.Context, cmd domain.DeleteMessageCommand) error
	DeleteAccount(ctx context.Context, userID string) (AccountDeletion, error)
	Get(ctx context.Context, messageID string) (domain.Message, error)
	GetConversation(ctx context.Context, conversationID string) (domain.Conversation, error)
	ListParticipants(ctx context.Context, conversationID string) ([]string, error)
	ListConversations(ctx context.Context, userID string) ([]domain.Conversation, error)
	History(ctx context.Context, messageID, requesterID string) ([]domain.EditRecord, error)
	ListMessages(ctx context.Context, conversationID, requesterID string, filter domain.MessageFilter) ([]domain.Message, error)
	Notifications(ctx context.Context, userID string, unreadOnly bool) ([]domain.Notification, error)
	UpsertProfile(ctx context.Context, profile domain.Profile) error
}

// AccountDeletion summarizes what DeleteAccount removed.
type AccountDeletion struct {
	UserID        string   `json:"user_id"`
	Messages      []string `json:"messages"`
	Conversations []string `json:"conversations"`
}

type MessageService struct {
	log              *slog.Logger
	repository       *repositories.Repository
	publisher        contract.EventPublisher
	moderator        *moderation.Moderator
	validate         *validator.Validate
	locks            *stripedLock
	orphanPolicy     domain.OrphanPolicy
	maxContentLength int
	publishTimeout   time.Duration
	now              func() time.Time
}

func NewMessageService(log *slog.Logger, repository *repositories.Repository, publisher contract.EventPublisher) *MessageService {
	return &MessageService{
		log:              log,
		repository:       repository,
		publisher:        publisher,
		validate:         validator.New(),
		locks:            &stripedLock{},
		orphanPolicy:     domain.OrphanCascade,
		maxContentLength: defaultMaxContentLength,
		publishTimeout:   defaultPublishTimeout,
		now:              time.Now,
	}
}

func (s *MessageService) WithModerator(m *moderation.Moderator) *MessageService {
	s.moderator = m
	return s
}

func (s *MessageService) WithOrphanPolicy(p domain.OrphanPolicy) *MessageService {
	s.orphanPolicy = p
	return s
}

func (s *MessageService) WithMaxContentLength(n int) *MessageService {
	if n > 0 {
		s.maxContentLength = n
	}
	return s
}

// WithPublishTimeout bounds how long a writer waits for room on a full
// event queue once its transaction committed.
func (s *MessageService) WithPublishTimeout(d time.Duration) *MessageService {
	if d > 0 {
		s.publishTimeout = d
	}
	return s
}

func (s *MessageService) WithClock(now func() time.Time) *MessageService {
	s.now = now
	return s
}

func (s *MessageService) CreateConversation(ctx context.Context, cmd domain.CreateConversationCommand) (domain.Conversation, error) {
	if err := s.validate.Struct(cmd); err != nil {
		return domain.Conversation{}, fmt.Errorf("%w: %v", cerrors.ErrInvalidInput, err)
	}
	c := domain.NewConversation(uuid.NewString(), cmd.Participants, s.now().UTC())
	if len(c.Participants) < 2 {
		return domain.Conversation{}, fmt.Errorf("%w: a conversation needs two distinct participants", cerrors.ErrInvalidInput)
	}
	err := s.repository.WithTx(ctx, func(txn *badger.Txn) error {
		return s.repository.InsertConversation(txn, c)
	})
	if err != nil {
		return domain.Conversation{}, storageFailure(err)
	}
	return c, nil
}

// Create stores a new message and announces it to the other participants.
func (s *MessageService) Create(ctx context.Context, cmd domain.CreateMessageCommand) (domain.Message, error) {
	if err := s.validate.Struct(cmd); err != nil {
		return domain.Message{}, fmt.Errorf("%w: %v", cerrors.ErrInvalidInput, err)
	}
	content, err := s.sanitize(cmd.Content)
	if err != nil {
		return domain.Message{}, err
	}

	id := uuid.NewString()
	unlock := s.locks.lock(id)
	defer unlock()

	var m domain.Message
	var evt event.Event
	err = s.repository.WithTx(ctx, func(txn *badger.Txn) error {
		conv, err := s.repository.GetConversation(txn, cmd.ConversationID)
		if err != nil {
			return err
		}
		if !conv.IsParticipant(cmd.SenderID) {
			return fmt.Errorf("%w: %s is not part of conversation %s", cerrors.ErrForbidden, cmd.SenderID, conv.ID)
		}
		if cmd.ParentID != nil {
			parent, err := s.repository.GetMessage(txn, *cmd.ParentID)
			if err != nil {
				return err
			}
			if parent.ConversationID != conv.ID {
				return fmt.Errorf("%w: parent %s belongs to conversation %s", cerrors.ErrInvalidReference, parent.ID, parent.ConversationID)
			}
		}

		now := s.now().UTC()
		m = domain.Message{
			ID:             id,
			ConversationID: conv.ID,
			SenderID:       cmd.SenderID,
			ReceiverID:     conv.ReceiverFor(cmd.SenderID),
			ParentID:       cmd.ParentID,
			Content:        content,
			CreatedAt:      now,
		}
		if err = s.repository.InsertMessage(txn, m); err != nil {
			return err
		}
		evt = event.New(event.MessageCreatedType, event.MessageCreated{
			Message:    m,
			Recipients: conv.Recipients(cmd.SenderID),
		}, now)
		return s.publisher.PublishTx(ctx, txn, evt)
	})
	if err != nil {
		return domain.Message{}, storageFailure(err)
	}

	s.publish(ctx, evt)
	s.log.Debug(fmt.Sprintf("Message %s created in %s", m.ID, m.ConversationID))
	return m, nil
}

// Edit replaces the content of a message. The previous content is snapshot
// and recorded by the transactional subscribers within the same transaction.
// Submitting the current content again changes nothing.
func (s *MessageService) Edit(ctx context.Context, cmd domain.EditMessageCommand) (domain.Message, error) {
	if err := s.validate.Struct(cmd); err != nil {
		return domain.Message{}, fmt.Errorf("%w: %v", cerrors.ErrInvalidInput, err)
	}
	content, err := s.sanitize(cmd.Content)
	if err != nil {
		return domain.Message{}, err
	}

	unlock := s.locks.lock(cmd.MessageID)
	defer unlock()

	var m domain.Message
	var evt *event.Event
	err = s.repository.WithTx(ctx, func(txn *badger.Txn) error {
		evt = nil
		var err error
		if m, err = s.repository.GetMessage(txn, cmd.MessageID); err != nil {
			return err
		}
		conv, err := s.repository.GetConversation(txn, m.ConversationID)
		if err != nil {
			return err
		}
		if !conv.IsParticipant(cmd.EditorID) {
			return fmt.Errorf("%w: %s cannot edit %s", cerrors.ErrForbidden, cmd.EditorID, m.ID)
		}
		if m.Content == content {
			return nil
		}

		now := s.now().UTC()
		previous := m.Content
		m.Content = content
		m.Edited = true
		m.EditedAt = &now
		m.EditedBy = cmd.EditorID
		if err = s.repository.UpdateMessage(txn, m); err != nil {
			return err
		}
		e := event.New(event.MessageEditedType, event.MessageEdited{
			MessageID:      m.ID,
			ConversationID: m.ConversationID,
			Previous:       previous,
			New:            content,
			EditorID:       cmd.EditorID,
			EditedAt:       now,
		}, now)
		evt = &e
		return s.publisher.PublishTx(ctx, txn, e)
	})
	if err != nil {
		return domain.Message{}, storageFailure(err)
	}

	if evt != nil {
		s.publish(ctx, *evt)
	}
	return m, nil
}

// Delete removes a message sent by the requester, with its edit history and
// notifications. Replies follow the orphan policy.
func (s *MessageService) Delete(ctx context.Context, cmd domain.DeleteMessageCommand) error {
	if err := s.validate.Struct(cmd); err != nil {
		return fmt.Errorf("%w: %v", cerrors.ErrInvalidInput, err)
	}

	unlock := s.locks.lock(cmd.MessageID)
	defer unlock()

	var evt event.Event
	err := s.repository.WithTx(ctx, func(txn *badger.Txn) error {
		m, err := s.repository.GetMessage(txn, cmd.MessageID)
		if err != nil {
			return err
		}
		if m.SenderID != cmd.RequesterID {
			return fmt.Errorf("%w: only the sender may delete %s", cerrors.ErrForbidden, m.ID)
		}
		evt, err = s.remove(ctx, txn, m, cmd.RequesterID)
		return err
	})
	if err != nil {
		return storageFailure(err)
	}

	s.publish(ctx, evt)
	return nil
}

// DeleteAccount erases a user: every message they sent or received directly
// (replies follow the orphan policy), the notifications addressed to them,
// their profile and their conversation memberships. Edit records they
// authored on other users' messages stay, they belong to those messages'
// history.
func (s *MessageService) DeleteAccount(ctx context.Context, userID string) (AccountDeletion, error) {
	if err := s.validate.Var(userID, "required,excludes=:"); err != nil {
		return AccountDeletion{}, fmt.Errorf("%w: %v", cerrors.ErrInvalidInput, err)
	}

	for attempt := 1; ; attempt++ {
		res, events, err := s.deleteAccount(ctx, userID)
		if errors.Is(err, errStaleLockSet) {
			if attempt < accountLockAttempts {
				s.log.Debug("messages written during account deletion, retrying", "user", userID, "attempt", attempt)
				continue
			}
			err = fmt.Errorf("%w: account %s kept receiving messages", cerrors.ErrConcurrentConflict, userID)
		}
		if err != nil {
			return AccountDeletion{}, storageFailure(err)
		}
		for _, evt := range events {
			s.publish(ctx, evt)
		}
		s.log.Info("account deleted", "user", userID,
			"messages", len(res.Messages), "conversations", len(res.Conversations))
		return res, nil
	}
}

const accountLockAttempts = 3

var errStaleLockSet = errors.New("message written after the lock set was taken")

// deleteAccount locks the messages of userID found in a first snapshot,
// then deletes them in one transaction. A message the transaction sees but
// the snapshot missed was written in between and is not locked: the attempt
// ends with errStaleLockSet instead of deleting it. One written while the
// transaction runs makes it conflict through the activity key.
func (s *MessageService) deleteAccount(ctx context.Context, userID string) (AccountDeletion, []event.Event, error) {
	var owned []string
	err := s.repository.View(ctx, func(txn *badger.Txn) error {
		var err error
		owned, err = s.accountMessages(txn, userID)
		return err
	})
	if err != nil {
		return AccountDeletion{}, nil, err
	}
	unlock := s.locks.lockAll(owned)
	defer unlock()
	locked := lo.Keyify(owned)

	var res AccountDeletion
	var events []event.Event
	err = s.repository.WithTx(ctx, func(txn *badger.Txn) error {
		res = AccountDeletion{UserID: userID}
		events = events[:0]

		if err := s.repository.ClearActivity(txn, userID); err != nil {
			return err
		}
		ids, err := s.accountMessages(txn, userID)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if _, ok := locked[id]; !ok {
				return errStaleLockSet
			}
		}
		for _, id := range ids {
			m, err := s.repository.GetMessage(txn, id)
			if errors.Is(err, cerrors.ErrNotFound) {
				// Already removed with the subtree of an earlier message
				continue
			}
			if err != nil {
				return err
			}
			evt, err := s.remove(ctx, txn, m, userID)
			if err != nil {
				return err
			}
			events = append(events, evt)
			res.Messages = append(res.Messages, evt.Payload.(event.MessageDeleted).DeletedIDs...)
		}

		if err = s.repository.DeleteNotificationsForRecipient(txn, userID); err != nil {
			return err
		}
		if err = s.repository.DeleteProfile(txn, userID); err != nil {
			return err
		}
		if res.Conversations, err = s.repository.ConversationsOf(txn, userID); err != nil {
			return err
		}
		for _, convID := range res.Conversations {
			if err = s.repository.RemoveParticipant(txn, convID, userID); err != nil {
				return err
			}
		}
		return nil
	})
	return res, events, err
}

// accountMessages lists the messages userID sent or received directly.
func (s *MessageService) accountMessages(txn *badger.Txn, userID string) ([]string, error) {
	sent, err := s.repository.SentBy(txn, userID)
	if err != nil {
		return nil, err
	}
	received, err := s.repository.ReceivedBy(txn, userID)
	if err != nil {
		return nil, err
	}
	return lo.Uniq(append(sent, received...)), nil
}

// remove deletes m and applies the orphan policy to its replies, then
// stages the MessageDeleted event in txn.
func (s *MessageService) remove(ctx context.Context, txn *badger.Txn, m domain.Message, requesterID string) (event.Event, error) {
	deleted := event.MessageDeleted{
		MessageID:      m.ID,
		ConversationID: m.ConversationID,
		RequesterID:    requesterID,
	}

	switch s.orphanPolicy {
	case domain.OrphanDetach:
		childIDs, err := s.repository.ChildIDs(txn, m.ID)
		if err != nil {
			return event.Event{}, err
		}
		for _, id := range childIDs {
			child, err := s.repository.GetMessage(txn, id)
			if err != nil {
				return event.Event{}, err
			}
			if _, err = s.repository.DetachMessage(txn, child); err != nil {
				return event.Event{}, err
			}
			deleted.DetachedIDs = append(deleted.DetachedIDs, id)
		}
		if err = s.repository.DeleteMessage(txn, m); err != nil {
			return event.Event{}, err
		}
		deleted.DeletedIDs = []string{m.ID}
	default:
		subtree, err := s.subtree(txn, m)
		if err != nil {
			return event.Event{}, err
		}
		for _, node := range subtree {
			if err = s.repository.DeleteMessage(txn, node); err != nil {
				return event.Event{}, err
			}
			deleted.DeletedIDs = append(deleted.DeletedIDs, node.ID)
		}
	}

	evt := event.New(event.MessageDeletedType, deleted, s.now().UTC())
	return evt, s.publisher.PublishTx(ctx, txn, evt)
}

// subtree lists m and all its transitive replies, breadth first.
func (s *MessageService) subtree(txn *badger.Txn, m domain.Message) ([]domain.Message, error) {
	res := []domain.Message{m}
	seen := map[string]bool{m.ID: true}
	for i := 0; i < len(res); i++ {
		childIDs, err := s.repository.ChildIDs(txn, res[i].ID)
		if err != nil {
			return nil, err
		}
		for _, id := range childIDs {
			if seen[id] {
				continue
			}
			seen[id] = true
			child, err := s.repository.GetMessage(txn, id)
			if err != nil {
				return nil, err
			}
			res = append(res, child)
		}
	}
	return res, nil
}

func (s *MessageService) Get(ctx context.Context, messageID string) (domain.Message, error) {
	m, err := s.repository.FindMessage(ctx, messageID)
	return m, storageFailure(err)
}

func (s *MessageService) GetConversation(ctx context.Context, conversationID string) (domain.Conversation, error) {
	c, err := s.repository.FindConversation(ctx, conversationID)
	return c, storageFailure(err)
}

func (s *MessageService) ListParticipants(ctx context.Context, conversationID string) ([]string, error) {
	c, err := s.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return c.Participants, nil
}

// ListConversations returns the conversations userID belongs to, oldest first.
func (s *MessageService) ListConversations(ctx context.Context, userID string) ([]domain.Conversation, error) {
	if err := s.validate.Var(userID, "required,excludes=:"); err != nil {
		return nil, fmt.Errorf("%w: %v", cerrors.ErrInvalidInput, err)
	}
	conversations, err := s.repository.FindConversationsOf(ctx, userID)
	return conversations, storageFailure(err)
}

// History returns the edit records of a message, oldest first.
func (s *MessageService) History(ctx context.Context, messageID, requesterID string) ([]domain.EditRecord, error) {
	m, err := s.Get(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if err = s.requireParticipant(ctx, m.ConversationID, requesterID); err != nil {
		return nil, err
	}
	records, err := s.repository.FindEditRecords(ctx, messageID)
	return records, storageFailure(err)
}

func (s *MessageService) ListMessages(ctx context.Context, conversationID, requesterID string, filter domain.MessageFilter) ([]domain.Message, error) {
	if err := s.requireParticipant(ctx, conversationID, requesterID); err != nil {
		return nil, err
	}
	messages, err := s.repository.ListMessages(ctx, conversationID, filter)
	return messages, storageFailure(err)
}

func (s *MessageService) Notifications(ctx context.Context, userID string, unreadOnly bool) ([]domain.Notification, error) {
	notifications, err := s.repository.Notifications(ctx, userID, unreadOnly)
	return notifications, storageFailure(err)
}

func (s *MessageService) UpsertProfile(ctx context.Context, profile domain.Profile) error {
	if err := s.validate.Var(profile.UserID, "required,excludes=:"); err != nil {
		return fmt.Errorf("%w: %v", cerrors.ErrInvalidInput, err)
	}
	return storageFailure(s.repository.UpsertProfile(ctx, profile))
}

func (s *MessageService) requireParticipant(ctx context.Context, conversationID, userID string) error {
	c, err := s.GetConversation(ctx, conversationID)
	if err != nil {
		return err
	}
	if !c.IsParticipant(userID) {
		return fmt.Errorf("%w: %s is not part of conversation %s", cerrors.ErrForbidden, userID, conversationID)
	}
	return nil
}

// sanitize checks the content length and masks forbidden words.
func (s *MessageService) sanitize(content string) (string, error) {
	if err := s.validate.Var(content, fmt.Sprintf("required,max=%d", s.maxContentLength)); err != nil {
		return "", fmt.Errorf("%w: content %v", cerrors.ErrInvalidInput, err)
	}
	censored, _ := s.moderator.Censor(content)
	return censored, nil
}

// publish hands a committed event to the post-commit subscribers.
// The hand-off outlives the caller's cancellation but not publishTimeout.
// On failure the event stays in the outbox for the relay to pick up.
func (s *MessageService) publish(ctx context.Context, evt event.Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.log.Warn("event left in outbox", "event", evt.ID, "type", evt.Type, "error", err)
	}
}

// storageFailure keeps the domain errors and hides every other failure
// behind ErrStorageFailure.
func storageFailure(err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{
		cerrors.ErrNotFound,
		cerrors.ErrForbidden,
		cerrors.ErrInvalidReference,
		cerrors.ErrInvalidInput,
		cerrors.ErrConcurrentConflict,
		context.Canceled,
		context.DeadlineExceeded,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", cerrors.ErrStorageFailure, err)
}
