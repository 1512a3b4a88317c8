// Package api exposes the messaging core as transport-agnostic endpoint
// functions. A router decodes the request, calls the endpoint with the
// caller token and maps the returned error with StatusCode.
package api

import (
	"chat-core/contract"
	"chat-core/domain"
	cerrors "chat-core/errors"
	"chat-core/projection"
	"chat-core/services"
	"context"
	"fmt"
	"log/slog"
	"time"
)

type ThreadAssembler interface {
	Assemble(ctx context.Context, rootID string) (*projection.Node, error)
}

type CreateMessageRequest struct {
	ConversationID string  `json:"conversation_id"`
	Content        string  `json:"content"`
	ParentID       *string `json:"parent_id,omitempty"`
}

type Endpoints struct {
	log      *slog.Logger
	identity contract.IdentityResolver
	limiter  contract.RateLimiter
	messages services.IMessageService
	threads  ThreadAssembler
	access   AccessWindow
	now      func() time.Time
}

func NewEndpoints(log *slog.Logger, identity contract.IdentityResolver, limiter contract.RateLimiter,
	messages services.IMessageService, threads ThreadAssembler) *Endpoints {
	return &Endpoints{
		log:      log,
		identity: identity,
		limiter:  limiter,
		messages: messages,
		threads:  threads,
		now:      time.Now,
	}
}

func (e *Endpoints) WithAccessWindow(w AccessWindow) *Endpoints {
	e.access = w
	return e
}

func (e *Endpoints) WithClock(now func() time.Time) *Endpoints {
	e.now = now
	return e
}

func (e *Endpoints) CreateMessage(ctx context.Context, token string, in CreateMessageRequest) (m domain.Message, err error) {
	defer e.logRequest("create-message", time.Now(), &err)
	caller, err := e.writeGate(token)
	if err != nil {
		return domain.Message{}, err
	}
	return e.messages.Create(ctx, domain.CreateMessageCommand{
		ConversationID: in.ConversationID,
		SenderID:       caller.UserID,
		Content:        in.Content,
		ParentID:       in.ParentID,
	})
}

func (e *Endpoints) EditMessage(ctx context.Context, token, messageID, content string) (m domain.Message, err error) {
	defer e.logRequest("edit-message", time.Now(), &err)
	caller, err := e.writeGate(token)
	if err != nil {
		return domain.Message{}, err
	}
	return e.messages.Edit(ctx, domain.EditMessageCommand{MessageID: messageID, EditorID: caller.UserID, Content: content})
}

func (e *Endpoints) DeleteMessage(ctx context.Context, token, messageID string) (err error) {
	defer e.logRequest("delete-message", time.Now(), &err)
	caller, err := e.writeGate(token)
	if err != nil {
		return err
	}
	return e.messages.Delete(ctx, domain.DeleteMessageCommand{MessageID: messageID, RequesterID: caller.UserID})
}

// GetThread returns the reply tree rooted at rootID to a participant of its
// conversation.
func (e *Endpoints) GetThread(ctx context.Context, token, rootID string) (view projection.NodeView, err error) {
	defer e.logRequest("get-thread", time.Now(), &err)
	caller, err := e.readGate(token)
	if err != nil {
		return projection.NodeView{}, err
	}
	root, err := e.messages.Get(ctx, rootID)
	if err != nil {
		return projection.NodeView{}, err
	}
	if err = e.requireParticipant(ctx, root.ConversationID, caller.UserID); err != nil {
		return projection.NodeView{}, err
	}
	tree, err := e.threads.Assemble(ctx, rootID)
	if err != nil {
		return projection.NodeView{}, err
	}
	return tree.View(), nil
}

func (e *Endpoints) History(ctx context.Context, token, messageID string) (records []domain.EditRecord, err error) {
	defer e.logRequest("history", time.Now(), &err)
	caller, err := e.readGate(token)
	if err != nil {
		return nil, err
	}
	return e.messages.History(ctx, messageID, caller.UserID)
}

func (e *Endpoints) ListConversations(ctx context.Context, token string) (conversations []domain.Conversation, err error) {
	defer e.logRequest("list-conversations", time.Now(), &err)
	caller, err := e.readGate(token)
	if err != nil {
		return nil, err
	}
	return e.messages.ListConversations(ctx, caller.UserID)
}

func (e *Endpoints) ListMessages(ctx context.Context, token, conversationID string, filter domain.MessageFilter) (messages []domain.Message, err error) {
	defer e.logRequest("list-messages", time.Now(), &err)
	caller, err := e.readGate(token)
	if err != nil {
		return nil, err
	}
	return e.messages.ListMessages(ctx, conversationID, caller.UserID, filter)
}

func (e *Endpoints) Notifications(ctx context.Context, token string, unreadOnly bool) (notifications []domain.Notification, err error) {
	defer e.logRequest("notifications", time.Now(), &err)
	caller, err := e.readGate(token)
	if err != nil {
		return nil, err
	}
	return e.messages.Notifications(ctx, caller.UserID, unreadOnly)
}

// DeleteAccount is reserved to administrators.
func (e *Endpoints) DeleteAccount(ctx context.Context, token, userID string) (res services.AccountDeletion, err error) {
	defer e.logRequest("delete-account", time.Now(), &err)
	caller, err := e.readGate(token)
	if err != nil {
		return services.AccountDeletion{}, err
	}
	if !caller.HasRole(domain.RoleAdmin) {
		return services.AccountDeletion{}, fmt.Errorf("%w: delete-account needs the %s role", cerrors.ErrForbidden, domain.RoleAdmin)
	}
	return e.messages.DeleteAccount(ctx, userID)
}

// writeGate runs identity, access window then rate limiting, in that order.
func (e *Endpoints) writeGate(token string) (domain.Principal, error) {
	caller, err := e.readGate(token)
	if err != nil {
		return domain.Principal{}, err
	}
	if !e.limiter.TryAdmit(caller.UserID, e.now()) {
		return domain.Principal{}, fmt.Errorf("%w: %s", cerrors.ErrRateLimited, caller.UserID)
	}
	return caller, nil
}

func (e *Endpoints) readGate(token string) (domain.Principal, error) {
	caller, err := e.identity.Resolve(token)
	if err != nil {
		return domain.Principal{}, err
	}
	if !e.access.Allows(e.now()) {
		return domain.Principal{}, fmt.Errorf("%w: outside access hours", cerrors.ErrForbidden)
	}
	return caller, nil
}

func (e *Endpoints) requireParticipant(ctx context.Context, conversationID, userID string) error {
	c, err := e.messages.GetConversation(ctx, conversationID)
	if err != nil {
		return err
	}
	if !c.IsParticipant(userID) {
		return fmt.Errorf("%w: %s is not part of conversation %s", cerrors.ErrForbidden, userID, conversationID)
	}
	return nil
}

func (e *Endpoints) logRequest(op string, start time.Time, err *error) {
	p := StatusCode(*err)
	e.log.Info("request", "op", op, "status", p.Status, "code", p.Code, "duration", time.Since(start))
}
