package service

import (
	"context"
	"fmt"

	"github.com/ferdousbhai/echo/internal/errs"
	"github.com/ferdousbhai/echo/internal/model"
	"github.com/ferdousbhai/echo/internal/notify"
	"github.com/gofrs/uuid/v5"
)

// TopLevelLimit caps ListTopLevel to the most recent messages.
const TopLevelLimit = 50

// SendInput describes a new message. A top-level message names exactly one of
// ChannelID or DMID; a reply names ThreadID and may repeat the parent's conversation.
type SendInput struct {
	Content       string
	EncryptionKey string
	ChannelID     *uuid.UUID
	DMID          *uuid.UUID
	ThreadID      *uuid.UUID
}

// MessageService stores and reads messages and threads. Content and keys are opaque.
type MessageService interface {
	// ListTopLevel returns the newest top-level messages of a conversation, oldest first.
	ListTopLevel(ctx context.Context, caller uuid.UUID, conv model.Conversation) ([]model.MessageView, error)
	// ListThread returns every reply to a message, oldest first.
	ListThread(ctx context.Context, caller, threadID uuid.UUID) ([]model.MessageView, error)
	// Send posts a message as the caller.
	Send(ctx context.Context, caller uuid.UUID, in SendInput) (*model.Message, error)
	// Edit replaces the body of the caller's own message.
	Edit(ctx context.Context, caller, messageID uuid.UUID, content, encryptionKey string) error
	// Delete removes the caller's own message. Replies and reactions stay.
	Delete(ctx context.Context, caller, messageID uuid.UUID) error
}

// MessageServiceImpl implements MessageService.
type MessageServiceImpl struct {
	core
}

// NewMessageService constructs MessageService.
func NewMessageService(r Repos, o Options) *MessageServiceImpl {
	return &MessageServiceImpl{core: newCore(r, o)}
}

func validConversation(conv model.Conversation) bool {
	return (conv.ChannelID != nil) != (conv.DMID != nil)
}

// ListTopLevel takes the newest TopLevelLimit messages and returns them in
// chronological order.
func (s *MessageServiceImpl) ListTopLevel(
	ctx context.Context, caller uuid.UUID, conv model.Conversation,
) ([]model.MessageView, error) {
	if !validConversation(conv) {
		return nil, fmt.Errorf("exactly one of channel or dm: %w", errs.ErrInvalidArgument)
	}
	ok, err := s.access.CanReadConversation(ctx, caller, conv)
	if err != nil || !ok {
		return nil, err
	}
	msgs, err := s.repos.Messages.ListTopLevel(ctx, conv, TopLevelLimit)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return s.decorate(ctx, caller, msgs, true)
}

// ListThread returns the replies when the caller can read the parent's conversation.
func (s *MessageServiceImpl) ListThread(ctx context.Context, caller, threadID uuid.UUID) ([]model.MessageView, error) {
	parent, err := s.repos.Messages.Get(ctx, threadID)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	ok, err := s.access.CanReadMessage(ctx, caller, parent)
	if err != nil || !ok {
		return nil, err
	}
	replies, err := s.repos.Messages.ListThread(ctx, threadID)
	if err != nil {
		return nil, err
	}
	return s.decorate(ctx, caller, replies, false)
}

// decorate attaches authors, reaction tallies and, for top-level messages, reply counts.
func (s *MessageServiceImpl) decorate(
	ctx context.Context, caller uuid.UUID, msgs []model.Message, withThreadCount bool,
) ([]model.MessageView, error) {
	if len(msgs) == 0 {
		return nil, nil
	}
	ids := make([]uuid.UUID, len(msgs))
	authorIDs := make([]uuid.UUID, 0, len(msgs))
	seen := make(map[uuid.UUID]struct{}, len(msgs))
	for i, m := range msgs {
		ids[i] = m.ID
		if _, ok := seen[m.AuthorID]; !ok {
			seen[m.AuthorID] = struct{}{}
			authorIDs = append(authorIDs, m.AuthorID)
		}
	}

	authors, err := s.repos.Users.GetMany(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	reactions, err := s.repos.Reactions.ListByMessages(ctx, ids)
	if err != nil {
		return nil, err
	}
	byMessage := make(map[uuid.UUID][]model.Reaction, len(msgs))
	for _, r := range reactions {
		byMessage[r.MessageID] = append(byMessage[r.MessageID], r)
	}
	var counts map[uuid.UUID]int
	if withThreadCount {
		if counts, err = s.repos.Messages.CountReplies(ctx, ids); err != nil {
			return nil, err
		}
	}

	out := make([]model.MessageView, len(msgs))
	for i, m := range msgs {
		v := model.MessageView{Message: m, Reactions: model.AggregateReactions(byMessage[m.ID], caller)}
		if u, ok := authors[m.AuthorID]; ok {
			a := u.Public()
			v.Author = &a
		}
		if withThreadCount {
			n := counts[m.ID]
			v.ThreadCount = &n
		}
		out[i] = v
	}
	return out, nil
}

// Send validates the target strictly before inserting.
func (s *MessageServiceImpl) Send(ctx context.Context, caller uuid.UUID, in SendInput) (*model.Message, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if in.Content == "" || in.EncryptionKey == "" {
		return nil, fmt.Errorf("content and encryption key are required: %w", errs.ErrInvalidArgument)
	}

	msg := &model.Message{
		ID:            newID(),
		Content:       in.Content,
		EncryptionKey: in.EncryptionKey,
		AuthorID:      caller,
	}
	var conv model.Conversation
	if in.ThreadID != nil {
		parent, err := s.repos.Messages.Get(ctx, *in.ThreadID)
		if err != nil {
			return nil, fmt.Errorf("thread parent: %w", err)
		}
		if parent.IsReply() {
			return nil, fmt.Errorf("threads are one level deep: %w", errs.ErrInvalidState)
		}
		if !sameTarget(in.ChannelID, parent.ChannelID) || !sameTarget(in.DMID, parent.DMID) {
			return nil, fmt.Errorf("reply target differs from its thread: %w", errs.ErrInvalidArgument)
		}
		conv = model.Conversation{ChannelID: parent.ChannelID, DMID: parent.DMID}
		msg.ThreadID = &parent.ID
	} else {
		conv = model.Conversation{ChannelID: in.ChannelID, DMID: in.DMID}
		if !validConversation(conv) {
			return nil, fmt.Errorf("exactly one of channel or dm: %w", errs.ErrInvalidArgument)
		}
		msg.ChannelID, msg.DMID = in.ChannelID, in.DMID
	}

	ok, err := s.access.CanReadConversation(ctx, caller, conv)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no access to conversation: %w", errs.ErrForbidden)
	}
	if err := s.repos.Messages.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("send: %w", err)
	}

	s.publish(ctx, event(conversationTopic(conv), notify.KindMessage, msg.ID))
	return msg, nil
}

// sameTarget reports whether an optional target given with a reply matches the parent.
func sameTarget(given, parent *uuid.UUID) bool {
	return given == nil || (parent != nil && *given == *parent)
}

// ownMessage loads a message and checks that caller wrote it.
func (s *MessageServiceImpl) ownMessage(ctx context.Context, caller, messageID uuid.UUID) (*model.Message, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	m, err := s.repos.Messages.Get(ctx, messageID)
	if err != nil {
		return nil, fmt.Errorf("message: %w", err)
	}
	if m.AuthorID != caller {
		return nil, fmt.Errorf("not the author: %w", errs.ErrForbidden)
	}
	return m, nil
}

// Edit replaces content and key and stamps the edit time.
func (s *MessageServiceImpl) Edit(ctx context.Context, caller, messageID uuid.UUID, content, encryptionKey string) error {
	m, err := s.ownMessage(ctx, caller, messageID)
	if err != nil {
		return err
	}
	if content == "" || encryptionKey == "" {
		return fmt.Errorf("content and encryption key are required: %w", errs.ErrInvalidArgument)
	}
	if err := s.repos.Messages.Edit(ctx, m.ID, content, encryptionKey, s.now()); err != nil {
		return fmt.Errorf("edit: %w", err)
	}
	s.publishMessage(ctx, m)
	return nil
}

// Delete hard-deletes the message.
func (s *MessageServiceImpl) Delete(ctx context.Context, caller, messageID uuid.UUID) error {
	m, err := s.ownMessage(ctx, caller, messageID)
	if err != nil {
		return err
	}
	if err := s.repos.Messages.Delete(ctx, m.ID); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	s.publishMessage(ctx, m)
	return nil
}

func (s *MessageServiceImpl) publishMessage(ctx context.Context, m *model.Message) {
	conv, ok, err := s.access.ConversationOf(ctx, m)
	if err != nil || !ok {
		return
	}
	s.publish(ctx, event(conversationTopic(conv), notify.KindMessage, m.ID))
}
