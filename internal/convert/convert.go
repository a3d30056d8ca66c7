// Package convert maps domain models to wire messages and parses wire identifiers.
package convert

import (
	"fmt"
	"time"

	echov1 "github.com/ferdousbhai/echo/api/echo/v1"
	"github.com/ferdousbhai/echo/internal/errs"
	"github.com/ferdousbhai/echo/internal/model"
	"github.com/ferdousbhai/echo/internal/notify"
	u "github.com/gofrs/uuid/v5"
)

// --- helpers ---

// Millis converts t to Unix milliseconds; the zero time maps to 0.
func Millis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func millisPtr(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	v := t.UnixMilli()
	return &v
}

func strPtr(id *u.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func strs(ids []u.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// ParseID parses a required identifier. Failures wrap errs.ErrInvalidArgument.
func ParseID(field, s string) (u.UUID, error) {
	id, err := u.FromString(s)
	if err != nil {
		return u.Nil, fmt.Errorf("%s: %w", field, errs.ErrInvalidArgument)
	}
	return id, nil
}

// ParseOptID parses an optional identifier; nil stays nil.
func ParseOptID(field string, s *string) (*u.UUID, error) {
	if s == nil {
		return nil, nil
	}
	id, err := ParseID(field, *s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// --- users ---

// ToUser converts the public part of a user.
func ToUser(m model.User) echov1.User {
	return echov1.User{ID: m.ID.String(), Username: m.Username, CreatedAt: Millis(m.CreatedAt)}
}

func ToUsers(in []model.User) []echov1.User {
	out := make([]echov1.User, 0, len(in))
	for _, m := range in {
		out = append(out, ToUser(m))
	}
	return out
}

// --- workspaces & invites ---

func ToWorkspace(m model.Workspace, role model.Role) echov1.Workspace {
	return echov1.Workspace{
		ID:          m.ID.String(),
		Name:        m.Name,
		Description: m.Description,
		CreatedBy:   m.CreatedBy.String(),
		IsPublic:    m.IsPublic,
		CreatedAt:   Millis(m.CreatedAt),
		Role:        string(role),
	}
}

func ToWorkspaces(in []model.WorkspaceWithRole) []echov1.Workspace {
	out := make([]echov1.Workspace, 0, len(in))
	for _, w := range in {
		out = append(out, ToWorkspace(w.Workspace, w.Role))
	}
	return out
}

func ToInvite(m model.Invite) echov1.Invite {
	return echov1.Invite{
		ID:          m.ID.String(),
		WorkspaceID: m.WorkspaceID.String(),
		InviteCode:  m.Code,
		CreatedBy:   m.CreatedBy.String(),
		ExpiresAt:   millisPtr(m.ExpiresAt),
		MaxUses:     m.MaxUses,
		CurrentUses: m.CurrentUses,
		IsActive:    m.IsActive,
		CreatedAt:   Millis(m.CreatedAt),
	}
}

func ToInvites(in []model.Invite) []echov1.Invite {
	out := make([]echov1.Invite, 0, len(in))
	for _, m := range in {
		out = append(out, ToInvite(m))
	}
	return out
}

// ToInviteInfo converts the public invite preview; nil stays nil.
func ToInviteInfo(m *model.InviteInfo) *echov1.InviteInfo {
	if m == nil {
		return nil
	}
	return &echov1.InviteInfo{
		Workspace: echov1.InviteWorkspace{
			ID:          m.WorkspaceID.String(),
			Name:        m.WorkspaceName,
			Description: m.WorkspaceDescription,
		},
		Invite: echov1.InviteSummary{
			ID:          m.InviteID.String(),
			ExpiresAt:   millisPtr(m.ExpiresAt),
			MaxUses:     m.MaxUses,
			CurrentUses: m.CurrentUses,
		},
	}
}

// --- channels & DMs ---

func ToChannel(m model.Channel) echov1.Channel {
	return echov1.Channel{
		ID:          m.ID.String(),
		Name:        m.Name,
		Description: m.Description,
		IsPrivate:   m.IsPrivate,
		CreatedBy:   m.CreatedBy.String(),
		WorkspaceID: strPtr(m.WorkspaceID),
		Members:     strs(m.Members),
		CreatedAt:   Millis(m.CreatedAt),
	}
}

func ToChannels(in []model.Channel) []echov1.Channel {
	out := make([]echov1.Channel, 0, len(in))
	for _, m := range in {
		out = append(out, ToChannel(m))
	}
	return out
}

func ToDM(m model.DMView) echov1.DirectMessage {
	dm := echov1.DirectMessage{
		ID:           m.ID.String(),
		Participants: strs(m.Participants[:]),
		CreatedBy:    m.CreatedBy.String(),
		WorkspaceID:  m.WorkspaceID.String(),
		CreatedAt:    Millis(m.CreatedAt),
		Users:        ToUsers(m.Users),
	}
	if m.OtherParticipant != nil {
		other := ToUser(*m.OtherParticipant)
		dm.OtherParticipant = &other
	}
	return dm
}

func ToDMs(in []model.DMView) []echov1.DirectMessage {
	out := make([]echov1.DirectMessage, 0, len(in))
	for _, m := range in {
		out = append(out, ToDM(m))
	}
	return out
}

// --- messages & reactions ---

// ToReactions always returns a non-nil map so an empty tally encodes as {}.
func ToReactions(in map[string]model.ReactionSummary) map[string]echov1.ReactionSummary {
	out := make(map[string]echov1.ReactionSummary, len(in))
	for emoji, s := range in {
		out[emoji] = echov1.ReactionSummary{Count: s.Count, Users: strs(s.Users), CurrentUserReacted: s.CurrentUserReacted}
	}
	return out
}

func ToMessage(m model.MessageView) echov1.Message {
	msg := echov1.Message{
		ID:            m.ID.String(),
		Content:       m.Content,
		EncryptionKey: m.EncryptionKey,
		AuthorID:      m.AuthorID.String(),
		ChannelID:     strPtr(m.ChannelID),
		DMID:          strPtr(m.DMID),
		ThreadID:      strPtr(m.ThreadID),
		IsEdited:      m.IsEdited,
		EditedAt:      millisPtr(m.EditedAt),
		CreatedAt:     Millis(m.CreatedAt),
		ThreadCount:   m.ThreadCount,
		Reactions:     ToReactions(m.Reactions),
	}
	if m.Author != nil {
		a := ToUser(*m.Author)
		msg.Author = &a
	}
	return msg
}

func ToMessages(in []model.MessageView) []echov1.Message {
	out := make([]echov1.Message, 0, len(in))
	for _, m := range in {
		out = append(out, ToMessage(m))
	}
	return out
}

// ToConversation parses a channel-or-DM reference.
func ToConversation(channelID, dmID *string) (model.Conversation, error) {
	ch, err := ParseOptID("channelId", channelID)
	if err != nil {
		return model.Conversation{}, err
	}
	dm, err := ParseOptID("dmId", dmID)
	if err != nil {
		return model.Conversation{}, err
	}
	return model.Conversation{ChannelID: ch, DMID: dm}, nil
}

// --- change feed ---

func ToEvent(e notify.Event) *echov1.Event {
	return &echov1.Event{Topic: e.Topic, Kind: e.Kind, ID: e.ID, At: Millis(e.At)}
}
