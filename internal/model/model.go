// Package model defines domain entities used by services and repositories.
package model

import (
	"bytes"
	"time"

	"github.com/gofrs/uuid/v5"
)

// Tokens collects issued access/refresh tokens (refresh optional).
type Tokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time // access token expiry (for diagnostics)
}

// User is an account. Auth material is never returned past the service layer.
type User struct {
	ID        uuid.UUID // PK
	Username  string    // unique
	PwdHash   []byte    // Argon2id(password, SaltAuth)
	SaltAuth  []byte    // per-user auth salt
	CreatedAt time.Time
}

// Public returns a copy stripped of password material.
func (u User) Public() User {
	return User{ID: u.ID, Username: u.Username, CreatedAt: u.CreatedAt}
}

// UserKeys holds a user's public key and password-encrypted private key, both opaque.
type UserKeys struct {
	UserID     uuid.UUID
	PublicKey  string
	PrivateKey string
}

// Role is a workspace role.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Workspace is the tenant boundary for channels and DMs.
type Workspace struct {
	ID          uuid.UUID
	Name        string
	Description *string
	CreatedBy   uuid.UUID
	IsPublic    bool
	CreatedAt   time.Time
}

// WorkspaceMember is the (workspace, user) join row. One per pair.
type WorkspaceMember struct {
	WorkspaceID uuid.UUID
	UserID      uuid.UUID
	Role        Role
	JoinedAt    time.Time
}

// WorkspaceWithRole is a workspace annotated with the caller's role.
type WorkspaceWithRole struct {
	Workspace
	Role Role
}

// Invite is a redeemable workspace invite code.
type Invite struct {
	ID          uuid.UUID
	WorkspaceID uuid.UUID
	Code        string
	CreatedBy   uuid.UUID
	ExpiresAt   *time.Time
	MaxUses     *int
	CurrentUses int
	IsActive    bool
	CreatedAt   time.Time
}

// Redeemable reports whether the invite can still be used at now.
func (i *Invite) Redeemable(now time.Time) bool {
	if !i.IsActive {
		return false
	}
	if i.ExpiresAt != nil && i.ExpiresAt.Before(now) {
		return false
	}
	if i.MaxUses != nil && i.CurrentUses >= *i.MaxUses {
		return false
	}
	return true
}

// InviteInfo is the public, redacted view of an invite and its workspace.
type InviteInfo struct {
	WorkspaceID          uuid.UUID
	WorkspaceName        string
	WorkspaceDescription *string
	InviteID             uuid.UUID
	ExpiresAt            *time.Time
	MaxUses              *int
	CurrentUses          int
}

// GeneralChannelName is provisioned with every workspace and auto-joined on invite redemption.
const GeneralChannelName = "general"

// Channel is a named conversation inside a workspace.
// WorkspaceID is nil for rows created before workspaces existed.
// Members is a denormalized cache; ChannelMember rows are authoritative.
type Channel struct {
	ID          uuid.UUID
	Name        string
	Description *string
	IsPrivate   bool
	CreatedBy   uuid.UUID
	WorkspaceID *uuid.UUID
	Members     []uuid.UUID
	CreatedAt   time.Time
}

// IsLegacy reports whether the channel predates workspaces.
func (c *Channel) IsLegacy() bool { return c.WorkspaceID == nil }

// ChannelMember is the (channel, user) join row. One per pair.
type ChannelMember struct {
	ChannelID uuid.UUID
	UserID    uuid.UUID
	JoinedAt  time.Time
}

// DirectMessage is a two-party conversation. Participants are stored sorted.
type DirectMessage struct {
	ID           uuid.UUID
	Participants [2]uuid.UUID
	CreatedBy    uuid.UUID
	WorkspaceID  uuid.UUID
	CreatedAt    time.Time
}

// SortedPair returns a and b in canonical order.
func SortedPair(a, b uuid.UUID) [2]uuid.UUID {
	if bytes.Compare(a.Bytes(), b.Bytes()) > 0 {
		return [2]uuid.UUID{b, a}
	}
	return [2]uuid.UUID{a, b}
}

// Has reports whether id participates in the DM.
func (d *DirectMessage) Has(id uuid.UUID) bool {
	return d.Participants[0] == id || d.Participants[1] == id
}

// Other returns the participant that is not id.
func (d *DirectMessage) Other(id uuid.UUID) uuid.UUID {
	if d.Participants[0] == id {
		return d.Participants[1]
	}
	return d.Participants[0]
}

// DMView is a DM with resolved participant users.
type DMView struct {
	DirectMessage
	Users            []User
	OtherParticipant *User
}

// Message is a chat message. Content and EncryptionKey are opaque to the server.
// Top-level messages carry exactly one of ChannelID/DMID; replies carry ThreadID only.
type Message struct {
	ID            uuid.UUID
	Content       string
	EncryptionKey string
	AuthorID      uuid.UUID
	ChannelID     *uuid.UUID
	DMID          *uuid.UUID
	ThreadID      *uuid.UUID
	IsEdited      bool
	EditedAt      *time.Time
	CreatedAt     time.Time
}

// IsReply reports whether the message belongs to a thread.
func (m *Message) IsReply() bool { return m.ThreadID != nil }

// Conversation addresses a channel or a DM.
type Conversation struct {
	ChannelID *uuid.UUID
	DMID      *uuid.UUID
}

// ReactionSummary aggregates one emoji on one message.
type ReactionSummary struct {
	Count              int
	Users              []uuid.UUID
	CurrentUserReacted bool
}

// MessageView is a message with author, reply count and reaction tally.
// ThreadCount is nil for thread replies.
type MessageView struct {
	Message
	Author      *User
	ThreadCount *int
	Reactions   map[string]ReactionSummary
}

// Reaction is one user's emoji on one message. One per (message, emoji, user).
type Reaction struct {
	ID        uuid.UUID
	MessageID uuid.UUID
	Emoji     string
	UserID    uuid.UUID
	CreatedAt time.Time
}

// AggregateReactions folds reactions into per-emoji summaries from caller's point of view.
func AggregateReactions(rs []Reaction, caller uuid.UUID) map[string]ReactionSummary {
	out := make(map[string]ReactionSummary)
	for _, r := range rs {
		s := out[r.Emoji]
		s.Count++
		s.Users = append(s.Users, r.UserID)
		if caller != uuid.Nil && r.UserID == caller {
			s.CurrentUserReacted = true
		}
		out[r.Emoji] = s
	}
	return out
}
