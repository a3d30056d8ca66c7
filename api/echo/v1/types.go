package echov1

// Timestamps are Unix milliseconds. IDs are canonical UUID strings.

type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	CreatedAt int64  `json:"createdAt"`
}

type Workspace struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	CreatedBy   string  `json:"createdBy"`
	IsPublic    bool    `json:"isPublic"`
	CreatedAt   int64   `json:"createdAt"`
	// Role is the caller's role; empty when not annotated.
	Role string `json:"role,omitempty"`
}

type Invite struct {
	ID          string `json:"id"`
	WorkspaceID string `json:"workspaceId"`
	InviteCode  string `json:"inviteCode"`
	CreatedBy   string `json:"createdBy"`
	ExpiresAt   *int64 `json:"expiresAt,omitempty"`
	MaxUses     *int   `json:"maxUses,omitempty"`
	CurrentUses int    `json:"currentUses"`
	IsActive    bool   `json:"isActive"`
	CreatedAt   int64  `json:"createdAt"`
}

// InviteInfo is the public invite preview.
type InviteInfo struct {
	Workspace InviteWorkspace `json:"workspace"`
	Invite    InviteSummary   `json:"invite"`
}

type InviteWorkspace struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

type InviteSummary struct {
	ID          string `json:"id"`
	ExpiresAt   *int64 `json:"expiresAt,omitempty"`
	MaxUses     *int   `json:"maxUses,omitempty"`
	CurrentUses int    `json:"currentUses"`
}

type Channel struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description *string  `json:"description,omitempty"`
	IsPrivate   bool     `json:"isPrivate"`
	CreatedBy   string   `json:"createdBy"`
	WorkspaceID *string  `json:"workspaceId,omitempty"`
	Members     []string `json:"members"`
	CreatedAt   int64    `json:"createdAt"`
}

type DirectMessage struct {
	ID               string   `json:"id"`
	Participants     []string `json:"participants"`
	CreatedBy        string   `json:"createdBy"`
	WorkspaceID      string   `json:"workspaceId"`
	CreatedAt        int64    `json:"createdAt"`
	Users            []User   `json:"users,omitempty"`
	OtherParticipant *User    `json:"otherParticipant,omitempty"`
}

type ReactionSummary struct {
	Count              int      `json:"count"`
	Users              []string `json:"users"`
	CurrentUserReacted bool     `json:"currentUserReacted"`
}

type Message struct {
	ID            string                     `json:"id"`
	Content       string                     `json:"content"`
	EncryptionKey string                     `json:"encryptionKey"`
	AuthorID      string                     `json:"authorId"`
	ChannelID     *string                    `json:"channelId,omitempty"`
	DMID          *string                    `json:"dmId,omitempty"`
	ThreadID      *string                    `json:"threadId,omitempty"`
	IsEdited      bool                       `json:"isEdited"`
	EditedAt      *int64                     `json:"editedAt,omitempty"`
	CreatedAt     int64                      `json:"createdAt"`
	Author        *User                      `json:"author,omitempty"`
	ThreadCount   *int                       `json:"threadCount,omitempty"`
	Reactions     map[string]ReactionSummary `json:"reactions"`
}

// Event tells a watcher that something under Topic changed.
type Event struct {
	Topic string `json:"topic"`
	Kind  string `json:"kind"`
	ID    string `json:"id,omitempty"`
	At    int64  `json:"at"`
}

// Empty is used by calls without arguments or results.
type Empty struct{}

// --- auth ---

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	UserID string `json:"userId"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresAt   int64  `json:"expiresAt"`
	User        User   `json:"user"`
}

// --- users ---

type CurrentUserResponse struct {
	User *User `json:"user,omitempty"`
}

type UsersResponse struct {
	Users []User `json:"users"`
}

type SetupKeysRequest struct {
	PublicKey  string `json:"publicKey"`
	PrivateKey string `json:"privateKey"`
}

type GetPublicKeyRequest struct {
	UserID string `json:"userId"`
}

// KeyResponse carries a key, absent when none is stored.
type KeyResponse struct {
	Key *string `json:"key,omitempty"`
}

// --- workspaces ---

// WorkspaceRef addresses a workspace.
type WorkspaceRef struct {
	WorkspaceID string `json:"workspaceId"`
}

type CreateWorkspaceRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	IsPublic    bool    `json:"isPublic"`
}

type WorkspaceResponse struct {
	Workspace *Workspace `json:"workspace,omitempty"`
}

type WorkspacesResponse struct {
	Workspaces []Workspace `json:"workspaces"`
}

type CreateInviteRequest struct {
	WorkspaceID   string `json:"workspaceId"`
	MaxUses       *int   `json:"maxUses,omitempty"`
	ExpiresInDays *int   `json:"expiresInDays,omitempty"`
}

type InviteResponse struct {
	Invite Invite `json:"invite"`
}

type InviteCodeRequest struct {
	InviteCode string `json:"inviteCode"`
}

type InviteInfoResponse struct {
	Info *InviteInfo `json:"info,omitempty"`
}

type JoinWorkspaceResponse struct {
	WorkspaceID string `json:"workspaceId"`
}

type InviteRef struct {
	InviteID string `json:"inviteId"`
}

type InvitesResponse struct {
	Invites []Invite `json:"invites"`
}

// --- channels ---

type ChannelRef struct {
	ChannelID string `json:"channelId"`
}

type CreateChannelRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	IsPrivate   bool    `json:"isPrivate"`
	WorkspaceID string  `json:"workspaceId"`
}

type ChannelResponse struct {
	Channel *Channel `json:"channel,omitempty"`
}

type ChannelsResponse struct {
	Channels []Channel `json:"channels"`
}

// --- direct messages ---

type GetOrCreateDMRequest struct {
	ParticipantID string `json:"participantId"`
	WorkspaceID   string `json:"workspaceId"`
}

type GetOrCreateDMResponse struct {
	DMID string `json:"dmId"`
}

type DMsResponse struct {
	DMs []DirectMessage `json:"dms"`
}

// --- messages ---

type ListMessagesRequest struct {
	ChannelID *string `json:"channelId,omitempty"`
	DMID      *string `json:"dmId,omitempty"`
}

type ThreadRef struct {
	ThreadID string `json:"threadId"`
}

type MessagesResponse struct {
	Messages []Message `json:"messages"`
}

type SendMessageRequest struct {
	Content       string  `json:"content"`
	EncryptionKey string  `json:"encryptionKey"`
	ChannelID     *string `json:"channelId,omitempty"`
	DMID          *string `json:"dmId,omitempty"`
	ThreadID      *string `json:"threadId,omitempty"`
}

type SendMessageResponse struct {
	MessageID string `json:"messageId"`
}

type EditMessageRequest struct {
	MessageID     string `json:"messageId"`
	Content       string `json:"content"`
	EncryptionKey string `json:"encryptionKey"`
}

type MessageRef struct {
	MessageID string `json:"messageId"`
}

// --- reactions ---

type AddReactionRequest struct {
	MessageID string `json:"messageId"`
	Emoji     string `json:"emoji"`
}

type AddReactionResponse struct {
	Removed bool `json:"removed"`
}

type ReactionRef struct {
	ReactionID string `json:"reactionId"`
}

type ReactionsResponse struct {
	Reactions map[string]ReactionSummary `json:"reactions"`
}

// --- change feed ---

type WatchRequest struct {
	Topics []string `json:"topics"`
}
