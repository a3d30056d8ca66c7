package service

import (
	"context"
	"slices"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/ferdousbhai/echo/internal/errs"
	"github.com/ferdousbhai/echo/internal/model"
	"github.com/ferdousbhai/echo/internal/notify"
	"github.com/ferdousbhai/echo/internal/repository"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap/zaptest"
)

// store is an in-memory stand-in for every repository. Each repository view
// embeds it so method names do not collide.
type store struct {
	mu    sync.Mutex
	seq   int64
	epoch time.Time

	users     map[uuid.UUID]*model.User
	keys      map[uuid.UUID]model.UserKeys
	wss       map[uuid.UUID]*model.Workspace
	wsMembers []model.WorkspaceMember
	invites   map[uuid.UUID]*model.Invite
	channels  map[uuid.UUID]*model.Channel
	chMembers []model.ChannelMember
	dms       map[uuid.UUID]*model.DirectMessage
	messages  map[uuid.UUID]*model.Message
	msgSeq    map[uuid.UUID]int64
	reactions map[uuid.UUID]*model.Reaction

	// beforeDMCreate runs before a DM insert; a non-nil error aborts it.
	beforeDMCreate func(dm *model.DirectMessage) error
	// getMemberErr fails workspace membership lookups.
	getMemberErr error
}

func newStore() *store {
	return &store{
		epoch:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		users:     map[uuid.UUID]*model.User{},
		keys:      map[uuid.UUID]model.UserKeys{},
		wss:       map[uuid.UUID]*model.Workspace{},
		invites:   map[uuid.UUID]*model.Invite{},
		channels:  map[uuid.UUID]*model.Channel{},
		dms:       map[uuid.UUID]*model.DirectMessage{},
		messages:  map[uuid.UUID]*model.Message{},
		msgSeq:    map[uuid.UUID]int64{},
		reactions: map[uuid.UUID]*model.Reaction{},
	}
}

// tick returns a strictly increasing creation timestamp. Callers hold mu.
func (s *store) tick() time.Time {
	s.seq++
	return s.epoch.Add(time.Duration(s.seq) * time.Millisecond)
}

func (s *store) repos() Repos {
	return Repos{
		Users:      fakeUsers{s},
		Workspaces: fakeWorkspaces{s},
		Invites:    fakeInvites{s},
		Channels:   fakeChannels{s},
		DMs:        fakeDMs{s},
		Messages:   fakeMessages{s},
		Reactions:  fakeReactions{s},
	}
}

type (
	fakeUsers      struct{ *store }
	fakeWorkspaces struct{ *store }
	fakeInvites    struct{ *store }
	fakeChannels   struct{ *store }
	fakeDMs        struct{ *store }
	fakeMessages   struct{ *store }
	fakeReactions  struct{ *store }
)

var (
	_ repository.UserRepository      = fakeUsers{}
	_ repository.WorkspaceRepository = fakeWorkspaces{}
	_ repository.InviteRepository    = fakeInvites{}
	_ repository.ChannelRepository   = fakeChannels{}
	_ repository.DMRepository        = fakeDMs{}
	_ repository.MessageRepository   = fakeMessages{}
	_ repository.ReactionRepository  = fakeReactions{}
)

// --- users ---

func (f fakeUsers) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, x := range f.users {
		if x.Username == u.Username {
			return errs.ErrAlreadyExists
		}
	}
	u.CreatedAt = f.tick()
	c := *u
	f.users[u.ID] = &c
	return nil
}

func (f fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (f fakeUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			c := *u
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f fakeUsers) GetMany(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[uuid.UUID]model.User, len(ids))
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out[id] = *u
		}
	}
	return out, nil
}

func (f fakeUsers) UpsertKeys(_ context.Context, k model.UserKeys) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys[k.UserID] = k
	return nil
}

func (f fakeUsers) GetKeys(_ context.Context, userID uuid.UUID) (*model.UserKeys, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k, ok := f.keys[userID]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &k, nil
}

// --- workspaces ---

func (f fakeWorkspaces) CreateWithOwner(_ context.Context, ws *model.Workspace, owner model.WorkspaceMember, general *model.Channel) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ws.CreatedAt = f.tick()
	c := *ws
	f.wss[ws.ID] = &c
	owner.JoinedAt = ws.CreatedAt
	f.wsMembers = append(f.wsMembers, owner)
	if general != nil {
		general.CreatedAt = ws.CreatedAt
		g := *general
		f.channels[general.ID] = &g
		f.chMembers = append(f.chMembers, model.ChannelMember{ChannelID: general.ID, UserID: owner.UserID, JoinedAt: ws.CreatedAt})
	}
	return nil
}

func (f fakeWorkspaces) Get(_ context.Context, id uuid.UUID) (*model.Workspace, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ws, ok := f.wss[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *ws
	return &c, nil
}

func (f fakeWorkspaces) ListForUser(_ context.Context, userID uuid.UUID) ([]model.WorkspaceWithRole, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.WorkspaceWithRole
	for _, m := range f.wsMembers {
		if m.UserID != userID {
			continue
		}
		if ws, ok := f.wss[m.WorkspaceID]; ok {
			out = append(out, model.WorkspaceWithRole{Workspace: *ws, Role: m.Role})
		}
	}
	return out, nil
}

func (f fakeWorkspaces) GetMember(_ context.Context, workspaceID, userID uuid.UUID) (*model.WorkspaceMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getMemberErr != nil {
		return nil, f.getMemberErr
	}
	return f.memberLocked(workspaceID, userID)
}

func (s *store) memberLocked(workspaceID, userID uuid.UUID) (*model.WorkspaceMember, error) {
	for _, m := range s.wsMembers {
		if m.WorkspaceID == workspaceID && m.UserID == userID {
			c := m
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f fakeWorkspaces) ListMembers(_ context.Context, workspaceID uuid.UUID) ([]model.WorkspaceMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.WorkspaceMember
	for _, m := range f.wsMembers {
		if m.WorkspaceID == workspaceID {
			out = append(out, m)
		}
	}
	return out, nil
}

// --- invites ---

func (f fakeInvites) Create(_ context.Context, inv *model.Invite) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, x := range f.invites {
		if x.Code == inv.Code {
			return errs.ErrAlreadyExists
		}
	}
	inv.CreatedAt = f.tick()
	c := *inv
	f.invites[inv.ID] = &c
	return nil
}

func (f fakeInvites) Get(_ context.Context, id uuid.UUID) (*model.Invite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invites[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *inv
	return &c, nil
}

func (f fakeInvites) GetByCode(_ context.Context, code string) (*model.Invite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, inv := range f.invites {
		if inv.Code == code {
			c := *inv
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f fakeInvites) ListActive(_ context.Context, workspaceID uuid.UUID) ([]model.Invite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Invite
	for _, inv := range f.invites {
		if inv.WorkspaceID == workspaceID && inv.IsActive {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (f fakeInvites) Deactivate(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invites[id]
	if !ok {
		return errs.ErrNotFound
	}
	inv.IsActive = false
	return nil
}

// Redeem mirrors the guarded UPDATE: nothing changes unless every step succeeds.
func (f fakeInvites) Redeem(_ context.Context, inviteID uuid.UUID, member model.WorkspaceMember, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invites[inviteID]
	if !ok || !inv.Redeemable(now) {
		return errs.ErrInvalidState
	}
	if _, err := f.memberLocked(member.WorkspaceID, member.UserID); err == nil {
		return errs.ErrAlreadyExists
	}
	inv.CurrentUses++
	member.JoinedAt = f.tick()
	f.wsMembers = append(f.wsMembers, member)
	for _, ch := range f.channels {
		if ch.WorkspaceID != nil && *ch.WorkspaceID == member.WorkspaceID && ch.Name == model.GeneralChannelName {
			f.addChannelMemberLocked(ch, member.UserID)
			break
		}
	}
	return nil
}

// --- channels ---

func (s *store) addChannelMemberLocked(ch *model.Channel, userID uuid.UUID) bool {
	for _, m := range s.chMembers {
		if m.ChannelID == ch.ID && m.UserID == userID {
			return false
		}
	}
	s.chMembers = append(s.chMembers, model.ChannelMember{ChannelID: ch.ID, UserID: userID, JoinedAt: s.tick()})
	if !slices.Contains(ch.Members, userID) {
		ch.Members = append(ch.Members, userID)
	}
	return true
}

func (f fakeChannels) CreateWithMember(_ context.Context, ch *model.Channel, member model.ChannelMember) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch.CreatedAt = f.tick()
	c := *ch
	c.Members = slices.Clone(ch.Members)
	f.channels[ch.ID] = &c
	member.JoinedAt = ch.CreatedAt
	f.chMembers = append(f.chMembers, member)
	return nil
}

func (f fakeChannels) Get(_ context.Context, id uuid.UUID) (*model.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.channels[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *ch
	c.Members = slices.Clone(ch.Members)
	return &c, nil
}

func (f fakeChannels) ListForUser(_ context.Context, userID, workspaceID uuid.UUID) ([]model.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Channel
	for _, m := range f.chMembers {
		if m.UserID != userID {
			continue
		}
		ch, ok := f.channels[m.ChannelID]
		if ok && ch.WorkspaceID != nil && *ch.WorkspaceID == workspaceID {
			out = append(out, *ch)
		}
	}
	return out, nil
}

func (f fakeChannels) AddMember(_ context.Context, m model.ChannelMember) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.channels[m.ChannelID]
	if !ok {
		return false, errs.ErrNotFound
	}
	return f.addChannelMemberLocked(ch, m.UserID), nil
}

func (f fakeChannels) IsMember(_ context.Context, channelID, userID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.chMembers {
		if m.ChannelID == channelID && m.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeChannels) ListMemberIDs(_ context.Context, channelID uuid.UUID) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []uuid.UUID
	for _, m := range f.chMembers {
		if m.ChannelID == channelID {
			out = append(out, m.UserID)
		}
	}
	return out, nil
}

// --- dms ---

func (f fakeDMs) Create(_ context.Context, dm *model.DirectMessage) error {
	if f.beforeDMCreate != nil {
		if err := f.beforeDMCreate(dm); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, x := range f.dms {
		if x.WorkspaceID == dm.WorkspaceID && x.Participants == dm.Participants {
			return errs.ErrAlreadyExists
		}
	}
	dm.CreatedAt = f.tick()
	c := *dm
	f.dms[dm.ID] = &c
	return nil
}

func (f fakeDMs) Get(_ context.Context, id uuid.UUID) (*model.DirectMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	dm, ok := f.dms[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *dm
	return &c, nil
}

func (f fakeDMs) ListForWorkspace(_ context.Context, workspaceID uuid.UUID) ([]model.DirectMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.DirectMessage
	for _, dm := range f.dms {
		if dm.WorkspaceID == workspaceID {
			out = append(out, *dm)
		}
	}
	return out, nil
}

// --- messages ---

func (f fakeMessages) Create(_ context.Context, m *model.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m.CreatedAt = f.tick()
	c := *m
	f.messages[m.ID] = &c
	f.msgSeq[m.ID] = f.seq
	return nil
}

func (f fakeMessages) Get(_ context.Context, id uuid.UUID) (*model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.messages[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *m
	return &c, nil
}

func sameID(a, b *uuid.UUID) bool {
	return a != nil && b != nil && *a == *b
}

// sortedLocked orders messages by (createdAt, seq), newest first when desc.
func (s *store) sortedLocked(ms []model.Message, desc bool) {
	sort.Slice(ms, func(i, j int) bool {
		a, b := ms[i], ms[j]
		less := a.CreatedAt.Before(b.CreatedAt) ||
			(a.CreatedAt.Equal(b.CreatedAt) && s.msgSeq[a.ID] < s.msgSeq[b.ID])
		if desc {
			return !less
		}
		return less
	})
}

func (f fakeMessages) ListTopLevel(_ context.Context, conv model.Conversation, limit int) ([]model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Message
	for _, m := range f.messages {
		if m.ThreadID != nil {
			continue
		}
		if sameID(conv.ChannelID, m.ChannelID) || sameID(conv.DMID, m.DMID) {
			out = append(out, *m)
		}
	}
	f.sortedLocked(out, true)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f fakeMessages) ListThread(_ context.Context, parentID uuid.UUID) ([]model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Message
	for _, m := range f.messages {
		if m.ThreadID != nil && *m.ThreadID == parentID {
			out = append(out, *m)
		}
	}
	f.sortedLocked(out, false)
	return out, nil
}

func (f fakeMessages) CountReplies(_ context.Context, parentIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[uuid.UUID]int{}
	for _, m := range f.messages {
		if m.ThreadID != nil && slices.Contains(parentIDs, *m.ThreadID) {
			out[*m.ThreadID]++
		}
	}
	return out, nil
}

func (f fakeMessages) Edit(_ context.Context, id uuid.UUID, content, encryptionKey string, editedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.messages[id]
	if !ok {
		return errs.ErrNotFound
	}
	m.Content, m.EncryptionKey = content, encryptionKey
	m.IsEdited = true
	m.EditedAt = &editedAt
	return nil
}

func (f fakeMessages) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.messages[id]; !ok {
		return errs.ErrNotFound
	}
	delete(f.messages, id)
	return nil
}

// --- reactions ---

func (f fakeReactions) Create(_ context.Context, r *model.Reaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, x := range f.reactions {
		if x.MessageID == r.MessageID && x.Emoji == r.Emoji && x.UserID == r.UserID {
			return errs.ErrAlreadyExists
		}
	}
	r.CreatedAt = f.tick()
	c := *r
	f.reactions[r.ID] = &c
	return nil
}

func (f fakeReactions) Get(_ context.Context, id uuid.UUID) (*model.Reaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reactions[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *r
	return &c, nil
}

func (f fakeReactions) Find(_ context.Context, messageID uuid.UUID, emoji string, userID uuid.UUID) (*model.Reaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reactions {
		if r.MessageID == messageID && r.Emoji == emoji && r.UserID == userID {
			c := *r
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f fakeReactions) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.reactions[id]; !ok {
		return errs.ErrNotFound
	}
	delete(f.reactions, id)
	return nil
}

func (f fakeReactions) ListByMessages(_ context.Context, messageIDs []uuid.UUID) ([]model.Reaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Reaction
	for _, r := range f.reactions {
		if slices.Contains(messageIDs, r.MessageID) {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// --- feed ---

// recordFeed keeps every published event.
type recordFeed struct {
	mu     sync.Mutex
	events []notify.Event
	err    error
}

func (r *recordFeed) Publish(_ context.Context, events ...notify.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
	return r.err
}

func (r *recordFeed) topics() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Topic)
	}
	return out
}

// --- environment ---

// env wires every chat service over one store, a fixed clock and a recording feed.
type env struct {
	st   *store
	feed *recordFeed
	now  time.Time

	ws    *WorkspaceServiceImpl
	ch    *ChannelServiceImpl
	dm    *DMServiceImpl
	msg   *MessageServiceImpl
	react *ReactionServiceImpl
	users *UserServiceImpl
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{st: newStore(), feed: &recordFeed{}, now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	r := e.st.repos()
	o := Options{Log: zaptest.NewLogger(t), Feed: e.feed, Now: func() time.Time { return e.now }}
	e.ws = NewWorkspaceService(r, o)
	e.ch = NewChannelService(r, o)
	e.dm = NewDMService(r, o)
	e.msg = NewMessageService(r, o)
	e.react = NewReactionService(r, o)
	e.users = NewUserService(r, o)
	return e
}

// user inserts an account directly and returns its id.
func (e *env) user(t *testing.T, name string) uuid.UUID {
	t.Helper()
	u := &model.User{ID: uuid.Must(uuid.NewV4()), Username: name}
	if err := (fakeUsers{e.st}).Create(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u.ID
}

// generalOf returns the id of a workspace's general channel.
func (e *env) generalOf(t *testing.T, workspaceID uuid.UUID) uuid.UUID {
	t.Helper()
	e.st.mu.Lock()
	defer e.st.mu.Unlock()
	for _, ch := range e.st.channels {
		if ch.WorkspaceID != nil && *ch.WorkspaceID == workspaceID && ch.Name == model.GeneralChannelName {
			return ch.ID
		}
	}
	t.Fatalf("no general channel in %s", workspaceID)
	return uuid.Nil
}
