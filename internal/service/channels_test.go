package service

import (
	"context"
	"testing"

	"github.com/ferdousbhai/echo/internal/errs"
	"github.com/ferdousbhai/echo/internal/model"
	"github.com/ferdousbhai/echo/internal/notify"
	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"
)

// twoMembers builds a workspace owned by a with b joined through an invite.
func twoMembers(t *testing.T, e *env) (ws *model.Workspace, a, b uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	a, b = e.user(t, "a"), e.user(t, "b")
	ws, err := e.ws.Create(ctx, a, "Acme", nil, false)
	require.NoError(t, err)
	inv, err := e.ws.CreateInvite(ctx, a, ws.ID, nil, nil)
	require.NoError(t, err)
	_, err = e.ws.Join(ctx, b, inv.Code)
	require.NoError(t, err)
	return ws, a, b
}

func TestChannel_Create(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	ws, a, _ := twoMembers(t, e)
	outsider := e.user(t, "o")

	_, err := e.ch.Create(ctx, outsider, "random", nil, false, ws.ID)
	require.ErrorIs(t, err, errs.ErrForbidden)
	_, err = e.ch.Create(ctx, a, " ", nil, false, ws.ID)
	require.ErrorIs(t, err, errs.ErrInvalidArgument)
	_, err = e.ch.Create(ctx, uuid.Nil, "random", nil, false, ws.ID)
	require.ErrorIs(t, err, errs.ErrUnauthenticated)

	e.feed.events = nil
	secret, err := e.ch.Create(ctx, a, "secret", nil, true, ws.ID)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{a}, secret.Members)
	require.Contains(t, e.feed.topics(), notify.WorkspaceTopic(ws.ID))

	ok, err := (fakeChannels{e.st}).IsMember(ctx, secret.ID, a)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestChannel_Join_PublicIsIdempotent(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	ws, a, b := twoMembers(t, e)
	pub, err := e.ch.Create(ctx, a, "random", nil, false, ws.ID)
	require.NoError(t, err)

	require.NoError(t, e.ch.Join(ctx, b, pub.ID))
	e.feed.events = nil
	require.NoError(t, e.ch.Join(ctx, b, pub.ID))
	require.Empty(t, e.feed.events, "second join changes nothing")

	ids, err := (fakeChannels{e.st}).ListMemberIDs(ctx, pub.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []uuid.UUID{a, b}, ids)

	got, err := e.ch.Get(ctx, b, pub.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []uuid.UUID{a, b}, got.Members)
}

func TestChannel_Join_PrivateChannelByWorkspaceMember(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	ws, a, b := twoMembers(t, e)
	priv, err := e.ch.Create(ctx, a, "secret", nil, true, ws.ID)
	require.NoError(t, err)

	_, err = e.msg.Send(ctx, a, SendInput{Content: "c", EncryptionKey: "k", ChannelID: &priv.ID})
	require.NoError(t, err)

	require.NoError(t, e.ch.Join(ctx, b, priv.ID))
	ok, err := (fakeChannels{e.st}).IsMember(ctx, priv.ID, b)
	require.NoError(t, err)
	require.True(t, ok)

	e.feed.events = nil
	require.NoError(t, e.ch.Join(ctx, b, priv.ID), "second join is a no-op")
	require.Empty(t, e.feed.events)
	require.NoError(t, e.ch.Join(ctx, a, priv.ID))

	members, err := e.ch.Members(ctx, b, priv.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)

	msgs, err := e.msg.ListTopLevel(ctx, b, model.Conversation{ChannelID: &priv.ID})
	require.NoError(t, err)
	require.Len(t, msgs, 1)
}

func TestChannel_Join_Rejections(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	ws, a, _ := twoMembers(t, e)
	outsider := e.user(t, "o")

	general := e.generalOf(t, ws.ID)
	require.ErrorIs(t, e.ch.Join(ctx, outsider, general), errs.ErrForbidden)
	require.ErrorIs(t, e.ch.Join(ctx, uuid.Nil, general), errs.ErrUnauthenticated)
	require.ErrorIs(t, e.ch.Join(ctx, a, uuid.Must(uuid.NewV4())), errs.ErrNotFound)
}

// legacyChannel inserts a channel that predates workspaces.
func legacyChannel(t *testing.T, e *env, owner uuid.UUID) uuid.UUID {
	t.Helper()
	ch := &model.Channel{ID: uuid.Must(uuid.NewV4()), Name: "lobby", CreatedBy: owner, Members: []uuid.UUID{owner}}
	require.NoError(t, (fakeChannels{e.st}).CreateWithMember(context.Background(), ch, model.ChannelMember{ChannelID: ch.ID, UserID: owner}))
	return ch.ID
}

func TestChannel_LegacyChannelSkipsWorkspaceCheck(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	owner, anyone := e.user(t, "owner"), e.user(t, "anyone")
	lobby := legacyChannel(t, e, owner)

	require.NoError(t, e.ch.Join(ctx, anyone, lobby))
	got, err := e.ch.Get(ctx, anyone, lobby)
	require.NoError(t, err)
	require.NotNil(t, got)

	_, err = e.msg.Send(ctx, anyone, SendInput{Content: "c", EncryptionKey: "k", ChannelID: &lobby})
	require.NoError(t, err)
}

func TestChannel_List_ScopedToWorkspaceAndMembership(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	ws, a, b := twoMembers(t, e)
	other, err := e.ws.Create(ctx, a, "Other", nil, false)
	require.NoError(t, err)
	random, err := e.ch.Create(ctx, a, "random", nil, false, ws.ID)
	require.NoError(t, err)
	legacyChannel(t, e, a)

	names := func(cs []model.Channel) []string {
		var out []string
		for _, c := range cs {
			out = append(out, c.Name)
		}
		return out
	}

	got, err := e.ch.List(ctx, a, ws.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"general", "random"}, names(got))

	got, err = e.ch.List(ctx, b, ws.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"general"}, names(got), "b has not joined random")

	got, err = e.ch.List(ctx, a, other.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"general"}, names(got))

	got, err = e.ch.List(ctx, b, other.ID)
	require.NoError(t, err)
	require.Empty(t, got)

	require.NoError(t, e.ch.Join(ctx, b, random.ID))
	got, err = e.ch.List(ctx, b, ws.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestChannel_GetAndMembers(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	ws, a, b := twoMembers(t, e)
	priv, err := e.ch.Create(ctx, a, "secret", nil, true, ws.ID)
	require.NoError(t, err)

	outsider := e.user(t, "o")

	got, err := e.ch.Get(ctx, b, priv.ID)
	require.NoError(t, err)
	require.NotNil(t, got, "workspace members see private channels")

	got, err = e.ch.Get(ctx, outsider, priv.ID)
	require.NoError(t, err)
	require.Nil(t, got)

	members, err := e.ch.Members(ctx, outsider, priv.ID)
	require.NoError(t, err)
	require.Empty(t, members)

	members, err = e.ch.Members(ctx, uuid.Nil, e.generalOf(t, ws.ID))
	require.NoError(t, err)
	require.Empty(t, members)

	members, err = e.ch.Members(ctx, b, e.generalOf(t, ws.ID))
	require.NoError(t, err)
	var names []string
	for _, u := range members {
		require.Empty(t, u.PwdHash)
		names = append(names, u.Username)
	}
	require.ElementsMatch(t, []string{"a", "b"}, names)

	got, err = e.ch.Get(ctx, a, uuid.Must(uuid.NewV4()))
	require.NoError(t, err)
	require.Nil(t, got)
}
