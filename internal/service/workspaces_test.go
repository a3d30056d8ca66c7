package service

import (
	"context"
	"testing"
	"time"

	"github.com/ferdousbhai/echo/internal/errs"
	"github.com/ferdousbhai/echo/internal/model"
	"github.com/ferdousbhai/echo/internal/notify"
	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"
)

func intp(v int) *int { return &v }

func TestWorkspace_Create_ProvisionsAdminAndGeneral(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	a := e.user(t, "a")

	ws, err := e.ws.Create(ctx, a, "  Acme ", nil, false)
	require.NoError(t, err)
	require.Equal(t, "Acme", ws.Name)

	list, err := e.ws.List(ctx, a)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, model.RoleAdmin, list[0].Role)

	chans, err := e.ch.List(ctx, a, ws.ID)
	require.NoError(t, err)
	require.Len(t, chans, 1)
	require.Equal(t, model.GeneralChannelName, chans[0].Name)
	require.False(t, chans[0].IsPrivate)
	require.Equal(t, "General discussion", *chans[0].Description)
	require.Equal(t, []uuid.UUID{a}, chans[0].Members)

	require.Contains(t, e.feed.topics(), notify.UserTopic(a))
	require.Contains(t, e.feed.topics(), notify.WorkspaceTopic(ws.ID))
}

func TestWorkspace_Create_Validation(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.ws.Create(ctx, uuid.Nil, "x", nil, true)
	require.ErrorIs(t, err, errs.ErrUnauthenticated)

	_, err = e.ws.Create(ctx, e.user(t, "a"), "   ", nil, true)
	require.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestWorkspace_ListMatchesMembershipRows(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	a, b, c := e.user(t, "a"), e.user(t, "b"), e.user(t, "c")

	w1, err := e.ws.Create(ctx, a, "one", nil, false)
	require.NoError(t, err)
	w2, err := e.ws.Create(ctx, b, "two", nil, true)
	require.NoError(t, err)
	inv, err := e.ws.CreateInvite(ctx, a, w1.ID, nil, nil)
	require.NoError(t, err)
	_, err = e.ws.Join(ctx, b, inv.Code)
	require.NoError(t, err)

	for _, u := range []uuid.UUID{a, b, c} {
		got, err := e.ws.List(ctx, u)
		require.NoError(t, err)
		listed := map[uuid.UUID]bool{}
		for _, w := range got {
			listed[w.ID] = true
		}
		for _, w := range []uuid.UUID{w1.ID, w2.ID} {
			_, merr := (fakeWorkspaces{e.st}).GetMember(ctx, w, u)
			require.Equal(t, merr == nil, listed[w], "user %s workspace %s", u, w)
		}
	}

	none, err := e.ws.List(ctx, uuid.Nil)
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestWorkspace_Get_MemberOnly(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	a, b := e.user(t, "a"), e.user(t, "b")
	ws, err := e.ws.Create(ctx, a, "Acme", nil, false)
	require.NoError(t, err)

	got, err := e.ws.Get(ctx, a, ws.ID)
	require.NoError(t, err)
	require.Equal(t, model.RoleAdmin, got.Role)

	got, err = e.ws.Get(ctx, b, ws.ID)
	require.NoError(t, err)
	require.Nil(t, got)

	got, err = e.ws.Get(ctx, uuid.Nil, ws.ID)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestInvite_Create(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	a, b := e.user(t, "a"), e.user(t, "b")
	ws, err := e.ws.Create(ctx, a, "Acme", nil, false)
	require.NoError(t, err)

	inv, err := e.ws.CreateInvite(ctx, a, ws.ID, intp(3), intp(7))
	require.NoError(t, err)
	require.Len(t, inv.Code, 26)
	require.True(t, inv.IsActive)
	require.Zero(t, inv.CurrentUses)
	require.Equal(t, 3, *inv.MaxUses)
	require.Equal(t, e.now.Add(7*24*time.Hour), *inv.ExpiresAt)

	_, err = e.ws.CreateInvite(ctx, a, ws.ID, intp(0), nil)
	require.ErrorIs(t, err, errs.ErrInvalidArgument)
	_, err = e.ws.CreateInvite(ctx, a, ws.ID, nil, intp(-1))
	require.ErrorIs(t, err, errs.ErrInvalidArgument)

	// plain members cannot issue invites
	_, err = e.ws.Join(ctx, b, inv.Code)
	require.NoError(t, err)
	_, err = e.ws.CreateInvite(ctx, b, ws.ID, nil, nil)
	require.ErrorIs(t, err, errs.ErrForbidden)

	_, err = e.ws.CreateInvite(ctx, uuid.Nil, ws.ID, nil, nil)
	require.ErrorIs(t, err, errs.ErrUnauthenticated)
}

func TestInvite_RedemptionIsBounded(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	a := e.user(t, "a")
	ws, err := e.ws.Create(ctx, a, "Acme", nil, false)
	require.NoError(t, err)
	inv, err := e.ws.CreateInvite(ctx, a, ws.ID, intp(2), nil)
	require.NoError(t, err)

	for _, name := range []string{"b", "c"} {
		joined, err := e.ws.Join(ctx, e.user(t, name), inv.Code)
		require.NoError(t, err)
		require.Equal(t, ws.ID, joined)
	}
	_, err = e.ws.Join(ctx, e.user(t, "d"), inv.Code)
	require.ErrorIs(t, err, errs.ErrInvalidState)

	stored, err := (fakeInvites{e.st}).Get(ctx, inv.ID)
	require.NoError(t, err)
	require.Equal(t, 2, stored.CurrentUses)

	info, err := e.ws.GetInviteInfo(ctx, inv.Code)
	require.NoError(t, err)
	require.Nil(t, info)
}

func TestInvite_Join_Rejections(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	a, b := e.user(t, "a"), e.user(t, "b")
	ws, err := e.ws.Create(ctx, a, "Acme", nil, false)
	require.NoError(t, err)

	_, err = e.ws.Join(ctx, b, "NOSUCHCODE")
	require.ErrorIs(t, err, errs.ErrInvalidState)

	inv, err := e.ws.CreateInvite(ctx, a, ws.ID, nil, intp(1))
	require.NoError(t, err)

	_, err = e.ws.Join(ctx, uuid.Nil, inv.Code)
	require.ErrorIs(t, err, errs.ErrUnauthenticated)

	_, err = e.ws.Join(ctx, a, inv.Code)
	require.ErrorIs(t, err, errs.ErrInvalidState, "existing members cannot redeem")

	e.now = e.now.Add(24*time.Hour + time.Millisecond)
	_, err = e.ws.Join(ctx, b, inv.Code)
	require.ErrorIs(t, err, errs.ErrInvalidState, "expired")

	inv2, err := e.ws.CreateInvite(ctx, a, ws.ID, nil, nil)
	require.NoError(t, err)
	require.NoError(t, e.ws.DeactivateInvite(ctx, a, inv2.ID))
	_, err = e.ws.Join(ctx, b, inv2.Code)
	require.ErrorIs(t, err, errs.ErrInvalidState, "deactivated")

	m, err := e.ws.Get(ctx, b, ws.ID)
	require.NoError(t, err)
	require.Nil(t, m)
}

func TestInvite_Join_AddsMemberAndGeneral(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	a, b := e.user(t, "a"), e.user(t, "b")
	ws, err := e.ws.Create(ctx, a, "Acme", nil, false)
	require.NoError(t, err)
	inv, err := e.ws.CreateInvite(ctx, a, ws.ID, nil, nil)
	require.NoError(t, err)

	_, err = e.ws.Join(ctx, b, inv.Code)
	require.NoError(t, err)

	got, err := e.ws.Get(ctx, b, ws.ID)
	require.NoError(t, err)
	require.Equal(t, model.RoleMember, got.Role)

	general := e.generalOf(t, ws.ID)
	ok, err := (fakeChannels{e.st}).IsMember(ctx, general, b)
	require.NoError(t, err)
	require.True(t, ok)

	require.Contains(t, e.feed.topics(), notify.UserTopic(b))
}

func TestInvite_GetInviteInfo(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	a := e.user(t, "a")
	desc := "the company"
	ws, err := e.ws.Create(ctx, a, "Acme", &desc, false)
	require.NoError(t, err)
	inv, err := e.ws.CreateInvite(ctx, a, ws.ID, intp(5), intp(2))
	require.NoError(t, err)

	info, err := e.ws.GetInviteInfo(ctx, inv.Code)
	require.NoError(t, err)
	require.Equal(t, ws.ID, info.WorkspaceID)
	require.Equal(t, "Acme", info.WorkspaceName)
	require.Equal(t, "the company", *info.WorkspaceDescription)
	require.Equal(t, inv.ID, info.InviteID)
	require.Equal(t, 5, *info.MaxUses)
	require.Zero(t, info.CurrentUses)

	// expiry is inclusive of the instant itself
	e.now = *inv.ExpiresAt
	info, err = e.ws.GetInviteInfo(ctx, inv.Code)
	require.NoError(t, err)
	require.NotNil(t, info)

	e.now = inv.ExpiresAt.Add(time.Millisecond)
	info, err = e.ws.GetInviteInfo(ctx, inv.Code)
	require.NoError(t, err)
	require.Nil(t, info)

	info, err = e.ws.GetInviteInfo(ctx, "unknown")
	require.NoError(t, err)
	require.Nil(t, info)
}

func TestInvite_Deactivate(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	a, b := e.user(t, "a"), e.user(t, "b")
	ws, err := e.ws.Create(ctx, a, "Acme", nil, false)
	require.NoError(t, err)
	inv, err := e.ws.CreateInvite(ctx, a, ws.ID, nil, nil)
	require.NoError(t, err)

	require.ErrorIs(t, e.ws.DeactivateInvite(ctx, b, inv.ID), errs.ErrForbidden)
	require.ErrorIs(t, e.ws.DeactivateInvite(ctx, a, uuid.Must(uuid.NewV4())), errs.ErrNotFound)

	require.NoError(t, e.ws.DeactivateInvite(ctx, a, inv.ID))
	require.NoError(t, e.ws.DeactivateInvite(ctx, a, inv.ID), "second call is a no-op")

	list, err := e.ws.ListInvites(ctx, a, ws.ID)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestInvite_List_AdminOnly_IncludesExpired(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	a, b := e.user(t, "a"), e.user(t, "b")
	ws, err := e.ws.Create(ctx, a, "Acme", nil, false)
	require.NoError(t, err)
	expiring, err := e.ws.CreateInvite(ctx, a, ws.ID, nil, intp(1))
	require.NoError(t, err)
	open, err := e.ws.CreateInvite(ctx, a, ws.ID, nil, nil)
	require.NoError(t, err)
	_, err = e.ws.Join(ctx, b, open.Code)
	require.NoError(t, err)

	e.now = e.now.Add(48 * time.Hour)
	list, err := e.ws.ListInvites(ctx, a, ws.ID)
	require.NoError(t, err)
	ids := []uuid.UUID{}
	for _, inv := range list {
		ids = append(ids, inv.ID)
	}
	require.ElementsMatch(t, []uuid.UUID{expiring.ID, open.ID}, ids)

	list, err = e.ws.ListInvites(ctx, b, ws.ID)
	require.NoError(t, err)
	require.Empty(t, list)
}
