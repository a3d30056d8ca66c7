package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	echov1 "github.com/ferdousbhai/echo/api/echo/v1"
)

const (
	testChannel = "0190f5a4-6c1e-7000-8000-000000000001"
	testUser    = "0190f5a4-6c1e-7000-8000-0000000000aa"
)

// fakeEcho serves just enough of the API for the CLI commands under test.
type fakeEcho struct {
	echov1.EchoServer

	mu   sync.Mutex
	sent []*echov1.SendMessageRequest
	keys *echov1.SetupKeysRequest
}

func authorized(ctx context.Context) bool {
	md, _ := metadata.FromIncomingContext(ctx)
	return len(md.Get("authorization")) == 1 && md.Get("authorization")[0] == "Bearer tok"
}

func (f *fakeEcho) Login(_ context.Context, req *echov1.LoginRequest) (*echov1.LoginResponse, error) {
	if req.Password != "pw" {
		return nil, status.Error(codes.Unauthenticated, "bad credentials")
	}
	return &echov1.LoginResponse{
		AccessToken: "tok",
		ExpiresAt:   time.Now().Add(time.Hour).UnixMilli(),
		User:        echov1.User{ID: testUser, Username: req.Username},
	}, nil
}

func (f *fakeEcho) CurrentUser(ctx context.Context, _ *echov1.Empty) (*echov1.CurrentUserResponse, error) {
	if !authorized(ctx) {
		return &echov1.CurrentUserResponse{}, nil
	}
	return &echov1.CurrentUserResponse{User: &echov1.User{ID: testUser, Username: "alice"}}, nil
}

func (f *fakeEcho) SendMessage(ctx context.Context, req *echov1.SendMessageRequest) (*echov1.SendMessageResponse, error) {
	if !authorized(ctx) {
		return nil, status.Error(codes.Unauthenticated, "login required")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, req)
	return &echov1.SendMessageResponse{MessageID: "m1"}, nil
}

func (f *fakeEcho) ListMessages(context.Context, *echov1.ListMessagesRequest) (*echov1.MessagesResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := &echov1.MessagesResponse{}
	for _, s := range f.sent {
		out.Messages = append(out.Messages, echov1.Message{
			ID:            "m1",
			Content:       s.Content,
			EncryptionKey: s.EncryptionKey,
			AuthorID:      testUser,
			ChannelID:     s.ChannelID,
			Author:        &echov1.User{ID: testUser, Username: "alice"},
			Reactions:     map[string]echov1.ReactionSummary{"👍": {Count: 2}},
		})
	}
	return out, nil
}

func (f *fakeEcho) AddReaction(context.Context, *echov1.AddReactionRequest) (*echov1.AddReactionResponse, error) {
	return &echov1.AddReactionResponse{Removed: true}, nil
}

func (f *fakeEcho) SetupKeys(_ context.Context, req *echov1.SetupKeysRequest) (*echov1.Empty, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = req
	return &echov1.Empty{}, nil
}

func (f *fakeEcho) GetPrivateKey(context.Context, *echov1.Empty) (*echov1.KeyResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.keys == nil {
		return &echov1.KeyResponse{}, nil
	}
	k := f.keys.PrivateKey
	return &echov1.KeyResponse{Key: &k}, nil
}

func startFake(t *testing.T) (*fakeEcho, *app) {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer()
	fake := &fakeEcho{}
	echov1.RegisterEchoServer(gs, fake)
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(func() { gs.Stop(); _ = lis.Close() })

	a := &app{dial: []grpc.DialOption{
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) { return lis.Dial() }),
	}}
	return fake, a
}

func run(a *app, args ...string) (string, error) {
	var out bytes.Buffer
	a.out = &out
	a.in = strings.NewReader("piped text\n")
	cmd := newRootCmd(a)
	cmd.SetArgs(append([]string{"--addr", "passthrough:///bufnet", "--plaintext"}, args...))
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestLoginThenWhoami(t *testing.T) {
	_ = withTmpConfig(t)
	_, a := startFake(t)

	_, err := run(a, "login", "-u", "alice", "-p", "wrong")
	require.Equal(t, codes.Unauthenticated, status.Code(err))

	out, err := run(a, "login", "-u", "alice", "-p", "pw")
	require.NoError(t, err)
	require.Equal(t, "ok\n", out)

	tf, err := loadToken()
	require.NoError(t, err)
	require.Equal(t, "tok", tf.AccessToken)
	require.Equal(t, testUser, tf.UserID)

	out, err = run(a, "whoami")
	require.NoError(t, err)
	var u echov1.User
	require.NoError(t, json.Unmarshal([]byte(out), &u))
	require.Equal(t, "alice", u.Username)
}

func TestAuthedCommands_RequireLogin(t *testing.T) {
	_ = withTmpConfig(t)
	_, a := startFake(t)

	_, err := run(a, "whoami")
	require.ErrorContains(t, err, "not logged in")
}

func TestSendAndList_SealsBodies(t *testing.T) {
	_ = withTmpConfig(t)
	fake, a := startFake(t)
	_, err := run(a, "login", "-u", "alice", "-p", "pw")
	require.NoError(t, err)

	out, err := run(a, "msg", "send", "--channel", testChannel, "--secret", "s3cret", "hello", "world")
	require.NoError(t, err)
	require.Equal(t, "m1\n", out)

	require.Len(t, fake.sent, 1)
	sent := fake.sent[0]
	require.Equal(t, testChannel, *sent.ChannelID)
	require.Nil(t, sent.DMID)
	require.Nil(t, sent.ThreadID)
	require.NotContains(t, sent.Content, "hello")
	require.NotEmpty(t, sent.EncryptionKey)

	out, err = run(a, "msg", "list", "--channel", testChannel, "--secret", "s3cret")
	require.NoError(t, err)
	var rows []messageRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 1)
	require.Equal(t, "hello world", rows[0].Text)
	require.Equal(t, "alice", rows[0].Author)
	require.Equal(t, map[string]int{"👍": 2}, rows[0].Reactions)

	out, err = run(a, "msg", "list", "--channel", testChannel, "--secret", "other")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Equal(t, "<sealed>", rows[0].Text)
}

func TestSend_FromStdinAsThreadReply(t *testing.T) {
	_ = withTmpConfig(t)
	fake, a := startFake(t)
	_, err := run(a, "login", "-u", "alice", "-p", "pw")
	require.NoError(t, err)

	_, err = run(a, "msg", "send", "--channel", testChannel, "--thread", "m0", "--secret", "s", "--file", "-")
	require.NoError(t, err)
	require.Len(t, fake.sent, 1)
	require.Equal(t, "m0", *fake.sent[0].ThreadID)

	out, err := run(a, "msg", "list", "--channel", testChannel, "--secret", "s")
	require.NoError(t, err)
	require.Contains(t, out, `"piped text"`)
}

func TestSend_Rejections(t *testing.T) {
	_ = withTmpConfig(t)
	fake, a := startFake(t)
	_, err := run(a, "login", "-u", "alice", "-p", "pw")
	require.NoError(t, err)

	_, err = run(a, "msg", "send", "--secret", "s", "hi")
	require.Error(t, err, "a conversation is required")

	_, err = run(a, "msg", "send", "--channel", testChannel, "--dm", testChannel, "--secret", "s", "hi")
	require.Error(t, err, "channel and dm are exclusive")

	t.Setenv("ECHO_SECRET", "")
	_, err = run(a, "msg", "send", "--channel", testChannel, "hi")
	require.ErrorContains(t, err, "missing --secret")

	_, err = run(a, "msg", "send", "--channel", testChannel, "--secret", "s")
	require.ErrorContains(t, err, "message text")

	require.Empty(t, fake.sent)
}

func TestReactToggle(t *testing.T) {
	_ = withTmpConfig(t)
	_, a := startFake(t)
	_, err := run(a, "login", "-u", "alice", "-p", "pw")
	require.NoError(t, err)

	out, err := run(a, "react", "m1", "👍")
	require.NoError(t, err)
	require.Equal(t, "removed\n", out)
}

func TestKeysSetupAndVerify(t *testing.T) {
	_ = withTmpConfig(t)
	fake, a := startFake(t)
	_, err := run(a, "login", "-u", "alice", "-p", "pw")
	require.NoError(t, err)

	_, err = run(a, "keys", "verify", "-p", "pw")
	require.ErrorContains(t, err, "no keys stored")

	out, err := run(a, "keys", "setup", "-p", "pw")
	require.NoError(t, err)
	require.Equal(t, fake.keys.PublicKey+"\n", out)
	require.NotEmpty(t, fake.keys.PrivateKey)

	_, err = run(a, "keys", "verify", "-p", "pw")
	require.NoError(t, err)
	_, err = run(a, "keys", "verify", "-p", "nope")
	require.ErrorContains(t, err, "does not open")
}

func TestVersion(t *testing.T) {
	out, err := run(&app{}, "version")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "echo dev"))
}
