package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	echov1 "github.com/ferdousbhai/echo/api/echo/v1"
	"github.com/ferdousbhai/echo/internal/crypto/clientcrypto"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "echo",
		Short:         "Command-line client for the Echo chat service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&a.addr, "addr", envOr("ECHO_ADDR", "localhost:8443"), "server address")
	pf.StringVar(&a.caPath, "cacert", "", "CA certificate (PEM)")
	pf.BoolVar(&a.skipVerify, "insecure", false, "skip certificate verification (dev)")
	pf.BoolVar(&a.plaintext, "plaintext", false, "connect without TLS (dev)")
	pf.StringVar(&a.secret, "secret", os.Getenv("ECHO_SECRET"), "shared secret that seals message bodies")
	pf.DurationVar(&a.timeout, "timeout", 30*time.Second, "per-call timeout")

	root.AddCommand(
		&cobra.Command{
			Use:   "version",
			Short: "Print the client version",
			Args:  cobra.NoArgs,
			Run: func(*cobra.Command, []string) {
				fmt.Fprintf(a.out, "echo %s (%s)\n", version, buildDate)
			},
		},
		registerCmd(a),
		loginCmd(a),
		logoutCmd(),
		whoamiCmd(a),
		keysCmd(a),
		workspaceCmd(a),
		inviteCmd(a),
		channelCmd(a),
		dmCmd(a),
		messageCmd(a),
		reactCmd(a),
		watchCmd(a),
	)
	return root
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// ---- account ----

func credFlags(cmd *cobra.Command, user, pass *string) {
	cmd.Flags().StringVarP(user, "username", "u", "", "username")
	cmd.Flags().StringVarP(pass, "password", "p", "", "password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
}

func registerCmd(a *app) *cobra.Command {
	var user, pass string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cli, done, err := a.connect(false)
			if err != nil {
				return err
			}
			defer done()
			ctx, cancel := a.callCtx(cmd.Context())
			defer cancel()

			resp, err := cli.Register(ctx, &echov1.RegisterRequest{Username: user, Password: pass})
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, resp.UserID)
			return nil
		},
	}
	credFlags(cmd, &user, &pass)
	return cmd
}

func loginCmd(a *app) *cobra.Command {
	var user, pass string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and save the access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cli, done, err := a.connect(false)
			if err != nil {
				return err
			}
			defer done()
			ctx, cancel := a.callCtx(cmd.Context())
			defer cancel()

			resp, err := cli.Login(ctx, &echov1.LoginRequest{Username: user, Password: pass})
			if err != nil {
				return err
			}
			if err := saveToken(tokenFile{
				AccessToken: resp.AccessToken,
				ExpiresAt:   time.UnixMilli(resp.ExpiresAt),
				UserID:      resp.User.ID,
			}); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "ok")
			return nil
		},
	}
	credFlags(cmd, &user, &pass)
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved access token",
		Args:  cobra.NoArgs,
		RunE:  func(*cobra.Command, []string) error { return removeToken() },
	}
}

func whoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: a.authed(func(c *call, _ []string) error {
			resp, err := c.cli.CurrentUser(c.ctx)
			if err != nil {
				return err
			}
			if resp.User == nil {
				return errors.New("not logged in")
			}
			a.printJSON(resp.User)
			return nil
		}),
	}
}

func keysCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "keys", Short: "Manage identity keys"}

	var pass string
	setup := &cobra.Command{
		Use:   "setup",
		Short: "Generate an identity key pair and upload it, private half sealed under the password",
		Args:  cobra.NoArgs,
		RunE: a.authed(func(c *call, _ []string) error {
			kp, err := clientcrypto.GenerateKeyPair()
			if err != nil {
				return err
			}
			wrapped, err := kp.WrapPrivate([]byte(pass))
			if err != nil {
				return err
			}
			if _, err := c.cli.SetupKeys(c.ctx, &echov1.SetupKeysRequest{
				PublicKey:  kp.EncodePublic(),
				PrivateKey: wrapped,
			}); err != nil {
				return err
			}
			fmt.Fprintln(a.out, kp.EncodePublic())
			return nil
		}),
	}
	setup.Flags().StringVarP(&pass, "password", "p", "", "password sealing the private key")
	_ = setup.MarkFlagRequired("password")

	verify := &cobra.Command{
		Use:   "verify",
		Short: "Fetch the sealed private key and check it opens with the password",
		Args:  cobra.NoArgs,
		RunE: a.authed(func(c *call, _ []string) error {
			resp, err := c.cli.GetPrivateKey(c.ctx)
			if err != nil {
				return err
			}
			if resp.Key == nil {
				return errors.New("no keys stored (run: echo keys setup)")
			}
			if _, err := clientcrypto.UnwrapPrivate([]byte(pass), *resp.Key); err != nil {
				return fmt.Errorf("private key does not open: %w", err)
			}
			fmt.Fprintln(a.out, "ok")
			return nil
		}),
	}
	verify.Flags().StringVarP(&pass, "password", "p", "", "password sealing the private key")
	_ = verify.MarkFlagRequired("password")

	pub := &cobra.Command{
		Use:   "public <user-id>",
		Short: "Show a user's public key",
		Args:  cobra.ExactArgs(1),
		RunE: a.authed(func(c *call, args []string) error {
			resp, err := c.cli.GetPublicKey(c.ctx, &echov1.GetPublicKeyRequest{UserID: args[0]})
			if err != nil {
				return err
			}
			if resp.Key == nil {
				return errors.New("no public key")
			}
			fmt.Fprintln(a.out, *resp.Key)
			return nil
		}),
	}

	cmd.AddCommand(setup, verify, pub)
	return cmd
}

// ---- workspaces & invites ----

func workspaceCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "ws", Short: "Workspaces"}

	var desc string
	var public bool
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a workspace",
		Args:  cobra.ExactArgs(1),
		RunE: a.authed(func(c *call, args []string) error {
			req := &echov1.CreateWorkspaceRequest{Name: args[0], IsPublic: public}
			if desc != "" {
				req.Description = &desc
			}
			resp, err := c.cli.CreateWorkspace(c.ctx, req)
			if err != nil {
				return err
			}
			a.printJSON(resp.Workspace)
			return nil
		}),
	}
	create.Flags().StringVar(&desc, "desc", "", "description")
	create.Flags().BoolVar(&public, "public", false, "mark the workspace public")

	list := &cobra.Command{
		Use:   "list",
		Short: "List your workspaces",
		Args:  cobra.NoArgs,
		RunE: a.authed(func(c *call, _ []string) error {
			resp, err := c.cli.ListWorkspaces(c.ctx)
			if err != nil {
				return err
			}
			a.printJSON(resp.Workspaces)
			return nil
		}),
	}

	get := &cobra.Command{
		Use:   "get <workspace-id>",
		Short: "Show a workspace",
		Args:  cobra.ExactArgs(1),
		RunE: a.authed(func(c *call, args []string) error {
			resp, err := c.cli.GetWorkspace(c.ctx, &echov1.WorkspaceRef{WorkspaceID: args[0]})
			if err != nil {
				return err
			}
			if resp.Workspace == nil {
				return errors.New("workspace not found")
			}
			a.printJSON(resp.Workspace)
			return nil
		}),
	}

	users := &cobra.Command{
		Use:   "users <workspace-id>",
		Short: "List the other members of a workspace",
		Args:  cobra.ExactArgs(1),
		RunE: a.authed(func(c *call, args []string) error {
			resp, err := c.cli.ListWorkspaceUsers(c.ctx, &echov1.WorkspaceRef{WorkspaceID: args[0]})
			if err != nil {
				return err
			}
			a.printJSON(resp.Users)
			return nil
		}),
	}

	cmd.AddCommand(create, list, get, users)
	return cmd
}

func inviteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "invite", Short: "Workspace invites"}

	var maxUses, days int
	create := &cobra.Command{
		Use:   "create <workspace-id>",
		Short: "Issue an invite code (admins only)",
		Args:  cobra.ExactArgs(1),
		RunE: a.authed(func(c *call, args []string) error {
			req := &echov1.CreateInviteRequest{WorkspaceID: args[0]}
			if maxUses > 0 {
				req.MaxUses = &maxUses
			}
			if days > 0 {
				req.ExpiresInDays = &days
			}
			resp, err := c.cli.CreateInvite(c.ctx, req)
			if err != nil {
				return err
			}
			a.printJSON(resp.Invite)
			return nil
		}),
	}
	create.Flags().IntVar(&maxUses, "max-uses", 0, "redemption limit (0 = unlimited)")
	create.Flags().IntVar(&days, "days", 0, "days until expiry (0 = never)")

	info := &cobra.Command{
		Use:   "info <code>",
		Short: "Preview an invite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, done, err := a.connect(false)
			if err != nil {
				return err
			}
			defer done()
			ctx, cancel := a.callCtx(cmd.Context())
			defer cancel()

			resp, err := cli.GetInviteInfo(ctx, &echov1.InviteCodeRequest{InviteCode: args[0]})
			if err != nil {
				return err
			}
			if resp.Info == nil {
				return errors.New("invite not found or no longer valid")
			}
			a.printJSON(resp.Info)
			return nil
		},
	}

	join := &cobra.Command{
		Use:   "join <code>",
		Short: "Join a workspace with an invite code",
		Args:  cobra.ExactArgs(1),
		RunE: a.authed(func(c *call, args []string) error {
			resp, err := c.cli.JoinWorkspace(c.ctx, &echov1.InviteCodeRequest{InviteCode: args[0]})
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, resp.WorkspaceID)
			return nil
		}),
	}

	list := &cobra.Command{
		Use:   "list <workspace-id>",
		Short: "List active invites (admins only)",
		Args:  cobra.ExactArgs(1),
		RunE: a.authed(func(c *call, args []string) error {
			resp, err := c.cli.ListInvites(c.ctx, &echov1.WorkspaceRef{WorkspaceID: args[0]})
			if err != nil {
				return err
			}
			a.printJSON(resp.Invites)
			return nil
		}),
	}

	revoke := &cobra.Command{
		Use:   "revoke <invite-id>",
		Short: "Deactivate an invite (admins only)",
		Args:  cobra.ExactArgs(1),
		RunE: a.authed(func(c *call, args []string) error {
			_, err := c.cli.DeactivateInvite(c.ctx, &echov1.InviteRef{InviteID: args[0]})
			return err
		}),
	}

	cmd.AddCommand(create, info, join, list, revoke)
	return cmd
}

// ---- channels & DMs ----

func channelCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "channel", Short: "Channels"}

	var desc string
	var private bool
	create := &cobra.Command{
		Use:   "create <workspace-id> <name>",
		Short: "Create a channel",
		Args:  cobra.ExactArgs(2),
		RunE: a.authed(func(c *call, args []string) error {
			req := &echov1.CreateChannelRequest{WorkspaceID: args[0], Name: args[1], IsPrivate: private}
			if desc != "" {
				req.Description = &desc
			}
			resp, err := c.cli.CreateChannel(c.ctx, req)
			if err != nil {
				return err
			}
			a.printJSON(resp.Channel)
			return nil
		}),
	}
	create.Flags().StringVar(&desc, "desc", "", "description")
	create.Flags().BoolVar(&private, "private", false, "make the channel private")

	list := &cobra.Command{
		Use:   "list <workspace-id>",
		Short: "List channels visible to you",
		Args:  cobra.ExactArgs(1),
		RunE: a.authed(func(c *call, args []string) error {
			resp, err := c.cli.ListChannels(c.ctx, &echov1.WorkspaceRef{WorkspaceID: args[0]})
			if err != nil {
				return err
			}
			a.printJSON(resp.Channels)
			return nil
		}),
	}

	join := &cobra.Command{
		Use:   "join <channel-id>",
		Short: "Join a channel",
		Args:  cobra.ExactArgs(1),
		RunE: a.authed(func(c *call, args []string) error {
			_, err := c.cli.JoinChannel(c.ctx, &echov1.ChannelRef{ChannelID: args[0]})
			return err
		}),
	}

	get := &cobra.Command{
		Use:   "get <channel-id>",
		Short: "Show a channel",
		Args:  cobra.ExactArgs(1),
		RunE: a.authed(func(c *call, args []string) error {
			resp, err := c.cli.GetChannel(c.ctx, &echov1.ChannelRef{ChannelID: args[0]})
			if err != nil {
				return err
			}
			if resp.Channel == nil {
				return errors.New("channel not found")
			}
			a.printJSON(resp.Channel)
			return nil
		}),
	}

	members := &cobra.Command{
		Use:   "members <channel-id>",
		Short: "List channel members",
		Args:  cobra.ExactArgs(1),
		RunE: a.authed(func(c *call, args []string) error {
			resp, err := c.cli.GetChannelMembers(c.ctx, &echov1.ChannelRef{ChannelID: args[0]})
			if err != nil {
				return err
			}
			a.printJSON(resp.Users)
			return nil
		}),
	}

	cmd.AddCommand(create, list, join, get, members)
	return cmd
}

func dmCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "dm", Short: "Direct messages"}

	open := &cobra.Command{
		Use:   "open <workspace-id> <user-id>",
		Short: "Open (or find) the DM with another member",
		Args:  cobra.ExactArgs(2),
		RunE: a.authed(func(c *call, args []string) error {
			resp, err := c.cli.GetOrCreateDM(c.ctx, &echov1.GetOrCreateDMRequest{WorkspaceID: args[0], ParticipantID: args[1]})
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, resp.DMID)
			return nil
		}),
	}

	list := &cobra.Command{
		Use:   "list <workspace-id>",
		Short: "List your DMs in a workspace",
		Args:  cobra.ExactArgs(1),
		RunE: a.authed(func(c *call, args []string) error {
			resp, err := c.cli.ListDMs(c.ctx, &echov1.WorkspaceRef{WorkspaceID: args[0]})
			if err != nil {
				return err
			}
			a.printJSON(resp.DMs)
			return nil
		}),
	}

	cmd.AddCommand(open, list)
	return cmd
}

// ---- messages & reactions ----

// convFlags selects the conversation a message command works in. The
// conversation ID also keys the sealing of message bodies.
type convFlags struct {
	channel, dm string
}

func (f *convFlags) bind(cmd *cobra.Command, required bool) {
	cmd.Flags().StringVar(&f.channel, "channel", "", "channel id")
	cmd.Flags().StringVar(&f.dm, "dm", "", "direct message id")
	cmd.MarkFlagsMutuallyExclusive("channel", "dm")
	if required {
		cmd.MarkFlagsOneRequired("channel", "dm")
	}
}

func (f *convFlags) id() string {
	if f.channel != "" {
		return f.channel
	}
	return f.dm
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// convKey derives the sealing key of one conversation from the shared secret.
func (a *app) convKey(convID string) ([]byte, error) {
	if a.secret == "" {
		return nil, errors.New("missing --secret (or ECHO_SECRET)")
	}
	return clientcrypto.DeriveKey([]byte(a.secret), []byte(convID)), nil
}

func (a *app) seal(convID, text string) (content, key string, err error) {
	k, err := a.convKey(convID)
	if err != nil {
		return "", "", err
	}
	return clientcrypto.SealMessage(k, []byte(convID), []byte(text))
}

// messageRow is the printed form of a message.
type messageRow struct {
	ID          string         `json:"id"`
	Author      string         `json:"author"`
	At          string         `json:"at"`
	Text        string         `json:"text"`
	Edited      bool           `json:"edited,omitempty"`
	ThreadCount *int           `json:"threadCount,omitempty"`
	Reactions   map[string]int `json:"reactions,omitempty"`
}

// rows renders messages, opening bodies when a secret is configured.
func (a *app) rows(convID string, msgs []echov1.Message) []messageRow {
	var key []byte
	if a.secret != "" {
		key, _ = a.convKey(convID)
	}
	out := make([]messageRow, 0, len(msgs))
	for _, m := range msgs {
		r := messageRow{ID: m.ID, Author: m.AuthorID, At: msString(m.CreatedAt), Edited: m.IsEdited, ThreadCount: m.ThreadCount, Text: "<sealed>"}
		if m.Author != nil {
			r.Author = m.Author.Username
		}
		if key != nil {
			if pt, err := clientcrypto.OpenMessage(key, []byte(convID), m.Content, m.EncryptionKey); err == nil {
				r.Text = string(pt)
			}
		}
		if len(m.Reactions) > 0 {
			r.Reactions = make(map[string]int, len(m.Reactions))
			for emoji, s := range m.Reactions {
				r.Reactions[emoji] = s.Count
			}
		}
		out = append(out, r)
	}
	return out
}

func (a *app) messageText(args []string, file string) (string, error) {
	if file != "" {
		b, err := readAll(a.in, file)
		if err != nil {
			return "", err
		}
		return strings.TrimRight(string(b), "\n"), nil
	}
	if len(args) == 0 {
		return "", errors.New("message text or --file required")
	}
	return strings.Join(args, " "), nil
}

func messageCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "msg", Short: "Messages"}

	var sendConv convFlags
	var thread, file string
	send := &cobra.Command{
		Use:   "send [text...]",
		Short: "Send a message, or a thread reply with --thread",
		RunE: a.authed(func(c *call, args []string) error {
			text, err := a.messageText(args, file)
			if err != nil {
				return err
			}
			content, key, err := a.seal(sendConv.id(), text)
			if err != nil {
				return err
			}
			resp, err := c.cli.SendMessage(c.ctx, &echov1.SendMessageRequest{
				Content:       content,
				EncryptionKey: key,
				ChannelID:     optString(sendConv.channel),
				DMID:          optString(sendConv.dm),
				ThreadID:      optString(thread),
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, resp.MessageID)
			return nil
		}),
	}
	sendConv.bind(send, true)
	send.Flags().StringVar(&thread, "thread", "", "reply to this top-level message")
	send.Flags().StringVar(&file, "file", "", "read the text from a file ('-' = stdin)")

	var listConv convFlags
	list := &cobra.Command{
		Use:   "list",
		Short: "Show the latest top-level messages",
		Args:  cobra.NoArgs,
		RunE: a.authed(func(c *call, _ []string) error {
			resp, err := c.cli.ListMessages(c.ctx, &echov1.ListMessagesRequest{
				ChannelID: optString(listConv.channel),
				DMID:      optString(listConv.dm),
			})
			if err != nil {
				return err
			}
			a.printJSON(a.rows(listConv.id(), resp.Messages))
			return nil
		}),
	}
	listConv.bind(list, true)

	var threadConv convFlags
	threadList := &cobra.Command{
		Use:   "thread <message-id>",
		Short: "Show the replies to a message",
		Args:  cobra.ExactArgs(1),
		RunE: a.authed(func(c *call, args []string) error {
			resp, err := c.cli.ListThread(c.ctx, &echov1.ThreadRef{ThreadID: args[0]})
			if err != nil {
				return err
			}
			a.printJSON(a.rows(threadConv.id(), resp.Messages))
			return nil
		}),
	}
	threadConv.bind(threadList, false)

	var editConv convFlags
	edit := &cobra.Command{
		Use:   "edit <message-id> <text...>",
		Short: "Replace the text of your message",
		Args:  cobra.MinimumNArgs(2),
		RunE: a.authed(func(c *call, args []string) error {
			content, key, err := a.seal(editConv.id(), strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			_, err = c.cli.EditMessage(c.ctx, &echov1.EditMessageRequest{MessageID: args[0], Content: content, EncryptionKey: key})
			return err
		}),
	}
	editConv.bind(edit, true)

	rm := &cobra.Command{
		Use:   "rm <message-id>",
		Short: "Delete your message",
		Args:  cobra.ExactArgs(1),
		RunE: a.authed(func(c *call, args []string) error {
			_, err := c.cli.DeleteMessage(c.ctx, &echov1.MessageRef{MessageID: args[0]})
			return err
		}),
	}

	cmd.AddCommand(send, list, threadList, edit, rm)
	return cmd
}

func reactCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "react <message-id> <emoji>",
		Short: "Toggle your reaction on a message",
		Args:  cobra.ExactArgs(2),
		RunE: a.authed(func(c *call, args []string) error {
			resp, err := c.cli.AddReaction(c.ctx, &echov1.AddReactionRequest{MessageID: args[0], Emoji: args[1]})
			if err != nil {
				return err
			}
			if resp.Removed {
				fmt.Fprintln(a.out, "removed")
			} else {
				fmt.Fprintln(a.out, "added")
			}
			return nil
		}),
	}

	list := &cobra.Command{
		Use:   "list <message-id>",
		Short: "Show reactions on a message",
		Args:  cobra.ExactArgs(1),
		RunE: a.authed(func(c *call, args []string) error {
			resp, err := c.cli.ListReactions(c.ctx, &echov1.MessageRef{MessageID: args[0]})
			if err != nil {
				return err
			}
			a.printJSON(resp.Reactions)
			return nil
		}),
	}

	rm := &cobra.Command{
		Use:   "rm <reaction-id>",
		Short: "Remove one of your reactions by id",
		Args:  cobra.ExactArgs(1),
		RunE: a.authed(func(c *call, args []string) error {
			_, err := c.cli.RemoveReaction(c.ctx, &echov1.ReactionRef{ReactionID: args[0]})
			return err
		}),
	}

	cmd.AddCommand(list, rm)
	return cmd
}

// ---- change feed ----

func watchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <topic>...",
		Short: "Stream change events (topics like channel:<id>, dm:<id>, workspace:<id>, user:<id>)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, done, err := a.connect(true)
			if err != nil {
				return err
			}
			defer done()

			stream, err := cli.Watch(cmd.Context(), &echov1.WatchRequest{Topics: args})
			if err != nil {
				return err
			}
			hdr, err := stream.Header()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "watching %s\n", strings.Join(hdr.Get("echo-topics"), ","))
			for {
				ev, err := stream.Recv()
				if err != nil {
					if cmd.Context().Err() != nil {
						return nil
					}
					return err
				}
				fmt.Fprintf(a.out, "%s %s %s %s\n", msString(ev.At), ev.Topic, ev.Kind, ev.ID)
			}
		},
	}
}

// ---- plumbing ----

// call is the per-command RPC context handed to authed commands.
type call struct {
	cli *echov1.EchoClient
	ctx context.Context
}

// authed wraps a command body with an authenticated connection and a timeout.
func (a *app) authed(fn func(c *call, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cli, done, err := a.connect(true)
		if err != nil {
			return err
		}
		defer done()
		ctx, cancel := a.callCtx(cmd.Context())
		defer cancel()
		return fn(&call{cli: cli, ctx: ctx}, args)
	}
}
