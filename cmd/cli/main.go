// Command echo is a CLI client for the Echo chat service.
package main

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	echov1 "github.com/ferdousbhai/echo/api/echo/v1"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

// ---- config/token store ----

type tokenFile struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	UserID      string    `json:"user_id"`
}

func cfgDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "echo")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "echo")
}

func tokenPath() string { return filepath.Join(cfgDir(), "token.json") }

func saveToken(tf tokenFile) error {
	if err := os.MkdirAll(cfgDir(), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(tokenPath(), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(tf)
}

func loadToken() (tokenFile, error) {
	var tf tokenFile
	b, err := os.ReadFile(tokenPath())
	if err != nil {
		return tf, errors.New("not logged in (run: echo login)")
	}
	if err := json.Unmarshal(b, &tf); err != nil {
		return tf, err
	}
	if tf.AccessToken == "" || time.Now().After(tf.ExpiresAt) {
		return tf, errors.New("session expired (run: echo login)")
	}
	return tf, nil
}

func removeToken() error {
	err := os.Remove(tokenPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// ---- grpc dial ----

type bearerCreds struct {
	token  string
	secure bool
}

func (b bearerCreds) GetRequestMetadata(context.Context, ...string) (map[string]string, error) {
	return map[string]string{"authorization": "Bearer " + b.token}, nil
}
func (b bearerCreds) RequireTransportSecurity() bool { return b.secure }

func loadTLS(caPath string, skipVerify bool) (credentials.TransportCredentials, error) {
	if skipVerify {
		return credentials.NewTLS(&tls.Config{InsecureSkipVerify: true}), nil //nolint:gosec // dev only
	}
	if caPath == "" {
		return credentials.NewClientTLSFromCert(nil, ""), nil
	}
	pem, err := os.ReadFile(caPath)
	if err != nil {
		return nil, err
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, errors.New("bad CA cert")
	}
	return credentials.NewTLS(&tls.Config{RootCAs: pool}), nil
}

// app holds global flags and the output stream shared by every command.
type app struct {
	addr       string
	caPath     string
	skipVerify bool
	plaintext  bool
	secret     string
	timeout    time.Duration

	out  io.Writer
	in   io.Reader
	dial []grpc.DialOption // extra options, used by tests
}

// connect opens a client connection. With authed set, the saved token is
// attached to every call.
func (a *app) connect(authed bool) (*echov1.EchoClient, func(), error) {
	var creds credentials.TransportCredentials
	if a.plaintext {
		creds = insecure.NewCredentials()
	} else {
		c, err := loadTLS(a.caPath, a.skipVerify)
		if err != nil {
			return nil, nil, err
		}
		creds = c
	}
	opts := append([]grpc.DialOption{grpc.WithTransportCredentials(creds)}, a.dial...)
	if authed {
		tf, err := loadToken()
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, grpc.WithPerRPCCredentials(bearerCreds{token: tf.AccessToken, secure: !a.plaintext}))
	}
	cc, err := grpc.NewClient(a.addr, opts...)
	if err != nil {
		return nil, nil, err
	}
	return echov1.NewEchoClient(cc), func() { _ = cc.Close() }, nil
}

func (a *app) callCtx(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, a.timeout)
}

// ---- utils ----

func readAll(r io.Reader, p string) ([]byte, error) {
	if p == "-" {
		return io.ReadAll(r)
	}
	return os.ReadFile(p)
}

func (a *app) printJSON(v any) {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func msString(ms int64) string {
	if ms == 0 {
		return ""
	}
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}

// ---- main ----

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := &app{out: os.Stdout, in: os.Stdin}
	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		fail(err)
	}
}

func fail(err error) {
	if s, ok := status.FromError(err); ok {
		fmt.Fprintf(os.Stderr, "rpc error: code=%s msg=%s\n", s.Code(), s.Message())
		os.Exit(1)
	}
	fmt.Fprintln(os.Stderr, strings.TrimSpace(err.Error()))
	os.Exit(1)
}
