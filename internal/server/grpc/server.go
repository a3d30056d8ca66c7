// Package grpcserver exposes the Echo gRPC API handlers.
package grpcserver

import (
	"context"

	echov1 "github.com/ferdousbhai/echo/api/echo/v1"
	"github.com/ferdousbhai/echo/internal/convert"
	"github.com/ferdousbhai/echo/internal/service"
	"go.uber.org/zap"
	"google.golang.org/grpc/peer"
)

// Services bundles the application services behind the API.
type Services struct {
	Auth       service.AuthService
	Users      service.UserService
	Workspaces service.WorkspaceService
	Channels   service.ChannelService
	DMs        service.DMService
	Messages   service.MessageService
	Reactions  service.ReactionService
	Feed       service.FeedService
}

// Server wires services into gRPC handlers. Handlers only decode, call and
// encode; every rule lives in the services.
type Server struct {
	svc Services
	log *zap.Logger
}

var _ echov1.EchoServer = (*Server)(nil)

// New constructs a gRPC server with injected services.
func New(svc Services, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{svc: svc, log: log}
}

func remoteIP(ctx context.Context) string {
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		return p.Addr.String()
	}
	return ""
}

// --- auth ---

// Register creates a new user account.
func (s *Server) Register(ctx context.Context, req *echov1.RegisterRequest) (*echov1.RegisterResponse, error) {
	id, err := s.svc.Auth.Register(ctx, req.Username, req.Password)
	if err != nil {
		return nil, toStatus(err)
	}
	return &echov1.RegisterResponse{UserID: id.String()}, nil
}

// Login authenticates a user and returns an access token.
func (s *Server) Login(ctx context.Context, req *echov1.LoginRequest) (*echov1.LoginResponse, error) {
	tok, u, err := s.svc.Auth.LoginWithIP(ctx, req.Username, req.Password, remoteIP(ctx))
	if err != nil {
		return nil, toStatus(err)
	}
	return &echov1.LoginResponse{
		AccessToken: tok.AccessToken,
		ExpiresAt:   convert.Millis(tok.ExpiresAt),
		User:        convert.ToUser(u),
	}, nil
}

// --- users ---

func (s *Server) CurrentUser(ctx context.Context, _ *echov1.Empty) (*echov1.CurrentUserResponse, error) {
	u, err := s.svc.Users.Current(ctx, caller(ctx))
	if err != nil {
		return nil, toStatus(err)
	}
	resp := &echov1.CurrentUserResponse{}
	if u != nil {
		pu := convert.ToUser(*u)
		resp.User = &pu
	}
	return resp, nil
}

func (s *Server) ListWorkspaceUsers(ctx context.Context, req *echov1.WorkspaceRef) (*echov1.UsersResponse, error) {
	wsID, err := convert.ParseID("workspaceId", req.WorkspaceID)
	if err != nil {
		return nil, toStatus(err)
	}
	users, err := s.svc.Users.ListWorkspaceUsers(ctx, caller(ctx), wsID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &echov1.UsersResponse{Users: convert.ToUsers(users)}, nil
}

func (s *Server) SetupKeys(ctx context.Context, req *echov1.SetupKeysRequest) (*echov1.Empty, error) {
	if err := s.svc.Users.SetupKeys(ctx, caller(ctx), req.PublicKey, req.PrivateKey); err != nil {
		return nil, toStatus(err)
	}
	return &echov1.Empty{}, nil
}

func (s *Server) GetPublicKey(ctx context.Context, req *echov1.GetPublicKeyRequest) (*echov1.KeyResponse, error) {
	userID, err := convert.ParseID("userId", req.UserID)
	if err != nil {
		return nil, toStatus(err)
	}
	key, ok, err := s.svc.Users.GetPublicKey(ctx, userID)
	if err != nil {
		return nil, toStatus(err)
	}
	return keyResponse(key, ok), nil
}

func (s *Server) GetPrivateKey(ctx context.Context, _ *echov1.Empty) (*echov1.KeyResponse, error) {
	key, ok, err := s.svc.Users.GetPrivateKey(ctx, caller(ctx))
	if err != nil {
		return nil, toStatus(err)
	}
	return keyResponse(key, ok), nil
}

func keyResponse(key string, ok bool) *echov1.KeyResponse {
	if !ok {
		return &echov1.KeyResponse{}
	}
	return &echov1.KeyResponse{Key: &key}
}
