package echov1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "echo.v1.Echo"

// FullMethod returns the gRPC path of method.
func FullMethod(method string) string { return "/" + ServiceName + "/" + method }

// EchoServer is the server API for the Echo service.
type EchoServer interface {
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)

	CurrentUser(context.Context, *Empty) (*CurrentUserResponse, error)
	ListWorkspaceUsers(context.Context, *WorkspaceRef) (*UsersResponse, error)
	SetupKeys(context.Context, *SetupKeysRequest) (*Empty, error)
	GetPublicKey(context.Context, *GetPublicKeyRequest) (*KeyResponse, error)
	GetPrivateKey(context.Context, *Empty) (*KeyResponse, error)

	CreateWorkspace(context.Context, *CreateWorkspaceRequest) (*WorkspaceResponse, error)
	ListWorkspaces(context.Context, *Empty) (*WorkspacesResponse, error)
	GetWorkspace(context.Context, *WorkspaceRef) (*WorkspaceResponse, error)
	CreateInvite(context.Context, *CreateInviteRequest) (*InviteResponse, error)
	GetInviteInfo(context.Context, *InviteCodeRequest) (*InviteInfoResponse, error)
	JoinWorkspace(context.Context, *InviteCodeRequest) (*JoinWorkspaceResponse, error)
	DeactivateInvite(context.Context, *InviteRef) (*Empty, error)
	ListInvites(context.Context, *WorkspaceRef) (*InvitesResponse, error)

	ListChannels(context.Context, *WorkspaceRef) (*ChannelsResponse, error)
	CreateChannel(context.Context, *CreateChannelRequest) (*ChannelResponse, error)
	JoinChannel(context.Context, *ChannelRef) (*Empty, error)
	GetChannel(context.Context, *ChannelRef) (*ChannelResponse, error)
	GetChannelMembers(context.Context, *ChannelRef) (*UsersResponse, error)

	ListDMs(context.Context, *WorkspaceRef) (*DMsResponse, error)
	GetOrCreateDM(context.Context, *GetOrCreateDMRequest) (*GetOrCreateDMResponse, error)

	ListMessages(context.Context, *ListMessagesRequest) (*MessagesResponse, error)
	ListThread(context.Context, *ThreadRef) (*MessagesResponse, error)
	SendMessage(context.Context, *SendMessageRequest) (*SendMessageResponse, error)
	EditMessage(context.Context, *EditMessageRequest) (*Empty, error)
	DeleteMessage(context.Context, *MessageRef) (*Empty, error)

	AddReaction(context.Context, *AddReactionRequest) (*AddReactionResponse, error)
	RemoveReaction(context.Context, *ReactionRef) (*Empty, error)
	ListReactions(context.Context, *MessageRef) (*ReactionsResponse, error)

	Watch(*WatchRequest, grpc.ServerStreamingServer[Event]) error
}

// RegisterEchoServer registers srv on s.
func RegisterEchoServer(s grpc.ServiceRegistrar, srv EchoServer) {
	s.RegisterService(&Echo_ServiceDesc, srv)
}

// unary builds the method descriptor for one request/response method.
func unary[Req, Resp any](name string, call func(EchoServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, status.Errorf(codes.InvalidArgument, "decode %s: %v", name, err)
			}
			if interceptor == nil {
				return call(srv.(EchoServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(EchoServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func watchHandler(srv any, stream grpc.ServerStream) error {
	in := new(WatchRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(EchoServer).Watch(in, &grpc.GenericServerStream[WatchRequest, Event]{ServerStream: stream})
}

// Echo_ServiceDesc describes the Echo service for grpc.Server.
var Echo_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*EchoServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Register", EchoServer.Register),
		unary("Login", EchoServer.Login),
		unary("CurrentUser", EchoServer.CurrentUser),
		unary("ListWorkspaceUsers", EchoServer.ListWorkspaceUsers),
		unary("SetupKeys", EchoServer.SetupKeys),
		unary("GetPublicKey", EchoServer.GetPublicKey),
		unary("GetPrivateKey", EchoServer.GetPrivateKey),
		unary("CreateWorkspace", EchoServer.CreateWorkspace),
		unary("ListWorkspaces", EchoServer.ListWorkspaces),
		unary("GetWorkspace", EchoServer.GetWorkspace),
		unary("CreateInvite", EchoServer.CreateInvite),
		unary("GetInviteInfo", EchoServer.GetInviteInfo),
		unary("JoinWorkspace", EchoServer.JoinWorkspace),
		unary("DeactivateInvite", EchoServer.DeactivateInvite),
		unary("ListInvites", EchoServer.ListInvites),
		unary("ListChannels", EchoServer.ListChannels),
		unary("CreateChannel", EchoServer.CreateChannel),
		unary("JoinChannel", EchoServer.JoinChannel),
		unary("GetChannel", EchoServer.GetChannel),
		unary("GetChannelMembers", EchoServer.GetChannelMembers),
		unary("ListDMs", EchoServer.ListDMs),
		unary("GetOrCreateDM", EchoServer.GetOrCreateDM),
		unary("ListMessages", EchoServer.ListMessages),
		unary("ListThread", EchoServer.ListThread),
		unary("SendMessage", EchoServer.SendMessage),
		unary("EditMessage", EchoServer.EditMessage),
		unary("DeleteMessage", EchoServer.DeleteMessage),
		unary("AddReaction", EchoServer.AddReaction),
		unary("RemoveReaction", EchoServer.RemoveReaction),
		unary("ListReactions", EchoServer.ListReactions),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Watch",
			Handler:       watchHandler,
			ServerStreams: true,
		},
	},
	Metadata: "echo/v1/echo.json",
}
