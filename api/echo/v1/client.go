package echov1

import (
	"context"

	"google.golang.org/grpc"
)

// EchoClient is a typed client for the Echo service. Every call uses the JSON codec.
type EchoClient struct {
	cc grpc.ClientConnInterface
}

// NewEchoClient wraps a connection.
func NewEchoClient(cc grpc.ClientConnInterface) *EchoClient { return &EchoClient{cc: cc} }

func invoke[Req, Resp any](ctx context.Context, c *EchoClient, method string, in *Req, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{CallOption()}, opts...)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *EchoClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error) {
	return invoke[RegisterRequest, RegisterResponse](ctx, c, "Register", in, opts)
}

func (c *EchoClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginRequest, LoginResponse](ctx, c, "Login", in, opts)
}

func (c *EchoClient) CurrentUser(ctx context.Context, opts ...grpc.CallOption) (*CurrentUserResponse, error) {
	return invoke[Empty, CurrentUserResponse](ctx, c, "CurrentUser", &Empty{}, opts)
}

func (c *EchoClient) ListWorkspaceUsers(ctx context.Context, in *WorkspaceRef, opts ...grpc.CallOption) (*UsersResponse, error) {
	return invoke[WorkspaceRef, UsersResponse](ctx, c, "ListWorkspaceUsers", in, opts)
}

func (c *EchoClient) SetupKeys(ctx context.Context, in *SetupKeysRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[SetupKeysRequest, Empty](ctx, c, "SetupKeys", in, opts)
}

func (c *EchoClient) GetPublicKey(ctx context.Context, in *GetPublicKeyRequest, opts ...grpc.CallOption) (*KeyResponse, error) {
	return invoke[GetPublicKeyRequest, KeyResponse](ctx, c, "GetPublicKey", in, opts)
}

func (c *EchoClient) GetPrivateKey(ctx context.Context, opts ...grpc.CallOption) (*KeyResponse, error) {
	return invoke[Empty, KeyResponse](ctx, c, "GetPrivateKey", &Empty{}, opts)
}

func (c *EchoClient) CreateWorkspace(ctx context.Context, in *CreateWorkspaceRequest, opts ...grpc.CallOption) (*WorkspaceResponse, error) {
	return invoke[CreateWorkspaceRequest, WorkspaceResponse](ctx, c, "CreateWorkspace", in, opts)
}

func (c *EchoClient) ListWorkspaces(ctx context.Context, opts ...grpc.CallOption) (*WorkspacesResponse, error) {
	return invoke[Empty, WorkspacesResponse](ctx, c, "ListWorkspaces", &Empty{}, opts)
}

func (c *EchoClient) GetWorkspace(ctx context.Context, in *WorkspaceRef, opts ...grpc.CallOption) (*WorkspaceResponse, error) {
	return invoke[WorkspaceRef, WorkspaceResponse](ctx, c, "GetWorkspace", in, opts)
}

func (c *EchoClient) CreateInvite(ctx context.Context, in *CreateInviteRequest, opts ...grpc.CallOption) (*InviteResponse, error) {
	return invoke[CreateInviteRequest, InviteResponse](ctx, c, "CreateInvite", in, opts)
}

func (c *EchoClient) GetInviteInfo(ctx context.Context, in *InviteCodeRequest, opts ...grpc.CallOption) (*InviteInfoResponse, error) {
	return invoke[InviteCodeRequest, InviteInfoResponse](ctx, c, "GetInviteInfo", in, opts)
}

func (c *EchoClient) JoinWorkspace(ctx context.Context, in *InviteCodeRequest, opts ...grpc.CallOption) (*JoinWorkspaceResponse, error) {
	return invoke[InviteCodeRequest, JoinWorkspaceResponse](ctx, c, "JoinWorkspace", in, opts)
}

func (c *EchoClient) DeactivateInvite(ctx context.Context, in *InviteRef, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[InviteRef, Empty](ctx, c, "DeactivateInvite", in, opts)
}

func (c *EchoClient) ListInvites(ctx context.Context, in *WorkspaceRef, opts ...grpc.CallOption) (*InvitesResponse, error) {
	return invoke[WorkspaceRef, InvitesResponse](ctx, c, "ListInvites", in, opts)
}

func (c *EchoClient) ListChannels(ctx context.Context, in *WorkspaceRef, opts ...grpc.CallOption) (*ChannelsResponse, error) {
	return invoke[WorkspaceRef, ChannelsResponse](ctx, c, "ListChannels", in, opts)
}

func (c *EchoClient) CreateChannel(ctx context.Context, in *CreateChannelRequest, opts ...grpc.CallOption) (*ChannelResponse, error) {
	return invoke[CreateChannelRequest, ChannelResponse](ctx, c, "CreateChannel", in, opts)
}

func (c *EchoClient) JoinChannel(ctx context.Context, in *ChannelRef, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[ChannelRef, Empty](ctx, c, "JoinChannel", in, opts)
}

func (c *EchoClient) GetChannel(ctx context.Context, in *ChannelRef, opts ...grpc.CallOption) (*ChannelResponse, error) {
	return invoke[ChannelRef, ChannelResponse](ctx, c, "GetChannel", in, opts)
}

func (c *EchoClient) GetChannelMembers(ctx context.Context, in *ChannelRef, opts ...grpc.CallOption) (*UsersResponse, error) {
	return invoke[ChannelRef, UsersResponse](ctx, c, "GetChannelMembers", in, opts)
}

func (c *EchoClient) ListDMs(ctx context.Context, in *WorkspaceRef, opts ...grpc.CallOption) (*DMsResponse, error) {
	return invoke[WorkspaceRef, DMsResponse](ctx, c, "ListDMs", in, opts)
}

func (c *EchoClient) GetOrCreateDM(ctx context.Context, in *GetOrCreateDMRequest, opts ...grpc.CallOption) (*GetOrCreateDMResponse, error) {
	return invoke[GetOrCreateDMRequest, GetOrCreateDMResponse](ctx, c, "GetOrCreateDM", in, opts)
}

func (c *EchoClient) ListMessages(ctx context.Context, in *ListMessagesRequest, opts ...grpc.CallOption) (*MessagesResponse, error) {
	return invoke[ListMessagesRequest, MessagesResponse](ctx, c, "ListMessages", in, opts)
}

func (c *EchoClient) ListThread(ctx context.Context, in *ThreadRef, opts ...grpc.CallOption) (*MessagesResponse, error) {
	return invoke[ThreadRef, MessagesResponse](ctx, c, "ListThread", in, opts)
}

func (c *EchoClient) SendMessage(ctx context.Context, in *SendMessageRequest, opts ...grpc.CallOption) (*SendMessageResponse, error) {
	return invoke[SendMessageRequest, SendMessageResponse](ctx, c, "SendMessage", in, opts)
}

func (c *EchoClient) EditMessage(ctx context.Context, in *EditMessageRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[EditMessageRequest, Empty](ctx, c, "EditMessage", in, opts)
}

func (c *EchoClient) DeleteMessage(ctx context.Context, in *MessageRef, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[MessageRef, Empty](ctx, c, "DeleteMessage", in, opts)
}

func (c *EchoClient) AddReaction(ctx context.Context, in *AddReactionRequest, opts ...grpc.CallOption) (*AddReactionResponse, error) {
	return invoke[AddReactionRequest, AddReactionResponse](ctx, c, "AddReaction", in, opts)
}

func (c *EchoClient) RemoveReaction(ctx context.Context, in *ReactionRef, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[ReactionRef, Empty](ctx, c, "RemoveReaction", in, opts)
}

func (c *EchoClient) ListReactions(ctx context.Context, in *MessageRef, opts ...grpc.CallOption) (*ReactionsResponse, error) {
	return invoke[MessageRef, ReactionsResponse](ctx, c, "ListReactions", in, opts)
}

// Watch opens the change-feed stream.
func (c *EchoClient) Watch(ctx context.Context, in *WatchRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[Event], error) {
	opts = append([]grpc.CallOption{CallOption()}, opts...)
	stream, err := c.cc.NewStream(ctx, &Echo_ServiceDesc.Streams[0], FullMethod("Watch"), opts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[WatchRequest, Event]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}
