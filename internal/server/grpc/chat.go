package grpcserver

import (
	"context"

	echov1 "github.com/ferdousbhai/echo/api/echo/v1"
	"github.com/ferdousbhai/echo/internal/convert"
	"github.com/ferdousbhai/echo/internal/service"
)

// --- channels ---

func (s *Server) ListChannels(ctx context.Context, req *echov1.WorkspaceRef) (*echov1.ChannelsResponse, error) {
	wsID, err := convert.ParseID("workspaceId", req.WorkspaceID)
	if err != nil {
		return nil, toStatus(err)
	}
	list, err := s.svc.Channels.List(ctx, caller(ctx), wsID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &echov1.ChannelsResponse{Channels: convert.ToChannels(list)}, nil
}

func (s *Server) CreateChannel(ctx context.Context, req *echov1.CreateChannelRequest) (*echov1.ChannelResponse, error) {
	wsID, err := convert.ParseID("workspaceId", req.WorkspaceID)
	if err != nil {
		return nil, toStatus(err)
	}
	ch, err := s.svc.Channels.Create(ctx, caller(ctx), req.Name, req.Description, req.IsPrivate, wsID)
	if err != nil {
		return nil, toStatus(err)
	}
	c := convert.ToChannel(*ch)
	return &echov1.ChannelResponse{Channel: &c}, nil
}

func (s *Server) JoinChannel(ctx context.Context, req *echov1.ChannelRef) (*echov1.Empty, error) {
	id, err := convert.ParseID("channelId", req.ChannelID)
	if err != nil {
		return nil, toStatus(err)
	}
	if err := s.svc.Channels.Join(ctx, caller(ctx), id); err != nil {
		return nil, toStatus(err)
	}
	return &echov1.Empty{}, nil
}

func (s *Server) GetChannel(ctx context.Context, req *echov1.ChannelRef) (*echov1.ChannelResponse, error) {
	id, err := convert.ParseID("channelId", req.ChannelID)
	if err != nil {
		return nil, toStatus(err)
	}
	ch, err := s.svc.Channels.Get(ctx, caller(ctx), id)
	if err != nil {
		return nil, toStatus(err)
	}
	resp := &echov1.ChannelResponse{}
	if ch != nil {
		c := convert.ToChannel(*ch)
		resp.Channel = &c
	}
	return resp, nil
}

func (s *Server) GetChannelMembers(ctx context.Context, req *echov1.ChannelRef) (*echov1.UsersResponse, error) {
	id, err := convert.ParseID("channelId", req.ChannelID)
	if err != nil {
		return nil, toStatus(err)
	}
	users, err := s.svc.Channels.Members(ctx, caller(ctx), id)
	if err != nil {
		return nil, toStatus(err)
	}
	return &echov1.UsersResponse{Users: convert.ToUsers(users)}, nil
}

// --- direct messages ---

func (s *Server) ListDMs(ctx context.Context, req *echov1.WorkspaceRef) (*echov1.DMsResponse, error) {
	wsID, err := convert.ParseID("workspaceId", req.WorkspaceID)
	if err != nil {
		return nil, toStatus(err)
	}
	list, err := s.svc.DMs.List(ctx, caller(ctx), wsID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &echov1.DMsResponse{DMs: convert.ToDMs(list)}, nil
}

func (s *Server) GetOrCreateDM(ctx context.Context, req *echov1.GetOrCreateDMRequest) (*echov1.GetOrCreateDMResponse, error) {
	other, err := convert.ParseID("participantId", req.ParticipantID)
	if err != nil {
		return nil, toStatus(err)
	}
	wsID, err := convert.ParseID("workspaceId", req.WorkspaceID)
	if err != nil {
		return nil, toStatus(err)
	}
	id, err := s.svc.DMs.GetOrCreate(ctx, caller(ctx), other, wsID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &echov1.GetOrCreateDMResponse{DMID: id.String()}, nil
}

// --- messages ---

func (s *Server) ListMessages(ctx context.Context, req *echov1.ListMessagesRequest) (*echov1.MessagesResponse, error) {
	conv, err := convert.ToConversation(req.ChannelID, req.DMID)
	if err != nil {
		return nil, toStatus(err)
	}
	list, err := s.svc.Messages.ListTopLevel(ctx, caller(ctx), conv)
	if err != nil {
		return nil, toStatus(err)
	}
	return &echov1.MessagesResponse{Messages: convert.ToMessages(list)}, nil
}

func (s *Server) ListThread(ctx context.Context, req *echov1.ThreadRef) (*echov1.MessagesResponse, error) {
	id, err := convert.ParseID("threadId", req.ThreadID)
	if err != nil {
		return nil, toStatus(err)
	}
	list, err := s.svc.Messages.ListThread(ctx, caller(ctx), id)
	if err != nil {
		return nil, toStatus(err)
	}
	return &echov1.MessagesResponse{Messages: convert.ToMessages(list)}, nil
}

func (s *Server) SendMessage(ctx context.Context, req *echov1.SendMessageRequest) (*echov1.SendMessageResponse, error) {
	conv, err := convert.ToConversation(req.ChannelID, req.DMID)
	if err != nil {
		return nil, toStatus(err)
	}
	thread, err := convert.ParseOptID("threadId", req.ThreadID)
	if err != nil {
		return nil, toStatus(err)
	}
	m, err := s.svc.Messages.Send(ctx, caller(ctx), service.SendInput{
		Content:       req.Content,
		EncryptionKey: req.EncryptionKey,
		ChannelID:     conv.ChannelID,
		DMID:          conv.DMID,
		ThreadID:      thread,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &echov1.SendMessageResponse{MessageID: m.ID.String()}, nil
}

func (s *Server) EditMessage(ctx context.Context, req *echov1.EditMessageRequest) (*echov1.Empty, error) {
	id, err := convert.ParseID("messageId", req.MessageID)
	if err != nil {
		return nil, toStatus(err)
	}
	if err := s.svc.Messages.Edit(ctx, caller(ctx), id, req.Content, req.EncryptionKey); err != nil {
		return nil, toStatus(err)
	}
	return &echov1.Empty{}, nil
}

func (s *Server) DeleteMessage(ctx context.Context, req *echov1.MessageRef) (*echov1.Empty, error) {
	id, err := convert.ParseID("messageId", req.MessageID)
	if err != nil {
		return nil, toStatus(err)
	}
	if err := s.svc.Messages.Delete(ctx, caller(ctx), id); err != nil {
		return nil, toStatus(err)
	}
	return &echov1.Empty{}, nil
}

// --- reactions ---

func (s *Server) AddReaction(ctx context.Context, req *echov1.AddReactionRequest) (*echov1.AddReactionResponse, error) {
	id, err := convert.ParseID("messageId", req.MessageID)
	if err != nil {
		return nil, toStatus(err)
	}
	removed, err := s.svc.Reactions.Toggle(ctx, caller(ctx), id, req.Emoji)
	if err != nil {
		return nil, toStatus(err)
	}
	return &echov1.AddReactionResponse{Removed: removed}, nil
}

func (s *Server) RemoveReaction(ctx context.Context, req *echov1.ReactionRef) (*echov1.Empty, error) {
	id, err := convert.ParseID("reactionId", req.ReactionID)
	if err != nil {
		return nil, toStatus(err)
	}
	if err := s.svc.Reactions.Remove(ctx, caller(ctx), id); err != nil {
		return nil, toStatus(err)
	}
	return &echov1.Empty{}, nil
}

func (s *Server) ListReactions(ctx context.Context, req *echov1.MessageRef) (*echov1.ReactionsResponse, error) {
	id, err := convert.ParseID("messageId", req.MessageID)
	if err != nil {
		return nil, toStatus(err)
	}
	sums, err := s.svc.Reactions.ListByMessage(ctx, caller(ctx), id)
	if err != nil {
		return nil, toStatus(err)
	}
	return &echov1.ReactionsResponse{Reactions: convert.ToReactions(sums)}, nil
}
