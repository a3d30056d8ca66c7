package grpcserver

import (
	"context"

	echov1 "github.com/ferdousbhai/echo/api/echo/v1"
	"github.com/ferdousbhai/echo/internal/convert"
	"github.com/ferdousbhai/echo/internal/model"
)

func (s *Server) CreateWorkspace(ctx context.Context, req *echov1.CreateWorkspaceRequest) (*echov1.WorkspaceResponse, error) {
	ws, err := s.svc.Workspaces.Create(ctx, caller(ctx), req.Name, req.Description, req.IsPublic)
	if err != nil {
		return nil, toStatus(err)
	}
	w := convert.ToWorkspace(*ws, model.RoleAdmin)
	return &echov1.WorkspaceResponse{Workspace: &w}, nil
}

func (s *Server) ListWorkspaces(ctx context.Context, _ *echov1.Empty) (*echov1.WorkspacesResponse, error) {
	list, err := s.svc.Workspaces.List(ctx, caller(ctx))
	if err != nil {
		return nil, toStatus(err)
	}
	return &echov1.WorkspacesResponse{Workspaces: convert.ToWorkspaces(list)}, nil
}

func (s *Server) GetWorkspace(ctx context.Context, req *echov1.WorkspaceRef) (*echov1.WorkspaceResponse, error) {
	wsID, err := convert.ParseID("workspaceId", req.WorkspaceID)
	if err != nil {
		return nil, toStatus(err)
	}
	ws, err := s.svc.Workspaces.Get(ctx, caller(ctx), wsID)
	if err != nil {
		return nil, toStatus(err)
	}
	resp := &echov1.WorkspaceResponse{}
	if ws != nil {
		w := convert.ToWorkspace(ws.Workspace, ws.Role)
		resp.Workspace = &w
	}
	return resp, nil
}

func (s *Server) CreateInvite(ctx context.Context, req *echov1.CreateInviteRequest) (*echov1.InviteResponse, error) {
	wsID, err := convert.ParseID("workspaceId", req.WorkspaceID)
	if err != nil {
		return nil, toStatus(err)
	}
	inv, err := s.svc.Workspaces.CreateInvite(ctx, caller(ctx), wsID, req.MaxUses, req.ExpiresInDays)
	if err != nil {
		return nil, toStatus(err)
	}
	return &echov1.InviteResponse{Invite: convert.ToInvite(*inv)}, nil
}

func (s *Server) GetInviteInfo(ctx context.Context, req *echov1.InviteCodeRequest) (*echov1.InviteInfoResponse, error) {
	info, err := s.svc.Workspaces.GetInviteInfo(ctx, req.InviteCode)
	if err != nil {
		return nil, toStatus(err)
	}
	return &echov1.InviteInfoResponse{Info: convert.ToInviteInfo(info)}, nil
}

func (s *Server) JoinWorkspace(ctx context.Context, req *echov1.InviteCodeRequest) (*echov1.JoinWorkspaceResponse, error) {
	wsID, err := s.svc.Workspaces.Join(ctx, caller(ctx), req.InviteCode)
	if err != nil {
		return nil, toStatus(err)
	}
	return &echov1.JoinWorkspaceResponse{WorkspaceID: wsID.String()}, nil
}

func (s *Server) DeactivateInvite(ctx context.Context, req *echov1.InviteRef) (*echov1.Empty, error) {
	id, err := convert.ParseID("inviteId", req.InviteID)
	if err != nil {
		return nil, toStatus(err)
	}
	if err := s.svc.Workspaces.DeactivateInvite(ctx, caller(ctx), id); err != nil {
		return nil, toStatus(err)
	}
	return &echov1.Empty{}, nil
}

func (s *Server) ListInvites(ctx context.Context, req *echov1.WorkspaceRef) (*echov1.InvitesResponse, error) {
	wsID, err := convert.ParseID("workspaceId", req.WorkspaceID)
	if err != nil {
		return nil, toStatus(err)
	}
	list, err := s.svc.Workspaces.ListInvites(ctx, caller(ctx), wsID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &echov1.InvitesResponse{Invites: convert.ToInvites(list)}, nil
}
