package grpcserver

import (
	"strings"

	echov1 "github.com/ferdousbhai/echo/api/echo/v1"
	"github.com/ferdousbhai/echo/internal/convert"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// TopicsHeader lists the topics a Watch stream actually subscribed to. It is
// sent once the subscription is live.
const TopicsHeader = "echo-topics"

// Watch streams change events until the client goes away.
func (s *Server) Watch(req *echov1.WatchRequest, stream grpc.ServerStreamingServer[echov1.Event]) error {
	ctx := stream.Context()
	events, topics, err := s.svc.Feed.Watch(ctx, caller(ctx), req.Topics)
	if err != nil {
		return toStatus(err)
	}
	if err := stream.SendHeader(metadata.Pairs(TopicsHeader, strings.Join(topics, ","))); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				s.log.Debug("change feed closed", zap.Strings("topics", topics))
				return status.Error(codes.Unavailable, "change feed closed")
			}
			if err := stream.Send(convert.ToEvent(ev)); err != nil {
				return err
			}
		}
	}
}
