package grpcserver

import (
	"context"
	"net/http"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"medilink/internal/apperrors"
	"medilink/internal/auth"
	"medilink/internal/marketplace"
	"medilink/models"
)

const notificationFeedService = "medilink.v1.NotificationFeed"

// NotificationFeedServer is the caller's notification inbox over gRPC. Messages are
// protobuf well-known types so clients need no generated stubs.
type NotificationFeedServer interface {
	List(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
	UnreadCount(context.Context, *emptypb.Empty) (*wrapperspb.Int64Value, error)
	MarkRead(context.Context, *wrapperspb.Int64Value) (*emptypb.Empty, error)
	MarkAllRead(context.Context, *emptypb.Empty) (*wrapperspb.Int64Value, error)
}

func RegisterNotificationFeedServer(s grpc.ServiceRegistrar, srv NotificationFeedServer) {
	s.RegisterService(&notificationFeedDesc, srv)
}

var notificationFeedDesc = grpc.ServiceDesc{
	ServiceName: notificationFeedService,
	HandlerType: (*NotificationFeedServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "List", Handler: unaryHandler("List", func(s NotificationFeedServer, ctx context.Context, in *emptypb.Empty) (any, error) {
			return s.List(ctx, in)
		})},
		{MethodName: "UnreadCount", Handler: unaryHandler("UnreadCount", func(s NotificationFeedServer, ctx context.Context, in *emptypb.Empty) (any, error) {
			return s.UnreadCount(ctx, in)
		})},
		{MethodName: "MarkRead", Handler: unaryHandler("MarkRead", func(s NotificationFeedServer, ctx context.Context, in *wrapperspb.Int64Value) (any, error) {
			return s.MarkRead(ctx, in)
		})},
		{MethodName: "MarkAllRead", Handler: unaryHandler("MarkAllRead", func(s NotificationFeedServer, ctx context.Context, in *emptypb.Empty) (any, error) {
			return s.MarkAllRead(ctx, in)
		})},
	},
	Streams: []grpc.StreamDesc{},
}

// unaryHandler adapts a typed method to grpc.MethodDesc, running the server's interceptor chain.
func unaryHandler[Req any, PReq interface {
	*Req
}](method string, call func(NotificationFeedServer, context.Context, PReq) (any, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	fullMethod := "/" + notificationFeedService + "/" + method
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := PReq(new(Req))
		if err := dec(in); err != nil {
			return nil, err
		}
		s := srv.(NotificationFeedServer)
		if interceptor == nil {
			return call(s, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			return call(s, ctx, req.(PReq))
		})
	}
}

// FeedServer serves NotificationFeed from the notification service.
type FeedServer struct {
	Notifications *marketplace.NotificationService
}

var _ NotificationFeedServer = (*FeedServer)(nil)

func (s *FeedServer) List(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	p, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	notes, err := s.Notifications.List(ctx, p)
	if err != nil {
		return nil, toStatus(err)
	}
	items := make([]any, 0, len(notes))
	for _, n := range notes {
		items = append(items, notificationFields(n))
	}
	list, err := structpb.NewList(items)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode notifications: %v", err)
	}
	return list, nil
}

func (s *FeedServer) UnreadCount(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.Int64Value, error) {
	p, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	n, err := s.Notifications.UnreadCount(ctx, p)
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.Int64(int64(n)), nil
}

func (s *FeedServer) MarkRead(ctx context.Context, req *wrapperspb.Int64Value) (*emptypb.Empty, error) {
	if req == nil || req.GetValue() <= 0 {
		return nil, status.Error(codes.InvalidArgument, "notification id is required")
	}
	p, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.Notifications.MarkRead(ctx, p, req.GetValue()); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *FeedServer) MarkAllRead(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.Int64Value, error) {
	p, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	n, err := s.Notifications.MarkAllRead(ctx, p)
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.Int64(n), nil
}

func notificationFields(n models.Notification) map[string]any {
	return map[string]any{
		"notification_id": n.ID,
		"sender_id":       n.SenderID,
		"sender_type":     string(n.SenderType),
		"type":            string(n.Type),
		"message":         n.Message,
		"is_read":         n.IsRead,
		"created_at":      n.CreatedAt,
	}
}

// toStatus maps an application error onto the closest gRPC code.
func toStatus(err error) error {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		return status.Errorf(codes.Internal, "%v", err)
	}
	code := codes.Internal
	switch appErr.HTTPCode {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge, http.StatusUnsupportedMediaType:
		code = codes.InvalidArgument
	case http.StatusUnauthorized:
		code = codes.Unauthenticated
	case http.StatusForbidden:
		code = codes.PermissionDenied
	case http.StatusNotFound:
		code = codes.NotFound
	case http.StatusConflict:
		code = codes.AlreadyExists
	}
	if code == codes.Internal {
		return status.Error(code, "internal server error")
	}
	return status.Error(code, appErr.Message)
}
