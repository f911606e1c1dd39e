package pb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "vlarm.v1.AlarmService"

// Full method names.
const (
	MethodInterpret    = "/" + ServiceName + "/Interpret"
	MethodListAlarms   = "/" + ServiceName + "/ListAlarms"
	MethodGetAlarm     = "/" + ServiceName + "/GetAlarm"
	MethodUpdateAlarm  = "/" + ServiceName + "/UpdateAlarm"
	MethodDeleteAlarm  = "/" + ServiceName + "/DeleteAlarm"
	MethodSnoozeAlarm  = "/" + ServiceName + "/SnoozeAlarm"
	MethodDismissAlarm = "/" + ServiceName + "/DismissAlarm"
)

// AlarmServiceServer is the server API for the alarm service.
type AlarmServiceServer interface {
	// Interpret schedules an alarm from an utterance and returns the spoken reply.
	Interpret(ctx context.Context, utterance *wrapperspb.StringValue) (*structpb.Struct, error)
	// ListAlarms returns every alarm with its current status.
	ListAlarms(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	// GetAlarm returns one alarm by id.
	GetAlarm(ctx context.Context, id *wrapperspb.StringValue) (*structpb.Struct, error)
	// UpdateAlarm applies the supplied fields to the alarm named by "id".
	UpdateAlarm(ctx context.Context, patch *structpb.Struct) (*structpb.Struct, error)
	// DeleteAlarm removes one alarm by id.
	DeleteAlarm(ctx context.Context, id *wrapperspb.StringValue) (*emptypb.Empty, error)
	// SnoozeAlarm defers the alarm by the configured snooze interval.
	SnoozeAlarm(ctx context.Context, id *wrapperspb.StringValue) (*structpb.Struct, error)
	// DismissAlarm clears the snooze state.
	DismissAlarm(ctx context.Context, id *wrapperspb.StringValue) (*structpb.Struct, error)
}

// UnimplementedAlarmServiceServer answers every method with codes.Unimplemented.
// Embed it to stay forward compatible.
type UnimplementedAlarmServiceServer struct{}

// Interpret implements AlarmServiceServer.
func (UnimplementedAlarmServiceServer) Interpret(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Interpret not implemented")
}

// ListAlarms implements AlarmServiceServer.
func (UnimplementedAlarmServiceServer) ListAlarms(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method ListAlarms not implemented")
}

// GetAlarm implements AlarmServiceServer.
func (UnimplementedAlarmServiceServer) GetAlarm(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetAlarm not implemented")
}

// UpdateAlarm implements AlarmServiceServer.
func (UnimplementedAlarmServiceServer) UpdateAlarm(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateAlarm not implemented")
}

// DeleteAlarm implements AlarmServiceServer.
func (UnimplementedAlarmServiceServer) DeleteAlarm(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method DeleteAlarm not implemented")
}

// SnoozeAlarm implements AlarmServiceServer.
func (UnimplementedAlarmServiceServer) SnoozeAlarm(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method SnoozeAlarm not implemented")
}

// DismissAlarm implements AlarmServiceServer.
func (UnimplementedAlarmServiceServer) DismissAlarm(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method DismissAlarm not implemented")
}

// RegisterAlarmServiceServer registers srv on s.
func RegisterAlarmServiceServer(s grpc.ServiceRegistrar, srv AlarmServiceServer) {
	s.RegisterService(&AlarmServiceDesc, srv)
}

// AlarmServiceDesc describes the alarm service for grpc.Server.
//
//nolint:gochecknoglobals // Service descriptors are package-level by convention.
var AlarmServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AlarmServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Interpret",
			Handler:    unary(MethodInterpret, newStringValue, AlarmServiceServer.Interpret),
		},
		{
			MethodName: "ListAlarms",
			Handler:    unary(MethodListAlarms, newEmpty, AlarmServiceServer.ListAlarms),
		},
		{
			MethodName: "GetAlarm",
			Handler:    unary(MethodGetAlarm, newStringValue, AlarmServiceServer.GetAlarm),
		},
		{
			MethodName: "UpdateAlarm",
			Handler:    unary(MethodUpdateAlarm, newStruct, AlarmServiceServer.UpdateAlarm),
		},
		{
			MethodName: "DeleteAlarm",
			Handler:    unary(MethodDeleteAlarm, newStringValue, AlarmServiceServer.DeleteAlarm),
		},
		{
			MethodName: "SnoozeAlarm",
			Handler:    unary(MethodSnoozeAlarm, newStringValue, AlarmServiceServer.SnoozeAlarm),
		},
		{
			MethodName: "DismissAlarm",
			Handler:    unary(MethodDismissAlarm, newStringValue, AlarmServiceServer.DismissAlarm),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "vlarm/v1/alarm.proto",
}

func newStringValue() *wrapperspb.StringValue { return new(wrapperspb.StringValue) }

func newEmpty() *emptypb.Empty { return new(emptypb.Empty) }

func newStruct() *structpb.Struct { return new(structpb.Struct) }

// unary builds the method handler for one unary call.
func unary[Req, Resp proto.Message](
	fullMethod string,
	newRequest func() Req,
	call func(AlarmServiceServer, context.Context, Req) (Resp, error),
) grpc.MethodHandler {
	invoke := func(srv any, ctx context.Context, req Req) (any, error) {
		server, ok := srv.(AlarmServiceServer)
		if !ok {
			return nil, status.Errorf(codes.Internal, "%T does not implement %s", srv, ServiceName)
		}

		resp, err := call(server, ctx, req)
		if err != nil {
			return nil, err
		}

		return resp, nil
	}

	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := newRequest()
		if err := dec(in); err != nil {
			return nil, err
		}

		if interceptor == nil {
			return invoke(srv, ctx, in)
		}

		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}

		handler := func(ctx context.Context, req any) (any, error) {
			typed, ok := req.(Req)
			if !ok {
				return nil, status.Errorf(codes.InvalidArgument, "unexpected request type %T", req)
			}

			return invoke(srv, ctx, typed)
		}

		return interceptor(ctx, in, info, handler)
	}
}

// AlarmServiceClient is the client API for the alarm service.
type AlarmServiceClient interface {
	Interpret(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListAlarms(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetAlarm(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	UpdateAlarm(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	DeleteAlarm(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error)
	SnoozeAlarm(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	DismissAlarm(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type alarmServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewAlarmServiceClient returns a client that sends calls over cc.
func NewAlarmServiceClient(cc grpc.ClientConnInterface) AlarmServiceClient {
	return &alarmServiceClient{cc: cc}
}

func (c *alarmServiceClient) Interpret(
	ctx context.Context,
	in *wrapperspb.StringValue,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return invoke(ctx, c.cc, MethodInterpret, in, newStruct(), opts)
}

func (c *alarmServiceClient) ListAlarms(
	ctx context.Context,
	in *emptypb.Empty,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return invoke(ctx, c.cc, MethodListAlarms, in, newStruct(), opts)
}

func (c *alarmServiceClient) GetAlarm(
	ctx context.Context,
	in *wrapperspb.StringValue,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return invoke(ctx, c.cc, MethodGetAlarm, in, newStruct(), opts)
}

func (c *alarmServiceClient) UpdateAlarm(
	ctx context.Context,
	in *structpb.Struct,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return invoke(ctx, c.cc, MethodUpdateAlarm, in, newStruct(), opts)
}

func (c *alarmServiceClient) DeleteAlarm(
	ctx context.Context,
	in *wrapperspb.StringValue,
	opts ...grpc.CallOption,
) (*emptypb.Empty, error) {
	return invoke(ctx, c.cc, MethodDeleteAlarm, in, newEmpty(), opts)
}

func (c *alarmServiceClient) SnoozeAlarm(
	ctx context.Context,
	in *wrapperspb.StringValue,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return invoke(ctx, c.cc, MethodSnoozeAlarm, in, newStruct(), opts)
}

func (c *alarmServiceClient) DismissAlarm(
	ctx context.Context,
	in *wrapperspb.StringValue,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return invoke(ctx, c.cc, MethodDismissAlarm, in, newStruct(), opts)
}

func invoke[Resp proto.Message](
	ctx context.Context,
	cc grpc.ClientConnInterface,
	method string,
	in proto.Message,
	out Resp,
	opts []grpc.CallOption,
) (Resp, error) {
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		var zero Resp

		return zero, err
	}

	return out, nil
}
