// Package grpc_control is the operator control plane. Messages are the
// well-known protobuf types, so the service is described by hand instead of
// generated from a .proto file.
package grpc_control

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "marketdash.control.v1.Control"

// ControlServer is the server API for the Control service.
type ControlServer interface {
	GetSnapshot(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	SetWatchList(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetAlternate(context.Context, *wrapperspb.BoolValue) (*wrapperspb.BoolValue, error)
	Refresh(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	ListProviders(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
	RunSelfTest(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
}

func RegisterControlServer(s grpc.ServiceRegistrar, srv ControlServer) {
	s.RegisterService(&ControlServiceDesc, srv)
}

var ControlServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ControlServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("GetSnapshot", ControlServer.GetSnapshot),
		unary("SetWatchList", ControlServer.SetWatchList),
		unary("SetAlternate", ControlServer.SetAlternate),
		unary("Refresh", ControlServer.Refresh),
		unary("ListProviders", ControlServer.ListProviders),
		unary("RunSelfTest", ControlServer.RunSelfTest),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "marketdash/control/v1/control.proto",
}

// unary builds the method descriptor the generator would emit for one RPC.
func unary[Req any, Resp any](method string, call func(ControlServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + method
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(ControlServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(ControlServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// -----------------------------------------------------------------------------
// Client
// -----------------------------------------------------------------------------

type ControlClient struct {
	cc grpc.ClientConnInterface
}

func NewControlClient(cc grpc.ClientConnInterface) *ControlClient {
	return &ControlClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts ...grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ControlClient) GetSnapshot(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, "GetSnapshot", &emptypb.Empty{}, opts...)
}

func (c *ControlClient) SetWatchList(ctx context.Context, symbols []string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	values := make([]interface{}, len(symbols))
	for i, s := range symbols {
		values[i] = s
	}
	in, err := structpb.NewStruct(map[string]interface{}{"symbols": values})
	if err != nil {
		return nil, err
	}
	return invoke[structpb.Struct](ctx, c.cc, "SetWatchList", in, opts...)
}

func (c *ControlClient) SetAlternate(ctx context.Context, enabled bool, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error) {
	return invoke[wrapperspb.BoolValue](ctx, c.cc, "SetAlternate", wrapperspb.Bool(enabled), opts...)
}

func (c *ControlClient) Refresh(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, "Refresh", &emptypb.Empty{}, opts...)
}

func (c *ControlClient) ListProviders(ctx context.Context, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	return invoke[structpb.ListValue](ctx, c.cc, "ListProviders", &emptypb.Empty{}, opts...)
}

func (c *ControlClient) RunSelfTest(ctx context.Context, provider string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, "RunSelfTest", wrapperspb.String(provider), opts...)
}
