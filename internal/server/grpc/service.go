package grpc

import (
	"context"

	"github.com/dmitrijs2005/kvgate/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// GatewayServer is the server side of kvgate.Gateway. Request and response
// are google.protobuf.Struct values shaped like the JSON envelopes.
type GatewayServer interface {
	Call(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

// GatewayServiceDesc describes kvgate.Gateway for grpc.ServiceRegistrar.
var GatewayServiceDesc = grpc.ServiceDesc{
	ServiceName: common.GatewayServiceName,
	HandlerType: (*GatewayServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Call",
			Handler:    callHandler,
		},
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterGatewayServer registers srv on s.
func RegisterGatewayServer(s grpc.ServiceRegistrar, srv GatewayServer) {
	s.RegisterService(&GatewayServiceDesc, srv)
}

func callHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(GatewayServer).Call(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: common.GatewayCallMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(GatewayServer).Call(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}
