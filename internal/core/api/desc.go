package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "dosecalc.v1.DosageService"

const (
	calculateMethod  = "/" + ServiceName + "/Calculate"
	localizeMethod   = "/" + ServiceName + "/Localize"
	delocalizeMethod = "/" + ServiceName + "/Delocalize"
)

// DosageServer is the server API for DosageService. Requests and responses
// are google.protobuf.Struct documents; field names are listed on each
// DosageService method.
type DosageServer interface {
	Calculate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Localize(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Delocalize(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterDosageServer registers srv on s.
func RegisterDosageServer(s grpc.ServiceRegistrar, srv DosageServer) {
	s.RegisterService(&DosageServiceDesc, srv)
}

// DosageServiceDesc describes DosageService for grpc.Server.
var DosageServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DosageServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Calculate", Handler: unaryHandler(calculateMethod, DosageServer.Calculate)},
		{MethodName: "Localize", Handler: unaryHandler(localizeMethod, DosageServer.Localize)},
		{MethodName: "Delocalize", Handler: unaryHandler(delocalizeMethod, DosageServer.Delocalize)},
	},
	Streams: []grpc.StreamDesc{},
}

type unaryMethod func(DosageServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// unaryHandler adapts a DosageServer method to grpc.MethodHandler.
func unaryHandler(fullMethod string, call unaryMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(DosageServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(DosageServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// DosageClient is the client API for DosageService.
type DosageClient struct {
	cc grpc.ClientConnInterface
}

// NewDosageClient returns a client over cc.
func NewDosageClient(cc grpc.ClientConnInterface) *DosageClient {
	return &DosageClient{cc: cc}
}

func (c *DosageClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Calculate calls DosageService.Calculate.
func (c *DosageClient) Calculate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, calculateMethod, in, opts...)
}

// Localize calls DosageService.Localize.
func (c *DosageClient) Localize(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, localizeMethod, in, opts...)
}

// Delocalize calls DosageService.Delocalize.
func (c *DosageClient) Delocalize(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, delocalizeMethod, in, opts...)
}
