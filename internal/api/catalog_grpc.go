package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// The catalog service is described by hand instead of through generated
// stubs: requests and responses are protobuf well-known types, so no .proto
// compilation step is needed.
const (
	ProductCatalogServiceName = "catalog.v1.ProductCatalog"
	ListProductsMethod        = "/" + ProductCatalogServiceName + "/ListProducts"
	GetProductMethod          = "/" + ProductCatalogServiceName + "/GetProduct"
)

// ProductCatalogServer is the server API for the catalog.v1.ProductCatalog service.
//
// ListProducts takes a Struct with the same keys as the HTTP query string
// (page, limit, query, category, stock, sort) and returns a list response.
// GetProduct takes the product id and returns the product.
type ProductCatalogServer interface {
	ListProducts(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetProduct(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
}

// RegisterProductCatalogServer registers srv on s.
func RegisterProductCatalogServer(s grpc.ServiceRegistrar, srv ProductCatalogServer) {
	s.RegisterService(&ProductCatalogServiceDesc, srv)
}

func listProductsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ProductCatalogServer).ListProducts(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ListProductsMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ProductCatalogServer).ListProducts(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func getProductHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ProductCatalogServer).GetProduct(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: GetProductMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ProductCatalogServer).GetProduct(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// ProductCatalogServiceDesc is the grpc.ServiceDesc for the catalog.v1.ProductCatalog service.
var ProductCatalogServiceDesc = grpc.ServiceDesc{
	ServiceName: ProductCatalogServiceName,
	HandlerType: (*ProductCatalogServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ListProducts",
			Handler:    listProductsHandler,
		},
		{
			MethodName: "GetProduct",
			Handler:    getProductHandler,
		},
	},
	Streams: []grpc.StreamDesc{},
}

// ProductCatalogClient is the client API for the catalog.v1.ProductCatalog service.
type ProductCatalogClient interface {
	ListProducts(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetProduct(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type productCatalogClient struct {
	cc grpc.ClientConnInterface
}

// NewProductCatalogClient creates a client stub over cc.
func NewProductCatalogClient(cc grpc.ClientConnInterface) ProductCatalogClient {
	return &productCatalogClient{cc}
}

func (c *productCatalogClient) ListProducts(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ListProductsMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *productCatalogClient) GetProduct(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GetProductMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
