package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"product-catalog-browser/internal/catalog"
	"product-catalog-browser/internal/domain"
	"product-catalog-browser/internal/query"
)

// RequestIDKey is the metadata key carrying the per-call request id.
const RequestIDKey = "x-request-id"

// GRPCHandler implements ProductCatalogServer on top of the catalog engine.
type GRPCHandler struct {
	catalog CatalogService
	parser  *query.Parser
}

var _ ProductCatalogServer = (*GRPCHandler)(nil)

// NewGRPCHandler creates a new GRPCHandler.
func NewGRPCHandler(cs CatalogService, parser *query.Parser) *GRPCHandler {
	if parser == nil {
		parser = query.NewParser(domain.MaxLimit)
	}
	return &GRPCHandler{
		catalog: cs,
		parser:  parser,
	}
}

// --- Helper: Error Mapping ---
func mapCatalogErrorToGrpcStatus(err error, resource string) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, catalog.ErrProductNotFound):
		return status.Errorf(codes.NotFound, "%s not found", resource)
	case errors.Is(err, query.ErrInvalidParam):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return status.FromContextError(err).Err()
	default:
		log.Printf("ERROR: Catalog operation for %s failed: %v", resource, err)
		return status.Errorf(codes.Internal, "Failed to process request for %s", resource)
	}
}

func (h *GRPCHandler) ListProducts(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	values, err := structToValues(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	params, err := h.parser.Parse(values)
	if err != nil {
		return nil, mapCatalogErrorToGrpcStatus(err, "products")
	}

	result, err := h.catalog.Query(ctx, params)
	if err != nil {
		return nil, mapCatalogErrorToGrpcStatus(err, "products")
	}
	return toStruct(result)
}

func (h *GRPCHandler) GetProduct(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	id := req.GetValue()
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "Product ID must not be empty")
	}

	product, err := h.catalog.Lookup(ctx, id)
	if err != nil {
		return nil, mapCatalogErrorToGrpcStatus(err, fmt.Sprintf("Product with ID %q", id))
	}
	return toStruct(product)
}

// structToValues flattens a request Struct into query-string values so the
// gRPC and HTTP transports share one parser.
func structToValues(s *structpb.Struct) (url.Values, error) {
	values := url.Values{}
	for key, v := range s.GetFields() {
		switch kind := v.GetKind().(type) {
		case *structpb.Value_StringValue:
			values.Set(key, kind.StringValue)
		case *structpb.Value_NumberValue:
			values.Set(key, strconv.FormatFloat(kind.NumberValue, 'f', -1, 64))
		case *structpb.Value_NullValue:
		default:
			return nil, fmt.Errorf("field %q must be a string or number", key)
		}
	}
	return values, nil
}

// toStruct converts a JSON-tagged value into a Struct with the same shape as
// the HTTP response body.
func toStruct(v interface{}) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	return s, nil
}

// FromStruct decodes a response Struct into out (a *domain.ListResponse or *domain.Product).
func FromStruct(s *structpb.Struct, out interface{}) error {
	raw, err := protojson.Marshal(s)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// RequestIDInterceptor tags every unary call with a request id, taken from
// the incoming metadata or freshly generated, echoes it in the response
// header and logs the outcome.
func RequestIDInterceptor(logger *log.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		requestID := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if ids := md.Get(RequestIDKey); len(ids) > 0 {
				requestID = ids[0]
			}
		}
		if requestID == "" {
			requestID = uuid.NewString()
		}
		if err := grpc.SetHeader(ctx, metadata.Pairs(RequestIDKey, requestID)); err != nil {
			logger.Printf("WARN: Failed to set request id header: %v", err)
		}

		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Printf("INFO: gRPC %s request_id=%s code=%s duration=%s",
			info.FullMethod, requestID, status.Code(err), time.Since(start))
		return resp, err
	}
}
