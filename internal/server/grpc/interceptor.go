package grpc

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrijs2005/kvgate/internal/common"
	"github.com/dmitrijs2005/kvgate/internal/server/api"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// requestIDMetadataKey is the metadata form of common.RequestIDHeaderName.
var requestIDMetadataKey = strings.ToLower(common.RequestIDHeaderName)

// requestInterceptor applies the per-request timeout and logs one line per
// call with its request id, duration and response code.
func (s *GRPCServer) requestInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()

	var requestID string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(requestIDMetadataKey); len(values) > 0 {
			requestID = values[0]
		}
	}
	if requestID == "" {
		requestID = uuid.NewString()
	}
	_ = grpc.SetHeader(ctx, metadata.Pairs(requestIDMetadataKey, requestID))

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	resp, err := handler(ctx, req)

	args := []any{
		"request_id", requestID,
		"method", info.FullMethod,
		"status", status.Code(err).String(),
		"duration", time.Since(start),
	}
	if out, ok := resp.(*structpb.Struct); ok && out != nil {
		if r, perr := api.ParseResponse(out.AsMap()); perr == nil {
			args = append(args, "code", r.Code)
		}
	}
	s.logger.Info(ctx, "grpc request", args...)

	return resp, err
}
