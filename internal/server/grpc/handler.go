package grpc

import (
	"context"

	"github.com/dmitrijs2005/kvgate/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Call runs the pipeline. Coded failures travel in the response body with
// an OK status; the outcome trailer tells faults from rejections.
func (s *GRPCServer) Call(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	resp := s.gateway.Handle(ctx, in.AsMap())

	out, err := structpb.NewStruct(resp.Envelope())
	if err != nil {
		s.logger.Error(ctx, "error encoding response", "error", err)
		return nil, status.Error(codes.Internal, "internal error")
	}

	if err := grpc.SetTrailer(ctx, metadata.Pairs(common.OutcomeTrailerName, string(resp.Outcome()))); err != nil {
		s.logger.Warn(ctx, "error setting outcome trailer", "error", err)
	}

	return out, nil
}
