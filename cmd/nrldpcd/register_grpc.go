//go:build grpcproto

package main

import (
	"context"

	pb "github.com/observe-l/nrldpc/gen/nrldpc"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/observe-l/nrldpc/internal/encsrv"
	"github.com/observe-l/nrldpc/ldpc"
)

// controlGRPC wraps the encode server into the generated gRPC interface.
type controlGRPC struct {
	pb.UnimplementedControlServer
	inner *encsrv.Server
}

func init() {
	registerControl = func(grpcSrv *grpc.Server, inner *encsrv.Server) {
		pb.RegisterControlServer(grpcSrv, &controlGRPC{inner: inner})
	}
}

func (c *controlGRPC) Ping(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	return &emptypb.Empty{}, nil
}

func (c *controlGRPC) Encode(ctx context.Context, req *pb.EncodeRequest) (*pb.EncodeResponse, error) {
	bg := ldpc.BG1
	if req.BaseGraph == 2 {
		bg = ldpc.BG2
	}
	cw, err := c.inner.Encode(encsrv.Job{
		BaseGraph:   bg,
		LiftingSize: int(req.LiftingSize),
		Type:        ldpc.EncoderType(req.Type),
		RMLength:    int(req.RmLength),
		Input:       req.Input,
	})
	if err != nil {
		return nil, err
	}
	return &pb.EncodeResponse{Codeword: cw}, nil
}
