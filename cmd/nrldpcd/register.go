package main

import (
	"google.golang.org/grpc"

	"github.com/observe-l/nrldpc/internal/encsrv"
)

// registerControl is replaced by the grpcproto-tagged build to register
// the generated control service. By default it is a no-op so the binary
// builds without generated protos.
var registerControl = func(_ *grpc.Server, _ *encsrv.Server) {}
