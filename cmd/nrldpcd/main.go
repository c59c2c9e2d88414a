// nrldpcd serves LDPC encode jobs over a length-prefixed TCP protocol and
// exposes Prometheus metrics. An optional gRPC control listener can be
// compiled in with the grpcproto build tag once the protobuf stubs are
// generated.
package main

import (
	"flag"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"

	"github.com/observe-l/nrldpc/internal/encsrv"
	"github.com/observe-l/nrldpc/internal/ldpcwire"
	"github.com/observe-l/nrldpc/ldpc"
)

// maxInputBits bounds one job's message: the largest message either graph
// can carry is 22*384 bits, anything bigger is a protocol violation.
const maxInputBits = 22 * 384

func main() {
	var (
		listenAddr  = flag.String("listen", ":5711", "encode job listener address")
		metricsAddr = flag.String("metrics", ":9095", "Prometheus metrics address (empty disables)")
		grpcAddr    = flag.String("grpc", "", "gRPC control address (empty disables)")
		debug       = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	if *debug {
		logger = level.NewFilter(logger, level.AllowDebug())
	} else {
		logger = level.NewFilter(logger, level.AllowInfo())
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	srv := encsrv.New(logger, reg)
	defer srv.Close()

	ln, err := net.Listen("tcp", *listenAddr)
	if err != nil {
		level.Error(logger).Log("msg", "listen failed", "addr", *listenAddr, "err", err)
		os.Exit(1)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-c
		level.Info(logger).Log("msg", "shutting down")
		_ = ln.Close()
		_ = srv.Close()
		os.Exit(0)
	}()

	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				level.Error(logger).Log("msg", "metrics server failed", "err", err)
			}
		}()
		level.Info(logger).Log("msg", "metrics listening", "addr", *metricsAddr)
	}

	if *grpcAddr != "" {
		gln, err := net.Listen("tcp", *grpcAddr)
		if err != nil {
			level.Error(logger).Log("msg", "grpc listen failed", "addr", *grpcAddr, "err", err)
			os.Exit(1)
		}
		grpcSrv := grpc.NewServer()
		registerControl(grpcSrv, srv)
		go func() {
			if err := grpcSrv.Serve(gln); err != nil {
				level.Error(logger).Log("msg", "grpc serve failed", "err", err)
			}
		}()
		level.Info(logger).Log("msg", "grpc control listening", "addr", *grpcAddr)
	}

	level.Info(logger).Log("msg", "encode listener ready", "addr", *listenAddr)
	for {
		conn, err := ln.Accept()
		if err != nil {
			level.Info(logger).Log("msg", "accept loop stopped", "err", err)
			return
		}
		go handleConn(conn, srv, logger)
	}
}

func handleConn(conn net.Conn, srv *encsrv.Server, logger log.Logger) {
	defer conn.Close()
	hdr := make([]byte, ldpcwire.JobHeaderLen)
	respHdr := make([]byte, ldpcwire.ResponseHeaderLen)
	var input []byte
	for {
		if _, err := io.ReadFull(conn, hdr); err != nil {
			if err != io.EOF {
				level.Debug(logger).Log("msg", "read header", "err", err)
			}
			return
		}
		var h ldpcwire.JobHeader
		if !h.UnmarshalBinary(hdr) || h.Version != ldpcwire.Version1 || h.InputLen > maxInputBits {
			writeResponse(conn, respHdr, h.JobID, ldpcwire.StatusBadRequest, nil)
			return
		}
		if cap(input) < int(h.InputLen) {
			input = make([]byte, h.InputLen)
		}
		input = input[:h.InputLen]
		if _, err := io.ReadFull(conn, input); err != nil {
			level.Debug(logger).Log("msg", "read payload", "err", err)
			return
		}

		job, ok := jobFromHeader(&h, input)
		if !ok {
			if !writeResponse(conn, respHdr, h.JobID, ldpcwire.StatusBadRequest, nil) {
				return
			}
			continue
		}
		cw, err := srv.Encode(job)
		if err != nil {
			if !writeResponse(conn, respHdr, h.JobID, ldpcwire.StatusEncodeErr, nil) {
				return
			}
			continue
		}
		if !writeResponse(conn, respHdr, h.JobID, ldpcwire.StatusOK, cw) {
			return
		}
	}
}

func jobFromHeader(h *ldpcwire.JobHeader, input []byte) (encsrv.Job, bool) {
	var bg ldpc.BaseGraph
	switch h.BaseGraph {
	case 1:
		bg = ldpc.BG1
	case 2:
		bg = ldpc.BG2
	default:
		return encsrv.Job{}, false
	}
	var typ ldpc.EncoderType
	switch h.Type {
	case ldpcwire.TypeAuto:
		typ = ldpc.TypeAuto
	case ldpcwire.TypeGeneric:
		typ = ldpc.TypeGeneric
	case ldpcwire.TypePacked:
		typ = ldpc.TypePacked
	default:
		return encsrv.Job{}, false
	}
	return encsrv.Job{
		BaseGraph:   bg,
		LiftingSize: int(h.LiftingSize),
		Type:        typ,
		RMLength:    int(h.RMLength),
		Input:       input,
	}, true
}

func writeResponse(conn net.Conn, scratch []byte, jobID uint32, status uint8, cw []byte) bool {
	r := ldpcwire.ResponseHeader{
		Version:     ldpcwire.Version1,
		Status:      status,
		JobID:       jobID,
		CodewordLen: uint32(len(cw)),
	}
	if _, err := conn.Write(r.MarshalBinary(scratch)); err != nil {
		return false
	}
	if len(cw) > 0 {
		if _, err := conn.Write(cw); err != nil {
			return false
		}
	}
	return true
}
