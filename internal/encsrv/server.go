// Package encsrv runs encode jobs against a cache of encoder instances.
// Encoder instances are not safe for concurrent use, so the server keeps
// one per configuration and serializes access to each; jobs for distinct
// configurations run in parallel.
package encsrv

import (
	"errors"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/observe-l/nrldpc/ldpc"
)

// ErrShutdown is returned for jobs submitted after Close.
var ErrShutdown = errors.New("encsrv: server closed")

// Job is one encode request.
type Job struct {
	BaseGraph   ldpc.BaseGraph
	LiftingSize int
	Type        ldpc.EncoderType
	RMLength    int // 0 requests the full-rate codeword
	Input       []byte
}

type encoderKey struct {
	bg  ldpc.BaseGraph
	ls  int
	typ ldpc.EncoderType
}

type cachedEncoder struct {
	mu  sync.Mutex
	enc *ldpc.Encoder
	dst []byte
}

// Server caches encoder instances per configuration.
type Server struct {
	logger  log.Logger
	metrics *metrics

	mu       sync.Mutex
	encoders map[encoderKey]*cachedEncoder
	closed   bool
}

func New(logger log.Logger, reg prometheus.Registerer) *Server {
	return &Server{
		logger:   logger,
		metrics:  newMetrics(reg),
		encoders: make(map[encoderKey]*cachedEncoder),
	}
}

func (s *Server) get(key encoderKey) (*cachedEncoder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrShutdown
	}
	if ce, ok := s.encoders[key]; ok {
		return ce, nil
	}
	enc, err := ldpc.NewEncoder(key.bg, key.ls, key.typ)
	if err != nil {
		return nil, err
	}
	ce := &cachedEncoder{enc: enc}
	s.encoders[key] = ce
	s.metrics.activeEncoders.Inc()
	level.Debug(s.logger).Log("msg", "encoder created",
		"base_graph", key.bg, "lifting_size", key.ls, "type", enc.Type())
	return ce, nil
}

// Encode runs one job and returns the codeword. The returned slice is
// owned by the caller; internal buffers are reused across jobs.
func (s *Server) Encode(job Job) ([]byte, error) {
	ce, err := s.get(encoderKey{job.BaseGraph, job.LiftingSize, job.Type})
	if err != nil {
		s.metrics.encodeErrors.Inc()
		return nil, err
	}
	ce.mu.Lock()
	defer ce.mu.Unlock()

	rm := job.RMLength
	if rm <= 0 {
		rm = ce.enc.CodewordLen()
	} else if eff := ce.enc.EffectiveCodewordLen(rm); eff != rm {
		s.metrics.rmAdjustments.Inc()
		level.Debug(s.logger).Log("msg", "rate-matched length normalized",
			"requested", rm, "effective", eff)
	}

	start := time.Now()
	out, err := ce.enc.EncodeRM(ce.dst, job.Input, rm)
	if err != nil {
		s.metrics.encodeErrors.Inc()
		level.Warn(s.logger).Log("msg", "encode failed",
			"base_graph", job.BaseGraph, "lifting_size", job.LiftingSize, "err", err)
		return nil, err
	}
	ce.dst = out
	s.metrics.encodeSeconds.Observe(time.Since(start).Seconds())
	s.metrics.encodesTotal.WithLabelValues(job.BaseGraph.String()).Inc()
	s.metrics.encodedBits.Add(float64(len(out)))

	cw := make([]byte, len(out))
	copy(cw, out)
	return cw, nil
}

// Close releases every cached encoder. Jobs submitted afterwards fail
// with ErrShutdown.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	for _, ce := range s.encoders {
		ce.mu.Lock()
		ce.enc.Close()
		ce.mu.Unlock()
	}
	s.encoders = nil
	s.metrics.activeEncoders.Set(0)
	return nil
}
