package ldpc_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/observe-l/nrldpc/internal/encsrv"
	"github.com/observe-l/nrldpc/internal/ldpcwire"
	"github.com/observe-l/nrldpc/ldpc"
)

// wireJob maps a wire header onto a server job the way the daemon does.
func wireJob(t *testing.T, h *ldpcwire.JobHeader, input []byte) encsrv.Job {
	t.Helper()
	var bg ldpc.BaseGraph
	switch h.BaseGraph {
	case 1:
		bg = ldpc.BG1
	case 2:
		bg = ldpc.BG2
	default:
		t.Fatalf("wire base graph %d", h.BaseGraph)
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
		t.Fatalf("wire type %d", h.Type)
	}
	return encsrv.Job{
		BaseGraph:   bg,
		LiftingSize: int(h.LiftingSize),
		Type:        typ,
		RMLength:    int(h.RMLength),
		Input:       input,
	}
}

func TestServiceWireRoundTrip(t *testing.T) {
	srv := encsrv.New(log.NewNopLogger(), prometheus.NewRegistry())
	defer srv.Close()

	direct, err := ldpc.NewEncoder(ldpc.BG2, 52, ldpc.TypePacked)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	defer direct.Close()
	msg := randomMessage(direct.MessageLen(), 11)
	want, err := direct.Encode(nil, msg)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	for _, wireType := range []uint8{ldpcwire.TypeAuto, ldpcwire.TypeGeneric, ldpcwire.TypePacked} {
		in := ldpcwire.JobHeader{
			Version:     ldpcwire.Version1,
			BaseGraph:   2,
			Type:        wireType,
			LiftingSize: 52,
			JobID:       uint32(1000 + wireType),
			InputLen:    uint32(len(msg)),
			RMLength:    0, // full rate
		}
		frame := in.MarshalBinary(nil)

		var h ldpcwire.JobHeader
		if !h.UnmarshalBinary(frame) {
			t.Fatalf("header did not survive the wire")
		}
		if h != in {
			t.Fatalf("header round trip mismatch: %+v != %+v", h, in)
		}

		cw, err := srv.Encode(wireJob(t, &h, msg))
		if err != nil {
			t.Fatalf("wire type %d: Encode: %v", wireType, err)
		}
		if !bytes.Equal(cw, want) {
			t.Fatalf("wire type %d: codeword differs from direct encode", wireType)
		}

		resp := ldpcwire.ResponseHeader{
			Version:     ldpcwire.Version1,
			Status:      ldpcwire.StatusOK,
			JobID:       h.JobID,
			CodewordLen: uint32(len(cw)),
		}
		rb := resp.MarshalBinary(nil)
		var gotResp ldpcwire.ResponseHeader
		if !gotResp.UnmarshalBinary(rb) || gotResp != resp {
			t.Fatalf("response round trip mismatch")
		}
	}
}

func TestServiceWireRateMatched(t *testing.T) {
	srv := encsrv.New(log.NewNopLogger(), prometheus.NewRegistry())
	defer srv.Close()

	direct, err := ldpc.NewEncoder(ldpc.BG1, 24, ldpc.TypeAuto)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	defer direct.Close()
	msg := randomMessage(direct.MessageLen(), 12)

	req := direct.EffectiveCodewordLen(0) + 100
	h := ldpcwire.JobHeader{
		Version:     ldpcwire.Version1,
		BaseGraph:   1,
		Type:        ldpcwire.TypeAuto,
		LiftingSize: 24,
		InputLen:    uint32(len(msg)),
		RMLength:    uint32(req),
	}
	cw, err := srv.Encode(wireJob(t, &h, msg))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if want := direct.EffectiveCodewordLen(req); len(cw) != want {
		t.Fatalf("rate-matched codeword %d bits, want %d", len(cw), want)
	}
}

// TestConcurrentEncoders runs one encoder pair per goroutine across a grid
// of configurations and checks the tiers agree under concurrency. Encoder
// instances are not shared between goroutines.
func TestConcurrentEncoders(t *testing.T) {
	var g errgroup.Group
	g.SetLimit(8)
	for _, pair := range pipelinePairs {
		pair := pair
		g.Go(func() error {
			gen, err := ldpc.NewEncoder(pair.bg, pair.ls, ldpc.TypeGeneric)
			if err != nil {
				return err
			}
			defer gen.Close()
			pk, err := ldpc.NewEncoder(pair.bg, pair.ls, ldpc.TypePacked)
			if err != nil {
				return err
			}
			defer pk.Close()

			var dstG, dstP []byte
			for i := 0; i < 10; i++ {
				msg := randomMessage(gen.MessageLen(), int64(100*pair.ls+i))
				dstG, err = gen.Encode(dstG, msg)
				if err != nil {
					return err
				}
				dstP, err = pk.Encode(dstP, msg)
				if err != nil {
					return err
				}
				if !bytes.Equal(dstG, dstP) {
					return fmt.Errorf("%v ls=%d run %d: tiers disagree", pair.bg, pair.ls, i)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
}
