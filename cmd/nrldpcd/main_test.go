package main

import (
	"bytes"
	"io"
	"math/rand"
	"net"
	"testing"

	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/observe-l/nrldpc/internal/encsrv"
	"github.com/observe-l/nrldpc/internal/ldpcwire"
	"github.com/observe-l/nrldpc/ldpc"
)

func startHandler(t *testing.T) (net.Conn, chan struct{}) {
	t.Helper()
	srv := encsrv.New(log.NewNopLogger(), prometheus.NewRegistry())
	t.Cleanup(func() { srv.Close() })

	client, server := net.Pipe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		handleConn(server, srv, log.NewNopLogger())
	}()
	return client, done
}

func sendJob(t *testing.T, conn net.Conn, h ldpcwire.JobHeader, payload []byte) {
	t.Helper()
	if _, err := conn.Write(h.MarshalBinary(nil)); err != nil {
		t.Fatalf("write header: %v", err)
	}
	if len(payload) > 0 {
		if _, err := conn.Write(payload); err != nil {
			t.Fatalf("write payload: %v", err)
		}
	}
}

func readReply(t *testing.T, conn net.Conn) (ldpcwire.ResponseHeader, []byte) {
	t.Helper()
	buf := make([]byte, ldpcwire.ResponseHeaderLen)
	if _, err := io.ReadFull(conn, buf); err != nil {
		t.Fatalf("read response header: %v", err)
	}
	var r ldpcwire.ResponseHeader
	if !r.UnmarshalBinary(buf) {
		t.Fatalf("bad response header")
	}
	var cw []byte
	if r.Status == ldpcwire.StatusOK && r.CodewordLen > 0 {
		cw = make([]byte, r.CodewordLen)
		if _, err := io.ReadFull(conn, cw); err != nil {
			t.Fatalf("read codeword: %v", err)
		}
	}
	return r, cw
}

func TestHandleConnRoundTrip(t *testing.T) {
	conn, done := startHandler(t)

	direct, err := ldpc.NewEncoder(ldpc.BG2, 16, ldpc.TypeAuto)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	defer direct.Close()

	rng := rand.New(rand.NewSource(21))
	msg := make([]byte, direct.MessageLen())
	for i := range msg {
		msg[i] = byte(rng.Intn(2))
	}
	want, err := direct.Encode(nil, msg)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	// Full-rate job.
	sendJob(t, conn, ldpcwire.JobHeader{
		Version:     ldpcwire.Version1,
		BaseGraph:   2,
		Type:        ldpcwire.TypeAuto,
		LiftingSize: 16,
		JobID:       1,
		InputLen:    uint32(len(msg)),
	}, msg)
	r, cw := readReply(t, conn)
	if r.Status != ldpcwire.StatusOK || r.JobID != 1 {
		t.Fatalf("full-rate reply: %+v", r)
	}
	if !bytes.Equal(cw, want) {
		t.Fatalf("daemon codeword differs from local encode")
	}

	// Rate-matched job on the same connection, unaligned request.
	req := direct.EffectiveCodewordLen(0) + 5
	wantRM, err := direct.EncodeRM(nil, msg, req)
	if err != nil {
		t.Fatalf("EncodeRM: %v", err)
	}
	sendJob(t, conn, ldpcwire.JobHeader{
		Version:     ldpcwire.Version1,
		BaseGraph:   2,
		Type:        ldpcwire.TypeAuto,
		LiftingSize: 16,
		JobID:       2,
		InputLen:    uint32(len(msg)),
		RMLength:    uint32(req),
	}, msg)
	r, cw = readReply(t, conn)
	if r.Status != ldpcwire.StatusOK || r.JobID != 2 {
		t.Fatalf("rate-matched reply: %+v", r)
	}
	if !bytes.Equal(cw, wantRM) {
		t.Fatalf("daemon rate-matched codeword differs from local encode")
	}

	// Unsupported lifting size: error reply, connection stays usable.
	bad := make([]byte, 22*5)
	sendJob(t, conn, ldpcwire.JobHeader{
		Version:     ldpcwire.Version1,
		BaseGraph:   1,
		Type:        ldpcwire.TypeAuto,
		LiftingSize: 5,
		JobID:       3,
		InputLen:    uint32(len(bad)),
	}, bad)
	r, _ = readReply(t, conn)
	if r.Status != ldpcwire.StatusEncodeErr || r.JobID != 3 {
		t.Fatalf("bad lifting size reply: %+v", r)
	}

	sendJob(t, conn, ldpcwire.JobHeader{
		Version:     ldpcwire.Version1,
		BaseGraph:   2,
		Type:        ldpcwire.TypeAuto,
		LiftingSize: 16,
		JobID:       4,
		InputLen:    uint32(len(msg)),
	}, msg)
	r, cw = readReply(t, conn)
	if r.Status != ldpcwire.StatusOK || r.JobID != 4 {
		t.Fatalf("post-error reply: %+v", r)
	}
	if !bytes.Equal(cw, want) {
		t.Fatalf("post-error codeword differs")
	}

	conn.Close()
	<-done
}

func TestHandleConnRejectsBadFrame(t *testing.T) {
	conn, done := startHandler(t)

	// Wrong protocol version: the handler answers and drops the link.
	sendJob(t, conn, ldpcwire.JobHeader{
		Version:     99,
		BaseGraph:   2,
		LiftingSize: 16,
		JobID:       7,
	}, nil)
	r, _ := readReply(t, conn)
	if r.Status != ldpcwire.StatusBadRequest || r.JobID != 7 {
		t.Fatalf("bad version reply: %+v", r)
	}
	<-done
	buf := make([]byte, 1)
	if _, err := conn.Read(buf); err == nil {
		t.Fatalf("connection still open after protocol error")
	}
	conn.Close()
}
