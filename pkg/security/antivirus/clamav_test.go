package antivirus

import (
	"context"
	"encoding/binary"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResponse(t *testing.T) {
	infected, threat, err := parseResponse("stream: OK\x00")
	assert.False(t, infected)
	assert.Empty(t, threat)
	assert.NoError(t, err)

	infected, threat, err = parseResponse("stream: Eicar-Signature FOUND\x00")
	assert.True(t, infected)
	assert.Equal(t, "Eicar-Signature", threat)
	assert.NoError(t, err)

	infected, _, err = parseResponse("stream: INSTREAM size limit exceeded. ERROR")
	assert.True(t, infected)
	assert.Error(t, err)

	infected, _, err = parseResponse("")
	assert.True(t, infected)
	assert.Error(t, err)
}

// fakeClamd reads one zINSTREAM session and answers with reply.
func fakeClamd(t *testing.T, reply string) (string, <-chan []byte) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	received := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		cmd := make([]byte, len("zINSTREAM\x00"))
		if _, err := io.ReadFull(conn, cmd); err != nil {
			return
		}
		var body []byte
		size := make([]byte, 4)
		for {
			if _, err := io.ReadFull(conn, size); err != nil {
				return
			}
			n := binary.BigEndian.Uint32(size)
			if n == 0 {
				break
			}
			chunk := make([]byte, n)
			if _, err := io.ReadFull(conn, chunk); err != nil {
				return
			}
			body = append(body, chunk...)
		}
		received <- body
		_, _ = conn.Write([]byte(reply + "\x00"))
	}()
	return ln.Addr().String(), received
}

func TestClamAVScanner_Clean(t *testing.T) {
	addr, received := fakeClamd(t, "stream: OK")
	scanner := NewClamAVScanner(addr, 5*time.Second)

	result := scanner.Scan(context.Background(), "cv.pdf", []byte("%PDF-1.4 hello"))

	assert.False(t, result.Infected)
	assert.NoError(t, result.Error)
	assert.Equal(t, []byte("%PDF-1.4 hello"), <-received)
}

func TestClamAVScanner_Infected(t *testing.T) {
	addr, _ := fakeClamd(t, "stream: Eicar-Signature FOUND")
	scanner := NewClamAVScanner(addr, 5*time.Second)

	result := scanner.Scan(context.Background(), "cv.pdf", []byte("X5O!P%@AP"))

	assert.True(t, result.Infected)
	assert.Equal(t, "Eicar-Signature", result.ThreatName)
}

func TestClamAVScanner_UnreachableFailsClosed(t *testing.T) {
	scanner := NewClamAVScanner("127.0.0.1:1", time.Second)

	result := scanner.Scan(context.Background(), "cv.pdf", []byte("%PDF"))

	assert.True(t, result.Infected)
	assert.Error(t, result.Error)
}

func TestNew_EmptyAddressIsNoOp(t *testing.T) {
	assert.Equal(t, "noop", New("").Name())
	assert.Equal(t, "clamav", New("localhost:3310").Name())
}
