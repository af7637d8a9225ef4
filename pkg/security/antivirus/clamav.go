package antivirus

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"strings"
	"time"
)

// clamd rejects chunks above StreamMaxLength; 1 MiB stays well under the default.
const chunkSize = 1 << 20

// ClamAVScanner connects to a clamd daemon for malware scanning
type ClamAVScanner struct {
	address string // TCP host:port or Unix socket path
	timeout time.Duration
}

var _ Scanner = (*ClamAVScanner)(nil)

// NewClamAVScanner creates a ClamAV scanner.
// address: TCP "localhost:3310" or Unix socket "/var/run/clamav/clamd.sock"
func NewClamAVScanner(address string, timeout time.Duration) *ClamAVScanner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ClamAVScanner{
		address: address,
		timeout: timeout,
	}
}

func (c *ClamAVScanner) Name() string {
	return "clamav"
}

func (c *ClamAVScanner) network() string {
	if strings.HasPrefix(c.address, "/") {
		return "unix"
	}
	return "tcp"
}

// Scan streams the file to clamd with the zINSTREAM command
func (c *ClamAVScanner) Scan(ctx context.Context, filename string, data []byte) ScanResult {
	result := ScanResult{ScannerName: c.Name()}
	fail := func(err error) ScanResult {
		result.Infected = true
		result.Error = err
		return result
	}

	dialer := net.Dialer{Timeout: c.timeout}
	conn, err := dialer.DialContext(ctx, c.network(), c.address)
	if err != nil {
		return fail(fmt.Errorf("failed to connect to clamd: %w", err))
	}
	defer conn.Close()

	_ = conn.SetDeadline(time.Now().Add(c.timeout))

	if _, err := conn.Write([]byte("zINSTREAM\x00")); err != nil {
		return fail(fmt.Errorf("failed to send command: %w", err))
	}

	size := make([]byte, 4)
	for start := 0; start < len(data); start += chunkSize {
		end := start + chunkSize
		if end > len(data) {
			end = len(data)
		}
		binary.BigEndian.PutUint32(size, uint32(end-start))
		if _, err := conn.Write(size); err != nil {
			return fail(fmt.Errorf("failed to send chunk size: %w", err))
		}
		if _, err := conn.Write(data[start:end]); err != nil {
			return fail(fmt.Errorf("failed to send file data: %w", err))
		}
	}

	// zero-length chunk ends the stream
	if _, err := conn.Write([]byte{0, 0, 0, 0}); err != nil {
		return fail(fmt.Errorf("failed to send end marker: %w", err))
	}

	response, err := io.ReadAll(io.LimitReader(conn, 1024))
	if err != nil && len(response) == 0 {
		return fail(fmt.Errorf("failed to read response: %w", err))
	}

	infected, threat, err := parseResponse(string(response))
	result.Infected = infected
	result.ThreatName = threat
	result.Error = err
	return result
}

// parseResponse interprets clamd replies:
// "stream: OK", "stream: Eicar-Signature FOUND", "stream: <message> ERROR".
func parseResponse(raw string) (infected bool, threat string, err error) {
	resp := strings.TrimSpace(strings.TrimRight(raw, "\x00"))
	switch {
	case strings.HasSuffix(resp, "FOUND"):
		if _, rest, ok := strings.Cut(resp, ":"); ok {
			threat = strings.TrimSpace(strings.TrimSuffix(rest, " FOUND"))
		}
		return true, threat, nil
	case strings.HasSuffix(resp, "ERROR"):
		return true, "", fmt.Errorf("scan error: %s", resp)
	case strings.HasSuffix(resp, "OK"):
		return false, "", nil
	}
	return true, "", fmt.Errorf("unexpected clamd response: %q", resp)
}
