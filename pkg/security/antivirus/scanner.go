package antivirus

import "context"

// ScanResult contains the result of a malware scan
type ScanResult struct {
	Infected    bool
	ThreatName  string
	ScannerName string
	Error       error
}

// Scanner is the interface for pluggable antivirus implementations.
// Uploads are rejected on detection; there is no quarantine.
type Scanner interface {
	// Scan checks file content for malware.
	// A non-nil Error always comes with Infected=true (fail closed).
	Scan(ctx context.Context, filename string, data []byte) ScanResult

	Name() string
}

// NoOpScanner always reports clean. Used when no clamd address is configured.
type NoOpScanner struct{}

var _ Scanner = (*NoOpScanner)(nil)

func NewNoOpScanner() *NoOpScanner {
	return &NoOpScanner{}
}

func (n *NoOpScanner) Scan(ctx context.Context, filename string, data []byte) ScanResult {
	return ScanResult{ScannerName: n.Name()}
}

func (n *NoOpScanner) Name() string {
	return "noop"
}

// New returns a ClamAV scanner for a non-empty address and a no-op scanner otherwise.
func New(address string) Scanner {
	if address == "" {
		return NewNoOpScanner()
	}
	return NewClamAVScanner(address, 0)
}
