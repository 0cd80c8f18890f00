package digest

import (
	"context"

	"github.com/nguyentantai21042004/meeting-digest/internal/processor"
)

// Digester turns transcript files into markdown digests.
type Digester interface {
	// DigestFile loads, validates and summarizes one transcript, writes its
	// digest and archives the source.
	DigestFile(ctx context.Context, path string, progress processor.ProgressFunc) (*Report, error)
	// DigestDir digests every transcript file directly inside dir. Per-file
	// failures are logged and counted, not returned.
	DigestDir(ctx context.Context, dir string) (Summary, error)
}

// Report describes one digested file.
type Report struct {
	Source   string
	Output   string
	Archived string
	Result   *processor.Result
}

// Summary counts the outcome of a DigestDir run.
type Summary struct {
	Succeeded int
	Failed    int
}
