package summarizer

import (
	"context"

	"github.com/nguyentantai21042004/meeting-digest/internal/processor"
	"github.com/nguyentantai21042004/meeting-digest/internal/transcript"
)

// Summarizer turns a transcript, or one chunk of it, into a markdown summary.
// Summarize satisfies processor.SummarizeFunc.
type Summarizer interface {
	Summarize(ctx context.Context, src transcript.Source, opts processor.Options) (*processor.Result, error)
}
