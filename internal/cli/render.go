package cli

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/meeting-digest/internal/apperror"
	"github.com/nguyentantai21042004/meeting-digest/internal/processor"
)

// printError renders err for a person: the localized message coloured by
// severity, where a chunked run stopped, and the suggested next steps.
func printError(cmd *cobra.Command, err error, lang string) {
	out := cmd.ErrOrStderr()
	classified := apperror.Normalize(err)
	if classified == nil {
		return
	}

	paint := severityColor(classified.Severity())
	fmt.Fprintf(out, "%s %s\n", paint.Sprintf("[%s]", classified.Type()), apperror.UserMessage(classified, lang))

	var chunkErr *processor.ChunkError
	if errors.As(err, &chunkErr) {
		fmt.Fprintf(out, "  stopped at chunk %d of %d (%d completed)\n",
			chunkErr.ChunkIndex+1, chunkErr.TotalChunks, chunkErr.CompletedChunks)
	}
	if attempts, ok := classified.Context()["attempts"]; ok {
		fmt.Fprintf(out, "  attempts: %v\n", attempts)
	}

	for _, a := range apperror.RecoveryActions(classified, apperror.RecoveryContext{Language: lang}) {
		marker := "-"
		if a.Primary {
			marker = "*"
		}
		fmt.Fprintf(out, "  %s %s\n", marker, a.Label)
	}
}

func severityColor(s apperror.Severity) *color.Color {
	switch s {
	case apperror.SeverityCritical:
		return color.New(color.FgRed, color.Bold)
	case apperror.SeverityWarning:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}
