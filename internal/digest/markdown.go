package digest

import (
	"fmt"
	"strings"
	"time"

	"github.com/nguyentantai21042004/meeting-digest/internal/processor"
	"github.com/nguyentantai21042004/meeting-digest/internal/transcript"
)

func renderMarkdown(name string, t *transcript.Transcript, res *processor.Result, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n_%s_\n\n", name, now.Format("2006-01-02 15:04"))

	var facts []string
	if len(t.Metadata.Participants) > 0 {
		facts = append(facts, "**Participants:** "+strings.Join(t.Metadata.Participants, ", "))
	}
	if t.Metadata.Duration > 0 {
		facts = append(facts, "**Duration:** "+transcript.FormatClock(t.Metadata.Duration))
	}
	if m := res.Metadata; m.ProcessingMethod == processor.ProcessingMethodChunked {
		facts = append(facts, fmt.Sprintf("**Processed:** %d chunks (%s)", m.ChunksProcessed, m.Strategy))
	}
	for _, f := range facts {
		b.WriteString("- ")
		b.WriteString(f)
		b.WriteByte('\n')
	}
	if len(facts) > 0 {
		b.WriteByte('\n')
	}

	b.WriteString(strings.TrimSpace(res.Summary))
	b.WriteByte('\n')
	return b.String()
}
