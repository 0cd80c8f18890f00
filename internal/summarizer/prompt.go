package summarizer

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/nguyentantai21042004/meeting-digest/internal/transcript"
)

const summaryPrompt = `You are an assistant that writes meeting digests. Using the transcript below, write a DETAILED summary in %s.

Requirements:
- Open with a one-sentence overview of what the meeting was about
- Cover every topic in the order it came up
- Record decisions and who made them
- List action items with owners and deadlines when they are mentioned
- Keep product names and technical terms as spoken
- Use markdown: headings, bullet points, bold for key terms
%s
Transcript:
---
%s
---`

const partNote = `- This is part %d of %d of a longer meeting. Summarize only this part
- Lines tagged [context] repeat the end of the previous part. Use them to follow the discussion but do not summarize them again
`

// contextTag marks overlap lines in the rendered transcript.
const contextTag = "[context] "

func buildPrompt(src transcript.Source, lang string) string {
	note := ""
	if c, ok := src.(*transcript.Chunk); ok && c.Metadata.TotalChunks > 1 {
		note = fmt.Sprintf(partNote, c.Metadata.ChunkIndex+1, c.Metadata.TotalChunks)
	}
	return fmt.Sprintf(summaryPrompt, languageName(lang), note, render(src))
}

// render prints one line per section, or the raw text when there are none.
func render(src transcript.Source) string {
	sections := src.SourceSections()
	if len(sections) == 0 {
		return strings.TrimSpace(src.Text())
	}

	var b strings.Builder
	for i, s := range sections {
		if i > 0 {
			b.WriteByte('\n')
		}
		if s.Overlap {
			b.WriteString(contextTag)
		}
		b.WriteString(transcript.LinePrefix(s))
		b.WriteString(strings.TrimSpace(s.Text))
	}
	return b.String()
}

func languageName(lang string) string {
	tag, err := language.Parse(lang)
	if err != nil || tag == language.Und {
		return "English"
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return lang
}
