package processor

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"github.com/nguyentantai21042004/meeting-digest/internal/transcript"
)

// mergeSummaries joins chunk summaries in order under one header per part.
func mergeSummaries(summaries []string, chunks []transcript.Chunk, lang string) string {
	zh := isChinese(lang)

	var b strings.Builder
	for i, s := range summaries {
		if i > 0 {
			b.WriteString("\n\n")
		}
		var tr transcript.TimeRange
		if i < len(chunks) {
			tr = chunks[i].Metadata.TimeRange
		}
		b.WriteString(partHeader(zh, i, len(summaries), tr))
		b.WriteString("\n\n")
		b.WriteString(strings.TrimSpace(s))
	}
	return b.String()
}

func partHeader(zh bool, i, total int, tr transcript.TimeRange) string {
	span := transcript.FormatClock(tr.Start) + " - " + transcript.FormatClock(tr.End)
	if zh {
		return fmt.Sprintf("## 第 %d 部分（共 %d 部分）%s", i+1, total, span)
	}
	return fmt.Sprintf("## Part %d of %d (%s)", i+1, total, span)
}

func isChinese(lang string) bool {
	tag, err := language.Parse(lang)
	if err != nil {
		return false
	}
	base, _ := tag.Base()
	return base.String() == "zh"
}
