package transcript

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nguyentantai21042004/meeting-digest/internal/apperror"
)

// Extensions lists the file types LoadFile understands.
var Extensions = []string{".json", ".srt", ".txt"}

// IsTranscriptFile reports whether path has a supported extension.
func IsTranscriptFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// LoadFile reads a transcript from disk, picking the parser by extension.
func LoadFile(path string) (*Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperror.Wrap(apperror.TypeTranscriptNotFound, err, "transcript not found: "+filepath.Base(path))
		}
		return nil, fmt.Errorf("read transcript: %w", err)
	}

	var t *Transcript
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		t, err = ParseJSON(data)
	case ".srt":
		t, err = ParseSRT(string(data))
	case ".txt":
		t, err = ParseText(string(data))
	default:
		return nil, fmt.Errorf("unsupported transcript format: %s", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

type jsonSection struct {
	Speaker    string  `json:"speaker"`
	StartTime  float64 `json:"startTime"`
	EndTime    float64 `json:"endTime"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

type jsonTranscript struct {
	ID       string `json:"id"`
	Metadata struct {
		Participants []string   `json:"participants"`
		Duration     float64    `json:"duration"`
		Language     string     `json:"language"`
		StartTime    *time.Time `json:"startTime"`
		EndTime      *time.Time `json:"endTime"`
	} `json:"metadata"`
	Content  string        `json:"content"`
	Sections []jsonSection `json:"sections"`
}

// ParseJSON decodes the native JSON shape. Times are seconds from meeting start.
func ParseJSON(data []byte) (*Transcript, error) {
	var raw jsonTranscript
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, apperror.Wrap(apperror.TypeJSONParse, err, "")
	}

	t := &Transcript{
		ID:      raw.ID,
		Content: raw.Content,
		Metadata: Metadata{
			Participants: raw.Metadata.Participants,
			Duration:     seconds(raw.Metadata.Duration),
			Language:     raw.Metadata.Language,
		},
	}
	if raw.Metadata.StartTime != nil {
		t.Metadata.StartTime = *raw.Metadata.StartTime
	}
	if raw.Metadata.EndTime != nil {
		t.Metadata.EndTime = *raw.Metadata.EndTime
	}

	t.Sections = make([]Section, 0, len(raw.Sections))
	for _, s := range raw.Sections {
		t.Sections = append(t.Sections, Section{
			Speaker:    strings.TrimSpace(s.Speaker),
			StartTime:  seconds(s.StartTime),
			EndTime:    seconds(s.EndTime),
			Text:       strings.TrimSpace(s.Text),
			Confidence: s.Confidence,
		})
	}

	Finalize(t)
	return t, nil
}

var (
	reSrtIndex  = regexp.MustCompile(`^\d+$`)
	reSrtTiming = regexp.MustCompile(`^(\d{1,2}:\d{2}:\d{2}[,.]\d{1,3})\s*-->\s*(\d{1,2}:\d{2}:\d{2}[,.]\d{1,3})`)
	reSpeaker   = regexp.MustCompile(`^([^:：]{1,40})[:：]\s*(.+)$`)
	reTextStamp = regexp.MustCompile(`^\[(\d{1,2}:\d{2}(?::\d{2})?)\]\s*(.*)$`)
)

// maxNameWords bounds how long a "Name:" prefix may be before it is treated as text.
const maxNameWords = 4

// ParseSRT parses SubRip captions. A "Name: text" prefix on the first line of
// a cue becomes the speaker.
func ParseSRT(content string) (*Transcript, error) {
	t := &Transcript{}
	var cur *Section
	var lines []string

	flush := func() {
		if cur == nil {
			return
		}
		text := strings.Join(lines, " ")
		cur.Speaker, cur.Text = splitSpeaker(text)
		cur.Confidence = 1
		if cur.Text != "" {
			t.Sections = append(t.Sections, *cur)
		}
		cur, lines = nil, nil
	}

	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\ufeff"))

		switch {
		case line == "":
			flush()
		case cur == nil && reSrtIndex.MatchString(line):
			// cue number
		case reSrtTiming.MatchString(line):
			flush()
			m := reSrtTiming.FindStringSubmatch(line)
			start, err := parseClock(m[1])
			if err != nil {
				return nil, err
			}
			end, err := parseClock(m[2])
			if err != nil {
				return nil, err
			}
			cur = &Section{StartTime: start, EndTime: end}
		case cur != nil:
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan srt: %w", err)
	}
	flush()

	Finalize(t)
	return t, nil
}

// ParseText parses caption exports with one entry per line, optionally
// prefixed by "[hh:mm:ss]" and a "Speaker:" label.
func ParseText(content string) (*Transcript, error) {
	t := &Transcript{}

	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		var start time.Duration
		stamped := false
		if m := reTextStamp.FindStringSubmatch(line); m != nil {
			d, err := parseClock(m[1])
			if err != nil {
				return nil, err
			}
			start, stamped, line = d, true, m[2]
		} else if n := len(t.Sections); n > 0 {
			start = t.Sections[n-1].StartTime
		}

		speaker, text := splitSpeaker(line)
		if text == "" {
			continue
		}
		if !stamped && speaker == "" && len(t.Sections) > 0 {
			prev := &t.Sections[len(t.Sections)-1]
			prev.Text += " " + text
			continue
		}
		t.Sections = append(t.Sections, Section{Speaker: speaker, StartTime: start, Text: text, Confidence: 1})
	}

	// entries without an explicit end run until the next one starts
	for i := range t.Sections {
		if i+1 < len(t.Sections) {
			t.Sections[i].EndTime = t.Sections[i+1].StartTime
		} else {
			t.Sections[i].EndTime = t.Sections[i].StartTime
		}
	}

	Finalize(t)
	return t, nil
}

// Finalize fills derived metadata, the content and a random ID when missing.
func Finalize(t *Transcript) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	for i := range t.Sections {
		t.Sections[i].Index = i
	}
	if t.Content == "" {
		t.Content = JoinText(t.Sections)
	}

	m := &t.Metadata
	m.TotalEntries = len(t.Sections)
	if len(m.Participants) == 0 {
		m.Participants = Participants(t.Sections)
	}
	if m.Duration == 0 && len(t.Sections) > 0 {
		first, last := t.Sections[0], t.Sections[len(t.Sections)-1]
		m.Duration = max(last.EndTime-first.StartTime, 0)
	}
	if !m.StartTime.IsZero() && m.EndTime.IsZero() {
		m.EndTime = m.StartTime.Add(m.Duration)
	}
}

// Participants returns speaker names in order of first appearance.
func Participants(sections []Section) []string {
	seen := make(map[string]bool)
	var names []string
	for _, s := range sections {
		if s.Speaker == "" || seen[s.Speaker] {
			continue
		}
		seen[s.Speaker] = true
		names = append(names, s.Speaker)
	}
	return names
}

func splitSpeaker(line string) (string, string) {
	m := reSpeaker.FindStringSubmatch(line)
	if m == nil {
		return "", strings.TrimSpace(line)
	}
	name := strings.TrimSpace(m[1])
	if len(strings.Fields(name)) > maxNameWords || strings.ContainsAny(name, "[]()") {
		return "", strings.TrimSpace(line)
	}
	return name, strings.TrimSpace(m[2])
}

// parseClock accepts hh:mm:ss(,|.)mmm, hh:mm:ss and mm:ss.
func parseClock(s string) (time.Duration, error) {
	s = strings.ReplaceAll(s, ",", ".")
	var frac time.Duration
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		ms := s[dot+1:]
		for len(ms) < 3 {
			ms += "0"
		}
		v, err := strconv.Atoi(ms[:3])
		if err != nil {
			return 0, malformedClock(s)
		}
		frac = time.Duration(v) * time.Millisecond
		s = s[:dot]
	}

	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, malformedClock(s)
	}
	var total time.Duration
	for _, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 {
			return 0, malformedClock(s)
		}
		total = total*60 + time.Duration(v)
	}
	return total*time.Second + frac, nil
}

func malformedClock(s string) error {
	return apperror.New(apperror.TypeTranscriptMalformedTimestamp, "invalid timestamp "+strconv.Quote(s), nil)
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}
