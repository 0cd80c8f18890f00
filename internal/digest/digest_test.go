package digest

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyentantai21042004/meeting-digest/internal/apperror"
	"github.com/nguyentantai21042004/meeting-digest/internal/chunking"
	"github.com/nguyentantai21042004/meeting-digest/internal/logger"
	"github.com/nguyentantai21042004/meeting-digest/internal/processor"
	"github.com/nguyentantai21042004/meeting-digest/internal/retry"
	"github.com/nguyentantai21042004/meeting-digest/internal/transcript"
)

const standup = `[00:00:00] Alice: Morning everyone.
[00:01:05] Bob: The deploy is done.
[00:02:10] Alice: Great, let's close the sprint.
`

const standupSRT = "1\n00:00:01,000 --> 00:00:04,000\nAlice: Kick-off.\n\n2\n00:00:05,000 --> 00:00:09,000\nBob: Agenda first.\n"

type env struct {
	inbox, out, archived string
	calls                *atomic.Int32
	log                  *bytes.Buffer
}

func newTestDigester(t *testing.T, summarize processor.SummarizeFunc, log logger.Logger) (Digester, env) {
	t.Helper()
	root := t.TempDir()
	e := env{
		inbox:    filepath.Join(root, "inbox"),
		out:      filepath.Join(root, "digests"),
		archived: filepath.Join(root, "archived"),
		calls:    &atomic.Int32{},
	}
	require.NoError(t, os.MkdirAll(e.inbox, 0o755))

	if summarize == nil {
		summarize = func(context.Context, transcript.Source, processor.Options) (*processor.Result, error) {
			return &processor.Result{Summary: "Sprint closed."}, nil
		}
	}
	counted := func(ctx context.Context, src transcript.Source, opts processor.Options) (*processor.Result, error) {
		e.calls.Add(1)
		return summarize(ctx, src, opts)
	}

	if log == nil {
		log = logger.NewNop()
	}
	proc := processor.New(chunking.DefaultConfig(), retry.New(nil, nil), nil, nil)
	d := New(Options{
		OutputDir:  e.out,
		ArchiveDir: e.archived,
		Processing: processor.Options{Retry: retry.Config{MaxRetries: 0}, Language: "en"},
	}, proc, counted, log)
	d.(*implDigester).now = func() time.Time { return time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC) }
	return d, e
}

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDigestFile(t *testing.T) {
	d, e := newTestDigester(t, nil, nil)
	src := write(t, e.inbox, "standup.txt", standup)

	report, err := d.DigestFile(context.Background(), src, nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(e.out, "standup.md"), report.Output)
	assert.Equal(t, filepath.Join(e.archived, "standup.txt"), report.Archived)
	assert.EqualValues(t, 1, e.calls.Load())

	md, err := os.ReadFile(report.Output)
	require.NoError(t, err)
	assert.Equal(t, "# standup\n\n_2026-10-19 09:30_\n\n"+
		"- **Participants:** Alice, Bob\n"+
		"- **Duration:** 00:02:10\n\n"+
		"Sprint closed.\n", string(md))

	assert.NoFileExists(t, src)
	assert.FileExists(t, report.Archived)
}

func TestDigestFile_Failures(t *testing.T) {
	tests := []struct {
		name      string
		file      string
		content   string
		summarize processor.SummarizeFunc
		wantType  apperror.Type
		wantCalls int32
	}{
		{
			name:     "malformed json",
			file:     "broken.json",
			content:  `{"sections": [`,
			wantType: apperror.TypeJSONParse,
		},
		{
			name:     "empty transcript",
			file:     "empty.json",
			content:  `{"id": "x", "sections": []}`,
			wantType: apperror.TypeTranscriptEmpty,
		},
		{
			name:     "bad timestamps",
			file:     "reversed.json",
			content:  `{"sections": [{"speaker": "A", "startTime": 10, "endTime": 5, "text": "hi"}]}`,
			wantType: apperror.TypeTranscriptMalformedTimestamp,
		},
		{
			name:    "provider rejects the key",
			file:    "standup.txt",
			content: standup,
			summarize: func(context.Context, transcript.Source, processor.Options) (*processor.Result, error) {
				return nil, &apperror.StatusError{Code: 401, Message: "unauthorized"}
			},
			wantType:  apperror.TypeAuthExpired,
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			d, e := newTestDigester(t, tt.summarize, logger.NewWithConfig(logger.Config{Level: "info", Output: &buf}))
			src := write(t, e.inbox, tt.file, tt.content)

			report, err := d.DigestFile(context.Background(), src, nil)
			assert.Nil(t, report)
			require.Error(t, err)
			assert.Equal(t, tt.wantType, apperror.Normalize(err).Type())
			assert.Equal(t, tt.wantCalls, e.calls.Load())

			// the source stays in the inbox and no digest is written
			assert.FileExists(t, src)
			assert.NoDirExists(t, e.out)

			assert.Contains(t, buf.String(), string(tt.wantType))
			assert.Contains(t, buf.String(), "Suggested next steps")
		})
	}
}

func TestDigestFile_Missing(t *testing.T) {
	d, e := newTestDigester(t, nil, nil)
	_, err := d.DigestFile(context.Background(), filepath.Join(e.inbox, "gone.srt"), nil)
	assert.Equal(t, apperror.TypeTranscriptNotFound, apperror.Normalize(err).Type())
}

func TestDigestDir(t *testing.T) {
	d, e := newTestDigester(t, nil, nil)
	write(t, e.inbox, "a-standup.txt", standup)
	write(t, e.inbox, "b-kickoff.srt", standupSRT)
	write(t, e.inbox, "c-broken.json", "{")
	write(t, e.inbox, "notes.md", "# not a transcript")
	write(t, e.inbox, ".hidden.txt", standup)
	require.NoError(t, os.Mkdir(filepath.Join(e.inbox, "nested.txt"), 0o755))

	sum, err := d.DigestDir(context.Background(), e.inbox)
	require.NoError(t, err)

	assert.Equal(t, Summary{Succeeded: 2, Failed: 1}, sum)
	assert.EqualValues(t, 2, e.calls.Load())
	assert.FileExists(t, filepath.Join(e.out, "a-standup.md"))
	assert.FileExists(t, filepath.Join(e.out, "b-kickoff.md"))
	assert.FileExists(t, filepath.Join(e.inbox, "c-broken.json"))
	assert.FileExists(t, filepath.Join(e.inbox, ".hidden.txt"))
}

func TestDigestDir_Empty(t *testing.T) {
	d, e := newTestDigester(t, nil, nil)
	sum, err := d.DigestDir(context.Background(), e.inbox)
	require.NoError(t, err)
	assert.Zero(t, sum)

	_, err = d.DigestDir(context.Background(), filepath.Join(e.inbox, "missing"))
	assert.Error(t, err)
}

func TestDigestDir_Cancelled(t *testing.T) {
	d, e := newTestDigester(t, nil, nil)
	write(t, e.inbox, "standup.txt", standup)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sum, err := d.DigestDir(ctx, e.inbox)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, sum)
	assert.Zero(t, e.calls.Load())
}

func TestRenderMarkdown_Chunked(t *testing.T) {
	tr := &transcript.Transcript{}
	res := &processor.Result{
		Summary: "## Part 1 of 2\n\nfirst",
		Metadata: processor.Metadata{
			ProcessingMethod: processor.ProcessingMethodChunked,
			ChunksProcessed:  2,
			Strategy:         transcript.StrategyHybrid,
		},
	}

	md := renderMarkdown("retro", tr, res, time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC))
	assert.Equal(t, "# retro\n\n_2026-01-02 03:04_\n\n- **Processed:** 2 chunks (hybrid)\n\n## Part 1 of 2\n\nfirst\n", md)
}
