package digest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/nguyentantai21042004/meeting-digest/internal/apperror"
	"github.com/nguyentantai21042004/meeting-digest/internal/logger"
	"github.com/nguyentantai21042004/meeting-digest/internal/processor"
	"github.com/nguyentantai21042004/meeting-digest/internal/transcript"
)

func (d *implDigester) DigestFile(ctx context.Context, path string, progress processor.ProgressFunc) (*Report, error) {
	name := baseName(path)
	ctx = logger.WithFields(ctx, "transcript", name)

	report, err := d.digest(ctx, path, progress)
	if err != nil {
		d.logFailure(ctx, path, err)
		return nil, err
	}

	d.logger.Info(ctx, "[DONE] %s -> %s", name, report.Output)
	return report, nil
}

func (d *implDigester) digest(ctx context.Context, path string, progress processor.ProgressFunc) (*Report, error) {
	t, err := transcript.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if err := d.opts.Validator.Validate(t); err != nil {
		return nil, err
	}

	res, err := d.processor.Process(ctx, t, d.summarize, d.opts.Processing, progress)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(d.opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	name := baseName(path)
	mdPath := filepath.Join(d.opts.OutputDir, name+".md")
	if err := os.WriteFile(mdPath, []byte(renderMarkdown(name, t, res, d.now())), 0o644); err != nil {
		return nil, fmt.Errorf("write digest: %w", err)
	}

	report := &Report{Source: path, Output: mdPath, Result: res}

	// Move the source out of the inbox so it won't be re-processed
	if d.opts.ArchiveDir != "" {
		archived, err := archive(path, d.opts.ArchiveDir)
		if err != nil {
			d.logger.Warn(ctx, "Failed to archive %s: %v", path, err)
		} else {
			report.Archived = archived
		}
	}
	return report, nil
}

// logFailure logs the localized user message and the suggested recovery steps.
func (d *implDigester) logFailure(ctx context.Context, path string, err error) {
	if errors.Is(err, context.Canceled) {
		d.logger.Warn(ctx, "Digest of %s cancelled", path)
		return
	}

	classified := apperror.Normalize(err)
	lang := d.opts.Processing.Language
	d.logger.Error(ctx, "Failed to digest %s [%s]: %s (%v)", path, classified.Type(), apperror.UserMessage(classified, lang), err)

	actions := apperror.RecoveryActions(classified, apperror.RecoveryContext{Language: lang})
	labels := make([]string, len(actions))
	for i, a := range actions {
		labels[i] = a.Label
	}
	d.logger.Info(ctx, "Suggested next steps: %s", strings.Join(labels, ", "))
}

func (d *implDigester) DigestDir(ctx context.Context, dir string) (Summary, error) {
	files, err := discoverTranscripts(dir)
	if err != nil {
		return Summary{}, fmt.Errorf("discover transcripts: %w", err)
	}

	if len(files) == 0 {
		d.logger.Info(ctx, "No transcripts found in %s", dir)
		return Summary{}, nil
	}

	d.logger.Info(ctx, "Found %d transcripts to digest", len(files))

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sum Summary
		sem = newSemaphore(d.opts.MaxConcurrent)
	)

	for i, path := range files {
		if err := sem.acquire(ctx); err != nil {
			break
		}
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			defer sem.release()

			d.logger.Info(ctx, "[%d/%d] Digesting: %s", i+1, len(files), filepath.Base(path))
			_, err := d.DigestFile(ctx, path, nil)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				sum.Failed++
			} else {
				sum.Succeeded++
			}
		}(i, path)
	}
	wg.Wait()

	d.logger.Info(ctx, "Digest complete: %d success, %d failed", sum.Succeeded, sum.Failed)
	return sum, ctx.Err()
}

func discoverTranscripts(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if transcript.IsTranscriptFile(e.Name()) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}

	sort.Strings(files)
	return files, nil
}

func archive(path, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	dest := filepath.Join(dir, filepath.Base(path))
	if err := os.Rename(path, dest); err != nil {
		return "", err
	}
	return dest, nil
}

func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
