package watcher

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nguyentantai21042004/meeting-digest/internal/logger"
	"github.com/nguyentantai21042004/meeting-digest/internal/transcript"
)

type implWatcher struct {
	inputDir      string
	handler       EventHandler
	logger        logger.Logger
	watcher       *fsnotify.Watcher
	maxConcurrent int
	semaphore     chan struct{}
	wg            sync.WaitGroup

	mu       sync.Mutex
	inFlight map[string]bool
	settle   time.Duration
}

// Start begins monitoring the input directory for new transcripts. It
// returns when ctx is done, after in-flight files finish.
func (w *implWatcher) Start(ctx context.Context) error {
	w.logger.Info(ctx, "File watcher started (max concurrent: %d). Monitoring: %s", w.maxConcurrent, w.inputDir)
	w.logger.Info(ctx, "Supported formats: %s", strings.Join(transcript.Extensions, ", "))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info(ctx, "Waiting for ongoing digests to complete...")
			w.wg.Wait()
			w.logger.Info(ctx, "File watcher stopped")
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			if !transcript.IsTranscriptFile(event.Name) {
				w.logger.Debug(ctx, "Ignoring non-transcript file: %s", event.Name)
				continue
			}
			if !w.claim(event.Name) {
				continue
			}

			w.logger.Info(ctx, "New transcript detected: %s", event.Name)
			w.wg.Add(1)
			go w.handle(ctx, event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error(ctx, "Watcher error: %v", err)
		}
	}
}

func (w *implWatcher) handle(ctx context.Context, path string) {
	defer w.wg.Done()
	defer w.unclaim(path)

	// Small delay to ensure file is fully written
	select {
	case <-time.After(w.settle):
	case <-ctx.Done():
		return
	}

	select {
	case w.semaphore <- struct{}{}:
	case <-ctx.Done():
		return
	}
	defer func() { <-w.semaphore }()

	if err := w.handler(ctx, path); err != nil {
		w.logger.Error(ctx, "Failed to process %s: %v", path, err)
	}
}

// claim marks path as in flight; a second Create for the same file is dropped.
func (w *implWatcher) claim(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.inFlight[path] {
		return false
	}
	w.inFlight[path] = true
	return true
}

func (w *implWatcher) unclaim(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.inFlight, path)
}

// Stop closes the file watcher
func (w *implWatcher) Stop() error {
	return w.watcher.Close()
}
