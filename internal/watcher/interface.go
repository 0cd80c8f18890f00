package watcher

import "context"

// Watcher monitors an inbox directory for new transcripts.
type Watcher interface {
	Start(ctx context.Context) error
	Stop() error
}

// EventHandler handles one new transcript file.
type EventHandler func(ctx context.Context, filePath string) error
