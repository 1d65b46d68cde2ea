// Package ingest registers new dream media dropped into a local directory:
// files are uploaded to MinIO and recorded as dreams.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/e-dream-ai/dreamstream/config"
	"github.com/e-dream-ai/dreamstream/logger"
	"github.com/e-dream-ai/dreamstream/model"
	"github.com/e-dream-ai/dreamstream/repository"
	"github.com/e-dream-ai/dreamstream/storage"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
)

var mediaContentTypes = map[string]string{
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".mov":  "video/quicktime",
}

// Watcher watches the drop directory for new media files.
type Watcher struct {
	cfg       *config.Config
	dreamRepo repository.DreamRepository
	processed map[string]bool
}

// NewWatcher creates a watcher over the configured ingest directory.
func NewWatcher(cfg *config.Config, dreamRepo repository.DreamRepository) *Watcher {
	return &Watcher{
		cfg:       cfg,
		dreamRepo: dreamRepo,
		processed: make(map[string]bool),
	}
}

// Run blocks processing filesystem events until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.cfg.IngestDir, 0755); err != nil {
		return fmt.Errorf("failed to create ingest directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.cfg.IngestDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.cfg.IngestDir, err)
	}

	logger.Info("ingest watcher started", logger.String("dir", w.cfg.IngestDir))

	for {
		select {
		case event := <-watcher.Events:
			if event.Op&fsnotify.Create != fsnotify.Create {
				continue
			}
			if w.processed[event.Name] {
				continue
			}
			w.processed[event.Name] = true
			if err := w.ingestFile(ctx, event.Name); err != nil {
				logger.Warn("ingest failed",
					logger.ErrorField(err),
					logger.String("file", event.Name))
			}

		case err := <-watcher.Errors:
			logger.Warn("watcher error", logger.ErrorField(err))

		case <-ctx.Done():
			logger.Info("ingest watcher stopping")
			return nil
		}
	}
}

func (w *Watcher) ingestFile(ctx context.Context, path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	contentType, ok := mediaContentTypes[ext]
	if !ok {
		logger.Debug("ignoring non-media file", logger.String("file", path))
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat media file: %w", err)
	}

	dreamUUID := uuid.NewString()
	objectKey := fmt.Sprintf("dreams/%s%s", dreamUUID, ext)
	name := strings.TrimSuffix(filepath.Base(path), ext)

	dream := &model.Dream{
		UUID:      dreamUUID,
		Name:      name,
		MediaPath: objectKey,
		Status:    model.DreamStatusProcessing,
		State:     1,
	}
	if err := w.dreamRepo.CreateDream(dream); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open media file: %w", err)
	}
	defer f.Close()

	if err := storage.UploadObject(ctx, w.cfg.MinioBucket, objectKey, f, info.Size(), contentType); err != nil {
		if statusErr := w.dreamRepo.UpdateDreamStatus(dream.ID, model.DreamStatusFailed); statusErr != nil {
			logger.Warn("failed to mark dream failed", logger.ErrorField(statusErr))
		}
		return err
	}

	if err := w.dreamRepo.UpdateDreamStatus(dream.ID, model.DreamStatusReady); err != nil {
		return err
	}

	logger.Info("dream ingested",
		logger.String("uuid", dreamUUID),
		logger.String("name", name),
		logger.String("object", objectKey))
	return nil
}
