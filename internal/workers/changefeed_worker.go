package workers

import (
	"context"
	"time"

	postEntity "contentstaging/internal/core/post"
	postPort "contentstaging/internal/ports/post"

	"go.uber.org/zap"
)

// ChangeFeedWorker polls for published posts modified since the last run and
// records them in the change feed.
type ChangeFeedWorker struct {
	PostRepo  postPort.PostRepository
	Feed      postPort.ChangeFeed
	BatchSize int // تعداد پست‌ها در هر ZADD
	Interval  time.Duration
	Logger    *zap.Logger
}

func NewChangeFeedWorker(
	postRepo postPort.PostRepository,
	feed postPort.ChangeFeed,
	batchSize int,
	interval time.Duration,
	logger *zap.Logger,
) *ChangeFeedWorker {
	if batchSize <= 0 {
		batchSize = 100
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChangeFeedWorker{
		PostRepo:  postRepo,
		Feed:      feed,
		BatchSize: batchSize,
		Interval:  interval,
		Logger:    logger,
	}
}

// Run polls until ctx is cancelled.
func (w *ChangeFeedWorker) Run(ctx context.Context) {
	w.Logger.Info("ChangeFeedWorker started", zap.Duration("interval", w.Interval))
	for {
		if _, err := w.RunOnce(ctx); err != nil && ctx.Err() == nil {
			w.Logger.Error("Error polling modified posts", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			w.Logger.Info("ChangeFeedWorker stopped")
			return
		case <-time.After(w.Interval):
		}
	}
}

// RunOnce records posts modified since the watermark and advances it.
// post_modified has one-second resolution, so the poll starts one second
// before the watermark; posts in that second are recorded again, which
// only rescores the same feed member.
// It returns how many posts were recorded.
func (w *ChangeFeedWorker) RunOnce(ctx context.Context) (int, error) {
	since, err := w.Feed.Watermark(ctx)
	if err != nil {
		return 0, err
	}

	from := since
	if !since.IsZero() {
		from = since.Add(-time.Second)
	}
	posts, err := w.PostRepo.ListPublishedModifiedAfter(ctx, from)
	if err != nil {
		return 0, err
	}
	if len(posts) == 0 {
		return 0, nil
	}

	for i := 0; i < len(posts); i += w.BatchSize {
		end := min(i+w.BatchSize, len(posts))
		if err := w.Feed.Record(ctx, posts[i:end]); err != nil {
			return i, err
		}
	}

	newest := latestModified(posts)
	if newest.Before(since) {
		newest = since
	}
	if err := w.Feed.SetWatermark(ctx, newest); err != nil {
		return len(posts), err
	}
	w.Logger.Info("Recorded modified posts",
		zap.Int("count", len(posts)), zap.Time("since", since), zap.Time("watermark", newest))
	return len(posts), nil
}

func latestModified(posts []*postEntity.Post) time.Time {
	var newest time.Time
	for _, p := range posts {
		if p.Modified.After(newest) {
			newest = p.Modified
		}
	}
	return newest
}
