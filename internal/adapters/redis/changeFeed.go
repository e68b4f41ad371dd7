package redis

import (
	"context"
	"strconv"
	"time"

	"contentstaging/internal/core/post"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	changeFeedKey      = "posts:modified"
	changeWatermarkKey = "posts:modified:watermark"
)

// ChangeFeedRedis indexes modified posts in a sorted set scored by their
// modification time.
type ChangeFeedRedis struct {
	Client *redis.Client
	Logger *zap.Logger
}

func NewChangeFeedRedis(client *redis.Client, logger *zap.Logger) *ChangeFeedRedis {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChangeFeedRedis{
		Client: client,
		Logger: logger,
	}
}

// Record adds or rescores posts in the feed.
func (r *ChangeFeedRedis) Record(ctx context.Context, posts []*post.Post) error {
	if len(posts) == 0 {
		return nil
	}

	members := make([]*redis.Z, 0, len(posts))
	for _, p := range posts {
		members = append(members, &redis.Z{
			Score:  float64(p.Modified.Unix()),
			Member: strconv.FormatUint(p.ID, 10),
		})
	}

	if err := r.Client.ZAdd(ctx, changeFeedKey, members...).Err(); err != nil {
		return err
	}
	r.Logger.Info("Recorded modified posts", zap.Int("count", len(posts)))
	return nil
}

// ChangedSince returns ids of posts modified at or after since, oldest first.
func (r *ChangeFeedRedis) ChangedSince(ctx context.Context, since time.Time, limit int64) ([]uint64, error) {
	members, err := r.Client.ZRangeByScore(ctx, changeFeedKey, &redis.ZRangeBy{
		Min:   strconv.FormatInt(since.Unix(), 10),
		Max:   "+inf",
		Count: limit,
	}).Result()
	if err != nil {
		return nil, err
	}

	ids := make([]uint64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseUint(m, 10, 64)
		if err != nil {
			r.Logger.Warn("Ignoring invalid change feed member", zap.String("member", m))
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Watermark returns the newest modification time already recorded, or the
// zero time before the first run.
func (r *ChangeFeedRedis) Watermark(ctx context.Context) (time.Time, error) {
	raw, err := r.Client.Get(ctx, changeWatermarkKey).Result()
	if err == redis.Nil {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, raw)
}

func (r *ChangeFeedRedis) SetWatermark(ctx context.Context, t time.Time) error {
	return r.Client.Set(ctx, changeWatermarkKey, t.UTC().Format(time.RFC3339), 0).Err()
}
