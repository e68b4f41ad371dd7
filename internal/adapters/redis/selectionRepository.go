package redis

import (
	"context"
	"sort"
	"strconv"

	"github.com/go-redis/redis/v8"
	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

// SelectionRepositoryRedis stores the posts selected into each content batch
// as a Redis set of post ids.
type SelectionRepositoryRedis struct {
	Client *redis.Client
	Logger *zap.Logger
}

func NewSelectionRepositoryRedis(client *redis.Client, logger *zap.Logger) *SelectionRepositoryRedis {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SelectionRepositoryRedis{
		Client: client,
		Logger: logger,
	}
}

func selectionKey(batchID uuid.UUID) string {
	return "batch:" + batchID.String() + ":selected"
}

// Select adds ids to the batch selection.
func (r *SelectionRepositoryRedis) Select(ctx context.Context, batchID uuid.UUID, ids ...uint64) error {
	if len(ids) == 0 {
		return nil
	}

	members := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		members = append(members, strconv.FormatUint(id, 10))
	}

	if err := r.Client.SAdd(ctx, selectionKey(batchID), members...).Err(); err != nil {
		return err
	}
	r.Logger.Debug("Selected posts", zap.String("batchID", batchID.String()), zap.Int("count", len(ids)))
	return nil
}

// Selected returns the selected post ids in ascending order.
func (r *SelectionRepositoryRedis) Selected(ctx context.Context, batchID uuid.UUID) ([]uint64, error) {
	members, err := r.Client.SMembers(ctx, selectionKey(batchID)).Result()
	if err != nil {
		return nil, err
	}

	ids := make([]uint64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseUint(m, 10, 64)
		if err != nil {
			r.Logger.Warn("Ignoring invalid selection member", zap.String("batchID", batchID.String()), zap.String("member", m))
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r *SelectionRepositoryRedis) Clear(ctx context.Context, batchID uuid.UUID) error {
	return r.Client.Del(ctx, selectionKey(batchID)).Err()
}
