package post

import (
	"context"
	"time"

	"contentstaging/internal/core/post"

	"github.com/gofrs/uuid"
)

// PostRepository پورت برای ذخیره‌سازی و بازیابی پست‌ها
type PostRepository interface {
	FindByGUID(ctx context.Context, guid string) (*post.Post, error)
	ResolveIDByGUID(ctx context.Context, p *post.Post) error
	ListPublished(ctx context.Context, q PublishedQuery) ([]*post.Post, error)
	CountPublished(ctx context.Context) (int64, error)
	ListPublishedModifiedAfter(ctx context.Context, date time.Time) ([]*post.Post, error)
	SaveExisting(ctx context.Context, p *post.Post) error
	InsertNew(ctx context.Context, p *post.Post) error
	LoadByID(ctx context.Context, id uint64) (*post.Post, error)
	LoadByIDs(ctx context.Context, ids []uint64) ([]*post.Post, error)
}

// SelectionRepository keeps the post ids selected into a content batch.
type SelectionRepository interface {
	Select(ctx context.Context, batchID uuid.UUID, ids ...uint64) error
	Selected(ctx context.Context, batchID uuid.UUID) ([]uint64, error)
	Clear(ctx context.Context, batchID uuid.UUID) error
}

// ChangeFeed indexes modified posts and remembers how far it has read.
type ChangeFeed interface {
	Record(ctx context.Context, posts []*post.Post) error
	ChangedSince(ctx context.Context, since time.Time, limit int64) ([]uint64, error)
	Watermark(ctx context.Context) (time.Time, error)
	SetWatermark(ctx context.Context, t time.Time) error
}

// PredicateFunc extends the WHERE clause of published-post queries.
// It receives the base clause and its bound values and returns the ones to use.
type PredicateFunc func(clause string, params []interface{}) (string, []interface{})

// PublishedQuery selects one page of published posts.
type PublishedQuery struct {
	OrderBy  string
	Order    string
	PerPage  int
	Page     int
	Excluded []uint64
}

// UniqueIDs merges the lists into a new slice, keeping the first
// occurrence of each id.
func UniqueIDs(lists ...[]uint64) []uint64 {
	seen := make(map[uint64]struct{})
	var out []uint64
	for _, ids := range lists {
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
