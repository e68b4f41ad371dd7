package database

import (
	"context"
	"fmt"
	"time"

	"contentstaging/internal/core/post"
	postPort "contentstaging/internal/ports/post"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultPerPage = 5

// PostRepositoryDatabase پیاده‌سازی PostRepository برای دیتابیس
type PostRepositoryDatabase struct {
	db        *gorm.DB
	table     string
	predicate postPort.PredicateFunc
	logger    *zap.Logger
}

type Option func(*PostRepositoryDatabase)

// WithPublishedPredicate installs fn to extend the WHERE clause of
// ListPublished and CountPublished.
func WithPublishedPredicate(fn postPort.PredicateFunc) Option {
	return func(repo *PostRepositoryDatabase) {
		repo.predicate = fn
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(repo *PostRepositoryDatabase) {
		if logger != nil {
			repo.logger = logger
		}
	}
}

// NewPostRepositoryDatabase سازنده PostRepositoryDatabase
// The connection is owned by the caller and never closed here.
func NewPostRepositoryDatabase(db *gorm.DB, table string, opts ...Option) *PostRepositoryDatabase {
	repo := &PostRepositoryDatabase{
		db:     db,
		table:  table,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

func (repo *PostRepositoryDatabase) query(ctx context.Context) *gorm.DB {
	return repo.db.WithContext(ctx).Table(repo.table)
}

// FindByGUID returns the first post whose guid ends with the normalized guid.
func (repo *PostRepositoryDatabase) FindByGUID(ctx context.Context, guid string) (*post.Post, error) {
	normalized := normalizeGUID(guid)
	if normalized == "" {
		return nil, fmt.Errorf("%w: empty guid", post.ErrInvalidArgument)
	}

	tx := repo.query(ctx).
		Where("guid LIKE ? ESCAPE '"+likeEscape+"'", suffixPattern(normalized)).
		Order("`ID` ASC")
	return repo.first(ctx, tx)
}

// ResolveIDByGUID sets p.ID to the id of the row with exactly p.GUID, or 0.
func (repo *PostRepositoryDatabase) ResolveIDByGUID(ctx context.Context, p *post.Post) error {
	var ids []uint64
	if err := repo.query(ctx).
		Where("guid = ?", p.GUID).
		Order("`ID` ASC").
		Limit(1).
		Pluck("ID", &ids).Error; err != nil {
		return err
	}

	p.ID = 0
	if len(ids) > 0 {
		p.ID = ids[0]
	}
	return nil
}

func (repo *PostRepositoryDatabase) publishedWhere() (string, []interface{}) {
	clause := "post_type <> ? AND post_status = ?"
	params := []interface{}{post.TypeContentBatch, post.StatusPublish}
	if repo.predicate != nil {
		clause, params = repo.predicate(clause, params)
	}
	return "(" + clause + ")", params
}

// ListPublished returns one page of published posts, skipping q.Excluded.
// Excluded posts count against the first pages, see pageWindow. A page that
// is fully covered by exclusions is empty and no query is run.
func (repo *PostRepositoryDatabase) ListPublished(ctx context.Context, q postPort.PublishedQuery) ([]*post.Post, error) {
	perPage, page := q.PerPage, q.Page
	if perPage == 0 {
		perPage = defaultPerPage
	}
	if page == 0 {
		page = 1
	}
	if perPage < 0 || page < 0 {
		return nil, fmt.Errorf("%w: page %d per page %d", post.ErrInvalidArgument, page, perPage)
	}
	if q.OrderBy != "" && !isColumn(q.OrderBy) {
		return nil, fmt.Errorf("%w: cannot order by %q", post.ErrInvalidArgument, q.OrderBy)
	}

	excluded := postPort.UniqueIDs(q.Excluded)
	offset, limit := pageWindow(perPage, page, len(excluded))
	if limit <= 0 {
		repo.logger.Debug("page covered by excluded posts",
			zap.Int("page", page), zap.Int("perPage", perPage), zap.Int("excluded", len(excluded)))
		return []*post.Post{}, nil
	}

	clause, params := repo.publishedWhere()
	tx := repo.query(ctx).Where(clause, params...)
	if len(excluded) > 0 {
		tx = tx.Where("`ID` NOT IN ?", excluded)
	}
	if q.OrderBy != "" {
		tx = tx.Order(orderClause(q.OrderBy, q.Order))
	}

	var rows []*postRow
	if err := tx.Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return repo.hydrate(ctx, rows)
}

// CountPublished counts the posts ListPublished can return.
func (repo *PostRepositoryDatabase) CountPublished(ctx context.Context) (int64, error) {
	clause, params := repo.publishedWhere()

	var count int64
	if err := repo.query(ctx).Where(clause, params...).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ListPublishedModifiedAfter returns published posts modified strictly after
// date, ordered by type.
func (repo *PostRepositoryDatabase) ListPublishedModifiedAfter(ctx context.Context, date time.Time) ([]*post.Post, error) {
	var rows []*postRow
	if err := repo.query(ctx).
		Where("post_status = ? AND post_type <> ? AND post_modified > ?",
			post.StatusPublish, post.TypeContentBatch, formatDateTime(date)).
		Order("`post_type` ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return repo.hydrate(ctx, rows)
}

// SaveExisting replaces every mapped column of the row with id p.ID.
func (repo *PostRepositoryDatabase) SaveExisting(ctx context.Context, p *post.Post) error {
	if p.ID == 0 {
		return fmt.Errorf("%w: cannot save a post without an id", post.ErrInvalidArgument)
	}

	values, err := bind(toRow(p))
	if err != nil {
		return err
	}
	return repo.query(ctx).Where("`ID` = ?", p.ID).Updates(values).Error
}

// InsertNew inserts p and sets p.ID to the generated id.
func (repo *PostRepositoryDatabase) InsertNew(ctx context.Context, p *post.Post) error {
	if p.ID != 0 {
		return fmt.Errorf("%w: post %d already has an id", post.ErrInvalidArgument, p.ID)
	}

	row := toRow(p)
	// Reject the same values SaveExisting would.
	if _, err := bind(row); err != nil {
		return err
	}
	if err := repo.query(ctx).Create(row).Error; err != nil {
		return err
	}

	p.ID = row.ID
	return nil
}

// LoadByID returns the post with id, or nil when there is none.
func (repo *PostRepositoryDatabase) LoadByID(ctx context.Context, id uint64) (*post.Post, error) {
	return repo.first(ctx, repo.query(ctx).Where("`ID` = ?", id))
}

// LoadByIDs returns the posts among ids that exist.
func (repo *PostRepositoryDatabase) LoadByIDs(ctx context.Context, ids []uint64) ([]*post.Post, error) {
	if len(ids) == 0 {
		return []*post.Post{}, nil
	}

	var rows []*postRow
	if err := repo.query(ctx).Where("`ID` IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return repo.hydrate(ctx, rows)
}

// first maps the first row of tx. A malformed row is an error here.
func (repo *PostRepositoryDatabase) first(ctx context.Context, tx *gorm.DB) (*post.Post, error) {
	var rows []*postRow
	if err := tx.Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if _, err := fromRow(rows[0]); err != nil {
		return nil, err
	}

	posts, err := repo.hydrate(ctx, rows)
	if err != nil {
		return nil, err
	}
	return posts[0], nil
}

// hydrate maps rows to posts and resolves their parents with one extra
// query. Malformed rows are logged and skipped.
func (repo *PostRepositoryDatabase) hydrate(ctx context.Context, rows []*postRow) ([]*post.Post, error) {
	posts := make([]*post.Post, 0, len(rows))
	children := make(map[uint64][]*post.Post)
	for _, r := range rows {
		p, err := fromRow(r)
		if err != nil {
			repo.logger.Warn("skipping malformed post row", zap.Uint64("id", r.ID), zap.Error(err))
			continue
		}
		if r.PostParent != 0 {
			children[r.PostParent] = append(children[r.PostParent], p)
		}
		posts = append(posts, p)
	}
	if len(children) == 0 {
		return posts, nil
	}

	ids := make([]uint64, 0, len(children))
	for id := range children {
		ids = append(ids, id)
	}
	parents, err := repo.loadParents(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, parent := range parents {
		for _, child := range children[parent.ID] {
			child.Parent = parent
		}
	}
	return posts, nil
}

// loadParents maps parent rows without following their own parents: a
// grandparent is a stub holding only its id. This bounds resolution at one
// level even when the table contains a cycle.
func (repo *PostRepositoryDatabase) loadParents(ctx context.Context, ids []uint64) ([]*post.Post, error) {
	var rows []*postRow
	if err := repo.query(ctx).Where("`ID` IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}

	parents := make([]*post.Post, 0, len(rows))
	for _, r := range rows {
		p, err := fromRow(r)
		if err != nil {
			repo.logger.Warn("skipping malformed parent row", zap.Uint64("id", r.ID), zap.Error(err))
			continue
		}
		if r.PostParent != 0 {
			p.Parent = &post.Post{ID: r.PostParent}
		}
		parents = append(parents, p)
	}
	return parents, nil
}
