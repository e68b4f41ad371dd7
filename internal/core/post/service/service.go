package postapp

import (
	"context"
	"errors"
	"fmt"
	"time"

	postEntity "contentstaging/internal/core/post"
	postPort "contentstaging/internal/ports/post"

	"github.com/gofrs/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

var ErrPostNotFound = errors.New("post not found")

const (
	defaultPerPage = 5
	defaultChanges = 100
)

type PostService struct {
	PostRepository      postPort.PostRepository
	SelectionRepository postPort.SelectionRepository // تزریق شده
	ChangeFeed          postPort.ChangeFeed          // تزریق شده
	Logger              *zap.Logger
}

func NewPostService(
	postRepo postPort.PostRepository,
	selectionRepo postPort.SelectionRepository,
	changeFeed postPort.ChangeFeed,
	logger *zap.Logger,
) *PostService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostService{
		PostRepository:      postRepo,
		SelectionRepository: selectionRepo,
		ChangeFeed:          changeFeed,
		Logger:              logger,
	}
}

func parseBatchID(batchID string) (uuid.UUID, error) {
	id, err := uuid.FromString(batchID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid batch id %q", postEntity.ErrInvalidArgument, batchID)
	}
	return id, nil
}

// ListPage returns a page of published posts. When batchID is set, posts
// already selected into that batch are excluded from the listing.
func (s *PostService) ListPage(ctx context.Context, batchID string, q postPort.PublishedQuery) (*postPort.PageDTO, error) {
	if batchID != "" {
		id, err := parseBatchID(batchID)
		if err != nil {
			return nil, err
		}
		selected, err := s.SelectionRepository.Selected(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load batch selection: %w", err)
		}
		q.Excluded = postPort.UniqueIDs(q.Excluded, selected)
	}

	posts, err := s.PostRepository.ListPublished(ctx, q)
	if err != nil {
		return nil, err
	}
	total, err := s.PostRepository.CountPublished(ctx)
	if err != nil {
		return nil, err
	}

	page := &postPort.PageDTO{
		Posts:   postPort.ToDTOs(posts),
		Total:   total,
		Page:    q.Page,
		PerPage: q.PerPage,
	}
	if page.Page == 0 {
		page.Page = 1
	}
	if page.PerPage == 0 {
		page.PerPage = defaultPerPage
	}
	return page, nil
}

func (s *PostService) CountPublished(ctx context.Context) (int64, error) {
	return s.PostRepository.CountPublished(ctx)
}

func (s *PostService) GetPost(ctx context.Context, id uint64) (*postPort.PostDTO, error) {
	p, err := s.PostRepository.LoadByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPostNotFound
	}
	return postPort.ToDTO(p), nil
}

// FindByGUID looks a post up by guid, ignoring scheme and host.
func (s *PostService) FindByGUID(ctx context.Context, guid string) (*postPort.PostDTO, error) {
	p, err := s.PostRepository.FindByGUID(ctx, guid)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPostNotFound
	}
	return postPort.ToDTO(p), nil
}

func (s *PostService) ModifiedSince(ctx context.Context, since time.Time) ([]*postPort.PostDTO, error) {
	posts, err := s.PostRepository.ListPublishedModifiedAfter(ctx, since)
	if err != nil {
		return nil, err
	}
	return postPort.ToDTOs(posts), nil
}

// Changes returns ids from the change feed modified at or after since.
func (s *PostService) Changes(ctx context.Context, since time.Time, limit int64) ([]uint64, error) {
	if limit <= 0 {
		limit = defaultChanges
	}
	return s.ChangeFeed.ChangedSince(ctx, since, limit)
}

// Import stores a post received from another environment. The local row is
// matched by guid; it is updated when found and inserted otherwise.
func (s *PostService) Import(ctx context.Context, dto *postPort.PostDTO) (*postPort.ImportResult, error) {
	if dto.GUID == "" {
		return nil, fmt.Errorf("%w: guid is required", postEntity.ErrInvalidArgument)
	}

	p := postPort.FromDTO(dto)
	if err := s.resolveParent(ctx, p); err != nil {
		return nil, err
	}
	if err := s.PostRepository.ResolveIDByGUID(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to resolve post: %w", err)
	}

	if p.ID != 0 {
		if err := s.PostRepository.SaveExisting(ctx, p); err != nil {
			return nil, fmt.Errorf("failed to update post: %w", err)
		}
		s.Logger.Info("Updated imported post", zap.Uint64("id", p.ID), zap.String("guid", p.GUID))
		return &postPort.ImportResult{ID: p.ID}, nil
	}

	if p.Name == "" {
		p.Name = slug.Make(p.Title)
	}
	if err := s.PostRepository.InsertNew(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	s.Logger.Info("Created imported post", zap.Uint64("id", p.ID), zap.String("guid", p.GUID))
	return &postPort.ImportResult{ID: p.ID, Created: true}, nil
}

// resolveParent replaces a guid-only parent stub with the local parent id.
// A parent unknown here is dropped.
func (s *PostService) resolveParent(ctx context.Context, p *postEntity.Post) error {
	if p.Parent == nil {
		return nil
	}
	parent := &postEntity.Post{GUID: p.Parent.GUID}
	if err := s.PostRepository.ResolveIDByGUID(ctx, parent); err != nil {
		return fmt.Errorf("failed to resolve parent: %w", err)
	}
	if parent.ID == 0 {
		s.Logger.Warn("Parent of imported post not found", zap.String("guid", p.GUID), zap.String("parentGUID", parent.GUID))
		p.Parent = nil
		return nil
	}
	p.Parent = parent
	return nil
}

func (s *PostService) SelectPosts(ctx context.Context, batchID string, ids []uint64) error {
	id, err := parseBatchID(batchID)
	if err != nil {
		return err
	}
	return s.SelectionRepository.Select(ctx, id, ids...)
}

func (s *PostService) SelectedPosts(ctx context.Context, batchID string) ([]uint64, error) {
	id, err := parseBatchID(batchID)
	if err != nil {
		return nil, err
	}
	return s.SelectionRepository.Selected(ctx, id)
}

func (s *PostService) ClearSelection(ctx context.Context, batchID string) error {
	id, err := parseBatchID(batchID)
	if err != nil {
		return err
	}
	return s.SelectionRepository.Clear(ctx, id)
}
