package httpapi

import (
	"context"
	"time"

	"contentstaging/internal/adapters/httpapi/middleware"
	postPort "contentstaging/internal/ports/post"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PostUseCase: اینترفیسِ لازم برای کنترلر/روتر (Inbound Port)
type PostUseCase interface {
	ListPage(ctx context.Context, batchID string, q postPort.PublishedQuery) (*postPort.PageDTO, error)
	CountPublished(ctx context.Context) (int64, error)
	GetPost(ctx context.Context, id uint64) (*postPort.PostDTO, error)
	FindByGUID(ctx context.Context, guid string) (*postPort.PostDTO, error)
	ModifiedSince(ctx context.Context, since time.Time) ([]*postPort.PostDTO, error)
	Changes(ctx context.Context, since time.Time, limit int64) ([]uint64, error)
	Import(ctx context.Context, dto *postPort.PostDTO) (*postPort.ImportResult, error)
}

type BatchUseCase interface {
	SelectPosts(ctx context.Context, batchID string, ids []uint64) error
	SelectedPosts(ctx context.Context, batchID string) ([]uint64, error)
	ClearSelection(ctx context.Context, batchID string) error
}

// فقط روتینگ: UseCase از بیرون تزریق می‌شود
// site is the timezone post_date and post_modified are written in.
func SetupRoutes(postUC PostUseCase, batchUC BatchUseCase, jwtSecret []byte, site *time.Location, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.Default()
	pc := NewPostController(postUC, site, logger)
	bc := NewBatchController(batchUC, logger)

	auth := r.Group("/", middleware.JWTAuthMiddleware(jwtSecret))

	posts := auth.Group("/posts")
	posts.GET("", pc.ListPosts)
	posts.GET("/count", pc.CountPosts)
	posts.GET("/lookup", pc.LookupPost)
	posts.GET("/modified", pc.ModifiedPosts)
	posts.GET("/changes", pc.Changes)
	posts.POST("/import", pc.ImportPost)

	auth.GET("/post/:id", pc.GetPost)

	batches := auth.Group("/batches/:batch")
	batches.PUT("/selection", bc.SelectPosts)
	batches.GET("/selection", bc.SelectedPosts)
	batches.DELETE("/selection", bc.ClearSelection)

	return r
}
