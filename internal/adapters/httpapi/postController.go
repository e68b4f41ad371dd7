package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	postPort "contentstaging/internal/ports/post"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PostController struct {
	pc     PostUseCase
	site   *time.Location
	logger *zap.Logger
}

func NewPostController(pc PostUseCase, site *time.Location, logger *zap.Logger) *PostController {
	if site == nil {
		site = time.UTC
	}
	return &PostController{pc: pc, site: site, logger: logger}
}

func (ctl *PostController) ListPosts(c *gin.Context) {
	perPage, err := strconv.Atoi(c.DefaultQuery("per_page", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid per_page"})
		return
	}
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page"})
		return
	}
	excluded, err := parseIDs(c.Query("exclude"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid exclude"})
		return
	}

	res, err := ctl.pc.ListPage(c.Request.Context(), c.Query("batch"), postPort.PublishedQuery{
		OrderBy:  c.Query("order_by"),
		Order:    c.Query("order"),
		PerPage:  perPage,
		Page:     page,
		Excluded: excluded,
	})
	if err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (ctl *PostController) CountPosts(c *gin.Context) {
	count, err := ctl.pc.CountPublished(c.Request.Context())
	if err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (ctl *PostController) GetPost(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	res, err := ctl.pc.GetPost(c.Request.Context(), id)
	if err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (ctl *PostController) LookupPost(c *gin.Context) {
	guid := c.Query("guid")
	if guid == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "guid is required"})
		return
	}
	res, err := ctl.pc.FindByGUID(c.Request.Context(), guid)
	if err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (ctl *PostController) ModifiedPosts(c *gin.Context) {
	since, err := parseSince(c.Query("since"), ctl.site)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid since"})
		return
	}
	res, err := ctl.pc.ModifiedSince(c.Request.Context(), since)
	if err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": res})
}

func (ctl *PostController) Changes(c *gin.Context) {
	since, err := parseSince(c.Query("since"), ctl.site)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid since"})
		return
	}
	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "0"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}
	ids, err := ctl.pc.Changes(c.Request.Context(), since, limit)
	if err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ids": ids})
}

func (ctl *PostController) ImportPost(c *gin.Context) {
	var req postPort.PostDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	res, err := ctl.pc.Import(c.Request.Context(), &req)
	if err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	c.JSON(status, res)
}

// parseIDs reads a comma separated id list.
func parseIDs(raw string) ([]uint64, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]uint64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// parseSince accepts RFC 3339 or the table's DATETIME layout and returns the
// site's wall clock time, held in UTC like post_modified. A DATETIME value is
// already site time. Empty means the beginning of time.
func parseSince(raw string, site *time.Location) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		t = t.In(site)
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC), nil
	}
	return time.ParseInLocation("2006-01-02 15:04:05", raw, time.UTC)
}
