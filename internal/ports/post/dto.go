package post

import (
	"time"

	"contentstaging/internal/core/post"
)

// DTOها برای UseCase
type PostDTO struct {
	ID              uint64    `json:"id"`
	ParentID        uint64    `json:"parent_id"`
	ParentGUID      string    `json:"parent_guid,omitempty"`
	Author          uint64    `json:"author"`
	Date            time.Time `json:"date"`
	DateGMT         time.Time `json:"date_gmt"`
	Modified        time.Time `json:"modified"`
	ModifiedGMT     time.Time `json:"modified_gmt"`
	Content         string    `json:"content"`
	Title           string    `json:"title"`
	Excerpt         string    `json:"excerpt"`
	Status          string    `json:"status"`
	CommentStatus   string    `json:"comment_status"`
	PingStatus      string    `json:"ping_status"`
	Password        string    `json:"password,omitempty"`
	Name            string    `json:"name"`
	ToPing          string    `json:"to_ping"`
	Pinged          string    `json:"pinged"`
	ContentFiltered string    `json:"content_filtered"`
	GUID            string    `json:"guid"`
	MenuOrder       int64     `json:"menu_order"`
	Type            string    `json:"type"`
	MimeType        string    `json:"mime_type"`
	CommentCount    int64     `json:"comment_count"`
}

type PageDTO struct {
	Posts   []*PostDTO `json:"posts"`
	Total   int64      `json:"total"`
	Page    int        `json:"page"`
	PerPage int        `json:"per_page"`
}

type ImportResult struct {
	ID      uint64 `json:"id"`
	Created bool   `json:"created"`
}

// ToDTO converts an entity; the parent is reduced to its id and, when it
// was resolved, its guid.
func ToDTO(p *post.Post) *PostDTO {
	d := &PostDTO{
		ID:              p.ID,
		ParentID:        p.ParentID(),
		Author:          p.Author,
		Date:            p.Date,
		DateGMT:         p.DateGMT,
		Modified:        p.Modified,
		ModifiedGMT:     p.ModifiedGMT,
		Content:         p.Content,
		Title:           p.Title,
		Excerpt:         p.Excerpt,
		Status:          p.Status,
		CommentStatus:   p.CommentStatus,
		PingStatus:      p.PingStatus,
		Password:        p.Password,
		Name:            p.Name,
		ToPing:          p.ToPing,
		Pinged:          p.Pinged,
		ContentFiltered: p.ContentFiltered,
		GUID:            p.GUID,
		MenuOrder:       p.MenuOrder,
		Type:            p.Type,
		MimeType:        p.MimeType,
		CommentCount:    p.CommentCount,
	}
	if p.Parent != nil {
		d.ParentGUID = p.Parent.GUID
	}
	return d
}

func ToDTOs(posts []*post.Post) []*PostDTO {
	out := make([]*PostDTO, 0, len(posts))
	for _, p := range posts {
		out = append(out, ToDTO(p))
	}
	return out
}

// FromDTO builds an entity without an id. Ids are local to one environment,
// so the parent is carried as a stub holding only its guid.
func FromDTO(d *PostDTO) *post.Post {
	p := &post.Post{
		Author:          d.Author,
		Date:            d.Date,
		DateGMT:         d.DateGMT,
		Modified:        d.Modified,
		ModifiedGMT:     d.ModifiedGMT,
		Content:         d.Content,
		Title:           d.Title,
		Excerpt:         d.Excerpt,
		Status:          d.Status,
		CommentStatus:   d.CommentStatus,
		PingStatus:      d.PingStatus,
		Password:        d.Password,
		Name:            d.Name,
		ToPing:          d.ToPing,
		Pinged:          d.Pinged,
		ContentFiltered: d.ContentFiltered,
		GUID:            d.GUID,
		MenuOrder:       d.MenuOrder,
		Type:            d.Type,
		MimeType:        d.MimeType,
		CommentCount:    d.CommentCount,
	}
	if d.ParentGUID != "" {
		p.Parent = &post.Post{GUID: d.ParentGUID}
	}
	return p
}
