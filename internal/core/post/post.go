package post

import "time"

const (
	// StatusPublish is the post_status value of published content.
	StatusPublish = "publish"
	// TypeContentBatch marks internal staging records; never listed as published.
	TypeContentBatch = "sme_content_batch"
)

// Post is a row of the posts table.
// ID is assigned by storage on insert and stays zero until then.
type Post struct {
	ID              uint64
	Parent          *Post
	Author          uint64
	Date            time.Time
	DateGMT         time.Time
	Modified        time.Time
	ModifiedGMT     time.Time
	Content         string
	Title           string
	Excerpt         string
	Status          string
	CommentStatus   string
	PingStatus      string
	Password        string
	Name            string
	ToPing          string
	Pinged          string
	ContentFiltered string
	GUID            string
	MenuOrder       int64
	Type            string
	MimeType        string
	CommentCount    int64
}

// ParentID returns the id of the parent post, or 0 when there is none.
func (p *Post) ParentID() uint64 {
	if p.Parent == nil {
		return 0
	}
	return p.Parent.ID
}
