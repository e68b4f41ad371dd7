package database

import (
	"fmt"
	"time"

	"contentstaging/internal/core/post"
)

// mysqlDateTime is the layout of the DATETIME columns of the posts table.
const mysqlDateTime = "2006-01-02 15:04:05"

// zeroDateTime is what the table stores for an unset timestamp.
const zeroDateTime = "0000-00-00 00:00:00"

// postRow is the raw shape of one posts table row.
type postRow struct {
	ID                  uint64 `gorm:"column:ID;primaryKey;autoIncrement"`
	PostAuthor          uint64 `gorm:"column:post_author"`
	PostDate            string `gorm:"column:post_date"`
	PostDateGMT         string `gorm:"column:post_date_gmt"`
	PostContent         string `gorm:"column:post_content"`
	PostTitle           string `gorm:"column:post_title"`
	PostExcerpt         string `gorm:"column:post_excerpt"`
	PostStatus          string `gorm:"column:post_status"`
	CommentStatus       string `gorm:"column:comment_status"`
	PingStatus          string `gorm:"column:ping_status"`
	PostPassword        string `gorm:"column:post_password"`
	PostName            string `gorm:"column:post_name"`
	ToPing              string `gorm:"column:to_ping"`
	Pinged              string `gorm:"column:pinged"`
	PostModified        string `gorm:"column:post_modified"`
	PostModifiedGMT     string `gorm:"column:post_modified_gmt"`
	PostContentFiltered string `gorm:"column:post_content_filtered"`
	PostParent          uint64 `gorm:"column:post_parent"`
	GUID                string `gorm:"column:guid"`
	MenuOrder           int64  `gorm:"column:menu_order"`
	PostType            string `gorm:"column:post_type"`
	PostMimeType        string `gorm:"column:post_mime_type"`
	CommentCount        int64  `gorm:"column:comment_count"`
}

type columnKind int

const (
	kindInt columnKind = iota
	kindString
)

func (k columnKind) String() string {
	if k == kindInt {
		return "int"
	}
	return "string"
}

type column struct {
	name  string
	kind  columnKind
	value func(r *postRow) interface{}
}

// postColumns is the fixed mapping written on insert and update, id excluded.
// Values are checked against kind positionally, so order matters.
var postColumns = []column{
	{"post_author", kindInt, func(r *postRow) interface{} { return r.PostAuthor }},
	{"post_date", kindString, func(r *postRow) interface{} { return r.PostDate }},
	{"post_date_gmt", kindString, func(r *postRow) interface{} { return r.PostDateGMT }},
	{"post_content", kindString, func(r *postRow) interface{} { return r.PostContent }},
	{"post_title", kindString, func(r *postRow) interface{} { return r.PostTitle }},
	{"post_excerpt", kindString, func(r *postRow) interface{} { return r.PostExcerpt }},
	{"post_status", kindString, func(r *postRow) interface{} { return r.PostStatus }},
	{"comment_status", kindString, func(r *postRow) interface{} { return r.CommentStatus }},
	{"ping_status", kindString, func(r *postRow) interface{} { return r.PingStatus }},
	{"post_password", kindString, func(r *postRow) interface{} { return r.PostPassword }},
	{"post_name", kindString, func(r *postRow) interface{} { return r.PostName }},
	{"to_ping", kindString, func(r *postRow) interface{} { return r.ToPing }},
	{"pinged", kindString, func(r *postRow) interface{} { return r.Pinged }},
	{"post_modified", kindString, func(r *postRow) interface{} { return r.PostModified }},
	{"post_modified_gmt", kindString, func(r *postRow) interface{} { return r.PostModifiedGMT }},
	{"post_content_filtered", kindString, func(r *postRow) interface{} { return r.PostContentFiltered }},
	{"post_parent", kindInt, func(r *postRow) interface{} { return r.PostParent }},
	{"guid", kindString, func(r *postRow) interface{} { return r.GUID }},
	{"menu_order", kindInt, func(r *postRow) interface{} { return r.MenuOrder }},
	{"post_type", kindString, func(r *postRow) interface{} { return r.PostType }},
	{"post_mime_type", kindString, func(r *postRow) interface{} { return r.PostMimeType }},
	{"comment_count", kindInt, func(r *postRow) interface{} { return r.CommentCount }},
}

// isColumn reports whether name can be used to order results.
func isColumn(name string) bool {
	if name == "ID" {
		return true
	}
	for _, c := range postColumns {
		if c.name == name {
			return true
		}
	}
	return false
}

// bind returns the column values of r keyed by column name, each coerced to
// the kind its column declares. SaveExisting writes the map as is. InsertNew
// only uses it to validate the row before creating it from the struct, whose
// gorm tags name the same columns, so the generated id is read back.
func bind(r *postRow) (map[string]interface{}, error) {
	values := make(map[string]interface{}, len(postColumns))
	for _, c := range postColumns {
		v, err := coerce(c.kind, c.value(r))
		if err != nil {
			return nil, fmt.Errorf("%w: column %s: %v", post.ErrMalformedRow, c.name, err)
		}
		values[c.name] = v
	}
	return values, nil
}

func coerce(kind columnKind, v interface{}) (interface{}, error) {
	switch kind {
	case kindInt:
		switch n := v.(type) {
		case int64:
			return n, nil
		case uint64:
			return int64(n), nil
		case int:
			return int64(n), nil
		}
	case kindString:
		if s, ok := v.(string); ok {
			return s, nil
		}
	}
	return nil, fmt.Errorf("expected %s, got %T", kind, v)
}

// toRow maps p to a row; the id is left for insert/update to handle.
func toRow(p *post.Post) *postRow {
	return &postRow{
		PostAuthor:          p.Author,
		PostDate:            formatDateTime(p.Date),
		PostDateGMT:         formatDateTime(p.DateGMT),
		PostContent:         p.Content,
		PostTitle:           p.Title,
		PostExcerpt:         p.Excerpt,
		PostStatus:          p.Status,
		CommentStatus:       p.CommentStatus,
		PingStatus:          p.PingStatus,
		PostPassword:        p.Password,
		PostName:            p.Name,
		ToPing:              p.ToPing,
		Pinged:              p.Pinged,
		PostModified:        formatDateTime(p.Modified),
		PostModifiedGMT:     formatDateTime(p.ModifiedGMT),
		PostContentFiltered: p.ContentFiltered,
		PostParent:          p.ParentID(),
		GUID:                p.GUID,
		MenuOrder:           p.MenuOrder,
		PostType:            p.Type,
		PostMimeType:        p.MimeType,
		CommentCount:        p.CommentCount,
	}
}

// fromRow maps every content field of r. The parent is not resolved here.
func fromRow(r *postRow) (*post.Post, error) {
	if r.ID == 0 {
		return nil, fmt.Errorf("%w: missing ID", post.ErrMalformedRow)
	}

	p := &post.Post{
		ID:              r.ID,
		Author:          r.PostAuthor,
		Content:         r.PostContent,
		Title:           r.PostTitle,
		Excerpt:         r.PostExcerpt,
		Status:          r.PostStatus,
		CommentStatus:   r.CommentStatus,
		PingStatus:      r.PingStatus,
		Password:        r.PostPassword,
		Name:            r.PostName,
		ToPing:          r.ToPing,
		Pinged:          r.Pinged,
		ContentFiltered: r.PostContentFiltered,
		GUID:            r.GUID,
		MenuOrder:       r.MenuOrder,
		Type:            r.PostType,
		MimeType:        r.PostMimeType,
		CommentCount:    r.CommentCount,
	}

	dates := []struct {
		column string
		raw    string
		dst    *time.Time
	}{
		{"post_date", r.PostDate, &p.Date},
		{"post_date_gmt", r.PostDateGMT, &p.DateGMT},
		{"post_modified", r.PostModified, &p.Modified},
		{"post_modified_gmt", r.PostModifiedGMT, &p.ModifiedGMT},
	}
	for _, d := range dates {
		t, err := parseDateTime(d.raw)
		if err != nil {
			return nil, fmt.Errorf("%w: ID %d column %s: %v", post.ErrMalformedRow, r.ID, d.column, err)
		}
		*d.dst = t
	}

	return p, nil
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return zeroDateTime
	}
	return t.Format(mysqlDateTime)
}

// parseDateTime reads a DATETIME value as UTC. Empty and zero dates are the zero time.
func parseDateTime(s string) (time.Time, error) {
	if s == "" || s == zeroDateTime {
		return time.Time{}, nil
	}
	if t, err := time.ParseInLocation(mysqlDateTime, s, time.UTC); err == nil {
		return t, nil
	}
	// With parseTime=true the MySQL driver yields time.Time, which scans into a
	// string as RFC 3339.
	return time.Parse(time.RFC3339, s)
}
