package database

import "strings"

// pageWindow returns offset and limit for a page when excluded posts are
// shown elsewhere ahead of the listing. While the exclusions still cover
// the current page the offset stays 0 and the page shrinks instead.
// A negative limit means the page is entirely covered.
func pageWindow(perPage, page, excluded int) (offset, limit int) {
	raw := (page-1)*perPage - excluded
	limit = perPage
	if raw < 0 {
		limit = perPage - excluded
		raw = 0
	}
	return raw, limit
}

// normalizeOrder keeps "asc" and turns everything else into "desc".
func normalizeOrder(order string) string {
	if order == "asc" {
		return "asc"
	}
	return "desc"
}

func orderClause(column, order string) string {
	var b strings.Builder
	b.WriteString("`")
	b.WriteString(column)
	b.WriteString("` ")
	b.WriteString(strings.ToUpper(normalizeOrder(order)))
	return b.String()
}
