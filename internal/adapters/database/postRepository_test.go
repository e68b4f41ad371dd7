package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"contentstaging/internal/core/post"
	postPort "contentstaging/internal/ports/post"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testTable = "wp_posts"

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// Every connection to :memory: is a new database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	require.NoError(t, db.Table(testTable).AutoMigrate(&postRow{}))
	return db
}

func createRepository(t *testing.T, opts ...Option) (*PostRepositoryDatabase, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	return NewPostRepositoryDatabase(db, testTable, opts...), db
}

func insertPost(t *testing.T, repo *PostRepositoryDatabase, mutate func(p *post.Post)) *post.Post {
	t.Helper()
	p := samplePost()
	if mutate != nil {
		mutate(p)
	}
	require.NoError(t, repo.InsertNew(context.Background(), p))
	return p
}

// countQueries counts SELECTs issued through db.
func countQueries(t *testing.T, db *gorm.DB) *int {
	t.Helper()
	n := 0
	require.NoError(t, db.Callback().Query().Before("gorm:query").Register("test:count", func(*gorm.DB) {
		n++
	}))
	return &n
}

func ids(posts []*post.Post) []uint64 {
	out := make([]uint64, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.ID)
	}
	return out
}

func TestInsertNew_AssignsID(t *testing.T) {
	repo, _ := createRepository(t)
	ctx := context.Background()

	first := insertPost(t, repo, nil)
	second := insertPost(t, repo, nil)

	assert.NotZero(t, first.ID)
	assert.NotZero(t, second.ID)
	assert.NotEqual(t, first.ID, second.ID)

	loaded, err := repo.LoadByID(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, first, loaded)
}

func TestInsertNew_WritesBoundColumns(t *testing.T) {
	repo, db := createRepository(t)
	parent := insertPost(t, repo, nil)
	p := insertPost(t, repo, func(p *post.Post) {
		p.Parent = &post.Post{ID: parent.ID}
		p.DateGMT = time.Time{}
	})

	expected, err := bind(toRow(p))
	require.NoError(t, err)

	stored := map[string]interface{}{}
	require.NoError(t, db.Table(testTable).Where("`ID` = ?", p.ID).Take(&stored).Error)

	for _, c := range postColumns {
		got := stored[c.name]
		if b, ok := got.([]byte); ok {
			got = string(b)
		}
		assert.Equal(t, fmt.Sprint(expected[c.name]), fmt.Sprint(got), c.name)
	}
}

func TestInsertNew_RejectsExistingID(t *testing.T) {
	repo, _ := createRepository(t)
	p := samplePost()
	p.ID = 10

	err := repo.InsertNew(context.Background(), p)
	assert.ErrorIs(t, err, post.ErrInvalidArgument)
}

func TestLoadByID_Absent(t *testing.T) {
	repo, _ := createRepository(t)

	p, err := repo.LoadByID(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestLoadByIDs(t *testing.T) {
	repo, _ := createRepository(t)
	ctx := context.Background()
	a := insertPost(t, repo, nil)
	b := insertPost(t, repo, nil)
	insertPost(t, repo, nil)

	posts, err := repo.LoadByIDs(ctx, []uint64{a.ID, b.ID, 999})
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint64{a.ID, b.ID}, ids(posts))

	posts, err = repo.LoadByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestFindByGUID_MatchesSuffix(t *testing.T) {
	repo, _ := createRepository(t)
	ctx := context.Background()
	stored := insertPost(t, repo, func(p *post.Post) { p.GUID = "http://old.example.com/2019/post" })
	insertPost(t, repo, func(p *post.Post) { p.GUID = "http://old.example.com/2019/post-two" })
	accented := insertPost(t, repo, func(p *post.Post) { p.GUID = "http://old.example.com/2019/café" })
	upload := insertPost(t, repo, func(p *post.Post) {
		p.Type = "attachment"
		p.GUID = "http://old.example.com/wp-content/uploads/my file.jpg"
	})

	cases := []struct {
		name       string
		guid       string
		expectedID uint64
	}{
		{name: "same host", guid: "http://old.example.com/2019/post", expectedID: stored.ID},
		{name: "other host and scheme", guid: "https://new.example.org/2019/post", expectedID: stored.ID},
		{name: "bare path", guid: "/2019/post", expectedID: stored.ID},
		{name: "no match", guid: "http://old.example.com/2020/post", expectedID: 0},
		{name: "wildcards are literal", guid: "http://x.example.com/2019/p_st", expectedID: 0},
		{name: "non-ascii path", guid: "https://new.example.org/2019/café", expectedID: accented.ID},
		{name: "path with a space", guid: "https://new.example.org/wp-content/uploads/my file.jpg", expectedID: upload.ID},
		{name: "fragment is ignored", guid: "https://new.example.org/2019/post#comments", expectedID: stored.ID},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := repo.FindByGUID(ctx, tc.guid)
			require.NoError(t, err)
			if tc.expectedID == 0 {
				assert.Nil(t, p)
				return
			}
			require.NotNil(t, p)
			assert.Equal(t, tc.expectedID, p.ID)
		})
	}
}

func TestFindByGUID_Empty(t *testing.T) {
	repo, _ := createRepository(t)

	_, err := repo.FindByGUID(context.Background(), "http://example.com")
	assert.ErrorIs(t, err, post.ErrInvalidArgument)
}

func TestResolveIDByGUID(t *testing.T) {
	repo, _ := createRepository(t)
	ctx := context.Background()
	stored := insertPost(t, repo, func(p *post.Post) { p.GUID = "http://stage.example.com/?p=77" })

	incoming := &post.Post{ID: 12345, GUID: "http://stage.example.com/?p=77"}
	require.NoError(t, repo.ResolveIDByGUID(ctx, incoming))
	assert.Equal(t, stored.ID, incoming.ID)

	// Exact match only, unlike FindByGUID.
	other := &post.Post{ID: 12345, GUID: "http://prod.example.com/?p=77"}
	require.NoError(t, repo.ResolveIDByGUID(ctx, other))
	assert.Zero(t, other.ID)
}

func TestListPublished(t *testing.T) {
	repo, _ := createRepository(t)
	ctx := context.Background()

	var published []uint64
	for i := 0; i < 8; i++ {
		p := insertPost(t, repo, func(p *post.Post) { p.Title = fmt.Sprintf("post %02d", i) })
		published = append(published, p.ID)
	}
	insertPost(t, repo, func(p *post.Post) { p.Status = "draft" })
	insertPost(t, repo, func(p *post.Post) { p.Type = post.TypeContentBatch })

	cases := []struct {
		name     string
		query    postPort.PublishedQuery
		expected []uint64
	}{
		{
			name:     "defaults to first page of five",
			query:    postPort.PublishedQuery{OrderBy: "ID", Order: "asc"},
			expected: published[:5],
		},
		{
			name:     "second page",
			query:    postPort.PublishedQuery{OrderBy: "ID", Order: "asc", PerPage: 5, Page: 2},
			expected: published[5:],
		},
		{
			name:     "descending",
			query:    postPort.PublishedQuery{OrderBy: "post_title", Order: "DESC", PerPage: 2},
			expected: []uint64{published[7], published[6]},
		},
		{
			name: "excluded posts shrink the first page",
			query: postPort.PublishedQuery{
				OrderBy: "ID", Order: "asc", PerPage: 5, Page: 1,
				Excluded: []uint64{published[0], published[1], published[2]},
			},
			expected: []uint64{published[3], published[4]},
		},
		{
			name: "excluded posts shift the second page",
			query: postPort.PublishedQuery{
				OrderBy: "ID", Order: "asc", PerPage: 5, Page: 2,
				Excluded: []uint64{published[0], published[1], published[2]},
			},
			expected: []uint64{published[5], published[6], published[7]},
		},
		{
			name: "repeated exclusions count once",
			query: postPort.PublishedQuery{
				OrderBy: "ID", Order: "asc", PerPage: 5, Page: 1,
				Excluded: []uint64{published[0], published[1], published[0], published[1]},
			},
			expected: []uint64{published[2], published[3], published[4]},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			posts, err := repo.ListPublished(ctx, tc.query)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, ids(posts))
		})
	}
}

func TestListPublished_CoveredPageRunsNoQuery(t *testing.T) {
	repo, db := createRepository(t)
	ctx := context.Background()
	insertPost(t, repo, nil)
	queries := countQueries(t, db)

	posts, err := repo.ListPublished(ctx, postPort.PublishedQuery{
		PerPage:  5,
		Page:     1,
		Excluded: []uint64{1, 2, 3, 4, 5, 6},
	})
	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)
	assert.Zero(t, *queries)
}

func TestListPublished_InvalidArguments(t *testing.T) {
	repo, _ := createRepository(t)
	ctx := context.Background()

	for _, q := range []postPort.PublishedQuery{
		{OrderBy: "post_title; DROP TABLE wp_posts"},
		{PerPage: -1},
		{Page: -2},
	} {
		_, err := repo.ListPublished(ctx, q)
		assert.ErrorIs(t, err, post.ErrInvalidArgument)
	}
}

func TestPublishedPredicate(t *testing.T) {
	predicate := func(clause string, params []interface{}) (string, []interface{}) {
		return clause + " AND post_author = ?", append(params, 9)
	}
	repo, _ := createRepository(t, WithPublishedPredicate(predicate))
	ctx := context.Background()

	mine := insertPost(t, repo, func(p *post.Post) { p.Author = 9 })
	insertPost(t, repo, func(p *post.Post) { p.Author = 3 })

	posts, err := repo.ListPublished(ctx, postPort.PublishedQuery{})
	require.NoError(t, err)
	assert.Equal(t, []uint64{mine.ID}, ids(posts))

	count, err := repo.CountPublished(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestCountPublished(t *testing.T) {
	repo, _ := createRepository(t)
	ctx := context.Background()

	count, err := repo.CountPublished(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	insertPost(t, repo, nil)
	insertPost(t, repo, nil)
	insertPost(t, repo, func(p *post.Post) { p.Status = "private" })
	insertPost(t, repo, func(p *post.Post) { p.Type = post.TypeContentBatch })

	count, err = repo.CountPublished(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestListPublishedModifiedAfter(t *testing.T) {
	repo, _ := createRepository(t)
	ctx := context.Background()
	since := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	insertPost(t, repo, func(p *post.Post) { p.Modified = since })
	page := insertPost(t, repo, func(p *post.Post) {
		p.Type = "page"
		p.Modified = since.Add(time.Second)
	})
	attachment := insertPost(t, repo, func(p *post.Post) {
		p.Type = "attachment"
		p.Modified = since.Add(time.Hour)
	})
	insertPost(t, repo, func(p *post.Post) {
		p.Status = "draft"
		p.Modified = since.Add(time.Hour)
	})
	insertPost(t, repo, func(p *post.Post) {
		p.Type = post.TypeContentBatch
		p.Modified = since.Add(time.Hour)
	})

	posts, err := repo.ListPublishedModifiedAfter(ctx, since)
	require.NoError(t, err)
	assert.Equal(t, []uint64{attachment.ID, page.ID}, ids(posts))
}

func TestSaveExisting(t *testing.T) {
	repo, _ := createRepository(t)
	ctx := context.Background()
	p := insertPost(t, repo, nil)

	p.Title = "Changed"
	p.Password = ""
	p.CommentCount = 0
	p.Modified = p.Modified.Add(24 * time.Hour)
	require.NoError(t, repo.SaveExisting(ctx, p))

	loaded, err := repo.LoadByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, loaded)
}

func TestSaveExisting_RequiresID(t *testing.T) {
	repo, _ := createRepository(t)

	err := repo.SaveExisting(context.Background(), samplePost())
	assert.ErrorIs(t, err, post.ErrInvalidArgument)
}

func TestParentResolution(t *testing.T) {
	repo, _ := createRepository(t)
	ctx := context.Background()

	grandparent := insertPost(t, repo, nil)
	parent := insertPost(t, repo, func(p *post.Post) { p.Parent = &post.Post{ID: grandparent.ID} })
	child := insertPost(t, repo, func(p *post.Post) { p.Parent = &post.Post{ID: parent.ID} })
	orphan := insertPost(t, repo, func(p *post.Post) { p.Parent = &post.Post{ID: 9999} })

	loaded, err := repo.LoadByID(ctx, child.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.Parent)
	assert.Equal(t, parent.ID, loaded.Parent.ID)
	assert.Equal(t, parent.Title, loaded.Parent.Title)

	// One level only: the grandparent is a reference by id.
	require.NotNil(t, loaded.Parent.Parent)
	assert.Equal(t, &post.Post{ID: grandparent.ID}, loaded.Parent.Parent)

	loaded, err = repo.LoadByID(ctx, orphan.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded.Parent)
}

func TestParentResolution_Cycle(t *testing.T) {
	repo, db := createRepository(t)
	ctx := context.Background()
	a := insertPost(t, repo, nil)
	b := insertPost(t, repo, func(p *post.Post) { p.Parent = &post.Post{ID: a.ID} })
	self := insertPost(t, repo, nil)
	require.NoError(t, db.Table(testTable).Where("`ID` = ?", a.ID).Update("post_parent", b.ID).Error)
	require.NoError(t, db.Table(testTable).Where("`ID` = ?", self.ID).Update("post_parent", self.ID).Error)

	loaded, err := repo.LoadByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, loaded.Parent.ID)
	assert.Equal(t, &post.Post{ID: a.ID}, loaded.Parent.Parent)

	loaded, err = repo.LoadByID(ctx, self.ID)
	require.NoError(t, err)
	assert.Equal(t, self.ID, loaded.Parent.ID)
	assert.Equal(t, &post.Post{ID: self.ID}, loaded.Parent.Parent)
}

func TestMalformedRows(t *testing.T) {
	repo, db := createRepository(t)
	ctx := context.Background()
	good := insertPost(t, repo, nil)
	bad := insertPost(t, repo, nil)
	require.NoError(t, db.Table(testTable).Where("`ID` = ?", bad.ID).Update("post_date", "not a date").Error)

	posts, err := repo.ListPublished(ctx, postPort.PublishedQuery{OrderBy: "ID", Order: "asc"})
	require.NoError(t, err)
	assert.Equal(t, []uint64{good.ID}, ids(posts))

	_, err = repo.LoadByID(ctx, bad.ID)
	assert.ErrorIs(t, err, post.ErrMalformedRow)
}

func TestStorageErrorsPropagate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepositoryDatabase(db, "missing_table")

	_, err := repo.CountPublished(context.Background())
	assert.Error(t, err)
}
