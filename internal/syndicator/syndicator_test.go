package syndicator

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjsage522/blogsyndicator/internal/crawler"
	"sjsage522/blogsyndicator/internal/post"
	apperrors "sjsage522/blogsyndicator/pkg/errors"
	"sjsage522/blogsyndicator/services/store"
)

// MockCrawler returns a fixed archive
type MockCrawler struct {
	posts []post.Post
	err   error
	calls int
}

var _ crawler.Crawler = (*MockCrawler)(nil)

func (m *MockCrawler) FetchPosts(ctx context.Context) ([]post.Post, error) {
	m.calls++
	return m.posts, m.err
}

func (m *MockCrawler) GetName() string     { return "MockCrawler" }
func (m *MockCrawler) GetProvider() string { return "codingdose.info" }

// MockPublisher records published posts
type MockPublisher struct {
	published []post.Post
}

func (m *MockPublisher) Publish(ctx context.Context, p post.Post) error {
	m.published = append(m.published, p)
	return nil
}

// archive lists posts newest first, the way the blog does
var archive = []post.Post{
	{Title: "Migrate From Ghost Blog to Jekyll", Link: "https://codingdose.info/migrate/"},
	{Title: "Sort a Dictionary With Python", Link: "https://codingdose.info/sort/"},
	{Title: "Hello All!", Link: "https://codingdose.info/hello/"},
}

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "posts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSyncStoresOldestFirst(t *testing.T) {
	ctx := context.Background()
	db := newTestStore(t)
	pub := &MockPublisher{}
	syn := New(&MockCrawler{posts: archive}, db, pub)

	result, err := syn.Sync(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Crawled)
	assert.Equal(t, 0, result.Skipped)
	assert.Equal(t, post.OldestFirst(archive), result.Inserted)
	assert.Equal(t, post.OldestFirst(archive), pub.published)

	stored, err := db.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Hello All!", stored[0].Title)
}

func TestSyncPublishesOnlyNewPosts(t *testing.T) {
	ctx := context.Background()
	db := newTestStore(t)
	crawl := &MockCrawler{posts: archive[1:]}
	pub := &MockPublisher{}
	syn := New(crawl, db, pub)

	_, err := syn.Sync(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, pub.published)

	crawl.posts = archive
	result, err := syn.Sync(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Skipped)
	assert.Equal(t, []post.Post{archive[0]}, result.Inserted)
	assert.Equal(t, []post.Post{archive[0]}, pub.published)
}

func TestSyncCrawlError(t *testing.T) {
	db := newTestStore(t)
	formatErr := apperrors.NewScrapeFormat("codingdose.info", "page indicator not found")
	syn := New(&MockCrawler{err: formatErr}, db, nil)

	_, err := syn.Sync(context.Background(), true)
	assert.True(t, errors.Is(err, formatErr))

	exists, err := db.Exists(context.Background())
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestPostsInitializesLazily(t *testing.T) {
	ctx := context.Background()
	db := newTestStore(t)
	crawl := &MockCrawler{posts: archive}
	pub := &MockPublisher{}
	syn := New(crawl, db, pub)

	posts, err := syn.Posts(ctx)
	require.NoError(t, err)
	assert.Equal(t, post.OldestFirst(archive), posts)
	assert.Empty(t, pub.published, "populating the store never publishes")
	assert.Equal(t, 1, crawl.calls)

	// the store exists now, so no further crawl
	_, err = syn.Posts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, crawl.calls)
}

func TestPurge(t *testing.T) {
	ctx := context.Background()
	db := newTestStore(t)
	syn := New(&MockCrawler{posts: archive}, db, nil)

	_, err := syn.Sync(ctx, false)
	require.NoError(t, err)
	require.NoError(t, syn.Purge(ctx))

	exists, err := db.Exists(ctx)
	require.NoError(t, err)
	assert.True(t, exists)

	count, err := db.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}
