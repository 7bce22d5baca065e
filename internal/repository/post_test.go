package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"inkpress/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestPostRepository_CreateWithTags(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	author := createUser(t, db, "ada")

	post := &models.Post{Title: "Hello", Slug: "hello", Content: "body", AuthorID: author.ID}
	require.NoError(t, repo.CreateWithTags(ctx, post, []string{" go ", "sql", "go"}))

	assert.NotZero(t, post.ID)
	assert.Equal(t, []string{"go", "sql"}, tagNames(post.Tags))
	assert.Equal(t, int64(2), countRows(t, db, &models.PostTag{}, "post_id = ?", post.ID))

	loaded, err := repo.GetBySlug(ctx, "hello")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"go", "sql"}, tagNames(loaded.Tags))
	require.NotNil(t, loaded.Author)
	assert.Equal(t, "ada", loaded.Author.Name)
}

func TestPostRepository_CreateWithTags_SlugTaken(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	author := createUser(t, db, "ada")
	createPost(t, db, author.ID, "hello-world", false, "go")

	dup := &models.Post{Title: "Hello World", Slug: "hello-world", Content: "x", AuthorID: author.ID}
	err := repo.CreateWithTags(ctx, dup, []string{"fresh-tag"})
	assert.ErrorIs(t, err, ErrSlugTaken)

	assert.Equal(t, int64(1), countRows(t, db, &models.Post{}, "slug = ?", "hello-world"))
	assert.Equal(t, int64(0), countRows(t, db, &models.Tag{}, "name = ?", "fresh-tag"), "rolled back")
}

func TestPostRepository_CreateWithTags_EmptyTagRejected(t *testing.T) {
	db := setupTestDB(t)
	author := createUser(t, db, "ada")

	post := &models.Post{Title: "T", Slug: "t", Content: "c", AuthorID: author.ID}
	err := NewPostRepository(db).CreateWithTags(context.Background(), post, []string{"go", "  "})
	assert.True(t, models.IsCode(err, models.CodeValidation))
	assert.Equal(t, int64(0), countRows(t, db, &models.Post{}, "1 = 1"))
}

func TestPostRepository_Update_ReplacesTagSet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	author := createUser(t, db, "ada")
	post := createPost(t, db, author.ID, "p", false, "a", "b")

	updated, err := repo.Update(ctx, post.ID, PostUpdate{
		Title: "New title", Slug: "new-title", Content: "c2",
		ReplaceTags: true, Tags: []string{"b", "c", "c"},
	})
	require.NoError(t, err)
	assert.Equal(t, "new-title", updated.Slug)
	assert.ElementsMatch(t, []string{"b", "c"}, tagNames(updated.Tags))
	assert.Equal(t, int64(2), countRows(t, db, &models.PostTag{}, "post_id = ?", post.ID))

	kept, err := repo.Update(ctx, post.ID, PostUpdate{Title: "Again", Slug: "again", Content: "c3"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"b", "c"}, tagNames(kept.Tags), "tags untouched without ReplaceTags")
}

func TestPostRepository_Update_TagReplacementIsAtomic(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	author := createUser(t, db, "ada")
	post := createPost(t, db, author.ID, "p", false, "old1", "old2")

	injected := errors.New("injected post_tags failure")
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:fail_post_tags", func(tx *gorm.DB) {
		if tx.Statement.Table == "post_tags" {
			_ = tx.AddError(injected)
		}
	}))

	_, err := repo.Update(ctx, post.ID, PostUpdate{
		Title: "Changed", Slug: "changed", Content: "c",
		ReplaceTags: true, Tags: []string{"new1", "new2"},
	})
	require.Error(t, err)

	require.NoError(t, db.Callback().Create().Remove("test:fail_post_tags"))

	loaded, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "p", loaded.Slug, "field update rolled back with the tag set")
	assert.ElementsMatch(t, []string{"old1", "old2"}, tagNames(loaded.Tags))
}

func TestPostRepository_Update_SlugTakenAndMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	author := createUser(t, db, "ada")
	createPost(t, db, author.ID, "taken", false)
	post := createPost(t, db, author.ID, "mine", false)

	_, err := repo.Update(ctx, post.ID, PostUpdate{Title: "Taken", Slug: "taken", Content: "c"})
	assert.ErrorIs(t, err, ErrSlugTaken)

	_, err = repo.Update(ctx, 9999, PostUpdate{Title: "x", Slug: "x", Content: "c"})
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestPostRepository_Delete_Cascades(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	comments := NewCommentRepository(db)
	ctx := context.Background()
	author := createUser(t, db, "ada")
	reader := createUser(t, db, "bob")
	post := createPost(t, db, author.ID, "doomed", false, "go")
	other := createPost(t, db, author.ID, "survivor", false, "go")

	_, err := repo.Like(ctx, reader.ID, post.ID)
	require.NoError(t, err)
	root := &models.Comment{Content: "root", AuthorID: reader.ID, PostID: post.ID}
	require.NoError(t, comments.Create(ctx, root))
	require.NoError(t, comments.Create(ctx, &models.Comment{Content: "reply", AuthorID: author.ID, PostID: post.ID, ParentID: &root.ID}))

	require.NoError(t, repo.Delete(ctx, post.ID))

	assert.Equal(t, int64(0), countRows(t, db, &models.Post{}, "id = ?", post.ID))
	assert.Equal(t, int64(0), countRows(t, db, &models.PostTag{}, "post_id = ?", post.ID))
	assert.Equal(t, int64(0), countRows(t, db, &models.Like{}, "post_id = ?", post.ID))
	assert.Equal(t, int64(0), countRows(t, db, &models.Comment{}, "post_id = ?", post.ID))
	assert.Equal(t, int64(1), countRows(t, db, &models.PostTag{}, "post_id = ?", other.ID))
	assert.Equal(t, int64(1), countRows(t, db, &models.Tag{}, "name = ?", "go"), "tags are shared and kept")

	err = repo.Delete(ctx, post.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestPostRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	author := createUser(t, db, "ada")
	for _, slug := range []string{"a", "b", "c", "d", "e"} {
		createPost(t, db, author.ID, slug, false)
	}
	createPost(t, db, author.ID, "draft-1", true)
	createPost(t, db, author.ID, "draft-2", true)

	posts, total, err := repo.List(ctx, models.PostStatusPublished, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, posts, 2)
	assert.Equal(t, "e", posts[0].Slug, "most recently updated first")

	posts, total, err = repo.List(ctx, models.PostStatusPublished, 2, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, posts, 1)

	posts, _, err = repo.List(ctx, models.PostStatusPublished, 2, 10)
	require.NoError(t, err)
	assert.Empty(t, posts)

	posts, total, err = repo.List(ctx, models.PostStatusPublished, 2, -6)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Empty(t, posts, "a negative offset never falls back to the first page")

	posts, total, err = repo.List(ctx, models.PostStatusDraft, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, posts, 2)

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCounts{All: 7, Published: 5, Draft: 2}, counts)
}

func TestPostRepository_IncrementViews(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	author := createUser(t, db, "ada")
	post := createPost(t, db, author.ID, "viewed", false)

	views, err := repo.IncrementViews(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), views)
	views, err = repo.IncrementViews(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), views)

	_, err = repo.IncrementViews(ctx, 424242)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestPostRepository_ResolveRef(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	author := createUser(t, db, "ada")
	first := createPost(t, db, author.ID, "first", false)
	numeric := createPost(t, db, author.ID, "2024", false)

	got, err := repo.ResolveRef(ctx, "first")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	got, err = repo.ResolveRef(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID, "numeric refs resolve by id first")

	got, err = repo.ResolveRef(ctx, "2024")
	require.NoError(t, err)
	assert.Equal(t, numeric.ID, got.ID, "falls back to slug when no id matches")

	_, err = repo.ResolveRef(ctx, "missing")
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestPostRepository_Discovery(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	author := createUser(t, db, "ada")

	hot := createPost(t, db, author.ID, "hot", false, "go", "db")
	warm := createPost(t, db, author.ID, "warm", false, "go")
	createPost(t, db, author.ID, "secret-draft", true, "go")
	for i := 0; i < 3; i++ {
		_, err := repo.IncrementViews(ctx, hot.ID)
		require.NoError(t, err)
	}
	_, err := repo.IncrementViews(ctx, warm.ID)
	require.NoError(t, err)

	top, err := repo.TopByEngagement(ctx, 5)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "hot", top[0].Slug)
	assert.Equal(t, "warm", top[1].Slug)

	require.NoError(t, db.Model(&models.Post{}).Where("id = ?", warm.ID).Update("title", "Gopher WISDOM").Error)
	found, err := repo.Search(ctx, "wisdom")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, warm.ID, found[0].ID)

	found, err = repo.Search(ctx, "content of")
	require.NoError(t, err)
	assert.Len(t, found, 2, "drafts excluded")

	found, err = repo.Search(ctx, "100%")
	require.NoError(t, err)
	assert.Empty(t, found, "wildcards are literal")

	tagged, err := repo.ByTag(ctx, "go")
	require.NoError(t, err)
	assert.Len(t, tagged, 2)

	tagged, err = repo.ByTag(ctx, "Go")
	require.NoError(t, err)
	assert.Empty(t, tagged, "tag names are case-sensitive")

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = repo.ByTag(cancelled, "go")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPostRepository_IncrementViews_SQLShape(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "posts" SET "views"=views + $1 WHERE id = $2`)).
		WithArgs(1, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id","views" FROM "posts" WHERE "posts"."id" = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "views"}).AddRow(7, 12))
	mock.ExpectCommit()

	views, err := repo.IncrementViews(context.Background(), 7)
	assert.NoError(t, err)
	assert.Equal(t, int64(12), views)
	assert.NoError(t, mock.ExpectationsWereMet())
}
