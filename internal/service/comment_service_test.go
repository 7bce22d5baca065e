package service

import (
	"context"
	"fmt"
	"testing"

	"inkpress/internal/models"
	"inkpress/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func uintPtr(v uint) *uint { return &v }

func ids(cs []*models.Comment) []uint {
	out := make([]uint, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}

func TestBuildForest(t *testing.T) {
	comments := []*models.Comment{
		{ID: 1},
		{ID: 2, ParentID: uintPtr(1)},
		{ID: 3, ParentID: uintPtr(1)},
		{ID: 4, ParentID: uintPtr(2)},
	}

	roots := BuildForest(comments)
	require.Len(t, roots, 1)
	assert.Equal(t, uint(1), roots[0].ID)
	assert.Equal(t, []uint{2, 3}, ids(roots[0].Replies))
	assert.Equal(t, []uint{4}, ids(roots[0].Replies[0].Replies))
	assert.Empty(t, roots[0].Replies[1].Replies)
	assert.NotNil(t, roots[0].Replies[1].Replies)
}

func TestBuildForest_OrphansBecomeRoots(t *testing.T) {
	comments := []*models.Comment{
		{ID: 5, ParentID: uintPtr(99)},
		{ID: 6, ParentID: uintPtr(7)},
		{ID: 7},
	}
	roots := BuildForest(comments)
	assert.Equal(t, []uint{5, 6, 7}, ids(roots))
	assert.Empty(t, BuildForest(nil))
}

type commentFixture struct {
	db       *gorm.DB
	svc      *CommentService
	author   *models.User
	reader   *models.User
	stranger *models.User
	admin    *models.User
	post     *models.Post
	other    *models.Post
}

func setupComments(t *testing.T) *commentFixture {
	t.Helper()
	db := setupTestDB(t)
	f := &commentFixture{
		db:       db,
		svc:      NewCommentService(repository.NewCommentRepository(db), repository.NewPostRepository(db)),
		author:   createUser(t, db, "author", models.RoleMember),
		reader:   createUser(t, db, "reader", models.RoleMember),
		stranger: createUser(t, db, "stranger", models.RoleMember),
		admin:    createUser(t, db, "admin", models.RoleAdmin),
	}
	posts := newPostService(db, nil, nil)
	var err error
	f.post, err = posts.Create(context.Background(), CreatePostInput{AuthorID: f.author.ID, Title: "Discussed", Content: "x"})
	require.NoError(t, err)
	f.other, err = posts.Create(context.Background(), CreatePostInput{AuthorID: f.author.ID, Title: "Elsewhere", Content: "x"})
	require.NoError(t, err)
	return f
}

func (f *commentFixture) add(t *testing.T, author *models.User, parent *uint, content string) *models.Comment {
	t.Helper()
	c, err := f.svc.Add(context.Background(), AddCommentInput{
		PostRef:  fmt.Sprint(f.post.ID),
		AuthorID: author.ID,
		Content:  content,
		ParentID: parent,
	})
	require.NoError(t, err)
	return c
}

func TestCommentService_AddAndList(t *testing.T) {
	f := setupComments(t)
	ctx := context.Background()

	root := f.add(t, f.reader, nil, "first")
	reply := f.add(t, f.author, &root.ID, "thanks")
	f.add(t, f.reader, &reply.ID, "welcome")
	require.NotNil(t, root.Author)
	assert.Equal(t, "reader", root.Author.Name)

	bySlug, err := f.svc.Add(ctx, AddCommentInput{PostRef: "discussed", AuthorID: f.stranger.ID, Content: "via slug"})
	require.NoError(t, err)
	assert.Equal(t, f.post.ID, bySlug.PostID)

	forest, err := f.svc.ListForPost(ctx, "discussed", nil)
	require.NoError(t, err)
	require.Len(t, forest, 2)
	assert.Equal(t, root.ID, forest[0].ID)
	require.Len(t, forest[0].Replies, 1)
	require.Len(t, forest[0].Replies[0].Replies, 1)
	assert.Equal(t, "welcome", forest[0].Replies[0].Replies[0].Content)
}

func TestCommentService_Add_Rejects(t *testing.T) {
	f := setupComments(t)
	ctx := context.Background()

	foreign, err := f.svc.Add(ctx, AddCommentInput{PostRef: "elsewhere", AuthorID: f.reader.ID, Content: "other post"})
	require.NoError(t, err)

	_, err = f.svc.Add(ctx, AddCommentInput{PostRef: "discussed", AuthorID: f.reader.ID, Content: "x", ParentID: &foreign.ID})
	assertCode(t, err, models.CodeValidation)

	_, err = f.svc.Add(ctx, AddCommentInput{PostRef: "discussed", AuthorID: f.reader.ID, Content: "x", ParentID: uintPtr(999)})
	assertCode(t, err, models.CodeValidation)

	_, err = f.svc.Add(ctx, AddCommentInput{PostRef: "missing", AuthorID: f.reader.ID, Content: "x"})
	assertCode(t, err, models.CodeNotFound)

	_, err = f.svc.Add(ctx, AddCommentInput{PostRef: "discussed", AuthorID: f.reader.ID, Content: "   "})
	assertCode(t, err, models.CodeValidation)
}

func TestCommentService_Update(t *testing.T) {
	f := setupComments(t)
	ctx := context.Background()
	c := f.add(t, f.reader, nil, "typo")

	_, err := f.svc.Update(ctx, actorOf(f.admin), c.ID, "admin edit")
	assertCode(t, err, models.CodeForbidden)

	got, err := f.svc.Update(ctx, actorOf(f.reader), c.ID, "fixed")
	require.NoError(t, err)
	assert.Equal(t, "fixed", got.Content)
}

func TestCommentService_Delete(t *testing.T) {
	f := setupComments(t)
	ctx := context.Background()

	root := f.add(t, f.reader, nil, "root")
	child := f.add(t, f.stranger, &root.ID, "child")
	f.add(t, f.reader, &child.ID, "grandchild")
	lone := f.add(t, f.stranger, nil, "lone")
	other := f.add(t, f.reader, nil, "other")

	_, err := f.svc.Delete(ctx, actorOf(f.stranger), root.ID)
	assertCode(t, err, models.CodeForbidden)

	n, err := f.svc.Delete(ctx, actorOf(f.reader), root.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = f.svc.Delete(ctx, actorOf(f.author), lone.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = f.svc.Delete(ctx, actorOf(f.admin), other.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var remaining int64
	require.NoError(t, f.db.Model(&models.Comment{}).Count(&remaining).Error)
	assert.Zero(t, remaining)

	_, err = f.svc.Delete(ctx, actorOf(f.admin), root.ID)
	assertCode(t, err, models.CodeNotFound)
}

func TestCommentService_ListAll(t *testing.T) {
	f := setupComments(t)
	ctx := context.Background()
	f.add(t, f.reader, nil, "one")

	_, err := f.svc.ListAll(ctx, actorOf(f.reader))
	assertCode(t, err, models.CodeForbidden)

	forest, err := f.svc.ListAll(ctx, actorOf(f.admin))
	require.NoError(t, err)
	assert.Len(t, forest, 1)
}
