package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HSouheill/playerback_backend/models"
	"github.com/HSouheill/playerback_backend/repositories"
	"github.com/HSouheill/playerback_backend/websocket"
)

func TestCommentService_CreateComment_Validation(t *testing.T) {
	ctx := context.Background()
	postID := primitive.NewObjectID()
	parentID := primitive.NewObjectID()

	cases := []struct {
		name string
		in   CreateCommentInput
	}{
		{"missing content", CreateCommentInput{PostID: &postID}},
		{"content too long", CreateCommentInput{Content: strings.Repeat("a", models.MaxCommentLength+1), PostID: &postID}},
		{"no target", CreateCommentInput{Content: "hi"}},
		{"both targets", CreateCommentInput{Content: "hi", PostID: &postID, ParentCommentID: &parentID}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewCommentService(noopCommentStore(), noopPostStore(), noopUserStore(), nil)
			_, err := svc.CreateComment(ctx, tc.in)
			assertAppError(t, err, models.CodeValidation)
		})
	}
}

func TestCommentService_CreateComment_TopLevel(t *testing.T) {
	ctx := context.Background()
	author := primitive.NewObjectID()
	postOwner := primitive.NewObjectID()
	postID := primitive.NewObjectID()

	stored := map[primitive.ObjectID]*models.Comment{}
	comments := noopCommentStore()
	comments.createFn = func(_ context.Context, c *models.Comment) error {
		c.ID = primitive.NewObjectID()
		stored[c.ID] = c
		return nil
	}
	comments.findByIDFn = func(_ context.Context, id primitive.ObjectID) (*models.Comment, error) {
		if c, ok := stored[id]; ok {
			return c, nil
		}
		return nil, models.ErrNotFound
	}

	posts := noopPostStore()
	posts.findByIDFn = func(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
		return &models.Post{ID: id, UserID: postOwner}, nil
	}
	var pushed []primitive.ObjectID
	posts.pushCommentFn = func(_ context.Context, _ primitive.ObjectID, commentID primitive.ObjectID) error {
		pushed = append(pushed, commentID)
		return nil
	}
	notes := newNotifierRecorder()
	svc := NewCommentService(comments, posts, noopUserStore(), notes)

	view, err := svc.CreateComment(ctx, CreateCommentInput{UserID: author, Content: "first", PostID: &postID})
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{view.ID}, pushed)
	require.NotNil(t, view.User)
	assert.Equal(t, author, view.User.ID)
	assert.Equal(t, []string{websocket.EventCommentCreated}, notes.broadcast)
	assert.Equal(t, []string{websocket.EventCommentCreated}, notes.targeted[postOwner])
}

func TestCommentService_CreateComment_ReplyNotPushed(t *testing.T) {
	ctx := context.Background()
	parentID := primitive.NewObjectID()

	posts := noopPostStore()
	posts.pushCommentFn = func(_ context.Context, _, _ primitive.ObjectID) error {
		t.Fatal("replies must not be pushed into the post's comment list")
		return nil
	}
	svc := NewCommentService(noopCommentStore(), posts, noopUserStore(), nil)

	_, err := svc.CreateComment(ctx, CreateCommentInput{UserID: primitive.NewObjectID(), Content: "reply", ParentCommentID: &parentID})
	require.NoError(t, err)
}

func TestCommentService_CreateComment_MissingParent(t *testing.T) {
	ctx := context.Background()
	postID := primitive.NewObjectID()

	posts := noopPostStore()
	posts.findByIDFn = func(_ context.Context, _ primitive.ObjectID) (*models.Post, error) { return nil, models.ErrNotFound }
	svc := NewCommentService(noopCommentStore(), posts, noopUserStore(), nil)

	_, err := svc.CreateComment(ctx, CreateCommentInput{UserID: primitive.NewObjectID(), Content: "hi", PostID: &postID})
	assertAppError(t, err, models.CodeNotFound)
}

func TestCommentService_ListQueries(t *testing.T) {
	ctx := context.Background()
	postID := primitive.NewObjectID()
	parentID := primitive.NewObjectID()
	viewer := primitive.NewObjectID()

	var queries []repositories.CommentQuery
	comments := noopCommentStore()
	comments.countFn = func(_ context.Context, _ repositories.CommentQuery) (int64, error) { return 3, nil }
	comments.pageFn = func(_ context.Context, q repositories.CommentQuery, _, _ int) ([]*models.Comment, error) {
		queries = append(queries, q)
		return []*models.Comment{{ID: primitive.NewObjectID(), UserID: viewer, Likes: []primitive.ObjectID{viewer}}}, nil
	}
	svc := NewCommentService(comments, noopPostStore(), noopUserStore(), nil)

	items, info, err := svc.ListPostComments(ctx, postID, &viewer, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), info.TotalPages)
	require.Len(t, items, 1)
	assert.True(t, items[0].IsLiked)
	assert.Equal(t, 1, items[0].LikeCount)

	_, _, err = svc.ListReplies(ctx, parentID, nil, 1, 10)
	require.NoError(t, err)

	require.Len(t, queries, 2)
	assert.Equal(t, &postID, queries[0].PostID)
	assert.Nil(t, queries[0].ParentCommentID)
	assert.Equal(t, &parentID, queries[1].ParentCommentID)
}

func TestCommentService_SetLike(t *testing.T) {
	ctx := context.Background()
	commentID := primitive.NewObjectID()
	liker := primitive.NewObjectID()

	comments := noopCommentStore()
	comments.setLikeFn = func(_ context.Context, id, uid primitive.ObjectID, liking bool) (*models.Comment, error) {
		c := &models.Comment{ID: id, UserID: uid, Likes: []primitive.ObjectID{}}
		if liking {
			c.Likes = append(c.Likes, uid)
		}
		return c, nil
	}
	notes := newNotifierRecorder()
	svc := NewCommentService(comments, noopPostStore(), noopUserStore(), notes)

	view, err := svc.SetLike(ctx, commentID, liker, true)
	require.NoError(t, err)
	assert.True(t, view.IsLiked)
	assert.Equal(t, 1, view.LikeCount)
	// liking your own comment sends no targeted notification
	assert.Empty(t, notes.targeted)
}

func TestCommentService_UpdateComment(t *testing.T) {
	ctx := context.Background()
	author := primitive.NewObjectID()
	commentID := primitive.NewObjectID()

	comments := noopCommentStore()
	comments.findByIDFn = func(_ context.Context, id primitive.ObjectID) (*models.Comment, error) {
		return &models.Comment{ID: id, UserID: author}, nil
	}
	svc := NewCommentService(comments, noopPostStore(), noopUserStore(), nil)

	_, err := svc.UpdateComment(ctx, commentID, author, "edited")
	require.NoError(t, err)

	_, err = svc.UpdateComment(ctx, commentID, primitive.NewObjectID(), "edited")
	assertAppError(t, err, models.CodeForbidden)

	_, err = svc.UpdateComment(ctx, commentID, author, "")
	assertAppError(t, err, models.CodeValidation)
}

func TestCommentService_DeleteComment(t *testing.T) {
	ctx := context.Background()
	author := primitive.NewObjectID()
	postID := primitive.NewObjectID()
	root := primitive.NewObjectID()
	child := primitive.NewObjectID()
	grandchild := primitive.NewObjectID()

	comments := noopCommentStore()
	comments.findByIDFn = func(_ context.Context, id primitive.ObjectID) (*models.Comment, error) {
		return &models.Comment{ID: id, UserID: author, PostID: &postID}, nil
	}
	tree := map[primitive.ObjectID][]primitive.ObjectID{root: {child}, child: {grandchild}}
	comments.childIDsFn = func(_ context.Context, parents []primitive.ObjectID) ([]primitive.ObjectID, error) {
		var out []primitive.ObjectID
		for _, p := range parents {
			out = append(out, tree[p]...)
		}
		return out, nil
	}
	var deleted []primitive.ObjectID
	comments.deleteManyFn = func(_ context.Context, ids []primitive.ObjectID) (int64, error) {
		deleted = ids
		return int64(len(ids)), nil
	}

	posts := noopPostStore()
	var pulled []primitive.ObjectID
	posts.pullCommentsFn = func(_ context.Context, _ primitive.ObjectID, ids []primitive.ObjectID) error {
		pulled = ids
		return nil
	}
	svc := NewCommentService(comments, posts, noopUserStore(), nil)

	require.NoError(t, svc.DeleteComment(ctx, root, author))
	assert.Equal(t, []primitive.ObjectID{root, child, grandchild}, deleted)
	assert.Equal(t, []primitive.ObjectID{root}, pulled)

	err := svc.DeleteComment(ctx, root, primitive.NewObjectID())
	assertAppError(t, err, models.CodeForbidden)
}

func TestListPage_PropagatesErrors(t *testing.T) {
	_, _, err := listPage(context.Background(), 1, 10,
		func(context.Context) (int64, error) { return 0, assert.AnError },
		func(context.Context) ([]int, error) { return []int{1}, nil },
	)
	assert.ErrorIs(t, err, assert.AnError)
}
