package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HSouheill/playerback_backend/models"
	"github.com/HSouheill/playerback_backend/repositories"
)

// userStoreStub is a stub for UserStore.
type userStoreStub struct {
	createFn         func(context.Context, *models.User) error
	findByIDFn       func(context.Context, primitive.ObjectID) (*models.User, error)
	findByEmailFn    func(context.Context, string) (*models.User, error)
	findByUsernameFn func(context.Context, string) (*models.User, error)
	existsFn         func(context.Context, string, string) (bool, error)
	updateFn         func(context.Context, primitive.ObjectID, bson.M) (*models.User, error)
	deleteFn         func(context.Context, primitive.ObjectID) error
	summariesFn      func(context.Context, []primitive.ObjectID) (map[primitive.ObjectID]*models.UserSummary, error)
}

func (s *userStoreStub) Create(ctx context.Context, u *models.User) error { return s.createFn(ctx, u) }
func (s *userStoreStub) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.findByIDFn(ctx, id)
}
func (s *userStoreStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findByEmailFn(ctx, email)
}
func (s *userStoreStub) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findByUsernameFn(ctx, username)
}
func (s *userStoreStub) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	return s.existsFn(ctx, email, username)
}
func (s *userStoreStub) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.User, error) {
	return s.updateFn(ctx, id, set)
}
func (s *userStoreStub) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.deleteFn(ctx, id)
}
func (s *userStoreStub) Summaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.UserSummary, error) {
	return s.summariesFn(ctx, ids)
}

func noopUserStore() *userStoreStub {
	return &userStoreStub{
		createFn: func(_ context.Context, u *models.User) error {
			u.ID = primitive.NewObjectID()
			return nil
		},
		findByIDFn:       func(_ context.Context, id primitive.ObjectID) (*models.User, error) { return &models.User{ID: id}, nil },
		findByEmailFn:    func(_ context.Context, _ string) (*models.User, error) { return nil, models.ErrNotFound },
		findByUsernameFn: func(_ context.Context, _ string) (*models.User, error) { return nil, models.ErrNotFound },
		existsFn:         func(_ context.Context, _, _ string) (bool, error) { return false, nil },
		updateFn:         func(_ context.Context, id primitive.ObjectID, _ bson.M) (*models.User, error) { return &models.User{ID: id}, nil },
		deleteFn:         func(_ context.Context, _ primitive.ObjectID) error { return nil },
		summariesFn: func(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.UserSummary, error) {
			out := map[primitive.ObjectID]*models.UserSummary{}
			for _, id := range ids {
				out[id] = &models.UserSummary{ID: id, Username: "user-" + id.Hex()[18:]}
			}
			return out, nil
		},
	}
}

// postStoreStub is a stub for PostStore.
type postStoreStub struct {
	createFn       func(context.Context, *models.Post) error
	findByIDFn     func(context.Context, primitive.ObjectID) (*models.Post, error)
	pageFn         func(context.Context, repositories.PostQuery, int, int) ([]*models.Post, error)
	countFn        func(context.Context, repositories.PostQuery) (int64, error)
	updateFn       func(context.Context, primitive.ObjectID, bson.M, []string) (*models.Post, error)
	deleteFn       func(context.Context, primitive.ObjectID) error
	pushCommentFn  func(context.Context, primitive.ObjectID, primitive.ObjectID) error
	pullCommentsFn func(context.Context, primitive.ObjectID, []primitive.ObjectID) error
	setLikeFn      func(context.Context, primitive.ObjectID, primitive.ObjectID, bool) (*models.Post, error)
	isLikedFn      func(context.Context, primitive.ObjectID, primitive.ObjectID) (bool, error)
	likeCountFn    func(context.Context, primitive.ObjectID) (int, error)
	addViewFn      func(context.Context, primitive.ObjectID, primitive.ObjectID) (bool, error)
	viewCountFn    func(context.Context, primitive.ObjectID) (int, error)
}

func (s *postStoreStub) Create(ctx context.Context, p *models.Post) error { return s.createFn(ctx, p) }
func (s *postStoreStub) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	return s.findByIDFn(ctx, id)
}
func (s *postStoreStub) Page(ctx context.Context, q repositories.PostQuery, page, limit int) ([]*models.Post, error) {
	return s.pageFn(ctx, q, page, limit)
}
func (s *postStoreStub) Count(ctx context.Context, q repositories.PostQuery) (int64, error) {
	return s.countFn(ctx, q)
}
func (s *postStoreStub) Update(ctx context.Context, id primitive.ObjectID, set bson.M, unset []string) (*models.Post, error) {
	return s.updateFn(ctx, id, set, unset)
}
func (s *postStoreStub) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.deleteFn(ctx, id)
}
func (s *postStoreStub) PushComment(ctx context.Context, postID, commentID primitive.ObjectID) error {
	return s.pushCommentFn(ctx, postID, commentID)
}
func (s *postStoreStub) PullComments(ctx context.Context, postID primitive.ObjectID, ids []primitive.ObjectID) error {
	return s.pullCommentsFn(ctx, postID, ids)
}
func (s *postStoreStub) SetLike(ctx context.Context, postID, userID primitive.ObjectID, liking bool) (*models.Post, error) {
	return s.setLikeFn(ctx, postID, userID, liking)
}
func (s *postStoreStub) IsLiked(ctx context.Context, postID, userID primitive.ObjectID) (bool, error) {
	return s.isLikedFn(ctx, postID, userID)
}
func (s *postStoreStub) LikeCount(ctx context.Context, postID primitive.ObjectID) (int, error) {
	return s.likeCountFn(ctx, postID)
}
func (s *postStoreStub) AddView(ctx context.Context, postID, userID primitive.ObjectID) (bool, error) {
	return s.addViewFn(ctx, postID, userID)
}
func (s *postStoreStub) ViewCount(ctx context.Context, postID primitive.ObjectID) (int, error) {
	return s.viewCountFn(ctx, postID)
}

func noopPostStore() *postStoreStub {
	return &postStoreStub{
		createFn: func(_ context.Context, p *models.Post) error {
			p.ID = primitive.NewObjectID()
			return nil
		},
		findByIDFn:     func(_ context.Context, id primitive.ObjectID) (*models.Post, error) { return &models.Post{ID: id}, nil },
		pageFn:         func(_ context.Context, _ repositories.PostQuery, _, _ int) ([]*models.Post, error) { return nil, nil },
		countFn:        func(_ context.Context, _ repositories.PostQuery) (int64, error) { return 0, nil },
		updateFn:       func(_ context.Context, id primitive.ObjectID, _ bson.M, _ []string) (*models.Post, error) { return &models.Post{ID: id}, nil },
		deleteFn:       func(_ context.Context, _ primitive.ObjectID) error { return nil },
		pushCommentFn:  func(_ context.Context, _, _ primitive.ObjectID) error { return nil },
		pullCommentsFn: func(_ context.Context, _ primitive.ObjectID, _ []primitive.ObjectID) error { return nil },
		setLikeFn:      func(_ context.Context, id, _ primitive.ObjectID, _ bool) (*models.Post, error) { return &models.Post{ID: id}, nil },
		isLikedFn:      func(_ context.Context, _, _ primitive.ObjectID) (bool, error) { return false, nil },
		likeCountFn:    func(_ context.Context, _ primitive.ObjectID) (int, error) { return 0, nil },
		addViewFn:      func(_ context.Context, _, _ primitive.ObjectID) (bool, error) { return true, nil },
		viewCountFn:    func(_ context.Context, _ primitive.ObjectID) (int, error) { return 0, nil },
	}
}

// commentStoreStub is a stub for CommentStore.
type commentStoreStub struct {
	createFn        func(context.Context, *models.Comment) error
	findByIDFn      func(context.Context, primitive.ObjectID) (*models.Comment, error)
	pageFn          func(context.Context, repositories.CommentQuery, int, int) ([]*models.Comment, error)
	countFn         func(context.Context, repositories.CommentQuery) (int64, error)
	updateContentFn func(context.Context, primitive.ObjectID, string) (*models.Comment, error)
	idsByPostFn     func(context.Context, primitive.ObjectID) ([]primitive.ObjectID, error)
	childIDsFn      func(context.Context, []primitive.ObjectID) ([]primitive.ObjectID, error)
	deleteManyFn    func(context.Context, []primitive.ObjectID) (int64, error)
	setLikeFn       func(context.Context, primitive.ObjectID, primitive.ObjectID, bool) (*models.Comment, error)
	isLikedFn       func(context.Context, primitive.ObjectID, primitive.ObjectID) (bool, error)
	likeCountFn     func(context.Context, primitive.ObjectID) (int, error)
}

func (s *commentStoreStub) Create(ctx context.Context, c *models.Comment) error {
	return s.createFn(ctx, c)
}
func (s *commentStoreStub) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	return s.findByIDFn(ctx, id)
}
func (s *commentStoreStub) Page(ctx context.Context, q repositories.CommentQuery, page, limit int) ([]*models.Comment, error) {
	return s.pageFn(ctx, q, page, limit)
}
func (s *commentStoreStub) Count(ctx context.Context, q repositories.CommentQuery) (int64, error) {
	return s.countFn(ctx, q)
}
func (s *commentStoreStub) UpdateContent(ctx context.Context, id primitive.ObjectID, content string) (*models.Comment, error) {
	return s.updateContentFn(ctx, id, content)
}
func (s *commentStoreStub) IDsByPost(ctx context.Context, postID primitive.ObjectID) ([]primitive.ObjectID, error) {
	return s.idsByPostFn(ctx, postID)
}
func (s *commentStoreStub) ChildIDs(ctx context.Context, parentIDs []primitive.ObjectID) ([]primitive.ObjectID, error) {
	return s.childIDsFn(ctx, parentIDs)
}
func (s *commentStoreStub) DeleteMany(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	return s.deleteManyFn(ctx, ids)
}
func (s *commentStoreStub) SetLike(ctx context.Context, commentID, userID primitive.ObjectID, liking bool) (*models.Comment, error) {
	return s.setLikeFn(ctx, commentID, userID, liking)
}
func (s *commentStoreStub) IsLiked(ctx context.Context, commentID, userID primitive.ObjectID) (bool, error) {
	return s.isLikedFn(ctx, commentID, userID)
}
func (s *commentStoreStub) LikeCount(ctx context.Context, commentID primitive.ObjectID) (int, error) {
	return s.likeCountFn(ctx, commentID)
}

func noopCommentStore() *commentStoreStub {
	return &commentStoreStub{
		createFn: func(_ context.Context, c *models.Comment) error {
			c.ID = primitive.NewObjectID()
			return nil
		},
		findByIDFn:      func(_ context.Context, id primitive.ObjectID) (*models.Comment, error) { return &models.Comment{ID: id}, nil },
		pageFn:          func(_ context.Context, _ repositories.CommentQuery, _, _ int) ([]*models.Comment, error) { return nil, nil },
		countFn:         func(_ context.Context, _ repositories.CommentQuery) (int64, error) { return 0, nil },
		updateContentFn: func(_ context.Context, id primitive.ObjectID, c string) (*models.Comment, error) { return &models.Comment{ID: id, Content: c}, nil },
		idsByPostFn:     func(_ context.Context, _ primitive.ObjectID) ([]primitive.ObjectID, error) { return nil, nil },
		childIDsFn:      func(_ context.Context, _ []primitive.ObjectID) ([]primitive.ObjectID, error) { return nil, nil },
		deleteManyFn:    func(_ context.Context, ids []primitive.ObjectID) (int64, error) { return int64(len(ids)), nil },
		setLikeFn:       func(_ context.Context, id, _ primitive.ObjectID, _ bool) (*models.Comment, error) { return &models.Comment{ID: id}, nil },
		isLikedFn:       func(_ context.Context, _, _ primitive.ObjectID) (bool, error) { return false, nil },
		likeCountFn:     func(_ context.Context, _ primitive.ObjectID) (int, error) { return 0, nil },
	}
}

type tokenIssuerStub struct{}

func (tokenIssuerStub) GenerateJWT(userID primitive.ObjectID, _ string) (string, error) {
	return "token-" + userID.Hex(), nil
}

// notifierRecorder records every event it receives.
type notifierRecorder struct {
	mu        sync.Mutex
	broadcast []string
	targeted  map[primitive.ObjectID][]string
}

func newNotifierRecorder() *notifierRecorder {
	return &notifierRecorder{targeted: map[primitive.ObjectID][]string{}}
}

func (n *notifierRecorder) Broadcast(eventType string, _ interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.broadcast = append(n.broadcast, eventType)
}

func (n *notifierRecorder) NotifyUser(userID primitive.ObjectID, eventType, _ string, _ interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.targeted[userID] = append(n.targeted[userID], eventType)
}

func assertAppError(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}
