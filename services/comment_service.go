package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"github.com/HSouheill/playerback_backend/metrics"
	"github.com/HSouheill/playerback_backend/models"
	"github.com/HSouheill/playerback_backend/repositories"
	"github.com/HSouheill/playerback_backend/websocket"
)

type CommentService struct {
	comments CommentStore
	posts    PostStore
	users    UserStore
	notifier Notifier
}

func NewCommentService(comments CommentStore, posts PostStore, users UserStore, notifier Notifier) *CommentService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &CommentService{comments: comments, posts: posts, users: users, notifier: notifier}
}

type CreateCommentInput struct {
	UserID          primitive.ObjectID
	Content         string
	PostID          *primitive.ObjectID
	ParentCommentID *primitive.ObjectID
}

// CreateComment attaches a comment to exactly one of a post or a parent
// comment. Top-level comments are appended to the post's comment list.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.CommentView, error) {
	if err := validateContent(in.Content); err != nil {
		return nil, err
	}
	if in.PostID == nil && in.ParentCommentID == nil {
		return nil, models.NewValidationError("Either postId or parentCommentId is required")
	}
	if in.PostID != nil && in.ParentCommentID != nil {
		return nil, models.NewValidationError("Only one of postId or parentCommentId may be given")
	}

	var owner primitive.ObjectID
	if in.PostID != nil {
		post, err := s.posts.FindByID(ctx, *in.PostID)
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.NewNotFoundError("Post not found")
		}
		if err != nil {
			return nil, err
		}
		owner = post.UserID
	} else {
		parent, err := s.comments.FindByID(ctx, *in.ParentCommentID)
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.NewNotFoundError("Parent comment not found")
		}
		if err != nil {
			return nil, err
		}
		owner = parent.UserID
	}

	comment := &models.Comment{
		UserID:          in.UserID,
		PostID:          in.PostID,
		ParentCommentID: in.ParentCommentID,
		Content:         in.Content,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	if in.PostID != nil {
		if err := s.posts.PushComment(ctx, *in.PostID, comment.ID); err != nil {
			return nil, err
		}
	}

	view, err := s.GetComment(ctx, comment.ID, nil)
	if err != nil {
		return nil, err
	}

	s.notifier.Broadcast(websocket.EventCommentCreated, view)
	if owner != in.UserID {
		s.notifier.NotifyUser(owner, websocket.EventCommentCreated, "Someone replied to you", view)
	}
	return view, nil
}

// GetComment loads one comment with its author and like info
func (s *CommentService) GetComment(ctx context.Context, commentID primitive.ObjectID, viewer *primitive.ObjectID) (*models.CommentView, error) {
	comment, err := s.comments.FindByID(ctx, commentID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.NewNotFoundError("Comment not found")
	}
	if err != nil {
		return nil, err
	}

	view := &models.CommentView{Comment: comment}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		authors, err := joinAuthors(gctx, s.users, []primitive.ObjectID{comment.UserID})
		if err != nil {
			return err
		}
		comment.User = authors[comment.UserID]
		return nil
	})
	g.Go(func() error {
		n, err := s.comments.LikeCount(gctx, commentID)
		view.LikeCount = n
		return err
	})
	if viewer != nil {
		g.Go(func() error {
			liked, err := s.comments.IsLiked(gctx, commentID, *viewer)
			view.IsLiked = liked
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return view, nil
}

// ListPostComments pages the top-level comments of a post, newest first
func (s *CommentService) ListPostComments(ctx context.Context, postID primitive.ObjectID, viewer *primitive.ObjectID, page, limit int) ([]*models.CommentView, models.PageInfo, error) {
	if _, err := s.posts.FindByID(ctx, postID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.PageInfo{}, models.NewNotFoundError("Post not found")
		}
		return nil, models.PageInfo{}, err
	}
	return s.list(ctx, repositories.CommentQuery{PostID: &postID}, viewer, page, limit)
}

// ListReplies pages the replies to a comment, oldest first
func (s *CommentService) ListReplies(ctx context.Context, parentID primitive.ObjectID, viewer *primitive.ObjectID, page, limit int) ([]*models.CommentView, models.PageInfo, error) {
	if _, err := s.comments.FindByID(ctx, parentID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.PageInfo{}, models.NewNotFoundError("Comment not found")
		}
		return nil, models.PageInfo{}, err
	}
	return s.list(ctx, repositories.CommentQuery{ParentCommentID: &parentID}, viewer, page, limit)
}

func (s *CommentService) list(ctx context.Context, q repositories.CommentQuery, viewer *primitive.ObjectID, page, limit int) ([]*models.CommentView, models.PageInfo, error) {
	comments, info, err := listPage(ctx, page, limit,
		func(ctx context.Context) (int64, error) { return s.comments.Count(ctx, q) },
		func(ctx context.Context) ([]*models.Comment, error) { return s.comments.Page(ctx, q, page, limit) },
	)
	if err != nil {
		return nil, models.PageInfo{}, err
	}

	authors, err := joinAuthors(ctx, s.users, lo.Map(comments, func(c *models.Comment, _ int) primitive.ObjectID { return c.UserID }))
	if err != nil {
		return nil, models.PageInfo{}, err
	}

	views := lo.Map(comments, func(c *models.Comment, _ int) *models.CommentView {
		c.User = authors[c.UserID]
		return newCommentView(c, viewer)
	})
	return views, info, nil
}

// SetLike adds or removes userID from the comment's likes
func (s *CommentService) SetLike(ctx context.Context, commentID, userID primitive.ObjectID, liking bool) (*models.CommentView, error) {
	comment, err := s.comments.SetLike(ctx, commentID, userID, liking)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.NewNotFoundError("Comment not found")
	}
	if err != nil {
		return nil, err
	}

	authors, err := joinAuthors(ctx, s.users, []primitive.ObjectID{comment.UserID})
	if err != nil {
		return nil, err
	}
	comment.User = authors[comment.UserID]
	view := newCommentView(comment, &userID)

	event, action := websocket.EventCommentUnliked, metrics.ActionUnlike
	if liking {
		event, action = websocket.EventCommentLiked, metrics.ActionLike
	}
	metrics.RecordInteraction(metrics.EntityComment, action)
	payload := map[string]interface{}{"commentId": commentID, "userId": userID, "likeCount": view.LikeCount}
	s.notifier.Broadcast(event, payload)
	if liking && comment.UserID != userID {
		s.notifier.NotifyUser(comment.UserID, event, "Someone liked your comment", payload)
	}
	return view, nil
}

// UpdateComment replaces the content of an owned comment
func (s *CommentService) UpdateComment(ctx context.Context, commentID, userID primitive.ObjectID, content string) (*models.CommentView, error) {
	if err := validateContent(content); err != nil {
		return nil, err
	}
	if _, err := s.ownedComment(ctx, commentID, userID, "You can only update your own comments"); err != nil {
		return nil, err
	}

	if _, err := s.comments.UpdateContent(ctx, commentID, content); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.NewNotFoundError("Comment not found")
		}
		return nil, err
	}
	return s.GetComment(ctx, commentID, &userID)
}

// DeleteComment removes an owned comment and every reply below it. A
// top-level comment is also pulled from its post's comment list.
func (s *CommentService) DeleteComment(ctx context.Context, commentID, userID primitive.ObjectID) error {
	comment, err := s.ownedComment(ctx, commentID, userID, "You can only delete your own comments")
	if err != nil {
		return err
	}

	thread, err := collectThread(ctx, s.comments, []primitive.ObjectID{commentID})
	if err != nil {
		return err
	}
	if _, err := s.comments.DeleteMany(ctx, thread); err != nil {
		return err
	}
	if comment.PostID != nil {
		if err := s.posts.PullComments(ctx, *comment.PostID, []primitive.ObjectID{commentID}); err != nil {
			return err
		}
	}

	s.notifier.Broadcast(websocket.EventCommentDeleted, map[string]interface{}{"commentId": commentID, "deleted": len(thread)})
	return nil
}

func (s *CommentService) ownedComment(ctx context.Context, commentID, userID primitive.ObjectID, denied string) (*models.Comment, error) {
	comment, err := s.comments.FindByID(ctx, commentID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.NewNotFoundError("Comment not found")
	}
	if err != nil {
		return nil, err
	}
	if comment.UserID != userID {
		return nil, models.NewForbiddenError(denied)
	}
	return comment, nil
}

// collectThread returns roots plus all of their descendants, walking one
// reply level per query
func collectThread(ctx context.Context, comments CommentStore, roots []primitive.ObjectID) ([]primitive.ObjectID, error) {
	all := append([]primitive.ObjectID{}, roots...)
	seen := make(map[primitive.ObjectID]struct{}, len(roots))
	for _, id := range roots {
		seen[id] = struct{}{}
	}

	level := roots
	for len(level) > 0 {
		children, err := comments.ChildIDs(ctx, level)
		if err != nil {
			return nil, err
		}
		level = lo.Filter(children, func(id primitive.ObjectID, _ int) bool {
			if _, ok := seen[id]; ok {
				return false
			}
			seen[id] = struct{}{}
			return true
		})
		all = append(all, level...)
	}
	return all, nil
}

func validateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return models.NewValidationError("Content is required")
	}
	if utf8.RuneCountInString(content) > models.MaxCommentLength {
		return models.NewValidationError("Content must be at most 1000 characters")
	}
	return nil
}

func newCommentView(c *models.Comment, viewer *primitive.ObjectID) *models.CommentView {
	return &models.CommentView{
		Comment:   c,
		LikeCount: len(c.Likes),
		IsLiked:   containsID(c.Likes, viewer),
	}
}
