package services

import (
	"context"
	"errors"
	"strings"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"github.com/HSouheill/playerback_backend/metrics"
	"github.com/HSouheill/playerback_backend/models"
	"github.com/HSouheill/playerback_backend/repositories"
	"github.com/HSouheill/playerback_backend/websocket"
)

// View outcome messages
const (
	MsgViewRecorded    = "View recorded"
	MsgAlreadyViewed   = "Post already viewed"
	MsgViewNotRecorded = "View not recorded: authentication required"
)

type PostService struct {
	posts    PostStore
	comments CommentStore
	users    UserStore
	notifier Notifier
}

func NewPostService(posts PostStore, comments CommentStore, users UserStore, notifier Notifier) *PostService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &PostService{posts: posts, comments: comments, users: users, notifier: notifier}
}

type CreatePostInput struct {
	UserID      primitive.ObjectID
	Title       string
	Type        string
	Description string
	Src         string
	Content     string
}

// CreatePost validates the shape required by the post type, persists it and
// returns it with the owner joined
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.PostView, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if in.Type == "" {
		return nil, models.NewValidationError("Type is required")
	}
	if !models.IsValidPostType(in.Type) {
		return nil, models.NewValidationError("Type must be one of: video, image, text")
	}

	post := &models.Post{
		UserID:      in.UserID,
		Title:       title,
		Type:        in.Type,
		Description: strings.TrimSpace(in.Description),
	}
	if in.Type == models.PostTypeText {
		if strings.TrimSpace(in.Content) == "" {
			return nil, models.NewValidationError("Content is required for text posts")
		}
		post.Content = in.Content
	} else {
		if strings.TrimSpace(in.Src) == "" {
			return nil, models.NewValidationError("Source is required")
		}
		post.Src = strings.TrimSpace(in.Src)
	}

	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.GetPost(ctx, post.ID, nil)
}

// GetPost loads one post and fans out the author join and the caller's
// like state concurrently
func (s *PostService) GetPost(ctx context.Context, postID primitive.ObjectID, viewer *primitive.ObjectID) (*models.PostView, error) {
	post, err := s.posts.FindByID(ctx, postID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.NewNotFoundError("Post not found")
	}
	if err != nil {
		return nil, err
	}

	view := &models.PostView{
		Post:         post,
		ViewCount:    len(post.Views),
		CommentCount: len(post.Comments),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		authors, err := joinAuthors(gctx, s.users, []primitive.ObjectID{post.UserID})
		if err != nil {
			return err
		}
		post.User = authors[post.UserID]
		return nil
	})
	g.Go(func() error {
		n, err := s.posts.LikeCount(gctx, postID)
		view.LikeCount = n
		return err
	})
	if viewer != nil {
		g.Go(func() error {
			liked, err := s.posts.IsLiked(gctx, postID, *viewer)
			view.IsLiked = liked
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return view, nil
}

type ListPostsInput struct {
	// Owner restricts the listing to one user's posts when set
	Owner  *primitive.ObjectID
	Viewer *primitive.ObjectID
	Page   int
	Limit  int
}

// ListPosts returns one page of posts, newest first
func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) ([]*models.PostView, models.PageInfo, error) {
	q := repositories.PostQuery{UserID: in.Owner}
	posts, info, err := listPage(ctx, in.Page, in.Limit,
		func(ctx context.Context) (int64, error) { return s.posts.Count(ctx, q) },
		func(ctx context.Context) ([]*models.Post, error) { return s.posts.Page(ctx, q, in.Page, in.Limit) },
	)
	if err != nil {
		return nil, models.PageInfo{}, err
	}

	authors, err := joinAuthors(ctx, s.users, lo.Map(posts, func(p *models.Post, _ int) primitive.ObjectID { return p.UserID }))
	if err != nil {
		return nil, models.PageInfo{}, err
	}

	views := lo.Map(posts, func(p *models.Post, _ int) *models.PostView {
		p.User = authors[p.UserID]
		return newPostView(p, in.Viewer)
	})
	return views, info, nil
}

// ListUserPosts lists the posts of owner after checking the id resolves
func (s *PostService) ListUserPosts(ctx context.Context, owner primitive.ObjectID, viewer *primitive.ObjectID, page, limit int) ([]*models.PostView, models.PageInfo, error) {
	if _, err := s.users.FindByID(ctx, owner); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.PageInfo{}, models.NewNotFoundError("User not found")
		}
		return nil, models.PageInfo{}, err
	}
	return s.ListPosts(ctx, ListPostsInput{Owner: &owner, Viewer: viewer, Page: page, Limit: limit})
}

// RecordView moves (post, viewer) from not-viewed to viewed. Anonymous
// callers never transition but still get the current count.
func (s *PostService) RecordView(ctx context.Context, postID primitive.ObjectID, viewer *primitive.ObjectID) (models.ViewResponse, error) {
	if viewer == nil {
		post, err := s.posts.FindByID(ctx, postID)
		if errors.Is(err, models.ErrNotFound) {
			return models.ViewResponse{}, models.NewNotFoundError("Post not found")
		}
		if err != nil {
			return models.ViewResponse{}, err
		}
		return models.ViewResponse{Success: false, Message: MsgViewNotRecorded, Views: len(post.Views)}, nil
	}

	added, err := s.posts.AddView(ctx, postID, *viewer)
	if errors.Is(err, models.ErrNotFound) {
		return models.ViewResponse{}, models.NewNotFoundError("Post not found")
	}
	if err != nil {
		return models.ViewResponse{}, err
	}

	count, err := s.posts.ViewCount(ctx, postID)
	if err != nil {
		return models.ViewResponse{}, err
	}
	if !added {
		return models.ViewResponse{Success: false, Message: MsgAlreadyViewed, Views: count}, nil
	}

	metrics.RecordInteraction(metrics.EntityPost, metrics.ActionView)
	s.notifier.Broadcast(websocket.EventPostViewed, map[string]interface{}{"postId": postID, "views": count})
	return models.ViewResponse{Success: true, Message: MsgViewRecorded, Views: count}, nil
}

// SetLike adds or removes userID from the post's likes
func (s *PostService) SetLike(ctx context.Context, postID, userID primitive.ObjectID, liking bool) (*models.PostView, error) {
	post, err := s.posts.SetLike(ctx, postID, userID, liking)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.NewNotFoundError("Post not found")
	}
	if err != nil {
		return nil, err
	}

	authors, err := joinAuthors(ctx, s.users, []primitive.ObjectID{post.UserID})
	if err != nil {
		return nil, err
	}
	post.User = authors[post.UserID]
	view := newPostView(post, &userID)

	event, action := websocket.EventPostUnliked, metrics.ActionUnlike
	if liking {
		event, action = websocket.EventPostLiked, metrics.ActionLike
	}
	metrics.RecordInteraction(metrics.EntityPost, action)
	payload := map[string]interface{}{"postId": postID, "userId": userID, "likeCount": view.LikeCount}
	s.notifier.Broadcast(event, payload)
	if liking && post.UserID != userID {
		s.notifier.NotifyUser(post.UserID, event, "Someone liked your post", payload)
	}
	return view, nil
}

type UpdatePostInput struct {
	PostID      primitive.ObjectID
	UserID      primitive.ObjectID
	Title       *string
	Description *string
	Src         *string
	Content     *string
}

// UpdatePost edits an owned post. The type is fixed, so the content shape is
// revalidated against the stored type.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.PostView, error) {
	post, err := s.ownedPost(ctx, in.PostID, in.UserID, "You can only update your own posts")
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	var unset []string
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, models.NewValidationError("Title is required")
		}
		set["title"] = title
	}
	if in.Description != nil {
		if d := strings.TrimSpace(*in.Description); d != "" {
			set["description"] = d
		} else {
			unset = append(unset, "description")
		}
	}

	if post.Type == models.PostTypeText {
		if in.Src != nil && *in.Src != "" {
			return nil, models.NewValidationError("Source is not allowed for text posts")
		}
		if in.Content != nil {
			if strings.TrimSpace(*in.Content) == "" {
				return nil, models.NewValidationError("Content is required for text posts")
			}
			set["content"] = *in.Content
		}
	} else {
		if in.Content != nil && *in.Content != "" {
			return nil, models.NewValidationError("Content is only allowed for text posts")
		}
		if in.Src != nil {
			if strings.TrimSpace(*in.Src) == "" {
				return nil, models.NewValidationError("Source is required")
			}
			set["src"] = strings.TrimSpace(*in.Src)
		}
	}

	if _, err := s.posts.Update(ctx, in.PostID, set, unset); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.NewNotFoundError("Post not found")
		}
		return nil, err
	}
	return s.GetPost(ctx, in.PostID, &in.UserID)
}

// DeletePost removes an owned post together with every comment attached to
// it and all replies below those comments
func (s *PostService) DeletePost(ctx context.Context, postID, userID primitive.ObjectID) error {
	if _, err := s.ownedPost(ctx, postID, userID, "You can only delete your own posts"); err != nil {
		return err
	}

	roots, err := s.comments.IDsByPost(ctx, postID)
	if err != nil {
		return err
	}
	thread, err := collectThread(ctx, s.comments, roots)
	if err != nil {
		return err
	}
	if _, err := s.comments.DeleteMany(ctx, thread); err != nil {
		return err
	}

	if err := s.posts.Delete(ctx, postID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.NewNotFoundError("Post not found")
		}
		return err
	}
	s.notifier.Broadcast(websocket.EventPostDeleted, map[string]interface{}{"postId": postID})
	return nil
}

func (s *PostService) ownedPost(ctx context.Context, postID, userID primitive.ObjectID, denied string) (*models.Post, error) {
	post, err := s.posts.FindByID(ctx, postID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.NewNotFoundError("Post not found")
	}
	if err != nil {
		return nil, err
	}
	if post.UserID != userID {
		return nil, models.NewForbiddenError(denied)
	}
	return post, nil
}

// newPostView derives counters from the document snapshot
func newPostView(p *models.Post, viewer *primitive.ObjectID) *models.PostView {
	return &models.PostView{
		Post:         p,
		LikeCount:    len(p.Likes),
		ViewCount:    len(p.Views),
		CommentCount: len(p.Comments),
		IsLiked:      containsID(p.Likes, viewer),
	}
}
