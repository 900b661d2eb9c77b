package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

type contentBody struct {
	Content string `json:"content"`
}

// Comments lists all comments on a post, newest first, including replies.
func (c *Client) Comments(ctx context.Context, postID string) ([]Comment, error) {
	var comments []Comment
	path := "/api/social/comments/posts/" + url.PathEscape(postID) + "/comments"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &comments); err != nil {
		return nil, fmt.Errorf("fetching comments for post %s: %w", postID, err)
	}
	return comments, nil
}

// AddComment comments on a post.
func (c *Client) AddComment(ctx context.Context, postID, content string) (Comment, error) {
	var comment Comment
	path := "/api/social/comments/posts/" + url.PathEscape(postID) + "/comments"
	if err := c.doJSON(ctx, http.MethodPost, path, nil, contentBody{Content: content}, &comment); err != nil {
		return Comment{}, fmt.Errorf("commenting on post %s: %w", postID, err)
	}

	c.flushCache()

	return comment, nil
}

// UpdateComment edits one of the current user's comments.
func (c *Client) UpdateComment(ctx context.Context, commentID, content string) (Comment, error) {
	var comment Comment
	path := "/api/social/comments/" + url.PathEscape(commentID)
	if err := c.doJSON(ctx, http.MethodPut, path, nil, contentBody{Content: content}, &comment); err != nil {
		return Comment{}, fmt.Errorf("updating comment %s: %w", commentID, err)
	}
	return comment, nil
}

// DeleteComment removes one of the current user's comments and its replies.
func (c *Client) DeleteComment(ctx context.Context, commentID string) error {
	path := "/api/social/comments/" + url.PathEscape(commentID)
	if err := c.doJSON(ctx, http.MethodDelete, path, nil, nil, nil); err != nil {
		return fmt.Errorf("deleting comment %s: %w", commentID, err)
	}

	c.flushCache()

	return nil
}

// Replies lists all replies to a comment, newest first.
func (c *Client) Replies(ctx context.Context, commentID string) ([]Reply, error) {
	var replies []Reply
	path := "/api/social/replies/comments/" + url.PathEscape(commentID) + "/replies"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &replies); err != nil {
		return nil, fmt.Errorf("fetching replies for comment %s: %w", commentID, err)
	}
	return replies, nil
}

// AddReply replies to a comment.
func (c *Client) AddReply(ctx context.Context, commentID, content string) (Reply, error) {
	var reply Reply
	path := "/api/social/replies/comments/" + url.PathEscape(commentID) + "/replies"
	if err := c.doJSON(ctx, http.MethodPost, path, nil, contentBody{Content: content}, &reply); err != nil {
		return Reply{}, fmt.Errorf("replying to comment %s: %w", commentID, err)
	}
	return reply, nil
}

// UpdateReply edits one of the current user's replies.
func (c *Client) UpdateReply(ctx context.Context, replyID, content string) (Reply, error) {
	var reply Reply
	path := "/api/social/replies/" + url.PathEscape(replyID)
	if err := c.doJSON(ctx, http.MethodPut, path, nil, contentBody{Content: content}, &reply); err != nil {
		return Reply{}, fmt.Errorf("updating reply %s: %w", replyID, err)
	}
	return reply, nil
}

// DeleteReply removes one of the current user's replies.
func (c *Client) DeleteReply(ctx context.Context, replyID string) error {
	path := "/api/social/replies/" + url.PathEscape(replyID)
	if err := c.doJSON(ctx, http.MethodDelete, path, nil, nil, nil); err != nil {
		return fmt.Errorf("deleting reply %s: %w", replyID, err)
	}
	return nil
}

// TogglePostLike likes a post, or un-likes it when already liked.
func (c *Client) TogglePostLike(ctx context.Context, postID string) (LikeResult, error) {
	var result LikeResult
	path := "/api/social/likes/posts/" + url.PathEscape(postID) + "/like"
	if err := c.doJSON(ctx, http.MethodPost, path, nil, nil, &result); err != nil {
		return LikeResult{}, fmt.Errorf("toggling like on post %s: %w", postID, err)
	}

	c.flushCache()

	return result, nil
}

// PostLikes lists all likes on a post with user information.
func (c *Client) PostLikes(ctx context.Context, postID string) ([]Like, error) {
	var likes []Like
	path := "/api/social/likes/posts/" + url.PathEscape(postID) + "/likes"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &likes); err != nil {
		return nil, fmt.Errorf("fetching likes for post %s: %w", postID, err)
	}
	return likes, nil
}

// ToggleCommentLike likes or un-likes a comment.
func (c *Client) ToggleCommentLike(ctx context.Context, commentID string) (LikeResult, error) {
	var result LikeResult
	path := "/api/social/comments/" + url.PathEscape(commentID) + "/likes"
	if err := c.doJSON(ctx, http.MethodPost, path, nil, nil, &result); err != nil {
		return LikeResult{}, fmt.Errorf("toggling like on comment %s: %w", commentID, err)
	}
	return result, nil
}

// CommentLikes lists all likes on a comment.
func (c *Client) CommentLikes(ctx context.Context, commentID string) ([]Like, error) {
	var likes []Like
	path := "/api/social/comments/" + url.PathEscape(commentID) + "/likes"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &likes); err != nil {
		return nil, fmt.Errorf("fetching likes for comment %s: %w", commentID, err)
	}
	return likes, nil
}

// ToggleReplyLike likes or un-likes a reply.
func (c *Client) ToggleReplyLike(ctx context.Context, replyID string) (LikeResult, error) {
	var result LikeResult
	path := "/api/social/replies/" + url.PathEscape(replyID) + "/likes"
	if err := c.doJSON(ctx, http.MethodPost, path, nil, nil, &result); err != nil {
		return LikeResult{}, fmt.Errorf("toggling like on reply %s: %w", replyID, err)
	}
	return result, nil
}

// ReplyLikes lists all likes on a reply.
func (c *Client) ReplyLikes(ctx context.Context, replyID string) ([]Like, error) {
	var likes []Like
	path := "/api/social/replies/" + url.PathEscape(replyID) + "/likes"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &likes); err != nil {
		return nil, fmt.Errorf("fetching likes for reply %s: %w", replyID, err)
	}
	return likes, nil
}
