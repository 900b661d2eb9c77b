package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Profile returns the current user's profile with post and like counters.
func (c *Client) Profile(ctx context.Context) (Profile, error) {
	var profile Profile
	if c.cacheGet("profile", &profile) {
		return profile, nil
	}

	if err := c.doJSON(ctx, http.MethodGet, "/api/profile", nil, nil, &profile); err != nil {
		return Profile{}, fmt.Errorf("fetching profile: %w", err)
	}

	c.cacheSet("profile", profile)

	return profile, nil
}

// UpdateProfileRequest carries the editable profile fields; nil fields are
// left unchanged.
type UpdateProfileRequest struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
}

// UpdateProfile edits the current user's profile.
func (c *Client) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (Profile, error) {
	var profile Profile
	if err := c.doJSON(ctx, http.MethodPut, "/api/profile", nil, req, &profile); err != nil {
		return Profile{}, fmt.Errorf("updating profile: %w", err)
	}

	c.flushCache()

	return profile, nil
}

// DeleteAccount permanently removes the current user's account. The caller
// must destroy the local session afterwards.
func (c *Client) DeleteAccount(ctx context.Context) error {
	if err := c.doJSON(ctx, http.MethodDelete, "/api/profile", nil, nil, nil); err != nil {
		return fmt.Errorf("deleting account: %w", err)
	}

	c.flushCache()

	return nil
}

// MyPostsOptions narrows the listing of the current user's posts.
type MyPostsOptions struct {
	Page  int
	Limit int
}

// MyPosts lists the current user's own posts.
func (c *Client) MyPosts(ctx context.Context, opts MyPostsOptions) (FeedPage, error) {
	query := url.Values{}
	if opts.Page > 0 {
		query.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}

	var page FeedPage
	if err := c.doJSON(ctx, http.MethodGet, "/api/profile/posts", query, nil, &page); err != nil {
		return FeedPage{}, fmt.Errorf("fetching own posts: %w", err)
	}
	return page, nil
}

// MyPost fetches one of the current user's posts with full details.
func (c *Client) MyPost(ctx context.Context, postID string) (Post, error) {
	var post Post
	if err := c.doJSON(ctx, http.MethodGet, "/api/profile/posts/"+url.PathEscape(postID), nil, nil, &post); err != nil {
		return Post{}, fmt.Errorf("fetching post %s: %w", postID, err)
	}
	return post, nil
}

// UpdatePostRequest carries the editable post fields; nil fields are left
// unchanged.
type UpdatePostRequest struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	TechStack   []string `json:"tech_stack,omitempty"`
	GithubLink  *string  `json:"github_link,omitempty"`
}

// UpdatePost edits one of the current user's posts.
func (c *Client) UpdatePost(ctx context.Context, postID string, req UpdatePostRequest) (Post, error) {
	var post Post
	if err := c.doJSON(ctx, http.MethodPut, "/api/profile/posts/"+url.PathEscape(postID), nil, req, &post); err != nil {
		return Post{}, fmt.Errorf("updating post %s: %w", postID, err)
	}

	c.flushCache()

	return post, nil
}

// DeletePost removes one of the current user's posts along with its files,
// comments and likes.
func (c *Client) DeletePost(ctx context.Context, postID string) error {
	if err := c.doJSON(ctx, http.MethodDelete, "/api/profile/posts/"+url.PathEscape(postID), nil, nil, nil); err != nil {
		return fmt.Errorf("deleting post %s: %w", postID, err)
	}

	c.flushCache()

	return nil
}

// UserProfile returns another user's public profile.
func (c *Client) UserProfile(ctx context.Context, userID string) (Profile, error) {
	var profile Profile
	if err := c.doJSON(ctx, http.MethodGet, "/api/profile/users/"+url.PathEscape(userID), nil, nil, &profile); err != nil {
		return Profile{}, fmt.Errorf("fetching user %s: %w", userID, err)
	}
	return profile, nil
}

// UserPosts lists another user's posts.
func (c *Client) UserPosts(ctx context.Context, userID string, opts MyPostsOptions) (FeedPage, error) {
	query := url.Values{}
	if opts.Page > 0 {
		query.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}

	var page FeedPage
	if err := c.doJSON(ctx, http.MethodGet, "/api/profile/users/"+url.PathEscape(userID)+"/posts", query, nil, &page); err != nil {
		return FeedPage{}, fmt.Errorf("fetching posts of user %s: %w", userID, err)
	}
	return page, nil
}
