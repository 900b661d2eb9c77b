package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Feed sort orders accepted by the server.
const (
	SortNewest    = "created_at_desc"
	SortOldest    = "created_at_asc"
	SortTitleAsc  = "title_asc"
	SortTitleDesc = "title_desc"
)

// FeedOptions narrows a feed listing. Zero values mean server defaults
// (page 1, 10 posts, newest first, no filters).
type FeedOptions struct {
	Page      int
	Limit     int
	Sort      string
	TechStack string
	Search    string
}

// Feed lists posts for the main feed, one page at a time.
func (c *Client) Feed(ctx context.Context, opts FeedOptions) (FeedPage, error) {
	query := url.Values{}
	if opts.Page > 0 {
		query.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Sort != "" {
		query.Set("sort", opts.Sort)
	}
	if opts.TechStack != "" {
		query.Set("tech_stack", opts.TechStack)
	}
	if opts.Search != "" {
		query.Set("search", opts.Search)
	}

	cacheKey := "feed?" + query.Encode()

	var page FeedPage
	if c.cacheGet(cacheKey, &page) {
		return page, nil
	}

	if err := c.doJSON(ctx, http.MethodGet, "/api/feed", query, nil, &page); err != nil {
		return FeedPage{}, fmt.Errorf("fetching feed: %w", err)
	}

	c.cacheSet(cacheKey, page)

	return page, nil
}

// FeedPost fetches a single post with its likes, comments and replies.
func (c *Client) FeedPost(ctx context.Context, postID string) (Post, error) {
	var post Post
	if err := c.doJSON(ctx, http.MethodGet, "/api/feed/"+url.PathEscape(postID), nil, nil, &post); err != nil {
		return Post{}, fmt.Errorf("fetching post %s: %w", postID, err)
	}
	return post, nil
}
