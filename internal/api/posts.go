package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
)

// CreatePostRequest is the multipart form for a new project post.
type CreatePostRequest struct {
	Title       string
	Description string
	TechStack   []string
	GithubLink  string

	// FilePaths are local files to attach (the server allows up to 10).
	FilePaths []string
}

// CreatePost publishes a new project post with optional file attachments.
func (c *Client) CreatePost(ctx context.Context, req CreatePostRequest) (Post, error) {
	// The form is buffered in memory so the request can be replayed after a
	// token refresh; attachments are capped server-side anyway.
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	if err := form.WriteField("title", req.Title); err != nil {
		return Post{}, fmt.Errorf("writing form: %w", err)
	}
	if err := form.WriteField("description", req.Description); err != nil {
		return Post{}, fmt.Errorf("writing form: %w", err)
	}
	for _, tech := range req.TechStack {
		if err := form.WriteField("tech_stack", tech); err != nil {
			return Post{}, fmt.Errorf("writing form: %w", err)
		}
	}
	if req.GithubLink != "" {
		if err := form.WriteField("github_link", req.GithubLink); err != nil {
			return Post{}, fmt.Errorf("writing form: %w", err)
		}
	}

	for _, path := range req.FilePaths {
		if err := attachFile(form, path); err != nil {
			return Post{}, err
		}
	}

	if err := form.Close(); err != nil {
		return Post{}, fmt.Errorf("finalising form: %w", err)
	}

	httpReq, err := c.newRequest(ctx, http.MethodPost, "/api/posts", nil, bytes.NewReader(buf.Bytes()))
	if err != nil {
		return Post{}, err
	}
	httpReq.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.do(httpReq)
	if err != nil {
		return Post{}, fmt.Errorf("creating post: %w", err)
	}
	defer resp.Body.Close()

	var post Post
	if err := json.NewDecoder(resp.Body).Decode(&post); err != nil {
		return Post{}, fmt.Errorf("decoding response: %w", err)
	}

	c.flushCache()

	return post, nil
}

func attachFile(form *multipart.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening attachment: %w", err)
	}
	defer f.Close()

	part, err := form.CreateFormFile("files", filepath.Base(path))
	if err != nil {
		return fmt.Errorf("creating form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("reading attachment %s: %w", path, err)
	}

	return nil
}
