package api

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
)

// DownloadFile streams an attachment of one of the current user's posts into
// w. It returns the server-suggested filename (empty when the server sent
// none) and the number of bytes written.
func (c *Client) DownloadFile(ctx context.Context, postID, fileID string, w io.Writer) (string, int64, error) {
	path := "/api/profile/posts/" + url.PathEscape(postID) + "/files/" + url.PathEscape(fileID)

	req, err := c.newRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return "", 0, err
	}

	resp, err := c.do(req)
	if err != nil {
		return "", 0, fmt.Errorf("downloading file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	written, err := io.Copy(w, resp.Body)
	if err != nil {
		return "", written, fmt.Errorf("writing file %s: %w", fileID, err)
	}

	return dispositionFilename(resp), written, nil
}

func dispositionFilename(resp *http.Response) string {
	disposition := resp.Header.Get("Content-Disposition")
	if disposition == "" {
		return ""
	}

	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	return params["filename"]
}
