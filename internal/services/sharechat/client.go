// Package sharechat publishes public video posts through the ShareChat API.
package sharechat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sanchaar/internal/content"
	"sanchaar/internal/services/platformapi"
)

// Client creates one public post per publish call.
type Client struct {
	api *platformapi.Client
}

// New constructs a ShareChat client.
func New(baseURL, token string, doer platformapi.HTTPDoer, timeout time.Duration) *Client {
	return &Client{api: platformapi.New(baseURL, token, doer, timeout)}
}

type postRequest struct {
	ContentType string   `json:"content_type"`
	VideoURL    string   `json:"video_url"`
	Caption     string   `json:"caption"`
	Language    string   `json:"language"`
	Tags        []string `json:"tags"`
	Visibility  string   `json:"visibility"`
}

type postResponse struct {
	PostID string `json:"post_id"`
}

// Publish creates a post and returns its id.
func (c *Client) Publish(ctx context.Context, post content.Post) (string, error) {
	tags := post.Hashtags
	if tags == nil {
		tags = []string{}
	}
	body := postRequest{
		ContentType: "video",
		VideoURL:    post.MediaURL,
		Caption:     post.Caption,
		Language:    post.Language,
		Tags:        tags,
		Visibility:  "public",
	}
	var resp postResponse
	if err := c.api.PostJSON(ctx, c.api.Endpoint("posts"), body, &resp); err != nil {
		return "", fmt.Errorf("create post: %w", err)
	}
	if resp.PostID == "" {
		return "", errors.New("create post: response carried no post id")
	}
	return resp.PostID, nil
}
