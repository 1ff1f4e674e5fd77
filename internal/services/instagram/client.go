// Package instagram publishes stories through the Instagram Graph API using
// its two-phase container flow.
package instagram

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"sanchaar/internal/content"
	"sanchaar/internal/services/platformapi"
)

// Client creates and publishes media containers for one Instagram user.
type Client struct {
	api    *platformapi.Client
	userID string
}

// New constructs a client for the Instagram business user.
func New(baseURL, userID, token string, doer platformapi.HTTPDoer, timeout time.Duration) *Client {
	return &Client{
		api:    platformapi.New(baseURL, token, doer, timeout),
		userID: strings.TrimSpace(userID),
	}
}

type idResponse struct {
	ID string `json:"id"`
}

// CreateContainer uploads a story container and returns its id.
func (c *Client) CreateContainer(ctx context.Context, post content.Post) (string, error) {
	if c.userID == "" {
		return "", errors.New("instagram user id is not configured")
	}
	form := url.Values{
		"media_type":   {"STORIES"},
		"video_url":    {post.MediaURL},
		"caption":      {post.Caption},
		"access_token": {c.api.Token()},
	}
	var resp idResponse
	if err := c.api.PostForm(ctx, c.api.Endpoint(c.userID, "media"), form, &resp); err != nil {
		return "", fmt.Errorf("create container: %w", err)
	}
	if resp.ID == "" {
		return "", errors.New("create container: response carried no id")
	}
	return resp.ID, nil
}

// PublishContainer publishes a container and returns the media id.
func (c *Client) PublishContainer(ctx context.Context, containerID string) (string, error) {
	if c.userID == "" {
		return "", errors.New("instagram user id is not configured")
	}
	form := url.Values{
		"creation_id":  {containerID},
		"access_token": {c.api.Token()},
	}
	var resp idResponse
	if err := c.api.PostForm(ctx, c.api.Endpoint(c.userID, "media_publish"), form, &resp); err != nil {
		return "", fmt.Errorf("publish container: %w", err)
	}
	if resp.ID == "" {
		return "", errors.New("publish container: response carried no id")
	}
	return resp.ID, nil
}
