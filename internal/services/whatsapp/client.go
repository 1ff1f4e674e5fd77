// Package whatsapp publishes video messages through the WhatsApp Business
// Cloud API.
package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sanchaar/internal/content"
	"sanchaar/internal/services/platformapi"
)

// Client sends one video message per post.
type Client struct {
	api           *platformapi.Client
	phoneNumberID string
}

// New constructs a client for the sending phone number.
func New(baseURL, phoneNumberID, token string, doer platformapi.HTTPDoer, timeout time.Duration) *Client {
	return &Client{
		api:           platformapi.New(baseURL, token, doer, timeout),
		phoneNumberID: strings.TrimSpace(phoneNumberID),
	}
}

type messageRequest struct {
	MessagingProduct string       `json:"messaging_product"`
	To               string       `json:"to"`
	Type             string       `json:"type"`
	Video            videoMessage `json:"video"`
}

type videoMessage struct {
	Link    string `json:"link"`
	Caption string `json:"caption,omitempty"`
}

type messageResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

// Publish sends post to its recipient and returns the message id.
func (c *Client) Publish(ctx context.Context, post content.Post) (string, error) {
	if c.phoneNumberID == "" {
		return "", errors.New("whatsapp phone number id is not configured")
	}
	body := messageRequest{
		MessagingProduct: "whatsapp",
		To:               post.Recipient,
		Type:             "video",
		Video:            videoMessage{Link: post.MediaURL, Caption: post.Caption},
	}
	var resp messageResponse
	if err := c.api.PostJSON(ctx, c.api.Endpoint(c.phoneNumberID, "messages"), body, &resp); err != nil {
		return "", fmt.Errorf("send message: %w", err)
	}
	if len(resp.Messages) == 0 || resp.Messages[0].ID == "" {
		return "", errors.New("send message: response carried no message id")
	}
	return resp.Messages[0].ID, nil
}
