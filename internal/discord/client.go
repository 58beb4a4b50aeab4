package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	apiBase = "https://discord.com/api/v10"

	// MaxMessageLen is Discord's hard limit on message content.
	MaxMessageLen = 2000
)

// Client is a minimal Discord REST client for outbound channel messages.
type Client struct {
	token string
	http  *http.Client
}

// NewClient returns nil when no bot token is configured, which disables
// outbound delivery.
func NewClient(token string) *Client {
	if token == "" {
		return nil
	}
	return &Client{
		token: token,
		http:  &http.Client{Timeout: 15 * time.Second},
	}
}

// SendText delivers text to a channel, split into MaxMessageLen chunks on
// newline/space boundaries. Chunks are sent in order; the first failure
// aborts the rest.
func (c *Client) SendText(ctx context.Context, channelID, text string) error {
	for _, chunk := range SplitMessage(text, MaxMessageLen) {
		if err := c.sendMessage(ctx, channelID, chunk); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) sendMessage(ctx context.Context, channelID, content string) error {
	payload, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/channels/%s/messages", apiBase, channelID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("discord: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("discord: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("discord: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// ChannelNotifier binds a Client to one channel, acting as the notification
// sink for the daily summary.
type ChannelNotifier struct {
	client    *Client
	channelID string
}

// NewChannelNotifier returns nil when either piece is missing.
func NewChannelNotifier(client *Client, channelID string) *ChannelNotifier {
	if client == nil || channelID == "" {
		return nil
	}
	return &ChannelNotifier{client: client, channelID: channelID}
}

// Deliver sends text to the bound channel, chunked as needed.
func (n *ChannelNotifier) Deliver(ctx context.Context, text string) error {
	return n.client.SendText(ctx, n.channelID, text)
}

// SplitMessage splits text into chunks of at most limit bytes, preferring
// to break at the last newline inside the window, then the last space, then
// a hard cut. Empty chunks are dropped.
func SplitMessage(text string, limit int) []string {
	if limit <= 0 {
		return []string{text}
	}

	var chunks []string
	for len(text) > limit {
		cut := strings.LastIndex(text[:limit], "\n")
		if cut <= 0 {
			cut = strings.LastIndex(text[:limit], " ")
		}
		if cut <= 0 {
			cut = limit
		}

		chunk := strings.Trim(text[:cut], " \n")
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		text = strings.TrimLeft(text[cut:], " \n")
	}

	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}
