package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Discord sends digests via Discord webhook.
type Discord struct {
	client     *http.Client
	webhookURL string
}

// NewDiscord creates a Discord notifier.
func NewDiscord(webhookURL string) *Discord {
	return &Discord{
		client:     &http.Client{Timeout: 10 * time.Second},
		webhookURL: webhookURL,
	}
}

func (d *Discord) Name() string { return "discord" }

func (d *Discord) Send(ctx context.Context, digest *Digest) error {
	limit := min(len(digest.Candidates), 5)
	var lines []string
	for _, c := range digest.Candidates[:limit] {
		if c.URL != "" {
			lines = append(lines, fmt.Sprintf("• **%d** [%s](%s) (%s)", c.FinalScore, c.Title, c.URL, c.Market))
		} else {
			lines = append(lines, fmt.Sprintf("• **%d** %s (%s)", c.FinalScore, c.Title, c.Market))
		}
	}

	embed := map[string]any{
		"title":       fmt.Sprintf("📈 %s — %s", digest.Action, digest.Day),
		"description": strings.Join(lines, "\n"),
		"color":       0xFF6600,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	}

	body, err := json.Marshal(map[string]any{"embeds": []map[string]any{embed}})
	if err != nil {
		return fmt.Errorf("marshal discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("send discord webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("discord webhook status %d", resp.StatusCode)
	}
	return nil
}
