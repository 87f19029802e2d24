// Package webhook delivers change notifications to Discord. Delivery is
// best effort: the tracker logs failures and moves on, it never retries on
// the webhook's behalf.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ddd/discovery-tracker/changelog"
	"github.com/ddd/discovery-tracker/config"
)

const embedColor = 5814783

type discordPayload struct {
	Content string         `json:"content,omitempty"`
	Embeds  []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Description string       `json:"description"`
	Color       int          `json:"color"`
	Author      embedAuthor  `json:"author"`
	Footer      embedFooter  `json:"footer"`
}

type embedAuthor struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type embedFooter struct {
	Text string `json:"text"`
}

// DiscordNotifier posts one embed per logged change to the webhook
// configured for the change's service.
type DiscordNotifier struct {
	client *http.Client
	cfg    *config.DiscordWebhookConfig
	log    *zap.Logger
}

func NewDiscordNotifier(cfg *config.DiscordWebhookConfig, log *zap.Logger) *DiscordNotifier {
	return &DiscordNotifier{
		client: &http.Client{Timeout: 15 * time.Second},
		cfg:    cfg,
		log:    log,
	}
}

// Notify sends the embed for one logged change. Services without a
// configured webhook are an error the caller may log and ignore.
func (n *DiscordNotifier) Notify(ctx context.Context, change *changelog.LoggedChange) error {
	var dest *config.ServiceWebhook
	for i := range n.cfg.Services {
		if n.cfg.Services[i].Service == change.Service {
			dest = &n.cfg.Services[i]
			break
		}
	}
	if dest == nil {
		return fmt.Errorf("service %s has no webhook configured", change.Service)
	}

	payload := discordPayload{
		Content: n.buildMentions(change.Summary.Tags),
		Embeds: []discordEmbed{{
			Description: buildDescription(change.Summary),
			Color:       embedColor,
			Author: embedAuthor{
				Name: dest.Name,
				URL: fmt.Sprintf("%s/api/changes/%s/%d/diff",
					n.cfg.TrackerAPIURL, change.Service, change.Timestamp),
			},
			Footer: embedFooter{
				Text: fmt.Sprintf("Change ID: %d", change.Timestamp),
			},
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, dest.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	deliveryID := uuid.New()
	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook for %s: %w", change.Service, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook for %s returned status %d", change.Service, resp.StatusCode)
	}

	n.log.Info("delivered change notification",
		zap.String("service", change.Service),
		zap.Int64("timestamp", change.Timestamp),
		zap.String("delivery_id", deliveryID.String()))
	return nil
}

func (n *DiscordNotifier) buildMentions(tags []string) string {
	mentions := []string{}
	for _, tm := range n.cfg.TagMentionRoleIDs {
		for _, tag := range tags {
			if tag == tm.Tag {
				mentions = append(mentions, fmt.Sprintf("<@&%s>", tm.RoleID))
				break
			}
		}
	}
	return strings.Join(mentions, " ")
}

func buildDescription(summary changelog.ChangeSummary) string {
	parts := []string{}
	if summary.Additions > 0 {
		parts = append(parts, fmt.Sprintf("**+%d** additions", summary.Additions))
	}
	if summary.Modifications > 0 {
		parts = append(parts, fmt.Sprintf("**~%d** changes", summary.Modifications))
	}
	if summary.Deletions > 0 {
		parts = append(parts, fmt.Sprintf("**-%d** removed", summary.Deletions))
	}
	return strings.Join(parts, "\n")
}
