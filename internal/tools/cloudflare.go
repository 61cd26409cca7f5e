package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const cloudflareAPIBase = "https://api.cloudflare.com/client/v4"

// CloudflarePurgeTool purges cached content for a zone when the agent
// calls it. It is config-gated: without an API token or zone ID it returns
// an error result rather than attempting the call.
type CloudflarePurgeTool struct {
	apiToken string
	zoneID   string
	client   *http.Client
}

func NewCloudflarePurgeTool(apiToken, zoneID string) *CloudflarePurgeTool {
	return &CloudflarePurgeTool{apiToken: apiToken, zoneID: zoneID, client: &http.Client{Timeout: 15 * time.Second}}
}

func (t *CloudflarePurgeTool) Name() string { return "cloudflare_purge" }
func (t *CloudflarePurgeTool) Description() string {
	return "Purge specific URLs (or the whole zone) from Cloudflare's cache."
}
func (t *CloudflarePurgeTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"urls": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "URLs to purge. Omit to purge the entire zone.",
			},
		},
	}
}

func (t *CloudflarePurgeTool) Execute(ctx context.Context, args map[string]interface{}) *Result {
	if t.apiToken == "" || t.zoneID == "" {
		return ErrorResult("cloudflare_purge is not configured: missing API token or zone ID")
	}

	payload := map[string]interface{}{"purge_everything": true}
	if raw, ok := args["urls"].([]interface{}); ok && len(raw) > 0 {
		urls := make([]string, 0, len(raw))
		for _, u := range raw {
			if s, ok := u.(string); ok && s != "" {
				urls = append(urls, s)
			}
		}
		if len(urls) > 0 {
			payload = map[string]interface{}{"files": urls}
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return ErrorResult(err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/zones/%s/purge_cache", cloudflareAPIBase, t.zoneID),
		bytes.NewReader(body))
	if err != nil {
		return ErrorResult(err.Error())
	}
	req.Header.Set("Authorization", "Bearer "+t.apiToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return ErrorResult(fmt.Sprintf("cloudflare request failed: %v", err))
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return ErrorResult(fmt.Sprintf("cloudflare API error: %s", string(respBody)))
	}

	var result struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(respBody, &result); err == nil && !result.Success {
		return ErrorResult(fmt.Sprintf("cloudflare purge failed: %s", string(respBody)))
	}

	return SilentResult("cache purge requested")
}
