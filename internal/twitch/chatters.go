package twitch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// TMIChatters тянет текущий список зрителей канала с tmi-эндпоинта
type TMIChatters struct {
	Client  *http.Client
	BaseURL string
	Channel string
}

const defaultTMIBase = "https://tmi.twitch.tv"

// Ответ tmi: {"chatters": {"viewers": [...], "moderators": [...], ...}}
type chattersPayload struct {
	Chatters map[string][]string `json:"chatters"`
}

// Chatters - все зрители одним списком, без деления по ролям
func (t *TMIChatters) Chatters(ctx context.Context) ([]string, error) {
	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}
	base := t.BaseURL
	if base == "" {
		base = defaultTMIBase
	}

	url := fmt.Sprintf("%s/group/user/%s/chatters", base, t.Channel)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chatters: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s from chatters endpoint", resp.Status)
	}

	var payload chattersPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode chatters: %w", err)
	}

	var all []string
	for _, group := range payload.Chatters {
		all = append(all, group...)
	}
	return all, nil
}
