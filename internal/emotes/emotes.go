// Package emotes поставляет список названий эмоутов канала (BTTV + FFZ),
// которым нормализатор чистит сообщения.
package emotes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
)

// Provider - источник списка эмоутов
type Provider interface {
	Emotes(ctx context.Context) ([]string, error)
}

// Static - фиксированный список, для тестов
type Static []string

func (s Static) Emotes(ctx context.Context) ([]string, error) {
	return s, nil
}

// Ответ BTTV: {"emotes": [{"code": "..."}]}
type bttvPayload struct {
	Emotes []struct {
		Code string `json:"code"`
	} `json:"emotes"`
}

// Ответ FFZ: {"sets": {"<id>": {"emoticons": [{"name": "..."}]}}}
type ffzPayload struct {
	Sets map[string]struct {
		Emoticons []struct {
			Name string `json:"name"`
		} `json:"emoticons"`
	} `json:"sets"`
}

// FileProvider читает выгрузки bttv.json и ffz.json с диска
type FileProvider struct {
	BTTVPath string
	FFZPath  string
}

func (p *FileProvider) Emotes(ctx context.Context) ([]string, error) {
	raw, err := os.ReadFile(p.BTTVPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read bttv file: %w", err)
	}
	var bttv bttvPayload
	if err := json.Unmarshal(raw, &bttv); err != nil {
		return nil, fmt.Errorf("failed to decode bttv file: %w", err)
	}

	raw, err = os.ReadFile(p.FFZPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read ffz file: %w", err)
	}
	var ffz ffzPayload
	if err := json.Unmarshal(raw, &ffz); err != nil {
		return nil, fmt.Errorf("failed to decode ffz file: %w", err)
	}

	return collect(bttv, ffz), nil
}

// APIProvider ходит за эмоутами в BTTV и FFZ напрямую
type APIProvider struct {
	Client  *http.Client
	BTTVURL string
	FFZURL  string
}

func (p *APIProvider) Emotes(ctx context.Context) ([]string, error) {
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}

	var bttv bttvPayload
	if err := fetchJSON(ctx, client, p.BTTVURL, &bttv); err != nil {
		return nil, fmt.Errorf("failed to fetch bttv emotes: %w", err)
	}
	var ffz ffzPayload
	if err := fetchJSON(ctx, client, p.FFZURL, &ffz); err != nil {
		return nil, fmt.Errorf("failed to fetch ffz emotes: %w", err)
	}

	return collect(bttv, ffz), nil
}

func fetchJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s from %s", resp.Status, url)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func collect(bttv bttvPayload, ffz ffzPayload) []string {
	var list []string
	for _, set := range ffz.Sets {
		for _, e := range set.Emoticons {
			list = append(list, e.Name)
		}
	}
	for _, e := range bttv.Emotes {
		list = append(list, e.Code)
	}
	return list
}
