package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/user/nextflix/internal/model"
	"github.com/user/nextflix/internal/utils"
)

// OMDbProvider 通过 OMDb 获取 IMDb / 烂番茄 / Metacritic 评分
type OMDbProvider struct {
	client  *utils.HTTPClient
	baseURL string
	apiKey  string
}

func NewOMDbProvider(client *utils.HTTPClient, baseURL, apiKey string) *OMDbProvider {
	return &OMDbProvider{client: client, baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey}
}

type omdbResponse struct {
	Response   string         `json:"Response"`
	Error      string         `json:"Error"`
	Title      string         `json:"Title"`
	IMDbRating string         `json:"imdbRating"`
	Ratings    []model.Rating `json:"Ratings"`
}

func (p *OMDbProvider) Ratings(ctx context.Context, title, year string) ([]model.Rating, error) {
	q := url.Values{}
	q.Set("apikey", p.apiKey)
	q.Set("t", title)
	q.Set("type", "movie")
	if year != "" {
		q.Set("y", year)
	}

	var resp omdbResponse
	if err := p.client.GetJSON(ctx, p.baseURL+"/?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	if !strings.EqualFold(resp.Response, "True") {
		if strings.Contains(strings.ToLower(resp.Error), "not found") {
			return nil, ErrNoResult
		}
		return nil, fmt.Errorf("omdb: %s", resp.Error)
	}

	ratings := make([]model.Rating, 0, len(resp.Ratings)+1)
	for _, r := range resp.Ratings {
		if r.Source != "" && r.Value != "" && r.Value != "N/A" {
			ratings = append(ratings, r)
		}
	}
	if len(ratings) == 0 && resp.IMDbRating != "" && resp.IMDbRating != "N/A" {
		ratings = append(ratings, model.Rating{Source: "Internet Movie Database", Value: resp.IMDbRating + "/10"})
	}
	return ratings, nil
}
