package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/user/nextflix/internal/utils"
)

// TMDBProvider 通过 TMDB 查询可观看的流媒体平台
type TMDBProvider struct {
	client  *utils.HTTPClient
	baseURL string
	token   string
	region  string
}

func NewTMDBProvider(client *utils.HTTPClient, baseURL, token, region string) *TMDBProvider {
	if region == "" {
		region = "US"
	}
	return &TMDBProvider{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		region:  strings.ToUpper(region),
	}
}

type tmdbSearchResponse struct {
	Results []struct {
		ID    int    `json:"id"`
		Title string `json:"title"`
	} `json:"results"`
}

type tmdbProvider struct {
	ProviderName string `json:"provider_name"`
}

type tmdbWatchProviders struct {
	Results map[string]struct {
		Flatrate []tmdbProvider `json:"flatrate"`
		Free     []tmdbProvider `json:"free"`
		Ads      []tmdbProvider `json:"ads"`
	} `json:"results"`
}

func (p *TMDBProvider) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + p.token}
}

// Platforms 先搜索电影 ID，再读取所在地区的订阅/免费平台
func (p *TMDBProvider) Platforms(ctx context.Context, title, year string) ([]string, error) {
	q := url.Values{}
	q.Set("query", title)
	q.Set("include_adult", "false")
	if year != "" {
		q.Set("year", year)
	}

	var search tmdbSearchResponse
	if err := p.client.GetJSON(ctx, p.baseURL+"/search/movie?"+q.Encode(), p.headers(), &search); err != nil {
		return nil, fmt.Errorf("tmdb search: %w", err)
	}
	if len(search.Results) == 0 {
		return nil, ErrNoResult
	}

	var wp tmdbWatchProviders
	u := fmt.Sprintf("%s/movie/%d/watch/providers", p.baseURL, search.Results[0].ID)
	if err := p.client.GetJSON(ctx, u, p.headers(), &wp); err != nil {
		return nil, fmt.Errorf("tmdb watch providers: %w", err)
	}

	platforms := []string{}
	region, ok := wp.Results[p.region]
	if !ok {
		return platforms, nil
	}
	seen := map[string]bool{}
	for _, group := range [][]tmdbProvider{region.Flatrate, region.Free, region.Ads} {
		for _, prov := range group {
			if prov.ProviderName != "" && !seen[prov.ProviderName] {
				seen[prov.ProviderName] = true
				platforms = append(platforms, prov.ProviderName)
			}
		}
	}
	return platforms, nil
}
