package model

// SynopsisUnavailable 简介获取失败时的占位文本
const SynopsisUnavailable = "unavailable"

// Rating 单个来源的评分
type Rating struct {
	Source string `json:"source"`
	Value  string `json:"value"`
}

// Enrichment 外部补全信息：评分、简介、流媒体平台
type Enrichment struct {
	Ratings   []Rating `json:"ratings"`
	Synopsis  string   `json:"synopsis"`
	Platforms []string `json:"platforms"`
}

// EmptyEnrichment 全部失败时返回的占位结果
func EmptyEnrichment() *Enrichment {
	return &Enrichment{
		Ratings:   []Rating{},
		Synopsis:  SynopsisUnavailable,
		Platforms: []string{},
	}
}
