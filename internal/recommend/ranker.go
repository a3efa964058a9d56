package recommend

import (
	"sort"

	"github.com/user/nextflix/internal/model"
)

// 默认返回条数
const (
	DefaultSimilarTop = 5
	DefaultUserTop    = 10
)

// Scored 带分数的推荐结果，保留电影原始字段
type Scored struct {
	model.Movie
	Score      float64           `json:"score"`
	Reason     string            `json:"reason"`
	ReasonType string            `json:"reason_type"`
	Details    []string          `json:"details,omitempty"`
	Enrichment *model.Enrichment `json:"enrichment,omitempty"`
}

// Rank 按分数降序、标题升序（区分大小写）排序并截取前 n 条
//
// n <= 0 返回空结果。
func Rank(items []Scored, n int) []Scored {
	if n <= 0 || len(items) == 0 {
		return []Scored{}
	}
	sorted := make([]Scored, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].Title < sorted[j].Title
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
