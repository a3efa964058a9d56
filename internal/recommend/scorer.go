package recommend

import "github.com/user/nextflix/internal/model"

// 打分权重
const (
	WeightDirector       = 5.0
	WeightActor          = 3.0
	WeightGenre          = 1.0
	WeightTag            = 0.5
	WeightPreferredTitle = 6.0
)

// Breakdown 单个候选的得分明细
type Breakdown struct {
	Director       string
	Actors         []string
	Genres         []string
	Tags           []string
	PreferredTitle bool
	Score          float64
}

// Score 计算候选与目标的加权相似度
//
//	score = 5 * 同导演 + 3 * |共同演员| + 1 * |共同类型| + 0.5 * |共同标签| (+ 6 * 偏好标题)
//
// 结果恒 >= 0，没有上限。
func Score(target Features, candidate *model.Movie) Breakdown {
	cf := MovieFeatures(candidate)
	var b Breakdown

	if len(cf.Directors) > 0 {
		if _, ok := toSet(target.Directors)[cf.Directors[0]]; ok {
			b.Director = candidate.Director
			b.Score += WeightDirector
		}
	}

	b.Actors = intersect(cf.Actors, toSet(target.Actors))
	b.Score += WeightActor * float64(len(b.Actors))

	b.Genres = intersect(cf.Genres, toSet(target.Genres))
	b.Score += WeightGenre * float64(len(b.Genres))

	b.Tags = intersect(cf.Tags, toSet(target.Tags))
	b.Score += WeightTag * float64(len(b.Tags))

	if len(target.Titles) > 0 {
		if _, ok := toSet(target.Titles)[Key(candidate.Title)]; ok {
			b.PreferredTitle = true
			b.Score += WeightPreferredTitle
		}
	}
	return b
}
