package recommend

import "github.com/user/nextflix/internal/model"

// CandidateLimit 单次候选集上限
const CandidateLimit = 1000

// Features 参与匹配与打分的特征集合
//
// 单部电影最多一个导演；用户画像可以有多个导演，并额外携带偏好标题。
type Features struct {
	Directors []string
	Actors    []string
	Genres    []string
	Tags      []string
	Titles    []string
}

// MovieFeatures 提取电影特征，每次实时计算
func MovieFeatures(m *model.Movie) Features {
	f := Features{
		Directors: []string{},
		Actors:    []string{},
		Genres:    Tokens(m.Genres),
		Tags:      Tokens(m.Tags),
	}
	if d := Key(m.Director); d != "" {
		f.Directors = append(f.Directors, d)
	}
	for _, a := range []string{m.Actor1, m.Actor2, m.Actor3} {
		f.Actors = union(f.Actors, Names(a))
	}
	return f
}

// IsEmpty 没有任何可用于比较的特征
func (f Features) IsEmpty() bool {
	return len(f.Directors) == 0 && len(f.Actors) == 0 && len(f.Genres) == 0 &&
		len(f.Tags) == 0 && len(f.Titles) == 0
}

// Filter 转换为候选查询条件
func (f Features) Filter(excludeTitle string) model.CandidateFilter {
	return model.CandidateFilter{
		Directors:    f.Directors,
		Actors:       f.Actors,
		Genres:       f.Genres,
		Tags:         f.Tags,
		Titles:       f.Titles,
		ExcludeTitle: Key(excludeTitle),
		Limit:        CandidateLimit,
	}
}
