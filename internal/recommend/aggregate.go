package recommend

import "github.com/user/nextflix/internal/model"

// ProfileFeatures 将用户偏好聚合为打分目标
//
// 所有偏好列表为空时返回 ErrNoPreferences。
func ProfileFeatures(p model.Preferences) (Features, error) {
	f := Features{
		Directors: []string{},
		Actors:    []string{},
		Genres:    []string{},
		Tags:      []string{},
		Titles:    []string{},
	}
	for _, m := range p.Movies {
		if k := Key(m); k != "" {
			f.Titles = union(f.Titles, []string{k})
		}
	}
	for _, d := range p.Directors {
		if k := Key(d); k != "" {
			f.Directors = union(f.Directors, []string{k})
		}
	}
	for _, a := range p.Actors {
		f.Actors = union(f.Actors, Names(a))
	}
	for _, g := range p.Genres {
		f.Genres = union(f.Genres, Tokens(g))
	}
	if f.IsEmpty() {
		return f, ErrNoPreferences
	}
	return f, nil
}
