package recommend

import (
	"fmt"
	"strings"
)

// 推荐理由类型
const (
	ReasonDirector  = "director"
	ReasonActor     = "actor"
	ReasonPreferred = "preferred"
	ReasonGenre     = "genre"
	ReasonTag       = "tag"
	ReasonGeneral   = "general"
)

// Reason 按优先级生成一句推荐理由：导演 > 演员 > 偏好标题 > 类型 > 标签
func (b Breakdown) Reason() (string, string) {
	switch {
	case b.Director != "":
		return fmt.Sprintf("Directed by %s as well", b.Director), ReasonDirector
	case len(b.Actors) > 0:
		return fmt.Sprintf("Also stars %s", joinNames(b.Actors, 2)), ReasonActor
	case b.PreferredTitle:
		return "One of your favorite movies", ReasonPreferred
	case len(b.Genres) > 0:
		return fmt.Sprintf("Shares the %s genre", joinNames(b.Genres, 3)), ReasonGenre
	case len(b.Tags) > 0:
		return fmt.Sprintf("Tagged %s too", joinNames(b.Tags, 3)), ReasonTag
	default:
		return "Similar content", ReasonGeneral
	}
}

// Details 列出全部命中项，用于前端展示明细
func (b Breakdown) Details() []string {
	var res []string
	if b.Director != "" {
		res = append(res, "same director: "+b.Director)
	}
	if len(b.Actors) > 0 {
		res = append(res, "shared actors: "+strings.Join(b.Actors, ", "))
	}
	if b.PreferredTitle {
		res = append(res, "in your preferred movies")
	}
	if len(b.Genres) > 0 {
		res = append(res, "shared genres: "+strings.Join(b.Genres, ", "))
	}
	if len(b.Tags) > 0 {
		res = append(res, "shared tags: "+strings.Join(b.Tags, ", "))
	}
	return res
}

func joinNames(items []string, max int) string {
	if len(items) > max {
		items = items[:max]
	}
	return strings.Join(items, ", ")
}
