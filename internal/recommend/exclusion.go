package recommend

// ExclusionSet 需要从结果中剔除的标题（按归一化标题比较）
type ExclusionSet map[string]struct{}

// NewExclusionSet 由若干标题列表构建
func NewExclusionSet(lists ...[]string) ExclusionSet {
	s := ExclusionSet{}
	for _, l := range lists {
		for _, t := range l {
			if k := Key(t); k != "" {
				s[k] = struct{}{}
			}
		}
	}
	return s
}

func (s ExclusionSet) Contains(title string) bool {
	_, ok := s[Key(title)]
	return ok
}

// Filter 保序过滤
func (s ExclusionSet) Filter(items []Scored) []Scored {
	if len(s) == 0 {
		return items
	}
	res := make([]Scored, 0, len(items))
	for _, it := range items {
		if !s.Contains(it.Title) {
			res = append(res, it)
		}
	}
	return res
}
