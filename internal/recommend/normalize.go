package recommend

import (
	"regexp"
	"strings"
)

var (
	// 类型、标签：按空白及 | , ; / & 拆分
	tokenSep = regexp.MustCompile(`[\s|,;/&]+`)
	// 人名：保留姓名内部空格，仅按分隔符和独立的 and 拆分
	nameSep = regexp.MustCompile(`(?i)\s*(?:[|,;/&]|\band\b)\s*`)
)

// Tokens 将类型/标签字段拆分为小写、去重、保序的词集合
//
// 空输入返回空切片（非 nil）。
func Tokens(s string) []string {
	return collect(tokenSep.Split(strings.ToLower(s), -1))
}

// Names 将演员字段拆分为小写的完整人名集合
func Names(s string) []string {
	return collect(nameSep.Split(strings.ToLower(s), -1))
}

// Key 单值字段（导演、标题）的比较键
func Key(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func collect(parts []string) []string {
	res := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || p == "and" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		res = append(res, p)
	}
	return res
}

// union 合并多个集合，保持首次出现顺序
func union(sets ...[]string) []string {
	var all []string
	for _, s := range sets {
		all = append(all, s...)
	}
	return collect(all)
}

func toSet(items []string) map[string]struct{} {
	m := make(map[string]struct{}, len(items))
	for _, it := range items {
		m[it] = struct{}{}
	}
	return m
}

// intersect 返回 a 中同时出现在 b 里的元素，保持 a 的顺序
func intersect(a []string, b map[string]struct{}) []string {
	var res []string
	for _, it := range a {
		if _, ok := b[it]; ok {
			res = append(res, it)
		}
	}
	return res
}
