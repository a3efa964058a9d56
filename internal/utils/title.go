package utils

import (
	"regexp"
	"strings"
)

var (
	reYearSuffix = regexp.MustCompile(`\s*\((\d{4})\)\s*$`)
	reBrackets   = regexp.MustCompile(`\[.*?\]`)
	reQuality    = regexp.MustCompile(`(?i)\b(1080p|720p|2160p|4k|hdrip|bluray|web-dl|webrip|dvdrip)\b`)
)

// CleanMovieTitle 清理标题中的杂质，用于外部接口检索
//
// 返回清理后的标题以及末尾括号中的年份（若有）。
func CleanMovieTitle(title string) (string, string) {
	// 数据集中常见的不间断空格
	title = strings.ReplaceAll(title, "\u00a0", " ")
	title = strings.TrimSpace(title)

	var year string
	if m := reYearSuffix.FindStringSubmatch(title); m != nil {
		year = m[1]
		title = reYearSuffix.ReplaceAllString(title, "")
	}
	title = reBrackets.ReplaceAllString(title, " ")
	title = reQuality.ReplaceAllString(title, " ")
	title = strings.ReplaceAll(title, "_", " ")

	return strings.Join(strings.Fields(title), " "), year
}
