package model

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Movie 电影元数据（扁平表，一行一部电影）
type Movie struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Title      string    `json:"movie_title" gorm:"column:movie_title;not null"`
	TitleLower string    `json:"-" gorm:"column:movie_title_lower;uniqueIndex"`
	Director   string    `json:"director_name" gorm:"column:director_name"`
	Actor1     string    `json:"actor_1_name" gorm:"column:actor_1_name"`
	Actor2     string    `json:"actor_2_name" gorm:"column:actor_2_name"`
	Actor3     string    `json:"actor_3_name" gorm:"column:actor_3_name"`
	Genres     string    `json:"genres" gorm:"column:genres"`
	Tags       string    `json:"tags" gorm:"column:tags"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// 小写列在 Go 中计算，sqlite 的 LOWER/LIKE 只处理 ASCII
	DirectorLower string `json:"-" gorm:"column:director_lower;index"`
	Actor1Lower   string `json:"-" gorm:"column:actor_1_lower"`
	Actor2Lower   string `json:"-" gorm:"column:actor_2_lower"`
	Actor3Lower   string `json:"-" gorm:"column:actor_3_lower"`
	GenresLower   string `json:"-" gorm:"column:genres_lower"`
	TagsLower     string `json:"-" gorm:"column:tags_lower"`
}

func (Movie) TableName() string {
	return "movies_flat"
}

// BeforeSave 保存前同步小写标题，作为主要查找键
func (m *Movie) BeforeSave(tx *gorm.DB) error {
	m.Prepare()
	return nil
}

// Prepare 去空白并计算各小写列；绕过 gorm 钩子的批量写入需手动调用
func (m *Movie) Prepare() {
	m.Trim()
	m.TitleLower = TitleKey(m.Title)
	m.DirectorLower = strings.ToLower(m.Director)
	m.Actor1Lower = strings.ToLower(m.Actor1)
	m.Actor2Lower = strings.ToLower(m.Actor2)
	m.Actor3Lower = strings.ToLower(m.Actor3)
	m.GenresLower = strings.ToLower(m.Genres)
	m.TagsLower = strings.ToLower(m.Tags)
}

// Trim 去除各字段首尾空白
func (m *Movie) Trim() {
	m.Title = strings.TrimSpace(m.Title)
	m.Director = strings.TrimSpace(m.Director)
	m.Actor1 = strings.TrimSpace(m.Actor1)
	m.Actor2 = strings.TrimSpace(m.Actor2)
	m.Actor3 = strings.TrimSpace(m.Actor3)
	m.Genres = strings.TrimSpace(m.Genres)
	m.Tags = strings.TrimSpace(m.Tags)
}

// Actors 返回非空的演员字段
func (m *Movie) Actors() []string {
	res := make([]string, 0, 3)
	for _, a := range []string{m.Actor1, m.Actor2, m.Actor3} {
		if s := strings.TrimSpace(a); s != "" {
			res = append(res, s)
		}
	}
	return res
}

// TitleKey 标题归一化：去首尾空白并转小写
func TitleKey(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// CandidateFilter 候选电影查询条件，各条件之间为 OR 关系
//
// 导演、演员、标题为相等匹配；类型、标签为子串匹配。
type CandidateFilter struct {
	Directors    []string
	Actors       []string
	Genres       []string
	Tags         []string
	Titles       []string
	ExcludeTitle string
	Limit        int
}

// IsEmpty 没有任何可用的匹配条件
func (f CandidateFilter) IsEmpty() bool {
	return len(f.Directors) == 0 && len(f.Actors) == 0 && len(f.Genres) == 0 &&
		len(f.Tags) == 0 && len(f.Titles) == 0
}

// SearchFilter 搜索条件，各条件之间为 AND 关系，均为不区分大小写的子串匹配
type SearchFilter struct {
	Title    string
	Director string
	Actor    string
	Genre    string
	Tags     string
	Limit    int
}
