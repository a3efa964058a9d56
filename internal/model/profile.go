package model

import (
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TitleList 有序且不区分大小写去重的字符串列表，以 JSON 存储
type TitleList = datatypes.JSONSlice[string]

// Preferences 用户偏好
type Preferences struct {
	Movies    TitleList `json:"movies"`
	Genres    TitleList `json:"genres"`
	Directors TitleList `json:"directors"`
	Actors    TitleList `json:"actors"`
}

// PreferenceInput 偏好写入请求，nil 列表表示保持原值
type PreferenceInput struct {
	Movies    []string `json:"movies"`
	Genres    []string `json:"genres"`
	Directors []string `json:"directors"`
	Actors    []string `json:"actors"`
}

// FeedbackEntry 用户对某部电影的评分与短评，每部电影一条
type FeedbackEntry struct {
	Movie     string    `json:"movie"`
	Rating    int       `json:"rating"`
	Text      string    `json:"text"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Profile 用户资料：偏好、想看、看过、收藏与反馈
//
// 想看列表与看过列表始终互斥。
type Profile struct {
	UserID      string                             `json:"user_id" gorm:"primaryKey;size:128"`
	Preferences Preferences                        `json:"preferences" gorm:"embedded;embeddedPrefix:pref_"`
	Watchlist   TitleList                          `json:"watchlist"`
	Seen        TitleList                          `json:"seen"`
	Favorites   TitleList                          `json:"favorites"`
	Feedback    datatypes.JSONSlice[FeedbackEntry] `json:"feedback"`
	CreatedAt   time.Time                          `json:"created_at"`
	UpdatedAt   time.Time                          `json:"updated_at"`
}

func (Profile) TableName() string {
	return "user_profiles"
}

// NewProfile 创建空的用户资料
func NewProfile(userID string) *Profile {
	p := &Profile{UserID: userID}
	p.EnsureLists()
	return p
}

// BeforeSave 保证列表字段不为 nil，避免写入 JSON null
func (p *Profile) BeforeSave(tx *gorm.DB) error {
	p.EnsureLists()
	return nil
}

// EnsureLists 将 nil 列表替换为空列表
func (p *Profile) EnsureLists() {
	for _, l := range []*TitleList{
		&p.Preferences.Movies, &p.Preferences.Genres, &p.Preferences.Directors, &p.Preferences.Actors,
		&p.Watchlist, &p.Seen, &p.Favorites,
	} {
		if *l == nil {
			*l = TitleList{}
		}
	}
	if p.Feedback == nil {
		p.Feedback = datatypes.JSONSlice[FeedbackEntry]{}
	}
}

// HasPreferences 是否存在任意非空偏好列表
func (p *Profile) HasPreferences() bool {
	return len(p.Preferences.Movies) > 0 || len(p.Preferences.Genres) > 0 ||
		len(p.Preferences.Directors) > 0 || len(p.Preferences.Actors) > 0
}

// SetPreferences 按列表整体替换偏好，未提供的列表保持不变
func (p *Profile) SetPreferences(in PreferenceInput) {
	if in.Movies != nil {
		p.Preferences.Movies = cleanList(in.Movies)
	}
	if in.Genres != nil {
		p.Preferences.Genres = cleanList(in.Genres)
	}
	if in.Directors != nil {
		p.Preferences.Directors = cleanList(in.Directors)
	}
	if in.Actors != nil {
		p.Preferences.Actors = cleanList(in.Actors)
	}
}

// AddWatchlist 加入想看；若已在看过列表中则从看过移除
func (p *Profile) AddWatchlist(title string) {
	p.Watchlist = addUnique(p.Watchlist, title)
	p.Seen = removeItem(p.Seen, title)
}

// RemoveWatchlist 移出想看
func (p *Profile) RemoveWatchlist(title string) {
	p.Watchlist = removeItem(p.Watchlist, title)
}

// MarkSeen 标记看过，同时从想看移除
func (p *Profile) MarkSeen(title string) {
	p.Seen = addUnique(p.Seen, title)
	p.Watchlist = removeItem(p.Watchlist, title)
}

// UnmarkSeen 取消看过
func (p *Profile) UnmarkSeen(title string) {
	p.Seen = removeItem(p.Seen, title)
}

// AddFavorite 收藏，收藏的电影同时计入偏好电影
func (p *Profile) AddFavorite(title string) {
	p.Favorites = addUnique(p.Favorites, title)
	p.Preferences.Movies = addUnique(p.Preferences.Movies, title)
}

// RemoveFavorite 取消收藏（偏好电影保持不变）
func (p *Profile) RemoveFavorite(title string) {
	p.Favorites = removeItem(p.Favorites, title)
}

// SetFeedback 写入反馈，同一电影后写覆盖先写
func (p *Profile) SetFeedback(movie string, rating int, text string) FeedbackEntry {
	movie = strings.TrimSpace(movie)
	entry := FeedbackEntry{
		Movie:     movie,
		Rating:    rating,
		Text:      strings.TrimSpace(text),
		UpdatedAt: time.Now().UTC(),
	}
	key := TitleKey(movie)
	for i := range p.Feedback {
		if TitleKey(p.Feedback[i].Movie) == key {
			p.Feedback[i] = entry
			return entry
		}
	}
	p.Feedback = append(p.Feedback, entry)
	return entry
}

// Clone 深拷贝
func (p *Profile) Clone() *Profile {
	c := *p
	c.Preferences = Preferences{
		Movies:    append(TitleList{}, p.Preferences.Movies...),
		Genres:    append(TitleList{}, p.Preferences.Genres...),
		Directors: append(TitleList{}, p.Preferences.Directors...),
		Actors:    append(TitleList{}, p.Preferences.Actors...),
	}
	c.Watchlist = append(TitleList{}, p.Watchlist...)
	c.Seen = append(TitleList{}, p.Seen...)
	c.Favorites = append(TitleList{}, p.Favorites...)
	c.Feedback = append(datatypes.JSONSlice[FeedbackEntry]{}, p.Feedback...)
	return &c
}

// Contains 列表中是否存在（不区分大小写）
func Contains(list []string, title string) bool {
	return indexOf(list, title) >= 0
}

func indexOf(list []string, title string) int {
	key := TitleKey(title)
	for i, v := range list {
		if TitleKey(v) == key {
			return i
		}
	}
	return -1
}

func addUnique(list TitleList, title string) TitleList {
	title = strings.TrimSpace(title)
	if title == "" || indexOf(list, title) >= 0 {
		return list
	}
	return append(list, title)
}

func removeItem(list TitleList, title string) TitleList {
	key := TitleKey(title)
	res := make(TitleList, 0, len(list))
	for _, v := range list {
		if TitleKey(v) != key {
			res = append(res, v)
		}
	}
	return res
}

func cleanList(in []string) TitleList {
	res := make(TitleList, 0, len(in))
	for _, v := range in {
		res = addUnique(res, v)
	}
	return res
}
