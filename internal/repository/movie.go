package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/user/nextflix/internal/model"
	"gorm.io/gorm"
)

const (
	defaultSearchLimit = 100
	insertBatchSize    = 200
)

var movieColumns = []string{
	"movie_title", "movie_title_lower", "director_name",
	"actor_1_name", "actor_2_name", "actor_3_name", "genres", "tags",
	"director_lower", "actor_1_lower", "actor_2_lower", "actor_3_lower", "genres_lower", "tags_lower",
	"created_at", "updated_at",
}

// ErrDuplicateTitle 违反标题唯一约束
var ErrDuplicateTitle = errors.New("duplicate movie title")

// pgUniqueViolation postgres unique_violation 错误码
const pgUniqueViolation = "23505"

type MovieRepository struct {
	db *gorm.DB
}

func NewMovieRepository(db *gorm.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

// FindByID 根据 ID 查找电影，不存在返回 nil
func (r *MovieRepository) FindByID(ctx context.Context, id uint) (*model.Movie, error) {
	var m model.Movie
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// FindByNormalizedTitle 按小写去空白后的标题精确查找
func (r *MovieRepository) FindByNormalizedTitle(ctx context.Context, title string) (*model.Movie, error) {
	return r.first(ctx, "movie_title_lower = ?", model.TitleKey(title))
}

// FindByTitleSubstring 返回标题包含关键字的第一部电影
func (r *MovieRepository) FindByTitleSubstring(ctx context.Context, title string) (*model.Movie, error) {
	key := model.TitleKey(title)
	if key == "" {
		return nil, nil
	}
	return r.first(ctx, "movie_title_lower LIKE ? ESCAPE '\\'", likePattern(key))
}

// Resolve 先精确匹配，再子串匹配
func (r *MovieRepository) Resolve(ctx context.Context, title string) (*model.Movie, error) {
	m, err := r.FindByNormalizedTitle(ctx, title)
	if err != nil || m != nil {
		return m, err
	}
	return r.FindByTitleSubstring(ctx, title)
}

func (r *MovieRepository) first(ctx context.Context, query string, args ...interface{}) (*model.Movie, error) {
	var m model.Movie
	err := r.db.WithContext(ctx).Where(query, args...).Order("id").Take(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// FindCandidates 查找与任一特征相交的电影
//
// 导演、演员、标题为相等匹配，类型、标签为子串匹配，条件之间为 OR。
func (r *MovieRepository) FindCandidates(ctx context.Context, f model.CandidateFilter) ([]model.Movie, error) {
	if f.IsEmpty() {
		return []model.Movie{}, nil
	}

	var clauses []string
	var args []interface{}
	if len(f.Directors) > 0 {
		clauses = append(clauses, "director_lower IN ?")
		args = append(args, f.Directors)
	}
	if len(f.Actors) > 0 {
		clauses = append(clauses,
			"actor_1_lower IN ?",
			"actor_2_lower IN ?",
			"actor_3_lower IN ?")
		args = append(args, f.Actors, f.Actors, f.Actors)
	}
	for _, g := range f.Genres {
		clauses = append(clauses, "genres_lower LIKE ? ESCAPE '\\'")
		args = append(args, likePattern(g))
	}
	for _, t := range f.Tags {
		clauses = append(clauses, "tags_lower LIKE ? ESCAPE '\\'")
		args = append(args, likePattern(t))
	}
	if len(f.Titles) > 0 {
		clauses = append(clauses, "movie_title_lower IN ?")
		args = append(args, f.Titles)
	}

	q := r.db.WithContext(ctx).Where("("+strings.Join(clauses, " OR ")+")", args...)
	if f.ExcludeTitle != "" {
		q = q.Where("movie_title_lower <> ?", f.ExcludeTitle)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 1000
	}

	var movies []model.Movie
	if err := q.Order("id").Limit(limit).Find(&movies).Error; err != nil {
		return nil, err
	}
	return movies, nil
}

// Search 多条件搜索，条件之间为 AND，均为不区分大小写的子串匹配
//
// Limit <= 0 时使用默认上限 100。
func (r *MovieRepository) Search(ctx context.Context, f model.SearchFilter) ([]model.Movie, error) {
	q := r.filtered(ctx, f)
	limit := f.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	var movies []model.Movie
	if err := q.Order("movie_title").Order("id").Limit(limit).Find(&movies).Error; err != nil {
		return nil, err
	}
	return movies, nil
}

// List 管理后台列表，不限制条数
func (r *MovieRepository) List(ctx context.Context, f model.SearchFilter) ([]model.Movie, error) {
	var movies []model.Movie
	if err := r.filtered(ctx, f).Order("movie_title").Order("id").Find(&movies).Error; err != nil {
		return nil, err
	}
	return movies, nil
}

// ListAll 全部电影，按标题排序
func (r *MovieRepository) ListAll(ctx context.Context) ([]model.Movie, error) {
	return r.List(ctx, model.SearchFilter{})
}

func (r *MovieRepository) filtered(ctx context.Context, f model.SearchFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Movie{})
	if s := model.TitleKey(f.Title); s != "" {
		q = q.Where("movie_title_lower LIKE ? ESCAPE '\\'", likePattern(s))
	}
	if s := model.TitleKey(f.Director); s != "" {
		q = q.Where("director_lower LIKE ? ESCAPE '\\'", likePattern(s))
	}
	if s := model.TitleKey(f.Actor); s != "" {
		p := likePattern(s)
		q = q.Where("(actor_1_lower LIKE ? ESCAPE '\\' OR actor_2_lower LIKE ? ESCAPE '\\' OR actor_3_lower LIKE ? ESCAPE '\\')", p, p, p)
	}
	if s := model.TitleKey(f.Genre); s != "" {
		q = q.Where("genres_lower LIKE ? ESCAPE '\\'", likePattern(s))
	}
	if s := model.TitleKey(f.Tags); s != "" {
		q = q.Where("tags_lower LIKE ? ESCAPE '\\'", likePattern(s))
	}
	return q
}

// Count 电影总数
func (r *MovieRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Movie{}).Count(&n).Error
	return n, err
}

// TitleKeys 已存在的全部小写标题，用于导入去重
func (r *MovieRepository) TitleKeys(ctx context.Context) (map[string]struct{}, error) {
	var keys []string
	if err := r.db.WithContext(ctx).Model(&model.Movie{}).Pluck("movie_title_lower", &keys).Error; err != nil {
		return nil, err
	}
	res := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		res[k] = struct{}{}
	}
	return res, nil
}

// Create 标题重复时返回 ErrDuplicateTitle
func (r *MovieRepository) Create(ctx context.Context, m *model.Movie) error {
	return r.translate(r.db.WithContext(ctx).Create(m).Error)
}

func (r *MovieRepository) Update(ctx context.Context, m *model.Movie) error {
	return r.translate(r.db.WithContext(ctx).Save(m).Error)
}

// Delete 删除电影，返回是否存在
func (r *MovieRepository) Delete(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&model.Movie{}, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// BulkInsert 批量写入：postgres 使用 COPY，其他数据库分批 INSERT
func (r *MovieRepository) BulkInsert(ctx context.Context, movies []model.Movie) (int, error) {
	if len(movies) == 0 {
		return 0, nil
	}
	if r.db.Dialector.Name() == "postgres" {
		n, err := r.copyIn(ctx, movies)
		return n, r.translate(err)
	}
	if err := r.db.WithContext(ctx).CreateInBatches(&movies, insertBatchSize).Error; err != nil {
		return 0, r.translate(err)
	}
	return len(movies), nil
}

func (r *MovieRepository) copyIn(ctx context.Context, movies []model.Movie) (int, error) {
	sqlDB, err := r.db.DB()
	if err != nil {
		return 0, err
	}
	tx, err := sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(model.Movie{}.TableName(), movieColumns...))
	if err != nil {
		return 0, fmt.Errorf("prepare copy: %w", err)
	}

	now := r.db.NowFunc()
	for i := range movies {
		m := &movies[i]
		m.Prepare()
		if _, err := stmt.ExecContext(ctx, m.Title, m.TitleLower, m.Director,
			m.Actor1, m.Actor2, m.Actor3, m.Genres, m.Tags,
			m.DirectorLower, m.Actor1Lower, m.Actor2Lower, m.Actor3Lower, m.GenresLower, m.TagsLower,
			now, now); err != nil {
			stmt.Close()
			return 0, fmt.Errorf("copy row %q: %w", m.Title, err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return 0, fmt.Errorf("flush copy: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(movies), nil
}

// translate 将唯一约束冲突统一为 ErrDuplicateTitle
func (r *MovieRepository) translate(err error) error {
	if err == nil {
		return nil
	}
	if t, ok := r.db.Dialector.(gorm.ErrorTranslator); ok {
		err = t.Translate(err)
	}
	var pqErr *pq.Error
	if errors.Is(err, gorm.ErrDuplicatedKey) || (errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation) {
		return fmt.Errorf("%w: %v", ErrDuplicateTitle, err)
	}
	return err
}

// likePattern 转义通配符并包裹为 %term%
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
