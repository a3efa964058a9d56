package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/user/nextflix/internal/events"
	"github.com/user/nextflix/internal/logger"
	"github.com/user/nextflix/internal/metrics"
	"github.com/user/nextflix/internal/model"
	"github.com/user/nextflix/internal/repository"
)

// RequiredColumns 导入文件必须包含的列
var RequiredColumns = []string{
	"movie_title", "director_name", "actor_1_name", "actor_2_name", "actor_3_name", "genres", "tags",
}

// ImportResult 导入结果
type ImportResult struct {
	Status   string   `json:"status"`
	Inserted int      `json:"inserted"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
}

// Importer CSV 批量导入
type Importer struct {
	movies  *repository.MovieRepository
	catalog *CatalogService
	events  events.Publisher
	log     *logger.Logger
}

func NewImporter(movies *repository.MovieRepository, catalog *CatalogService, pub events.Publisher, log *logger.Logger) *Importer {
	return &Importer{movies: movies, catalog: catalog, events: pub, log: log}
}

// Import 读取 UTF-8 CSV，标题为空的行跳过并记录，已存在的标题跳过
func (im *Importer) Import(ctx context.Context, r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: csv file is empty", ErrInvalidRequest)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	cols, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	existing, err := im.movies.TitleKeys(ctx)
	if err != nil {
		return nil, err
	}

	res := &ImportResult{Status: "completed", Errors: []string{}}
	var batch []model.Movie
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				res.Errors = append(res.Errors, fmt.Sprintf("Line %d: %v", pe.StartLine, pe.Err))
			} else {
				res.Errors = append(res.Errors, err.Error())
			}
			continue
		}
		// 记录起始的物理行号，引号内换行不影响后续行号
		line, _ := reader.FieldPos(0)

		field := func(name string) string {
			i := cols[name]
			if i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		m := model.Movie{
			Title:    field("movie_title"),
			Director: field("director_name"),
			Actor1:   field("actor_1_name"),
			Actor2:   field("actor_2_name"),
			Actor3:   field("actor_3_name"),
			Genres:   field("genres"),
			Tags:     field("tags"),
		}
		if m.Title == "" {
			res.Errors = append(res.Errors, fmt.Sprintf("Line %d: Missing title", line))
			continue
		}
		key := model.TitleKey(m.Title)
		if _, dup := existing[key]; dup {
			res.Skipped++
			continue
		}
		existing[key] = struct{}{}
		batch = append(batch, m)
	}

	if len(batch) > 0 {
		n, err := im.movies.BulkInsert(ctx, batch)
		if err != nil {
			return nil, duplicateTitle(err)
		}
		res.Inserted = n
	}

	metrics.MoviesImported.Add(float64(res.Inserted))
	if res.Inserted > 0 {
		im.catalog.Invalidate()
	}
	im.log.Info("CSV 导入完成", "inserted", res.Inserted, "skipped", res.Skipped, "errors", len(res.Errors))
	im.events.Publish(ctx, events.TopicMoviesImported, map[string]interface{}{
		"inserted": res.Inserted,
		"skipped":  res.Skipped,
		"errors":   len(res.Errors),
	})
	return res, nil
}

func columnIndex(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, ok := cols[h]; !ok {
			cols[h] = i
		}
	}
	var missing []string
	for _, c := range RequiredColumns {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%w: csv is missing required columns %s. Required: %s",
			ErrInvalidRequest, strings.Join(missing, ", "), strings.Join(RequiredColumns, ", "))
	}
	return cols, nil
}
