package service

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/user/nextflix/internal/utils"
)

var reCitation = regexp.MustCompile(`\[(\d+|[a-z]|citation needed|note \d+)\]`)

// WikipediaProvider 抓取维基百科条目首段作为简介
type WikipediaProvider struct {
	client  *utils.HTTPClient
	baseURL string
}

func NewWikipediaProvider(client *utils.HTTPClient, baseURL string) *WikipediaProvider {
	return &WikipediaProvider{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

// Synopsis 依次尝试 "标题 (年份 film)"、"标题 (film)"、"标题"
func (p *WikipediaProvider) Synopsis(ctx context.Context, title, year string) (string, error) {
	candidates := []string{title + " (film)", title}
	if year != "" {
		candidates = append([]string{title + " (" + year + " film)"}, candidates...)
	}

	for _, page := range candidates {
		body, err := p.client.GetBody(ctx, p.pageURL(page), map[string]string{"Accept": "text/html"})
		if err != nil {
			var se *utils.StatusError
			if errors.As(err, &se) && se.Code == 404 {
				continue
			}
			return "", err
		}
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			return "", err
		}
		if text := leadParagraph(doc); text != "" {
			return text, nil
		}
	}
	return "", ErrNoResult
}

func (p *WikipediaProvider) pageURL(page string) string {
	return p.baseURL + "/wiki/" + url.PathEscape(strings.ReplaceAll(page, " ", "_"))
}

// leadParagraph 条目正文第一个非空段落；消歧义页返回空
func leadParagraph(doc *goquery.Document) string {
	var text string
	doc.Find("#mw-content-text .mw-parser-output > p").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if s.HasClass("mw-empty-elt") {
			return true
		}
		t := strings.TrimSpace(reCitation.ReplaceAllString(s.Text(), ""))
		if t == "" {
			return true
		}
		text = strings.Join(strings.Fields(t), " ")
		return false
	})
	if strings.HasSuffix(text, "may refer to:") {
		return ""
	}
	return text
}
