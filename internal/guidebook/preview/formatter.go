// Пакет preview форматирует HTML документа для внешних потребителей: предпросмотр, экспорт, копирование.
//
// Основные возможности:
//   - Форматтеры pretty (отступы), minify (tdewolff/minify) и raw.
//   - Асинхронное форматирование с ревизиями: устаревшие результаты отбрасываются, новая задача отменяет предыдущую.
//   - Откат к последнему удачному результату или исходному HTML при ошибке форматирования.
package preview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tdewolff/minify/v2"
	minhtml "github.com/tdewolff/minify/v2/html"
	"golang.org/x/net/html"
)

// Имена форматтеров
const (
	FormatPretty = "pretty"
	FormatMinify = "minify"
	FormatRaw    = "raw"
)

// Formatter преобразует HTML строку.
type Formatter interface {
	Name() string
	Format(ctx context.Context, src string) (string, error)
}

// NewFormatter возвращает форматтер по имени.
func NewFormatter(name string) (Formatter, error) {
	switch name {
	case FormatPretty, "":
		return Pretty{Indent: "  "}, nil
	case FormatMinify:
		return NewMinify(), nil
	case FormatRaw:
		return Raw{}, nil
	}
	return nil, fmt.Errorf("unknown preview format %q", name)
}

// Raw возвращает HTML без изменений.
type Raw struct{}

func (Raw) Name() string { return FormatRaw }

func (Raw) Format(_ context.Context, src string) (string, error) {
	return src, nil
}

// Minify сжимает HTML. Закрывающие теги и кавычки атрибутов сохраняются.
type Minify struct {
	m *minify.M
}

func NewMinify() *Minify {
	m := minify.New()
	m.Add("text/html", &minhtml.Minifier{KeepEndTags: true, KeepQuotes: true, KeepDocumentTags: true})
	return &Minify{m: m}
}

func (Minify) Name() string { return FormatMinify }

func (f *Minify) Format(ctx context.Context, src string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return f.m.String("text/html", src)
}

// Pretty расставляет отступы: каждый тег и каждый непустой текст на своей строке,
// вложенность добавляет Indent, пустые элементы отступ не увеличивают.
type Pretty struct {
	Indent string
}

func (Pretty) Name() string { return FormatPretty }

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true, "hr": true, "img": true,
	"input": true, "link": true, "meta": true, "source": true, "track": true, "wbr": true,
}

func (p Pretty) Format(ctx context.Context, src string) (string, error) {
	indent := p.Indent
	if indent == "" {
		indent = "  "
	}

	var (
		sb    strings.Builder
		depth int
	)
	line := func(s string) {
		sb.WriteString(strings.Repeat(indent, depth))
		sb.WriteString(s)
		sb.WriteByte('\n')
	}

	z := html.NewTokenizer(strings.NewReader(src))
	for i := 0; ; i++ {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return "", err
			}
		}

		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return strings.TrimSpace(sb.String()), nil
			}
			return "", z.Err()
		case html.StartTagToken:
			raw := string(z.Raw())
			name, _ := z.TagName()
			line(raw)
			if !voidElements[string(name)] {
				depth++
			}
		case html.EndTagToken:
			depth = max(0, depth-1)
			line(string(z.Raw()))
		case html.SelfClosingTagToken, html.CommentToken, html.DoctypeToken:
			line(string(z.Raw()))
		case html.TextToken:
			if text := strings.TrimSpace(string(z.Raw())); text != "" {
				line(text)
			}
		}
	}
}
