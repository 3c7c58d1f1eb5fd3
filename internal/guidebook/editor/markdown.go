package editor

import (
	"bytes"
	"fmt"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor/edtypes"
)

// Встроенная HTML разметка интерактивных нод проходит в документ как есть
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.Strikethrough),
	goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
)

// ParseMarkdown преобразует Markdown в HTML и разбирает его в документ.
func ParseMarkdown(r io.Reader) (*edtypes.Node, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := markdown.Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}
	return ParseHTML(&buf)
}
