package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor"
	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor/edtypes"
	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor/tiptap"
)

// loadFile разбирает документ по расширению: .md через Markdown, .json как TipTap, остальное как HTML.
// "-" читает STDIN как HTML.
func loadFile(path string) (*edtypes.Node, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var (
		doc *edtypes.Node
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		doc, err = editor.ParseMarkdown(r)
	case ".json":
		doc, err = tiptap.ParseJSON(r)
	default:
		doc, err = editor.ParseHTML(r)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to parse '%s': %w", path, err)
	}
	return doc, nil
}
