package schema

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/gosimple/slug"

	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor/edtypes"
)

// SectionIDPattern - допустимый формат id секции.
var SectionIDPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

const sectionIDPrefix = "section-"

// NewSectionID генерирует уникальный в документе id секции из текста заголовка.
// Id, не начинающийся с буквы, получает префикс section-, занятый id - суффикс -2, -3 и т.д.
// Для пустого заголовка id строится из uuid.
func NewSectionID(doc *edtypes.Node, title string) string {
	base := strings.ReplaceAll(slug.Make(title), "_", "-")
	if base == "" {
		base = strings.SplitN(uuid.Must(uuid.NewV4()).String(), "-", 2)[0]
	}
	if !SectionIDPattern.MatchString(base) {
		base = sectionIDPrefix + base
	}

	taken := UsedIDs(doc)
	id := base
	for i := 2; taken[id]; i++ {
		id = fmt.Sprintf("%s-%d", base, i)
	}
	return id
}

// UsedIDs возвращает множество id, занятых нодами документа.
func UsedIDs(doc *edtypes.Node) map[string]bool {
	ids := make(map[string]bool)
	if doc == nil {
		return ids
	}
	doc.Descendants(func(n *edtypes.Node, _ int, _ *edtypes.Node) bool {
		if id := n.Attrs.Get(edtypes.AttrID); id != "" {
			ids[id] = true
		}
		return true
	})
	return ids
}
