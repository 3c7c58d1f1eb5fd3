package schema

import (
	"fmt"
	"slices"

	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor/edtypes"
)

// Шаблон содержимого новой секции последовательности
const (
	SequenceTemplateTitle = "Section Title Goes Here"
	sequenceTemplateSteps = 3
)

// SetSpan оборачивает строчный диапазон [from, to) в интерактивный span.
func SetSpan(doc *edtypes.Node, from, to int, attrs edtypes.Attrs) (*edtypes.Node, error) {
	return wrapInline(doc, from, to, edtypes.KindSpan, attrs)
}

// SetComment оборачивает строчный диапазон [from, to) в интерактивный комментарий.
func SetComment(doc *edtypes.Node, from, to int, attrs edtypes.Attrs) (*edtypes.Node, error) {
	return wrapInline(doc, from, to, edtypes.KindComment, attrs)
}

func wrapInline(doc *edtypes.Node, from, to int, kind edtypes.Kind, attrs edtypes.Attrs) (*edtypes.Node, error) {
	node, err := Create(kind, attrs)
	if err != nil {
		return nil, err
	}
	// Обертка сначала проверяется на копии, документ меняется только для строчного диапазона
	trial := node.Clone()
	if err := doc.Clone().WrapRange(from, to, trial); err != nil {
		return nil, fmt.Errorf("wrap %s [%d, %d): %w", kind, from, to, err)
	}
	for _, child := range trial.Content {
		if !child.IsInline() {
			return nil, fmt.Errorf("wrap %s [%d, %d): range contains blocks: %w", kind, from, to, ErrKindMismatch)
		}
	}
	if err := doc.WrapRange(from, to, node); err != nil {
		return nil, fmt.Errorf("wrap %s [%d, %d): %w", kind, from, to, err)
	}
	return node, nil
}

// Unwrap снимает интерактивную ноду вида kind в позиции pos, оставляя ее содержимое.
// Для элемента списка снимается только интерактивная разметка, сам элемент остается.
func Unwrap(doc *edtypes.Node, pos int, kind edtypes.Kind) error {
	node := doc.NodeAt(pos)
	if node == nil {
		return fmt.Errorf("unwrap at %d: %w", pos, edtypes.ErrNotFound)
	}
	if k, _ := edtypes.KindOf(node); k != kind {
		return fmt.Errorf("unwrap at %d: %w", pos, ErrKindMismatch)
	}
	if kind == edtypes.KindListItem {
		_, err := doc.SetNodeAttrs(pos, nil)
		return err
	}
	return doc.Unwrap(pos)
}

// SequenceAttrs дополняет атрибуты новой секции: без id он генерируется из заголовка шаблона,
// цель по умолчанию span#<id>.
func SequenceAttrs(doc *edtypes.Node, attrs edtypes.Attrs) edtypes.Attrs {
	attrs = attrs.Clone()
	if attrs == nil {
		attrs = edtypes.Attrs{}
	}
	if !attrs.Has(edtypes.AttrID) {
		attrs.Set(edtypes.AttrID, NewSectionID(doc, SequenceTemplateTitle))
	}
	if !attrs.Has(edtypes.AttrRefTarget) {
		attrs.Set(edtypes.AttrRefTarget, "span#"+attrs.Get(edtypes.AttrID))
	}
	return attrs
}

// InsertSequenceSection вставляет секцию последовательности с шаблонным содержимым:
// заголовок и маркированный список из трех шагов. Атрибуты дополняются SequenceAttrs.
// Секция - блок, поэтому позиция должна лежать между блоками: внутри строчного содержимого
// возвращается edtypes.ErrNotBoundary.
func InsertSequenceSection(doc *edtypes.Node, pos int, attrs edtypes.Attrs) (*edtypes.Node, error) {
	if pos < 0 || pos > doc.ContentSize() {
		return nil, fmt.Errorf("insert sequence section at %d: %w", pos, edtypes.ErrPositionOutOfRange)
	}
	if !acceptsBlockAt(doc, pos) {
		return nil, fmt.Errorf("insert sequence section at %d: inline content: %w", pos, edtypes.ErrNotBoundary)
	}
	attrs = SequenceAttrs(doc, attrs)

	list := &edtypes.Node{Type: edtypes.NodeBulletList}
	for i := 1; i <= sequenceTemplateSteps; i++ {
		list.Content = append(list.Content, &edtypes.Node{
			Type:    edtypes.NodeListItem,
			Content: []*edtypes.Node{edtypes.NewText(fmt.Sprintf("Step %d: Describe the action", i))},
		})
	}
	heading := &edtypes.Node{
		Type:    edtypes.NodeHeading,
		Attrs:   edtypes.Attrs{"level": "3"},
		Content: []*edtypes.Node{edtypes.NewText(SequenceTemplateTitle)},
	}

	section, err := Create(edtypes.KindSequence, attrs, heading, list)
	if err != nil {
		return nil, err
	}
	if err := doc.InsertAt(pos, section); err != nil {
		return nil, fmt.Errorf("insert sequence section at %d: %w", pos, err)
	}
	return section, nil
}

// acceptsBlockAt сообщает, можно ли вставить блок в позицию pos: позиция лежит в содержимом
// документа, цитаты, секции или элемента списка, содержащего только блоки.
func acceptsBlockAt(doc *edtypes.Node, pos int) bool {
	ancestors := doc.Ancestors(pos)
	if len(ancestors) == 0 {
		return true
	}
	parent := ancestors[len(ancestors)-1].Node
	switch parent.Type {
	case edtypes.NodeBlockquote, edtypes.NodeSequenceSection:
		return true
	case edtypes.NodeListItem:
		return !slices.ContainsFunc(parent.Content, (*edtypes.Node).IsInline)
	}
	return false
}

// ConvertToInteractiveListItem делает элемент списка, содержащий позицию pos, интерактивным.
// Если позиция лежит вне списка, текстовый блок заменяется маркированным списком из одного элемента.
// Возвращает позицию элемента списка.
func ConvertToInteractiveListItem(doc *edtypes.Node, pos int, attrs edtypes.Attrs) (int, error) {
	attrs = attrs.Clone()
	if attrs == nil {
		attrs = edtypes.Attrs{}
	}
	if !edtypes.HasClass(attrs.Get(edtypes.AttrClass), edtypes.ClassInteractive) {
		attrs.Set(edtypes.AttrClass, edtypes.ClassInteractive)
	}

	ancestors := doc.Ancestors(pos)
	for i := len(ancestors) - 1; i >= 0; i-- {
		if ancestors[i].Node.Type == edtypes.NodeListItem {
			if _, err := UpdateAttributes(doc, ancestors[i].Pos, edtypes.KindListItem, attrs); err != nil {
				return 0, err
			}
			return ancestors[i].Pos, nil
		}
	}

	for i := len(ancestors) - 1; i >= 0; i-- {
		block := ancestors[i]
		if !isTextblock(block.Node) {
			continue
		}
		li, err := Create(edtypes.KindListItem, attrs, block.Node.Content...)
		if err != nil {
			return 0, err
		}
		list := &edtypes.Node{Type: edtypes.NodeBulletList, Content: []*edtypes.Node{li}}
		if _, err := doc.DeleteAt(block.Pos); err != nil {
			return 0, err
		}
		if err := doc.InsertAt(block.Pos, list); err != nil {
			return 0, err
		}
		return block.Pos + 1, nil
	}
	return 0, fmt.Errorf("convert to list item at %d: %w", pos, edtypes.ErrNotFound)
}

// ToggleInteractiveClass переключает класс interactive у элемента списка в позиции pos.
// Без класса элемент списка теряет и остальные интерактивные атрибуты.
func ToggleInteractiveClass(doc *edtypes.Node, pos int) (bool, error) {
	node := doc.NodeAt(pos)
	if node == nil || node.Type != edtypes.NodeListItem {
		return false, fmt.Errorf("toggle interactive at %d: %w", pos, ErrKindMismatch)
	}
	if edtypes.HasClass(node.Attrs.Get(edtypes.AttrClass), edtypes.ClassInteractive) {
		_, err := doc.SetNodeAttrs(pos, nil)
		return false, err
	}
	attrs := node.Attrs.Clone()
	if attrs == nil {
		attrs = edtypes.Attrs{}
	}
	attrs.Set(edtypes.AttrClass, edtypes.ClassInteractive)
	_, err := doc.SetNodeAttrs(pos, attrs)
	return true, err
}

func isTextblock(n *edtypes.Node) bool {
	switch n.Type {
	case edtypes.NodeParagraph, edtypes.NodeHeading, edtypes.NodeCodeBlock:
		return true
	}
	return false
}
