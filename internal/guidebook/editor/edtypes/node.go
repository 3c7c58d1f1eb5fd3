// Пакет edtypes содержит модель документа интерактивного редактора: дерево нод в форме TipTap/ProseMirror,
// целочисленные позиции внутри документа, атрибуты нод и закрытый набор интерактивных видов нод.
//
// Основные возможности:
//   - Дерево нод с атрибутами, марками и текстом, совместимое с TipTap JSON.
//   - Вычисление размеров нод и позиций в стиле ProseMirror.
//   - Обход документа и поиск ноды по позиции.
//   - Минимальные операции изменения документа (атрибуты, вставка, удаление, обертка, разворачивание).
package edtypes

import (
	"errors"
	"slices"
	"unicode/utf8"
)

// Типы нод документа
const (
	NodeDoc                = "doc"
	NodeText               = "text"
	NodeParagraph          = "paragraph"
	NodeHeading            = "heading"
	NodeBulletList         = "bulletList"
	NodeOrderedList        = "orderedList"
	NodeListItem           = "listItem"
	NodeBlockquote         = "blockquote"
	NodeCodeBlock          = "codeBlock"
	NodeHorizontalRule     = "horizontalRule"
	NodeHardBreak          = "hardBreak"
	NodeInteractiveSpan    = "interactiveSpan"
	NodeInteractiveComment = "interactiveComment"
	NodeSequenceSection    = "sequenceSection"
)

// Типы марок текста
const (
	MarkBold   = "bold"
	MarkItalic = "italic"
	MarkStrike = "strike"
	MarkCode   = "code"
	MarkLink   = "link"
)

var (
	ErrPositionOutOfRange = errors.New("position out of range")
	ErrNotFound           = errors.New("node not found")
	ErrNotBoundary        = errors.New("position is not a node boundary")
	ErrDifferentParents   = errors.New("range spans different parents")
)

// Node - нода документа. Структура повторяет TipTap JSON, поэтому документ сериализуется без преобразований.
type Node struct {
	Type    string  `json:"type"`
	Attrs   Attrs   `json:"attrs,omitempty"`
	Content []*Node `json:"content,omitempty"`
	Marks   []Mark  `json:"marks,omitempty"`
	Text    string  `json:"text,omitempty"`
}

// Mark - форматирование текстовой ноды.
type Mark struct {
	Type  string `json:"type"`
	Attrs Attrs  `json:"attrs,omitempty"`
}

// NewDoc создает пустой документ с переданным содержимым.
func NewDoc(content ...*Node) *Node {
	return &Node{Type: NodeDoc, Content: content}
}

// NewText создает текстовую ноду.
func NewText(text string, marks ...Mark) *Node {
	return &Node{Type: NodeText, Text: text, Marks: marks}
}

// IsText возвращает true для текстовых нод.
func (n *Node) IsText() bool {
	return n.Type == NodeText
}

// IsLeaf возвращает true для нод, которые не могут иметь содержимого.
func (n *Node) IsLeaf() bool {
	switch n.Type {
	case NodeText, NodeHardBreak, NodeHorizontalRule:
		return true
	}
	return false
}

// IsInline возвращает true для строчных нод.
func (n *Node) IsInline() bool {
	return IsInlineType(n.Type)
}

// IsInlineType проверяет, является ли тип ноды строчным.
func IsInlineType(t string) bool {
	switch t {
	case NodeText, NodeHardBreak, NodeInteractiveSpan, NodeInteractiveComment:
		return true
	}
	return false
}

// NodeSize возвращает размер ноды в позициях документа.
// Текст занимает количество рун, листовые ноды - одну позицию, остальные - содержимое плюс открывающая и закрывающая границы.
func (n *Node) NodeSize() int {
	if n.IsText() {
		return utf8.RuneCountInString(n.Text)
	}
	if n.IsLeaf() {
		return 1
	}
	return n.ContentSize() + 2
}

// ContentSize возвращает суммарный размер дочерних нод.
func (n *Node) ContentSize() int {
	size := 0
	for _, child := range n.Content {
		size += child.NodeSize()
	}
	return size
}

// HasMark проверяет наличие марки на ноде.
func (n *Node) HasMark(t string) bool {
	return slices.ContainsFunc(n.Marks, func(m Mark) bool { return m.Type == t })
}

// TextContent собирает весь текст ноды и ее потомков.
func (n *Node) TextContent() string {
	if n.IsText() {
		return n.Text
	}
	var text string
	for _, child := range n.Content {
		text += child.TextContent()
	}
	return text
}

// Descendants обходит всех потомков ноды в порядке документа.
// Позиция считается от начала содержимого ноды. Если f возвращает false, потомки текущей ноды пропускаются.
func (n *Node) Descendants(f func(node *Node, pos int, parent *Node) bool) {
	descend(n, 0, f)
}

func descend(parent *Node, start int, f func(*Node, int, *Node) bool) {
	pos := start
	for _, child := range parent.Content {
		if f(child, pos, parent) && len(child.Content) > 0 {
			descend(child, pos+1, f)
		}
		pos += child.NodeSize()
	}
}

// NodeAt возвращает самую внешнюю ноду, которая начинается ровно в позиции pos.
func (n *Node) NodeAt(pos int) *Node {
	if pos < 0 {
		return nil
	}
	node := n
	for {
		offset := 0
		var next *Node
		for _, child := range node.Content {
			size := child.NodeSize()
			if pos < offset+size {
				next = child
				break
			}
			offset += size
		}
		if next == nil {
			return nil
		}
		if offset == pos {
			return next
		}
		if next.IsText() {
			return next
		}
		if next.IsLeaf() {
			return nil
		}
		node = next
		pos -= offset + 1
	}
}

// PosOf возвращает позицию ноды в документе по ее идентичности.
func (n *Node) PosOf(target *Node) (int, bool) {
	res, found := -1, false
	n.Descendants(func(node *Node, pos int, _ *Node) bool {
		if found {
			return false
		}
		if node == target {
			res, found = pos, true
			return false
		}
		return true
	})
	return res, found
}

// ParentOf возвращает родителя ноды, начинающейся в позиции pos, и ее индекс в родителе.
func (n *Node) ParentOf(pos int) (*Node, int, error) {
	if pos < 0 || pos >= n.ContentSize() {
		return nil, 0, ErrPositionOutOfRange
	}
	node := n
	for {
		offset := 0
		var next *Node
		for i, child := range node.Content {
			size := child.NodeSize()
			if pos == offset {
				return node, i, nil
			}
			if pos < offset+size {
				next = child
				break
			}
			offset += size
		}
		if next == nil {
			return nil, 0, ErrNotFound
		}
		if next.IsLeaf() {
			return nil, 0, ErrNotBoundary
		}
		node = next
		pos -= offset + 1
	}
}

// boundary находит родителя и индекс вставки для позиции, лежащей между дочерними нодами.
// Позиция внутри текста разбивает текстовую ноду.
func (n *Node) boundary(pos int) (*Node, int, error) {
	if pos < 0 || pos > n.ContentSize() {
		return nil, 0, ErrPositionOutOfRange
	}
	node := n
	for {
		offset := 0
		descended := false
		for i, child := range node.Content {
			size := child.NodeSize()
			if pos == offset {
				return node, i, nil
			}
			if pos < offset+size {
				switch {
				case child.IsText():
					splitText(node, i, pos-offset)
					return node, i + 1, nil
				case child.IsLeaf():
					return nil, 0, ErrNotBoundary
				}
				node = child
				pos -= offset + 1
				descended = true
				break
			}
			offset += size
		}
		if !descended {
			if pos == offset {
				return node, len(node.Content), nil
			}
			return nil, 0, ErrNotBoundary
		}
	}
}

func splitText(parent *Node, index int, at int) {
	text := parent.Content[index]
	runes := []rune(text.Text)
	left := &Node{Type: NodeText, Text: string(runes[:at]), Marks: slices.Clone(text.Marks)}
	right := &Node{Type: NodeText, Text: string(runes[at:]), Marks: slices.Clone(text.Marks)}
	parent.Content = slices.Replace(parent.Content, index, index+1, left, right)
}

// SetNodeAttrs заменяет атрибуты ноды в позиции pos. Идентичность ноды сохраняется.
func (n *Node) SetNodeAttrs(pos int, attrs Attrs) (*Node, error) {
	node := n.NodeAt(pos)
	if node == nil {
		return nil, ErrNotFound
	}
	node.Attrs = attrs.Clone()
	return node, nil
}

// InsertAt вставляет ноды в позицию pos.
func (n *Node) InsertAt(pos int, nodes ...*Node) error {
	parent, index, err := n.boundary(pos)
	if err != nil {
		return err
	}
	parent.Content = slices.Insert(parent.Content, index, nodes...)
	return nil
}

// DeleteAt удаляет ноду, начинающуюся в позиции pos, и возвращает ее.
func (n *Node) DeleteAt(pos int) (*Node, error) {
	parent, index, err := n.ParentOf(pos)
	if err != nil {
		return nil, err
	}
	node := parent.Content[index]
	parent.Content = slices.Delete(parent.Content, index, index+1)
	return node, nil
}

// Unwrap заменяет ноду в позиции pos ее содержимым.
func (n *Node) Unwrap(pos int) error {
	parent, index, err := n.ParentOf(pos)
	if err != nil {
		return err
	}
	node := parent.Content[index]
	parent.Content = slices.Replace(parent.Content, index, index+1, node.Content...)
	return nil
}

// WrapRange переносит ноды диапазона [from, to) внутрь wrapper. Границы диапазона должны лежать в одном родителе.
func (n *Node) WrapRange(from, to int, wrapper *Node) error {
	if from >= to {
		return ErrPositionOutOfRange
	}
	// Разбиение текста на левой границе сдвигает индексы, поэтому правую границу ищем повторно
	if _, _, err := n.boundary(to); err != nil {
		return err
	}
	startParent, start, err := n.boundary(from)
	if err != nil {
		return err
	}
	endParent, end, err := n.boundary(to)
	if err != nil {
		return err
	}
	if startParent != endParent || end < start {
		return ErrDifferentParents
	}
	wrapper.Content = append(wrapper.Content, startParent.Content[start:end]...)
	startParent.Content = slices.Replace(startParent.Content, start, end, wrapper)
	return nil
}

// Clone делает глубокую копию ноды.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{
		Type:  n.Type,
		Attrs: n.Attrs.Clone(),
		Text:  n.Text,
	}
	for _, m := range n.Marks {
		c.Marks = append(c.Marks, Mark{Type: m.Type, Attrs: m.Attrs.Clone()})
	}
	for _, child := range n.Content {
		c.Content = append(c.Content, child.Clone())
	}
	return c
}

// Located - нода вместе с ее позицией в документе.
type Located struct {
	Node *Node
	Pos  int
}

// Ancestors возвращает цепочку нод, внутри содержимого которых лежит позиция pos, от внешней к внутренней.
func (n *Node) Ancestors(pos int) []Located {
	var res []Located
	n.Descendants(func(node *Node, p int, _ *Node) bool {
		if node.IsLeaf() {
			return false
		}
		if p < pos && pos < p+node.NodeSize() {
			res = append(res, Located{Node: node, Pos: p})
			return true
		}
		return false
	})
	return res
}
