package editor

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor/edtypes"
	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor/schema"
)

// ViewRootClass - класс корневого элемента DOM редактора.
const ViewRootClass = "guidebook-editor"

// View - DOM редактора для документа: интерактивные ноды с кнопками редактирования и обертками содержимого.
//
// NodeDOM ищет элемент по идентичности ноды и остается корректным после изменений документа.
// PosAtDOM отдает позиции, запомненные при последнем Render, и после изменения документа без Render может ошибаться.
type View struct {
	doc   *edtypes.Node
	glyph string
	root  *html.Node

	byNode  map[*edtypes.Node]*html.Node
	posByEl map[*html.Node]int
}

// NewView строит DOM редактора для документа. Пустой glyph заменяется символом по умолчанию.
func NewView(doc *edtypes.Node, glyph string) *View {
	if glyph == "" {
		glyph = schema.DefaultAffordanceGlyph
	}
	v := &View{doc: doc, glyph: glyph}
	v.Render()
	return v
}

// Render перестраивает DOM по текущему состоянию документа.
func (v *View) Render() {
	v.byNode = make(map[*edtypes.Node]*html.Node)
	v.posByEl = make(map[*html.Node]int)
	v.root = newElement(atom.Div)
	v.root.Attr = []html.Attribute{
		{Key: "class", Val: ViewRootClass},
		{Key: "contenteditable", Val: "true"},
	}

	r := renderer{
		view:  true,
		glyph: v.glyph,
		onNode: func(node *edtypes.Node, pos int, el *html.Node) {
			v.byNode[node] = el
			v.posByEl[el] = pos
		},
		onContent: func(pos int, el *html.Node) {
			v.posByEl[el] = pos
		},
	}
	for _, el := range r.children(v.doc, -1) {
		v.root.AppendChild(el)
	}
}

// SetDoc заменяет документ и перестраивает DOM.
func (v *View) SetDoc(doc *edtypes.Node) {
	v.doc = doc
	v.Render()
}

// Doc возвращает документ представления.
func (v *View) Doc() *edtypes.Node {
	return v.doc
}

// Root возвращает корневой элемент DOM редактора.
func (v *View) Root() *html.Node {
	return v.root
}

// PosAtDOM возвращает позицию документа для элемента DOM. Для обертки содержимого возвращается
// позиция начала содержимого ноды.
func (v *View) PosAtDOM(el *html.Node) (int, bool) {
	pos, ok := v.posByEl[el]
	return pos, ok
}

// NodeDOM возвращает элемент DOM ноды, начинающейся в позиции pos.
func (v *View) NodeDOM(pos int) *html.Node {
	node := v.doc.NodeAt(pos)
	if node == nil {
		return nil
	}
	return v.byNode[node]
}

// HTML возвращает разметку содержимого DOM редактора.
func (v *View) HTML() string {
	var sb strings.Builder
	for el := v.root.FirstChild; el != nil; el = el.NextSibling {
		if err := html.Render(&sb, el); err != nil {
			panic(err)
		}
	}
	return sb.String()
}
