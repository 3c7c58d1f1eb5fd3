package editor

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor/edtypes"
	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor/schema"
)

// RenderHTML сериализует документ в HTML. Кнопки редактирования и обертки содержимого в результат не попадают.
func RenderHTML(doc *edtypes.Node) string {
	r := renderer{}
	var sb strings.Builder
	for _, el := range r.children(doc, -1) {
		if err := html.Render(&sb, el); err != nil {
			// strings.Builder не возвращает ошибок записи
			panic(err)
		}
	}
	return sb.String()
}

// renderer строит DOM по документу. В режиме view интерактивные ноды получают кнопку редактирования
// и обертку содержимого, а onNode получает соответствие нод документа и элементов DOM.
type renderer struct {
	view  bool
	glyph string

	onNode    func(node *edtypes.Node, pos int, el *html.Node)
	onContent func(pos int, el *html.Node)
}

// children строит DOM для содержимого ноды, начинающейся в позиции pos (для документа -1).
func (r *renderer) children(parent *edtypes.Node, pos int) []*html.Node {
	var res []*html.Node
	offset := pos + 1
	for _, child := range parent.Content {
		if el := r.node(child, offset); el != nil {
			res = append(res, el)
		}
		offset += child.NodeSize()
	}
	return res
}

func (r *renderer) node(n *edtypes.Node, pos int) *html.Node {
	var el *html.Node
	switch n.Type {
	case edtypes.NodeText:
		return wrapMarks(&html.Node{Type: html.TextNode, Data: n.Text}, n.Marks)
	case edtypes.NodeHardBreak:
		el = newElement(atom.Br)
		r.record(n, pos, el)
		return wrapMarks(el, n.Marks)
	case edtypes.NodeHorizontalRule:
		el = newElement(atom.Hr)
	case edtypes.NodeParagraph:
		el = newElement(atom.P)
	case edtypes.NodeHeading:
		el = newElement(headingAtom(n.Attrs.Get("level")))
	case edtypes.NodeBulletList:
		el = newElement(atom.Ul)
	case edtypes.NodeOrderedList:
		el = newElement(atom.Ol)
		if start := n.Attrs.Get("start"); start != "" {
			el.Attr = append(el.Attr, html.Attribute{Key: "start", Val: start})
		}
	case edtypes.NodeBlockquote:
		el = newElement(atom.Blockquote)
	case edtypes.NodeCodeBlock:
		el = newElement(atom.Pre)
		code := newElement(atom.Code)
		if lang := n.Attrs.Get("language"); lang != "" {
			code.Attr = append(code.Attr, html.Attribute{Key: "class", Val: "language-" + lang})
		}
		code.AppendChild(&html.Node{Type: html.TextNode, Data: n.TextContent()})
		el.AppendChild(code)
		r.record(n, pos, el)
		return el
	default:
		kind, ok := edtypes.KindOf(n)
		if !ok {
			// Неизвестные ноды выводятся только содержимым
			el = newElement(atom.Div)
			break
		}
		el = r.custom(kind, n, pos)
		r.record(n, pos, el)
		return wrapMarks(el, n.Marks)
	}

	for _, child := range r.children(n, pos) {
		el.AppendChild(child)
	}
	r.record(n, pos, el)
	return el
}

func (r *renderer) custom(kind edtypes.Kind, n *edtypes.Node, pos int) *html.Node {
	spec := schema.Spec(kind)
	el := newElement(spec.Tag)
	el.Attr = schema.RenderAttrs(kind, n.Attrs)

	target := el
	if r.view {
		if schema.ShowAffordance(kind, n.Attrs) {
			el.AppendChild(schema.NewAffordance(r.glyph))
		}
		target = schema.NewContentWrapper(kind)
		el.AppendChild(target)
		if r.onContent != nil {
			r.onContent(pos+1, target)
		}
	}
	for _, child := range r.children(n, pos) {
		target.AppendChild(child)
	}
	return el
}

func (r *renderer) record(n *edtypes.Node, pos int, el *html.Node) {
	if r.onNode != nil {
		r.onNode(n, pos, el)
	}
}

// wrapMarks оборачивает ноду DOM в элементы марок, первая марка становится внешним элементом.
func wrapMarks(inner *html.Node, marks []edtypes.Mark) *html.Node {
	res := inner
	for i := len(marks) - 1; i >= 0; i-- {
		var wrapper *html.Node
		switch marks[i].Type {
		case edtypes.MarkBold:
			wrapper = newElement(atom.Strong)
		case edtypes.MarkItalic:
			wrapper = newElement(atom.Em)
		case edtypes.MarkStrike:
			wrapper = newElement(atom.S)
		case edtypes.MarkCode:
			wrapper = newElement(atom.Code)
		case edtypes.MarkLink:
			wrapper = newElement(atom.A)
			for _, key := range []string{"href", "target"} {
				if v := marks[i].Attrs.Get(key); v != "" {
					wrapper.Attr = append(wrapper.Attr, html.Attribute{Key: key, Val: v})
				}
			}
		default:
			continue
		}
		wrapper.AppendChild(res)
		res = wrapper
	}
	return res
}

func headingAtom(level string) atom.Atom {
	l, err := strconv.Atoi(level)
	if err != nil || l < 1 || l > 6 {
		l = 1
	}
	return []atom.Atom{atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6}[l-1]
}

func newElement(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: a.String(), DataAtom: a}
}
