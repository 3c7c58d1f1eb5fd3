// Пакет предоставляет разбор HTML документа с интерактивной разметкой в дерево нод редактора и обратную сериализацию.
//
// Основные возможности:
//   - Парсинг HTML из io.Reader в дерево edtypes.Node (параграфы, заголовки, списки, цитаты, код и интерактивные ноды).
//   - Сериализация дерева обратно в HTML без кнопок редактирования.
//   - DOM редактора (View) с кнопками редактирования и соответствием между элементами DOM и позициями документа.
//
// Кнопки редактирования и обертки содержимого при разборе игнорируются, поэтому DOM редактора разбирается
// в тот же документ, что и сериализованный HTML.
package editor

import (
	"io"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor/edtypes"
	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor/schema"
)

// ParseHTML разбирает HTML документ или фрагмент в документ редактора.
func ParseHTML(r io.Reader) (*edtypes.Node, error) {
	rootNode, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	body := getBody(rootNode)
	if body == nil {
		return edtypes.NewDoc(), nil
	}
	return edtypes.NewDoc(parseBlocks(contentChildren(body))...), nil
}

// ParseHTMLString разбирает HTML из строки.
func ParseHTMLString(src string) (*edtypes.Node, error) {
	return ParseHTML(strings.NewReader(src))
}

// contentChildren возвращает дочерние ноды элемента без кнопок редактирования, раскрывая обертки содержимого.
func contentChildren(el *html.Node) []*html.Node {
	var res []*html.Node
	for child := el.FirstChild; child != nil; child = child.NextSibling {
		switch {
		case schema.IsAffordance(child):
		case schema.IsContentWrapper(child):
			res = append(res, contentChildren(child)...)
		case child.Type == html.TextNode, child.Type == html.ElementNode:
			res = append(res, child)
		}
	}
	return res
}

func parseBlocks(children []*html.Node) []*edtypes.Node {
	var (
		blocks []*edtypes.Node
		inline []*html.Node
	)
	flush := func() {
		if content := parseInline(inline, nil); len(content) > 0 {
			blocks = append(blocks, &edtypes.Node{Type: edtypes.NodeParagraph, Content: content})
		}
		inline = nil
	}

	for _, el := range children {
		if !isBlock(el) {
			if el.Type == html.TextNode && isBlank(el.Data) && len(inline) == 0 {
				continue
			}
			inline = append(inline, el)
			continue
		}
		flush()
		if b := parseBlock(el); b != nil {
			blocks = append(blocks, b)
		} else {
			// div, таблицы и прочие контейнеры раскрываются
			blocks = append(blocks, parseBlocks(contentChildren(el))...)
		}
	}
	flush()
	return blocks
}

func parseBlock(el *html.Node) *edtypes.Node {
	switch el.DataAtom {
	case atom.P:
		return &edtypes.Node{Type: edtypes.NodeParagraph, Content: parseInline(contentChildren(el), nil)}
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		return &edtypes.Node{
			Type:    edtypes.NodeHeading,
			Attrs:   edtypes.Attrs{"level": el.Data[1:]},
			Content: parseInline(contentChildren(el), nil),
		}
	case atom.Ul, atom.Ol:
		return parseList(el)
	case atom.Li:
		return &edtypes.Node{Type: edtypes.NodeBulletList, Content: []*edtypes.Node{parseListItem(el)}}
	case atom.Blockquote:
		return &edtypes.Node{Type: edtypes.NodeBlockquote, Content: parseBlocks(contentChildren(el))}
	case atom.Pre:
		return parseCode(el)
	case atom.Hr:
		return &edtypes.Node{Type: edtypes.NodeHorizontalRule}
	case atom.Span:
		if kind, ok := schema.Classify(el); ok && kind == edtypes.KindSequence {
			return &edtypes.Node{
				Type:    edtypes.NodeSequenceSection,
				Attrs:   schema.ParseAttrs(kind, el),
				Content: parseBlocks(contentChildren(el)),
			}
		}
	}
	return nil
}

func parseList(root *html.Node) *edtypes.Node {
	list := &edtypes.Node{Type: edtypes.NodeBulletList}
	if root.DataAtom == atom.Ol {
		list.Type = edtypes.NodeOrderedList
		if start := getAttrValue("start", root.Attr); start != "" {
			list.Attrs = edtypes.Attrs{"start": start}
		}
	}
	for _, li := range contentChildren(root) {
		if li.Type != html.ElementNode || li.DataAtom != atom.Li {
			continue
		}
		list.Content = append(list.Content, parseListItem(li))
	}
	return list
}

// parseListItem сохраняет строчное содержимое элемента списка без обертки в параграф.
// Строчный текст перед первым блоком (подпись шага перед вложенным списком) тоже остается строчным.
func parseListItem(li *html.Node) *edtypes.Node {
	item := &edtypes.Node{Type: edtypes.NodeListItem}
	if attrs := schema.ParseAttrs(edtypes.KindListItem, li); len(attrs) > 0 {
		item.Attrs = attrs
	}
	children := contentChildren(li)
	first := slices.IndexFunc(children, isBlock)
	if first < 0 {
		item.Content = parseInline(children, nil)
		return item
	}
	if lead := children[:first]; !allBlank(lead) {
		item.Content = parseInline(lead, nil)
	}
	item.Content = append(item.Content, parseBlocks(children[first:])...)
	return item
}

func allBlank(nodes []*html.Node) bool {
	for _, n := range nodes {
		if n.Type != html.TextNode || !isBlank(n.Data) {
			return false
		}
	}
	return true
}

func parseCode(root *html.Node) *edtypes.Node {
	code := &edtypes.Node{Type: edtypes.NodeCodeBlock}
	var text string
	iterNodes(root, func(child *html.Node) bool {
		if child.Type == html.ElementNode && child.DataAtom == atom.Code {
			for _, class := range strings.Fields(getAttrValue("class", child.Attr)) {
				if lang, ok := strings.CutPrefix(class, "language-"); ok {
					code.Attrs = edtypes.Attrs{"language": lang}
				}
			}
		}
		if child.Type != html.TextNode {
			return false
		}
		text += child.Data
		return false
	})
	if text != "" {
		code.Content = []*edtypes.Node{edtypes.NewText(text)}
	}
	return code
}

func parseInline(children []*html.Node, marks []edtypes.Mark) []*edtypes.Node {
	var res []*edtypes.Node
	for _, el := range children {
		if el.Type == html.TextNode {
			if el.Data != "" {
				res = append(res, edtypes.NewText(el.Data, marks...))
			}
			continue
		}

		if kind, ok := schema.Classify(el); ok && (kind == edtypes.KindSpan || kind == edtypes.KindComment) {
			res = append(res, &edtypes.Node{
				Type:    kind.NodeType(),
				Attrs:   schema.ParseAttrs(kind, el),
				Content: parseInline(contentChildren(el), nil),
				Marks:   cloneMarks(marks),
			})
			continue
		}

		switch el.DataAtom {
		case atom.Br:
			res = append(res, &edtypes.Node{Type: edtypes.NodeHardBreak, Marks: cloneMarks(marks)})
			continue
		case atom.Strong, atom.B:
			res = append(res, parseInline(contentChildren(el), withMark(marks, edtypes.Mark{Type: edtypes.MarkBold}))...)
			continue
		case atom.Em, atom.I:
			res = append(res, parseInline(contentChildren(el), withMark(marks, edtypes.Mark{Type: edtypes.MarkItalic}))...)
			continue
		case atom.S, atom.Del, atom.Strike:
			res = append(res, parseInline(contentChildren(el), withMark(marks, edtypes.Mark{Type: edtypes.MarkStrike}))...)
			continue
		case atom.Code:
			res = append(res, parseInline(contentChildren(el), withMark(marks, edtypes.Mark{Type: edtypes.MarkCode}))...)
			continue
		case atom.A:
			link := edtypes.Mark{Type: edtypes.MarkLink, Attrs: edtypes.Attrs{}}
			link.Attrs.Set("href", getAttrValue("href", el.Attr))
			link.Attrs.Set("target", getAttrValue("target", el.Attr))
			res = append(res, parseInline(contentChildren(el), withMark(marks, link))...)
			continue
		}

		// Неизвестные строчные элементы раскрываются
		res = append(res, parseInline(contentChildren(el), marks)...)
	}
	return mergeText(res)
}

func withMark(marks []edtypes.Mark, m edtypes.Mark) []edtypes.Mark {
	res := cloneMarks(marks)
	for _, existing := range res {
		if existing.Type == m.Type {
			return res
		}
	}
	return append(res, m)
}

func cloneMarks(marks []edtypes.Mark) []edtypes.Mark {
	if len(marks) == 0 {
		return nil
	}
	res := make([]edtypes.Mark, len(marks))
	for i, m := range marks {
		res[i] = edtypes.Mark{Type: m.Type, Attrs: m.Attrs.Clone()}
	}
	return res
}

// mergeText склеивает соседние текстовые ноды с одинаковыми марками.
func mergeText(nodes []*edtypes.Node) []*edtypes.Node {
	var res []*edtypes.Node
	for _, n := range nodes {
		if last := len(res) - 1; last >= 0 && n.IsText() && res[last].IsText() && sameMarks(res[last].Marks, n.Marks) {
			res[last] = edtypes.NewText(res[last].Text+n.Text, res[last].Marks...)
			continue
		}
		res = append(res, n)
	}
	return res
}

func sameMarks(a, b []edtypes.Mark) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Type != b[i].Type || !a[i].Attrs.Equal(b[i].Attrs) {
			return false
		}
	}
	return true
}

func isBlock(el *html.Node) bool {
	if el.Type != html.ElementNode {
		return false
	}
	switch el.DataAtom {
	case atom.P, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.Ul, atom.Ol, atom.Li, atom.Blockquote, atom.Pre, atom.Hr, atom.Div, atom.Table:
		return true
	case atom.Span:
		kind, _ := schema.Classify(el)
		return kind == edtypes.KindSequence
	}
	return false
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func findElementByTagName(rootNode *html.Node, tag atom.Atom) *html.Node {
	var el *html.Node
	iterNodes(rootNode, func(child *html.Node) bool {
		if el != nil {
			return true
		}
		if child.Type == html.ElementNode && child.DataAtom == tag {
			el = child
			return true
		}
		return false
	})
	return el
}

func getBody(rootNode *html.Node) *html.Node {
	return findElementByTagName(rootNode, atom.Body)
}

func iterNodes(node *html.Node, f func(child *html.Node) bool) {
	if f(node) {
		return
	}
	for p := node.FirstChild; p != nil; p = p.NextSibling {
		iterNodes(p, f)
	}
}

func getAttrValue(key string, attrs []html.Attribute) string {
	for _, attr := range attrs {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
