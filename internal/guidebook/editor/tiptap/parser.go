package tiptap

import (
	"encoding/json"
	"io"
	"log/slog"

	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor/edtypes"
)

var knownNodes = map[string]bool{
	edtypes.NodeText:               true,
	edtypes.NodeParagraph:          true,
	edtypes.NodeHeading:            true,
	edtypes.NodeBulletList:         true,
	edtypes.NodeOrderedList:        true,
	edtypes.NodeListItem:           true,
	edtypes.NodeBlockquote:         true,
	edtypes.NodeCodeBlock:          true,
	edtypes.NodeHorizontalRule:     true,
	edtypes.NodeHardBreak:          true,
	edtypes.NodeInteractiveSpan:    true,
	edtypes.NodeInteractiveComment: true,
	edtypes.NodeSequenceSection:    true,
}

// ParseJSON парсит JSON контент TipTap редактора в документ edtypes.
// Неизвестные ноды пропускаются, null атрибуты отбрасываются, нестроковые атрибуты приводятся к строкам.
func ParseJSON(r io.Reader) (*edtypes.Node, error) {
	var tipTapDoc TipTapDocument
	if err := json.NewDecoder(r).Decode(&tipTapDoc); err != nil {
		return nil, err
	}

	doc := edtypes.NewDoc()
	for _, node := range tipTapDoc.Content {
		if n := parseNode(node); n != nil {
			doc.Content = append(doc.Content, n)
		}
	}
	return doc, nil
}

// parseNode парсит отдельную ноду TipTap.
func parseNode(node TipTapNode) *edtypes.Node {
	if !knownNodes[node.Type] {
		slog.Warn("Unknown node type", "type", node.Type)
		return nil
	}
	if node.Type == edtypes.NodeText && node.Text == "" {
		return nil
	}

	n := &edtypes.Node{
		Type:  node.Type,
		Attrs: parseAttrs(node.Attrs),
		Text:  node.Text,
	}
	for _, m := range node.Marks {
		n.Marks = append(n.Marks, edtypes.Mark{Type: m.Type, Attrs: parseAttrs(m.Attrs)})
	}
	for _, child := range node.Content {
		if c := parseNode(child); c != nil {
			n.Content = append(n.Content, c)
		}
	}
	return n
}

func parseAttrs(raw map[string]any) edtypes.Attrs {
	var attrs edtypes.Attrs
	for k, v := range raw {
		s, ok := stringifyAttr(v)
		if !ok {
			continue
		}
		if attrs == nil {
			attrs = edtypes.Attrs{}
		}
		attrs[k] = s
	}
	return attrs
}
