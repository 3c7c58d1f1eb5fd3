package tiptap

import (
	"encoding/json"

	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor/edtypes"
)

// Serialize сериализует документ в TipTap JSON.
func Serialize(doc *edtypes.Node) ([]byte, error) {
	return json.Marshal(ToTipTap(doc))
}

// ToTipTap преобразует документ в структуру TipTap.
func ToTipTap(doc *edtypes.Node) TipTapDocument {
	tipTapDoc := TipTapDocument{
		Type:    edtypes.NodeDoc,
		Content: make([]TipTapNode, 0, len(doc.Content)),
	}
	for _, child := range doc.Content {
		tipTapDoc.Content = append(tipTapDoc.Content, serializeNode(child))
	}
	return tipTapDoc
}

func serializeNode(n *edtypes.Node) TipTapNode {
	node := TipTapNode{
		Type:  n.Type,
		Attrs: serializeAttrs(n.Attrs),
		Text:  n.Text,
	}
	for _, m := range n.Marks {
		node.Marks = append(node.Marks, TipTapMark{Type: m.Type, Attrs: serializeAttrs(m.Attrs)})
	}
	for _, child := range n.Content {
		node.Content = append(node.Content, serializeNode(child))
	}
	return node
}

func serializeAttrs(attrs edtypes.Attrs) map[string]any {
	if len(attrs) == 0 {
		return nil
	}
	res := make(map[string]any, len(attrs))
	for k, v := range attrs {
		if v == "" {
			continue
		}
		res[k] = attrValue(k, v)
	}
	return res
}
