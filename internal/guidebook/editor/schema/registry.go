// Пакет schema описывает четыре интерактивных вида нод: набор атрибутов и значения по умолчанию,
// распознавание HTML элементов с приоритетом, правила рендера атрибутов, кнопку редактирования (⚡)
// и построители атрибутов для каждого вида.
//
// Реестр хранит любые переданные строки, проверка значений выполняется формами редактирования.
package schema

import (
	"errors"
	"fmt"
	"slices"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor/edtypes"
)

// DefaultAffordanceGlyph - символ кнопки редактирования интерактивной ноды.
const DefaultAffordanceGlyph = "⚡"

// ContentMarker - атрибут обертки содержимого ноды в DOM редактора.
const ContentMarker = "data-node-content"

var ErrKindMismatch = errors.New("node kind mismatch")

// AttrSpec - описание одного атрибута вида ноды.
type AttrSpec struct {
	Key     string
	Default string
	// AlwaysRender - атрибут рендерится всегда, при отсутствии значения подставляется Default.
	AlwaysRender bool
}

// NodeSpec - описание вида ноды.
type NodeSpec struct {
	Kind       edtypes.Kind
	Tag        atom.Atom
	Attributes []AttrSpec

	// ContentTag и ContentStyle задают обертку содержимого в DOM редактора.
	ContentTag   atom.Atom
	ContentStyle string
}

var specs = map[edtypes.Kind]*NodeSpec{
	edtypes.KindListItem: {
		Kind: edtypes.KindListItem,
		Tag:  atom.Li,
		Attributes: []AttrSpec{
			{Key: edtypes.AttrClass},
			{Key: edtypes.AttrTargetAction},
			{Key: edtypes.AttrRefTarget},
			{Key: edtypes.AttrRequirements},
			{Key: edtypes.AttrDoIt},
			{Key: edtypes.AttrID},
		},
		ContentTag:   atom.Div,
		ContentStyle: "display: contents",
	},
	edtypes.KindSpan: {
		Kind: edtypes.KindSpan,
		Tag:  atom.Span,
		Attributes: []AttrSpec{
			{Key: edtypes.AttrClass, Default: edtypes.ClassInteractive, AlwaysRender: true},
			{Key: edtypes.AttrID},
			{Key: edtypes.AttrTargetAction},
			{Key: edtypes.AttrRefTarget},
			{Key: edtypes.AttrRequirements},
		},
		ContentTag: atom.Span,
	},
	edtypes.KindComment: {
		Kind: edtypes.KindComment,
		Tag:  atom.Span,
		Attributes: []AttrSpec{
			{Key: edtypes.AttrClass, Default: edtypes.ClassComment, AlwaysRender: true},
		},
		ContentTag: atom.Span,
	},
	edtypes.KindSequence: {
		Kind: edtypes.KindSequence,
		Tag:  atom.Span,
		Attributes: []AttrSpec{
			{Key: edtypes.AttrID},
			{Key: edtypes.AttrClass, Default: edtypes.ClassInteractive, AlwaysRender: true},
			{Key: edtypes.AttrTargetAction, Default: string(edtypes.ActionSequence), AlwaysRender: true},
			{Key: edtypes.AttrRefTarget},
			{Key: edtypes.AttrRequirements},
		},
		ContentTag:   atom.Div,
		ContentStyle: "display: contents",
	},
}

// Spec возвращает описание вида. Для KindNone возвращает nil.
func Spec(kind edtypes.Kind) *NodeSpec {
	return specs[kind]
}

// AttrKeys возвращает ключи атрибутов вида в порядке рендера.
func (s *NodeSpec) AttrKeys() []string {
	keys := make([]string, len(s.Attributes))
	for i, a := range s.Attributes {
		keys[i] = a.Key
	}
	return keys
}

// Classify определяет вид интерактивной ноды для HTML элемента.
// Порядок проверки: секция последовательности, комментарий, интерактивный span, элемент списка.
// Порядок атрибутов в элементе значения не имеет.
func Classify(el *html.Node) (edtypes.Kind, bool) {
	if el == nil || el.Type != html.ElementNode {
		return edtypes.KindNone, false
	}
	switch el.DataAtom {
	case atom.Span:
		if attrValue(edtypes.AttrTargetAction, el.Attr) == string(edtypes.ActionSequence) {
			return edtypes.KindSequence, true
		}
		class := attrValue(edtypes.AttrClass, el.Attr)
		if edtypes.HasClass(class, edtypes.ClassComment) {
			return edtypes.KindComment, true
		}
		if edtypes.HasClass(class, edtypes.ClassInteractive) {
			return edtypes.KindSpan, true
		}
	case atom.Li:
		return edtypes.KindListItem, true
	}
	return edtypes.KindNone, false
}

// ParseAttrs читает атрибуты вида из HTML элемента. Отсутствующие значения заменяются значениями по умолчанию,
// атрибуты вне схемы вида отбрасываются.
func ParseAttrs(kind edtypes.Kind, el *html.Node) edtypes.Attrs {
	spec := Spec(kind)
	attrs := edtypes.Attrs{}
	if spec == nil || el == nil {
		return attrs
	}
	for _, a := range spec.Attributes {
		val := attrValue(a.Key, el.Attr)
		if val == "" {
			val = a.Default
		}
		attrs.Set(a.Key, val)
	}
	return attrs
}

// RenderAttrs возвращает HTML атрибуты ноды вида kind. Пустые значения не выводятся,
// атрибуты с AlwaysRender выводятся со значением по умолчанию.
func RenderAttrs(kind edtypes.Kind, attrs edtypes.Attrs) []html.Attribute {
	spec := Spec(kind)
	if spec == nil {
		return nil
	}
	var res []html.Attribute
	for _, a := range spec.Attributes {
		val := attrs.Get(a.Key)
		if val == "" && a.AlwaysRender {
			val = a.Default
		}
		if val == "" {
			continue
		}
		res = append(res, html.Attribute{Key: a.Key, Val: val})
	}
	return res
}

// BuildAttributes оставляет только атрибуты, допустимые для вида, и применяет значения по умолчанию.
// Комментарий никогда не получает атрибутов действия.
func BuildAttributes(kind edtypes.Kind, attrs edtypes.Attrs) edtypes.Attrs {
	res := edtypes.Attrs{}
	switch kind {
	case edtypes.KindListItem:
		for _, key := range []string{edtypes.AttrClass, edtypes.AttrTargetAction, edtypes.AttrRefTarget, edtypes.AttrRequirements, edtypes.AttrDoIt, edtypes.AttrID} {
			res.Set(key, attrs.Get(key))
		}
	case edtypes.KindSpan, edtypes.KindSequence:
		for _, key := range []string{edtypes.AttrClass, edtypes.AttrID, edtypes.AttrTargetAction, edtypes.AttrRefTarget, edtypes.AttrRequirements} {
			res.Set(key, attrs.Get(key))
		}
	case edtypes.KindComment:
		res.Set(edtypes.AttrClass, attrs.Get(edtypes.AttrClass))
	default:
		return res
	}
	for _, a := range Spec(kind).Attributes {
		if !res.Has(a.Key) {
			res.Set(a.Key, a.Default)
		}
	}
	return res
}

// ShowAffordance сообщает, нужна ли ноде кнопка редактирования.
// Элемент списка получает кнопку только с классом interactive.
func ShowAffordance(kind edtypes.Kind, attrs edtypes.Attrs) bool {
	switch kind {
	case edtypes.KindSpan, edtypes.KindComment, edtypes.KindSequence:
		return true
	case edtypes.KindListItem:
		return edtypes.HasClass(attrs.Get(edtypes.AttrClass), edtypes.ClassInteractive)
	}
	return false
}

// NewAffordance создает элемент кнопки редактирования.
func NewAffordance(glyph string) *html.Node {
	if glyph == "" {
		glyph = DefaultAffordanceGlyph
	}
	el := &html.Node{
		Type:     html.ElementNode,
		Data:     atom.Span.String(),
		DataAtom: atom.Span,
		Attr: []html.Attribute{
			{Key: edtypes.AttrClass, Val: edtypes.ClassAffordance},
			{Key: "contenteditable", Val: "false"},
		},
	}
	el.AppendChild(&html.Node{Type: html.TextNode, Data: glyph})
	return el
}

// IsAffordance проверяет, является ли элемент кнопкой редактирования.
func IsAffordance(el *html.Node) bool {
	return el != nil && el.Type == html.ElementNode &&
		edtypes.HasClass(attrValue(edtypes.AttrClass, el.Attr), edtypes.ClassAffordance)
}

// NewContentWrapper создает обертку содержимого ноды вида kind для DOM редактора.
func NewContentWrapper(kind edtypes.Kind) *html.Node {
	spec := Spec(kind)
	if spec == nil {
		return nil
	}
	el := &html.Node{
		Type:     html.ElementNode,
		Data:     spec.ContentTag.String(),
		DataAtom: spec.ContentTag,
		Attr:     []html.Attribute{{Key: ContentMarker, Val: ""}},
	}
	if spec.ContentStyle != "" {
		el.Attr = append(el.Attr, html.Attribute{Key: "style", Val: spec.ContentStyle})
	}
	return el
}

// IsContentWrapper проверяет наличие маркера обертки содержимого.
func IsContentWrapper(el *html.Node) bool {
	return el != nil && el.Type == html.ElementNode &&
		slices.ContainsFunc(el.Attr, func(a html.Attribute) bool { return a.Key == ContentMarker })
}

// Create создает ноду вида kind с атрибутами, прошедшими через построитель вида.
func Create(kind edtypes.Kind, attrs edtypes.Attrs, content ...*edtypes.Node) (*edtypes.Node, error) {
	if Spec(kind) == nil {
		return nil, fmt.Errorf("create %s: %w", kind, ErrKindMismatch)
	}
	return &edtypes.Node{
		Type:    kind.NodeType(),
		Attrs:   BuildAttributes(kind, attrs),
		Content: content,
	}, nil
}

// UpdateAttributes заменяет атрибуты ноды вида kind в позиции pos.
func UpdateAttributes(doc *edtypes.Node, pos int, kind edtypes.Kind, attrs edtypes.Attrs) (*edtypes.Node, error) {
	node := doc.NodeAt(pos)
	if node == nil {
		return nil, fmt.Errorf("update attributes at %d: %w", pos, edtypes.ErrNotFound)
	}
	if k, _ := edtypes.KindOf(node); k != kind {
		return nil, fmt.Errorf("update attributes at %d: %w: want %s, got %s", pos, ErrKindMismatch, kind, node.Type)
	}
	return doc.SetNodeAttrs(pos, BuildAttributes(kind, attrs))
}

func attrValue(key string, attrs []html.Attribute) string {
	for _, attr := range attrs {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// AttrValue возвращает значение HTML атрибута или пустую строку.
func AttrValue(el *html.Node, key string) string {
	if el == nil {
		return ""
	}
	return attrValue(key, el.Attr)
}
