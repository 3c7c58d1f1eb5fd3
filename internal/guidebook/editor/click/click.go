// Пакет click сопоставляет клик по кнопке редактирования (⚡) в DOM редактора с нодой документа:
// видом ноды, ее текущими атрибутами и точной позицией.
//
// DOM и документ могут расходиться, поэтому позиция ищется несколькими стратегиями по очереди,
// от быстрой прямой к полному обходу документа. Побеждает первая стратегия, давшая корректную позицию.
package click

import (
	"fmt"
	"log/slog"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor/edtypes"
	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor/schema"
)

var (
	affordanceSelector = cascadia.MustCompile("." + edtypes.ClassAffordance)
	contentSelector    = cascadia.MustCompile("[" + schema.ContentMarker + "]")
)

// DOMMapper - соответствие между DOM редактора и позициями документа.
// PosAtDOM работает по принципу "как получится" и может вернуть устаревшую позицию.
type DOMMapper interface {
	PosAtDOM(el *html.Node) (int, bool)
	NodeDOM(pos int) *html.Node
}

// ClickEvent - клик в DOM редактора.
type ClickEvent struct {
	Target *html.Node

	prevented bool
}

// PreventDefault отменяет действие клика по умолчанию.
func (e *ClickEvent) PreventDefault() {
	e.prevented = true
}

// DefaultPrevented сообщает, было ли отменено действие по умолчанию.
func (e *ClickEvent) DefaultPrevented() bool {
	return e.prevented
}

// Resolution - результат сопоставления клика.
type Resolution struct {
	Kind     edtypes.Kind  `json:"kind"`
	Attrs    edtypes.Attrs `json:"attrs"`
	Pos      int           `json:"pos"`
	Strategy string        `json:"strategy"`
}

// FindFunc ищет позицию ноды вида kind, которой принадлежит элемент candidate.
type FindFunc func(doc *edtypes.Node, mapper DOMMapper, candidate *html.Node, kind edtypes.Kind) (int, bool)

// Strategy - именованная стратегия поиска позиции.
type Strategy struct {
	Name string
	Find FindFunc
}

// Имена стратегий
const (
	StrategyDirect    = "direct"
	StrategyContent   = "content"
	StrategyTraversal = "traversal"
	StrategySequence  = "sequence"
)

// DefaultStrategies - стратегии в порядке применения.
var DefaultStrategies = []Strategy{
	{Name: StrategyDirect, Find: DirectPos},
	{Name: StrategyContent, Find: ContentPos},
	{Name: StrategyTraversal, Find: TraversalPos},
	{Name: StrategySequence, Find: SequencePos},
}

// Resolver сопоставляет клики с нодами документа. Нулевое значение использует DefaultStrategies.
type Resolver struct {
	Strategies []Strategy
}

// Resolve обрабатывает клик. Если клик пришелся на кнопку редактирования, действие по умолчанию отменяется сразу,
// даже когда ноду найти не удалось. Второе значение false означает, что клик не обработан.
// Паники внутри сопоставления перехватываются и логируются.
func (r *Resolver) Resolve(doc *edtypes.Node, mapper DOMMapper, ev *ClickEvent) (res Resolution, ok bool) {
	defer func() {
		if p := recover(); p != nil {
			slog.Error("Click resolution panic", "panic", fmt.Sprint(p))
			res, ok = Resolution{}, false
		}
	}()

	if ev == nil || ev.Target == nil || doc == nil || mapper == nil {
		return Resolution{}, false
	}

	affordance := FindAffordance(ev.Target)
	if affordance == nil {
		return Resolution{}, false
	}
	ev.PreventDefault()

	candidate := affordance.Parent
	if candidate == nil || candidate.Type != html.ElementNode {
		slog.Warn("Affordance without owner element")
		return Resolution{}, false
	}

	kind, classified := schema.Classify(candidate)
	if !classified {
		slog.Warn("Affordance owner is not an interactive node", "tag", candidate.Data)
		return Resolution{}, false
	}

	strategies := r.Strategies
	if len(strategies) == 0 {
		strategies = DefaultStrategies
	}
	for _, s := range strategies {
		pos, found := s.Find(doc, mapper, candidate, kind)
		if !found {
			slog.Debug("Click resolution strategy failed", "strategy", s.Name, "kind", kind)
			continue
		}
		return Resolution{
			Kind:     kind,
			Attrs:    schema.BuildAttributes(kind, schema.ParseAttrs(kind, candidate)),
			Pos:      pos,
			Strategy: s.Name,
		}, true
	}

	slog.Warn("Click resolution failed", "kind", kind, "id", schema.AttrValue(candidate, edtypes.AttrID))
	return Resolution{}, false
}

// FindAffordance возвращает ближайшую кнопку редактирования среди target и его предков.
func FindAffordance(target *html.Node) *html.Node {
	sel := goquery.NewDocumentFromNode(target).ClosestMatcher(affordanceSelector)
	if sel.Length() == 0 {
		return nil
	}
	return sel.Get(0)
}

// ValidPos проверяет позицию: она лежит внутри документа и на ней начинается нода вида kind.
// Позиция на шаг внутри такой ноды приводится к позиции самой ноды.
func ValidPos(doc *edtypes.Node, pos int, kind edtypes.Kind) (int, bool) {
	if pos < 0 || pos >= doc.ContentSize() {
		return 0, false
	}
	if k, ok := edtypes.KindOf(doc.NodeAt(pos)); ok && k == kind {
		return pos, true
	}
	if pos > 0 {
		if k, ok := edtypes.KindOf(doc.NodeAt(pos - 1)); ok && k == kind {
			return pos - 1, true
		}
	}
	return 0, false
}

// DirectPos берет позицию элемента у DOMMapper.
func DirectPos(doc *edtypes.Node, mapper DOMMapper, candidate *html.Node, kind edtypes.Kind) (int, bool) {
	pos, ok := mapper.PosAtDOM(candidate)
	if !ok {
		return 0, false
	}
	return ValidPos(doc, pos, kind)
}

// ContentPos берет позицию обертки содержимого элемента.
func ContentPos(doc *edtypes.Node, mapper DOMMapper, candidate *html.Node, kind edtypes.Kind) (int, bool) {
	wrapper := goquery.NewDocumentFromNode(candidate).ChildrenMatcher(contentSelector)
	if wrapper.Length() == 0 {
		return 0, false
	}
	pos, ok := mapper.PosAtDOM(wrapper.Get(0))
	if !ok {
		return 0, false
	}
	return ValidPos(doc, pos, kind)
}

// TraversalPos обходит документ и ищет ноду вида kind, чей элемент DOM совпадает с candidate.
func TraversalPos(doc *edtypes.Node, mapper DOMMapper, candidate *html.Node, kind edtypes.Kind) (int, bool) {
	res, found := 0, false
	doc.Descendants(func(n *edtypes.Node, pos int, _ *edtypes.Node) bool {
		if found {
			return false
		}
		if k, ok := edtypes.KindOf(n); ok && k == kind && mapper.NodeDOM(pos) == candidate {
			res, found = pos, true
			return false
		}
		return true
	})
	return res, found
}

// SequencePos ищет секцию последовательности по id элемента. Для элемента без id берется первая секция в документе.
func SequencePos(doc *edtypes.Node, _ DOMMapper, candidate *html.Node, kind edtypes.Kind) (int, bool) {
	if kind != edtypes.KindSequence {
		return 0, false
	}
	id := schema.AttrValue(candidate, edtypes.AttrID)
	isSequence := schema.AttrValue(candidate, edtypes.AttrTargetAction) == string(edtypes.ActionSequence)

	res, found := 0, false
	doc.Descendants(func(n *edtypes.Node, pos int, _ *edtypes.Node) bool {
		if found {
			return false
		}
		if n.Type != edtypes.NodeSequenceSection {
			return true
		}
		switch {
		case id != "":
			found = n.Attrs.Get(edtypes.AttrID) == id
		case isSequence:
			found = schema.BuildAttributes(kind, n.Attrs).Get(edtypes.AttrTargetAction) == string(edtypes.ActionSequence)
		}
		if found {
			res = pos
		}
		return true
	})
	return res, found
}
