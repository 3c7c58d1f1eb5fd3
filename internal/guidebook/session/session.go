// Пакет session объединяет документ, DOM редактора, сопоставление кликов, состояние редактирования
// и предпросмотр в одну сессию редактора. Все операции сессии выполняются последовательно.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/gofrs/uuid"

	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor"
	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor/click"
	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor/codec"
	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor/editstate"
	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor/edtypes"
	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor/forms"
	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor/schema"
	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor/tiptap"
	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/preview"
)

var (
	ErrBadSelector = errors.New("invalid selector")
	ErrNoTarget    = errors.New("no view element matches selector")
	ErrUnknownKind = errors.New("unknown node kind")
)

// Options - параметры новой сессии.
type Options struct {
	Glyph      string
	Formatter  preview.Formatter
	Preview    []preview.Option
	Strategies []click.Strategy
}

// Session - документ с DOM редактора и состоянием редактирования.
type Session struct {
	ID uuid.UUID

	mu       sync.Mutex
	view     *editor.View
	edit     *editstate.Coordinator
	resolver click.Resolver
	preview  *preview.Boundary
}

// ClickResult - итог клика: обработан ли клик, отменено ли действие по умолчанию и открытое состояние.
type ClickResult struct {
	Handled          bool                 `json:"handled"`
	DefaultPrevented bool                 `json:"defaultPrevented"`
	Strategy         string               `json:"strategy,omitempty"`
	State            *editstate.EditState `json:"state,omitempty"`
}

// InsertRequest - вставка интерактивной ноды.
// Span и Comment оборачивают диапазон [From, To), Sequence вставляется в Pos,
// ListItem создается из блока, содержащего Pos.
type InsertRequest struct {
	Kind  edtypes.Kind  `json:"kind"`
	Pos   int           `json:"pos"`
	From  int           `json:"from"`
	To    int           `json:"to"`
	Attrs edtypes.Attrs `json:"attrs"`
}

// New создает сессию для документа и отправляет первую ревизию на предпросмотр.
func New(doc *edtypes.Node, opts Options) *Session {
	if doc == nil {
		doc = edtypes.NewDoc()
	}
	s := &Session{
		ID:       uuid.Must(uuid.NewV4()),
		view:     editor.NewView(doc, opts.Glyph),
		edit:     editstate.New(),
		resolver: click.Resolver{Strategies: opts.Strategies},
		preview:  preview.NewBoundary(opts.Formatter, opts.Preview...),
	}
	s.submitPreview()
	return s
}

// HTML возвращает разметку хранения документа.
func (s *Session) HTML() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return editor.RenderHTML(s.view.Doc())
}

// ViewHTML возвращает разметку DOM редактора.
func (s *Session) ViewHTML() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.HTML()
}

// TipTap возвращает документ в формате TipTap JSON.
func (s *Session) TipTap() tiptap.TipTapDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	return tiptap.ToTipTap(s.view.Doc())
}

// Doc возвращает копию документа.
func (s *Session) Doc() *edtypes.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.Doc().Clone()
}

// Replace заменяет документ. Открытое редактирование закрывается: его позиция относится к старому документу.
func (s *Session) Replace(doc *edtypes.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.edit.StopEdit()
	s.view.SetDoc(doc)
	s.submitPreview()
}

// Click сопоставляет клик по первому элементу DOM редактора, подходящему под selector.
// Обработанный клик открывает ноду на редактирование, вытесняя ранее открытую.
func (s *Session) Click(selector string) (ClickResult, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return ClickResult{}, fmt.Errorf("%w: %v", ErrBadSelector, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	target := goquery.NewDocumentFromNode(s.view.Root()).FindMatcher(sel)
	if target.Length() == 0 {
		return ClickResult{}, fmt.Errorf("%w: %s", ErrNoTarget, selector)
	}

	ev := &click.ClickEvent{Target: target.Get(0)}
	res, ok := s.resolver.Resolve(s.view.Doc(), s.view, ev)
	result := ClickResult{Handled: ok, DefaultPrevented: ev.DefaultPrevented()}
	if !ok {
		return result, nil
	}

	state := s.edit.StartEdit(res.Kind, res.Attrs, res.Pos)
	result.Strategy = res.Strategy
	result.State = &state
	slog.Debug("Edit started", "session", s.ID, "kind", res.Kind, "pos", res.Pos, "strategy", res.Strategy)
	return result, nil
}

// EditState возвращает состояние редактирования.
func (s *Session) EditState() (editstate.EditState, bool) {
	return s.edit.State()
}

// StopEdit закрывает редактирование без изменений документа.
func (s *Session) StopEdit() {
	s.edit.StopEdit()
}

// Apply проверяет атрибуты и применяет их к открытой ноде. После применения редактирование закрывается.
func (s *Session) Apply(attrs edtypes.Attrs) (*edtypes.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.edit.State()
	if !ok {
		return nil, editstate.ErrNotEditing
	}
	attrs = codec.Sanitize(attrs)
	if err := forms.ValidateKind(state.Kind, attrs); err != nil {
		return nil, err
	}

	node, err := schema.UpdateAttributes(s.view.Doc(), state.Pos, state.Kind, attrs)
	if err != nil {
		return nil, err
	}
	s.edit.StopEdit()
	s.changed()
	return node, nil
}

// ApplyForm собирает атрибуты из значений формы действия и применяет их к открытой ноде.
func (s *Session) ApplyForm(action edtypes.ActionType, values edtypes.UIAttrs) (*edtypes.Node, error) {
	return s.Apply(forms.BuildAttributes(action, values))
}

// Insert создает интерактивную ноду и возвращает ее позицию.
func (s *Session) Insert(req InsertRequest) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if schema.Spec(req.Kind) == nil {
		return 0, fmt.Errorf("%w: %s", ErrUnknownKind, req.Kind)
	}
	doc := s.view.Doc()
	attrs := codec.Sanitize(req.Attrs)
	if req.Kind == edtypes.KindSequence {
		attrs = schema.SequenceAttrs(doc, attrs)
	}
	// Документ меняется только после проверки атрибутов
	if err := forms.ValidateKind(req.Kind, attrs); err != nil {
		return 0, err
	}

	var (
		pos int
		err error
	)
	switch req.Kind {
	case edtypes.KindSpan:
		_, err = schema.SetSpan(doc, req.From, req.To, attrs)
		pos = req.From
	case edtypes.KindComment:
		_, err = schema.SetComment(doc, req.From, req.To, attrs)
		pos = req.From
	case edtypes.KindSequence:
		_, err = schema.InsertSequenceSection(doc, req.Pos, attrs)
		pos = req.Pos
	case edtypes.KindListItem:
		pos, err = schema.ConvertToInteractiveListItem(doc, req.Pos, attrs)
	}
	if err != nil {
		return 0, err
	}

	s.edit.StopEdit()
	s.changed()
	return pos, nil
}

// Remove снимает интерактивную ноду вида kind в позиции pos, сохраняя содержимое.
func (s *Session) Remove(pos int, kind edtypes.Kind) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := schema.Unwrap(s.view.Doc(), pos, kind); err != nil {
		return err
	}
	s.edit.StopEdit()
	s.changed()
	return nil
}

// ToggleInteractive переключает класс interactive элемента списка.
func (s *Session) ToggleInteractive(pos int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	on, err := schema.ToggleInteractiveClass(s.view.Doc(), pos)
	if err != nil {
		return false, err
	}
	s.changed()
	return on, nil
}

// Nodes возвращает интерактивные ноды документа в порядке обхода.
func (s *Session) Nodes() []NodeInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ListNodes(s.view.Doc())
}

// Preview возвращает последний результат предпросмотра.
func (s *Session) Preview() (preview.Result, bool) {
	return s.preview.Latest()
}

// PreviewBoundary возвращает форматирование предпросмотра сессии.
func (s *Session) PreviewBoundary() *preview.Boundary {
	return s.preview
}

// Close останавливает предпросмотр.
func (s *Session) Close() {
	s.edit.StopEdit()
	s.preview.Close()
}

// changed перестраивает DOM после изменения документа и отправляет новую ревизию на предпросмотр.
func (s *Session) changed() {
	s.view.Render()
	s.submitPreview()
}

func (s *Session) submitPreview() {
	s.preview.Submit(editor.RenderHTML(s.view.Doc()))
}

// NodeInfo - интерактивная нода документа.
type NodeInfo struct {
	Kind  edtypes.Kind  `json:"kind"`
	Pos   int           `json:"pos"`
	Attrs edtypes.Attrs `json:"attrs"`
	Text  string        `json:"text"`
}

// ListNodes обходит документ и возвращает интерактивные ноды.
// Элемент списка без атрибутов не считается интерактивным.
func ListNodes(doc *edtypes.Node) []NodeInfo {
	var res []NodeInfo
	doc.Descendants(func(n *edtypes.Node, pos int, _ *edtypes.Node) bool {
		kind, ok := edtypes.KindOf(n)
		if !ok || (kind == edtypes.KindListItem && len(n.Attrs) == 0) {
			return true
		}
		res = append(res, NodeInfo{
			Kind:  kind,
			Pos:   pos,
			Attrs: n.Attrs.Clone(),
			Text:  strings.TrimSpace(n.TextContent()),
		})
		return true
	})
	return res
}
