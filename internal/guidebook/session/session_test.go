package session

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor"
	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor/click"
	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor/editstate"
	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor/edtypes"
	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor/forms"
)

// ul(0..14) p(14..28), span в позиции 20
const sample = `<ul><li class="interactive" data-targetaction="button" data-reftarget="Save">Click Save</li></ul>` +
	`<p>Text <span class="interactive" data-targetaction="highlight" data-reftarget=".panel">panel</span></p>`

func newSession(t *testing.T) *Session {
	t.Helper()
	doc, err := editor.ParseHTMLString(sample)
	require.NoError(t, err)
	s := New(doc, Options{})
	t.Cleanup(s.Close)
	return s
}

func TestClick(t *testing.T) {
	s := newSession(t)

	res, err := s.Click("li > .interactive-lightning")
	require.NoError(t, err)
	assert.True(t, res.Handled)
	assert.True(t, res.DefaultPrevented)
	assert.Equal(t, click.StrategyDirect, res.Strategy)
	require.NotNil(t, res.State)
	assert.Equal(t, edtypes.KindListItem, res.State.Kind)
	assert.Equal(t, 1, res.State.Pos)

	res, err = s.Click("p .interactive-lightning")
	require.NoError(t, err)
	require.True(t, res.Handled)

	// второй клик вытесняет первый
	state, ok := s.EditState()
	require.True(t, ok)
	assert.Equal(t, edtypes.KindSpan, state.Kind)
	assert.Equal(t, 20, state.Pos)
	assert.Equal(t, ".panel", state.Attrs.Get(edtypes.AttrRefTarget))
	assert.Equal(t, editstate.SurfaceAction, state.Surface())
}

func TestClickOutsideAffordance(t *testing.T) {
	s := newSession(t)

	res, err := s.Click("p")
	require.NoError(t, err)
	assert.False(t, res.Handled)
	assert.False(t, res.DefaultPrevented)
	_, ok := s.EditState()
	assert.False(t, ok)

	_, err = s.Click("div[[")
	assert.ErrorIs(t, err, ErrBadSelector)

	_, err = s.Click("table")
	assert.ErrorIs(t, err, ErrNoTarget)
}

func TestApply(t *testing.T) {
	s := newSession(t)

	_, err := s.Apply(edtypes.Attrs{edtypes.AttrRefTarget: "Cancel"})
	assert.ErrorIs(t, err, editstate.ErrNotEditing)

	_, err = s.Click("li > .interactive-lightning")
	require.NoError(t, err)

	_, err = s.ApplyForm(edtypes.ActionButton, edtypes.UIAttrs{RefTarget: "  "})
	var ve *forms.ValidationError
	require.True(t, errors.As(err, &ve))
	_, ok := s.EditState()
	assert.True(t, ok, "failed validation keeps the form open")

	node, err := s.ApplyForm(edtypes.ActionButton, edtypes.UIAttrs{RefTarget: "Cancel"})
	require.NoError(t, err)
	assert.Equal(t, "Cancel", node.Attrs.Get(edtypes.AttrRefTarget))
	assert.Contains(t, s.HTML(), `data-reftarget="Cancel"`)

	_, ok = s.EditState()
	assert.False(t, ok, "apply closes the form")

	assert.Eventually(t, func() bool {
		res, ok := s.Preview()
		return ok && strings.Contains(res.HTML, `data-reftarget="Cancel"`)
	}, time.Second, 5*time.Millisecond)
}

func TestApplyStalePosition(t *testing.T) {
	s := newSession(t)

	_, err := s.Click("p .interactive-lightning")
	require.NoError(t, err)

	// удаление списка сдвигает span, открытая позиция больше не указывает на него
	doc := s.view.Doc()
	_, err = doc.DeleteAt(0)
	require.NoError(t, err)

	_, err = s.Apply(edtypes.Attrs{edtypes.AttrTargetAction: "highlight", edtypes.AttrRefTarget: ".other"})
	assert.Error(t, err)
}

func TestInsert(t *testing.T) {
	s := newSession(t)

	pos, err := s.Insert(InsertRequest{
		Kind:  edtypes.KindSpan,
		From:  15,
		To:    19,
		Attrs: edtypes.Attrs{edtypes.AttrTargetAction: "button", edtypes.AttrRefTarget: "Go"},
	})
	require.NoError(t, err)
	assert.Equal(t, 15, pos)
	assert.Contains(t, s.HTML(), `<span class="interactive" data-targetaction="button" data-reftarget="Go">Text</span>`)

	_, err = s.Insert(InsertRequest{Kind: edtypes.KindSpan, From: 15, To: 19})
	assert.Error(t, err, "span without action")

	size := s.Doc().ContentSize()
	_, err = s.Insert(InsertRequest{Kind: edtypes.KindSequence, Pos: size, Attrs: edtypes.Attrs{edtypes.AttrID: "1st"}})
	assert.Error(t, err)
	assert.Equal(t, size, s.Doc().ContentSize(), "invalid section is not kept")

	pos, err = s.Insert(InsertRequest{Kind: edtypes.KindSequence, Pos: size, Attrs: edtypes.Attrs{edtypes.AttrID: "intro"}})
	require.NoError(t, err)
	assert.Equal(t, size, pos)
	assert.Contains(t, s.HTML(), `data-reftarget="span#intro"`)

	_, err = s.Insert(InsertRequest{Kind: edtypes.KindNone})
	assert.ErrorIs(t, err, ErrUnknownKind)
}

// kindsAfterReparse разбирает сериализованный документ сессии заново и возвращает виды интерактивных нод.
func kindsAfterReparse(t *testing.T, s *Session) []edtypes.Kind {
	t.Helper()
	doc, err := editor.ParseHTMLString(s.HTML())
	require.NoError(t, err)
	var kinds []edtypes.Kind
	for _, n := range ListNodes(doc) {
		kinds = append(kinds, n.Kind)
	}
	return kinds
}

func TestApplyKeepsKind(t *testing.T) {
	const comment = `<p>Text <span class="interactive-comment">note</span></p>`

	tests := []struct {
		name  string
		src   string
		attrs edtypes.Attrs
		field string
		want  []edtypes.Kind
	}{
		{
			"span with sequence action", sample,
			edtypes.Attrs{"data-targetaction": "sequence", "id": "s1"},
			"data-targetaction", nil,
		},
		{
			"span with comment class", sample,
			edtypes.Attrs{"class": "interactive-comment", "data-targetaction": "button", "data-reftarget": "Save"},
			"class", nil,
		},
		{
			"span without interactive class", sample,
			edtypes.Attrs{"class": "foo", "data-targetaction": "button", "data-reftarget": "Save"},
			"class", nil,
		},
		{
			"comment with span class", comment,
			edtypes.Attrs{"class": "interactive"},
			"class", nil,
		},
		{
			"span with extra class", sample,
			edtypes.Attrs{"class": "interactive wide", "data-targetaction": "button", "data-reftarget": "Save"},
			"", []edtypes.Kind{edtypes.KindListItem, edtypes.KindSpan},
		},
		{
			"comment with extra class", comment,
			edtypes.Attrs{"class": "interactive-comment note"},
			"", []edtypes.Kind{edtypes.KindComment},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := editor.ParseHTMLString(tt.src)
			require.NoError(t, err)
			s := New(doc, Options{})
			t.Cleanup(s.Close)
			before := s.HTML()
			kinds := kindsAfterReparse(t, s)

			res, err := s.Click("p .interactive-lightning")
			require.NoError(t, err)
			require.True(t, res.Handled)

			_, err = s.Apply(tt.attrs)
			if tt.field == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.want, kindsAfterReparse(t, s))
				return
			}

			var ve *forms.ValidationError
			require.True(t, errors.As(err, &ve), "want validation error, got %v", err)
			var fields []string
			for _, f := range ve.Fields {
				fields = append(fields, f.Field)
			}
			assert.Contains(t, fields, tt.field)
			assert.Equal(t, before, s.HTML(), "document is not changed")
			assert.Equal(t, kinds, kindsAfterReparse(t, s))
		})
	}
}

func TestApplyStoresSanitizedValues(t *testing.T) {
	s := newSession(t)
	_, err := s.Click("p .interactive-lightning")
	require.NoError(t, err)

	node, err := s.Apply(edtypes.Attrs{"data-targetaction": "navigate", "data-reftarget": "  /dash", "data-requirements": " on-page:/dash "})
	require.NoError(t, err)
	assert.Equal(t, "/dash", node.Attrs.Get(edtypes.AttrRefTarget))
	assert.Equal(t, "on-page:/dash", node.Attrs.Get(edtypes.AttrRequirements))
	assert.Contains(t, s.HTML(), `data-reftarget="/dash" data-requirements="on-page:/dash"`)
}

func TestApplyDoItOnlyForHighlight(t *testing.T) {
	s := newSession(t)
	_, err := s.Click("li > .interactive-lightning")
	require.NoError(t, err)

	_, err = s.Apply(edtypes.Attrs{"class": "interactive", "data-targetaction": "button", "data-reftarget": "Save", "data-doit": "false"})
	var ve *forms.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "data-doit", ve.Fields[0].Field)
	assert.NotContains(t, s.HTML(), "data-doit")

	_, err = s.Apply(edtypes.Attrs{"class": "interactive", "data-targetaction": "highlight", "data-reftarget": ".save", "data-doit": "false"})
	require.NoError(t, err)
	assert.Contains(t, s.HTML(), `data-doit="false"`)
}

func TestInsertRefusedKeepsDocument(t *testing.T) {
	s := newSession(t)
	before := s.HTML()

	// секция внутри текста параграфа
	_, err := s.Insert(InsertRequest{Kind: edtypes.KindSequence, Pos: 16, Attrs: edtypes.Attrs{edtypes.AttrID: "inline"}})
	assert.ErrorIs(t, err, edtypes.ErrNotBoundary)
	assert.Equal(t, before, s.HTML())

	// span через границу списка и параграфа
	_, err = s.Insert(InsertRequest{Kind: edtypes.KindSpan, From: 5, To: 18, Attrs: edtypes.Attrs{"data-targetaction": "button", "data-reftarget": "Go"}})
	assert.Error(t, err)
	assert.Equal(t, before, s.HTML())

	// комментарий с чужим классом
	_, err = s.Insert(InsertRequest{Kind: edtypes.KindComment, From: 15, To: 19, Attrs: edtypes.Attrs{"class": "interactive"}})
	var ve *forms.ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Equal(t, before, s.HTML())

	pos, err := s.Insert(InsertRequest{Kind: edtypes.KindSequence, Pos: 14, Attrs: edtypes.Attrs{edtypes.AttrID: " intro "}})
	require.NoError(t, err)
	assert.Equal(t, 14, pos)
	assert.Contains(t, s.HTML(), `<span id="intro" class="interactive" data-targetaction="sequence" data-reftarget="span#intro">`)
	assert.Equal(t, []edtypes.Kind{edtypes.KindListItem, edtypes.KindSequence, edtypes.KindSpan}, kindsAfterReparse(t, s))
}

func TestRemoveAndToggle(t *testing.T) {
	s := newSession(t)

	require.NoError(t, s.Remove(20, edtypes.KindSpan))
	assert.Equal(t, `<ul><li class="interactive" data-targetaction="button" data-reftarget="Save">Click Save</li></ul><p>Text panel</p>`, s.HTML())

	on, err := s.ToggleInteractive(1)
	require.NoError(t, err)
	assert.False(t, on)
	assert.Empty(t, s.Nodes())

	on, err = s.ToggleInteractive(1)
	require.NoError(t, err)
	assert.True(t, on)
	assert.Len(t, s.Nodes(), 1)
}

func TestReplaceClosesEdit(t *testing.T) {
	s := newSession(t)
	_, err := s.Click("li > .interactive-lightning")
	require.NoError(t, err)

	s.Replace(edtypes.NewDoc())
	_, ok := s.EditState()
	assert.False(t, ok)
	assert.Empty(t, s.HTML())
}

func TestListNodes(t *testing.T) {
	doc, err := editor.ParseHTMLString(sample + `<ul><li>plain</li></ul>`)
	require.NoError(t, err)

	nodes := ListNodes(doc)
	require.Len(t, nodes, 2)
	assert.Equal(t, NodeInfo{Kind: edtypes.KindListItem, Pos: 1, Attrs: doc.Content[0].Content[0].Attrs, Text: "Click Save"}, nodes[0])
	assert.Equal(t, edtypes.KindSpan, nodes[1].Kind)
	assert.Equal(t, 20, nodes[1].Pos)
	assert.Equal(t, "panel", nodes[1].Text)
}
