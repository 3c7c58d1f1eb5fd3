package schema

import (
	"errors"
	"reflect"
	"testing"

	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor/edtypes"
)

func paragraph(text string) *edtypes.Node {
	return &edtypes.Node{Type: edtypes.NodeParagraph, Content: []*edtypes.Node{edtypes.NewText(text)}}
}

func TestSetSpanAndUnwrap(t *testing.T) {
	doc := edtypes.NewDoc(paragraph("Click Save now"))
	span, err := SetSpan(doc, 7, 11, edtypes.Attrs{"data-targetaction": "button", "data-reftarget": "Save"})
	if err != nil {
		t.Fatal(err)
	}
	if span.TextContent() != "Save" || span.Attrs.Get("class") != edtypes.ClassInteractive {
		t.Fatalf("span = %q %v", span.TextContent(), span.Attrs)
	}
	if doc.NodeAt(7) != span {
		t.Fatal("span must start at 7")
	}

	if err := Unwrap(doc, 7, edtypes.KindComment); err == nil {
		t.Error("unwrap with wrong kind must fail")
	}
	if err := Unwrap(doc, 7, edtypes.KindSpan); err != nil {
		t.Fatal(err)
	}
	if doc.Content[0].TextContent() != "Click Save now" {
		t.Errorf("text after unwrap = %q", doc.Content[0].TextContent())
	}
	if _, ok := edtypes.KindOf(doc.NodeAt(7)); ok {
		t.Error("span must be gone after unwrap")
	}
}

func TestSetCommentStripsActions(t *testing.T) {
	doc := edtypes.NewDoc(paragraph("Note this"))
	c, err := SetComment(doc, 1, 5, edtypes.Attrs{"data-targetaction": "button"})
	if err != nil {
		t.Fatal(err)
	}
	if c.Type != edtypes.NodeInteractiveComment || c.Attrs.Has("data-targetaction") || c.Attrs.Get("class") != edtypes.ClassComment {
		t.Errorf("comment = %s %v", c.Type, c.Attrs)
	}
}

func TestSetSpanAcrossBlocks(t *testing.T) {
	doc := edtypes.NewDoc(paragraph("one"), paragraph("two"))
	if _, err := SetSpan(doc, 0, 10, nil); err == nil {
		t.Error("span around blocks must fail")
	}
	if doc.Content[0].Type != edtypes.NodeParagraph || len(doc.Content) != 2 {
		t.Errorf("document changed after failed wrap: %+v", doc.Content)
	}
}

func TestInsertSequenceSection(t *testing.T) {
	doc := edtypes.NewDoc(paragraph("Intro"))
	section, err := InsertSequenceSection(doc, 7, nil)
	if err != nil {
		t.Fatal(err)
	}
	if section.Attrs.Get("id") != "section-title-goes-here" {
		t.Errorf("id = %q", section.Attrs.Get("id"))
	}
	if section.Attrs.Get("data-reftarget") != "span#section-title-goes-here" {
		t.Errorf("reftarget = %q", section.Attrs.Get("data-reftarget"))
	}
	if len(section.Content) != 2 || section.Content[0].Type != edtypes.NodeHeading || len(section.Content[1].Content) != 3 {
		t.Errorf("unexpected template content")
	}

	second, err := InsertSequenceSection(doc, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if second.Attrs.Get("id") != "section-title-goes-here-2" {
		t.Errorf("second id = %q", second.Attrs.Get("id"))
	}

	custom, err := InsertSequenceSection(doc, 0, edtypes.Attrs{"id": "setup"})
	if err != nil {
		t.Fatal(err)
	}
	if custom.Attrs.Get("data-reftarget") != "span#setup" {
		t.Errorf("custom reftarget = %q", custom.Attrs.Get("data-reftarget"))
	}
}

func TestInsertSequenceSectionNeedsBlockBoundary(t *testing.T) {
	tests := []struct {
		name string
		doc  func() *edtypes.Node
		pos  int
		ok   bool
	}{
		{"inside paragraph text", func() *edtypes.Node { return edtypes.NewDoc(paragraph("hello world")) }, 3, false},
		{"paragraph start", func() *edtypes.Node { return edtypes.NewDoc(paragraph("hello")) }, 1, false},
		{"before paragraph", func() *edtypes.Node { return edtypes.NewDoc(paragraph("hello")) }, 0, true},
		{"after paragraph", func() *edtypes.Node { return edtypes.NewDoc(paragraph("hello")) }, 7, true},
		{"inline list item", func() *edtypes.Node {
			li := &edtypes.Node{Type: edtypes.NodeListItem, Content: []*edtypes.Node{edtypes.NewText("ab")}}
			return edtypes.NewDoc(&edtypes.Node{Type: edtypes.NodeBulletList, Content: []*edtypes.Node{li}})
		}, 2, false},
		{"block list item", func() *edtypes.Node {
			li := &edtypes.Node{Type: edtypes.NodeListItem, Content: []*edtypes.Node{paragraph("ab")}}
			return edtypes.NewDoc(&edtypes.Node{Type: edtypes.NodeBulletList, Content: []*edtypes.Node{li}})
		}, 2, true},
		{"blockquote", func() *edtypes.Node {
			return edtypes.NewDoc(&edtypes.Node{Type: edtypes.NodeBlockquote, Content: []*edtypes.Node{paragraph("q")}})
		}, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := tt.doc()
			before := doc.Clone()
			_, err := InsertSequenceSection(doc, tt.pos, nil)
			if tt.ok {
				if err != nil {
					t.Fatal(err)
				}
				return
			}
			if !errors.Is(err, edtypes.ErrNotBoundary) {
				t.Fatalf("err = %v, want ErrNotBoundary", err)
			}
			if !reflect.DeepEqual(doc, before) {
				t.Errorf("document changed after refused insert")
			}
		})
	}

	if _, err := InsertSequenceSection(edtypes.NewDoc(paragraph("x")), 40, nil); !errors.Is(err, edtypes.ErrPositionOutOfRange) {
		t.Errorf("err = %v, want ErrPositionOutOfRange", err)
	}
}

func TestSequenceAttrs(t *testing.T) {
	doc := edtypes.NewDoc(paragraph("x"))
	attrs := SequenceAttrs(doc, edtypes.Attrs{"data-requirements": "is-admin"})
	want := edtypes.Attrs{"id": "section-title-goes-here", "data-reftarget": "span#section-title-goes-here", "data-requirements": "is-admin"}
	if !attrs.Equal(want) {
		t.Errorf("attrs = %v, want %v", attrs, want)
	}
	if got := SequenceAttrs(doc, edtypes.Attrs{"id": "setup", "data-reftarget": "#custom"}); got.Get("data-reftarget") != "#custom" {
		t.Errorf("explicit ref target replaced: %v", got)
	}
}

func TestSetSpanAcrossBlocksKeepsText(t *testing.T) {
	doc := edtypes.NewDoc(paragraph("one"), paragraph("two"))
	before := doc.Clone()
	// правая граница внутри текста второго параграфа
	if _, err := SetSpan(doc, 2, 8, nil); err == nil {
		t.Fatal("span across paragraphs must fail")
	}
	if !reflect.DeepEqual(doc, before) {
		t.Errorf("failed wrap split text nodes: %+v", doc.Content)
	}
}

func TestConvertToInteractiveListItem(t *testing.T) {
	t.Run("paragraph becomes list", func(t *testing.T) {
		doc := edtypes.NewDoc(paragraph("Click Save"))
		pos, err := ConvertToInteractiveListItem(doc, 3, edtypes.Attrs{"data-targetaction": "button", "data-reftarget": "Save"})
		if err != nil {
			t.Fatal(err)
		}
		if pos != 1 {
			t.Errorf("pos = %d, want 1", pos)
		}
		li := doc.NodeAt(pos)
		if li == nil || li.Type != edtypes.NodeListItem {
			t.Fatalf("no list item at %d", pos)
		}
		if li.TextContent() != "Click Save" || li.Attrs.Get("class") != "interactive" || li.Attrs.Get("data-reftarget") != "Save" {
			t.Errorf("list item = %q %v", li.TextContent(), li.Attrs)
		}
		if doc.Content[0].Type != edtypes.NodeBulletList {
			t.Errorf("top node = %s", doc.Content[0].Type)
		}
	})

	t.Run("existing list item keeps place", func(t *testing.T) {
		li := &edtypes.Node{Type: edtypes.NodeListItem, Attrs: edtypes.Attrs{"class": "step"}, Content: []*edtypes.Node{paragraph("ab")}}
		doc := edtypes.NewDoc(&edtypes.Node{Type: edtypes.NodeBulletList, Content: []*edtypes.Node{li}})
		pos, err := ConvertToInteractiveListItem(doc, 3, nil)
		if err != nil {
			t.Fatal(err)
		}
		if pos != 1 || doc.NodeAt(1) != li {
			t.Errorf("pos = %d", pos)
		}
		if !edtypes.HasClass(li.Attrs.Get("class"), "interactive") {
			t.Errorf("class = %q", li.Attrs.Get("class"))
		}
	})
}

func TestToggleInteractiveClass(t *testing.T) {
	li := &edtypes.Node{Type: edtypes.NodeListItem, Content: []*edtypes.Node{edtypes.NewText("ab")}}
	doc := edtypes.NewDoc(&edtypes.Node{Type: edtypes.NodeBulletList, Content: []*edtypes.Node{li}})

	on, err := ToggleInteractiveClass(doc, 1)
	if err != nil || !on || li.Attrs.Get("class") != "interactive" {
		t.Fatalf("toggle on: %v %v %v", on, err, li.Attrs)
	}
	li.Attrs.Set("data-targetaction", "button")
	on, err = ToggleInteractiveClass(doc, 1)
	if err != nil || on || len(li.Attrs) != 0 {
		t.Fatalf("toggle off: %v %v %v", on, err, li.Attrs)
	}
	if _, err := ToggleInteractiveClass(doc, 0); err == nil {
		t.Error("toggle on list must fail")
	}
}

func TestNewSectionID(t *testing.T) {
	doc := edtypes.NewDoc(&edtypes.Node{Type: edtypes.NodeSequenceSection, Attrs: edtypes.Attrs{"id": "getting-started"}, Content: []*edtypes.Node{paragraph("x")}})

	tests := []struct {
		title string
		want  string
	}{
		{"Intro", "intro"},
		{"Getting Started", "getting-started-2"},
		{"123 Go", "section-123-go"},
	}
	for _, tt := range tests {
		if got := NewSectionID(doc, tt.title); got != tt.want {
			t.Errorf("NewSectionID(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}

	if id := NewSectionID(doc, "  "); !SectionIDPattern.MatchString(id) {
		t.Errorf("fallback id %q does not match pattern", id)
	}
}
