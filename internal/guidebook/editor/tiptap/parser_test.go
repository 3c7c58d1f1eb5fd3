package tiptap

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor"
	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor/edtypes"
)

const interactiveJSON = `{
	"type": "doc",
	"content": [
		{
			"type": "heading",
			"attrs": {"level": 2, "textAlign": null},
			"content": [{"type": "text", "text": "Setup"}]
		},
		{
			"type": "bulletList",
			"content": [
				{
					"type": "listItem",
					"attrs": {"class": "interactive", "data-targetaction": "button", "data-reftarget": "Save", "data-requirements": null, "data-doit": null, "id": null},
					"content": [{"type": "text", "text": "Click Save"}]
				}
			]
		},
		{
			"type": "paragraph",
			"content": [
				{"type": "text", "text": "Then "},
				{
					"type": "interactiveSpan",
					"attrs": {"class": "interactive", "data-targetaction": "highlight", "data-reftarget": ".panel"},
					"content": [{"type": "text", "marks": [{"type": "bold"}], "text": "look"}]
				},
				{"type": "mention", "attrs": {"id": "u1"}}
			]
		}
	]
}`

func TestParseJSON(t *testing.T) {
	doc, err := ParseJSON(strings.NewReader(interactiveJSON))
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Content) != 3 {
		t.Fatalf("top level nodes = %d, want 3", len(doc.Content))
	}

	heading := doc.Content[0]
	if heading.Attrs.Get("level") != "2" || heading.Attrs.Has("textAlign") {
		t.Errorf("heading attrs = %v", heading.Attrs)
	}

	li := doc.Content[1].Content[0]
	want := edtypes.Attrs{"class": "interactive", "data-targetaction": "button", "data-reftarget": "Save"}
	if !li.Attrs.Equal(want) || len(li.Attrs) != 3 {
		t.Errorf("list item attrs = %v, want %v", li.Attrs, want)
	}

	p := doc.Content[2]
	if len(p.Content) != 2 {
		t.Errorf("unknown inline node must be skipped, got %d children", len(p.Content))
	}
	if span := p.Content[1]; span.Type != edtypes.NodeInteractiveSpan || !span.Content[0].HasMark(edtypes.MarkBold) {
		t.Errorf("unexpected span %+v", span)
	}

	got := editor.RenderHTML(doc)
	wantHTML := `<h2>Setup</h2><ul><li class="interactive" data-targetaction="button" data-reftarget="Save">Click Save</li></ul>` +
		`<p>Then <span class="interactive" data-targetaction="highlight" data-reftarget=".panel"><strong>look</strong></span></p>`
	if got != wantHTML {
		t.Errorf("html\n got: %s\nwant: %s", got, wantHTML)
	}
}

func TestParseJSONInvalid(t *testing.T) {
	if _, err := ParseJSON(strings.NewReader(`{"type": "doc", "content": [`)); err == nil {
		t.Error("broken json must fail")
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	src := `<ol start="2"><li class="interactive" data-targetaction="highlight" data-reftarget=".panel" data-doit="false">Look</li></ol>` +
		`<span id="intro" class="interactive" data-targetaction="sequence" data-reftarget="span#intro"><h3>Intro</h3></span>`
	doc, err := editor.ParseHTMLString(src)
	if err != nil {
		t.Fatal(err)
	}

	data, err := Serialize(doc)
	if err != nil {
		t.Fatal(err)
	}

	var raw TipTapDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if start, ok := raw.Content[0].Attrs["start"].(float64); !ok || start != 2 {
		t.Errorf("start must serialize as a number, got %#v", raw.Content[0].Attrs["start"])
	}
	if level, ok := raw.Content[1].Content[0].Attrs["level"].(float64); !ok || level != 3 {
		t.Errorf("level must serialize as a number, got %#v", raw.Content[1].Content[0].Attrs["level"])
	}

	back, err := ParseJSON(strings.NewReader(string(data)))
	if err != nil {
		t.Fatal(err)
	}
	if got := editor.RenderHTML(back); got != src {
		t.Errorf("round trip\n got: %s\nwant: %s", got, src)
	}
}
