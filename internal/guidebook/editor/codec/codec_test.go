package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor/edtypes"
)

func TestToStorage(t *testing.T) {
	t.Run("show only sets sentinel", func(t *testing.T) {
		attrs := ToStorage(edtypes.UIAttrs{TargetAction: "highlight", RefTarget: ".panel", DoIt: true})
		assert.Equal(t, edtypes.DoItShowOnly, attrs[edtypes.AttrDoIt])
	})

	t.Run("unchecked show only removes attribute", func(t *testing.T) {
		attrs := ToStorage(edtypes.UIAttrs{TargetAction: "highlight", RefTarget: ".panel"})
		assert.NotContains(t, attrs, edtypes.AttrDoIt)
	})

	t.Run("empty strings are omitted", func(t *testing.T) {
		attrs := ToStorage(edtypes.UIAttrs{TargetAction: "button", RefTarget: "Save"})
		assert.Equal(t, edtypes.Attrs{"data-targetaction": "button", "data-reftarget": "Save"}, attrs)
	})
}

func TestToUI(t *testing.T) {
	ui := ToUI(edtypes.Attrs{"data-doit": "false", "class": "interactive"})
	assert.True(t, ui.DoIt)
	assert.Equal(t, "interactive", ui.Class)
	assert.Empty(t, ui.RefTarget)

	// любое другое значение data-doit не означает "только показ"
	assert.False(t, ToUI(edtypes.Attrs{"data-doit": "true"}).DoIt)
	assert.False(t, ToUI(nil).DoIt)
}

func TestRoundTrip(t *testing.T) {
	cases := []edtypes.UIAttrs{
		{},
		{Class: "interactive"},
		{TargetAction: "button", RefTarget: "Save", Requirements: "exists-reftarget", Class: "interactive"},
		{TargetAction: "highlight", RefTarget: "[data-testid=\"panel\"]", DoIt: true, Class: "interactive"},
		{TargetAction: "navigate", RefTarget: "/dashboards", Requirements: "on-page:/dashboards"},
		{TargetAction: "sequence", ID: "guide-section-1", RefTarget: "span#guide-section-1", Class: "interactive"},
	}
	for _, x := range cases {
		assert.Equal(t, x, ToUI(ToStorage(x)))
	}
}

func TestStorageToUIIsLossy(t *testing.T) {
	// пустая строка и отсутствие ключа сходятся в одно значение формы
	withEmpty := edtypes.Attrs{"data-reftarget": ""}
	back := ToStorage(ToUI(withEmpty))
	assert.NotContains(t, back, "data-reftarget")
}

func TestSanitizeAndMerge(t *testing.T) {
	clean := Sanitize(edtypes.Attrs{"data-reftarget": "  Save ", "id": "   "})
	assert.Equal(t, edtypes.Attrs{"data-reftarget": "Save"}, clean)

	merged := Merge(edtypes.Attrs{"class": "interactive", "data-reftarget": "Old"}, edtypes.Attrs{"data-reftarget": "New", "id": ""})
	assert.Equal(t, edtypes.Attrs{"class": "interactive", "data-reftarget": "New"}, merged)
}
