// Пакет codec преобразует атрибуты интерактивных нод между представлением форм (флаги, пустые строки)
// и представлением хранения (строки либо отсутствие ключа).
//
// Преобразование ToUI(ToStorage(x)) == x выполняется для любых x. Обратное не гарантируется:
// отсутствие атрибута и пустая строка сводятся к одному значению формы, так и должно быть.
package codec

import (
	"strings"

	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor/edtypes"
)

// ToStorage переводит атрибуты формы в атрибуты хранения.
// DoIt=true хранится как "false" (только показ), DoIt=false - отсутствием ключа. Пустые строки не сохраняются.
func ToStorage(ui edtypes.UIAttrs) edtypes.Attrs {
	attrs := edtypes.Attrs{}
	attrs.Set(edtypes.AttrTargetAction, ui.TargetAction)
	attrs.Set(edtypes.AttrRefTarget, ui.RefTarget)
	attrs.Set(edtypes.AttrRequirements, ui.Requirements)
	attrs.Set(edtypes.AttrClass, ui.Class)
	attrs.Set(edtypes.AttrID, ui.ID)
	if ui.DoIt {
		attrs[edtypes.AttrDoIt] = edtypes.DoItShowOnly
	}
	return attrs
}

// ToUI переводит атрибуты хранения в атрибуты формы.
func ToUI(attrs edtypes.Attrs) edtypes.UIAttrs {
	return edtypes.UIAttrs{
		TargetAction: attrs.Get(edtypes.AttrTargetAction),
		RefTarget:    attrs.Get(edtypes.AttrRefTarget),
		Requirements: attrs.Get(edtypes.AttrRequirements),
		DoIt:         attrs.Get(edtypes.AttrDoIt) == edtypes.DoItShowOnly,
		Class:        attrs.Get(edtypes.AttrClass),
		ID:           attrs.Get(edtypes.AttrID),
	}
}

// Sanitize обрезает пробелы и удаляет пустые значения.
func Sanitize(attrs edtypes.Attrs) edtypes.Attrs {
	res := make(edtypes.Attrs, len(attrs))
	for k, v := range attrs {
		res.Set(k, strings.TrimSpace(v))
	}
	return res
}

// Merge накладывает непустые значения updates поверх existing.
func Merge(existing, updates edtypes.Attrs) edtypes.Attrs {
	res := existing.Clone()
	if res == nil {
		res = edtypes.Attrs{}
	}
	for k, v := range updates {
		if v != "" {
			res[k] = v
		}
	}
	return res
}
