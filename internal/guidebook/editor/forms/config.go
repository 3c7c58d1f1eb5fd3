// Пакет forms описывает формы редактирования интерактивных нод: набор полей для каждого действия,
// сборку атрибутов хранения из значений формы и проверку атрибутов перед применением к документу.
package forms

import (
	"strings"

	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor/codec"
	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor/edtypes"
)

// FieldType - тип поля формы.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldCheckbox FieldType = "checkbox"
)

// Field - поле формы. ID совпадает с ключом атрибута.
type Field struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	Type        FieldType `json:"type"`
	Placeholder string    `json:"placeholder,omitempty"`
	Hint        string    `json:"hint,omitempty"`
	Required    bool      `json:"required,omitempty"`
	Default     string    `json:"default,omitempty"`
}

// ActionConfig - форма действия.
type ActionConfig struct {
	Action      edtypes.ActionType `json:"action"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Fields      []Field            `json:"fields"`
	InfoBox     string             `json:"infoBox,omitempty"`
}

// CommonRequirements - часто используемые требования для подсказок в формах.
var CommonRequirements = []string{
	"exists-reftarget",
	"navmenu-open",
	"on-page:",
	"is-admin",
	"has-datasource:",
	"has-plugin:",
	"section-completed:",
}

func requirementsField() Field {
	return Field{
		ID:          edtypes.AttrRequirements,
		Label:       "Requirements:",
		Type:        FieldText,
		Placeholder: "e.g., " + edtypes.DefaultRequirement,
		Default:     edtypes.DefaultRequirement,
	}
}

func refTargetField(label, placeholder, hint string) Field {
	return Field{
		ID:          edtypes.AttrRefTarget,
		Label:       label,
		Type:        FieldText,
		Placeholder: placeholder,
		Hint:        hint,
		Required:    true,
	}
}

var actionConfigs = map[edtypes.ActionType]ActionConfig{
	edtypes.ActionButton: {
		Action:      edtypes.ActionButton,
		Title:       "Button Click Action",
		Description: "Click a button with specific text",
		Fields: []Field{
			refTargetField("Button Text:", "e.g., Save, Create, Submit", "The exact text displayed on the button"),
			requirementsField(),
		},
	},
	edtypes.ActionHighlight: {
		Action:      edtypes.ActionHighlight,
		Title:       "Highlight Element Action",
		Description: "Highlight a specific UI element",
		Fields: []Field{
			refTargetField("CSS Selector:", `e.g., [data-testid="panel"], .my-class`, "CSS selector for the element to highlight"),
			requirementsField(),
			{ID: edtypes.AttrDoIt, Label: "Show-only (educational, no interaction required)", Type: FieldCheckbox},
		},
	},
	edtypes.ActionFormFill: {
		Action:      edtypes.ActionFormFill,
		Title:       "Form Fill Action",
		Description: "Fill a form input field",
		Fields: []Field{
			refTargetField("Input Selector:", `e.g., input[name="title"], #query`, "CSS selector for the input field"),
			requirementsField(),
		},
	},
	edtypes.ActionNavigate: {
		Action:      edtypes.ActionNavigate,
		Title:       "Navigate Action",
		Description: "Navigate to a specific page",
		Fields: []Field{
			refTargetField("Page Path:", "e.g., /dashboards, /datasources", "The URL path to navigate to"),
			{
				ID:          edtypes.AttrRequirements,
				Label:       "Requirements:",
				Type:        FieldText,
				Placeholder: "Auto: on-page:/path",
				Hint:        "Leave blank to auto-generate on-page requirement",
			},
		},
	},
	edtypes.ActionHover: {
		Action:      edtypes.ActionHover,
		Title:       "Hover Action",
		Description: "Reveal hover-hidden UI elements",
		Fields: []Field{
			refTargetField("Element Selector:", `e.g., div[data-cy="item"]:has(p:contains("name"))`, "CSS selector for the element to hover over"),
			requirementsField(),
		},
	},
	edtypes.ActionMultistep: {
		Action:      edtypes.ActionMultistep,
		Title:       "Multistep Action",
		Description: "Multiple related actions in sequence (typically contains nested interactive spans)",
		Fields: []Field{
			{
				ID:          edtypes.AttrRequirements,
				Label:       "Requirements:",
				Type:        FieldText,
				Placeholder: "e.g., " + edtypes.DefaultRequirement + " (optional)",
				Hint:        "Requirements are usually set on child interactive spans",
			},
		},
		InfoBox: "Multistep actions typically contain nested interactive spans. After applying, add child elements with their own interactive markup inside this list item.",
	},
}

// SequenceForm - форма секции последовательности.
var SequenceForm = ActionConfig{
	Action:      edtypes.ActionSequence,
	Title:       "Sequence Section",
	Description: "Group steps into a section that can be run as a whole",
	Fields: []Field{
		{
			ID:          edtypes.AttrID,
			Label:       "Section ID:",
			Type:        FieldText,
			Placeholder: "e.g., getting-started",
			Hint:        "Starts with a letter; letters, numbers, hyphens and underscores only",
			Required:    true,
		},
		{
			ID:          edtypes.AttrRequirements,
			Label:       "Requirements:",
			Type:        FieldText,
			Placeholder: "e.g., " + edtypes.DefaultRequirement + " (optional)",
		},
	},
}

// Config возвращает форму действия. Для sequence возвращается SequenceForm.
func Config(action edtypes.ActionType) (ActionConfig, bool) {
	if action == edtypes.ActionSequence {
		return SequenceForm, true
	}
	c, ok := actionConfigs[action]
	return c, ok
}

// Configs возвращает формы действий в порядке edtypes.Actions, без формы секции.
func Configs() []ActionConfig {
	res := make([]ActionConfig, 0, len(actionConfigs))
	for _, a := range edtypes.Actions {
		if c, ok := actionConfigs[a]; ok {
			res = append(res, c)
		}
	}
	return res
}

// InitialValues возвращает значения формы: текущие атрибуты ноды, а для пустых полей - значения по умолчанию.
func InitialValues(action edtypes.ActionType, existing edtypes.Attrs) edtypes.UIAttrs {
	ui := codec.ToUI(existing)
	c, ok := Config(action)
	if !ok {
		return ui
	}
	for _, f := range c.Fields {
		if f.ID == edtypes.AttrRequirements && ui.Requirements == "" && !existing.Has(edtypes.AttrTargetAction) {
			ui.Requirements = f.Default
		}
	}
	return ui
}

// BuildAttributes собирает атрибуты хранения из значений формы действия.
// Для navigate без требований подставляется on-page:<путь>, multistep не несет цели,
// флаг "только показ" сохраняется только для highlight.
func BuildAttributes(action edtypes.ActionType, values edtypes.UIAttrs) edtypes.Attrs {
	if action == edtypes.ActionSequence {
		return BuildSequenceAttributes(values)
	}

	ui := edtypes.UIAttrs{
		TargetAction: string(action),
		RefTarget:    strings.TrimSpace(values.RefTarget),
		Requirements: strings.TrimSpace(values.Requirements),
		Class:        edtypes.ClassInteractive,
		ID:           values.ID,
	}
	switch action {
	case edtypes.ActionHighlight:
		ui.DoIt = values.DoIt
	case edtypes.ActionNavigate:
		if ui.Requirements == "" && ui.RefTarget != "" {
			ui.Requirements = "on-page:" + ui.RefTarget
		}
	case edtypes.ActionMultistep:
		ui.RefTarget = ""
	}
	return codec.Sanitize(codec.ToStorage(ui))
}

// BuildSequenceAttributes собирает атрибуты секции последовательности. Цель секции - span#<id>.
func BuildSequenceAttributes(values edtypes.UIAttrs) edtypes.Attrs {
	id := strings.TrimSpace(values.ID)
	ui := edtypes.UIAttrs{
		TargetAction: string(edtypes.ActionSequence),
		Requirements: values.Requirements,
		Class:        edtypes.ClassInteractive,
		ID:           id,
	}
	if id != "" {
		ui.RefTarget = "span#" + id
	}
	return codec.Sanitize(codec.ToStorage(ui))
}
