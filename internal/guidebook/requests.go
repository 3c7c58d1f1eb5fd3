package guidebook

import (
	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor/editstate"
	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor/edtypes"
	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor/forms"
)

type DocumentRequest struct {
	Content string `json:"content" validate:"max=4194304"`
	Format  string `json:"format" validate:"docFormat"`
}

type ClickRequest struct {
	Selector string `json:"selector" validate:"required"`
}

// ApplyRequest - значения формы действия либо готовые атрибуты хранения.
type ApplyRequest struct {
	Action string          `json:"action" validate:"omitempty,action"`
	Values edtypes.UIAttrs `json:"values"`
	Attrs  edtypes.Attrs   `json:"attrs"`
}

type InsertNodeRequest struct {
	Kind  edtypes.Kind  `json:"kind" validate:"nodeKind"`
	Pos   int           `json:"pos" validate:"min=0"`
	From  int           `json:"from" validate:"min=0"`
	To    int           `json:"to" validate:"min=0,gtefield=From"`
	Attrs edtypes.Attrs `json:"attrs"`
}

type ValidateRequest struct {
	Kind  edtypes.Kind  `json:"kind" validate:"nodeKind"`
	Attrs edtypes.Attrs `json:"attrs"`
}

type SessionResponse struct {
	ID   string `json:"id"`
	HTML string `json:"html"`
}

type DocumentResponse struct {
	HTML string `json:"html"`
}

type EditStateResponse struct {
	editstate.EditState
	Surface editstate.Surface   `json:"surface"`
	Form    *forms.ActionConfig `json:"form,omitempty"`
	Values  edtypes.UIAttrs     `json:"values"`
}

type ApplyResponse struct {
	Attrs edtypes.Attrs `json:"attrs"`
	HTML  string        `json:"html"`
}

type InsertResponse struct {
	Pos  int    `json:"pos"`
	HTML string `json:"html"`
}
