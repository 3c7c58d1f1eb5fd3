// Пакет editstate хранит состояние редактирования: в каждый момент открыта на редактирование не больше чем одна нода.
package editstate

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor/edtypes"
)

var ErrNotEditing = errors.New("no node is being edited")

// Surface - форма редактирования, которая открывается для вида ноды.
type Surface string

const (
	SurfaceNone     Surface = ""
	SurfaceAction   Surface = "action"
	SurfaceSequence Surface = "sequence"
)

// SurfaceFor возвращает форму редактирования для вида ноды.
func SurfaceFor(kind edtypes.Kind) Surface {
	switch kind {
	case edtypes.KindListItem, edtypes.KindSpan, edtypes.KindComment:
		return SurfaceAction
	case edtypes.KindSequence:
		return SurfaceSequence
	}
	return SurfaceNone
}

// EditState - снимок редактируемой ноды.
type EditState struct {
	Kind  edtypes.Kind  `json:"kind"`
	Attrs edtypes.Attrs `json:"attrs"`
	Pos   int           `json:"pos"`
}

// Surface возвращает форму редактирования для снимка.
func (s EditState) Surface() Surface {
	return SurfaceFor(s.Kind)
}

// Coordinator - владелец состояния редактирования. Безопасен для использования из нескольких горутин,
// при конкурентных вызовах побеждает последняя запись.
type Coordinator struct {
	mu      sync.Mutex
	state   EditState
	editing bool
}

// New создает координатор в состоянии Idle.
func New() *Coordinator {
	return &Coordinator{}
}

// StartEdit открывает ноду на редактирование. Ранее открытая нода вытесняется без очереди.
func (c *Coordinator) StartEdit(kind edtypes.Kind, attrs edtypes.Attrs, pos int) EditState {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.editing {
		slog.Debug("Edit state preempted", "prevKind", c.state.Kind, "prevPos", c.state.Pos, "kind", kind, "pos", pos)
	}
	c.state = EditState{Kind: kind, Attrs: attrs.Clone(), Pos: pos}
	c.editing = true
	return c.snapshot()
}

// StopEdit закрывает редактирование. В состоянии Idle ничего не делает.
func (c *Coordinator) StopEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = EditState{}
	c.editing = false
}

// State возвращает копию текущего состояния. Второе значение false означает Idle.
func (c *Coordinator) State() (EditState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.editing {
		return EditState{}, false
	}
	return c.snapshot(), true
}

// IsEditing сообщает, открыта ли нода на редактирование. С переданными видами проверяет и вид ноды.
func (c *Coordinator) IsEditing(kinds ...edtypes.Kind) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.editing {
		return false
	}
	if len(kinds) == 0 {
		return true
	}
	for _, k := range kinds {
		if k == c.state.Kind {
			return true
		}
	}
	return false
}

// UpdateAttributes заменяет атрибуты в снимке открытой ноды.
func (c *Coordinator) UpdateAttributes(attrs edtypes.Attrs) (EditState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.editing {
		return EditState{}, ErrNotEditing
	}
	c.state.Attrs = attrs.Clone()
	return c.snapshot(), nil
}

func (c *Coordinator) snapshot() EditState {
	s := c.state
	s.Attrs = s.Attrs.Clone()
	return s
}
