package edtypes

import (
	"fmt"
	"slices"
)

// Kind - вид интерактивной ноды. Набор закрыт: четыре вида, каждый со своей моделью содержимого и набором атрибутов.
type Kind int

const (
	KindNone Kind = iota
	KindListItem
	KindSpan
	KindComment
	KindSequence
)

// Kinds перечисляет все интерактивные виды нод.
var Kinds = []Kind{KindListItem, KindSpan, KindComment, KindSequence}

func (k Kind) String() string {
	switch k {
	case KindListItem:
		return "listItem"
	case KindSpan:
		return "span"
	case KindComment:
		return "comment"
	case KindSequence:
		return "sequence"
	}
	return "none"
}

// NodeType возвращает тип ноды документа для вида.
func (k Kind) NodeType() string {
	switch k {
	case KindListItem:
		return NodeListItem
	case KindSpan:
		return NodeInteractiveSpan
	case KindComment:
		return NodeInteractiveComment
	case KindSequence:
		return NodeSequenceSection
	}
	return ""
}

// ParseKind преобразует строковое имя вида в Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if k.String() == s {
			return k, nil
		}
	}
	return KindNone, fmt.Errorf("unknown node kind %q", s)
}

// KindOf возвращает вид интерактивной ноды по типу ноды документа.
func KindOf(n *Node) (Kind, bool) {
	if n == nil {
		return KindNone, false
	}
	for _, k := range Kinds {
		if k.NodeType() == n.Type {
			return k, true
		}
	}
	return KindNone, false
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ActionType - действие интерактивной ноды (значение data-targetaction).
type ActionType string

const (
	ActionButton    ActionType = "button"
	ActionHighlight ActionType = "highlight"
	ActionFormFill  ActionType = "formfill"
	ActionNavigate  ActionType = "navigate"
	ActionHover     ActionType = "hover"
	ActionMultistep ActionType = "multistep"
	ActionSequence  ActionType = "sequence"
)

// Actions перечисляет все допустимые действия.
var Actions = []ActionType{ActionButton, ActionHighlight, ActionFormFill, ActionNavigate, ActionHover, ActionMultistep, ActionSequence}

// IsValid проверяет, что действие входит в закрытый набор.
func (a ActionType) IsValid() bool {
	return slices.Contains(Actions, a)
}

// NeedsRefTarget возвращает true для действий, которым обязательно нужна цель.
func (a ActionType) NeedsRefTarget() bool {
	switch a {
	case ActionButton, ActionHighlight, ActionFormFill, ActionNavigate, ActionHover:
		return true
	}
	return false
}
