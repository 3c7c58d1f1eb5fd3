package edtypes

import (
	"maps"
	"slices"
	"strings"
)

// Ключи атрибутов интерактивных нод, совпадают с именами HTML атрибутов
const (
	AttrClass        = "class"
	AttrID           = "id"
	AttrTargetAction = "data-targetaction"
	AttrRefTarget    = "data-reftarget"
	AttrRequirements = "data-requirements"
	AttrDoIt         = "data-doit"
)

// CSS классы интерактивной разметки
const (
	ClassInteractive = "interactive"
	ClassComment     = "interactive-comment"
	ClassAffordance  = "interactive-lightning"
)

const (
	// DoItShowOnly - значение data-doit, которое означает "только показать, взаимодействие не требуется".
	// Название атрибута противоположно значению, формат сохранен для совместимости с существующими документами.
	DoItShowOnly = "false"

	DefaultRequirement = "exists-reftarget"
)

// Attrs - атрибуты ноды в представлении хранения: строковые значения либо отсутствие ключа.
type Attrs map[string]string

// Get возвращает значение атрибута или пустую строку.
func (a Attrs) Get(key string) string {
	if a == nil {
		return ""
	}
	return a[key]
}

// Has проверяет наличие непустого атрибута.
func (a Attrs) Has(key string) bool {
	return a.Get(key) != ""
}

// Set устанавливает атрибут. Пустое значение удаляет ключ.
func (a Attrs) Set(key, value string) {
	if value == "" {
		delete(a, key)
		return
	}
	a[key] = value
}

// Clone копирует атрибуты. Для nil возвращает nil.
func (a Attrs) Clone() Attrs {
	if a == nil {
		return nil
	}
	return maps.Clone(a)
}

// Keys возвращает отсортированные ключи атрибутов.
func (a Attrs) Keys() []string {
	return slices.Sorted(maps.Keys(a))
}

// Equal сравнивает атрибуты, считая пустые значения отсутствующими.
func (a Attrs) Equal(b Attrs) bool {
	for k, v := range a {
		if b.Get(k) != v {
			return false
		}
	}
	for k, v := range b {
		if a.Get(k) != v {
			return false
		}
	}
	return true
}

// HasClass проверяет наличие токена в списке классов, разделенном пробелами.
func HasClass(class, token string) bool {
	return slices.Contains(strings.Fields(class), token)
}

// UIAttrs - атрибуты в представлении форм редактирования: флаги и пустые строки вместо отсутствия.
type UIAttrs struct {
	TargetAction string `json:"data-targetaction"`
	RefTarget    string `json:"data-reftarget"`
	Requirements string `json:"data-requirements"`
	DoIt         bool   `json:"data-doit"`
	Class        string `json:"class"`
	ID           string `json:"id"`
}
