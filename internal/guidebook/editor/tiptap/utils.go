package tiptap

import (
	"encoding/json"
	"strconv"
)

// Атрибуты, которые TipTap хранит числами
var numericAttrs = map[string]bool{
	"level": true,
	"start": true,
}

// stringifyAttr приводит значение атрибута TipTap к строке. Для null и пустых строк возвращает false.
func stringifyAttr(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, val != ""
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(val), true
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return "", false
		}
		return string(b), true
	}
}

// attrValue восстанавливает тип атрибута для TipTap JSON.
func attrValue(key, val string) any {
	if numericAttrs[key] {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return val
}
