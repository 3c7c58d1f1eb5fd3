// Пакет tiptap преобразует JSON-контент TipTap редактора в документ edtypes и обратно.
package tiptap

// TipTapDocument представляет корневой документ TipTap.
type TipTapDocument struct {
	Type    string       `json:"type"`
	Content []TipTapNode `json:"content,omitempty"`
}

// TipTapNode представляет узел в дереве документа TipTap.
// Используется универсальная структура с map для атрибутов: TipTap хранит в них строки, числа, булевы значения и null.
type TipTapNode struct {
	Type    string         `json:"type"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content []TipTapNode   `json:"content,omitempty"`
	Marks   []TipTapMark   `json:"marks,omitempty"`
	Text    string         `json:"text,omitempty"`
}

// TipTapMark представляет форматирование текста (bold, italic, link и т.д.).
type TipTapMark struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}
