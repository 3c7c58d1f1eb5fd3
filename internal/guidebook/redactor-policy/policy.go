// Определяет политику безопасности для HTML с интерактивной разметкой. Политика пропускает атрибуты
// интерактивных нод только с допустимыми значениями и удаляет артефакты DOM редактора (кнопки редактирования, обертки содержимого).
//
// Основные возможности:
//   - Разрешение атрибутов интерактивных нод для li и span с проверкой значений регулярными выражениями.
//   - Удаление кнопок редактирования и раскрытие оберток содержимого перед очисткой.
//   - Использование UGCPolicy как основы для остальной разметки.
package policy

import (
	"container/list"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"

	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor/edtypes"
	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor/schema"
)

var StripTagsPolicy *bluemonday.Policy = bluemonday.StrictPolicy()
var InteractivePolicy *bluemonday.Policy = bluemonday.UGCPolicy()

func init() {
	classRegexp := regexp.MustCompile(`^[A-Za-z0-9_ -]+$`)
	actionRegexp := regexp.MustCompile(`^(button|highlight|formfill|navigate|hover|multistep|sequence)$`)
	requirementRegexp := regexp.MustCompile(`^(exists-reftarget|navmenu-open|is-admin|on-page:.+|has-datasource:.+|has-plugin:.+|section-completed:.+)$`)
	languageRegexp := regexp.MustCompile(`^language-[A-Za-z0-9_+-]+$`)

	InteractivePolicy.AllowAttrs(edtypes.AttrClass).Matching(classRegexp).OnElements("li", "span")
	InteractivePolicy.AllowAttrs(edtypes.AttrID).Matching(schema.SectionIDPattern).OnElements("li", "span")
	InteractivePolicy.AllowAttrs(edtypes.AttrTargetAction).Matching(actionRegexp).OnElements("li", "span")
	InteractivePolicy.AllowAttrs(edtypes.AttrRefTarget).OnElements("li", "span")
	InteractivePolicy.AllowAttrs(edtypes.AttrRequirements).Matching(requirementRegexp).OnElements("li", "span")
	InteractivePolicy.AllowAttrs(edtypes.AttrDoIt).Matching(regexp.MustCompile(`^false$`)).OnElements("li")

	InteractivePolicy.AllowAttrs("start").Matching(regexp.MustCompile(`^\d+$`)).OnElements("ol")
	InteractivePolicy.AllowAttrs("class").Matching(languageRegexp).OnElements("code")
}

// Sanitize удаляет артефакты редактора и очищает HTML политикой InteractivePolicy.
func Sanitize(htmlContent string) string {
	return InteractivePolicy.Sanitize(StripEditorArtifacts(htmlContent))
}

// PlainText возвращает текст без разметки.
func PlainText(htmlContent string) string {
	return strings.TrimSpace(StripTagsPolicy.Sanitize(StripEditorArtifacts(htmlContent)))
}

// StripEditorArtifacts удаляет кнопки редактирования и раскрывает обертки содержимого DOM редактора.
func StripEditorArtifacts(htmlContent string) string {
	if htmlContent == "" {
		return ""
	}

	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return htmlContent
	}

	queue := list.New()
	queue.PushBack(doc)

	for queue.Len() > 0 {
		element := queue.Front()
		queue.Remove(element)
		node := element.Value.(*html.Node)

		var next *html.Node

		for child := node.FirstChild; child != nil; child = next {
			next = child.NextSibling
			switch {
			case schema.IsAffordance(child):
				node.RemoveChild(child)
			case schema.IsContentWrapper(child):
				next = unwrapNode(child)
			case child.FirstChild != nil:
				queue.PushBack(child)
			}
		}
	}

	var result strings.Builder
	body := findBody(doc)
	if body == nil {
		return ""
	}
	for child := body.FirstChild; child != nil; child = child.NextSibling {
		html.Render(&result, child)
	}

	return result.String()
}

// unwrapNode заменяет ноду ее детьми и возвращает первую вставленную ноду для продолжения обхода.
func unwrapNode(node *html.Node) *html.Node {
	parent := node.Parent
	first := node.FirstChild
	for child := node.FirstChild; child != nil; child = node.FirstChild {
		node.RemoveChild(child)
		parent.InsertBefore(child, node)
	}
	next := node.NextSibling
	parent.RemoveChild(node)
	if first != nil {
		return first
	}
	return next
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
