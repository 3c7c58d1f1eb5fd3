package guidebook

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/apierrors"
	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor"
	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor/edtypes"
	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor/tiptap"
	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/session"
)

// SessionContext - контекст запроса с сессией из пути.
type SessionContext struct {
	echo.Context
	Session *session.Session
}

func (s *Server) AddSessionServices(g *echo.Group) {
	g.POST("sessions/", s.createSession)

	sessionGroup := g.Group("sessions/:sessionId/", s.SessionMiddleware)
	sessionGroup.DELETE("", s.deleteSession)
	sessionGroup.GET("document/", s.getDocument)
	sessionGroup.PUT("document/", s.replaceDocument)
	sessionGroup.GET("preview/", s.getPreview)
}

// SessionMiddleware находит сессию по идентификатору из пути.
func (s *Server) SessionMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, err := s.sessions.GetString(c.Param("sessionId"))
		if err != nil {
			return EError(c, err)
		}
		return next(SessionContext{c, sess})
	}
}

func loadDocument(format, content string) (*edtypes.Node, error) {
	var (
		doc *edtypes.Node
		err error
	)
	switch format {
	case "", FormatHTML:
		doc, err = editor.ParseHTMLString(content)
	case FormatMarkdown:
		doc, err = editor.ParseMarkdown(strings.NewReader(content))
	case FormatTipTap:
		doc, err = tiptap.ParseJSON(strings.NewReader(content))
	default:
		return nil, apierrors.ErrUnknownFormat.WithFormattedMessage(format)
	}
	if err != nil {
		return nil, apierrors.ErrDocumentParse.WithFormattedMessage(err.Error())
	}
	return doc, nil
}

func bindValid(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return apierrors.ErrBadRequest.WithFormattedMessage(err.Error())
	}
	return c.Validate(req)
}

// createSession godoc
// @Summary Сессии: создание сессии редактора
// @Description Разбирает документ и создает сессию редактирования
// @Tags Sessions
// @Accept json
// @Produce json
// @Param data body DocumentRequest true "Документ"
// @Success 201 {object} SessionResponse
// @Failure 400 {object} apierrors.DefinedError
// @Router /api/sessions/ [post]
func (s *Server) createSession(c echo.Context) error {
	var req DocumentRequest
	if err := bindValid(c, &req); err != nil {
		return EError(c, err)
	}

	sess, err := s.newSession(c.Request().Context(), req.Format, req.Content)
	if err != nil {
		return EError(c, err)
	}
	return c.JSON(http.StatusCreated, SessionResponse{ID: sess.ID.String(), HTML: sess.HTML()})
}

func (s *Server) deleteSession(c echo.Context) error {
	sess := c.(SessionContext).Session
	s.sessions.Delete(sess.ID)
	return c.NoContent(http.StatusNoContent)
}

// getDocument godoc
// @Summary Сессии: получение документа
// @Description Возвращает документ в формате html (хранение), view (DOM редактора) или tiptap
// @Tags Sessions
// @Produce json
// @Param sessionId path string true "ID сессии"
// @Param format query string false "html, view или tiptap"
// @Success 200 {object} DocumentResponse
// @Router /api/sessions/{sessionId}/document/ [get]
func (s *Server) getDocument(c echo.Context) error {
	sess := c.(SessionContext).Session

	switch format := c.QueryParam("format"); format {
	case "", FormatHTML:
		return c.JSON(http.StatusOK, DocumentResponse{HTML: sess.HTML()})
	case "view":
		return c.JSON(http.StatusOK, DocumentResponse{HTML: sess.ViewHTML()})
	case FormatTipTap:
		return c.JSON(http.StatusOK, sess.TipTap())
	default:
		return EErrorDefined(c, apierrors.ErrUnknownFormat.WithFormattedMessage(format))
	}
}

func (s *Server) replaceDocument(c echo.Context) error {
	sess := c.(SessionContext).Session

	var req DocumentRequest
	if err := bindValid(c, &req); err != nil {
		return EError(c, err)
	}
	doc, err := loadDocument(req.Format, req.Content)
	if err != nil {
		return EError(c, err)
	}
	sess.Replace(doc)
	return c.JSON(http.StatusOK, DocumentResponse{HTML: sess.HTML()})
}

// getPreview godoc
// @Summary Сессии: предпросмотр
// @Description Последний отформатированный предпросмотр документа. 204, пока форматирование не завершено
// @Tags Sessions
// @Produce json
// @Param sessionId path string true "ID сессии"
// @Success 200 {object} preview.Result
// @Success 204
// @Router /api/sessions/{sessionId}/preview/ [get]
func (s *Server) getPreview(c echo.Context) error {
	sess := c.(SessionContext).Session
	res, ok := sess.Preview()
	if !ok {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, res)
}
