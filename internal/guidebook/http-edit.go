package guidebook

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/apierrors"
	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor/editstate"
	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor/edtypes"
	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor/forms"
	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/session"
	stack_error "github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/stack-error"
)

func (s *Server) AddEditServices(g *echo.Group) {
	g.GET("forms/", s.getForms)
	g.POST("validate/", s.validateAttributes)

	sessionGroup := g.Group("sessions/:sessionId/", s.SessionMiddleware)
	sessionGroup.POST("click/", s.click)
	sessionGroup.GET("edit/", s.getEditState)
	sessionGroup.POST("edit/apply/", s.applyEdit)
	sessionGroup.DELETE("edit/", s.stopEdit)
	sessionGroup.GET("nodes/", s.getNodes)
	sessionGroup.POST("nodes/", s.insertNode)
	sessionGroup.DELETE("nodes/:pos/", s.removeNode)
	sessionGroup.POST("nodes/:pos/toggle/", s.toggleNode)
}

func (s *Server) getForms(c echo.Context) error {
	return c.JSON(http.StatusOK, append(forms.Configs(), forms.SequenceForm))
}

// validateAttributes godoc
// @Summary Формы: проверка атрибутов
// @Description Проверяет атрибуты ноды без применения к документу
// @Tags Edit
// @Accept json
// @Param data body ValidateRequest true "Вид ноды и атрибуты"
// @Success 204
// @Failure 422 {object} apierrors.DefinedError
// @Router /api/validate/ [post]
func (s *Server) validateAttributes(c echo.Context) error {
	var req ValidateRequest
	if err := bindValid(c, &req); err != nil {
		return EError(c, err)
	}
	if err := forms.ValidateKind(req.Kind, req.Attrs); err != nil {
		return EError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// click godoc
// @Summary Редактирование: клик в DOM редактора
// @Description Клик по первому элементу DOM редактора, подходящему под селектор. Клик по кнопке редактирования открывает форму ноды
// @Tags Edit
// @Accept json
// @Produce json
// @Param sessionId path string true "ID сессии"
// @Param data body ClickRequest true "Селектор цели клика"
// @Success 200 {object} EditStateResponse
// @Success 204 "клик не обработан"
// @Router /api/sessions/{sessionId}/click/ [post]
func (s *Server) click(c echo.Context) error {
	sess := c.(SessionContext).Session

	var req ClickRequest
	if err := bindValid(c, &req); err != nil {
		return EError(c, err)
	}

	res, err := sess.Click(req.Selector)
	if err != nil {
		return EError(c, err)
	}
	if !res.Handled {
		outcome := clickIgnored
		if res.DefaultPrevented {
			outcome = clickPrevented
		}
		s.metrics.observeClick(outcome, "")
		return c.NoContent(http.StatusNoContent)
	}
	s.metrics.observeClick(clickHandled, res.Strategy)
	return c.JSON(http.StatusOK, editStateResponse(*res.State))
}

func (s *Server) getEditState(c echo.Context) error {
	sess := c.(SessionContext).Session
	state, ok := sess.EditState()
	if !ok {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, editStateResponse(state))
}

// applyEdit godoc
// @Summary Редактирование: применение формы
// @Description Проверяет атрибуты и применяет их к открытой ноде. С action атрибуты собираются из значений формы
// @Tags Edit
// @Accept json
// @Produce json
// @Param sessionId path string true "ID сессии"
// @Param data body ApplyRequest true "Значения формы"
// @Success 200 {object} ApplyResponse
// @Failure 409 {object} apierrors.DefinedError
// @Failure 422 {object} apierrors.DefinedError
// @Router /api/sessions/{sessionId}/edit/apply/ [post]
func (s *Server) applyEdit(c echo.Context) error {
	sess := c.(SessionContext).Session

	var req ApplyRequest
	if err := bindValid(c, &req); err != nil {
		return EError(c, err)
	}

	state, _ := sess.EditState()
	var (
		node *edtypes.Node
		err  error
	)
	if req.Action != "" {
		node, err = sess.ApplyForm(edtypes.ActionType(req.Action), req.Values)
	} else {
		node, err = sess.Apply(req.Attrs)
	}
	s.metrics.observeApply(state.Kind.String(), err)
	if err != nil {
		return EError(c, stack_error.Track(err, "session", sess.ID, "kind", state.Kind, "pos", state.Pos))
	}

	slog.Debug("Attributes applied", "session", sess.ID, "kind", state.Kind, "pos", state.Pos)
	return c.JSON(http.StatusOK, ApplyResponse{Attrs: node.Attrs, HTML: sess.HTML()})
}

func (s *Server) stopEdit(c echo.Context) error {
	c.(SessionContext).Session.StopEdit()
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) getNodes(c echo.Context) error {
	return c.JSON(http.StatusOK, c.(SessionContext).Session.Nodes())
}

// insertNode godoc
// @Summary Редактирование: вставка интерактивной ноды
// @Description Span и comment оборачивают диапазон [from, to), sequence вставляется в pos, listItem создается из блока в pos
// @Tags Edit
// @Accept json
// @Produce json
// @Param sessionId path string true "ID сессии"
// @Param data body InsertNodeRequest true "Нода"
// @Success 201 {object} InsertResponse
// @Router /api/sessions/{sessionId}/nodes/ [post]
func (s *Server) insertNode(c echo.Context) error {
	sess := c.(SessionContext).Session

	var req InsertNodeRequest
	if err := bindValid(c, &req); err != nil {
		return EError(c, err)
	}

	pos, err := sess.Insert(session.InsertRequest{Kind: req.Kind, Pos: req.Pos, From: req.From, To: req.To, Attrs: req.Attrs})
	if err != nil {
		return EError(c, stack_error.Track(err, "session", sess.ID, "kind", req.Kind))
	}
	return c.JSON(http.StatusCreated, InsertResponse{Pos: pos, HTML: sess.HTML()})
}

func (s *Server) removeNode(c echo.Context) error {
	sess := c.(SessionContext).Session

	pos, err := strconv.Atoi(c.Param("pos"))
	if err != nil || pos < 0 {
		return EErrorDefined(c, apierrors.ErrBadRequest.WithFormattedMessage("pos"))
	}
	kind, err := edtypes.ParseKind(c.QueryParam("kind"))
	if err != nil {
		return EErrorDefined(c, apierrors.ErrUnknownKind.WithFormattedMessage(c.QueryParam("kind")))
	}

	if err := sess.Remove(pos, kind); err != nil {
		return EError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) toggleNode(c echo.Context) error {
	sess := c.(SessionContext).Session

	pos, err := strconv.Atoi(c.Param("pos"))
	if err != nil || pos < 0 {
		return EErrorDefined(c, apierrors.ErrBadRequest.WithFormattedMessage("pos"))
	}
	on, err := sess.ToggleInteractive(pos)
	if err != nil {
		return EError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"interactive": on})
}

// editStateResponse дополняет состояние формой и начальными значениями полей.
func editStateResponse(state editstate.EditState) EditStateResponse {
	resp := EditStateResponse{EditState: state, Surface: state.Surface()}
	action := edtypes.ActionType(state.Attrs.Get(edtypes.AttrTargetAction))
	if state.Kind == edtypes.KindSequence {
		action = edtypes.ActionSequence
	}
	if form, ok := forms.Config(action); ok {
		resp.Form = &form
	}
	resp.Values = forms.InitialValues(action, state.Attrs)
	return resp
}
