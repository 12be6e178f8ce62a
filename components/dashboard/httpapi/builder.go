package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-dashboard-builder/components/dashboard"
	"github.com/goliatone/go-dashboard-builder/components/dashboard/commands"
)

var errSessionNotFound = &statusError{code: http.StatusNotFound, err: errors.New("builder session not found")}

type sessionResponse struct {
	Session string                    `json:"session"`
	State   dashboard.BuilderSnapshot `json:"state"`
}

func (h *Handlers) createSession(ctx router.Context) error {
	id, builder, err := h.Sessions.Create(ctx.Context())
	if err != nil {
		return h.fail(ctx, err)
	}
	return ctx.JSON(http.StatusCreated, sessionResponse{Session: id, State: builder.Snapshot()})
}

func (h *Handlers) getSession(ctx router.Context) error {
	builder, ok := h.Sessions.Get(ctx.Param("sid"))
	if !ok {
		return h.fail(ctx, errSessionNotFound)
	}
	return ctx.JSON(http.StatusOK, sessionResponse{Session: ctx.Param("sid"), State: builder.Snapshot()})
}

func (h *Handlers) closeSession(ctx router.Context) error {
	h.Sessions.Close(ctx.Param("sid"))
	return ctx.JSON(http.StatusNoContent, map[string]string{"status": "closed"})
}

func (h *Handlers) builderAction(ctx router.Context) error {
	var msg commands.BuilderActionInput
	if err := bind(ctx, &msg); err != nil {
		return h.fail(ctx, err)
	}
	return h.runAction(ctx, msg)
}

func (h *Handlers) addItem(ctx router.Context) error {
	var body struct {
		Type dashboard.ItemType `json:"type"`
	}
	if err := bind(ctx, &body); err != nil {
		return h.fail(ctx, err)
	}
	return h.runAction(ctx, commands.BuilderActionInput{Action: commands.ActionAddItem, ItemType: body.Type})
}

func (h *Handlers) addDataSource(ctx router.Context) error {
	var body struct {
		SourceID string `json:"sourceId"`
	}
	if err := bind(ctx, &body); err != nil {
		return h.fail(ctx, err)
	}
	return h.runAction(ctx, commands.BuilderActionInput{Action: commands.ActionAddDataSource, SourceID: body.SourceID})
}

func indexParam(ctx router.Context) (int, error) {
	index, err := strconv.Atoi(ctx.Param("index"))
	if err != nil {
		return 0, badRequest(errors.New("index must be an integer"))
	}
	return index, nil
}

func (h *Handlers) updateItem(ctx router.Context) error {
	index, err := indexParam(ctx)
	if err != nil {
		return h.fail(ctx, err)
	}
	var item dashboard.DashboardItem
	if err := bind(ctx, &item); err != nil {
		return h.fail(ctx, err)
	}
	return h.runAction(ctx, commands.BuilderActionInput{Action: commands.ActionUpdateItem, Index: index, Item: &item})
}

func (h *Handlers) removeItem(ctx router.Context) error {
	index, err := indexParam(ctx)
	if err != nil {
		return h.fail(ctx, err)
	}
	return h.runAction(ctx, commands.BuilderActionInput{Action: commands.ActionRemoveItem, Index: index})
}

func (h *Handlers) moveItem(ctx router.Context) error {
	var body struct {
		From int `json:"from"`
		To   int `json:"to"`
	}
	if err := bind(ctx, &body); err != nil {
		return h.fail(ctx, err)
	}
	return h.runAction(ctx, commands.BuilderActionInput{Action: commands.ActionMoveItem, Index: body.From, To: body.To})
}

func (h *Handlers) setMeta(ctx router.Context) error {
	var meta commands.BuilderMeta
	if err := bind(ctx, &meta); err != nil {
		return h.fail(ctx, err)
	}
	return h.runAction(ctx, commands.BuilderActionInput{Action: commands.ActionSetMeta, Meta: meta})
}

func (h *Handlers) applyTemplate(ctx router.Context) error {
	var body struct {
		Template string `json:"template"`
	}
	if err := bind(ctx, &body); err != nil {
		return h.fail(ctx, err)
	}
	return h.runAction(ctx, commands.BuilderActionInput{Action: commands.ActionApplyTemplate, Template: body.Template})
}

// saveSession saves the in-progress dashboard; ?flow=data-sources also
// requires at least one item.
func (h *Handlers) saveSession(ctx router.Context) error {
	action := commands.ActionSave
	if ctx.Query("flow") == "data-sources" {
		action = commands.ActionSaveDataSources
	}
	return h.runAction(ctx, commands.BuilderActionInput{Action: action})
}

func (h *Handlers) loadForEdit(ctx router.Context) error {
	return h.runAction(ctx, commands.BuilderActionInput{Action: commands.ActionLoad, ConfigID: ctx.Param("id")})
}

func (h *Handlers) runAction(ctx router.Context, msg commands.BuilderActionInput) error {
	msg.Session = ctx.Param("sid")
	msg.Actor = actor(ctx)
	if msg.SessionID == "" {
		msg.SessionID = msg.Session
	}
	var snapshot dashboard.BuilderSnapshot
	msg.Result = &snapshot
	if err := h.Builder.Execute(ctx.Context(), msg); err != nil {
		return h.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, sessionResponse{Session: msg.Session, State: snapshot})
}
