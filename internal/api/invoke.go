package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/Sakshi281205/sleeppeddlers/internal/events"
	"github.com/Sakshi281205/sleeppeddlers/pkg/handlers"
	"github.com/Sakshi281205/sleeppeddlers/pkg/routes"
	"github.com/Sakshi281205/sleeppeddlers/pkg/trigger"
)

const maxInvokeBody = 1 << 20

// InvokeResponse acknowledges an enqueued invocation.
type InvokeResponse struct {
	Target string `json:"target"`
	Status string `json:"status"`
}

// invokeHandler is the receiving side of the HTTP trigger: it validates the
// payload, enqueues it on the local dispatcher, and answers 202.
type invokeHandler struct {
	validator  *events.Validator
	dispatcher trigger.Trigger
	logger     *slog.Logger
}

func newInvokeHandler(validator *events.Validator, dispatcher trigger.Trigger, logger *slog.Logger) *invokeHandler {
	return &invokeHandler{
		validator:  validator,
		dispatcher: dispatcher,
		logger:     logger.With("handler", "invoke"),
	}
}

func (h *invokeHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/invoke",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/{target}", Handler: h.invoke},
		},
	}
}

func (h *invokeHandler) invoke(w http.ResponseWriter, r *http.Request) {
	target := r.PathValue("target")

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxInvokeBody))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("read payload: %w", err))
		return
	}

	if err := h.validator.Validate(target, payload); err != nil {
		handlers.RespondError(w, h.logger, mapInvokeStatus(err), err)
		return
	}

	if err := h.dispatcher.Fire(r.Context(), trigger.Invocation{Target: target, Payload: payload}); err != nil {
		handlers.RespondError(w, h.logger, mapInvokeStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusAccepted, InvokeResponse{Target: target, Status: "accepted"})
}

func mapInvokeStatus(err error) int {
	if errors.Is(err, events.ErrInvalidPayload) {
		return http.StatusBadRequest
	}
	return trigger.MapHTTPStatus(err)
}
