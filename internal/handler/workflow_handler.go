package handler

import (
	"crypto/subtle"
	"net/http"

	cehttp "github.com/cloudevents/sdk-go/v2/protocol/http"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"receiptly/internal/workflow"
)

// WorkflowHandler serves the workflow endpoint the extraction trigger delivers to.
type WorkflowHandler struct {
	engine     *workflow.Engine
	signingKey string
	logger     *zap.Logger
}

// NewWorkflowHandler creates a new WorkflowHandler. An empty signingKey disables the check.
func NewWorkflowHandler(engine *workflow.Engine, signingKey string, logger *zap.Logger) *WorkflowHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkflowHandler{engine: engine, signingKey: signingKey, logger: logger}
}

// Introspect handles GET /api/workflow
// @Summary Inspect the workflow host
// @Description Registered functions and recent runs, or a single run with ?runId=
// @Tags workflow
// @Produce json
// @Param runId query string false "Run ID"
// @Success 200 {object} Response{data=WorkflowIntrospection}
// @Failure 404 {object} ErrorResponseBody "Run not found"
// @Router /workflow [get]
func (h *WorkflowHandler) Introspect(c *gin.Context) {
	if !h.authorized(c) {
		return
	}
	if runID := c.Query("runId"); runID != "" {
		run, ok := h.engine.Run(runID)
		if !ok {
			RespondError(c, http.StatusNotFound, "RUN_NOT_FOUND", "workflow run not found")
			return
		}
		RespondOK(c, run)
		return
	}
	RespondOK(c, WorkflowIntrospection{Functions: h.manifest(), Runs: h.engine.Runs()})
}

// Deliver handles POST /api/workflow
// @Summary Deliver an event
// @Description Accepts a CloudEvent (binary or structured mode) and starts matching functions asynchronously
// @Tags workflow
// @Accept json
// @Produce json
// @Success 202 {object} Response{data=DispatchResponse}
// @Failure 400 {object} ErrorResponseBody "Not a valid CloudEvent"
// @Failure 401 {object} ErrorResponseBody "Bad signing key"
// @Failure 503 {object} ErrorResponseBody "Shutting down"
// @Router /workflow [post]
func (h *WorkflowHandler) Deliver(c *gin.Context) {
	if !h.authorized(c) {
		return
	}

	ev, err := cehttp.NewEventFromHTTPRequest(c.Request)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_EVENT", "request is not a valid CloudEvent")
		return
	}
	if err := ev.Validate(); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_EVENT", err.Error())
		return
	}

	ids, err := h.engine.Dispatch(*ev)
	if err != nil {
		RespondError(c, http.StatusServiceUnavailable, "ENGINE_UNAVAILABLE", "workflow engine is not accepting events")
		return
	}

	h.logger.Info("workflow event accepted",
		zap.String("event_id", ev.ID()),
		zap.String("event_type", ev.Type()),
		zap.Strings("run_ids", ids),
	)
	c.JSON(http.StatusAccepted, APIResponse{Success: true, Data: DispatchResponse{EventID: ev.ID(), RunIDs: ids}})
}

// Sync handles PUT /api/workflow
// @Summary Sync function manifest
// @Description Returns the functions this host serves
// @Tags workflow
// @Produce json
// @Success 200 {object} Response{data=[]FunctionManifest}
// @Router /workflow [put]
func (h *WorkflowHandler) Sync(c *gin.Context) {
	if !h.authorized(c) {
		return
	}
	RespondOK(c, h.manifest())
}

func (h *WorkflowHandler) manifest() []FunctionManifest {
	fns := h.engine.Functions()
	out := make([]FunctionManifest, 0, len(fns))
	for _, f := range fns {
		out = append(out, FunctionManifest{ID: f.ID, Event: f.Event})
	}
	return out
}

func (h *WorkflowHandler) authorized(c *gin.Context) bool {
	if h.signingKey == "" {
		return true
	}
	got := c.GetHeader(workflow.SigningKeyHeader)
	if subtle.ConstantTimeCompare([]byte(got), []byte(h.signingKey)) == 1 {
		return true
	}
	RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid workflow signing key")
	return false
}
