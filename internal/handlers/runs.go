package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	v1 "github.com/tupyy/expsum/api/v1"
	"github.com/tupyy/expsum/internal/services"
	srvErrors "github.com/tupyy/expsum/pkg/errors"
	"github.com/tupyy/expsum/pkg/scheduler"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// CreateRun submits a run for asynchronous execution
// (POST /runs)
func (h *Handler) CreateRun(c *gin.Context) {
	var req v1.RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, v1.Error{Error: "invalid request body: " + err.Error()})
		return
	}

	run, err := h.runSrv.Submit(c.Request.Context(), req.ToModel())
	switch {
	case err == nil:
	case srvErrors.IsUnsupportedMechanismError(err):
		c.JSON(http.StatusUnprocessableEntity, v1.Error{Error: err.Error()})
		return
	case srvErrors.IsConfigurationError(err):
		c.JSON(http.StatusBadRequest, v1.Error{Error: err.Error()})
		return
	case errors.Is(err, scheduler.ErrClosed):
		c.JSON(http.StatusServiceUnavailable, v1.Error{Error: "server is shutting down"})
		return
	default:
		zap.S().Named("run_handler").Errorw("failed to submit run", "error", err)
		c.JSON(http.StatusInternalServerError, v1.Error{Error: "failed to submit run"})
		return
	}

	c.JSON(http.StatusAccepted, v1.NewRunFromModel(*run))
}

// ListRuns returns recorded runs, newest first
// (GET /runs)
func (h *Handler) ListRuns(c *gin.Context, params v1.ListRunsParams) {
	limit := defaultPageSize
	if params.Limit != nil && *params.Limit > 0 {
		limit = min(*params.Limit, maxPageSize)
	}
	offset := 0
	if params.Offset != nil && *params.Offset > 0 {
		offset = *params.Offset
	}

	svcParams := services.RunListParams{
		Limit:  uint64(limit),
		Offset: uint64(offset),
	}
	if params.Status != nil {
		statuses, ok := v1.ParseRunStatuses(*params.Status)
		if !ok {
			c.JSON(http.StatusBadRequest, v1.Error{Error: "invalid status filter"})
			return
		}
		svcParams.Statuses = statuses
	}

	result, err := h.runSrv.List(c.Request.Context(), svcParams)
	if err != nil {
		zap.S().Named("run_handler").Errorw("failed to list runs", "error", err)
		c.JSON(http.StatusInternalServerError, v1.Error{Error: "failed to list runs"})
		return
	}

	apiRuns := make([]v1.Run, 0, len(result.Runs))
	for _, r := range result.Runs {
		apiRuns = append(apiRuns, v1.NewRunFromModel(r))
	}

	c.JSON(http.StatusOK, v1.RunListResponse{
		Runs:   apiRuns,
		Total:  result.Total,
		Limit:  limit,
		Offset: offset,
	})
}

// GetRun returns one run
// (GET /runs/:id)
func (h *Handler) GetRun(c *gin.Context, id string) {
	run, err := h.runSrv.Get(c.Request.Context(), id)
	if err != nil {
		h.notFoundOr500(c, err, "failed to get run")
		return
	}
	c.JSON(http.StatusOK, v1.NewRunFromModel(*run))
}

// GetRunTerms returns the settled terms of a run
// (GET /runs/:id/terms)
func (h *Handler) GetRunTerms(c *gin.Context, id string) {
	terms, err := h.runSrv.Terms(c.Request.Context(), id)
	if err != nil {
		h.notFoundOr500(c, err, "failed to get run terms")
		return
	}

	apiTerms := make([]v1.Term, 0, len(terms))
	for _, t := range terms {
		apiTerms = append(apiTerms, v1.NewTermFromModel(t))
	}
	c.JSON(http.StatusOK, v1.TermListResponse{RunId: id, Terms: apiTerms})
}

func (h *Handler) notFoundOr500(c *gin.Context, err error, msg string) {
	if srvErrors.IsResourceNotFoundError(err) {
		c.JSON(http.StatusNotFound, v1.Error{Error: err.Error()})
		return
	}
	zap.S().Named("run_handler").Errorw(msg, "error", err)
	c.JSON(http.StatusInternalServerError, v1.Error{Error: msg})
}
