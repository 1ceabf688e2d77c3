package endpoints

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"mq-dashboard/internal/domain"
	"mq-dashboard/internal/util"
)

const defaultHistoryLimit = 100

// History pages through samples written by the dashboard's recorder.
type History struct {
	Response APIResponse
	logger   *util.Logger
	store    domain.SampleStore
}

func (h *History) Init(store domain.SampleStore, webLogger *util.Logger) {
	h.store = store
	h.logger = webLogger
}

func (h *History) GetHistoryHandler(w http.ResponseWriter, r *http.Request) {

	if r.Method != http.MethodGet {
		h.logger.Error("Method Not Allowed. Only GET requests are supported", zap.String("method", r.Method))
		h.Response.WriteErrorResponseWithStatusCode(w, ErrMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	routeParamValue := mux.Vars(r)

	source, err := domain.ParseSource(routeParamValue["source"])
	if err != nil {
		h.logger.Error("While getting source from URL", zap.Error(err))
		h.Response.WriteErrorResponseWithStatusCode(w, err, http.StatusBadRequest)
		return
	}

	limit, err := strconv.Atoi(routeParamValue["limit"])
	if err != nil {
		h.logger.Error("While getting limit from URL", zap.Error(err))
		h.Response.WriteErrorResponseWithStatusCode(w, ErrInvalidParameters, http.StatusBadRequest)
		return
	}

	offset, err := strconv.Atoi(routeParamValue["offset"])
	if err != nil {
		h.logger.Error("While getting offset from URL", zap.Error(err))
		h.Response.WriteErrorResponseWithStatusCode(w, ErrInvalidParameters, http.StatusBadRequest)
		return
	}

	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}

	samples, err := h.store.GetSamples(r.Context(), source, limit, offset)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			h.logger.Warn("Context cancelled")
			h.Response.WriteErrorResponseWithStatusCode(w, ErrRequestCancelled, http.StatusRequestTimeout)
			return
		}
		h.logger.Error("Occurred while GetSamples()", zap.Error(err))
		h.Response.WriteErrorResponse(w, err)
		return
	}

	if len(samples) == 0 {
		h.logger.Warn("No recorded samples", zap.String("source", string(source)), zap.Int("offset", offset))
		h.Response.WriteErrorResponseWithStatusCode(w, ErrNoSamplesAvailable, http.StatusNotFound)
		return
	}

	h.Response.WriteResultResponse(w, samples)
}
