package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"aqiserve/monitoring"
	"aqiserve/predictor"
	"aqiserve/schema"
)

// Predictor is what the prediction endpoint needs. *predictor.Predictor
// satisfies it.
type Predictor interface {
	Predict(ctx context.Context, rec schema.Record) (predictor.Result, error)
	Schema() *schema.Schema
}

type predictionResponse struct {
	PredictedAQI float64 `json:"predicted_AQI"`
}

type validationResponse struct {
	Detail schema.ValidationErrors `json:"detail"`
}

// NewRouter registers the single public route. Request metrics wrap the
// whole router so 404 and 405 responses are counted too.
func NewRouter(p Predictor, logger *zap.Logger, metrics *monitoring.Metrics) http.Handler {
	router := mux.NewRouter()
	h := &predictHandler{predictor: p, logger: logger}
	router.Handle("/predict", h).Methods(http.MethodPost)
	if metrics == nil {
		return router
	}
	return metricsMiddleware(metrics, router)(router)
}

type predictHandler struct {
	predictor Predictor
	logger    *zap.Logger
}

func (h *predictHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		respondError(w, http.StatusBadRequest, "could not read request body")
		return
	}

	rec, err := h.predictor.Schema().Decode(bytes.NewReader(body))
	if err != nil {
		var verrs schema.ValidationErrors
		if errors.As(err, &verrs) {
			respondJSON(w, http.StatusUnprocessableEntity, validationResponse{Detail: verrs})
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.predictor.Predict(r.Context(), rec)
	if err != nil {
		h.logger.Error("prediction failed",
			zap.String("request_id", GetRequestID(r.Context())),
			zap.String("schema", h.predictor.Schema().String()),
			zap.Error(err),
		)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, predictionResponse{PredictedAQI: res.Value})
}

// unmatchedRoute labels requests no route matched, keeping the label set
// bounded whatever paths clients probe.
const unmatchedRoute = "unmatched"

func metricsMiddleware(metrics *monitoring.Metrics, router *mux.Router) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			route := unmatchedRoute
			var match mux.RouteMatch
			if router.Match(r, &match) && match.Route != nil {
				if tpl, err := match.Route.GetPathTemplate(); err == nil {
					route = tpl
				}
			} else if errors.Is(match.MatchErr, mux.ErrMethodMismatch) {
				route = r.URL.Path
			}
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)
			metrics.ObserveRequest(r.Method, route, wrapped.statusCode, time.Since(start))
		})
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
