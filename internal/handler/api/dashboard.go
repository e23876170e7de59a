package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"SentimentOracle/internal/domain/models"
	domrepo "SentimentOracle/internal/domain/repository"
	"SentimentOracle/internal/service/metrics"
	"SentimentOracle/internal/service/ratelimit"
	"SentimentOracle/internal/services/overlay"
	xhttp "SentimentOracle/pkg/http"
	xlogger "SentimentOracle/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

func init() {
	_ = xhttp.RegisterValidation("timeframe", func(fl validator.FieldLevel) bool {
		return domrepo.IsValidTimeframe(fl.Field().String())
	}, "%s must be a supported timeframe")
}

// Dashboard is the use case surface the handlers need.
type Dashboard interface {
	RunCycle(ctx context.Context, tf domrepo.Timeframe) (*models.Snapshot, error)
	View(ctx context.Context, tf domrepo.Timeframe, policy overlay.Policy) (*models.Snapshot, error)
	Sentiment() (models.SentimentResult, time.Time)
	History(since time.Time, limit int) []models.HistoryRow
}

// DashboardHandler serves the JSON API behind the dashboard page.
type DashboardHandler struct {
	logger    *xlogger.Logger
	dash      Dashboard
	limiter   *ratelimit.Limiter
	defaultTF domrepo.Timeframe
}

func NewDashboardHandler(logger *xlogger.Logger, dash Dashboard, limiter *ratelimit.Limiter, defaultRange string) *DashboardHandler {
	metrics.Register()
	return &DashboardHandler{
		logger:    logger,
		dash:      dash,
		limiter:   limiter,
		defaultTF: domrepo.NormalizeTimeframe(defaultRange),
	}
}

func (h *DashboardHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/timeframes", h.Timeframes)
	g.GET("/dashboard", h.Dashboard)
	g.GET("/sentiment", h.Sentiment)
	g.GET("/history", h.History)
	g.POST("/refresh", h.Refresh)
}

type timeframesResponse struct {
	Timeframes []domrepo.Timeframe `json:"timeframes"`
	Default    string              `json:"default"`
}

func (h *DashboardHandler) Timeframes(c echo.Context) error {
	return xhttp.SuccessResponse(c, timeframesResponse{
		Timeframes: domrepo.Timeframes(),
		Default:    h.defaultTF.Label,
	})
}

func (h *DashboardHandler) Dashboard(c echo.Context) error {
	defer observe("dashboard", time.Now())
	req := &models.DashboardRequest{}
	if verr := xhttp.ReadAndValidateQuery(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	tf := h.timeframe(req.Range)
	snap, err := h.dash.View(c.Request().Context(), tf, overlay.Policy(req.Policy))
	if err != nil {
		metrics.APIErrors.WithLabelValues("dashboard").Inc()
		h.logger.Error("dashboard view error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalErrorf("could not build %s dashboard", tf.Label).WithError(err))
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return xhttp.SuccessResponse(c, snap)
}

type sentimentResponse struct {
	Sentiment models.SentimentResult `json:"sentiment"`
	UpdatedAt *time.Time             `json:"updated_at,omitempty"`
}

func (h *DashboardHandler) Sentiment(c echo.Context) error {
	res, updated := h.dash.Sentiment()
	out := sentimentResponse{Sentiment: res}
	if !updated.IsZero() {
		out.UpdatedAt = &updated
	}
	return xhttp.SuccessResponse(c, out)
}

func (h *DashboardHandler) History(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateQuery(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	var since time.Time
	if req.Since != "" {
		t, ok := xhttp.ParseTime(req.Since)
		if !ok {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("since %q must be RFC3339 or unix seconds", req.Since).
				WithParam("since", req.Since))
		}
		since = t
	}
	rows := h.dash.History(since, req.Limit)
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *DashboardHandler) Refresh(c echo.Context) error {
	defer observe("refresh", time.Now())
	if h.limiter != nil && !h.limiter.Allow(c.RealIP()) {
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("refresh rate limit exceeded"))
	}
	req := &models.RefreshRequest{}
	if verr := xhttp.ReadAndValidateQuery(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	snap, err := h.dash.RunCycle(c.Request().Context(), h.timeframe(req.Range))
	if err != nil {
		metrics.APIErrors.WithLabelValues("refresh").Inc()
		h.logger.Error("manual refresh failed", xlogger.Error(err))
		var pfe *models.PriceFetchError
		switch {
		case errors.Is(err, models.ErrInvalidInput):
			return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_INVALID_INPUT", "", err.Error(), http.StatusInternalServerError).WithError(err))
		case errors.As(err, &pfe):
			return xhttp.AppErrorResponse(c, xhttp.ServiceUnavailableError("price source unavailable").
				WithParam("symbol", pfe.Symbol).WithParam("interval", pfe.Interval).WithError(err))
		case errors.Is(err, context.DeadlineExceeded):
			return xhttp.AppErrorResponse(c, xhttp.ServiceUnavailableError("refresh timed out").WithError(err))
		}
		return xhttp.AppErrorResponse(c, xhttp.InternalError("refresh failed").WithError(err))
	}
	return xhttp.SuccessResponse(c, snap)
}

func (h *DashboardHandler) timeframe(label string) domrepo.Timeframe {
	if tf, ok := domrepo.LookupTimeframe(label); ok {
		return tf
	}
	return h.defaultTF
}

func observe(endpoint string, start time.Time) {
	metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}
