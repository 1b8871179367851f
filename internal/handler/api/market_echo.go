package api

import (
	"context"
	"errors"
	"time"

	models "EquityPulse/internal/domain/models"
	icache "EquityPulse/internal/service/cache"
	imetrics "EquityPulse/internal/service/metrics"
	"EquityPulse/internal/service/ratelimit"
	"EquityPulse/internal/services/analytics"
	"EquityPulse/internal/usecase"
	xhttp "EquityPulse/pkg/http"
	xlogger "EquityPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// MarketEchoHandler exposes the analytics API over Echo.
type MarketEchoHandler struct {
	logger  *xlogger.Logger
	market  *usecase.MarketAnalytics
	health  func(context.Context) error
	limiter *ratelimit.Limiter
	cache   *icache.TTLCache
}

func NewMarketEchoHandler(logger *xlogger.Logger, market *usecase.MarketAnalytics, health func(context.Context) error) *MarketEchoHandler {
	imetrics.Register()
	return &MarketEchoHandler{
		logger:  logger,
		market:  market,
		health:  health,
		limiter: ratelimit.New(),
		cache:   icache.NewTTLCache(),
	}
}

func (h *MarketEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api", h.rateLimit)
	g.GET("/companies", h.Companies)
	g.GET("/data/:symbol", h.Prices)
	g.GET("/summary/:symbol", h.Summary)
	g.GET("/compare", h.Compare)
	g.GET("/top-movers", h.TopMovers)
	g.GET("/analytics/:symbol", h.Analytics)
	g.GET("/prediction/:symbol", h.Forecast)
	g.GET("/sentiment/:symbol", h.Sentiment)
	e.GET("/api/health", h.Health)
}

// rateLimit applies a per-client token bucket: burst 20, 10 req/s refill.
func (h *MarketEchoHandler) rateLimit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !h.limiter.Allow(c.RealIP(), 20, 10) {
			return xhttp.DataResponse(c, 429, "rate limit exceeded")
		}
		return next(c)
	}
}

func (h *MarketEchoHandler) Companies(c echo.Context) error {
	const key = "companies"
	if v, ok := h.cache.Get(key); ok {
		return xhttp.SuccessResponse(c, v)
	}
	res, err := h.market.Companies(c.Request().Context())
	if err != nil {
		return h.fail(c, "companies", err)
	}
	h.cache.Set(key, res, time.Minute)
	return xhttp.SuccessResponse(c, res)
}

func (h *MarketEchoHandler) Prices(c echo.Context) error {
	req := &models.PricesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.market.Prices(c.Request().Context(), req.Symbol, req.Days)
	if err != nil {
		return h.fail(c, "prices", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *MarketEchoHandler) Summary(c echo.Context) error {
	start := time.Now()
	req := &models.SummaryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.market.Summary(c.Request().Context(), req.Symbol)
	imetrics.AnalyticsLatency.WithLabelValues("summary").Observe(time.Since(start).Seconds())
	if err != nil {
		return h.fail(c, "summary", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *MarketEchoHandler) Compare(c echo.Context) error {
	start := time.Now()
	req := &models.CompareRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.market.Compare(c.Request().Context(), req.Symbol1, req.Symbol2)
	imetrics.AnalyticsLatency.WithLabelValues("compare").Observe(time.Since(start).Seconds())
	if err != nil {
		return h.fail(c, "compare", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *MarketEchoHandler) TopMovers(c echo.Context) error {
	req := &models.TopMoversRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.market.TopMovers(c.Request().Context(), req.Limit)
	if err != nil {
		return h.fail(c, "top_movers", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *MarketEchoHandler) Analytics(c echo.Context) error {
	req := &models.AnalyticsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.market.Analytics(c.Request().Context(), req.Symbol)
	if err != nil {
		return h.fail(c, "analytics", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *MarketEchoHandler) Forecast(c echo.Context) error {
	start := time.Now()
	req := &models.ForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.market.Forecast(c.Request().Context(), req.Symbol, req.Days)
	imetrics.AnalyticsLatency.WithLabelValues("prediction").Observe(time.Since(start).Seconds())
	if err != nil {
		return h.fail(c, "prediction", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *MarketEchoHandler) Sentiment(c echo.Context) error {
	req := &models.SentimentRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.market.Sentiment(c.Request().Context(), req.Symbol)
	if err != nil {
		return h.fail(c, "sentiment", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *MarketEchoHandler) Health(c echo.Context) error {
	status := map[string]string{"status": "ok"}
	if h.health != nil {
		if err := h.health(c.Request().Context()); err != nil {
			status["status"] = "degraded"
			status["detail"] = err.Error()
			return xhttp.DataResponse(c, 503, status)
		}
	}
	return xhttp.SuccessResponse(c, status)
}

// fail maps domain errors onto API responses.
func (h *MarketEchoHandler) fail(c echo.Context, endpoint string, err error) error {
	imetrics.AnalyticsErrors.WithLabelValues(endpoint).Inc()

	switch {
	case errors.Is(err, usecase.ErrUnknownSymbol):
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no data for symbol"))
	case errors.Is(err, analytics.ErrInsufficientData):
		return xhttp.AppErrorResponse(c, xhttp.UnprocessableError("not enough history for this computation"))
	case errors.Is(err, analytics.ErrDegenerateInput):
		return xhttp.AppErrorResponse(c, xhttp.UnprocessableError("series is numerically degenerate"))
	case errors.Is(err, analytics.ErrMisalignedSeries):
		return xhttp.AppErrorResponse(c, xhttp.UnprocessableError("series share too few trading dates"))
	default:
		h.logger.Error(endpoint+" usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
}
