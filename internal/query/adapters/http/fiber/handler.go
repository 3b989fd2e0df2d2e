package fiber

import (
	"context"
	"errors"
	"net/http"
	"time"

	"site-analytics-service/internal/query/core/domain"
	"site-analytics-service/internal/query/core/usecase"

	"github.com/gofiber/fiber/v2"
)

type QueryUseCase interface {
	Query(ctx context.Context, in usecase.QueryInput) (*domain.QueryResult, error)
	QueryProps(ctx context.Context, in usecase.PropsInput) (*domain.PropsResult, error)
}

type QueryHandler struct {
	uc QueryUseCase
}

func NewQueryHandler(uc QueryUseCase) *QueryHandler {
	return &QueryHandler{uc: uc}
}

// Query godoc
// @Summary Query a metric time series
// @Description Returns per-metric series grouped by the observed values of one property
// @Tags Query
// @Accept json
// @Produce json
// @Param request body QueryRequest true "Query"
// @Success 200 {object} QueryResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /query [post]
func (h *QueryHandler) Query(c *fiber.Ctx) error {
	var req QueryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_json",
			Message: err.Error(),
		})
	}
	if req.Range.From == 0 && req.Range.To == 0 {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_query",
			Message: "range is required",
		})
	}

	in := usecase.QueryInput{
		Domain:   req.Domain,
		From:     fromMillis(req.Range.From),
		To:       fromMillis(req.Range.To),
		Metrics:  req.Metrics,
		Property: req.Property,
	}
	if req.Match != nil {
		in.Match = domain.FromText(req.Match.Text, req.Match.IsRe)
	}

	res, err := h.uc.Query(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}

	resp := QueryResponse{
		Elapsed: res.Elapsed.String(),
		Result:  make([]MetricResultResponse, 0, len(res.Result)),
	}
	for _, mr := range res.Result {
		values := make(orderedObject, 0, len(mr.Values))
		for _, g := range mr.Values {
			points := make([]PointResponse, len(g.Points))
			for i, p := range g.Points {
				points[i] = PointResponse{Timestamp: p.Timestamp.UnixMilli(), Value: p.Value}
			}
			values = append(values, member{Key: g.Key, Value: points})
		}
		resp.Result = append(resp.Result, MetricResultResponse{
			Metric: string(mr.Metric),
			Values: values,
		})
	}

	return c.Status(http.StatusOK).JSON(resp)
}

// QueryProps godoc
// @Summary Query several properties at once
// @Description Returns property -> metric -> value series sharing one timestamps array
// @Tags Query
// @Accept json
// @Produce json
// @Param request body PropsRequest true "Props query"
// @Success 200 {object} PropsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /query/props [post]
func (h *QueryHandler) QueryProps(c *fiber.Ctx) error {
	var req PropsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_json",
			Message: err.Error(),
		})
	}
	if req.Range.From == 0 && req.Range.To == 0 {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_query",
			Message: "range is required",
		})
	}

	in := usecase.PropsInput{
		Domain: req.Domain,
		From:   fromMillis(req.Range.From),
		To:     fromMillis(req.Range.To),
		Props:  make([]usecase.PropInput, 0, len(req.Props)),
	}
	for _, p := range req.Props {
		pi := usecase.PropInput{Property: p.Property}
		for _, m := range p.Metrics {
			sel, err := domain.NewSelect(m.Select.Exact, m.Select.Re, m.Select.Glob)
			if err != nil {
				return writeError(c, err)
			}
			pi.Metrics = append(pi.Metrics, usecase.MetricInput{Metric: m.Metric, Select: sel})
		}
		in.Props = append(in.Props, pi)
	}

	res, err := h.uc.QueryProps(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}

	resp := PropsResponse{
		Elapsed:    res.Elapsed.String(),
		Timestamps: make([]int64, len(res.Timestamps)),
		Props:      make(orderedObject, 0, len(res.Props)),
	}
	for i, ts := range res.Timestamps {
		resp.Timestamps[i] = ts.UnixMilli()
	}
	for _, pr := range res.Props {
		metrics := make(orderedObject, 0, len(pr.Metrics))
		for _, mr := range pr.Metrics {
			values := make(orderedObject, 0, len(mr.Values))
			for _, kv := range mr.Values {
				values = append(values, member{Key: kv.Key, Value: kv.Values})
			}
			metrics = append(metrics, member{Key: string(mr.Metric), Value: values})
		}
		resp.Props = append(resp.Props, member{Key: string(pr.Property), Value: metrics})
	}

	return c.Status(http.StatusOK).JSON(resp)
}

func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, usecase.ErrInvalidQuery):
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_query",
			Message: err.Error(),
		})
	case errors.Is(err, usecase.ErrInvalidFilter):
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_filter",
			Message: err.Error(),
		})
	case errors.Is(err, usecase.ErrSourceUnavailable):
		return c.Status(http.StatusServiceUnavailable).JSON(ErrorResponse{
			Error: "source_unavailable",
		})
	default:
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Error: "internal_server_error",
		})
	}
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
