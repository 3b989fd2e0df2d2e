package fiber

import (
	"time"

	"site-analytics-service/internal/alerts/core/domain"
	"site-analytics-service/internal/alerts/core/usecase"
)

type MatchDTO struct {
	Exact string `json:"exact,omitempty"`
	Re    string `json:"re,omitempty"`
	Glob  string `json:"glob,omitempty" example:"/blog/*"`
}

type ConditionDTO struct {
	Op        string  `json:"op" example:"below"`
	Threshold float64 `json:"threshold" example:"10"`
}

type DefinitionRequest struct {
	Name      string       `json:"name" example:"blog-traffic-drop"`
	Domain    string       `json:"domain" example:"example.com"`
	Interval  string       `json:"interval" example:"5m"`
	Window    string       `json:"window" example:"1h"`
	Property  string       `json:"property,omitempty" example:"page"`
	Metric    string       `json:"metric" example:"views"`
	Match     MatchDTO     `json:"match"`
	Condition ConditionDTO `json:"condition"`
	Webhook   string       `json:"webhook,omitempty" example:"https://hooks.example.com/analytics"`
}

type CreateAlertResponse struct {
	ID string `json:"id" example:"7b0c3a52-8d55-4f0e-9a57-3f7f4b8c3b11"`
}

type AlertResponse struct {
	ID           string             `json:"id"`
	Name         string             `json:"name,omitempty"`
	Domain       string             `json:"domain"`
	Interval     string             `json:"interval"`
	State        string             `json:"state" example:"idle"`
	CreatedAt    time.Time          `json:"created_at"`
	LastDispatch *time.Time         `json:"last_dispatch,omitempty"`
	Dispatches   int64              `json:"dispatches"`
	Definition   *DefinitionRequest `json:"definition,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error" example:"invalid_definition"`
	Message string `json:"message" example:"invalid alert definition: name is required"`
}

func (r DefinitionRequest) toDomain() domain.Definition {
	return domain.Definition{
		Name:      r.Name,
		Domain:    r.Domain,
		Interval:  r.Interval,
		Window:    r.Window,
		Property:  r.Property,
		Metric:    r.Metric,
		Match:     domain.Match{Exact: r.Match.Exact, Re: r.Match.Re, Glob: r.Match.Glob},
		Condition: domain.Condition{Op: domain.Op(r.Condition.Op), Threshold: r.Condition.Threshold},
		Webhook:   r.Webhook,
	}
}

func toAlertResponse(a usecase.Alert) AlertResponse {
	resp := AlertResponse{
		ID:         a.ID.String(),
		Name:       a.Name,
		Domain:     a.Domain,
		Interval:   a.Interval.String(),
		State:      a.State.String(),
		CreatedAt:  a.CreatedAt.UTC(),
		Dispatches: a.Dispatches,
	}
	if !a.LastDispatch.IsZero() {
		t := a.LastDispatch.UTC()
		resp.LastDispatch = &t
	}
	if d := a.Definition; d != nil {
		resp.Definition = &DefinitionRequest{
			Name:      d.Name,
			Domain:    d.Domain,
			Interval:  d.Interval,
			Window:    d.Window,
			Property:  d.Property,
			Metric:    d.Metric,
			Match:     MatchDTO{Exact: d.Match.Exact, Re: d.Match.Re, Glob: d.Match.Glob},
			Condition: ConditionDTO{Op: string(d.Condition.Op), Threshold: d.Condition.Threshold},
			Webhook:   d.Webhook,
		}
	}
	return resp
}
