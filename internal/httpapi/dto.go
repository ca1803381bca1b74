package httpapi

import (
	"encoding/json"
	"time"

	"github.com/alexanderramin/itinera/internal/app"
	"github.com/alexanderramin/itinera/internal/domain"
)

type tripDTO struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	Currency    string    `json:"currency"`
	TotalBudget float64   `json:"total_budget"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toTripDTO(t *domain.Trip) tripDTO {
	return tripDTO{
		ID:          t.ID,
		Title:       t.Title,
		Origin:      t.Origin,
		Destination: t.Destination,
		StartDate:   t.StartDate.Format(dateLayout),
		EndDate:     t.EndDate.Format(dateLayout),
		Currency:    t.Currency,
		TotalBudget: t.TotalBudget,
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

type segmentDTO struct {
	ID           string         `json:"id"`
	TripID       string         `json:"trip_id"`
	Category     string         `json:"category"`
	Title        string         `json:"title"`
	Provider     string         `json:"provider"`
	StartTS      time.Time      `json:"start_ts"`
	EndTS        time.Time      `json:"end_ts"`
	DurationMin  int            `json:"duration_min"`
	ComfortScore float64        `json:"comfort_score"`
	Price        float64        `json:"price"`
	Currency     string         `json:"currency"`
	Locked       bool           `json:"locked"`
	Status       string         `json:"status"`
	Attributes   map[string]any `json:"attributes,omitempty"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func toSegmentDTO(s *domain.Segment) segmentDTO {
	return segmentDTO{
		ID:           s.ID,
		TripID:       s.TripID,
		Category:     string(s.Category),
		Title:        s.Title,
		Provider:     s.Provider,
		StartTS:      s.StartTS,
		EndTS:        s.EndTS,
		DurationMin:  s.DurationMin,
		ComfortScore: s.ComfortScore,
		Price:        s.Price,
		Currency:     s.Currency,
		Locked:       s.Locked,
		Status:       string(s.Status),
		Attributes:   s.Attributes,
		UpdatedAt:    s.UpdatedAt,
	}
}

func toSegmentDTOs(segments []*domain.Segment) []segmentDTO {
	out := make([]segmentDTO, len(segments))
	for i, s := range segments {
		out[i] = toSegmentDTO(s)
	}
	return out
}

type quoteDTO struct {
	ID           string         `json:"id"`
	Category     string         `json:"category"`
	Title        string         `json:"title"`
	Source       string         `json:"source"`
	Price        float64        `json:"price"`
	Currency     string         `json:"currency"`
	DurationMin  int            `json:"duration_min"`
	ComfortScore float64        `json:"comfort_score"`
	Attributes   map[string]any `json:"attributes,omitempty"`
}

func toQuoteDTOs(quotes []*domain.Quote) []quoteDTO {
	out := make([]quoteDTO, len(quotes))
	for i, q := range quotes {
		out[i] = quoteDTO{
			ID:           q.ID,
			Category:     string(q.Category),
			Title:        q.Title,
			Source:       q.Source,
			Price:        q.Price,
			Currency:     q.Currency,
			DurationMin:  q.DurationMin,
			ComfortScore: q.ComfortScore,
			Attributes:   q.Attributes,
		}
	}
	return out
}

type preferencesDTO struct {
	WeightCost    float64 `json:"weight_cost"`
	WeightTime    float64 `json:"weight_time"`
	WeightComfort float64 `json:"weight_comfort"`
}

func toPreferencesDTO(p *domain.Preferences) *preferencesDTO {
	if p == nil {
		return nil
	}
	return &preferencesDTO{WeightCost: p.WeightCost, WeightTime: p.WeightTime, WeightComfort: p.WeightComfort}
}

type issueDTO struct {
	Category string `json:"category"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

func toIssueDTOs(issues []app.CategoryIssue) []issueDTO {
	out := make([]issueDTO, len(issues))
	for i, is := range issues {
		out[i] = issueDTO{Category: string(is.Category), Code: string(is.Code), Message: is.Message}
	}
	return out
}

type budgetDTO struct {
	TotalBudget float64  `json:"total_budget"`
	Total       float64  `json:"total"`
	FixedTotal  float64  `json:"fixed_total"`
	Remaining   float64  `json:"remaining"`
	Downgrades  int      `json:"downgrades"`
	Feasible    bool     `json:"feasible"`
	Deficit     *float64 `json:"deficit,omitempty"`
}

func toBudgetDTO(b app.BudgetOutcome) budgetDTO {
	dto := budgetDTO{
		TotalBudget: b.TotalBudget,
		Total:       b.Total,
		FixedTotal:  b.FixedTotal,
		Remaining:   b.Remaining(),
		Downgrades:  b.Downgrades,
		Feasible:    b.Infeasible == nil,
	}
	if b.Infeasible != nil {
		d := b.Infeasible.Deficit
		dto.Deficit = &d
	}
	return dto
}

type totalsDTO struct {
	Segments    int     `json:"segments"`
	Price       float64 `json:"price"`
	DurationMin int     `json:"duration_min"`
	AvgComfort  float64 `json:"avg_comfort"`
}

func toTotalsDTO(t app.ItineraryTotals) totalsDTO {
	return totalsDTO{Segments: t.Segments, Price: t.Price, DurationMin: t.DurationMin, AvgComfort: t.AvgComfort}
}

type optimizeResponseDTO struct {
	TripID               string       `json:"trip_id"`
	Status               string       `json:"status"`
	Segments             []segmentDTO `json:"segments"`
	Changed              []string     `json:"changed"`
	InfeasibleCategories []issueDTO   `json:"infeasible_categories"`
	Seeded               []string     `json:"seeded,omitempty"`
	Budget               budgetDTO    `json:"budget"`
}

func toOptimizeDTO(r *app.OptimizeResponse) optimizeResponseDTO {
	seeded := make([]string, len(r.Seeded))
	for i, c := range r.Seeded {
		seeded[i] = string(c)
	}
	changed := r.Changed
	if changed == nil {
		changed = []string{}
	}
	return optimizeResponseDTO{
		TripID:               r.TripID,
		Status:               string(r.Status),
		Segments:             toSegmentDTOs(r.Segments),
		Changed:              changed,
		InfeasibleCategories: toIssueDTOs(r.Infeasible),
		Seeded:               seeded,
		Budget:               toBudgetDTO(r.Budget),
	}
}

type previewResponseDTO struct {
	TripID               string       `json:"trip_id"`
	Current              totalsDTO    `json:"current"`
	Proposed             totalsDTO    `json:"proposed"`
	Segments             []segmentDTO `json:"segments"`
	InfeasibleCategories []issueDTO   `json:"infeasible_categories"`
	Budget               budgetDTO    `json:"budget"`
}

type changeDTO struct {
	SegmentID   string   `json:"segment_id"`
	Category    string   `json:"category"`
	Reasons     []string `json:"reasons"`
	PriceBefore float64  `json:"price_before"`
	PriceAfter  float64  `json:"price_after"`
	TitleBefore string   `json:"title_before"`
	TitleAfter  string   `json:"title_after"`
}

type segmentIssueDTO struct {
	SegmentID string `json:"segment_id"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

type replanResponseDTO struct {
	TripID    string            `json:"trip_id"`
	EventID   string            `json:"event_id"`
	Kind      string            `json:"kind"`
	Impacted  []string          `json:"impacted"`
	Changed   []segmentDTO      `json:"changed"`
	Unchanged []segmentDTO      `json:"unchanged"`
	Changes   []changeDTO       `json:"changes"`
	Issues    []segmentIssueDTO `json:"issues"`
	Budget    budgetDTO         `json:"budget"`
}

func toReplanDTO(r *app.ReplanResponse) replanResponseDTO {
	impacted := r.Impacted
	if impacted == nil {
		impacted = []string{}
	}
	changes := make([]changeDTO, len(r.Changes))
	for i, c := range r.Changes {
		reasons := make([]string, len(c.Reasons))
		for j, reason := range c.Reasons {
			reasons[j] = string(reason)
		}
		changes[i] = changeDTO{
			SegmentID:   c.SegmentID,
			Category:    string(c.Category),
			Reasons:     reasons,
			PriceBefore: c.PriceBefore,
			PriceAfter:  c.PriceAfter,
			TitleBefore: c.TitleBefore,
			TitleAfter:  c.TitleAfter,
		}
	}
	issues := make([]segmentIssueDTO, len(r.Issues))
	for i, is := range r.Issues {
		issues[i] = segmentIssueDTO{SegmentID: is.SegmentID, Code: is.Code, Message: is.Message}
	}
	return replanResponseDTO{
		TripID:    r.TripID,
		EventID:   r.EventID,
		Kind:      string(r.Kind),
		Impacted:  impacted,
		Changed:   toSegmentDTOs(r.Changed),
		Unchanged: toSegmentDTOs(r.Unchanged),
		Changes:   changes,
		Issues:    issues,
		Budget:    toBudgetDTO(r.Budget),
	}
}

type spendDTO struct {
	Category string   `json:"category"`
	Cap      *float64 `json:"cap"`
	Spent    float64  `json:"spent"`
	Over     bool     `json:"over"`
}

type summaryDTO struct {
	Trip        tripDTO         `json:"trip"`
	Preferences *preferencesDTO `json:"preferences"`
	Segments    []segmentDTO    `json:"segments"`
	Totals      totalsDTO       `json:"totals"`
	Spend       []spendDTO      `json:"spend"`
	Remaining   float64         `json:"remaining"`
	OverBudget  bool            `json:"over_budget"`
}

func toSummaryDTO(s *app.TripSummary) summaryDTO {
	spend := make([]spendDTO, len(s.Spend))
	for i, c := range s.Spend {
		spend[i] = spendDTO{Category: string(c.Category), Cap: c.Cap, Spent: c.Spent, Over: c.Over()}
	}
	return summaryDTO{
		Trip:        toTripDTO(s.Trip),
		Preferences: toPreferencesDTO(s.Preferences),
		Segments:    toSegmentDTOs(s.Segments),
		Totals:      toTotalsDTO(s.Totals),
		Spend:       spend,
		Remaining:   s.Remaining,
		OverBudget:  s.OverBudget,
	}
}

type eventDTO struct {
	ID        string          `json:"id"`
	TripID    string          `json:"trip_id"`
	Kind      string          `json:"kind"`
	Severity  string          `json:"severity"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

func toEventDTO(e *domain.Event) eventDTO {
	return eventDTO{
		ID:        e.ID,
		TripID:    e.TripID,
		Kind:      string(e.Kind),
		Severity:  string(e.Severity),
		Payload:   e.Payload,
		CreatedAt: e.CreatedAt,
	}
}

// Requests.

type createTripRequest struct {
	Title       string             `json:"title"`
	Origin      string             `json:"origin" binding:"required"`
	Destination string             `json:"destination" binding:"required"`
	StartDate   string             `json:"start_date" binding:"required"`
	EndDate     string             `json:"end_date" binding:"required"`
	Currency    string             `json:"currency"`
	TotalBudget float64            `json:"total_budget" binding:"required,gt=0"`
	Caps        map[string]float64 `json:"caps"`
	Preferences *preferencesDTO    `json:"preferences"`
}

type adjustPreferenceRequest struct {
	Weight string  `json:"weight" binding:"required,oneof=cost time comfort"`
	Value  float64 `json:"value"`
}

type previewRequest struct {
	WeightCost    float64 `json:"weight_cost"`
	WeightTime    float64 `json:"weight_time"`
	WeightComfort float64 `json:"weight_comfort"`
}

type replanRequest struct {
	EventID string `json:"event_id" binding:"required"`
}

type recordEventRequest struct {
	Kind     string          `json:"kind" binding:"required"`
	Severity string          `json:"severity"`
	Payload  json.RawMessage `json:"payload"`
}

type lockRequest struct {
	Locked *bool `json:"locked" binding:"required"`
}

type replaceRequest struct {
	QuoteID string `json:"quote_id" binding:"required"`
}

type suggestRequest struct {
	Interests []string `json:"interests"`
	Budget    float64  `json:"budget" binding:"gte=0"`
}
