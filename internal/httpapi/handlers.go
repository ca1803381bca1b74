package httpapi

import (
	"net/http"

	"github.com/alexanderramin/itinera/internal/app"
	"github.com/alexanderramin/itinera/internal/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) createTrip(c *gin.Context) {
	var body createTripRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}

	req := app.CreateTripRequest{
		Title:       body.Title,
		Origin:      body.Origin,
		Destination: body.Destination,
		StartDate:   body.StartDate,
		EndDate:     body.EndDate,
		Currency:    body.Currency,
		TotalBudget: body.TotalBudget,
	}
	if len(body.Caps) > 0 {
		req.Caps = make(map[domain.Category]float64, len(body.Caps))
		for k, v := range body.Caps {
			req.Caps[domain.Category(k)] = v
		}
	}
	if p := body.Preferences; p != nil {
		req.Preferences = &domain.Preferences{WeightCost: p.WeightCost, WeightTime: p.WeightTime, WeightComfort: p.WeightComfort}
	}

	trip, err := s.svc.Trips.Create(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, toTripDTO(trip))
}

func (s *Server) listTrips(c *gin.Context) {
	trips, err := s.svc.Trips.List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	out := make([]tripDTO, len(trips))
	for i, t := range trips {
		out[i] = toTripDTO(t)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getTrip(c *gin.Context) {
	sum, err := s.svc.Trips.Summary(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toSummaryDTO(sum))
}

func (s *Server) deleteTrip(c *gin.Context) {
	if err := s.svc.Trips.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) adjustPreference(c *gin.Context) {
	var body adjustPreferenceRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	dim, err := domain.ParseWeightDimension(body.Weight)
	if err != nil {
		s.fail(c, err)
		return
	}
	prefs, err := s.svc.Trips.AdjustPreference(c.Request.Context(), c.Param("id"), dim, body.Value)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toPreferencesDTO(prefs))
}

func (s *Server) optimize(c *gin.Context) {
	resp, err := s.svc.Optimize.Optimize(c.Request.Context(), app.OptimizeRequest{TripID: c.Param("id")})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toOptimizeDTO(resp))
}

func (s *Server) preview(c *gin.Context) {
	var body previewRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	resp, err := s.svc.Optimize.Preview(c.Request.Context(), app.PreviewRequest{
		TripID:        c.Param("id"),
		WeightCost:    body.WeightCost,
		WeightTime:    body.WeightTime,
		WeightComfort: body.WeightComfort,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, previewResponseDTO{
		TripID:               resp.TripID,
		Current:              toTotalsDTO(resp.Current),
		Proposed:             toTotalsDTO(resp.Proposed),
		Segments:             toSegmentDTOs(resp.Segments),
		InfeasibleCategories: toIssueDTOs(resp.Infeasible),
		Budget:               toBudgetDTO(resp.Budget),
	})
}

func (s *Server) replan(c *gin.Context) {
	var body replanRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	resp, err := s.svc.Replan.Replan(c.Request.Context(), app.ReplanRequest{TripID: c.Param("id"), EventID: body.EventID})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toReplanDTO(resp))
}

func (s *Server) suggestActivities(c *gin.Context) {
	var body suggestRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	quotes, err := s.svc.Trips.SuggestActivities(c.Request.Context(), app.SuggestActivitiesRequest{
		TripID:    c.Param("id"),
		Interests: body.Interests,
		Budget:    body.Budget,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, toQuoteDTOs(quotes))
}

func (s *Server) listSegments(c *gin.Context) {
	ctx := c.Request.Context()
	if _, err := s.svc.Trips.GetByID(ctx, c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	segments, err := s.svc.Segments.ListByTrip(ctx, c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toSegmentDTOs(segments))
}

func (s *Server) recordEvent(c *gin.Context) {
	var body recordEventRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	e := &domain.Event{
		TripID:   c.Param("id"),
		Kind:     domain.EventKind(body.Kind),
		Severity: domain.Severity(body.Severity),
		Payload:  body.Payload,
	}
	if len(e.Payload) == 0 {
		e.Payload = []byte("{}")
	}
	if err := s.svc.Trips.RecordEvent(c.Request.Context(), e); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, toEventDTO(e))
}

func (s *Server) listEvents(c *gin.Context) {
	ctx := c.Request.Context()
	if _, err := s.svc.Trips.GetByID(ctx, c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	events, err := s.svc.Trips.ListEvents(ctx, c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	out := make([]eventDTO, len(events))
	for i, e := range events {
		out[i] = toEventDTO(e)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getSegment(c *gin.Context) {
	seg, err := s.svc.Segments.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toSegmentDTO(seg))
}

func (s *Server) setLock(c *gin.Context) {
	var body lockRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	seg, err := s.svc.Segments.SetLock(c.Request.Context(), c.Param("id"), *body.Locked)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toSegmentDTO(seg))
}

func (s *Server) listAlternatives(c *gin.Context) {
	quotes, err := s.svc.Segments.ListAlternatives(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toQuoteDTOs(quotes))
}

func (s *Server) replace(c *gin.Context) {
	var body replaceRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	seg, err := s.svc.Segments.Replace(c.Request.Context(), c.Param("id"), body.QuoteID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toSegmentDTO(seg))
}
