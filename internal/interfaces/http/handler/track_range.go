package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	einvapp "github.com/poschain/backend/internal/application/einvoice"
	"github.com/poschain/backend/internal/domain/einvoice"
)

// TrackRangeHandler handles invoice number range API endpoints
type TrackRangeHandler struct {
	BaseHandler
	trackService *einvapp.TrackService
}

// NewTrackRangeHandler creates a new TrackRangeHandler
func NewTrackRangeHandler(trackService *einvapp.TrackService) *TrackRangeHandler {
	return &TrackRangeHandler{
		trackService: trackService,
	}
}

// AddTrackRangeRequest registers a government-assigned number range
type AddTrackRangeRequest struct {
	TrackCode1  string `json:"track_code1" binding:"required,len=2"`
	TrackCode2  string `json:"track_code2" binding:"required,len=2"`
	StartNumber int64  `json:"start_number" binding:"required,min=1"`
	EndNumber   int64  `json:"end_number" binding:"required,min=1"`
	IssueDate   string `json:"issue_date" binding:"required,datetime=2006-01-02"`
}

// TrackRangeResponse represents a number range in API responses
type TrackRangeResponse struct {
	ID            string    `json:"id"`
	TrackCode1    string    `json:"track_code1"`
	TrackCode2    string    `json:"track_code2"`
	StartNumber   int64     `json:"start_number"`
	EndNumber     int64     `json:"end_number"`
	CurrentNumber int64     `json:"current_number"`
	Remaining     int64     `json:"remaining"`
	IssueDate     time.Time `json:"issue_date"`
	Active        bool      `json:"active"`
	Exhausted     bool      `json:"exhausted"`
	CreatedAt     time.Time `json:"created_at"`
}

// CapacityResponse reports the remaining pool of serials
type CapacityResponse struct {
	Remaining int64 `json:"remaining"`
}

// Add handles POST /track-ranges
func (h *TrackRangeHandler) Add(c *gin.Context) {
	var req AddTrackRangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	issueDate, err := time.Parse("2006-01-02", req.IssueDate)
	if err != nil {
		h.BadRequest(c, "issue_date must be formatted as YYYY-MM-DD")
		return
	}

	rng, err := h.trackService.AddRange(c.Request.Context(), einvapp.AddRangeRequest{
		TrackCode1:  req.TrackCode1,
		TrackCode2:  req.TrackCode2,
		StartNumber: req.StartNumber,
		EndNumber:   req.EndNumber,
		IssueDate:   issueDate,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toTrackRangeResponse(rng))
}

// List handles GET /track-ranges
func (h *TrackRangeHandler) List(c *gin.Context) {
	includeInactive := c.Query("include_inactive") == "true"

	ranges, err := h.trackService.ListRanges(c.Request.Context(), includeInactive)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]TrackRangeResponse, 0, len(ranges))
	for i := range ranges {
		items = append(items, toTrackRangeResponse(&ranges[i]))
	}
	h.Success(c, items)
}

// Capacity handles GET /track-ranges/capacity
func (h *TrackRangeHandler) Capacity(c *gin.Context) {
	remaining, err := h.trackService.RemainingCapacity(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, CapacityResponse{Remaining: remaining})
}

// Deactivate handles POST /track-ranges/:id/deactivate
func (h *TrackRangeHandler) Deactivate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}

	rng, err := h.trackService.Deactivate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toTrackRangeResponse(rng))
}

// RegisterRoutes registers track range routes
func (h *TrackRangeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/track-ranges")
	group.POST("", h.Add)
	group.GET("", h.List)
	group.GET("/capacity", h.Capacity)
	group.POST("/:id/deactivate", h.Deactivate)
}

func toTrackRangeResponse(rng *einvoice.TrackNumberRange) TrackRangeResponse {
	return TrackRangeResponse{
		ID:            rng.ID.String(),
		TrackCode1:    rng.TrackCode1,
		TrackCode2:    rng.TrackCode2,
		StartNumber:   rng.StartNumber,
		EndNumber:     rng.EndNumber,
		CurrentNumber: rng.CurrentNumber,
		Remaining:     rng.Remaining(),
		IssueDate:     rng.IssueDate,
		Active:        rng.Active,
		Exhausted:     rng.IsExhausted(),
		CreatedAt:     rng.CreatedAt,
	}
}
