package dashboard

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KI7MT/ki7mt-sunspot-dash/internal/common"
	"github.com/KI7MT/ki7mt-sunspot-dash/internal/imagery"
	"github.com/KI7MT/ki7mt-sunspot-dash/internal/response"
)

// Handler handles HTTP requests for the dashboard
type Handler struct {
	dispatcher *Dispatcher
	stats      *common.Stats
	source     string
	loadedAt   time.Time
}

// NewHandler creates a new dashboard handler. source describes where the
// dataset came from and is only reported, never re-read.
func NewHandler(dispatcher *Dispatcher, stats *common.Stats, source string) *Handler {
	return &Handler{
		dispatcher: dispatcher,
		stats:      stats,
		source:     source,
		loadedAt:   time.Now(),
	}
}

// DispatchRequest is the body of POST /api/v1/dispatch.
type DispatchRequest struct {
	Input    Input    `json:"input" binding:"required"`
	Controls Controls `json:"controls"`
}

// DatasetInfo describes the loaded dataset.
type DatasetInfo struct {
	Source    string    `json:"source"`
	Records   int       `json:"records"`
	FirstYear int       `json:"first_year"`
	LastYear  int       `json:"last_year"`
	LoadedAt  time.Time `json:"loaded_at"`
}

type pageData struct {
	Controls    Controls
	FirstYear   int
	LastYear    int
	MinWindow   int
	MaxWindow   int
	MinCycle    int
	MaxCycle    int
	Months      []string
	ImageTitles []string
	Realtime    imagery.Channel
	Images      []imagery.Channel
	UpdatedAt   string
}

var monthNames = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Index handles GET /
func (h *Handler) Index(c *gin.Context) {
	first, last := h.dispatcher.Dataset().YearSpan()
	ctl := h.defaults()

	images, _ := selectedImages(nil, ctl)

	c.HTML(http.StatusOK, "index.html", pageData{
		Controls:    ctl,
		FirstYear:   first,
		LastYear:    last,
		MinWindow:   MinWindow,
		MaxWindow:   MaxWindow,
		MinCycle:    MinCycle,
		MaxCycle:    MaxCycle,
		Months:      monthNames,
		ImageTitles: imagery.Titles(),
		Realtime:    imagery.Realtime,
		Images:      images.(ImageView).Images,
		UpdatedAt:   "Last Updated: " + h.loadedAt.Format("02/01/2006 15:04:05"),
	})
}

// GetDataset handles GET /api/v1/dataset
func (h *Handler) GetDataset(c *gin.Context) {
	ds := h.dispatcher.Dataset()
	first, last := ds.YearSpan()
	response.Success(c, DatasetInfo{
		Source:    h.source,
		Records:   ds.Len(),
		FirstYear: first,
		LastYear:  last,
		LoadedAt:  h.loadedAt,
	})
}

// GetSunspot handles GET /api/v1/sunspot
func (h *Handler) GetSunspot(c *gin.Context) {
	h.runOutput(c, OutputSunspot)
}

// GetCycle handles GET /api/v1/cycle
func (h *Handler) GetCycle(c *gin.Context) {
	h.runOutput(c, OutputCycle)
}

// GetImage handles GET /api/v1/image
func (h *Handler) GetImage(c *gin.Context) {
	h.runOutput(c, OutputImage)
}

// PostDispatch handles POST /api/v1/dispatch
func (h *Handler) PostDispatch(c *gin.Context) {
	req := DispatchRequest{Controls: h.defaults()}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := h.validate(req.Controls); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	results, err := h.dispatcher.Trigger(req.Input, req.Controls)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, results)
}

// GetStats handles GET /api/v1/stats
func (h *Handler) GetStats(c *gin.Context) {
	response.Success(c, h.stats.Snapshot())
}

// SunspotChart handles GET /charts/sunspot.png
func (h *Handler) SunspotChart(c *gin.Context) {
	v, ok := h.view(c, OutputSunspot)
	if !ok {
		return
	}
	h.writePNG(c, func(buf *bytes.Buffer) error {
		return RenderSunspotChart(buf, v.(SunspotView))
	})
}

// CycleChart handles GET /charts/cycle.png
func (h *Handler) CycleChart(c *gin.Context) {
	v, ok := h.view(c, OutputCycle)
	if !ok {
		return
	}
	h.writePNG(c, func(buf *bytes.Buffer) error {
		return RenderCycleChart(buf, v.(CycleView))
	})
}

func (h *Handler) runOutput(c *gin.Context, out Output) {
	v, ok := h.view(c, out)
	if !ok {
		return
	}
	response.Success(c, v)
}

// view binds and validates the query controls, then recomputes out.
func (h *Handler) view(c *gin.Context, out Output) (any, bool) {
	ctl := h.defaults()
	if err := c.ShouldBindQuery(&ctl); err != nil {
		response.BadRequest(c, "Invalid query parameters: "+err.Error())
		return nil, false
	}
	if err := h.validate(ctl); err != nil {
		response.BadRequest(c, err.Error())
		return nil, false
	}

	v, err := h.dispatcher.Run(out, ctl)
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return v, true
}

// defaults returns DefaultControls with the years pulled inside the dataset.
func (h *Handler) defaults() Controls {
	ctl := DefaultControls()
	first, last := h.dispatcher.Dataset().YearSpan()
	clampYears(&ctl, first, last)
	return ctl
}

func (h *Handler) validate(ctl Controls) error {
	first, last := h.dispatcher.Dataset().YearSpan()
	return ctl.Validate(first, last)
}

func (h *Handler) writePNG(c *gin.Context, render func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		writeError(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func writeError(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, ErrInvalidControls), errors.Is(err, ErrUnknownInput):
		response.BadRequest(c, err.Error())
	case errors.Is(err, ErrUnknownOutput):
		response.NotFound(c, err.Error())
	case errors.Is(err, ErrNotEnoughPoints):
		response.Unprocessable(c, err.Error())
	default:
		response.InternalError(c, err.Error())
	}
}

// clampYears pulls the year range inside [first, last].
func clampYears(ctl *Controls, first, last int) {
	if ctl.YearMin < first || ctl.YearMin > last {
		ctl.YearMin = first
	}
	if ctl.YearMax > last || ctl.YearMax < ctl.YearMin {
		ctl.YearMax = last
	}
}
