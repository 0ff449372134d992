package dashboard

import (
	"errors"
	"fmt"
	"time"

	"github.com/KI7MT/ki7mt-sunspot-dash/internal/common"
	"github.com/KI7MT/ki7mt-sunspot-dash/internal/imagery"
	"github.com/KI7MT/ki7mt-sunspot-dash/internal/sunspot"
)

// Input names a page control. The names match the element ids on the page.
type Input string

const (
	InputYears  Input = "year_select"
	InputWindow Input = "month_select"
	InputMonths Input = "month_selector"
	InputCycle  Input = "cycle_tune"
	InputImage  Input = "dropdown"
)

// Output names a page slot that a callback fills.
type Output string

const (
	OutputSunspot Output = "sunspot"
	OutputCycle   Output = "spt_cycle"
	OutputImage   Output = "image"
)

var (
	// ErrUnknownInput is returned by Trigger for an input no callback listens to.
	ErrUnknownInput = errors.New("unknown input")
	// ErrUnknownOutput is returned by Run for an unregistered output.
	ErrUnknownOutput = errors.New("unknown output")
)

// HandlerFunc recomputes one output from the dataset and the current controls.
type HandlerFunc func(ds *sunspot.Dataset, ctl Controls) (any, error)

// Callback binds an output to the inputs that invalidate it.
type Callback struct {
	Output Output
	Inputs []Input
	Handle HandlerFunc
}

// SunspotView is the data behind the historical activity chart.
type SunspotView struct {
	Window   int                     `json:"window"`
	Rows     []sunspot.FilteredRow   `json:"rows"`
	Smoothed []sunspot.SmoothedPoint `json:"smoothed"`
}

// CycleView is the data behind the cycle scatter chart.
type CycleView struct {
	Cycle  int                  `json:"cycle"`
	Points []sunspot.CyclePoint `json:"points"`
}

// ImageView lists the images to show under the dropdown.
type ImageView struct {
	Images []imagery.Channel `json:"images"`
}

// Dispatcher is the table of callbacks. Each control change synchronously
// recomputes the outputs that depend on it; nothing is cached between calls.
type Dispatcher struct {
	ds        *sunspot.Dataset
	stats     *common.Stats
	callbacks []Callback
}

// NewDispatcher creates an empty dispatcher over ds. stats may be nil.
func NewDispatcher(ds *sunspot.Dataset, stats *common.Stats) *Dispatcher {
	return &Dispatcher{ds: ds, stats: stats}
}

// NewDefaultDispatcher creates a dispatcher with the dashboard's callbacks.
func NewDefaultDispatcher(ds *sunspot.Dataset, stats *common.Stats) *Dispatcher {
	d := NewDispatcher(ds, stats)
	for _, cb := range DefaultCallbacks() {
		// DefaultCallbacks has unique outputs
		_ = d.Register(cb)
	}
	return d
}

// Register adds a callback. Each output may be registered once.
func (d *Dispatcher) Register(cb Callback) error {
	for _, existing := range d.callbacks {
		if existing.Output == cb.Output {
			return fmt.Errorf("output %q already registered", cb.Output)
		}
	}
	d.callbacks = append(d.callbacks, cb)
	return nil
}

// Dataset returns the dataset the callbacks run against.
func (d *Dispatcher) Dataset() *sunspot.Dataset {
	return d.ds
}

// Trigger runs every callback that depends on changed and returns their
// results keyed by output.
func (d *Dispatcher) Trigger(changed Input, ctl Controls) (map[Output]any, error) {
	results := make(map[Output]any)
	for _, cb := range d.callbacks {
		if !dependsOn(cb, changed) {
			continue
		}
		v, err := d.call(cb, ctl)
		if err != nil {
			return nil, err
		}
		results[cb.Output] = v
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownInput, changed)
	}
	return results, nil
}

// Run recomputes a single output.
func (d *Dispatcher) Run(out Output, ctl Controls) (any, error) {
	for _, cb := range d.callbacks {
		if cb.Output == out {
			return d.call(cb, ctl)
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownOutput, out)
}

// RenderAll recomputes every output, as on first page load.
func (d *Dispatcher) RenderAll(ctl Controls) (map[Output]any, error) {
	results := make(map[Output]any, len(d.callbacks))
	for _, cb := range d.callbacks {
		v, err := d.call(cb, ctl)
		if err != nil {
			return nil, err
		}
		results[cb.Output] = v
	}
	return results, nil
}

func (d *Dispatcher) call(cb Callback, ctl Controls) (any, error) {
	start := time.Now()
	v, err := cb.Handle(d.ds, ctl)
	if d.stats != nil {
		d.stats.Observe(string(cb.Output), time.Since(start), err)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cb.Output, err)
	}
	return v, nil
}

func dependsOn(cb Callback, in Input) bool {
	for _, i := range cb.Inputs {
		if i == in {
			return true
		}
	}
	return false
}

// DefaultCallbacks returns the dashboard's output wiring.
func DefaultCallbacks() []Callback {
	return []Callback{
		{Output: OutputSunspot, Inputs: []Input{InputYears, InputWindow}, Handle: sunspotActivity},
		{Output: OutputCycle, Inputs: []Input{InputYears, InputMonths, InputCycle}, Handle: sunspotCycle},
		{Output: OutputImage, Inputs: []Input{InputImage}, Handle: selectedImages},
	}
}

func sunspotActivity(ds *sunspot.Dataset, ctl Controls) (any, error) {
	rows := ds.FilterYears(ctl.YearMin, ctl.YearMax)
	return SunspotView{
		Window:   ctl.Window,
		Rows:     rows,
		Smoothed: sunspot.Smooth(rows, ctl.Window),
	}, nil
}

// sunspotCycle converts the inclusive slider ranges to the half-open spans
// CycleAggregate iterates, so the last selected year and month are included.
func sunspotCycle(ds *sunspot.Dataset, ctl Controls) (any, error) {
	years := sunspot.Closed(ctl.YearMin, ctl.YearMax)
	months := sunspot.Closed(ctl.MonthMin, ctl.MonthMax)
	return CycleView{
		Cycle:  ctl.Cycle,
		Points: sunspot.CycleAggregate(ds, years, months, float64(ctl.Cycle)),
	}, nil
}

// selectedImages shows every channel until one is picked, then only that one.
// An unknown selection shows nothing.
func selectedImages(_ *sunspot.Dataset, ctl Controls) (any, error) {
	if ctl.Image == "" {
		return ImageView{Images: imagery.All()}, nil
	}
	if c, ok := imagery.Select(ctl.Image); ok {
		return ImageView{Images: []imagery.Channel{c}}, nil
	}
	return ImageView{Images: []imagery.Channel{}}, nil
}
