// Package dashboard serves the sunspot dashboard: the control dispatch
// table, chart rendering and the gin handlers around them.
package dashboard

import (
	"errors"
	"fmt"
)

// Control limits, matching the page's sliders.
const (
	MinWindow = 1
	MaxWindow = 20
	MinCycle  = 1
	MaxCycle  = 20
)

// ErrInvalidControls is returned when a control value is out of range.
var ErrInvalidControls = errors.New("invalid controls")

// Controls is the full state of the page's inputs. Every range is
// inclusive at both ends.
type Controls struct {
	YearMin  int    `form:"year_min" json:"year_min"`
	YearMax  int    `form:"year_max" json:"year_max"`
	Window   int    `form:"window" json:"window"`
	MonthMin int    `form:"month_min" json:"month_min"`
	MonthMax int    `form:"month_max" json:"month_max"`
	Cycle    int    `form:"cycle" json:"cycle"`
	Image    string `form:"image" json:"image"`
}

// DefaultControls returns the initial slider positions.
func DefaultControls() Controls {
	return Controls{
		YearMin:  1980,
		YearMax:  2010,
		Window:   6,
		MonthMin: 2,
		MonthMax: 5,
		Cycle:    11,
	}
}

// Validate checks every control against its slider limits and the dataset's
// year span.
func (c Controls) Validate(firstYear, lastYear int) error {
	switch {
	case c.YearMin > c.YearMax:
		return fmt.Errorf("%w: year_min %d > year_max %d", ErrInvalidControls, c.YearMin, c.YearMax)
	case c.YearMin < firstYear || c.YearMax > lastYear:
		return fmt.Errorf("%w: years %d-%d outside %d-%d", ErrInvalidControls, c.YearMin, c.YearMax, firstYear, lastYear)
	case c.Window < MinWindow || c.Window > MaxWindow:
		return fmt.Errorf("%w: window %d outside %d-%d", ErrInvalidControls, c.Window, MinWindow, MaxWindow)
	case c.MonthMin < 1 || c.MonthMax > 12 || c.MonthMin > c.MonthMax:
		return fmt.Errorf("%w: months %d-%d", ErrInvalidControls, c.MonthMin, c.MonthMax)
	case c.Cycle < MinCycle || c.Cycle > MaxCycle:
		return fmt.Errorf("%w: cycle %d outside %d-%d", ErrInvalidControls, c.Cycle, MinCycle, MaxCycle)
	}
	return nil
}
