package layout

import (
	"fmt"
	"log"
)

// MeasurementProvider supplies the ordered measurements of every item. It is
// called synchronously whenever the controller rebuilds. width is the width
// being laid out; providers whose sizes do not depend on it may ignore it.
type MeasurementProvider interface {
	Measurements(width float64) []ItemMeasurement
}

// ProviderFunc adapts a function to MeasurementProvider.
type ProviderFunc func(width float64) []ItemMeasurement

// Measurements calls f.
func (f ProviderFunc) Measurements(width float64) []ItemMeasurement {
	return f(width)
}

// State is the controller's freshness.
type State int

const (
	// StateStale means the next EnsureUpToDate rebuilds regardless of width.
	StateStale State = iota
	// StateFresh means the model matches the provider for BuiltForWidth.
	StateFresh
)

func (s State) String() string {
	switch s {
	case StateStale:
		return "stale"
	case StateFresh:
		return "fresh"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithRetirer hands replaced models to r instead of dropping them inline.
func WithRetirer(r *Retirer) ControllerOption {
	return func(c *Controller) { c.retirer = r }
}

// WithStrictContracts makes contract violations panic instead of returning
// an error. Use it in debug builds and tests.
func WithStrictContracts(strict bool) ControllerOption {
	return func(c *Controller) { c.strict = strict }
}

// Controller owns the current Model and rebuilds it when it goes stale or the
// width changes. It is not safe for concurrent use; all calls belong on the
// goroutine that drives the host's layout.
type Controller struct {
	provider MeasurementProvider
	model    *Model
	state    State
	width    float64 // width of the last EnsureUpToDate
	hasWidth bool
	retirer  *Retirer
	strict   bool

	// sticky is the pinned item from the latest ItemsIntersecting call, so
	// ItemAt agrees with what the host was last shown.
	sticky    ItemGeometry
	hasSticky bool

	rebuilds int
}

// NewController creates a stale controller. provider may be nil, in which
// case every rebuild yields an empty model.
func NewController(provider MeasurementProvider, opts ...ControllerOption) *Controller {
	c := &Controller{
		provider: provider,
		model:    EmptyModel(0),
		state:    StateStale,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetProvider attaches a provider and invalidates the layout.
func (c *Controller) SetProvider(p MeasurementProvider) {
	c.provider = p
	c.Invalidate()
}

// Detach drops the provider reference. Later rebuilds produce empty models.
func (c *Controller) Detach() {
	c.SetProvider(nil)
}

// Invalidate marks the layout stale. It is idempotent.
func (c *Controller) Invalidate() {
	c.state = StateStale
}

// State returns whether the model is fresh.
func (c *Controller) State() State {
	return c.state
}

// Rebuilds returns how many models the controller has built.
func (c *Controller) Rebuilds() int {
	return c.rebuilds
}

// Model returns the current model without rebuilding.
func (c *Controller) Model() *Model {
	return c.model
}

// EnsureUpToDate rebuilds the model when it is stale or was built for a
// different width.
func (c *Controller) EnsureUpToDate(width float64) {
	c.width = width
	c.hasWidth = true
	if c.state == StateFresh && c.model.BuiltForWidth() == width {
		return
	}

	var next *Model
	if c.provider == nil {
		log.Printf("layout: no measurement provider attached, using empty layout (width=%v)", width)
		next = EmptyModel(width)
	} else {
		next = Build(width, c.provider.Measurements(width))
	}

	prev := c.model
	c.model = next
	c.state = StateFresh
	c.hasSticky = false
	c.rebuilds++

	if c.retirer != nil {
		c.retirer.Retire(prev)
	}
}

// refresh rebuilds at the last known width if an invalidation is pending.
// Until the host supplies a width, queries see the current empty model.
func (c *Controller) refresh() {
	if c.state == StateStale && c.hasWidth {
		c.EnsureUpToDate(c.width)
	}
}

// ContentSize returns the scrollable extent of the current layout.
func (c *Controller) ContentSize() Size {
	c.refresh()
	return c.model.ContentSize()
}

// ItemsIntersecting returns the items visible in rect at scrollY, the active
// sticky item first.
func (c *Controller) ItemsIntersecting(rect Rect, scrollY float64) []ItemGeometry {
	c.refresh()
	items := c.model.ItemsIntersecting(rect, scrollY)
	c.hasSticky = len(items) > 0 && items[0].IsSticking
	if c.hasSticky {
		c.sticky = items[0]
	}
	return items
}

// ItemAt returns the geometry of one item. Only section 0 exists. An
// out-of-range position is a contract violation: it panics in strict mode
// and otherwise returns the zero geometry with an *IndexOutOfRangeError.
func (c *Controller) ItemAt(section, item int) (ItemGeometry, error) {
	c.refresh()
	g, ok := c.model.Item(item)
	if section != 0 || !ok {
		err := &IndexOutOfRangeError{Section: section, Item: item, Count: c.model.Len()}
		if c.strict {
			panic(err)
		}
		log.Printf("layout: %v", err)
		return ItemGeometry{}, err
	}
	if c.hasSticky && c.sticky.Index == item {
		return c.sticky, nil
	}
	return g, nil
}

// ShouldInvalidateForBoundsChange reports whether a bounds change to newWidth
// needs a new layout pass. Any sticky item forces one, since its position
// follows the scroll offset.
func (c *Controller) ShouldInvalidateForBoundsChange(newWidth float64) bool {
	return c.model.StickyCount() > 0 || newWidth != c.model.BuiltForWidth()
}
