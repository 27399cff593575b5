package schedule

// ScrollBehavior mirrors the browser scroll behaviors.
type ScrollBehavior string

// Scroll behaviors.
const (
	ScrollAuto   ScrollBehavior = "auto"
	ScrollSmooth ScrollBehavior = "smooth"
)

// ScrollOptions are passed to Element.ScrollIntoView.
type ScrollOptions struct {
	Behavior ScrollBehavior `json:"behavior"`
	Block    string         `json:"block"`
	// TopOffset compensates for fixed chrome such as the announcement banner.
	TopOffset int `json:"topOffset"`
}

// Element is a rendered node that can be scrolled into view.
type Element interface {
	ScrollIntoView(opts ScrollOptions) error
}

// Viewport is the DOM lookup capability the controller drives.
type Viewport interface {
	ElementByID(id string) (Element, bool)
	ScrollTo(x, y int) error
	ScrollHeight() int
}
