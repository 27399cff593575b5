package viewport

import (
	"github.com/okian/plnevents/internal/domain/schedule"
	"github.com/okian/plnevents/internal/domain/types"
)

// Approximate layout of the timeline, in pixels.
const (
	headerHeight      = 240
	monthHeaderHeight = 56
	cardHeight        = 168
)

// Page is the timeline as rendered for a set of month buckets.
type Page struct {
	rec     *Recorder
	anchors map[string]struct{}
	height  int
}

var _ schedule.Viewport = (*Page)(nil)

// NewPage lays out buckets. Every day that has a card gets an anchor.
func NewPage(buckets []schedule.MonthBucket, rec *Recorder) *Page {
	if rec == nil {
		rec = NewRecorder()
	}
	p := &Page{rec: rec, anchors: make(map[string]struct{}), height: headerHeight}
	for _, b := range buckets {
		p.height += monthHeaderHeight
		for _, ev := range b.Events {
			p.anchors[schedule.AnchorID(ev.StartMonthIndex, ev.StartDay)] = struct{}{}
			p.height += cardHeight
		}
	}
	return p
}

// ElementByID implements schedule.Viewport.
func (p *Page) ElementByID(id string) (schedule.Element, bool) {
	if _, ok := p.anchors[id]; !ok {
		return nil, false
	}
	return element{id: id, rec: p.rec}, true
}

// ScrollTo implements schedule.Viewport.
func (p *Page) ScrollTo(x, y int) error {
	p.rec.add(types.Action{Kind: types.ActionScrollTo, X: x, Y: y})
	return nil
}

// ScrollHeight implements schedule.Viewport.
func (p *Page) ScrollHeight() int { return p.height }

type element struct {
	id  string
	rec *Recorder
}

func (e element) ScrollIntoView(opts schedule.ScrollOptions) error {
	e.rec.add(types.Action{Kind: types.ActionScrollIntoView, ElementID: e.id, Options: &opts})
	return nil
}
