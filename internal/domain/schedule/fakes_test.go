package schedule

import (
	"errors"
	"sync"

	"github.com/okian/plnevents/internal/domain/model"
)

type fakeElement struct {
	id   string
	doc  *fakeViewport
	fail bool
}

func (e *fakeElement) ScrollIntoView(opts ScrollOptions) error {
	if e.fail {
		return errors.New("detached")
	}
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	e.doc.scrolledInto = append(e.doc.scrolledInto, e.id)
	e.doc.lastOpts = opts
	return nil
}

type fakeViewport struct {
	mu           sync.Mutex
	elements     map[string]*fakeElement
	height       int
	scrolledTo   [][2]int
	scrolledInto []string
	lastOpts     ScrollOptions
}

func newFakeViewport(height int, ids ...string) *fakeViewport {
	v := &fakeViewport{elements: map[string]*fakeElement{}, height: height}
	for _, id := range ids {
		v.elements[id] = &fakeElement{id: id, doc: v}
	}
	return v
}

func (v *fakeViewport) ElementByID(id string) (Element, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	el, ok := v.elements[id]
	if !ok {
		return nil, false
	}
	return el, true
}

func (v *fakeViewport) ScrollTo(x, y int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.scrolledTo = append(v.scrolledTo, [2]int{x, y})
	return nil
}

func (v *fakeViewport) ScrollHeight() int { return v.height }

func (v *fakeViewport) intoCalls() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.scrolledInto...)
}

func (v *fakeViewport) toCalls() [][2]int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([][2]int(nil), v.scrolledTo...)
}

type fakeCalendar struct {
	year, month int
	gotos       int
	fail        error
	panics      bool
	handlers    []func(EventActivation)
}

func (c *fakeCalendar) GotoMonth(year, monthIndex int) error {
	if c.panics {
		panic("ref not attached")
	}
	if c.fail != nil {
		return c.fail
	}
	c.year, c.month = year, monthIndex
	c.gotos++
	return nil
}

func (c *fakeCalendar) Next() error {
	if c.fail != nil {
		return c.fail
	}
	c.month++
	return nil
}

func (c *fakeCalendar) Prev() error {
	if c.fail != nil {
		return c.fail
	}
	c.month--
	return nil
}

func (c *fakeCalendar) OnEventActivated(fn func(EventActivation)) {
	c.handlers = append(c.handlers, fn)
}

func ev(name string, month, day int) model.AnnotatedEvent {
	return model.AnnotatedEvent{
		Event:           model.Event{Name: name, Slug: name},
		StartMonthIndex: month,
		StartDay:        day,
	}
}
