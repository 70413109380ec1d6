package gphoto

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cjeanneret/gpcam/pkg/gphoto/driver"
)

// WidgetKind is the closed set of configuration node kinds. The kind
// decides which value accessors are legal on a node.
type WidgetKind int

const (
	KindWindow  WidgetKind = WidgetKind(driver.WidgetWindow)
	KindSection WidgetKind = WidgetKind(driver.WidgetSection)
	KindText    WidgetKind = WidgetKind(driver.WidgetText)
	KindRange   WidgetKind = WidgetKind(driver.WidgetRange)
	KindToggle  WidgetKind = WidgetKind(driver.WidgetToggle)
	KindRadio   WidgetKind = WidgetKind(driver.WidgetRadio)
	KindMenu    WidgetKind = WidgetKind(driver.WidgetMenu)
	KindButton  WidgetKind = WidgetKind(driver.WidgetButton)
	KindDate    WidgetKind = WidgetKind(driver.WidgetDate)
)

var kindNames = map[WidgetKind]string{
	KindWindow:  "window",
	KindSection: "section",
	KindText:    "text",
	KindRange:   "range",
	KindToggle:  "toggle",
	KindRadio:   "radio",
	KindMenu:    "menu",
	KindButton:  "button",
	KindDate:    "date",
}

func (k WidgetKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func (k WidgetKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *WidgetKind) UnmarshalText(b []byte) error {
	for kind, name := range kindNames {
		if name == string(b) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown widget kind %q", b)
}

// IsContainer reports whether nodes of this kind may have children.
func (k WidgetKind) IsContainer() bool {
	return k == KindWindow || k == KindSection
}

// Toggle is the tri-state value of a toggle widget.
type Toggle int

const (
	ToggleFalse Toggle = iota
	ToggleTrue
	// ToggleUnknown is reported when the setting does not apply in the
	// camera's current state.
	ToggleUnknown
)

func (t Toggle) String() string {
	switch t {
	case ToggleFalse:
		return "false"
	case ToggleTrue:
		return "true"
	}
	return "unknown"
}

func (t Toggle) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// widgetTree is one tree read from the camera. It is released as a unit.
type widgetTree struct {
	cam      *Camera
	root     driver.WidgetHandle
	released bool // guarded by cam.mu
}

func (t *widgetTree) releaseLocked() {
	if t.released {
		return
	}
	t.released = true
	t.cam.drv.UnrefWidget(t.root)
	delete(t.cam.trees, t)
}

func (t *widgetTree) wrapLocked(h driver.WidgetHandle) (*Widget, error) {
	info, st := t.cam.drv.WidgetInfo(h)
	if err := check(t.cam.drv, "widget info", st); err != nil {
		return nil, err
	}
	return &Widget{tree: t, handle: h, info: info}, nil
}

// Widget is a node of a camera configuration tree. Every node is a view
// into the tree read by Camera.Config or Camera.ConfigKey; once the tree or
// its camera is released, every call that reaches the driver fails with
// ErrReleased. Name, Label, Info, ID, Kind and ReadOnly are read when the
// node is obtained and stay available.
//
// Value setters only change the in-memory tree. Use Camera.SetConfig or
// Camera.SetAllConfig to write them to the device.
type Widget struct {
	tree   *widgetTree
	handle driver.WidgetHandle
	info   driver.WidgetInfo
}

func (w *Widget) Name() string     { return w.info.Name }
func (w *Widget) Label() string    { return w.info.Label }
func (w *Widget) Info() string     { return w.info.Info }
func (w *Widget) ID() int          { return w.info.ID }
func (w *Widget) Kind() WidgetKind { return WidgetKind(w.info.Kind) }
func (w *Widget) ReadOnly() bool   { return w.info.ReadOnly }

func (w *Widget) String() string {
	return fmt.Sprintf("%s (%s)", w.info.Name, w.Kind())
}

func (w *Widget) drv() driver.Driver { return w.tree.cam.drv }

func (w *Widget) do(fn func() error) error {
	return w.tree.cam.do(func() error {
		if w.tree.released {
			return ErrReleased
		}
		return fn()
	})
}

// Close releases the tree when called on the widget that owns it, the
// root returned by Camera.Config or Camera.ConfigKey. On any other node
// it is a no-op.
func (w *Widget) Close() error {
	if w.handle != w.tree.root {
		return nil
	}
	return w.tree.cam.do(func() error {
		w.tree.releaseLocked()
		return nil
	})
}

// Valid reports whether the widget can still be used.
func (w *Widget) Valid() bool {
	return w.do(func() error { return nil }) == nil
}

// Changed reports whether the value was modified since it was read.
func (w *Widget) Changed() (bool, error) {
	var changed bool
	err := w.do(func() error {
		info, st := w.drv().WidgetInfo(w.handle)
		changed = info.Changed
		return check(w.drv(), "widget info", st)
	})
	return changed, err
}

func (w *Widget) wrongKind(want ...WidgetKind) error {
	return fmt.Errorf("widget %q is %s, want %v: %w", w.info.Name, w.Kind(), want, ErrWrongWidgetType)
}

func (w *Widget) expect(kinds ...WidgetKind) error {
	for _, k := range kinds {
		if w.Kind() == k {
			return nil
		}
	}
	return w.wrongKind(kinds...)
}

func (w *Widget) writable() error {
	if w.info.ReadOnly {
		return fmt.Errorf("widget %q: %w", w.info.Name, ErrReadOnly)
	}
	return nil
}

// ChildCount returns the number of children; zero for leaf kinds.
func (w *Widget) ChildCount() (int, error) {
	if !w.Kind().IsContainer() {
		return 0, w.do(func() error { return nil })
	}
	var n int
	err := w.do(func() error {
		var st driver.Status
		n, st = w.drv().WidgetChildCount(w.handle)
		return check(w.drv(), "count children", st)
	})
	return n, err
}

// Children returns the children in order; leaf kinds have none.
func (w *Widget) Children() ([]*Widget, error) {
	var out []*Widget
	err := w.do(func() error {
		if !w.Kind().IsContainer() {
			return nil
		}
		n, st := w.drv().WidgetChildCount(w.handle)
		if err := check(w.drv(), "count children", st); err != nil {
			return err
		}
		out = make([]*Widget, 0, n)
		for i := 0; i < n; i++ {
			h, st := w.drv().WidgetChild(w.handle, i)
			if err := check(w.drv(), "child", st); err != nil {
				return err
			}
			child, err := w.tree.wrapLocked(h)
			if err != nil {
				return err
			}
			out = append(out, child)
		}
		return nil
	})
	return out, err
}

func (w *Widget) child(what string, lookup func() (driver.WidgetHandle, driver.Status)) (*Widget, error) {
	var out *Widget
	err := w.do(func() error {
		if !w.Kind().IsContainer() {
			return fmt.Errorf("widget %q has no child %s: %w", w.info.Name, what, ErrNotFound)
		}
		h, st := lookup()
		if st.Failed() {
			return fmt.Errorf("widget %q has no child %s: %w", w.info.Name, what, ErrNotFound)
		}
		var err error
		out, err = w.tree.wrapLocked(h)
		return err
	})
	return out, err
}

// Child returns the i-th child.
func (w *Widget) Child(i int) (*Widget, error) {
	return w.child(fmt.Sprintf("at index %d", i), func() (driver.WidgetHandle, driver.Status) {
		return w.drv().WidgetChild(w.handle, i)
	})
}

// ChildByName returns the direct child named name.
func (w *Widget) ChildByName(name string) (*Widget, error) {
	return w.child(fmt.Sprintf("named %q", name), func() (driver.WidgetHandle, driver.Status) {
		return w.drv().WidgetChildByName(w.handle, name)
	})
}

// ChildByLabel returns the direct child labelled label.
func (w *Widget) ChildByLabel(label string) (*Widget, error) {
	return w.child(fmt.Sprintf("labelled %q", label), func() (driver.WidgetHandle, driver.Status) {
		return w.drv().WidgetChildByLabel(w.handle, label)
	})
}

// Walk calls fn for w and every descendant, depth first, in child order.
// Returning an error from fn stops the walk.
func (w *Widget) Walk(fn func(*Widget) error) error {
	if err := fn(w); err != nil {
		return err
	}
	children, err := w.Children()
	if err != nil {
		return err
	}
	for _, c := range children {
		if err := c.Walk(fn); err != nil {
			return err
		}
	}
	return nil
}

var errStopWalk = errors.New("stop walk")

// Find returns the first node in the subtree, w included, named name.
func (w *Widget) Find(name string) (*Widget, error) {
	var found *Widget
	err := w.Walk(func(n *Widget) error {
		if n.Name() == name {
			found = n
			return errStopWalk
		}
		return nil
	})
	if found != nil {
		return found, nil
	}
	if err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("widget %q not found under %q: %w", name, w.info.Name, ErrNotFound)
}

func (w *Widget) value(kinds ...WidgetKind) (driver.WidgetValue, error) {
	if err := w.expect(kinds...); err != nil {
		return driver.WidgetValue{}, err
	}
	var v driver.WidgetValue
	err := w.do(func() error {
		var st driver.Status
		v, st = w.drv().WidgetValue(w.handle)
		return check(w.drv(), "widget value", st)
	})
	return v, err
}

func (w *Widget) setValue(v driver.WidgetValue, kinds ...WidgetKind) error {
	if err := w.expect(kinds...); err != nil {
		return err
	}
	if err := w.writable(); err != nil {
		return err
	}
	return w.do(func() error {
		return check(w.drv(), "set widget value", w.drv().SetWidgetValue(w.handle, v))
	})
}

// Text returns the value of a text widget.
func (w *Widget) Text() (string, error) {
	v, err := w.value(KindText)
	return v.String, err
}

// SetText sets the value of a text widget.
func (w *Widget) SetText(s string) error {
	return w.setValue(driver.WidgetValue{String: s}, KindText)
}

// Range returns the bounds and increment of a range widget. A zero step
// means any value within the bounds is accepted.
func (w *Widget) Range() (min, max, step float64, err error) {
	if err := w.expect(KindRange); err != nil {
		return 0, 0, 0, err
	}
	err = w.do(func() error {
		lo, hi, inc, st := w.drv().WidgetRange(w.handle)
		min, max, step = float64(lo), float64(hi), float64(inc)
		return check(w.drv(), "widget range", st)
	})
	return min, max, step, err
}

// RangeValue returns the value of a range widget.
func (w *Widget) RangeValue() (float64, error) {
	v, err := w.value(KindRange)
	return float64(v.Float), err
}

// SetRangeValue sets a range widget. Values outside the bounds or not on a
// step boundary fail with ErrOutOfRange and leave the value unchanged.
func (w *Widget) SetRangeValue(v float64) error {
	min, max, step, err := w.Range()
	if err != nil {
		return err
	}
	if err := checkRange(v, min, max, step); err != nil {
		return fmt.Errorf("widget %q: %w", w.info.Name, err)
	}
	return w.setValue(driver.WidgetValue{Float: float32(v)}, KindRange)
}

func checkRange(v, min, max, step float64) error {
	const eps = 1e-6
	slack := eps * (math.Abs(max) + 1)
	if math.IsNaN(v) || v < min-slack || v > max+slack {
		return fmt.Errorf("%g not in [%g, %g]: %w", v, min, max, ErrOutOfRange)
	}
	if step > 0 {
		n := (v - min) / step
		if math.Abs(n-math.Round(n)) > 1e-4 {
			return fmt.Errorf("%g not a multiple of step %g from %g: %w", v, step, min, ErrOutOfRange)
		}
	}
	return nil
}

// Toggle returns the value of a toggle widget.
func (w *Widget) Toggle() (Toggle, error) {
	v, err := w.value(KindToggle)
	if err != nil {
		return ToggleUnknown, err
	}
	switch v.Int {
	case 0:
		return ToggleFalse, nil
	case 1:
		return ToggleTrue, nil
	}
	return ToggleUnknown, nil
}

// SetToggle sets a toggle widget.
func (w *Widget) SetToggle(t Toggle) error {
	if t != ToggleFalse && t != ToggleTrue && t != ToggleUnknown {
		return fmt.Errorf("widget %q: toggle value %d: %w", w.info.Name, int(t), ErrOutOfRange)
	}
	return w.setValue(driver.WidgetValue{Int: int(t)}, KindToggle)
}

// Choices returns the options of a radio or menu widget.
func (w *Widget) Choices() ([]string, error) {
	if err := w.expect(KindRadio, KindMenu); err != nil {
		return nil, err
	}
	var out []string
	err := w.do(func() error {
		var st driver.Status
		out, st = w.drv().WidgetChoices(w.handle)
		return check(w.drv(), "widget choices", st)
	})
	return out, err
}

// Choice returns the selected option of a radio or menu widget.
func (w *Widget) Choice() (string, error) {
	v, err := w.value(KindRadio, KindMenu)
	return v.String, err
}

// SetChoice selects an option of a radio or menu widget. Options not in
// Choices fail with ErrInvalidChoice.
func (w *Widget) SetChoice(choice string) error {
	choices, err := w.Choices()
	if err != nil {
		return err
	}
	for _, c := range choices {
		if c == choice {
			return w.setValue(driver.WidgetValue{String: choice}, KindRadio, KindMenu)
		}
	}
	return fmt.Errorf("widget %q: %q not in %q: %w", w.info.Name, choice, choices, ErrInvalidChoice)
}

// SetChoiceIndex selects the i-th option of a radio or menu widget.
func (w *Widget) SetChoiceIndex(i int) error {
	choices, err := w.Choices()
	if err != nil {
		return err
	}
	if i < 0 || i >= len(choices) {
		return fmt.Errorf("widget %q: choice index %d of %d: %w", w.info.Name, i, len(choices), ErrInvalidChoice)
	}
	return w.setValue(driver.WidgetValue{String: choices[i]}, KindRadio, KindMenu)
}

// Date returns the value of a date widget.
func (w *Widget) Date() (time.Time, error) {
	v, err := w.value(KindDate)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(int64(v.Int), 0), nil
}

// SetDate sets a date widget, truncated to the second.
func (w *Widget) SetDate(t time.Time) error {
	if sec := t.Unix(); sec < math.MinInt32 || sec > math.MaxInt32 {
		return fmt.Errorf("widget %q: date %s outside the device range: %w", w.info.Name, t.Format(time.RFC3339), ErrOutOfRange)
	}
	return w.setValue(driver.WidgetValue{Int: int(t.Unix())}, KindDate)
}

// Press triggers a button widget on the device. Buttons carry no value;
// pressing is the only operation they support.
func (w *Widget) Press() error {
	if err := w.expect(KindButton); err != nil {
		return err
	}
	err := w.do(func() error {
		return check(w.drv(), "press", w.drv().SetWidgetChanged(w.handle, true))
	})
	if err != nil {
		return err
	}
	return w.tree.cam.SetConfig(w)
}

// Value returns the current value in its natural Go type: string for text,
// radio and menu, float64 for range, Toggle, time.Time for date, and nil
// for windows, sections and buttons.
func (w *Widget) Value() (any, error) {
	switch w.Kind() {
	case KindText:
		return w.Text()
	case KindRange:
		return w.RangeValue()
	case KindToggle:
		return w.Toggle()
	case KindRadio, KindMenu:
		return w.Choice()
	case KindDate:
		return w.Date()
	}
	return nil, w.do(func() error { return nil })
}
