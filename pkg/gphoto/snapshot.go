package gphoto

import "encoding/json"

// WidgetSnapshot is a plain copy of a widget subtree.
type WidgetSnapshot struct {
	Name     string           `json:"name"`
	Label    string           `json:"label"`
	Info     string           `json:"info,omitempty"`
	ID       int              `json:"id"`
	Kind     WidgetKind       `json:"kind"`
	ReadOnly bool             `json:"readonly,omitempty"`
	Value    any              `json:"value,omitempty"`
	Min      *float64         `json:"min,omitempty"`
	Max      *float64         `json:"max,omitempty"`
	Step     *float64         `json:"step,omitempty"`
	Choices  []string         `json:"choices,omitempty"`
	Children []WidgetSnapshot `json:"children,omitempty"`
}

// Snapshot copies the subtree rooted at w, values included.
func (w *Widget) Snapshot() (WidgetSnapshot, error) {
	s := WidgetSnapshot{
		Name:     w.Name(),
		Label:    w.Label(),
		Info:     w.Info(),
		ID:       w.ID(),
		Kind:     w.Kind(),
		ReadOnly: w.ReadOnly(),
	}
	v, err := w.Value()
	if err != nil {
		return s, err
	}
	s.Value = v

	switch w.Kind() {
	case KindRange:
		min, max, step, err := w.Range()
		if err != nil {
			return s, err
		}
		s.Min, s.Max, s.Step = &min, &max, &step
	case KindRadio, KindMenu:
		if s.Choices, err = w.Choices(); err != nil {
			return s, err
		}
	}

	children, err := w.Children()
	if err != nil {
		return s, err
	}
	for _, c := range children {
		cs, err := c.Snapshot()
		if err != nil {
			return s, err
		}
		s.Children = append(s.Children, cs)
	}
	return s, nil
}

func (w *Widget) MarshalJSON() ([]byte, error) {
	s, err := w.Snapshot()
	if err != nil {
		return nil, err
	}
	return json.Marshal(s)
}
