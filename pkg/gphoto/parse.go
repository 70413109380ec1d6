package gphoto

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseToggle reads on/off, true/false, 1/0 and unknown/2.
func ParseToggle(s string) (Toggle, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "on", "true", "yes":
		return ToggleTrue, nil
	case "0", "off", "false", "no":
		return ToggleFalse, nil
	case "2", "unknown":
		return ToggleUnknown, nil
	}
	return ToggleUnknown, fmt.Errorf("toggle value %q: %w", s, ErrTypeMismatch)
}

// ParseDate reads RFC 3339 or unix seconds.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(n, 0), nil
	}
	return time.Time{}, fmt.Errorf("date value %q: %w", s, ErrTypeMismatch)
}

// SetFromString sets w from its text form, parsed according to the widget
// kind: text as is, range as a float, toggle through ParseToggle, radio and
// menu as a choice label or "#index", date through ParseDate. Buttons
// ignore s and are pressed, which writes them to the camera immediately.
// Windows and sections fail with ErrWrongWidgetType.
func SetFromString(w *Widget, s string) error {
	switch w.Kind() {
	case KindText:
		return w.SetText(s)
	case KindRange:
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("range value %q: %w", s, ErrTypeMismatch)
		}
		return w.SetRangeValue(v)
	case KindToggle:
		t, err := ParseToggle(s)
		if err != nil {
			return err
		}
		return w.SetToggle(t)
	case KindRadio, KindMenu:
		if idx, ok := strings.CutPrefix(s, "#"); ok {
			i, err := strconv.Atoi(idx)
			if err != nil {
				return fmt.Errorf("choice index %q: %w", s, ErrInvalidChoice)
			}
			return w.SetChoiceIndex(i)
		}
		return w.SetChoice(s)
	case KindDate:
		t, err := ParseDate(s)
		if err != nil {
			return err
		}
		return w.SetDate(t)
	case KindButton:
		return w.Press()
	}
	return w.wrongKind(KindText, KindRange, KindToggle, KindRadio, KindMenu, KindDate, KindButton)
}
