// internal/catalog/label.go
package catalog

import (
	"slices"
	"strings"
)

// LabelKind is the physical form factor of a label roll
type LabelKind string

const (
	KindDieCut      LabelKind = "die-cut"
	KindEndless     LabelKind = "endless"
	KindRoundDieCut LabelKind = "round-die-cut"
	KindTapeEndless LabelKind = "ptouch-endless"
)

// ParseLabelKind accepts the catalog spellings of a label kind.
// Unknown values fall back to die-cut.
func ParseLabelKind(s string) LabelKind {
	switch strings.ToLower(strings.ReplaceAll(s, "_", "-")) {
	case "endless":
		return KindEndless
	case "round-die-cut":
		return KindRoundDieCut
	case "ptouch-endless", "tape-endless":
		return KindTapeEndless
	default:
		return KindDieCut
	}
}

// LabelSpec describes one label roll. Values are never mutated after the
// catalog is loaded.
type LabelSpec struct {
	Identifier         string    `json:"identifier"`
	Name               string    `json:"name"`
	WidthMM            float64   `json:"width_mm"`
	HeightMM           *float64  `json:"height_mm,omitempty"`
	Kind               LabelKind `json:"kind"`
	PrintableWidth     int       `json:"printable_width"`
	PrintableHeight    *int      `json:"printable_height,omitempty"`
	TotalWidth         int       `json:"total_width"`
	TotalHeight        *int      `json:"total_height,omitempty"`
	RightMarginDots    int       `json:"right_margin_dots"`
	FeedMargin         int       `json:"feed_margin"`
	RestrictedToModels []string  `json:"restricted_to_models,omitempty"`
}

// IsEndless reports whether the label length is chosen by the caller
func (l *LabelSpec) IsEndless() bool {
	return l.Kind == KindEndless || l.Kind == KindTapeEndless
}

// IsDieCut reports whether the label has a fixed, pre-cut size
func (l *LabelSpec) IsDieCut() bool {
	return l.Kind == KindDieCut || l.Kind == KindRoundDieCut
}

// DotsPrintable returns printable width and height; height is 0 for endless labels
func (l *LabelSpec) DotsPrintable() (int, int) {
	return l.PrintableWidth, derefInt(l.PrintableHeight)
}

// DotsTotal returns total width and height; height is 0 for endless labels
func (l *LabelSpec) DotsTotal() (int, int) {
	return l.TotalWidth, derefInt(l.TotalHeight)
}

// LengthMM returns the label length in millimeters, 0 for endless labels
func (l *LabelSpec) LengthMM() float64 {
	if l.HeightMM == nil {
		return 0
	}
	return *l.HeightMM
}

// AllowedOn reports whether the label may be used with the named model
func (l *LabelSpec) AllowedOn(model string) bool {
	if len(l.RestrictedToModels) == 0 {
		return true
	}
	for _, m := range l.RestrictedToModels {
		if strings.EqualFold(m, model) {
			return true
		}
	}
	return false
}

// MediaType returns the media type byte the printer expects for this kind
func (l *LabelSpec) MediaType() byte {
	switch l.Kind {
	case KindEndless:
		return 0x0A
	case KindTapeEndless:
		return 0x00
	default:
		return 0x0B
	}
}

func (l *LabelSpec) clone() LabelSpec {
	c := *l
	c.HeightMM = clonePtr(l.HeightMM)
	c.PrintableHeight = clonePtr(l.PrintableHeight)
	c.TotalHeight = clonePtr(l.TotalHeight)
	c.RestrictedToModels = slices.Clone(l.RestrictedToModels)
	return c
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
