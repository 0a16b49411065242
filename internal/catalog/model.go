// internal/catalog/model.go
package catalog

import "strings"

// DefaultBytesPerRow is the raster row size of the standard 62mm print head
const DefaultBytesPerRow = 90

// Positioning overrides the horizontal placement of one label on one model
type Positioning struct {
	StandardPosition *int `json:"standard_position,omitempty"`
}

// PrinterModel holds the capability record of a printer model
type PrinterModel struct {
	Name              string                 `json:"name"`
	MinLengthDots     int                    `json:"min_length_dots"`
	MaxLengthDots     int                    `json:"max_length_dots"`
	BytesPerRow       int                    `json:"bytes_per_row"`
	AdditionalOffsetR int                    `json:"additional_offset_r"`
	HasCutting        bool                   `json:"has_cutting"`
	HasModeSetting    bool                   `json:"has_mode_setting"`
	HasExpandedMode   bool                   `json:"has_expanded_mode"`
	HasCompression    bool                   `json:"has_compression"`
	HasTwoColor       bool                   `json:"has_two_color"`
	Has600DPI         bool                   `json:"has_600_dpi"`
	Positioning       map[string]Positioning `json:"positioning,omitempty"`
}

// PixelWidth is the number of dots across the print head
func (m *PrinterModel) PixelWidth() int {
	return m.BytesPerRow * 8
}

// IsWideFormat reports models with a head wider than the standard 62mm one
func (m *PrinterModel) IsWideFormat() bool {
	return m.BytesPerRow > DefaultBytesPerRow
}

// IsPTouch reports tape printers, which use a different raster row header
func (m *PrinterModel) IsPTouch() bool {
	return strings.HasPrefix(strings.ToUpper(m.Name), "PT")
}

// StandardPosition returns the configured x position for a label, if any
func (m *PrinterModel) StandardPosition(labelID string) (int, bool) {
	p, ok := m.Positioning[labelID]
	if !ok || p.StandardPosition == nil {
		return 0, false
	}
	return *p.StandardPosition, true
}

func (m *PrinterModel) clone() PrinterModel {
	c := *m
	if m.Positioning != nil {
		c.Positioning = make(map[string]Positioning, len(m.Positioning))
		for id, p := range m.Positioning {
			if p.StandardPosition != nil {
				v := *p.StandardPosition
				p.StandardPosition = &v
			}
			c.Positioning[id] = p
		}
	}
	return c
}

// NormalizeModelID maps user input such as "ql_810w" onto catalog keys
func NormalizeModelID(id string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(id), "_", "-"))
}
