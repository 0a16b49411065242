// internal/catalog/registry.go
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

//go:embed catalog.yaml
var builtinCatalog []byte

var (
	ErrUnknownLabel      = errors.New("unknown label")
	ErrUnknownModel      = errors.New("unknown printer model")
	ErrIncompatibleLabel = errors.New("label not supported by printer model")
	ErrInvalidCatalog    = errors.New("invalid catalog entry")
)

const defaultFeedMargin = 35

type rawPositioning struct {
	StandardPosition *int `mapstructure:"standard_position"`
}

type rawLabel struct {
	Name               string   `mapstructure:"name"`
	WidthMM            float64  `mapstructure:"width_mm"`
	HeightMM           *float64 `mapstructure:"height_mm"`
	Kind               string   `mapstructure:"kind"`
	PrintableWidth     int      `mapstructure:"printable_width"`
	PrintableHeight    *int     `mapstructure:"printable_height"`
	TotalWidth         *int     `mapstructure:"total_width"`
	TotalHeight        *int     `mapstructure:"total_height"`
	RightMarginDots    int      `mapstructure:"right_margin_dots"`
	FeedMargin         *int     `mapstructure:"feed_margin"`
	RestrictedToModels []string `mapstructure:"restricted_to_models"`
}

type rawModel struct {
	Name              string                    `mapstructure:"name"`
	MinMaxLengthDots  []int                     `mapstructure:"min_max_length_dots"`
	BytesPerRow       *int                      `mapstructure:"bytes_per_row"`
	AdditionalOffsetR int                       `mapstructure:"additional_offset_r"`
	HasCutting        *bool                     `mapstructure:"has_cutting"`
	HasModeSetting    *bool                     `mapstructure:"has_mode_setting"`
	HasExpandedMode   *bool                     `mapstructure:"has_expanded_mode"`
	HasCompression    *bool                     `mapstructure:"has_compression"`
	HasTwoColor       bool                      `mapstructure:"has_two_color"`
	Has600DPI         bool                      `mapstructure:"has_600_dpi"`
	Positioning       map[string]rawPositioning `mapstructure:"positioning"`
}

type rawCatalog struct {
	Labels map[string]rawLabel `mapstructure:"labels"`
	Models map[string]rawModel `mapstructure:"models"`
}

// Registry holds the label and printer model tables
type Registry struct {
	labels map[string]*LabelSpec
	models map[string]*PrinterModel
	mu     sync.RWMutex
	logger *zap.Logger
}

// NewRegistry creates an empty registry
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		labels: make(map[string]*LabelSpec),
		models: make(map[string]*PrinterModel),
		logger: logger,
	}
}

// Load builds a registry from the built-in catalog, merging the optional
// override file on top of it. Entries in the override replace built-in
// entries with the same key.
func Load(overridePath string, logger *zap.Logger) (*Registry, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(builtinCatalog)); err != nil {
		return nil, fmt.Errorf("failed to read built-in catalog: %w", err)
	}

	if overridePath != "" {
		v.SetConfigFile(overridePath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("failed to merge catalog %s: %w", overridePath, err)
		}
		logger.Info("Catalog overrides merged", zap.String("path", overridePath))
	}

	var raw rawCatalog
	if err := v.Unmarshal(&raw); err != nil {
		return nil, fmt.Errorf("unable to decode catalog: %w", err)
	}

	registry := NewRegistry(logger)
	for id, rl := range raw.Labels {
		label, err := rl.toSpec(id)
		if err != nil {
			return nil, err
		}
		registry.RegisterLabel(label)
	}
	for id, rm := range raw.Models {
		model, err := rm.toModel(id)
		if err != nil {
			return nil, err
		}
		registry.RegisterModel(model)
	}

	logger.Info("Catalog loaded",
		zap.Int("labels", len(registry.labels)),
		zap.Int("models", len(registry.models)),
	)
	return registry, nil
}

// MustLoadBuiltin loads the built-in catalog and panics on failure
func MustLoadBuiltin() *Registry {
	r, err := Load("", zap.NewNop())
	if err != nil {
		panic(err)
	}
	return r
}

func (rl rawLabel) toSpec(id string) (*LabelSpec, error) {
	kind := ParseLabelKind(rl.Kind)
	spec := &LabelSpec{
		Identifier:         normalizeLabelID(id),
		Name:               rl.Name,
		WidthMM:            rl.WidthMM,
		HeightMM:           rl.HeightMM,
		Kind:               kind,
		PrintableWidth:     rl.PrintableWidth,
		PrintableHeight:    rl.PrintableHeight,
		TotalWidth:         rl.PrintableWidth,
		TotalHeight:        rl.TotalHeight,
		RightMarginDots:    rl.RightMarginDots,
		FeedMargin:         defaultFeedMargin,
		RestrictedToModels: normalizeModelList(rl.RestrictedToModels),
	}
	if spec.Name == "" {
		spec.Name = spec.Identifier
	}
	if rl.TotalWidth != nil {
		spec.TotalWidth = *rl.TotalWidth
	}
	if rl.FeedMargin != nil {
		spec.FeedMargin = *rl.FeedMargin
	}

	if spec.PrintableWidth <= 0 {
		return nil, fmt.Errorf("%w: label %s has no printable width", ErrInvalidCatalog, id)
	}
	if spec.IsEndless() != (spec.PrintableHeight == nil) {
		return nil, fmt.Errorf("%w: label %s must have a printable height exactly when it is not endless", ErrInvalidCatalog, id)
	}
	return spec, nil
}

func (rm rawModel) toModel(id string) (*PrinterModel, error) {
	model := &PrinterModel{
		Name:              NormalizeModelID(rm.Name),
		BytesPerRow:       DefaultBytesPerRow,
		AdditionalOffsetR: rm.AdditionalOffsetR,
		HasCutting:        boolOr(rm.HasCutting, true),
		HasModeSetting:    boolOr(rm.HasModeSetting, true),
		HasExpandedMode:   boolOr(rm.HasExpandedMode, true),
		HasCompression:    boolOr(rm.HasCompression, true),
		HasTwoColor:       rm.HasTwoColor,
		Has600DPI:         rm.Has600DPI,
	}
	if model.Name == "" {
		model.Name = NormalizeModelID(id)
	}
	if rm.BytesPerRow != nil {
		model.BytesPerRow = *rm.BytesPerRow
	}
	if len(rm.MinMaxLengthDots) == 2 {
		model.MinLengthDots = rm.MinMaxLengthDots[0]
		model.MaxLengthDots = rm.MinMaxLengthDots[1]
	}
	if len(rm.Positioning) > 0 {
		model.Positioning = make(map[string]Positioning, len(rm.Positioning))
		for labelID, p := range rm.Positioning {
			model.Positioning[normalizeLabelID(labelID)] = Positioning{StandardPosition: p.StandardPosition}
		}
	}

	if model.BytesPerRow <= 0 {
		return nil, fmt.Errorf("%w: model %s has no bytes per row", ErrInvalidCatalog, id)
	}
	return model, nil
}

// RegisterLabel adds or replaces a label
func (r *Registry) RegisterLabel(label *LabelSpec) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.labels[normalizeLabelID(label.Identifier)] = label
	r.logger.Debug("Label registered",
		zap.String("label", label.Identifier),
		zap.String("kind", string(label.Kind)),
	)
}

// RegisterModel adds or replaces a printer model
func (r *Registry) RegisterModel(model *PrinterModel) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.models[NormalizeModelID(model.Name)] = model
	r.logger.Debug("Printer model registered",
		zap.String("model", model.Name),
		zap.Int("bytes_per_row", model.BytesPerRow),
	)
}

// Label looks up a label by identifier
func (r *Registry) Label(id string) (*LabelSpec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	label, ok := r.labels[normalizeLabelID(id)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLabel, id)
	}
	l := label.clone()
	return &l, nil
}

// Model looks up a printer model; the identifier is case-insensitive and
// underscores are accepted in place of dashes. The result is a copy the
// caller may modify.
func (r *Registry) Model(id string) (*PrinterModel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	model, ok := r.models[NormalizeModelID(id)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, id)
	}
	m := model.clone()
	return &m, nil
}

// Resolve looks up both entries and checks that they may be combined
func (r *Registry) Resolve(labelID, modelID string) (*LabelSpec, *PrinterModel, error) {
	model, err := r.Model(modelID)
	if err != nil {
		return nil, nil, err
	}
	label, err := r.Label(labelID)
	if err != nil {
		return nil, nil, err
	}
	if err := CheckCompatibility(label, model); err != nil {
		return nil, nil, err
	}
	return label, model, nil
}

// CheckCompatibility fails when a label is restricted to other models
func CheckCompatibility(label *LabelSpec, model *PrinterModel) error {
	if !label.AllowedOn(model.Name) {
		return fmt.Errorf("%w: label %s is restricted to %s",
			ErrIncompatibleLabel, label.Identifier, strings.Join(label.RestrictedToModels, ", "))
	}
	return nil
}

// PositionOverride returns the configured x position of a label on a model
func (r *Registry) PositionOverride(modelID, labelID string) (int, bool) {
	model, err := r.Model(modelID)
	if err != nil {
		return 0, false
	}
	return model.StandardPosition(normalizeLabelID(labelID))
}

// Labels returns every label sorted by identifier
func (r *Registry) Labels() []LabelSpec {
	return r.filterLabels(func(*LabelSpec) bool { return true })
}

// LabelsForModel returns the labels usable on a model
func (r *Registry) LabelsForModel(modelID string) []LabelSpec {
	name := NormalizeModelID(modelID)
	return r.filterLabels(func(l *LabelSpec) bool { return l.AllowedOn(name) })
}

// DieCutLabels returns die-cut and round die-cut labels
func (r *Registry) DieCutLabels() []LabelSpec {
	return r.filterLabels((*LabelSpec).IsDieCut)
}

// EndlessLabels returns endless and tape labels
func (r *Registry) EndlessLabels() []LabelSpec {
	return r.filterLabels((*LabelSpec).IsEndless)
}

// Models returns every printer model sorted by name
func (r *Registry) Models() []PrinterModel {
	return r.filterModels(func(*PrinterModel) bool { return true })
}

// TwoColorModels returns models able to print red and black
func (r *Registry) TwoColorModels() []PrinterModel {
	return r.filterModels(func(m *PrinterModel) bool { return m.HasTwoColor })
}

// CompressionModels returns models that accept compressed raster rows
func (r *Registry) CompressionModels() []PrinterModel {
	return r.filterModels(func(m *PrinterModel) bool { return m.HasCompression })
}

// WideFormatModels returns models with a wide print head
func (r *Registry) WideFormatModels() []PrinterModel {
	return r.filterModels((*PrinterModel).IsWideFormat)
}

func (r *Registry) filterLabels(keep func(*LabelSpec) bool) []LabelSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	labels := make([]LabelSpec, 0, len(r.labels))
	for _, l := range r.labels {
		if keep(l) {
			labels = append(labels, l.clone())
		}
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i].Identifier < labels[j].Identifier })
	return labels
}

func (r *Registry) filterModels(keep func(*PrinterModel) bool) []PrinterModel {
	r.mu.RLock()
	defer r.mu.RUnlock()

	models := make([]PrinterModel, 0, len(r.models))
	for _, m := range r.models {
		if keep(m) {
			models = append(models, m.clone())
		}
	}
	sort.Slice(models, func(i, j int) bool { return models[i].Name < models[j].Name })
	return models
}

func normalizeLabelID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

func normalizeModelList(models []string) []string {
	if len(models) == 0 {
		return nil
	}
	out := make([]string, len(models))
	for i, m := range models {
		out[i] = NormalizeModelID(m)
	}
	return out
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
