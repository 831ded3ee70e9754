package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/dgallion1/designmark/internal/classify"
	"github.com/dgallion1/designmark/internal/copyfit"
	"github.com/dgallion1/designmark/internal/doctree"
	"github.com/dgallion1/designmark/internal/emit"
	"github.com/dgallion1/designmark/internal/geometry"
	"github.com/dgallion1/designmark/internal/synth"
)

// Heuristics gathers every tunable threshold of the conversion stages. A TOML
// file mirrors it section by section:
//
//	[geometry]
//	epsilon = 2.0
//
//	[synth]
//	grid_max_columns = 3
type Heuristics struct {
	Limits   doctree.Limits   `toml:"limits"`
	Geometry geometry.Options `toml:"geometry"`
	Classify classify.Options `toml:"classify"`
	Synth    synth.Options    `toml:"synth"`
	Emit     emit.Options     `toml:"emit"`
	Copyfit  copyfit.Config   `toml:"copyfit"`
}

// DefaultHeuristics returns the defaults of every stage.
func DefaultHeuristics() Heuristics {
	return Heuristics{
		Limits:   doctree.DefaultLimits(),
		Geometry: geometry.DefaultOptions(),
		Classify: classify.DefaultOptions(),
		Synth:    synth.DefaultOptions(),
		Emit:     emit.DefaultOptions(),
		Copyfit:  copyfit.DefaultConfig(),
	}
}

// LoadHeuristics reads a TOML file over the defaults. Keys the file sets
// that no stage understands are an error, so a typo never silently keeps a
// default.
func LoadHeuristics(path string) (Heuristics, error) {
	h := DefaultHeuristics()
	meta, err := toml.DecodeFile(path, &h)
	if err != nil {
		return Heuristics{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Heuristics{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := h.Validate(); err != nil {
		return Heuristics{}, fmt.Errorf("%s: %w", path, err)
	}
	return h, nil
}

// Validate rejects thresholds outside their meaningful range.
func (h Heuristics) Validate() error {
	checks := []struct {
		ok   bool
		what string
	}{
		{h.Limits.MaxDepth > 0, "limits.max_depth must be positive"},
		{h.Limits.MaxNodes > 0, "limits.max_nodes must be positive"},
		{h.Geometry.Epsilon >= 0, "geometry.epsilon must not be negative"},
		{h.Geometry.OverlapThreshold > 0 && h.Geometry.OverlapThreshold <= 1, "geometry.overlap_threshold must be in (0, 1]"},
		{h.Geometry.MinSizeRatio > 0 && h.Geometry.MinSizeRatio <= 1, "geometry.min_size_ratio must be in (0, 1]"},
		{h.Geometry.DuplicateRatio > 0 && h.Geometry.DuplicateRatio <= 1, "geometry.duplicate_ratio must be in (0, 1]"},
		{h.Classify.HeaderBand > 0 && h.Classify.HeaderBand < 1, "classify.header_band must be in (0, 1)"},
		{h.Classify.FooterBand > 0 && h.Classify.FooterBand < 1, "classify.footer_band must be in (0, 1)"},
		{h.Classify.MinSpan > 0 && h.Classify.MinSpan <= 1, "classify.min_span must be in (0, 1]"},
		{h.Classify.NavGap >= 0, "classify.nav_gap must not be negative"},
		{h.Classify.NavMinLeaves >= 0, "classify.nav_min_leaves must not be negative"},
		{h.Synth.GridMinChildren >= 2, "synth.grid_min_children must be at least 2"},
		{h.Synth.GridMaxColumns >= 1, "synth.grid_max_columns must be at least 1"},
		{h.Synth.IrregularMaxColumns >= 1, "synth.irregular_max_columns must be at least 1"},
		{h.Synth.EqualWidthTolerance >= 0, "synth.equal_width_tolerance must not be negative"},
		{h.Synth.BreakpointRatio > 0 && h.Synth.BreakpointRatio < 1, "synth.breakpoint_ratio must be in (0, 1)"},
		{h.Copyfit.FontSize > 0, "copyfit.font_size must be positive"},
		{h.Copyfit.MaxWords >= h.Copyfit.MinWords, "copyfit.max_words must not be below min_words"},
	}
	for _, c := range checks {
		if !c.ok {
			return fmt.Errorf("%s", c.what)
		}
	}
	return nil
}
