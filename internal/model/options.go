package model

import "fmt"

// RigorLevel shifts certain issue severities upward when strict
type RigorLevel string

const (
	RigorLight    RigorLevel = "light"
	RigorStandard RigorLevel = "standard"
	RigorStrict   RigorLevel = "strict"
)

// ImageSensitivity controls how harshly image differences are ranked
type ImageSensitivity string

const (
	ImageSensitivityLow    ImageSensitivity = "low"
	ImageSensitivityMedium ImageSensitivity = "medium"
	ImageSensitivityHigh   ImageSensitivity = "high"
)

// CompareOptions configures normalization, tolerances and word policies
type CompareOptions struct {
	IgnoreExtraSpaces     bool             `json:"ignore_extra_spaces" yaml:"ignore_extra_spaces" mapstructure:"ignore_extra_spaces"`
	IgnoreLineBreaks      bool             `json:"ignore_line_breaks" yaml:"ignore_line_breaks" mapstructure:"ignore_line_breaks"`
	IgnoreCase            bool             `json:"ignore_case" yaml:"ignore_case" mapstructure:"ignore_case"`
	IgnoreFontDifferences bool             `json:"ignore_font_differences" yaml:"ignore_font_differences" mapstructure:"ignore_font_differences"`
	RigorLevel            RigorLevel       `json:"rigor_level" yaml:"rigor_level" mapstructure:"rigor_level"`
	ImageSensitivity      ImageSensitivity `json:"image_sensitivity" yaml:"image_sensitivity" mapstructure:"image_sensitivity"`
	FontSizeTolerance     float64          `json:"font_size_tolerance" yaml:"font_size_tolerance" mapstructure:"font_size_tolerance"`    // Points
	SpacingTolerance      float64          `json:"spacing_tolerance" yaml:"spacing_tolerance" mapstructure:"spacing_tolerance"`          // Reserved, no check reads it
	ImageSizeTolerance    float64          `json:"image_size_tolerance" yaml:"image_size_tolerance" mapstructure:"image_size_tolerance"` // Percent
	RequiredWords         []string         `json:"required_words" yaml:"required_words" mapstructure:"required_words"`
	ForbiddenWords        []string         `json:"forbidden_words" yaml:"forbidden_words" mapstructure:"forbidden_words"`
}

// DefaultCompareOptions returns the standard review profile
func DefaultCompareOptions() CompareOptions {
	return CompareOptions{
		RigorLevel:         RigorStandard,
		ImageSensitivity:   ImageSensitivityMedium,
		FontSizeTolerance:  2,
		SpacingTolerance:   5,
		ImageSizeTolerance: 10,
		RequiredWords:      []string{},
		ForbiddenWords:     []string{},
	}
}

// Strict reports whether the strict rigor level is selected
func (o CompareOptions) Strict() bool {
	return o.RigorLevel == RigorStrict
}

// Validate rejects unknown enum values and negative tolerances
func (o CompareOptions) Validate() error {
	switch o.RigorLevel {
	case RigorLight, RigorStandard, RigorStrict:
	default:
		return fmt.Errorf("invalid rigor level %q (expected light, standard or strict)", o.RigorLevel)
	}
	switch o.ImageSensitivity {
	case ImageSensitivityLow, ImageSensitivityMedium, ImageSensitivityHigh:
	default:
		return fmt.Errorf("invalid image sensitivity %q (expected low, medium or high)", o.ImageSensitivity)
	}
	if o.FontSizeTolerance < 0 {
		return fmt.Errorf("font size tolerance must not be negative: %v", o.FontSizeTolerance)
	}
	if o.SpacingTolerance < 0 {
		return fmt.Errorf("spacing tolerance must not be negative: %v", o.SpacingTolerance)
	}
	if o.ImageSizeTolerance < 0 {
		return fmt.Errorf("image size tolerance must not be negative: %v", o.ImageSizeTolerance)
	}
	return nil
}
