package siteconfig

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Price holds a plan price that may be numeric ("99") or free text ("Contact us").
type Price struct {
	Amount  float64
	Label   string
	Numeric bool
}

// UnmarshalYAML accepts numbers and strings.
func (p *Price) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("siteconfig: price must be a scalar (line %d)", node.Line)
	}
	switch node.Tag {
	case "!!int", "!!float":
		amount, err := strconv.ParseFloat(node.Value, 64)
		if err != nil {
			return fmt.Errorf("siteconfig: invalid price %q: %w", node.Value, err)
		}
		*p = Price{Amount: amount, Numeric: true}
	default:
		*p = Price{Label: node.Value}
	}
	return nil
}

// MarshalYAML keeps the original representation.
func (p Price) MarshalYAML() (any, error) {
	if p.Numeric {
		return p.Amount, nil
	}
	return p.Label, nil
}

// Yearly returns the yearly price for numeric prices when a discount applies,
// rounded to the nearest unit. ok is false when no yearly price exists.
func (p Price) Yearly(discountPercent float64) (float64, bool) {
	if !p.Numeric || discountPercent <= 0 {
		return 0, false
	}
	return math.Round(p.Amount * 12 * (1 - discountPercent/100)), true
}

// String renders the price for display.
func (p Price) String() string {
	if !p.Numeric {
		return p.Label
	}
	return strconv.FormatFloat(p.Amount, 'f', -1, 64)
}

// FeatureValue is either a boolean inclusion flag or a short text such as "10 GB".
type FeatureValue struct {
	Included bool
	Text     string
}

// UnmarshalYAML accepts booleans and strings.
func (f *FeatureValue) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("siteconfig: feature value must be a scalar (line %d)", node.Line)
	}
	if node.Tag == "!!bool" {
		var included bool
		if err := node.Decode(&included); err != nil {
			return err
		}
		*f = FeatureValue{Included: included}
		return nil
	}
	text := strings.TrimSpace(node.Value)
	*f = FeatureValue{Included: text != "", Text: text}
	return nil
}

// MarshalYAML keeps the original representation.
func (f FeatureValue) MarshalYAML() (any, error) {
	if f.Text != "" {
		return f.Text, nil
	}
	return f.Included, nil
}

// ReleaseSources accepts either a single "owner/repo" string or a list of
// sources.
type ReleaseSources []ReleaseSource

// UnmarshalYAML implements the string-or-list form.
func (r *ReleaseSources) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		repo := strings.TrimSpace(node.Value)
		if repo == "" {
			*r = nil
			return nil
		}
		*r = ReleaseSources{{Repo: repo}}
		return nil
	case yaml.SequenceNode:
		out := make(ReleaseSources, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind == yaml.ScalarNode {
				out = append(out, ReleaseSource{Repo: strings.TrimSpace(item.Value)})
				continue
			}
			var source ReleaseSource
			if err := item.Decode(&source); err != nil {
				return err
			}
			out = append(out, source)
		}
		*r = out
		return nil
	case yaml.MappingNode:
		var source ReleaseSource
		if err := node.Decode(&source); err != nil {
			return err
		}
		*r = ReleaseSources{source}
		return nil
	default:
		return fmt.Errorf("siteconfig: releaseRepo must be a string or list (line %d)", node.Line)
	}
}
