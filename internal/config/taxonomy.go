package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/wardrobe-assistant/internal/core/domain"
)

// Taxonomies returns the label sets for the two classification passes. A
// TAXONOMY_FILE replaces the env lists for every taxonomy it defines.
func (c Config) Taxonomies() (domain.Taxonomies, error) {
	tax := domain.Taxonomies{
		Categories: append([]string(nil), c.CategoryLabels...),
		Styles:     append([]string(nil), c.StyleLabels...),
	}

	if c.TaxonomyFile != "" {
		fromFile, err := loadTaxonomyFile(c.TaxonomyFile)
		if err != nil {
			return domain.Taxonomies{}, err
		}
		if len(fromFile.Categories) > 0 {
			tax.Categories = fromFile.Categories
		}
		if len(fromFile.Styles) > 0 {
			tax.Styles = fromFile.Styles
		}
	}

	tax.Categories = dedupeLabels(tax.Categories)
	tax.Styles = dedupeLabels(tax.Styles)
	if len(tax.Categories) == 0 || len(tax.Styles) == 0 {
		return domain.Taxonomies{}, errors.New("category and style taxonomies must both be non-empty")
	}
	return tax, nil
}

func loadTaxonomyFile(path string) (domain.Taxonomies, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Taxonomies{}, fmt.Errorf("read taxonomy file: %w", err)
	}
	var tax domain.Taxonomies
	if err := yaml.Unmarshal(data, &tax); err != nil {
		return domain.Taxonomies{}, fmt.Errorf("parse taxonomy file: %w", err)
	}
	return tax, nil
}

func dedupeLabels(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}
