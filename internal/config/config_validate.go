// Reelscore - IMDb Rating Prediction Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelscore

package config

import (
	"fmt"

	"github.com/tomtom215/reelscore/internal/validation"
)

// Validate checks struct tag constraints and the cross-field rules tags cannot express.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}

	if err := c.validateAPI(); err != nil {
		return err
	}

	if err := c.validateFeatures(); err != nil {
		return err
	}

	return c.validateModels()
}

func (c *Config) validateAPI() error {
	if c.API.RetryMaxDelay > 0 && c.API.RetryMaxDelay < c.API.RetryBaseDelay {
		return fmt.Errorf("api.retry_max_delay (%s) must not be shorter than api.retry_base_delay (%s)",
			c.API.RetryMaxDelay, c.API.RetryBaseDelay)
	}
	return nil
}

// validateFeatures rejects field mappings that would make the builder read
// one source column for two roles.
func (c *Config) validateFeatures() error {
	f := c.Features
	roles := map[string]string{}
	for role, field := range map[string]string{
		"id_field":     f.IDField,
		"genre_field":  f.GenreField,
		"rating_field": f.RatingField,
		"year_field":   f.YearField,
		"type_field":   f.TypeField,
	} {
		if other, dup := roles[field]; dup {
			return fmt.Errorf("features.%s and features.%s both map to column %q", role, other, field)
		}
		roles[field] = role
	}

	for _, drop := range f.DropFields {
		if role, ok := roles[drop]; ok {
			return fmt.Errorf("features.drop_fields contains %q which is used as features.%s", drop, role)
		}
	}
	return nil
}

func (c *Config) validateModels() error {
	seen := make(map[string]bool, len(c.Models.Enabled))
	for _, name := range c.Models.Enabled {
		if seen[name] {
			return fmt.Errorf("models.enabled lists %q more than once", name)
		}
		seen[name] = true
	}
	return nil
}
