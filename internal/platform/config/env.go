// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ParseEnv fills target from the process environment using its env tags.
// When several variables are invalid each one is reported on its own line.
func ParseEnv(target any) error {
	err := env.Parse(target)
	if err == nil {
		return nil
	}
	var aggregate env.AggregateError
	if errors.As(err, &aggregate) && len(aggregate.Errors) > 1 {
		err = errors.Join(aggregate.Errors...)
	}
	return fmt.Errorf("parse env: %w", err)
}
