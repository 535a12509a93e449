package config

import "errors"

// ErrInvalidConfig is returned when the config file fails to load, parse,
// or validate.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// ErrInvalidOverride is returned when a "-df_" CLI override names an
// unknown field, or a field whose kind isn't eligible for override.
var ErrInvalidOverride = errors.New("config: invalid override")
