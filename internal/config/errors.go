package config

import (
	"errors"
	"fmt"
)

// Errors returned by Load and Validate. ErrConfigFile also matches
// ErrLoadConfig.
var (
	ErrLoadConfig    = errors.New("load config failed")
	ErrConfigFile    = fmt.Errorf("%w: config file", ErrLoadConfig)
	ErrInvalidConfig = errors.New("invalid config")
)
