/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"

	"go.uber.org/zap"
)

func newLogger(cfg *Config) (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()

	switch {
	case cfg.verbose:
		zc.Level.SetLevel(zap.DebugLevel)
	case cfg.logLevel == "debug":
		zc.Level.SetLevel(zap.DebugLevel)
	case cfg.logLevel == "warn":
		zc.Level.SetLevel(zap.WarnLevel)
	case cfg.logLevel == "error":
		zc.Level.SetLevel(zap.ErrorLevel)
	default:
		zc.Level.SetLevel(zap.InfoLevel)
	}

	zc.DisableStacktrace = !cfg.verbose

	lgr, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}

	return lgr, nil
}
