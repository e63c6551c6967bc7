package main

import (
	"io"
	"os"

	"go.uber.org/zap"

	weasyreport "github.com/alnah/go-weasyreport"
	"github.com/alnah/go-weasyreport/internal/config"
)

// BackendFactory builds the paged-media engine and the fallback renderer.
// Either may be nil when unavailable.
type BackendFactory func(cfg *config.Config, logger *zap.Logger) (weasyreport.Engine, weasyreport.Renderer)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Stdout   io.Writer
	Stderr   io.Writer
	Getenv   func(string) string
	Backends BackendFactory
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Getenv:   os.Getenv,
		Backends: defaultBackends,
	}
}
