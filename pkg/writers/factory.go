// Package writers provides dataset writers for the supported output
// formats.
package writers

import (
	"fmt"

	"github.com/TFMV/vectorgen/pkg/core"
)

// UnsupportedFormatError reports a requested output format the tool has no
// writer for. Unknown formats are rejected, never substituted.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported output format: %s", e.Format)
}

// Factory creates a writer based on the given configuration.
type Factory struct {
	// registered writers by format
	writers map[string]Creator
}

// Creator is a function that creates a writer from a configuration.
type Creator func(config core.WriterConfig) (core.DatasetWriter, error)

// NewFactory creates a new writer factory.
func NewFactory() *Factory {
	return &Factory{
		writers: make(map[string]Creator),
	}
}

// Register registers a creator for a format.
func (f *Factory) Register(format string, creator Creator) {
	f.writers[format] = creator
}

// Create creates a writer based on the given configuration.
func (f *Factory) Create(config core.WriterConfig) (core.DatasetWriter, error) {
	creator, ok := f.writers[config.Format]
	if !ok {
		return nil, &UnsupportedFormatError{Format: config.Format}
	}
	return creator(config)
}

// Supported reports whether the factory has a writer for the format.
func (f *Factory) Supported(format string) bool {
	_, ok := f.writers[format]
	return ok
}

// DefaultFactory is the default writer factory with built-in formats.
var DefaultFactory = NewFactory()

func init() {
	DefaultFactory.Register(core.FormatParquet, NewParquetWriter)
	DefaultFactory.Register(core.FormatJSON, NewJSONWriter)
}
