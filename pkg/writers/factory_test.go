package writers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/vectorgen/pkg/core"
)

func TestDefaultFactorySupportedFormats(t *testing.T) {
	assert.True(t, DefaultFactory.Supported(core.FormatParquet))
	assert.True(t, DefaultFactory.Supported(core.FormatJSON))
	assert.False(t, DefaultFactory.Supported("csv"))
	assert.False(t, DefaultFactory.Supported(""))
}

func TestFactoryRejectsUnknownFormat(t *testing.T) {
	_, err := DefaultFactory.Create(core.WriterConfig{Format: "avro", Path: "x.avro"})
	require.Error(t, err)

	var fmtErr *UnsupportedFormatError
	require.ErrorAs(t, err, &fmtErr)
	assert.Equal(t, "avro", fmtErr.Format)
	assert.Contains(t, err.Error(), "unsupported output format")
}

func TestFactoryRegisterCustom(t *testing.T) {
	f := NewFactory()
	assert.False(t, f.Supported("custom"))

	f.Register("custom", func(config core.WriterConfig) (core.DatasetWriter, error) {
		return nil, nil
	})
	assert.True(t, f.Supported("custom"))

	_, err := f.Create(core.WriterConfig{Format: "custom"})
	assert.NoError(t, err)
}

func TestWritersRequirePath(t *testing.T) {
	_, err := NewParquetWriter(core.WriterConfig{Format: core.FormatParquet})
	assert.Error(t, err)

	_, err = NewJSONWriter(core.WriterConfig{Format: core.FormatJSON})
	assert.Error(t, err)
}
