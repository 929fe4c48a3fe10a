package integrations

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"time"

	"github.com/goccy/go-json"
	"github.com/milvus-io/milvus/client/v2/column"
	"github.com/milvus-io/milvus/client/v2/entity"
	"github.com/milvus-io/milvus/client/v2/index"
	"github.com/milvus-io/milvus/client/v2/milvusclient"
	"go.uber.org/zap"

	"github.com/TFMV/vectorgen/config"
	"github.com/TFMV/vectorgen/metrics"
	"github.com/TFMV/vectorgen/pkg/readers"
	"github.com/TFMV/vectorgen/pkg/schema"
)

// insertBatchSize bounds the rows per insert call so one file's worth of
// data never has to fit into a single gRPC message.
const insertBatchSize = 5000

// MilvusImportOptions control collection lifecycle around an import.
type MilvusImportOptions struct {
	// DropIfExists drops an existing collection of the same name first.
	DropIfExists bool

	// CreateIndexes builds vector indexes after the data is flushed.
	CreateIndexes bool

	// LoadCollection loads the collection into memory at the end.
	LoadCollection bool
}

// MilvusImporter inserts generated data files directly into a Milvus
// instance, creating the collection from the manifest schema.
type MilvusImporter struct {
	client *milvusclient.Client
	opts   MilvusImportOptions
	logger *zap.Logger
}

// NewMilvusImporter connects to Milvus.
func NewMilvusImporter(ctx context.Context, cfg config.MilvusConfig, opts MilvusImportOptions, logger *zap.Logger) (*MilvusImporter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client, err := milvusclient.New(ctx, &milvusclient.ClientConfig{
		Address: cfg.URI,
		APIKey:  cfg.Token,
		DBName:  cfg.Database,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to Milvus at %s: %w", cfg.URI, err)
	}
	return &MilvusImporter{client: client, opts: opts, logger: logger}, nil
}

// Close closes the Milvus connection.
func (m *MilvusImporter) Close(ctx context.Context) error {
	return m.client.Close(ctx)
}

// Import creates the collection from the manifest schema and inserts every
// data file.
func (m *MilvusImporter) Import(ctx context.Context, dir string) (*ImportResult, error) {
	start := time.Now()

	manifest, err := metrics.LoadManifest(dir)
	if err != nil {
		return nil, err
	}
	s := &manifest.Schema

	if err := m.ensureCollection(ctx, s); err != nil {
		return nil, err
	}

	result := &ImportResult{Collection: s.CollectionName}
	for _, name := range manifest.GenerationInfo.DataFiles {
		rows, err := m.insertFile(ctx, s, filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("inserting %s: %w", name, err)
		}
		result.RowsInserted += rows
		result.FilesRead++
		m.logger.Info("inserted file",
			zap.String("file", name), zap.Int64("rows", rows))
	}

	flushTask, err := m.client.Flush(ctx, milvusclient.NewFlushOption(s.CollectionName))
	if err != nil {
		return nil, fmt.Errorf("flushing collection: %w", err)
	}
	if err := flushTask.Await(ctx); err != nil {
		return nil, fmt.Errorf("waiting for flush: %w", err)
	}

	if m.opts.CreateIndexes {
		indexes, err := m.createIndexes(ctx, s)
		if err != nil {
			return nil, err
		}
		result.Indexes = indexes
	}

	if m.opts.LoadCollection {
		loadTask, err := m.client.LoadCollection(ctx,
			milvusclient.NewLoadCollectionOption(s.CollectionName))
		if err != nil {
			return nil, fmt.Errorf("loading collection: %w", err)
		}
		if err := loadTask.Await(ctx); err != nil {
			return nil, fmt.Errorf("waiting for load: %w", err)
		}
	}

	result.Duration = time.Since(start)
	return result, nil
}

// ensureCollection creates the destination collection, honoring
// DropIfExists. An existing collection without DropIfExists is an error so
// imports never mix runs silently.
func (m *MilvusImporter) ensureCollection(ctx context.Context, s *schema.CollectionSchema) error {
	exists, err := m.client.HasCollection(ctx,
		milvusclient.NewHasCollectionOption(s.CollectionName))
	if err != nil {
		return fmt.Errorf("checking collection: %w", err)
	}
	if exists {
		if !m.opts.DropIfExists {
			return fmt.Errorf("collection %q already exists (use drop-if-exists to recreate)", s.CollectionName)
		}
		if err := m.client.DropCollection(ctx,
			milvusclient.NewDropCollectionOption(s.CollectionName)); err != nil {
			return fmt.Errorf("dropping collection: %w", err)
		}
	}

	entitySchema, err := buildEntitySchema(s)
	if err != nil {
		return err
	}
	if err := m.client.CreateCollection(ctx,
		milvusclient.NewCreateCollectionOption(s.CollectionName, entitySchema)); err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}
	m.logger.Info("created collection", zap.String("collection", s.CollectionName))
	return nil
}

// buildEntitySchema translates the generated collection schema into the
// Milvus entity schema.
func buildEntitySchema(s *schema.CollectionSchema) (*entity.Schema, error) {
	out := entity.NewSchema().WithName(s.CollectionName)

	for _, f := range s.Fields {
		field := entity.NewField().WithName(f.Name)

		switch f.Type {
		case schema.FieldTypeBool:
			field = field.WithDataType(entity.FieldTypeBool)
		case schema.FieldTypeInt8:
			field = field.WithDataType(entity.FieldTypeInt8)
		case schema.FieldTypeInt16:
			field = field.WithDataType(entity.FieldTypeInt16)
		case schema.FieldTypeInt32:
			field = field.WithDataType(entity.FieldTypeInt32)
		case schema.FieldTypeInt64:
			field = field.WithDataType(entity.FieldTypeInt64)
		case schema.FieldTypeFloat:
			field = field.WithDataType(entity.FieldTypeFloat)
		case schema.FieldTypeDouble:
			field = field.WithDataType(entity.FieldTypeDouble)
		case schema.FieldTypeVarChar:
			field = field.WithDataType(entity.FieldTypeVarChar).WithMaxLength(int64(f.MaxLength))
		case schema.FieldTypeJSON:
			field = field.WithDataType(entity.FieldTypeJSON)
		case schema.FieldTypeArray:
			et, err := arrayElementType(f.ElementType)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", f.Name, err)
			}
			field = field.WithDataType(entity.FieldTypeArray).
				WithElementType(et).
				WithMaxCapacity(int64(f.MaxCapacity))
			if f.ElementType == schema.FieldTypeVarChar {
				field = field.WithMaxLength(int64(f.MaxLength))
			}
		case schema.FieldTypeFloatVector:
			field = field.WithDataType(entity.FieldTypeFloatVector).WithDim(int64(f.Dim))
		case schema.FieldTypeBinaryVector:
			field = field.WithDataType(entity.FieldTypeBinaryVector).WithDim(int64(f.Dim))
		case schema.FieldTypeFloat16Vector:
			field = field.WithDataType(entity.FieldTypeFloat16Vector).WithDim(int64(f.Dim))
		case schema.FieldTypeBFloat16Vector:
			field = field.WithDataType(entity.FieldTypeBFloat16Vector).WithDim(int64(f.Dim))
		case schema.FieldTypeSparseFloatVector:
			field = field.WithDataType(entity.FieldTypeSparseVector)
		default:
			return nil, fmt.Errorf("field %s: type %s is not supported by direct import", f.Name, f.Type)
		}

		if f.IsPrimary {
			field = field.WithIsPrimaryKey(true)
		}
		if f.AutoID {
			field = field.WithIsAutoID(true)
		}
		if f.Nullable {
			field = field.WithNullable(true)
		}

		out = out.WithField(field)
	}
	return out, nil
}

func arrayElementType(t schema.FieldType) (entity.FieldType, error) {
	switch t {
	case schema.FieldTypeBool:
		return entity.FieldTypeBool, nil
	case schema.FieldTypeInt8:
		return entity.FieldTypeInt8, nil
	case schema.FieldTypeInt16:
		return entity.FieldTypeInt16, nil
	case schema.FieldTypeInt32:
		return entity.FieldTypeInt32, nil
	case schema.FieldTypeInt64:
		return entity.FieldTypeInt64, nil
	case schema.FieldTypeFloat:
		return entity.FieldTypeFloat, nil
	case schema.FieldTypeDouble:
		return entity.FieldTypeDouble, nil
	case schema.FieldTypeVarChar:
		return entity.FieldTypeVarChar, nil
	default:
		return 0, fmt.Errorf("unsupported array element type %s", t)
	}
}

// insertFile streams one data file into the collection in bounded
// batches.
func (m *MilvusImporter) insertFile(ctx context.Context, s *schema.CollectionSchema, path string) (int64, error) {
	r, err := readers.OpenRows(path)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	var total int64
	batch := make([]readers.Row, 0, insertBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := m.insertBatch(ctx, s, batch); err != nil {
			return err
		}
		total += int64(len(batch))
		batch = batch[:0]
		return nil
	}

	for {
		row, err := r.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return 0, err
		}
		batch = append(batch, row)
		if len(batch) == insertBatchSize {
			if err := flush(); err != nil {
				return 0, err
			}
		}
	}
	if err := flush(); err != nil {
		return 0, err
	}
	return total, nil
}

func (m *MilvusImporter) insertBatch(ctx context.Context, s *schema.CollectionSchema, batch []readers.Row) error {
	columns, err := buildColumns(s, batch)
	if err != nil {
		return err
	}
	_, err = m.client.Insert(ctx,
		milvusclient.NewColumnBasedInsertOption(s.CollectionName, columns...))
	return err
}

// buildColumns converts row maps into Milvus columns in schema order,
// skipping auto_id fields.
func buildColumns(s *schema.CollectionSchema, batch []readers.Row) ([]column.Column, error) {
	columns := make([]column.Column, 0, len(s.Fields))
	for _, f := range s.OutputFields() {
		col, err := buildColumn(f, batch)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		columns = append(columns, col)
	}
	return columns, nil
}

func buildColumn(f schema.FieldSpec, batch []readers.Row) (column.Column, error) {
	n := len(batch)
	switch f.Type {
	case schema.FieldTypeBool:
		vals := make([]bool, n)
		for i, row := range batch {
			vals[i], _ = row[f.Name].(bool)
		}
		return column.NewColumnBool(f.Name, vals), nil
	case schema.FieldTypeInt8:
		vals := make([]int8, n)
		for i, row := range batch {
			v, _ := toInt64(row[f.Name])
			vals[i] = int8(v)
		}
		return column.NewColumnInt8(f.Name, vals), nil
	case schema.FieldTypeInt16:
		vals := make([]int16, n)
		for i, row := range batch {
			v, _ := toInt64(row[f.Name])
			vals[i] = int16(v)
		}
		return column.NewColumnInt16(f.Name, vals), nil
	case schema.FieldTypeInt32:
		vals := make([]int32, n)
		for i, row := range batch {
			v, _ := toInt64(row[f.Name])
			vals[i] = int32(v)
		}
		return column.NewColumnInt32(f.Name, vals), nil
	case schema.FieldTypeInt64:
		vals := make([]int64, n)
		for i, row := range batch {
			vals[i], _ = toInt64(row[f.Name])
		}
		return column.NewColumnInt64(f.Name, vals), nil
	case schema.FieldTypeFloat:
		vals := make([]float32, n)
		for i, row := range batch {
			v, _ := toFloat64(row[f.Name])
			vals[i] = float32(v)
		}
		return column.NewColumnFloat(f.Name, vals), nil
	case schema.FieldTypeDouble:
		vals := make([]float64, n)
		for i, row := range batch {
			vals[i], _ = toFloat64(row[f.Name])
		}
		return column.NewColumnDouble(f.Name, vals), nil
	case schema.FieldTypeVarChar:
		vals := make([]string, n)
		for i, row := range batch {
			vals[i], _ = row[f.Name].(string)
		}
		return column.NewColumnVarChar(f.Name, vals), nil
	case schema.FieldTypeJSON:
		vals := make([][]byte, n)
		for i, row := range batch {
			b, err := toJSONBytes(row[f.Name])
			if err != nil {
				return nil, err
			}
			vals[i] = b
		}
		return column.NewColumnJSONBytes(f.Name, vals), nil
	case schema.FieldTypeArray:
		return buildArrayColumn(f, batch)
	case schema.FieldTypeFloatVector:
		vals := make([][]float32, n)
		for i, row := range batch {
			vals[i] = toFloat32Slice(row[f.Name])
		}
		return column.NewColumnFloatVector(f.Name, f.Dim, vals), nil
	case schema.FieldTypeBinaryVector:
		vals := make([][]byte, n)
		for i, row := range batch {
			vals[i] = toByteSlice(row[f.Name])
		}
		return column.NewColumnBinaryVector(f.Name, f.Dim, vals), nil
	case schema.FieldTypeFloat16Vector:
		vals := make([][]byte, n)
		for i, row := range batch {
			vals[i] = toByteSlice(row[f.Name])
		}
		return column.NewColumnFloat16Vector(f.Name, f.Dim, vals), nil
	case schema.FieldTypeBFloat16Vector:
		vals := make([][]byte, n)
		for i, row := range batch {
			vals[i] = toByteSlice(row[f.Name])
		}
		return column.NewColumnBFloat16Vector(f.Name, f.Dim, vals), nil
	case schema.FieldTypeSparseFloatVector:
		vals := make([]entity.SparseEmbedding, n)
		for i, row := range batch {
			emb, err := toSparseEmbedding(row[f.Name])
			if err != nil {
				return nil, err
			}
			vals[i] = emb
		}
		return column.NewColumnSparseVectors(f.Name, vals), nil
	default:
		return nil, fmt.Errorf("type %s is not supported by direct import", f.Type)
	}
}

func buildArrayColumn(f schema.FieldSpec, batch []readers.Row) (column.Column, error) {
	n := len(batch)
	switch f.ElementType {
	case schema.FieldTypeBool:
		vals := make([][]bool, n)
		for i, row := range batch {
			for _, e := range toAnySlice(row[f.Name]) {
				b, _ := e.(bool)
				vals[i] = append(vals[i], b)
			}
		}
		return column.NewColumnBoolArray(f.Name, vals), nil
	case schema.FieldTypeInt8:
		vals := make([][]int8, n)
		for i, row := range batch {
			for _, e := range toAnySlice(row[f.Name]) {
				v, _ := toInt64(e)
				vals[i] = append(vals[i], int8(v))
			}
		}
		return column.NewColumnInt8Array(f.Name, vals), nil
	case schema.FieldTypeInt16:
		vals := make([][]int16, n)
		for i, row := range batch {
			for _, e := range toAnySlice(row[f.Name]) {
				v, _ := toInt64(e)
				vals[i] = append(vals[i], int16(v))
			}
		}
		return column.NewColumnInt16Array(f.Name, vals), nil
	case schema.FieldTypeInt32:
		vals := make([][]int32, n)
		for i, row := range batch {
			for _, e := range toAnySlice(row[f.Name]) {
				v, _ := toInt64(e)
				vals[i] = append(vals[i], int32(v))
			}
		}
		return column.NewColumnInt32Array(f.Name, vals), nil
	case schema.FieldTypeInt64:
		vals := make([][]int64, n)
		for i, row := range batch {
			for _, e := range toAnySlice(row[f.Name]) {
				v, _ := toInt64(e)
				vals[i] = append(vals[i], v)
			}
		}
		return column.NewColumnInt64Array(f.Name, vals), nil
	case schema.FieldTypeFloat:
		vals := make([][]float32, n)
		for i, row := range batch {
			for _, e := range toAnySlice(row[f.Name]) {
				v, _ := toFloat64(e)
				vals[i] = append(vals[i], float32(v))
			}
		}
		return column.NewColumnFloatArray(f.Name, vals), nil
	case schema.FieldTypeDouble:
		vals := make([][]float64, n)
		for i, row := range batch {
			for _, e := range toAnySlice(row[f.Name]) {
				v, _ := toFloat64(e)
				vals[i] = append(vals[i], v)
			}
		}
		return column.NewColumnDoubleArray(f.Name, vals), nil
	case schema.FieldTypeVarChar:
		vals := make([][]string, n)
		for i, row := range batch {
			for _, e := range toAnySlice(row[f.Name]) {
				s, _ := e.(string)
				vals[i] = append(vals[i], s)
			}
		}
		return column.NewColumnVarCharArray(f.Name, vals), nil
	default:
		return nil, fmt.Errorf("unsupported array element type %s", f.ElementType)
	}
}

// createIndexes builds one vector index per vector field, picking the
// index family by encoding.
func (m *MilvusImporter) createIndexes(ctx context.Context, s *schema.CollectionSchema) ([]string, error) {
	var created []string
	for _, f := range s.Fields {
		var idx index.Index
		switch f.Type {
		case schema.FieldTypeFloatVector, schema.FieldTypeFloat16Vector, schema.FieldTypeBFloat16Vector:
			idx = index.NewHNSWIndex(entity.COSINE, 16, 200)
		case schema.FieldTypeBinaryVector:
			idx = index.NewBinFlatIndex(entity.HAMMING)
		case schema.FieldTypeSparseFloatVector:
			idx = index.NewSparseInvertedIndex(entity.IP, 0.2)
		default:
			continue
		}

		task, err := m.client.CreateIndex(ctx,
			milvusclient.NewCreateIndexOption(s.CollectionName, f.Name, idx))
		if err != nil {
			return created, fmt.Errorf("creating index on %s: %w", f.Name, err)
		}
		if err := task.Await(ctx); err != nil {
			return created, fmt.Errorf("waiting for index on %s: %w", f.Name, err)
		}
		created = append(created, f.Name)
		m.logger.Info("created index",
			zap.String("field", f.Name), zap.String("type", f.Type.String()))
	}
	return created, nil
}

// --- row value conversions (parquet rows carry native Go values, JSONL
// rows carry json.Number and nested maps) ---

func toInt64(v any) (int64, bool) {
	switch v := v.(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	default:
		return 0, false
	}
}

func toFloat64(v any) (float64, bool) {
	switch v := v.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func toAnySlice(v any) []any {
	s, _ := v.([]any)
	return s
}

func toFloat32Slice(v any) []float32 {
	raw := toAnySlice(v)
	out := make([]float32, len(raw))
	for i, e := range raw {
		f, _ := toFloat64(e)
		out[i] = float32(f)
	}
	return out
}

func toByteSlice(v any) []byte {
	raw := toAnySlice(v)
	out := make([]byte, len(raw))
	for i, e := range raw {
		n, _ := toInt64(e)
		out[i] = byte(n)
	}
	return out
}

func toJSONBytes(v any) ([]byte, error) {
	if s, ok := v.(string); ok {
		return []byte(s), nil
	}
	return json.Marshal(v)
}

// toSparseEmbedding decodes the sparse vector's JSON-object encoding
// (decimal index keys) into a Milvus sparse embedding.
func toSparseEmbedding(v any) (entity.SparseEmbedding, error) {
	var obj map[string]any
	switch v := v.(type) {
	case string:
		if err := json.Unmarshal([]byte(v), &obj); err != nil {
			return nil, fmt.Errorf("decoding sparse vector: %w", err)
		}
	case map[string]any:
		obj = v
	default:
		return nil, fmt.Errorf("unexpected sparse vector representation %T", v)
	}

	type pair struct {
		pos uint32
		val float32
	}
	pairs := make([]pair, 0, len(obj))
	for k, raw := range obj {
		var idx uint32
		if _, err := fmt.Sscanf(k, "%d", &idx); err != nil {
			return nil, fmt.Errorf("sparse vector index %q: %w", k, err)
		}
		f, _ := toFloat64(raw)
		pairs = append(pairs, pair{pos: idx, val: float32(f)})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].pos < pairs[j].pos })

	positions := make([]uint32, len(pairs))
	values := make([]float32, len(pairs))
	for i, p := range pairs {
		positions[i] = p.pos
		values[i] = p.val
	}
	return entity.NewSliceSparseEmbedding(positions, values)
}
