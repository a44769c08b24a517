package search

import (
	"fmt"
	"strconv"
	"time"

	"github.com/deppfellow/pixelmags/internal/model"
	"github.com/shopspring/decimal"
)

// Mapper projects records of one kind into index documents and back.
//
// Mappers are pure: ToRecord(ToDocument(r)) equals r on every field the
// document carries.
type Mapper[R model.Record] interface {
	Kind() model.Kind
	Schema() Schema
	ToDocument(record R) Document
	ToRecord(doc Document) (R, error)
}

type recordMapper[R model.Record] struct {
	kind   model.Kind
	schema Schema
	newR   func() R
	encode func(record R, w fieldWriter)
	decode func(record R, r *fieldReader)
}

func (m *recordMapper[R]) Kind() model.Kind {
	return m.kind
}

func (m *recordMapper[R]) Schema() Schema {
	return m.schema
}

func (m *recordMapper[R]) ToDocument(record R) Document {
	fields := fieldWriter{}
	m.encode(record, fields)
	return Document{ID: FormatID(record.GetID()), Fields: fields}
}

func (m *recordMapper[R]) ToRecord(doc Document) (R, error) {
	record := m.newR()

	id, err := ParseID(doc.ID)
	if err != nil {
		var zero R
		return zero, fmt.Errorf("%s document: %w", m.kind, err)
	}
	record.SetID(id)

	reader := &fieldReader{fields: doc.Fields}
	m.decode(record, reader)
	if reader.err != nil {
		var zero R
		return zero, fmt.Errorf("%s document %s: %w", m.kind, doc.ID, reader.err)
	}

	return record, nil
}

// FormatID renders a record id as a document id.
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// ParseID parses a document id.
func ParseID(id string) (int64, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid document id %q", id)
	}
	return n, nil
}

// exactSuffix names the stored-only companion of a money field. The field
// itself is a float64 for range queries; the companion keeps the decimal
// string so records read back from the index are exact.
const exactSuffix = "_exact"

type fieldWriter map[string]any

func (w fieldWriter) str(name, value string) {
	w[name] = value
}

func (w fieldWriter) num(name string, value float64) {
	w[name] = value
}

func (w fieldWriter) money(name string, value decimal.Decimal) {
	w[name] = value.InexactFloat64()
	w[name+exactSuffix] = value.String()
}

func (w fieldWriter) time(name string, value time.Time) {
	if value.IsZero() {
		return
	}
	w[name] = value.UTC().Format(time.RFC3339Nano)
}

func (w fieldWriter) ref(name string, id *int64) {
	if id == nil {
		return
	}
	w[name] = FormatID(*id)
}

// fieldReader decodes document fields, keeping the first type error.
// Missing fields decode to zero values.
type fieldReader struct {
	fields map[string]any
	err    error
}

func (r *fieldReader) fail(name string, value any) {
	if r.err == nil {
		r.err = fmt.Errorf("field %s: unexpected value %v (%T)", name, value, value)
	}
}

func (r *fieldReader) str(name string) string {
	value, ok := r.fields[name]
	if !ok || value == nil {
		return ""
	}
	s, ok := value.(string)
	if !ok {
		r.fail(name, value)
	}
	return s
}

func (r *fieldReader) num(name string) float64 {
	value, ok := r.fields[name]
	if !ok || value == nil {
		return 0
	}
	switch n := value.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	r.fail(name, value)
	return 0
}

func (r *fieldReader) int(name string) int {
	return int(r.num(name))
}

func (r *fieldReader) money(name string) decimal.Decimal {
	exact := r.str(name + exactSuffix)
	if exact == "" {
		return decimal.NewFromFloat(r.num(name))
	}
	d, err := decimal.NewFromString(exact)
	if err != nil {
		r.fail(name+exactSuffix, exact)
	}
	return d
}

func (r *fieldReader) time(name string) time.Time {
	s := r.str(name)
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		r.fail(name, s)
	}
	return t
}

func (r *fieldReader) ref(name string) *int64 {
	s := r.str(name)
	if s == "" {
		return nil
	}
	id, err := ParseID(s)
	if err != nil {
		r.fail(name, s)
		return nil
	}
	return &id
}
