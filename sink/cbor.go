package sink

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"

	"go.jacobcolvin.com/ulog"
)

// Record is one message as stored by a [CBORWriter].
// CBOR encoding uses integer keys for compactness.
type Record struct {
	Time    time.Time  `cbor:"1,keyasint"`
	Message string     `cbor:"3,keyasint"`
	File    string     `cbor:"4,keyasint,omitempty"`
	Line    int        `cbor:"5,keyasint,omitempty"`
	Level   ulog.Level `cbor:"2,keyasint"`
}

// Source returns the record's source location.
func (r Record) Source() ulog.Source {
	return ulog.Source{File: r.File, Line: r.Line}
}

var (
	recordEncMode cbor.EncMode
	recordDecMode cbor.DecMode
)

func init() {
	var err error

	recordEncMode, err = cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("creating record CBOR encoder mode: %v", err))
	}

	recordDecMode, err = cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyQuiet,
		IndefLength:       cbor.IndefLengthAllowed,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("creating record CBOR decoder mode: %v", err))
	}
}

// EncodeRecord encodes r to CBOR.
func EncodeRecord(r Record) ([]byte, error) {
	return recordEncMode.Marshal(r)
}

// DecodeRecord decodes one CBOR-encoded [Record].
func DecodeRecord(data []byte) (Record, error) {
	var r Record

	err := recordDecMode.Unmarshal(data, &r)
	if err != nil {
		return Record{}, fmt.Errorf("decoding record: %w", err)
	}

	return r, nil
}

// CBORWriter is a [ulog.Subscriber] that appends each message to a stream
// of CBOR-encoded [Record] values. Safe for concurrent use.
//
// Encoding errors are dropped.
//
// Create instances with [NewCBORWriter] or [OpenCBORFile].
type CBORWriter struct {
	enc    *cbor.Encoder
	closer io.Closer
	opts   options
	mu     sync.Mutex
	closed bool
}

// NewCBORWriter creates a [CBORWriter] that encodes to w. If w is an
// [io.Closer], [CBORWriter.Close] closes it.
func NewCBORWriter(w io.Writer, opts ...Option) *CBORWriter {
	cw := &CBORWriter{
		enc:  recordEncMode.NewEncoder(w),
		opts: newOptions(opts),
	}
	if c, ok := w.(io.Closer); ok {
		cw.closer = c
	}

	return cw
}

// OpenCBORFile creates a [CBORWriter] that appends to the file at path,
// creating it with mode 0644 if needed.
func OpenCBORFile(path string, opts ...Option) (*CBORWriter, error) {
	//nolint:gosec // Log path chosen by the caller.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening record file: %w", err)
	}

	return NewCBORWriter(f, opts...), nil
}

// Log encodes one message. Calls after [CBORWriter.Close] are ignored.
func (cw *CBORWriter) Log(level ulog.Level, src ulog.Source, msg []byte) {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if cw.closed {
		return
	}

	//nolint:errcheck // Output errors must not reach the logging caller.
	cw.enc.Encode(Record{
		Time:    cw.opts.now(),
		Level:   level,
		Message: string(msg),
		File:    src.File,
		Line:    src.Line,
	})
}

// Close stops the writer and closes the underlying writer if it is an
// [io.Closer]. Idempotent.
func (cw *CBORWriter) Close() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if cw.closed {
		return nil
	}

	cw.closed = true
	if cw.closer != nil {
		return cw.closer.Close()
	}

	return nil
}

// Filter selects records read by a [CBORReader]. The zero Filter matches
// everything.
type Filter struct {
	// Since, if set, drops records stamped before it.
	Since time.Time
	// File, if set, keeps only records from this source file.
	File string
	// Level is the minimum level kept.
	Level ulog.Level
}

func (f *Filter) matches(r *Record) bool {
	if r.Level < f.Level {
		return false
	}

	if f.File != "" && r.File != f.File {
		return false
	}

	if !f.Since.IsZero() && r.Time.Before(f.Since) {
		return false
	}

	return true
}

// CBORReader streams [Record] values written by a [CBORWriter].
//
// Create instances with [NewCBORReader].
type CBORReader struct {
	dec    *cbor.Decoder
	filter Filter
}

// NewCBORReader creates a [CBORReader] over r returning only records that
// match filter.
func NewCBORReader(r io.Reader, filter Filter) *CBORReader {
	return &CBORReader{
		dec:    recordDecMode.NewDecoder(r),
		filter: filter,
	}
}

// Next returns the next matching record, or [io.EOF] when the stream ends.
func (r *CBORReader) Next() (Record, error) {
	for {
		var rec Record

		err := r.dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			return Record{}, io.EOF
		}

		if err != nil {
			return Record{}, fmt.Errorf("decoding record: %w", err)
		}

		if r.filter.matches(&rec) {
			return rec, nil
		}
	}
}

// All reads every remaining matching record.
func (r *CBORReader) All() ([]Record, error) {
	var out []Record

	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}

		if err != nil {
			return out, err
		}

		out = append(out, rec)
	}
}
