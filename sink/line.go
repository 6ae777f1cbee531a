package sink

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/valyala/fasttemplate"

	"go.jacobcolvin.com/ulog"
)

// DefaultTemplate is the line template used when [WithTemplate] is not given.
const DefaultTemplate = "{{time}} [{{level}}] {{message}}\n"

var (
	// ErrUnknownTag indicates a template tag that [LineWriter] cannot render.
	ErrUnknownTag = errors.New("unknown template tag")
	// ErrInvalidTemplate indicates a template that could not be parsed.
	ErrInvalidTemplate = errors.New("invalid template")
)

// LineWriter is a [ulog.Subscriber] that renders each message through a
// text template and writes the result to an [io.Writer]. Safe for concurrent
// use.
//
// Write errors are dropped.
//
// Create instances with [NewLineWriter].
type LineWriter struct {
	w       io.Writer
	tmpl    *fasttemplate.Template
	scratch []byte
	opts    options
	mu      sync.Mutex
}

// NewLineWriter creates a [LineWriter] writing to w.
//
// Templates use {{tag}} placeholders:
//
//	{{time}}       timestamp, see [WithTimeFormat]
//	{{level}}      level name, such as WARNING
//	{{message}}    the formatted message
//	{{file}}       full source file path
//	{{shortfile}}  final path element of the source file
//	{{line}}       source line number
//	{{source}}     shortfile:line, or nothing when there is no location
func NewLineWriter(w io.Writer, opts ...Option) (*LineWriter, error) {
	o := newOptions(opts)

	tmpl, err := fasttemplate.NewTemplate(o.template, "{{", "}}")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTemplate, err)
	}

	lw := &LineWriter{
		w:    w,
		tmpl: tmpl,
		opts: o,
	}

	// Render once against a blank message to reject unknown tags up front.
	_, err = tmpl.ExecuteFunc(io.Discard, lw.tagFunc(time.Time{}, ulog.LevelInfo, ulog.Source{File: "x", Line: 1}, nil))
	if err != nil {
		return nil, err
	}

	return lw, nil
}

// Log renders the template for one message stamped with the current time and
// writes it.
func (lw *LineWriter) Log(level ulog.Level, src ulog.Source, msg []byte) {
	lw.LogAt(lw.opts.now(), level, src, msg)
}

// LogAt is like [LineWriter.Log] but renders {{time}} from t. Use it to
// replay stored messages, such as a [Record] read back by a [CBORReader].
func (lw *LineWriter) LogAt(t time.Time, level ulog.Level, src ulog.Source, msg []byte) {
	lw.mu.Lock()
	defer lw.mu.Unlock()

	//nolint:errcheck // Output errors must not reach the logging caller.
	lw.tmpl.ExecuteFunc(lw.w, lw.tagFunc(t, level, src, msg))
}

func (lw *LineWriter) tagFunc(t time.Time, level ulog.Level, src ulog.Source, msg []byte) fasttemplate.TagFunc {
	return func(w io.Writer, tag string) (int, error) {
		switch tag {
		case "time":
			lw.scratch = t.AppendFormat(lw.scratch[:0], lw.opts.timeFormat)

			return w.Write(lw.scratch)

		case "level":
			return io.WriteString(w, ulog.LevelName(level))

		case "message":
			return w.Write(msg)

		case "file":
			return io.WriteString(w, src.File)

		case "shortfile":
			return io.WriteString(w, shortFile(src.File))

		case "line":
			lw.scratch = strconv.AppendInt(lw.scratch[:0], int64(src.Line), 10)

			return w.Write(lw.scratch)

		case "source":
			if src.IsZero() {
				return 0, nil
			}

			lw.scratch = append(lw.scratch[:0], shortFile(src.File)...)
			lw.scratch = append(lw.scratch, ':')
			lw.scratch = strconv.AppendInt(lw.scratch, int64(src.Line), 10)

			return w.Write(lw.scratch)
		}

		return 0, fmt.Errorf("%w: %q", ErrUnknownTag, tag)
	}
}

func shortFile(file string) string {
	if file == "" {
		return ""
	}

	return filepath.Base(file)
}
