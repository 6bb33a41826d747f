// Package rtlog is the engine-wide diagnostic logging sink. It generalizes
// the teacher's colour-tagged text_color_set/dw_printf convention into a
// single registrable debug callback (spec §6 "Debug callback"), backed by
// github.com/charmbracelet/log for leveled, coloured output.
package rtlog

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

// Colour mirrors the teacher's DW_COLOR_* enumeration, kept because the
// public API's debug callback is specified as (message, colour, size).
type Colour int

const (
	ColourInfo Colour = iota
	ColourWarning
	ColourError
	ColourDebug
)

// Sink receives every diagnostic message the engine produces. The host may
// register its own Sink (spec §6); the zero value of the package uses a
// default charmbracelet/log-backed sink writing to stderr.
type Sink interface {
	Log(colour Colour, message string)
}

type defaultSink struct {
	logger *log.Logger
}

func (d *defaultSink) Log(colour Colour, message string) {
	switch colour {
	case ColourError:
		d.logger.Error(message)
	case ColourWarning:
		d.logger.Warn(message)
	case ColourDebug:
		d.logger.Debug(message)
	default:
		d.logger.Info(message)
	}
}

var current atomic.Value // holds Sink

func init() {
	l := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	current.Store(Sink(&defaultSink{logger: l}))
}

// SetSink installs the host's debug callback, replacing the default. Safe to
// call concurrently with logging calls (spec §5 general concurrency
// caution); a nil sink restores the default stderr sink.
func SetSink(s Sink) {
	if s == nil {
		l := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
		current.Store(Sink(&defaultSink{logger: l}))
		return
	}
	current.Store(s)
}

func sink() Sink { return current.Load().(Sink) }

func Infof(format string, args ...any)  { sink().Log(ColourInfo, fmt.Sprintf(format, args...)) }
func Warnf(format string, args ...any)  { sink().Log(ColourWarning, fmt.Sprintf(format, args...)) }
func Errorf(format string, args ...any) { sink().Log(ColourError, fmt.Sprintf(format, args...)) }
func Debugf(format string, args ...any) { sink().Log(ColourDebug, fmt.Sprintf(format, args...)) }
