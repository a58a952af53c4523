package diagnostics

import "github.com/fluxorio/iotfsm/internal/corelog"

// LoggingSink streams every Record through a corelog.Logger at debug
// level, escalating to warn on Fault — the donor's LoggingObserver
// pattern (pkg/statemachine/observer.go) applied to step records
// instead of bare from/to/event strings.
type LoggingSink struct {
	Logger corelog.Logger
}

// NewLoggingSink wraps logger as a Diagnostics sink.
func NewLoggingSink(logger corelog.Logger) *LoggingSink {
	return &LoggingSink{Logger: logger}
}

func (s *LoggingSink) Observe(rec Record) {
	if s == nil || s.Logger == nil {
		return
	}
	l := s.Logger.WithFields(map[string]interface{}{
		"engine": rec.EngineID,
		"from":   rec.From,
		"event":  rec.Event,
		"to":     rec.To,
		"status": rec.Status,
	})
	if rec.Fault {
		l.Warnf("fsm fault after %s", rec.Duration)
		return
	}
	l.Debugf("fsm step (%s) after %s", rec.Status, rec.Duration)
}
