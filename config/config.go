// Package config loads the declarative shape of an engine — its
// states, transitions, and lifecycle references — from YAML or JSON,
// plus the ambient settings (logging, watchdog timeout) that surround
// it. The engine itself only ever sees fsm.State and fsm.Transition
// values built from a Spec; nothing in this package imports fsm, so a
// host can validate and edit configuration without linking the engine.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// StateSpec describes one state entry in a Spec.
type StateSpec struct {
	Name   string `yaml:"name" json:"name"`
	Parent string `yaml:"parent,omitempty" json:"parent,omitempty"`
}

// TransitionSpec describes one transition row: From reacting to Event
// moves to To.
type TransitionSpec struct {
	From  string `yaml:"from" json:"from"`
	Event string `yaml:"event" json:"event"`
	To    string `yaml:"to" json:"to"`
}

// Spec is the declarative shape of an engine, keyed by state and event
// names rather than the generated numeric ids a running fsm.Engine
// uses internally — a host resolves names to ids when it builds states
// and wires handlers, which a config file cannot express.
type Spec struct {
	States      []StateSpec      `yaml:"states" json:"states"`
	Transitions []TransitionSpec `yaml:"transitions" json:"transitions"`
	Start       string           `yaml:"start" json:"start"`
	Error       string           `yaml:"error" json:"error"`
	Stop        []string         `yaml:"stop" json:"stop"`

	Logging  LoggingSpec  `yaml:"logging" json:"logging"`
	Watchdog WatchdogSpec `yaml:"watchdog" json:"watchdog"`
}

// LoggingSpec controls the engine's corelog.Logger construction.
type LoggingSpec struct {
	JSONOutput bool   `yaml:"json_output" json:"json_output"`
	Level      string `yaml:"level" json:"level"`
}

// WatchdogSpec controls whether and how the engine arms a deadline
// watchdog on Start.
type WatchdogSpec struct {
	Enabled    bool   `yaml:"enabled" json:"enabled"`
	TimeoutStr string `yaml:"timeout" json:"timeout"`
}

// Validator checks a loaded Spec for problems Load itself can't catch
// (duplicate names, dangling references) before a host spends effort
// building states and handlers from it.
type Validator interface {
	Validate(spec *Spec) error
}

// ValidatorFunc adapts a plain function to Validator.
type ValidatorFunc func(spec *Spec) error

func (f ValidatorFunc) Validate(spec *Spec) error { return f(spec) }

// ValidateReferences checks that every transition and every start/error
// reference names a declared state, and that state names are unique.
var ValidateReferences ValidatorFunc = func(spec *Spec) error {
	names := make(map[string]struct{}, len(spec.States))
	for _, s := range spec.States {
		if _, dup := names[s.Name]; dup {
			return fmt.Errorf("config: duplicate state name %q", s.Name)
		}
		names[s.Name] = struct{}{}
	}
	known := func(name string) bool { _, ok := names[name]; return ok }
	for _, s := range spec.States {
		if s.Parent != "" && !known(s.Parent) {
			return fmt.Errorf("config: state %q references unknown parent %q", s.Name, s.Parent)
		}
	}
	for _, tr := range spec.Transitions {
		if !known(tr.From) {
			return fmt.Errorf("config: transition references unknown source state %q", tr.From)
		}
		if !known(tr.To) {
			return fmt.Errorf("config: transition references unknown destination state %q", tr.To)
		}
	}
	if spec.Start != "" && !known(spec.Start) {
		return fmt.Errorf("config: start references unknown state %q", spec.Start)
	}
	if spec.Error != "" && !known(spec.Error) {
		return fmt.Errorf("config: error references unknown state %q", spec.Error)
	}
	for _, name := range spec.Stop {
		if !known(name) {
			return fmt.Errorf("config: stop references unknown state %q", name)
		}
	}
	return nil
}

// Load reads a Spec from path, choosing YAML or JSON by extension
// (defaulting to YAML for anything else), then runs validators against
// it in order, stopping at the first failure.
func Load(path string, validators ...Validator) (*Spec, error) {
	spec := &Spec{}
	var err error
	if strings.HasSuffix(path, ".json") {
		err = LoadJSON(path, spec)
	} else {
		err = LoadYAML(path, spec)
	}
	if err != nil {
		return nil, err
	}
	for _, v := range validators {
		if err := v.Validate(spec); err != nil {
			return nil, fmt.Errorf("config: validation failed: %w", err)
		}
	}
	return spec, nil
}

// writeSpecFile writes data to path with owner-only permissions, since a
// saved Spec may end up carrying deployment-specific details a host
// doesn't want world-readable on disk.
func writeSpecFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("config: writing %s: %w", path, err)
	}
	return nil
}

// envOverride is one knob ApplyEnvOverrides knows how to read: name is
// the suffix appended to prefix, apply parses the raw string and stores
// it into the Spec on success.
type envOverride struct {
	name  string
	apply func(spec *Spec, raw string) error
}

// envOverrides enumerates every field ApplyEnvOverrides is willing to
// touch. Spec's shape is small and fixed, so a plain table beats walking
// it with reflection — there is no nested or dynamically-typed field a
// generic walker would earn its keep on, and each entry can say exactly
// what "true" means for its own field (TimeoutStr, for instance, isn't a
// bool or a plain string split).
var envOverrides = []envOverride{
	{"START", func(s *Spec, raw string) error { s.Start = raw; return nil }},
	{"ERROR", func(s *Spec, raw string) error { s.Error = raw; return nil }},
	{"STOP", func(s *Spec, raw string) error { s.Stop = splitNames(raw); return nil }},
	{"LOGGING_LEVEL", func(s *Spec, raw string) error { s.Logging.Level = raw; return nil }},
	{"LOGGING_JSON_OUTPUT", func(s *Spec, raw string) error {
		s.Logging.JSONOutput = parseBool(raw)
		return nil
	}},
	{"WATCHDOG_ENABLED", func(s *Spec, raw string) error {
		s.Watchdog.Enabled = parseBool(raw)
		return nil
	}},
	{"WATCHDOG_TIMEOUT", func(s *Spec, raw string) error {
		if _, err := time.ParseDuration(raw); err != nil {
			return fmt.Errorf("not a duration: %w", err)
		}
		s.Watchdog.TimeoutStr = raw
		return nil
	}},
}

// ApplyEnvOverrides reads PREFIX_<NAME> for every entry in envOverrides
// and, where set, stores it into spec. It exists for deployment knobs
// (log level, watchdog timeout, which states are terminal) that change
// more often than the state machine's shape and don't warrant editing
// the Spec file itself. A blank prefix defaults to "IOTFSM".
func ApplyEnvOverrides(prefix string, spec *Spec) error {
	if prefix == "" {
		prefix = "IOTFSM"
	}
	for _, o := range envOverrides {
		raw, present := os.LookupEnv(prefix + "_" + o.name)
		if !present {
			continue
		}
		if err := o.apply(spec, raw); err != nil {
			return fmt.Errorf("config: %s_%s: %w", prefix, o.name, err)
		}
	}
	return nil
}

func parseBool(raw string) bool {
	return strings.EqualFold(raw, "true") || raw == "1"
}

func splitNames(raw string) []string {
	parts := strings.Split(raw, ",")
	names := make([]string, len(parts))
	for i, p := range parts {
		names[i] = strings.TrimSpace(p)
	}
	return names
}
