package models

import (
	"encoding"
	"encoding/json"
	"fmt"
)

// BloomLevel is an ordinal depth-of-understanding tag
type BloomLevel int

const (
	BloomRemember BloomLevel = iota + 1
	BloomUnderstand
	BloomApply
	BloomAnalyze
	BloomEvaluate
	BloomCreate
)

// MaxBloomLevel is the ceiling of the taxonomy
const MaxBloomLevel = BloomCreate

var (
	bloomNames = [...]string{
		BloomRemember:   "remember",
		BloomUnderstand: "understand",
		BloomApply:      "apply",
		BloomAnalyze:    "analyze",
		BloomEvaluate:   "evaluate",
		BloomCreate:     "create",
	}
	bloomByName = map[string]BloomLevel{
		"remember":   BloomRemember,
		"understand": BloomUnderstand,
		"apply":      BloomApply,
		"analyze":    BloomAnalyze,
		"evaluate":   BloomEvaluate,
		"create":     BloomCreate,
	}
)

var (
	_ fmt.Stringer             = BloomLevel(0)
	_ json.Marshaler           = BloomLevel(0)
	_ json.Unmarshaler         = (*BloomLevel)(nil)
	_ encoding.TextMarshaler   = BloomLevel(0)
	_ encoding.TextUnmarshaler = (*BloomLevel)(nil)
)

// IsValid reports whether l is one of the six taxonomy levels
func (l BloomLevel) IsValid() bool {
	return l >= BloomRemember && l <= BloomCreate
}

func (l BloomLevel) String() string {
	if l.IsValid() {
		return bloomNames[l]
	}
	return fmt.Sprintf("BloomLevel(%d)", int(l))
}

// ParseBloomLevel returns the level with the given lowercase name
func ParseBloomLevel(name string) (BloomLevel, error) {
	l, ok := bloomByName[name]
	if !ok {
		return 0, fmt.Errorf("models: unknown bloom level %q", name)
	}
	return l, nil
}

// MarshalText implements encoding.TextMarshaler.
func (l BloomLevel) MarshalText() ([]byte, error) {
	if !l.IsValid() {
		return nil, fmt.Errorf("models: invalid bloom level %d", int(l))
	}
	return []byte(bloomNames[l]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *BloomLevel) UnmarshalText(text []byte) error {
	v, err := ParseBloomLevel(string(text))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// MarshalJSON serializes the level as its name.
func (l BloomLevel) MarshalJSON() ([]byte, error) {
	text, err := l.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON expects a JSON string.
func (l *BloomLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("models: invalid bloom level %s", data)
	}
	return l.UnmarshalText([]byte(s))
}
