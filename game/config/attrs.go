package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// attrs is the attribute set of one section element. Each typed reader leaves dst untouched when
// the attribute is absent or does not parse; parse failures are logged.
type attrs struct {
	section string
	values  map[string]string
	logger  *zap.Logger
}

func (a attrs) lookup(name string) (string, bool) {
	v, ok := a.values[name]
	return strings.TrimSpace(v), ok
}

func (a attrs) invalid(name, value string, err error) {
	a.logger.Warn("invalid config attribute, keeping default",
		zap.String("section", a.section),
		zap.String("attribute", name),
		zap.String("value", value),
		zap.Error(err),
	)
}

func (a attrs) Int(name string, dst *int) {
	v, ok := a.lookup(name)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		a.invalid(name, v, err)
		return
	}
	*dst = n
}

func (a attrs) Int64(name string, dst *int64) {
	v, ok := a.lookup(name)
	if !ok {
		return
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		a.invalid(name, v, err)
		return
	}
	*dst = n
}

func (a attrs) Float(name string, dst *float32) {
	v, ok := a.lookup(name)
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(v, 32)
	if err != nil {
		a.invalid(name, v, err)
		return
	}
	*dst = float32(f)
}

func (a attrs) Bool(name string, dst *bool) {
	v, ok := a.lookup(name)
	if !ok {
		return
	}
	b, err := ParseBool(v)
	if err != nil {
		a.invalid(name, v, err)
		return
	}
	*dst = b
}

func (a attrs) String(name string, dst *string) {
	if v, ok := a.lookup(name); ok {
		*dst = v
	}
}

func (a attrs) Vec3(name string, dst *mgl32.Vec3) {
	v, ok := a.lookup(name)
	if !ok {
		return
	}
	vec, err := ParseVec3(v)
	if err != nil {
		a.invalid(name, v, err)
		return
	}
	*dst = vec
}

// ParseBool accepts true|1|yes as true and false|0|no as false, case-insensitively.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean: %q", s)
}

// ParseVec3 parses three comma-separated decimal numbers.
func ParseVec3(s string) (mgl32.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return mgl32.Vec3{}, fmt.Errorf("vec3 needs 3 components, got %d", len(parts))
	}
	var out mgl32.Vec3
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return mgl32.Vec3{}, fmt.Errorf("vec3 component %d: %w", i, err)
		}
		out[i] = float32(f)
	}
	return out, nil
}
