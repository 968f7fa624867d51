// Package config holds runtime settings as a typed property bag. A Usage
// maps directly onto a JSON object and may link to a further Usage for
// settings of a sub system.
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Well known property names.
const (
	AppName          = "app.name"
	WindowX          = "window.x"
	WindowY          = "window.y"
	WindowWidth      = "window.width"
	WindowHeight     = "window.height"
	RendererBackend  = "renderer.backend"
	RendererValidate = "renderer.validation"
	RendererDiscrete = "renderer.discrete"
	FrameLimit       = "frame.limit"
	FrameTargetFPS   = "frame.target_fps"
	FrameArenaBytes  = "frame.arena_bytes"
	LogLevel         = "log.level"
	LogFile          = "log.file"
)

type Usage struct {
	Name        string             `json:"name"`
	StringProps map[string]string  `json:"strings,omitempty"`
	IntProps    map[string]int     `json:"ints,omitempty"`
	BoolProps   map[string]bool    `json:"bools,omitempty"`
	FloatProps  map[string]float64 `json:"floats,omitempty"`
	Linked      *Usage             `json:"linked,omitempty"`
}

func NewUsage(name string) *Usage {
	return &Usage{
		Name:        name,
		StringProps: make(map[string]string),
		IntProps:    make(map[string]int),
		BoolProps:   make(map[string]bool),
		FloatProps:  make(map[string]float64),
	}
}

// Decode reads a Usage tree from JSON.
func Decode(r io.Reader) (*Usage, error) {
	u := NewUsage("")
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(u); err != nil {
		return nil, errors.Wrap(err, "decode usage")
	}
	u.fill()
	return u, nil
}

// Load reads a Usage tree from a JSON file.
func Load(path string) (*Usage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open config")
	}
	defer f.Close()

	u, err := Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return u, nil
}

func (u *Usage) fill() {
	if u.StringProps == nil {
		u.StringProps = make(map[string]string)
	}
	if u.IntProps == nil {
		u.IntProps = make(map[string]int)
	}
	if u.BoolProps == nil {
		u.BoolProps = make(map[string]bool)
	}
	if u.FloatProps == nil {
		u.FloatProps = make(map[string]float64)
	}
	if u.Linked != nil {
		u.Linked.fill()
	}
}

func (u *Usage) HasNext() bool {
	return u.Linked != nil
}

func (u *Usage) GetLinkedUsage() (*Usage, error) {
	if !u.HasNext() {
		return nil, errors.Errorf("properties %s have no linked usage", u.Name)
	}
	return u.Linked, nil
}

// Find walks the linked list for a usage called name.
func (u *Usage) Find(name string) (*Usage, bool) {
	for n := u; n != nil; n = n.Linked {
		if n.Name == name {
			return n, true
		}
	}
	return nil, false
}

func (u *Usage) String(key, def string) string {
	if v, ok := u.StringProps[key]; ok {
		return v
	}
	return def
}

func (u *Usage) Int(key string, def int) int {
	if v, ok := u.IntProps[key]; ok {
		return v
	}
	return def
}

func (u *Usage) Bool(key string, def bool) bool {
	if v, ok := u.BoolProps[key]; ok {
		return v
	}
	return def
}

func (u *Usage) Float(key string, def float64) float64 {
	if v, ok := u.FloatProps[key]; ok {
		return v
	}
	return def
}

func (u *Usage) SetString(key, v string)        { u.StringProps[key] = v }
func (u *Usage) SetInt(key string, v int)       { u.IntProps[key] = v }
func (u *Usage) SetBool(key string, v bool)     { u.BoolProps[key] = v }
func (u *Usage) SetFloat(key string, v float64) { u.FloatProps[key] = v }

// Print writes the usage tree, one property per line, keys sorted.
func (u *Usage) Print(w io.Writer) {
	for n := u; n != nil; n = n.Linked {
		fmt.Fprintf(w, "[%s]\n", n.Name)
		var lines []string
		for k, v := range n.StringProps {
			lines = append(lines, fmt.Sprintf("  %s = %q", k, v))
		}
		for k, v := range n.IntProps {
			lines = append(lines, fmt.Sprintf("  %s = %d", k, v))
		}
		for k, v := range n.BoolProps {
			lines = append(lines, fmt.Sprintf("  %s = %t", k, v))
		}
		for k, v := range n.FloatProps {
			lines = append(lines, fmt.Sprintf("  %s = %g", k, v))
		}
		sort.Strings(lines)
		fmt.Fprintln(w, strings.Join(lines, "\n"))
	}
}
