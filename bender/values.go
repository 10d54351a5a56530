// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package bender

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"
)

// Truthy reports whether v counts as true in a condition: nil, false, zero
// numbers and empty strings, sequences and mappings are false.
func Truthy(v any) bool {
	if v == nil {
		return false
	}
	if b, ok := v.(bool); ok {
		return b
	}
	if n, ok := toNumber(v); ok {
		if n.isFloat {
			return n.f != 0
		}
		return n.i != 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	default:
		return true
	}
}

// number is a numeric operand normalized to int64 or float64.
type number struct {
	i       int64
	f       float64
	isFloat bool
}

func (n number) float() float64 {
	if n.isFloat {
		return n.f
	}
	return float64(n.i)
}

func toNumber(v any) (number, bool) {
	switch x := v.(type) {
	case int:
		return number{i: int64(x)}, true
	case int8:
		return number{i: int64(x)}, true
	case int16:
		return number{i: int64(x)}, true
	case int32:
		return number{i: int64(x)}, true
	case int64:
		return number{i: x}, true
	case uint:
		return number{i: int64(x)}, true
	case uint8:
		return number{i: int64(x)}, true
	case uint16:
		return number{i: int64(x)}, true
	case uint32:
		return number{i: int64(x)}, true
	case uint64:
		return number{i: int64(x)}, true
	case float32:
		return number{f: float64(x), isFloat: true}, true
	case float64:
		return number{f: x, isFloat: true}, true
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return number{i: i}, true
		}
		if f, err := x.Float64(); err == nil {
			return number{f: f, isFloat: true}, true
		}
	}
	return number{}, false
}

// toIndex converts an integral value into an int index.
func toIndex(v any) (int, bool) {
	n, ok := toNumber(v)
	if !ok {
		return 0, false
	}
	if n.isFloat {
		if n.f != math.Trunc(n.f) {
			return 0, false
		}
		return int(n.f), true
	}
	return int(n.i), true
}

// Equal reports whether a and b are equal. Numbers compare by value across
// Go numeric types, sequences and mappings compare element-wise. Booleans
// are not numbers: Equal(true, 1) is false.
func Equal(a, b any) bool {
	if na, ok := toNumber(a); ok {
		if nb, ok := toNumber(b); ok {
			if !na.isFloat && !nb.isFloat {
				return na.i == nb.i
			}
			return na.float() == nb.float()
		}
		return false
	}
	if sa, ok := asSequence(a); ok {
		sb, ok := asSequence(b)
		if !ok || len(sa) != len(sb) {
			return false
		}
		for i := range sa {
			if !Equal(sa[i], sb[i]) {
				return false
			}
		}
		return true
	}
	if ma, ok := asMapping(a); ok {
		mb, ok := asMapping(b)
		if !ok || len(ma) != len(mb) {
			return false
		}
		for k, va := range ma {
			vb, found := mb[k]
			if !found || !Equal(va, vb) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

// asSequence returns v as []any if it is a slice or array other than a string
// or a byte slice.
func asSequence(v any) ([]any, bool) {
	if s, ok := v.([]any); ok {
		return s, true
	}
	if v == nil {
		return nil, false
	}
	if _, ok := v.([]byte); ok {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// asMapping returns v as map[string]any if it is a map keyed by strings.
func asMapping(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// toSequence is asSequence for list operations: it fails with ErrNotSequence.
func toSequence(v any) ([]any, error) {
	if s, ok := asSequence(v); ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: got %T", ErrNotSequence, v)
}

// getItem indexes container by key. Missing keys and out-of-range indices
// fail with a LookupError; containers that cannot be indexed by key fail with
// ErrNotIndexable.
func getItem(container, key any) (any, error) {
	if s, ok := key.(Slice); ok {
		return sliceItems(container, s)
	}
	switch c := container.(type) {
	case map[string]any:
		k, ok := key.(string)
		if !ok {
			return nil, &LookupError{Key: key}
		}
		v, found := c[k]
		if !found {
			return nil, &LookupError{Key: key}
		}
		return v, nil
	case []any:
		return indexSequence(c, key)
	case string:
		runes := []rune(c)
		idx, ok := toIndex(key)
		if !ok {
			return nil, fmt.Errorf("%w: string indices must be integers, not %T", ErrNotIndexable, key)
		}
		pos, ok := normalizeIndex(idx, len(runes))
		if !ok {
			return nil, &LookupError{Key: key}
		}
		return string(runes[pos]), nil
	case nil:
		return nil, fmt.Errorf("%w: cannot index null with %s", ErrNotIndexable, formatKey(key))
	}

	rv := reflect.ValueOf(container)
	switch rv.Kind() {
	case reflect.Map:
		kv := reflect.ValueOf(key)
		if !kv.IsValid() || !kv.Type().ConvertibleTo(rv.Type().Key()) {
			return nil, &LookupError{Key: key}
		}
		v := rv.MapIndex(kv.Convert(rv.Type().Key()))
		if !v.IsValid() {
			return nil, &LookupError{Key: key}
		}
		return v.Interface(), nil
	case reflect.Slice, reflect.Array:
		seq, _ := asSequence(container)
		return indexSequence(seq, key)
	default:
		return nil, fmt.Errorf("%w: %T", ErrNotIndexable, container)
	}
}

func indexSequence(seq []any, key any) (any, error) {
	idx, ok := toIndex(key)
	if !ok {
		return nil, fmt.Errorf("%w: sequence indices must be integers, not %T", ErrNotIndexable, key)
	}
	pos, ok := normalizeIndex(idx, len(seq))
	if !ok {
		return nil, &LookupError{Key: key}
	}
	return seq[pos], nil
}

// normalizeIndex resolves negative indices from the end of a sequence.
func normalizeIndex(idx, length int) (int, bool) {
	if idx < 0 {
		idx += length
	}
	if idx < 0 || idx >= length {
		return 0, false
	}
	return idx, true
}

// Slice selects a range of a sequence or string. Nil bounds are open, a nil
// Step means 1. Negative bounds count from the end.
type Slice struct {
	Start, Stop, Step *int
}

// Span returns a Slice selecting [start, stop) with the given step.
func Span(start, stop, step int) Slice {
	return Slice{Start: &start, Stop: &stop, Step: &step}
}

// Bound returns a pointer to i, for building Slices with some bounds open.
func Bound(i int) *int {
	return &i
}

// String renders s in start:stop:step notation.
func (s Slice) String() string {
	part := func(p *int) string {
		if p == nil {
			return ""
		}
		return fmt.Sprint(*p)
	}
	return strings.Join([]string{part(s.Start), part(s.Stop), part(s.Step)}, ":")
}

// indices resolves s against a sequence of the given length.
func (s Slice) indices(length int) ([]int, error) {
	step := 1
	if s.Step != nil {
		step = *s.Step
	}
	if step == 0 {
		return nil, fmt.Errorf("%w: slice step cannot be zero", ErrNotIndexable)
	}

	adjust := func(p *int, def, lower, upper int) int {
		if p == nil {
			return def
		}
		v := *p
		if v < 0 {
			v += length
			if v < lower {
				v = lower
			}
		} else if v > upper {
			v = upper
		}
		return v
	}

	var out []int
	if step > 0 {
		start := adjust(s.Start, 0, 0, length)
		stop := adjust(s.Stop, length, 0, length)
		for i := start; i < stop; i += step {
			out = append(out, i)
		}
		return out, nil
	}
	start := adjust(s.Start, length-1, -1, length-1)
	stop := adjust(s.Stop, -1, -1, length-1)
	for i := start; i > stop; i += step {
		out = append(out, i)
	}
	return out, nil
}

func sliceItems(container any, s Slice) (any, error) {
	if str, ok := container.(string); ok {
		runes := []rune(str)
		idx, err := s.indices(len(runes))
		if err != nil {
			return nil, err
		}
		out := make([]rune, 0, len(idx))
		for _, i := range idx {
			out = append(out, runes[i])
		}
		return string(out), nil
	}
	seq, ok := asSequence(container)
	if !ok {
		return nil, fmt.Errorf("%w: cannot slice %T", ErrNotIndexable, container)
	}
	idx, err := s.indices(len(seq))
	if err != nil {
		return nil, err
	}
	out := make([]any, 0, len(idx))
	for _, i := range idx {
		out = append(out, seq[i])
	}
	return out, nil
}
