// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"fmt"
	"sort"
	"strings"

	"github.com/stacklok/bender/bender"
	"github.com/stacklok/bender/cel"
)

type compiler struct {
	engine    *cel.Engine
	functions map[string]Function
}

type operatorFunc func(c *compiler, arg any, at pointer) (*bender.Bender, error)

var operators map[string]operatorFunc

func init() {
	operators = map[string]operatorFunc{
		"$const":           compileConst,
		"$select":          compileSelect,
		"$optional":        compileOptional,
		"$context":         compileContext,
		"$cel":             compileCEL("$cel", (*cel.Engine).Bender),
		"$where":           compileCEL("$where", (*cel.Engine).Where),
		"$format":          compileFormat(false),
		"$protectedFormat": compileFormat(true),
		"$if":              compileIf,
		"$alt":             compileAlt,
		"$switch":          compileSwitch,
		"$each":            compileEach,
		"$pipe":            compilePipe,
		"$call":            compileCall,
		"$map":             compileListOp,
		"$filter":          compileListOp,
		"$flatMap":         compileListOp,
		"$reduce":          compileListOp,
		"$add":             compileBinary(bender.Add),
		"$sub":             compileBinary(bender.Sub),
		"$mul":             compileBinary(bender.Mul),
		"$div":             compileBinary(bender.Div),
		"$eq":              compileBinary(bender.Eq),
		"$ne":              compileBinary(bender.Ne),
		"$and":             compileBinary(bender.And),
		"$or":              compileBinary(bender.Or),
		"$neg":             compileUnary(bender.Neg),
		"$not":             compileUnary(bender.Not),
	}
}

// Operators returns the names of the operators a mapping node can use, sorted.
func Operators() []string {
	names := make([]string, 0, len(operators))
	for name := range operators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *compiler) compile(node any, at pointer) (*bender.Bender, error) {
	switch n := node.(type) {
	case map[string]any:
		return c.compileMapping(n, at)
	case []any:
		items := make([]any, len(n))
		for i, item := range n {
			b, err := c.compile(item, at.child(i))
			if err != nil {
				return nil, err
			}
			items[i] = b
		}
		return bender.List(items...), nil
	}
	return bender.K(node), nil
}

func (c *compiler) compileMapping(m map[string]any, at pointer) (*bender.Bender, error) {
	var op string
	for key := range m {
		if isOperator(key) {
			op = key
			break
		}
	}
	if op != "" {
		if len(m) != 1 {
			return nil, at.errorf("operator %s must be the only key of its mapping", op)
		}
		compileOp, ok := operators[op]
		if !ok {
			return nil, at.child(op).errorf("%w %s", ErrUnknownOperator, op)
		}
		return compileOp(c, m[op], at.child(op))
	}

	fields := make(map[string]any, len(m))
	for key, value := range m {
		b, err := c.compile(value, at.child(key))
		if err != nil {
			return nil, err
		}
		fields[unescapeKey(key)] = b
	}
	return bender.Dict(fields), nil
}

func isOperator(key string) bool {
	return strings.HasPrefix(key, "$") && !strings.HasPrefix(key, "$$")
}

// unescapeKey turns a "$$"-prefixed key into a literal "$" key.
func unescapeKey(key string) string {
	if strings.HasPrefix(key, "$$") {
		return key[1:]
	}
	return key
}

func compileConst(_ *compiler, arg any, _ pointer) (*bender.Bender, error) {
	return bender.K(arg), nil
}

// path reads a selector path: a list of keys and indices, or a single one.
func path(arg any, at pointer) ([]any, error) {
	switch p := arg.(type) {
	case nil:
		return nil, nil
	case []any:
		for i, key := range p {
			switch key.(type) {
			case string, int:
			default:
				return nil, at.child(i).errorf("path element must be a string or an integer, got %T", key)
			}
		}
		return p, nil
	case string, int:
		return []any{p}, nil
	}
	return nil, at.errorf("path must be a string, an integer or a list, got %T", arg)
}

func compileSelect(_ *compiler, arg any, at pointer) (*bender.Bender, error) {
	p, err := path(arg, at)
	if err != nil {
		return nil, err
	}
	return bender.S(p...), nil
}

func compileOptional(_ *compiler, arg any, at pointer) (*bender.Bender, error) {
	spec, ok := arg.(map[string]any)
	if !ok {
		p, err := path(arg, at)
		if err != nil {
			return nil, err
		}
		return bender.OptionalS(p...), nil
	}
	if err := onlyKeys(spec, at, "path", "default"); err != nil {
		return nil, err
	}
	p, err := path(spec["path"], at.child("path"))
	if err != nil {
		return nil, err
	}
	return bender.OptionalSOr(spec["default"], p...), nil
}

func compileContext(_ *compiler, arg any, at pointer) (*bender.Bender, error) {
	p, err := path(arg, at)
	if err != nil {
		return nil, err
	}
	if len(p) == 0 {
		return bender.Context(), nil
	}
	return bender.Context().Then(bender.S(p...)), nil
}

func compileCEL(op string, build func(*cel.Engine, string) (*bender.Bender, error)) operatorFunc {
	return func(c *compiler, arg any, at pointer) (*bender.Bender, error) {
		expr, ok := arg.(string)
		if !ok {
			return nil, at.errorf("%s takes an expression string, got %T", op, arg)
		}
		if c.engine == nil {
			c.engine = cel.NewBenderEngine()
		}
		b, err := build(c.engine, expr)
		if err != nil {
			return nil, &CompileError{Pointer: at.String(), Err: err}
		}
		return b, nil
	}
}

func compileFormat(protected bool) operatorFunc {
	return func(c *compiler, arg any, at pointer) (*bender.Bender, error) {
		var template string
		var args []any
		var named map[string]any

		switch spec := arg.(type) {
		case string:
			template = spec
		case map[string]any:
			if err := onlyKeys(spec, at, "template", "args", "named"); err != nil {
				return nil, err
			}
			var ok bool
			if template, ok = spec["template"].(string); !ok {
				return nil, at.child("template").errorf("template must be a string")
			}
			if raw, ok := spec["args"]; ok {
				list, ok := raw.([]any)
				if !ok {
					return nil, at.child("args").errorf("args must be a list")
				}
				for i, item := range list {
					b, err := c.compile(item, at.child("args").child(i))
					if err != nil {
						return nil, err
					}
					args = append(args, b)
				}
			}
			if raw, ok := spec["named"]; ok {
				fields, ok := raw.(map[string]any)
				if !ok {
					return nil, at.child("named").errorf("named must be a mapping")
				}
				named = make(map[string]any, len(fields))
				for key, item := range fields {
					b, err := c.compile(item, at.child("named").child(key))
					if err != nil {
						return nil, err
					}
					named[key] = b
				}
			}
		default:
			return nil, at.errorf("format takes a template string or a mapping, got %T", arg)
		}

		if protected {
			return bender.ProtectedFormatNamed(template, named, args...), nil
		}
		return bender.FormatNamed(template, named, args...), nil
	}
}

func compileIf(c *compiler, arg any, at pointer) (*bender.Bender, error) {
	branches, err := c.compileList(arg, at, 2, 3)
	if err != nil {
		return nil, err
	}
	var whenFalse any
	if len(branches) == 3 {
		whenFalse = branches[2]
	}
	return bender.If(branches[0], branches[1], whenFalse), nil
}

func compileAlt(c *compiler, arg any, at pointer) (*bender.Bender, error) {
	alternatives, err := c.compileList(arg, at, 1, -1)
	if err != nil {
		return nil, err
	}
	return bender.Alternation(alternatives...), nil
}

func compileSwitch(c *compiler, arg any, at pointer) (*bender.Bender, error) {
	spec, ok := arg.(map[string]any)
	if !ok {
		return nil, at.errorf("$switch takes a mapping with key, cases and default, got %T", arg)
	}
	if err := onlyKeys(spec, at, "key", "cases", "default"); err != nil {
		return nil, err
	}
	if _, ok := spec["key"]; !ok {
		return nil, at.errorf("$switch requires a key")
	}
	key, err := c.compile(spec["key"], at.child("key"))
	if err != nil {
		return nil, err
	}
	rawCases, ok := spec["cases"].(map[string]any)
	if !ok {
		return nil, at.child("cases").errorf("cases must be a mapping")
	}
	cases := make(map[any]any, len(rawCases))
	for name, item := range rawCases {
		b, err := c.compile(item, at.child("cases").child(name))
		if err != nil {
			return nil, err
		}
		cases[name] = b
	}

	// Case labels are mapping keys, so the switch key is matched by its
	// printed form.
	stringKey := key.Then(bender.F(func(v any) (any, error) {
		return bender.Stringify(v), nil
	}))
	if raw, ok := spec["default"]; ok {
		fallback, err := c.compile(raw, at.child("default"))
		if err != nil {
			return nil, err
		}
		return bender.SwitchDefault(stringKey, cases, fallback), nil
	}
	return bender.Switch(stringKey, cases), nil
}

func compileEach(c *compiler, arg any, at pointer) (*bender.Bender, error) {
	spec, ok := arg.(map[string]any)
	if !ok {
		return nil, at.errorf("$each takes a mapping with source, mapping and context, got %T", arg)
	}
	if err := onlyKeys(spec, at, "source", "mapping", "context"); err != nil {
		return nil, err
	}
	if _, ok := spec["mapping"]; !ok {
		return nil, at.errorf("$each requires a mapping")
	}
	mapping, err := c.compile(spec["mapping"], at.child("mapping"))
	if err != nil {
		return nil, err
	}
	var context map[string]any
	if raw, ok := spec["context"]; ok {
		if context, ok = raw.(map[string]any); !ok {
			return nil, at.child("context").errorf("context must be a mapping")
		}
	}
	each := bender.ForallBend(mapping, context)

	if raw, ok := spec["source"]; ok {
		source, err := c.compile(raw, at.child("source"))
		if err != nil {
			return nil, err
		}
		return source.Then(each), nil
	}
	return each, nil
}

func compilePipe(c *compiler, arg any, at pointer) (*bender.Bender, error) {
	stages, err := c.compileList(arg, at, 1, -1)
	if err != nil {
		return nil, err
	}
	chain := bender.Benderify(stages[0])
	for _, stage := range stages[1:] {
		chain = chain.Then(stage)
	}
	return chain, nil
}

func compileCall(c *compiler, arg any, at pointer) (*bender.Bender, error) {
	var name string
	var args []any
	hasArgs := false

	switch spec := arg.(type) {
	case string:
		name = spec
	case map[string]any:
		if err := onlyKeys(spec, at, "name", "args"); err != nil {
			return nil, err
		}
		var ok bool
		if name, ok = spec["name"].(string); !ok {
			return nil, at.child("name").errorf("name must be a string")
		}
		if raw, ok := spec["args"]; ok {
			var err error
			if args, err = c.compileList(raw, at.child("args"), 0, -1); err != nil {
				return nil, err
			}
			hasArgs = true
		}
	default:
		return nil, at.errorf("$call takes a function name or a mapping with name and args, got %T", arg)
	}

	fn, err := c.function(name, at)
	if err != nil {
		return nil, err
	}
	if !hasArgs {
		return bender.FromFunc(name, func(t bender.Transport) (any, error) {
			return fn(t.Value)
		}), nil
	}
	argList := bender.List(args...)
	return bender.FromFunc(name, func(t bender.Transport) (any, error) {
		values, err := argList.Evaluate(t)
		if err != nil {
			return nil, err
		}
		return fn(values.Value.([]any)...)
	}), nil
}

func compileListOp(c *compiler, arg any, at pointer) (*bender.Bender, error) {
	name, ok := arg.(string)
	if !ok {
		return nil, at.errorf("%s takes a function name, got %T", at[len(at)-1], arg)
	}
	fn, err := c.function(name, at)
	if err != nil {
		return nil, err
	}

	switch at[len(at)-1] {
	case "$map":
		return bender.Forall(func(v any) (any, error) { return fn(v) }), nil
	case "$filter":
		return bender.Filter(func(v any) (bool, error) {
			keep, err := fn(v)
			if err != nil {
				return false, err
			}
			return bender.Truthy(keep), nil
		}), nil
	case "$flatMap":
		return bender.FlatForall(func(v any) ([]any, error) {
			out, err := fn(v)
			if err != nil {
				return nil, err
			}
			items, ok := out.([]any)
			if !ok {
				return nil, fmt.Errorf("%w: function %s returned %T", bender.ErrNotSequence, name, out)
			}
			return items, nil
		}), nil
	default:
		return bender.Reduce(func(acc, v any) (any, error) { return fn(acc, v) }), nil
	}
}

func compileBinary(op func(a, b any) *bender.Bender) operatorFunc {
	return func(c *compiler, arg any, at pointer) (*bender.Bender, error) {
		operands, err := c.compileList(arg, at, 2, 2)
		if err != nil {
			return nil, err
		}
		return op(operands[0], operands[1]), nil
	}
}

func compileUnary(op func(a any) *bender.Bender) operatorFunc {
	return func(c *compiler, arg any, at pointer) (*bender.Bender, error) {
		operand, err := c.compile(arg, at)
		if err != nil {
			return nil, err
		}
		return op(operand), nil
	}
}

// compileList compiles a list argument of min to max nodes; max < 0 means unbounded.
func (c *compiler) compileList(arg any, at pointer, minLen, maxLen int) ([]any, error) {
	list, ok := arg.([]any)
	if !ok {
		return nil, at.errorf("expected a list, got %T", arg)
	}
	if len(list) < minLen || (maxLen >= 0 && len(list) > maxLen) {
		switch {
		case minLen == maxLen:
			return nil, at.errorf("expected %d elements, got %d", minLen, len(list))
		case maxLen < 0:
			return nil, at.errorf("expected at least %d elements, got %d", minLen, len(list))
		default:
			return nil, at.errorf("expected %d to %d elements, got %d", minLen, maxLen, len(list))
		}
	}
	out := make([]any, len(list))
	for i, item := range list {
		b, err := c.compile(item, at.child(i))
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}

func (c *compiler) function(name string, at pointer) (Function, error) {
	fn, ok := c.functions[name]
	if !ok {
		return nil, at.errorf("%w %q", ErrUnknownFunction, name)
	}
	return fn, nil
}

func onlyKeys(spec map[string]any, at pointer, allowed ...string) error {
	for key := range spec {
		found := false
		for _, a := range allowed {
			if key == a {
				found = true
				break
			}
		}
		if !found {
			return at.child(key).errorf("unexpected key %q, allowed keys are %s", key, strings.Join(allowed, ", "))
		}
	}
	return nil
}
