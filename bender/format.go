// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package bender

import (
	"fmt"
	"strconv"
	"strings"
)

type formatNode struct {
	template   string
	segments   []segment
	parseErr   error
	positional []*Bender
	named      map[string]*Bender
	protected  bool
}

func (*formatNode) kind() Kind { return KindFormat }

func (n *formatNode) String() string { return fmt.Sprintf("Format(%q)", n.template) }

// segment is a literal run of text or a placeholder.
type segment struct {
	literal     string
	placeholder bool
	// index is the positional argument for numbered and automatic placeholders, -1 for named ones.
	index int
	name  string
	spec  string
}

// Format interpolates the results of args into template. Placeholders follow
// the brace syntax: "{}" takes the next positional argument, "{0}" a numbered
// one, and "{{" and "}}" are literal braces. An optional spec after a colon
// ("{:.2f}", "{:5d}") uses fmt verbs. A placeholder with no matching argument
// fails with a LookupError.
//
//	Format("{} {}", S("first"), S("last"))
func Format(template string, args ...any) *Bender {
	return FormatNamed(template, nil, args...)
}

// FormatNamed is Format with named arguments for "{name}" placeholders.
func FormatNamed(template string, named map[string]any, args ...any) *Bender {
	return newBender(newFormatNode(template, named, args, false))
}

// ProtectedFormat is Format that produces nil, without interpolating, when
// any argument evaluates to nil.
func ProtectedFormat(template string, args ...any) *Bender {
	return ProtectedFormatNamed(template, nil, args...)
}

// ProtectedFormatNamed is FormatNamed with the nil propagation of ProtectedFormat.
func ProtectedFormatNamed(template string, named map[string]any, args ...any) *Bender {
	return newBender(newFormatNode(template, named, args, true))
}

func newFormatNode(template string, named map[string]any, args []any, protected bool) *formatNode {
	n := &formatNode{
		template:   template,
		positional: make([]*Bender, len(args)),
		named:      make(map[string]*Bender, len(named)),
		protected:  protected,
	}
	for i, a := range args {
		n.positional[i] = Benderify(a)
	}
	for k, v := range named {
		n.named[k] = Benderify(v)
	}
	n.segments, n.parseErr = parseTemplate(template)
	return n
}

func evalFormat(n *formatNode, t Transport) (Transport, error) {
	if n.parseErr != nil {
		return t, n.parseErr
	}
	args := make([]any, len(n.positional))
	for i, b := range n.positional {
		v, err := b.Evaluate(t)
		if err != nil {
			return t, err
		}
		args[i] = v.Value
	}
	named := make(map[string]any, len(n.named))
	for k, b := range n.named {
		v, err := b.Evaluate(t)
		if err != nil {
			return t, err
		}
		named[k] = v.Value
	}

	if n.protected {
		for _, v := range args {
			if v == nil {
				return t.WithValue(nil), nil
			}
		}
		for _, v := range named {
			if v == nil {
				return t.WithValue(nil), nil
			}
		}
	}

	var sb strings.Builder
	for _, seg := range n.segments {
		if !seg.placeholder {
			sb.WriteString(seg.literal)
			continue
		}
		var v any
		if seg.index >= 0 {
			if seg.index >= len(args) {
				return t, &LookupError{Key: seg.index, Err: fmt.Errorf("template %q has no positional argument %d", n.template, seg.index)}
			}
			v = args[seg.index]
		} else {
			var ok bool
			if v, ok = named[seg.name]; !ok {
				return t, &LookupError{Key: seg.name, Err: fmt.Errorf("template %q has no named argument", n.template)}
			}
		}
		s, err := render(v, seg.spec)
		if err != nil {
			return t, err
		}
		sb.WriteString(s)
	}
	return t.WithValue(sb.String()), nil
}

func parseTemplate(template string) ([]segment, error) {
	var (
		segments []segment
		literal  strings.Builder
		next     int
		auto     bool
		manual   bool
	)
	flush := func() {
		if literal.Len() > 0 {
			segments = append(segments, segment{literal: literal.String()})
			literal.Reset()
		}
	}

	for i := 0; i < len(template); i++ {
		c := template[i]
		switch {
		case c == '{' && i+1 < len(template) && template[i+1] == '{':
			literal.WriteByte('{')
			i++
		case c == '}' && i+1 < len(template) && template[i+1] == '}':
			literal.WriteByte('}')
			i++
		case c == '}':
			return nil, fmt.Errorf("%w: single '}' in template %q", ErrFormat, template)
		case c == '{':
			end := strings.IndexByte(template[i+1:], '}')
			if end < 0 {
				return nil, fmt.Errorf("%w: unclosed '{' in template %q", ErrFormat, template)
			}
			field := template[i+1 : i+1+end]
			i += end + 1
			if strings.ContainsAny(field, "{!") {
				return nil, fmt.Errorf("%w: unsupported placeholder {%s} in template %q", ErrFormat, field, template)
			}
			seg := segment{placeholder: true, index: -1}
			seg.name, seg.spec, _ = strings.Cut(field, ":")
			switch {
			case seg.name == "":
				auto = true
				seg.index = next
				next++
			case isDigits(seg.name):
				manual = true
				seg.index, _ = strconv.Atoi(seg.name)
			}
			if auto && manual {
				return nil, fmt.Errorf("%w: cannot mix automatic and manual field numbering in template %q", ErrFormat, template)
			}
			flush()
			segments = append(segments, seg)
		default:
			literal.WriteByte(c)
		}
	}
	flush()
	return segments, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// Stringify renders v the way Format does without a spec: nil renders as
// "null", everything else as fmt.Sprint would.
func Stringify(v any) string {
	if v == nil {
		return "null"
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// render formats v with a brace-style spec translated into a fmt verb.
func render(v any, spec string) (string, error) {
	if spec == "" {
		return Stringify(v), nil
	}
	flags := spec
	verb := byte('v')
	if last := spec[len(spec)-1]; strings.IndexByte("dxXobfFeEgGs%", last) >= 0 {
		flags, verb = spec[:len(spec)-1], last
	}
	if strings.Trim(flags, "-+# 0123456789.") != "" {
		return "", fmt.Errorf("%w: unsupported format spec %q", ErrFormat, spec)
	}
	_, isNum := toNumber(v)
	if verb == 'v' && isNum && strings.Contains(flags, ".") {
		verb = 'g'
	}

	switch verb {
	case 'd', 'x', 'X', 'o', 'b':
		i, ok := toIndex(v)
		if !ok {
			return "", fmt.Errorf("%w: format spec %q requires an integer, got %T", ErrFormat, spec, v)
		}
		return fmt.Sprintf("%"+numericFlags(flags)+string(verb), i), nil
	case 'f', 'F', 'e', 'E', 'g', 'G', '%':
		n, ok := toNumber(v)
		if !ok {
			return "", fmt.Errorf("%w: format spec %q requires a number, got %T", ErrFormat, spec, v)
		}
		if verb == '%' {
			return fmt.Sprintf("%"+numericFlags(flags)+"f", n.float()*100) + "%", nil
		}
		return fmt.Sprintf("%"+numericFlags(flags)+string(verb), n.float()), nil
	default:
		s := Stringify(v)
		if isNum {
			return fmt.Sprintf("%"+numericFlags(flags)+"s", s), nil
		}
		if strings.ContainsAny(flags, "-+ ") {
			return "", fmt.Errorf("%w: sign not allowed in string format spec %q", ErrFormat, spec)
		}
		// strings align left by default
		return fmt.Sprintf("%-"+flags+"s", s), nil
	}
}

// numericFlags drops the "-" sign option, which is the default for numbers
// and would left-justify in fmt.
func numericFlags(flags string) string {
	return strings.ReplaceAll(flags, "-", "")
}
