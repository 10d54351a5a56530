// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package bender

import (
	"fmt"
	"strings"
)

// Operator names a unary or binary operator.
type Operator string

// Operators. The table maps the operator sugar of expression languages onto
// the methods and free functions of this package:
//
//	a + b    a.Add(b)    Add(a, b)
//	a - b    a.Sub(b)    Sub(a, b)
//	a * b    a.Mul(b)    Mul(a, b)
//	a / b    a.Div(b)    Div(a, b)
//	a == b   a.Eq(b)     Eq(a, b)
//	a != b   a.Ne(b)     Ne(a, b)
//	a & b    a.And(b)    And(a, b)
//	a | b    a.Or(b)     Or(a, b)
//	-a       a.Neg()     Neg(a)
//	~a       a.Not()     Not(a)
//	a >> b   a.Then(b)   Compose(a, b)
//	a << b   a.After(b)  Compose(b, a)
//	a[i]     a.Index(i)  Compose(a, GetItem(i))
//	a[i:j]   a.Slice(s)  Compose(a, GetItem(s))
const (
	OpAdd Operator = "+"
	OpSub Operator = "-"
	OpMul Operator = "*"
	OpDiv Operator = "/"
	OpEq  Operator = "=="
	OpNe  Operator = "!="
	OpAnd Operator = "&"
	OpOr  Operator = "|"
	OpNeg Operator = "neg"
	OpNot Operator = "not"
)

type unaryNode struct {
	op      Operator
	operand *Bender
}

func (*unaryNode) kind() Kind { return KindUnary }

func (n *unaryNode) String() string { return fmt.Sprintf("%s(%s)", n.op, n.operand) }

type binaryNode struct {
	op          Operator
	left, right *Bender
}

func (*binaryNode) kind() Kind { return KindBinary }

func (n *binaryNode) String() string { return fmt.Sprintf("(%s %s %s)", n.left, n.op, n.right) }

type composeNode struct {
	first, second *Bender
}

func (*composeNode) kind() Kind { return KindCompose }

func (n *composeNode) String() string { return fmt.Sprintf("(%s >> %s)", n.first, n.second) }

func unary(op Operator, operand any) *Bender {
	return newBender(&unaryNode{op: op, operand: Benderify(operand)})
}

func binary(op Operator, left, right any) *Bender {
	return newBender(&binaryNode{op: op, left: Benderify(left), right: Benderify(right)})
}

// Add builds a node adding (or concatenating) the results of a and b.
func Add(a, b any) *Bender { return binary(OpAdd, a, b) }

// Sub builds a node subtracting the result of b from the result of a.
func Sub(a, b any) *Bender { return binary(OpSub, a, b) }

// Mul builds a node multiplying the results of a and b.
func Mul(a, b any) *Bender { return binary(OpMul, a, b) }

// Div builds a node dividing the result of a by the result of b. The result
// is always a float64.
func Div(a, b any) *Bender { return binary(OpDiv, a, b) }

// Eq builds a node comparing the results of a and b for equality.
func Eq(a, b any) *Bender { return binary(OpEq, a, b) }

// Ne builds a node comparing the results of a and b for inequality.
func Ne(a, b any) *Bender { return binary(OpNe, a, b) }

// And builds a logical and. Both operands are always evaluated; the result is
// a if a is falsy, b otherwise.
func And(a, b any) *Bender { return binary(OpAnd, a, b) }

// Or builds a logical or. Both operands are always evaluated; the result is
// a if a is truthy, b otherwise.
func Or(a, b any) *Bender { return binary(OpOr, a, b) }

// Neg builds a node negating the numeric result of a.
func Neg(a any) *Bender { return unary(OpNeg, a) }

// Not builds a node returning the logical inverse of the result of a.
func Not(a any) *Bender { return unary(OpNot, a) }

// Compose builds a pipeline feeding the output of first into second.
func Compose(first, second any) *Bender {
	return newBender(&composeNode{first: Benderify(first), second: Benderify(second)})
}

// Add is the method form of Add.
func (b *Bender) Add(other any) *Bender { return Add(b, other) }

// Sub is the method form of Sub.
func (b *Bender) Sub(other any) *Bender { return Sub(b, other) }

// Mul is the method form of Mul.
func (b *Bender) Mul(other any) *Bender { return Mul(b, other) }

// Div is the method form of Div.
func (b *Bender) Div(other any) *Bender { return Div(b, other) }

// Eq is the method form of Eq.
func (b *Bender) Eq(other any) *Bender { return Eq(b, other) }

// Ne is the method form of Ne.
func (b *Bender) Ne(other any) *Bender { return Ne(b, other) }

// And is the method form of And.
func (b *Bender) And(other any) *Bender { return And(b, other) }

// Or is the method form of Or.
func (b *Bender) Or(other any) *Bender { return Or(b, other) }

// Neg is the method form of Neg.
func (b *Bender) Neg() *Bender { return Neg(b) }

// Not is the method form of Not.
func (b *Bender) Not() *Bender { return Not(b) }

// Then feeds the output of b into next.
func (b *Bender) Then(next any) *Bender { return Compose(b, next) }

// After feeds the output of prev into b.
func (b *Bender) After(prev any) *Bender { return Compose(prev, b) }

// Index selects index (a key, an integer position or a Slice) from the output of b.
func (b *Bender) Index(index any) *Bender { return Compose(b, GetItem(index)) }

// Slice selects a range from the output of b.
func (b *Bender) Slice(s Slice) *Bender { return Compose(b, GetItem(s)) }

func evalUnary(n *unaryNode, t Transport) (Transport, error) {
	v, err := n.operand.Evaluate(t)
	if err != nil {
		return t, err
	}
	var out any
	switch n.op {
	case OpNeg:
		num, ok := toNumber(v.Value)
		if !ok {
			return t, fmt.Errorf("%w: bad operand type for unary -: %T", ErrOperand, v.Value)
		}
		if num.isFloat {
			out = -num.f
		} else {
			out = sameIntType(v.Value, v.Value, -num.i)
		}
	case OpNot:
		out = !Truthy(v.Value)
	default:
		return t, fmt.Errorf("unknown unary operator %q", n.op)
	}
	return t.WithValue(out), nil
}

func evalBinary(n *binaryNode, t Transport) (Transport, error) {
	left, err := n.left.Evaluate(t)
	if err != nil {
		return t, err
	}
	right, err := n.right.Evaluate(t)
	if err != nil {
		return t, err
	}
	out, err := applyBinary(n.op, left.Value, right.Value)
	if err != nil {
		return t, err
	}
	return t.WithValue(out), nil
}

func applyBinary(op Operator, a, b any) (any, error) {
	switch op {
	case OpEq:
		return Equal(a, b), nil
	case OpNe:
		return !Equal(a, b), nil
	case OpAnd:
		if !Truthy(a) {
			return a, nil
		}
		return b, nil
	case OpOr:
		if Truthy(a) {
			return a, nil
		}
		return b, nil
	case OpDiv:
		na, okA := toNumber(a)
		nb, okB := toNumber(b)
		if !okA || !okB {
			return nil, operandError(op, a, b)
		}
		if nb.float() == 0 {
			return nil, ErrDivisionByZero
		}
		return na.float() / nb.float(), nil
	case OpAdd, OpSub, OpMul:
		return arithmetic(op, a, b)
	default:
		return nil, fmt.Errorf("unknown binary operator %q", op)
	}
}

func arithmetic(op Operator, a, b any) (any, error) {
	na, okA := toNumber(a)
	nb, okB := toNumber(b)
	if okA && okB {
		if na.isFloat || nb.isFloat {
			x, y := na.float(), nb.float()
			switch op {
			case OpAdd:
				return x + y, nil
			case OpSub:
				return x - y, nil
			default:
				return x * y, nil
			}
		}
		var r int64
		switch op {
		case OpAdd:
			r = na.i + nb.i
		case OpSub:
			r = na.i - nb.i
		default:
			r = na.i * nb.i
		}
		return sameIntType(a, b, r), nil
	}

	switch op {
	case OpAdd:
		if sa, ok := a.(string); ok {
			if sb, ok := b.(string); ok {
				return sa + sb, nil
			}
		}
		if sa, ok := asSequence(a); ok {
			if sb, ok := asSequence(b); ok {
				out := make([]any, 0, len(sa)+len(sb))
				out = append(out, sa...)
				return append(out, sb...), nil
			}
		}
	case OpMul:
		if out, ok := repetition(a, b); ok {
			return out, nil
		}
	}
	return nil, operandError(op, a, b)
}

// repetition implements string and sequence repetition by an integer count.
func repetition(a, b any) (any, bool) {
	if _, ok := toNumber(a); ok {
		a, b = b, a
	}
	nb, ok := toNumber(b)
	if !ok || nb.isFloat {
		return nil, false
	}
	count := max(int(nb.i), 0)
	if s, ok := a.(string); ok {
		return strings.Repeat(s, count), true
	}
	if seq, ok := asSequence(a); ok {
		out := make([]any, 0, len(seq)*count)
		for range count {
			out = append(out, seq...)
		}
		return out, true
	}
	return nil, false
}

// sameIntType keeps the Go type of integer operands when both share it, so
// int arithmetic stays int. Mixed integer types widen to int64.
func sameIntType(a, b any, r int64) any {
	_, aInt := a.(int)
	_, bInt := b.(int)
	if aInt && bInt {
		return int(r)
	}
	return r
}

func operandError(op Operator, a, b any) error {
	return fmt.Errorf("%w: unsupported operand types for %s: %T and %T", ErrOperand, op, a, b)
}
