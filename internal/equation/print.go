package equation

// Copyright (C) 2019-2025 Arm Limited.
// SPDX-License-Identifier: MIT

import (
	"math"
	"strconv"
	"strings"
)

// printed is one formatted operand in the bottom-up printing fold. Binary
// operands remember their operator so the parent can decide whether they
// need parenthesizing, and their wrapped operand texts so the literal
// re-association peephole can inspect them.
type printed struct {
	text     string
	isBinary bool
	op       string
	prec     int
	left     string // already-wrapped operand texts, binary nodes only
	right    string
}

// Format renders an equation tree back to a canonical string.
//
// An operand that is itself a binary expression is parenthesized exactly
// when its operator or its precedence class differs from its parent's.
// A small peephole simplifier folds multiplications by one and pairs of
// numeric literals; no other algebraic identities are applied.
func Format(node Node) string {
	return formatNode(node).text
}

func formatNode(node Node) printed {
	switch t := node.(type) {
	case *Literal:
		return printed{text: t.Value}

	case *Name:
		return printed{text: t.Ident}

	case *Call:
		args := make([]string, len(t.Args))
		for i, arg := range t.Args {
			args[i] = formatNode(arg).text
		}
		return printed{text: t.Func + "(" + strings.Join(args, ", ") + ")"}

	case *Binary:
		left := formatNode(t.Left)
		right := formatNode(t.Right)

		if t.Prec == PrecMultiplicative {
			if folded, ok := simplifyMul(left, t.Op, right); ok {
				return folded
			}
		}

		return newPrintedBinary(left, t.Op, right, t.Prec)
	}

	return printed{}
}

func newPrintedBinary(left printed, op string, right printed, prec int) printed {
	lt := wrapOperand(left, op, prec)
	rt := wrapOperand(right, op, prec)

	return printed{
		text:     lt + " " + op + " " + rt,
		isBinary: true,
		op:       op,
		prec:     prec,
		left:     lt,
		right:    rt,
	}
}

func wrapOperand(operand printed, op string, prec int) string {
	if !operand.isBinary {
		return operand.text
	}

	if operand.op != op || operand.prec != prec {
		return "(" + operand.text + ")"
	}

	return operand.text
}

// simplifyMul applies the peephole rewrites for multiplicative nodes. It
// targets the specific patterns that occur in the database equations, and
// is not a general optimizer.
func simplifyMul(left printed, op string, right printed) (printed, bool) {
	// a * 1 and a / 1
	if !right.isBinary && right.text == "1" {
		return left, true
	}

	// 1 * b
	if op == "*" && !left.isBinary && left.text == "1" {
		return right, true
	}

	// literal op literal folds to a single literal
	if !left.isBinary && !right.isBinary &&
		isNumber(left.text) && isNumber(right.text) {
		a := toNumber(left.text)
		b := toNumber(right.text)

		if op == "*" {
			return printed{text: formatLiteral(a * b)}, true
		}
		return printed{text: formatLiteral(a / b)}, true
	}

	// (a * lit1) * lit2 re-associates to a * (lit1 * lit2)
	if left.isBinary && !right.isBinary &&
		left.op == "*" && op == "*" &&
		isNumber(left.right) && isNumber(right.text) {
		folded := formatLiteral(toNumber(left.right) * toNumber(right.text))

		return newPrintedBinary(
			printed{text: left.left}, "*",
			printed{text: folded}, PrecMultiplicative), true
	}

	return printed{}, false
}

func isNumber(text string) bool {
	_, err := strconv.ParseFloat(text, 64)
	return err == nil
}

func toNumber(text string) float64 {
	value, _ := strconv.ParseFloat(text, 64)
	return value
}

// formatLiteral renders a folded value as an integer literal when it is
// exactly representable as one, else as a shortest-form float.
func formatLiteral(value float64) string {
	if value == math.Trunc(value) && math.Abs(value) < 1e15 {
		return strconv.FormatInt(int64(value), 10)
	}

	return strconv.FormatFloat(value, 'g', -1, 64)
}
