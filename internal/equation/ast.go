// Package equation implements the counter derivation expression language.
//
// Derived counters in the specification database are defined by equations
// written in a small fixed grammar: names, numeric literals, the four
// arithmetic operators, parentheses, and variadic min()/max() calls. The
// package provides the parser, a canonical pretty-printer with peephole
// simplification, a recursive reference resolver, and renaming passes that
// re-target a resolved tree into the raw hardware namespace or the
// Streamline namespace.
package equation

// Copyright (C) 2019-2025 Arm Limited.
// SPDX-License-Identifier: MIT

import (
	"regexp"
)

// Operator precedence classes. Additive binds looser than multiplicative;
// the pretty-printer uses the class to decide parenthesization.
const (
	PrecAdditive       = 0
	PrecMultiplicative = 1
)

// Node is the closed interface over equation AST nodes. The four
// implementations below are the only node kinds, so transformer switches
// can be exhaustive.
type Node interface {
	node()
}

// Literal is a numeric literal, stored as its source text.
type Literal struct {
	Value string
}

// Name is a reference to a counter machine name or a symbolic constant.
type Name struct {
	Ident string
}

// Binary is a binary arithmetic expression.
type Binary struct {
	Op    string // one of + - * /
	Prec  int    // PrecAdditive or PrecMultiplicative
	Left  Node
	Right Node
}

// Call is a function application, e.g. min(A, B).
type Call struct {
	Func string
	Args []Node
}

func (*Literal) node() {}
func (*Name) node()    {}
func (*Binary) node()  {}
func (*Call) node()    {}

// Symbolic constants are all-caps names such as MALI_CONFIG_SHADER_CORE_COUNT.
// They resolve to product configuration values at measurement time, not here.
var constantPattern = regexp.MustCompile(`^[A-Z0-9_]+$`)

// IsConstant reports whether a name denotes a symbolic constant rather than
// a counter reference.
func IsConstant(name string) bool {
	return constantPattern.MatchString(name)
}

// Ref describes the resolution target for a name that appears in an
// equation. It is the subset of a compiled counter view that the
// transformers need, decoupling this package from the view builder.
type Ref struct {
	MachineName    string
	SourceName     string // empty when the counter is derived
	GroupName      string
	GroupHumanName string
	Derived        bool
	AST            Node // equation tree for derived counters, nil if parsing failed
}

// Index looks up compiled counters by machine name. Lookups are
// case-insensitive on the implementation side.
type Index interface {
	LookupMachineName(name string) (Ref, bool)
}
