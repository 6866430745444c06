package equation

// Copyright (C) 2019-2025 Arm Limited.
// SPDX-License-Identifier: MIT

import (
	"fmt"
	"strings"
)

// Resolve recursively replaces references to derived counters with their
// own equation trees, returning a tree that mentions only native counters,
// symbolic constants, and literals.
//
// Resolution failures are recoverable; callers store the error on the
// owning counter and leave it to the validator to report. A reference
// chain that revisits a counter is reported as a cyclic derivation rather
// than recursing forever.
func Resolve(node Node, index Index) (Node, error) {
	return resolve(node, index, map[string]bool{})
}

func resolve(node Node, index Index, visiting map[string]bool) (Node, error) {
	switch t := node.(type) {
	case *Literal:
		return t, nil

	case *Name:
		return resolveName(t, index, visiting)

	case *Binary:
		left, err := resolve(t.Left, index, visiting)
		if err != nil {
			return nil, err
		}
		right, err := resolve(t.Right, index, visiting)
		if err != nil {
			return nil, err
		}
		return &Binary{Op: t.Op, Prec: t.Prec, Left: left, Right: right}, nil

	case *Call:
		args := make([]Node, len(t.Args))
		for i, arg := range t.Args {
			resolved, err := resolve(arg, index, visiting)
			if err != nil {
				return nil, err
			}
			args[i] = resolved
		}
		return &Call{Func: t.Func, Args: args}, nil
	}

	return nil, fmt.Errorf("unhandled node type %T", node)
}

func resolveName(name *Name, index Index, visiting map[string]bool) (Node, error) {
	// Constants stay symbolic; the consumer binds them at measurement time
	if IsConstant(name.Ident) {
		return name, nil
	}

	ref, ok := index.LookupMachineName(name.Ident)
	if !ok {
		return nil, fmt.Errorf("missing counter: %s", name.Ident)
	}

	// Native counters need no expansion, the name is already primitive
	if !ref.Derived {
		return name, nil
	}

	if ref.AST == nil {
		return nil, fmt.Errorf("reference to unparsed equation: %s", ref.MachineName)
	}

	key := strings.ToLower(ref.MachineName)
	if visiting[key] {
		return nil, fmt.Errorf("cyclic derivation through %s", ref.MachineName)
	}

	visiting[key] = true
	defer delete(visiting, key)

	return resolve(ref.AST, index, visiting)
}
