// Package docs resolves symbolic references in database documentation
// text into product-specific strings, for building user-visible
// documentation from the machine readable databases.
package docs

// Copyright (C) 2019-2025 Arm Limited.
// SPDX-License-Identifier: MIT

import (
	"fmt"
	"regexp"
	"strings"

	"lgc/internal/equation"
	"lgc/internal/specdb"
	"lgc/internal/view"
)

// Documentation text can embed symbolic references:
//
//	{{K::GPU_NAME}}               the GPU product document name
//	{{C::<MachineName>}}          the human name of the counter
//	{{C::<MachineName>.equation}} the equation of the counter
//
// Web-based documentation may want something more nuanced, such as
// injecting hyperlinks to cross-reference counters; ResolveHyperlink is
// a reference implementation of that.
var referencePattern = regexp.MustCompile(`{{(.*?)}}`)

type resolver func(refType, name, part string) (string, error)

func resolveReferences(document string, resolve resolver) (string, error) {
	var firstErr error

	resolved := referencePattern.ReplaceAllStringFunc(document, func(match string) string {
		pattern := match[2 : len(match)-2]

		refType, reference, found := strings.Cut(pattern, "::")
		if !found || (refType != "C" && refType != "K") {
			if firstErr == nil {
				firstErr = fmt.Errorf("bad reference type in {{%s}}", pattern)
			}
			return match
		}

		name, part, _ := strings.Cut(reference, ".")
		if part != "" && part != "equation" {
			if firstErr == nil {
				firstErr = fmt.Errorf("bad reference part in {{%s}}", pattern)
			}
			return match
		}

		replacement, err := resolve(refType, name, part)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return match
		}
		return replacement
	})

	if firstErr != nil {
		return "", firstErr
	}
	return resolved, nil
}

// ResolveText replaces all symbolic references in a documentation entry
// with plain strings for the current product.
func ResolveText(document string, product *specdb.ProductSpec,
	index *view.IndexedView) (string, error) {
	return resolveReferences(document, func(refType, name, part string) (string, error) {
		if refType == "K" {
			return resolveConstant(name, product)
		}

		counter, ok := index.GetByMachineName(name)
		if !ok {
			return "", fmt.Errorf("reference to unknown counter %s", name)
		}

		if part == "equation" {
			if counter.EquationAST == nil {
				return "", fmt.Errorf("counter %s has no equation", name)
			}
			return equation.Format(counter.EquationAST), nil
		}
		return counter.HumanName, nil
	})
}

// ResolveHyperlink replaces all symbolic references in a documentation
// entry, rendering counter references as HTML hyperlinks to the
// counter's anchor.
func ResolveHyperlink(document string, product *specdb.ProductSpec,
	index *view.IndexedView) (string, error) {
	return resolveReferences(document, func(refType, name, part string) (string, error) {
		if refType == "K" {
			return resolveConstant(name, product)
		}

		counter, ok := index.GetByMachineName(name)
		if !ok {
			return "", fmt.Errorf("reference to unknown counter %s", name)
		}

		label := counter.HumanName
		if part == "equation" {
			if counter.EquationAST == nil {
				return "", fmt.Errorf("counter %s has no equation", name)
			}
			label = equation.Format(counter.EquationAST)
		}
		return fmt.Sprintf("<a href=\"#%s\">%s</a>", counter.Anchor(), label), nil
	})
}

func resolveConstant(name string, product *specdb.ProductSpec) (string, error) {
	if name != "GPU_NAME" {
		return "", fmt.Errorf("reference to unknown constant %s", name)
	}
	return product.GetDocumentName(true), nil
}
