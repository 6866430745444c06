package equation

// Copyright (C) 2019-2025 Arm Limited.
// SPDX-License-Identifier: MIT

import (
	"fmt"
	"regexp"
	"strings"
)

// Streamline variable names for the symbolic constants. Constants outside
// this table cannot be expressed in the Streamline dialect and renaming
// them is an error.
var streamlineConstants = map[string]string{
	"MALI_CONFIG_TIME_SPAN":         "$ZOOM",
	"MALI_CONFIG_L2_CACHE_COUNT":    "$MaliConstantsL2SliceCount",
	"MALI_CONFIG_SHADER_CORE_COUNT": "$MaliConstantsShaderCoreCount",
	"MALI_CONFIG_EXT_BUS_BYTE_SIZE": "($MaliConstantsBusWidthBits / 8)",
}

var wordSplitPattern = regexp.MustCompile(`[^_A-Za-z0-9]+`)

// RenameHardware rewrites every counter machine name in a resolved tree to
// the matching hardware source name. Names with no counter in the index,
// such as symbolic constants, are kept as-is.
//
// The input tree must already be resolved; derived counter names would
// pass through unchanged otherwise.
func RenameHardware(node Node, index Index) Node {
	return renameNames(node, func(ident string) string {
		ref, ok := index.LookupMachineName(ident)
		if !ok || ref.SourceName == "" {
			return ident
		}
		return ref.SourceName
	})
}

// RenameStreamline rewrites every name in a resolved tree into the
// Streamline namespace: constants map through the fixed table, and counter
// names are mangled from their group names.
//
// Streamline variable names depend on the group name and group human name
// of the counter, so all Streamline assets must be generated from the same
// database revision.
func RenameStreamline(node Node, index Index) (Node, error) {
	var firstErr error

	renamed := renameNames(node, func(ident string) string {
		if IsConstant(ident) {
			mapped, ok := streamlineConstants[ident]
			if !ok {
				if firstErr == nil {
					firstErr = fmt.Errorf("unmapped constant: %s", ident)
				}
				return ident
			}
			return mapped
		}

		ref, ok := index.LookupMachineName(ident)
		if !ok {
			if firstErr == nil {
				firstErr = fmt.Errorf("missing counter: %s", ident)
			}
			return ident
		}

		return MangleStreamlineName(ref.GroupName, ref.GroupHumanName)
	})

	if firstErr != nil {
		return nil, firstErr
	}

	return renamed, nil
}

// MangleStreamlineName builds the Streamline variable name for a native
// counter from its group names. Words are extracted by splitting on runs
// of characters Streamline cannot keep, upper-cased on their first letter,
// and concatenated under the fixed namespace prefix. A leading digit is
// escaped with an underscore.
func MangleStreamlineName(groupName string, groupHumanName string) string {
	fullName := groupName + " " + groupHumanName

	var parts []string
	for _, part := range wordSplitPattern.Split(fullName, -1) {
		if part == "" {
			continue
		}
		parts = append(parts, strings.ToUpper(part[:1])+part[1:])
	}

	name := strings.Join(parts, "")

	if name != "" && name[0] >= '0' && name[0] <= '9' {
		name = "_" + name
	}

	return "$Mali" + name
}

func renameNames(node Node, rename func(string) string) Node {
	switch t := node.(type) {
	case *Literal:
		return t

	case *Name:
		return &Name{Ident: rename(t.Ident)}

	case *Binary:
		return &Binary{
			Op:    t.Op,
			Prec:  t.Prec,
			Left:  renameNames(t.Left, rename),
			Right: renameNames(t.Right, rename),
		}

	case *Call:
		args := make([]Node, len(t.Args))
		for i, arg := range t.Args {
			args[i] = renameNames(arg, rename)
		}
		return &Call{Func: t.Func, Args: args}
	}

	return node
}

// MachineExpression renders a resolved tree using database machine names,
// clamping percentage counters to their displayable range.
func MachineExpression(resolved Node, unit string) string {
	return clampPercent(Format(resolved), unit)
}

// HardwareExpression renders a resolved tree using hardware source names.
func HardwareExpression(resolved Node, unit string, index Index) string {
	return clampPercent(Format(RenameHardware(resolved, index)), unit)
}

// StreamlineExpression renders a resolved tree in the Streamline dialect.
// For a native counter pass a single Name node holding its machine name.
func StreamlineExpression(resolved Node, unit string, index Index) (string, error) {
	renamed, err := RenameStreamline(resolved, index)
	if err != nil {
		return "", err
	}

	return clampPercent(Format(renamed), unit), nil
}

// Percentages are clamped between 0 and 100 in the visualization, as
// approximations might exceed these bounds and get confusing.
func clampPercent(expression string, unit string) string {
	if unit != "percent" {
		return expression
	}

	return fmt.Sprintf("max(min(%s, 100), 0)", expression)
}
