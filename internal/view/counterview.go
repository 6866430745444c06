// Package view contains the compiled per-product counter views. A view
// combines the product, counter, hardware layout, and semantic databases
// into a consistent picture of one GPU: the IndexedView for random
// access, the HardwareView for counter memory order, and the
// SemanticView for presentation order.
package view

// Copyright (C) 2019-2025 Arm Limited.
// SPDX-License-Identifier: MIT

import (
	"fmt"
	"strings"

	"lgc/internal/equation"
	"lgc/internal/specdb"
)

// ClockDomain is the clock a hardware counter increments on. Products
// with the async_clock feature run shader cores on a separate clock
// from the rest of the GPU.
type ClockDomain int

const (
	// ClockNone marks counters with no hardware clock, either derived
	// counters or native counters missing from the product's layout.
	ClockNone ClockDomain = iota
	ClockGPU
	ClockShaderCore
)

func (d ClockDomain) String() string {
	switch d {
	case ClockGPU:
		return "GPU"
	case ClockShaderCore:
		return "Shader Core"
	default:
		return "None"
	}
}

// CounterView is one counter compiled for a specific GPU, merging the
// counter definition with the product's hardware layout.
type CounterView struct {
	// BlockType is the hardware block holding the counter. It is zero
	// for derived counters, and for native counters whose source name
	// is missing from the layout, which the validator reports.
	BlockType specdb.BlockType
	// BlockIndex is the slot index within the block, 0 if derived.
	BlockIndex int
	// ScaleMultiplier reconstructs the true count from the stored
	// value, 1 if derived.
	ScaleMultiplier uint64
	// ClockDomain is the counter's clock, ClockNone if derived.
	ClockDomain ClockDomain

	MachineName      string
	StableID         int
	HumanName        string
	GroupName        string
	GroupHumanName   string
	ShortDescription string
	LongDescription  string
	Unit             string
	Trend            specdb.Trend
	Visibility       specdb.Visibility

	// SourceName is the hardware name selected for this GPU, resolving
	// any alias, or empty for derived counters.
	SourceName string

	// EquationText and EquationAST hold the derived counter equation as
	// written. ResolvedAST is the equation with references to other
	// derived counters substituted away; ResolveErr records a failed
	// resolution, which the validator reports and should never survive
	// into a release database.
	EquationText string
	EquationAST  equation.Node
	ResolvedAST  equation.Node
	ResolveErr   error
}

func newCounterView(product *specdb.ProductSpec, counter *specdb.CounterSpec,
	sourceName string, block *specdb.BlockLayout, slot int) (*CounterView, error) {
	// Unassigned stable IDs are tolerated in the raw database for easier
	// manual editing, but must never propagate into a compiled view.
	if counter.StableID == specdb.UnassignedStableID {
		return nil, fmt.Errorf("counter %s has no stable ID", counter.MachineName)
	}

	view := &CounterView{
		BlockIndex:       0,
		ScaleMultiplier:  1,
		MachineName:      counter.MachineName,
		StableID:         counter.StableID,
		HumanName:        counter.HumanName,
		GroupName:        counter.GroupName,
		GroupHumanName:   counter.GroupHumanName,
		ShortDescription: counter.ShortDescription,
		LongDescription:  counter.LongDescription,
		Unit:             counter.Unit,
		Trend:            counter.Trend,
		Visibility:       counter.Visibility,
		SourceName:       sourceName,
	}

	if block != nil {
		view.BlockType = block.Type
		view.BlockIndex = slot
		view.ScaleMultiplier = 1 << block.Slots[slot].Shift
	}

	switch {
	case view.BlockType == 0:
		view.ClockDomain = ClockNone
	case !product.HasFeature("async_clock"):
		view.ClockDomain = ClockGPU
	case view.BlockType == specdb.BlockShaderCore:
		view.ClockDomain = ClockShaderCore
	default:
		view.ClockDomain = ClockGPU
	}

	if derived, ok := counter.DerivedSource(); ok {
		view.EquationText = derived.Text
		view.EquationAST = derived.AST
	}

	return view, nil
}

// ResolveEquation substitutes references to other derived counters out
// of the equation, leaving only native counters and constants. Failures
// are recorded on the view rather than returned, so a broken database
// can still be inspected.
func (c *CounterView) ResolveEquation(index *IndexedView) {
	if c.EquationAST == nil {
		return
	}
	c.ResolvedAST, c.ResolveErr = equation.Resolve(c.EquationAST, index)
}

// Anchor returns a stable HTML anchor for the counter. The anchor only
// changes if the stable ID changes, which it should not unless the
// semantic meaning changes.
func (c *CounterView) Anchor() string {
	return fmt.Sprintf("c_%d", c.StableID)
}

// IsDerived reports whether the counter is computed from an equation.
func (c *CounterView) IsDerived() bool {
	return c.SourceName == ""
}

// IsVisible reports whether the counter is visible at or below the
// given visibility level.
func (c *CounterView) IsVisible(maxVisibility specdb.Visibility) bool {
	return c.Visibility <= maxVisibility
}

// nameAnchor builds a stable HTML anchor from a section or group name.
func nameAnchor(prefix, name string) string {
	var anchor strings.Builder
	anchor.WriteString(prefix)
	anchor.WriteByte('_')
	for _, char := range strings.ToLower(name) {
		if (char >= 'a' && char <= 'z') || (char >= '0' && char <= '9') {
			anchor.WriteRune(char)
		}
	}
	return anchor.String()
}
