package specdb

// Copyright (C) 2019-2025 Arm Limited.
// SPDX-License-Identifier: MIT

import (
	"lgc/internal/equation"
)

// UnassignedStableID marks a counter that has not yet been allocated a
// stable identifier. IDs are assigned by the validator and written back
// into the database before release.
const UnassignedStableID = -1

// Source is the origin of a counter's value: either a native hardware
// counter slot or a derived equation. Exactly one of the two applies to
// any counter.
type Source interface {
	source()
}

// Native is the source of a counter read directly from a hardware slot.
type Native struct {
	// SourceName is the hardware name of the counter slot.
	SourceName string
	// Aliases are alternative hardware names to search when the primary
	// source name is absent from a product's memory layout. Search order
	// is SourceName first, then Aliases in declaration order.
	Aliases []string
}

// Derived is the source of a counter computed from other counters.
type Derived struct {
	// Text is the equation exactly as written in the database.
	Text string
	// AST is the parsed equation, or nil when parsing failed.
	AST equation.Node
	// ParseErr records the parse failure for the validator to report.
	ParseErr error
}

func (Native) source()  {}
func (Derived) source() {}

// CounterSpec is the raw definition of one counter, covering every
// product that supports it.
type CounterSpec struct {
	// SourceFile is the database file the counter was loaded from,
	// relative to the database root.
	SourceFile string

	MachineName      string
	StableID         int
	HumanName        string
	GroupName        string
	GroupHumanName   string
	ShortDescription string
	LongDescription  string
	Unit             string
	Trend            Trend
	Visibility       Visibility
	Source           Source

	// GPUSupport lists the product names the counter is available on.
	GPUSupport []string
}

// IsDerived reports whether the counter is computed from an equation.
func (c *CounterSpec) IsDerived() bool {
	_, derived := c.Source.(Derived)
	return derived
}

// NativeSource returns the native source definition, or false for a
// derived counter.
func (c *CounterSpec) NativeSource() (Native, bool) {
	native, ok := c.Source.(Native)
	return native, ok
}

// DerivedSource returns the derived source definition, or false for a
// native counter.
func (c *CounterSpec) DerivedSource() (Derived, bool) {
	derived, ok := c.Source.(Derived)
	return derived, ok
}

// SupportsGPU reports whether the counter is available on the named
// product.
func (c *CounterSpec) SupportsGPU(name string) bool {
	for _, gpu := range c.GPUSupport {
		if gpu == name {
			return true
		}
	}
	return false
}

// Counters is the full cross-product counter database in file order.
type Counters []*CounterSpec

// ForGPU returns the counters available on the named product, preserving
// database order.
func (c Counters) ForGPU(name string) Counters {
	var supported Counters
	for _, counter := range c {
		if counter.SupportsGPU(name) {
			supported = append(supported, counter)
		}
	}
	return supported
}
