// Package database is a convenience wrapper around the raw
// specification databases, allowing easy querying of available products
// and creation of per-product views without manually wiring the
// individual data sources together.
//
// Created views are cached, making repeated use much less expensive.
// The cache can be reset to release the memory with ClearCache.
package database

// Copyright (C) 2019-2025 Arm Limited.
// SPDX-License-Identifier: MIT

import (
	"sync"

	"lgc/internal/specdb"
	"lgc/internal/view"
)

// CounterDatabase wraps the raw specification with cached per-product
// compiled views. It is safe for concurrent use.
type CounterDatabase struct {
	// Raw is the underlying specification, treated as read-only.
	Raw *specdb.Database

	mu       sync.Mutex
	indexed  map[string]*view.IndexedView
	hardware map[string]*view.HardwareView
	semantic map[string]*view.SemanticView
}

// New wraps an already loaded specification.
func New(raw *specdb.Database) *CounterDatabase {
	return &CounterDatabase{
		Raw:      raw,
		indexed:  make(map[string]*view.IndexedView),
		hardware: make(map[string]*view.HardwareView),
		semantic: make(map[string]*view.SemanticView),
	}
}

// Open loads the specification from a database directory.
func Open(dir string) (*CounterDatabase, error) {
	raw, err := specdb.Load(dir)
	if err != nil {
		return nil, err
	}
	return New(raw), nil
}

// ClearCache drops all compiled views.
func (d *CounterDatabase) ClearCache() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.indexed = make(map[string]*view.IndexedView)
	d.hardware = make(map[string]*view.HardwareView)
	d.semantic = make(map[string]*view.SemanticView)
}

// SupportedGPUs returns all available product names, including aliases
// when the same underlying hardware ships in multiple configurations.
func (d *CounterDatabase) SupportedGPUs() []string {
	return d.Raw.Products.Names()
}

// DatabaseKeys returns the deduplicated database keys. Keys may not be
// consumer-visible product names in their own right; they exist mainly
// for tests on the underlying databases, and applications are expected
// to use product names.
func (d *CounterDatabase) DatabaseKeys() []string {
	return d.Raw.Products.DatabaseKeys()
}

// ProductInfoFor returns the product metadata for a product name or
// database key.
func (d *CounterDatabase) ProductInfoFor(product string) (*specdb.ProductSpec, error) {
	return d.Raw.Products.Get(product)
}

// ArchitectureInfoFor returns the architecture documentation that
// applies to a product.
func (d *CounterDatabase) ArchitectureInfoFor(product string) (*specdb.DocEntry, error) {
	info, err := d.Raw.Products.Get(product)
	if err != nil {
		return nil, err
	}
	return d.Raw.ArchDocs.InfoFor(info.DatabaseKey, info.Architecture.String())
}

// IndexedViewFor returns the compiled indexed view for a product, which
// may be named by an alias. Equations are resolved eagerly when the
// view is first built.
func (d *CounterDatabase) IndexedViewFor(product string) (*view.IndexedView, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.indexedViewLocked(product)
}

func (d *CounterDatabase) indexedViewLocked(product string) (*view.IndexedView, error) {
	if cached, ok := d.indexed[product]; ok {
		return cached, nil
	}

	info, err := d.Raw.Products.Get(product)
	if err != nil {
		return nil, err
	}
	layout, err := d.Raw.Hardware.ForKey(info.DatabaseKey)
	if err != nil {
		return nil, err
	}

	compiled, err := view.BuildIndexedView(product, info, layout, d.Raw.Counters)
	if err != nil {
		return nil, err
	}
	compiled.ResolveEquations()

	d.indexed[product] = compiled
	return compiled, nil
}

// HardwareViewFor returns the hardware-ordered view for a product,
// which may be named by an alias.
func (d *CounterDatabase) HardwareViewFor(product string) (*view.HardwareView, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if cached, ok := d.hardware[product]; ok {
		return cached, nil
	}

	index, err := d.indexedViewLocked(product)
	if err != nil {
		return nil, err
	}
	info, err := d.Raw.Products.Get(product)
	if err != nil {
		return nil, err
	}
	layout, err := d.Raw.Hardware.ForKey(info.DatabaseKey)
	if err != nil {
		return nil, err
	}

	compiled, err := view.BuildHardwareView(layout, index)
	if err != nil {
		return nil, err
	}

	d.hardware[product] = compiled
	return compiled, nil
}

// SemanticViewFor returns the presentation-ordered view for a product,
// which may be named by an alias.
func (d *CounterDatabase) SemanticViewFor(product string) (*view.SemanticView, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if cached, ok := d.semantic[product]; ok {
		return cached, nil
	}

	index, err := d.indexedViewLocked(product)
	if err != nil {
		return nil, err
	}
	info, err := d.Raw.Products.Get(product)
	if err != nil {
		return nil, err
	}

	compiled := view.BuildSemanticView(info.DatabaseKey, d.Raw.Layout,
		d.Raw.SectionDocs, d.Raw.GroupDocs, index)

	d.semantic[product] = compiled
	return compiled, nil
}
