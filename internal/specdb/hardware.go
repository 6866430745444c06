package specdb

// Copyright (C) 2019-2025 Arm Limited.
// SPDX-License-Identifier: MIT

import (
	"fmt"
)

// CounterSlot is one counter position in a hardware block's counter
// memory. Counters accumulate in the hardware with a block-specific
// left-shift, so the stored value must be scaled by 1 << Shift to
// reconstruct the true count.
type CounterSlot struct {
	Name  string
	Shift uint
}

// BlockLayout is the counter memory layout of a single hardware block.
// Some GPUs expose the same block type in multiple banks with identical
// slot layouts; only bank 0 is used for presentation.
type BlockLayout struct {
	Type  BlockType
	Bank  int
	Slots []CounterSlot
}

// HardwareLayout is the counter memory layout of a single GPU, keyed by
// the product's database key.
type HardwareLayout struct {
	Key    string
	Blocks []*BlockLayout
}

// FindCounter returns the block and slot index holding the named
// hardware counter, searching blocks in layout order and returning the
// first match.
func (l *HardwareLayout) FindCounter(name string) (*BlockLayout, int, bool) {
	for _, block := range l.Blocks {
		for i := range block.Slots {
			if block.Slots[i].Name == name {
				return block, i, true
			}
		}
	}
	return nil, 0, false
}

// CounterNames returns the distinct hardware counter names exposed by
// the layout, in slot order. Duplicate banks contribute one entry.
func (l *HardwareLayout) CounterNames() []string {
	var names []string
	seen := make(map[string]bool)
	for _, block := range l.Blocks {
		for _, slot := range block.Slots {
			if seen[slot.Name] {
				continue
			}
			seen[slot.Name] = true
			names = append(names, slot.Name)
		}
	}
	return names
}

// HardwareLayouts is the hardware memory layout database for all known
// GPUs.
type HardwareLayouts struct {
	layouts map[string]*HardwareLayout
	keys    []string
}

// NewHardwareLayouts builds a layout container. Duplicate database keys
// are an error.
func NewHardwareLayouts(layouts []*HardwareLayout) (*HardwareLayouts, error) {
	collection := &HardwareLayouts{layouts: make(map[string]*HardwareLayout)}
	for _, layout := range layouts {
		if _, exists := collection.layouts[layout.Key]; exists {
			return nil, fmt.Errorf("duplicate hardware layout for %q", layout.Key)
		}
		collection.layouts[layout.Key] = layout
		collection.keys = append(collection.keys, layout.Key)
	}
	return collection, nil
}

// Keys returns the database keys with a known layout, in load order.
func (h *HardwareLayouts) Keys() []string {
	keys := make([]string, len(h.keys))
	copy(keys, h.keys)
	return keys
}

// ForKey returns the layout for a product database key.
func (h *HardwareLayouts) ForKey(key string) (*HardwareLayout, error) {
	layout, ok := h.layouts[key]
	if !ok {
		return nil, fmt.Errorf("no hardware layout for %q", key)
	}
	return layout, nil
}
