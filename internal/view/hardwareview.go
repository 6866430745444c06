package view

// Copyright (C) 2019-2025 Arm Limited.
// SPDX-License-Identifier: MIT

import (
	"fmt"

	"lgc/internal/specdb"
)

// HardwareBlockView is the counters of a single memory block, compiled
// for a single GPU.
type HardwareBlockView struct {
	Type     specdb.BlockType
	Counters []*CounterView
}

// HardwareView is the counters of a single GPU in hardware counter
// memory order. Only bank 0 of each block is included; other banks
// repeat the same slot layout.
type HardwareView struct {
	Blocks []*HardwareBlockView
}

// BuildHardwareView compiles the hardware-ordered view for a single GPU
// from its memory layout and pre-compiled indexed view. Every layout
// slot must resolve to an indexed counter.
func BuildHardwareView(layout *specdb.HardwareLayout, index *IndexedView) (*HardwareView, error) {
	view := &HardwareView{}

	for _, block := range layout.Blocks {
		if block.Bank != 0 {
			continue
		}

		blockView := &HardwareBlockView{Type: block.Type}
		for _, slot := range block.Slots {
			counter, ok := index.GetBySourceName(slot.Name)
			if !ok {
				return nil, fmt.Errorf("layout counter %s has no database entry on %s",
					slot.Name, index.Key)
			}
			blockView.Counters = append(blockView.Counters, counter)
		}
		view.Blocks = append(view.Blocks, blockView)
	}

	return view, nil
}

// Counters returns all counters in the view in hardware order.
func (v *HardwareView) Counters() []*CounterView {
	var counters []*CounterView
	for _, block := range v.Blocks {
		counters = append(counters, block.Counters...)
	}
	return counters
}

// Filter returns a copy of the view that hides counters above the given
// visibility level, and optionally all derived counters. Blocks left
// empty by the filter are dropped.
func (v *HardwareView) Filter(maxVisibility specdb.Visibility, derived bool) *HardwareView {
	filtered := &HardwareView{}

	for _, block := range v.Blocks {
		filteredBlock := &HardwareBlockView{Type: block.Type}

		for _, counter := range block.Counters {
			if !counter.IsVisible(maxVisibility) {
				continue
			}
			if counter.IsDerived() && !derived {
				continue
			}
			filteredBlock.Counters = append(filteredBlock.Counters, counter)
		}

		if len(filteredBlock.Counters) > 0 {
			filtered.Blocks = append(filtered.Blocks, filteredBlock)
		}
	}

	return filtered
}
