package view

// Copyright (C) 2019-2025 Arm Limited.
// SPDX-License-Identifier: MIT

import (
	"strings"

	"lgc/internal/equation"
	"lgc/internal/specdb"
)

// IndexedView is the compiled counter database for a specific GPU,
// providing random access lookups by every counter identifier.
// Iteration is possible but unstructured; structured iteration is
// available via the HardwareView and SemanticView wrappers.
type IndexedView struct {
	// GPU is the product name the view was built for, possibly an
	// alias. Key is the canonical database key.
	GPU string
	Key string

	byStableID    map[int]*CounterView
	byMachineName map[string]*CounterView
	bySourceName  map[string]*CounterView
	byHumanName   map[string]*CounterView
	byGroupNames  map[string]*CounterView

	// counters preserves database order for deterministic iteration.
	counters []*CounterView
}

func newIndexedView(gpu, key string) *IndexedView {
	return &IndexedView{
		GPU:           gpu,
		Key:           key,
		byStableID:    make(map[int]*CounterView),
		byMachineName: make(map[string]*CounterView),
		bySourceName:  make(map[string]*CounterView),
		byHumanName:   make(map[string]*CounterView),
		byGroupNames:  make(map[string]*CounterView),
	}
}

func (v *IndexedView) insert(counter *CounterView) {
	v.counters = append(v.counters, counter)

	v.byStableID[counter.StableID] = counter
	v.byMachineName[strings.ToLower(counter.MachineName)] = counter
	if counter.SourceName != "" {
		v.bySourceName[strings.ToLower(counter.SourceName)] = counter
	}
	v.byHumanName[strings.ToLower(counter.HumanName)] = counter
	v.byGroupNames[groupIndexKey(counter.GroupName, counter.GroupHumanName)] = counter
}

func groupIndexKey(groupName, groupHumanName string) string {
	return strings.ToLower(groupName + "|" + groupHumanName)
}

// BuildIndexedView compiles the counter database for a single GPU. The
// product name may be an alias; counter support is matched against the
// product's database key. A native counter whose source name and
// aliases are all missing from the hardware layout is kept without
// layout data, and reported by the validator.
func BuildIndexedView(product string, info *specdb.ProductSpec,
	layout *specdb.HardwareLayout, counters specdb.Counters) (*IndexedView, error) {
	view := newIndexedView(product, info.DatabaseKey)

	for _, counter := range counters {
		if !counter.SupportsGPU(view.Key) {
			continue
		}

		var block *specdb.BlockLayout
		slot := 0
		sourceName := ""

		if native, ok := counter.NativeSource(); ok {
			names := append([]string{native.SourceName}, native.Aliases...)
			for _, name := range names {
				if foundBlock, foundSlot, found := layout.FindCounter(name); found {
					sourceName = name
					block = foundBlock
					slot = foundSlot
					break
				}
			}
			if sourceName == "" {
				sourceName = native.SourceName
			}
		}

		counterView, err := newCounterView(info, counter, sourceName, block, slot)
		if err != nil {
			return nil, err
		}
		view.insert(counterView)
	}

	return view, nil
}

// ResolveEquations eagerly resolves every derived counter equation.
func (v *IndexedView) ResolveEquations() {
	for _, counter := range v.counters {
		counter.ResolveEquation(v)
	}
}

// Counters returns all counters for this GPU in database order.
func (v *IndexedView) Counters() []*CounterView {
	counters := make([]*CounterView, len(v.counters))
	copy(counters, v.counters)
	return counters
}

// GetByStableID returns a counter by database stable ID.
func (v *IndexedView) GetByStableID(id int) (*CounterView, bool) {
	counter, ok := v.byStableID[id]
	return counter, ok
}

// GetByMachineName returns a counter by machine name, matched
// case-insensitively.
func (v *IndexedView) GetByMachineName(name string) (*CounterView, bool) {
	counter, ok := v.byMachineName[strings.ToLower(name)]
	return counter, ok
}

// GetBySourceName returns a counter by hardware source name, matched
// case-insensitively. Only native counters are reachable this way, as
// derived counters have no source name.
func (v *IndexedView) GetBySourceName(name string) (*CounterView, bool) {
	counter, ok := v.bySourceName[strings.ToLower(name)]
	return counter, ok
}

// GetByHumanName returns a counter by human name, matched
// case-insensitively.
func (v *IndexedView) GetByHumanName(name string) (*CounterView, bool) {
	counter, ok := v.byHumanName[strings.ToLower(name)]
	return counter, ok
}

// GetByGroupNames returns a counter by its group name and group human
// name pair, matched case-insensitively.
func (v *IndexedView) GetByGroupNames(groupName, groupHumanName string) (*CounterView, bool) {
	counter, ok := v.byGroupNames[groupIndexKey(groupName, groupHumanName)]
	return counter, ok
}

// LookupMachineName adapts the view for equation resolution and
// expression rendering.
func (v *IndexedView) LookupMachineName(name string) (equation.Ref, bool) {
	counter, ok := v.GetByMachineName(name)
	if !ok {
		return equation.Ref{}, false
	}
	return equation.Ref{
		MachineName:    counter.MachineName,
		SourceName:     counter.SourceName,
		GroupName:      counter.GroupName,
		GroupHumanName: counter.GroupHumanName,
		Derived:        counter.IsDerived(),
		AST:            counter.EquationAST,
	}, true
}

// Filter returns a copy of the view that hides counters above the given
// visibility level, and optionally all derived counters.
func (v *IndexedView) Filter(maxVisibility specdb.Visibility, derived bool) *IndexedView {
	filtered := newIndexedView(v.GPU, v.Key)

	for _, counter := range v.counters {
		if !counter.IsVisible(maxVisibility) {
			continue
		}
		if counter.IsDerived() && !derived {
			continue
		}
		filtered.insert(counter)
	}

	return filtered
}
