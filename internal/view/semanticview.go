package view

// Copyright (C) 2019-2025 Arm Limited.
// SPDX-License-Identifier: MIT

import (
	"lgc/internal/specdb"
)

// The semantic hierarchy captures a recommended presentation ordering in
// three levels. Sections are topical areas, groups are analogous to a
// chart, and counters can be presented as data series on that chart.

// SemanticGroupView is a semantic group compiled for a single GPU.
type SemanticGroupView struct {
	Name            string
	LongDescription string
	Counters        []*CounterView
}

// Anchor returns a stable HTML anchor for the group.
func (g *SemanticGroupView) Anchor() string {
	return nameAnchor("g", g.Name)
}

// SemanticSectionView is a semantic section compiled for a single GPU.
type SemanticSectionView struct {
	Name            string
	LongDescription string
	Groups          []*SemanticGroupView
}

// Anchor returns a stable HTML anchor for the section.
func (s *SemanticSectionView) Anchor() string {
	return nameAnchor("s", s.Name)
}

// SemanticView is the presentation-ordered counter hierarchy for a
// single GPU.
type SemanticView struct {
	Sections []*SemanticSectionView
}

// BuildSemanticView compiles the presentation-ordered view for a single
// GPU. The shared layout is pruned to the product: counters the GPU
// does not support are dropped, as are groups and sections left empty,
// and sections or groups with no applicable documentation. The
// validator reports missing documentation separately.
func BuildSemanticView(key string, layout *specdb.SemanticLayout,
	sectionDocs, groupDocs *specdb.DocSet, index *IndexedView) *SemanticView {
	view := &SemanticView{}

	for _, section := range layout.Sections {
		sectionInfo, err := sectionDocs.InfoFor(key, section.Name)
		if err != nil {
			continue
		}

		sectionView := &SemanticSectionView{
			Name:            section.Name,
			LongDescription: sectionInfo.LongDescription,
		}

		for _, group := range section.Groups {
			groupInfo, err := groupDocs.InfoFor(key, group.Name)
			if err != nil {
				continue
			}

			groupView := &SemanticGroupView{
				Name:            group.Name,
				LongDescription: groupInfo.LongDescription,
			}

			for _, counterName := range group.Counters {
				if counter, ok := index.GetByGroupNames(group.Name, counterName); ok {
					groupView.Counters = append(groupView.Counters, counter)
				}
			}

			if len(groupView.Counters) > 0 {
				sectionView.Groups = append(sectionView.Groups, groupView)
			}
		}

		if len(sectionView.Groups) > 0 {
			view.Sections = append(view.Sections, sectionView)
		}
	}

	return view
}

// Groups returns all groups in the view in presentation order.
func (v *SemanticView) Groups() []*SemanticGroupView {
	var groups []*SemanticGroupView
	for _, section := range v.Sections {
		groups = append(groups, section.Groups...)
	}
	return groups
}

// Counters returns all counters in the view in presentation order.
func (v *SemanticView) Counters() []*CounterView {
	var counters []*CounterView
	for _, group := range v.Groups() {
		counters = append(counters, group.Counters...)
	}
	return counters
}

// Filter returns a copy of the view that hides counters above the given
// visibility level, and optionally all derived counters. Groups and
// sections left empty by the filter are dropped.
func (v *SemanticView) Filter(maxVisibility specdb.Visibility, derived bool) *SemanticView {
	filtered := &SemanticView{}

	for _, section := range v.Sections {
		filteredSection := &SemanticSectionView{
			Name:            section.Name,
			LongDescription: section.LongDescription,
		}

		for _, group := range section.Groups {
			filteredGroup := &SemanticGroupView{
				Name:            group.Name,
				LongDescription: group.LongDescription,
			}

			for _, counter := range group.Counters {
				if !counter.IsVisible(maxVisibility) {
					continue
				}
				if counter.IsDerived() && !derived {
					continue
				}
				filteredGroup.Counters = append(filteredGroup.Counters, counter)
			}

			if len(filteredGroup.Counters) > 0 {
				filteredSection.Groups = append(filteredSection.Groups, filteredGroup)
			}
		}

		if len(filteredSection.Groups) > 0 {
			filtered.Sections = append(filtered.Sections, filteredSection)
		}
	}

	return filtered
}
