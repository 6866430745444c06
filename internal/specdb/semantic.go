package specdb

// Copyright (C) 2019-2025 Arm Limited.
// SPDX-License-Identifier: MIT

import (
	"fmt"
)

// The semantic hierarchy groups counters for presentation in three
// levels: sections contain groups, and groups contain counters. The
// layout is shared by all products; counters a product does not support
// are dropped when the per-product view is compiled.

// SemanticGroup is an ordered list of counters, identified by their
// group human names.
type SemanticGroup struct {
	Name     string
	Counters []string
}

// SemanticSection is an ordered list of groups.
type SemanticSection struct {
	Name   string
	Groups []*SemanticGroup
}

// SemanticLayout is the presentation hierarchy for all products.
type SemanticLayout struct {
	Sections []*SemanticSection
}

// NewSemanticLayout validates a presentation hierarchy. Section names
// must be unique, and group names must be unique across the whole
// layout, not just within their section.
func NewSemanticLayout(sections []*SemanticSection) (*SemanticLayout, error) {
	sectionNames := make(map[string]bool)
	groupNames := make(map[string]bool)

	for _, section := range sections {
		if sectionNames[section.Name] {
			return nil, fmt.Errorf("duplicate semantic section %q", section.Name)
		}
		sectionNames[section.Name] = true

		for _, group := range section.Groups {
			if groupNames[group.Name] {
				return nil, fmt.Errorf("duplicate semantic group %q", group.Name)
			}
			groupNames[group.Name] = true
		}
	}

	return &SemanticLayout{Sections: sections}, nil
}

// Groups returns all groups in the layout in presentation order.
func (l *SemanticLayout) Groups() []*SemanticGroup {
	var groups []*SemanticGroup
	for _, section := range l.Sections {
		groups = append(groups, section.Groups...)
	}
	return groups
}

// CounterNames returns all counter names in the layout in presentation
// order, duplicates included.
func (l *SemanticLayout) CounterNames() []string {
	var names []string
	for _, group := range l.Groups() {
		names = append(names, group.Counters...)
	}
	return names
}

// DocEntry is one supplemental documentation entry for a semantic
// section or group. Entries can be specialized per product: GPUSupport
// lists the database keys the entry applies to, and an entry with no
// GPUSupport is the default for products without a specialized entry.
type DocEntry struct {
	Name            string
	LongDescription string
	GPUSupport      []string
}

// DocSet is a documentation database for semantic sections or groups.
// A name can have multiple entries applying to different products.
type DocSet struct {
	kind    string
	entries map[string][]*DocEntry
	names   []string
}

// NewDocSet builds a documentation database. The kind is used in error
// messages, e.g. "section" or "group". A name having two default
// entries is an error as lookup would be ambiguous.
func NewDocSet(kind string, entries []*DocEntry) (*DocSet, error) {
	set := &DocSet{kind: kind, entries: make(map[string][]*DocEntry)}

	for _, entry := range entries {
		if _, exists := set.entries[entry.Name]; !exists {
			set.names = append(set.names, entry.Name)
		}
		set.entries[entry.Name] = append(set.entries[entry.Name], entry)
	}

	for _, name := range set.names {
		defaults := 0
		for _, entry := range set.entries[name] {
			if len(entry.GPUSupport) == 0 {
				defaults++
			}
		}
		if defaults > 1 {
			return nil, fmt.Errorf("two default docs for %s %q", kind, name)
		}
	}

	return set, nil
}

// Names returns the documented names in database order.
func (d *DocSet) Names() []string {
	names := make([]string, len(d.names))
	copy(names, d.names)
	return names
}

// Entries returns every documentation entry in database order.
func (d *DocSet) Entries() []*DocEntry {
	var entries []*DocEntry
	for _, name := range d.names {
		entries = append(entries, d.entries[name]...)
	}
	return entries
}

// InfoFor returns the documentation for a name on a specific product,
// identified by its database key. An entry explicitly supporting the
// key wins; otherwise the default entry applies. No match is an error.
func (d *DocSet) InfoFor(key, name string) (*DocEntry, error) {
	entries, ok := d.entries[name]
	if !ok {
		return nil, fmt.Errorf("no doc for %s %q", d.kind, name)
	}

	var fallback *DocEntry
	for _, entry := range entries {
		for _, gpu := range entry.GPUSupport {
			if gpu == key {
				return entry, nil
			}
		}
		if len(entry.GPUSupport) == 0 {
			fallback = entry
		}
	}

	if fallback == nil {
		return nil, fmt.Errorf("no default doc for %s %q on %s", d.kind, name, key)
	}
	return fallback, nil
}
