package validate

// Copyright (C) 2019-2025 Arm Limited.
// SPDX-License-Identifier: MIT

import (
	"fmt"
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"lgc/internal/specdb"
)

// Strings consumed directly by Arm Vulkan drivers must fit in
// VK_MAX_DESCRIPTION_SIZE, which is 256 characters including the NUL
// terminator.
const maxVulkanStringLength = 255

// validUnits is the whitelist of counter units values.
var validUnits = mapset.NewThreadUnsafeSet(
	// Standard units
	"percent",
	// Usage
	"beats",
	"cycles",
	"issues",
	// Sizes
	"bits",
	"bytes",
	// Rates
	"bytes/second",
	// Things
	"boxes",
	"blocks",
	"instances",
	"instructions",
	"interrupts",
	"jobs",
	"pixels",
	"primitives",
	"quads",
	"requests",
	"tasks",
	"tests",
	"tiles",
	"threads",
	"transactions",
	"warps",
	"batches",
	"nodes",
	"triangles",
	"rays",
)

type namedField struct {
	field string
	value string
}

func counterTextFields(counter *specdb.CounterSpec) []namedField {
	sourceName := ""
	if native, ok := counter.NativeSource(); ok {
		sourceName = native.SourceName
	}

	return []namedField{
		{"Machine name", counter.MachineName},
		{"Source name", sourceName},
		{"Human name", counter.HumanName},
		{"Group name", counter.GroupName},
		{"Group human name", counter.GroupHumanName},
		{"Short description", counter.ShortDescription},
		{"Long description", counter.LongDescription},
	}
}

func checkFieldWhitespace(source, name string, fields []namedField) []Diagnostic {
	var diags []Diagnostic

	for _, field := range fields {
		if field.value != strings.TrimSpace(field.value) {
			diags = append(diags, Diagnostic{
				Reason:  "Pre/post whitespace in " + source,
				Detail:  field.field,
				Counter: name,
			})
		}

		if strings.Contains(field.value, "  ") {
			diags = append(diags, Diagnostic{
				Reason:  "Double whitespace in " + source,
				Detail:  field.field,
				Counter: name,
			})
		}
	}

	return diags
}

// CheckWhitespace ensures text fields have no pre/post or double space
// whitespace.
func (v *Validator) CheckWhitespace() []Diagnostic {
	var diags []Diagnostic

	for _, counter := range v.db.Raw.Counters {
		fields := counterTextFields(counter)
		diags = append(diags,
			checkFieldWhitespace("CounterSpec", counter.MachineName, fields)...)
	}

	for _, entry := range v.db.Raw.SectionDocs.Entries() {
		fields := []namedField{
			{"Name", entry.Name},
			{"Long description", entry.LongDescription},
		}
		diags = append(diags, checkFieldWhitespace("SectionDoc", entry.Name, fields)...)
	}

	for _, entry := range v.db.Raw.GroupDocs.Entries() {
		fields := []namedField{
			{"Name", entry.Name},
			{"Long description", entry.LongDescription},
		}
		diags = append(diags, checkFieldWhitespace("GroupDoc", entry.Name, fields)...)
	}

	return diags
}

// CheckShortFieldReferences ensures symbolic references only appear in
// long descriptions, which are the only fields resolved before display.
func (v *Validator) CheckShortFieldReferences() []Diagnostic {
	var diags []Diagnostic

	for _, counter := range v.db.Raw.Counters {
		fields := []namedField{
			{"Human name", counter.HumanName},
			{"Group name", counter.GroupName},
			{"Group human name", counter.GroupHumanName},
			{"Short description", counter.ShortDescription},
		}

		for _, field := range fields {
			if strings.Contains(field.value, "{{") {
				diags = append(diags, Diagnostic{
					Reason:  "Counter reference in CounterSpec",
					Detail:  field.field,
					Counter: counter.MachineName,
				})
			}
		}
	}

	return diags
}

// CheckStringLengths validates the lengths of strings used directly in
// Arm Vulkan drivers.
func (v *Validator) CheckStringLengths() []Diagnostic {
	var diags []Diagnostic

	for _, counter := range v.db.Raw.Counters {
		fields := []namedField{
			{"Human name", counter.HumanName},
			{"Short description", counter.ShortDescription},
		}

		for _, field := range fields {
			if len(field.value) > maxVulkanStringLength {
				diags = append(diags, Diagnostic{
					Reason:  "Field too long for Vulkan",
					Detail:  field.field,
					Counter: counter.MachineName,
				})
			}
		}
	}

	return diags
}

// CheckStableIDs validates stable ID consistency.
//
// Stable IDs must be unique to a given machine name, but the database
// can hold multiple entries with the same machine name for different
// GPUs, which must all share one ID. Counters missing an ID are patched
// in place with the lowest unused ID and reported.
func (v *Validator) CheckStableIDs() []Diagnostic {
	var diags []Diagnostic

	foundIDs := make(map[int]*specdb.CounterSpec)
	foundNames := make(map[string]*specdb.CounterSpec)
	var missing []*specdb.CounterSpec

	for _, counter := range v.db.Raw.Counters {
		if counter.StableID == specdb.UnassignedStableID {
			missing = append(missing, counter)
			continue
		}

		if existing, ok := foundIDs[counter.StableID]; !ok {
			foundIDs[counter.StableID] = counter
		} else if existing.MachineName != counter.MachineName {
			diags = append(diags, Diagnostic{
				Reason:  "Stable ID reused for a different Machine Name",
				Counter: counter.MachineName,
			})
		}

		if existing, ok := foundNames[counter.MachineName]; !ok {
			foundNames[counter.MachineName] = counter
		} else if existing.StableID != counter.StableID {
			diags = append(diags, Diagnostic{
				Reason:  "Machine Name alias using a different Stable ID",
				Counter: counter.MachineName,
			})
		}
	}

	nextUnassignedID := func() int {
		for id := 0; ; id++ {
			if _, used := foundIDs[id]; !used {
				return id
			}
		}
	}

	for _, counter := range missing {
		// A sibling entry with the same name may already have an ID.
		if existing, ok := foundNames[counter.MachineName]; ok {
			counter.StableID = existing.StableID
		} else {
			counter.StableID = nextUnassignedID()
			foundIDs[counter.StableID] = counter
			foundNames[counter.MachineName] = counter
		}

		diags = append(diags, Diagnostic{
			Reason:  "Missing stable ID",
			Detail:  fmt.Sprintf("suggest %d", counter.StableID),
			Counter: counter.MachineName,
		})
	}

	return diags
}

// CheckGPUFields validates that GPU support lists only name valid
// database keys.
func (v *Validator) CheckGPUFields() []Diagnostic {
	var diags []Diagnostic

	keys := mapset.NewThreadUnsafeSet(v.db.DatabaseKeys()...)

	for _, counter := range v.db.Raw.Counters {
		for _, gpu := range counter.GPUSupport {
			if !keys.Contains(gpu) {
				diags = append(diags, Diagnostic{
					Reason:  "Bad GPU for CounterSpec",
					GPU:     gpu,
					Counter: counter.MachineName,
				})
			}
		}
	}

	docSets := []struct {
		source string
		docs   *specdb.DocSet
	}{
		{"SectionDoc", v.db.Raw.SectionDocs},
		{"GroupDoc", v.db.Raw.GroupDocs},
		{"ArchitectureDoc", v.db.Raw.ArchDocs},
	}

	for _, set := range docSets {
		for _, entry := range set.docs.Entries() {
			for _, gpu := range entry.GPUSupport {
				if !keys.Contains(gpu) {
					diags = append(diags, Diagnostic{
						Reason:  "Bad GPU for " + set.source,
						GPU:     gpu,
						Counter: entry.Name,
					})
				}
			}
		}
	}

	return diags
}

// CheckUnits validates the units field against the known units values.
func (v *Validator) CheckUnits() []Diagnostic {
	var diags []Diagnostic

	for _, counter := range v.db.Raw.Counters {
		if !validUnits.Contains(counter.Unit) {
			diags = append(diags, Diagnostic{
				Reason:  "Bad units for CounterSpec",
				Detail:  counter.Unit,
				Counter: counter.MachineName,
			})
		}
	}

	return diags
}

// CheckEquationParse reports derived counters whose equation failed to
// parse.
func (v *Validator) CheckEquationParse() []Diagnostic {
	var diags []Diagnostic

	for _, counter := range v.db.Raw.Counters {
		derived, ok := counter.DerivedSource()
		if !ok || derived.ParseErr == nil {
			continue
		}

		diags = append(diags, Diagnostic{
			Reason:  "Bad equation for CounterSpec",
			Detail:  derived.ParseErr.Error(),
			Counter: counter.MachineName,
		})
	}

	return diags
}

// CheckSemanticLayout validates semantic layout consistency.
//
// Section and group names must be unique in the whole layout. All
// sections and groups must have at least one counter, and every counter
// must have a group. Group human names are scoped to their parent group
// and must match the layout's counter list in both directions.
func (v *Validator) CheckSemanticLayout() []Diagnostic {
	var diags []Diagnostic

	layout := v.db.Raw.Layout

	type groupState struct {
		section      string
		counterCount int
		layoutNames  []string
		counterNames []string
	}

	sectionCounts := make(map[string]int)
	var sectionOrder []string
	groups := make(map[string]*groupState)
	var groupOrder []string

	// Duplicates are rejected when the layout file is loaded, but a
	// layout built programmatically can still carry them.
	for _, section := range layout.Sections {
		if _, seen := sectionCounts[section.Name]; seen {
			diags = append(diags, Diagnostic{
				Reason:  "Duplicate section in SemanticLayout",
				Counter: section.Name,
			})
		}
		sectionCounts[section.Name] = 0
		sectionOrder = append(sectionOrder, section.Name)

		for _, group := range section.Groups {
			if _, seen := groups[group.Name]; seen {
				diags = append(diags, Diagnostic{
					Reason:  "Duplicate group in SemanticLayout",
					Counter: group.Name,
				})
			}

			state := &groupState{section: section.Name}
			groups[group.Name] = state
			groupOrder = append(groupOrder, group.Name)

			for _, counter := range group.Counters {
				for _, existing := range state.layoutNames {
					if existing == counter {
						diags = append(diags, Diagnostic{
							Reason:  "Duplicate counter in SemanticLayout",
							Counter: group.Name + "." + counter,
						})
						break
					}
				}
				state.layoutNames = append(state.layoutNames, counter)
			}
		}
	}

	// Stop checking if we've had errors already because they snowball.
	if len(diags) != 0 {
		return diags
	}

	for _, counter := range v.db.Raw.Counters {
		state, ok := groups[counter.GroupName]
		if !ok {
			diags = append(diags, Diagnostic{
				Reason:  "Missing group in SemanticLayout",
				Counter: counter.GroupName,
			})
			continue
		}

		state.counterCount++
		state.counterNames = append(state.counterNames, counter.GroupHumanName)
		sectionCounts[state.section]++
	}

	for _, name := range sectionOrder {
		if sectionCounts[name] == 0 {
			diags = append(diags, Diagnostic{
				Reason:  "Extra section in SemanticLayout",
				Counter: name,
			})
		}
	}

	for _, name := range groupOrder {
		state := groups[name]

		if state.counterCount == 0 {
			diags = append(diags, Diagnostic{
				Reason:  "Extra group in SemanticLayout",
				Counter: name,
			})
		}

		// Detect extra counters in either direction.
		layoutSet := mapset.NewThreadUnsafeSet(state.layoutNames...)
		counterSet := mapset.NewThreadUnsafeSet(state.counterNames...)

		for _, counter := range sortedSlice(layoutSet.Difference(counterSet)) {
			diags = append(diags, Diagnostic{
				Reason:  "Extra semantic counter in SemanticLayout",
				Counter: name + "." + counter,
			})
		}

		for _, counter := range sortedSlice(counterSet.Difference(layoutSet)) {
			diags = append(diags, Diagnostic{
				Reason:  "Extra semantic counter in CounterSpec",
				Counter: name + "." + counter,
			})
		}
	}

	return diags
}

// CheckUnusedDocs reports documentation entries that the semantic
// layout never uses. Per-product checks validate the other direction,
// that every layout entry has documentation.
func (v *Validator) CheckUnusedDocs() []Diagnostic {
	var diags []Diagnostic

	layout := v.db.Raw.Layout

	layoutSections := mapset.NewThreadUnsafeSet[string]()
	for _, section := range layout.Sections {
		layoutSections.Add(section.Name)
	}

	docSections := mapset.NewThreadUnsafeSet(v.db.Raw.SectionDocs.Names()...)
	for _, name := range sortedSlice(docSections.Difference(layoutSections)) {
		diags = append(diags, Diagnostic{
			Reason:  "Extra section in SectionDocs",
			Counter: name,
		})
	}

	layoutGroups := mapset.NewThreadUnsafeSet[string]()
	for _, group := range layout.Groups() {
		layoutGroups.Add(group.Name)
	}

	docGroups := mapset.NewThreadUnsafeSet(v.db.Raw.GroupDocs.Names()...)
	for _, name := range sortedSlice(docGroups.Difference(layoutGroups)) {
		diags = append(diags, Diagnostic{
			Reason:  "Extra group in GroupDocs",
			Counter: name,
		})
	}

	return diags
}

func sortedSlice(set mapset.Set[string]) []string {
	values := set.ToSlice()
	sort.Strings(values)
	return values
}
