package specdb

// Copyright (C) 2019-2025 Arm Limited.
// SPDX-License-Identifier: MIT

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v2"

	"lgc/internal/equation"
)

// Database file names, relative to the database root. Counter files are
// split by area to keep them reviewable; any file matching the counters
// glob is loaded, in sorted name order.
const (
	productsFileName = "products.yaml"
	countersGlob     = "counters-*.yaml"
	hardwareDirName  = "hardware"
	layoutFileName   = "semantic-layout.yaml"
	sectionsFileName = "section-docs.yaml"
	groupsFileName   = "group-docs.yaml"
	archFileName     = "architecture-docs.yaml"
)

// Database is the complete raw specification, loaded from one database
// directory. It covers every product at once; per-product compiled
// views are built by the view package.
type Database struct {
	Products    *Products
	Counters    Counters
	Hardware    *HardwareLayouts
	Layout      *SemanticLayout
	SectionDocs *DocSet
	GroupDocs   *DocSet

	// ArchDocs is keyed by architecture name rather than section or
	// group name, as architecture documentation can be specialized per
	// product even when the architecture name is shared.
	ArchDocs *DocSet
}

type productRecord struct {
	IDs                []uint32          `yaml:"ids"`
	Names              []string          `yaml:"names"`
	ReleaseYear        int               `yaml:"release_year"`
	Architecture       Architecture      `yaml:"architecture"`
	Visibility         ProductVisibility `yaml:"visibility"`
	DatabaseKey        string            `yaml:"database_key,omitempty"`
	DocumentName       *string           `yaml:"document_name,omitempty"`
	Features           []string          `yaml:"features,omitempty"`
	EngineeringName    string            `yaml:"engineering_name,omitempty"`
	ProjectName        string            `yaml:"project_name,omitempty"`
	ArchitectureBranch string            `yaml:"architecture_branch,omitempty"`
}

type productsFile struct {
	Products []productRecord `yaml:"products"`
}

type counterRecord struct {
	MachineName      string     `yaml:"machine_name"`
	StableID         *int       `yaml:"stable_id,omitempty"`
	HumanName        string     `yaml:"human_name"`
	GroupName        string     `yaml:"group_name"`
	GroupHumanName   string     `yaml:"group_human_name"`
	Units            string     `yaml:"units"`
	Trend            Trend      `yaml:"trend"`
	Visibility       Visibility `yaml:"visibility"`
	SourceName       string     `yaml:"source_name,omitempty"`
	SourceAliases    []string   `yaml:"source_aliases,omitempty"`
	Equation         string     `yaml:"equation,omitempty"`
	ShortDescription string     `yaml:"short_description"`
	LongDescription  string     `yaml:"long_description"`
	GPUs             []string   `yaml:"gpus"`
}

type countersFile struct {
	Counters []counterRecord `yaml:"counters"`
}

type slotRecord struct {
	Name  string `yaml:"name"`
	Shift uint   `yaml:"shift,omitempty"`
}

type blockRecord struct {
	Type     BlockType    `yaml:"type"`
	Bank     int          `yaml:"bank,omitempty"`
	Counters []slotRecord `yaml:"counters"`
}

type hardwareFile struct {
	Key    string        `yaml:"key"`
	Blocks []blockRecord `yaml:"blocks"`
}

type docRecord struct {
	Name            string   `yaml:"name"`
	LongDescription string   `yaml:"long_description"`
	GPUs            []string `yaml:"gpus,omitempty"`
}

type docsFile struct {
	Docs []docRecord `yaml:"docs"`
}

// The semantic layout file is an ordered hierarchy, stored as lists of
// single-key mappings because plain YAML mappings do not keep order.
type layoutDocument []map[string][]map[string][]string

func loadYAMLFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.UnmarshalStrict(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Load reads the complete raw specification from a database directory.
// Derived counter equations are parsed during the load; a parse failure
// is recorded on the counter for the validator to report rather than
// failing the whole load.
func Load(dir string) (*Database, error) {
	products, err := loadProducts(filepath.Join(dir, productsFileName))
	if err != nil {
		return nil, err
	}

	counters, err := loadCounters(dir)
	if err != nil {
		return nil, err
	}

	hardware, err := loadHardware(filepath.Join(dir, hardwareDirName))
	if err != nil {
		return nil, err
	}

	layout, err := loadLayout(filepath.Join(dir, layoutFileName))
	if err != nil {
		return nil, err
	}

	sectionDocs, err := loadDocs(filepath.Join(dir, sectionsFileName), "section")
	if err != nil {
		return nil, err
	}

	groupDocs, err := loadDocs(filepath.Join(dir, groupsFileName), "group")
	if err != nil {
		return nil, err
	}

	archDocs, err := loadDocs(filepath.Join(dir, archFileName), "architecture")
	if err != nil {
		return nil, err
	}

	return &Database{
		Products:    products,
		Counters:    counters,
		Hardware:    hardware,
		Layout:      layout,
		SectionDocs: sectionDocs,
		GroupDocs:   groupDocs,
		ArchDocs:    archDocs,
	}, nil
}

func loadProducts(path string) (*Products, error) {
	var file productsFile
	if err := loadYAMLFile(path, &file); err != nil {
		return nil, err
	}

	var specs []*ProductSpec
	for _, record := range file.Products {
		if len(record.Names) == 0 {
			return nil, fmt.Errorf("product with ids %v has no names", record.IDs)
		}

		spec := &ProductSpec{
			IDs:                record.IDs,
			Names:              record.Names,
			ReleaseYear:        record.ReleaseYear,
			Architecture:       record.Architecture,
			Visibility:         record.Visibility,
			DatabaseKey:        record.DatabaseKey,
			DocumentName:       record.Names[0],
			Features:           record.Features,
			EngineeringName:    record.EngineeringName,
			ProjectName:        record.ProjectName,
			ArchitectureBranch: record.ArchitectureBranch,
		}
		if spec.DatabaseKey == "" {
			spec.DatabaseKey = record.Names[0]
		}
		// An explicit empty document name marks a product that reuses a
		// related product's document.
		if record.DocumentName != nil {
			spec.DocumentName = *record.DocumentName
		}
		specs = append(specs, spec)
	}

	return NewProducts(specs)
}

func loadCounters(dir string) (Counters, error) {
	paths, err := filepath.Glob(filepath.Join(dir, countersGlob))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no counter databases matching %s in %s", countersGlob, dir)
	}
	sort.Strings(paths)

	var counters Counters
	for _, path := range paths {
		var file countersFile
		if err := loadYAMLFile(path, &file); err != nil {
			return nil, err
		}

		sourceFile := filepath.Base(path)
		for _, record := range file.Counters {
			counter, err := counterFromRecord(record, sourceFile)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", sourceFile, err)
			}
			counters = append(counters, counter)
		}
	}
	return counters, nil
}

func counterFromRecord(record counterRecord, sourceFile string) (*CounterSpec, error) {
	counter := &CounterSpec{
		SourceFile:       sourceFile,
		MachineName:      record.MachineName,
		StableID:         UnassignedStableID,
		HumanName:        record.HumanName,
		GroupName:        record.GroupName,
		GroupHumanName:   record.GroupHumanName,
		ShortDescription: record.ShortDescription,
		LongDescription:  record.LongDescription,
		Unit:             record.Units,
		Trend:            record.Trend,
		Visibility:       record.Visibility,
		GPUSupport:       record.GPUs,
	}
	if record.StableID != nil {
		counter.StableID = *record.StableID
	}

	// A counter is either read from a hardware slot or computed from an
	// equation, never both.
	switch {
	case record.SourceName != "" && record.Equation != "":
		return nil, fmt.Errorf("counter %s has both a source name and an equation",
			record.MachineName)
	case record.SourceName != "":
		counter.Source = Native{
			SourceName: record.SourceName,
			Aliases:    record.SourceAliases,
		}
	case record.Equation != "":
		ast, parseErr := equation.Parse(record.Equation)
		counter.Source = Derived{
			Text:     record.Equation,
			AST:      ast,
			ParseErr: parseErr,
		}
	default:
		return nil, fmt.Errorf("counter %s has neither a source name nor an equation",
			record.MachineName)
	}

	return counter, nil
}

func loadHardware(dir string) (*HardwareLayouts, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	var layouts []*HardwareLayout
	for _, path := range paths {
		var file hardwareFile
		if err := loadYAMLFile(path, &file); err != nil {
			return nil, err
		}

		layout := &HardwareLayout{Key: file.Key}
		for _, record := range file.Blocks {
			block := &BlockLayout{Type: record.Type, Bank: record.Bank}
			for _, slot := range record.Counters {
				block.Slots = append(block.Slots, CounterSlot(slot))
			}
			layout.Blocks = append(layout.Blocks, block)
		}
		layouts = append(layouts, layout)
	}

	return NewHardwareLayouts(layouts)
}

func loadLayout(path string) (*SemanticLayout, error) {
	var document layoutDocument
	if err := loadYAMLFile(path, &document); err != nil {
		return nil, err
	}

	var sections []*SemanticSection
	for _, sectionEntry := range document {
		if len(sectionEntry) != 1 {
			return nil, fmt.Errorf("malformed semantic section entry in %s",
				filepath.Base(path))
		}

		for sectionName, groupEntries := range sectionEntry {
			section := &SemanticSection{Name: sectionName}
			for _, groupEntry := range groupEntries {
				if len(groupEntry) != 1 {
					return nil, fmt.Errorf("malformed semantic group entry in section %q",
						sectionName)
				}
				for groupName, counterNames := range groupEntry {
					section.Groups = append(section.Groups, &SemanticGroup{
						Name:     groupName,
						Counters: counterNames,
					})
				}
			}
			sections = append(sections, section)
		}
	}

	return NewSemanticLayout(sections)
}

func loadDocs(path, kind string) (*DocSet, error) {
	var file docsFile
	if err := loadYAMLFile(path, &file); err != nil {
		return nil, err
	}

	var entries []*DocEntry
	for _, record := range file.Docs {
		entries = append(entries, &DocEntry{
			Name:            record.Name,
			LongDescription: record.LongDescription,
			GPUSupport:      SortGPUNames(record.GPUs),
		})
	}

	return NewDocSet(kind, entries)
}
