package specdb

// Copyright (C) 2019-2025 Arm Limited.
// SPDX-License-Identifier: MIT

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

const databaseFileHeader = "# Copyright (C) 2019-2025 Arm Limited.\n" +
	"# SPDX-License-Identifier: MIT\n"

func saveYAMLFile(path string, value any) error {
	data, err := yaml.Marshal(value)
	if err != nil {
		return err
	}
	return os.WriteFile(path, append([]byte(databaseFileHeader), data...), 0o644)
}

// Save writes the specification back out in normalized form: counters
// return to the file they were loaded from, GPU support lists are in
// presentation order, and stable IDs assigned since the load are
// included. Existing database files are overwritten in place.
func (db *Database) Save(dir string) error {
	if err := db.saveProducts(filepath.Join(dir, productsFileName)); err != nil {
		return err
	}
	if err := db.saveCounters(dir); err != nil {
		return err
	}
	if err := db.saveHardware(filepath.Join(dir, hardwareDirName)); err != nil {
		return err
	}
	if err := db.saveLayout(filepath.Join(dir, layoutFileName)); err != nil {
		return err
	}
	if err := saveDocs(filepath.Join(dir, sectionsFileName), db.SectionDocs); err != nil {
		return err
	}
	if err := saveDocs(filepath.Join(dir, groupsFileName), db.GroupDocs); err != nil {
		return err
	}
	return saveDocs(filepath.Join(dir, archFileName), db.ArchDocs)
}

func (db *Database) saveProducts(path string) error {
	var file productsFile
	for _, spec := range db.Products.Specs() {
		record := productRecord{
			IDs:                spec.IDs,
			Names:              spec.Names,
			ReleaseYear:        spec.ReleaseYear,
			Architecture:       spec.Architecture,
			Visibility:         spec.Visibility,
			Features:           spec.Features,
			EngineeringName:    spec.EngineeringName,
			ProjectName:        spec.ProjectName,
			ArchitectureBranch: spec.ArchitectureBranch,
		}
		if spec.DatabaseKey != spec.Names[0] {
			record.DatabaseKey = spec.DatabaseKey
		}
		if spec.DocumentName != spec.Names[0] {
			name := spec.DocumentName
			record.DocumentName = &name
		}
		file.Products = append(file.Products, record)
	}
	return saveYAMLFile(path, file)
}

func (db *Database) saveCounters(dir string) error {
	// Counters return to the file they were loaded from, in load order.
	files := make(map[string]*countersFile)
	var order []string

	for _, counter := range db.Counters {
		file, ok := files[counter.SourceFile]
		if !ok {
			file = &countersFile{}
			files[counter.SourceFile] = file
			order = append(order, counter.SourceFile)
		}

		record := counterRecord{
			MachineName:      counter.MachineName,
			HumanName:        counter.HumanName,
			GroupName:        counter.GroupName,
			GroupHumanName:   counter.GroupHumanName,
			Units:            counter.Unit,
			Trend:            counter.Trend,
			Visibility:       counter.Visibility,
			ShortDescription: counter.ShortDescription,
			LongDescription:  counter.LongDescription,
			GPUs:             SortGPUNames(counter.GPUSupport),
		}
		if counter.StableID != UnassignedStableID {
			id := counter.StableID
			record.StableID = &id
		}

		switch source := counter.Source.(type) {
		case Native:
			record.SourceName = source.SourceName
			record.SourceAliases = source.Aliases
		case Derived:
			record.Equation = source.Text
		default:
			return fmt.Errorf("counter %s has no source", counter.MachineName)
		}

		file.Counters = append(file.Counters, record)
	}

	for _, name := range order {
		if err := saveYAMLFile(filepath.Join(dir, name), files[name]); err != nil {
			return err
		}
	}
	return nil
}

func (db *Database) saveHardware(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	for _, key := range db.Hardware.Keys() {
		layout, err := db.Hardware.ForKey(key)
		if err != nil {
			return err
		}

		file := hardwareFile{Key: layout.Key}
		for _, block := range layout.Blocks {
			record := blockRecord{Type: block.Type, Bank: block.Bank}
			for _, slot := range block.Slots {
				record.Counters = append(record.Counters, slotRecord(slot))
			}
			file.Blocks = append(file.Blocks, record)
		}

		if err := saveYAMLFile(filepath.Join(dir, layout.Key+".yaml"), file); err != nil {
			return err
		}
	}
	return nil
}

func (db *Database) saveLayout(path string) error {
	var document layoutDocument
	for _, section := range db.Layout.Sections {
		var groups []map[string][]string
		for _, group := range section.Groups {
			groups = append(groups, map[string][]string{group.Name: group.Counters})
		}
		document = append(document, map[string][]map[string][]string{
			section.Name: groups,
		})
	}
	return saveYAMLFile(path, document)
}

func saveDocs(path string, docs *DocSet) error {
	var file docsFile
	for _, entry := range docs.Entries() {
		file.Docs = append(file.Docs, docRecord{
			Name:            entry.Name,
			LongDescription: entry.LongDescription,
			GPUs:            SortGPUNames(entry.GPUSupport),
		})
	}
	return saveYAMLFile(path, file)
}
