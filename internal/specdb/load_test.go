package specdb

// Copyright (C) 2019-2025 Arm Limited.
// SPDX-License-Identifier: MIT

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testProductsYAML = `
products:
  - ids: [36883]
    names: ["Mali-G720", "Mali-G720 MC3"]
    release_year: 2023
    architecture: "5th Generation"
    visibility: "Public"
    features: ["async_clock"]
  - ids: [36884]
    names: ["Immortalis-G720"]
    release_year: 2023
    architecture: "5th Generation"
    visibility: "Public"
    database_key: "Mali-G720"
    document_name: ""
    features: ["async_clock"]
`

const testCountersYAML = `
counters:
  - machine_name: MaliGPUActiveCy
    stable_id: 1
    human_name: GPU active cycles
    group_name: GPU cycles
    group_human_name: Active
    units: cycles
    trend: "Informative"
    visibility: "Novice"
    source_name: GPU_ACTIVE
    short_description: "GPU active cycles."
    long_description: "The number of cycles the GPU was active."
    gpus: ["Mali-G720"]
  - machine_name: MaliSCActiveCy
    human_name: Shader core active cycles
    group_name: Core cycles
    group_human_name: Active
    units: cycles
    trend: "Informative"
    visibility: "Novice"
    source_name: SC_ACTIVE
    short_description: "Shader core active cycles."
    long_description: "The number of cycles shader cores were active."
    gpus: ["Mali-G720"]
  - machine_name: MaliCoreUtil
    stable_id: 3
    human_name: Shader core utilization
    group_name: Core cycles
    group_human_name: Utilization
    units: percent
    trend: "Higher better"
    visibility: "Novice"
    equation: "MaliSCActiveCy / (MaliGPUActiveCy * MALI_CONFIG_SHADER_CORE_COUNT)"
    short_description: "Shader core utilization."
    long_description: "Utilization compared to {{C:MaliGPUActiveCy}}."
    gpus: ["Mali-G720"]
`

const testHardwareYAML = `
key: Mali-G720
blocks:
  - type: "GPU Front-end"
    counters:
      - name: GPU_ACTIVE
  - type: "Shader Core"
    counters:
      - name: SC_ACTIVE
        shift: 2
`

const testLayoutYAML = `
- Overview:
    - Utilization:
        - Active
        - Utilization
`

const testSectionDocsYAML = `
docs:
  - name: Overview
    long_description: "Top level behavior."
`

const testGroupDocsYAML = `
docs:
  - name: Utilization
    long_description: "Processing load."
`

const testArchDocsYAML = `
docs:
  - name: "5th Generation"
    long_description: "The 5th Generation architecture."
`

func writeTestDatabase(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"products.yaml":           testProductsYAML,
		"counters-gpu.yaml":       testCountersYAML,
		"semantic-layout.yaml":    testLayoutYAML,
		"section-docs.yaml":       testSectionDocsYAML,
		"group-docs.yaml":         testGroupDocsYAML,
		"architecture-docs.yaml":  testArchDocsYAML,
		"hardware/Mali-G720.yaml": testHardwareYAML,
	}
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "hardware"), 0o755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestLoad(t *testing.T) {
	db, err := Load(writeTestDatabase(t))
	require.NoError(t, err)

	// products, with defaulted and indirect fields resolved
	spec, err := db.Products.Get("Mali-G720")
	require.NoError(t, err)
	assert.Equal(t, "Mali-G720", spec.DatabaseKey)
	assert.Equal(t, "Mali-G720", spec.DocumentName)

	indirect, err := db.Products.Get("Immortalis-G720")
	require.NoError(t, err)
	assert.Equal(t, "Mali-G720", indirect.DatabaseKey)
	assert.Equal(t, "", indirect.DocumentName)
	assert.Equal(t, "Mali-G720", indirect.DocumentNameIndirect)

	// counters, with parsed equations and defaulted stable IDs
	require.Len(t, db.Counters, 3)
	assert.Equal(t, 1, db.Counters[0].StableID)
	assert.Equal(t, UnassignedStableID, db.Counters[1].StableID)
	assert.Equal(t, "counters-gpu.yaml", db.Counters[0].SourceFile)

	derived, ok := db.Counters[2].DerivedSource()
	require.True(t, ok)
	require.NoError(t, derived.ParseErr)
	require.NotNil(t, derived.AST)

	// hardware layout
	layout, err := db.Hardware.ForKey("Mali-G720")
	require.NoError(t, err)
	require.Len(t, layout.Blocks, 2)
	assert.Equal(t, uint(2), layout.Blocks[1].Slots[0].Shift)

	// semantic layout keeps file order
	require.Len(t, db.Layout.Sections, 1)
	assert.Equal(t, "Overview", db.Layout.Sections[0].Name)
	assert.Equal(t, []string{"Active", "Utilization"}, db.Layout.Sections[0].Groups[0].Counters)

	// docs
	entry, err := db.SectionDocs.InfoFor("Mali-G720", "Overview")
	require.NoError(t, err)
	assert.Equal(t, "Top level behavior.", entry.LongDescription)

	arch, err := db.ArchDocs.InfoFor("Mali-G720", "5th Generation")
	require.NoError(t, err)
	assert.Equal(t, "The 5th Generation architecture.", arch.LongDescription)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	dir := writeTestDatabase(t)
	broken := testProductsYAML + "    unknown_field: true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "products.yaml"), []byte(broken), 0o644))

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "products.yaml")
}

func TestLoadRejectsAmbiguousSource(t *testing.T) {
	dir := writeTestDatabase(t)
	broken := `
counters:
  - machine_name: MaliBroken
    human_name: Broken
    group_name: Broken
    group_human_name: Broken
    units: cycles
    trend: "Informative"
    visibility: "Novice"
    source_name: GPU_ACTIVE
    equation: "1 + 1"
    short_description: "x"
    long_description: "x"
    gpus: ["Mali-G720"]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "counters-gpu.yaml"), []byte(broken), 0o644))

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "both a source name and an equation")
}

func TestLoadRequiresCounterFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "products.yaml"), []byte(testProductsYAML), 0o644))

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no counter databases")
}

func TestSaveRoundTrip(t *testing.T) {
	db, err := Load(writeTestDatabase(t))
	require.NoError(t, err)

	// simulate the validator assigning the missing stable ID
	db.Counters[1].StableID = 2

	out := t.TempDir()
	require.NoError(t, db.Save(out))

	// saved files carry the database header
	data, err := os.ReadFile(filepath.Join(out, "products.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Copyright (C) 2019-2025 Arm Limited.")

	reloaded, err := Load(out)
	require.NoError(t, err)

	assert.Equal(t, db.Products.Names(), reloaded.Products.Names())
	require.Len(t, reloaded.Counters, len(db.Counters))
	for i, counter := range db.Counters {
		assert.Equal(t, counter.MachineName, reloaded.Counters[i].MachineName)
		assert.Equal(t, counter.StableID, reloaded.Counters[i].StableID)
		assert.Equal(t, counter.SourceFile, reloaded.Counters[i].SourceFile)
		assert.Equal(t, counter.IsDerived(), reloaded.Counters[i].IsDerived())
	}
	assert.Equal(t, db.Hardware.Keys(), reloaded.Hardware.Keys())
	assert.Equal(t, db.Layout.CounterNames(), reloaded.Layout.CounterNames())
	assert.Equal(t, db.SectionDocs.Names(), reloaded.SectionDocs.Names())
	assert.Equal(t, db.GroupDocs.Names(), reloaded.GroupDocs.Names())
	assert.Equal(t, db.ArchDocs.Names(), reloaded.ArchDocs.Names())
}
