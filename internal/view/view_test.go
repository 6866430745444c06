package view

// Copyright (C) 2019-2025 Arm Limited.
// SPDX-License-Identifier: MIT

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lgc/internal/equation"
	"lgc/internal/specdb"
)

func asyncProduct() *specdb.ProductSpec {
	return &specdb.ProductSpec{
		Names:        []string{"Mali-G720", "Mali-G720 MC3"},
		DatabaseKey:  "Mali-G720",
		DocumentName: "Mali-G720",
		Features:     []string{"async_clock"},
	}
}

func syncProduct() *specdb.ProductSpec {
	return &specdb.ProductSpec{
		Names:        []string{"Mali-G77"},
		DatabaseKey:  "Mali-G720", // reuse the same databases in tests
		DocumentName: "Mali-G77",
	}
}

func testLayout() *specdb.HardwareLayout {
	return &specdb.HardwareLayout{
		Key: "Mali-G720",
		Blocks: []*specdb.BlockLayout{
			{Type: specdb.BlockGPUFrontend, Slots: []specdb.CounterSlot{
				{Name: "GPU_ACTIVE"},
				{Name: "GPU_ITER_FRAG"},
			}},
			{Type: specdb.BlockMemorySystem, Slots: []specdb.CounterSlot{
				{Name: "L2_RD_MSG_IN"},
			}},
			{Type: specdb.BlockShaderCore, Slots: []specdb.CounterSlot{
				{Name: "SC_ACTIVE", Shift: 2},
			}},
			{Type: specdb.BlockShaderCore, Bank: 1, Slots: []specdb.CounterSlot{
				{Name: "SC_ACTIVE", Shift: 2},
			}},
		},
	}
}

func mustParse(t *testing.T, source string) equation.Node {
	t.Helper()
	node, err := equation.Parse(source)
	require.NoError(t, err)
	return node
}

func testCounters(t *testing.T) specdb.Counters {
	t.Helper()
	utilEquation := "MaliSCActiveCy / (MaliGPUActiveCy * MALI_CONFIG_SHADER_CORE_COUNT)"
	return specdb.Counters{
		{
			MachineName:    "MaliGPUActiveCy",
			StableID:       1,
			HumanName:      "GPU active cycles",
			GroupName:      "GPU cycles",
			GroupHumanName: "Active",
			Unit:           "cycles",
			Visibility:     specdb.VisibilityNovice,
			Source:         specdb.Native{SourceName: "GPU_ACTIVE"},
			GPUSupport:     []string{"Mali-G720"},
		},
		{
			MachineName:    "MaliFragQueueCy",
			StableID:       2,
			HumanName:      "Fragment queue cycles",
			GroupName:      "GPU cycles",
			GroupHumanName: "Fragment",
			Unit:           "cycles",
			Visibility:     specdb.VisibilityNovice,
			Source: specdb.Native{
				SourceName: "FRAG_ACTIVE",
				Aliases:    []string{"GPU_ITER_FRAG"},
			},
			GPUSupport: []string{"Mali-G720"},
		},
		{
			MachineName:    "MaliL2RdMsg",
			StableID:       3,
			HumanName:      "L2 read requests",
			GroupName:      "Memory traffic",
			GroupHumanName: "Read",
			Unit:           "requests",
			Visibility:     specdb.VisibilityAdvancedSystem,
			Source:         specdb.Native{SourceName: "L2_RD_MSG_IN"},
			GPUSupport:     []string{"Mali-G720"},
		},
		{
			MachineName:    "MaliSCActiveCy",
			StableID:       4,
			HumanName:      "Shader core active cycles",
			GroupName:      "Core cycles",
			GroupHumanName: "Active",
			Unit:           "cycles",
			Visibility:     specdb.VisibilityNovice,
			Source:         specdb.Native{SourceName: "SC_ACTIVE"},
			GPUSupport:     []string{"Mali-G720"},
		},
		{
			MachineName:    "MaliPerfCy",
			StableID:       5,
			HumanName:      "Performance cycles",
			GroupName:      "Internal cycles",
			GroupHumanName: "Performance",
			Unit:           "cycles",
			Visibility:     specdb.VisibilityInternal,
			Source:         specdb.Native{SourceName: "NOT_IN_LAYOUT"},
			GPUSupport:     []string{"Mali-G720"},
		},
		{
			MachineName:    "MaliCoreUtil",
			StableID:       6,
			HumanName:      "Shader core utilization",
			GroupName:      "Core cycles",
			GroupHumanName: "Utilization",
			Unit:           "percent",
			Visibility:     specdb.VisibilityNovice,
			Source: specdb.Derived{
				Text: utilEquation,
				AST:  mustParse(t, utilEquation),
			},
			GPUSupport: []string{"Mali-G720"},
		},
		{
			MachineName:    "MaliOtherGPUCy",
			StableID:       7,
			HumanName:      "Other GPU cycles",
			GroupName:      "GPU cycles",
			GroupHumanName: "Other",
			Unit:           "cycles",
			Visibility:     specdb.VisibilityNovice,
			Source:         specdb.Native{SourceName: "GPU_ACTIVE"},
			GPUSupport:     []string{"Mali-G999"},
		},
	}
}

func buildTestView(t *testing.T, product string, info *specdb.ProductSpec) *IndexedView {
	t.Helper()
	index, err := BuildIndexedView(product, info, testLayout(), testCounters(t))
	require.NoError(t, err)
	index.ResolveEquations()
	return index
}

func TestBuildIndexedViewLookups(t *testing.T) {
	index := buildTestView(t, "Mali-G720", asyncProduct())

	// counters for other products are excluded
	assert.Len(t, index.Counters(), 6)
	_, ok := index.GetByMachineName("MaliOtherGPUCy")
	assert.False(t, ok)

	counter, ok := index.GetByStableID(1)
	require.True(t, ok)
	assert.Equal(t, "MaliGPUActiveCy", counter.MachineName)

	// machine, source, and human name lookups are case-insensitive
	counter, ok = index.GetByMachineName("maligpuactivecy")
	require.True(t, ok)
	assert.Equal(t, "MaliGPUActiveCy", counter.MachineName)

	counter, ok = index.GetBySourceName("gpu_active")
	require.True(t, ok)
	assert.Equal(t, "MaliGPUActiveCy", counter.MachineName)

	counter, ok = index.GetByHumanName("gpu ACTIVE cycles")
	require.True(t, ok)
	assert.Equal(t, "MaliGPUActiveCy", counter.MachineName)

	counter, ok = index.GetByGroupNames("Core cycles", "Utilization")
	require.True(t, ok)
	assert.Equal(t, "MaliCoreUtil", counter.MachineName)
}

func TestBuildIndexedViewAlias(t *testing.T) {
	// support is matched against the database key, not the product name
	info := asyncProduct()
	index, err := BuildIndexedView("Mali-G720 MC3", info, testLayout(), testCounters(t))
	require.NoError(t, err)
	assert.Equal(t, "Mali-G720 MC3", index.GPU)
	assert.Equal(t, "Mali-G720", index.Key)
	assert.Len(t, index.Counters(), 6)
}

func TestBuildIndexedViewSourceAliases(t *testing.T) {
	index := buildTestView(t, "Mali-G720", asyncProduct())

	// the primary source name is absent, so the alias slot is used
	counter, ok := index.GetByMachineName("MaliFragQueueCy")
	require.True(t, ok)
	assert.Equal(t, "GPU_ITER_FRAG", counter.SourceName)
	assert.Equal(t, specdb.BlockGPUFrontend, counter.BlockType)
	assert.Equal(t, 1, counter.BlockIndex)
}

func TestBuildIndexedViewMissingSlot(t *testing.T) {
	index := buildTestView(t, "Mali-G720", asyncProduct())

	// a native counter missing from the layout keeps its primary source
	// name but gets no layout data
	counter, ok := index.GetByMachineName("MaliPerfCy")
	require.True(t, ok)
	assert.Equal(t, "NOT_IN_LAYOUT", counter.SourceName)
	assert.Equal(t, specdb.BlockType(0), counter.BlockType)
	assert.Equal(t, ClockNone, counter.ClockDomain)
	assert.False(t, counter.IsDerived())
}

func TestCounterViewScaleMultiplier(t *testing.T) {
	index := buildTestView(t, "Mali-G720", asyncProduct())

	counter, ok := index.GetByMachineName("MaliSCActiveCy")
	require.True(t, ok)
	assert.Equal(t, uint64(4), counter.ScaleMultiplier)

	counter, ok = index.GetByMachineName("MaliGPUActiveCy")
	require.True(t, ok)
	assert.Equal(t, uint64(1), counter.ScaleMultiplier)
}

func TestCounterViewClockDomains(t *testing.T) {
	async := buildTestView(t, "Mali-G720", asyncProduct())

	counter, _ := async.GetByMachineName("MaliGPUActiveCy")
	assert.Equal(t, ClockGPU, counter.ClockDomain)
	counter, _ = async.GetByMachineName("MaliSCActiveCy")
	assert.Equal(t, ClockShaderCore, counter.ClockDomain)
	counter, _ = async.GetByMachineName("MaliCoreUtil")
	assert.Equal(t, ClockNone, counter.ClockDomain)

	// without async_clock every hardware counter runs on the GPU clock
	sync := buildTestView(t, "Mali-G77", syncProduct())
	counter, _ = sync.GetByMachineName("MaliSCActiveCy")
	assert.Equal(t, ClockGPU, counter.ClockDomain)
}

func TestBuildIndexedViewUnassignedStableID(t *testing.T) {
	counters := testCounters(t)
	counters[0].StableID = specdb.UnassignedStableID

	_, err := BuildIndexedView("Mali-G720", asyncProduct(), testLayout(), counters)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no stable ID")
}

func TestResolveEquations(t *testing.T) {
	index := buildTestView(t, "Mali-G720", asyncProduct())

	counter, ok := index.GetByMachineName("MaliCoreUtil")
	require.True(t, ok)
	require.NoError(t, counter.ResolveErr)
	require.NotNil(t, counter.ResolvedAST)
	assert.Equal(t, "MaliSCActiveCy / (MaliGPUActiveCy * MALI_CONFIG_SHADER_CORE_COUNT)",
		equation.Format(counter.ResolvedAST))
	assert.True(t, counter.IsDerived())
}

func TestIndexedViewFilter(t *testing.T) {
	index := buildTestView(t, "Mali-G720", asyncProduct())

	novice := index.Filter(specdb.VisibilityNovice, true)
	assert.Len(t, novice.Counters(), 4)
	_, ok := novice.GetByMachineName("MaliPerfCy")
	assert.False(t, ok)
	_, ok = novice.GetByMachineName("MaliL2RdMsg")
	assert.False(t, ok)

	// hiding derived counters removes the utilization equation
	hardwareOnly := index.Filter(specdb.VisibilityInternal, false)
	assert.Len(t, hardwareOnly.Counters(), 5)
	_, ok = hardwareOnly.GetByMachineName("MaliCoreUtil")
	assert.False(t, ok)
}

func TestCounterViewAnchor(t *testing.T) {
	index := buildTestView(t, "Mali-G720", asyncProduct())

	counter, _ := index.GetByMachineName("MaliGPUActiveCy")
	assert.Equal(t, "c_1", counter.Anchor())
}

func TestBuildHardwareView(t *testing.T) {
	index := buildTestView(t, "Mali-G720", asyncProduct())

	hardware, err := BuildHardwareView(testLayout(), index)
	require.NoError(t, err)

	// duplicate banks are skipped
	require.Len(t, hardware.Blocks, 3)
	assert.Equal(t, specdb.BlockGPUFrontend, hardware.Blocks[0].Type)
	assert.Equal(t, specdb.BlockShaderCore, hardware.Blocks[2].Type)

	// counters come out in slot order
	var names []string
	for _, counter := range hardware.Counters() {
		names = append(names, counter.MachineName)
	}
	assert.Equal(t, []string{"MaliGPUActiveCy", "MaliFragQueueCy", "MaliL2RdMsg", "MaliSCActiveCy"}, names)
}

func TestBuildHardwareViewMissingEntry(t *testing.T) {
	index := buildTestView(t, "Mali-G720", asyncProduct())

	layout := testLayout()
	layout.Blocks[0].Slots = append(layout.Blocks[0].Slots, specdb.CounterSlot{Name: "ORPHAN"})

	_, err := BuildHardwareView(layout, index)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "layout counter ORPHAN has no database entry")
}

func TestHardwareViewFilter(t *testing.T) {
	index := buildTestView(t, "Mali-G720", asyncProduct())

	hardware, err := BuildHardwareView(testLayout(), index)
	require.NoError(t, err)

	// the memory system block only holds an advanced counter, so the
	// novice filter drops the whole block
	novice := hardware.Filter(specdb.VisibilityNovice, true)
	require.Len(t, novice.Blocks, 2)
	assert.Equal(t, specdb.BlockGPUFrontend, novice.Blocks[0].Type)
	assert.Equal(t, specdb.BlockShaderCore, novice.Blocks[1].Type)
}

func testSemanticFixtures(t *testing.T) (*specdb.SemanticLayout, *specdb.DocSet, *specdb.DocSet) {
	t.Helper()
	layout, err := specdb.NewSemanticLayout([]*specdb.SemanticSection{
		{Name: "Overview", Groups: []*specdb.SemanticGroup{
			{Name: "GPU cycles", Counters: []string{"Active", "Fragment"}},
			{Name: "Core cycles", Counters: []string{"Active", "Utilization"}},
			{Name: "Undocumented", Counters: []string{"Active"}},
		}},
		{Name: "Memory", Groups: []*specdb.SemanticGroup{
			{Name: "Memory traffic", Counters: []string{"Read", "Missing counter"}},
		}},
		{Name: "No docs", Groups: []*specdb.SemanticGroup{
			{Name: "GPU cycles 2", Counters: []string{"Active"}},
		}},
	})
	require.NoError(t, err)

	sectionDocs, err := specdb.NewDocSet("section", []*specdb.DocEntry{
		{Name: "Overview", LongDescription: "Top level behavior."},
		{Name: "Memory", LongDescription: "Memory behavior."},
	})
	require.NoError(t, err)

	groupDocs, err := specdb.NewDocSet("group", []*specdb.DocEntry{
		{Name: "GPU cycles", LongDescription: "GPU cycle counters."},
		{Name: "Core cycles", LongDescription: "Shader core cycle counters."},
		{Name: "Memory traffic", LongDescription: "L2 traffic counters."},
		{Name: "GPU cycles 2", LongDescription: "More GPU cycle counters."},
	})
	require.NoError(t, err)

	return layout, sectionDocs, groupDocs
}

func TestBuildSemanticView(t *testing.T) {
	index := buildTestView(t, "Mali-G720", asyncProduct())
	layout, sectionDocs, groupDocs := testSemanticFixtures(t)

	semantic := BuildSemanticView("Mali-G720", layout, sectionDocs, groupDocs, index)

	// the undocumented group and the undocumented section are pruned
	require.Len(t, semantic.Sections, 2)
	overview := semantic.Sections[0]
	assert.Equal(t, "Overview", overview.Name)
	assert.Equal(t, "Top level behavior.", overview.LongDescription)
	require.Len(t, overview.Groups, 2)
	assert.Equal(t, "GPU cycles", overview.Groups[0].Name)
	assert.Equal(t, "Core cycles", overview.Groups[1].Name)

	// counters are matched by group name pairs; names with no counter on
	// this product are skipped
	var names []string
	for _, counter := range semantic.Counters() {
		names = append(names, counter.MachineName)
	}
	assert.Equal(t, []string{
		"MaliGPUActiveCy",
		"MaliFragQueueCy",
		"MaliSCActiveCy",
		"MaliCoreUtil",
		"MaliL2RdMsg",
	}, names)
}

func TestSemanticViewFilter(t *testing.T) {
	index := buildTestView(t, "Mali-G720", asyncProduct())
	layout, sectionDocs, groupDocs := testSemanticFixtures(t)

	semantic := BuildSemanticView("Mali-G720", layout, sectionDocs, groupDocs, index)

	// the memory section only holds an advanced counter
	novice := semantic.Filter(specdb.VisibilityNovice, true)
	require.Len(t, novice.Sections, 1)
	assert.Equal(t, "Overview", novice.Sections[0].Name)
	assert.Len(t, novice.Counters(), 4)
}

func TestSemanticViewAnchors(t *testing.T) {
	index := buildTestView(t, "Mali-G720", asyncProduct())
	layout, sectionDocs, groupDocs := testSemanticFixtures(t)

	semantic := BuildSemanticView("Mali-G720", layout, sectionDocs, groupDocs, index)

	assert.Equal(t, "s_overview", semantic.Sections[0].Anchor())
	assert.Equal(t, "g_gpucycles", semantic.Sections[0].Groups[0].Anchor())
}
