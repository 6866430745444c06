package equation

// Copyright (C) 2019-2025 Arm Limited.
// SPDX-License-Identifier: MIT

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeIndex implements Index for tests, keyed by lowered machine name.
type fakeIndex map[string]Ref

func (f fakeIndex) LookupMachineName(name string) (Ref, bool) {
	ref, ok := f[strings.ToLower(name)]
	return ref, ok
}

func mustParse(t *testing.T, source string) Node {
	t.Helper()
	node, err := Parse(source)
	require.NoError(t, err, "failed to parse %q", source)
	return node
}

func TestParseAndFormat(t *testing.T) {
	tests := []struct {
		source   string
		expected string
	}{
		// canonical spacing
		{"A+B", "A + B"},
		{"A + B * C", "A + B * C"},
		{"  A *B ", "A * B"},
		// parenthesization tracks the parse, not the input
		{"(A + B) * C", "(A + B) * C"},
		{"A + (B * C)", "A + B * C"},
		{"A - (B - C)", "A - (B - C)"},
		{"(A - B) - C", "A - B - C"},
		{"A / (B * C)", "A / (B * C)"},
		{"A * B / C", "(A * B) / C"},
		// peephole simplification
		{"A * 1", "A"},
		{"1 * A", "A"},
		{"A / 1", "A"},
		{"2 * 3", "6"},
		{"8 / 2", "4"},
		{"(A * 2) * 3", "A * 6"},
		{"A * 2 * 3", "A * 6"},
		// function calls
		{"min(A, B)", "min(A, B)"},
		{"max(A, B, C)", "max(A, B, C)"},
		{"min(A + B, C * 2)", "min(A + B, C * 2)"},
		// literals keep their source spelling
		{"0.5 * A", "0.5 * A"},
		{"A * 0.25", "A * 0.25"},
	}
	for _, test := range tests {
		node := mustParse(t, test.source)
		assert.Equal(t, test.expected, Format(node), "source %q", test.source)
	}
}

func TestFormatIdempotent(t *testing.T) {
	sources := []string{
		"A + B * C",
		"(A + B) * C",
		"min(A, B) / max(C, D)",
		"A * 2 * 3",
		"A - (B - C)",
	}
	for _, source := range sources {
		first := Format(mustParse(t, source))
		second := Format(mustParse(t, first))
		assert.Equal(t, first, second, "source %q", source)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		source string
		msg    string
	}{
		{"", "unexpected end of equation"},
		{"A +", "unexpected end of equation"},
		{"A @ B", "unexpected character"},
		{"1.", "malformed number"},
		{"(A + B", "expected ')'"},
		{"min(A)", "requires at least two arguments"},
		{"max(A)", "requires at least two arguments"},
		{"A B", "unexpected"},
		{"min(A; B)", "unexpected character"},
	}
	for _, test := range tests {
		_, err := Parse(test.source)
		require.Error(t, err, "source %q", test.source)
		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr, "source %q", test.source)
		assert.Contains(t, err.Error(), test.msg, "source %q", test.source)
	}
}

func TestIsConstant(t *testing.T) {
	tests := []struct {
		name     string
		expected bool
	}{
		{"MALI_CONFIG_SHADER_CORE_COUNT", true},
		{"CONSTANT_2", true},
		{"MaliGPUActiveCy", false},
		{"lowercase", false},
		{"Mixed_CASE", false},
	}
	for _, test := range tests {
		assert.Equal(t, test.expected, IsConstant(test.name), "name %q", test.name)
	}
}

func TestResolve(t *testing.T) {
	index := fakeIndex{
		"malinativea": {MachineName: "MaliNativeA", SourceName: "NATIVE_A"},
		"malinativeb": {MachineName: "MaliNativeB", SourceName: "NATIVE_B"},
		"maliderived": {
			MachineName: "MaliDerived",
			Derived:     true,
			AST:         mustParse(t, "MaliNativeA + MaliNativeB"),
		},
	}

	resolved, err := Resolve(mustParse(t, "MaliDerived * 2"), index)
	require.NoError(t, err)
	assert.Equal(t, "(MaliNativeA + MaliNativeB) * 2", Format(resolved))

	// native names and constants stay as-is
	resolved, err = Resolve(mustParse(t, "MaliNativeA / MALI_CONFIG_SHADER_CORE_COUNT"), index)
	require.NoError(t, err)
	assert.Equal(t, "MaliNativeA / MALI_CONFIG_SHADER_CORE_COUNT", Format(resolved))
}

func TestResolveMissingCounter(t *testing.T) {
	_, err := Resolve(mustParse(t, "MaliUnknown + 1"), fakeIndex{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing counter: MaliUnknown")
}

func TestResolveCycle(t *testing.T) {
	index := fakeIndex{
		"malia": {MachineName: "MaliA", Derived: true, AST: mustParse(t, "MaliB")},
		"malib": {MachineName: "MaliB", Derived: true, AST: mustParse(t, "MaliA")},
	}
	_, err := Resolve(mustParse(t, "MaliA"), index)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cyclic derivation through")
}

func TestResolveUnparsedEquation(t *testing.T) {
	index := fakeIndex{
		"malibroken": {MachineName: "MaliBroken", Derived: true, AST: nil},
	}
	_, err := Resolve(mustParse(t, "MaliBroken"), index)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reference to unparsed equation: MaliBroken")
}

func TestRenameHardware(t *testing.T) {
	index := fakeIndex{
		"malinativea": {MachineName: "MaliNativeA", SourceName: "NATIVE_A"},
		"malinativeb": {MachineName: "MaliNativeB", SourceName: "NATIVE_B"},
	}
	renamed := RenameHardware(mustParse(t, "MaliNativeA / (MaliNativeB + MALI_CONFIG_L2_CACHE_COUNT)"), index)
	assert.Equal(t, "NATIVE_A / (NATIVE_B + MALI_CONFIG_L2_CACHE_COUNT)", Format(renamed))
}

func TestMangleStreamlineName(t *testing.T) {
	tests := []struct {
		groupName      string
		groupHumanName string
		expected       string
	}{
		{"GPU cycles", "Fragment", "$MaliGPUCyclesFragment"},
		{"Core cycles", "Execution engine", "$MaliCoreCyclesExecutionEngine"},
		{"2D operations", "", "$Mali_2DOperations"},
		{"L2 read/write", "beats", "$MaliL2ReadWriteBeats"},
	}
	for _, test := range tests {
		assert.Equal(t, test.expected, MangleStreamlineName(test.groupName, test.groupHumanName),
			"group %q / %q", test.groupName, test.groupHumanName)
	}
}

func TestStreamlineExpression(t *testing.T) {
	index := fakeIndex{
		"malinativea": {
			MachineName:    "MaliNativeA",
			SourceName:     "NATIVE_A",
			GroupName:      "GPU cycles",
			GroupHumanName: "Fragment",
		},
	}

	rendered, err := StreamlineExpression(
		mustParse(t, "MaliNativeA / MALI_CONFIG_SHADER_CORE_COUNT"), "cycles", index)
	require.NoError(t, err)
	assert.Equal(t, "$MaliGPUCyclesFragment / $MaliConstantsShaderCoreCount", rendered)

	// percentages are clamped to their displayable range
	rendered, err = StreamlineExpression(
		mustParse(t, "MaliNativeA * 100"), "percent", index)
	require.NoError(t, err)
	assert.Equal(t, "max(min($MaliGPUCyclesFragment * 100, 100), 0)", rendered)

	// constants outside the fixed table cannot be expressed
	_, err = StreamlineExpression(mustParse(t, "MALI_CONFIG_UNKNOWN + 1"), "cycles", index)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmapped constant: MALI_CONFIG_UNKNOWN")
}

func TestMachineExpression(t *testing.T) {
	node := mustParse(t, "MaliA / MaliB")
	assert.Equal(t, "MaliA / MaliB", MachineExpression(node, "cycles"))
	assert.Equal(t, "max(min(MaliA / MaliB, 100), 0)", MachineExpression(node, "percent"))
}
