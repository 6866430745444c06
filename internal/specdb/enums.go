// Package specdb contains the raw multi-product specification model: the
// counter definitions, product descriptions, hardware memory layouts, and
// the semantic presentation layout, together with their on-disk YAML
// serialization.
//
// The raw databases describe every supported GPU at once. They are loaded
// once per process and treated as read-only; per-product compiled views
// are built from them by the view package.
package specdb

// Copyright (C) 2019-2025 Arm Limited.
// SPDX-License-Identifier: MIT

import (
	"fmt"
)

// Visibility is the audience level of a counter. Lower values are visible
// to wider audiences; internal counters are stripped from public releases.
type Visibility int

const (
	VisibilityNovice Visibility = iota + 1
	VisibilityAdvancedApplication
	VisibilityAdvancedSystem
	VisibilityInternal
)

var visibilityNames = map[Visibility]string{
	VisibilityNovice:              "Novice",
	VisibilityAdvancedApplication: "Advanced application",
	VisibilityAdvancedSystem:      "Advanced system",
	VisibilityInternal:            "Internal",
}

func (v Visibility) String() string {
	return visibilityNames[v]
}

// ParseVisibility converts the serialized string form of a visibility.
func ParseVisibility(value string) (Visibility, error) {
	for visibility, name := range visibilityNames {
		if name == value {
			return visibility, nil
		}
	}
	return 0, fmt.Errorf("unknown visibility %q", value)
}

func (v *Visibility) UnmarshalYAML(unmarshal func(any) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := ParseVisibility(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func (v Visibility) MarshalYAML() (any, error) {
	return v.String(), nil
}

// Trend is the desirable direction of a counter value: whether a higher
// or lower reading indicates the workload is running more efficiently.
type Trend int

const (
	TrendHigherBetter Trend = iota + 1
	TrendInformative
	TrendLowerBetter
)

var trendNames = map[Trend]string{
	TrendHigherBetter: "Higher better",
	TrendInformative:  "Informative",
	TrendLowerBetter:  "Lower better",
}

func (t Trend) String() string {
	return trendNames[t]
}

// ParseTrend converts the serialized string form of a trend.
func ParseTrend(value string) (Trend, error) {
	for trend, name := range trendNames {
		if name == value {
			return trend, nil
		}
	}
	return 0, fmt.Errorf("unknown trend %q", value)
}

func (t *Trend) UnmarshalYAML(unmarshal func(any) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := ParseTrend(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t Trend) MarshalYAML() (any, error) {
	return t.String(), nil
}

// BlockType identifies a class of hardware counter block in the GPU
// memory layout.
type BlockType int

const (
	BlockGPUFrontend BlockType = iota + 1
	BlockTiler
	BlockMemorySystem
	BlockShaderCore
)

var blockTypeNames = map[BlockType]string{
	BlockGPUFrontend:  "GPU Front-end",
	BlockTiler:        "Tiler",
	BlockMemorySystem: "Memory System",
	BlockShaderCore:   "Shader Core",
}

func (b BlockType) String() string {
	return blockTypeNames[b]
}

// ParseBlockType converts the serialized string form of a block type.
func ParseBlockType(value string) (BlockType, error) {
	for block, name := range blockTypeNames {
		if name == value {
			return block, nil
		}
	}
	return 0, fmt.Errorf("unknown block type %q", value)
}

func (b *BlockType) UnmarshalYAML(unmarshal func(any) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := ParseBlockType(raw)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

func (b BlockType) MarshalYAML() (any, error) {
	return b.String(), nil
}

// Architecture is the GPU architecture family of a product.
type Architecture int

const (
	ArchitectureBifrost Architecture = iota + 1
	ArchitectureValhall
	ArchitectureFifthGeneration
)

var architectureNames = map[Architecture]string{
	ArchitectureBifrost:         "Bifrost",
	ArchitectureValhall:         "Valhall",
	ArchitectureFifthGeneration: "5th Generation",
}

func (a Architecture) String() string {
	return architectureNames[a]
}

// ParseArchitecture converts the serialized string form of an architecture.
func ParseArchitecture(value string) (Architecture, error) {
	for architecture, name := range architectureNames {
		if name == value {
			return architecture, nil
		}
	}
	return 0, fmt.Errorf("unknown architecture %q", value)
}

func (a *Architecture) UnmarshalYAML(unmarshal func(any) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := ParseArchitecture(raw)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func (a Architecture) MarshalYAML() (any, error) {
	return a.String(), nil
}

// ProductVisibility marks whether a product has been announced publicly.
type ProductVisibility int

const (
	ProductPublic ProductVisibility = iota + 1
	ProductConfidential
)

var productVisibilityNames = map[ProductVisibility]string{
	ProductPublic:       "Public",
	ProductConfidential: "Confidential",
}

func (p ProductVisibility) String() string {
	return productVisibilityNames[p]
}

// ParseProductVisibility converts the serialized string form of a product
// visibility.
func ParseProductVisibility(value string) (ProductVisibility, error) {
	for visibility, name := range productVisibilityNames {
		if name == value {
			return visibility, nil
		}
	}
	return 0, fmt.Errorf("unknown product visibility %q", value)
}

func (p *ProductVisibility) UnmarshalYAML(unmarshal func(any) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := ParseProductVisibility(raw)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func (p ProductVisibility) MarshalYAML() (any, error) {
	return p.String(), nil
}
