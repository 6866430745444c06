package specdb

// Copyright (C) 2019-2025 Arm Limited.
// SPDX-License-Identifier: MIT

import (
	"fmt"
	"regexp"
	"sort"
)

// ProductSpec is the configuration metadata for a single GPU product.
// Beware that products are not a simple 1:1 mapping to hardware: the same
// GPU core is often sold under multiple names with different core counts.
type ProductSpec struct {
	// IDs are the numeric GPU IDs reported by the hardware.
	IDs []uint32
	// Names are the marketing names, primary name first.
	Names []string

	ReleaseYear  int
	Architecture Architecture
	Visibility   ProductVisibility

	// DatabaseKey selects the counter and layout databases to use. It
	// defaults to the primary name, and may name another product for
	// database aliases.
	DatabaseKey string

	// DocumentName is the name to use in generated documentation, empty
	// when this product reuses a document generated for a related
	// product. DocumentNameIndirect is populated with the related
	// product's document name in that case.
	DocumentName         string
	DocumentNameIndirect string

	// Features lists the optional hardware features this GPU implements.
	Features []string

	EngineeringName    string
	ProjectName        string
	ArchitectureBranch string
}

// IsPublic reports whether the product has been announced publicly.
func (p *ProductSpec) IsPublic() bool {
	return p.Visibility == ProductPublic
}

// HasFeature reports whether the GPU implements the named feature.
func (p *ProductSpec) HasFeature(feature string) bool {
	for _, candidate := range p.Features {
		if candidate == feature {
			return true
		}
	}
	return false
}

// GetDocumentName returns the name to use in generated documentation. If
// allowIndirect is set, products that reuse another product's document
// return that document's name; otherwise they return the empty string.
func (p *ProductSpec) GetDocumentName(allowIndirect bool) string {
	if p.DocumentName != "" {
		return p.DocumentName
	}
	if allowIndirect {
		return p.DocumentNameIndirect
	}
	return ""
}

// Products is the configuration metadata for all known GPU products.
type Products struct {
	// byName maps every marketing name, aliases included, to its product.
	byName map[string]*ProductSpec
	// names preserves registration order for deterministic iteration.
	names []string
}

// NewProducts builds a product container, registering every marketing
// name of every product. Duplicate names are an error.
func NewProducts(specs []*ProductSpec) (*Products, error) {
	products := &Products{byName: make(map[string]*ProductSpec)}

	for _, spec := range specs {
		if len(spec.Names) == 0 {
			return nil, fmt.Errorf("product with ids %v has no names", spec.IDs)
		}
		for _, name := range spec.Names {
			if _, exists := products.byName[name]; exists {
				return nil, fmt.Errorf("duplicate product name %q", name)
			}
			products.byName[name] = spec
			products.names = append(products.names, name)
		}
	}

	// Resolve indirect document names for products that share documents.
	for _, name := range products.names {
		spec := products.byName[name]
		if spec.DocumentName != "" {
			continue
		}
		primary, err := products.DocumentationPrimaryFor(spec.Names[0])
		if err != nil {
			return nil, err
		}
		spec.DocumentNameIndirect = primary.DocumentName
	}

	return products, nil
}

// Names returns all known product names, aliases included, in database
// order.
func (p *Products) Names() []string {
	names := make([]string, len(p.names))
	copy(names, p.names)
	return names
}

// Get returns the product with the given name. Lookup matches both
// marketing names and database keys.
func (p *Products) Get(name string) (*ProductSpec, error) {
	if spec, ok := p.byName[name]; ok {
		return spec, nil
	}
	for _, registered := range p.names {
		spec := p.byName[registered]
		if spec.DatabaseKey == name {
			return spec, nil
		}
	}
	return nil, fmt.Errorf("unknown GPU product %q", name)
}

// DocumentationPrimaryFor returns the product whose document the named
// product appears in. This may differ from Get because related products
// can share a document.
func (p *Products) DocumentationPrimaryFor(name string) (*ProductSpec, error) {
	spec, err := p.Get(name)
	if err != nil {
		return nil, err
	}
	if spec.GetDocumentName(false) != "" {
		return spec, nil
	}

	for _, registered := range p.names {
		candidate := p.byName[registered]
		if candidate.DatabaseKey != spec.DatabaseKey {
			continue
		}
		if candidate.GetDocumentName(false) != "" {
			return candidate, nil
		}
	}
	return nil, fmt.Errorf("no documentation primary for GPU product %q", name)
}

// AliasesFor returns all known names of a product, including marketing
// aliases with the same GPU ID and technical aliases built on the same
// base configuration with different GPU IDs.
func (p *Products) AliasesFor(name string) ([]string, error) {
	base, err := p.Get(name)
	if err != nil {
		return nil, err
	}

	var aliases []string
	seen := make(map[*ProductSpec]bool)
	for _, registered := range p.names {
		spec := p.byName[registered]
		if spec.DatabaseKey != base.DatabaseKey || seen[spec] {
			continue
		}
		seen[spec] = true
		aliases = append(aliases, spec.Names...)
	}
	return aliases, nil
}

// DatabaseKeys returns the distinct database keys used by the known
// products, in database order.
func (p *Products) DatabaseKeys() []string {
	var keys []string
	seen := make(map[string]bool)
	for _, name := range p.names {
		key := p.byName[name].DatabaseKey
		if seen[key] {
			continue
		}
		seen[key] = true
		keys = append(keys, key)
	}
	return keys
}

// Specs returns the distinct product records in database order.
func (p *Products) Specs() []*ProductSpec {
	var specs []*ProductSpec
	seen := make(map[*ProductSpec]bool)
	for _, name := range p.names {
		spec := p.byName[name]
		if seen[spec] {
			continue
		}
		seen[spec] = true
		specs = append(specs, spec)
	}
	return specs
}

// Product name patterns for the presentation sort, oldest naming scheme
// first. Earlier architectures use e.g. Mali-G77 or Immortalis-G720,
// later ones Mali G1 or Mali G1-Ultra, and internal codenames are
// non-numeric, e.g. Mali GAAx.
var (
	gpuGroup0 = regexp.MustCompile(`^(Mali|Immortalis)-G(\d+)$`)
	gpuGroup1 = regexp.MustCompile(`^Mali G(\d+)$`)
	gpuGroup2 = regexp.MustCompile(`^Mali G(\d+)-(\S+)$`)
	gpuGroup3 = regexp.MustCompile(`^Mali (\S+)$`)
)

type gpuSortKey struct {
	group      int
	product    int
	subproduct int
	name       string
}

func gpuSortKeyFor(name string) gpuSortKey {
	if match := gpuGroup0.FindStringSubmatch(name); match != nil {
		subproducts := map[string]int{"Mali": 0, "Immortalis": 1}
		return gpuSortKey{0, mustAtoi(match[2]), subproducts[match[1]], name}
	}

	if match := gpuGroup1.FindStringSubmatch(name); match != nil {
		return gpuSortKey{1, mustAtoi(match[1]), 0, name}
	}

	if match := gpuGroup2.FindStringSubmatch(name); match != nil {
		subproducts := map[string]int{"Pro": 0, "Premium": 1, "Ultra": 2}
		return gpuSortKey{2, mustAtoi(match[1]), subproducts[match[2]], name}
	}

	if match := gpuGroup3.FindStringSubmatch(name); match != nil {
		// Codenames sort by a positional weighting of their characters so
		// that shorter names come before longer names with a shared prefix.
		codename := match[1]
		product := 0
		for i, char := range codename {
			product += (len(codename) - i) * 256 * int(char)
		}
		return gpuSortKey{3, product, 0, name}
	}

	// Names outside every known scheme sort last, alphabetically.
	return gpuSortKey{4, 0, 0, name}
}

func mustAtoi(digits string) int {
	value := 0
	for _, char := range digits {
		value = value*10 + int(char-'0')
	}
	return value
}

// SortGPUNames sorts product names into presentation order, oldest
// first. Presentation order approximates product age but is not a simple
// date sort: Mali-G68 came out after Mali-G77 but lists before it.
func SortGPUNames(names []string) []string {
	keys := make([]gpuSortKey, len(names))
	for i, name := range names {
		keys[i] = gpuSortKeyFor(name)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.group != b.group {
			return a.group < b.group
		}
		if a.product != b.product {
			return a.product < b.product
		}
		if a.subproduct != b.subproduct {
			return a.subproduct < b.subproduct
		}
		return a.name < b.name
	})

	sorted := make([]string, len(keys))
	for i, key := range keys {
		sorted[i] = key.name
	}
	return sorted
}
