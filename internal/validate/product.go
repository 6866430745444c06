package validate

// Copyright (C) 2019-2025 Arm Limited.
// SPDX-License-Identifier: MIT

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Knetic/govaluate"
	mapset "github.com/deckarep/golang-set/v2"

	"lgc/internal/equation"
	"lgc/internal/specdb"
	"lgc/internal/view"
)

// cardinalityDomain is a hardware domain whose instance count varies
// between product configurations.
type cardinalityDomain string

const (
	domainGPU cardinalityDomain = "GPU"
	domainMEM cardinalityDomain = "MEM"
	domainSC  cardinalityDomain = "SC"
)

// blockDomains maps counter blocks to implementation domains. Each
// domain can have an independent instance count in any product
// configuration.
var blockDomains = map[specdb.BlockType]cardinalityDomain{
	specdb.BlockGPUFrontend:  domainGPU,
	specdb.BlockTiler:        domainGPU,
	specdb.BlockMemorySystem: domainMEM,
	specdb.BlockShaderCore:   domainSC,
}

// scalingConstants are the recognized domain scaling factors.
var scalingConstants = map[string]cardinalityDomain{
	"MALI_CONFIG_L2_CACHE_COUNT":    domainMEM,
	"MALI_CONFIG_SHADER_CORE_COUNT": domainSC,
}

// cardinalityExceptions are manually reviewed equations that mix
// domains deliberately.
var cardinalityExceptions = mapset.NewThreadUnsafeSet(
	"MaliFragOverdraw",
	"MaliSCBusTileWrBPerPx",
)

// CheckNameUniqueness validates that counter names are unique for any
// given GPU. The whole database can repeat names across GPUs, as
// concepts can be described differently per architecture.
func (v *Validator) CheckNameUniqueness(gpu string) []Diagnostic {
	var diags []Diagnostic

	foundSourceNames := mapset.NewThreadUnsafeSet[string]()
	foundMachineNames := mapset.NewThreadUnsafeSet[string]()
	foundHumanNames := mapset.NewThreadUnsafeSet[string]()
	foundGroupNames := mapset.NewThreadUnsafeSet[string]()

	for _, counter := range v.db.Raw.Counters {
		if !counter.SupportsGPU(gpu) {
			continue
		}

		if native, ok := counter.NativeSource(); ok {
			if !foundSourceNames.Add(native.SourceName) {
				diags = append(diags, Diagnostic{
					Reason:  "Duplicate SourceName",
					GPU:     gpu,
					Counter: native.SourceName,
				})
			}
		}

		if !foundMachineNames.Add(counter.MachineName) {
			diags = append(diags, Diagnostic{
				Reason:  "Duplicate MachineName",
				GPU:     gpu,
				Counter: counter.MachineName,
			})
		}

		if !foundHumanNames.Add(counter.HumanName) {
			diags = append(diags, Diagnostic{
				Reason:  "Duplicate HumanName",
				GPU:     gpu,
				Counter: counter.HumanName,
			})
		}

		groupName := counter.GroupName + "." + counter.GroupHumanName
		if !foundGroupNames.Add(groupName) {
			diags = append(diags, Diagnostic{
				Reason:  "Duplicate GroupName/GroupHumanName",
				GPU:     gpu,
				Counter: groupName,
			})
		}
	}

	return diags
}

// CheckSourceNameConsistency validates that every source name in the
// hardware layout has a counter, and every counter with a source name
// is in the hardware layout.
//
// In public releases internal counters may be stripped from both
// databases, but the consistency check must still pass.
func (v *Validator) CheckSourceNameConsistency(gpu string, index *view.IndexedView) []Diagnostic {
	var diags []Diagnostic

	layout, err := v.db.Raw.Hardware.ForKey(gpu)
	if err != nil {
		return []Diagnostic{{
			Reason: "Missing hardware layout",
			Detail: err.Error(),
			GPU:    gpu,
		}}
	}

	layoutNames := mapset.NewThreadUnsafeSet(layout.CounterNames()...)

	indexNames := mapset.NewThreadUnsafeSet[string]()
	for _, counter := range index.Counters() {
		if counter.SourceName != "" {
			indexNames.Add(counter.SourceName)
		}
	}

	for _, name := range sortedSlice(layoutNames.Difference(indexNames)) {
		diags = append(diags, Diagnostic{
			Reason:  "SourceName only in HardwareView",
			GPU:     gpu,
			Counter: name,
		})
	}

	for _, name := range sortedSlice(indexNames.Difference(layoutNames)) {
		diags = append(diags, Diagnostic{
			Reason:  "SourceName only in IndexedView",
			GPU:     gpu,
			Counter: name,
		})
	}

	return diags
}

// CheckEquationResolve reports derived counters whose resolved equation
// could not be built for this GPU.
func (v *Validator) CheckEquationResolve(gpu string, index *view.IndexedView) []Diagnostic {
	var diags []Diagnostic

	for _, counter := range index.Counters() {
		if counter.EquationAST == nil || counter.ResolvedAST != nil {
			continue
		}

		diags = append(diags, Diagnostic{
			Reason:  "Bad equation resolve for CounterSpec",
			Detail:  counter.ResolveErr.Error(),
			GPU:     gpu,
			Counter: counter.MachineName,
		})
	}

	return diags
}

func collectNames(node equation.Node, visit func(string)) {
	switch typed := node.(type) {
	case *equation.Name:
		visit(typed.Ident)
	case *equation.Binary:
		collectNames(typed.Left, visit)
		collectNames(typed.Right, visit)
	case *equation.Call:
		for _, arg := range typed.Args {
			collectNames(arg, visit)
		}
	}
}

// CheckEquationCardinality validates that multiblock equations use
// appropriate scaling factors.
//
// Equations that mix counters from hardware blocks in different
// cardinality domains will not give correct results on all
// configurations, because they sum counters across variable numbers of
// domain instances. To give sensible results, counters are expected to
// be divided by the domain instance count to give a normalized count
// per instance, which can then be compared across domains as an "on
// average" result.
//
// This check crudely validates that expressions crossing domains use
// the necessary scaling factor. It does not validate that the scaling
// factor is used correctly; human review is still needed.
func (v *Validator) CheckEquationCardinality(gpu string, index *view.IndexedView) []Diagnostic {
	var diags []Diagnostic

	for _, counter := range index.Counters() {
		// Only derived counters, skipping those that failed to resolve.
		if !counter.IsDerived() || counter.ResolvedAST == nil {
			continue
		}

		if cardinalityExceptions.Contains(counter.MachineName) {
			continue
		}

		domainUse := mapset.NewThreadUnsafeSet[cardinalityDomain]()
		scaleUse := mapset.NewThreadUnsafeSet[cardinalityDomain]()

		collectNames(counter.ResolvedAST, func(name string) {
			if domain, ok := scalingConstants[name]; ok {
				scaleUse.Add(domain)
				return
			}

			// Other constants carry no cardinality.
			if equation.IsConstant(name) {
				return
			}

			// A resolved equation only references native counters. A
			// missing counter or layout slot is reported by the resolve
			// and consistency checks, so just skip it here.
			operand, ok := index.GetByMachineName(name)
			if !ok || operand.ClockDomain == view.ClockNone {
				return
			}

			domainUse.Add(blockDomains[operand.BlockType])
		})

		// Nothing to check if the expression stays in a single domain.
		if domainUse.Cardinality() <= 1 {
			continue
		}

		// For multi-domain use, any domain other than GPU must have a
		// matching scaling factor to normalize values across domains.
		for _, domain := range []cardinalityDomain{domainMEM, domainSC} {
			if domainUse.Contains(domain) && !scaleUse.Contains(domain) {
				diags = append(diags, Diagnostic{
					Reason:  fmt.Sprintf("Missing cardinality scaling for %s", domain),
					GPU:     gpu,
					Counter: counter.MachineName,
				})
			}
		}
	}

	return diags
}

// getEvaluatorFunctions defines the functions callable in counter
// equations.
func getEvaluatorFunctions() map[string]govaluate.ExpressionFunction {
	functions := make(map[string]govaluate.ExpressionFunction)
	functions["max"] = func(args ...any) (any, error) {
		if len(args) < 2 {
			return nil, fmt.Errorf("max requires at least two arguments")
		}
		result := args[0].(float64)
		for _, arg := range args[1:] {
			result = max(result, arg.(float64))
		}
		return result, nil
	}
	functions["min"] = func(args ...any) (any, error) {
		if len(args) < 2 {
			return nil, fmt.Errorf("min requires at least two arguments")
		}
		result := args[0].(float64)
		for _, arg := range args[1:] {
			result = min(result, arg.(float64))
		}
		return result, nil
	}
	return functions
}

// CheckEquationEvaluates validates that every resolved equation can be
// compiled and evaluated by an expression engine, binding all operands
// to a placeholder value. This catches malformed expressions that parse
// but cannot execute.
func (v *Validator) CheckEquationEvaluates(gpu string, index *view.IndexedView) []Diagnostic {
	var diags []Diagnostic

	functions := getEvaluatorFunctions()

	for _, counter := range index.Counters() {
		if !counter.IsDerived() || counter.ResolvedAST == nil {
			continue
		}

		expression := equation.MachineExpression(counter.ResolvedAST, counter.Unit)

		evaluable, err := govaluate.NewEvaluableExpressionWithFunctions(expression, functions)
		if err != nil {
			diags = append(diags, Diagnostic{
				Reason:  "Equation not accepted by evaluator",
				Detail:  err.Error(),
				GPU:     gpu,
				Counter: counter.MachineName,
			})
			continue
		}

		parameters := make(map[string]any)
		collectNames(counter.ResolvedAST, func(name string) {
			parameters[name] = float64(1)
		})

		if _, err := evaluable.Evaluate(parameters); err != nil {
			diags = append(diags, Diagnostic{
				Reason:  "Equation does not evaluate",
				Detail:  err.Error(),
				GPU:     gpu,
				Counter: counter.MachineName,
			})
		}
	}

	return diags
}

var docReferencePattern = regexp.MustCompile(`{{(.*?)}}`)

func checkDocReferences(index *view.IndexedView, gpu, name, docs, source string) []Diagnostic {
	var diags []Diagnostic

	for _, match := range docReferencePattern.FindAllStringSubmatch(docs, -1) {
		pattern := match[1]

		refType, reference, _ := strings.Cut(pattern, "::")
		refName, refPart, _ := strings.Cut(reference, ".")

		switch refType {
		case "K":
			if refName != "GPU_NAME" {
				diags = append(diags, Diagnostic{
					Reason:  fmt.Sprintf("Bad reference constant for %s {{%s}}", source, pattern),
					GPU:     gpu,
					Counter: name,
				})
			}
			if refPart != "" {
				diags = append(diags, Diagnostic{
					Reason:  fmt.Sprintf("Bad reference constant part for %s {{%s}}", source, pattern),
					GPU:     gpu,
					Counter: name,
				})
			}

		case "C":
			if refPart != "" && refPart != "equation" {
				diags = append(diags, Diagnostic{
					Reason:  fmt.Sprintf("Bad doc reference postfix for %s {{%s}}", source, pattern),
					GPU:     gpu,
					Counter: name,
				})
			}
			if _, ok := index.GetByMachineName(refName); !ok {
				diags = append(diags, Diagnostic{
					Reason:  fmt.Sprintf("Bad doc reference target for %s", source),
					GPU:     gpu,
					Counter: name,
				})
			}

		default:
			diags = append(diags, Diagnostic{
				Reason:  fmt.Sprintf("Bad reference type for %s {{%s}}", source, pattern),
				GPU:     gpu,
				Counter: name,
			})
		}
	}

	return diags
}

// CheckCounterDocResolve validates that counter documentation
// references resolve on this GPU.
func (v *Validator) CheckCounterDocResolve(gpu string, index *view.IndexedView) []Diagnostic {
	var diags []Diagnostic

	for _, counter := range index.Counters() {
		diags = append(diags, checkDocReferences(index, gpu,
			counter.MachineName, counter.LongDescription, "CounterSpec")...)
	}

	return diags
}

// CheckSemanticDocResolve validates that section and group
// documentation references resolve on this GPU.
func (v *Validator) CheckSemanticDocResolve(gpu string, index *view.IndexedView) []Diagnostic {
	var diags []Diagnostic

	semantic, err := v.db.SemanticViewFor(gpu)
	if err != nil {
		return []Diagnostic{{
			Reason: "Cannot compile semantic view",
			Detail: err.Error(),
			GPU:    gpu,
		}}
	}

	for _, section := range semantic.Sections {
		diags = append(diags, checkDocReferences(index, gpu,
			section.Name, section.LongDescription, "SectionDoc")...)
	}

	for _, group := range semantic.Groups() {
		diags = append(diags, checkDocReferences(index, gpu,
			group.Name, group.LongDescription, "GroupDoc")...)
	}

	return diags
}
