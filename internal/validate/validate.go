package validate

// Copyright (C) 2019-2025 Arm Limited.
// SPDX-License-Identifier: MIT

import (
	"lgc/internal/database"
)

// Validator runs content checks over a loaded counter database.
type Validator struct {
	db *database.CounterDatabase
}

// New builds a validator for a database.
func New(db *database.CounterDatabase) *Validator {
	return &Validator{db: db}
}

// RunAll runs every check and returns the failures in a deterministic
// order. Whole-database checks run first, then the per-product checks
// for every database key.
//
// As a side effect, counters missing a stable ID are patched in place
// with a suggested value, so the database can be written back to disk
// for review. The patch is still reported as a failure.
func (v *Validator) RunAll() []Diagnostic {
	var diags []Diagnostic

	diags = append(diags, v.CheckWhitespace()...)
	diags = append(diags, v.CheckShortFieldReferences()...)
	diags = append(diags, v.CheckStringLengths()...)
	diags = append(diags, v.CheckStableIDs()...)
	diags = append(diags, v.CheckGPUFields()...)
	diags = append(diags, v.CheckUnits()...)
	diags = append(diags, v.CheckEquationParse()...)
	diags = append(diags, v.CheckSemanticLayout()...)
	diags = append(diags, v.CheckUnusedDocs()...)

	// Stable ID patching may have changed the raw database under any
	// previously compiled views.
	v.db.ClearCache()

	for _, key := range v.db.DatabaseKeys() {
		diags = append(diags, v.checkProduct(key)...)
	}

	return diags
}

func (v *Validator) checkProduct(key string) []Diagnostic {
	var diags []Diagnostic

	diags = append(diags, v.CheckNameUniqueness(key)...)

	index, err := v.db.IndexedViewFor(key)
	if err != nil {
		return append(diags, Diagnostic{
			Reason: "Cannot compile indexed view",
			Detail: err.Error(),
			GPU:    key,
		})
	}

	diags = append(diags, v.CheckSourceNameConsistency(key, index)...)
	diags = append(diags, v.CheckEquationResolve(key, index)...)
	diags = append(diags, v.CheckEquationCardinality(key, index)...)
	diags = append(diags, v.CheckEquationEvaluates(key, index)...)
	diags = append(diags, v.CheckCounterDocResolve(key, index)...)
	diags = append(diags, v.CheckSemanticDocResolve(key, index)...)

	return diags
}
