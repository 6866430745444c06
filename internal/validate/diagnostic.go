// Package validate implements database content validation.
//
// Structural errors like malformed YAML and missing database files are
// caught when the database is loaded. The checks here catch stateful
// consistency issues that require cross-referencing database entries to
// detect, and data formatting issues.
//
// Checkers
//
// Hardware counter completeness checks ensure all expected counters, and
// no unexpected counters, are present.
//
// Derived counter completeness checks ensure that all expressions can be
// resolved for every GPU. This also checks that expressions do not mix
// counters across cardinality domains without a suitable scaling factor.
//
// Semantic layout completeness checks ensure all expected counters, and
// no unexpected counters, are present.
//
// Database field consistency checks cover stable ID uniqueness, known
// units values, string lengths, and whitespace consistency.
//
// Editing helpers
//
// To help with manual editing, the validator patches missing stable IDs
// in place with suggested values, so the caller can write the files back
// to disk for human review.
package validate

// Copyright (C) 2019-2025 Arm Limited.
// SPDX-License-Identifier: MIT

import (
	"strings"
)

// Diagnostic is one validation failure. GPU and Counter identify the
// failing entry where applicable; Detail carries supplementary context
// such as the failing field name.
type Diagnostic struct {
	Reason  string
	Detail  string
	GPU     string
	Counter string
}

func (d Diagnostic) String() string {
	var msg strings.Builder
	msg.WriteString("FAIL: ")

	if d.GPU != "" {
		msg.WriteString(d.GPU)
		msg.WriteByte('.')
	}
	if d.Counter != "" {
		msg.WriteString(d.Counter)
		msg.WriteString(": ")
	}

	msg.WriteString(d.Reason)

	if d.Detail != "" {
		msg.WriteString(" [")
		msg.WriteString(d.Detail)
		msg.WriteByte(']')
	}

	return msg.String()
}
