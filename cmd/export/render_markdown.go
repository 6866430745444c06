package export

// Copyright (C) 2019-2025 Arm Limited.
// SPDX-License-Identifier: MIT

import (
	"fmt"
	"strings"

	"lgc/internal/database"
	"lgc/internal/docs"
	"lgc/internal/equation"
	"lgc/internal/specdb"
	"lgc/internal/view"
)

// createMarkdownExport renders the presentation-ordered counter listing
// for one product as a markdown document. Documentation references are
// resolved to plain text; a database that fails validation may fail to
// render here.
func createMarkdownExport(db *database.CounterDatabase, gpu string,
	maxVisibility specdb.Visibility, derived bool) ([]byte, error) {
	info, err := db.ProductInfoFor(gpu)
	if err != nil {
		return nil, err
	}
	index, err := db.IndexedViewFor(gpu)
	if err != nil {
		return nil, err
	}
	semantic, err := db.SemanticViewFor(gpu)
	if err != nil {
		return nil, err
	}
	semantic = semantic.Filter(maxVisibility, derived)

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s Performance Counters\n\n", info.GetDocumentName(true))
	if archInfo, err := db.ArchitectureInfoFor(gpu); err == nil {
		resolved, err := docs.ResolveText(archInfo.LongDescription, info, index)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve architecture documentation: %w", err)
		}
		sb.WriteString(resolved)
		sb.WriteString("\n\n")
	}
	for _, section := range semantic.Sections {
		fmt.Fprintf(&sb, "## %s\n\n", section.Name)
		resolved, err := docs.ResolveText(section.LongDescription, info, index)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve section %s: %w", section.Name, err)
		}
		sb.WriteString(resolved)
		sb.WriteString("\n\n")
		for _, group := range section.Groups {
			fmt.Fprintf(&sb, "### %s\n\n", group.Name)
			resolved, err := docs.ResolveText(group.LongDescription, info, index)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve group %s: %w", group.Name, err)
			}
			sb.WriteString(resolved)
			sb.WriteString("\n\n")
			for _, counter := range group.Counters {
				if err := renderMarkdownCounter(&sb, counter, info, index); err != nil {
					return nil, err
				}
			}
		}
	}
	return []byte(sb.String()), nil
}

func renderMarkdownCounter(sb *strings.Builder, counter *view.CounterView,
	info *specdb.ProductSpec, index *view.IndexedView) error {
	fmt.Fprintf(sb, "#### %s\n\n", counter.HumanName)
	fmt.Fprintf(sb, "- Machine name: `%s`\n", counter.MachineName)
	fmt.Fprintf(sb, "- Units: %s\n", counter.Unit)
	fmt.Fprintf(sb, "- Usage: %s\n", counter.Trend)
	fmt.Fprintf(sb, "- Audience: %s\n", counter.Visibility)
	if counter.IsDerived() {
		fmt.Fprintf(sb, "- Equation: `%s`\n", equation.Format(counter.EquationAST))
		if counter.ResolvedAST != nil {
			fmt.Fprintf(sb, "- Hardware equation: `%s`\n",
				equation.HardwareExpression(counter.ResolvedAST, counter.Unit, index))
			streamline, err := equation.StreamlineExpression(counter.ResolvedAST, counter.Unit, index)
			if err != nil {
				return fmt.Errorf("failed to render Streamline equation for %s: %w", counter.MachineName, err)
			}
			fmt.Fprintf(sb, "- Streamline equation: `%s`\n", streamline)
		}
	} else {
		fmt.Fprintf(sb, "- Hardware name: `%s`\n", counter.SourceName)
		if counter.ScaleMultiplier != 1 {
			fmt.Fprintf(sb, "- Scale multiplier: %d\n", counter.ScaleMultiplier)
		}
		fmt.Fprintf(sb, "- Clock domain: %s\n", counter.ClockDomain)
	}
	sb.WriteString("\n")
	resolved, err := docs.ResolveText(counter.LongDescription, info, index)
	if err != nil {
		return fmt.Errorf("failed to resolve counter %s: %w", counter.MachineName, err)
	}
	sb.WriteString(resolved)
	sb.WriteString("\n\n")
	return nil
}
