// Package export is a subcommand of the root command. It compiles the counter
// database for a single product and writes a documentation-ready counter
// listing in markdown or xlsx format.
package export

// Copyright (C) 2019-2025 Arm Limited.
// SPDX-License-Identifier: MIT

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"lgc/internal/common"
	"lgc/internal/database"
	"lgc/internal/specdb"

	"github.com/spf13/cobra"
)

const cmdName = "export"

var examples = []string{
	fmt.Sprintf("  Export a markdown counter listing:        $ %s %s --gpu Mali-G720", common.AppName, cmdName),
	fmt.Sprintf("  Export a spreadsheet:                     $ %s %s --gpu Mali-G720 --format xlsx", common.AppName, cmdName),
	fmt.Sprintf("  Export the novice counter set only:       $ %s %s --gpu Mali-G720 --visibility novice", common.AppName, cmdName),
	fmt.Sprintf("  Export hardware counters only:            $ %s %s --gpu Mali-G720 --derived=false", common.AppName, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName,
	Short:         "Export a per-product counter listing",
	Long:          "Compiles the counter database for a single product and writes the presentation-ordered counter listing with resolved documentation and equations.",
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	PreRunE:       validateFlags,
	GroupID:       "primary",
	Args:          cobra.NoArgs,
	SilenceErrors: true,
}

const (
	formatMarkdown = "md"
	formatXlsx     = "xlsx"
)

var (
	flagGPU        string
	flagFormat     string
	flagVisibility string
	flagDerived    bool
	flagOutput     string
)

const (
	flagGPUName        = "gpu"
	flagFormatName     = "format"
	flagVisibilityName = "visibility"
	flagDerivedName    = "derived"
	flagOutputName     = "output"
)

// visibilityLevels maps the flag spellings to visibility levels.
var visibilityLevels = map[string]specdb.Visibility{
	"novice":               specdb.VisibilityNovice,
	"advanced-application": specdb.VisibilityAdvancedApplication,
	"advanced-system":      specdb.VisibilityAdvancedSystem,
	"internal":             specdb.VisibilityInternal,
}

func init() {
	Cmd.Flags().StringVar(&flagGPU, flagGPUName, "", "product name to export, e.g., Mali-G720")
	Cmd.Flags().StringVar(&flagFormat, flagFormatName, formatMarkdown, "output format, one of: md, xlsx")
	Cmd.Flags().StringVar(&flagVisibility, flagVisibilityName, "advanced-system", "most detailed visibility level to include, one of: novice, advanced-application, advanced-system, internal")
	Cmd.Flags().BoolVar(&flagDerived, flagDerivedName, true, "include derived counters")
	Cmd.Flags().StringVarP(&flagOutput, flagOutputName, "o", "", "output file path, default is derived from the product name")
	_ = Cmd.MarkFlagRequired(flagGPUName)
}

func validateFlags(cmd *cobra.Command, args []string) error {
	if flagFormat != formatMarkdown && flagFormat != formatXlsx {
		err := fmt.Errorf("invalid format: %s", flagFormat)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	if _, ok := visibilityLevels[flagVisibility]; !ok {
		err := fmt.Errorf("invalid visibility: %s", flagVisibility)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func runCmd(cmd *cobra.Command, args []string) error {
	// appContext is the application context that holds common data and resources.
	appContext := cmd.Parent().Context().Value(common.AppContext{}).(common.AppContext)
	db, err := database.Open(appContext.DatabaseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		slog.Error(err.Error())
		cmd.SilenceUsage = true
		return err
	}
	maxVisibility := visibilityLevels[flagVisibility]
	var out []byte
	switch flagFormat {
	case formatMarkdown:
		out, err = createMarkdownExport(db, flagGPU, maxVisibility, flagDerived)
	case formatXlsx:
		out, err = createXlsxExport(db, flagGPU, maxVisibility, flagDerived)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		slog.Error(err.Error())
		cmd.SilenceUsage = true
		return err
	}
	outputPath := flagOutput
	if outputPath == "" {
		outputPath = fmt.Sprintf("%s_counters.%s", flagGPU, flagFormat)
	}
	if err := os.WriteFile(outputPath, out, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		slog.Error(err.Error())
		cmd.SilenceUsage = true
		return err
	}
	slog.Info("Wrote counter listing", slog.String("gpu", flagGPU), slog.String("path", outputPath))
	fmt.Printf("Counter listing written to %s\n", outputPath)
	return nil
}
