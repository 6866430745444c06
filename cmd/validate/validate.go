// Package validate is a subcommand of the root command. It runs the full set of
// consistency checks over the counter database and reports failures.
package validate

// Copyright (C) 2019-2025 Arm Limited.
// SPDX-License-Identifier: MIT

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"lgc/internal/common"
	"lgc/internal/database"
	"lgc/internal/validate"

	"github.com/spf13/cobra"
)

const cmdName = "validate"

var examples = []string{
	fmt.Sprintf("  Validate the counter database:            $ %s %s", common.AppName, cmdName),
	fmt.Sprintf("  Validate a database at a specific path:   $ %s %s --db ./database", common.AppName, cmdName),
	fmt.Sprintf("  Validate and rewrite in normalized form:  $ %s %s --overwrite", common.AppName, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName,
	Short:         "Validate the counter database",
	Long:          "Runs the full set of consistency checks over the counter database: whitespace and string lengths, stable ID assignment, per-product view compilation, equation resolution and cardinality, and documentation references.",
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	GroupID:       "primary",
	Args:          cobra.NoArgs,
	SilenceErrors: true,
}

var flagOverwrite bool

const flagOverwriteName = "overwrite"

func init() {
	Cmd.Flags().BoolVar(&flagOverwrite, flagOverwriteName, false, "rewrite the database in normalized form, including assigned stable IDs")
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
	slog.Info("Loaded counter database", slog.String("dir", appContext.DatabaseDir), slog.Int("products", len(db.SupportedGPUs())))
	diagnostics := validate.New(db).RunAll()
	for _, diagnostic := range diagnostics {
		fmt.Println(diagnostic.String())
	}
	// the validator may have assigned missing stable IDs in place
	if flagOverwrite {
		if err := db.Raw.Save(appContext.DatabaseDir); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			slog.Error(err.Error())
			cmd.SilenceUsage = true
			return err
		}
		slog.Info("Rewrote counter database", slog.String("dir", appContext.DatabaseDir))
	}
	if len(diagnostics) != 0 {
		fmt.Printf("ERROR: Total of %d failures detected\n", len(diagnostics))
		slog.Error("validation failed", slog.Int("failures", len(diagnostics)))
		cmd.SilenceUsage = true
		return fmt.Errorf("%d validation failures detected", len(diagnostics))
	}
	return nil
}
