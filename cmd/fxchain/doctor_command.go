package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"fxchain/internal/catalog"
	"fxchain/internal/config"
	"fxchain/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the environment fxchain needs to run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			results := preflight.Check(cfg)
			results = append(results, checkCatalog(cfg))

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, checkTable(results))

			if !preflight.Passed(results) {
				return errors.New("one or more preflight checks failed")
			}
			fmt.Fprintln(out, "All checks passed")
			return nil
		},
	}
}

// checkCatalog opens and closes the catalog database so schema problems
// surface here instead of on first use.
func checkCatalog(cfg *config.Config) preflight.Result {
	result := preflight.Result{Name: "catalog database"}
	store, err := catalog.Open(cfg)
	if err != nil {
		result.Detail = err.Error()
		return result
	}
	store.Close()
	result.Passed = true
	result.Detail = cfg.CatalogPath()
	return result
}
