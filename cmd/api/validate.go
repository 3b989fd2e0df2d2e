package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	alertsYaml "site-analytics-service/internal/alerts/adapters/yaml"
	alertsUsecase "site-analytics-service/internal/alerts/core/usecase"
)

var validateAlertsCmd = &cobra.Command{
	Use:   "validate-alerts FILE",
	Short: "Check an alert definitions file without scheduling anything",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		defs, err := alertsYaml.LoadFile(args[0])
		if err != nil {
			return err
		}

		// validation never touches the scheduler or the query path
		uc := alertsUsecase.NewAlertUseCase(nil, nil, nil)

		var errs []error
		for i, def := range defs {
			if err := uc.ValidateDefinition(def); err != nil {
				errs = append(errs, fmt.Errorf("alert %d (%s): %w", i, def.Name, err))
			}
		}
		if err := errors.Join(errs...); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d alert definitions ok\n", args[0], len(defs))
		return nil
	},
}
