package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func rubricCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rubric",
		Short: "Inspect the review rubric",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List review dimensions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(flags)
			if err != nil {
				return err
			}
			registry, err := loadRubric(cfg)
			if err != nil {
				return err
			}

			for _, dim := range registry.List() {
				marker := " "
				if dim.Conditional {
					marker = "*"
				}
				fmt.Printf("%-4s %s %s\n", dim.ID, marker, dim.Name)
			}
			fmt.Println("\n* conditional: absent subject matter is not graded")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show a dimension definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(flags)
			if err != nil {
				return err
			}
			registry, err := loadRubric(cfg)
			if err != nil {
				return err
			}

			dim, err := registry.Get(args[0])
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(dim)
		},
	})

	return cmd
}
