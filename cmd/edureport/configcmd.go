package main

import (
	"github.com/spf13/cobra"

	"github.com/alnah/go-edureport/internal/yamlutil"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the configuration after file, environment and flag overrides",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if a.common.json {
				return writeJSON(a.env.Stdout, a.env.Config)
			}
			data, err := yamlutil.Marshal(a.env.Config)
			if err != nil {
				return err
			}
			_, err = a.env.Stdout.Write(data)
			return err
		},
	})
	return cmd
}
