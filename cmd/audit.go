package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hotpatch-sec/creel/internal/cli"
	"github.com/hotpatch-sec/creel/internal/config"
	"github.com/hotpatch-sec/creel/internal/store"
)

func NewAuditCmd() *cobra.Command {
	var showPolicies bool

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show the stored trail of attempted policy mutations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			db, err := store.Open(cfg.AuditDBPath())
			if err != nil {
				return err
			}
			defer db.Close()

			entries, err := db.List(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, e := range entries {
				fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%s\n",
					e.RecordedAt, cli.Outcome(e.Success), e.VictimARN,
					e.EvilPrincipal, e.Message)
				if showPolicies {
					fmt.Fprintf(out, "  original: %s\n", cli.Dim(e.OriginalPolicy))
					fmt.Fprintf(out, "  updated:  %s\n", cli.Dim(e.UpdatedPolicy))
				}
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "no recorded mutations")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showPolicies, "policies", false, "include before/after policy documents")

	return cmd
}
