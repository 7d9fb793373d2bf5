package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hotpatch-sec/creel/cmd"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "creel",
		Short: "Audit and plant grants in AWS resource-based policies",
		Long: `creel enumerates AWS resources that carry resource-based policies,
reads each policy, and can inject an additional grant for an
attacker-controlled principal to demonstrate exposure. For use only against
accounts you are authorized to assess.`,
	}

	rootCmd.AddCommand(cmd.NewListResourcesCmd())
	rootCmd.AddCommand(cmd.NewExposeCmd())
	rootCmd.AddCommand(cmd.NewAuditCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
