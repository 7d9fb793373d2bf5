package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hotpatch-sec/creel/internal/cli"
	"github.com/hotpatch-sec/creel/internal/exposure"
)

func NewListResourcesCmd() *cobra.Command {
	var profile string
	var region string
	var service string

	cmd := &cobra.Command{
		Use:   "list-resources",
		Short: "Enumerate resources that carry a resource-based policy",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, client, log, err := setup(ctx, profile, region)
			if err != nil {
				return err
			}

			var catalogs []exposure.Catalog
			if service == "all" {
				catalogs = client.Catalogs()
			} else {
				cat := client.Catalog(service)
				if cat == nil {
					return fmt.Errorf("unsupported service %q (supported: %s, all)",
						service, strings.Join(client.Services(), ", "))
				}
				catalogs = []exposure.Catalog{cat}
			}

			for _, cat := range catalogs {
				listed, err := cat.Enumerate(ctx)
				if err != nil {
					// One kind failing to list must not hide the others.
					log.Error("enumeration failed", "service", cat.Service(), "error", err)
					continue
				}
				for _, r := range listed {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n",
						r.Service, r.Name, cli.Dim(r.ARN))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&profile, "profile", "p", "", "AWS profile to use")
	cmd.Flags().StringVarP(&region, "region", "r", "", "AWS region to use")
	cmd.Flags().StringVarP(&service, "service", "s", "all", "service to enumerate (iam, s3, sqs, ecr, logs, elasticfilesystem, all)")

	return cmd
}
