package logsresource

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awslogs "github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/hashicorp/go-hclog"

	"github.com/hotpatch-sec/creel/internal/exposure"
)

// Catalog enumerates the account's CloudWatch Logs resource policies.
type Catalog struct {
	api       LogsAPI
	accountID string
	region    string
	log       hclog.Logger
}

func NewCatalog(api LogsAPI, accountID, region string, log hclog.Logger) *Catalog {
	return &Catalog{api: api, accountID: accountID, region: region, log: log}
}

func (c *Catalog) Service() string      { return "logs" }
func (c *Catalog) ResourceType() string { return "resource-policy" }

func (c *Catalog) Enumerate(ctx context.Context) ([]exposure.ListedResource, error) {
	var resources []exposure.ListedResource
	var token *string

	for {
		out, err := c.api.DescribeResourcePolicies(ctx, &awslogs.DescribeResourcePoliciesInput{
			NextToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("DescribeResourcePolicies: %w", err)
		}

		for _, rp := range out.ResourcePolicies {
			name := aws.ToString(rp.PolicyName)
			if name == "" {
				continue
			}
			resources = append(resources, exposure.ListedResource{
				Service:      c.Service(),
				AccountID:    c.accountID,
				ARN:          fmt.Sprintf("arn:aws:logs:%s:%s:resource-policy:%s", c.region, c.accountID, name),
				Region:       c.region,
				ResourceType: c.ResourceType(),
				Name:         name,
			})
		}

		if out.NextToken == nil {
			break
		}
		token = out.NextToken
	}

	return resources, nil
}

func (c *Catalog) Lookup(name string) exposure.Resource {
	return NewResourcePolicy(c.api, name, c.region, c.accountID, c.log)
}
