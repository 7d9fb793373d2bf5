package ecrrepo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsecr "github.com/aws/aws-sdk-go-v2/service/ecr"
	"github.com/hashicorp/go-hclog"

	"github.com/hotpatch-sec/creel/internal/exposure"
)

// Catalog enumerates ECR repositories in the current region.
type Catalog struct {
	api       ECRAPI
	accountID string
	region    string
	log       hclog.Logger
}

func NewCatalog(api ECRAPI, accountID, region string, log hclog.Logger) *Catalog {
	return &Catalog{api: api, accountID: accountID, region: region, log: log}
}

func (c *Catalog) Service() string      { return "ecr" }
func (c *Catalog) ResourceType() string { return "repository" }

func (c *Catalog) Enumerate(ctx context.Context) ([]exposure.ListedResource, error) {
	var resources []exposure.ListedResource
	var token *string

	for {
		out, err := c.api.DescribeRepositories(ctx, &awsecr.DescribeRepositoriesInput{
			NextToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("DescribeRepositories: %w", err)
		}

		for _, repo := range out.Repositories {
			name := aws.ToString(repo.RepositoryName)
			if name == "" {
				continue
			}
			resources = append(resources, exposure.ListedResource{
				Service:      c.Service(),
				AccountID:    c.accountID,
				ARN:          aws.ToString(repo.RepositoryArn),
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
	return NewRepository(c.api, name, c.region, c.accountID, c.log)
}
