package s3bucket

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hashicorp/go-hclog"

	"github.com/hotpatch-sec/creel/internal/exposure"
)

// Catalog enumerates S3 buckets owned by the current account.
type Catalog struct {
	api       S3API
	accountID string
	region    string
	log       hclog.Logger
}

func NewCatalog(api S3API, accountID, region string, log hclog.Logger) *Catalog {
	return &Catalog{api: api, accountID: accountID, region: region, log: log}
}

func (c *Catalog) Service() string      { return "s3" }
func (c *Catalog) ResourceType() string { return "bucket" }

func (c *Catalog) Enumerate(ctx context.Context) ([]exposure.ListedResource, error) {
	var resources []exposure.ListedResource
	var token *string

	for {
		out, err := c.api.ListBuckets(ctx, &awss3.ListBucketsInput{
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("ListBuckets: %w", err)
		}

		for _, b := range out.Buckets {
			name := aws.ToString(b.Name)
			if name == "" {
				continue
			}
			resources = append(resources, exposure.ListedResource{
				Service:      c.Service(),
				AccountID:    c.accountID,
				ARN:          fmt.Sprintf("arn:aws:s3:::%s", name),
				Region:       c.region,
				ResourceType: c.ResourceType(),
				Name:         name,
			})
		}

		if out.ContinuationToken == nil {
			break
		}
		token = out.ContinuationToken
	}

	return resources, nil
}

func (c *Catalog) Lookup(name string) exposure.Resource {
	return NewBucket(c.api, name, c.region, c.accountID, c.log)
}
