package efsfs

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsefs "github.com/aws/aws-sdk-go-v2/service/efs"
	"github.com/hashicorp/go-hclog"

	"github.com/hotpatch-sec/creel/internal/exposure"
)

// Catalog enumerates EFS file systems in the current region.
type Catalog struct {
	api       EFSAPI
	accountID string
	region    string
	log       hclog.Logger
}

func NewCatalog(api EFSAPI, accountID, region string, log hclog.Logger) *Catalog {
	return &Catalog{api: api, accountID: accountID, region: region, log: log}
}

func (c *Catalog) Service() string      { return "elasticfilesystem" }
func (c *Catalog) ResourceType() string { return "file-system" }

func (c *Catalog) Enumerate(ctx context.Context) ([]exposure.ListedResource, error) {
	var resources []exposure.ListedResource
	var marker *string

	for {
		out, err := c.api.DescribeFileSystems(ctx, &awsefs.DescribeFileSystemsInput{
			Marker: marker,
		})
		if err != nil {
			return nil, fmt.Errorf("DescribeFileSystems: %w", err)
		}

		for _, fs := range out.FileSystems {
			id := aws.ToString(fs.FileSystemId)
			if id == "" {
				continue
			}
			resources = append(resources, exposure.ListedResource{
				Service:      c.Service(),
				AccountID:    c.accountID,
				ARN:          aws.ToString(fs.FileSystemArn),
				Region:       c.region,
				ResourceType: c.ResourceType(),
				Name:         id,
			})
		}

		if out.NextMarker == nil {
			break
		}
		marker = out.NextMarker
	}

	return resources, nil
}

func (c *Catalog) Lookup(id string) exposure.Resource {
	return NewFileSystem(c.api, id, c.region, c.accountID, c.log)
}
