package sqsqueue

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/hashicorp/go-hclog"

	"github.com/hotpatch-sec/creel/internal/exposure"
)

// Catalog enumerates SQS queues in the current region.
type Catalog struct {
	api       SQSAPI
	accountID string
	region    string
	log       hclog.Logger
}

func NewCatalog(api SQSAPI, accountID, region string, log hclog.Logger) *Catalog {
	return &Catalog{api: api, accountID: accountID, region: region, log: log}
}

func (c *Catalog) Service() string      { return "sqs" }
func (c *Catalog) ResourceType() string { return "queue" }

func (c *Catalog) Enumerate(ctx context.Context) ([]exposure.ListedResource, error) {
	var resources []exposure.ListedResource
	var token *string

	for {
		// The response only carries NextToken when MaxResults is set;
		// without it the call caps at 1000 queues and never paginates.
		out, err := c.api.ListQueues(ctx, &awssqs.ListQueuesInput{
			MaxResults: aws.Int32(1000),
			NextToken:  token,
		})
		if err != nil {
			return nil, fmt.Errorf("ListQueues: %w", err)
		}

		for _, url := range out.QueueUrls {
			// Queue URLs end in /<account-id>/<queue-name>.
			name := url[strings.LastIndex(url, "/")+1:]
			if name == "" {
				continue
			}
			resources = append(resources, exposure.ListedResource{
				Service:      c.Service(),
				AccountID:    c.accountID,
				ARN:          fmt.Sprintf("arn:aws:sqs:%s:%s:%s", c.region, c.accountID, name),
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
	return NewQueue(c.api, name, c.region, c.accountID, c.log)
}
