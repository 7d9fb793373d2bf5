package iamrole

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsiam "github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/hashicorp/go-hclog"

	"github.com/hotpatch-sec/creel/internal/exposure"
)

// Catalog enumerates IAM roles in the current account.
type Catalog struct {
	api       IAMAPI
	accountID string
	region    string
	log       hclog.Logger
}

func NewCatalog(api IAMAPI, accountID, region string, log hclog.Logger) *Catalog {
	return &Catalog{api: api, accountID: accountID, region: region, log: log}
}

func (c *Catalog) Service() string      { return "iam" }
func (c *Catalog) ResourceType() string { return "role" }

// Enumerate lists every role, excluding service-linked roles: their trust
// policies are platform-managed and cannot be updated.
func (c *Catalog) Enumerate(ctx context.Context) ([]exposure.ListedResource, error) {
	var resources []exposure.ListedResource
	var marker *string

	for {
		out, err := c.api.ListRoles(ctx, &awsiam.ListRolesInput{
			Marker: marker,
		})
		if err != nil {
			return nil, fmt.Errorf("ListRoles: %w", err)
		}

		for _, r := range out.Roles {
			path := aws.ToString(r.Path)
			name := aws.ToString(r.RoleName)
			arn := aws.ToString(r.Arn)
			if name == "" || arn == "" {
				continue
			}
			// Service-linked roles only: UpdateAssumeRolePolicy is
			// rejected for them. Roles under /service-role/ are
			// user-created and stay in scope.
			if strings.HasPrefix(path, "/aws-service-role/") {
				continue
			}
			resources = append(resources, exposure.ListedResource{
				Service:      c.Service(),
				AccountID:    c.accountID,
				ARN:          arn,
				Region:       c.region,
				ResourceType: c.ResourceType(),
				Name:         name,
			})
		}

		if !out.IsTruncated {
			break
		}
		marker = out.Marker
	}

	return resources, nil
}

// Lookup hydrates a role instance by name without enumerating.
func (c *Catalog) Lookup(name string) exposure.Resource {
	return NewRole(c.api, name, c.region, c.accountID, c.log)
}
