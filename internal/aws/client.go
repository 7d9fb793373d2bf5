package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	"github.com/aws/aws-sdk-go-v2/service/efs"
	awsiamsdk "github.com/aws/aws-sdk-go-v2/service/iam"
	awss3sdk "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/hashicorp/go-hclog"

	"github.com/hotpatch-sec/creel/internal/exposure"
	"github.com/hotpatch-sec/creel/internal/exposure/ecrrepo"
	"github.com/hotpatch-sec/creel/internal/exposure/efsfs"
	"github.com/hotpatch-sec/creel/internal/exposure/iamrole"
	"github.com/hotpatch-sec/creel/internal/exposure/logsresource"
	"github.com/hotpatch-sec/creel/internal/exposure/s3bucket"
	"github.com/hotpatch-sec/creel/internal/exposure/sqsqueue"
)

// ServiceClient holds one catalog per supported resource kind, all sharing
// the same credentials, account, and region. Each underlying SDK client is
// safe for concurrent use across instances of its kind.
type ServiceClient struct {
	IAMRoles       *iamrole.Catalog
	S3Buckets      *s3bucket.Catalog
	SQSQueues      *sqsqueue.Catalog
	ECRRepos       *ecrrepo.Catalog
	LogsPolicies   *logsresource.Catalog
	EFSFileSystems *efsfs.Catalog

	AccountID string
	Region    string
}

func NewServiceClient(ctx context.Context, profile, region string, log hclog.Logger) (*ServiceClient, error) {
	cfg, err := LoadConfig(ctx, profile, region)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	accountID, err := GetAccountID(ctx, cfg)
	if err != nil {
		return nil, err
	}
	resolvedRegion := cfg.Region

	return &ServiceClient{
		IAMRoles:       iamrole.NewCatalog(awsiamsdk.NewFromConfig(cfg), accountID, resolvedRegion, log.Named("iamrole")),
		S3Buckets:      s3bucket.NewCatalog(awss3sdk.NewFromConfig(cfg), accountID, resolvedRegion, log.Named("s3bucket")),
		SQSQueues:      sqsqueue.NewCatalog(sqs.NewFromConfig(cfg), accountID, resolvedRegion, log.Named("sqsqueue")),
		ECRRepos:       ecrrepo.NewCatalog(ecr.NewFromConfig(cfg), accountID, resolvedRegion, log.Named("ecrrepo")),
		LogsPolicies:   logsresource.NewCatalog(cloudwatchlogs.NewFromConfig(cfg), accountID, resolvedRegion, log.Named("logsresource")),
		EFSFileSystems: efsfs.NewCatalog(efs.NewFromConfig(cfg), accountID, resolvedRegion, log.Named("efsfs")),

		AccountID: accountID,
		Region:    resolvedRegion,
	}, nil
}

// Catalogs returns every kind catalog in a stable order.
func (c *ServiceClient) Catalogs() []exposure.Catalog {
	return []exposure.Catalog{
		c.IAMRoles,
		c.S3Buckets,
		c.SQSQueues,
		c.ECRRepos,
		c.LogsPolicies,
		c.EFSFileSystems,
	}
}

// Catalog returns the catalog registered for the given service name, or
// nil when the service is not supported.
func (c *ServiceClient) Catalog(service string) exposure.Catalog {
	for _, cat := range c.Catalogs() {
		if cat.Service() == service {
			return cat
		}
	}
	return nil
}

// Services returns the supported service names in a stable order.
func (c *ServiceClient) Services() []string {
	cats := c.Catalogs()
	names := make([]string, len(cats))
	for i, cat := range cats {
		names[i] = cat.Service()
	}
	return names
}
