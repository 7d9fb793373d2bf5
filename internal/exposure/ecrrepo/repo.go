// Package ecrrepo implements the ECR repository resource kind. Repository
// policies bind implicitly to the repository, so the injected grant
// carries no Resource block.
package ecrrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsecr "github.com/aws/aws-sdk-go-v2/service/ecr"
	ecrtypes "github.com/aws/aws-sdk-go-v2/service/ecr/types"
	"github.com/hashicorp/go-hclog"

	"github.com/hotpatch-sec/creel/internal/exposure"
	"github.com/hotpatch-sec/creel/internal/policy"
)

type ECRAPI interface {
	DescribeRepositories(ctx context.Context, params *awsecr.DescribeRepositoriesInput, optFns ...func(*awsecr.Options)) (*awsecr.DescribeRepositoriesOutput, error)
	GetRepositoryPolicy(ctx context.Context, params *awsecr.GetRepositoryPolicyInput, optFns ...func(*awsecr.Options)) (*awsecr.GetRepositoryPolicyOutput, error)
	SetRepositoryPolicy(ctx context.Context, params *awsecr.SetRepositoryPolicyInput, optFns ...func(*awsecr.Options)) (*awsecr.SetRepositoryPolicyOutput, error)
}

// Repository is one ECR repository instance.
type Repository struct {
	exposure.Base
	api ECRAPI
}

func NewRepository(api ECRAPI, name, region, accountID string, log hclog.Logger) *Repository {
	return &Repository{
		Base: exposure.Base{
			Name:         name,
			Region:       region,
			AccountID:    accountID,
			Service:      "ecr",
			ResourceType: "repository",
			ResourceARN:  fmt.Sprintf("arn:aws:ecr:%s:%s:repository/%s", region, accountID, name),
			Flags: exposure.Flags{
				IncludeResourceBlock: false,
			},
			Log: log,
		},
		api: api,
	}
}

func (r *Repository) GetPolicy(ctx context.Context) exposure.PolicyReadResult {
	var out *awsecr.GetRepositoryPolicyOutput
	err := exposure.WithBackoff(ctx, func() error {
		var err error
		out, err = r.api.GetRepositoryPolicy(ctx, &awsecr.GetRepositoryPolicyInput{
			RepositoryName: aws.String(r.Name),
		})
		return err
	})
	if err != nil {
		var policyAbsent *ecrtypes.RepositoryPolicyNotFoundException
		var repoGone *ecrtypes.RepositoryNotFoundException
		switch {
		case errors.As(err, &policyAbsent):
			return r.ReadResult(policy.Empty(), exposure.PolicyAbsent)
		case errors.As(err, &repoGone):
			r.Log.Error("repository no longer exists", "name", r.Name)
		default:
			r.Log.Error("reading repository policy", "name", r.Name, "error", err)
		}
		return r.ReadResult(policy.Empty(), exposure.PolicyReadFailed)
	}

	doc, err := policy.Parse(aws.ToString(out.PolicyText))
	if err != nil {
		r.Log.Error("unparseable repository policy", "name", r.Name, "error", err)
		return r.ReadResult(policy.Empty(), exposure.PolicyReadFailed)
	}
	return r.ReadResult(doc, exposure.PolicyPresent)
}

func (r *Repository) SetPolicy(ctx context.Context, evil policy.Document) exposure.MutationResult {
	raw, err := evil.Marshal()
	if err != nil {
		return r.WriteResult(err, evil)
	}
	err = exposure.WithBackoff(ctx, func() error {
		_, err := r.api.SetRepositoryPolicy(ctx, &awsecr.SetRepositoryPolicyInput{
			RepositoryName: aws.String(r.Name),
			PolicyText:     aws.String(raw),
		})
		return err
	})
	return r.WriteResult(err, evil)
}
