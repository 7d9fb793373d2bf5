// Package logsresource implements the CloudWatch Logs account resource
// policy kind. These are named account-level policies rather than
// documents attached to an individual log group, so the injected grant
// names the wildcard resource.
package logsresource

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awslogs "github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/hashicorp/go-hclog"

	"github.com/hotpatch-sec/creel/internal/exposure"
	"github.com/hotpatch-sec/creel/internal/policy"
)

type LogsAPI interface {
	DescribeResourcePolicies(ctx context.Context, params *awslogs.DescribeResourcePoliciesInput, optFns ...func(*awslogs.Options)) (*awslogs.DescribeResourcePoliciesOutput, error)
	PutResourcePolicy(ctx context.Context, params *awslogs.PutResourcePolicyInput, optFns ...func(*awslogs.Options)) (*awslogs.PutResourcePolicyOutput, error)
}

// ResourcePolicy is one named CloudWatch Logs resource policy.
type ResourcePolicy struct {
	exposure.Base
	api LogsAPI
}

func NewResourcePolicy(api LogsAPI, name, region, accountID string, log hclog.Logger) *ResourcePolicy {
	return &ResourcePolicy{
		Base: exposure.Base{
			Name:         name,
			Region:       region,
			AccountID:    accountID,
			Service:      "logs",
			ResourceType: "resource-policy",
			ResourceARN:  fmt.Sprintf("arn:aws:logs:%s:%s:resource-policy:%s", region, accountID, name),
			Flags: exposure.Flags{
				IncludeResourceBlock:  true,
				OverrideResourceBlock: []string{"*"},
			},
			Log: log,
		},
		api: api,
	}
}

// GetPolicy scans the account's resource policies for this instance's
// name. There is no per-policy read API.
func (p *ResourcePolicy) GetPolicy(ctx context.Context) exposure.PolicyReadResult {
	var token *string
	for {
		var out *awslogs.DescribeResourcePoliciesOutput
		err := exposure.WithBackoff(ctx, func() error {
			var err error
			out, err = p.api.DescribeResourcePolicies(ctx, &awslogs.DescribeResourcePoliciesInput{
				NextToken: token,
			})
			return err
		})
		if err != nil {
			p.Log.Error("reading resource policies", "name", p.Name, "error", err)
			return p.ReadResult(policy.Empty(), exposure.PolicyReadFailed)
		}

		for _, rp := range out.ResourcePolicies {
			if aws.ToString(rp.PolicyName) != p.Name {
				continue
			}
			doc, err := policy.Parse(aws.ToString(rp.PolicyDocument))
			if err != nil {
				p.Log.Error("unparseable resource policy", "name", p.Name, "error", err)
				return p.ReadResult(policy.Empty(), exposure.PolicyReadFailed)
			}
			return p.ReadResult(doc, exposure.PolicyPresent)
		}

		if out.NextToken == nil {
			break
		}
		token = out.NextToken
	}

	// Writing under a fresh name creates the policy, so an unknown name
	// is the absent case, not a failure.
	return p.ReadResult(policy.Empty(), exposure.PolicyAbsent)
}

func (p *ResourcePolicy) SetPolicy(ctx context.Context, evil policy.Document) exposure.MutationResult {
	raw, err := evil.Marshal()
	if err != nil {
		return p.WriteResult(err, evil)
	}
	err = exposure.WithBackoff(ctx, func() error {
		_, err := p.api.PutResourcePolicy(ctx, &awslogs.PutResourcePolicyInput{
			PolicyName:     aws.String(p.Name),
			PolicyDocument: aws.String(raw),
		})
		return err
	})
	return p.WriteResult(err, evil)
}
