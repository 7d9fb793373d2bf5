// Package iamrole implements the IAM role resource kind. Roles attach a
// trust policy naming who may assume them rather than a resource policy,
// so the injected grant carries the assumption verb and no Resource block.
package iamrole

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsiam "github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/hashicorp/go-hclog"

	"github.com/hotpatch-sec/creel/internal/exposure"
	"github.com/hotpatch-sec/creel/internal/policy"
)

type IAMAPI interface {
	ListRoles(ctx context.Context, params *awsiam.ListRolesInput, optFns ...func(*awsiam.Options)) (*awsiam.ListRolesOutput, error)
	GetRole(ctx context.Context, params *awsiam.GetRoleInput, optFns ...func(*awsiam.Options)) (*awsiam.GetRoleOutput, error)
	UpdateAssumeRolePolicy(ctx context.Context, params *awsiam.UpdateAssumeRolePolicyInput, optFns ...func(*awsiam.Options)) (*awsiam.UpdateAssumeRolePolicyOutput, error)
}

// Role is one IAM role instance.
type Role struct {
	exposure.Base
	api IAMAPI
}

// NewRole hydrates a role instance. Trust policies reject a Resource
// block, and the useful grant is sts:AssumeRole rather than iam:*.
func NewRole(api IAMAPI, name, region, accountID string, log hclog.Logger) *Role {
	return &Role{
		Base: exposure.Base{
			Name:         name,
			Region:       region,
			AccountID:    accountID,
			Service:      "iam",
			ResourceType: "role",
			ResourceARN:  fmt.Sprintf("arn:aws:iam::%s:role/%s", accountID, name),
			Flags: exposure.Flags{
				IncludeResourceBlock: false,
				OverrideAction:       "sts:AssumeRole",
			},
			Log: log,
		},
		api: api,
	}
}

// GetPolicy reads the role's trust policy. A vanished role or any other
// read failure yields the empty baseline so a bulk scan keeps going.
func (r *Role) GetPolicy(ctx context.Context) exposure.PolicyReadResult {
	var out *awsiam.GetRoleOutput
	err := exposure.WithBackoff(ctx, func() error {
		var err error
		out, err = r.api.GetRole(ctx, &awsiam.GetRoleInput{
			RoleName: aws.String(r.Name),
		})
		return err
	})
	if err != nil {
		var notFound *iamtypes.NoSuchEntityException
		if errors.As(err, &notFound) {
			r.Log.Error("role no longer exists", "name", r.Name)
		} else {
			r.Log.Error("reading trust policy", "name", r.Name, "error", err)
		}
		return r.ReadResult(policy.Empty(), exposure.PolicyReadFailed)
	}

	raw := aws.ToString(out.Role.AssumeRolePolicyDocument)
	if decoded, err := url.QueryUnescape(raw); err == nil {
		raw = decoded
	}
	if raw == "" {
		return r.ReadResult(policy.Empty(), exposure.PolicyAbsent)
	}
	doc, err := policy.Parse(raw)
	if err != nil {
		r.Log.Error("unparseable trust policy", "name", r.Name, "error", err)
		return r.ReadResult(policy.Empty(), exposure.PolicyReadFailed)
	}
	return r.ReadResult(doc, exposure.PolicyPresent)
}

// SetPolicy writes evil back as the role's trust policy.
func (r *Role) SetPolicy(ctx context.Context, evil policy.Document) exposure.MutationResult {
	raw, err := evil.Marshal()
	if err != nil {
		return r.WriteResult(err, evil)
	}
	err = exposure.WithBackoff(ctx, func() error {
		_, err := r.api.UpdateAssumeRolePolicy(ctx, &awsiam.UpdateAssumeRolePolicyInput{
			RoleName:       aws.String(r.Name),
			PolicyDocument: aws.String(raw),
		})
		return err
	})
	return r.WriteResult(err, evil)
}
