// Package efsfs implements the EFS file system resource kind. File system
// policies require the grant principal expressed as a bare account id; a
// principal ARN is rejected on write.
package efsfs

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsefs "github.com/aws/aws-sdk-go-v2/service/efs"
	efstypes "github.com/aws/aws-sdk-go-v2/service/efs/types"
	"github.com/hashicorp/go-hclog"

	"github.com/hotpatch-sec/creel/internal/exposure"
	"github.com/hotpatch-sec/creel/internal/policy"
)

type EFSAPI interface {
	DescribeFileSystems(ctx context.Context, params *awsefs.DescribeFileSystemsInput, optFns ...func(*awsefs.Options)) (*awsefs.DescribeFileSystemsOutput, error)
	DescribeFileSystemPolicy(ctx context.Context, params *awsefs.DescribeFileSystemPolicyInput, optFns ...func(*awsefs.Options)) (*awsefs.DescribeFileSystemPolicyOutput, error)
	PutFileSystemPolicy(ctx context.Context, params *awsefs.PutFileSystemPolicyInput, optFns ...func(*awsefs.Options)) (*awsefs.PutFileSystemPolicyOutput, error)
}

// FileSystem is one EFS file system instance, addressed by file system id.
type FileSystem struct {
	exposure.Base
	api EFSAPI
}

func NewFileSystem(api EFSAPI, id, region, accountID string, log hclog.Logger) *FileSystem {
	return &FileSystem{
		Base: exposure.Base{
			Name:         id,
			Region:       region,
			AccountID:    accountID,
			Service:      "elasticfilesystem",
			ResourceType: "file-system",
			ResourceARN:  fmt.Sprintf("arn:aws:elasticfilesystem:%s:%s:file-system/%s", region, accountID, id),
			Flags: exposure.Flags{
				IncludeResourceBlock:                true,
				OverrideAccountIDInsteadOfPrincipal: true,
			},
			Log: log,
		},
		api: api,
	}
}

func (f *FileSystem) GetPolicy(ctx context.Context) exposure.PolicyReadResult {
	var out *awsefs.DescribeFileSystemPolicyOutput
	err := exposure.WithBackoff(ctx, func() error {
		var err error
		out, err = f.api.DescribeFileSystemPolicy(ctx, &awsefs.DescribeFileSystemPolicyInput{
			FileSystemId: aws.String(f.Name),
		})
		return err
	})
	if err != nil {
		var policyAbsent *efstypes.PolicyNotFound
		var fsGone *efstypes.FileSystemNotFound
		switch {
		case errors.As(err, &policyAbsent):
			return f.ReadResult(policy.Empty(), exposure.PolicyAbsent)
		case errors.As(err, &fsGone):
			f.Log.Error("file system no longer exists", "id", f.Name)
		default:
			f.Log.Error("reading file system policy", "id", f.Name, "error", err)
		}
		return f.ReadResult(policy.Empty(), exposure.PolicyReadFailed)
	}

	doc, err := policy.Parse(aws.ToString(out.Policy))
	if err != nil {
		f.Log.Error("unparseable file system policy", "id", f.Name, "error", err)
		return f.ReadResult(policy.Empty(), exposure.PolicyReadFailed)
	}
	return f.ReadResult(doc, exposure.PolicyPresent)
}

func (f *FileSystem) SetPolicy(ctx context.Context, evil policy.Document) exposure.MutationResult {
	raw, err := evil.Marshal()
	if err != nil {
		return f.WriteResult(err, evil)
	}
	err = exposure.WithBackoff(ctx, func() error {
		_, err := f.api.PutFileSystemPolicy(ctx, &awsefs.PutFileSystemPolicyInput{
			FileSystemId: aws.String(f.Name),
			Policy:       aws.String(raw),
		})
		return err
	})
	return f.WriteResult(err, evil)
}
