// Package s3bucket implements the S3 bucket resource kind. Bucket
// policies attach directly to the bucket; the injected grant names both
// the bucket and its object namespace so object-level actions resolve.
package s3bucket

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hashicorp/go-hclog"

	"github.com/hotpatch-sec/creel/internal/exposure"
	"github.com/hotpatch-sec/creel/internal/policy"
)

type S3API interface {
	ListBuckets(ctx context.Context, params *awss3.ListBucketsInput, optFns ...func(*awss3.Options)) (*awss3.ListBucketsOutput, error)
	GetBucketPolicy(ctx context.Context, params *awss3.GetBucketPolicyInput, optFns ...func(*awss3.Options)) (*awss3.GetBucketPolicyOutput, error)
	PutBucketPolicy(ctx context.Context, params *awss3.PutBucketPolicyInput, optFns ...func(*awss3.Options)) (*awss3.PutBucketPolicyOutput, error)
}

// Bucket is one S3 bucket instance.
type Bucket struct {
	exposure.Base
	api S3API
}

func NewBucket(api S3API, name, region, accountID string, log hclog.Logger) *Bucket {
	arn := fmt.Sprintf("arn:aws:s3:::%s", name)
	return &Bucket{
		Base: exposure.Base{
			Name:         name,
			Region:       region,
			AccountID:    accountID,
			Service:      "s3",
			ResourceType: "bucket",
			ResourceARN:  arn,
			Flags: exposure.Flags{
				IncludeResourceBlock:  true,
				OverrideResourceBlock: []string{arn, arn + "/*"},
			},
			Log: log,
		},
		api: api,
	}
}

func (b *Bucket) GetPolicy(ctx context.Context) exposure.PolicyReadResult {
	var out *awss3.GetBucketPolicyOutput
	err := exposure.WithBackoff(ctx, func() error {
		var err error
		out, err = b.api.GetBucketPolicy(ctx, &awss3.GetBucketPolicyInput{
			Bucket: aws.String(b.Name),
		})
		return err
	})
	if err != nil {
		switch exposure.ErrorCode(err) {
		case "NoSuchBucketPolicy":
			return b.ReadResult(policy.Empty(), exposure.PolicyAbsent)
		case "NoSuchBucket":
			b.Log.Error("bucket no longer exists", "name", b.Name)
		default:
			b.Log.Error("reading bucket policy", "name", b.Name, "error", err)
		}
		return b.ReadResult(policy.Empty(), exposure.PolicyReadFailed)
	}

	doc, err := policy.Parse(aws.ToString(out.Policy))
	if err != nil {
		b.Log.Error("unparseable bucket policy", "name", b.Name, "error", err)
		return b.ReadResult(policy.Empty(), exposure.PolicyReadFailed)
	}
	return b.ReadResult(doc, exposure.PolicyPresent)
}

func (b *Bucket) SetPolicy(ctx context.Context, evil policy.Document) exposure.MutationResult {
	raw, err := evil.Marshal()
	if err != nil {
		return b.WriteResult(err, evil)
	}
	err = exposure.WithBackoff(ctx, func() error {
		_, err := b.api.PutBucketPolicy(ctx, &awss3.PutBucketPolicyInput{
			Bucket: aws.String(b.Name),
			Policy: aws.String(raw),
		})
		return err
	})
	return b.WriteResult(err, evil)
}
