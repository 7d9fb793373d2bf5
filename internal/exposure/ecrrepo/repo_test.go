package ecrrepo

import (
	"context"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	awsecr "github.com/aws/aws-sdk-go-v2/service/ecr"
	ecrtypes "github.com/aws/aws-sdk-go-v2/service/ecr/types"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotpatch-sec/creel/internal/exposure"
)

type mockECRAPI struct {
	describeRepositoriesFunc func(ctx context.Context, params *awsecr.DescribeRepositoriesInput, optFns ...func(*awsecr.Options)) (*awsecr.DescribeRepositoriesOutput, error)
	getRepositoryPolicyFunc  func(ctx context.Context, params *awsecr.GetRepositoryPolicyInput, optFns ...func(*awsecr.Options)) (*awsecr.GetRepositoryPolicyOutput, error)
	setRepositoryPolicyFunc  func(ctx context.Context, params *awsecr.SetRepositoryPolicyInput, optFns ...func(*awsecr.Options)) (*awsecr.SetRepositoryPolicyOutput, error)
}

func (m *mockECRAPI) DescribeRepositories(ctx context.Context, params *awsecr.DescribeRepositoriesInput, optFns ...func(*awsecr.Options)) (*awsecr.DescribeRepositoriesOutput, error) {
	return m.describeRepositoriesFunc(ctx, params, optFns...)
}

func (m *mockECRAPI) GetRepositoryPolicy(ctx context.Context, params *awsecr.GetRepositoryPolicyInput, optFns ...func(*awsecr.Options)) (*awsecr.GetRepositoryPolicyOutput, error) {
	return m.getRepositoryPolicyFunc(ctx, params, optFns...)
}

func (m *mockECRAPI) SetRepositoryPolicy(ctx context.Context, params *awsecr.SetRepositoryPolicyInput, optFns ...func(*awsecr.Options)) (*awsecr.SetRepositoryPolicyOutput, error) {
	return m.setRepositoryPolicyFunc(ctx, params, optFns...)
}

func TestRepository_ARN(t *testing.T) {
	r := NewRepository(&mockECRAPI{}, "api", "us-east-1", "111122223333", hclog.NewNullLogger())
	assert.Equal(t, "arn:aws:ecr:us-east-1:111122223333:repository/api", r.ARN())
}

func TestGetPolicy_AbsentAndVanished(t *testing.T) {
	absent := &mockECRAPI{
		getRepositoryPolicyFunc: func(ctx context.Context, params *awsecr.GetRepositoryPolicyInput, optFns ...func(*awsecr.Options)) (*awsecr.GetRepositoryPolicyOutput, error) {
			return nil, &ecrtypes.RepositoryPolicyNotFoundException{Message: awssdk.String("no policy")}
		},
	}
	r := NewRepository(absent, "api", "us-east-1", "111122223333", hclog.NewNullLogger())
	res := r.GetPolicy(context.Background())
	assert.Equal(t, exposure.PolicyAbsent, res.State)
	require.NotNil(t, res.Policy.Statement)

	gone := &mockECRAPI{
		getRepositoryPolicyFunc: func(ctx context.Context, params *awsecr.GetRepositoryPolicyInput, optFns ...func(*awsecr.Options)) (*awsecr.GetRepositoryPolicyOutput, error) {
			return nil, &ecrtypes.RepositoryNotFoundException{Message: awssdk.String("repository deleted")}
		},
	}
	r = NewRepository(gone, "api", "us-east-1", "111122223333", hclog.NewNullLogger())
	res = r.GetPolicy(context.Background())
	assert.Equal(t, exposure.PolicyReadFailed, res.State)
}

func TestBackdoor_NoResourceBlock(t *testing.T) {
	mock := &mockECRAPI{
		getRepositoryPolicyFunc: func(ctx context.Context, params *awsecr.GetRepositoryPolicyInput, optFns ...func(*awsecr.Options)) (*awsecr.GetRepositoryPolicyOutput, error) {
			return nil, &ecrtypes.RepositoryPolicyNotFoundException{}
		},
	}
	r := NewRepository(mock, "api", "us-east-1", "111122223333", hclog.NewNullLogger())
	read := r.GetPolicy(context.Background())

	evil := r.Backdoor(read.Policy, "arn:aws:iam::999988887777:root", "")
	require.Len(t, evil.Statement, 1)
	// Repository policies bind implicitly; a Resource block is rejected.
	assert.True(t, evil.Statement[0].Resource.IsZero())
	assert.Equal(t, []string{"ecr:*"}, evil.Statement[0].Action.Items())
}

func TestSetPolicy_WritesPolicyText(t *testing.T) {
	var written string
	mock := &mockECRAPI{
		getRepositoryPolicyFunc: func(ctx context.Context, params *awsecr.GetRepositoryPolicyInput, optFns ...func(*awsecr.Options)) (*awsecr.GetRepositoryPolicyOutput, error) {
			return nil, &ecrtypes.RepositoryPolicyNotFoundException{}
		},
		setRepositoryPolicyFunc: func(ctx context.Context, params *awsecr.SetRepositoryPolicyInput, optFns ...func(*awsecr.Options)) (*awsecr.SetRepositoryPolicyOutput, error) {
			written = awssdk.ToString(params.PolicyText)
			return &awsecr.SetRepositoryPolicyOutput{}, nil
		},
	}
	r := NewRepository(mock, "api", "us-east-1", "111122223333", hclog.NewNullLogger())
	read := r.GetPolicy(context.Background())
	evil := r.Backdoor(read.Policy, "arn:aws:iam::999988887777:root", "")

	res := r.SetPolicy(context.Background(), evil)
	require.True(t, res.Success, res.Message)
	assert.Contains(t, written, "ecr:*")
}

func TestEnumerate_Paginates(t *testing.T) {
	call := 0
	mock := &mockECRAPI{
		describeRepositoriesFunc: func(ctx context.Context, params *awsecr.DescribeRepositoriesInput, optFns ...func(*awsecr.Options)) (*awsecr.DescribeRepositoriesOutput, error) {
			call++
			if call == 1 {
				return &awsecr.DescribeRepositoriesOutput{
					Repositories: []ecrtypes.Repository{
						{RepositoryName: awssdk.String("api"), RepositoryArn: awssdk.String("arn:aws:ecr:us-east-1:111122223333:repository/api")},
					},
					NextToken: awssdk.String("more"),
				}, nil
			}
			return &awsecr.DescribeRepositoriesOutput{
				Repositories: []ecrtypes.Repository{
					{RepositoryName: awssdk.String("worker"), RepositoryArn: awssdk.String("arn:aws:ecr:us-east-1:111122223333:repository/worker")},
				},
			}, nil
		},
	}

	cat := NewCatalog(mock, "111122223333", "us-east-1", hclog.NewNullLogger())
	resources, err := cat.Enumerate(context.Background())
	require.NoError(t, err)
	require.Len(t, resources, 2)
	assert.Equal(t, "worker", resources[1].Name)
}
