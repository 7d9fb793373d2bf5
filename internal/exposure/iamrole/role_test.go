package iamrole

import (
	"context"
	"net/url"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	awsiam "github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/aws/smithy-go"
	"github.com/hashicorp/go-hclog"

	"github.com/hotpatch-sec/creel/internal/exposure"
)

const trustDoc = `{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":"arn:aws:iam::111122223333:role/ci"},"Action":"sts:AssumeRole"}]}`

func TestRole_ARN(t *testing.T) {
	r := NewRole(&mockIAMAPI{}, "deploy-role", "us-east-1", "111122223333", hclog.NewNullLogger())
	want := "arn:aws:iam::111122223333:role/deploy-role"
	if r.ARN() != want {
		t.Errorf("ARN = %s, want %s", r.ARN(), want)
	}
}

func TestGetPolicy_DecodesTrustDocument(t *testing.T) {
	mock := &mockIAMAPI{
		getRoleFunc: func(ctx context.Context, params *awsiam.GetRoleInput, optFns ...func(*awsiam.Options)) (*awsiam.GetRoleOutput, error) {
			if awssdk.ToString(params.RoleName) != "deploy-role" {
				t.Errorf("RoleName = %s, want deploy-role", awssdk.ToString(params.RoleName))
			}
			// The provider URL-encodes the trust document.
			return &awsiam.GetRoleOutput{
				Role: &iamtypes.Role{
					RoleName:                 awssdk.String("deploy-role"),
					AssumeRolePolicyDocument: awssdk.String(url.QueryEscape(trustDoc)),
				},
			}, nil
		},
	}

	r := NewRole(mock, "deploy-role", "us-east-1", "111122223333", hclog.NewNullLogger())
	res := r.GetPolicy(context.Background())
	if !res.Success() {
		t.Fatal("Success = false, want true")
	}
	if len(res.Policy.Statement) != 1 {
		t.Fatalf("len(Statement) = %d, want 1", len(res.Policy.Statement))
	}
}

func TestGetPolicy_DeletedRoleReturnsEmptyBaseline(t *testing.T) {
	mock := &mockIAMAPI{
		getRoleFunc: func(ctx context.Context, params *awsiam.GetRoleInput, optFns ...func(*awsiam.Options)) (*awsiam.GetRoleOutput, error) {
			return nil, &iamtypes.NoSuchEntityException{Message: awssdk.String("The role with name deploy-role cannot be found")}
		},
	}

	r := NewRole(mock, "deploy-role", "us-east-1", "111122223333", hclog.NewNullLogger())
	res := r.GetPolicy(context.Background())
	if res.Success() {
		t.Error("Success = true, want false")
	}
	if res.Policy.Statement == nil {
		t.Error("Policy.Statement is nil, want structurally valid empty document")
	}
	if len(res.Policy.Statement) != 0 {
		t.Errorf("len(Statement) = %d, want 0", len(res.Policy.Statement))
	}
}

func TestGetPolicy_ProviderErrorReturnsEmptyBaseline(t *testing.T) {
	mock := &mockIAMAPI{
		getRoleFunc: func(ctx context.Context, params *awsiam.GetRoleInput, optFns ...func(*awsiam.Options)) (*awsiam.GetRoleOutput, error) {
			return nil, &smithy.GenericAPIError{Code: "AccessDenied", Message: "not authorized"}
		},
	}

	r := NewRole(mock, "deploy-role", "us-east-1", "111122223333", hclog.NewNullLogger())
	res := r.GetPolicy(context.Background())
	if res.Success() {
		t.Error("Success = true, want false")
	}
	if res.State != exposure.PolicyReadFailed {
		t.Errorf("State = %v, want PolicyReadFailed", res.State)
	}
}

func TestBackdoorTrustPolicy_DeployRoleScenario(t *testing.T) {
	mock := &mockIAMAPI{
		getRoleFunc: func(ctx context.Context, params *awsiam.GetRoleInput, optFns ...func(*awsiam.Options)) (*awsiam.GetRoleOutput, error) {
			return &awsiam.GetRoleOutput{
				Role: &iamtypes.Role{
					RoleName:                 awssdk.String("deploy-role"),
					AssumeRolePolicyDocument: awssdk.String(trustDoc),
				},
			}, nil
		},
	}

	r := NewRole(mock, "deploy-role", "us-east-1", "111122223333", hclog.NewNullLogger())
	read := r.GetPolicy(context.Background())
	evil := r.Backdoor(read.Policy, "arn:aws:iam::999988887777:user/evil-corp", "")

	if len(evil.Statement) != 2 {
		t.Fatalf("len(Statement) = %d, want 2", len(evil.Statement))
	}
	injected := evil.Statement[1]
	if got := injected.Action.Items(); len(got) != 1 || got[0] != "sts:AssumeRole" {
		t.Errorf("Action = %v, want [sts:AssumeRole]", got)
	}
	if !injected.Resource.IsZero() {
		t.Error("injected trust statement carries a Resource block")
	}
}

func TestSetPolicy_WritesSerializedDocument(t *testing.T) {
	var written string
	mock := &mockIAMAPI{
		getRoleFunc: func(ctx context.Context, params *awsiam.GetRoleInput, optFns ...func(*awsiam.Options)) (*awsiam.GetRoleOutput, error) {
			return &awsiam.GetRoleOutput{
				Role: &iamtypes.Role{AssumeRolePolicyDocument: awssdk.String(trustDoc)},
			}, nil
		},
		updateAssumeRolePolicyFunc: func(ctx context.Context, params *awsiam.UpdateAssumeRolePolicyInput, optFns ...func(*awsiam.Options)) (*awsiam.UpdateAssumeRolePolicyOutput, error) {
			written = awssdk.ToString(params.PolicyDocument)
			return &awsiam.UpdateAssumeRolePolicyOutput{}, nil
		},
	}

	r := NewRole(mock, "deploy-role", "us-east-1", "111122223333", hclog.NewNullLogger())
	read := r.GetPolicy(context.Background())
	evil := r.Backdoor(read.Policy, "arn:aws:iam::999988887777:user/evil-corp", "")

	res := r.SetPolicy(context.Background(), evil)
	if !res.Success {
		t.Fatalf("Success = false: %s", res.Message)
	}
	if res.Message != exposure.MessageSuccess {
		t.Errorf("Message = %s, want %s", res.Message, exposure.MessageSuccess)
	}
	if written == "" {
		t.Fatal("no document written")
	}
	if len(res.OriginalPolicy.Statement) != 1 || len(res.UpdatedPolicy.Statement) != 2 {
		t.Errorf("original/updated statement counts = %d/%d, want 1/2",
			len(res.OriginalPolicy.Statement), len(res.UpdatedPolicy.Statement))
	}
}

func TestSetPolicy_ProviderRejectionReported(t *testing.T) {
	providerErr := &smithy.GenericAPIError{
		Code:    "MalformedPolicyDocument",
		Message: "Policy document should not specify a resource",
	}
	mock := &mockIAMAPI{
		getRoleFunc: func(ctx context.Context, params *awsiam.GetRoleInput, optFns ...func(*awsiam.Options)) (*awsiam.GetRoleOutput, error) {
			return &awsiam.GetRoleOutput{
				Role: &iamtypes.Role{AssumeRolePolicyDocument: awssdk.String(trustDoc)},
			}, nil
		},
		updateAssumeRolePolicyFunc: func(ctx context.Context, params *awsiam.UpdateAssumeRolePolicyInput, optFns ...func(*awsiam.Options)) (*awsiam.UpdateAssumeRolePolicyOutput, error) {
			return nil, providerErr
		},
	}

	r := NewRole(mock, "deploy-role", "us-east-1", "111122223333", hclog.NewNullLogger())
	read := r.GetPolicy(context.Background())
	evil := r.Backdoor(read.Policy, "arn:aws:iam::999988887777:user/evil-corp", "")

	res := r.SetPolicy(context.Background(), evil)
	if res.Success {
		t.Fatal("Success = true, want false")
	}
	if res.Message != providerErr.Error() {
		t.Errorf("Message = %q, want provider error text %q", res.Message, providerErr.Error())
	}
	if len(res.OriginalPolicy.Statement) != 1 {
		t.Error("failure result missing original policy")
	}
	if len(res.UpdatedPolicy.Statement) != 2 {
		t.Error("failure result missing updated policy")
	}
}
