// Package sqsqueue implements the SQS queue resource kind. The queue
// policy lives in the Policy attribute rather than behind a dedicated
// policy API.
package sqsqueue

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/hashicorp/go-hclog"

	"github.com/hotpatch-sec/creel/internal/exposure"
	"github.com/hotpatch-sec/creel/internal/policy"
)

type SQSAPI interface {
	ListQueues(ctx context.Context, params *awssqs.ListQueuesInput, optFns ...func(*awssqs.Options)) (*awssqs.ListQueuesOutput, error)
	GetQueueUrl(ctx context.Context, params *awssqs.GetQueueUrlInput, optFns ...func(*awssqs.Options)) (*awssqs.GetQueueUrlOutput, error)
	GetQueueAttributes(ctx context.Context, params *awssqs.GetQueueAttributesInput, optFns ...func(*awssqs.Options)) (*awssqs.GetQueueAttributesOutput, error)
	SetQueueAttributes(ctx context.Context, params *awssqs.SetQueueAttributesInput, optFns ...func(*awssqs.Options)) (*awssqs.SetQueueAttributesOutput, error)
}

// Queue is one SQS queue instance. The queue URL is resolved from the
// name on first use and cached.
type Queue struct {
	exposure.Base
	api      SQSAPI
	queueURL string
}

func NewQueue(api SQSAPI, name, region, accountID string, log hclog.Logger) *Queue {
	return &Queue{
		Base: exposure.Base{
			Name:         name,
			Region:       region,
			AccountID:    accountID,
			Service:      "sqs",
			ResourceType: "queue",
			ResourceARN:  fmt.Sprintf("arn:aws:sqs:%s:%s:%s", region, accountID, name),
			Flags:        exposure.DefaultFlags(),
			Log:          log,
		},
		api: api,
	}
}

func (q *Queue) url(ctx context.Context) (string, error) {
	if q.queueURL != "" {
		return q.queueURL, nil
	}
	var out *awssqs.GetQueueUrlOutput
	err := exposure.WithBackoff(ctx, func() error {
		var err error
		out, err = q.api.GetQueueUrl(ctx, &awssqs.GetQueueUrlInput{
			QueueName: aws.String(q.Name),
		})
		return err
	})
	if err != nil {
		return "", err
	}
	q.queueURL = aws.ToString(out.QueueUrl)
	return q.queueURL, nil
}

func (q *Queue) GetPolicy(ctx context.Context) exposure.PolicyReadResult {
	url, err := q.url(ctx)
	if err != nil {
		var notFound *sqstypes.QueueDoesNotExist
		if errors.As(err, &notFound) {
			q.Log.Error("queue no longer exists", "name", q.Name)
		} else {
			q.Log.Error("resolving queue url", "name", q.Name, "error", err)
		}
		return q.ReadResult(policy.Empty(), exposure.PolicyReadFailed)
	}

	var out *awssqs.GetQueueAttributesOutput
	err = exposure.WithBackoff(ctx, func() error {
		var err error
		out, err = q.api.GetQueueAttributes(ctx, &awssqs.GetQueueAttributesInput{
			QueueUrl:       aws.String(url),
			AttributeNames: []sqstypes.QueueAttributeName{sqstypes.QueueAttributeNamePolicy},
		})
		return err
	})
	if err != nil {
		q.Log.Error("reading queue policy", "name", q.Name, "error", err)
		return q.ReadResult(policy.Empty(), exposure.PolicyReadFailed)
	}

	raw := out.Attributes[string(sqstypes.QueueAttributeNamePolicy)]
	if raw == "" {
		return q.ReadResult(policy.Empty(), exposure.PolicyAbsent)
	}
	doc, err := policy.Parse(raw)
	if err != nil {
		q.Log.Error("unparseable queue policy", "name", q.Name, "error", err)
		return q.ReadResult(policy.Empty(), exposure.PolicyReadFailed)
	}
	return q.ReadResult(doc, exposure.PolicyPresent)
}

func (q *Queue) SetPolicy(ctx context.Context, evil policy.Document) exposure.MutationResult {
	raw, err := evil.Marshal()
	if err != nil {
		return q.WriteResult(err, evil)
	}
	url, err := q.url(ctx)
	if err != nil {
		return q.WriteResult(err, evil)
	}
	err = exposure.WithBackoff(ctx, func() error {
		_, err := q.api.SetQueueAttributes(ctx, &awssqs.SetQueueAttributesInput{
			QueueUrl: aws.String(url),
			Attributes: map[string]string{
				string(sqstypes.QueueAttributeNamePolicy): raw,
			},
		})
		return err
	})
	return q.WriteResult(err, evil)
}
