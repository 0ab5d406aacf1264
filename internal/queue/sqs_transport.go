package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsmiddleware "github.com/aws/aws-sdk-go-v2/aws/middleware"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/smithy-go/middleware"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

// SQSAPI is the slice of *sqs.Client the transport needs.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSTransport sends message bodies to an Amazon SQS queue.
// The client is built and owned by the caller and may be shared.
type SQSTransport struct {
	client SQSAPI
}

func NewSQSTransport(client SQSAPI) *SQSTransport {
	return &SQSTransport{client: client}
}

// Send issues one SendMessage call and checks the raw HTTP status.
func (t *SQSTransport) Send(ctx context.Context, req SendRequest) (SendResponse, error) {
	in := &sqs.SendMessageInput{
		QueueUrl:    aws.String(req.QueueURL),
		MessageBody: aws.String(req.Body),
	}
	if req.GroupID != "" {
		in.MessageGroupId = aws.String(req.GroupID)
	}

	out, err := t.client.SendMessage(ctx, in)
	if err != nil {
		var respErr *awshttp.ResponseError
		if errors.As(err, &respErr) {
			return SendResponse{StatusCode: respErr.HTTPStatusCode()},
				fmt.Errorf("sqs send message with code %d: %w", respErr.HTTPStatusCode(), err)
		}
		return SendResponse{}, fmt.Errorf("sqs send message: %w", err)
	}

	resp := SendResponse{
		StatusCode: rawStatusCode(out.ResultMetadata),
		MessageID:  aws.ToString(out.MessageId),
	}
	if resp.StatusCode != StatusAccepted {
		return resp, fmt.Errorf("failed sending message to queue with code %d", resp.StatusCode)
	}
	return resp, nil
}

// rawStatusCode digs the HTTP status out of the operation metadata.
// Returns 0 when the SDK did not record a raw response.
func rawStatusCode(md middleware.Metadata) int {
	raw, ok := awsmiddleware.GetRawResponse(md).(*smithyhttp.Response)
	if !ok || raw == nil || raw.Response == nil {
		return 0
	}
	return raw.StatusCode
}

// compile-time check that SQSTransport implements Transport
var _ Transport = (*SQSTransport)(nil)
