package bedrock

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsbedrock "github.com/aws/aws-sdk-go-v2/service/bedrock"
	btypes "github.com/aws/aws-sdk-go-v2/service/bedrock/types"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	rtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

// ControlPlane is the slice of the Bedrock control plane the probe needs.
type ControlPlane interface {
	DescribeModel(ctx context.Context, modelID string) (*btypes.FoundationModelDetails, error)
}

// Invocation is one wire-ready request for the data plane.
type Invocation struct {
	ModelID     string
	ContentType string
	Accept      string
	Body        []byte
}

// StreamReader delivers the chunk sequence of a streaming invocation. The
// SDK's event stream satisfies it; fakes can script one in tests.
type StreamReader interface {
	Events() <-chan rtypes.ResponseStream
	Close() error
	Err() error
}

// DataPlane is the slice of the Bedrock runtime the dispatcher needs.
type DataPlane interface {
	Invoke(ctx context.Context, in Invocation) ([]byte, error)
	InvokeStream(ctx context.Context, in Invocation) (StreamReader, error)
}

// ControlClient adapts the SDK bedrock client to ControlPlane.
type ControlClient struct {
	api *awsbedrock.Client
}

// NewControlClient builds a control-plane client from resolved AWS config.
func NewControlClient(cfg aws.Config) *ControlClient {
	return &ControlClient{api: awsbedrock.NewFromConfig(cfg)}
}

// DescribeModel fetches live foundation model metadata.
func (c *ControlClient) DescribeModel(ctx context.Context, modelID string) (*btypes.FoundationModelDetails, error) {
	out, err := c.api.GetFoundationModel(ctx, &awsbedrock.GetFoundationModelInput{
		ModelIdentifier: aws.String(modelID),
	})
	if err != nil {
		return nil, err
	}
	if out.ModelDetails == nil {
		return nil, errors.New("model details missing from response")
	}
	return out.ModelDetails, nil
}

// RuntimeClient adapts the SDK bedrock-runtime client to DataPlane.
type RuntimeClient struct {
	api *bedrockruntime.Client
}

// NewRuntimeClient builds a data-plane client from resolved AWS config.
func NewRuntimeClient(cfg aws.Config) *RuntimeClient {
	return &RuntimeClient{api: bedrockruntime.NewFromConfig(cfg)}
}

// Invoke issues a synchronous model invocation and returns the raw body.
func (c *RuntimeClient) Invoke(ctx context.Context, in Invocation) ([]byte, error) {
	out, err := c.api.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(in.ModelID),
		ContentType: aws.String(in.ContentType),
		Accept:      aws.String(in.Accept),
		Body:        in.Body,
	})
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}

// InvokeStream opens a response-stream invocation.
func (c *RuntimeClient) InvokeStream(ctx context.Context, in Invocation) (StreamReader, error) {
	out, err := c.api.InvokeModelWithResponseStream(ctx, &bedrockruntime.InvokeModelWithResponseStreamInput{
		ModelId:     aws.String(in.ModelID),
		ContentType: aws.String(in.ContentType),
		Accept:      aws.String(in.Accept),
		Body:        in.Body,
	})
	if err != nil {
		return nil, err
	}
	return out.GetStream(), nil
}
