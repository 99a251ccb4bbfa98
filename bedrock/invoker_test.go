package bedrock

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	btypes "github.com/aws/aws-sdk-go-v2/service/bedrock/types"
	rtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darko-mesaros/bedrust/model"
)

// Interface compliance (compile-time assertions)
var (
	_ ControlPlane = (*ControlClient)(nil)
	_ DataPlane    = (*RuntimeClient)(nil)
	_ ControlPlane = (*fakeControl)(nil)
	_ DataPlane    = (*fakeData)(nil)
)

type fakeControl struct {
	details *btypes.FoundationModelDetails
	err     error
}

func (f *fakeControl) DescribeModel(context.Context, string) (*btypes.FoundationModelDetails, error) {
	return f.details, f.err
}

type fakeStream struct {
	ch  chan rtypes.ResponseStream
	err error
}

func newFakeStream(err error, chunks ...[]byte) *fakeStream {
	ch := make(chan rtypes.ResponseStream, len(chunks))
	for _, c := range chunks {
		ch <- &rtypes.ResponseStreamMemberChunk{Value: rtypes.PayloadPart{Bytes: c}}
	}
	close(ch)
	return &fakeStream{ch: ch, err: err}
}

func (f *fakeStream) Events() <-chan rtypes.ResponseStream { return f.ch }
func (f *fakeStream) Close() error                         { return nil }
func (f *fakeStream) Err() error                           { return f.err }

type fakeData struct {
	syncBody []byte
	syncErr  error
	stream   *fakeStream

	invokeCalls int
	streamCalls int
	lastBody    []byte
}

func (f *fakeData) Invoke(_ context.Context, in Invocation) ([]byte, error) {
	f.invokeCalls++
	f.lastBody = in.Body
	return f.syncBody, f.syncErr
}

func (f *fakeData) InvokeStream(_ context.Context, in Invocation) (StreamReader, error) {
	f.streamCalls++
	f.lastBody = in.Body
	return f.stream, nil
}

func streamingDetails(streaming bool) *btypes.FoundationModelDetails {
	return &btypes.FoundationModelDetails{ResponseStreamingSupported: aws.Bool(streaming)}
}

func buildOpts(t *testing.T, catalog *model.Catalog, modelID, question string) model.Options {
	t.Helper()
	opts, err := catalog.Build(modelID, model.Input{Question: question})
	require.NoError(t, err)
	return opts
}

func TestProbe_Capabilities(t *testing.T) {
	probe := NewProbe(&fakeControl{details: &btypes.FoundationModelDetails{
		ResponseStreamingSupported: aws.Bool(true),
		InputModalities:            []btypes.ModelModality{btypes.ModelModalityText, btypes.ModelModalityImage},
	}})

	caps, err := probe.Capabilities(context.Background(), "anthropic.claude-3-sonnet-20240229-v1:0")
	require.NoError(t, err)
	assert.True(t, caps.Streaming)
	assert.True(t, caps.Images)
}

func TestProbe_QueryFailure(t *testing.T) {
	probe := NewProbe(&fakeControl{err: errors.New("throttled")})
	_, err := probe.Capabilities(context.Background(), "amazon.titan-text-express-v1")
	assert.ErrorContains(t, err, "capability query")
}

func TestInvoker_SynchronousPath(t *testing.T) {
	catalog := model.NewCatalog()
	data := &fakeData{syncBody: []byte(`{"generation":"4"}`)}
	probe := NewProbe(&fakeControl{details: streamingDetails(false)})
	var sink bytes.Buffer
	inv := NewInvoker(data, probe, catalog, func(o *InvokerOptions) { o.Sink = &sink })

	text, err := inv.Ask(context.Background(), buildOpts(t, catalog, "meta.llama2-70b-chat-v1", "What is 2+2?"))
	require.NoError(t, err)
	assert.Equal(t, "4", text)
	assert.Equal(t, "4\n", sink.String())
	assert.Equal(t, 1, data.invokeCalls)
	assert.Zero(t, data.streamCalls)
	assert.Contains(t, string(data.lastBody), `"prompt":"What is 2+2?"`)
}

func TestInvoker_StreamingPath(t *testing.T) {
	catalog := model.NewCatalog()
	data := &fakeData{stream: newFakeStream(nil,
		[]byte(`{"type":"message_start","message":{}}`),
		[]byte(`{"type":"content_block_delta","delta":{"type":"text_delta","text":"2+2 "}}`),
		[]byte(`{"type":"content_block_delta","delta":{"type":"text_delta","text":"is 4"}}`),
		[]byte(`{"type":"message_stop"}`),
	)}
	probe := NewProbe(&fakeControl{details: streamingDetails(true)})
	var sink bytes.Buffer
	inv := NewInvoker(data, probe, catalog, func(o *InvokerOptions) { o.Sink = &sink })

	text, err := inv.Ask(context.Background(), buildOpts(t, catalog, "anthropic.claude-3-sonnet-20240229-v1:0", "What is 2+2?"))
	require.NoError(t, err)
	assert.Equal(t, "2+2 is 4", text)
	assert.Equal(t, "2+2 is 4\n", sink.String())
	assert.Equal(t, 1, data.streamCalls)
	assert.Zero(t, data.invokeCalls)
}

func TestInvoker_CapabilityFailureDowngradesToSync(t *testing.T) {
	catalog := model.NewCatalog()
	data := &fakeData{syncBody: []byte(`{"completion":"4"}`)}
	probe := NewProbe(&fakeControl{err: errors.New("metadata unavailable")})
	var sink bytes.Buffer
	inv := NewInvoker(data, probe, catalog, func(o *InvokerOptions) { o.Sink = &sink })

	text, err := inv.Ask(context.Background(), buildOpts(t, catalog, "anthropic.claude-v2", "What is 2+2?"))
	require.NoError(t, err)
	assert.Equal(t, "4", text)
	assert.Equal(t, 1, data.invokeCalls)
	assert.Zero(t, data.streamCalls)
}

func TestInvoker_StreamTailError(t *testing.T) {
	catalog := model.NewCatalog()
	data := &fakeData{stream: newFakeStream(errors.New("connection reset"),
		[]byte(`{"outputText":"part"}`),
	)}
	probe := NewProbe(&fakeControl{details: streamingDetails(true)})
	inv := NewInvoker(data, probe, catalog, func(o *InvokerOptions) { o.Sink = &bytes.Buffer{} })

	_, err := inv.Ask(context.Background(), buildOpts(t, catalog, "amazon.titan-text-express-v1", "q"))
	assert.ErrorContains(t, err, "connection reset")
}

func TestInvoker_AccessDeniedHint(t *testing.T) {
	catalog := model.NewCatalog()
	data := &fakeData{syncErr: &smithy.GenericAPIError{Code: "AccessDeniedException", Message: "no access"}}
	probe := NewProbe(&fakeControl{details: streamingDetails(false)})
	inv := NewInvoker(data, probe, catalog, func(o *InvokerOptions) { o.Sink = &bytes.Buffer{} })

	_, err := inv.Ask(context.Background(), buildOpts(t, catalog, "anthropic.claude-v2", "q"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access must be enabled per-region")

	// Non-access errors propagate unchanged.
	plain := errors.New("dial tcp: timeout")
	data = &fakeData{syncErr: plain}
	inv = NewInvoker(data, probe, catalog, func(o *InvokerOptions) { o.Sink = &bytes.Buffer{} })
	_, err = inv.Ask(context.Background(), buildOpts(t, catalog, "anthropic.claude-v2", "q"))
	assert.Equal(t, plain, err)
}

func TestInvoker_AskQuietDoesNotEcho(t *testing.T) {
	catalog := model.NewCatalog()
	data := &fakeData{syncBody: []byte(`{"completion":"a short title"}`)}
	probe := NewProbe(&fakeControl{details: streamingDetails(true)})
	var sink bytes.Buffer
	inv := NewInvoker(data, probe, catalog, func(o *InvokerOptions) { o.Sink = &sink })

	text, err := inv.AskQuiet(context.Background(), buildOpts(t, catalog, "anthropic.claude-v2", "summarize this"))
	require.NoError(t, err)
	assert.Equal(t, "a short title", text)
	assert.Empty(t, sink.String())
	// Quiet path is always synchronous, even for stream-capable models.
	assert.Equal(t, 1, data.invokeCalls)
	assert.Zero(t, data.streamCalls)
}

func TestInvoker_DecodeErrorSurfacesModelID(t *testing.T) {
	catalog := model.NewCatalog()
	data := &fakeData{syncBody: []byte(`not json`)}
	probe := NewProbe(&fakeControl{details: streamingDetails(false)})
	inv := NewInvoker(data, probe, catalog, func(o *InvokerOptions) { o.Sink = &bytes.Buffer{} })

	_, err := inv.Ask(context.Background(), buildOpts(t, catalog, "anthropic.claude-v2", "q"))
	var decodeErr *model.DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, "anthropic.claude-v2", decodeErr.ModelID)
}
