package bedrock

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	rtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/aws/smithy-go"

	"github.com/darko-mesaros/bedrust/logging"
	"github.com/darko-mesaros/bedrust/model"
)

// InvokerOptions configures the dispatcher: where live output is echoed and
// where diagnostics go.
type InvokerOptions struct {
	// Sink receives the reply text as it arrives: incrementally on the
	// streaming path, all at once on the synchronous path.
	Sink   io.Writer
	Logger logging.Logger
}

// Invoker dispatches one built request against the data plane, choosing the
// streaming or synchronous path from the capability probe's answer, and
// returns the full accumulated reply text. It never retries; retry policy
// belongs to the caller.
type Invoker struct {
	data    DataPlane
	probe   *Probe
	catalog *model.Catalog
	sink    io.Writer
	logger  logging.Logger
}

// NewInvoker constructs an Invoker. By default output is echoed to stdout.
func NewInvoker(data DataPlane, probe *Probe, catalog *model.Catalog, optFns ...func(o *InvokerOptions)) *Invoker {
	opts := InvokerOptions{Sink: os.Stdout}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Invoker{
		data:    data,
		probe:   probe,
		catalog: catalog,
		sink:    opts.Sink,
		logger:  logging.OrNoOp(opts.Logger),
	}
}

// Ask invokes the model behind opts and returns the accumulated reply text,
// echoing it to the sink. Models whose metadata advertises response streaming
// are invoked over a stream; everything else takes the synchronous path. A
// failed capability query downgrades to the synchronous path with a warning
// instead of aborting the turn.
func (i *Invoker) Ask(ctx context.Context, opts model.Options) (string, error) {
	if i.capabilities(ctx, opts.ModelID).Streaming {
		return i.askStream(ctx, opts)
	}
	return i.askOnce(ctx, opts, true)
}

// AskQuiet invokes the model synchronously without echoing to the sink. Used
// for housekeeping calls (title and summary generation) that are not part of
// the visible conversation.
func (i *Invoker) AskQuiet(ctx context.Context, opts model.Options) (string, error) {
	return i.askOnce(ctx, opts, false)
}

func (i *Invoker) capabilities(ctx context.Context, modelID string) Capabilities {
	caps, err := i.probe.Capabilities(ctx, modelID)
	if err != nil {
		// Documented policy: a failed query means "feature unsupported",
		// trading streamed output for a turn that still completes.
		i.logger.Warn("capability query failed, assuming features unsupported", "model", modelID, "error", err)
		return Capabilities{}
	}
	return caps
}

func (i *Invoker) askOnce(ctx context.Context, opts model.Options, echo bool) (string, error) {
	body, err := opts.MarshalBody()
	if err != nil {
		return "", fmt.Errorf("marshaling request body for %q: %w", opts.ModelID, err)
	}
	raw, err := i.data.Invoke(ctx, Invocation{
		ModelID:     opts.ModelID,
		ContentType: opts.ContentType,
		Accept:      opts.Accept,
		Body:        body,
	})
	if err != nil {
		return "", classify(err, opts.ModelID)
	}
	text, err := i.catalog.Decode(opts.ModelID, raw, false)
	if err != nil {
		return "", err
	}
	if echo {
		fmt.Fprintln(i.sink, text)
	}
	return text, nil
}

func (i *Invoker) askStream(ctx context.Context, opts model.Options) (string, error) {
	body, err := opts.MarshalBody()
	if err != nil {
		return "", fmt.Errorf("marshaling request body for %q: %w", opts.ModelID, err)
	}
	stream, err := i.data.InvokeStream(ctx, Invocation{
		ModelID:     opts.ModelID,
		ContentType: opts.ContentType,
		Accept:      opts.Accept,
		Body:        body,
	})
	if err != nil {
		return "", classify(err, opts.ModelID)
	}
	defer stream.Close()

	var sb strings.Builder
	for event := range stream.Events() {
		chunk, ok := event.(*rtypes.ResponseStreamMemberChunk)
		if !ok {
			i.logger.Warn("ignoring unexpected stream event", "model", opts.ModelID, "event", fmt.Sprintf("%T", event))
			continue
		}
		fragment, err := i.catalog.Decode(opts.ModelID, chunk.Value.Bytes, true)
		if err != nil {
			return "", err
		}
		if fragment != "" {
			fmt.Fprint(i.sink, fragment)
			sb.WriteString(fragment)
		}
	}
	if err := stream.Err(); err != nil {
		return "", classify(err, opts.ModelID)
	}
	fmt.Fprintln(i.sink)
	return sb.String(), nil
}

// classify adds a human-readable hint for access/permission failures, which
// in Bedrock almost always mean the model has not been enabled for the
// account in this region. Everything else propagates unchanged.
func classify(err error, modelID string) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "AccessDeniedException" {
		return fmt.Errorf("invoking %q: %w (model access must be enabled per-region in the Bedrock console)", modelID, err)
	}
	return err
}
