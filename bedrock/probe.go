package bedrock

import (
	"context"
	"fmt"

	btypes "github.com/aws/aws-sdk-go-v2/service/bedrock/types"
)

// Capabilities reports the features a model supports per live control-plane
// metadata.
type Capabilities struct {
	Streaming bool
	Images    bool
}

// Probe queries model capabilities before invocation. Results are not cached:
// model availability differs per region and account and can change underneath
// a long-lived session.
type Probe struct {
	control ControlPlane
}

// NewProbe constructs a capability probe over the given control plane.
func NewProbe(control ControlPlane) *Probe {
	return &Probe{control: control}
}

// Capabilities returns streaming and image-input support for a model. A
// failed metadata lookup is returned as an error; callers decide whether to
// treat that as fatal or downgrade to "unsupported".
func (p *Probe) Capabilities(ctx context.Context, modelID string) (Capabilities, error) {
	details, err := p.control.DescribeModel(ctx, modelID)
	if err != nil {
		return Capabilities{}, fmt.Errorf("capability query for %q failed: %w", modelID, err)
	}

	var caps Capabilities
	if details.ResponseStreamingSupported != nil {
		caps.Streaming = *details.ResponseStreamingSupported
	}
	for _, m := range details.InputModalities {
		if m == btypes.ModelModalityImage {
			caps.Images = true
		}
	}
	return caps, nil
}
