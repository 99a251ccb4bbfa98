// Package bedrock talks to the Amazon Bedrock control and data planes. It
// houses the capability probe (live model metadata: streaming support, image
// input) and the invocation dispatcher, which turns one built request into
// either a synchronous invoke or a response-stream invoke and returns the
// accumulated reply text in both cases.
//
// The AWS SDK clients sit behind two narrow interfaces (ControlPlane,
// DataPlane) so tests can script responses without touching the network.
package bedrock
