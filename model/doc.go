// Package model defines the catalog of supported Bedrock foundation models
// and the pure transformations around them: building a per-family request
// body from one canonical question/message list, and extracting the reply
// text from a per-family response or streaming chunk.
//
// Core goals:
//   - One canonical Input regardless of which wire family is targeted
//   - A closed set of request body variants (Body), one per wire family
//   - Builder and decoder registered once per catalog entry, so no call site
//     grows a match over model identifiers
//   - Strongly typed decoding for fixed shapes; a generic JSON probe only for
//     the non-uniform streaming delta events
//
// The package performs no I/O. Invocation lives in the bedrock package.
package model
