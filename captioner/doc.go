// Package captioner generates accessibility captions for a directory of
// images. It requires a model whose input modalities include images, loads
// each matching file, runs it through the caption prompt, and writes the
// results as a JSON or XML document next to the images.
package captioner
