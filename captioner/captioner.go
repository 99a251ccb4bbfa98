package captioner

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/darko-mesaros/bedrust/bedrock"
	"github.com/darko-mesaros/bedrust/logging"
	"github.com/darko-mesaros/bedrust/model"
)

// ErrImagesUnsupported indicates the selected model cannot consume images.
var ErrImagesUnsupported = errors.New("the selected model does not support images, pick one that does")

// Format selects the output document format.
type Format string

const (
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
)

// Caption pairs an image path with its generated caption.
type Caption struct {
	Path    string `json:"path" xml:"path"`
	Caption string `json:"caption" xml:"caption"`
}

type captionsDoc struct {
	XMLName  xml.Name  `xml:"captions"`
	Captions []Caption `xml:"image"`
}

// Asker runs one prepared invocation synchronously and returns the full
// reply text.
type Asker interface {
	AskQuiet(ctx context.Context, opts model.Options) (string, error)
}

// CapabilityProber answers what a model can do.
type CapabilityProber interface {
	Capabilities(ctx context.Context, modelID string) (bedrock.Capabilities, error)
}

// Options configures a Captioner.
type Options struct {
	Logger logging.Logger
}

// Captioner captions every matching image in a directory.
type Captioner struct {
	asker      Asker
	probe      CapabilityProber
	catalog    *model.Catalog
	prompt     string
	extensions []string
	logger     logging.Logger
}

// New constructs a Captioner. prompt is the caption instruction and
// extensions the image file extensions to pick up (without the dot).
func New(asker Asker, probe CapabilityProber, catalog *model.Catalog, prompt string, extensions []string, optFns ...func(o *Options)) *Captioner {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Captioner{
		asker:      asker,
		probe:      probe,
		catalog:    catalog,
		prompt:     prompt,
		extensions: extensions,
		logger:     logging.OrNoOp(opts.Logger),
	}
}

// Run captions every image in dir with modelID and writes the result
// document into dir. It returns the path of the written document.
func (c *Captioner) Run(ctx context.Context, dir, modelID string, format Format) (string, error) {
	caps, err := c.probe.Capabilities(ctx, modelID)
	if err != nil {
		return "", fmt.Errorf("determining model features: %w", err)
	}
	if !caps.Images {
		return "", ErrImagesUnsupported
	}

	files, err := ListImages(dir, c.extensions)
	if err != nil {
		return "", err
	}
	c.logger.Info("captioning images", "dir", dir, "count", len(files))

	captions := make([]Caption, 0, len(files))
	for _, path := range files {
		caption, err := c.captionOne(ctx, path, modelID)
		if err != nil {
			return "", fmt.Errorf("captioning %q: %w", path, err)
		}
		c.logger.Debug("captioned image", "path", path)
		captions = append(captions, Caption{Path: path, Caption: caption})
	}

	out := filepath.Join(dir, "captions."+string(format))
	if err := writeCaptions(out, captions, format); err != nil {
		return "", err
	}
	return out, nil
}

func (c *Captioner) captionOne(ctx context.Context, path, modelID string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	in := model.Input{
		Question: c.prompt,
		Image: &model.Image{
			Format: strings.TrimPrefix(filepath.Ext(path), "."),
			Data:   data,
		},
	}
	opts, err := c.catalog.Build(modelID, in)
	if err != nil {
		return "", err
	}
	return c.asker.AskQuiet(ctx, opts)
}

// ListImages returns the files in dir (non-recursive) whose extension is in
// extensions, sorted by name.
func ListImages(dir string, extensions []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing images in %q: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.TrimPrefix(filepath.Ext(e.Name()), ".")
		for _, want := range extensions {
			if strings.EqualFold(ext, want) {
				files = append(files, filepath.Join(dir, e.Name()))
				break
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

func writeCaptions(path string, captions []Caption, format Format) error {
	var data []byte
	var err error
	switch format {
	case FormatXML:
		data, err = xml.MarshalIndent(captionsDoc{Captions: captions}, "", "  ")
	case FormatJSON:
		data, err = json.MarshalIndent(captions, "", "  ")
	default:
		return fmt.Errorf("unknown caption output format %q", format)
	}
	if err != nil {
		return fmt.Errorf("serializing captions: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing captions document: %w", err)
	}
	return nil
}
