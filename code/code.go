package code

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/darko-mesaros/bedrust/logging"
)

// RulesFile, when present at the project root, overrides the default review
// prompt with project-specific instructions.
const RulesFile = ".bedrustrules"

const sourcePlaceholder = "{SOURCE_CODE}"

const defaultReviewPrompt = `You are an experienced software engineer reviewing a project. ` +
	`Study the source code below, then answer questions about it: its structure, potential bugs, ` +
	`security issues, and improvements. Be specific and reference filenames when you do.

Here are the files:
` + sourcePlaceholder

// maxFileSize caps how much of a single file is ingested, to keep large
// generated files from blowing the model's context.
const maxFileSize = 256 * 1024

// Options configures a Reviewer.
type Options struct {
	Logger logging.Logger
}

// Reviewer builds the opening prompt of a code review chat.
type Reviewer struct {
	ignore []string
	logger logging.Logger
}

// NewReviewer constructs a Reviewer. ignore lists directory names that are
// skipped wholesale during the walk.
func NewReviewer(ignore []string, optFns ...func(o *Options)) *Reviewer {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Reviewer{
		ignore: ignore,
		logger: logging.OrNoOp(opts.Logger),
	}
}

// Prompt walks the project at dir and returns the review prompt containing
// the tagged source. When a .bedrustrules file exists at the project root its
// content replaces the default instructions.
func (r *Reviewer) Prompt(dir string) (string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("opening project directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%q is not a directory", dir)
	}

	source, count, err := r.collect(dir)
	if err != nil {
		return "", err
	}
	r.logger.Info("collected source files for review", "dir", dir, "files", count)

	template := defaultReviewPrompt
	if rules, err := os.ReadFile(filepath.Join(dir, RulesFile)); err == nil {
		template = strings.TrimSpace(string(rules)) + "\n\nHere are the files:\n" + sourcePlaceholder
	}
	return strings.Replace(template, sourcePlaceholder, source, 1), nil
}

// collect walks dir and concatenates every readable text file, each wrapped
// in filename and contents tags.
func (r *Reviewer) collect(dir string) (string, int, error) {
	var sb strings.Builder
	count := 0

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != dir && (r.ignored(name) || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.Size() > maxFileSize {
			r.logger.Warn("skipping oversized file", "path", path, "size", info.Size())
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if !isText(data) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = path
		}
		fmt.Fprintf(&sb, "\n<filename>%s</filename>\n<file_contents>\n%s\n</file_contents>\n", rel, string(data))
		count++
		return nil
	})
	if err != nil {
		return "", 0, fmt.Errorf("walking project directory: %w", err)
	}
	return sb.String(), count, nil
}

func (r *Reviewer) ignored(name string) bool {
	for _, ig := range r.ignore {
		if name == ig {
			return true
		}
	}
	return false
}

// isText reports whether data looks like text rather than a binary blob, by
// checking for NUL bytes in the head of the file.
func isText(data []byte) bool {
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	for _, b := range head {
		if b == 0 {
			return false
		}
	}
	return true
}
