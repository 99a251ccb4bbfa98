package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/darko-mesaros/bedrust/logging"
	"github.com/darko-mesaros/bedrust/retry"
)

// Housekeeping prompts. The transcript is substituted for %s.
const (
	titlePromptTemplate = `Generate a short title for this conversation, at most five words. ` +
		`Respond with the title only, no quotes and no explanation.

Conversation:
%s`

	summaryPromptTemplate = `Summarize this conversation in at most three sentences. ` +
		`Respond with the summary only.

Conversation:
%s`
)

// Generator runs one housekeeping prompt through the inference service and
// returns the reply text. The wiring layer adapts the invocation dispatcher
// (with the housekeeping model) into this.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// StoreOptions configures a Store.
type StoreOptions struct {
	// Retry governs the housekeeping calls. Defaults to 3 attempts with
	// exponential backoff.
	Retry  retry.Policy
	Logger logging.Logger
}

// Store persists conversations as JSON documents in a directory. Filenames
// are derived from a model-generated title plus a random suffix, since titles
// are not guaranteed unique.
type Store struct {
	dir    string
	gen    Generator
	retry  retry.Policy
	logger logging.Logger
}

// NewStore constructs a Store rooted at dir.
func NewStore(dir string, gen Generator, optFns ...func(o *StoreOptions)) *Store {
	opts := StoreOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Store{
		dir:    dir,
		gen:    gen,
		retry:  opts.Retry,
		logger: logging.OrNoOp(opts.Logger),
	}
}

// Save generates the housekeeping metadata and writes the conversation
// document, returning its filename. On the first save of a session it
// generates a title (which determines the filename) and then a summary; later
// saves regenerate only the summary and overwrite the same file. When the
// retry policy is exhausted the in-memory conversation is left intact so the
// user can try again.
func (s *Store) Save(ctx context.Context, c *Conversation) (string, error) {
	transcript := c.Transcript()

	if c.filename == "" {
		s.logger.Info("generating a title for this conversation")
		title, err := retry.Do(ctx, s.retry, func(ctx context.Context) (string, error) {
			return s.gen.Generate(ctx, fmt.Sprintf(titlePromptTemplate, transcript))
		})
		if err != nil {
			return "", fmt.Errorf("generating conversation title: %w", err)
		}
		title = strings.TrimSpace(title)
		c.Title = &title
		c.filename = fmt.Sprintf("%s_%s.json", sanitizeTitle(title), uuid.NewString()[:8])
	}

	s.logger.Info("generating a summary for this conversation")
	summary, err := retry.Do(ctx, s.retry, func(ctx context.Context) (string, error) {
		return s.gen.Generate(ctx, fmt.Sprintf(summaryPromptTemplate, transcript))
	})
	if err != nil {
		return "", fmt.Errorf("generating conversation summary: %w", err)
	}
	summary = strings.TrimSpace(summary)
	c.Summary = &summary

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serializing conversation: %w", err)
	}
	if err := writeAtomic(filepath.Join(s.dir, c.filename), data); err != nil {
		return "", fmt.Errorf("writing conversation document: %w", err)
	}
	return c.filename, nil
}

// Load reads a persisted document and returns it as a session, replacing
// nothing until the caller decides to adopt it. The returned conversation
// keeps the filename association so saves overwrite the same document.
func (s *Store) Load(filename string) (*Conversation, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, filename))
	if err != nil {
		return nil, fmt.Errorf("reading conversation document: %w", err)
	}
	var c Conversation
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing conversation document %q: %w", filename, err)
	}
	c.filename = filename
	return &c, nil
}

// List returns the saved document filenames, newest first by name.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing conversation documents: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".json" {
			names = append(names, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

// sanitizeTitle reduces a model-generated title to a filesystem-safe,
// lowercase, underscore-separated token.
func sanitizeTitle(title string) string {
	var sb strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore && sb.Len() > 0 {
				sb.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	token := strings.Trim(sb.String(), "_")
	if len(token) > 48 {
		token = strings.Trim(token[:48], "_")
	}
	if token == "" {
		token = "conversation"
	}
	return token
}

// writeAtomic writes the document via a temp file in the same directory and
// an atomic rename, so a crash leaves either the old or the new complete file.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".tmp-")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
