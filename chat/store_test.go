package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darko-mesaros/bedrust/retry"
)

// scriptedGenerator returns canned replies in order and records the prompts
// it was asked for.
type scriptedGenerator struct {
	replies []string
	errs    []error
	prompts []string
}

func (g *scriptedGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	i := len(g.prompts) - 1
	if i < len(g.errs) && g.errs[i] != nil {
		return "", g.errs[i]
	}
	if i < len(g.replies) {
		return g.replies[i], nil
	}
	return "", errors.New("script exhausted")
}

func noSleep(o *StoreOptions) {
	o.Retry = retry.Policy{Sleep: func(time.Duration) {}}
}

func TestStore_SaveGeneratesTitleThenSummary(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{"Galactic Trade Routes", "A chat about trade."}}
	s := NewStore(t.TempDir(), gen, noSleep)

	c := NewConversation()
	c.AddUserMessage("Tell me about galactic trade routes")
	c.AddAssistantMessage("Gladly.")

	filename, err := s.Save(context.Background(), c)
	require.NoError(t, err)

	// Exactly one title call and one summary call, in that order.
	require.Len(t, gen.prompts, 2)
	assert.Contains(t, gen.prompts[0], "short title")
	assert.Contains(t, gen.prompts[1], "Summarize")
	assert.Contains(t, gen.prompts[1], "user:Tell me about galactic trade routes")

	assert.True(t, strings.HasPrefix(filename, "galactic_trade_routes_"), filename)
	assert.True(t, strings.HasSuffix(filename, ".json"))
	assert.Equal(t, filename, c.Filename())
	require.NotNil(t, c.Title)
	assert.Equal(t, "Galactic Trade Routes", *c.Title)
	require.NotNil(t, c.Summary)
	assert.Equal(t, "A chat about trade.", *c.Summary)
}

func TestStore_SecondSaveReusesFilename(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{"Title", "Summary one", "Summary two"}}
	s := NewStore(t.TempDir(), gen, noSleep)

	c := NewConversation()
	c.AddUserMessage("q")
	c.AddAssistantMessage("a")

	first, err := s.Save(context.Background(), c)
	require.NoError(t, err)

	c.AddUserMessage("q2")
	c.AddAssistantMessage("a2")
	second, err := s.Save(context.Background(), c)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	// Three generator calls total: title once, summary twice.
	assert.Len(t, gen.prompts, 3)
}

func TestStore_RoundTrip(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{"Round Trip", "Summary."}}
	s := NewStore(t.TempDir(), gen, noSleep)

	c := NewConversation()
	c.AddUserMessage("first question")
	c.AddAssistantMessage("first answer")
	c.AddUserMessage("second question")
	c.AddAssistantMessage("second answer")

	filename, err := s.Save(context.Background(), c)
	require.NoError(t, err)

	loaded, err := s.Load(filename)
	require.NoError(t, err)

	// Role order and text content must survive byte-for-byte.
	assert.Equal(t, c.Messages, loaded.Messages)
	assert.Equal(t, c.Title, loaded.Title)
	assert.Equal(t, c.Summary, loaded.Summary)
	assert.Equal(t, c.Timestamp, loaded.Timestamp)
	assert.Equal(t, filename, loaded.Filename())
}

func TestStore_RetrySucceedsAfterTransientFailures(t *testing.T) {
	transient := errors.New("throttled")
	gen := &scriptedGenerator{
		errs:    []error{transient, transient, nil, nil},
		replies: []string{"", "", "Stubborn Title", "Summary."},
	}
	s := NewStore(t.TempDir(), gen, noSleep)

	c := NewConversation()
	c.AddUserMessage("q")
	c.AddAssistantMessage("a")

	_, err := s.Save(context.Background(), c)
	require.NoError(t, err)
	require.NotNil(t, c.Title)
	assert.Equal(t, "Stubborn Title", *c.Title)
}

func TestStore_RetriesExhaustedLeavesSessionIntact(t *testing.T) {
	boom := errors.New("service unavailable")
	gen := &scriptedGenerator{errs: []error{boom, boom, boom}}
	s := NewStore(t.TempDir(), gen, noSleep)

	c := NewConversation()
	c.AddUserMessage("q")
	c.AddAssistantMessage("a")

	_, err := s.Save(context.Background(), c)
	require.Error(t, err)

	var exhausted *retry.Exhausted
	require.True(t, errors.As(err, &exhausted))
	assert.Equal(t, 3, exhausted.Attempts)

	// The failed save must not damage the in-memory session.
	assert.Len(t, c.Messages, 2)
	assert.Empty(t, c.Filename())
}

func TestStore_List(t *testing.T) {
	dir := t.TempDir()
	gen := &scriptedGenerator{replies: []string{"Alpha", "s", "Beta", "s"}}
	s := NewStore(dir, gen, noSleep)

	c1 := NewConversation()
	c1.AddUserMessage("q")
	_, err := s.Save(context.Background(), c1)
	require.NoError(t, err)

	c2 := NewConversation()
	c2.AddUserMessage("q")
	_, err = s.Save(context.Background(), c2)
	require.NoError(t, err)

	names, err := s.List()
	require.NoError(t, err)
	assert.Len(t, names, 2)
	// Descending name order.
	assert.GreaterOrEqual(t, names[0], names[1])
}

func TestStore_ListMissingDir(t *testing.T) {
	s := NewStore("/nonexistent/bedrust-chats", nil)
	names, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestSanitizeTitle(t *testing.T) {
	cases := map[string]string{
		"Galactic Trade Routes": "galactic_trade_routes",
		"  Hello, World!  ":     "hello_world",
		"UPPER-case/slash":      "upper_case_slash",
		"!!!":                   "conversation",
		"":                      "conversation",
	}
	for in, want := range cases {
		assert.Equal(t, want, sanitizeTitle(in), in)
	}
}
