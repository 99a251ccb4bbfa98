// Package bedrust provides a high-level façade over the model catalog, the
// Bedrock clients, and the conversation store. Most applications interact
// with this package by:
//  1. Loading the configuration and creating an App via New()
//  2. Running one of the entry points: RunChat, RunCaption, or RunCodeReview
//
// The façade wires credential resolution, the capability probe, the
// invocation dispatcher, and the durable chat session together while keeping
// the underlying packages independently usable.
package bedrust

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"github.com/darko-mesaros/bedrust/bedrock"
	"github.com/darko-mesaros/bedrust/captioner"
	"github.com/darko-mesaros/bedrust/chat"
	"github.com/darko-mesaros/bedrust/code"
	"github.com/darko-mesaros/bedrust/config"
	"github.com/darko-mesaros/bedrust/export"
	"github.com/darko-mesaros/bedrust/logging"
	"github.com/darko-mesaros/bedrust/model"
	"github.com/darko-mesaros/bedrust/ui"
)

// defaultHousekeepingModel generates conversation titles and summaries. It is
// deliberately a small, fast model and independent of the chat model.
const defaultHousekeepingModel = "anthropic.claude-3-haiku-20240307-v1:0"

// Options configures the App.
type Options struct {
	// Logger receives diagnostics. Defaults to a no-op logger.
	Logger logging.Logger
	// HousekeepingModel runs title and summary generation.
	HousekeepingModel string
	// ChatsDir overrides where conversation documents are stored.
	ChatsDir string
}

// App aggregates the wired components behind the command-line entry points.
type App struct {
	cfg      config.Config
	catalog  *model.Catalog
	probe    *bedrock.Probe
	invoker  *bedrock.Invoker
	store    *chat.Store
	logger   logging.Logger
	chatsDir string
}

// New resolves AWS credentials per the configuration and wires the
// application together.
func New(ctx context.Context, cfg config.Config, optFns ...func(o *Options)) (*App, error) {
	opts := Options{
		HousekeepingModel: defaultHousekeepingModel,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	logger := logging.OrNoOp(opts.Logger)

	catalog := model.NewCatalog()
	if err := cfg.ApplyOverrides(catalog); err != nil {
		return nil, err
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.AWSProfile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(cfg.AWSProfile))
	}
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("resolving AWS configuration: %w", err)
	}

	probe := bedrock.NewProbe(bedrock.NewControlClient(awsCfg))
	invoker := bedrock.NewInvoker(bedrock.NewRuntimeClient(awsCfg), probe, catalog, func(o *bedrock.InvokerOptions) {
		o.Logger = logger
	})

	chatsDir := opts.ChatsDir
	if chatsDir == "" {
		chatsDir, err = config.ChatsDir()
		if err != nil {
			return nil, err
		}
	}

	app := &App{
		cfg:      cfg,
		catalog:  catalog,
		probe:    probe,
		invoker:  invoker,
		logger:   logger,
		chatsDir: chatsDir,
	}
	app.store = chat.NewStore(chatsDir, &housekeeper{
		catalog: catalog,
		asker:   invoker,
		modelID: opts.HousekeepingModel,
	}, func(o *chat.StoreOptions) {
		o.Logger = logger
	})
	return app, nil
}

// ValidateModel reports whether the catalog knows the model id.
func (a *App) ValidateModel(modelID string) error {
	if _, ok := a.catalog.Entry(modelID); !ok {
		return fmt.Errorf("%w: %s (known models: %s)",
			model.ErrUnknownModel, modelID, strings.Join(a.catalog.IDs(), ", "))
	}
	return nil
}

// RunChat starts the interactive chat loop against modelID.
func (a *App) RunChat(ctx context.Context, modelID string) error {
	return a.runChat(ctx, modelID, "")
}

// RunCodeReview collects the source tree at dir into a review prompt and
// starts a chat seeded with it.
func (a *App) RunCodeReview(ctx context.Context, modelID, dir string) error {
	reviewer := code.NewReviewer(a.cfg.CodeIgnore, func(o *code.Options) {
		o.Logger = a.logger
	})
	seed, err := reviewer.Prompt(dir)
	if err != nil {
		return err
	}
	fmt.Printf("reviewing source in %s\n", dir)
	return a.runChat(ctx, modelID, seed)
}

// RunCaption captions every supported image under dir with modelID, writing
// captions.xml when xml is set and captions.json otherwise.
func (a *App) RunCaption(ctx context.Context, modelID, dir string, xml bool) error {
	c := captioner.New(a.invoker, a.probe, a.catalog, a.cfg.CaptionPrompt, a.cfg.SupportedImages,
		func(o *captioner.Options) { o.Logger = a.logger })
	format := captioner.FormatJSON
	if xml {
		format = captioner.FormatXML
	}
	out, err := c.Run(ctx, dir, modelID, format)
	if err != nil {
		return err
	}
	fmt.Printf("captioning complete, find the generated captions in %s\n", out)
	return nil
}

func (a *App) runChat(ctx context.Context, modelID, seed string) error {
	if err := a.ValidateModel(modelID); err != nil {
		return err
	}

	fmt.Println(ui.Banner(modelID))
	if err := os.MkdirAll(a.chatsDir, 0o755); err != nil {
		return fmt.Errorf("creating chats directory: %w", err)
	}
	console := ui.NewConsole(filepath.Join(a.chatsDir, ".history"))
	defer console.Close()

	conversation := chat.NewConversation()
	if seed != "" {
		if err := a.turn(ctx, modelID, conversation, seed); err != nil {
			return err
		}
	}

	for {
		input, err := console.ReadLine("> ")
		if err != nil {
			if ui.Aborted(err) {
				fmt.Println()
				return nil
			}
			return err
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if strings.HasPrefix(input, "/") {
			quit, err := a.command(ctx, console, conversation, input)
			if err != nil {
				fmt.Println(ui.ErrorStyle.Render(err.Error()))
			}
			if quit {
				return nil
			}
			continue
		}
		if err := a.turn(ctx, modelID, conversation, input); err != nil {
			fmt.Println(ui.ErrorStyle.Render(err.Error()))
		}
	}
}

// turn runs one question/answer exchange. On failure the pending user
// message is rolled back so the conversation keeps alternating strictly.
func (a *App) turn(ctx context.Context, modelID string, c *chat.Conversation, question string) error {
	c.AddUserMessage(question)
	opts, err := a.catalog.Build(modelID, model.Input{
		Messages: c.ModelMessages(),
		System:   a.cfg.SystemPrompt,
	})
	if err != nil {
		c.Messages = c.Messages[:len(c.Messages)-1]
		return err
	}
	answer, err := a.invoker.Ask(ctx, opts)
	if err != nil {
		c.Messages = c.Messages[:len(c.Messages)-1]
		return err
	}
	c.AddAssistantMessage(answer)
	return nil
}

// command dispatches one slash command. It returns true when the loop
// should exit.
func (a *App) command(ctx context.Context, console *ui.Console, c *chat.Conversation, input string) (bool, error) {
	switch input {
	case "/q":
		return true, nil
	case "/c":
		c.Clear()
		fmt.Println("conversation cleared")
		return false, nil
	case "/s":
		if c.Empty() {
			return false, errors.New("nothing to save yet")
		}
		filename, err := a.store.Save(ctx, c)
		if err != nil {
			return false, err
		}
		fmt.Printf("conversation saved as %s\n", filename)
		return false, nil
	case "/r":
		return false, a.recall(console, c)
	case "/h":
		if c.Empty() {
			return false, errors.New("nothing to export yet")
		}
		path, err := export.WriteFile(a.chatsDir, c)
		if err != nil {
			return false, err
		}
		fmt.Printf("conversation exported to %s\n", path)
		return false, nil
	default:
		return false, fmt.Errorf("unknown command %q", input)
	}
}

// recall lets the user pick a saved conversation and replaces the session
// with it wholesale.
func (a *App) recall(console *ui.Console, c *chat.Conversation) error {
	names, err := a.store.List()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return errors.New("no saved conversations")
	}
	idx, err := console.Choose("recall which? ", names)
	if err != nil {
		return err
	}
	loaded, err := a.store.Load(names[idx])
	if err != nil {
		return err
	}
	*c = *loaded
	fmt.Printf("recalled %s\n", names[idx])
	if loaded.Summary != nil && *loaded.Summary != "" {
		fmt.Println(ui.Answer(*loaded.Summary))
	}
	return nil
}

// housekeeper adapts the invocation dispatcher into the store's Generator,
// always running synchronously against the housekeeping model.
type housekeeper struct {
	catalog *model.Catalog
	asker   interface {
		AskQuiet(ctx context.Context, opts model.Options) (string, error)
	}
	modelID string
}

func (h *housekeeper) Generate(ctx context.Context, prompt string) (string, error) {
	opts, err := h.catalog.Build(h.modelID, model.Input{Question: prompt})
	if err != nil {
		return "", err
	}
	return h.asker.AskQuiet(ctx, opts)
}
