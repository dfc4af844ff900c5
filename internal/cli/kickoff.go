/*
Copyright © 2026 SupportCrew Authors
*/
package cli

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"SupportCrew/internal/agent"
	"SupportCrew/internal/config"
	"SupportCrew/internal/crew"
	"SupportCrew/internal/crews"
	"SupportCrew/internal/engine"
	"SupportCrew/internal/parser"
	"SupportCrew/internal/tools"
	"SupportCrew/internal/vectorstore"
	"SupportCrew/pkg/types"

	"github.com/cloudwego/eino/components/model"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// ModelFactory builds the chat models of a crew.
type ModelFactory func(ctx context.Context, models map[string]types.Model) (map[string]model.ToolCallingChatModel, error)

// MemoryFactory opens the long-term memory of a run.
type MemoryFactory func(storage types.MemoryConfig, settings *config.Settings, runID string) (*vectorstore.WorkflowVectorStore, error)

// KickoffOptions configures one kickoff.
type KickoffOptions struct {
	Path        string            // Crew YAML file; the built-in crew when empty
	Definition  []byte            // Inline crew YAML, used when Path is empty
	Inputs      map[string]string // Override the definition's inputs
	Settings    *config.Settings
	Tools       tools.Config // Credentials are filled from Settings when empty
	TaskTimeout time.Duration
	NewModels   ModelFactory  // Defaults to agent.NewChatModels
	NewMemory   MemoryFactory // Defaults to a chromem store using the configured embedder
}

func defaultMemory(storage types.MemoryConfig, settings *config.Settings, runID string) (*vectorstore.WorkflowVectorStore, error) {
	embedder := storage.Embedder
	if embedder == "" {
		embedder = settings.Embedder
	}
	embed, err := vectorstore.EmbeddingFunc(embedder, settings.OpenAIAPIKey, settings.OpenAIBaseURL)
	if err != nil {
		return nil, err
	}
	return vectorstore.NewWorkflowVectorStore(vectorstore.Options{
		PersistPath: storage.PersistPath,
		RunID:       runID,
		Embedding:   embed,
	})
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// withStack attaches a stack trace unless err already carries one.
func withStack(err error) error {
	var st stackTracer
	if errors.As(err, &st) {
		return err
	}
	return errors.WithStack(err)
}

// console serializes writes; agent events may arrive from tool goroutines.
type console struct {
	mu sync.Mutex
	w  io.Writer
}

func (c *console) println(a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.w, a...)
}

func (c *console) printf(format string, a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, format, a...)
}

func (c *console) event(e agent.Event) {
	switch e.Kind {
	case agent.EventStarted:
		c.printf("[%s] Working on: %s\n", e.Role, preview(e.Detail, 120))
	case agent.EventToolCall:
		c.printf("[%s] Using tool: %s\n", e.Role, preview(e.Detail, 200))
	case agent.EventToolResult:
		c.printf("[%s] Tool output: %s\n", e.Role, e.Detail)
	case agent.EventAnswer:
		c.printf("[%s] Final answer:\n%s\n", e.Role, e.Detail)
	}
}

func preview(s string, n int) string {
	runes := []rune(s)
	for i, r := range runes {
		if r == '\n' {
			runes[i] = ' '
		}
	}
	if len(runes) <= n {
		return string(runes)
	}
	return string(runes[:n-3]) + "..."
}

// Kickoff defines, assembles and runs a crew while reporting progress to w.
// It never panics: failures are printed and returned in the Result, and
// "Script execution completed." is always the last line.
func Kickoff(ctx context.Context, w io.Writer, opts KickoffOptions) (result *engine.Result) {
	out := &console{w: w}
	runID := uuid.New().String()

	defer func() {
		if r := recover(); r != nil {
			err := errors.Errorf("panic: %v", r)
			result = &engine.Result{RunID: runID, Status: engine.StatusFailed, Err: err}
			printError(out, err)
		}
		out.println("Script execution completed.")
	}()

	result, err := kickoff(ctx, out, runID, opts)
	if err != nil {
		err = withStack(err)
		if result == nil {
			result = &engine.Result{RunID: runID, Status: engine.StatusFailed}
		}
		result.Status = engine.StatusFailed
		result.Err = err
		printError(out, err)
	}
	return result
}

func printError(out *console, err error) {
	out.printf("An error occurred: %v\n", err)
	out.println("Traceback:")
	out.printf("%+v\n", err)
}

func kickoff(ctx context.Context, out *console, runID string, opts KickoffOptions) (*engine.Result, error) {
	settings := opts.Settings
	if settings == nil {
		settings = &config.Settings{}
	}
	out.printf("%s: %s\n", config.EnvOpenAIAPIKey, config.Mask(settings.OpenAIAPIKey))
	out.printf("%s: %s\n", config.EnvSerperAPIKey, config.Mask(settings.SerperAPIKey))

	cfg, err := loadCrew(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", sourceName(opts.Path))
	}

	out.println("Defining agents...")
	agents, err := crew.DefineAgents(cfg)
	if err != nil {
		return nil, err
	}

	out.println("Defining tools...")
	toolCfg := opts.Tools
	if toolCfg.SerperAPIKey == "" {
		toolCfg.SerperAPIKey = settings.SerperAPIKey
	}
	toolset, err := tools.Build(cfg.Tools, toolCfg)
	if err != nil {
		return nil, err
	}

	out.println("Creating tasks...")
	tasks, err := crew.CreateTasks(cfg, agents, toolset)
	if err != nil {
		return nil, err
	}

	out.println("Assembling the crew...")
	members, err := crew.Members(cfg, agents)
	if err != nil {
		return nil, err
	}
	group, err := crew.Assemble(members, tasks, crew.Options{Memory: cfg.Crew.Memory, Verbose: cfg.Crew.Verbose})
	if err != nil {
		return nil, err
	}
	out.println("Crew assembled successfully.")

	out.println("Starting main execution...")
	inputs := mergeInputs(cfg.Inputs, opts.Inputs)

	newModels := opts.NewModels
	if newModels == nil {
		newModels = agent.NewChatModels
	}
	models, err := newModels(ctx, settings.ApplyModels(cfg.Models))
	if err != nil {
		return nil, err
	}

	runOpts := engine.Options{
		Models:      models,
		MemoryTopK:  cfg.Crew.Storage.TopK,
		TaskTimeout: opts.TaskTimeout,
		RunID:       runID,
		Observer:    out.event,
	}
	if group.MemoryEnabled() {
		newMemory := opts.NewMemory
		if newMemory == nil {
			newMemory = defaultMemory
		}
		store, err := newMemory(cfg.Crew.Storage, settings, runID)
		if err != nil {
			klog.Warningf("long-term memory disabled: %v", err)
		} else {
			klog.V(2).Infof("long-term memory collection %s", store.GetCollectionName())
			defer store.Close()
			runOpts.Memory = store
		}
	}

	out.println("Kicking off the crew...")
	result := engine.Run(ctx, group, inputs, runOpts)
	if result.Err != nil {
		return result, result.Err
	}

	out.println("Crew execution completed.")
	out.printf("Result: %s\n", result.Output)
	printUsage(out, result.Usage)
	return result, nil
}

func loadCrew(opts KickoffOptions) (*types.CrewConfig, error) {
	if opts.Path != "" {
		return parser.ParseYAML(opts.Path)
	}
	if opts.Definition != nil {
		return parser.Parse(opts.Definition)
	}
	return parser.Parse(crews.CustomerSupport)
}

func mergeInputs(defaults, overrides map[string]string) map[string]string {
	inputs := make(map[string]string, len(defaults)+len(overrides))
	for k, v := range defaults {
		inputs[k] = v
	}
	for k, v := range overrides {
		inputs[k] = v
	}
	return inputs
}

func printUsage(out *console, usage engine.Usage) {
	if usage.Total.Calls == 0 {
		return
	}
	out.printf("Token usage: %d total (%d prompt, %d completion) over %d calls\n",
		usage.Total.TotalTokens, usage.Total.InputTokens, usage.Total.OutputTokens, usage.Total.Calls)
	for _, id := range usage.AgentIDs() {
		u := usage.Agents[id]
		out.printf("  %s: %d tokens\n", id, u.TotalTokens)
	}
}

func sourceName(source string) string {
	if source == "" {
		return crews.DefaultName
	}
	return source
}
