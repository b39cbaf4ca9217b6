// Command agentrt is the example harness wiring a provider, a tool
// registry, and a session store to run one top-level inference call
// end-to-end (SPEC_FULL.md cmd/agentrt). It is not a product surface; it
// exists so the stack has one executable entry point.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/agentrt/runtime/internal/agent"
	"github.com/agentrt/runtime/internal/config"
	"github.com/agentrt/runtime/internal/llm/anthropic"
	"github.com/agentrt/runtime/internal/llm/openai"
	"github.com/agentrt/runtime/internal/observability"
	"github.com/agentrt/runtime/internal/sessions"
	"github.com/agentrt/runtime/internal/tools/blueprint"
	"github.com/agentrt/runtime/internal/tools/control"
	"github.com/agentrt/runtime/internal/tools/fsops"
	"github.com/agentrt/runtime/internal/tools/gitops"
	"github.com/agentrt/runtime/internal/tools/sandbox"
	"github.com/agentrt/runtime/pkg/chatmodel"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "agentrt",
		Short: "Agentic inference runtime example harness",
	}
	root.AddCommand(newRunCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var (
		query       string
		model       string
		provider    string
		configPath  string
		sessionID   string
		projectRoot string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one top-level inference call",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd.Context(), runOptions{
				query:       query,
				model:       model,
				provider:    provider,
				configPath:  configPath,
				sessionID:   sessionID,
				projectRoot: projectRoot,
			})
		},
	}

	cmd.Flags().StringVar(&query, "query", "", "user query to send the model")
	cmd.Flags().StringVar(&model, "model", "gpt-4.1", "model identifier")
	cmd.Flags().StringVar(&provider, "provider", "openai", "provider: openai or anthropic")
	cmd.Flags().StringVar(&configPath, "config", "agentrt.yaml", "path to runtime config")
	cmd.Flags().StringVar(&sessionID, "session", "default", "session id to persist history under")
	cmd.Flags().StringVar(&projectRoot, "project-root", ".", "root directory the file tools operate under")
	_ = cmd.MarkFlagRequired("query")

	return cmd
}

type runOptions struct {
	query       string
	model       string
	provider    string
	configPath  string
	sessionID   string
	projectRoot string
}

func runOnce(ctx context.Context, opts runOptions) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		// Missing/invalid config file falls back to defaults rather than
		// failing the run; the example harness should work with zero setup.
		cfg = &config.RuntimeConfig{}
		cfg.ApplyDefaults()
	}

	logger := observability.NewLogger(cfg.LogJSON, slog.LevelInfo)

	metricsReg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(metricsReg)
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(metricsReg, promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
	}

	store, err := sessions.Open(cfg.SessionStoreDSN)
	if err != nil {
		return fmt.Errorf("agentrt: open session store: %w", err)
	}
	defer store.Close()

	completionTools := cfg.CompletionToolNames
	if len(completionTools) == 0 {
		completionTools = []string{"mark_generation_complete"}
	}
	registry := agent.NewToolRegistry(completionTools...)

	doc := blueprint.NewDocument()
	toolsToRegister := []agent.Tool{
		fsops.NewReadTool(opts.projectRoot),
		fsops.NewWriteTool(opts.projectRoot),
		fsops.NewListTool(opts.projectRoot),
		sandbox.NewExecTool(),
		sandbox.NewAnalysisTool(),
		sandbox.NewDeployTool(),
		sandbox.NewReadTool(),
		blueprint.NewUpdateTool(doc),
		gitops.NewCommitTool(),
		control.NewMarkCompleteTool(),
	}
	for _, t := range toolsToRegister {
		if err := registry.Register(t); err != nil {
			return fmt.Errorf("agentrt: register tool %q: %w", t.Name(), err)
		}
	}

	var llmProvider agent.LLMProvider
	switch opts.provider {
	case "anthropic":
		llmProvider = anthropic.New(os.Getenv("ANTHROPIC_API_KEY"), "")
	default:
		llmProvider = openai.New(os.Getenv("OPENAI_API_KEY"), "")
	}

	driver := agent.NewDriver(llmProvider, registry, agent.DriverConfig{
		MaxLLMMessages: cfg.MaxLLMMessages,
		ChunkSize:      cfg.ChunkSize,
		Logger:         logger,
		Metrics:        metrics,
	})

	history, err := store.Load(ctx, opts.sessionID)
	if err != nil {
		return fmt.Errorf("agentrt: load session history: %w", err)
	}

	messages := append(history, chatmodel.NewMessage(chatmodel.RoleUser, opts.query))

	result, err := driver.Run(ctx, agent.RunRequest{
		Model:    opts.model,
		MaxDepth: 25,
		Messages: messages,
		StreamSink: func(s string) {
			fmt.Print(s)
		},
	})
	if err != nil {
		return fmt.Errorf("agentrt: run: %w", err)
	}
	fmt.Println()

	toPersist := []chatmodel.Message{chatmodel.NewMessage(chatmodel.RoleUser, opts.query)}
	if result.ToolCallContext != nil {
		toPersist = append(toPersist, result.ToolCallContext.Messages...)
	}
	if err := store.Append(ctx, opts.sessionID, toPersist); err != nil {
		return fmt.Errorf("agentrt: persist session history: %w", err)
	}

	return nil
}
