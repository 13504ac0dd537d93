// Package main provides the gridagent CLI entry point.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/richinex/gridagent/agent"
	"github.com/richinex/gridagent/config"
	"github.com/richinex/gridagent/llm"
	"github.com/richinex/gridagent/server"
	"github.com/richinex/gridagent/sheets"
	"github.com/richinex/gridagent/storage"
	"github.com/richinex/gridagent/tools"
)

var (
	provider      string
	spreadsheetID string
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "gridagent",
		Short: "Conversational Google Sheets agent with confirmation-gated writes",
		Long: `gridagent lets you drive a Google Sheet through natural language.

Reads execute immediately; every mutating operation (write_range,
append_row, clear_range, create_chart) is held until you confirm it.`,
	}

	rootCmd.PersistentFlags().StringVarP(&provider, "provider", "p", "anthropic", "LLM provider (anthropic, openai)")
	rootCmd.PersistentFlags().StringVarP(&spreadsheetID, "spreadsheet", "s", "", "Spreadsheet ID (overrides SPREADSHEET_ID)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(chatCmd())
	rootCmd.AddCommand(toolsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			settings, a, sheet, audit, err := buildAgent(ctx)
			if err != nil {
				return err
			}
			if audit != nil {
				defer audit.Close()
			}

			if addr == "" {
				addr = settings.Server.Addr
			}
			srv := server.New(a, sheet, slog.Default())
			return srv.ListenAndServe(addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides SERVER_ADDR)")
	return cmd
}

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Interactive chat against the configured spreadsheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, a, sheet, audit, err := buildAgent(ctx)
			if err != nil {
				return err
			}
			if audit != nil {
				defer audit.Close()
			}
			return runChat(ctx, a, sheet)
		},
	}
}

func toolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List available tools and their classification",
		Run: func(cmd *cobra.Command, args []string) {
			for _, t := range tools.Catalog() {
				class := "read"
				if tools.Classify(t.Name) == tools.ClassWrite {
					class = "write (requires confirmation)"
				}
				fmt.Printf("%-14s %-28s %s\n", t.Name, class, t.Description)
			}
		},
	}
}

// buildAgent wires settings, engine, spreadsheet client, and audit log.
func buildAgent(ctx context.Context) (config.Settings, *agent.Agent, sheets.Client, *storage.AuditLog, error) {
	settings, err := config.New(provider)
	if err != nil {
		return config.Settings{}, nil, nil, nil, err
	}

	apiKey, err := config.APIKeyFor(settings.LLM.Provider)
	if err != nil {
		return config.Settings{}, nil, nil, nil, err
	}

	engine, err := llm.NewEngine(settings.LLM.Provider, apiKey, settings.LLM.Model, settings.LLM.MaxTokens)
	if err != nil {
		return config.Settings{}, nil, nil, nil, err
	}

	id := spreadsheetID
	if id == "" {
		id = settings.Sheets.SpreadsheetID
	}
	sheet, err := buildSheetClient(ctx, id, settings.Sheets)
	if err != nil {
		return config.Settings{}, nil, nil, nil, err
	}

	audit, err := storage.OpenAuditLog(settings.Server.AuditDBPath)
	if err != nil {
		return config.Settings{}, nil, nil, nil, err
	}

	a := agent.New(engine, agent.Config{
		MaxIterations:   settings.Agent.MaxIterations,
		ContextLimit:    settings.Agent.ContextLimit,
		ResponseReserve: settings.Agent.ResponseReserve,
		SummaryBudget:   settings.Agent.SummaryBudget,
	}).WithAuditLog(audit)

	return settings, a, sheet, audit, nil
}

func buildSheetClient(ctx context.Context, spreadsheetID string, cfg config.SheetsConfig) (sheets.Client, error) {
	var opts []option.ClientOption
	switch {
	case cfg.CredentialsFile != "":
		opts = append(opts,
			option.WithCredentialsFile(cfg.CredentialsFile),
			option.WithScopes(sheetsapi.SpreadsheetsScope))
	case cfg.APIKey != "":
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	default:
		opts = append(opts, option.WithScopes(sheetsapi.SpreadsheetsScope))
	}
	return sheets.NewGoogleClient(ctx, spreadsheetID, opts...)
}

// runChat is a minimal REPL with inline y/n confirmation prompts.
func runChat(ctx context.Context, a *agent.Agent, sheet sheets.Client) error {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("gridagent chat (type 'exit' to quit)")

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}

		result, err := a.HandleUserMessage(ctx, line, conversationID(), sheet)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}

		for result.Type == agent.TurnConfirmationRequired {
			fmt.Println("The agent wants to perform:")
			ids := make([]string, len(result.Pending))
			for i, p := range result.Pending {
				ids[i] = p.ID
				fmt.Printf("  %d. %s %s\n", i+1, p.Operation, string(p.Params))
			}
			fmt.Print("Approve? [y/N] ")
			if !scanner.Scan() {
				return scanner.Err()
			}
			answer := strings.TrimSpace(strings.ToLower(scanner.Text()))
			approved := answer == "y" || answer == "yes"

			result, err = a.ResolveConfirmation(ctx, conversationID(), ids, approved)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				break
			}
		}
		if err != nil {
			continue
		}

		if result.Text != "" {
			fmt.Println(result.Text)
		}
	}
}

func conversationID() string {
	// One conversation per chat process.
	return "cli"
}
