package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/mbenkhaled/telerag/config"
	"github.com/mbenkhaled/telerag/internal/rag"
	"github.com/mbenkhaled/telerag/internal/store"
	"github.com/mbenkhaled/telerag/provider"
	"github.com/mbenkhaled/telerag/session/session_models"
	"github.com/spf13/cobra"
)

func askCMD() *cobra.Command {
	var cfgPath string
	var topK int
	var temperature float64
	var maxTokens int
	var showSources bool

	var ask = &cobra.Command{
		Use:   "ask [question]",
		Short: "Run one question through the pipeline and print the answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			st, err := store.NewWithDSN(ctx, cfg.Database.DSN(), cfg.Database.Timeout)
			if err != nil {
				return fmt.Errorf("dialogue store unreachable: %w", err)
			}
			defer st.Close()

			llm, err := provider.NewProvider(provider.OpenAICompatible, cfg.LLM)
			if err != nil {
				return err
			}

			logger := log.New(cmd.ErrOrStderr(), "[RAG] ", log.LstdFlags)
			orch := rag.NewOrchestrator(llm, st, llm, logger, nil)

			opts := rag.DefaultOptions()
			if topK > 0 {
				opts.TopK = topK
			}
			if cmd.Flags().Changed("temperature") {
				opts.Temperature = temperature
			}
			if maxTokens > 0 {
				opts.MaxTokens = maxTokens
			}

			answer, err := orch.Ask(ctx, strings.Join(args, " "), opts)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), answer.Answer)
			if showSources {
				for _, src := range answer.Sources {
					fmt.Fprintf(cmd.OutOrStdout(), "\n[%s] (%.2f) %s\n",
						src.DialogueID, src.Similarity, session_models.Snippet(src.Content))
				}
			}
			return nil
		},
	}
	ask.Flags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")
	ask.Flags().IntVar(&topK, "top-k", 0, "number of dialogues to retrieve (default 3)")
	ask.Flags().Float64Var(&temperature, "temperature", 0.7, "sampling temperature")
	ask.Flags().IntVar(&maxTokens, "max-tokens", 0, "completion token budget (default 500)")
	ask.Flags().BoolVar(&showSources, "sources", false, "print retrieved dialogue previews")

	return ask
}
