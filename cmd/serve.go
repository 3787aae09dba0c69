package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/tutordesk/internal/botui"
	"github.com/abhisek/tutordesk/internal/config"
	"github.com/abhisek/tutordesk/internal/docgen"
	"github.com/abhisek/tutordesk/internal/drive"
	"github.com/abhisek/tutordesk/internal/llm"
	"github.com/abhisek/tutordesk/internal/render"
	"github.com/abhisek/tutordesk/internal/report"
	"github.com/abhisek/tutordesk/internal/schedule"
	"github.com/abhisek/tutordesk/internal/store"
	"github.com/abhisek/tutordesk/internal/workflow"
	"github.com/abhisek/tutordesk/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Telegram bot and background jobs",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram token is not configured")
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Pretty, cfg.Logging.NoColor)

	db, err := store.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	storage, err := drive.NewMinIOStore(drive.Config{
		Endpoint:  cfg.Drive.Endpoint,
		AccessKey: cfg.Drive.AccessKey,
		SecretKey: cfg.Drive.SecretKey,
		Bucket:    cfg.Drive.Bucket,
		Region:    cfg.Drive.Region,
		UseSSL:    cfg.Drive.UseSSL,
		Timeout:   cfg.Drive.Timeout,
	}, log)
	if err != nil {
		return fmt.Errorf("connect storage: %w", err)
	}

	provider, err := llm.NewProvider(ctx, llmConfig(cfg), db, log)
	if err != nil {
		return fmt.Errorf("init LLM provider: %w", err)
	}

	reports := report.NewManager(storage, provider, db, report.Config{
		TokenBudget:  cfg.Report.TokenBudget,
		SummaryEvery: cfg.Report.SummaryEvery,
	}, log)

	generator := docgen.New(provider, reports, db, docgen.Config{
		MonthlyCap: cfg.Docgen.MonthlyCap,
	}, log)

	renderer := render.New(render.Config{
		LatexBin: cfg.Render.LatexBin,
		FontPath: cfg.Render.FontPath,
		Timeout:  cfg.Render.Timeout,
	}, log)

	wf := workflow.New(generator, reports, renderer, storage, log)

	tgBot, err := botui.New(cfg.Telegram.Token, db, wf, log)
	if err != nil {
		return fmt.Errorf("init telegram bot: %w", err)
	}

	scheduler := schedule.New(db, tgBot, schedule.Config{
		Interval:       cfg.Schedule.Interval,
		ReminderWindow: cfg.Schedule.ReminderWindow,
	}, log)
	go scheduler.Run(ctx)

	log.Info().Str("provider", cfg.LLM.Provider).Msg("tutordesk starting")
	tgBot.Run(ctx)
	return nil
}

func llmConfig(cfg *config.Config) llm.Config {
	return llm.Config{
		Provider: cfg.LLM.Provider,
		OpenAI: llm.OpenAIConfig{
			APIKey:  cfg.LLM.OpenAI.APIKey,
			Model:   cfg.LLM.OpenAI.Model,
			BaseURL: cfg.LLM.OpenAI.BaseURL,
		},
		OpenRouter: llm.OpenRouterConfig{
			APIKey:  cfg.LLM.OpenRouter.APIKey,
			Model:   cfg.LLM.OpenRouter.Model,
			BaseURL: cfg.LLM.OpenRouter.BaseURL,
		},
		Anthropic: llm.AnthropicConfig{
			APIKey: cfg.LLM.Anthropic.APIKey,
			Model:  cfg.LLM.Anthropic.Model,
		},
		Gemini: llm.GeminiConfig{
			APIKey: cfg.LLM.Gemini.APIKey,
			Model:  cfg.LLM.Gemini.Model,
		},
		Retry: llm.RetryConfig{
			MaxAttempts: cfg.LLM.Retry.MaxAttempts,
			InitialWait: cfg.LLM.Retry.InitialWait,
			MaxWait:     cfg.LLM.Retry.MaxWait,
			Multiplier:  cfg.LLM.Retry.Multiplier,
		},
		Timeout: cfg.LLM.Timeout,
	}
}
