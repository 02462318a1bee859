// tickerpulse — news headline sentiment for stock tickers.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/seenimoa/tickerpulse/api"
	"github.com/seenimoa/tickerpulse/internal/config"
	"github.com/seenimoa/tickerpulse/internal/logger"
	"github.com/seenimoa/tickerpulse/internal/pipeline"
	"github.com/seenimoa/tickerpulse/internal/report"
	"github.com/seenimoa/tickerpulse/pkg/models"
	"github.com/seenimoa/tickerpulse/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config and logger, set by the root PersistentPreRunE.
var (
	cfg *config.Config
	log zerolog.Logger
)

// errRunFailed marks a command whose JSON output already reports the failure.
var errRunFailed = errors.New("run failed")

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errRunFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tickerpulse",
	Short: "tickerpulse — news sentiment for stock tickers",
	Long: `tickerpulse scrapes recent news headlines per ticker, scores each headline
with a lexicon-based sentiment model and classifies every ticker as Bullish,
Bearish or Neutral. It also serves the results over HTTP, writes AI news
summaries and answers investment questions.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err == nil {
			err = cfg.Validate()
		}
		if err != nil {
			// health must answer even with a broken config file
			if cmd.Name() != "health" {
				return fmt.Errorf("failed to load config: %w", err)
			}
			cfg = config.Default()
		}

		level, _ := cmd.Flags().GetString("log-level")
		if level == "" {
			level = cfg.Logging.Level
		}
		log = logger.Must(logger.Config{Level: level, Format: cfg.Logging.Format})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(adviseCmd)
	rootCmd.AddCommand(payCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
}

// printJSON writes v with two-space indentation.
func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "tickerpulse %s\n", version)
		fmt.Fprintf(out, "  commit:  %s\n", commit)
		fmt.Fprintf(out, "  built:   %s\n", date)
	},
}

// --- Analyze Command ---

var analyzeCmd = &cobra.Command{
	Use:   "analyze [ticker]",
	Short: "Score recent headlines and classify tickers",
	Long: `Fetch, score and classify recent headlines for one ticker, or for the
configured watch-list when no ticker is given. The result is printed as JSON
unless another --format is chosen.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		withSummary, _ := cmd.Flags().GetBool("summary")
		formatFlag, _ := cmd.Flags().GetString("format")
		format, err := report.ParseFormat(formatFlag)
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		p, err := newPipeline(cfg, log)
		if err != nil {
			return err
		}

		var run pipeline.Detail
		if len(args) == 1 {
			run = p.RunTickerDetail(ctx, args[0])
		} else {
			run = p.RunDetail(ctx, nil)
		}
		res := run.Result

		var opts report.Options
		if withSummary && res.Success {
			opts.Narratives = narratives(ctx, newSummarizer(cfg, log), run)
		}

		if err := report.Render(cmd.OutOrStdout(), format, res, opts); err != nil {
			return err
		}
		if !res.Success {
			return errRunFailed
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().Bool("summary", false, "add an AI-written news summary per ticker")
	analyzeCmd.Flags().String("format", "json", "output format: json, text or html")
}

// --- Health Command ---

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Print the readiness marker",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printJSON(cmd.OutOrStdout(), healthStatus(cfg))
	},
}

// --- Advise Command ---

var adviseCmd = &cobra.Command{
	Use:   "advise [question]",
	Short: "Ask the investment assistant a question",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, _ := cmd.Flags().GetString("profile")
		answer := newAdvisor(cfg, log).Advise(cmd.Context(), args[0], profile)
		fmt.Fprintln(cmd.OutOrStdout(), answer)
		return nil
	},
}

func init() {
	adviseCmd.Flags().String("profile", "", `investment profile, e.g. "Value Investing"`)
}

// --- Pay Commands ---

var payCmd = &cobra.Command{
	Use:   "pay",
	Short: "Create and capture PayPal orders for the premium tier",
}

var payCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a checkout order and print its approval link",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		amountStr, _ := cmd.Flags().GetString("amount")
		currency, _ := cmd.Flags().GetString("currency")
		if amountStr == "" {
			amountStr = cfg.PayPal.PremiumPrice
		}
		if currency == "" {
			currency = cfg.PayPal.Currency
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", amountStr, err)
		}

		client, err := newPayPal(cfg)
		if err != nil {
			return err
		}
		order, err := client.CreateOrder(cmd.Context(), amount, currency)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), order)
	},
}

var payCaptureCmd = &cobra.Command{
	Use:   "capture [order-id]",
	Short: "Capture an approved order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newPayPal(cfg)
		if err != nil {
			return err
		}
		capture, err := client.CaptureOrder(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), capture)
	},
}

func init() {
	payCreateCmd.Flags().String("amount", "", "order amount (default: configured premium price)")
	payCreateCmd.Flags().String("currency", "", "ISO currency code (default: configured currency)")
	payCmd.AddCommand(payCreateCmd)
	payCmd.AddCommand(payCaptureCmd)
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPipeline(cfg, log)
		if err != nil {
			return err
		}

		srv := api.NewServer(cfg, api.Deps{
			Sentiment:  p,
			Summarizer: newSummarizer(cfg, log),
			Advisor:    newAdvisor(cfg, log),
			Payments:   paymentService(cfg),
			Health:     func() models.HealthStatus { return healthStatus(cfg) },
			Logger:     log,
		})

		addr := net.JoinHostPort(cfg.API.Host, strconv.Itoa(cfg.API.Port))
		return srv.ListenAndServe(cmd.Context(), addr)
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		h := healthStatus(cfg)

		fmt.Fprintln(out, "═══════════════════════════════════════")
		fmt.Fprintln(out, "  tickerpulse — System Status")
		fmt.Fprintln(out, "═══════════════════════════════════════")
		fmt.Fprintf(out, "  Version:       %s (%s)\n", version, commit)
		fmt.Fprintf(out, "  Market Status: %s\n", utils.MarketStatus(utils.NowET()))
		fmt.Fprintf(out, "  Time (ET):     %s\n", utils.NowET().Format("2006-01-02 15:04:05 MST"))
		fmt.Fprintln(out)

		fmt.Fprintln(out, "  Configuration:")
		fmt.Fprintf(out, "    News Source:   %s\n", cfg.News.Source)
		fmt.Fprintf(out, "    Scorer:        %s (lexicon available: %t)\n", h.Scorer, h.LexiconAvailable)
		fmt.Fprintf(out, "    Watch-list:    %v\n", cfg.Sentiment.DefaultTickers)
		fmt.Fprintf(out, "    LLM Model:     %s (%s)\n", cfg.LLM.Model, cfg.LLM.BaseURL)
		fmt.Fprintf(out, "    LLM Endpoint:  %s\n", llmStatus(cmd.Context(), cfg))
		fmt.Fprintf(out, "    PayPal:        %s\n", cfg.PayPal.Env)
		fmt.Fprintf(out, "    API Server:    %s:%d\n", cfg.API.Host, cfg.API.Port)
		fmt.Fprintln(out)

		fmt.Fprintln(out, "  API Keys:")
		for _, k := range config.CheckAPIKeys(cfg) {
			status := "❌ not set"
			if k.IsSet {
				status = fmt.Sprintf("✅ set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Fprintf(out, "    %-25s %s\n", k.Name+":", status)
		}

		fmt.Fprintln(out, "═══════════════════════════════════════")
		return nil
	},
}
