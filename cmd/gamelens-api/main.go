// Command gamelens-api runs the gameplay analysis API as a local HTTP
// server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/avelar/gamelens/internal/agent"
	"github.com/avelar/gamelens/internal/api"
	"github.com/avelar/gamelens/internal/api/handler"
	"github.com/avelar/gamelens/internal/awsboot"
	"github.com/avelar/gamelens/internal/bda"
	"github.com/avelar/gamelens/internal/config"
	"github.com/avelar/gamelens/internal/logging"
	"github.com/avelar/gamelens/internal/store"
)

// CLI flags
var (
	portFlag    int
	envFileFlag string
)

var rootCmd = &cobra.Command{
	Use:   "gamelens-api",
	Short: "API server for gameplay video analysis",
	Long: `gamelens-api serves the gameplay analysis backend: presigned S3
uploads, Bedrock Data Automation video analysis, and a Bedrock Agent chat
proxy for Q&A about analyzed games.

Examples:
  gamelens-api
  gamelens-api --port 9000
  gamelens-api --env-file .env.local`,
	Run: runMain,
}

func init() {
	rootCmd.Flags().IntVar(&portFlag, "port", 0, "Port to listen on (overrides API_PORT)")
	rootCmd.Flags().StringVar(&envFileFlag, "env-file", ".env", "Env file to load before reading configuration")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runMain(cmd *cobra.Command, args []string) {
	if err := godotenv.Load(envFileFlag); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "failed to load %s: %v\n", envFileFlag, err)
		os.Exit(1)
	}
	logging.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if portFlag != 0 {
		cfg.Port = portFlag
	}

	ctx := context.Background()
	clients := awsboot.InitAWS(ctx)
	s3c := awsboot.InitS3(clients.Config)
	bedrock := awsboot.InitBedrock(clients.Config)

	awsboot.LoadAgentConfig(ctx, clients.SSM, cfg)
	if err := awsboot.ResolveDataAutomationARNs(ctx, clients.STS, clients.Config.Region, cfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to resolve Data Automation ARNs")
	}

	mem := store.NewMemory()
	runner := bda.NewRunner(bedrock.DataAutomation, s3c.Client, cfg.MediaBucket,
		cfg.DataAutomationProjectARN, cfg.DataAutomationProfileARN,
		cfg.AnalysisPollInterval, cfg.AnalysisTimeout)
	agentClient := agent.NewClient(bedrock.AgentRuntime, cfg.BedrockAgentID, cfg.BedrockAgentAliasID)

	h := handler.New(cfg, s3c.Presigner, s3c.Client, mem, mem, runner, agentClient)
	router := api.NewRouter(h, cfg)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: router,
		// Analyze blocks on the Data Automation poll loop, so the write
		// timeout must outlast the analysis ceiling.
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.AnalysisTimeout + time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info().Msg("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	log.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("bucket", cfg.MediaBucket).
		Str("environment", cfg.Environment).
		Msg("Starting gameplay analysis API")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
