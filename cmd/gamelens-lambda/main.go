// Command gamelens-lambda serves the gameplay analysis API behind API
// Gateway. The same chi router as gamelens-api runs behind the HTTP
// adapter proxy; cold-start wiring happens in init.
package main

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/rs/zerolog/log"

	"github.com/avelar/gamelens/internal/agent"
	"github.com/avelar/gamelens/internal/api"
	"github.com/avelar/gamelens/internal/api/handler"
	"github.com/avelar/gamelens/internal/awsboot"
	"github.com/avelar/gamelens/internal/bda"
	"github.com/avelar/gamelens/internal/config"
	"github.com/avelar/gamelens/internal/logging"
	"github.com/avelar/gamelens/internal/store"
)

var router http.Handler

func init() {
	logging.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
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
	router = api.NewRouter(h, cfg)
}

func main() {
	adapter := httpadapter.NewV2(router)
	lambda.Start(adapter.ProxyWithContext)
}
