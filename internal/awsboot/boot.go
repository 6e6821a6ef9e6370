// Package awsboot provides shared AWS bootstrap logic for the API server
// and the Lambda entry point.
//
// Both binaries need the same subset of: AWS config, S3 client + presigner,
// Bedrock runtime clients, SSM parameter fetch, and the Data Automation
// profile ARN. This package extracts the common init patterns so each
// main is a short composition of helpers.
package awsboot

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	bdar "github.com/aws/aws-sdk-go-v2/service/bedrockdataautomationruntime"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/rs/zerolog/log"

	"github.com/avelar/gamelens/internal/config"
)

// AWSClients holds the core AWS SDK clients shared by both binaries.
type AWSClients struct {
	Config aws.Config
	SSM    *ssm.Client
	STS    *sts.Client
}

// S3Clients holds the S3 client and presigner.
type S3Clients struct {
	Client    *s3.Client
	Presigner *s3.PresignClient
}

// BedrockClients holds the two Bedrock runtime clients.
type BedrockClients struct {
	DataAutomation *bdar.Client
	AgentRuntime   *bedrockagentruntime.Client
}

// InitAWS loads the default AWS config and returns it with common clients.
func InitAWS(ctx context.Context) AWSClients {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load AWS config")
	}
	log.Debug().Str("region", cfg.Region).Msg("AWS config loaded")
	return AWSClients{
		Config: cfg,
		SSM:    ssm.NewFromConfig(cfg),
		STS:    sts.NewFromConfig(cfg),
	}
}

// InitS3 creates an S3 client and presigner.
func InitS3(cfg aws.Config) S3Clients {
	client := s3.NewFromConfig(cfg)
	return S3Clients{
		Client:    client,
		Presigner: s3.NewPresignClient(client),
	}
}

// InitBedrock creates the Data Automation and Agent runtime clients.
func InitBedrock(cfg aws.Config) BedrockClients {
	return BedrockClients{
		DataAutomation: bdar.NewFromConfig(cfg),
		AgentRuntime:   bedrockagentruntime.NewFromConfig(cfg),
	}
}

// LoadAgentConfig fills in the Bedrock agent ID and alias from SSM
// Parameter Store when the environment left them empty. The alias keeps
// its TSTALIASID default if the parameter is also absent.
func LoadAgentConfig(ctx context.Context, ssmClient *ssm.Client, cfg *config.Config) {
	if cfg.BedrockAgentID == "" {
		if v, err := getParameter(ctx, ssmClient, "/gamelens/prod/bedrock-agent-id"); err == nil {
			cfg.BedrockAgentID = v
		} else {
			log.Warn().Err(err).Msg("Bedrock agent ID not configured; agent endpoints will fail")
		}
	}
	if cfg.BedrockAgentAliasID == "TSTALIASID" {
		if v, err := getParameter(ctx, ssmClient, "/gamelens/prod/bedrock-agent-alias-id"); err == nil {
			cfg.BedrockAgentAliasID = v
		}
	}
}

func getParameter(ctx context.Context, ssmClient *ssm.Client, name string) (string, error) {
	start := time.Now()
	result, err := ssmClient.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("reading SSM parameter %s: %w", name, err)
	}
	log.Debug().Str("param", name).Dur("elapsed", time.Since(start)).Msg("Parameter loaded from SSM")
	return aws.ToString(result.Parameter.Value), nil
}

// publicDefaultProjectARN is the AWS-managed Data Automation project usable
// without creating one.
func publicDefaultProjectARN(region string) string {
	return fmt.Sprintf("arn:aws:bedrock:%s:aws:data-automation-project/public-default", region)
}

// ResolveDataAutomationARNs fills in the project and profile ARNs when the
// environment left them empty. The profile ARN is account-scoped, so the
// account ID comes from STS GetCallerIdentity.
func ResolveDataAutomationARNs(ctx context.Context, stsClient *sts.Client, region string, cfg *config.Config) error {
	if cfg.DataAutomationProjectARN == "" {
		cfg.DataAutomationProjectARN = publicDefaultProjectARN(region)
		log.Info().Str("projectArn", cfg.DataAutomationProjectARN).Msg("Using public default Data Automation project")
	}
	if cfg.DataAutomationProfileARN == "" {
		ident, err := stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
		if err != nil {
			return fmt.Errorf("resolving account ID for profile ARN: %w", err)
		}
		cfg.DataAutomationProfileARN = fmt.Sprintf(
			"arn:aws:bedrock:%s:%s:data-automation-profile/us.data-automation-v1",
			region, aws.ToString(ident.Account))
		log.Info().Str("profileArn", cfg.DataAutomationProfileARN).Msg("Resolved Data Automation profile")
	}
	return nil
}
