// Package bda drives Bedrock Data Automation video analysis jobs: invoke,
// poll to completion, and fetch the blueprint output from S3.
package bda

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	bdar "github.com/aws/aws-sdk-go-v2/service/bedrockdataautomationruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockdataautomationruntime/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/avelar/gamelens/internal/analysis"
	"github.com/avelar/gamelens/internal/s3util"
)

// Client is the subset of *bedrockdataautomationruntime.Client the runner
// uses.
type Client interface {
	InvokeDataAutomationAsync(ctx context.Context, params *bdar.InvokeDataAutomationAsyncInput, optFns ...func(*bdar.Options)) (*bdar.InvokeDataAutomationAsyncOutput, error)
	GetDataAutomationStatus(ctx context.Context, params *bdar.GetDataAutomationStatusInput, optFns ...func(*bdar.Options)) (*bdar.GetDataAutomationStatusOutput, error)
}

// Runner runs one analysis job end to end. Poll interval and timeout come
// from configuration; the defaults match the project's console setup
// (30s poll, 30m ceiling).
type Runner struct {
	client       Client
	objects      s3util.ObjectStore
	bucket       string
	projectARN   string
	profileARN   string
	pollInterval time.Duration
	timeout      time.Duration
}

// NewRunner wires a runner. projectARN and profileARN must already be
// resolved (see awsboot.ResolveProfileARN).
func NewRunner(client Client, objects s3util.ObjectStore, bucket, projectARN, profileARN string, pollInterval, timeout time.Duration) *Runner {
	return &Runner{
		client:       client,
		objects:      objects,
		bucket:       bucket,
		projectARN:   projectARN,
		profileARN:   profileARN,
		pollInterval: pollInterval,
		timeout:      timeout,
	}
}

// Analyze runs a Data Automation job against the video at videoURI and
// returns the raw blueprint document. It blocks until the job finishes,
// fails, or the configured timeout elapses.
func (r *Runner) Analyze(ctx context.Context, videoURI string) (analysis.RawAnalysisDocument, error) {
	var doc analysis.RawAnalysisDocument

	jobName := "game-analysis-" + uuid.NewString()
	outputURI := s3util.URI(r.bucket, "data-automation-results/"+jobName+"/")

	invocationARN, err := r.start(ctx, videoURI, outputURI)
	if err != nil {
		return doc, err
	}
	log.Info().
		Str("invocationArn", invocationARN).
		Str("videoUri", videoURI).
		Str("outputUri", outputURI).
		Msg("Started Data Automation job")

	metadataURI, err := r.waitForCompletion(ctx, invocationARN)
	if err != nil {
		return doc, err
	}

	var meta JobMetadata
	if err := s3util.GetJSONFromURI(ctx, r.objects, metadataURI, &meta); err != nil {
		return doc, fmt.Errorf("fetching job metadata: %w", err)
	}
	customURI, _, err := meta.OutputPaths()
	if err != nil {
		return doc, err
	}

	if err := s3util.GetJSONFromURI(ctx, r.objects, customURI, &doc); err != nil {
		return doc, fmt.Errorf("fetching blueprint output: %w", err)
	}
	log.Info().Str("invocationArn", invocationARN).Int("chapters", len(doc.Chapters)).Msg("Data Automation job complete")
	return doc, nil
}

func (r *Runner) start(ctx context.Context, videoURI, outputURI string) (string, error) {
	out, err := r.client.InvokeDataAutomationAsync(ctx, &bdar.InvokeDataAutomationAsyncInput{
		InputConfiguration: &types.InputConfiguration{
			S3Uri: aws.String(videoURI),
		},
		OutputConfiguration: &types.OutputConfiguration{
			S3Uri: aws.String(outputURI),
		},
		DataAutomationConfiguration: &types.DataAutomationConfiguration{
			DataAutomationProjectArn: aws.String(r.projectARN),
			Stage:                    types.DataAutomationStageLive,
		},
		DataAutomationProfileArn: aws.String(r.profileARN),
	})
	if err != nil {
		return "", fmt.Errorf("invoking data automation: %w", err)
	}
	return aws.ToString(out.InvocationArn), nil
}

// waitForCompletion polls until the job reaches a terminal status and
// returns the job metadata URI.
func (r *Runner) waitForCompletion(ctx context.Context, invocationARN string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		out, err := r.client.GetDataAutomationStatus(ctx, &bdar.GetDataAutomationStatusInput{
			InvocationArn: aws.String(invocationARN),
		})
		if err != nil {
			return "", fmt.Errorf("polling job status: %w", err)
		}

		switch out.Status {
		case types.AutomationJobStatusSuccess:
			if out.OutputConfiguration == nil || aws.ToString(out.OutputConfiguration.S3Uri) == "" {
				return "", fmt.Errorf("job %s succeeded without an output location", invocationARN)
			}
			return aws.ToString(out.OutputConfiguration.S3Uri), nil
		case types.AutomationJobStatusServiceError, types.AutomationJobStatusClientError:
			return "", fmt.Errorf("job %s failed with status %s: %s",
				invocationARN, out.Status, aws.ToString(out.ErrorMessage))
		case types.AutomationJobStatusCreated, types.AutomationJobStatusInProgress:
			log.Debug().Str("invocationArn", invocationARN).Str("status", string(out.Status)).Msg("Job still running")
		default:
			return "", fmt.Errorf("job %s returned unexpected status %s", invocationARN, out.Status)
		}

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("waiting for job %s: %w", invocationARN, ctx.Err())
		case <-ticker.C:
		}
	}
}
