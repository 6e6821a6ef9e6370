package bda

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	bdar "github.com/aws/aws-sdk-go-v2/service/bedrockdataautomationruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockdataautomationruntime/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/avelar/gamelens/internal/analysis"
)

type fakeBDAClient struct {
	statuses   []types.AutomationJobStatus
	statusCall int
	invokeErr  error
	outputURI  string
	errMessage string
}

func (f *fakeBDAClient) InvokeDataAutomationAsync(ctx context.Context, params *bdar.InvokeDataAutomationAsyncInput, optFns ...func(*bdar.Options)) (*bdar.InvokeDataAutomationAsyncOutput, error) {
	if f.invokeErr != nil {
		return nil, f.invokeErr
	}
	return &bdar.InvokeDataAutomationAsyncOutput{
		InvocationArn: aws.String("arn:aws:bedrock:us-east-1:123456789012:data-automation-invocation/test"),
	}, nil
}

func (f *fakeBDAClient) GetDataAutomationStatus(ctx context.Context, params *bdar.GetDataAutomationStatusInput, optFns ...func(*bdar.Options)) (*bdar.GetDataAutomationStatusOutput, error) {
	status := f.statuses[f.statusCall]
	if f.statusCall < len(f.statuses)-1 {
		f.statusCall++
	}
	out := &bdar.GetDataAutomationStatusOutput{Status: status}
	if status == types.AutomationJobStatusSuccess {
		out.OutputConfiguration = &types.OutputConfiguration{S3Uri: aws.String(f.outputURI)}
	}
	if f.errMessage != "" {
		out.ErrorMessage = aws.String(f.errMessage)
	}
	return out, nil
}

// fakeObjects serves canned JSON documents keyed by object key.
type fakeObjects struct {
	docs map[string]any
}

func (f *fakeObjects) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjects) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	doc, ok := f.docs[aws.ToString(params.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(string(body)))}, nil
}

func newTestRunner(client *fakeBDAClient, objects *fakeObjects) *Runner {
	return NewRunner(client, objects, "media",
		"arn:aws:bedrock:us-east-1:aws:data-automation-project/public-default",
		"arn:aws:bedrock:us-east-1:123456789012:data-automation-profile/us.data-automation-v1",
		time.Millisecond, time.Second)
}

func TestRunner_AnalyzeSuccess(t *testing.T) {
	meta := JobMetadata{OutputMetadata: []AssetMetadata{{
		SegmentMetadata: []SegmentMetadata{{
			StandardOutputPath: "s3://media/results/job/standard.json",
			CustomOutputPath:   "s3://media/results/job/custom.json",
		}},
	}}}
	doc := analysis.RawAnalysisDocument{
		Chapters: []analysis.RawChapter{{StartTimestampMillis: 0, EndTimestampMillis: 15000}},
	}

	client := &fakeBDAClient{
		statuses: []types.AutomationJobStatus{
			types.AutomationJobStatusCreated,
			types.AutomationJobStatusInProgress,
			types.AutomationJobStatusSuccess,
		},
		outputURI: "s3://media/results/job/job_metadata.json",
	}
	objects := &fakeObjects{docs: map[string]any{
		"results/job/job_metadata.json": meta,
		"results/job/custom.json":       doc,
	}}

	got, err := newTestRunner(client, objects).Analyze(context.Background(), "s3://media/videos/v/game.mp4")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(got.Chapters) != 1 || got.Chapters[0].EndTimestampMillis != 15000 {
		t.Errorf("unexpected document: %+v", got)
	}
}

func TestRunner_AnalyzeJobFailure(t *testing.T) {
	client := &fakeBDAClient{
		statuses:   []types.AutomationJobStatus{types.AutomationJobStatusClientError},
		errMessage: "input video is corrupt",
	}

	_, err := newTestRunner(client, &fakeObjects{}).Analyze(context.Background(), "s3://media/videos/v/game.mp4")
	if err == nil {
		t.Fatal("expected error for failed job")
	}
	if !strings.Contains(err.Error(), "input video is corrupt") {
		t.Errorf("error should carry the job's message, got: %v", err)
	}
}

func TestRunner_AnalyzeTimeout(t *testing.T) {
	client := &fakeBDAClient{
		statuses: []types.AutomationJobStatus{types.AutomationJobStatusInProgress},
	}
	r := NewRunner(client, &fakeObjects{}, "media", "project-arn", "profile-arn",
		time.Millisecond, 20*time.Millisecond)

	_, err := r.Analyze(context.Background(), "s3://media/videos/v/game.mp4")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestRunner_AnalyzeInvokeError(t *testing.T) {
	client := &fakeBDAClient{invokeErr: errors.New("AccessDeniedException")}
	_, err := newTestRunner(client, &fakeObjects{}).Analyze(context.Background(), "s3://media/videos/v/game.mp4")
	if err == nil {
		t.Fatal("expected invoke error to propagate")
	}
}
