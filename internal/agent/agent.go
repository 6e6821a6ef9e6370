// Package agent proxies conversations to a Bedrock Agent and builds the
// game context that primes each session.
package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/types"
	"github.com/rs/zerolog/log"
)

// Runtime is the subset of *bedrockagentruntime.Client we use.
type Runtime interface {
	InvokeAgent(ctx context.Context, params *bedrockagentruntime.InvokeAgentInput, optFns ...func(*bedrockagentruntime.Options)) (*bedrockagentruntime.InvokeAgentOutput, error)
}

// Client invokes one configured Bedrock Agent alias.
type Client struct {
	runtime Runtime
	agentID string
	aliasID string
}

// NewClient wires an agent client. agentID and aliasID must already be
// resolved (env or SSM, see awsboot.LoadAgentConfig).
func NewClient(runtime Runtime, agentID, aliasID string) *Client {
	return &Client{runtime: runtime, agentID: agentID, aliasID: aliasID}
}

// Invoke sends input to the agent under the given session and returns the
// complete response text. The agent streams chunks; we accumulate them
// since the HTTP surface replies with whole messages. Session attributes
// ride along so the agent's action groups can locate the video.
func (c *Client) Invoke(ctx context.Context, sessionID, input string, attrs map[string]string) (string, error) {
	in := &bedrockagentruntime.InvokeAgentInput{
		AgentId:      aws.String(c.agentID),
		AgentAliasId: aws.String(c.aliasID),
		SessionId:    aws.String(sessionID),
		InputText:    aws.String(input),
		EnableTrace:  aws.Bool(true),
	}
	if len(attrs) > 0 {
		in.SessionState = &types.SessionState{SessionAttributes: attrs}
	}

	out, err := c.runtime.InvokeAgent(ctx, in)
	if err != nil {
		return "", fmt.Errorf("invoking agent %s/%s: %w", c.agentID, c.aliasID, err)
	}

	stream := out.GetStream()
	defer stream.Close()

	var b strings.Builder
	for event := range stream.Events() {
		switch v := event.(type) {
		case *types.ResponseStreamMemberChunk:
			b.Write(v.Value.Bytes)
		default:
			log.Debug().Type("event", event).Msg("Ignoring non-chunk agent event")
		}
	}
	if err := stream.Err(); err != nil {
		return "", fmt.Errorf("reading agent response stream: %w", err)
	}

	log.Debug().Str("sessionId", sessionID).Int("responseLen", b.Len()).Msg("Agent response complete")
	return b.String(), nil
}
