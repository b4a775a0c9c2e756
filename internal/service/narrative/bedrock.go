package narrative

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

// BedrockProvider calls Amazon Bedrock's Converse API with a single user
// turn per request.
type BedrockProvider struct {
	client  *bedrockruntime.Client
	timeout time.Duration
}

var _ Provider = (*BedrockProvider)(nil)

// NewBedrockProvider wraps a Bedrock runtime client. timeout bounds each
// Converse call; zero means no per-call bound beyond the context's own.
func NewBedrockProvider(client *bedrockruntime.Client, timeout time.Duration) *BedrockProvider {
	return &BedrockProvider{client: client, timeout: timeout}
}

func (p *BedrockProvider) IsAvailable() bool {
	return p.client != nil
}

// Complete sends one user message and returns the first text block of the
// model's reply.
func (p *BedrockProvider) Complete(ctx context.Context, prompt string, options CompletionOptions) (string, error) {
	if p.client == nil {
		return "", fmt.Errorf("bedrock client is not configured")
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	input := &bedrockruntime.ConverseInput{
		ModelId: aws.String(options.ModelID),
		Messages: []types.Message{
			{
				Role: types.ConversationRoleUser,
				Content: []types.ContentBlock{
					&types.ContentBlockMemberText{Value: prompt},
				},
			},
		},
	}
	if options.MaxTokens > 0 || options.Temperature > 0 {
		cfg := &types.InferenceConfiguration{}
		if options.MaxTokens > 0 {
			cfg.MaxTokens = aws.Int32(int32(options.MaxTokens))
		}
		if options.Temperature > 0 {
			cfg.Temperature = aws.Float32(float32(options.Temperature))
		}
		input.InferenceConfig = cfg
	}

	out, err := p.client.Converse(ctx, input)
	if err != nil {
		return "", fmt.Errorf("bedrock converse failed: %w", err)
	}

	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return "", fmt.Errorf("unexpected bedrock output type %T", out.Output)
	}
	for _, block := range msg.Value.Content {
		if text, ok := block.(*types.ContentBlockMemberText); ok && text.Value != "" {
			return text.Value, nil
		}
	}
	return "", fmt.Errorf("no text content in bedrock response")
}
