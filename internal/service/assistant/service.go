package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/devashram/callseva/internal/config"
	"github.com/devashram/callseva/internal/model/call"
	"github.com/devashram/callseva/internal/service/dialogue"
)

const bookingToolName = "record_booking_details"

const defaultTimeout = 15 * time.Second

// bookingArgs mirrors the function schema the model fills in when the caller
// provides booking details.
type bookingArgs struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	ServiceName string `json:"service_name"`
}

// Service implements the dialogue engine's LanguageModel capability on top of
// an ark chat model, with the booking function schema bound as a tool.
type Service struct {
	chatModel model.ChatModel
	timeout   time.Duration
}

// NewService creates the assistant capability from configuration. The model
// invocation timeout bounds every turn; a non-positive value falls back to
// the default.
func NewService(ctx context.Context, cfg config.AIConfig, timeout time.Duration) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	if err := chatModel.BindTools([]*schema.ToolInfo{bookingTool()}); err != nil {
		return nil, fmt.Errorf("failed to bind booking tool: %w", err)
	}

	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Service{chatModel: chatModel, timeout: timeout}, nil
}

func bookingTool() *schema.ToolInfo {
	return &schema.ToolInfo{
		Name: bookingToolName,
		Desc: "Record booking details the caller has provided. Call this with only the values the caller actually stated.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"name": {
				Type: schema.String,
				Desc: "The caller's full name",
			},
			"email": {
				Type: schema.String,
				Desc: "The caller's email address",
			},
			"phone": {
				Type: schema.String,
				Desc: "The caller's phone number",
			},
			"service_name": {
				Type: schema.String,
				Desc: "The puja or service the caller wants to book",
			},
		}),
	}
}

// Converse sends the capped transcript to the model and translates its answer
// into the engine's tagged reply. Any transport failure, timeout, or
// malformed output is reported as ErrModelUnavailable so the engine fails
// toward a human.
func (s *Service) Converse(ctx context.Context, transcript []call.Turn) (dialogue.Reply, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := s.chatModel.Generate(ctx, toMessages(transcript))
	if err != nil {
		return dialogue.Reply{}, fmt.Errorf("%w: %v", dialogue.ErrModelUnavailable, err)
	}

	return parseReply(out)
}

func toMessages(transcript []call.Turn) []*schema.Message {
	msgs := make([]*schema.Message, 0, len(transcript))
	for _, turn := range transcript {
		switch turn.Role {
		case call.RoleSystem:
			msgs = append(msgs, schema.SystemMessage(turn.Text))
		case call.RoleAssistant:
			msgs = append(msgs, schema.AssistantMessage(turn.Text, nil))
		case call.RoleUser:
			msgs = append(msgs, schema.UserMessage(turn.Text))
		}
	}
	return msgs
}

// parseReply maps a raw model message onto the tagged reply type. The
// escalation sentinel counts only when it is the entire message.
func parseReply(msg *schema.Message) (dialogue.Reply, error) {
	if msg == nil {
		return dialogue.Reply{}, fmt.Errorf("%w: empty model response", dialogue.ErrModelUnavailable)
	}

	for _, tc := range msg.ToolCalls {
		if tc.Function.Name != bookingToolName {
			continue
		}
		var args bookingArgs
		if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
			return dialogue.Reply{}, fmt.Errorf("%w: malformed tool arguments: %v", dialogue.ErrModelUnavailable, err)
		}
		return dialogue.Reply{
			Kind: dialogue.ReplyFields,
			Fields: call.Draft{
				Name:        args.Name,
				Email:       args.Email,
				Phone:       args.Phone,
				ServiceName: args.ServiceName,
			},
		}, nil
	}

	text := strings.TrimSpace(msg.Content)
	if text == "" {
		return dialogue.Reply{}, fmt.Errorf("%w: empty model response", dialogue.ErrModelUnavailable)
	}
	if text == EscalationSentinel {
		return dialogue.Reply{Kind: dialogue.ReplyEscalation}, nil
	}

	return dialogue.Reply{Kind: dialogue.ReplyText, Text: text}, nil
}
