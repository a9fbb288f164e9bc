package assist

import (
	"context"
	"fmt"
	"strings"

	"github.com/nwsirlp/skillgraph/pkg/ai"
	"github.com/nwsirlp/skillgraph/pkg/logger"
	"github.com/nwsirlp/skillgraph/pkg/match"
	"github.com/nwsirlp/skillgraph/pkg/store"
)

// fallbackAnswer is the last line of degradation: shown when neither chat
// mode could produce a grounded answer.
const fallbackAnswer = "Sorry, I could not process that request right now. Please try again later."

type assistantOptions struct {
	SystemPrompts []string
	Model         string
	IntentOnly    bool
}

// AssistantOption is a functional option for configuring assistant behavior.
type AssistantOption func(*assistantOptions)

// WithSystemPrompts returns an AssistantOption that appends additional system
// prompts to guide the AI's response generation.
func WithSystemPrompts(prompts ...string) AssistantOption {
	return func(o *assistantOptions) {
		o.SystemPrompts = append(o.SystemPrompts, prompts...)
	}
}

// WithModel returns an AssistantOption that specifies which AI model to use
// for generating responses.
func WithModel(model string) AssistantOption {
	return func(o *assistantOptions) {
		o.Model = model
	}
}

// WithIntentOnly returns an AssistantOption that skips the agentic tool loop
// and always answers through the structured intent pipeline. Used with
// adapters that cannot drive tool conversations.
func WithIntentOnly() AssistantOption {
	return func(o *assistantOptions) {
		o.IntentOnly = true
	}
}

// Assistant answers HR staffing questions over the skill graph. It prefers
// an agentic tool conversation; when the adapter cannot run one, it distills
// the question into a structured search intent, runs the matching engine
// once, and grounds the answer on the formatted results.
type Assistant struct {
	aiClient ai.AIClient
	store    store.Storage
	engine   *match.Engine
	options  assistantOptions
}

// NewAssistant creates an assistant over the given AI client, store, and
// matching engine.
func NewAssistant(aiC ai.AIClient, st store.Storage, engine *match.Engine, opts ...AssistantOption) *Assistant {
	a := Assistant{
		aiClient: aiC,
		store:    st,
		engine:   engine,
	}
	for _, o := range opts {
		o(&a.options)
	}
	return &a
}

// SearchIntent is the structured search request distilled from a staffing
// question in intent mode.
type SearchIntent struct {
	Query          string   `json:"query" jsonschema_description:"Free-text requirement to match candidates against."`
	Department     string   `json:"department" jsonschema_description:"Department filter, empty unless the user named one."`
	MinProficiency int      `json:"min_proficiency" jsonschema_description:"Minimum proficiency 1-5, 0 for no filter."`
	Certified      bool     `json:"certified" jsonschema_description:"Whether only certified skills count."`
	SkillNames     []string `json:"skill_names" jsonschema_description:"Skill names the user mentioned verbatim."`
}

// Chat answers the conversation's latest question. It never returns an
// error: a failed agentic run falls back to intent mode, and a failed intent
// run degrades to an apologetic text answer. Activity is recorded into trace
// for the response's explainability block.
func (a *Assistant) Chat(ctx context.Context, msgs []ai.ChatMessage, trace Tracer) string {
	if len(msgs) == 0 || strings.TrimSpace(msgs[len(msgs)-1].Message) == "" {
		return fallbackAnswer
	}

	if !a.options.IntentOnly {
		answer, err := a.chatAgentic(ctx, msgs, trace)
		if err == nil {
			return answer
		}
		logger.Warn("[Assist] Agentic chat failed, falling back to intent mode", "err", err)
	}

	answer, err := a.chatIntent(ctx, msgs, trace)
	if err != nil {
		logger.Error("[Assist] Chat failed", "err", err)
		return fallbackAnswer
	}
	return answer
}

func (a *Assistant) generateOpts() []ai.GenerateOption {
	systemPrompts := []string{ai.AssistantToolPrompt}
	systemPrompts = append(systemPrompts, a.options.SystemPrompts...)

	opts := []ai.GenerateOption{
		ai.WithSystemPrompts(systemPrompts...),
	}
	if a.options.Model != "" {
		opts = append(opts, ai.WithModel(a.options.Model))
	}
	return opts
}

func (a *Assistant) chatAgentic(ctx context.Context, msgs []ai.ChatMessage, trace Tracer) (string, error) {
	tools := GetToolList(a.store, a.engine, trace)

	resp, err := a.aiClient.GenerateChatWithTools(ctx, msgs, tools, a.generateOpts()...)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(resp) == "" {
		return "", fmt.Errorf("empty agentic response")
	}
	return resp, nil
}

func (a *Assistant) chatIntent(ctx context.Context, msgs []ai.ChatMessage, trace Tracer) (string, error) {
	question := msgs[len(msgs)-1].Message

	var intent SearchIntent
	err := a.aiClient.GenerateCompletionWithFormat(
		ctx,
		"search_intent",
		"Structured search request distilled from an HR staffing question.",
		fmt.Sprintf(ai.IntentPrompt, question),
		&intent,
	)
	if err != nil {
		return "", fmt.Errorf("failed to parse search intent: %w", err)
	}
	if strings.TrimSpace(intent.Query) == "" {
		intent.Query = question
	}

	skillIDs, err := a.resolveSkillNames(ctx, intent.SkillNames, trace)
	if err != nil {
		return "", err
	}

	result := a.engine.Search(ctx, match.SearchParams{
		Query:          intent.Query,
		Department:     intent.Department,
		MinProficiency: intent.MinProficiency,
		CertifiedOnly:  intent.Certified,
		SkillIDs:       skillIDs,
	})
	recordCandidates(trace, result.Candidates)

	if len(result.Candidates) == 0 {
		return a.generateNoCandidatesResponse(ctx, question), nil
	}

	answer, err := a.aiClient.GenerateCompletion(
		ctx,
		fmt.Sprintf(ai.AnswerPrompt, question, formatCandidates(result)),
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate answer: %w", err)
	}
	return answer, nil
}

// resolveSkillNames maps user-mentioned skill names to catalog IDs through a
// case-insensitive contains lookup. Names that resolve to nothing are
// dropped; the free-text query still covers them semantically.
func (a *Assistant) resolveSkillNames(ctx context.Context, names []string, trace Tracer) ([]string, error) {
	var ids []string
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		skills, err := a.store.ListSkills(ctx, store.SkillFilter{NameContains: name})
		if err != nil {
			return nil, fmt.Errorf("failed to resolve skill name %q: %w", name, err)
		}
		for _, skill := range skills {
			ids = append(ids, skill.ID)
			RecordQueriedSkillIDs(trace, skill.ID)
		}
	}
	return ids, nil
}

// generateNoCandidatesResponse produces a response in the user's language
// when the matching engine found nobody relevant.
func (a *Assistant) generateNoCandidatesResponse(ctx context.Context, question string) string {
	res, err := a.aiClient.GenerateCompletion(ctx, fmt.Sprintf(ai.NoCandidatesPrompt, question))
	if err != nil {
		logger.Error("[Assist] Failed to generate no-candidates response", "err", err)
		return "No employees in the current skill data match this request. Try rephrasing the requirement or importing more data."
	}
	return res
}
