package coach

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/interview-coach/internal/ai"
	"github.com/spigell/interview-coach/internal/types"
)

type stubGenerator struct {
	reply string
	err   error

	mu      sync.Mutex
	prompts []ai.Prompt
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt ai.Prompt) (string, error) {
	s.mu.Lock()
	s.prompts = append(s.prompts, prompt)
	s.mu.Unlock()
	return s.reply, s.err
}

func (s *stubGenerator) Model() string { return "stub-model" }

func (s *stubGenerator) lastPrompt(t *testing.T) ai.Prompt {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.prompts) == 0 {
		t.Fatalf("generator was not called")
	}
	return s.prompts[len(s.prompts)-1]
}

type countingObserver struct {
	mu        sync.Mutex
	fallbacks map[string]int
	calls     []recordedCall
}

type recordedCall struct {
	service, operation string
	err                error
}

func (o *countingObserver) RecordCall(service, operation string, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, recordedCall{service: service, operation: operation, err: err})
}

func (o *countingObserver) recordedCalls() []recordedCall {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]recordedCall(nil), o.calls...)
}

func (o *countingObserver) RecordFallback(operation string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fallbacks == nil {
		o.fallbacks = map[string]int{}
	}
	o.fallbacks[operation]++
}

func (o *countingObserver) RecordInterview(string) {}

func (o *countingObserver) count(operation string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.fallbacks[operation]
}

const validFeedback = `{
  "overallScore": 8.5,
  "vocabularyScore": 8,
  "accuracyScore": 9,
  "confidenceScore": 7.5,
  "feedback": "Strong answers with concrete examples.",
  "strengths": ["Structured answers", "Specific metrics", "Calm delivery"],
  "improvements": ["Shorter intro", "More questions for the interviewer", "Slow down"],
  "recommendations": ["Rehearse the intro", "Prepare two questions", "Record a mock session"]
}`

func TestGenerateFeedbackParsesModelReply(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{reply: validFeedback}
	c := New(gen, zap.NewNop(), nil, 0)

	got := c.GenerateFeedback(context.Background(), "Interviewer: hi\nCandidate: hello", types.Technical)

	if got.Fallback {
		t.Fatalf("expected model feedback, got fallback")
	}
	if got.OverallScore != 8.5 || got.ConfidenceScore != 7.5 {
		t.Fatalf("unexpected scores: %+v", got)
	}
	if len(got.Strengths) != 3 || got.Strengths[0] != "Structured answers" {
		t.Fatalf("unexpected strengths: %v", got.Strengths)
	}

	prompt := gen.lastPrompt(t)
	if prompt.System != feedbackSystemPrompt {
		t.Fatalf("unexpected system prompt %q", prompt.System)
	}
	if prompt.Temperature != feedbackTemperature || prompt.MaxTokens != feedbackMaxTokens {
		t.Fatalf("unexpected sampling: %+v", prompt)
	}
	if !strings.Contains(prompt.User, "Technical interview transcript") {
		t.Fatalf("prompt should name the interview type: %q", prompt.User)
	}
	if !strings.Contains(prompt.User, "Candidate: hello") {
		t.Fatalf("prompt should embed the transcript")
	}
}

func TestGenerateFeedbackAcceptsFencedAndRepairableJSON(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"fenced":         "```json\n" + validFeedback + "\n```",
		"trailing comma": strings.Replace(validFeedback, `"Record a mock session"]`, `"Record a mock session"],`, 1),
	}

	for name, reply := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			c := New(&stubGenerator{reply: reply}, zap.NewNop(), nil, 0)
			got := c.GenerateFeedback(context.Background(), "transcript", types.HR)
			if got.Fallback {
				t.Fatalf("expected reply to be accepted")
			}
			if got.AccuracyScore != 9 {
				t.Fatalf("unexpected accuracy score %v", got.AccuracyScore)
			}
		})
	}
}

func TestGenerateFeedbackFallsBack(t *testing.T) {
	t.Parallel()

	tests := map[string]*stubGenerator{
		"provider error":    {err: errors.New("503 service unavailable")},
		"not json":          {reply: "I think the candidate did great!"},
		"score above range": {reply: strings.Replace(validFeedback, "8.5", "11", 1)},
		"missing field":     {reply: `{"overallScore": 8}`},
		"too few strengths": {reply: strings.Replace(validFeedback, `["Structured answers", "Specific metrics", "Calm delivery"]`, `["Structured answers"]`, 1)},
		"blank feedback":    {reply: strings.Replace(validFeedback, `"Strong answers with concrete examples."`, `"   "`, 1)},
	}

	for name, gen := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			core, logs := observer.New(zap.WarnLevel)
			obs := &countingObserver{}
			c := New(gen, zap.New(core), obs, 0)

			got := c.GenerateFeedback(context.Background(), "transcript", types.SystemDesign)

			if !got.Fallback {
				t.Fatalf("expected fallback feedback")
			}
			if got.OverallScore != 7.0 || got.VocabularyScore != 7.5 || got.AccuracyScore != 6.5 || got.ConfidenceScore != 7.0 {
				t.Fatalf("unexpected fallback scores: %+v", got)
			}
			if len(got.Strengths) != 4 || len(got.Improvements) != 4 || len(got.Recommendations) != 4 {
				t.Fatalf("fallback lists must hold 4 items each: %+v", got)
			}
			if !strings.Contains(got.Feedback, "System Design interview") {
				t.Fatalf("fallback text should name the interview type: %q", got.Feedback)
			}
			if obs.count(operationFeedback) != 1 {
				t.Fatalf("expected one fallback recorded, got %d", obs.count(operationFeedback))
			}
			if logs.FilterMessage("serving fallback").Len() != 1 {
				t.Fatalf("expected fallback warning, got %d entries", logs.Len())
			}
		})
	}
}

func TestModelCallsAreRecorded(t *testing.T) {
	t.Parallel()

	obs := &countingObserver{}
	failure := errors.New("rate limited")
	c := New(&stubGenerator{reply: validFeedback}, zap.NewNop(), obs, 0)
	c.GenerateFeedback(context.Background(), "transcript", types.HR)

	c = New(&stubGenerator{err: failure}, zap.NewNop(), obs, 0)
	c.GenerateQuestions(context.Background(), "resume", "jd", types.HR)

	calls := obs.recordedCalls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 recorded calls, got %d", len(calls))
	}
	if calls[0] != (recordedCall{service: "llm", operation: operationFeedback}) {
		t.Fatalf("unexpected feedback call record %+v", calls[0])
	}
	if calls[1].service != "llm" || calls[1].operation != operationQuestions || !errors.Is(calls[1].err, failure) {
		t.Fatalf("unexpected questions call record %+v", calls[1])
	}
}

func TestModelCallsSkippedWithoutGenerator(t *testing.T) {
	t.Parallel()

	obs := &countingObserver{}
	New(nil, nil, obs, 0).GenerateFeedback(context.Background(), "transcript", types.HR)
	if len(obs.recordedCalls()) != 0 {
		t.Fatalf("no provider call should be recorded without a generator")
	}
}

func TestGenerateFeedbackWithoutGenerator(t *testing.T) {
	t.Parallel()

	c := New(nil, nil, nil, 0)
	got := c.GenerateFeedback(context.Background(), "transcript", types.HR)
	if !got.Fallback {
		t.Fatalf("expected fallback without a generator")
	}
}

func TestFallbackFeedbackIsFreshCopy(t *testing.T) {
	t.Parallel()

	first := FallbackFeedback(types.HR)
	first.Strengths[0] = "mutated"

	second := FallbackFeedback(types.HR)
	if second.Strengths[0] != "Clear communication style" {
		t.Fatalf("fallback lists must not be shared, got %q", second.Strengths[0])
	}
	if len(second.Strengths) != 4 || len(second.Improvements) != 4 || len(second.Recommendations) != 4 {
		t.Fatalf("unexpected fallback list sizes")
	}
}

func TestGenerateQuestionsParsesModelReply(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{reply: "```json\n[\" What is a goroutine? \", \"How does the scheduler work?\"]\n```"}
	c := New(gen, zap.NewNop(), nil, 0)

	got := c.GenerateQuestions(context.Background(), "Go developer", "Backend role", types.Technical)

	if len(got) != 2 || got[0] != "What is a goroutine?" {
		t.Fatalf("unexpected questions: %q", got)
	}

	prompt := gen.lastPrompt(t)
	if prompt.System != questionsSystemPrompt {
		t.Fatalf("unexpected system prompt %q", prompt.System)
	}
	if prompt.Temperature != questionsTemperature || prompt.MaxTokens != questionsMaxTokens {
		t.Fatalf("unexpected sampling: %+v", prompt)
	}
	for _, want := range []string{"Resume: Go developer", "Job Description: Backend role", "Technical interview questions"} {
		if !strings.Contains(prompt.User, want) {
			t.Fatalf("prompt missing %q: %q", want, prompt.User)
		}
	}
}

func TestGenerateQuestionsFallsBack(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		gen           *stubGenerator
		interviewType types.InterviewType
		first         string
	}{
		{
			name:          "provider error",
			gen:           &stubGenerator{err: errors.New("timeout")},
			interviewType: types.Technical,
			first:         "Explain your experience with the technologies mentioned in the job description.",
		},
		{
			name:          "wrapped object",
			gen:           &stubGenerator{reply: `{"questions": ["Why us?"]}`},
			interviewType: types.SystemDesign,
			first:         "Design a scalable system for a social media platform.",
		},
		{
			name:          "empty array",
			gen:           &stubGenerator{reply: `[]`},
			interviewType: types.HR,
			first:         "Tell me about yourself and your career journey.",
		},
		{
			name:          "unknown type",
			gen:           &stubGenerator{reply: "no"},
			interviewType: types.InterviewType("Behavioural"),
			first:         "Tell me about yourself and your career journey.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			obs := &countingObserver{}
			c := New(tt.gen, zap.NewNop(), obs, 0)
			got := c.GenerateQuestions(context.Background(), "resume", "jd", tt.interviewType)

			if len(got) != 5 || got[0] != tt.first {
				t.Fatalf("unexpected fallback questions: %q", got)
			}
			if obs.count(operationQuestions) != 1 {
				t.Fatalf("expected one fallback recorded")
			}
		})
	}
}

func TestExtractJSON(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```\n[1]\n```":           `[1]`,
		"  {\"a\":1}  ":           `{"a":1}`,
		"`[]`":                    `[]`,
	}

	for input, want := range tests {
		if got := extractJSON(input); got != want {
			t.Errorf("extractJSON(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestSchemaErrorListsViolations(t *testing.T) {
	t.Parallel()

	var fb types.Feedback
	err := parseStrict(`{"overallScore": -1}`, feedbackSchema, &fb)

	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if len(schemaErr.Violations) < 2 {
		t.Fatalf("expected several violations, got %v", schemaErr.Violations)
	}
}
