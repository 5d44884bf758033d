package llm

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"google.golang.org/genai"
)

func TestAcceptRejectsUnusableReplies(t *testing.T) {
	var maxTok *ErrMaxTokensExceeded
	if _, err := accept(reply{text: "half a", stop: StopMaxTokens}); !errors.As(err, &maxTok) || maxTok.Text != "half a" {
		t.Fatalf("expected ErrMaxTokensExceeded with partial text, got %v", err)
	}
	var blocked *ErrBlocked
	if _, err := accept(reply{text: "x", stop: StopBlocked, reason: "refusal"}); !errors.As(err, &blocked) || blocked.Reason != "refusal" {
		t.Fatalf("expected ErrBlocked, got %v", err)
	}
	var empty *ErrEmptyResponse
	if _, err := accept(reply{text: " \n", stop: StopEnd, model: "m"}); !errors.As(err, &empty) || empty.Model != "m" {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}

	resp, err := accept(reply{text: "ok", stop: StopEnd, model: "m", usage: tokenUsage(3, 4)})
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if resp.StopReason != StopEnd || resp.Usage.TotalTokens != 7 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestClassifyStatus(t *testing.T) {
	base := errors.New("boom")
	var rl *ErrRateLimit
	if err := classifyStatus(http.StatusTooManyRequests, base); !errors.As(err, &rl) || !errors.Is(err, base) {
		t.Fatalf("expected rate limit wrapping the cause, got %v", err)
	}
	var unavail *ErrProviderUnavailable
	for _, status := range []int{0, http.StatusBadGateway, http.StatusBadRequest} {
		if err := classifyStatus(status, base); !errors.As(err, &unavail) {
			t.Fatalf("status %d: expected unavailable, got %v", status, err)
		}
	}
}

func TestMockProviderStopReasons(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Text: "cut off", Stop: StopMaxTokens},
		MockResponse{Text: "   "},
	)
	var maxTok *ErrMaxTokensExceeded
	if _, err := mock.Generate(context.Background(), Request{}); !errors.As(err, &maxTok) {
		t.Fatalf("expected truncation error, got %v", err)
	}
	var empty *ErrEmptyResponse
	if _, err := mock.Generate(context.Background(), Request{}); !errors.As(err, &empty) {
		t.Fatalf("expected empty response error, got %v", err)
	}

	mock.Fallback = "fallback"
	resp, err := mock.Generate(context.Background(), Request{})
	if err != nil || resp.Text != "fallback" || resp.Model != "mock" {
		t.Fatalf("unexpected fallback reply: %+v, %v", resp, err)
	}
}

func TestGeminiReply(t *testing.T) {
	blocked := geminiReply("g", &genai.GenerateContentResponse{
		PromptFeedback: &genai.GenerateContentResponsePromptFeedback{BlockReason: genai.BlockedReasonSafety},
	})
	if blocked.stop != StopBlocked || blocked.reason != "SAFETY" {
		t.Fatalf("unexpected blocked reply: %+v", blocked)
	}

	truncated := geminiReply("g", &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      genai.NewContentFromText("partial", genai.RoleModel),
			FinishReason: genai.FinishReasonMaxTokens,
		}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{PromptTokenCount: 5, CandidatesTokenCount: 2},
	})
	if truncated.stop != StopMaxTokens || truncated.text != "partial" || truncated.usage.TotalTokens != 7 {
		t.Fatalf("unexpected truncated reply: %+v", truncated)
	}

	cfg := geminiConfig(Request{System: "sys", MaxTokens: 10, Temperature: 0.5})
	if len(cfg.SafetySettings) != len(geminiHarmCategories) || cfg.MaxOutputTokens != 10 || *cfg.Temperature != 0.5 {
		t.Fatalf("unexpected gemini config: %+v", cfg)
	}
}
