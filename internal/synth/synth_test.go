package synth_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/openai/openai-go"

	"github.com/whaaaley/cynthia/common/llm"
	"github.com/whaaaley/cynthia/internal/cynerr"
	"github.com/whaaaley/cynthia/internal/prompt"
	"github.com/whaaaley/cynthia/internal/synth"
)

// mockLLMClient implements llm.Client for testing.
type mockLLMClient struct {
	chatFn    func(ctx context.Context, req llm.Request, result any) (*llm.Response, error)
	callCount int
	lastReq   llm.Request
}

func (m *mockLLMClient) Chat(ctx context.Context, req llm.Request, result any) (*llm.Response, error) {
	m.callCount++
	m.lastReq = req
	if m.chatFn != nil {
		return m.chatFn(ctx, req, result)
	}
	return nil, errors.New("mock not configured")
}

func (m *mockLLMClient) Model() string {
	return "test-model"
}

func respondWith(fn synth.Function) func(context.Context, llm.Request, any) (*llm.Response, error) {
	return func(_ context.Context, _ llm.Request, result any) (*llm.Response, error) {
		data, _ := json.Marshal(fn)
		if err := json.Unmarshal(data, result); err != nil {
			return nil, err
		}
		return &llm.Response{PromptTokens: 120, CompletionTokens: 40}, nil
	}
}

var _ = Describe("Synthesizer", func() {
	var (
		ctx     context.Context
		mockLLM *mockLLMClient
		prompts prompt.Prompts
	)

	BeforeEach(func() {
		ctx = context.Background()
		mockLLM = &mockLLMClient{}
		prompts = prompt.Prompts{System: "system rules", User: "Feature: add"}
	})

	It("returns the generated code and the user prompt", func() {
		mockLLM.chatFn = respondWith(synth.Function{
			Name:         "add",
			Language:     "typescript",
			Type:         "function",
			Dependencies: "none",
			Code:         "export default function add(a: number, b: number): number { return a + b }",
		})
		seed := int64(7)
		maxTokens := 800
		s := synth.New(mockLLM, synth.Options{Temperature: 0.1, Seed: &seed, MaxTokens: &maxTokens})

		res, err := s.Synthesize(ctx, prompts)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Code).To(HavePrefix("export default function add"))
		Expect(res.Prompt).To(Equal("Feature: add"))
		Expect(res.Name).To(Equal("add"))
		Expect(res.Usage.PromptTokens).To(Equal(120))

		Expect(mockLLM.callCount).To(Equal(1))
		Expect(mockLLM.lastReq.SystemPrompt).To(Equal("system rules"))
		Expect(mockLLM.lastReq.UserPrompt).To(Equal("Feature: add"))
		Expect(mockLLM.lastReq.SchemaName).To(Equal("typescript_function"))
		Expect(mockLLM.lastReq.Schema).NotTo(BeNil())
		Expect(*mockLLM.lastReq.Temperature).To(Equal(0.1))
		Expect(*mockLLM.lastReq.Seed).To(Equal(int64(7)))
		Expect(mockLLM.lastReq.MaxTokens).To(Equal(800))
	})

	It("wraps client errors", func() {
		boom := errors.New("connection reset")
		mockLLM.chatFn = func(context.Context, llm.Request, any) (*llm.Response, error) {
			return nil, boom
		}

		_, err := synth.New(mockLLM, synth.Options{}).Synthesize(ctx, prompts)
		Expect(err).To(MatchError(boom))
		Expect(cynerr.KindOf(err)).To(Equal(cynerr.KindUnknown))
	})

	It("marks a rejected request as a precondition", func() {
		rejected := &openai.Error{
			StatusCode: http.StatusUnauthorized,
			Request:    httptest.NewRequest(http.MethodPost, "/v1/chat/completions", nil),
			Response:   &http.Response{StatusCode: http.StatusUnauthorized},
		}
		mockLLM.chatFn = func(context.Context, llm.Request, any) (*llm.Response, error) {
			return nil, rejected
		}

		_, err := synth.New(mockLLM, synth.Options{}).Synthesize(ctx, prompts)
		Expect(errors.Is(err, cynerr.ErrPrecondition)).To(BeTrue())
		var apiErr *openai.Error
		Expect(errors.As(err, &apiErr)).To(BeTrue())
	})

	It("refuses an out of range temperature before calling the model", func() {
		_, err := synth.New(mockLLM, synth.Options{Temperature: 2.5}).Synthesize(ctx, prompts)
		Expect(err).To(MatchError(synth.ErrBadTemperature))
		Expect(cynerr.KindOf(err)).To(Equal(cynerr.KindPrecondition))
		Expect(mockLLM.callCount).To(Equal(0))
	})

	It("requires a client", func() {
		_, err := synth.New(nil, synth.Options{}).Synthesize(ctx, prompts)
		Expect(err).To(MatchError(synth.ErrNoModel))
	})
})

var _ = Describe("Validate", func() {
	DescribeTable("accepted code",
		func(code string) {
			Expect(synth.Validate(code)).To(Succeed())
		},
		Entry("function", "export default function f(): number { return 1 }"),
		Entry("surrounding whitespace", "\n  export default (x: string): string => { return x }\n\n"),
	)

	DescribeTable("rejected code",
		func(code string, want error) {
			err := synth.Validate(code)
			Expect(err).To(MatchError(want))
			Expect(errors.Is(err, cynerr.ErrValidation)).To(BeTrue())
		},
		Entry("empty", "", synth.ErrEmptyCode),
		Entry("blank", " \n\t", synth.ErrEmptyCode),
		Entry("named export", "export function f() {}", synth.ErrMissingExport),
		Entry("code fence", "```ts\nexport default function f() {}\n```", synth.ErrMissingExport),
		Entry("expression body", "export default (x: number) => x * 2", synth.ErrMissingBrace),
	)
})
