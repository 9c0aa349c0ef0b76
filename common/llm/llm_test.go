package llm_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/openai/openai-go"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/whaaaley/cynthia/common/llm"
)

type fnSchema struct {
	Name string `json:"name" jsonschema:"description=Function name"`
	Code string `json:"code"`
}

var _ = Describe("New", func() {
	It("requires an API key", func() {
		_, err := llm.New(llm.Config{})
		Expect(err).To(MatchError(llm.ErrMissingAPIKey))
	})

	DescribeTable("selects the provider",
		func(provider, model, wantModel string) {
			c, err := llm.New(llm.Config{Provider: provider, APIKey: "sk", Model: model})
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Model()).To(Equal(wantModel))
		},
		Entry("openai default", "", "", "gpt-4o-mini"),
		Entry("openai explicit", llm.ProviderOpenAI, "gpt-4o", "gpt-4o"),
		Entry("anthropic", llm.ProviderAnthropic, "", "claude-sonnet-4-5"),
	)

	It("rejects unknown providers", func() {
		_, err := llm.New(llm.Config{Provider: "local", APIKey: "sk"})
		Expect(err).To(MatchError(llm.ErrUnknownProvider))
	})
})

var _ = Describe("GenerateSchema", func() {
	It("produces a closed, inlined object schema", func() {
		data, err := json.Marshal(llm.GenerateSchema[fnSchema]())
		Expect(err).NotTo(HaveOccurred())

		var schema map[string]any
		Expect(json.Unmarshal(data, &schema)).To(Succeed())
		Expect(schema["type"]).To(Equal("object"))
		Expect(schema["additionalProperties"]).To(BeFalse())
		Expect(schema).NotTo(HaveKey("$ref"))
		Expect(schema["required"]).To(ConsistOf("name", "code"))
	})
})

var _ = Describe("IsRetryable", func() {
	ctx := context.Background()

	DescribeTable("classifies errors",
		func(err error, want bool) {
			Expect(llm.IsRetryable(ctx, err)).To(Equal(want))
		},
		Entry("nil", nil, false),
		Entry("cancelled", fmt.Errorf("chat: %w", context.Canceled), false),
		Entry("openai rate limit", &openai.Error{StatusCode: 429}, true),
		Entry("openai server error", &openai.Error{StatusCode: 503}, true),
		Entry("openai bad request", &openai.Error{StatusCode: 400}, false),
		Entry("anthropic overloaded", &anthropic.Error{StatusCode: 529}, true),
		Entry("network", errors.New("connection reset"), true),
	)

	It("leaves temperatures addressable", func() {
		Expect(*llm.Temp(0)).To(BeZero())
	})
})
