package llm

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type toolOutput struct {
	Code string `json:"code"`
	Lang string `json:"lang,omitempty"`
}

var _ = Describe("toolInputSchema", func() {
	It("lifts properties and required fields", func() {
		s, err := toolInputSchema(GenerateSchema[toolOutput]())
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Properties).To(HaveKey("code"))
		Expect(s.Properties).To(HaveKey("lang"))
		Expect(s.Required).To(ConsistOf("code"))
	})
})
