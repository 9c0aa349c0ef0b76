package retry_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/whaaaley/cynthia/internal/retry"
)

var errFlaky = errors.New("flaky")

var _ = Describe("Do", func() {
	var (
		ctx   context.Context
		calls int
	)

	BeforeEach(func() {
		ctx = context.Background()
		calls = 0
	})

	It("makes maxRetries+1 attempts when every attempt fails", func() {
		_, err := retry.Do(ctx, retry.Options[string]{
			Name: "Generation",
			Operation: func(context.Context, int) (string, error) {
				calls++
				return "", errFlaky
			},
			MaxRetries: 3,
		})

		Expect(calls).To(Equal(4))
		Expect(err).To(MatchError(retry.ErrExhausted))
		Expect(err).To(MatchError(errFlaky))
		Expect(err.Error()).To(ContainSubstring("failed generation after 4 attempts"))
	})

	It("gives up at the first error Retryable rejects", func() {
		errFatal := errors.New("bad credentials")
		_, err := retry.Do(ctx, retry.Options[string]{
			Name: "generation",
			Operation: func(_ context.Context, attempt int) (string, error) {
				calls++
				if attempt == 1 {
					return "", errFatal
				}
				return "", errFlaky
			},
			Retryable:  func(err error) bool { return !errors.Is(err, errFatal) },
			MaxRetries: 5,
		})

		Expect(calls).To(Equal(2))
		Expect(err).To(MatchError(errFatal))
		Expect(errors.Is(err, retry.ErrExhausted)).To(BeFalse())
	})

	It("stops at the first successful attempt", func() {
		var seen []int
		result, err := retry.Do(ctx, retry.Options[int]{
			Name: "generation",
			Operation: func(_ context.Context, attempt int) (int, error) {
				calls++
				seen = append(seen, attempt)
				return calls, nil
			},
			IsSuccess:  func(n int) bool { return n == 3 },
			MaxRetries: 3,
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(result).To(Equal(3))
		Expect(calls).To(Equal(3))
		Expect(seen).To(Equal([]int{0, 1, 2}))
	})

	It("treats a rejected result like a failed attempt", func() {
		_, err := retry.Do(ctx, retry.Options[bool]{
			Name:       "validation",
			Operation:  func(context.Context, int) (bool, error) { calls++; return false, nil },
			IsSuccess:  func(ok bool) bool { return ok },
			MaxRetries: 1,
		})

		Expect(calls).To(Equal(2))
		Expect(err).To(MatchError(retry.ErrValidationFailed))
	})

	It("makes a single attempt with no retries", func() {
		_, err := retry.Do(ctx, retry.Options[int]{
			Operation:  func(context.Context, int) (int, error) { calls++; return 0, errFlaky },
			MaxRetries: 0,
		})
		Expect(calls).To(Equal(1))
		Expect(err).To(HaveOccurred())
	})

	It("stops between attempts once the context is cancelled", func() {
		cctx, cancel := context.WithCancel(ctx)
		_, err := retry.Do(cctx, retry.Options[int]{
			Operation: func(context.Context, int) (int, error) {
				calls++
				cancel()
				return 0, errFlaky
			},
			MaxRetries: 5,
		})
		Expect(calls).To(Equal(1))
		Expect(err).To(MatchError(context.Canceled))
	})
})
