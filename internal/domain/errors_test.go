package domain_test

import (
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/temoc-project/temoc/internal/domain"
)

var _ = Describe("TemocError", func() {
	It("formats phase and message with no file or line", func() {
		err := domain.NewError(domain.KindConfig, "config", "", 0, "missing key", nil)
		Expect(err.Error()).To(Equal("[config]: missing key"))
	})

	It("includes the file when set", func() {
		err := domain.NewError(domain.KindScan, "scan", "tests/foo.md", 0, "not found", nil)
		Expect(err.Error()).To(Equal("[scan] tests/foo.md: not found"))
	})

	It("includes the line only when positive", func() {
		err := domain.NewError(domain.KindParse, "parse", "tests/foo.md", 12, "bad table", nil)
		Expect(err.Error()).To(Equal("[parse] tests/foo.md:12: bad table"))
	})

	It("appends the cause when set", func() {
		cause := fmt.Errorf("permission denied")
		err := domain.NewError(domain.KindConfig, "config", "temoc.yaml", 0, "failed to read config file", cause)
		Expect(err.Error()).To(Equal("[config] temoc.yaml: failed to read config file: permission denied"))
	})

	It("unwraps to its cause", func() {
		cause := fmt.Errorf("boom")
		err := domain.NewError(domain.KindProtocol, "slim", "", 0, "failed", cause)
		Expect(errors.Unwrap(err)).To(Equal(cause))
		Expect(errors.Is(err, cause)).To(BeTrue())
	})

	It("is matchable via errors.As", func() {
		err := domain.NewError(domain.KindSpawn, "spawn", "", 0, "failed starting SUT process", nil)
		wrapped := fmt.Errorf("run failed: %w", err)

		var terr *domain.TemocError
		Expect(errors.As(wrapped, &terr)).To(BeTrue())
		Expect(terr.Kind).To(Equal(domain.KindSpawn))
	})
})
