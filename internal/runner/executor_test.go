package runner_test

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/temoc-project/temoc/internal/runner"
)

func writeFixture(content string) string {
	dir := GinkgoT().TempDir()
	path := filepath.Join(dir, "case.md")
	Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())
	return path
}

func silentLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

const calculatorFixture = `[//]: # (import fixtures.calculator)

[//]: # (decisionTable Calculator)

| a | b | sum? |
| - | - | ---- |
| 2 | 3 | 5 |
| 2 | 3 | 99 |
`

var _ = Describe("Executor", func() {
	It("reports a passing assertion", func() {
		path := writeFixture(calculatorFixture)
		connector := fakeConnector{responses: map[string]string{"sum": "5"}}
		e := runner.NewExecutor(connector, silentLogger())

		report := e.Run(context.Background(), path)

		Expect(report.Aborted).To(BeFalse())
		Expect(report.Outcomes).To(HaveLen(2))
		Expect(report.Outcomes[0].Status).To(Equal(runner.StatusPass))
		Expect(report.Outcomes[1].Status).To(Equal(runner.StatusFail))
		Expect(report.Outcomes[1].Expected).To(Equal("99"))
		Expect(report.Outcomes[1].Actual).To(Equal("5"))
	})

	It("reports an exception outcome when the fixture raises one", func() {
		path := writeFixture(calculatorFixture)
		connector := fakeConnector{responses: map[string]string{"sum": "exception:divide by zero"}}
		e := runner.NewExecutor(connector, silentLogger())

		report := e.Run(context.Background(), path)

		Expect(report.Outcomes[0].Status).To(Equal(runner.StatusException))
		Expect(report.Outcomes[0].Actual).To(ContainSubstring("divide by zero"))
	})

	It("skips instruction emission and marks assertions snoozed for a snoozed table", func() {
		content := `[//]: # (decisionTable Calculator -- snooze until 2099-12-31)

| a | b | sum? |
| - | - | ---- |
| 2 | 3 | 5 |
`
		path := writeFixture(content)
		connector := fakeConnector{}
		e := runner.NewExecutor(connector, silentLogger())

		report := e.Run(context.Background(), path)

		Expect(report.Aborted).To(BeFalse())
		Expect(report.Outcomes).To(HaveLen(1))
		Expect(report.Outcomes[0].Status).To(Equal(runner.StatusSnoozed))
	})

	It("propagates a $NAME= assignment to a later table in the same file", func() {
		content := `[//]: # (decisionTable Calculator)

| a | b | total? |
| - | - | ------ |
| 2 | 3 | $total= |

[//]: # (decisionTable Calculator)

| a | b | sum? |
| - | - | ---- |
| $total | 0 | $total |
`
		path := writeFixture(content)
		connector := fakeConnector{responses: map[string]string{"total": "5", "sum": "5"}}
		e := runner.NewExecutor(connector, silentLogger())

		report := e.Run(context.Background(), path)

		Expect(report.Aborted).To(BeFalse())
		for _, o := range report.Outcomes {
			Expect(o.Status).To(Equal(runner.StatusPass))
		}
	})

	It("marks remaining assertions in the file as exception on mid-batch disconnect", func() {
		content := calculatorFixture + `
[//]: # (decisionTable Calculator)

| a | b | sum? |
| - | - | ---- |
| 1 | 1 | 2 |
`
		path := writeFixture(content)
		connector := fakeConnector{responses: map[string]string{"sum": "5"}, closeMid: true}
		e := runner.NewExecutor(connector, silentLogger())

		report := e.Run(context.Background(), path)

		Expect(report.Aborted).To(BeTrue())
		var sawException bool
		for _, o := range report.Outcomes {
			if o.Status == runner.StatusException {
				sawException = true
			}
		}
		Expect(sawException).To(BeTrue())
	})

	It("marks assertions in a table after the one that disconnected as exception too", func() {
		content := calculatorFixture + `
[//]: # (decisionTable Calculator)

| a | b | sum? |
| - | - | ---- |
| 1 | 1 | 2 |

[//]: # (decisionTable Calculator)

| a | b | sum? |
| - | - | ---- |
| 4 | 4 | 8 |
`
		path := writeFixture(content)
		connector := fakeConnector{responses: map[string]string{"sum": "5"}, closeMid: true}
		e := runner.NewExecutor(connector, silentLogger())

		report := e.Run(context.Background(), path)

		Expect(report.Aborted).To(BeTrue())
		var exceptions int
		for _, o := range report.Outcomes {
			if o.Status == runner.StatusException {
				exceptions++
			}
		}
		// one for the in-flight table's assertion, one for the untouched
		// third table's assertion
		Expect(exceptions).To(Equal(2))
	})

	It("matches a null result against an assertion cell of null or empty text", func() {
		content := `[//]: # (decisionTable Calculator)

| a | b | sum? | other? |
| - | - | ---- | ------ |
| 2 | 3 | null | |
`
		path := writeFixture(content)
		connector := fakeConnector{responses: map[string]string{"sum": "null", "other": "null"}}
		e := runner.NewExecutor(connector, silentLogger())

		report := e.Run(context.Background(), path)

		Expect(report.Aborted).To(BeFalse())
		for _, o := range report.Outcomes {
			Expect(o.Status).To(Equal(runner.StatusPass))
		}
	})
})
