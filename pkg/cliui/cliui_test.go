package cliui_test

import (
	"bytes"
	"errors"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/studyhallco/studyhall/pkg/cliui"
)

var _ = Describe("Mark", func() {
	It("returns the success mark for nil errors", func() {
		Expect(cliui.Mark(nil)).To(Equal(cliui.SuccessMark))
	})

	It("returns the fail mark for non-nil errors", func() {
		Expect(cliui.Mark(errors.New("boom"))).To(Equal(cliui.FailMark))
	})
})

var _ = Describe("FormatDuration", func() {
	It("formats sub-second durations in milliseconds", func() {
		Expect(cliui.FormatDuration(12 * time.Millisecond)).To(Equal("12ms"))
	})

	It("formats second-scale durations with one decimal", func() {
		Expect(cliui.FormatDuration(3200 * time.Millisecond)).To(Equal("3.2s"))
	})
})

var _ = Describe("Step", func() {
	It("runs fn and prints the message with a success mark", func() {
		var buf bytes.Buffer

		err := cliui.Step(&buf, "logging in", func() error {
			return nil
		})
		Expect(err).NotTo(HaveOccurred())

		out := buf.String()
		Expect(out).To(ContainSubstring("logging in"))
		Expect(out).To(ContainSubstring(cliui.SuccessMark))
		Expect(strings.HasSuffix(out, "\n")).To(BeTrue())
	})

	It("returns fn's error and prints the fail mark", func() {
		var buf bytes.Buffer

		err := cliui.Step(&buf, "logging in", func() error {
			return errors.New("server unreachable")
		})
		Expect(err).To(MatchError("server unreachable"))

		Expect(buf.String()).To(ContainSubstring(cliui.FailMark))
	})
})

var _ = Describe("RenderMarkdown", func() {
	It("renders markdown content", func() {
		out, err := cliui.RenderMarkdown("# Study Plan\n\nWeek 1: fractions.")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Study Plan"))
		Expect(out).To(ContainSubstring("fractions"))
	})
})

var _ = Describe("StripANSI", func() {
	It("removes escape sequences", func() {
		Expect(cliui.StripANSI("\x1b[32mcorrect\x1b[0m")).To(Equal("correct"))
	})

	It("leaves plain text untouched", func() {
		Expect(cliui.StripANSI("plain text")).To(Equal("plain text"))
	})
})
