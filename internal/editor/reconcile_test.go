package editor_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"editflow.app/server/internal/editor"
)

func span(errText, correction string) editor.ErrorSpan {
	return editor.ErrorSpan{Error: errText, Correction: correction}
}

func spanAt(errText, correction string, pos int) editor.ErrorSpan {
	return editor.ErrorSpan{Error: errText, Correction: correction, Position: &pos}
}

func pending(text, correction string) editor.ErrorSegment {
	return editor.ErrorSegment{Text: text, Correction: correction, Status: editor.StatusPending}
}

func normal(text string) editor.NormalSegment {
	return editor.NormalSegment{Text: text}
}

func expectAlternating(segments []editor.Segment) {
	ExpectWithOffset(1, len(segments)%2).To(Equal(1))
	for i, seg := range segments {
		if i%2 == 0 {
			ExpectWithOffset(1, seg.Type()).To(Equal(editor.TypeNormal), "segment %d", i)
		} else {
			ExpectWithOffset(1, seg.Type()).To(Equal(editor.TypeError), "segment %d", i)
		}
	}
}

var _ = Describe("Reconcile", func() {
	Context("when every span is found", func() {
		It("partitions the text around each error", func() {
			text := "I has a apple."
			res, err := editor.Reconcile(text, []editor.ErrorSpan{
				span("has", "have"),
				span("a apple", "an apple"),
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Miss).To(BeNil())
			Expect(res.Applied).To(Equal(2))
			Expect(res.Discarded).To(BeZero())
			Expect(res.Segments).To(Equal([]editor.Segment{
				normal("I "),
				pending("has", "have"),
				normal(" "),
				pending("a apple", "an apple"),
				normal("."),
			}))
			Expect(editor.Join(res.Segments)).To(Equal(text))
		})

		It("emits empty leading, trailing and gap segments to keep alternation", func() {
			res, err := editor.Reconcile("abcd", []editor.ErrorSpan{
				span("ab", "AB"),
				span("cd", "CD"),
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Segments).To(Equal([]editor.Segment{
				normal(""),
				pending("ab", "AB"),
				normal(""),
				pending("cd", "CD"),
				normal(""),
			}))
			expectAlternating(res.Segments)
		})

		It("returns a single normal segment when there are no spans", func() {
			res, err := editor.Reconcile("clean text", nil)

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Segments).To(Equal([]editor.Segment{normal("clean text")}))
		})

		It("handles empty text", func() {
			res, err := editor.Reconcile("", nil)

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Segments).To(Equal([]editor.Segment{normal("")}))
		})

		It("searches case-sensitively", func() {
			res, err := editor.Reconcile("The the", []editor.ErrorSpan{span("the", "a")})

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Segments).To(Equal([]editor.Segment{
				normal("The "),
				pending("the", "a"),
				normal(""),
			}))
		})

		It("is deterministic", func() {
			spans := []editor.ErrorSpan{span("teh", "the"), span("recieve", "receive")}
			text := "teh cat will recieve teh mail"

			first, err := editor.Reconcile(text, spans)
			Expect(err).NotTo(HaveOccurred())
			second, err := editor.Reconcile(text, spans)
			Expect(err).NotTo(HaveOccurred())

			Expect(second).To(Equal(first))
		})

		It("keeps the censor token intact", func() {
			text := "that *** is mine"
			res, err := editor.Reconcile(text, []editor.ErrorSpan{span("is", "was")})

			Expect(err).NotTo(HaveOccurred())
			Expect(editor.Join(res.Segments)).To(Equal(text))
		})
	})

	Context("when a span cannot be found", func() {
		It("stops at the first miss by default", func() {
			res, err := editor.Reconcile("The cat sat", []editor.ErrorSpan{
				span("cat", "dog"),
				span("zzz", "www"),
				span("sat", "sit"),
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Segments).To(Equal([]editor.Segment{
				normal("The "),
				pending("cat", "dog"),
				normal(" sat"),
			}))
			Expect(res.Applied).To(Equal(1))
			Expect(res.Discarded).To(Equal(2))
			Expect(errors.Is(res.Miss, editor.ErrSpanNotFound)).To(BeTrue())
		})

		It("does not match spans that appear before the cursor", func() {
			res, err := editor.Reconcile("one two", []editor.ErrorSpan{
				span("two", "2"),
				span("one", "1"),
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Applied).To(Equal(1))
			Expect(res.Discarded).To(Equal(1))
			Expect(editor.Join(res.Segments)).To(Equal("one two"))
		})

		It("skips only the missing span with MissSkip", func() {
			res, err := editor.Reconcile("The cat sat", []editor.ErrorSpan{
				span("cat", "dog"),
				span("zzz", "www"),
				span("sat", "sit"),
			}, editor.WithMissPolicy(editor.MissSkip))

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Segments).To(Equal([]editor.Segment{
				normal("The "),
				pending("cat", "dog"),
				normal(" "),
				pending("sat", "sit"),
				normal(""),
			}))
			Expect(res.Applied).To(Equal(2))
			Expect(res.Discarded).To(Equal(1))
			Expect(res.Miss).To(MatchError(editor.ErrSpanNotFound))
		})
	})

	Context("with position hints", func() {
		It("ignores positions by default and takes the first occurrence", func() {
			res, err := editor.Reconcile("to to", []editor.ErrorSpan{spanAt("to", "too", 3)})

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Segments[0]).To(Equal(normal("")))
		})

		It("uses a position that checks out", func() {
			res, err := editor.Reconcile("to to", []editor.ErrorSpan{spanAt("to", "too", 3)}, editor.WithPositionHints())

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Segments).To(Equal([]editor.Segment{
				normal("to "),
				pending("to", "too"),
				normal(""),
			}))
		})

		It("falls back to search when the position is wrong", func() {
			res, err := editor.Reconcile("a to b", []editor.ErrorSpan{spanAt("to", "too", 40)}, editor.WithPositionHints())

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Segments[1]).To(Equal(pending("to", "too")))
		})

		DescribeTable("falls back to search for positions outside the text",
			func(pos int) {
				var res *editor.Reconciliation
				var err error
				Expect(func() {
					res, err = editor.Reconcile("a to b", []editor.ErrorSpan{spanAt("to", "too", pos)}, editor.WithPositionHints())
				}).NotTo(Panic())

				Expect(err).NotTo(HaveOccurred())
				Expect(res.Segments).To(Equal([]editor.Segment{
					normal("a "),
					pending("to", "too"),
					normal(" b"),
				}))
			},
			Entry("largest int", math.MaxInt),
			Entry("overflowing by the span length", math.MaxInt-1),
			Entry("straddling the end", 5),
			Entry("negative", -1),
		)

		It("treats the position as a byte offset", func() {
			// The second "to" is character 5 but byte 6.
			res, err := editor.Reconcile("é to to", []editor.ErrorSpan{spanAt("to", "too", 6)}, editor.WithPositionHints())

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Segments[0]).To(Equal(normal("é to ")))
		})
	})

	Context("with malformed spans", func() {
		It("fails with ErrInvalidSpan before producing segments", func() {
			res, err := editor.Reconcile("text", []editor.ErrorSpan{
				span("text", "txt"),
				{Correction: "x"},
			})

			Expect(err).To(MatchError(editor.ErrInvalidSpan))
			Expect(res).To(BeNil())
		})
	})

	DescribeTable("preserves the partition",
		func(text string, spans []editor.ErrorSpan) {
			res, err := editor.Reconcile(text, spans)
			Expect(err).NotTo(HaveOccurred())
			Expect(editor.Join(res.Segments)).To(Equal(text))
			expectAlternating(res.Segments)
		},
		Entry("repeated words", "the the the", []editor.ErrorSpan{span("the", "a"), span("the", "a")}),
		Entry("unicode", "naïve café", []editor.ErrorSpan{span("café", "cafe")}),
		Entry("miss in the middle", "a b c", []editor.ErrorSpan{span("a", "A"), span("x", "X"), span("c", "C")}),
		Entry("whole text", "wrong", []editor.ErrorSpan{span("wrong", "right")}),
	)
})
