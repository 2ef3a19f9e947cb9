package domain_test

import (
	"errors"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"tradematch.app/linkup/internal/domain"
	"tradematch.app/linkup/internal/model"
)

func validInput() domain.CreateConnectionInput {
	return domain.CreateConnectionInput{
		MatchID:           42,
		BuyerProfileID:    7,
		SupplierProfileID: 9,
		IntroMessage:      "  We would like to source cotton from you  ",
		Locale:            "en",
		Attachments:       []string{"nda", "rfq"},
		MeetingProposal:   []string{"2026-11-02T10:00:00+01:00"},
	}
}

func issueFields(err error) []string {
	var verr *domain.ValidationError
	Expect(errors.As(err, &verr)).To(BeTrue())
	fields := make([]string, len(verr.Issues))
	for i, issue := range verr.Issues {
		fields[i] = issue.Field
	}
	return fields
}

var _ = Describe("ValidateDraft", func() {
	var rules domain.Rules

	BeforeEach(func() {
		rules = domain.DefaultRules()
	})

	It("normalizes a valid payload", func() {
		draft, err := domain.ValidateDraft(rules, validInput())
		Expect(err).NotTo(HaveOccurred())
		Expect(draft.IntroMessage).To(Equal("We would like to source cotton from you"))
		Expect(draft.Attachments).To(Equal([]model.Attachment{model.AttachmentNDA, model.AttachmentRFQ}))
		Expect(draft.LogisticsPlan).To(BeNil())
		Expect(draft.MeetingProposal).To(HaveLen(1))
		Expect(draft.MeetingProposal[0]).To(BeTemporally("==", time.Date(2026, 11, 2, 9, 0, 0, 0, time.UTC)))
		Expect(draft.MeetingProposal[0].Location()).To(Equal(time.UTC))
	})

	It("collapses duplicate attachments", func() {
		in := validInput()
		in.Attachments = []string{"nda", "nda", "catalog"}

		draft, err := domain.ValidateDraft(rules, in)
		Expect(err).NotTo(HaveOccurred())
		Expect(draft.Attachments).To(Equal([]model.Attachment{model.AttachmentNDA, model.AttachmentCatalog}))
	})

	It("rejects the whole payload when one attachment is unknown", func() {
		in := validInput()
		in.Attachments = []string{"nda", "invoice"}

		_, err := domain.ValidateDraft(rules, in)
		Expect(issueFields(err)).To(ConsistOf("attachments[1]"))
	})

	It("rejects a short intro message after trimming", func() {
		in := validInput()
		in.IntroMessage = "   hi there  "

		_, err := domain.ValidateDraft(rules, in)
		Expect(issueFields(err)).To(ConsistOf("introMessage"))
	})

	It("honors a configured minimum length", func() {
		in := validInput()
		in.IntroMessage = "Hello, supplier"

		_, err := domain.ValidateDraft(domain.Rules{MinIntroLength: 20}, in)
		Expect(issueFields(err)).To(ConsistOf("introMessage"))

		_, err = domain.ValidateDraft(domain.Rules{MinIntroLength: 15}, in)
		Expect(err).NotTo(HaveOccurred())
	})

	It("counts characters, not bytes", func() {
		in := validInput()
		in.IntroMessage = strings.Repeat("é", 10)

		_, err := domain.ValidateDraft(rules, in)
		Expect(err).NotTo(HaveOccurred())
	})

	It("rejects an overlong intro message", func() {
		in := validInput()
		in.IntroMessage = strings.Repeat("a", domain.MaxIntroLength+1)

		_, err := domain.ValidateDraft(rules, in)
		Expect(issueFields(err)).To(ConsistOf("introMessage"))
	})

	It("requires all references and distinct participants", func() {
		in := validInput()
		in.MatchID = 0
		in.BuyerProfileID = 0

		_, err := domain.ValidateDraft(rules, in)
		Expect(issueFields(err)).To(ConsistOf("matchId", "buyerProfileId"))

		in = validInput()
		in.SupplierProfileID = in.BuyerProfileID
		_, err = domain.ValidateDraft(rules, in)
		Expect(issueFields(err)).To(ConsistOf("supplierProfileId"))
	})

	It("rejects unparseable meeting proposals", func() {
		in := validInput()
		in.MeetingProposal = []string{"2026-11-02T10:00:00Z", "next tuesday"}

		_, err := domain.ValidateDraft(rules, in)
		Expect(issueFields(err)).To(ConsistOf("meetingProposal[1]"))
	})

	It("rejects malformed locales", func() {
		in := validInput()
		in.Locale = "english please"

		_, err := domain.ValidateDraft(rules, in)
		Expect(issueFields(err)).To(ConsistOf("locale"))
	})

	Describe("logistics plan", func() {
		It("accepts known incoterms and transports case-insensitively", func() {
			in := validInput()
			term := "fob"
			in.LogisticsPlan = &domain.LogisticsPlanInput{Incoterm: &term, Transports: []string{"Sea", "rail", "sea"}}

			draft, err := domain.ValidateDraft(rules, in)
			Expect(err).NotTo(HaveOccurred())
			Expect(*draft.LogisticsPlan.Incoterm).To(Equal(model.IncotermFOB))
			Expect(draft.LogisticsPlan.Transports).To(Equal([]model.TransportMode{model.TransportModeSea, model.TransportModeRail}))
		})

		It("accepts an absent incoterm", func() {
			in := validInput()
			in.LogisticsPlan = &domain.LogisticsPlanInput{Transports: []string{"air"}}

			draft, err := domain.ValidateDraft(rules, in)
			Expect(err).NotTo(HaveOccurred())
			Expect(draft.LogisticsPlan.Incoterm).To(BeNil())
		})

		It("reports every unknown value", func() {
			in := validInput()
			term := "FOO"
			in.LogisticsPlan = &domain.LogisticsPlanInput{Incoterm: &term, Transports: []string{"air", "teleport"}}

			_, err := domain.ValidateDraft(rules, in)
			Expect(issueFields(err)).To(ConsistOf("logisticsPlan.incoterm", "logisticsPlan.transports[1]"))
		})
	})
})

var _ = Describe("ParseStatus", func() {
	It("accepts known statuses", func() {
		s, err := domain.ParseStatus("inDiscussion")
		Expect(err).NotTo(HaveOccurred())
		Expect(s).To(Equal(model.ConnectionStatusInDiscussion))
	})

	It("rejects anything else as a validation error", func() {
		_, err := domain.ParseStatus("accepted")
		Expect(issueFields(err)).To(ConsistOf("status"))
	})
})

var _ = Describe("NormalizeNote", func() {
	It("drops blank notes", func() {
		blank := "   "
		note, err := domain.NormalizeNote(&blank)
		Expect(err).NotTo(HaveOccurred())
		Expect(note).To(BeNil())
	})

	It("trims and keeps real notes", func() {
		raw := "  agreed on a call  "
		note, err := domain.NormalizeNote(&raw)
		Expect(err).NotTo(HaveOccurred())
		Expect(*note).To(Equal("agreed on a call"))
	})

	It("rejects overlong notes", func() {
		raw := strings.Repeat("n", domain.MaxNoteLength+1)
		_, err := domain.NormalizeNote(&raw)
		Expect(issueFields(err)).To(ConsistOf("note"))
	})
})
