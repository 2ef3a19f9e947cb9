package domain_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"tradematch.app/linkup/internal/domain"
	"tradematch.app/linkup/internal/model"
)

var allStatuses = []model.ConnectionStatus{
	model.ConnectionStatusPending,
	model.ConnectionStatusInDiscussion,
	model.ConnectionStatusCompleted,
	model.ConnectionStatusClosed,
}

type edge struct {
	from model.ConnectionStatus
	to   model.ConnectionStatus
}

var _ = Describe("Lifecycle", func() {
	var lc *domain.Lifecycle

	BeforeEach(func() {
		lc = domain.DefaultLifecycle()
	})

	It("starts every connection as pending in the reply stage", func() {
		status, stage := lc.Initial()
		Expect(status).To(Equal(model.ConnectionStatusPending))
		Expect(stage).To(Equal(model.ConnectionStageReply))
	})

	DescribeTable("accepted transitions",
		func(from, to model.ConnectionStatus, wantStage model.ConnectionStage) {
			status, stage, err := lc.Transition(from, to)
			Expect(err).NotTo(HaveOccurred())
			Expect(status).To(Equal(to))
			Expect(stage).To(Equal(wantStage))
		},
		Entry("pending -> inDiscussion", model.ConnectionStatusPending, model.ConnectionStatusInDiscussion, model.ConnectionStageMeeting),
		Entry("pending -> closed", model.ConnectionStatusPending, model.ConnectionStatusClosed, model.ConnectionStageReview),
		Entry("inDiscussion -> completed", model.ConnectionStatusInDiscussion, model.ConnectionStatusCompleted, model.ConnectionStageDeal),
		Entry("inDiscussion -> closed", model.ConnectionStatusInDiscussion, model.ConnectionStatusClosed, model.ConnectionStageReview),
	)

	It("rejects every pair outside the table", func() {
		valid := map[edge]bool{
			{model.ConnectionStatusPending, model.ConnectionStatusInDiscussion}:   true,
			{model.ConnectionStatusPending, model.ConnectionStatusClosed}:         true,
			{model.ConnectionStatusInDiscussion, model.ConnectionStatusCompleted}: true,
			{model.ConnectionStatusInDiscussion, model.ConnectionStatusClosed}:    true,
		}

		rejected := 0
		for _, from := range allStatuses {
			for _, to := range allStatuses {
				if valid[edge{from, to}] {
					continue
				}
				status, stage, err := lc.Transition(from, to)
				Expect(err).To(MatchError(domain.ErrInvalidTransition), "%s -> %s", from, to)
				Expect(status).To(Equal(from))
				Expect(stage).To(BeEmpty())
				rejected++
			}
		}
		Expect(rejected).To(Equal(12))
	})

	It("rejects the same invalid transition identically every time", func() {
		_, _, first := lc.Transition(model.ConnectionStatusInDiscussion, model.ConnectionStatusPending)
		_, _, second := lc.Transition(model.ConnectionStatusInDiscussion, model.ConnectionStatusPending)
		Expect(first).To(Equal(second))
	})

	It("reports terminal states in the error", func() {
		_, _, err := lc.Transition(model.ConnectionStatusCompleted, model.ConnectionStatusInDiscussion)

		var terr *domain.TransitionError
		Expect(errors.As(err, &terr)).To(BeTrue())
		Expect(terr.Allowed).To(BeEmpty())
		Expect(terr.Error()).To(ContainSubstring("terminal"))
	})

	It("lists reachable statuses in a stable order", func() {
		Expect(lc.Allowed(model.ConnectionStatusPending)).To(Equal([]model.ConnectionStatus{
			model.ConnectionStatusClosed,
			model.ConnectionStatusInDiscussion,
		}))
		Expect(lc.Allowed(model.ConnectionStatusClosed)).To(BeEmpty())
	})

	Context("with a custom closed stage", func() {
		It("assigns it to both closing edges", func() {
			custom, err := domain.NewLifecycle(model.ConnectionStageIntro)
			Expect(err).NotTo(HaveOccurred())

			_, stage, err := custom.Transition(model.ConnectionStatusPending, model.ConnectionStatusClosed)
			Expect(err).NotTo(HaveOccurred())
			Expect(stage).To(Equal(model.ConnectionStageIntro))

			_, stage, err = custom.Transition(model.ConnectionStatusInDiscussion, model.ConnectionStatusClosed)
			Expect(err).NotTo(HaveOccurred())
			Expect(stage).To(Equal(model.ConnectionStageIntro))
		})

		It("refuses an unknown stage", func() {
			_, err := domain.NewLifecycle(model.ConnectionStage("archived"))
			Expect(err).To(HaveOccurred())
		})
	})
})
