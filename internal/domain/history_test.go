package domain_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"tradematch.app/linkup/internal/domain"
	"tradematch.app/linkup/internal/model"
)

var _ = Describe("History ledger", func() {
	var (
		lc    *domain.Lifecycle
		draft domain.Draft
		t0    time.Time
	)

	BeforeEach(func() {
		lc = domain.DefaultLifecycle()
		t0 = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

		var err error
		draft, err = domain.ValidateDraft(domain.DefaultRules(), validInput())
		Expect(err).NotTo(HaveOccurred())
	})

	It("creates connections with a single initial entry", func() {
		conn := domain.NewConnection(100, 5, draft, lc, t0)

		Expect(conn.ID).To(Equal(int64(100)))
		Expect(conn.OwnerUserID).To(Equal(int64(5)))
		Expect(conn.Status).To(Equal(model.ConnectionStatusPending))
		Expect(conn.Stage).To(Equal(model.ConnectionStageReply))
		Expect(conn.StatusHistory).To(HaveLen(1))
		Expect(conn.StatusHistory[0].Status).To(Equal(model.ConnectionStatusPending))
		Expect(conn.StatusHistory[0].OccurredAt).To(Equal(t0))
	})

	It("appends one entry per transition without touching earlier ones", func() {
		conn := domain.NewConnection(100, 5, draft, lc, t0)
		before := conn.StatusHistory[0]

		note := "kick-off call booked"
		t1 := t0.Add(time.Hour)
		next := domain.AppendHistory(conn, model.ConnectionStatusInDiscussion, model.ConnectionStageMeeting, &note, t1)

		Expect(next.StatusHistory).To(HaveLen(2))
		Expect(next.StatusHistory[0]).To(Equal(before))
		Expect(next.Status).To(Equal(model.ConnectionStatusInDiscussion))
		Expect(next.Stage).To(Equal(model.ConnectionStageMeeting))
		Expect(next.UpdatedAt).To(Equal(t1))
		Expect(*next.StatusHistory[1].Note).To(Equal(note))

		// the input value is left as it was
		Expect(conn.StatusHistory).To(HaveLen(1))
		Expect(conn.Status).To(Equal(model.ConnectionStatusPending))
	})

	It("exposes the latest entry", func() {
		conn := domain.NewConnection(100, 5, draft, lc, t0)
		next := domain.AppendHistory(conn, model.ConnectionStatusClosed, model.ConnectionStageReview, nil, t0.Add(time.Minute))

		entry, ok := domain.LatestEntry(next)
		Expect(ok).To(BeTrue())
		Expect(entry.Status).To(Equal(model.ConnectionStatusClosed))
		Expect(entry.Note).To(BeNil())

		_, ok = domain.LatestEntry(model.Connection{})
		Expect(ok).To(BeFalse())
	})
})
