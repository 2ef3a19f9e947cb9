package service_test

import (
	"context"
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"tradematch.app/linkup/common/id"
	"tradematch.app/linkup/internal/domain"
	"tradematch.app/linkup/internal/model"
	"tradematch.app/linkup/internal/queue"
	"tradematch.app/linkup/internal/service"
)

const (
	ownerA int64 = 1001
	ownerB int64 = 2002
)

func strPtr(s string) *string { return &s }

func createInput() domain.CreateConnectionInput {
	return domain.CreateConnectionInput{
		MatchID:           10,
		BuyerProfileID:    20,
		SupplierProfileID: 30,
		IntroMessage:      "Hello, we need bulk cotton",
		Locale:            "en-GB",
		Attachments:       []string{"rfq"},
	}
}

var _ = Describe("ConnectionService", func() {
	var (
		svc      service.ConnectionService
		mem      *memConnectionStore
		refs     *mockReferenceStore
		producer *mockProducer
		clock    time.Time
		clockMu  sync.Mutex
		ctx      context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		Expect(id.Init(1)).To(Succeed())

		mem = newMemConnectionStore()
		refs = &mockReferenceStore{}
		producer = &mockProducer{}
		clock = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

		svc = service.NewConnectionService(
			&mockTxRunner{
				withTxFn: func(ctx context.Context, fn func(stores service.StoreProvider) error) error {
					return fn(&mockStoreProvider{conns: mem})
				},
			},
			mem,
			refs,
			producer,
			domain.DefaultLifecycle(),
			domain.DefaultRules(),
			service.WithClock(func() time.Time {
				clockMu.Lock()
				defer clockMu.Unlock()
				clock = clock.Add(time.Minute)
				return clock
			}),
		)
	})

	create := func(owner int64) *model.Connection {
		conn, err := svc.Create(ctx, owner, createInput())
		Expect(err).NotTo(HaveOccurred())
		return conn
	}

	Describe("Create", func() {
		It("stores a pending connection with one history entry", func() {
			conn := create(ownerA)

			Expect(conn.ID).NotTo(BeZero())
			Expect(conn.OwnerUserID).To(Equal(ownerA))
			Expect(conn.Status).To(Equal(model.ConnectionStatusPending))
			Expect(conn.Stage).To(Equal(model.ConnectionStageReply))
			Expect(conn.StatusHistory).To(HaveLen(1))
			Expect(conn.StatusHistory[0].ID).NotTo(BeZero())

			Expect(mem.stored(conn.ID).Status).To(Equal(model.ConnectionStatusPending))
		})

		It("announces the new connection", func() {
			conn := create(ownerA)

			events := producer.published()
			Expect(events).To(HaveLen(1))
			Expect(events[0].Type).To(Equal(queue.EventConnectionCreated))
			Expect(events[0].ConnectionID).To(Equal(conn.ID))
			Expect(events[0].From).To(BeEmpty())
		})

		It("rejects invalid payloads without touching storage", func() {
			in := createInput()
			in.Attachments = []string{"rfq", "passport"}

			_, err := svc.Create(ctx, ownerA, in)

			var verr *domain.ValidationError
			Expect(errors.As(err, &verr)).To(BeTrue())
			Expect(mem.conns).To(BeEmpty())
			Expect(producer.published()).To(BeEmpty())
		})

		It("reports unknown references as field issues", func() {
			refs.matchExistsFn = func(_ context.Context, _ int64) (bool, error) { return false, nil }
			refs.profileExistsFn = func(_ context.Context, id int64) (bool, error) { return id != 30, nil }

			_, err := svc.Create(ctx, ownerA, createInput())

			var verr *domain.ValidationError
			Expect(errors.As(err, &verr)).To(BeTrue())
			Expect(verr.Issues).To(ConsistOf(
				domain.FieldIssue{Field: "matchId", Reason: "does not exist"},
				domain.FieldIssue{Field: "supplierProfileId", Reason: "does not exist"},
			))
			Expect(mem.conns).To(BeEmpty())
		})

		It("surfaces lookup failures as plain errors", func() {
			refs.matchExistsFn = func(_ context.Context, _ int64) (bool, error) {
				return false, errors.New("connection refused")
			}

			_, err := svc.Create(ctx, ownerA, createInput())
			Expect(err).To(HaveOccurred())

			var verr *domain.ValidationError
			Expect(errors.As(err, &verr)).To(BeFalse())
		})

		It("still succeeds when publishing fails", func() {
			producer.publishFn = func(_ context.Context, _ queue.TransitionEvent) error {
				return errors.New("redis unavailable")
			}

			_, err := svc.Create(ctx, ownerA, createInput())
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("the full lifecycle of one connection", func() {
		It("follows the transition table and grows the history one entry at a time", func() {
			conn := create(ownerA)

			conn, err := svc.UpdateStatus(ctx, ownerA, conn.ID, service.StatusChange{Status: "inDiscussion"})
			Expect(err).NotTo(HaveOccurred())
			Expect(conn.Stage).To(Equal(model.ConnectionStageMeeting))
			Expect(conn.StatusHistory).To(HaveLen(2))

			_, err = svc.UpdateStatus(ctx, ownerA, conn.ID, service.StatusChange{Status: "pending"})
			Expect(err).To(MatchError(domain.ErrInvalidTransition))
			Expect(mem.stored(conn.ID).StatusHistory).To(HaveLen(2))

			conn, err = svc.UpdateStatus(ctx, ownerA, conn.ID, service.StatusChange{Status: "completed"})
			Expect(err).NotTo(HaveOccurred())
			Expect(conn.Stage).To(Equal(model.ConnectionStageDeal))
			Expect(conn.StatusHistory).To(HaveLen(3))

			_, err = svc.UpdateStatus(ctx, ownerA, conn.ID, service.StatusChange{Status: "inDiscussion"})
			Expect(err).To(MatchError(domain.ErrInvalidTransition))

			stored := mem.stored(conn.ID)
			Expect(stored.Status).To(Equal(model.ConnectionStatusCompleted))
			Expect(stored.StatusHistory).To(HaveLen(3))
		})
	})

	Describe("UpdateStatus", func() {
		var conn *model.Connection

		BeforeEach(func() {
			conn = create(ownerA)
		})

		It("stamps entries with server time and keeps the trimmed note", func() {
			updated, err := svc.UpdateStatus(ctx, ownerA, conn.ID, service.StatusChange{
				Status: "closed",
				Note:   strPtr("  supplier declined  "),
			})
			Expect(err).NotTo(HaveOccurred())

			entry := updated.StatusHistory[1]
			Expect(entry.Stage).To(Equal(model.ConnectionStageReview))
			Expect(*entry.Note).To(Equal("supplier declined"))
			Expect(entry.OccurredAt).To(BeTemporally(">", updated.StatusHistory[0].OccurredAt))
			Expect(entry.OccurredAt).To(BeTemporally("==", clock))
		})

		It("returns the same rejection for the same invalid request", func() {
			_, first := svc.UpdateStatus(ctx, ownerA, conn.ID, service.StatusChange{Status: "completed"})
			_, second := svc.UpdateStatus(ctx, ownerA, conn.ID, service.StatusChange{Status: "completed"})

			Expect(first).To(MatchError(domain.ErrInvalidTransition))
			Expect(second).To(Equal(first))
			Expect(mem.stored(conn.ID).StatusHistory).To(HaveLen(1))
		})

		It("rejects unknown statuses before looking the record up", func() {
			calls := mem.getCalls

			_, err := svc.UpdateStatus(ctx, ownerA, conn.ID, service.StatusChange{Status: "archived"})

			var verr *domain.ValidationError
			Expect(errors.As(err, &verr)).To(BeTrue())
			Expect(mem.getCalls).To(Equal(calls))
		})

		It("reports a conflict when the expected status is stale", func() {
			_, err := svc.UpdateStatus(ctx, ownerA, conn.ID, service.StatusChange{
				Status:         "closed",
				ExpectedStatus: strPtr("inDiscussion"),
			})
			Expect(err).To(MatchError(service.ErrConflict))
			Expect(mem.stored(conn.ID).Status).To(Equal(model.ConnectionStatusPending))
		})

		It("publishes the committed transition", func() {
			_, err := svc.UpdateStatus(ctx, ownerA, conn.ID, service.StatusChange{Status: "inDiscussion"})
			Expect(err).NotTo(HaveOccurred())

			events := producer.published()
			Expect(events).To(HaveLen(2))
			Expect(events[1].Type).To(Equal(queue.EventStatusChanged))
			Expect(events[1].From).To(Equal(model.ConnectionStatusPending))
			Expect(events[1].To).To(Equal(model.ConnectionStatusInDiscussion))
			Expect(events[1].Stage).To(Equal(model.ConnectionStageMeeting))
		})

		It("lets exactly one of two concurrent transitions win", func() {
			var reads sync.WaitGroup
			reads.Add(2)
			mem.afterGet = func() {
				reads.Done()
				reads.Wait()
			}

			targets := []string{"inDiscussion", "closed"}
			results := make([]*model.Connection, len(targets))
			errs := make([]error, len(targets))

			var done sync.WaitGroup
			for i, target := range targets {
				done.Add(1)
				go func() {
					defer GinkgoRecover()
					defer done.Done()
					results[i], errs[i] = svc.UpdateStatus(ctx, ownerA, conn.ID, service.StatusChange{Status: target})
				}()
			}
			done.Wait()

			var winner int
			switch {
			case errs[0] == nil:
				winner = 0
				Expect(errs[1]).To(MatchError(service.ErrConflict))
			case errs[1] == nil:
				winner = 1
				Expect(errs[0]).To(MatchError(service.ErrConflict))
			default:
				Fail("no transition succeeded")
			}

			stored := mem.stored(conn.ID)
			Expect(string(stored.Status)).To(Equal(targets[winner]))
			Expect(stored.StatusHistory).To(HaveLen(2))
			Expect(results[winner].Status).To(Equal(stored.Status))
		})
	})

	Describe("ownership", func() {
		var conn *model.Connection

		BeforeEach(func() {
			conn = create(ownerA)
		})

		It("hides the connection from other users' lists", func() {
			conns, err := svc.List(ctx, ownerB, service.ListConnectionsParams{})
			Expect(err).NotTo(HaveOccurred())
			Expect(conns).To(BeEmpty())

			conns, err = svc.List(ctx, ownerA, service.ListConnectionsParams{})
			Expect(err).NotTo(HaveOccurred())
			Expect(conns).To(HaveLen(1))
		})

		It("reports it as not found on direct reads", func() {
			_, err := svc.Get(ctx, ownerB, conn.ID)
			Expect(err).To(MatchError(service.ErrConnectionNotFound))

			found, err := svc.Get(ctx, ownerA, conn.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(found.ID).To(Equal(conn.ID))
		})

		It("reports it as not found on updates and leaves it unchanged", func() {
			_, err := svc.UpdateStatus(ctx, ownerB, conn.ID, service.StatusChange{Status: "closed"})
			Expect(err).To(MatchError(service.ErrConnectionNotFound))

			stored := mem.stored(conn.ID)
			Expect(stored.Status).To(Equal(model.ConnectionStatusPending))
			Expect(stored.StatusHistory).To(HaveLen(1))
		})
	})

	Describe("List", func() {
		It("filters by status", func() {
			first := create(ownerA)
			create(ownerA)
			_, err := svc.UpdateStatus(ctx, ownerA, first.ID, service.StatusChange{Status: "closed"})
			Expect(err).NotTo(HaveOccurred())

			closed, err := svc.List(ctx, ownerA, service.ListConnectionsParams{Status: strPtr("closed")})
			Expect(err).NotTo(HaveOccurred())
			Expect(closed).To(HaveLen(1))
			Expect(closed[0].ID).To(Equal(first.ID))
		})

		It("returns an empty list, not nil, when nothing matches", func() {
			conns, err := svc.List(ctx, ownerA, service.ListConnectionsParams{})
			Expect(err).NotTo(HaveOccurred())
			Expect(conns).NotTo(BeNil())
			Expect(conns).To(BeEmpty())
		})

		DescribeTable("rejects bad filters",
			func(params service.ListConnectionsParams, field string) {
				_, err := svc.List(ctx, ownerA, params)

				var verr *domain.ValidationError
				Expect(errors.As(err, &verr)).To(BeTrue())
				Expect(verr.Issues[0].Field).To(Equal(field))
			},
			Entry("unknown status", service.ListConnectionsParams{Status: strPtr("won")}, "status"),
			Entry("negative limit", service.ListConnectionsParams{Limit: -1}, "limit"),
			Entry("negative offset", service.ListConnectionsParams{Offset: -5}, "offset"),
		)
	})
})
