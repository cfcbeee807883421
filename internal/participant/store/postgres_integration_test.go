//go:build integration

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"aakar/internal/participant"
	"aakar/pkg/platform/sentinel"
	"aakar/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite

	pg    *containers.PostgresContainer
	store *PostgresStore
	tx    *PostgresTx
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T(), "../../../migrations/001_init.sql")
	s.store = NewPostgres(s.pg.DB)
	s.tx = NewPostgresTx(s.pg.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateAll(context.Background(), "registrations", "participants"))
}

func (s *PostgresStoreSuite) seed(phone string) *participant.Participant {
	p := participant.New(phone, "Asha", "1MS21CS001", "MSRIT", time.Now().UTC().Truncate(time.Microsecond))
	s.Require().NoError(s.store.Save(context.Background(), p))
	return p
}

func (s *PostgresStoreSuite) TestSaveAndFindRoundTrip() {
	ctx := context.Background()
	p := s.seed("9000000001")

	got, err := s.store.FindByPhone(ctx, "9000000001")
	s.Require().NoError(err)
	s.Equal(p.ID, got.ID)
	s.Equal("Asha", got.Name)
	s.Empty(got.Registrations)

	byID, err := s.store.FindByID(ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(p.Phone, byID.Phone)
}

func (s *PostgresStoreSuite) TestFindMissingReturnsSentinel() {
	_, err := s.store.FindByPhone(context.Background(), "9999999999")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestSaveUpsertsByPhone() {
	ctx := context.Background()
	p := s.seed("9000000001")

	p.Name = "Asha Rao"
	p.College = "RVCE"
	s.Require().NoError(s.store.Save(ctx, p))

	got, err := s.store.FindByPhone(ctx, "9000000001")
	s.Require().NoError(err)
	s.Equal("Asha Rao", got.Name)
	s.Equal("RVCE", got.College)
}

func (s *PostgresStoreSuite) TestAppendRegistrationsPreservesOrder() {
	ctx := context.Background()
	p := s.seed("9000000001")

	now := time.Now().UTC().Truncate(time.Microsecond)
	first := []participant.Registration{
		{EventID: 1, Amount: 15000, OrderID: "order_1", PaymentStatus: participant.PaymentStatusPaid, PaymentID: "pay_1", TicketURL: "http://blob/t1.png", RegisteredAt: now},
		{EventID: 2, Amount: 15000, OrderID: "order_1", PaymentStatus: participant.PaymentStatusPaid, PaymentID: "pay_1", TicketURL: "http://blob/t1.png", RegisteredAt: now},
	}
	s.Require().NoError(s.store.AppendRegistrations(ctx, p.ID, first))

	second := []participant.Registration{
		{EventID: 3, Amount: 20000, OrderID: "order_2", PaymentStatus: participant.PaymentStatusFailed, RegisteredAt: now},
	}
	s.Require().NoError(s.store.AppendRegistrations(ctx, p.ID, second))

	got, err := s.store.FindByID(ctx, p.ID)
	s.Require().NoError(err)
	s.Require().Len(got.Registrations, 3)
	s.Equal(1, got.Registrations[0].EventID)
	s.Equal(2, got.Registrations[1].EventID)
	s.Equal(3, got.Registrations[2].EventID)
	s.Equal(participant.PaymentStatusFailed, got.Registrations[2].PaymentStatus)
	s.Empty(got.Registrations[2].TicketURL)
}

func (s *PostgresStoreSuite) TestHasOrderRegistration() {
	ctx := context.Background()
	p := s.seed("9000000001")

	now := time.Now().UTC()
	s.Require().NoError(s.store.AppendRegistrations(ctx, p.ID, []participant.Registration{
		{EventID: 1, Amount: 15000, OrderID: "order_1", PaymentStatus: participant.PaymentStatusPaid, RegisteredAt: now},
		{EventID: 2, Amount: 15000, OrderID: "order_2", PaymentStatus: participant.PaymentStatusFailed, RegisteredAt: now},
	}))

	exists, err := s.store.HasOrderRegistration(ctx, "9000000001", "order_1", []int{1, 5})
	s.Require().NoError(err)
	s.True(exists)

	// Failed attempts do not count as processed.
	exists, err = s.store.HasOrderRegistration(ctx, "9000000001", "order_2", []int{2})
	s.Require().NoError(err)
	s.False(exists)

	exists, err = s.store.HasOrderRegistration(ctx, "9000000001", "order_9", []int{1})
	s.Require().NoError(err)
	s.False(exists)
}

func (s *PostgresStoreSuite) TestListFiltersByEvent() {
	ctx := context.Background()
	now := time.Now().UTC()

	a := s.seed("9000000001")
	s.Require().NoError(s.store.AppendRegistrations(ctx, a.ID, []participant.Registration{
		{EventID: 1, Amount: 15000, OrderID: "order_1", PaymentStatus: participant.PaymentStatusPaid, RegisteredAt: now},
	}))

	b := participant.New("9000000002", "Ravi", "", "", now)
	s.Require().NoError(s.store.Save(ctx, b))
	s.Require().NoError(s.store.AppendRegistrations(ctx, b.ID, []participant.Registration{
		{EventID: 1, Amount: 15000, OrderID: "order_2", PaymentStatus: participant.PaymentStatusFailed, RegisteredAt: now},
	}))

	all, err := s.store.List(ctx, participant.ListFilter{})
	s.Require().NoError(err)
	s.Len(all, 2)

	filtered, err := s.store.List(ctx, participant.ListFilter{EventID: 1})
	s.Require().NoError(err)
	s.Require().Len(filtered, 1)
	s.Equal("9000000001", filtered[0].Phone)
}

func (s *PostgresStoreSuite) TestRunInTxCommits() {
	ctx := context.Background()
	p := s.seed("9000000001")

	err := s.tx.RunInTx(ctx, p.Phone, func(ctx context.Context) error {
		return s.store.AppendRegistrations(ctx, p.ID, []participant.Registration{
			{EventID: 1, Amount: 15000, OrderID: "order_1", PaymentStatus: participant.PaymentStatusPaid, RegisteredAt: time.Now().UTC()},
		})
	})
	s.Require().NoError(err)

	got, err := s.store.FindByID(ctx, p.ID)
	s.Require().NoError(err)
	s.Len(got.Registrations, 1)
}

func (s *PostgresStoreSuite) TestRunInTxRollsBackOnError() {
	ctx := context.Background()
	p := s.seed("9000000001")

	boom := errors.New("ticket generation failed")
	err := s.tx.RunInTx(ctx, p.Phone, func(ctx context.Context) error {
		if err := s.store.AppendRegistrations(ctx, p.ID, []participant.Registration{
			{EventID: 1, Amount: 15000, OrderID: "order_1", PaymentStatus: participant.PaymentStatusPaid, RegisteredAt: time.Now().UTC()},
		}); err != nil {
			return err
		}
		return boom
	})
	s.Require().ErrorIs(err, boom)

	got, err := s.store.FindByID(ctx, p.ID)
	s.Require().NoError(err)
	s.Empty(got.Registrations)
}
