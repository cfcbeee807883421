package participant

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aakar/pkg/platform/sentinel"
)

func TestFindByPhoneNotFound(t *testing.T) {
	s := NewInMemoryStore()
	_, err := s.FindByPhone(context.Background(), "9000000001")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestSaveAndFind(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	p := New("9000000001", "Asha Rao", "1AB21CS001", "ABC College", time.Now())
	require.NoError(t, s.Save(ctx, p))

	byPhone, err := s.FindByPhone(ctx, "9000000001")
	require.NoError(t, err)
	assert.Equal(t, p.ID, byPhone.ID)

	byID, err := s.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", byID.Name)
}

func TestAppendRegistrationsPreservesOrder(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	p := New("9000000001", "Asha Rao", "1AB21CS001", "ABC College", time.Now())
	require.NoError(t, s.Save(ctx, p))

	require.NoError(t, s.AppendRegistrations(ctx, p.ID, []Registration{
		{EventID: 3, OrderID: "o1", PaymentStatus: PaymentStatusPaid},
	}))
	require.NoError(t, s.AppendRegistrations(ctx, p.ID, []Registration{
		{EventID: 1, OrderID: "o2", PaymentStatus: PaymentStatusPaid},
	}))

	got, err := s.FindByPhone(ctx, "9000000001")
	require.NoError(t, err)
	require.Len(t, got.Registrations, 2)
	assert.Equal(t, 3, got.Registrations[0].EventID)
	assert.Equal(t, 1, got.Registrations[1].EventID)
}

func TestFindReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	p := New("9000000001", "Asha Rao", "1AB21CS001", "ABC College", time.Now())
	require.NoError(t, s.Save(ctx, p))

	got, err := s.FindByPhone(ctx, "9000000001")
	require.NoError(t, err)
	got.Registrations = append(got.Registrations, Registration{EventID: 99})
	got.Name = "mutated"

	again, err := s.FindByPhone(ctx, "9000000001")
	require.NoError(t, err)
	assert.Empty(t, again.Registrations)
	assert.Equal(t, "Asha Rao", again.Name)
}

func TestHasOrderRegistration(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	p := New("9000000001", "Asha Rao", "1AB21CS001", "ABC College", time.Now())
	require.NoError(t, s.Save(ctx, p))
	require.NoError(t, s.AppendRegistrations(ctx, p.ID, []Registration{
		{EventID: 1, OrderID: "o1", PaymentStatus: PaymentStatusPaid},
		{EventID: 2, OrderID: "o2", PaymentStatus: PaymentStatusFailed},
	}))

	seen, err := s.HasOrderRegistration(ctx, "9000000001", "o1", []int{1, 5})
	require.NoError(t, err)
	assert.True(t, seen)

	seen, err = s.HasOrderRegistration(ctx, "9000000001", "o2", []int{2})
	require.NoError(t, err)
	assert.False(t, seen, "failed registrations never satisfy the idempotency guard")

	seen, err = s.HasOrderRegistration(ctx, "9000000001", "o1", []int{9})
	require.NoError(t, err)
	assert.False(t, seen)

	seen, err = s.HasOrderRegistration(ctx, "9999999999", "o1", []int{1})
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestListFiltersByEvent(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	p1 := New("9000000001", "A", "u1", "c", time.Now().Add(-time.Hour))
	require.NoError(t, s.Save(ctx, p1))
	require.NoError(t, s.AppendRegistrations(ctx, p1.ID, []Registration{
		{EventID: 1, OrderID: "o1", PaymentStatus: PaymentStatusPaid},
	}))

	p2 := New("9000000002", "B", "u2", "c", time.Now())
	require.NoError(t, s.Save(ctx, p2))

	all, err := s.List(ctx, ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "9000000001", all[0].Phone, "list is ordered by creation time")

	filtered, err := s.List(ctx, ListFilter{EventID: 1})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "9000000001", filtered[0].Phone)
}
