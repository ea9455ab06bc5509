package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/uclouvain/admission-core/internal/domain/shared"
)

type ticketServiceMock struct {
	mock.Mock
}

func (m *ticketServiceMock) HasTicket(ctx context.Context, candidate shared.PersonID) (bool, error) {
	args := m.Called(ctx, candidate)
	return args.Bool(0), args.Error(1)
}

func (m *ticketServiceMock) RequestTicket(ctx context.Context, candidate shared.PersonID) error {
	return m.Called(ctx, candidate).Error(0)
}

func TestRequestIdentityTicket(t *testing.T) {
	ctx := context.Background()

	t.Run("opens a ticket", func(t *testing.T) {
		tickets := &ticketServiceMock{}
		tickets.On("HasTicket", ctx, shared.PersonID("candidate-1")).Return(false, nil)
		tickets.On("RequestTicket", ctx, shared.PersonID("candidate-1")).Return(nil)

		res, err := NewRequestIdentityTicketHandler(tickets).Handle(ctx, RequestIdentityTicketCommand{CandidateID: "candidate-1"})

		require.NoError(t, err)
		assert.True(t, res.Created)
		tickets.AssertExpectations(t)
	})

	t.Run("is a no-op when a ticket exists", func(t *testing.T) {
		tickets := &ticketServiceMock{}
		tickets.On("HasTicket", ctx, shared.PersonID("candidate-1")).Return(true, nil)

		res, err := NewRequestIdentityTicketHandler(tickets).Handle(ctx, RequestIdentityTicketCommand{CandidateID: "candidate-1"})

		require.NoError(t, err)
		assert.False(t, res.Created)
		tickets.AssertNotCalled(t, "RequestTicket", mock.Anything, mock.Anything)
	})
}
