package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/museobook/museum-ticketing-platform/internal/tickets"
	"github.com/museobook/museum-ticketing-platform/pkg/logging"
)

type captureSender struct {
	sent []EmailMessage
	err  error
}

func (c *captureSender) Send(_ context.Context, msg EmailMessage) error {
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, msg)
	return nil
}

func TestSendBookingConfirmation(t *testing.T) {
	sender := &captureSender{}
	svc := NewService(sender, logging.New("error"))

	ticket := &tickets.Ticket{MuseumName: "City Museum", VisitDate: "2099-01-01", Visitors: 3, Price: 750}
	err := svc.SendBookingConfirmation(context.Background(), "visitor@example.com", ticket)

	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "visitor@example.com", sender.sent[0].To)
	assert.Contains(t, sender.sent[0].Subject, "City Museum")
	assert.Contains(t, sender.sent[0].Body, "2099-01-01")
}

func TestSendCancellationNotice_MentionsRefundOnlyWhenProcessed(t *testing.T) {
	sender := &captureSender{}
	svc := NewService(sender, logging.New("error"))

	plain := &tickets.Ticket{MuseumName: "City Museum", VisitDate: "2099-01-01", Visitors: 1, Price: 250}
	require.NoError(t, svc.SendCancellationNotice(context.Background(), "v@example.com", plain))
	assert.NotContains(t, sender.sent[0].Body, "refund")

	refunded := &tickets.Ticket{MuseumName: "City Museum", VisitDate: "2099-01-01", Visitors: 1, Price: 250, RefundStatus: tickets.RefundProcessed}
	require.NoError(t, svc.SendCancellationNotice(context.Background(), "v@example.com", refunded))
	assert.Contains(t, sender.sent[1].Body, "refund")
}

func TestSendWrapsSenderError(t *testing.T) {
	svc := NewService(&captureSender{err: errors.New("smtp down")}, logging.New("error"))

	err := svc.SendBookingConfirmation(context.Background(), "v@example.com", &tickets.Ticket{})
	assert.Error(t, err)
}

func TestNewSendGridSender_NoKeyReturnsNil(t *testing.T) {
	assert.Nil(t, NewSendGridSender(SendGridConfig{}, logging.New("error")))
}
