package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEvent(t *testing.T) {
	in := BookingEvent{
		Type:          EventBookingCreated,
		EventID:       "e-1",
		BookingID:     3,
		PNR:           "AA7K3Q9Z",
		FlightID:      100,
		UserID:        7,
		Status:        "CONFIRMED",
		PaymentStatus: "PENDING",
		AmountCents:   25000,
		DepartureTime: time.Date(2030, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	data, err := json.Marshal(in)
	require.NoError(t, err)

	out, err := DecodeEvent(data)
	require.NoError(t, err)
	assert.Equal(t, in.PNR, out.PNR)
	assert.Equal(t, in.AmountCents, out.AmountCents)
	assert.True(t, in.DepartureTime.Equal(out.DepartureTime))
}

func TestDecodeEvent_Invalid(t *testing.T) {
	_, err := DecodeEvent([]byte("not json"))
	assert.Error(t, err)

	_, err = DecodeEvent([]byte(`{"pnr":"AA7K3Q9Z"}`))
	assert.Error(t, err)
}

func TestCheckConnection_NoBrokers(t *testing.T) {
	p := NewProducer(nil)
	defer p.Close()
	assert.Error(t, p.CheckConnection(context.Background()))
}
