package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_TransitionTable(t *testing.T) {
	allowed := map[[2]Status]bool{
		{StatusPending, StatusConfirmed}:   true,
		{StatusPending, StatusCancelled}:   true,
		{StatusConfirmed, StatusDelivered}: true,
	}
	for _, from := range Statuses() {
		for _, to := range Statuses() {
			want := allowed[[2]Status{from, to}]
			assert.Equal(t, want, from.CanTransition(to, PartySeller), "seller %s -> %s", from, to)
			assert.False(t, from.CanTransition(to, PartyBuyer), "buyer %s -> %s", from, to)
		}
	}
}

func TestStatus_Terminal(t *testing.T) {
	assert.True(t, StatusDelivered.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusConfirmed.Terminal())
	assert.Empty(t, StatusDelivered.Next(PartySeller))
	assert.Empty(t, StatusCancelled.Next(PartySeller))
	assert.Equal(t, []Status{StatusConfirmed, StatusCancelled}, StatusPending.Next(PartySeller))
	assert.Empty(t, StatusPending.Next(PartyBuyer))
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("CONFIRMED")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, st)

	_, err = ParseStatus("shipped")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestStatus_UnmarshalJSON(t *testing.T) {
	var o struct {
		Status Status `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"status":"Delivered"}`), &o))
	assert.Equal(t, StatusDelivered, o.Status)
	assert.Error(t, json.Unmarshal([]byte(`{"status":"lost"}`), &o))
}

func TestTransitions_ReturnsCopy(t *testing.T) {
	tt := Transitions()
	require.Len(t, tt, 3)
	tt[0].To = StatusDelivered
	assert.False(t, StatusPending.CanTransition(StatusDelivered, PartySeller))
}
