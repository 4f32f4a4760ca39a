package marketplace

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewOrderLink_Validation(t *testing.T) {
	storeID := uuid.New()

	_, err := NewOrderLink(storeID, "", uuid.New(), "marketplace", false)
	assert.Error(t, err)

	_, err = NewOrderLink(storeID, "FB-1001", uuid.Nil, "marketplace", false)
	assert.Error(t, err)

	link, err := NewOrderLink(storeID, "FB-1001", uuid.New(), "marketplace", true)
	assert.NoError(t, err)
	assert.Equal(t, "FB-1001", link.RemoteOrderID)
	assert.True(t, link.EmailOptIn)
}

func TestOrderLink_ShipmentSyncTracking(t *testing.T) {
	link, err := NewOrderLink(uuid.New(), "FB-1001", uuid.New(), "marketplace", false)
	assert.NoError(t, err)

	assert.False(t, link.HasSyncedShipment("SHIP-1"))

	link.MarkShipmentSynced("SHIP-1")
	assert.True(t, link.HasSyncedShipment("SHIP-1"))
	assert.False(t, link.HasSyncedShipment("SHIP-2"))

	// Marking twice does not duplicate the entry.
	link.MarkShipmentSynced("SHIP-1")
	assert.Len(t, link.SyncedShipments, 1)
}

func TestSyncRun_Finish(t *testing.T) {
	run := NewSyncRun(uuid.New())
	assert.Equal(t, SyncRunStatusFailed, run.Status)

	run.Finish(10, 8, nil)
	assert.Equal(t, SyncRunStatusSuccess, run.Status)
	assert.Equal(t, 10, run.TotalPulled)
	assert.Equal(t, 8, run.TotalCreated)
	assert.False(t, run.FinishedAt.IsZero())

	partial := NewSyncRun(uuid.New())
	partial.Finish(10, 7, []string{"order FB-3: shipping method unmapped"})
	assert.Equal(t, SyncRunStatusPartial, partial.Status)
	assert.Len(t, partial.Errors, 1)
}
