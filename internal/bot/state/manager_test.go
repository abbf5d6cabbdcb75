package state

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestManager_States(t *testing.T) {
	m := NewManager()

	require.Equal(t, None, m.GetUserState(1), "unknown user defaults to None")

	m.SetUserState(1, CollectingReports)
	require.Equal(t, CollectingReports, m.GetUserState(1))
	require.Equal(t, None, m.GetUserState(2), "states are per user")
}

func TestManager_TempData(t *testing.T) {
	m := NewManager()

	_, ok := m.GetTempData(1, "payment_channel")
	require.False(t, ok)

	m.SetTempData(1, "payment_channel", "UPI")
	v, ok := m.GetTempData(1, "payment_channel")
	require.True(t, ok)
	require.Equal(t, "UPI", v)

	m.ClearTempData(1)
	_, ok = m.GetTempData(1, "payment_channel")
	require.False(t, ok)
}

func TestUploads_PerUserBatches(t *testing.T) {
	u := NewUploads()

	_, err := u.Reports(1).Add([]byte("pdf"), "application/pdf", "r1")
	require.NoError(t, err)
	_, err = u.Foods(1).Add([]byte("jpg"), "image/jpeg", "f1")
	require.NoError(t, err)

	require.Equal(t, 1, u.Reports(1).Len())
	require.Equal(t, 1, u.Foods(1).Len())
	require.Equal(t, 0, u.Reports(2).Len(), "batches are per user")

	u.Clear(1)
	require.Equal(t, 0, u.Reports(1).Len())
	require.Equal(t, 0, u.Foods(1).Len())
}

func TestUploads_SlotAcceptFilters(t *testing.T) {
	u := NewUploads()

	// Reports take PDFs, food does not.
	_, err := u.Reports(1).Add([]byte("pdf"), "application/pdf", "r1")
	require.NoError(t, err)
	_, err = u.Foods(1).Add([]byte("pdf"), "application/pdf", "f1")
	require.Error(t, err)
}
