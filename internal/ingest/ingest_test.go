package ingest

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMediaTypeAllowed(t *testing.T) {
	tests := []struct {
		mediaType string
		patterns  []string
		want      bool
	}{
		{"image/jpeg", ReportMediaTypes, true},
		{"image/png", ReportMediaTypes, true},
		{"application/pdf", ReportMediaTypes, true},
		{"IMAGE/JPEG", ReportMediaTypes, true},
		{"video/mp4", ReportMediaTypes, false},
		{"text/plain", ReportMediaTypes, false},
		{"image/jpeg", FoodMediaTypes, true},
		{"application/pdf", FoodMediaTypes, false},
		{"", FoodMediaTypes, false},
		{"image", FoodMediaTypes, false},
	}
	for _, tc := range tests {
		got := MediaTypeAllowed(tc.mediaType, tc.patterns)
		require.Equal(t, tc.want, got, "media type %q against %v", tc.mediaType, tc.patterns)
	}
}

func TestNewAttachment_RoundTrip(t *testing.T) {
	raw := []byte{0xFF, 0xD8, 0xFF, 0x00, 0x10}
	att, err := NewAttachment(raw, "image/jpeg", "file-1")
	require.NoError(t, err)

	decoded, err := base64.StdEncoding.DecodeString(att.EncodedPayload)
	require.NoError(t, err)
	require.Equal(t, raw, decoded)
	require.Equal(t, "image/jpeg", att.MediaType)
	require.Equal(t, "file-1", att.DisplayHandle)
}

func TestNewAttachment_Invalid(t *testing.T) {
	_, err := NewAttachment(nil, "image/jpeg", "f")
	require.Error(t, err)

	_, err = NewAttachment([]byte("data"), "", "f")
	require.Error(t, err)
}

func TestBatch_AddPreservesOrder(t *testing.T) {
	b := NewBatch(FoodMediaTypes...)

	for _, h := range []string{"a", "b", "c"} {
		_, err := b.Add([]byte(h), "image/jpeg", h)
		require.NoError(t, err)
	}

	items := b.Items()
	require.Len(t, items, 3)
	for i, want := range []string{"a", "b", "c"} {
		require.Equal(t, want, items[i].DisplayHandle)
	}
}

func TestBatch_RejectedAddLeavesBatchUntouched(t *testing.T) {
	b := NewBatch(FoodMediaTypes...)
	_, err := b.Add([]byte("a"), "image/jpeg", "a")
	require.NoError(t, err)

	_, err = b.Add([]byte("doc"), "application/pdf", "doc")
	require.Error(t, err)

	require.Equal(t, 1, b.Len())
	require.Equal(t, "a", b.Items()[0].DisplayHandle)
}

func TestBatch_RemoveAt(t *testing.T) {
	b := NewBatch(FoodMediaTypes...)
	for _, h := range []string{"a", "b", "c"} {
		_, err := b.Add([]byte(h), "image/jpeg", h)
		require.NoError(t, err)
	}

	require.True(t, b.RemoveAt(1))
	items := b.Items()
	require.Len(t, items, 2)
	require.Equal(t, "a", items[0].DisplayHandle)
	require.Equal(t, "c", items[1].DisplayHandle)

	require.False(t, b.RemoveAt(5))
	require.False(t, b.RemoveAt(-1))
	require.Equal(t, 2, b.Len())
}

func TestBatch_ItemsReturnsCopy(t *testing.T) {
	b := NewBatch(FoodMediaTypes...)
	_, err := b.Add([]byte("a"), "image/jpeg", "a")
	require.NoError(t, err)

	items := b.Items()
	items[0].DisplayHandle = "tampered"
	require.Equal(t, "a", b.Items()[0].DisplayHandle)
}

func TestBatch_Clear(t *testing.T) {
	b := NewBatch(ReportMediaTypes...)
	_, err := b.Add([]byte("a"), "application/pdf", "a")
	require.NoError(t, err)

	b.Clear()
	require.Equal(t, 0, b.Len())
}
