// Package ingest turns raw file uploads into transport-safe attachments.
package ingest

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/nutrisync/nutrisync-bot/internal/domain"
	apperrors "github.com/nutrisync/nutrisync-bot/internal/errors"
)

// Accept filters for the two upload slots, mirroring the original upload
// cards: reports accept images and PDFs, food accepts images only.
var (
	ReportMediaTypes = []string{"image/*", "application/pdf"}
	FoodMediaTypes   = []string{"image/*"}
)

// MediaTypeAllowed matches a declared content type against accept patterns.
// A pattern of the form "type/*" matches any subtype; anything else must
// match exactly. Matching is case-insensitive per RFC 2045.
func MediaTypeAllowed(mediaType string, patterns []string) bool {
	mt := strings.ToLower(strings.TrimSpace(mediaType))
	for _, p := range patterns {
		p = strings.ToLower(p)
		if wild, ok := strings.CutSuffix(p, "/*"); ok {
			if strings.HasPrefix(mt, wild+"/") {
				return true
			}
			continue
		}
		if mt == p {
			return true
		}
	}
	return false
}

// NewAttachment builds a single attachment from raw bytes. The encoded
// payload round-trips: decoding it yields the raw bytes again.
func NewAttachment(raw []byte, mediaType, displayHandle string) (domain.Attachment, error) {
	if len(raw) == 0 {
		return domain.Attachment{}, apperrors.NewInputError("attachment has no content")
	}
	if mediaType == "" {
		return domain.Attachment{}, apperrors.NewInputError("attachment has no declared media type")
	}

	return domain.Attachment{
		RawBytes:       raw,
		EncodedPayload: base64.StdEncoding.EncodeToString(raw),
		MediaType:      mediaType,
		DisplayHandle:  displayHandle,
	}, nil
}

// Batch is an ordered collection of attachments for one upload slot.
// Adding always appends; a rejected file leaves the batch untouched.
type Batch struct {
	allowed []string
	items   []domain.Attachment
}

// NewBatch creates a batch accepting the given media-type patterns
func NewBatch(allowedPatterns ...string) *Batch {
	return &Batch{allowed: allowedPatterns}
}

// Add validates, encodes and appends one file. On failure the error is
// returned and the existing items are left exactly as they were.
func (b *Batch) Add(raw []byte, mediaType, displayHandle string) (domain.Attachment, error) {
	if !MediaTypeAllowed(mediaType, b.allowed) {
		return domain.Attachment{}, apperrors.Wrap(
			fmt.Errorf("media type %q not in %v", mediaType, b.allowed),
			apperrors.ErrorTypeInput, "UNSUPPORTED_MEDIA", "File type is not accepted for this upload",
		)
	}

	att, err := NewAttachment(raw, mediaType, displayHandle)
	if err != nil {
		return domain.Attachment{}, err
	}

	b.items = append(b.items, att)
	return att, nil
}

// RemoveAt drops the attachment at index i, preserving the relative order of
// the rest. Returns false for an out-of-range index.
func (b *Batch) RemoveAt(i int) bool {
	if i < 0 || i >= len(b.items) {
		return false
	}
	b.items = append(b.items[:i], b.items[i+1:]...)
	return true
}

// Items returns a copy of the current attachments in input order
func (b *Batch) Items() []domain.Attachment {
	out := make([]domain.Attachment, len(b.items))
	copy(out, b.items)
	return out
}

// Len returns the number of attachments in the batch
func (b *Batch) Len() int {
	return len(b.items)
}

// Clear discards all attachments
func (b *Batch) Clear() {
	b.items = nil
}
