package step

import (
	"errors"
	"fmt"
)

// ArtifactKind discriminates the two ArtifactRef variants.
type ArtifactKind string

const (
	// ArtifactPointer references content stored in external blob storage.
	ArtifactPointer ArtifactKind = "pointer"
	// ArtifactInline carries small content directly in the envelope.
	ArtifactInline ArtifactKind = "inline"
)

const (
	// MaxPreviewBytes caps the optional preview carried by a pointer ref.
	MaxPreviewBytes = 4 * 1024
	// MaxInlineBytes caps the content carried by an inline ref.
	MaxInlineBytes = 64 * 1024
	// HashLength is the required length of a content hash (hex sha-256).
	HashLength = 64
)

// PointerArtifact references step-produced content held in blob storage.
type PointerArtifact struct {
	URI         string `json:"uri"`
	ContentType string `json:"contentType"`
	SizeBytes   int64  `json:"sizeBytes"`
	Hash        string `json:"hash"`
	Preview     string `json:"preview,omitempty"`
}

// InlineArtifact carries step-produced content directly.
type InlineArtifact struct {
	Content     string `json:"content"`
	ContentType string `json:"contentType"`
	Hash        string `json:"hash,omitempty"`
}

// ArtifactRef is a tagged union of exactly two shapes: a pointer into
// external storage or inlined content. Exactly one variant is populated;
// callers must switch on Kind and never guess.
type ArtifactRef struct {
	Kind    ArtifactKind     `json:"kind"`
	Pointer *PointerArtifact `json:"pointer,omitempty"`
	Inline  *InlineArtifact  `json:"inline,omitempty"`
}

// NewPointerRef builds a pointer-variant artifact reference.
func NewPointerRef(uri, contentType string, sizeBytes int64, hash string) ArtifactRef {
	return ArtifactRef{
		Kind: ArtifactPointer,
		Pointer: &PointerArtifact{
			URI:         uri,
			ContentType: contentType,
			SizeBytes:   sizeBytes,
			Hash:        hash,
		},
	}
}

// NewInlineRef builds an inline-variant artifact reference.
func NewInlineRef(content, contentType string) ArtifactRef {
	return ArtifactRef{
		Kind:   ArtifactInline,
		Inline: &InlineArtifact{Content: content, ContentType: contentType},
	}
}

// Validate checks the union invariant and the per-variant size constraints.
func (r *ArtifactRef) Validate() error {
	switch r.Kind {
	case ArtifactPointer:
		if r.Pointer == nil {
			return errors.New("artifact: kind pointer with nil pointer variant")
		}
		if r.Inline != nil {
			return errors.New("artifact: both variants populated")
		}
		if r.Pointer.URI == "" {
			return errors.New("artifact: pointer uri is empty")
		}
		if len(r.Pointer.Hash) != HashLength {
			return fmt.Errorf("artifact: pointer hash must be %d characters, got %d", HashLength, len(r.Pointer.Hash))
		}
		if len(r.Pointer.Preview) > MaxPreviewBytes {
			return fmt.Errorf("artifact: preview exceeds %d bytes", MaxPreviewBytes)
		}
		if r.Pointer.SizeBytes < 0 {
			return errors.New("artifact: negative sizeBytes")
		}
		return nil
	case ArtifactInline:
		if r.Inline == nil {
			return errors.New("artifact: kind inline with nil inline variant")
		}
		if r.Pointer != nil {
			return errors.New("artifact: both variants populated")
		}
		if len(r.Inline.Content) > MaxInlineBytes {
			return fmt.Errorf("artifact: inline content exceeds %d bytes", MaxInlineBytes)
		}
		if hash := r.Inline.Hash; hash != "" && len(hash) != HashLength {
			return fmt.Errorf("artifact: inline hash must be %d characters, got %d", HashLength, len(hash))
		}
		return nil
	default:
		return fmt.Errorf("artifact: unknown kind %q", r.Kind)
	}
}

// ContentType returns the declared content type of whichever variant is set.
func (r *ArtifactRef) ContentType() string {
	switch r.Kind {
	case ArtifactPointer:
		if r.Pointer != nil {
			return r.Pointer.ContentType
		}
	case ArtifactInline:
		if r.Inline != nil {
			return r.Inline.ContentType
		}
	}
	return ""
}
