// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package preview

import "github.com/bureau-foundation/huddle/lib/ref"

// Attachment is the preview-relevant part of a message attachment.
type Attachment struct {
	ID       ref.AttachmentID
	MimeType string
	Filename string
	Size     int64
}

// Message is a visible message. Only its attachments matter here.
type Message struct {
	Attachments []Attachment
}

// Target is an attachment selected for preview.
type Target struct {
	Attachment
	Kind Kind
}

// SelectTargets returns the attachments of messages that have a
// previewable kind and a size within maxBytes, in first-seen order
// with duplicate IDs removed.
func SelectTargets(messages []Message, maxBytes int64) []Target {
	var targets []Target
	seen := make(map[ref.AttachmentID]bool)
	for _, message := range messages {
		for _, attachment := range message.Attachments {
			if attachment.ID.IsZero() || seen[attachment.ID] {
				continue
			}
			seen[attachment.ID] = true
			if attachment.Size < 0 || attachment.Size > maxBytes {
				continue
			}
			kind := ResolveKind(attachment.MimeType, attachment.Filename)
			if !kind.Previewable() {
				continue
			}
			targets = append(targets, Target{Attachment: attachment, Kind: kind})
		}
	}
	return targets
}
