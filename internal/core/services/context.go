package services

import (
	"fmt"
	"strings"

	"github.com/docchat-labs/docchat-cli/internal/core/domain"
)

// AssembleContext builds the context blob and source list for an AI
// request from the stored document collection.
//
// The block framing is part of the backend contract: each document is
// introduced by a "[Document: <filename>]" marker line, and blocks are
// separated by one blank line so the assistant prompt can tell
// documents apart. Selection order never matters; documents always
// appear in stored order.
func AssembleContext(docs []domain.Document, mode domain.ContextMode, selected []string) (string, []domain.ContextSource) {
	if mode == domain.ContextNone {
		return "", nil
	}

	wanted := make(map[string]bool, len(selected))
	for _, id := range selected {
		wanted[id] = true
	}

	var blocks []string
	var sources []domain.ContextSource
	for _, doc := range docs {
		if mode == domain.ContextSelected && !wanted[doc.ID] {
			continue
		}
		blocks = append(blocks, fmt.Sprintf("[Document: %s]\n%s", doc.Filename, doc.Content))
		sources = append(sources, domain.ContextSource{ID: doc.ID, Filename: doc.Filename})
	}

	return strings.Join(blocks, "\n\n"), sources
}
