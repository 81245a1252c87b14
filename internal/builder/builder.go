// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package builder holds the editing-session state for a links page: an owned,
// ordered block list mutated locally and persisted only on save.
package builder

import (
	"sync"

	"github.com/google/uuid"

	"github.com/olegiv/linkfolio-go/internal/apperr"
	"github.com/olegiv/linkfolio-go/internal/model"
)

// Move directions
const (
	MoveUp   = "up"
	MoveDown = "down"
)

// Builder owns the in-memory block list for one editing session. All
// mutations are local; nothing is persisted until the caller saves.
type Builder struct {
	mu     sync.Mutex
	blocks []model.Block
}

// New creates a builder seeded with the stored block list.
func New(initial []model.Block) *Builder {
	b := &Builder{blocks: make([]model.Block, len(initial))}
	copy(b.blocks, initial)
	return b
}

// Blocks returns a copy of the current ordered block list.
func (b *Builder) Blocks() []model.Block {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]model.Block, len(b.blocks))
	copy(out, b.blocks)
	return out
}

// Len returns the number of blocks.
func (b *Builder) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.blocks)
}

// Add validates the block and appends it. A block without an id gets a
// freshly minted one; a duplicate id is rejected.
func (b *Builder) Add(block model.Block) error {
	block.Normalize()
	if err := block.Validate(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	id := block.BlockID()
	if id == "" {
		id = uuid.New().String()
		setBlockID(block, id)
	} else if b.indexOf(id) >= 0 {
		return apperr.Validation("duplicate block id %q", id)
	}

	b.blocks = append(b.blocks, block)
	return nil
}

// Edit revalidates the replacement and swaps it in at the position of the
// block with the same id. The original id is always preserved.
func (b *Builder) Edit(id string, replacement model.Block) error {
	setBlockID(replacement, id)
	replacement.Normalize()
	if err := replacement.Validate(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.indexOf(id)
	if idx < 0 {
		return apperr.NotFound("no block with id %q", id)
	}
	b.blocks[idx] = replacement
	return nil
}

// Remove filters out the block with the given id. Removing an unknown id is
// a no-op returning false.
func (b *Builder) Remove(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.indexOf(id)
	if idx < 0 {
		return false
	}
	b.blocks = append(b.blocks[:idx], b.blocks[idx+1:]...)
	return true
}

// Move swaps the block with its neighbor in the given direction. Moving up at
// index 0 or down at the last index is a no-op: the list never wraps and
// never errors. Returns whether the order changed.
func (b *Builder) Move(id, direction string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.indexOf(id)
	if idx < 0 {
		return false
	}

	switch direction {
	case MoveUp:
		if idx == 0 {
			return false
		}
		b.blocks[idx-1], b.blocks[idx] = b.blocks[idx], b.blocks[idx-1]
		return true
	case MoveDown:
		if idx == len(b.blocks)-1 {
			return false
		}
		b.blocks[idx], b.blocks[idx+1] = b.blocks[idx+1], b.blocks[idx]
		return true
	default:
		return false
	}
}

// indexOf returns the position of the block with the given id, or -1.
// Callers must hold the lock.
func (b *Builder) indexOf(id string) int {
	for i, block := range b.blocks {
		if block.BlockID() == id {
			return i
		}
	}
	return -1
}

// setBlockID writes the id onto the concrete block variant.
func setBlockID(block model.Block, id string) {
	switch v := block.(type) {
	case *model.HeadingBlock:
		v.ID = id
	case *model.ParagraphBlock:
		v.ID = id
	case *model.LinkBlock:
		v.ID = id
	case *model.ButtonBlock:
		v.ID = id
	case *model.ImageBlock:
		v.ID = id
	case *model.EmbedBlock:
		v.ID = id
	case *model.SpotifyBlock:
		v.ID = id
	case *model.SpacerBlock:
		v.ID = id
	case *model.ListBlock:
		v.ID = id
	case *model.ProjectsBlock:
		v.ID = id
	}
}
