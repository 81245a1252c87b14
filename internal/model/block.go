// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/olegiv/linkfolio-go/internal/apperr"
)

// Block types
const (
	BlockTypeHeading   = "heading"
	BlockTypeParagraph = "paragraph"
	BlockTypeLink      = "link"
	BlockTypeButton    = "button"
	BlockTypeImage     = "image"
	BlockTypeEmbed     = "embed"
	BlockTypeSpotify   = "spotify"
	BlockTypeList      = "list"
	BlockTypeSpacer    = "spacer"
	BlockTypeProjects  = "projects"
)

// Text alignments
const (
	AlignLeft   = "left"
	AlignCenter = "center"
	AlignRight  = "right"
)

// Spacer height bounds in pixels. Out-of-range values are clamped, never rejected.
const (
	SpacerMinHeight = 4
	SpacerMaxHeight = 256
)

// Block is one self-contained visual unit of a links page. Concrete variants
// are distinguished by their type tag; list position is the sole ordering
// signal, so reordering mutates array position directly.
type Block interface {
	// BlockID returns the opaque unique id of the block within its list.
	BlockID() string
	// BlockType returns the type tag.
	BlockType() string
	// Normalize trims strings, applies defaults, and coerces numeric fields
	// into their valid ranges.
	Normalize()
	// Validate reports a validation error when required fields are missing or
	// malformed after normalization.
	Validate() error
}

// HeadingBlock renders a section heading at one of three fixed weights.
type HeadingBlock struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Level int    `json:"level"`
	Text  string `json:"text"`
	Align string `json:"align,omitempty"`
}

func (b *HeadingBlock) BlockID() string   { return b.ID }
func (b *HeadingBlock) BlockType() string { return BlockTypeHeading }

func (b *HeadingBlock) Normalize() {
	b.Type = BlockTypeHeading
	b.Text = strings.TrimSpace(b.Text)
	b.Align = normalizeAlign(b.Align)
	if b.Level < 1 {
		b.Level = 1
	}
	if b.Level > 3 {
		b.Level = 3
	}
}

func (b *HeadingBlock) Validate() error {
	if b.Text == "" {
		return apperr.Validation("heading text is required")
	}
	return nil
}

// ParagraphBlock renders a run of body text.
type ParagraphBlock struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Text  string `json:"text"`
	Align string `json:"align,omitempty"`
}

func (b *ParagraphBlock) BlockID() string   { return b.ID }
func (b *ParagraphBlock) BlockType() string { return BlockTypeParagraph }

func (b *ParagraphBlock) Normalize() {
	b.Type = BlockTypeParagraph
	b.Text = strings.TrimSpace(b.Text)
	b.Align = normalizeAlign(b.Align)
}

func (b *ParagraphBlock) Validate() error {
	if b.Text == "" {
		return apperr.Validation("paragraph text is required")
	}
	return nil
}

// LinkBlock renders an outbound link card with an optional NSFW indicator.
type LinkBlock struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
	IsNsfw      bool   `json:"isNsfw,omitempty"`
}

func (b *LinkBlock) BlockID() string   { return b.ID }
func (b *LinkBlock) BlockType() string { return BlockTypeLink }

func (b *LinkBlock) Normalize() {
	b.Type = BlockTypeLink
	b.Title = strings.TrimSpace(b.Title)
	b.URL = strings.TrimSpace(b.URL)
	b.Description = strings.TrimSpace(b.Description)
}

func (b *LinkBlock) Validate() error {
	if b.Title == "" {
		return apperr.Validation("link title is required")
	}
	return validateURLField("link url", b.URL)
}

// ButtonBlock renders a prominent call-to-action button.
type ButtonBlock struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Label string `json:"label"`
	URL   string `json:"url"`
}

func (b *ButtonBlock) BlockID() string   { return b.ID }
func (b *ButtonBlock) BlockType() string { return BlockTypeButton }

func (b *ButtonBlock) Normalize() {
	b.Type = BlockTypeButton
	b.Label = strings.TrimSpace(b.Label)
	b.URL = strings.TrimSpace(b.URL)
}

func (b *ButtonBlock) Validate() error {
	if b.Label == "" {
		return apperr.Validation("button label is required")
	}
	return validateURLField("button url", b.URL)
}

// ImageBlock renders an image, optionally captioned and linked.
type ImageBlock struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Src     string `json:"src"`
	Alt     string `json:"alt,omitempty"`
	Caption string `json:"caption,omitempty"`
	LinkURL string `json:"linkUrl,omitempty"`
}

func (b *ImageBlock) BlockID() string   { return b.ID }
func (b *ImageBlock) BlockType() string { return BlockTypeImage }

func (b *ImageBlock) Normalize() {
	b.Type = BlockTypeImage
	b.Src = strings.TrimSpace(b.Src)
	b.Alt = strings.TrimSpace(b.Alt)
	b.Caption = strings.TrimSpace(b.Caption)
	b.LinkURL = strings.TrimSpace(b.LinkURL)
}

func (b *ImageBlock) Validate() error {
	if err := validateURLField("image src", b.Src); err != nil {
		return err
	}
	if b.LinkURL != "" {
		return validateURLField("image link url", b.LinkURL)
	}
	return nil
}

// EmbedBlock embeds external content. The renderer special-cases YouTube URLs
// into an iframe and falls back to a generic link card for everything else.
type EmbedBlock struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

func (b *EmbedBlock) BlockID() string   { return b.ID }
func (b *EmbedBlock) BlockType() string { return BlockTypeEmbed }

func (b *EmbedBlock) Normalize() {
	b.Type = BlockTypeEmbed
	b.URL = strings.TrimSpace(b.URL)
	b.Title = strings.TrimSpace(b.Title)
}

func (b *EmbedBlock) Validate() error {
	return validateURLField("embed url", b.URL)
}

// SpotifyBlock embeds a Spotify track or links out to one.
type SpotifyBlock struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Title    string `json:"title"`
	Artist   string `json:"artist,omitempty"`
	URL      string `json:"url"`
	CoverURL string `json:"coverUrl,omitempty"`
	UseEmbed bool   `json:"useEmbed,omitempty"`
}

func (b *SpotifyBlock) BlockID() string   { return b.ID }
func (b *SpotifyBlock) BlockType() string { return BlockTypeSpotify }

func (b *SpotifyBlock) Normalize() {
	b.Type = BlockTypeSpotify
	b.Title = strings.TrimSpace(b.Title)
	if b.Title == "" {
		b.Title = "Spotify"
	}
	b.Artist = strings.TrimSpace(b.Artist)
	b.URL = strings.TrimSpace(b.URL)
	b.CoverURL = strings.TrimSpace(b.CoverURL)
}

func (b *SpotifyBlock) Validate() error {
	return validateURLField("spotify url", b.URL)
}

// ListBlock renders an ordered or unordered list of short items.
type ListBlock struct {
	ID      string   `json:"id"`
	Type    string   `json:"type"`
	Ordered bool     `json:"ordered,omitempty"`
	Items   []string `json:"items"`
}

func (b *ListBlock) BlockID() string   { return b.ID }
func (b *ListBlock) BlockType() string { return BlockTypeList }

func (b *ListBlock) Normalize() {
	b.Type = BlockTypeList
	items := make([]string, 0, len(b.Items))
	for _, it := range b.Items {
		it = strings.TrimSpace(it)
		if it != "" {
			items = append(items, it)
		}
	}
	b.Items = items
}

func (b *ListBlock) Validate() error {
	if len(b.Items) == 0 {
		return apperr.Validation("list needs at least one item")
	}
	return nil
}

// SpacerBlock renders pure vertical space of a clamped height.
type SpacerBlock struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Height int    `json:"height"`
}

func (b *SpacerBlock) BlockID() string   { return b.ID }
func (b *SpacerBlock) BlockType() string { return BlockTypeSpacer }

func (b *SpacerBlock) Normalize() {
	b.Type = BlockTypeSpacer
	if b.Height < SpacerMinHeight {
		b.Height = SpacerMinHeight
	}
	if b.Height > SpacerMaxHeight {
		b.Height = SpacerMaxHeight
	}
}

func (b *SpacerBlock) Validate() error {
	return nil
}

// ProjectItem is one entry in a projects block. Optional fields are simply
// omitted from rendering when absent.
type ProjectItem struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	DemoURL     string   `json:"demoUrl,omitempty"`
	RepoURL     string   `json:"repoUrl,omitempty"`
}

// ProjectsBlock renders a titled portfolio grid.
type ProjectsBlock struct {
	ID    string        `json:"id"`
	Type  string        `json:"type"`
	Title string        `json:"title"`
	Items []ProjectItem `json:"items"`
}

func (b *ProjectsBlock) BlockID() string   { return b.ID }
func (b *ProjectsBlock) BlockType() string { return BlockTypeProjects }

func (b *ProjectsBlock) Normalize() {
	b.Type = BlockTypeProjects
	b.Title = strings.TrimSpace(b.Title)
	if b.Title == "" {
		b.Title = "Projects"
	}
	for i := range b.Items {
		b.Items[i].Title = strings.TrimSpace(b.Items[i].Title)
		b.Items[i].Description = strings.TrimSpace(b.Items[i].Description)
	}
}

func (b *ProjectsBlock) Validate() error {
	for i, it := range b.Items {
		if it.ID == "" {
			return apperr.Validation("project item %d is missing an id", i)
		}
		if it.Title == "" {
			return apperr.Validation("project item %d is missing a title", i)
		}
	}
	return nil
}

// normalizeAlign coerces an alignment value, defaulting to left.
func normalizeAlign(align string) string {
	switch align {
	case AlignCenter, AlignRight:
		return align
	default:
		return AlignLeft
	}
}

// validateURLField checks that value is a parseable absolute http(s) URL.
func validateURLField(field, value string) error {
	if value == "" {
		return apperr.Validation("%s is required", field)
	}
	u, err := url.Parse(value)
	if err != nil {
		return apperr.Validation("%s is not a valid URL", field)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return apperr.Validation("%s must be an http or https URL", field)
	}
	if u.Host == "" {
		return apperr.Validation("%s is missing a host", field)
	}
	return nil
}

// blockTag is the minimal envelope used to sniff the discriminator.
type blockTag struct {
	Type string `json:"type"`
}

// DecodeBlock decodes a single JSON block keyed on its type tag, normalizes it,
// and validates it. An absent or unrecognized tag is a validation error; the
// renderer, by contrast, ignores unknown tags so that stored documents survive
// schema growth.
func DecodeBlock(raw json.RawMessage) (Block, error) {
	var tag blockTag
	if err := json.Unmarshal(raw, &tag); err != nil {
		return nil, apperr.Validation("block is not a JSON object").Wrap(err)
	}

	var b Block
	switch tag.Type {
	case BlockTypeHeading:
		b = &HeadingBlock{}
	case BlockTypeParagraph:
		b = &ParagraphBlock{}
	case BlockTypeLink:
		b = &LinkBlock{}
	case BlockTypeButton:
		b = &ButtonBlock{}
	case BlockTypeImage:
		b = &ImageBlock{}
	case BlockTypeEmbed:
		b = &EmbedBlock{}
	case BlockTypeSpotify:
		b = &SpotifyBlock{}
	case BlockTypeList:
		b = &ListBlock{}
	case BlockTypeSpacer:
		b = &SpacerBlock{}
	case BlockTypeProjects:
		b = &ProjectsBlock{}
	case "":
		return nil, apperr.Validation("block is missing a type")
	default:
		return nil, apperr.Validation("unknown block type %q", tag.Type)
	}

	if err := json.Unmarshal(raw, b); err != nil {
		return nil, apperr.Validation("malformed %s block", tag.Type).Wrap(err)
	}
	b.Normalize()
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// DecodeBlocks decodes a JSON array of blocks and enforces id uniqueness
// within the list.
func DecodeBlocks(raw json.RawMessage) ([]Block, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, apperr.Validation("blocks must be a JSON array").Wrap(err)
	}
	blocks := make([]Block, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		b, err := DecodeBlock(item)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		if b.BlockID() == "" {
			return nil, apperr.Validation("block %d is missing an id", i)
		}
		if _, dup := seen[b.BlockID()]; dup {
			return nil, apperr.Validation("duplicate block id %q", b.BlockID())
		}
		seen[b.BlockID()] = struct{}{}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

// DecodeBlocksLenient decodes a stored block array, dropping blocks that no
// longer decode (for example tags written by a newer build) instead of
// failing the whole document. Returns the surviving blocks and the number
// skipped.
func DecodeBlocksLenient(raw json.RawMessage) ([]Block, int, error) {
	if len(raw) == 0 {
		return []Block{}, 0, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, 0, apperr.Validation("blocks must be a JSON array").Wrap(err)
	}
	blocks := make([]Block, 0, len(items))
	skipped := 0
	for _, item := range items {
		b, err := DecodeBlock(item)
		if err != nil {
			skipped++
			continue
		}
		blocks = append(blocks, b)
	}
	return blocks, skipped, nil
}

// EncodeBlocks marshals a block list back to its JSON array form.
func EncodeBlocks(blocks []Block) (json.RawMessage, error) {
	if blocks == nil {
		blocks = []Block{}
	}
	data, err := json.Marshal(blocks)
	if err != nil {
		return nil, fmt.Errorf("encoding blocks: %w", err)
	}
	return data, nil
}
