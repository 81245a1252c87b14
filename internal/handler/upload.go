// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/olegiv/linkfolio-go/internal/middleware"
	"github.com/olegiv/linkfolio-go/internal/upload"
)

// UploadHandler mints signed upload tickets.
type UploadHandler struct {
	signer *upload.Signer
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(signer *upload.Signer) *UploadHandler {
	return &UploadHandler{signer: signer}
}

type ticketRequest struct {
	Kind string `json:"kind"`
}

// Ticket handles POST /api/uploads/ticket.
func (h *UploadHandler) Ticket(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	var req ticketRequest
	if err := decodeBody(r, &req); err != nil {
		WriteAppError(w, err)
		return
	}

	ticket, err := h.signer.Mint(user.ID, req.Kind)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteCreated(w, ticket)
}
