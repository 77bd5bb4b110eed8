// Copyright 2026 The Anzenboard Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/anzenboard/anzenboard/internal/board"
	"github.com/anzenboard/anzenboard/internal/callable"
	"github.com/anzenboard/anzenboard/internal/tenant"
)

// ListUsers returns the member profiles of the caller's current tenant.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	caller := GetIdentity(r.Context())
	if caller == nil || caller.CurrentTenantID == "" {
		respondError(w, http.StatusUnauthorized, "no tenant selected")
		return
	}

	role, err := h.tenantService.ResolveRole(r.Context(), caller.UID, caller.CurrentTenantID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to resolve role")
		return
	}
	if !role.IsTenantManager() {
		respondError(w, http.StatusForbidden, "tenant manager role required")
		return
	}

	profiles, err := h.tenantService.ListProfiles(r.Context(), caller.CurrentTenantID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	users := make([]map[string]any, 0, len(profiles))
	for _, p := range profiles {
		users = append(users, profileJSON(p))
	}
	respondJSON(w, http.StatusOK, map[string]any{"users": users})
}

// CreateSafetyConfirmation opens a new safety confirmation survey.
func (h *Handler) CreateSafetyConfirmation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title      string `json:"title"`
		Body       string `json:"body"`
		HazardType string `json:"hazardType"`
		DueDate    string `json:"dueDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.boardService.CreateSafetyConfirmation(r.Context(), GetIdentity(r.Context()), board.SafetyConfirmation{
		Title:      req.Title,
		Body:       req.Body,
		HazardType: req.HazardType,
		DueDate:    req.DueDate,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"id":         created.ID,
		"title":      created.Title,
		"hazardType": created.HazardType,
		"dueDate":    created.DueDate,
	})
}

// GetSafetyConfirmation returns one survey.
func (h *Handler) GetSafetyConfirmation(w http.ResponseWriter, r *http.Request) {
	confirmation, err := h.boardService.SafetyConfirmation(r.Context(), GetIdentity(r.Context()), chi.URLParam(r, "confirmationID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, confirmationJSON(confirmation))
}

// ListSafetyConfirmations returns the tenant's surveys.
func (h *Handler) ListSafetyConfirmations(w http.ResponseWriter, r *http.Request) {
	confirmations, err := h.boardService.ListSafetyConfirmations(r.Context(), GetIdentity(r.Context()))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	out := make([]map[string]any, 0, len(confirmations))
	for _, c := range confirmations {
		out = append(out, confirmationJSON(c))
	}
	respondJSON(w, http.StatusOK, map[string]any{"safetyConfirmations": out})
}

// SubmitAnswer records the caller's status for a survey.
func (h *Handler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SafetyStatus string `json:"safetyStatus"`
		Memo         string `json:"memo"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.boardService.SubmitAnswer(r.Context(), GetIdentity(r.Context()), chi.URLParam(r, "confirmationID"), req.SafetyStatus, req.Memo)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "answered"})
}

// ListAnswers returns all reports for a survey.
func (h *Handler) ListAnswers(w http.ResponseWriter, r *http.Request) {
	answers, err := h.boardService.ListAnswers(r.Context(), GetIdentity(r.Context()), chi.URLParam(r, "confirmationID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	out := make([]map[string]any, 0, len(answers))
	for _, a := range answers {
		out = append(out, map[string]any{
			"uid":              a.UID,
			"safetyStatus":     a.SafetyStatus,
			"memo":             a.Memo,
			"nameSnapshot":     a.NameSnapshot,
			"locationSnapshot": a.LocationSnapshot,
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"answers": out})
}

// CreateInformation saves an announcement.
func (h *Handler) CreateInformation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title         string   `json:"title"`
		Body          string   `json:"body"`
		PublisherName string   `json:"publisherName"`
		IsPublished   bool     `json:"isPublished"`
		AttachedFiles []string `json:"attachedFiles"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.boardService.CreateInformation(r.Context(), GetIdentity(r.Context()), board.Information{
		Title:         req.Title,
		Body:          req.Body,
		PublisherName: req.PublisherName,
		IsPublished:   req.IsPublished,
		AttachedFiles: req.AttachedFiles,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"id":          created.ID,
		"title":       created.Title,
		"isPublished": created.IsPublished,
	})
}

// PublishInformation marks an announcement as published.
func (h *Handler) PublishInformation(w http.ResponseWriter, r *http.Request) {
	err := h.boardService.PublishInformation(r.Context(), GetIdentity(r.Context()), chi.URLParam(r, "informationID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "published"})
}

// ListInformations returns announcements visible to the caller.
func (h *Handler) ListInformations(w http.ResponseWriter, r *http.Request) {
	informations, err := h.boardService.ListInformations(r.Context(), GetIdentity(r.Context()))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	out := make([]map[string]any, 0, len(informations))
	for _, info := range informations {
		out = append(out, map[string]any{
			"id":            info.ID,
			"title":         info.Title,
			"body":          info.Body,
			"publisherName": info.PublisherName,
			"isPublished":   info.IsPublished,
			"attachedFiles": info.AttachedFiles,
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"informations": out})
}

// PostMessage appends a message to the tenant board.
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Body string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	msg, err := h.boardService.PostMessage(r.Context(), GetIdentity(r.Context()), req.Body)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"id":            msg.ID,
		"body":          msg.Body,
		"publisherName": msg.PublisherName,
	})
}

// ListMessages returns the tenant's messages.
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.boardService.ListMessages(r.Context(), GetIdentity(r.Context()))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	out := make([]map[string]any, 0, len(messages))
	for _, m := range messages {
		out = append(out, map[string]any{
			"id":            m.ID,
			"body":          m.Body,
			"publisherName": m.PublisherName,
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"messages": out})
}

// respondServiceError translates service error codes to HTTP statuses.
func respondServiceError(w http.ResponseWriter, err error) {
	cerr := callable.FromError(err)
	respondError(w, callable.HTTPStatus(cerr.Code), cerr.Message)
}

func confirmationJSON(c board.SafetyConfirmation) map[string]any {
	return map[string]any{
		"id":         c.ID,
		"title":      c.Title,
		"body":       c.Body,
		"hazardType": c.HazardType,
		"dueDate":    c.DueDate,
	}
}

func profileJSON(p tenant.UserProfile) map[string]any {
	return map[string]any{
		"_id":      p.UID,
		"email":    p.Email,
		"name":     p.Name,
		"location": p.Location,
		"isActive": p.IsActive,
	}
}
