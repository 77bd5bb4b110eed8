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

// Package board is the notice-board content: safety-confirmation surveys
// and their answers, announcements, and messages, all tenant-scoped.
package board

import (
	"github.com/anzenboard/anzenboard/internal/docstore"
	"github.com/anzenboard/anzenboard/internal/tenant"
)

// Hazard types of a safety confirmation.
const (
	HazardQuake = "hazard_quake"
	HazardWater = "hazard_water"
	HazardOther = "hazard_other"
)

// Safety statuses reported by members.
const (
	StatusSafe          = "safe"
	StatusMinorInjury   = "minor_injury"
	StatusSeriousInjury = "serious_injury"
)

// SafetyConfirmation is a survey asking members to report their status.
type SafetyConfirmation struct {
	ID         string
	Title      string
	Body       string
	HazardType string
	DueDate    string
	Audit      tenant.AuditFields
}

// SafetyConfirmationAnswer is one member's status report. Name and
// location are snapshotted from the profile at answer time so later
// profile edits do not rewrite history.
type SafetyConfirmationAnswer struct {
	UID              string
	SafetyStatus     string
	Memo             string
	NameSnapshot     string
	LocationSnapshot string
	Audit            tenant.AuditFields
}

// Information is a tenant announcement. Unpublished announcements are
// visible to managers only.
type Information struct {
	ID            string
	Title         string
	Body          string
	PublisherName string
	IsPublished   bool
	AttachedFiles []string
	Audit         tenant.AuditFields
}

// Message is a short tenant-wide message.
type Message struct {
	ID            string
	Body          string
	PublisherName string
	Audit         tenant.AuditFields
}

// Document paths.
func safetyConfirmationsPath(tenantID string) string {
	return docstore.Join("tenants", tenantID, "safetyConfirmations")
}

func safetyConfirmationPath(tenantID, id string) string {
	return docstore.Join("tenants", tenantID, "safetyConfirmations", id)
}

func answersPath(tenantID, confirmationID string) string {
	return docstore.Join("tenants", tenantID, "safetyConfirmations", confirmationID, "answers")
}

func answerPath(tenantID, confirmationID, uid string) string {
	return docstore.Join("tenants", tenantID, "safetyConfirmations", confirmationID, "answers", uid)
}

func informationsPath(tenantID string) string {
	return docstore.Join("tenants", tenantID, "informations")
}

func informationPath(tenantID, id string) string {
	return docstore.Join("tenants", tenantID, "informations", id)
}

func messagesPath(tenantID string) string {
	return docstore.Join("tenants", tenantID, "messages")
}

func messagePath(tenantID, id string) string {
	return docstore.Join("tenants", tenantID, "messages", id)
}
