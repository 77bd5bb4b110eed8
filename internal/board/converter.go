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

package board

import (
	"time"

	"github.com/anzenboard/anzenboard/internal/docstore"
	"github.com/anzenboard/anzenboard/internal/tenant"
)

func confirmationFields(c SafetyConfirmation) docstore.Document {
	return docstore.Document{
		"title":      c.Title,
		"body":       c.Body,
		"hazardType": c.HazardType,
		"dueDate":    c.DueDate,
	}
}

func confirmationFromSnapshot(snap docstore.Snapshot) SafetyConfirmation {
	return SafetyConfirmation{
		ID:         snap.ID,
		Title:      asString(snap.Data["title"]),
		Body:       asString(snap.Data["body"]),
		HazardType: asString(snap.Data["hazardType"]),
		DueDate:    asString(snap.Data["dueDate"]),
		Audit:      auditFromDocument(snap.Data),
	}
}

func answerFields(a SafetyConfirmationAnswer) docstore.Document {
	return docstore.Document{
		"safetyStatus":     a.SafetyStatus,
		"memo":             a.Memo,
		"nameSnapshot":     a.NameSnapshot,
		"locationSnapshot": a.LocationSnapshot,
	}
}

func answerFromSnapshot(snap docstore.Snapshot) SafetyConfirmationAnswer {
	return SafetyConfirmationAnswer{
		UID:              snap.ID,
		SafetyStatus:     asString(snap.Data["safetyStatus"]),
		Memo:             asString(snap.Data["memo"]),
		NameSnapshot:     asString(snap.Data["nameSnapshot"]),
		LocationSnapshot: asString(snap.Data["locationSnapshot"]),
		Audit:            auditFromDocument(snap.Data),
	}
}

func informationFields(info Information) docstore.Document {
	files := info.AttachedFiles
	if files == nil {
		files = []string{}
	}
	return docstore.Document{
		"title":         info.Title,
		"body":          info.Body,
		"publisherName": info.PublisherName,
		"isPublished":   info.IsPublished,
		"attachedFiles": files,
	}
}

func informationFromSnapshot(snap docstore.Snapshot) Information {
	return Information{
		ID:            snap.ID,
		Title:         asString(snap.Data["title"]),
		Body:          asString(snap.Data["body"]),
		PublisherName: asString(snap.Data["publisherName"]),
		IsPublished:   asBool(snap.Data["isPublished"]),
		AttachedFiles: asStrings(snap.Data["attachedFiles"]),
		Audit:         auditFromDocument(snap.Data),
	}
}

func messageFields(m Message) docstore.Document {
	return docstore.Document{
		"body":          m.Body,
		"publisherName": m.PublisherName,
	}
}

func messageFromSnapshot(snap docstore.Snapshot) Message {
	return Message{
		ID:            snap.ID,
		Body:          asString(snap.Data["body"]),
		PublisherName: asString(snap.Data["publisherName"]),
		Audit:         auditFromDocument(snap.Data),
	}
}

func auditFromDocument(doc docstore.Document) tenant.AuditFields {
	return tenant.AuditFields{
		CreatedAt: asTime(doc[tenant.FieldCreatedAt]),
		CreatedBy: asString(doc[tenant.FieldCreatedBy]),
		UpdatedAt: asTime(doc[tenant.FieldUpdatedAt]),
		UpdatedBy: asString(doc[tenant.FieldUpdatedBy]),
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asStrings(v any) []string {
	switch vv := v.(type) {
	case []string:
		return vv
	case []any:
		out := make([]string, 0, len(vv))
		for _, e := range vv {
			out = append(out, asString(e))
		}
		return out
	}
	return nil
}

func asTime(v any) time.Time {
	switch vv := v.(type) {
	case time.Time:
		return vv
	case string:
		t, err := time.Parse(time.RFC3339Nano, vv)
		if err == nil {
			return t
		}
	}
	return time.Time{}
}
