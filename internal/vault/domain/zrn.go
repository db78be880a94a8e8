// Package domain defines namespaces, credentials and the credential type catalog.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const zrnPrefix = "zrn:zekret"

// ResourceType is the third segment of a zrn.
type ResourceType string

const (
	ResourceNamespace      ResourceType = "namespace"
	ResourceCredential     ResourceType = "credential"
	ResourceCredentialType ResourceType = "credtype"
)

// NewZrn returns "zrn:zekret:<type>:<yyyyMMdd>:<uuid>" stamped with the UTC date of now.
func NewZrn(rt ResourceType, now time.Time) string {
	return formatZrn(rt, now.UTC().Format("20060102"), uuid.New())
}

func formatZrn(rt ResourceType, date string, id uuid.UUID) string {
	return zrnPrefix + ":" + string(rt) + ":" + date + ":" + id.String()
}

// IsZrn reports whether s is a well formed zrn of type rt.
func IsZrn(s string, rt ResourceType) bool {
	parts := strings.Split(s, ":")
	if len(parts) != 5 || parts[0] != "zrn" || parts[1] != "zekret" || parts[2] != string(rt) {
		return false
	}
	if _, err := time.Parse("20060102", parts[3]); err != nil {
		return false
	}
	_, err := uuid.Parse(parts[4])
	return err == nil
}
