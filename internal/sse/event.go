// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package sse

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Event names sent to browsers.
const (
	EventConnected       = "connected"
	EventOutfitModerated = "outfit_moderated"
	EventOutfitSubmitted = "outfit_submitted"
)

// FormatEvent formats a message as an SSE event with optional event name.
// Multiline content is prefixed with "data:" on every line.
func FormatEvent(eventName, data string) string {
	var sb strings.Builder

	if eventName != "" {
		fmt.Fprintf(&sb, "event: %s\n", eventName)
	}
	for line := range strings.SplitSeq(data, "\n") {
		fmt.Fprintf(&sb, "data: %s\n", line)
	}

	sb.WriteString("\n")
	return sb.String()
}

// FormatJSONEvent formats v as the JSON payload of a named event.
func FormatJSONEvent(eventName string, v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode %s event: %w", eventName, err)
	}
	return FormatEvent(eventName, string(data)), nil
}

// Heartbeat is an SSE comment that keeps the connection alive.
const Heartbeat = ": heartbeat\n\n"
