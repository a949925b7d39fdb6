package trace

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Format represents the output format for trace events.
type Format uint8

const (
	FormatAuto   Format = iota // pick by file extension
	FormatText                 // human-readable text
	FormatNDJSON               // newline-delimited JSON
)

// ParseFormat converts a string to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "auto", "":
		return FormatAuto, nil
	case "text":
		return FormatText, nil
	case "ndjson", "json":
		return FormatNDJSON, nil
	default:
		return FormatAuto, fmt.Errorf("invalid trace format: %q (expected: auto|text|ndjson)", s)
	}
}

// FormatEvent formats an event; start is used for relative text timestamps.
func FormatEvent(ev *Event, format Format, start time.Time) []byte {
	if format == FormatNDJSON {
		return formatNDJSON(ev)
	}
	return formatText(ev, start)
}

func formatNDJSON(ev *Event) []byte {
	type jsonEvent struct {
		Time      string            `json:"time"`
		Seq       uint64            `json:"seq"`
		Kind      string            `json:"kind"`
		Scope     string            `json:"scope"`
		SpanID    uint64            `json:"span_id,omitempty"`
		ParentID  uint64            `json:"parent_id,omitempty"`
		Name      string            `json:"name"`
		Detail    string            `json:"detail,omitempty"`
		ElapsedMS float64           `json:"elapsed_ms,omitempty"`
		Extra     map[string]string `json:"extra,omitempty"`
	}

	data, err := json.Marshal(jsonEvent{
		Time:      ev.Time.Format("2006-01-02T15:04:05.000000Z07:00"),
		Seq:       ev.Seq,
		Kind:      ev.Kind.String(),
		Scope:     ev.Scope.String(),
		SpanID:    ev.SpanID,
		ParentID:  ev.ParentID,
		Name:      ev.Name,
		Detail:    ev.Detail,
		ElapsedMS: float64(ev.Elapsed.Microseconds()) / 1000,
		Extra:     ev.Extra,
	})
	if err != nil {
		data = []byte(fmt.Sprintf(`{"seq":%d,"name":%q,"error":%q}`, ev.Seq, ev.Name, err.Error()))
	}
	return append(data, '\n')
}

// formatText: [  12.345ms] → name (detail) {k=v}
func formatText(ev *Event, start time.Time) []byte {
	var sb strings.Builder

	rel := ev.Time.Sub(start)
	fmt.Fprintf(&sb, "[%9.3fms] ", float64(rel.Microseconds())/1000)

	sb.WriteString(strings.Repeat("  ", int(ev.Scope)-1))

	switch ev.Kind {
	case KindSpanBegin:
		sb.WriteString("\u2192 ")
	case KindSpanEnd:
		sb.WriteString("\u2190 ")
	case KindPoint:
		sb.WriteString("\u2022 ")
	case KindError:
		sb.WriteString("\u2717 ")
	}
	sb.WriteString(ev.Name)

	if ev.Kind == KindSpanEnd {
		fmt.Fprintf(&sb, " [%s]", ev.Elapsed.Round(time.Microsecond))
	}
	if ev.Detail != "" {
		sb.WriteString(" (")
		sb.WriteString(ev.Detail)
		sb.WriteString(")")
	}

	if len(ev.Extra) > 0 {
		keys := make([]string, 0, len(ev.Extra))
		for k := range ev.Extra {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		sb.WriteString(" {")
		for i, k := range keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(k)
			sb.WriteString("=")
			sb.WriteString(ev.Extra[k])
		}
		sb.WriteString("}")
	}

	sb.WriteString("\n")
	return []byte(sb.String())
}
