package pipeline

import (
	"fmt"
	"strings"
)

// FallbackPoints returns deterministic content points used when generation
// fails. Always exactly three non-empty entries derived only from the topic.
func FallbackPoints(topic string) []string {
	topic = strings.TrimSpace(topic)
	return []string{
		fmt.Sprintf("%s is a fundamental concept worth understanding.", topic),
		fmt.Sprintf("The key mechanisms behind %s shape how it works in practice.", topic),
		fmt.Sprintf("%s has important real-world applications.", topic),
	}
}

// FallbackScript returns a deterministic narration script built from the
// topic and the available points.
func FallbackScript(topic string, points []string) string {
	topic = strings.TrimSpace(topic)
	var b strings.Builder
	fmt.Fprintf(&b, "Welcome to Educational Hub. Today we explore %s.", topic)
	for _, point := range points {
		point = strings.TrimSpace(point)
		if point == "" {
			continue
		}
		b.WriteString(" ")
		b.WriteString(point)
	}
	b.WriteString(" Thanks for watching, and keep learning!")
	return b.String()
}
