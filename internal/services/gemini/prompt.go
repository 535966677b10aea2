package gemini

import (
	"fmt"
	"strings"
)

const pointsSystemPrompt = `You are an educational content writer. Respond with plain text only.`

func pointsUserPrompt(topic string) string {
	return fmt.Sprintf(`Create a concise educational explanation for the topic: %q

Provide exactly 3 key points that explain this topic clearly and simply.
Each point should be:
- One sentence long
- Easy to understand
- Educational and informative
- Suitable for a 30-second video

Format your response as a simple list with each point on a new line, no numbering or bullets.`, topic)
}

const scriptSystemPrompt = `You are an enthusiastic teacher writing narration for short educational videos. Respond with the spoken words only.`

func scriptUserPrompt(topic string, points []string) string {
	return fmt.Sprintf(`Create a natural, engaging 30-second video transcript about %q.

Key points to cover:
%s

Requirements:
- Should be exactly 30 seconds when spoken (approximately 75-90 words)
- Natural, conversational tone
- Educational but engaging
- Clear and easy to follow
- No stage directions or formatting
- Just the spoken words`, topic, bulletList(points))
}

const programSystemPrompt = `You write Manim animation code. Only return the Python code, no explanations or markdown formatting.`

func programUserPrompt(topic string, points []string) string {
	return fmt.Sprintf(`Create a professional Manim animation for an educational video about %q.

Key points to animate:
%s

CRITICAL CONSTRAINTS:
- Create a class called TopicScene that extends Scene
- Animation should be exactly 30 seconds long
- NEVER use ImageMobject, SVGMobject, or any external files
- ONLY use built-in Manim objects: Text, Circle, Rectangle, Square, Triangle, Arrow, Line, Dot
- ALL coordinates must be 3D: use UP, DOWN, LEFT, RIGHT, or [x, y, 0] format
- No external dependencies or file references

SCENE MANAGEMENT:
- Use FadeOut() or self.clear() to remove elements before introducing new ones
- Each explanation point gets its own clean section
- Use VGroup to organize elements for easy clearing

Structure: short intro, topic title, one animated section per point, conclusion.
Use engaging animations (Write, FadeIn, GrowFromCenter, Create, Transform) and
varied colors (BLUE, GREEN, ORANGE, PURPLE, YELLOW, RED, GOLD).`, topic, bulletList(points))
}

func bulletList(points []string) string {
	lines := make([]string, 0, len(points))
	for _, point := range points {
		lines = append(lines, "- "+strings.TrimSpace(point))
	}
	return strings.Join(lines, "\n")
}
