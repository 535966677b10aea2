package manim

import (
	"fmt"
	"strings"
)

// FallbackProgram returns a deterministic scene used when program generation
// fails. It only depends on the topic and points, so two runs with the same
// inputs render the same animation.
func FallbackProgram(topic string, points []string) string {
	labels := make([]string, 3)
	defaults := []string{"Key concept", "Important details", "Applications"}
	for i := 0; i < 3; i++ {
		if i < len(points) && strings.TrimSpace(points[i]) != "" {
			labels[i] = sanitizeText(points[i])
		} else {
			labels[i] = defaults[i]
		}
	}

	var b strings.Builder
	b.WriteString("from manim import *\n\n\n")
	b.WriteString(fmt.Sprintf("class %s(Scene):\n", SceneName))
	b.WriteString("    def construct(self):\n")
	b.WriteString("        intro = Text(\"Educational Hub\", font_size=32, color=GOLD)\n")
	b.WriteString("        self.play(Write(intro))\n")
	b.WriteString("        self.wait(0.5)\n")
	b.WriteString("        self.play(FadeOut(intro))\n\n")
	b.WriteString(fmt.Sprintf("        title = Text(\"%s\", font_size=44, color=BLUE)\n", sanitizeText(topic)))
	b.WriteString("        title.to_edge(UP)\n")
	b.WriteString("        self.play(Write(title), run_time=1.5)\n\n")
	b.WriteString("        points = [\n")
	colors := []string{"GREEN", "ORANGE", "PURPLE"}
	for i, label := range labels {
		b.WriteString(fmt.Sprintf("            Text(\"• %s\", font_size=26, color=%s),\n", label, colors[i]))
	}
	b.WriteString("        ]\n\n")
	b.WriteString("        points_group = VGroup(*points)\n")
	b.WriteString("        points_group.arrange(DOWN, aligned_edge=LEFT, buff=0.7)\n")
	b.WriteString("        points_group.next_to(title, DOWN, buff=1.5)\n\n")
	b.WriteString("        for point in points:\n")
	b.WriteString("            self.play(FadeIn(point, shift=RIGHT), run_time=1.2)\n")
	b.WriteString("            self.wait(0.3)\n\n")
	b.WriteString("        border = SurroundingRectangle(points_group, color=YELLOW, buff=0.5)\n")
	b.WriteString("        self.play(Create(border), run_time=1)\n\n")
	b.WriteString("        conclusion = Text(\"Keep Learning!\", font_size=28, color=GREEN)\n")
	b.WriteString("        conclusion.to_edge(DOWN)\n")
	b.WriteString("        self.play(FadeIn(conclusion, shift=UP))\n")
	b.WriteString("        self.wait(2)\n")
	return b.String()
}

// sanitizeText keeps generated Python string literals well-formed.
func sanitizeText(text string) string {
	replacer := strings.NewReplacer(`\`, ``, `"`, `'`, "\n", " ")
	return strings.TrimSpace(replacer.Replace(text))
}
