package runner

import (
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// statusCyclePeriod is how long each canned status line is shown. The lines
// are purely cosmetic and carry no information about remote progress.
const statusCyclePeriod = 4 * time.Second

var statusLines = func() []string {
	titler := cases.Title(language.English)
	raw := []string{
		"warming up the render farm",
		"storyboarding your prompt",
		"teaching pixels to move",
		"compositing the first frames",
		"color grading the scene",
		"syncing the final cut",
	}
	lines := make([]string, len(raw))
	for i, line := range raw {
		lines[i] = titler.String(line)
	}
	return lines
}()

func statusMessage(elapsed time.Duration) string {
	if elapsed < 0 {
		elapsed = 0
	}
	idx := int(elapsed/statusCyclePeriod) % len(statusLines)
	return statusLines[idx]
}
