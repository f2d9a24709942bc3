package emitter

import (
	"strings"

	"github.com/a-h/templ"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/robworks/fencer/internal/types"
)

// writeFallback renders the static, no-JavaScript view of a spec.
func writeFallback(fw *fragmentWriter, spec types.WidgetSpec) {
	switch s := spec.(type) {
	case types.QuizSpec:
		quizFallback(fw, s)
	case types.TerminalSpec:
		terminalFallback(fw, s)
	case types.ExerciseSpec:
		exerciseFallback(fw, s)
	case types.CommandBuilderSpec:
		builderFallback(fw, s)
	case types.WalkthroughSpec:
		walkthroughFallback(fw, s)
	}
}

func quizFallback(fw *fragmentWriter, spec types.QuizSpec) {
	heading(fw, fallbackTitle(spec.Question, types.TagQuiz))
	fw.write("<ol class=\"quiz-options\">\n")
	for _, option := range spec.Options {
		fw.writef("<li>%s</li>\n", templ.EscapeString(option.Text))
	}
	fw.write("</ol>\n")
}

func terminalFallback(fw *fragmentWriter, spec types.TerminalSpec) {
	heading(fw, fallbackTitle(spec.Title, types.TagTerminal))
	fw.write("<pre class=\"terminal-transcript\"><code>")
	for i, step := range spec.Steps {
		if i > 0 {
			fw.write("\n")
		}
		fw.writef("$ %s\n", templ.EscapeString(step.Command))
		if step.Output != "" {
			fw.writef("%s\n", templ.EscapeString(step.Output))
		}
		if step.Narration != "" {
			fw.writef("# %s\n", templ.EscapeString(step.Narration))
		}
	}
	fw.write("</code></pre>\n")
}

func exerciseFallback(fw *fragmentWriter, spec types.ExerciseSpec) {
	heading(fw, fallbackTitle(spec.Title, types.TagExercise))
	fw.writef("<p class=\"exercise-difficulty\">%s</p>\n", templ.EscapeString(string(spec.Difficulty)))
	fw.writef("<p>%s</p>\n", templ.EscapeString(spec.Scenario))
	if len(spec.Hints) > 0 {
		fw.write("<details class=\"exercise-hints\"><summary>Hints</summary><ol>\n")
		for _, hint := range spec.Hints {
			fw.writef("<li>%s</li>\n", templ.EscapeString(hint))
		}
		fw.write("</ol></details>\n")
	}
	fw.write("<details class=\"exercise-solution\"><summary>Solution</summary>\n")
	fw.writef("<pre><code>%s</code></pre>\n", templ.EscapeString(spec.Solution))
	fw.write("</details>\n")
}

func builderFallback(fw *fragmentWriter, spec types.CommandBuilderSpec) {
	heading(fw, humanizeTag(types.TagCommandBuilder))
	if spec.Description != "" {
		fw.writef("<p>%s</p>\n", templ.EscapeString(spec.Description))
	}
	fw.writef("<pre class=\"builder-command\"><code>%s</code></pre>\n", templ.EscapeString(spec.Base))
	for _, group := range spec.Groups {
		fw.writef("<h5>%s</h5>\n<ul>\n", templ.EscapeString(group.Name))
		for _, option := range group.Options {
			label := option.Label
			if label == "" {
				label = option.Description
			}
			if label != "" {
				fw.writef("<li><code>%s</code> %s</li>\n",
					templ.EscapeString(option.Flag), templ.EscapeString(label))
			} else {
				fw.writef("<li><code>%s</code></li>\n", templ.EscapeString(option.Flag))
			}
		}
		fw.write("</ul>\n")
	}
}

func walkthroughFallback(fw *fragmentWriter, spec types.WalkthroughSpec) {
	heading(fw, fallbackTitle(spec.Title, types.TagCodeWalkthrough))
	if spec.Description != "" {
		fw.writef("<p>%s</p>\n", templ.EscapeString(spec.Description))
	}
	fw.writef("<pre class=\"walkthrough-code\"><code class=\"language-%s\">%s</code></pre>\n",
		templ.EscapeString(spec.Language), templ.EscapeString(spec.Code))
	if len(spec.Annotations) > 0 {
		fw.write("<ol class=\"walkthrough-annotations\">\n")
		for _, a := range spec.Annotations {
			fw.writef("<li value=\"%d\">%s</li>\n", a.Line, templ.EscapeString(a.Text))
		}
		fw.write("</ol>\n")
	}
}

func heading(fw *fragmentWriter, title string) {
	fw.writef("<h4>%s</h4>\n", templ.EscapeString(title))
}

// fallbackTitle picks the visible heading: the widget's own title when
// present, otherwise the tag name humanized, so every fallback block
// is labeled.
func fallbackTitle(title string, tag types.WidgetTag) string {
	if strings.TrimSpace(title) != "" {
		return title
	}
	return humanizeTag(tag)
}

// humanizeTag turns command-builder into Command Builder.
func humanizeTag(tag types.WidgetTag) string {
	words := strings.ReplaceAll(string(tag), "-", " ")
	return cases.Title(language.English).String(words)
}
