package agent

import (
	"regexp"
	"strings"
)

// Intent names double as tool names for the dispatch path.
const (
	IntentNone     = ""
	IntentCreate   = "create_task"
	IntentList     = "list_tasks"
	IntentUpdate   = "update_task"
	IntentDelete   = "delete_task"
	IntentComplete = "set_task_complete"
)

type intentRule struct {
	intent   string
	patterns []*regexp.Regexp
}

func compileAll(exprs ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		compiled = append(compiled, regexp.MustCompile(expr))
	}
	return compiled
}

// The rule order is the priority order: the first intent whose pattern set
// matches wins, with no backtracking or ambiguity resolution beyond that.
var intentRules = []intentRule{
	{IntentCreate, compileAll(
		`create.*task`, `add.*task`, `make.*task`, `new.*task`,
		`create.*todo`, `add.*todo`, `new.*todo`,
	)},
	{IntentList, compileAll(
		`show.*task`, `list.*task`, `my.*task`, `all.*task`, `what.*task`,
		`show.*todo`, `list.*todo`, `my.*todo`, `all.*todo`, `what.*todo`,
	)},
	{IntentUpdate, compileAll(
		`update.*task`, `change.*task`, `edit.*task`, `modify.*task`,
		`update.*todo`, `change.*todo`, `edit.*todo`, `modify.*todo`,
	)},
	{IntentDelete, compileAll(
		`delete.*task`, `remove.*task`, `cancel.*task`,
		`delete.*todo`, `remove.*todo`, `cancel.*todo`,
	)},
	{IntentComplete, compileAll(
		`complete.*task`, `finish.*task`, `done.*task`,
		`mark.*complete`, `mark.*done`,
		`complete.*todo`, `finish.*todo`, `done.*todo`,
	)},
}

var smallTalkWords = map[string]bool{
	"hello": true, "hi": true, "hey": true, "help": true,
	"thank": true, "thanks": true, "please": true,
	"yes": true, "no": true, "ok": true, "okay": true,
}

// Route maps a message to an intent. Messages matching no rule but not
// looking like small talk are treated as a bare create request ("buy milk"
// means "add a task to buy milk").
func Route(message string) string {
	lowered := strings.ToLower(strings.TrimSpace(message))
	if lowered == "" {
		return IntentNone
	}

	for _, rule := range intentRules {
		for _, pattern := range rule.patterns {
			if pattern.MatchString(lowered) {
				return rule.intent
			}
		}
	}

	if isSmallTalk(lowered) {
		return IntentNone
	}
	return IntentCreate
}

func isSmallTalk(lowered string) bool {
	for _, word := range strings.Fields(lowered) {
		if smallTalkWords[strings.Trim(word, ".,!?")] {
			return true
		}
	}
	return false
}

var titlePatterns = compileAll(
	`create.*task.*to\s+(.+?)(?:\.|$)`,
	`add.*task.*to\s+(.+?)(?:\.|$)`,
	`create.*task.*for\s+(.+?)(?:\.|$)`,
	`add.*task.*for\s+(.+?)(?:\.|$)`,
	`create.*task\s+(.+?)(?:\.|$)`,
	`add.*task\s+(.+?)(?:\.|$)`,
)

var verbPhrasePattern = regexp.MustCompile(`(?i)(create|add|make|new)\s+(a\s+)?(task|todo)\s*`)

// ExtractTitle pulls a task title out of a create-intent message. It tries
// the "create a task to X" shapes first and falls back to stripping the
// verb phrase. An empty result means the message carried no usable title.
func ExtractTitle(message string) string {
	lowered := strings.ToLower(message)
	for _, pattern := range titlePatterns {
		if match := pattern.FindStringSubmatch(lowered); match != nil {
			return strings.TrimSpace(match[1])
		}
	}
	return strings.TrimSpace(verbPhrasePattern.ReplaceAllString(message, ""))
}

// ExtractListFilter reads a completed/pending qualifier from a list-intent
// message; the default is "all".
func ExtractListFilter(message string) string {
	lowered := strings.ToLower(message)
	switch {
	case strings.Contains(lowered, "completed"):
		return "completed"
	case strings.Contains(lowered, "pending"), strings.Contains(lowered, "incomplete"):
		return "pending"
	default:
		return "all"
	}
}

var (
	taskNumberPattern = regexp.MustCompile(`task\s+#?(\d+)`)
	markTitlePattern  = regexp.MustCompile(`mark\s+(.*?)\s+as`)
)

// TaskReference identifies the task a completion message talks about,
// either by 1-based list position or by a title fragment.
type TaskReference struct {
	Number int    // 1-based position; 0 when absent
	Title  string // title fragment; empty when absent
}

func ExtractTaskReference(message string) TaskReference {
	lowered := strings.ToLower(message)

	if match := taskNumberPattern.FindStringSubmatch(lowered); match != nil {
		number := 0
		for _, r := range match[1] {
			number = number*10 + int(r-'0')
		}
		return TaskReference{Number: number}
	}

	if match := markTitlePattern.FindStringSubmatch(lowered); match != nil {
		return TaskReference{Title: strings.TrimSpace(match[1])}
	}

	return TaskReference{}
}

// WantsCompleted reports whether a completion message asks to mark the
// task done, as opposed to reopening it.
func WantsCompleted(message string) bool {
	lowered := strings.ToLower(message)
	return !strings.Contains(lowered, "not") && !strings.Contains(lowered, "incomplete")
}
