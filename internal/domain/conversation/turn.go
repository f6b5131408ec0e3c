package conversation

import "strings"

// TurnRole identifies which side of the conversation produced a turn.
type TurnRole string

const (
	RoleUser      TurnRole = "user"
	RoleAssistant TurnRole = "assistant"
)

// Labels used on the wire and in durable storage. The joined-lines document is
// returned verbatim to clients and replayed verbatim into model prompts, so the
// labels are part of the external contract, not a display concern.
const (
	userLabel      = "User: "
	assistantLabel = "AI: "
)

// Turn is one message exchange unit.
type Turn struct {
	Role TurnRole
	Text string
}

// UserLine encodes a user turn as a single transcript line.
func UserLine(text string) string {
	return userLabel + text
}

// AssistantLine encodes an assistant turn as a single transcript line.
func AssistantLine(text string) string {
	return assistantLabel + text
}

// ParseTurn classifies a transcript line by its leading label. Lines carrying
// neither label are not turns and report ok=false.
func ParseTurn(line string) (Turn, bool) {
	if text, found := strings.CutPrefix(line, userLabel); found {
		return Turn{Role: RoleUser, Text: text}, true
	}
	if text, found := strings.CutPrefix(line, assistantLabel); found {
		return Turn{Role: RoleAssistant, Text: text}, true
	}
	return Turn{}, false
}

// JoinLines encodes an ordered line sequence as the newline-joined transcript
// document stored durably and returned from the history endpoint.
func JoinLines(lines []string) string {
	return strings.Join(lines, "\n")
}

// SplitDoc decodes a transcript document into its ordered lines, discarding
// empty lines. A never-written document decodes to an empty sequence.
func SplitDoc(doc string) []string {
	if doc == "" {
		return nil
	}
	var lines []string
	for _, line := range strings.Split(doc, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
