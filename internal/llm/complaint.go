package llm

import "strings"

// Keywords that indicate complaints or frustration, not ordinary questions.
// A single hit is enough to flag the message.
var complaintKeywords = []string{
	"frustrated", "angry", "upset", "terrible",
	"worst", "horrible", "unacceptable", "disappointed", "furious",
	"never received", "still waiting", "no response", "bad experience",
	"want to escalate", "speak to manager", "supervisor",
	"broken", "damaged", "wrong item", "not working",
	"this is ridiculous", "waste of time", "never again",
	"very unhappy", "extremely disappointed", "fed up",
	"demand", "lawsuit", "legal action", "bbb", "complaint",
}

// DetectComplaint reports whether text contains complaint language.
// Keyword scan only; sentiment models are out of scope here.
func DetectComplaint(text string) bool {
	lower := strings.ToLower(text)
	for _, keyword := range complaintKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
