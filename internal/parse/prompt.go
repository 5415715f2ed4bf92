package parse

import (
	"fmt"

	"github.com/habitcards/assistant/internal/models"
)

// promptPreamble is the parser persona shared by every mode.
const promptPreamble = "You are a voice command parser for a personal assistant app. " +
	"Parse the user's voice input into structured JSON. Be creative and helpful. " +
	"Fill in reasonable defaults for anything not mentioned."

// modeSchemas embed the exact output schema per mode. Icons use the SF Symbol
// vocabulary the client renders with.
var modeSchemas = map[models.Mode]string{
	models.ModeAlarm:    `Return JSON: {"label":"alarm name","time":"HH:mm","icon":"SF Symbol","routine":[{"title":"step","duration":"e.g. 5 min","icon":"SF Symbol"}]}`,
	models.ModeMeeting:  `Return JSON: {"title":"name","date":"day","time":"h:mm a","icon":"SF Symbol","checklist":[{"title":"step","duration":"time","icon":"SF Symbol"}],"notes":"context"}`,
	models.ModeMood:     `Return JSON: {"mood":"one word","level":0.0to1.0,"trigger":"cause","suggestion":"action"}`,
	models.ModeInbox:    `Return JSON: {"source":"Email/Slack/etc","sourceIcon":"SF Symbol","priority":"High/Medium/Low","actionItems":[{"title":"task","duration":"time","icon":"SF Symbol"}]}`,
	models.ModeSchedule: `Return JSON: {"blocks":[{"title":"activity","startTime":"h:mm a","endTime":"h:mm a","duration":"e.g. 1h","icon":"SF Symbol","colorName":"blue/green/purple/orange/teal/red"}]}`,
}

// BuildPrompt assembles the natural-language instruction for the generative
// tier: persona, exact schema, and the transcript.
func BuildPrompt(mode models.Mode, text string) string {
	schema, ok := modeSchemas[mode]
	if !ok {
		schema = modeSchemas[models.ModeAlarm]
	}
	return fmt.Sprintf("%s\n\n%s\n\nVoice input: %q", promptPreamble, schema, text)
}

// SchemaInstruction returns the bare schema line for a mode, used by the
// backend's own parser.
func SchemaInstruction(mode models.Mode) string {
	if schema, ok := modeSchemas[mode]; ok {
		return schema
	}
	return modeSchemas[models.ModeAlarm]
}
