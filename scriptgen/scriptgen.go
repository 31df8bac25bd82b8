// Package scriptgen drafts dialogue scripts from a topic prompt using
// a text-generation model. The draft lands in the editor as a normal
// script; nothing downstream knows or cares that a model wrote it.
package scriptgen

import (
	"context"

	"github.com/Hazenbox/Vani-ai-sub001/script"
)

// Generator produces a two-speaker script about a topic.
type Generator interface {
	Generate(ctx context.Context, topic string) (*script.Script, error)
}

// The house prompt: conversational Hinglish, two named hosts, light
// use of performance markup so the editor has something to work with.
const systemPrompt = `You are writing a short two-host podcast conversation in natural
Hinglish (Hindi-English code-switching, Latin script). The hosts are
Rahul and Anjali. Keep it warm and conversational, 10 to 16 exchanges.

You may use these cues sparingly inside the dialogue text:
(laughs) (giggles) (chuckles) (thinking) (surprised) (pause)
(long pause), a trailing — for an interrupted line, and a leading —
for the line that interrupts.

Respond with ONLY a JSON object, no prose and no code fences:
{"title": "...", "script": [{"speaker": "Rahul", "text": "..."}, ...]}`
