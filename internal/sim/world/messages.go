package world

import "candysurvival.ai/internal/protocol"

// Sound cues are symbolic; playback is up to the client.
const (
	CuePickup  = "pickup"
	CueSuccess = "success"
	CueFail    = "fail"
	CueRadio   = "radio"
)

const messageDurationMs = 4000

type Color [3]int

var (
	colorInfo     = Color{200, 200, 200}
	colorDim      = Color{160, 160, 160}
	colorGood     = Color{0, 255, 0}
	colorBad      = Color{255, 120, 120}
	colorDanger   = Color{255, 80, 80}
	colorDay      = Color{200, 255, 200}
	colorNight    = Color{255, 200, 120}
	colorRadio    = Color{0, 200, 255}
	colorHint     = Color{0, 255, 255}
	colorWarn     = Color{255, 255, 0}
	colorHolder   = Color{200, 220, 255}
	colorVictory  = Color{0, 255, 180}
	colorBacklash = Color{255, 200, 120}
	colorChatter  = Color{180, 220, 255}
	colorGiver    = Color{200, 160, 255}
	colorBonus    = Color{200, 255, 160}
	colorLevel    = Color{255, 255, 200}
)

// Message is one line of narrative feedback.
type Message struct {
	Tick       uint64 `json:"tick"`
	AtMs       int64  `json:"at_ms"`
	Text       string `json:"text"`
	Color      Color  `json:"color"`
	DurationMs int64  `json:"duration_ms"`
}

// ChatBubble floats above a prop or NPC until UntilMs.
type ChatBubble struct {
	Text    string
	Color   Color
	UntilMs int64
}

func (w *World) say(text string, c Color) {
	m := Message{Tick: w.tick.Load(), AtMs: w.nowMs, Text: text, Color: c, DurationMs: messageDurationMs}
	w.messages = append(w.messages, m)
	if w.msgLogger != nil {
		_ = w.msgLogger.WriteMessage(m)
	}
}

func (w *World) cue(name string) { w.cues = append(w.cues, name) }

func (w *World) showChat(entityID, text string, c Color) {
	w.chats[entityID] = ChatBubble{Text: text, Color: c, UntilMs: w.nowMs + w.tun.NPCs.ChatDurationMs}
}

func (w *World) expireChats() {
	for id, b := range w.chats {
		if w.nowMs >= b.UntilMs {
			delete(w.chats, id)
		}
	}
}

func (w *World) fail(action, code, text string) protocol.ActionResult {
	w.say(text, colorBad)
	w.cue(CueFail)
	return protocol.ActionResult{Action: action, Code: code, Message: text}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
