package bridge

import (
	"strings"

	"github.com/skyward/skyguide/pkg/a2a"
)

// TranscriptEntry is one rendered bubble of the conversation view.
type TranscriptEntry struct {
	Role string
	Text string
}

// mergeTranscript folds one stored message into the transcript, applying the
// dedup rules for redundant server histories:
//
//   - consecutive user messages with identical text collapse to one; with
//     different text they continue the same bubble on a new line
//   - consecutive agent messages: identical text is skipped, a superset
//     replaces the previous text, a strict subset is skipped, and genuinely
//     new content continues the bubble
//   - a role transition starts a new entry, unless the incoming message is an
//     echo of the previous turn of that role: replayed task histories repeat
//     whole turn pairs, and an echo adds nothing
func mergeTranscript(transcript []TranscriptEntry, role, text string) []TranscriptEntry {
	if text == "" {
		return transcript
	}

	if len(transcript) == 0 || transcript[len(transcript)-1].Role != role {
		// Roles alternate by construction, so the entry before the last one
		// is the previous turn of the incoming role.
		if n := len(transcript); n >= 2 {
			if prev := transcript[n-2]; prev.Role == role && strings.Contains(prev.Text, text) {
				return transcript
			}
		}
		return append(transcript, TranscriptEntry{Role: role, Text: text})
	}

	last := &transcript[len(transcript)-1]
	if role == a2a.RoleUser {
		if last.Text != text {
			last.Text += "\n" + text
		}
		return transcript
	}

	switch {
	case text == last.Text:
		// Duplicate re-send.
	case strings.Contains(text, last.Text):
		last.Text = text
	case strings.Contains(last.Text, text):
		// Echo of an earlier partial.
	default:
		last.Text += "\n" + text
	}
	return transcript
}

// rebuildTranscript merges the stored histories of an ordered task list
// (oldest first) into one deduplicated transcript. Nil entries stand for
// tasks that could not be fetched and are skipped.
func rebuildTranscript(tasks []*a2a.Task) []TranscriptEntry {
	var transcript []TranscriptEntry
	for _, task := range tasks {
		if task == nil {
			continue
		}
		for i := range task.History {
			msg := &task.History[i]
			transcript = mergeTranscript(transcript, msg.Role, msg.Text())
		}
	}
	return transcript
}
