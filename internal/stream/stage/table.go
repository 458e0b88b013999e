// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package stage

import "strconv"

type entry struct {
	name   string
	action string
}

// table is the single source for both progress and failure texts.
var table = [Max]entry{
	PlatformInit:       {name: "platform_init", action: "Initializing platform"},
	Handshake:          {name: "handshake", action: "Starting handshake"},
	ControlStreamInit:  {name: "control_stream_init", action: "Initializing control stream"},
	VideoStreamInit:    {name: "video_stream_init", action: "Initializing video stream"},
	AudioStreamInit:    {name: "audio_stream_init", action: "Initializing audio stream"},
	InputStreamInit:    {name: "input_stream_init", action: "Initializing input stream"},
	ControlStreamStart: {name: "control_stream_start", action: "Starting control stream"},
	VideoStreamStart:   {name: "video_stream_start", action: "Starting video stream"},
	AudioStreamStart:   {name: "audio_stream_start", action: "Starting audio stream"},
	InputStreamStart:   {name: "input_stream_start", action: "Starting input stream"},
}

// Action returns the human-readable action phrase for s, or "" for unknown ids.
func Action(s Stage) string {
	if !s.Valid() {
		return ""
	}
	return table[s].action
}

// ProgressText returns the text shown while s is starting.
func ProgressText(s Stage) string {
	a := Action(s)
	if a == "" {
		return ""
	}
	return a + "..."
}

// FailureText returns the diagnostic shown when s fails with code.
func FailureText(s Stage, code int) string {
	a := Action(s)
	if a == "" {
		return ""
	}
	return a + " failed. Error: " + strconv.Itoa(code)
}
