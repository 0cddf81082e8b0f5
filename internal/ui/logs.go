package ui

import "strings"

// LogSink is an io.Writer that feeds log lines into the in-app log pane.
// Lines are dropped when the pane falls behind.
type LogSink struct {
	channel chan logMsg
}

func NewLogSink(size int) *LogSink {
	if size <= 0 {
		size = 200
	}
	return &LogSink{channel: make(chan logMsg, size)}
}

func (sink *LogSink) Write(data []byte) (int, error) {
	message := strings.TrimSpace(string(data))
	if message == "" {
		return len(data), nil
	}

	for _, line := range strings.Split(message, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		select {
		case sink.channel <- logMsg(line):
		default:
		}
	}

	return len(data), nil
}
