// Package reveal turns a finished reply into typewriter-style frames.
// It never mutates anything; the full text is already persisted when a
// sequence starts.
package reveal

import (
	"context"
	"strings"
	"time"
)

type Frame struct {
	Content string `json:"content"`
	Index   int    `json:"index"`
	Total   int    `json:"total"`
	Done    bool   `json:"done"`
}

// Split breaks content on single spaces, keeping empty tokens so that
// joining the tokens back reproduces the input exactly.
func Split(content string) []string {
	return strings.Split(content, " ")
}

// Frames returns the cumulative prefixes followed by a done frame holding the full content.
func Frames(content string) []Frame {
	tokens := Split(content)
	frames := make([]Frame, 0, len(tokens)+1)
	for i := range tokens {
		frames = append(frames, Frame{
			Content: strings.Join(tokens[:i+1], " "),
			Index:   i,
			Total:   len(tokens),
		})
	}
	return append(frames, Frame{Content: content, Index: len(tokens), Total: len(tokens), Done: true})
}

// Play emits frame i at i*interval. It stops early when ctx is cancelled or emit fails.
func Play(ctx context.Context, content string, interval time.Duration, emit func(Frame) error) error {
	frames := Frames(content)
	if interval <= 0 {
		interval = time.Millisecond
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for i, frame := range frames {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		if err := emit(frame); err != nil {
			return err
		}
	}
	return nil
}
