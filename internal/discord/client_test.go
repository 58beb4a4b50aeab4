package discord

import (
	"strings"
	"testing"
)

func TestSplitMessageShortTextSingleChunk(t *testing.T) {
	chunks := SplitMessage("hello world", MaxMessageLen)
	if len(chunks) != 1 || chunks[0] != "hello world" {
		t.Fatalf("chunks = %v", chunks)
	}
}

func TestSplitMessageEmptyText(t *testing.T) {
	if chunks := SplitMessage("", MaxMessageLen); len(chunks) != 0 {
		t.Fatalf("chunks = %v, want none", chunks)
	}
}

func TestSplitMessagePrefersNewlineBoundary(t *testing.T) {
	text := strings.Repeat("x", 10) + "\n" + strings.Repeat("y", 10)
	chunks := SplitMessage(text, 15)
	if len(chunks) != 2 {
		t.Fatalf("chunks = %v", chunks)
	}
	if chunks[0] != strings.Repeat("x", 10) {
		t.Fatalf("first chunk = %q", chunks[0])
	}
	if chunks[1] != strings.Repeat("y", 10) {
		t.Fatalf("second chunk = %q", chunks[1])
	}
}

func TestSplitMessageFallsBackToSpace(t *testing.T) {
	text := "aaaa bbbb cccc dddd"
	chunks := SplitMessage(text, 10)
	for _, c := range chunks {
		if len(c) > 10 {
			t.Fatalf("chunk %q exceeds limit", c)
		}
		if strings.HasPrefix(c, " ") || strings.HasSuffix(c, " ") {
			t.Fatalf("chunk %q has boundary whitespace", c)
		}
	}
	if joined := strings.Join(chunks, " "); joined != text {
		t.Fatalf("content lost: %q != %q", joined, text)
	}
}

func TestSplitMessageHardCutWithoutBoundaries(t *testing.T) {
	text := strings.Repeat("z", 45)
	chunks := SplitMessage(text, 20)
	if len(chunks) != 3 {
		t.Fatalf("chunks = %v", chunks)
	}
	total := 0
	for _, c := range chunks {
		if len(c) > 20 {
			t.Fatalf("chunk %q exceeds limit", c)
		}
		total += len(c)
	}
	if total != 45 {
		t.Fatalf("content lost: %d bytes total", total)
	}
}

func TestSplitMessageRespectsLimitForLongText(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 300; i++ {
		sb.WriteString("line of schedule output\n")
	}
	for _, c := range SplitMessage(sb.String(), MaxMessageLen) {
		if len(c) > MaxMessageLen {
			t.Fatalf("chunk of %d bytes exceeds %d", len(c), MaxMessageLen)
		}
	}
}

func TestNewClientRequiresToken(t *testing.T) {
	if NewClient("") != nil {
		t.Fatal("expected nil client without token")
	}
	if NewClient("token") == nil {
		t.Fatal("expected client with token")
	}
}

func TestNewChannelNotifierRequiresBothPieces(t *testing.T) {
	c := NewClient("token")
	if NewChannelNotifier(nil, "123") != nil {
		t.Fatal("expected nil notifier without client")
	}
	if NewChannelNotifier(c, "") != nil {
		t.Fatal("expected nil notifier without channel")
	}
	if NewChannelNotifier(c, "123") == nil {
		t.Fatal("expected notifier")
	}
}
