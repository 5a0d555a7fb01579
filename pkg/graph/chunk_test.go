package graph

import (
	"strings"
	"testing"
)

func TestSplitText_OversizedWithoutBoundary(t *testing.T) {
	text := strings.Repeat("a", 4500)
	chunks := SplitText(text, 4000)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != text {
		t.Fatal("oversized paragraph must not be truncated")
	}
}

func TestSplitText_AccumulatesParagraphs(t *testing.T) {
	text := "one\ntwo\nthree"
	chunks := SplitText(text, 4000)
	if len(chunks) != 1 || chunks[0] != text {
		t.Fatalf("unexpected chunks %q", chunks)
	}
}

func TestSplitText_JoiningNewlineCounts(t *testing.T) {
	// "aaaa" + "\n" + "bbbbb" is 10 characters
	chunks := SplitText("aaaa\nbbbbb", 9)
	if len(chunks) != 2 || chunks[0] != "aaaa" || chunks[1] != "bbbbb" {
		t.Fatalf("unexpected chunks %q", chunks)
	}
	chunks = SplitText("aaaa\nbbbbb", 10)
	if len(chunks) != 1 {
		t.Fatalf("expected a single chunk, got %q", chunks)
	}
}

func TestSplitText_SplitsLongParagraphIntoSentences(t *testing.T) {
	para := "First sentence here. Second one!! Third? tail without end"
	chunks := SplitText("intro\n"+para, 25)
	want := []string{
		"intro",
		"First sentence here.",
		" Second one!! Third?",
		" tail without end",
	}
	if len(chunks) != len(want) {
		t.Fatalf("expected %q, got %q", want, chunks)
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Fatalf("chunk %d: expected %q, got %q", i, want[i], chunks[i])
		}
	}
	if strings.Join(chunks[1:], "") != para {
		t.Fatal("sentence chunks must reassemble the paragraph")
	}
}

func TestSplitText_NoEmptyChunks(t *testing.T) {
	for _, in := range []string{"", "\n\n\n", "   \n \n"} {
		if chunks := SplitText(in, 10); len(chunks) != 0 {
			t.Fatalf("SplitText(%q) = %q, want none", in, chunks)
		}
	}
	chunks := SplitText("\n\nabc\n", 10)
	if len(chunks) != 1 || strings.TrimSpace(chunks[0]) != "abc" {
		t.Fatalf("unexpected chunks %q", chunks)
	}
}

func TestSplitText_CountsCharactersNotBytes(t *testing.T) {
	text := strings.Repeat("ä", 5) + "\n" + strings.Repeat("ö", 4)
	if chunks := SplitText(text, 10); len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %q", chunks)
	}
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("Hi. Are you there?! yes")
	want := []string{"Hi.", " Are you there?!", " yes"}
	if len(got) != len(want) {
		t.Fatalf("expected %q, got %q", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("piece %d: expected %q, got %q", i, want[i], got[i])
		}
	}
	if got := splitSentences("no boundary"); len(got) != 1 || got[0] != "no boundary" {
		t.Fatalf("unexpected pieces %q", got)
	}
}
