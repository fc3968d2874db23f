package truncates

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/reusee/itera/contexts"
)

// one token per 4 bytes, deterministic
func testEstimate(text string) int {
	return len(text) / 4
}

func TestTruncateNoop(t *testing.T) {
	msgs := []Message{
		{
			Role: contexts.RoleUser,
			Blocks: []Block{
				{Text: "hello world"},
			},
		},
	}
	ret, err := Truncate(testEstimate, msgs, 1000, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(ret) != 1 || ret[0].Blocks[0].Text != "hello world" {
		t.Fatalf("got %+v", ret)
	}

	// idempotent: truncating a fitting list returns it unchanged
	again, err := Truncate(testEstimate, ret, 1000, true)
	if err != nil {
		t.Fatal(err)
	}
	if again[0].Blocks[0].Text != ret[0].Blocks[0].Text {
		t.Fatal()
	}
}

func TestTruncateKeepsAnchoredEdge(t *testing.T) {
	head := strings.Repeat("H", 200)
	tail := strings.Repeat("T", 200)
	msgs := []Message{
		{
			Role: contexts.RoleUser,
			Blocks: []Block{
				{Text: head + tail, Anchor: AnchorTop, MinTokens: 10},
			},
		},
	}
	ret, err := Truncate(testEstimate, msgs, 50, false)
	if err != nil {
		t.Fatal(err)
	}
	text := ret[0].Blocks[0].Text
	if !strings.HasPrefix(text, "HHHH") {
		t.Fatalf("anchored head removed: %q", text)
	}
	if !strings.HasSuffix(text, Marker) {
		t.Fatalf("no marker: %q", text)
	}
	// the tail goes before any head content does
	if strings.Contains(text, "T") && !strings.Contains(text, "H") {
		t.Fatalf("head cut before tail: %q", text)
	}
	if testEstimate(text) > 50 {
		t.Fatalf("still too big: %d", testEstimate(text))
	}
}

func TestTruncateBottomAnchor(t *testing.T) {
	msgs := []Message{
		{
			Role: contexts.RoleUser,
			Blocks: []Block{
				{
					Text:   strings.Repeat("a", 400) + "END",
					Anchor: AnchorBottom,
				},
			},
		},
	}
	ret, err := Truncate(testEstimate, msgs, 20, false)
	if err != nil {
		t.Fatal(err)
	}
	text := ret[0].Blocks[0].Text
	if !strings.HasPrefix(text, Marker) {
		t.Fatalf("no marker: %q", text)
	}
	if !strings.HasSuffix(text, "END") {
		t.Fatalf("anchored tail removed: %q", text)
	}
}

func TestTruncateFloor(t *testing.T) {
	msgs := []Message{
		{
			Role: contexts.RoleSystem,
			Blocks: []Block{
				{Text: strings.Repeat("s", 400), MinTokens: 100},
			},
		},
		{
			Role: contexts.RoleUser,
			Blocks: []Block{
				{Text: strings.Repeat("u", 400)},
			},
		},
	}
	ret, err := Truncate(testEstimate, msgs, 110, false)
	if err != nil {
		t.Fatal(err)
	}
	if n := testEstimate(ret[0].Blocks[0].Text); n < 100 {
		t.Fatalf("shrunk below floor: %d", n)
	}
}

func TestTruncateStrict(t *testing.T) {
	msgs := []Message{
		{
			Role: contexts.RoleUser,
			Blocks: []Block{
				{Text: strings.Repeat("x", 400), MinTokens: 90},
			},
		},
	}
	_, err := Truncate(testEstimate, msgs, 10, true)
	if !errors.Is(err, ErrBudgetExceeded) {
		t.Fatalf("got %v", err)
	}

	// best effort passes
	ret, err := Truncate(testEstimate, msgs, 10, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(ret) != 1 {
		t.Fatal()
	}
}

func TestTruncateDropsEmptied(t *testing.T) {
	msgs := []Message{
		{
			Role: contexts.RoleUser,
			Blocks: []Block{
				{Text: strings.Repeat("x", 400)},
			},
		},
		{
			Role: contexts.RoleUser,
			Blocks: []Block{
				{Text: "keep me", MinTokens: 10},
			},
		},
	}
	ret, err := Truncate(testEstimate, msgs, 2, false)
	if err != nil {
		t.Fatal(err)
	}
	for _, msg := range ret {
		for _, block := range msg.Blocks {
			if block.Text == "" {
				t.Fatal("empty block not dropped")
			}
		}
	}
}

func TestTruncateRuneBoundary(t *testing.T) {
	for _, anchor := range []Anchor{AnchorTop, AnchorBottom} {
		msgs := []Message{
			{
				Role: contexts.RoleUser,
				Blocks: []Block{
					{Text: strings.Repeat("好", 100), Anchor: anchor},
				},
			},
		}
		ret, err := Truncate(testEstimate, msgs, 21, false)
		if err != nil {
			t.Fatal(err)
		}
		text := ret[0].Blocks[0].Text
		if !utf8.ValidString(text) {
			t.Fatalf("invalid UTF-8: %q", text)
		}
		if !strings.Contains(text, Marker) {
			t.Fatalf("no marker: %q", text)
		}
	}
}

func TestConvert(t *testing.T) {
	msgs := FromMessages([]contexts.Message{
		{Role: contexts.RoleSystem, Content: "sys"},
		{Role: contexts.RoleUser, Content: "hello"},
	})
	if len(msgs) != 2 {
		t.Fatal()
	}
	if msgs[0].Blocks[0].MinTokens <= msgs[1].Blocks[0].MinTokens {
		t.Fatal("system floor should be larger")
	}

	back := ToMessages(msgs)
	if len(back) != 2 {
		t.Fatal()
	}
	if back[1].Content != "hello" {
		t.Fatalf("got %q", back[1].Content)
	}

	empty := ToMessages([]Message{
		{Role: contexts.RoleUser, Blocks: []Block{{Text: "  "}}},
	})
	if len(empty) != 0 {
		t.Fatal("blank message not dropped")
	}
}
