package truncates

import (
	"errors"
	"math"
	"slices"
	"unicode/utf8"
)

var ErrBudgetExceeded = errors.New("token budget exceeded")

type Estimate func(text string) int

// Truncate fits messages into limit tokens. Blocks are shrunk proportionally
// to their flex weight, never below their floor, cutting from the
// non-anchored edge. When the floors alone do not fit, strict mode fails
// with ErrBudgetExceeded and best-effort mode returns the floored result.
// Deterministic, and a no-op for already-fitting input.
func Truncate(estimate Estimate, msgs []Message, limit int, strict bool) ([]Message, error) {
	total := 0
	for _, msg := range msgs {
		for _, block := range msg.Blocks {
			total += estimate(block.Text)
		}
	}
	if total <= limit {
		return msgs, nil
	}

	// work on a copy, the input is not modified
	ret := make([]Message, len(msgs))
	for i, msg := range msgs {
		ret[i] = Message{
			Role:   msg.Role,
			Blocks: slices.Clone(msg.Blocks),
		}
	}

	for pass := 0; pass < 8; pass++ {
		sizes := make([][]int, len(ret))
		total = 0
		for i, msg := range ret {
			sizes[i] = make([]int, len(msg.Blocks))
			for j, block := range msg.Blocks {
				n := estimate(block.Text)
				sizes[i][j] = n
				total += n
			}
		}
		overflow := total - limit
		if overflow <= 0 {
			break
		}

		totalWeight := float64(0)
		for i, msg := range ret {
			for j, block := range msg.Blocks {
				totalWeight += weight(block, sizes[i][j])
			}
		}
		if totalWeight <= 0 {
			// nothing left to shrink
			break
		}

		for i := range ret {
			for j := range ret[i].Blocks {
				block := &ret[i].Blocks[j]
				w := weight(*block, sizes[i][j])
				if w <= 0 {
					continue
				}
				cut := int(math.Ceil(float64(overflow) * w / totalWeight))
				if max := sizes[i][j] - block.MinTokens; cut > max {
					cut = max
				}
				if cut <= 0 {
					continue
				}
				shrink(block, sizes[i][j], cut)
			}
		}
	}

	total = 0
	for _, msg := range ret {
		for _, block := range msg.Blocks {
			total += estimate(block.Text)
		}
	}
	if total > limit && strict {
		return nil, ErrBudgetExceeded
	}

	// drop emptied blocks and messages
	out := ret[:0]
	for _, msg := range ret {
		blocks := msg.Blocks[:0]
		for _, block := range msg.Blocks {
			if block.Text == "" {
				continue
			}
			blocks = append(blocks, block)
		}
		if len(blocks) == 0 {
			continue
		}
		msg.Blocks = blocks
		out = append(out, msg)
	}

	return out, nil
}

func weight(block Block, size int) float64 {
	shrinkable := size - block.MinTokens
	if shrinkable <= 0 {
		return 0
	}
	flex := block.Flex
	if flex == 0 {
		flex = 1
	}
	return flex * float64(shrinkable)
}

func shrink(block *Block, size int, cut int) {
	keep := size - cut
	if keep <= 0 {
		block.Text = ""
		return
	}
	text := stripMarker(block.Text, block.Anchor)
	keepChars := len(text) * keep / size
	if keepChars <= 0 {
		block.Text = ""
		return
	}
	if keepChars >= len(text) {
		keepChars = len(text) - 1
	}
	switch block.Anchor {
	case AnchorTop:
		block.Text = text[:runeStart(text, keepChars)] + Marker
	case AnchorBottom:
		block.Text = Marker + text[runeStart(text, len(text)-keepChars):]
	}
}

// runeStart snaps a byte offset back to the nearest rune boundary so a cut
// never emits invalid UTF-8.
func runeStart(text string, i int) int {
	for i > 0 && !utf8.RuneStart(text[i]) {
		i--
	}
	return i
}

func stripMarker(text string, anchor Anchor) string {
	switch anchor {
	case AnchorTop:
		if len(text) >= len(Marker) && text[len(text)-len(Marker):] == Marker {
			return text[:len(text)-len(Marker)]
		}
	case AnchorBottom:
		if len(text) >= len(Marker) && text[:len(Marker)] == Marker {
			return text[len(Marker):]
		}
	}
	return text
}
