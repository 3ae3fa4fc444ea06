package textpatch

import (
	"fmt"
	"strings"
)

// contextLines is the number of unchanged lines shown around each change.
const contextLines = 3

type lineOp struct {
	kind byte // ' ', '+' or '-'
	text string
}

// UnifiedDiff renders the line-level difference between a and b in unified
// diff format. It returns an empty string when the buffers are identical.
func UnifiedDiff(path string, a, b []byte) string {
	if string(a) == string(b) {
		return ""
	}

	ops := diffLines(splitLines(a), splitLines(b))

	var sb strings.Builder
	path = strings.TrimPrefix(path, "/")
	fmt.Fprintf(&sb, "--- a/%s\n+++ b/%s\n", path, path)
	for _, h := range groupHunks(ops) {
		fmt.Fprintf(&sb, "@@ -%d,%d +%d,%d @@\n", h.origStart, h.origCount, h.modStart, h.modCount)
		for _, op := range h.ops {
			sb.WriteByte(op.kind)
			sb.WriteString(op.text)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func splitLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	return strings.Split(strings.TrimSuffix(string(content), "\n"), "\n")
}

// diffLines computes an edit script over lines with an LCS table after
// trimming the common prefix and suffix.
func diffLines(orig, mod []string) []lineOp {
	prefix := 0
	for prefix < len(orig) && prefix < len(mod) && orig[prefix] == mod[prefix] {
		prefix++
	}
	suffix := 0
	for suffix < len(orig)-prefix && suffix < len(mod)-prefix &&
		orig[len(orig)-1-suffix] == mod[len(mod)-1-suffix] {
		suffix++
	}

	ops := make([]lineOp, 0, len(orig)+len(mod))
	for _, line := range orig[:prefix] {
		ops = append(ops, lineOp{' ', line})
	}

	a := orig[prefix : len(orig)-suffix]
	b := mod[prefix : len(mod)-suffix]
	lcs := make([][]int, len(a)+1)
	for i := range lcs {
		lcs[i] = make([]int, len(b)+1)
	}
	for i := len(a) - 1; i >= 0; i-- {
		for j := len(b) - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else {
				lcs[i][j] = max(lcs[i+1][j], lcs[i][j+1])
			}
		}
	}

	i, j := 0, 0
	for i < len(a) || j < len(b) {
		switch {
		case i < len(a) && j < len(b) && a[i] == b[j]:
			ops = append(ops, lineOp{' ', a[i]})
			i++
			j++
		case i < len(a) && (j == len(b) || lcs[i+1][j] >= lcs[i][j+1]):
			ops = append(ops, lineOp{'-', a[i]})
			i++
		default:
			ops = append(ops, lineOp{'+', b[j]})
			j++
		}
	}

	for _, line := range orig[len(orig)-suffix:] {
		ops = append(ops, lineOp{' ', line})
	}
	return ops
}

type hunk struct {
	origStart, origCount int
	modStart, modCount   int
	ops                  []lineOp
}

// groupHunks merges changes separated by at most twice the context size and
// surrounds each group with context lines.
func groupHunks(ops []lineOp) []hunk {
	type span struct{ start, end int }

	var changes []span
	for i := 0; i < len(ops); {
		if ops[i].kind == ' ' {
			i++
			continue
		}
		j := i
		for j < len(ops) && ops[j].kind != ' ' {
			j++
		}
		if n := len(changes); n > 0 && i-changes[n-1].end <= 2*contextLines {
			changes[n-1].end = j
		} else {
			changes = append(changes, span{i, j})
		}
		i = j
	}

	hunks := make([]hunk, 0, len(changes))
	for _, c := range changes {
		start := max(0, c.start-contextLines)
		end := min(len(ops), c.end+contextLines)
		h := hunk{origStart: 1, modStart: 1, ops: ops[start:end]}
		for _, op := range ops[:start] {
			if op.kind != '+' {
				h.origStart++
			}
			if op.kind != '-' {
				h.modStart++
			}
		}
		for _, op := range h.ops {
			if op.kind != '+' {
				h.origCount++
			}
			if op.kind != '-' {
				h.modCount++
			}
		}
		hunks = append(hunks, h)
	}
	return hunks
}
