package textpatch

// Apply returns a new buffer holding original with every insertion spliced in.
// Insertions are sorted by descending offset and spliced into a single working
// buffer. original is never modified.
func Apply(original []byte, insertions []Insertion) ([]byte, error) {
	sorted, err := Prepare(insertions, len(original))
	if err != nil {
		return nil, err
	}

	growth := 0
	for _, ins := range sorted {
		growth += len(ins.Text)
	}

	buf := make([]byte, len(original), len(original)+growth)
	copy(buf, original)

	for _, ins := range sorted {
		if ins.Text == "" {
			continue
		}
		n := len(buf)
		buf = buf[:n+len(ins.Text)]
		copy(buf[ins.Offset+len(ins.Text):], buf[ins.Offset:n])
		copy(buf[ins.Offset:], ins.Text)
	}

	return buf, nil
}

// ApplySequential applies insertions one at a time from the highest offset
// down, building a fresh buffer for each. It produces the same output as Apply.
func ApplySequential(original []byte, insertions []Insertion) ([]byte, error) {
	sorted, err := Prepare(insertions, len(original))
	if err != nil {
		return nil, err
	}

	current := append([]byte(nil), original...)
	for _, ins := range sorted {
		next := make([]byte, 0, len(current)+len(ins.Text))
		next = append(next, current[:ins.Offset]...)
		next = append(next, ins.Text...)
		next = append(next, current[ins.Offset:]...)
		current = next
	}

	return current, nil
}

// IsSubsequence reports whether every byte of sub appears in seq in the same order.
func IsSubsequence(sub, seq []byte) bool {
	i := 0
	for j := 0; i < len(sub) && j < len(seq); j++ {
		if sub[i] == seq[j] {
			i++
		}
	}
	return i == len(sub)
}
