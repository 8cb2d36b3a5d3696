package flowmeter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
)

const (
	LabelBenign = "BENIGN"
	LabelAttack = "ATTACK"
)

// LabelSet is the parsed contents of a label file: the set of flow ids
// (in canonical "src-dst-sport-dport-proto" form) considered benign. Any
// flow id not present is ATTACK; with no label file at all, flows are left
// at UnknownLabel instead of being classified.
type LabelSet map[string]struct{}

// Label returns BENIGN if id was present in the label file, ATTACK
// otherwise.
func (s LabelSet) Label(id string) string {
	if _, ok := s[id]; ok {
		return LabelBenign
	}
	return LabelAttack
}

// LoadLabelFile parses a label file per spec.md §6.3: an integer count N
// followed by N whitespace-separated flow ids.
func LoadLabelFile(path string) (LabelSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open label file: %w", err)
	}
	defer f.Close()
	return ParseLabelFile(f)
}

// ParseLabelFile parses the label-file grammar from r.
func ParseLabelFile(r io.Reader) (LabelSet, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	sc.Split(bufio.ScanWords)

	if !sc.Scan() {
		return nil, fmt.Errorf("label file: missing entry count")
	}
	n, err := strconv.Atoi(sc.Text())
	if err != nil {
		return nil, fmt.Errorf("label file: invalid entry count %q: %w", sc.Text(), err)
	}

	set := make(LabelSet, n)
	for i := 0; i < n; i++ {
		if !sc.Scan() {
			return nil, fmt.Errorf("label file: expected %d flow ids, found %d", n, i)
		}
		set[sc.Text()] = struct{}{}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("label file: %w", err)
	}
	return set, nil
}
