package vdf

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
)

var escaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\t", `\t`,
	"\n", `\n`,
)

// Write serialises a node in the client's canonical layout: every token
// quoted, tab indentation, braces on their own lines. Parse(Marshal(v))
// reproduces v exactly.
func Write(w io.Writer, v *Value) error {
	if !v.IsNode() {
		return errors.New("vdf: only nodes can be written as a document")
	}
	bw := bufio.NewWriter(w)
	writeEntries(bw, v, 0)
	return bw.Flush()
}

// Marshal is Write into a byte slice.
func Marshal(v *Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeEntries(w *bufio.Writer, node *Value, depth int) {
	indent := strings.Repeat("\t", depth)
	for _, e := range node.Entries() {
		w.WriteString(indent)
		writeQuoted(w, e.Key)
		if e.Value.IsLeaf() {
			w.WriteString("\t\t")
			writeQuoted(w, e.Value.String())
			w.WriteByte('\n')
			continue
		}
		w.WriteByte('\n')
		w.WriteString(indent)
		w.WriteString("{\n")
		writeEntries(w, e.Value, depth+1)
		w.WriteString(indent)
		w.WriteString("}\n")
	}
}

func writeQuoted(w *bufio.Writer, s string) {
	w.WriteByte('"')
	escaper.WriteString(w, s)
	w.WriteByte('"')
}
