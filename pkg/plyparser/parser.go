// Package plyparser implements an incremental PLY header tokenizer and
// binary payload accumulator: a single entry point, ParseChunk, that can
// be called with arbitrarily sized slices of a PLY byte stream, in
// order, and leaves State in the same terminal state a single call over
// the whole stream would have produced.
//
// Only a strict subset of PLY is accepted: an ASCII header,
// binary_little_endian 1.0, one element vertex declaration, and zero or
// more property float fields — no other PLY feature is recognized.
package plyparser

import (
	"bytes"
	"strconv"
)

const maxHeaderLines = 1000

// State is the parser's resumable state. The zero value is ready to use.
type State struct {
	ErrorStr        string
	HasHeader       bool
	VertexCount     int
	StrideSize      int
	PayloadSize     int
	PayloadReadSize int
	Payload         []byte

	sawPly    bool
	lineBuf   []byte
	lineCount int
}

// New returns a fresh, ready-to-use parser state.
func New() *State {
	return &State{}
}

// ParseChunk feeds buf to the parser and returns how many of its bytes
// were consumed. It is restartable across arbitrary chunk boundaries,
// both inside the header and inside the binary payload: parsing a
// well-formed stream split into any partition of chunks leaves State in
// the same terminal shape as one call over the whole stream.
func ParseChunk(s *State, buf []byte) int {
	if s.ErrorStr != "" {
		return 0
	}

	consumed := 0
	if !s.HasHeader {
		consumed = s.parseHeaderChunk(buf)
		if s.ErrorStr != "" {
			return consumed
		}
	}

	if s.HasHeader {
		if s.Payload == nil {
			s.PayloadSize = s.VertexCount * s.StrideSize
			s.Payload = make([]byte, s.PayloadSize)
			s.PayloadReadSize = 0
		}

		remaining := len(buf) - consumed
		leftToRead := s.PayloadSize - s.PayloadReadSize
		n := remaining
		if leftToRead < n {
			n = leftToRead
		}
		if n > 0 {
			copy(s.Payload[s.PayloadReadSize:s.PayloadReadSize+n], buf[consumed:consumed+n])
			s.PayloadReadSize += n
			consumed += n
		}
	}

	return consumed
}

// parseHeaderChunk consumes as many complete "\n"-terminated lines as
// buf holds, buffering any trailing partial line in s.lineBuf for the
// next call. It stops as soon as end_header is seen or buf runs out.
func (s *State) parseHeaderChunk(buf []byte) int {
	consumed := 0

	for !s.HasHeader {
		nl := bytes.IndexByte(buf[consumed:], '\n')
		if nl < 0 {
			s.lineBuf = append(s.lineBuf, buf[consumed:]...)
			return len(buf)
		}

		line := buf[consumed : consumed+nl]
		consumed += nl + 1

		var full []byte
		if len(s.lineBuf) > 0 {
			full = append(s.lineBuf, line...)
			s.lineBuf = nil
		} else {
			full = line
		}

		s.lineCount++
		if s.lineCount > maxHeaderLines {
			s.ErrorStr = "Exceeded header number of lines"
			return consumed
		}

		done := s.processHeaderLine(full)
		if s.ErrorStr != "" {
			return consumed
		}
		if done {
			s.HasHeader = true
		}
	}

	return consumed
}

// processHeaderLine handles one logical header line (already split on
// '\n'). It returns true when the line was end_header.
func (s *State) processHeaderLine(line []byte) bool {
	if !s.sawPly {
		word, _ := nextWord(line)
		if len(word) == 0 {
			return false // blank lines before the ply token are skipped
		}
		if string(word) != "ply" {
			s.ErrorStr = "Expecting ply token at the top of the ply file."
			return false
		}
		s.sawPly = true
		return false
	}

	word, rest := nextWord(line)
	switch string(word) {
	case "end_header":
		return true

	case "property":
		typeWord, _ := nextWord(rest)
		if string(typeWord) != "float" {
			s.ErrorStr = "Only supports float property"
			return false
		}
		s.StrideSize += 4
		return false

	case "format":
		fmtWord, rest2 := nextWord(rest)
		if string(fmtWord) != "binary_little_endian" {
			s.ErrorStr = "Only supports binary little endian type"
			return false
		}
		verWord, _ := nextWord(rest2)
		if string(verWord) != "1.0" {
			s.ErrorStr = "Only supports binary little endian version 1.0"
			return false
		}
		return false

	case "element":
		nameWord, rest2 := nextWord(rest)
		if string(nameWord) != "vertex" {
			s.ErrorStr = "Only supports vertex token type"
			return false
		}
		numWord, _ := nextWord(rest2)
		n, err := strconv.Atoi(string(numWord))
		if err != nil {
			s.ErrorStr = "Could not parse vertex count off ply file."
			return false
		}
		s.VertexCount = n
		return false

	default:
		return false // unrecognized header lines are ignored
	}
}

// nextWord skips leading spaces/tabs and returns the word that follows
// plus whatever remains after it (still possibly containing more
// whitespace-separated words).
func nextWord(b []byte) (word, rest []byte) {
	i := 0
	for i < len(b) && (b[i] == ' ' || b[i] == '\t') {
		i++
	}
	j := i
	for j < len(b) && b[j] != ' ' && b[j] != '\t' {
		j++
	}
	return b[i:j], b[j:]
}
