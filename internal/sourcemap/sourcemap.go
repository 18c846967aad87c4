// Package sourcemap registers source files and resolves byte spans to
// 1-indexed line/column positions for diagnostics.
package sourcemap

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Span identifies a contiguous byte range within a registered file.
// Start is inclusive, End is exclusive; Start must not exceed End.
type Span struct {
	FileID int
	Start  int
	End    int
}

// NewSpan builds a Span, panicking if start is after end — callers
// construct spans from already-validated token/node boundaries.
func NewSpan(fileID, start, end int) Span {
	if start > end {
		panic(fmt.Sprintf("invalid span: start (%d) > end (%d)", start, end))
	}
	return Span{FileID: fileID, Start: start, End: end}
}

// Cover returns the smallest span enclosing both a and b. The two spans
// must belong to the same file.
func Cover(a, b Span) Span {
	start := a.Start
	if b.Start < start {
		start = b.Start
	}
	end := a.End
	if b.End > end {
		end = b.End
	}
	return Span{FileID: a.FileID, Start: start, End: end}
}

// Len reports the byte length of the span.
func (s Span) Len() int { return s.End - s.Start }

// Position is a 1-indexed line/column location in a source file.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// file holds a registered source file's content and precomputed line starts.
type file struct {
	id         int
	path       string
	content    string
	lineStarts []int
}

func newFile(id int, path, content string) *file {
	f := &file{id: id, path: path, content: content}
	f.lineStarts = computeLineStarts(content)
	return f
}

func computeLineStarts(content string) []int {
	starts := []int{0}
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// SourceMap owns every registered source file for an interpreter run and
// answers span-to-position and span-to-text queries against them.
type SourceMap struct {
	files      map[int]*file
	pathToID   map[string]int
	nextFileID int
}

// New returns an empty SourceMap.
func New() *SourceMap {
	return &SourceMap{
		files:      make(map[int]*file),
		pathToID:   make(map[string]int),
		nextFileID: 1,
	}
}

// AddFile registers content under path, returning its stable file ID.
// Re-registering the same absolute path returns the original ID without
// re-scanning the content.
func (sm *SourceMap) AddFile(path, content string) int {
	abs := path
	if resolved, err := filepath.Abs(path); err == nil {
		abs = resolved
	}
	if id, ok := sm.pathToID[abs]; ok {
		return id
	}
	id := sm.nextFileID
	sm.nextFileID++
	sm.files[id] = newFile(id, abs, content)
	sm.pathToID[abs] = id
	return id
}

func (sm *SourceMap) file(fileID int) (*file, error) {
	f, ok := sm.files[fileID]
	if !ok {
		return nil, fmt.Errorf("sourcemap: unknown file id %d", fileID)
	}
	return f, nil
}

// Path returns the absolute path a file was registered under.
func (sm *SourceMap) Path(fileID int) string {
	f, err := sm.file(fileID)
	if err != nil {
		return ""
	}
	return f.path
}

// OffsetToPosition converts a byte offset within fileID to a 1-indexed
// line/column position. The offset must satisfy 0 <= offset <= len(content).
func (sm *SourceMap) OffsetToPosition(fileID, offset int) (Position, error) {
	f, err := sm.file(fileID)
	if err != nil {
		return Position{}, err
	}
	if offset < 0 || offset > len(f.content) {
		return Position{}, fmt.Errorf("sourcemap: offset %d out of bounds for %s", offset, f.path)
	}

	line := len(f.lineStarts)
	for i, start := range f.lineStarts {
		if start > offset {
			line = i
			break
		}
	}
	lineStart := f.lineStarts[line-1]
	return Position{Line: line, Column: offset - lineStart + 1}, nil
}

// SpanToPositions resolves a span's start and end to positions. The end
// position is computed from max(start, end-1) so a zero-width or
// one-character span still reports a sensible end column.
func (sm *SourceMap) SpanToPositions(span Span) (start, end Position, err error) {
	start, err = sm.OffsetToPosition(span.FileID, span.Start)
	if err != nil {
		return Position{}, Position{}, err
	}
	lastByte := span.Start
	if span.End-1 > lastByte {
		lastByte = span.End - 1
	}
	end, err = sm.OffsetToPosition(span.FileID, lastByte)
	return start, end, err
}

// GetLine returns line text (1-indexed), excluding its terminator.
func (sm *SourceMap) GetLine(fileID, line int) (string, error) {
	f, err := sm.file(fileID)
	if err != nil {
		return "", err
	}
	if line < 1 || line > len(f.lineStarts) {
		return "", fmt.Errorf("sourcemap: line %d out of bounds for %s", line, f.path)
	}
	start := f.lineStarts[line-1]
	var end int
	if line < len(f.lineStarts) {
		end = f.lineStarts[line] - 1
	} else {
		end = len(f.content)
	}
	return strings.TrimSuffix(f.content[start:end], "\r"), nil
}

// GetSpanText returns the substring [span.Start, span.End) of the span's file.
func (sm *SourceMap) GetSpanText(span Span) (string, error) {
	f, err := sm.file(span.FileID)
	if err != nil {
		return "", err
	}
	if span.Start < 0 || span.End > len(f.content) {
		return "", fmt.Errorf("sourcemap: span (%d,%d) out of bounds for %s", span.Start, span.End, f.path)
	}
	return f.content[span.Start:span.End], nil
}
