// Package artifacts implements C4: a grammar-anchored scanner that extracts
// file artifacts from worker output, normalizes them, and enforces size
// bounds, per spec §4.4. This replaces the "string-matching to extract
// artifacts from LLM prose" pattern with an explicit scanner with defined
// failure modes, per spec §9's design notes.
package artifacts

import (
	"bufio"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/tailored-agentic-units/orchestrator/orchestrate/orchestrator"
)

const (
	maxArtifactBytes = 16 * 1024 * 1024
	maxTotalBytes    = 256 * 1024 * 1024
)

var mimeByExt = map[string]string{
	".md":   "text/markdown",
	".json": "application/json",
	".ts":   "text/plain",
	".js":   "text/plain",
	".go":   "text/plain",
	".rs":   "text/plain",
	".py":   "text/plain",
	".html": "text/html",
}

const defaultMimeType = "application/octet-stream"

var filePrefix = "FILE:"

// fenceFilenameDirective matches a fence info-string like "go
// filename=main.go"; we parse it manually rather than with regexp since the
// grammar is a single fixed token, keeping the scanner dependency-free like
// the rest of this module's parsers.
func parseFilenameDirective(infoString string) (string, bool) {
	const marker = "filename="
	idx := strings.Index(infoString, marker)
	if idx == -1 {
		return "", false
	}
	return strings.TrimSpace(infoString[idx+len(marker):]), true
}

func mimeType(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if mt, ok := mimeByExt[ext]; ok {
		return mt
	}
	return defaultMimeType
}

func validPath(p string) bool {
	if p == "" {
		return false
	}
	if path.IsAbs(p) {
		return false
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return false
		}
	}
	return true
}

// Extract scans output for fenced-code artifact declarations and returns a
// normalized, order-preserving list. Within a single Extract call, a
// repeated filename keeps only the last occurrence (last-writer-wins, per
// spec §4.4). Cross-task/cross-call uniqueness spans more than one Extract
// call's output, so it is enforced by the caller: orchestrator.ExecutionState
// .AppendArtifacts tracks filenames already in Deliverables across every task
// in a workflow and replaces in place, reporting which artifacts replaced an
// existing deliverable so the workflow runner can publish artifactCaptured
// with replaced: true.
func Extract(output string) ([]orchestrator.Artifact, error) {
	lines := splitLines(output)

	byName := make(map[string]orchestrator.Artifact)
	var order []string
	var totalBytes int

	pendingFile := ""

	i := 0
	for i < len(lines) {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, filePrefix) {
			pendingFile = strings.TrimSpace(trimmed[len(filePrefix):])
			i++
			continue
		}

		if strings.HasPrefix(trimmed, "```") {
			infoString := strings.TrimSpace(trimmed[3:])
			filename := pendingFile
			pendingFile = ""

			if filename == "" {
				if fn, ok := parseFilenameDirective(infoString); ok {
					filename = fn
				}
			}

			body, next, closed := readFenceBody(lines, i+1)
			i = next

			if filename == "" || !closed {
				continue
			}

			if !validPath(filename) {
				return nil, fmt.Errorf("artifacts: rejected path %q: absolute paths and \"..\" segments are not allowed", filename)
			}

			content := strings.TrimSuffix(body, "\n")
			size := len(content)

			if size > maxArtifactBytes {
				return nil, fmt.Errorf("%w: artifact %q is %d bytes (max %d)", orchestrator.ErrCapacityExceeded, filename, size, maxArtifactBytes)
			}

			if _, existed := byName[filename]; !existed {
				order = append(order, filename)
			} else {
				totalBytes -= byName[filename].Size
			}

			totalBytes += size
			if totalBytes > maxTotalBytes {
				return nil, fmt.Errorf("%w: total artifact bytes %d exceeds max %d", orchestrator.ErrCapacityExceeded, totalBytes, maxTotalBytes)
			}

			byName[filename] = orchestrator.Artifact{
				Filename: filename,
				Content:  content,
				MimeType: mimeType(filename),
				Size:     size,
			}
			continue
		}

		pendingFile = ""
		i++
	}

	result := make([]orchestrator.Artifact, 0, len(order))
	for _, name := range order {
		result = append(result, byName[name])
	}
	return result, nil
}

// readFenceBody reads lines from start until a closing "```" fence,
// returning the joined body, the index past the closing fence, and whether
// a closing fence was actually found (an unterminated fence is not an
// artifact).
func readFenceBody(lines []string, start int) (string, int, bool) {
	var b strings.Builder
	for i := start; i < len(lines); i++ {
		if strings.HasPrefix(strings.TrimSpace(lines[i]), "```") {
			return b.String(), i + 1, true
		}
		b.WriteString(lines[i])
		b.WriteString("\n")
	}
	return b.String(), len(lines), false
}

func splitLines(s string) []string {
	scanner := bufio.NewScanner(strings.NewReader(s))
	scanner.Buffer(make([]byte, 0, 64*1024), len(s)+1)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines
}

// ErrNoArtifacts is returned by callers (not Extract itself, which returns
// an empty slice) when they require at least one artifact and found none.
var ErrNoArtifacts = errors.New("artifacts: no artifacts found in output")
