// =============================================================================
// Sales Analytics - Input Reader
// =============================================================================
//
// This module loads the raw sales file from disk. Files exported by the
// legacy point-of-sale tools are not always UTF-8, so the reader tries a
// fixed list of encodings in order and uses the first one that decodes:
//
//   1. utf-8    (accepted only if the bytes are valid UTF-8)
//   2. latin-1  (ISO-8859-1)
//   3. cp1252   (Windows-1252)
//
// The first line of the file is a header and is always dropped. Blank lines
// are dropped and every remaining line is trimmed.
//
// =============================================================================

package csvparser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

var (
	// ErrInputNotFound is returned when the input file does not exist.
	// Callers treat it as "zero records" rather than a fatal error.
	ErrInputNotFound = errors.New("input file not found")

	// ErrUndecodable is returned when none of the supported encodings
	// could decode the file.
	ErrUndecodable = errors.New("unable to decode input with supported encodings")
)

// Line is one non-blank data line of the input file.
type Line struct {
	// Number is the 1-based line number in the original file.
	Number int

	// Text is the trimmed line content.
	Text string
}

// Input is the result of reading a sales file.
type Input struct {
	SourceFile string

	// Encoding is the name of the encoding that decoded the file.
	Encoding string

	Lines []Line
}

type decoderFunc func(raw []byte) (string, error)

type encodingCandidate struct {
	name   string
	decode decoderFunc
}

// supportedEncodings lists the encodings tried, in order.
var supportedEncodings = []encodingCandidate{
	{name: "utf-8", decode: decodeUTF8},
	{name: "latin-1", decode: decodeCharmap(charmap.ISO8859_1)},
	{name: "cp1252", decode: decodeCharmap(charmap.Windows1252)},
}

// ReadLines reads the sales file at filePath.
//
// RETURNS:
//   - The decoded data lines (header and blank lines removed).
//   - ErrInputNotFound (wrapped) if the file does not exist. The returned
//     Input is still usable and simply has no lines.
//   - ErrUndecodable (wrapped) if no supported encoding applies.
func ReadLines(filePath string) (*Input, error) {
	input := &Input{SourceFile: filePath}

	raw, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return input, fmt.Errorf("%w: %s", ErrInputNotFound, filePath)
		}
		return input, fmt.Errorf("failed to read input file: %w", err)
	}

	for _, candidate := range supportedEncodings {
		text, err := candidate.decode(raw)
		if err != nil {
			continue
		}
		input.Encoding = candidate.name
		input.Lines = splitDataLines(text)
		return input, nil
	}

	return input, fmt.Errorf("%w: %s", ErrUndecodable, filePath)
}

// splitDataLines drops the header line and blank lines and trims the rest.
func splitDataLines(text string) []Line {
	rawLines := strings.Split(text, "\n")
	if len(rawLines) == 0 {
		return nil
	}

	lines := make([]Line, 0, len(rawLines))
	for i, rawLine := range rawLines[1:] {
		trimmed := strings.TrimSpace(rawLine)
		if trimmed == "" {
			continue
		}
		lines = append(lines, Line{Number: i + 2, Text: trimmed})
	}
	return lines
}

func decodeUTF8(raw []byte) (string, error) {
	if !utf8.Valid(raw) {
		return "", errors.New("invalid utf-8")
	}
	return string(raw), nil
}

func decodeCharmap(cm *charmap.Charmap) decoderFunc {
	return func(raw []byte) (string, error) {
		reader := transform.NewReader(bytes.NewReader(raw), cm.NewDecoder())
		decoded, err := io.ReadAll(reader)
		if err != nil {
			return "", err
		}
		return string(decoded), nil
	}
}
