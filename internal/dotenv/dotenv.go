// Package dotenv converts secret maps to and from .env files.
//
// Encoding writes a header comment block followed by one KEY="VALUE" line per
// entry. Only newlines and double quotes are escaped; Decode reverses exactly
// those two escapes so that Decode(Encode(m)) reproduces m.
package dotenv

import (
	"bufio"
	stderrors "errors"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/systmms/aws-secrets/internal/errors"
	"github.com/systmms/aws-secrets/internal/secrets"
)

const (
	// DefaultFilename is the file read and written when none is given.
	DefaultFilename = ".env"
	// DefaultEnvironment labels generated files when none is given.
	DefaultEnvironment = "development"

	filePerm = 0600
)

// Header describes the comment block written at the top of a generated file.
type Header struct {
	Environment string
	GeneratedAt time.Time
}

// CheckKey reports why key would not survive Decode(Encode(m)): the decoder
// treats '#' lines as comments, trims the key and splits on the first '='.
func CheckKey(key string) error {
	switch {
	case strings.TrimSpace(key) == "":
		return errors.New(errors.KindFormat, "Secret key must not be empty")
	case strings.TrimSpace(key) != key:
		return errors.New(errors.KindFormat, "Secret key must not start or end with whitespace")
	case strings.HasPrefix(key, "#"):
		return errors.New(errors.KindFormat, "Secret key must not start with '#'")
	case strings.ContainsAny(key, "=\n\r"):
		return errors.New(errors.KindFormat, "Secret key must not contain '=' or newlines")
	}
	return nil
}

var (
	escaper   = strings.NewReplacer("\n", `\n`, `"`, `\"`)
	unescapeN = strings.NewReplacer(`\n`, "\n")
	unescapeQ = strings.NewReplacer(`\"`, `"`)
)

// Encode renders m as .env text.
func Encode(m *secrets.Map, h Header) string {
	env := h.Environment
	if env == "" {
		env = DefaultEnvironment
	}
	at := h.GeneratedAt
	if at.IsZero() {
		at = time.Now()
	}

	var b strings.Builder
	b.WriteString("# This file is auto-generated. Do not edit manually.\n")
	b.WriteString("# Environment: " + env + "\n")
	b.WriteString("# Generated at: " + at.UTC().Format("2006-01-02T15:04:05.000Z07:00") + "\n\n")

	for key, value := range m.All() {
		b.WriteString(key)
		b.WriteString(`="`)
		b.WriteString(escaper.Replace(value))
		b.WriteString("\"\n")
	}
	return b.String()
}

// DecodeString parses .env text. Malformed lines are skipped.
func DecodeString(s string) *secrets.Map {
	out := secrets.New()
	for _, line := range strings.Split(s, "\n") {
		if key, value, ok := parseLine(line); ok {
			out.Set(key, value)
		}
	}
	return out
}

// Decode parses .env content from r. Only read errors are returned;
// malformed lines are skipped.
func Decode(r io.Reader) (*secrets.Map, error) {
	out := secrets.New()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if key, value, ok := parseLine(scanner.Text()); ok {
			out.Set(key, value)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// parseLine applies the per-line rules: blank and '#' lines are comments,
// the key runs up to the first '=', one matching pair of outer quotes is
// removed, then \n and \" are unescaped in that order.
func parseLine(line string) (key, value string, ok bool) {
	line = strings.TrimSuffix(line, "\r")
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}

	rawKey, rawValue, found := strings.Cut(line, "=")
	if !found {
		return "", "", false
	}
	key = strings.TrimSpace(rawKey)
	if key == "" {
		return "", "", false
	}

	value = strings.TrimSpace(rawValue)
	value = stripQuotes(value)
	value = unescapeN.Replace(value)
	value = unescapeQ.Replace(value)
	return key, value, true
}

func stripQuotes(v string) string {
	if len(v) < 2 {
		return v
	}
	first, last := v[0], v[len(v)-1]
	if (first == '"' || first == '\'') && first == last {
		return v[1 : len(v)-1]
	}
	return v
}

// ReadFile decodes the .env file at path. A missing file is a filesystem
// error that still satisfies errors.Is(err, fs.ErrNotExist); an existing
// empty file yields an empty map.
func ReadFile(path string) (*secrets.Map, error) {
	f, err := os.Open(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, &errors.Error{
				Kind:    errors.KindFilesystem,
				Op:      "read .env file",
				Message: "File " + path + " not found",
				Err:     err,
			}
		}
		return nil, errors.Normalize(errors.KindFilesystem, "read .env file", err)
	}
	defer f.Close()

	m, err := Decode(f)
	if err != nil {
		return nil, errors.Normalize(errors.KindFilesystem, "read .env file", err)
	}
	return m, nil
}

// WriteFile encodes m and writes it to path, readable by the owner only.
func WriteFile(path string, m *secrets.Map, h Header) error {
	if err := os.WriteFile(path, []byte(Encode(m, h)), filePerm); err != nil {
		return errors.Normalize(errors.KindFilesystem, "write .env file", err)
	}
	return nil
}
