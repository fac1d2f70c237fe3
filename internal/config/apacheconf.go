package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var (
	ErrUnclosedBlock   = errors.New("unclosed block")
	ErrUnexpectedClose = errors.New("closing tag without open block")
	ErrMismatchedClose = errors.New("closing tag does not match open block")
	ErrMalformedTag    = errors.New("malformed block tag")
	ErrMalformedOption = errors.New("option without a key")
)

// Options is a parsed configuration block. Keys are lower-cased. A value is a
// string, a nested Options block, or a []any of those when the key repeats.
type Options map[string]any

func (o Options) add(key string, v any) {
	prev, ok := o[key]
	if !ok {
		o[key] = v
		return
	}
	if list, ok := prev.([]any); ok {
		o[key] = append(list, v)
		return
	}
	o[key] = []any{prev, v}
}

// LoadError reports a configuration file that could not be read or parsed.
type LoadError struct {
	Path string
	Line int
	Err  error
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("config %s: line %d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// LoadFile reads and parses an Apache-style configuration file.
func LoadFile(path string) (Options, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()
	return parse(f, path)
}

// Parse reads Apache-style configuration from r.
func Parse(r io.Reader) (Options, error) {
	return parse(r, "<input>")
}

type block struct {
	name  string
	opts  Options
	named map[string]Options // containers of <name arg> blocks, by name
}

func parse(r io.Reader, path string) (Options, error) {
	root := Options{}
	stack := []block{{opts: root, named: map[string]Options{}}}

	fail := func(line int, err error) (Options, error) {
		return nil, &LoadError{Path: path, Line: line, Err: err}
	}

	sc := bufio.NewScanner(r)
	var (
		lineNo  int
		pending string
	)
	for sc.Scan() {
		lineNo++
		raw := strings.TrimSpace(sc.Text())
		if strings.HasSuffix(raw, `\`) {
			pending += strings.TrimSuffix(raw, `\`)
			continue
		}
		raw = stripComment(pending + raw)
		pending = ""
		if raw == "" {
			continue
		}

		top := stack[len(stack)-1]
		switch {
		case strings.HasPrefix(raw, "</"):
			if !strings.HasSuffix(raw, ">") {
				return fail(lineNo, ErrMalformedTag)
			}
			name := strings.ToLower(strings.TrimSpace(raw[2 : len(raw)-1]))
			if len(stack) == 1 {
				return fail(lineNo, fmt.Errorf("%w: </%s>", ErrUnexpectedClose, name))
			}
			if name != top.name {
				return fail(lineNo, fmt.Errorf("%w: <%s> closed by </%s>", ErrMismatchedClose, top.name, name))
			}
			stack = stack[:len(stack)-1]

		case strings.HasPrefix(raw, "<"):
			if !strings.HasSuffix(raw, ">") {
				return fail(lineNo, ErrMalformedTag)
			}
			name, arg := splitOption(strings.TrimSpace(raw[1 : len(raw)-1]))
			if name == "" {
				return fail(lineNo, ErrMalformedTag)
			}
			name = strings.ToLower(name)
			child := Options{}
			if arg == "" {
				top.opts.add(name, child)
			} else {
				named, ok := top.named[name]
				if !ok {
					named = Options{}
					top.opts.add(name, named)
					top.named[name] = named
				}
				named.add(unquote(arg), child)
			}
			stack = append(stack, block{name: name, opts: child, named: map[string]Options{}})

		default:
			if err := addOption(top.opts, raw); err != nil {
				return fail(lineNo, err)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return fail(lineNo, err)
	}
	if pending != "" {
		if raw := stripComment(pending); raw != "" {
			if err := addOption(stack[len(stack)-1].opts, raw); err != nil {
				return fail(lineNo, err)
			}
		}
	}
	if len(stack) > 1 {
		return fail(lineNo, fmt.Errorf("%w: <%s>", ErrUnclosedBlock, stack[len(stack)-1].name))
	}
	return root, nil
}

func addOption(opts Options, line string) error {
	key, val := splitOption(line)
	if key == "" {
		return fmt.Errorf("%w: %q", ErrMalformedOption, line)
	}
	opts.add(strings.ToLower(key), autoTrue(unquote(val)))
	return nil
}

// splitOption splits "key value" or "key = value".
func splitOption(s string) (string, string) {
	i := strings.IndexAny(s, " \t=")
	if i < 0 {
		return s, ""
	}
	key := s[:i]
	rest := strings.TrimSpace(s[i:])
	rest = strings.TrimSpace(strings.TrimPrefix(rest, "="))
	return key, rest
}

// stripComment cuts an unquoted '#' that starts the line or follows whitespace.
func stripComment(s string) string {
	inQuote := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			inQuote = !inQuote
		case '#':
			if !inQuote && (i == 0 || s[i-1] == ' ' || s[i-1] == '\t') {
				return strings.TrimSpace(s[:i])
			}
		}
	}
	return strings.TrimSpace(s)
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return strings.ReplaceAll(s[1:len(s)-1], `\"`, `"`)
	}
	return s
}

// autoTrue maps boolean-looking values to "1" or "0".
func autoTrue(s string) string {
	switch strings.ToLower(s) {
	case "true", "yes", "on", "1":
		return "1"
	case "false", "no", "off", "0":
		return "0"
	}
	return s
}
