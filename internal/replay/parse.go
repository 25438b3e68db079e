package replay

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dgnsrekt/rendercache/internal/cache"
)

// ErrSyntax is returned for a malformed trace line.
var ErrSyntax = errors.New("invalid trace")

// Kind is the kind of a trace operation.
type Kind int

const (
	Set Kind = iota
	Get
	Resize
)

func (k Kind) String() string {
	switch k {
	case Set:
		return "set"
	case Get:
		return "get"
	case Resize:
		return "resize"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Op is one parsed trace line.
type Op struct {
	Line     int
	Kind     Kind
	Owner    string
	Key      string
	Value    string
	Capacity int64
}

func (o Op) String() string {
	switch o.Kind {
	case Set:
		return fmt.Sprintf("set %s %s %q", o.Owner, o.Key, o.Value)
	case Get:
		return fmt.Sprintf("get %s %s", o.Owner, o.Key)
	case Resize:
		return fmt.Sprintf("resize %s", cache.FormatCapacity(o.Capacity))
	default:
		return o.Kind.String()
	}
}

// Parse reads a trace.
func Parse(r io.Reader) ([]Op, error) {
	var ops []Op

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		op, err := parseLine(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		op.Line = line
		ops = append(ops, op)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("unable to read trace: %w", err)
	}
	return ops, nil
}

func parseLine(text string) (Op, error) {
	verb, rest := cut(text)
	switch verb {
	case "get":
		owner, rest := cut(rest)
		key, extra := cut(rest)
		if owner == "" || key == "" || extra != "" {
			return Op{}, fmt.Errorf("%w: want get <owner> <key>", ErrSyntax)
		}
		return Op{Kind: Get, Owner: owner, Key: key}, nil

	case "set":
		owner, rest := cut(rest)
		key, value := cut(rest)
		if owner == "" || key == "" {
			return Op{}, fmt.Errorf("%w: want set <owner> <key> <value>", ErrSyntax)
		}
		if strings.HasPrefix(value, `"`) {
			v, err := strconv.Unquote(value)
			if err != nil {
				return Op{}, fmt.Errorf("%w: bad quoted value: %w", ErrSyntax, err)
			}
			value = v
		}
		return Op{Kind: Set, Owner: owner, Key: key, Value: value}, nil

	case "resize":
		arg, extra := cut(rest)
		if arg == "" || extra != "" {
			return Op{}, fmt.Errorf("%w: want resize <capacity>", ErrSyntax)
		}
		capacity, err := cache.ParseCapacity(arg)
		if err != nil {
			return Op{}, fmt.Errorf("%w: %w", ErrSyntax, err)
		}
		return Op{Kind: Resize, Capacity: capacity}, nil

	default:
		return Op{}, fmt.Errorf("%w: unknown operation %q", ErrSyntax, verb)
	}
}

// cut splits off the first whitespace separated field.
func cut(s string) (string, string) {
	s = strings.TrimLeft(s, " \t")
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimLeft(s[i:], " \t")
}
