package effects

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type RecordKind uint8

const (
	ScopeOpen RecordKind = iota
	Statement
	ScopeClose
	CallEdge
	AncestorEdge
	DescendantEdge
)

func (k RecordKind) String() string {
	switch k {
	case ScopeOpen:
		return "scope-open"
	case Statement:
		return "statement"
	case ScopeClose:
		return "scope-close"
	case CallEdge:
		return "call"
	case AncestorEdge:
		return "ancestor"
	case DescendantEdge:
		return "descendant"
	default:
		return fmt.Sprintf("RecordKind(%d)", k)
	}
}

// Record is one line of the constraint log.
//
// Block is the block the record belongs to. For AncestorEdge and
// DescendantEdge, Other is the related block. Text holds the rendered
// statement of a Statement and the rendered callee of a CallEdge.
type Record struct {
	Kind  RecordKind
	Block EffectID
	Other EffectID
	Text  string
}

const statementIndent = "    "

func (r Record) String() string {
	switch r.Kind {
	case ScopeOpen:
		return fmt.Sprintf("ε_%v {", r.Block)
	case Statement:
		return statementIndent + r.Text
	case ScopeClose:
		return "}"
	case CallEdge:
		return fmt.Sprintf("ε_%v <- ε[%s]; α[%s] <- α_%v; ω[%s] <- ω_%v",
			r.Block, r.Text, r.Text, r.Block, r.Text, r.Block)
	case AncestorEdge:
		return fmt.Sprintf("α_%v <- α_%v", r.Block, r.Other)
	case DescendantEdge:
		return fmt.Sprintf("ω_%v <- ω_%v", r.Block, r.Other)
	default:
		panic(fmt.Errorf("unknown record kind %v", r.Kind))
	}
}

var ErrMalformedRecord = errors.New("malformed record")

func malformed(line string) error {
	return fmt.Errorf("%w: %q", ErrMalformedRecord, line)
}

func parseID(s string) (EffectID, bool) {
	n, err := strconv.ParseUint(s, 10, 64)
	return EffectID(n), err == nil
}

// parseEdge parses "<p>_<a> <- <p>_<b>".
func parseEdge(line, prefix string) (EffectID, EffectID, bool) {
	lhs, rhs, ok := strings.Cut(line, " <- ")
	if !ok {
		return 0, 0, false
	}
	lhs, okl := strings.CutPrefix(lhs, prefix)
	rhs, okr := strings.CutPrefix(rhs, prefix)
	if !okl || !okr {
		return 0, 0, false
	}
	a, oka := parseID(lhs)
	b, okb := parseID(rhs)
	return a, b, oka && okb
}

// parseCall parses a call edge. The callee occurs three times, so its
// length is determined by the length of the line.
func parseCall(line string) (Record, bool) {
	rest, ok := strings.CutPrefix(line, "ε_")
	if !ok {
		return Record{}, false
	}
	idStr, rest, ok := strings.Cut(rest, " <- ε[")
	if !ok {
		return Record{}, false
	}
	id, ok := parseID(idStr)
	if !ok {
		return Record{}, false
	}

	fixed := len(fmt.Sprintf("]; α[] <- α_%v; ω[] <- ω_%v", id, id))
	n := len(rest) - fixed
	if n < 0 || n%3 != 0 {
		return Record{}, false
	}

	r := Record{Kind: CallEdge, Block: id, Text: rest[:n/3]}
	if r.String() != line {
		return Record{}, false
	}
	return r, true
}

// ParseRecord parses a single log line. The Block of a ScopeClose is not
// part of the line and is left zero; ParseLog fills it in.
func ParseRecord(line string) (Record, error) {
	switch {
	case line == "}":
		return Record{Kind: ScopeClose}, nil

	case strings.HasPrefix(line, statementIndent):
		return Record{Kind: Statement, Text: strings.TrimPrefix(line, statementIndent)}, nil

	case strings.HasPrefix(line, "α_"):
		a, b, ok := parseEdge(line, "α_")
		if !ok {
			return Record{}, malformed(line)
		}
		return Record{Kind: AncestorEdge, Block: a, Other: b}, nil

	case strings.HasPrefix(line, "ω_"):
		a, b, ok := parseEdge(line, "ω_")
		if !ok {
			return Record{}, malformed(line)
		}
		return Record{Kind: DescendantEdge, Block: a, Other: b}, nil

	case strings.HasPrefix(line, "ε_") && strings.HasSuffix(line, " {"):
		id, ok := parseID(strings.TrimSuffix(strings.TrimPrefix(line, "ε_"), " {"))
		if !ok {
			return Record{}, malformed(line)
		}
		return Record{Kind: ScopeOpen, Block: id}, nil

	case strings.HasPrefix(line, "ε_"):
		r, ok := parseCall(line)
		if !ok {
			return Record{}, malformed(line)
		}
		return r, nil

	default:
		return Record{}, malformed(line)
	}
}

// ParseLog reads a constraint log. Statements and scope closes are
// attributed to the scope that is open when they occur.
func ParseLog(r io.Reader) ([]Record, error) {
	var (
		records []Record
		scope   EffectID
		lineNo  int
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<24)
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if line == "" {
			continue
		}

		rec, err := ParseRecord(line)
		if err != nil {
			return records, fmt.Errorf("line %d: %w", lineNo, err)
		}

		switch rec.Kind {
		case ScopeOpen:
			scope = rec.Block
		case Statement, ScopeClose:
			rec.Block = scope
		}
		records = append(records, rec)
	}

	return records, sc.Err()
}

// CheckLog verifies the structure of a parsed log: every block is opened
// exactly once and closed before anything else happens, statements only
// occur inside a scope, and every call and edge record refers to blocks
// that have a scope somewhere in the log.
func CheckLog(records []Record) error {
	opened := map[EffectID]bool{}
	inScope := false
	var current EffectID

	for i, r := range records {
		switch r.Kind {
		case ScopeOpen:
			if inScope {
				return fmt.Errorf("record %d: ε_%v opened inside ε_%v", i, r.Block, current)
			}
			if opened[r.Block] {
				return fmt.Errorf("record %d: ε_%v opened twice", i, r.Block)
			}
			opened[r.Block], inScope, current = true, true, r.Block

		case Statement:
			if !inScope {
				return fmt.Errorf("record %d: statement %q outside of a scope", i, r.Text)
			}

		case ScopeClose:
			if !inScope {
				return fmt.Errorf("record %d: unmatched scope close", i)
			}
			inScope = false

		case CallEdge, AncestorEdge, DescendantEdge:
			if inScope {
				return fmt.Errorf("record %d: %v record inside ε_%v", i, r.Kind, current)
			}
		}
	}

	if inScope {
		return fmt.Errorf("ε_%v is never closed", current)
	}

	for i, r := range records {
		switch r.Kind {
		case CallEdge:
			if !opened[r.Block] {
				return fmt.Errorf("record %d: call edge of unknown block %v", i, r.Block)
			}
		case AncestorEdge, DescendantEdge:
			if !opened[r.Block] || !opened[r.Other] {
				return fmt.Errorf("record %d: %v edge %v -> %v references an unknown block",
					i, r.Kind, r.Block, r.Other)
			}
		}
	}

	return nil
}
