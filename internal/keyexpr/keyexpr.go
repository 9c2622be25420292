// Package keyexpr parses textual key expressions into experiment Keys.
//
// Grammar:
//
//	expr    = [ "!" ] name [ op operand ]
//	op      = ">" | "<" | ">=" | "<=" | "=" | "==" | "!=" | "~" | "in"
//	operand = number | "true" | "false" | word | quoted
//	        | number ( "±" | "+-" ) number      (after "~")
//	        | "[" number "," number "]"          (after "in")
//
// Examples: "you_win_if_you_switch", "!heads", "car_door>=3",
// "total in [6, 8]", "value ~ 0 +- 0.5". A leading "!" negates the whole
// expression.
package keyexpr

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/nvandessel/samplespace/internal/experiment"
)

// SyntaxError reports a malformed expression.
type SyntaxError struct {
	Input  string
	Offset int // byte offset of the problem in Input
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid key expression %q at offset %d: %s", e.Input, e.Offset, e.Msg)
}

// Parse parses one key expression.
func Parse(s string) (experiment.Key, error) {
	p := &parser{input: s}
	return p.parse()
}

// ParseAll parses each expression in order and stops at the first error.
func ParseAll(exprs []string) ([]experiment.Key, error) {
	keys := make([]experiment.Key, 0, len(exprs))
	for _, s := range exprs {
		k, err := Parse(s)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}

type parser struct {
	input string
	pos   int
}

func (p *parser) parse() (experiment.Key, error) {
	p.skipSpace()
	negate := false
	if p.peek() == '!' && !strings.HasPrefix(p.rest(), "!=") {
		negate = true
		p.pos++
		p.skipSpace()
	}

	name := p.name()
	if name == "" {
		return nil, p.errorf("expected a key name")
	}
	var key experiment.Key = experiment.Name(name)

	p.skipSpace()
	if !p.done() {
		pred, err := p.predicate()
		if err != nil {
			return nil, err
		}
		key = experiment.Derive(key, pred)
	}

	p.skipSpace()
	if !p.done() {
		return nil, p.errorf("unexpected %q", p.rest())
	}
	if negate {
		key = experiment.Derive(key, experiment.Not())
	}
	return key, nil
}

func (p *parser) predicate() (experiment.Predicate, error) {
	start := p.pos
	op := p.operator()
	if op == "" {
		return experiment.Predicate{}, p.errorf("expected an operator")
	}
	p.skipSpace()

	switch op {
	case "in":
		return p.interval()
	case "~":
		return p.approx()
	case "=", "==", "!=":
		v, err := p.value()
		if err != nil {
			return experiment.Predicate{}, err
		}
		if op == "!=" {
			return experiment.NotEquals(v), nil
		}
		return experiment.Equals(v), nil
	}

	y, err := p.number()
	if err != nil {
		return experiment.Predicate{}, err
	}
	switch op {
	case ">":
		return experiment.GreaterThan(y), nil
	case "<":
		return experiment.LessThan(y), nil
	case ">=":
		return experiment.AtLeast(y), nil
	case "<=":
		return experiment.AtMost(y), nil
	}
	p.pos = start
	return experiment.Predicate{}, p.errorf("unknown operator %q", op)
}

func (p *parser) operator() string {
	for _, op := range []string{">=", "<=", "==", "!=", ">", "<", "=", "~"} {
		if strings.HasPrefix(p.rest(), op) {
			p.pos += len(op)
			return op
		}
	}
	rest := p.rest()
	if strings.HasPrefix(rest, "in") && (len(rest) == 2 || !isNameRune(rune(rest[2]))) {
		p.pos += 2
		return "in"
	}
	return ""
}

func (p *parser) interval() (experiment.Predicate, error) {
	if !p.consume("[") {
		return experiment.Predicate{}, p.errorf("expected '['")
	}
	p.skipSpace()
	a, err := p.number()
	if err != nil {
		return experiment.Predicate{}, err
	}
	p.skipSpace()
	if !p.consume(",") {
		return experiment.Predicate{}, p.errorf("expected ','")
	}
	p.skipSpace()
	b, err := p.number()
	if err != nil {
		return experiment.Predicate{}, err
	}
	p.skipSpace()
	if !p.consume("]") {
		return experiment.Predicate{}, p.errorf("expected ']'")
	}
	if a > b {
		return experiment.Predicate{}, p.errorf("empty interval [%v, %v]", a, b)
	}
	return experiment.Between(a, b), nil
}

func (p *parser) approx() (experiment.Predicate, error) {
	y, err := p.number()
	if err != nil {
		return experiment.Predicate{}, err
	}
	p.skipSpace()
	if !p.consume("±") && !p.consume("+-") {
		return experiment.Approximately(y, experiment.DefaultTolerance), nil
	}
	p.skipSpace()
	tol, err := p.number()
	if err != nil {
		return experiment.Predicate{}, err
	}
	if tol < 0 {
		return experiment.Predicate{}, p.errorf("negative tolerance %v", tol)
	}
	return experiment.Approximately(y, tol), nil
}

// value parses an equality operand: a number, a boolean, a quoted string or
// a bare word.
func (p *parser) value() (any, error) {
	if p.consume(`"`) {
		end := strings.IndexByte(p.rest(), '"')
		if end < 0 {
			return nil, p.errorf("unterminated string")
		}
		s := p.rest()[:end]
		p.pos += end + 1
		return s, nil
	}
	tok := p.token()
	if tok == "" {
		return nil, p.errorf("expected a value")
	}
	switch tok {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	if x, err := strconv.ParseFloat(tok, 64); err == nil {
		return x, nil
	}
	return tok, nil
}

func (p *parser) number() (float64, error) {
	start := p.pos
	tok := p.token()
	x, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		p.pos = start
		return 0, p.errorf("expected a number")
	}
	return x, nil
}

// token reads up to the next space or delimiter.
func (p *parser) token() string {
	start := p.pos
	for !p.done() {
		c := p.input[p.pos]
		if c == ' ' || c == '\t' || c == ',' || c == ']' {
			break
		}
		// stop before a tolerance marker, but keep the sign of an exponent
		if strings.HasPrefix(p.rest(), "±") || (strings.HasPrefix(p.rest(), "+-") && p.pos > start) {
			break
		}
		p.pos++
	}
	return p.input[start:p.pos]
}

func (p *parser) name() string {
	rest := p.rest()
	end := len(rest)
	for i, r := range rest {
		if !isNameRune(r) {
			end = i
			break
		}
	}
	p.pos += end
	return rest[:end]
}

func isNameRune(r rune) bool {
	return r == '_' || r == '.' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (p *parser) consume(s string) bool {
	if strings.HasPrefix(p.rest(), s) {
		p.pos += len(s)
		return true
	}
	return false
}

func (p *parser) skipSpace() {
	for !p.done() && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

func (p *parser) peek() byte {
	if p.done() {
		return 0
	}
	return p.input[p.pos]
}

func (p *parser) rest() string { return p.input[p.pos:] }

func (p *parser) done() bool { return p.pos >= len(p.input) }

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Input: p.input, Offset: p.pos, Msg: fmt.Sprintf(format, args...)}
}
