package core

import (
	"bytes"
	"strings"

	"relayio/protocol"
)

// Action mutates the output state when its rule is selected
type Action func(o *Outputs)

// Rule is one entry of the command table. A command selects the rule when
// it contains Token as a substring.
type Rule struct {
	ID     uint16
	Token  string
	Action Action
}

// CommandTable is an ordered list of rules. Registration order is the
// precedence order: the first rule whose token matches wins.
type CommandTable struct {
	rules   []Rule
	byToken map[string]uint16
}

// NewCommandTable creates an empty command table
func NewCommandTable() *CommandTable {
	return &CommandTable{
		byToken: make(map[string]uint16),
	}
}

// Register appends a rule and returns its ID. Registering a token twice
// keeps the first rule.
func (t *CommandTable) Register(token string, action Action) uint16 {
	if id, exists := t.byToken[token]; exists {
		return id
	}

	id := uint16(len(t.rules))
	t.rules = append(t.rules, Rule{ID: id, Token: token, Action: action})
	t.byToken[token] = id
	return id
}

// Rules returns the rules in precedence order
func (t *CommandTable) Rules() []Rule {
	return t.rules
}

// Count returns the number of registered rules
func (t *CommandTable) Count() int {
	return len(t.rules)
}

// Match returns the first rule whose token is contained in cmd.
// cmd must already be case-folded.
func (t *CommandTable) Match(cmd []byte) (*Rule, bool) {
	for i := range t.rules {
		if bytes.Contains(cmd, []byte(t.rules[i].Token)) {
			return &t.rules[i], true
		}
	}
	return nil, false
}

// Dictionary lists the tokens in precedence order, one per line
func (t *CommandTable) Dictionary() string {
	var sb strings.Builder
	for _, r := range t.rules {
		sb.WriteString(r.Token)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Fixed output patterns for the global commands
const (
	AllOnRelays     = protocol.RelayMask
	AllOnIndicators = protocol.IndicatorMask
	AllOnContactors = protocol.ContactorMask
)

// DefaultCommands builds the board vocabulary:
//
//	relay{c..h}{on|off}, rgb{1..3}{on|off}, ac{1|2}{on|off}, allon, alloff
//
// Matching is by substring, so the order here is part of the contract.
// Each "on" token is checked before its "off" twin.
func DefaultCommands() *CommandTable {
	t := NewCommandTable()

	for i := 0; i < protocol.RelayCount; i++ {
		name := "relay" + string(rune(protocol.RelayNames[i]+'a'-'A'))
		bit := uint8(protocol.RelayFirstBit + i)
		t.Register(name+"on", setBit(GroupRelays, bit, true))
		t.Register(name+"off", setBit(GroupRelays, bit, false))
	}

	for i := 0; i < protocol.IndicatorCount; i++ {
		name := "rgb" + itoa(i+1)
		t.Register(name+"on", setBit(GroupIndicators, uint8(i), true))
		t.Register(name+"off", setBit(GroupIndicators, uint8(i), false))
	}

	for i := 0; i < protocol.ContactorCount; i++ {
		name := "ac" + itoa(i+1)
		t.Register(name+"on", setBit(GroupContactors, uint8(i), true))
		t.Register(name+"off", setBit(GroupContactors, uint8(i), false))
	}

	t.Register("allon", func(o *Outputs) {
		o.SetAll(AllOnRelays, AllOnIndicators, AllOnContactors)
	})
	t.Register("alloff", func(o *Outputs) {
		o.SetAll(0, 0, 0)
	})

	return t
}

func setBit(g Group, bit uint8, on bool) Action {
	return func(o *Outputs) {
		o.SetBit(g, bit, on)
	}
}

// Interpreter applies text commands to an output state
type Interpreter struct {
	table   *CommandTable
	outputs *Outputs
	buf     protocol.LineBuffer

	applied  uint32
	rejected uint32
}

// NewInterpreter creates an interpreter over table and outputs
func NewInterpreter(table *CommandTable, outputs *Outputs) *Interpreter {
	return &Interpreter{table: table, outputs: outputs}
}

// Interpret copies at most maxLen-1 bytes of raw (stopping at a NUL) into a
// bounded buffer, folds ASCII letters to lower case and applies the first
// matching rule. Returns false when no rule matched; the state is then
// unchanged.
func (in *Interpreter) Interpret(raw []byte, maxLen int) bool {
	limit := maxLen - 1
	if limit > protocol.BufferSize-1 {
		limit = protocol.BufferSize - 1
	}

	in.buf.Reset()
	for i := 0; i < len(raw) && i < limit; i++ {
		if raw[i] == 0 {
			break
		}
		in.buf.AppendByte(raw[i])
	}
	in.buf.Terminate()

	cmd := in.buf.Bytes()
	foldASCII(cmd)

	DebugPrintln("I2C RX: " + string(cmd))

	rule, ok := in.table.Match(cmd)
	if !ok {
		in.rejected++
		DebugPrintln("Unknown")
		return false
	}

	rule.Action(in.outputs)
	in.applied++
	return true
}

// Command returns the folded text of the last interpreted command
func (in *Interpreter) Command() string {
	return in.buf.String()
}

// Stats returns how many commands were applied and rejected
func (in *Interpreter) Stats() (applied, rejected uint32) {
	return in.applied, in.rejected
}

// foldASCII lowers A-Z in place and leaves every other byte alone
func foldASCII(b []byte) {
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
}
