package rulevm

import (
	"encoding/binary"
	"errors"
	"fmt"
	"regexp"
)

// Opcodes from spec.md §6.2.
const (
	opPattern    = 0x01
	opKind       = 0x02
	opRegex      = 0x03
	opNthChild   = 0x04
	opAll        = 0x10
	opAny        = 0x11
	opNot        = 0x12
	opInside     = 0x13
	opHas        = 0x14
	opFollows    = 0x15
	opPrecedes   = 0x16
	opMatches    = 0x17
	opFix        = 0x20
	opConstraint = 0x30
	opTransform  = 0x31
	stopByEnd      = 0x40
	stopByNeighbor = 0x41
	stopByRule     = 0x42
	opRule    = 0x50
	opRuleset = 0xFF
)

// ErrTruncated, ErrUnknownOpcode and ErrCapacity are the decode failure
// modes of spec.md §7 kind 2 (validation failure): the decoder returns no
// ruleset and an error the caller surfaces as an empty result, never a
// panic.
var (
	ErrTruncated     = errors.New("rulevm: truncated bytecode")
	ErrUnknownOpcode = errors.New("rulevm: unknown opcode")
	ErrCapacity      = errors.New("rulevm: ruleset capacity exceeded")
	ErrMisuse        = errors.New("rulevm: malformed bytecode")
)

type decoder struct {
	buf []byte
	pos int
	rs  *Ruleset
}

func (d *decoder) remaining() int { return len(d.buf) - d.pos }

func (d *decoder) u8() (byte, error) {
	if d.remaining() < 1 {
		return 0, ErrTruncated
	}
	b := d.buf[d.pos]
	d.pos++
	return b, nil
}

func (d *decoder) u16() (uint16, error) {
	if d.remaining() < 2 {
		return 0, ErrTruncated
	}
	v := binary.LittleEndian.Uint16(d.buf[d.pos:])
	d.pos += 2
	return v, nil
}

func (d *decoder) u32() (uint32, error) {
	if d.remaining() < 4 {
		return 0, ErrTruncated
	}
	v := binary.LittleEndian.Uint32(d.buf[d.pos:])
	d.pos += 4
	return v, nil
}

func (d *decoder) str() (string, error) {
	n, err := d.u16()
	if err != nil {
		return "", err
	}
	if d.remaining() < int(n) {
		return "", ErrTruncated
	}
	s := string(d.buf[d.pos : d.pos+int(n)])
	d.pos += int(n)
	return s, nil
}

// Decode parses a §6.2 bytecode stream into a Ruleset. Decoding is
// single-pass and fails on any truncation, unknown opcode, capacity
// overflow, or misuse.
func Decode(buf []byte) (*Ruleset, error) {
	d := &decoder{buf: buf, rs: &Ruleset{}}

	op, err := d.u8()
	if err != nil {
		return nil, err
	}
	if op != opRuleset {
		return nil, fmt.Errorf("%w: expected RULESET opcode, got 0x%02x", ErrMisuse, op)
	}

	ver, err := d.u16()
	if err != nil {
		return nil, err
	}
	d.rs.Version = int(ver)

	ruleCount, err := d.u16()
	if err != nil {
		return nil, err
	}
	if int(ruleCount) > MaxRules {
		return nil, fmt.Errorf("%w: %d rules exceeds MAX_RULES", ErrCapacity, ruleCount)
	}

	for i := 0; i < int(ruleCount); i++ {
		if err := d.decodeRule(); err != nil {
			return nil, err
		}
	}

	return d.rs, nil
}

func (d *decoder) decodeRule() error {
	op, err := d.u8()
	if err != nil {
		return err
	}
	if op != opRule {
		return fmt.Errorf("%w: expected RULE opcode, got 0x%02x", ErrMisuse, op)
	}

	id, err := d.str()
	if err != nil {
		return err
	}
	sevByte, err := d.u8()
	if err != nil {
		return err
	}
	msg, err := d.str()
	if err != nil {
		return err
	}
	lang, err := d.u8()
	if err != nil {
		return err
	}

	conCount, err := d.u16()
	if err != nil {
		return err
	}
	if int(conCount) > MaxConstraints {
		return fmt.Errorf("%w: %d constraints exceeds MAX_CONSTRAINTS", ErrCapacity, conCount)
	}
	constraints := make([]Constraint, 0, conCount)
	for i := 0; i < int(conCount); i++ {
		c, err := d.decodeConstraint()
		if err != nil {
			return err
		}
		constraints = append(constraints, c)
	}

	trCount, err := d.u16()
	if err != nil {
		return err
	}
	if int(trCount) > MaxTransforms {
		return fmt.Errorf("%w: %d transforms exceeds MAX_TRANSFORMS", ErrCapacity, trCount)
	}
	transforms := make([]Transform, 0, trCount)
	for i := 0; i < int(trCount); i++ {
		t, err := d.decodeTransform()
		if err != nil {
			return err
		}
		transforms = append(transforms, t)
	}

	fix := ""
	hasFix := false
	if d.remaining() > 0 && d.buf[d.pos] == opFix {
		d.pos++
		fix, err = d.str()
		if err != nil {
			return err
		}
		hasFix = true
	}

	rootIdx, err := d.decodeNode()
	if err != nil {
		return err
	}

	if len(d.rs.Rules) >= MaxRules {
		return fmt.Errorf("%w: rule array full", ErrCapacity)
	}
	d.rs.Rules = append(d.rs.Rules, Rule{
		ID:          id,
		Severity:    severityFromByte(sevByte),
		Message:     msg,
		Lang:        lang,
		Root:        rootIdx,
		Fix:         fix,
		HasFix:      hasFix,
		Constraints: constraints,
		Transforms:  transforms,
	})
	return nil
}

func severityFromByte(b byte) Severity {
	switch b {
	case 0:
		return SeverityError
	case 1:
		return SeverityWarning
	case 2:
		return SeverityInfo
	case 3:
		return SeverityHint
	default:
		return SeverityError
	}
}

func (d *decoder) decodeConstraint() (Constraint, error) {
	op, err := d.u8()
	if err != nil {
		return Constraint{}, err
	}
	if op != opConstraint {
		return Constraint{}, fmt.Errorf("%w: expected CONSTRAINT opcode, got 0x%02x", ErrMisuse, op)
	}
	name, err := d.str()
	if err != nil {
		return Constraint{}, err
	}
	kindByte, err := d.u8()
	if err != nil {
		return Constraint{}, err
	}
	pat, err := d.str()
	if err != nil {
		return Constraint{}, err
	}
	kind := ConstraintRegex
	if kindByte == 1 {
		kind = ConstraintNotRegex
	}
	c := Constraint{Metavar: name, Kind: kind, Pattern: pat}
	if re, err := regexp.Compile(pat); err == nil {
		c.re = re
	}
	return c, nil
}

func (d *decoder) decodeTransform() (Transform, error) {
	op, err := d.u8()
	if err != nil {
		return Transform{}, err
	}
	if op != opTransform {
		return Transform{}, fmt.Errorf("%w: expected TRANSFORM opcode, got 0x%02x", ErrMisuse, op)
	}
	source, err := d.str()
	if err != nil {
		return Transform{}, err
	}
	opByte, err := d.u8()
	if err != nil {
		return Transform{}, err
	}
	arg, err := d.str()
	if err != nil {
		return Transform{}, err
	}
	var top TransformOp
	switch opByte {
	case 0:
		top = TransformSubstring
	case 1:
		top = TransformReplace
	case 2:
		top = TransformConvert
	default:
		return Transform{}, fmt.Errorf("%w: unknown transform op %d", ErrMisuse, opByte)
	}
	return Transform{Source: source, Op: top, Arg: arg}, nil
}

// decodeStopBy reads the one-byte stopBy tag. If the next byte is none of
// the three stopBy opcodes, stopBy defaults to neighbor and the reader
// rewinds one byte, per spec.md §6.2.
func (d *decoder) decodeStopBy() (StopBy, error) {
	if d.remaining() < 1 {
		return StopBy{}, ErrTruncated
	}
	b := d.buf[d.pos]
	switch b {
	case stopByEnd:
		d.pos++
		return StopBy{Kind: StopByEnd}, nil
	case stopByNeighbor:
		d.pos++
		return StopBy{Kind: StopByNeighbor}, nil
	case stopByRule:
		d.pos++
		idx, err := d.decodeNode()
		if err != nil {
			return StopBy{}, err
		}
		return StopBy{Kind: StopByRule, Rule: idx}, nil
	default:
		return StopBy{Kind: StopByNeighbor}, nil
	}
}

// decodeNode decodes one RuleNode (recursively decoding any children) and
// returns its index in the ruleset's node pool.
func (d *decoder) decodeNode() (int, error) {
	op, err := d.u8()
	if err != nil {
		return 0, err
	}

	var n RuleNode
	switch op {
	case opPattern:
		s, err := d.str()
		if err != nil {
			return 0, err
		}
		n = RuleNode{Tag: TagPattern, Str: s}
	case opKind:
		s, err := d.str()
		if err != nil {
			return 0, err
		}
		n = RuleNode{Tag: TagKind, Str: s}
	case opRegex:
		s, err := d.str()
		if err != nil {
			return 0, err
		}
		n = RuleNode{Tag: TagRegex, Str: s}
	case opNthChild:
		v, err := d.u32()
		if err != nil {
			return 0, err
		}
		n = RuleNode{Tag: TagNthChild, NthChild: int(v)}
	case opAll, opAny:
		count, err := d.u16()
		if err != nil {
			return 0, err
		}
		if int(count) > MaxChildren {
			return 0, fmt.Errorf("%w: %d children exceeds MAX_CHILDREN", ErrCapacity, count)
		}
		children := make([]int, 0, count)
		for i := 0; i < int(count); i++ {
			idx, err := d.decodeNode()
			if err != nil {
				return 0, err
			}
			children = append(children, idx)
		}
		tag := TagAll
		if op == opAny {
			tag = TagAny
		}
		n = RuleNode{Tag: tag, Children: children}
	case opNot:
		idx, err := d.decodeNode()
		if err != nil {
			return 0, err
		}
		n = RuleNode{Tag: TagNot, Child: idx}
	case opInside, opHas, opFollows, opPrecedes:
		sb, err := d.decodeStopBy()
		if err != nil {
			return 0, err
		}
		idx, err := d.decodeNode()
		if err != nil {
			return 0, err
		}
		var tag Tag
		switch op {
		case opInside:
			tag = TagInside
		case opHas:
			tag = TagHas
		case opFollows:
			tag = TagFollows
		case opPrecedes:
			tag = TagPrecedes
		}
		n = RuleNode{Tag: tag, Child: idx, StopBy: sb}
	case opMatches:
		idx, err := d.u16()
		if err != nil {
			return 0, err
		}
		n = RuleNode{Tag: TagMatches, RuleRef: int(idx)}
	default:
		return 0, fmt.Errorf("%w: 0x%02x", ErrUnknownOpcode, op)
	}

	if len(d.rs.Nodes) >= MaxRuleNodes {
		return 0, fmt.Errorf("%w: node pool full", ErrCapacity)
	}
	d.rs.Nodes = append(d.rs.Nodes, n)
	return len(d.rs.Nodes) - 1, nil
}
