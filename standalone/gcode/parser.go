package gcode

import (
	"errors"
	"io"

	"polargraph/core"
	"polargraph/protocol"
)

// ErrStreamClosed is returned when the input ends before a line terminator
var ErrStreamClosed = errors.New("input stream closed")

// Line summarises what one parsed command line did to the registers
type Line struct {
	Words           int  // words applied (including accepted no-ops like G21)
	Motion          bool // a motion mode, X, Y or an arc word was applied
	Diagnostics     int  // invalid or unhandled words reported
	CalculateCenter bool // R was given: the arc center must be derived
	CalculateRadius bool // I or J was given: the center is an offset from the start
}

// Parser reads command lines from a byte stream into a register bank.
// Registers are updated word by word; a line with a bad word still applies
// every good word around it.
type Parser struct {
	in  io.ByteReader
	out io.Writer

	// One byte of lookahead for number parsing
	next   byte
	peeked bool
	err    error
}

// NewParser creates a parser reading from in and printing diagnostics to out
func NewParser(in io.ByteReader, out io.Writer) *Parser {
	return &Parser{
		in:  in,
		out: out,
	}
}

// ParseLine parses a single line into regs
func (p *Parser) ParseLine(regs *Registers) (Line, error) {
	var line Line

	for {
		c, err := p.readByte()
		if err != nil {
			return line, closed(err)
		}

		switch {
		case c == '\n':
			// EOL
			return line, nil
		case c == '%':
			// Start or end of program
			continue
		case c == '(':
			// Discard comment, no nesting
			if err := p.skipComment(); err != nil {
				return line, closed(err)
			}
			continue
		case isSpace(c):
			continue
		}

		if !isUpper(c) {
			p.report(protocol.InvalidCharacter(c))
			line.Diagnostics++
			// Drop whatever number the bad byte carried
			p.parseFloat()
			continue
		}

		value := p.parseFloat()
		if !p.apply(regs, &line, c, value) {
			p.report(protocol.UnhandledCommand(c, value))
			line.Diagnostics++
		}
	}
}

// apply stores a recognised word, returning false for unsupported ones
func (p *Parser) apply(regs *Registers, line *Line, letter byte, value float64) bool {
	if letter == 'G' {
		switch value {
		case ModeRapid, ModeLinear, ModeCW, ModeCCW:
			// Movement commands
			regs.Set(letter, value)
			line.Words++
			line.Motion = true
			return true
		case 21:
			// Units are always millimeters
			line.Words++
			return true
		}
		return false
	}

	if !isConfigValue(letter) {
		return false
	}

	switch letter {
	case 'I', 'J':
		line.CalculateRadius = true
		line.Motion = true
	case 'R':
		line.CalculateCenter = true
		line.Motion = true
	case 'X', 'Y':
		line.Motion = true
	}
	regs.Set(letter, value)
	line.Words++
	return true
}

// isConfigValue reports letters whose values are stored as-is
func isConfigValue(c byte) bool {
	switch c {
	case 'X', 'Y', 'Z', 'I', 'J', 'R', 'T':
		return true
	}
	return false
}

func (p *Parser) report(msg string) {
	core.DebugPrintln("gcode: " + msg)
	if p.out == nil {
		return
	}
	io.WriteString(p.out, msg+protocol.Newline)
}

func (p *Parser) skipComment() error {
	for {
		c, err := p.readByte()
		if err != nil {
			return err
		}
		if c == ')' {
			return nil
		}
	}
}

// parseFloat reads a decimal literal after optional blanks. Bytes that do
// not belong to the number are left for the next read. A missing number
// reads as 0.
func (p *Parser) parseFloat() float64 {
	c, ok := p.peekByte()
	for ok && (c == ' ' || c == '\t') {
		p.readByte()
		c, ok = p.peekByte()
	}
	if !ok {
		return 0
	}

	negative := false
	if c == '-' || c == '+' {
		negative = c == '-'
		p.readByte()
	}

	intPart := 0.0
	fracPart := 0.0
	divisor := 1.0

	// Parse integer part
	for {
		c, ok = p.peekByte()
		if !ok || c < '0' || c > '9' {
			break
		}
		intPart = intPart*10 + float64(c-'0')
		p.readByte()
	}

	// Parse fractional part
	if ok && c == '.' {
		p.readByte()
		for {
			c, ok = p.peekByte()
			if !ok || c < '0' || c > '9' {
				break
			}
			fracPart = fracPart*10 + float64(c-'0')
			divisor *= 10
			p.readByte()
		}
	}

	value := intPart + fracPart/divisor
	if negative {
		value = -value
	}
	return value
}

func (p *Parser) peekByte() (byte, bool) {
	if p.peeked {
		return p.next, true
	}
	if p.err != nil {
		return 0, false
	}
	b, err := p.in.ReadByte()
	if err != nil {
		p.err = err
		return 0, false
	}
	p.next = b
	p.peeked = true
	return b, true
}

func (p *Parser) readByte() (byte, error) {
	if p.peeked {
		p.peeked = false
		return p.next, nil
	}
	if p.err != nil {
		return 0, p.err
	}
	b, err := p.in.ReadByte()
	if err != nil {
		p.err = err
	}
	return b, err
}

// closed maps end of input to ErrStreamClosed
func closed(err error) error {
	if errors.Is(err, io.EOF) {
		return ErrStreamClosed
	}
	return err
}

// isSpace matches the C locale whitespace set
func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\v', '\f':
		return true
	}
	return false
}
