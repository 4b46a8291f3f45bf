/*
 * Sigma DP - Command parser
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package parser

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/rcornwell/sigmadp/command/command"
	core "github.com/rcornwell/sigmadp/emu/core"
	ch "github.com/rcornwell/sigmadp/emu/sys_channel"
)

type cmd struct {
	Name     string // Command name.
	Min      int    // Minimum match size.
	Process  func(*cmdLine, *core.Core) (bool, error)
	Complete func(*cmdLine) []string
}

type cmdLine struct {
	line string // Current command.
	pos  int    // Position in line.
}

// Where command output is written.
var Output io.Writer = os.Stdout

// Execute the command line given. Returns true if the simulator should exit.
func ProcessCommand(commandLine string, core *core.Core) (bool, error) {
	line := cmdLine{line: commandLine}
	command := line.getWord(false)
	if command == "" {
		if !line.isEOL() {
			return false, errors.New("invalid command")
		}
		return false, nil
	}

	match := matchList(command)
	if len(match) == 0 {
		return false, errors.New("command not found: " + command)
	}

	if len(match) > 1 {
		return false, errors.New("unique command not found: " + command)
	}

	return match[0].Process(&line, core)
}

// Check if command matches at least to minimum length.
func matchCommand(match cmd, command string) bool {
	if len(command) > len(match.Name) || len(command) < match.Min {
		return false
	}
	return strings.HasPrefix(match.Name, command)
}

// Check if command matches one of the commands.
func matchList(command string) []cmd {
	if command == "" {
		return []cmd{}
	}

	var match []cmd
	for _, m := range cmdList {
		if m.Name == command {
			return []cmd{m}
		}
		if matchCommand(m, command) {
			match = append(match, m)
		}
	}
	return match
}

// Match list of options.
func matchOption(option string, optList []command.Options, cmdType int) command.Options {
	for _, opt := range optList {
		if (opt.OptionValid & cmdType) == 0 {
			continue
		}
		if opt.Name == option {
			return opt
		}
	}
	return command.Options{OptionType: -1}
}

// Skip forward over line until none whitespace character found.
func (line *cmdLine) skipSpace() {
	for line.pos < len(line.line) && unicode.IsSpace(rune(line.line[line.pos])) {
		line.pos++
	}
}

// Check if at end of line.
func (line *cmdLine) isEOL() bool {
	if line.pos >= len(line.line) {
		return true
	}
	return line.line[line.pos] == '#'
}

// Return current character and advance to next. 0 at EOL.
func (line *cmdLine) getCurrent() byte {
	if line.isEOL() {
		return 0
	}
	by := line.line[line.pos]
	line.pos++
	return by
}

// Peek at current character.
func (line *cmdLine) peek() byte {
	if line.isEOL() {
		return 0
	}
	return line.line[line.pos]
}

// True if at end of a token.
func (line *cmdLine) atSeparator() bool {
	return line.isEOL() || unicode.IsSpace(rune(line.line[line.pos]))
}

// Parse string that is "string" or just string. Inside quotes "" is a quote.
func (line *cmdLine) parseQuoteString() (string, bool) {
	line.skipSpace()
	if line.isEOL() {
		return "", false
	}

	if line.peek() != '"' {
		start := line.pos
		for !line.atSeparator() {
			line.pos++
		}
		return line.line[start:line.pos], true
	}

	line.pos++
	value := ""
	for line.pos < len(line.line) {
		by := line.line[line.pos]
		line.pos++
		if by == '"' {
			if line.pos < len(line.line) && line.line[line.pos] == '"' {
				line.pos++
			} else {
				return value, true
			}
		}
		value += string(by)
	}
	return value, false
}

// Return next token up to a separator.
func (line *cmdLine) getToken() string {
	line.skipSpace()
	start := line.pos
	for !line.atSeparator() {
		line.pos++
	}
	return line.line[start:line.pos]
}

// Parse decimal number.
func (line *cmdLine) getNumber() (int, error) {
	pos := line.pos
	token := line.getToken()
	if token == "" {
		return 0, errors.New("number expected")
	}
	value, err := strconv.ParseUint(token, 10, 31)
	if err != nil {
		line.pos = pos
		return 0, errors.New("not a number: " + token)
	}
	return int(value), nil
}

// Parse hex number.
func (line *cmdLine) getHex() (uint32, error) {
	pos := line.pos
	token := line.getToken()
	if token == "" {
		return 0, errors.New("hex number expected")
	}
	value, err := strconv.ParseUint(token, 16, 32)
	if err != nil {
		line.pos = pos
		return 0, errors.New("not a hex number: " + token)
	}
	return uint32(value), nil
}

// Parse a name, letter followed by letters and digits. If equal is set
// the name may be terminated by =.
func (line *cmdLine) getWord(equal bool) string {
	line.skipSpace()

	pos := line.pos
	if !unicode.IsLetter(rune(line.peek())) {
		return ""
	}
	for !line.atSeparator() {
		by := line.line[line.pos]
		if by == '=' && equal {
			break
		}
		if !unicode.IsLetter(rune(by)) && !unicode.IsDigit(rune(by)) {
			line.pos = pos
			return ""
		}
		line.pos++
	}
	return strings.ToLower(line.line[pos:line.pos])
}

// Get the device address and its command interface.
func (line *cmdLine) getDevice() (uint16, command.Command, error) {
	dva, err := line.getHex()
	if err != nil {
		return 0, nil, errors.New("device address expected")
	}
	if dva > 0xfff {
		return 0, nil, fmt.Errorf("device address out of range: %x", dva)
	}
	addr := uint16(dva)
	device, err := ch.GetDevice(addr)
	if err != nil {
		return 0, nil, err
	}
	cmd, err := device.Command(addr)
	if err != nil {
		return 0, nil, err
	}
	return addr, cmd, nil
}

// Get an option.
func (line *cmdLine) getOption(opts []command.Options, cmdType int) (*command.CmdOption, error) {
	name := line.getWord(true)

	// For attach a bare argument is the file name.
	if name == "" {
		if cmdType != command.ValidAttach {
			return nil, errors.New("invalid option: " + line.getToken())
		}
		file, ok := line.parseQuoteString()
		if !ok {
			return nil, errors.New("invalid file name")
		}
		return &command.CmdOption{Name: "file", EqualOpt: file}, nil
	}

	opt := command.CmdOption{Name: name}
	match := matchOption(name, opts, cmdType)
	switch match.OptionType {
	case -1:
		if cmdType == command.ValidAttach && line.atSeparator() {
			return &command.CmdOption{Name: "file", EqualOpt: name}, nil
		}
		return nil, errors.New("unknown option: " + name)

	case command.OptionSwitch:
		if !line.atSeparator() {
			return nil, errors.New("switch option can't have arguments: " + name)
		}

	case command.OptionFile:
		if line.getCurrent() != '=' {
			return nil, errors.New("file option must be followed by file name: " + name)
		}
		file, ok := line.parseQuoteString()
		if !ok {
			return nil, errors.New("file name not valid: " + name)
		}
		opt.EqualOpt = file

	case command.OptionNumber:
		if line.getCurrent() != '=' {
			return nil, errors.New("number options must be followed by number: " + name)
		}
		if line.atSeparator() {
			return nil, errors.New("number options must be followed by number: " + name)
		}
		num, err := line.getNumber()
		if err != nil {
			return nil, errors.New("number options must be followed by number: " + name)
		}
		opt.Value = num

	case command.OptionHex:
		if line.getCurrent() != '=' || line.atSeparator() {
			return nil, errors.New("hex options must be followed by hex number: " + name)
		}
		num, err := line.getHex()
		if err != nil {
			return nil, errors.New("hex options must be followed by hex number: " + name)
		}
		opt.Value = int(num)

	case command.OptionName:
		if line.getCurrent() != '=' {
			return nil, errors.New("option must be followed by name: " + name)
		}
		opt.EqualOpt = line.getToken()
		if opt.EqualOpt == "" {
			return nil, errors.New("option must be followed by name: " + name)
		}

	case command.OptionList:
		if line.getCurrent() != '=' {
			return nil, errors.New("option must be followed by one of list: " + name)
		}
		value := strings.ToLower(line.getToken())
		opt.EqualOpt = value
		for _, mod := range match.OptionList {
			if strings.ToLower(mod) == value {
				return &opt, nil
			}
		}
		return nil, fmt.Errorf("%s not valid for %s, use one of: %s", value, name,
			strings.Join(match.OptionList, " "))

	default:
		return nil, errors.New("invalid option type: " + name)
	}
	return &opt, nil
}

// Scan options and return a list of options.
func (line *cmdLine) getOptions(device command.Command, cmdType int) ([]*command.CmdOption, error) {
	optlist := []*command.CmdOption{}
	opts := device.Options("")
	for {
		line.skipSpace()
		if line.isEOL() {
			return optlist, nil
		}
		opt, err := line.getOption(opts, cmdType)
		if err != nil {
			return optlist, err
		}
		optlist = append(optlist, opt)
	}
}

// Get options for show command, names only.
func (line *cmdLine) getShowOptions(device command.Command) ([]*command.CmdOption, error) {
	optlist := []*command.CmdOption{}
	opts := device.Options("")
	for {
		line.skipSpace()
		if line.isEOL() {
			return optlist, nil
		}
		name := line.getWord(false)
		if name == "" || !line.atSeparator() {
			return nil, errors.New("show options take no values")
		}
		match := matchOption(name, opts, command.ValidShow)
		if match.OptionType == -1 {
			return nil, errors.New("invalid option: " + name)
		}
		optlist = append(optlist, &command.CmdOption{Name: name})
	}
}

// Error if line has more arguments.
func (line *cmdLine) checkEOL() error {
	line.skipSpace()
	if !line.isEOL() {
		return errors.New("extra arguments to command: " + line.line[line.pos:])
	}
	return nil
}
