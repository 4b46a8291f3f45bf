/*
 * Sigma DP - Configuration file parser
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

package configparser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"unicode"
)

// List of options to pass to create routine.
type Option struct {
	Name     string    // Name of option.
	EqualOpt string    // Value of string after =.
	Value    []*string // Values following comma.
}

// Option after model.
type FirstOption struct {
	devNum uint16 // Value of option if hex.
	isAddr bool   // Valid address in devNum
	value  string // String value of option.
}

// Current option line being parsed.
type optionLine struct {
	line string // Current option line.
	pos  int    // Current position in line.
}

/* Configuration file format:
 *
 * '#' indicates comment, rest of line is ignored.
 * <line> := <model> <whitespace> <address> <whitespace> <options> |
 *            <option> <whitespace> <value> |
 *            <switch>
 * <address> ::= <hexnumber>
 * <options> ::= *(<option> *(<whitespace>))
 * <option> ::= <name> ['=' <value>] *(',' *(<whitespace>) <value>)
 * <value> ::= <string> | '"' *(<letter> | <whitespace> | '""') '"'
 * <name> ::= <letter> *(<letter> | <number>)
 * Option names may also start with a number.
 */

const (
	TypeModel   = 1 + iota // Device, requires address.
	TypeOption             // Accepts a single value.
	TypeOptions            // Accepts a value followed by options.
	TypeSwitch             // Option only used to set a flag.
)

// NoDev is passed when first value was not an address.
const NoDev uint16 = 0xffff

// Model creation list.
type modelDef struct {
	create func(uint16, string, []Option) error
	ty     int
}

var models = map[string]modelDef{}

// Addresses of devices created from configuration, in order.
var Devices []uint16

var lineNumber int

// Return type of model or 0 if no model.
func getModel(mod string) int {
	model, ok := models[strings.ToUpper(mod)]
	if !ok {
		return 0
	}
	return model.ty
}

func register(mod string, ty int, fn func(uint16, string, []Option) error) {
	mod = strings.ToUpper(mod)
	slog.Debug("Registering: " + mod)
	models[mod] = modelDef{create: fn, ty: ty}
}

// Register a device type, should be called from init functions.
func RegisterModel(mod string, ty int, fn func(uint16, string, []Option) error) {
	register(mod, ty, fn)
}

// Register a switch, should be called from init functions.
func RegisterSwitch(mod string, fn func(uint16, string, []Option) error) {
	register(mod, TypeSwitch, fn)
}

// Register an option with one value, should be called from init functions.
func RegisterOption(mod string, fn func(uint16, string, []Option) error) {
	register(mod, TypeOption, fn)
}

// Look up a model of the given type.
func lookup(mod string, ty int, kind string) (modelDef, error) {
	mod = strings.ToUpper(mod)
	model, ok := models[mod]
	if !ok {
		return model, fmt.Errorf("unknown %s: %s", kind, mod)
	}
	if model.ty != ty {
		return model, fmt.Errorf("not a %s type: %s", kind, mod)
	}
	return model, nil
}

// Create a device of type model.
func createModel(mod string, first *FirstOption, options []Option) error {
	model, err := lookup(mod, TypeModel, "model")
	if err != nil {
		return err
	}
	err = model.create(first.devNum, "", options)
	if err == nil {
		Devices = append(Devices, first.devNum)
	}
	return err
}

// Create a option with one parameter.
func createOption(mod string, first *FirstOption) error {
	model, err := lookup(mod, TypeOption, "option")
	if err != nil {
		return err
	}
	return model.create(first.devNum, first.value, []Option{})
}

// Create a option with options.
func createOptions(mod string, first *FirstOption, options []Option) error {
	model, err := lookup(mod, TypeOptions, "options")
	if err != nil {
		return err
	}
	return model.create(first.devNum, first.value, options)
}

// Create switch option.
func createSwitch(mod string) error {
	model, err := lookup(mod, TypeSwitch, "switch")
	if err != nil {
		return err
	}
	return model.create(0, "", nil)
}

// Load in a configuration file.
func LoadConfigFile(name string) error {
	file, err := os.Open(name)
	if err != nil {
		return err
	}
	defer file.Close()
	return LoadConfig(file)
}

// Load configuration from reader.
func LoadConfig(r io.Reader) error {
	lineNumber = 0
	reader := bufio.NewReader(r)
	for {
		text, err := reader.ReadString('\n')
		lineNumber++
		if len(text) == 0 && err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}
		line := optionLine{line: strings.TrimRight(text, "\r\n")}
		perr := line.parseLine()
		if perr != nil {
			return fmt.Errorf("line %d: %w", lineNumber, perr)
		}
	}
	return nil
}

// Parse one line from file.
func (line *optionLine) parseLine() error {
	line.skipSpace()
	if line.isEOL() {
		return nil
	}
	model := line.getName()
	if model == "" {
		return fmt.Errorf("invalid model name at %d", line.pos)
	}
	switch getModel(model) {
	case TypeModel:
		first := line.parseFirst()
		if first == nil || !first.isAddr {
			return fmt.Errorf("device %s requires device address", model)
		}
		options, err := line.parseOptions()
		if err != nil {
			return err
		}
		return createModel(model, first, options)

	case TypeOption:
		first := line.parseFirst()
		line.skipSpace()
		if !line.isEOL() || first == nil {
			return fmt.Errorf("option: %s must be followed by one value", model)
		}
		return createOption(model, first)

	case TypeOptions:
		first := line.parseFirst()
		if first == nil {
			return fmt.Errorf("option: %s not followed by value", model)
		}
		options, err := line.parseOptions()
		if err != nil {
			return err
		}
		return createOptions(model, first, options)

	case TypeSwitch:
		line.skipSpace()
		if !line.isEOL() {
			return fmt.Errorf("switch option: %s followed by options", model)
		}
		return createSwitch(model)
	}
	return fmt.Errorf("no type: %s registered", model)
}

// Skip forward over line until none whitespace character found.
func (line *optionLine) skipSpace() {
	for line.pos < len(line.line) && unicode.IsSpace(rune(line.line[line.pos])) {
		line.pos++
	}
}

// Check if at end of line.
func (line *optionLine) isEOL() bool {
	return line.pos >= len(line.line) || line.line[line.pos] == '#'
}

// Return current character, 0 at end of line.
func (line *optionLine) peek() byte {
	if line.isEOL() {
		return 0
	}
	return line.line[line.pos]
}

// Return a name, letter followed by letters or numbers.
func (line *optionLine) getName() string {
	if !unicode.IsLetter(rune(line.peek())) {
		return ""
	}
	return line.getWord()
}

// Return run of letters and numbers.
func (line *optionLine) getWord() string {
	start := line.pos
	for !line.isEOL() {
		by := rune(line.line[line.pos])
		if !unicode.IsLetter(by) && !unicode.IsNumber(by) {
			break
		}
		line.pos++
	}
	return line.line[start:line.pos]
}

// Parse string that is "string" or just string. A quoted string may
// contain "" for a quote.
func (line *optionLine) getValue() (string, bool) {
	if line.peek() != '"' {
		start := line.pos
		for !line.isEOL() {
			by := line.line[line.pos]
			if by == ',' || unicode.IsSpace(rune(by)) {
				break
			}
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

// Parse first option parameter.
func (line *optionLine) parseFirst() *FirstOption {
	line.skipSpace()
	if line.isEOL() {
		return nil
	}

	value, ok := line.getValue()
	if !ok || value == "" {
		return nil
	}

	option := FirstOption{devNum: NoDev, value: value}
	devNum, err := strconv.ParseUint(value, 16, 12)
	if err == nil {
		option.devNum = uint16(devNum)
		option.isAddr = true
	}
	return &option
}

// Parse options for a line.
func (line *optionLine) parseOption() (*Option, error) {
	line.skipSpace()
	if line.isEOL() {
		return nil, nil
	}

	name := line.getWord()
	if name == "" {
		return nil, fmt.Errorf("invalid option at %d", line.pos)
	}
	option := Option{Name: name}

	if line.peek() == '=' {
		line.pos++
		v, ok := line.getValue()
		if !ok {
			return nil, fmt.Errorf("invalid quoted string at %d", line.pos)
		}
		option.EqualOpt = v
	}

	// Grab all , options
	line.skipSpace()
	for line.peek() == ',' {
		line.pos++
		line.skipSpace()
		v, ok := line.getValue()
		if !ok {
			return nil, fmt.Errorf("invalid quoted string at %d", line.pos)
		}
		if v != "" {
			option.Value = append(option.Value, &v)
		}
		line.skipSpace()
	}

	if !line.isEOL() && !unicode.IsSpace(rune(line.line[line.pos-1])) {
		return nil, fmt.Errorf("invalid option at %d", line.pos)
	}
	return &option, nil
}

// Collect all options for line.
func (line *optionLine) parseOptions() ([]Option, error) {
	options := []Option{}
	for {
		option, err := line.parseOption()
		if err != nil {
			return nil, err
		}
		if option == nil {
			break
		}
		options = append(options, *option)
	}
	return options, nil
}
