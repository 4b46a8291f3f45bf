/*
 * Sigma DP - Command line completion
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
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/rcornwell/sigmadp/command/command"
	dev "github.com/rcornwell/sigmadp/emu/device"
	ch "github.com/rcornwell/sigmadp/emu/sys_channel"
)

// Called to complete a command line, during line editing.
func CompleteCmd(commandLine string) []string {
	line := cmdLine{line: commandLine}
	name := line.getWord(false)

	// We have a command, let it try and complete it.
	if line.pos < len(line.line) && unicode.IsSpace(rune(line.line[line.pos])) {
		match := matchList(name)
		if len(match) != 1 || match[0].Complete == nil {
			return nil
		}
		return match[0].Complete(&line)
	}

	var matches []string
	for _, m := range cmdList {
		if strings.HasPrefix(m.Name, name) {
			matches = append(matches, m.Name+" ")
		}
	}
	slices.Sort(matches)
	return matches
}

// Every address that has a command interface, units of multi unit
// controllers are listed separately.
func deviceAddresses() []uint16 {
	list := []uint16{}
	for _, dva := range ch.Devices() {
		d, err := ch.GetDevice(dva)
		if err != nil {
			continue
		}
		if (dva & dev.DvaMulti) == 0 {
			list = append(list, dva)
			continue
		}
		for un := range uint16(dev.DvaMUnit + 1) {
			if _, err := d.Command(dva | un); err == nil {
				list = append(list, dva|un)
			}
		}
	}
	return list
}

// Split off the last word being typed.
func (line *cmdLine) lastWord() (string, string) {
	rest := line.line[line.pos:]
	idx := strings.LastIndexFunc(rest, unicode.IsSpace)
	return line.line[:line.pos+idx+1], rest[idx+1:]
}

// Complete device address, only devices with options of cmdType if not 0.
func (line *cmdLine) matchDevice(cmdType int) []string {
	line.skipSpace()
	leading, partial := line.lastWord()
	if strings.ContainsFunc(line.line[line.pos:len(leading)], func(r rune) bool { return !unicode.IsSpace(r) }) {
		return nil
	}
	partial = strings.ToLower(partial)
	devices := []string{}
	for _, dva := range deviceAddresses() {
		str := fmt.Sprintf("%03x", dva)
		if !strings.HasPrefix(str, partial) {
			continue
		}
		if cmdType != 0 && !hasOptions(dva, cmdType) {
			continue
		}
		devices = append(devices, leading+str+" ")
	}
	return devices
}

func hasOptions(dva uint16, cmdType int) bool {
	d, err := ch.GetDevice(dva)
	if err != nil {
		return false
	}
	c, err := d.Command(dva)
	if err != nil {
		return false
	}
	for _, opt := range c.Options("") {
		if (opt.OptionValid & cmdType) != 0 {
			return true
		}
	}
	return false
}

// Complete option names or list values after the device address.
func (line *cmdLine) scanOptions(cmdType int) []string {
	line.skipSpace()
	pos := line.pos
	_, device, err := line.getDevice()
	if err != nil || line.pos >= len(line.line) {
		line.pos = pos
		return line.matchDevice(cmdType)
	}
	leading, partial := line.lastWord()
	opts := device.Options("")

	if name, value, ok := strings.Cut(partial, "="); ok {
		match := matchOption(strings.ToLower(name), opts, cmdType)
		if match.OptionType != command.OptionList {
			return nil
		}
		values := []string{}
		for _, v := range match.OptionList {
			if strings.HasPrefix(v, strings.ToLower(value)) {
				values = append(values, leading+name+"="+v+" ")
			}
		}
		return values
	}

	matches := []string{}
	partial = strings.ToLower(partial)
	for _, opt := range opts {
		if (opt.OptionValid&cmdType) == 0 || !strings.HasPrefix(opt.Name, partial) {
			continue
		}
		sep := "="
		if opt.OptionType == command.OptionSwitch || cmdType == command.ValidShow {
			sep = " "
		}
		matches = append(matches, leading+opt.Name+sep)
	}
	return matches
}

func deviceComplete(line *cmdLine) []string {
	return line.matchDevice(0)
}

func attachComplete(line *cmdLine) []string {
	return line.scanOptions(command.ValidAttach)
}

func setComplete(line *cmdLine) []string {
	return line.scanOptions(command.ValidSet)
}

func showComplete(line *cmdLine) []string {
	return line.scanOptions(command.ValidShow)
}
