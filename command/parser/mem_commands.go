/*
 * Sigma DP - Memory examine and deposit
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

	core "github.com/rcornwell/sigmadp/emu/core"
	"github.com/rcornwell/sigmadp/util/hex"
)

// Words shown on one line of examine output.
const wordsPerLine = 4

// Examine memory: examine addr [n]. Address is a byte address, n words.
func examine(line *cmdLine, core *core.Core) (bool, error) {
	addr, err := line.getHex()
	if err != nil {
		return false, errors.New("address expected")
	}
	count := 1
	line.skipSpace()
	if !line.isEOL() {
		count, err = line.getNumber()
		if err != nil {
			return false, err
		}
	}
	if err = line.checkEOL(); err != nil {
		return false, err
	}

	addr &^= 3
	var out []string
	core.Call(func() { out, err = dumpMemory(core, addr, count) })
	for _, s := range out {
		fmt.Fprintln(Output, s)
	}
	return false, err
}

// Format count words starting at addr.
func dumpMemory(core *core.Core, addr uint32, count int) ([]string, error) {
	out := []string{}
	words := []uint32{}
	start := addr
	for range count {
		word, bad := core.Mem.GetWord(addr)
		if bad {
			if len(words) != 0 {
				out = append(out, hex.Line(start, 6, words))
			}
			return out, fmt.Errorf("address %06x outside memory", addr)
		}
		words = append(words, word)
		addr += 4
		if len(words) == wordsPerLine {
			out = append(out, hex.Line(start, 6, words))
			words = words[:0]
			start = addr
		}
	}
	if len(words) != 0 {
		out = append(out, hex.Line(start, 6, words))
	}
	return out, nil
}

// Deposit words: deposit addr value [value...].
func deposit(line *cmdLine, core *core.Core) (bool, error) {
	addr, err := line.getHex()
	if err != nil {
		return false, errors.New("address expected")
	}
	values := []uint32{}
	for {
		line.skipSpace()
		if line.isEOL() {
			break
		}
		value, err := line.getHex()
		if err != nil {
			return false, err
		}
		values = append(values, value)
	}
	if len(values) == 0 {
		return false, errors.New("deposit requires values")
	}

	addr &^= 3
	core.Call(func() {
		for _, value := range values {
			if core.Mem.PutWord(addr, value) {
				err = fmt.Errorf("address %06x outside memory", addr)
				return
			}
			addr += 4
		}
	})
	return false, err
}
