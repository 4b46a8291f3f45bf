/*
 * Sigma DP - Console reader
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

package reader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/peterh/liner"
	"github.com/rcornwell/sigmadp/command/parser"
	"github.com/rcornwell/sigmadp/emu/core"
)

const prompt = "SDP> "

// File command history is kept in, empty for none.
var HistoryFile = ".sigmadp_history"

// Read commands from the terminal until quit or end of input.
func ConsoleReader(core *core.Core) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(parser.CompleteCmd)
	loadHistory(line)
	defer saveHistory(line)

	for {
		command, err := line.Prompt(prompt)
		if err == nil {
			line.AppendHistory(command)
			quit, err := parser.ProcessCommand(command, core)
			if err != nil {
				fmt.Println("Error: " + err.Error())
			}
			if quit {
				return
			}
			continue
		}

		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			return
		}
		slog.Error("error reading line: " + err.Error())
		return
	}
}

// Run commands from file, stop at first error. Returns true on quit.
func RunScript(core *core.Core, name string) (bool, error) {
	f, err := os.Open(name)
	if err != nil {
		return false, err
	}
	defer f.Close()
	return runCommands(core, f, name)
}

func runCommands(core *core.Core, r io.Reader, name string) (bool, error) {
	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		quit, err := parser.ProcessCommand(scanner.Text(), core)
		if err != nil {
			return false, fmt.Errorf("%s line %d: %w", name, lineNumber, err)
		}
		if quit {
			return true, nil
		}
	}
	return false, scanner.Err()
}

func loadHistory(line *liner.State) {
	if HistoryFile == "" {
		return
	}
	f, err := os.Open(HistoryFile)
	if err != nil {
		return
	}
	defer f.Close()
	if _, err := line.ReadHistory(f); err != nil {
		slog.Warn("unable to read history: " + err.Error())
	}
}

func saveHistory(line *liner.State) {
	if HistoryFile == "" {
		return
	}
	f, err := os.Create(HistoryFile)
	if err != nil {
		slog.Warn("unable to save history: " + err.Error())
		return
	}
	defer f.Close()
	if _, err := line.WriteHistory(f); err != nil {
		slog.Warn("unable to save history: " + err.Error())
	}
}
