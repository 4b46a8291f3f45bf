/*
 * Sigma DP - Console command interface
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

package command

// Option given to attach, set or show.
type CmdOption struct {
	Name     string // Name of option.
	EqualOpt string // Value of string after =.
	Value    int    // Numeric value, decimal or hex by option type.
}

// Kind of value an option takes.
const (
	OptionSwitch = 1 + iota // No value
	OptionFile              // File name
	OptionNumber            // Decimal number
	OptionHex               // Hex number
	OptionName              // Any word
	OptionList              // One of OptionList
)

// Commands an option may be given to.
const (
	ValidAttach = 1 << iota
	ValidSet
	ValidShow
)

// Description of an option a device accepts.
type Options struct {
	Name        string   // Name of option.
	OptionType  int      // Type of argument.
	OptionValid int      // Commands option is valid for.
	OptionList  []string // Values allowed for OptionList.
}

// Console view of one device address.
type Command interface {
	Options(opt string) []Options              // Return list of supported options.
	Attach(options []*CmdOption) error         // Attach device to file.
	Detach() error                             // Detach a device.
	Set(unset bool, options []*CmdOption) error // Do set/unset command.
	Show(options []*CmdOption) (string, error) // Do show command.
}

// Return named option from list, nil if not given.
func Find(options []*CmdOption, name string) *CmdOption {
	for _, opt := range options {
		if opt.Name == name {
			return opt
		}
	}
	return nil
}
