/*
 * Sigma DP - Debug configuration
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

package debugconfig

import (
	"errors"
	"strconv"
	"strings"

	config "github.com/rcornwell/sigmadp/config/configparser"
	ch "github.com/rcornwell/sigmadp/emu/sys_channel"
)

// register a device on initialize.
func init() {
	config.RegisterModel("DEBUG", config.TypeOptions, setDebug)
}

// Apply option and each of its comma values.
func apply(opt config.Option, fn func(string) error) error {
	err := fn(strings.ToUpper(opt.Name))
	if err != nil {
		return err
	}
	for _, value := range opt.Value {
		err = fn(strings.ToUpper(*value))
		if err != nil {
			return err
		}
	}
	return nil
}

// Set debug options for a channel or device.
func setDebug(devNum uint16, device string, options []config.Option) error {
	if strings.ToUpper(device) == "CHANNEL" {
		if len(options) < 1 {
			return errors.New("debug channel requires a number first")
		}
		if options[0].EqualOpt != "" || len(options[0].Value) != 0 {
			return errors.New("debug channel number can't have equals or values")
		}
		number, err := strconv.ParseUint(options[0].Name, 10, 4)
		if err != nil {
			return errors.New("channel number must be a number: " + options[0].Name)
		}
		for _, opt := range options[1:] {
			err := apply(opt, func(o string) error { return ch.Debug(int(number), o) })
			if err != nil {
				return err
			}
		}
		return nil
	}

	if devNum == config.NoDev {
		return errors.New("debug option invalid: " + device)
	}
	dev, err := ch.GetDevice(devNum)
	if err != nil {
		return err
	}
	for _, opt := range options {
		err := apply(opt, dev.Debug)
		if err != nil {
			return err
		}
	}
	return nil
}
