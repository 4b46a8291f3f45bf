/*
 * Sigma DP - Configuration of disk controllers
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

package modeldp

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	config "github.com/rcornwell/sigmadp/config/configparser"
	ch "github.com/rcornwell/sigmadp/emu/sys_channel"
)

// Controllers created from configuration not yet given to a dispatcher.
var configured []*Controller

// Return controllers created by configuration and clear the list.
func TakeConfigured() []*Controller {
	ctls := configured
	configured = nil
	return ctls
}

// register a device on initialize.
func init() {
	config.RegisterModel("DP", config.TypeModel, creator(Fam7270))
	config.RegisterModel("DPA", config.TypeModel, creator(Fam7270))
	config.RegisterModel("DPB", config.TypeModel, creator(Fam7275))
}

// Return create function for a controller defaulting to family.
func creator(family Family) func(uint16, string, []config.Option) error {
	return func(devNum uint16, _ string, options []config.Option) error {
		return create(devNum, family, options)
	}
}

// Create a disk controller.
//
//	DPB 080 TYPE=7275 TIME=1 STIME=20 CTLTIME=5 STOPIOE UNIT0=7276,FILE=disk0.dsk,RO
func create(devNum uint16, family Family, options []config.Option) error {
	for _, option := range options {
		if strings.ToUpper(option.Name) == "TYPE" {
			f, err := ParseFamily(option.EqualOpt)
			if err != nil {
				return err
			}
			family = f
		}
	}

	ctl := NewController(devNum, family)
	err := configure(ctl, options)
	if err == nil {
		err = ch.AddDevice(ctl, ctl.dva)
		if err != nil {
			err = fmt.Errorf("unable to create DP at %03x: %w", devNum, err)
		}
	}
	if err != nil {
		_ = ctl.DetachAll()
		return err
	}
	configured = append(configured, ctl)
	return nil
}

// Apply configuration options to a new controller.
func configure(ctl *Controller, options []config.Option) error {
	for _, option := range options {
		var err error
		name := strings.ToUpper(option.Name)
		switch name {
		case "TYPE":
		case "TIME", "STIME", "CTLTIME":
			var v int
			v, err = strconv.Atoi(option.EqualOpt)
			if err != nil || v < 1 {
				return fmt.Errorf("DP %s requires a positive number: %s", name, option.EqualOpt)
			}
			switch name {
			case "TIME":
				ctl.SetTiming(v, 0, 0)
			case "STIME":
				ctl.SetTiming(0, v, 0)
			default:
				ctl.SetTiming(0, 0, v)
			}
		case "STOPIOE":
			ctl.SetStopIOE(true)
		default:
			if !strings.HasPrefix(name, "UNIT") {
				return errors.New("DP invalid option " + option.Name)
			}
			err = configUnit(ctl, name, option)
		}
		if err != nil {
			return err
		}
		if name != "TYPE" && !strings.HasPrefix(name, "UNIT") && option.Value != nil {
			return errors.New("extra options not supported on: " + option.Name)
		}
	}
	return nil
}

// Configure one drive, UNITn=type followed by FILE=name, RO and AUTOSIZE.
func configUnit(ctl *Controller, name string, option config.Option) error {
	un, err := strconv.Atoi(strings.TrimPrefix(name, "UNIT"))
	if err != nil {
		return errors.New("DP invalid unit " + option.Name)
	}
	u, err := ctl.drive(un)
	if err != nil {
		return err
	}

	if option.EqualOpt != "" {
		idx, err := LookupDrive(option.EqualOpt)
		if err != nil {
			return err
		}
		if idx != u.drive {
			err = ctl.SetDriveType(un, option.EqualOpt)
			if err != nil {
				return err
			}
		}
	}

	file := ""
	readOnly := false
	for _, v := range option.Value {
		key, value, _ := strings.Cut(*v, "=")
		switch strings.ToUpper(key) {
		case "FILE":
			if value == "" {
				return errors.New("file option missing filename")
			}
			file = value
		case "RO":
			readOnly = true
		case "RW":
			readOnly = false
		case "AUTOSIZE":
			err = ctl.SetAutosize(un, true)
			if err != nil {
				return err
			}
		default:
			return errors.New("DP invalid unit option " + *v)
		}
	}
	if file != "" {
		return ctl.Attach(un, file, readOnly)
	}
	return ctl.SetWriteLock(un, readOnly)
}
