/*
 * Sigma DP - Console command options
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
	"strings"

	"github.com/rcornwell/sigmadp/command/command"
	dev "github.com/rcornwell/sigmadp/emu/device"
)

// Console interface for one unit, unit 0xf is the controller.
type unitCommand struct {
	ctl *Controller
	un  int
}

// Return command interface for address.
func (c *Controller) Command(dva uint16) (command.Command, error) {
	un := dev.GetUnit(dva)
	if un != ctlUnit && !c.unitExists(un) {
		return nil, fmt.Errorf("unit %03x: %w", dva, dev.ErrNoDevice)
	}
	return &unitCommand{ctl: c, un: un}, nil
}

func driveNames() []string {
	names := make([]string, 0, len(geometries))
	for _, g := range geometries {
		names = append(names, strings.ToLower(g.Name))
	}
	return names
}

func familyList() []string {
	names := make([]string, 0, len(familyNames))
	for _, n := range familyNames {
		names = append(names, strings.ToLower(n))
	}
	return names
}

// Options supported, controller options on unit 0xf.
func (uc *unitCommand) Options(_ string) []command.Options {
	if uc.un == ctlUnit {
		return []command.Options{
			{
				Name:        "ctype",
				OptionType:  command.OptionList,
				OptionValid: command.ValidSet | command.ValidShow,
				OptionList:  familyList(),
			},
			{Name: "time", OptionType: command.OptionNumber, OptionValid: command.ValidSet | command.ValidShow},
			{Name: "stime", OptionType: command.OptionNumber, OptionValid: command.ValidSet | command.ValidShow},
			{Name: "ctltime", OptionType: command.OptionNumber, OptionValid: command.ValidSet | command.ValidShow},
			{Name: "stopioe", OptionType: command.OptionSwitch, OptionValid: command.ValidSet | command.ValidShow},
		}
	}
	return []command.Options{
		{
			Name:        "file",
			OptionType:  command.OptionFile,
			OptionValid: command.ValidAttach | command.ValidShow,
		},
		{
			Name:        "ro",
			OptionType:  command.OptionSwitch,
			OptionValid: command.ValidAttach | command.ValidSet | command.ValidShow,
		},
		{
			Name:        "rw",
			OptionType:  command.OptionSwitch,
			OptionValid: command.ValidAttach | command.ValidSet,
		},
		{
			Name:        "type",
			OptionType:  command.OptionList,
			OptionValid: command.ValidSet | command.ValidShow,
			OptionList:  driveNames(),
		},
		{
			Name:        "autosize",
			OptionType:  command.OptionSwitch,
			OptionValid: command.ValidAttach | command.ValidSet | command.ValidShow,
		},
		{
			Name:        "addr",
			OptionType:  command.OptionHex,
			OptionValid: command.ValidSet | command.ValidShow,
		},
	}
}

// Attach file to unit.
func (uc *unitCommand) Attach(opts []*command.CmdOption) error {
	if uc.un == ctlUnit {
		return errors.New("controller can't be attached")
	}
	file := command.Find(opts, "file")
	if file == nil || file.EqualOpt == "" {
		return errors.New("attach requires file name")
	}
	readOnly := false
	autosize := false
	for _, opt := range opts {
		switch opt.Name {
		case "file":
			if opt != file {
				return errors.New("only one file name option allowed")
			}
		case "ro":
			readOnly = true
		case "rw":
			readOnly = false
		case "autosize":
			autosize = true
		default:
			return errors.New("invalid option: " + opt.Name)
		}
	}
	if !autosize {
		return uc.ctl.Attach(uc.un, file.EqualOpt, readOnly)
	}

	// Autosize only sticks if the image opens.
	prev := uc.ctl.units[uc.un].autosize
	if err := uc.ctl.SetAutosize(uc.un, true); err != nil {
		return err
	}
	err := uc.ctl.Attach(uc.un, file.EqualOpt, readOnly)
	if err != nil {
		uc.ctl.units[uc.un].autosize = prev
	}
	return err
}

func (uc *unitCommand) Detach() error {
	if uc.un == ctlUnit {
		return uc.ctl.DetachAll()
	}
	return uc.ctl.Detach(uc.un)
}

// Set or unset options.
func (uc *unitCommand) Set(unset bool, opts []*command.CmdOption) error {
	for _, opt := range opts {
		var err error
		switch opt.Name {
		case "ctype":
			if unset {
				return errors.New("unset not valid for ctype")
			}
			var family Family
			family, err = ParseFamily(opt.EqualOpt)
			if err == nil {
				err = uc.ctl.SetType(family)
			}
		case "time":
			uc.ctl.SetTiming(opt.Value, 0, 0)
		case "stime":
			uc.ctl.SetTiming(0, opt.Value, 0)
		case "ctltime":
			uc.ctl.SetTiming(0, 0, opt.Value)
		case "stopioe":
			uc.ctl.SetStopIOE(!unset)
		case "ro":
			err = uc.ctl.SetWriteLock(uc.un, !unset)
		case "rw":
			err = uc.ctl.SetWriteLock(uc.un, unset)
		case "type":
			if unset {
				return errors.New("unset not valid for type")
			}
			err = uc.ctl.SetDriveType(uc.un, opt.EqualOpt)
		case "autosize":
			err = uc.ctl.SetAutosize(uc.un, !unset)
		case "addr":
			err = uc.ctl.SetAddr(uc.un, DiskAddr(uint32(opt.Value)))
		default:
			return errors.New("invalid option: " + opt.Name)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Show unit or controller.
func (uc *unitCommand) Show(opts []*command.CmdOption) (string, error) {
	c := uc.ctl
	if uc.un == ctlUnit {
		if len(opts) == 0 {
			return c.Show(), nil
		}
		str := fmt.Sprintf("%03x:", c.dva)
		for _, opt := range opts {
			switch opt.Name {
			case "ctype":
				str += " type=" + c.family.String()
			case "time":
				str += fmt.Sprintf(" time=%d", c.time)
			case "stime":
				str += fmt.Sprintf(" stime=%d", c.stime)
			case "ctltime":
				str += fmt.Sprintf(" ctltime=%d", c.ctlTime)
			case "stopioe":
				str += fmt.Sprintf(" stopioe=%t", c.stopIOE)
			default:
				return "", errors.New("invalid option: " + opt.Name)
			}
		}
		return str, nil
	}

	u := c.units[uc.un]
	if len(opts) == 0 {
		return u.show(), nil
	}
	str := fmt.Sprintf("%03x:", u.dva())
	for _, opt := range opts {
		switch opt.Name {
		case "file":
			if u.store == nil {
				str += " not attached"
			} else if n, ok := u.store.(interface{ Name() string }); ok {
				str += " " + n.Name()
			}
		case "ro":
			if u.readOnly {
				str += " ro"
			} else {
				str += " rw"
			}
		case "type":
			str += " type=" + u.geometry().Name
		case "autosize":
			str += fmt.Sprintf(" autosize=%t", u.autosize)
		case "addr":
			str += " addr=" + u.addr.String()
		default:
			return "", errors.New("invalid option: " + opt.Name)
		}
	}
	return str, nil
}
