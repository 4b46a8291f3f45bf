/*
 * Sigma DP - Console commands
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
	"strings"

	"github.com/rcornwell/sigmadp/command/command"
	core "github.com/rcornwell/sigmadp/emu/core"
	dev "github.com/rcornwell/sigmadp/emu/device"
	ch "github.com/rcornwell/sigmadp/emu/sys_channel"
)

// Cycles run by a run command without a limit.
const defaultRunLimit = 1000000

var cmdList []cmd

func init() {
	cmdList = []cmd{
		{Name: "aio", Min: 2, Process: aio},
		{Name: "attach", Min: 2, Process: attach, Complete: attachComplete},
		{Name: "continue", Min: 1, Process: cont},
		{Name: "debug", Min: 3, Process: debugCmd, Complete: deviceComplete},
		{Name: "deposit", Min: 3, Process: deposit},
		{Name: "detach", Min: 3, Process: detach, Complete: deviceComplete},
		{Name: "examine", Min: 1, Process: examine},
		{Name: "hio", Min: 1, Process: hio, Complete: deviceComplete},
		{Name: "help", Min: 2, Process: help},
		{Name: "quit", Min: 4, Process: quit},
		{Name: "reset", Min: 3, Process: reset, Complete: deviceComplete},
		{Name: "run", Min: 2, Process: run},
		{Name: "set", Min: 3, Process: set, Complete: setComplete},
		{Name: "show", Min: 2, Process: show, Complete: showComplete},
		{Name: "sio", Min: 2, Process: sio, Complete: deviceComplete},
		{Name: "step", Min: 2, Process: step},
		{Name: "stop", Min: 3, Process: stop},
		{Name: "tdv", Min: 2, Process: tdv, Complete: deviceComplete},
		{Name: "tio", Min: 2, Process: tio, Complete: deviceComplete},
		{Name: "unset", Min: 2, Process: unset, Complete: setComplete},
	}
}

// Format status word returned by a channel instruction.
func statusString(dva uint16, status uint32) string {
	cc := (status >> dev.DvtVCC) & 0xf
	return fmt.Sprintf("%03x: CC=%x status=%08x", dva, cc, status)
}

// Read device address, fail if anything follows.
func (line *cmdLine) onlyDevice() (uint16, error) {
	dva, err := line.getHex()
	if err != nil {
		return 0, errors.New("device address expected")
	}
	if dva > 0xfff {
		return 0, fmt.Errorf("device address out of range: %x", dva)
	}
	return uint16(dva), line.checkEOL()
}

// Start I/O: sio dva addr.
func sio(line *cmdLine, core *core.Core) (bool, error) {
	dva, err := line.getHex()
	if err != nil || dva > 0xfff {
		return false, errors.New("device address expected")
	}
	addr, err := line.getHex()
	if err != nil {
		return false, errors.New("command list address expected")
	}
	if err = line.checkEOL(); err != nil {
		return false, err
	}
	var status uint32
	core.Call(func() { status = ch.StartIO(uint16(dva), addr) })
	fmt.Fprintln(Output, statusString(uint16(dva), status))
	return false, nil
}

// Run a channel instruction that only takes a device address.
func simpleIO(line *cmdLine, core *core.Core, fn func(uint16) uint32) (bool, error) {
	dva, err := line.onlyDevice()
	if err != nil {
		return false, err
	}
	var status uint32
	core.Call(func() { status = fn(dva) })
	fmt.Fprintln(Output, statusString(dva, status))
	return false, nil
}

func tio(line *cmdLine, core *core.Core) (bool, error) {
	return simpleIO(line, core, ch.TestIO)
}

func tdv(line *cmdLine, core *core.Core) (bool, error) {
	return simpleIO(line, core, ch.TestDevice)
}

func hio(line *cmdLine, core *core.Core) (bool, error) {
	return simpleIO(line, core, ch.HaltIO)
}

// Acknowledge interrupt, any address given is ignored.
func aio(line *cmdLine, core *core.Core) (bool, error) {
	line.skipSpace()
	if !line.isEOL() {
		if _, err := line.onlyDevice(); err != nil {
			return false, err
		}
	}
	var dva uint16
	var status uint32
	core.Call(func() { dva, status = ch.AckInterrupt() })
	if dva == dev.NoDev {
		fmt.Fprintln(Output, "no interrupt pending")
		return false, nil
	}
	fmt.Fprintln(Output, statusString(dva, status))
	return false, nil
}

// Advance simulated time: step [n].
func step(line *cmdLine, core *core.Core) (bool, error) {
	n := 1
	line.skipSpace()
	if !line.isEOL() {
		var err error
		n, err = line.getNumber()
		if err != nil {
			return false, err
		}
	}
	if err := line.checkEOL(); err != nil {
		return false, err
	}
	if core.IsRunning() {
		return false, errors.New("simulation is running")
	}
	var err error
	var now uint64
	core.Call(func() {
		err = core.Step(n)
		now = core.Events.Now()
	})
	fmt.Fprintf(Output, "time: %d\n", now)
	return false, err
}

// Run until no events remain: run [limit].
func run(line *cmdLine, core *core.Core) (bool, error) {
	limit := defaultRunLimit
	line.skipSpace()
	if !line.isEOL() {
		var err error
		limit, err = line.getNumber()
		if err != nil {
			return false, err
		}
	}
	if err := line.checkEOL(); err != nil {
		return false, err
	}
	if core.IsRunning() {
		return false, errors.New("simulation is running")
	}
	var err error
	var n int
	var now uint64
	core.Call(func() {
		n, err = core.RunUntilIdle(limit)
		now = core.Events.Now()
	})
	fmt.Fprintf(Output, "ran %d cycles, time: %d\n", n, now)
	return false, err
}

// Let simulated time advance from the timer.
func cont(line *cmdLine, core *core.Core) (bool, error) {
	if err := line.checkEOL(); err != nil {
		return false, err
	}
	core.SendStart()
	return false, nil
}

func stop(line *cmdLine, core *core.Core) (bool, error) {
	if err := line.checkEOL(); err != nil {
		return false, err
	}
	core.SendStop()
	return false, nil
}

// Attach file to device.
func attach(line *cmdLine, core *core.Core) (bool, error) {
	_, device, err := line.getDevice()
	if err != nil {
		return false, err
	}
	opts, err := line.getOptions(device, command.ValidAttach)
	if err != nil {
		return false, err
	}
	core.Call(func() { err = device.Attach(opts) })
	return false, err
}

// Detach device.
func detach(line *cmdLine, core *core.Core) (bool, error) {
	_, device, err := line.getDevice()
	if err != nil {
		return false, err
	}
	if err = line.checkEOL(); err != nil {
		return false, err
	}
	core.Call(func() { err = device.Detach() })
	return false, err
}

func setOptions(line *cmdLine, core *core.Core, unset bool) error {
	_, device, err := line.getDevice()
	if err != nil {
		return err
	}
	opts, err := line.getOptions(device, command.ValidSet)
	if err != nil {
		return err
	}
	if len(opts) == 0 {
		return errors.New("set requires options")
	}
	core.Call(func() { err = device.Set(unset, opts) })
	return err
}

func set(line *cmdLine, core *core.Core) (bool, error) {
	return false, setOptions(line, core, false)
}

func unset(line *cmdLine, core *core.Core) (bool, error) {
	return false, setOptions(line, core, true)
}

// Show device: show dva [opts], or show all.
func show(line *cmdLine, core *core.Core) (bool, error) {
	line.skipSpace()
	pos := line.pos
	if word := line.getWord(false); word != "" {
		if word != "all" || line.checkEOL() != nil {
			line.pos = pos
		} else {
			var out []string
			core.Call(func() { out = showAll() })
			for _, s := range out {
				fmt.Fprintln(Output, s)
			}
			return false, nil
		}
	}

	_, device, err := line.getDevice()
	if err != nil {
		return false, err
	}
	opts, err := line.getShowOptions(device)
	if err != nil {
		return false, err
	}
	var str string
	core.Call(func() { str, err = device.Show(opts) })
	if err == nil {
		fmt.Fprintln(Output, str)
	}
	return false, err
}

// Describe every device.
func showAll() []string {
	out := []string{}
	for _, dva := range ch.Devices() {
		d, err := ch.GetDevice(dva)
		if err != nil {
			continue
		}
		addr := dva
		if (dva & dev.DvaMulti) != 0 {
			addr |= dev.DvaMUnit
		}
		c, err := d.Command(addr)
		if err != nil {
			continue
		}
		str, err := c.Show(nil)
		if err == nil {
			out = append(out, str)
		}
	}
	return out
}

// Reset a device or everything.
func reset(line *cmdLine, core *core.Core) (bool, error) {
	line.skipSpace()
	if line.isEOL() {
		core.Call(core.Reset)
		return false, nil
	}
	dva, err := line.onlyDevice()
	if err != nil {
		return false, err
	}
	d, err := ch.GetDevice(dva)
	if err != nil {
		return false, err
	}
	core.Call(d.Reset)
	return false, nil
}

// Enable debug options: debug dva opt[,opt...].
func debugCmd(line *cmdLine, core *core.Core) (bool, error) {
	dva, err := line.getHex()
	if err != nil || dva > 0xfff {
		return false, errors.New("device address expected")
	}
	d, err := ch.GetDevice(uint16(dva))
	if err != nil {
		return false, err
	}
	opts := line.getToken()
	if opts == "" {
		return false, errors.New("debug option expected")
	}
	if err = line.checkEOL(); err != nil {
		return false, err
	}
	for _, opt := range strings.Split(opts, ",") {
		core.Call(func() { err = d.Debug(opt) })
		if err != nil {
			return false, err
		}
	}
	return false, nil
}

func help(_ *cmdLine, _ *core.Core) (bool, error) {
	fmt.Fprintln(Output, `sio dva addr          start I/O with command list at addr
tio dva, tdv dva      test I/O, test device
hio dva               halt I/O
aio                   acknowledge interrupt
step [n]              advance simulated time n cycles
run [limit]           run until no events pending
continue, stop        start or stop free running time
examine addr [n]      display n words from byte address
deposit addr value..  store words at byte address
attach dva file [ro]  attach image to drive
detach dva            detach drive
set/unset dva opt..   change options
show dva [opt..]|all  show device
debug dva opt,..      enable trace options
reset [dva]           reset device or system
quit                  exit`)
	return false, nil
}

func quit(line *cmdLine, _ *core.Core) (bool, error) {
	return true, line.checkEOL()
}
