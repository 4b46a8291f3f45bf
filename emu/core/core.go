/*
 * Sigma DP - Simulation core
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

package core

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	config "github.com/rcornwell/sigmadp/config/configparser"
	"github.com/rcornwell/sigmadp/emu/event"
	"github.com/rcornwell/sigmadp/emu/master"
	mem "github.com/rcornwell/sigmadp/emu/memory"
	modeldp "github.com/rcornwell/sigmadp/emu/modelDP"
	syschannel "github.com/rcornwell/sigmadp/emu/sys_channel"
	"github.com/rcornwell/sigmadp/emu/timer"
)

// Memory size in K words, set by MEMORY configuration option.
var memSize = 64

// Cycles simulated per timer tick.
const SliceCycles = 5000

var ErrStopped = errors.New("simulation stopped")

type Core struct {
	wg      sync.WaitGroup
	done    chan struct{} // Signal to shutdown simulator.
	running bool          // Simulated time advancing.
	started bool          // Core routine running.
	Master  chan master.Packet
	timer   *timer.Timer

	Events *event.EventList
	Mem    *mem.Memory
	Disp   *modeldp.Dispatcher
}

// Create the system: memory, channels and the configured controllers.
func NewCore(masterChannel chan master.Packet) *Core {
	core := &Core{
		Master: masterChannel,
		done:   make(chan struct{}),
		Events: event.NewEventList(),
		Mem:    mem.NewMemory(memSize),
	}
	syschannel.InitializeChannels(core.Mem)
	core.Disp = modeldp.NewDispatcher(syschannel.IOP{}, core.Events)
	for _, ctl := range modeldp.TakeConfigured() {
		core.Disp.Add(ctl)
	}
	return core
}

// Advance simulated time n cycles, stop on an I/O error.
func (core *Core) Step(n int) error {
	for range n {
		core.Events.Advance(1)
		if err := core.Disp.TakeError(); err != nil {
			return fmt.Errorf("%w at %d: %w", ErrStopped, core.Events.Now(), err)
		}
	}
	return nil
}

// Advance time until no events remain or limit cycles pass. Returns cycles run.
func (core *Core) RunUntilIdle(limit int) (int, error) {
	n := 0
	for core.Events.AnyEvent() && n < limit {
		core.Events.Advance(1)
		n++
		if err := core.Disp.TakeError(); err != nil {
			return n, fmt.Errorf("%w at %d: %w", ErrStopped, core.Events.Now(), err)
		}
	}
	return n, nil
}

// Reset channels and controllers.
func (core *Core) Reset() {
	syschannel.ResetChannels()
}

// Start core routine.
func (core *Core) Start() {
	core.wg.Add(1)
	core.started = true
	core.timer = timer.NewTimer(core.Master, timer.DefaultInterval)
	go core.run()
}

func (core *Core) run() {
	defer core.wg.Done()
	for {
		select {
		case <-core.done:
			return
		case packet := <-core.Master:
			core.processPacket(packet)
		}
	}
}

// Stop a running core.
func (core *Core) Stop() {
	if !core.started {
		return
	}
	slog.Info("Shutting down simulation")
	core.timer.Shutdown()
	close(core.done)
	done := make(chan struct{})
	go func() {
		core.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return
	case <-time.After(time.Second):
		slog.Warn("Timed out waiting for simulation to finish.")
		return
	}
}

// Let simulated time run.
func (core *Core) SendStart() {
	core.Master <- master.Packet{Msg: master.Start}
}

// Stop simulated time.
func (core *Core) SendStop() {
	core.Master <- master.Packet{Msg: master.Stop}
}

// Run function in the core routine and wait for it.
func (core *Core) Call(fn func()) {
	if !core.started {
		fn()
		return
	}
	done := make(chan struct{})
	core.Master <- master.Packet{Msg: master.Call, Fn: fn, Done: done}
	<-done
}

// True if simulated time is advancing from the timer.
func (core *Core) IsRunning() bool {
	running := false
	core.Call(func() { running = core.running })
	return running
}

// Process a packet sent to system simulation.
func (core *Core) processPacket(packet master.Packet) {
	switch packet.Msg {
	case master.Start:
		if !core.running {
			core.running = true
			core.timer.Start()
		}
	case master.Stop:
		if core.running {
			core.running = false
			core.timer.Stop()
		}
	case master.TimeClock:
		if !core.running {
			return
		}
		_, err := core.RunUntilIdle(SliceCycles)
		if err != nil {
			slog.Error(err.Error())
			core.running = false
			core.timer.Stop()
		}
	case master.Call:
		packet.Fn()
		close(packet.Done)
	}
}

// register options on initialize.
func init() {
	config.RegisterOption("MEMORY", setMemory)
}

// Set memory size, nK or n.
func setMemory(_ uint16, value string, _ []config.Option) error {
	value = strings.TrimSuffix(strings.ToUpper(value), "K")
	size, err := strconv.Atoi(value)
	if err != nil || size < 1 {
		return errors.New("memory size must be a number: " + value)
	}
	memSize = size
	return nil
}
