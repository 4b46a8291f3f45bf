/*
 * Sigma DP - Pacing timer tests
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

package timer

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/rcornwell/sigmadp/emu/master"
)

type timerTest struct {
	timer   *Timer
	master  chan master.Packet
	done    chan struct{}
	counter atomic.Int32
}

// Receive timer ticks.
func (test *timerTest) runTimer(t *testing.T) {
	for {
		select {
		case v := <-test.master:
			if v.Msg != master.TimeClock {
				t.Errorf("Did not receive correct message from timer: %d", v.Msg)
				return
			}
			test.counter.Add(1)
		case <-test.done:
			return
		}
	}
}

func TestTimer(t *testing.T) {
	masterChannel := make(chan master.Packet)
	test := &timerTest{
		timer:  NewTimer(masterChannel, 10*time.Millisecond),
		master: masterChannel,
		done:   make(chan struct{}),
	}
	defer close(test.done)
	go test.runTimer(t)

	// Not started, no ticks.
	time.Sleep(100 * time.Millisecond)
	if n := test.counter.Load(); n != 0 {
		t.Errorf("Expected 0 ticks before start got: %d", n)
	}

	test.timer.Start()
	time.Sleep(500 * time.Millisecond)
	n := test.counter.Load()
	if n < 40 || n > 52 {
		t.Errorf("Expected 50 ticks during half second got: %d", n)
	}

	test.timer.Stop()
	time.Sleep(50 * time.Millisecond)
	test.counter.Store(0)
	time.Sleep(200 * time.Millisecond)
	if n := test.counter.Load(); n != 0 {
		t.Errorf("Expected 0 ticks when stopped got: %d", n)
	}
	test.timer.Shutdown()
}
