package event

/*
 * Sigma DP - Event scheduler
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

// Callback is called with the argument given when the event was added.
type Callback = func(iarg int)

type Event struct {
	time  int      // Number of cycles to event, relative to previous
	owner any      // Owner event is registered too
	cb    Callback // Function to callback
	iarg  int      // Integer argument
	prev  *Event
	next  *Event
}

type EventList struct {
	head *Event
	tail *Event
	now  uint64 // Current simulated time
	busy bool   // Processing events
}

// Create an empty event list.
func NewEventList() *EventList {
	return &EventList{}
}

// Add an event. A time of zero fires on the next call to Advance.
func (el *EventList) AddEvent(owner any, cb Callback, time int, iarg int) {
	if time < 0 {
		time = 0
	}
	// Events added from a callback wait for the next advance.
	if time == 0 && el.busy {
		time = 1
	}
	ev := &Event{owner: owner, cb: cb, time: time, iarg: iarg}

	evptr := el.head
	// If empty put on head
	if evptr == nil {
		el.head = ev
		el.tail = ev
		return
	}

	// Scan for place to install it
	for evptr != nil {
		// Event before next event
		if ev.time < evptr.time {
			// Remove current time from next time
			evptr.time -= ev.time
			ev.prev = evptr.prev
			ev.next = evptr
			evptr.prev = ev
			if ev.prev != nil {
				ev.prev.next = ev
			} else {
				el.head = ev
			}
			return
		}
		// Make new event relative to head of list
		ev.time -= evptr.time
		evptr = evptr.next
	}

	// Get here, put it on tail of list
	ev.prev = el.tail
	el.tail.next = ev
	el.tail = ev
}

// Find event for owner and argument.
func (el *EventList) find(owner any, iarg int) *Event {
	for evptr := el.head; evptr != nil; evptr = evptr.next {
		if evptr.owner == owner && evptr.iarg == iarg {
			return evptr
		}
	}
	return nil
}

// Remove an event, nothing happens if event not scheduled.
func (el *EventList) CancelEvent(owner any, iarg int) {
	evptr := el.find(owner, iarg)
	if evptr == nil {
		return
	}

	nxt := evptr.next
	if nxt != nil {
		// Give time to next event
		nxt.time += evptr.time
		nxt.prev = evptr.prev
	} else {
		el.tail = evptr.prev
	}

	if evptr.prev != nil {
		evptr.prev.next = nxt
	} else {
		el.head = nxt
	}
	evptr.next = nil
	evptr.prev = nil
}

// Return true if event is scheduled.
func (el *EventList) IsActive(owner any, iarg int) bool {
	return el.find(owner, iarg) != nil
}

// Return number of cycles until event fires, or -1 if not scheduled.
func (el *EventList) Remaining(owner any, iarg int) int {
	t := 0
	for evptr := el.head; evptr != nil; evptr = evptr.next {
		t += evptr.time
		if evptr.owner == owner && evptr.iarg == iarg {
			if t < 0 {
				return 0
			}
			return t
		}
	}
	return -1
}

// Return true if any events pending.
func (el *EventList) AnyEvent() bool {
	return el.head != nil
}

// Return current simulated time.
func (el *EventList) Now() uint64 {
	return el.now
}

// Advance time by t clock cycles, running any events that expire.
func (el *EventList) Advance(t int) {
	el.now += uint64(t)
	evptr := el.head
	if evptr == nil {
		return
	}
	evptr.time -= t
	el.busy = true
	defer func() { el.busy = false }()
	for evptr != nil && evptr.time <= 0 {
		// Unlink before callback so callback can reschedule itself.
		el.head = evptr.next
		if el.head != nil {
			el.head.prev = nil
			el.head.time += evptr.time
		} else {
			el.tail = nil
		}
		evptr.next = nil
		evptr.cb(evptr.iarg)
		evptr = el.head
	}
}
