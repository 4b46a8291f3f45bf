/*
 * Sigma DP - Disk controller configuration tests
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
	"os"
	"strings"
	"testing"

	"github.com/rcornwell/sigmadp/command/command"
	config "github.com/rcornwell/sigmadp/config/configparser"
	dev "github.com/rcornwell/sigmadp/emu/device"
	mem "github.com/rcornwell/sigmadp/emu/memory"
	ch "github.com/rcornwell/sigmadp/emu/sys_channel"
)

func setupConfig(t *testing.T) {
	t.Helper()
	ch.RemoveChannels()
	ch.InitializeChannels(mem.NewMemory(16))
	_ = TakeConfigured()
}

func tempImage(t *testing.T) string {
	t.Helper()
	f, err := os.CreateTemp("", "dp*.dsk")
	if err != nil {
		t.Fatalf("Unable to create image: %v", err)
	}
	name := f.Name()
	f.Close()
	return name
}

func TestConfigController(t *testing.T) {
	setupConfig(t)
	name := tempImage(t)
	defer os.Remove(name)

	cfg := "DP 080 TYPE=T3281 TIME=2 STIME=30 CTLTIME=7 STOPIOE UNIT1=3283,FILE=" + name + ",RO\n"
	err := config.LoadConfig(strings.NewReader(cfg))
	if err != nil {
		t.Fatalf("Unable to load configuration: %v", err)
	}
	ctls := TakeConfigured()
	if len(ctls) != 1 {
		t.Fatalf("Configured controllers expected 1 got: %d", len(ctls))
	}
	ctl := ctls[0]
	defer func() { _ = ctl.Detach(1) }()
	if ctl.Family() != FamT3281 || ctl.Addr() != 0x080 {
		t.Errorf("Controller expected T3281 at 080 got: %s %03x", ctl.Family(), ctl.Addr())
	}
	if ctl.time != 2 || ctl.stime != 30 || ctl.ctlTime != 7 || !ctl.stopIOE {
		t.Errorf("Controller timing not set: %d %d %d %v", ctl.time, ctl.stime, ctl.ctlTime, ctl.stopIOE)
	}
	u := ctl.units[1]
	if u.geometry().Name != "3283" || !u.attached() || !u.readOnly {
		t.Errorf("Unit 1 not configured: %s", u.show())
	}
	d, err := ch.GetDevice(0x081)
	if err != nil || d != ctl {
		t.Errorf("Controller not registered with channel: %v", err)
	}
	if len(TakeConfigured()) != 0 {
		t.Errorf("Configured list not cleared")
	}
}

func TestConfigErrors(t *testing.T) {
	tests := []string{
		"DP 080 TYPE=7999\n",
		"DP 080 TIME=0\n",
		"DP 080 BOGUS\n",
		"DP 080 TYPE=7240 UNIT9=7242\n",
		"DP 080 TYPE=7275 UNIT0=3283\n",
		"DP 080 UNIT0,SIZE=3\n",
		"DP\n",
	}
	for _, cfg := range tests {
		setupConfig(t)
		err := config.LoadConfig(strings.NewReader(cfg))
		if err == nil {
			t.Errorf("Configuration %q did not fail", strings.TrimSpace(cfg))
		}
	}
	setupConfig(t)
	err := config.LoadConfig(strings.NewReader("DP 080\nDPA 080\n"))
	if err == nil {
		t.Errorf("Duplicate controller did not fail")
	}
	if len(TakeConfigured()) != 1 {
		t.Errorf("Expected first controller configured")
	}
}

func TestSetType(t *testing.T) {
	ctl, _, _ := setupController(t, Fam7275)
	name := attachTemp(t, ctl, 0)
	defer os.Remove(name)

	err := ctl.SetType(Fam7240)
	if !errors.Is(err, dev.ErrAttached) {
		t.Errorf("Set type with attached drive expected error got: %v", err)
	}
	err = ctl.Detach(0)
	if err != nil {
		t.Errorf("Detach failed: %v", err)
	}
	err = ctl.SetType(Fam7240)
	if err != nil {
		t.Fatalf("Set type failed: %v", err)
	}
	if ctl.unitExists(8) || !ctl.unitExists(7) {
		t.Errorf("7240 should have 8 drives")
	}
	if ctl.units[0].geometry().Name != "7242" {
		t.Errorf("Drive type expected 7242 got: %s", ctl.units[0].geometry().Name)
	}
	err = ctl.SetDriveType(0, "3283")
	if !errors.Is(err, dev.ErrNoFunc) {
		t.Errorf("Drive type on 7240 expected error got: %v", err)
	}
	err = ctl.SetAutosize(0, true)
	if !errors.Is(err, dev.ErrNoFunc) {
		t.Errorf("Autosize on 7240 expected error got: %v", err)
	}
}

func TestAutosize(t *testing.T) {
	ctl, _, _ := setupController(t, FamT3281)
	name := tempImage(t)
	defer os.Remove(name)
	g := DriveType(6) // 3282
	err := os.Truncate(name, g.Capacity()*4)
	if err != nil {
		t.Fatalf("Unable to size image: %v", err)
	}

	err = ctl.SetAutosize(2, true)
	if err != nil {
		t.Fatalf("Autosize failed: %v", err)
	}
	err = ctl.Attach(2, name, true)
	if err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	defer func() { _ = ctl.Detach(2) }()
	if ctl.units[2].geometry().Name != "3282" {
		t.Errorf("Autosize expected 3282 got: %s", ctl.units[2].geometry().Name)
	}
	err = ctl.SetDriveType(2, "3283")
	if !errors.Is(err, dev.ErrAttached) {
		t.Errorf("Drive type on attached unit expected error got: %v", err)
	}
	err = ctl.Attach(2, name, true)
	if !errors.Is(err, dev.ErrAttached) {
		t.Errorf("Second attach expected error got: %v", err)
	}
}

func TestUnitCommand(t *testing.T) {
	ctl, _, _ := setupController(t, FamT3281)
	name := tempImage(t)
	defer os.Remove(name)

	cmd, err := ctl.Command(ctl.dva | 3)
	if err != nil {
		t.Fatalf("Unable to get unit command: %v", err)
	}
	err = cmd.Set(false, []*command.CmdOption{{Name: "type", EqualOpt: "3282"}})
	if err != nil {
		t.Errorf("Set type failed: %v", err)
	}
	err = cmd.Attach([]*command.CmdOption{{Name: "file", EqualOpt: name}, {Name: "ro"}})
	if err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	out, err := cmd.Show([]*command.CmdOption{{Name: "type"}, {Name: "ro"}})
	if err != nil || out != "083: type=3282 ro" {
		t.Errorf("Show expected '083: type=3282 ro' got: '%s' %v", out, err)
	}
	err = cmd.Set(true, []*command.CmdOption{{Name: "ro"}})
	if err != nil || ctl.units[3].readOnly {
		t.Errorf("Unset ro failed: %v", err)
	}
	err = cmd.Set(false, []*command.CmdOption{{Name: "addr", Value: 0x00050203}})
	if err != nil || ctl.units[3].addr != MakeAddr(5, 2, 3) {
		t.Errorf("Set addr failed: %v", err)
	}
	err = cmd.Detach()
	if err != nil || ctl.units[3].attached() {
		t.Errorf("Detach failed: %v", err)
	}

	ctlCmd, err := ctl.Command(ctl.dva | uint16(ctlUnit))
	if err != nil {
		t.Fatalf("Unable to get controller command: %v", err)
	}
	err = ctlCmd.Set(false, []*command.CmdOption{{Name: "stime", Value: 40}, {Name: "stopioe"}})
	if err != nil || ctl.stime != 40 || !ctl.stopIOE {
		t.Errorf("Set controller options failed: %v", err)
	}
	err = ctlCmd.Set(false, []*command.CmdOption{{Name: "ctype", EqualOpt: "7270"}})
	if err != nil || ctl.Family() != Fam7270 {
		t.Errorf("Set controller type failed: %v", err)
	}
	out, err = ctlCmd.Show([]*command.CmdOption{{Name: "ctype"}, {Name: "stime"}})
	if err != nil || out != "080: type=7270 stime=40" {
		t.Errorf("Show expected '080: type=7270 stime=40' got: '%s' %v", out, err)
	}
	err = ctlCmd.Attach([]*command.CmdOption{{Name: "file", EqualOpt: name}})
	if err == nil {
		t.Errorf("Attach to controller should fail")
	}
	_, err = ctl.Command(ctl.dva | 9)
	if err == nil {
		t.Errorf("Command for unit 9 on 7270 should fail")
	}
}

func TestConfigModels(t *testing.T) {
	setupConfig(t)
	err := config.LoadConfig(strings.NewReader("DPA 080\nDPB 0A0\n"))
	if err != nil {
		t.Fatalf("Unable to load configuration: %v", err)
	}
	ctls := TakeConfigured()
	if len(ctls) != 2 {
		t.Fatalf("Configured controllers expected 2 got: %d", len(ctls))
	}
	if ctls[0].Family() != Fam7270 || ctls[0].units[0].geometry().Name != "7271" {
		t.Errorf("DPA expected 7270 with 7271 got: %s %s", ctls[0].Family(), ctls[0].units[0].geometry().Name)
	}
	if ctls[1].Family() != Fam7275 || ctls[1].units[0].geometry().Name != "7276" {
		t.Errorf("DPB expected 7275 with 7276 got: %s %s", ctls[1].Family(), ctls[1].units[0].geometry().Name)
	}
}

// Storage that counts closes.
type closeCounter struct {
	Storage
	closed *int
}

func (s *closeCounter) Close() error {
	*s.closed++
	return s.Storage.Close()
}

func TestConfigErrorDetach(t *testing.T) {
	name := tempImage(t)
	defer os.Remove(name)
	opened := 0
	closed := 0
	save := openStore
	openStore = func(file string, readOnly bool) (Storage, error) {
		s, err := save(file, readOnly)
		if err != nil {
			return nil, err
		}
		opened++
		return &closeCounter{Storage: s, closed: &closed}, nil
	}
	defer func() { openStore = save }()

	tests := []string{
		"DP 080 TYPE=T3281 UNIT0=3282,FILE=" + name + " STIME=0\n",
		"DP 080\nDP 080 TYPE=T3281 UNIT0=3282,FILE=" + name + "\n",
	}
	for _, cfg := range tests {
		setupConfig(t)
		opened = 0
		closed = 0
		err := config.LoadConfig(strings.NewReader(cfg))
		if err == nil {
			t.Errorf("Configuration %q did not fail", cfg)
		}
		if opened != 1 || closed != 1 {
			t.Errorf("Configuration %q left image open: %d opened %d closed", cfg, opened, closed)
		}
	}
}

func TestAttachAutosizeFail(t *testing.T) {
	ctl, _, _ := setupController(t, FamT3281)
	cmd, err := ctl.Command(ctl.dva | 2)
	if err != nil {
		t.Fatalf("Unable to get unit command: %v", err)
	}
	bad := []*command.CmdOption{{Name: "file", EqualOpt: "/nonexistent/dp/x.dsk"}, {Name: "autosize"}}
	err = cmd.Attach(bad)
	if err == nil {
		t.Fatalf("Attach of missing file did not fail")
	}
	if ctl.units[2].autosize {
		t.Errorf("Autosize left set after failed attach")
	}

	name := tempImage(t)
	defer os.Remove(name)
	err = os.Truncate(name, DriveType(6).Capacity()*4)
	if err != nil {
		t.Fatalf("Unable to size image: %v", err)
	}
	err = cmd.Attach([]*command.CmdOption{{Name: "file", EqualOpt: name}, {Name: "autosize"}})
	if err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	defer func() { _ = ctl.Detach(2) }()
	if !ctl.units[2].autosize || ctl.units[2].geometry().Name != "3282" {
		t.Errorf("Autosize attach expected 3282 got: %s", ctl.units[2].geometry().Name)
	}
}
