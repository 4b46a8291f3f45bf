/*
 * Sigma DP - Configuration file parser tests
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

package configparser

import (
	"strings"
	"testing"
)

var (
	testOptions []Option
	testDevNum  uint16
	testValue   string
	testType    string
)

func cleanUpConfig() {
	models = map[string]modelDef{}
	Devices = nil
	testOptions = []Option{}
	testDevNum = 0xffff
	testValue = "error"
	testType = ""
}

func record(ty string) func(uint16, string, []Option) error {
	return func(devNum uint16, value string, options []Option) error {
		testDevNum = devNum
		testValue = value
		testType = ty
		testOptions = options
		return nil
	}
}

func registerAll() {
	RegisterOption("testoption", record("option"))
	RegisterSwitch("testswitch", record("switch"))
	RegisterModel("testDevice", TypeModel, record("model"))
	RegisterModel("testOptions", TypeOptions, record("options"))
}

func TestRegisterModel(t *testing.T) {
	cleanUpConfig()

	RegisterModel("testdev", TypeModel, record("model"))
	fTest := FirstOption{devNum: 0x100, isAddr: true, value: "test"}
	err := createModel("test", &fTest, nil)
	if err == nil {
		t.Errorf("Create non existent model succeeded")
	}
	err = createModel("testdev", &fTest, nil)
	if err != nil {
		t.Errorf("Unable to create model")
	}
	if testDevNum != 0x100 {
		t.Errorf("Device number not valid: %d", testDevNum)
	}
	if len(Devices) != 1 || Devices[0] != 0x100 {
		t.Errorf("Device not recorded: %v", Devices)
	}
	err = createSwitch("testdev")
	if err == nil {
		t.Errorf("Create device as switch succeeded")
	}
}

func TestRegisterOption(t *testing.T) {
	cleanUpConfig()

	fTest := FirstOption{devNum: NoDev, value: "test"}
	RegisterOption("testoption", record("option"))
	err := createOption("test", &fTest)
	if err == nil {
		t.Errorf("Create non existent option succeeded")
	}
	err = createOption("testoption", &fTest)
	if err != nil {
		t.Errorf("Unable to create option")
	}
	if testDevNum != NoDev {
		t.Errorf("Option number not valid: %d", testDevNum)
	}
	if testValue != "test" {
		t.Errorf("Option value not valid: %s", testValue)
	}
	err = createModel("testoption", &fTest, nil)
	if err == nil {
		t.Errorf("Create option as model succeeded")
	}
}

func TestParseLineSwitch(t *testing.T) {
	cleanUpConfig()
	registerAll()

	line := optionLine{line: "testSwitch"}
	err := line.parseLine()
	if err != nil {
		t.Errorf("ParseLine failed to parse switch: %v", err)
	}
	if testType != "switch" {
		t.Errorf("ParseLine did not create a switch")
	}

	line = optionLine{line: "testSwitch   # comment"}
	err = line.parseLine()
	if err != nil {
		t.Errorf("ParseLine failed to parse switch with comment: %v", err)
	}

	line = optionLine{line: "testSwitch 100"}
	err = line.parseLine()
	if err == nil {
		t.Errorf("ParseLine accepted switch with argument")
	}
}

func TestParseLineOption(t *testing.T) {
	cleanUpConfig()
	registerAll()

	line := optionLine{line: "testOption enable"}
	err := line.parseLine()
	if err != nil {
		t.Errorf("ParseLine failed to parse option: %v", err)
	}
	if testType != "option" {
		t.Errorf("ParseLine did not create an option")
	}
	if testDevNum != NoDev {
		t.Errorf("Option device expected %x got: %x", NoDev, testDevNum)
	}
	if testValue != "enable" {
		t.Errorf("Option value expected enable got: %s", testValue)
	}

	line = optionLine{line: "testOption 0100"}
	err = line.parseLine()
	if err != nil {
		t.Errorf("ParseLine failed to parse option: %v", err)
	}
	if testDevNum != 0x100 {
		t.Errorf("Option device expected %x got: %x", 0x100, testDevNum)
	}
	if testValue != "0100" {
		t.Errorf("Option value expected 0100 got: %s", testValue)
	}

	line = optionLine{line: "testOption"}
	err = line.parseLine()
	if err == nil {
		t.Errorf("ParseLine accepted option without value")
	}

	line = optionLine{line: "testOption one two"}
	err = line.parseLine()
	if err == nil {
		t.Errorf("ParseLine accepted option with two values")
	}

	line = optionLine{line: `testOption "file name.txt"`}
	err = line.parseLine()
	if err != nil {
		t.Errorf("ParseLine failed to parse quoted option: %v", err)
	}
	if testValue != "file name.txt" {
		t.Errorf("Option value expected file name.txt got: %s", testValue)
	}
}

func TestParseLineModel(t *testing.T) {
	cleanUpConfig()
	registerAll()

	line := optionLine{line: "testDevice 80"}
	err := line.parseLine()
	if err != nil {
		t.Errorf("ParseLine failed to parse model: %v", err)
	}
	if testType != "model" {
		t.Errorf("ParseLine did not create a model")
	}
	if testDevNum != 0x80 {
		t.Errorf("Model device expected %x got: %x", 0x80, testDevNum)
	}
	if len(testOptions) != 0 {
		t.Errorf("Model options expected 0 got: %d", len(testOptions))
	}

	line = optionLine{line: "testDevice disk"}
	err = line.parseLine()
	if err == nil {
		t.Errorf("ParseLine accepted model without address")
	}

	line = optionLine{line: "testDevice 1000"}
	err = line.parseLine()
	if err == nil {
		t.Errorf("ParseLine accepted address out of range")
	}
}

func TestParseLineModelOptions(t *testing.T) {
	cleanUpConfig()
	registerAll()

	line := optionLine{line: "testDevice 0a0 type=7275 time=2 stopioe"}
	err := line.parseLine()
	if err != nil {
		t.Errorf("ParseLine failed to parse model: %v", err)
	}
	if len(testOptions) != 3 {
		t.Fatalf("Model options expected 3 got: %d", len(testOptions))
	}
	names := []string{"type", "time", "stopioe"}
	values := []string{"7275", "2", ""}
	for i, opt := range testOptions {
		if opt.Name != names[i] {
			t.Errorf("Option %d name expected %s got: %s", i, names[i], opt.Name)
		}
		if opt.EqualOpt != values[i] {
			t.Errorf("Option %d value expected %s got: %s", i, values[i], opt.EqualOpt)
		}
	}
}

func TestParseLineComma(t *testing.T) {
	cleanUpConfig()
	registerAll()

	line := optionLine{line: "testDevice 80 single, second   third,fourth ,fifth"}
	err := line.parseLine()
	if err != nil {
		t.Errorf("ParseLine failed to parse model: %v", err)
	}
	if len(testOptions) != 2 {
		t.Fatalf("Model options expected 2 got: %d", len(testOptions))
	}
	if testOptions[0].Name != "single" || len(testOptions[0].Value) != 1 {
		t.Fatalf("First option not correct: %v", testOptions[0])
	}
	if *testOptions[0].Value[0] != "second" {
		t.Errorf("First option value expected second got: %s", *testOptions[0].Value[0])
	}
	if testOptions[1].Name != "third" || len(testOptions[1].Value) != 2 {
		t.Fatalf("Second option not correct: %v", testOptions[1])
	}
	if *testOptions[1].Value[1] != "fifth" {
		t.Errorf("Second option value expected fifth got: %s", *testOptions[1].Value[1])
	}
}

func TestParseLineQuote(t *testing.T) {
	cleanUpConfig()
	registerAll()

	line := optionLine{line: `testDevice 80 paramx="option,third fourth" ,comma`}
	err := line.parseLine()
	if err != nil {
		t.Errorf("ParseLine failed to parse model: %v", err)
	}
	if len(testOptions) != 1 {
		t.Fatalf("Model options expected 1 got: %d", len(testOptions))
	}
	if testOptions[0].EqualOpt != "option,third fourth" {
		t.Errorf("Quoted value not correct got: %s", testOptions[0].EqualOpt)
	}
	if len(testOptions[0].Value) != 1 || *testOptions[0].Value[0] != "comma" {
		t.Errorf("Comma value not correct got: %v", testOptions[0].Value)
	}

	line = optionLine{line: `testDevice 80 file="say ""hi"""`}
	err = line.parseLine()
	if err != nil {
		t.Errorf("ParseLine failed to parse model: %v", err)
	}
	if testOptions[0].EqualOpt != `say "hi"` {
		t.Errorf("Quoted value not correct got: %s", testOptions[0].EqualOpt)
	}

	line = optionLine{line: `testDevice 80 file="unterminated`}
	err = line.parseLine()
	if err == nil {
		t.Errorf("ParseLine accepted unterminated quote")
	}
}

func TestParseLineOptions(t *testing.T) {
	cleanUpConfig()
	registerAll()

	line := optionLine{line: "testOptions 80 cmd data"}
	err := line.parseLine()
	if err != nil {
		t.Errorf("ParseLine failed to parse options: %v", err)
	}
	if testType != "options" || testValue != "80" || testDevNum != 0x80 {
		t.Errorf("Options not correct type %s value %s dev %x", testType, testValue, testDevNum)
	}
	if len(testOptions) != 2 {
		t.Errorf("Options expected 2 got: %d", len(testOptions))
	}
}

func TestLoadConfig(t *testing.T) {
	cleanUpConfig()
	registerAll()

	cfg := `# Test configuration
testDevice 80 type=7270

testDevice 0A0 type=7275
testSwitch
`
	err := LoadConfig(strings.NewReader(cfg))
	if err != nil {
		t.Errorf("LoadConfig failed: %v", err)
	}
	if len(Devices) != 2 || Devices[0] != 0x80 || Devices[1] != 0xa0 {
		t.Errorf("Devices not correct: %v", Devices)
	}

	err = LoadConfig(strings.NewReader("testDevice 80\nunknown 10\n"))
	if err == nil {
		t.Errorf("LoadConfig accepted unknown model")
	} else if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("LoadConfig error missing line number: %v", err)
	}
}
