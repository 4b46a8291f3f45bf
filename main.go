/*
 * Sigma DP - Main program
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

package main

import (
	"io"
	"log/slog"
	"os"

	getopt "github.com/pborman/getopt/v2"
	"github.com/pkg/profile"
	reader "github.com/rcornwell/sigmadp/command/reader"
	config "github.com/rcornwell/sigmadp/config/configparser"
	core "github.com/rcornwell/sigmadp/emu/core"
	master "github.com/rcornwell/sigmadp/emu/master"
	logger "github.com/rcornwell/sigmadp/util/logger"

	_ "github.com/rcornwell/sigmadp/config/debugconfig"
	_ "github.com/rcornwell/sigmadp/emu/modelDP"
	_ "github.com/rcornwell/sigmadp/util/debug"
)

func main() {
	optConfig := getopt.StringLong("config", 'c', "sigmadp.cfg", "Configuration file")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optDebug := getopt.BoolLong("debug", 'd', "Log debug to console")
	optScript := getopt.StringLong("script", 's', "", "Run console commands from file at startup")
	optProfile := getopt.StringLong("profile", 'p', "", "Write cpu or mem profile")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	switch *optProfile {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	default:
		slog.Error("profile must be cpu or mem: " + *optProfile)
		os.Exit(1)
	}

	var out io.Writer
	if *optLogFile != "" {
		file, err := os.Create(*optLogFile)
		if err != nil {
			slog.Error("unable to create log file: " + err.Error())
			os.Exit(1)
		}
		defer file.Close()
		out = file
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelDebug)
	Logger := slog.New(logger.NewHandler(out, &slog.HandlerOptions{Level: programLevel}, optDebug))
	slog.SetDefault(Logger)

	Logger.Info("Sigma DP Started")

	_, err := os.Stat(*optConfig)
	if os.IsNotExist(err) {
		Logger.Error("Configuration file " + *optConfig + " can't be found")
		os.Exit(1)
	}

	err = config.LoadConfigFile(*optConfig)
	if err != nil {
		Logger.Error(err.Error())
		os.Exit(1)
	}

	masterChannel := make(chan master.Packet)

	// Build the system and start the core routine.
	sys := core.NewCore(masterChannel)
	sys.Reset()
	sys.Start()

	msg := make(chan string, 1)
	go func() {
		if *optScript != "" {
			quit, err := reader.RunScript(sys, *optScript)
			if err != nil {
				Logger.Error(err.Error())
			}
			if quit || err != nil {
				msg <- ""
				return
			}
		}
		reader.ConsoleReader(sys)
		msg <- ""
	}()

	// Wait on shutdown.
	<-msg

	sys.Stop()
	Logger.Info("Simulation stopped.")
}
