/*
 * Sigma DP - Disk image commands
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
	"fmt"
	"os"

	"github.com/spf13/cobra"

	modeldp "github.com/rcornwell/sigmadp/emu/modelDP"
)

var infoCmd = &cobra.Command{
	Use:                   "info FILE",
	Short:                 "Show image size and matching drive types",
	Args:                  cobra.ExactArgs(1),
	DisableFlagsInUseLine: true,
	RunE: func(_ *cobra.Command, args []string) error {
		return imageInfo(os.Stdout, args[0])
	},
}

var createCmd = &cobra.Command{
	Use:   "create FILE",
	Short: "Create a zero filled image for a drive type",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		g, err := lookupType(driveType)
		if err != nil {
			return err
		}
		if err := createImage(args[0], g); err != nil {
			return err
		}
		fmt.Printf("%s: created %s, %d words\n", args[0], g.Name, g.Capacity())
		return nil
	},
}

var dumpCmd = &cobra.Command{
	Use:   "dump FILE",
	Short: "Hex dump one sector",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		g, err := lookupType(driveType)
		if err != nil {
			return err
		}
		return dumpSector(os.Stdout, args[0], g, modeldp.MakeAddr(dumpCyl, dumpHead, dumpSec))
	},
}

var fillCmd = &cobra.Command{
	Use:   "fill FILE",
	Short: "Write each sector's address into its first words",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		g, err := lookupType(driveType)
		if err != nil {
			return err
		}
		n, err := fillImage(args[0], g, cylLimit)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d sectors stamped\n", args[0], n)
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{createCmd, dumpCmd, fillCmd} {
		cmd.Flags().StringVarP(&driveType, "type", "t", "", "Drive type, 7242 7261 7271 7276 7266 3282 3283 3288")
	}
	dumpCmd.Flags().IntVar(&dumpCyl, "cyl", 0, "Cylinder")
	dumpCmd.Flags().IntVar(&dumpHead, "head", 0, "Head")
	dumpCmd.Flags().IntVar(&dumpSec, "sector", 0, "Sector")
	fillCmd.Flags().IntVar(&cylLimit, "cyls", 0, "Cylinders to fill, 0 for all")
	rootCmd.AddCommand(infoCmd, createCmd, dumpCmd, fillCmd)
}
