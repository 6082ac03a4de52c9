/*
Copyright © 2026 The Cubigma Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/cubigma/cubigma/machine"
)

var (
	cfgFile        string
	inputFileName  string
	outputFileName string
	imageFileName  string
	GitCommit      string = "not set"
	BuildDate      string = "not set"
	Version        string = "dev"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cubigma",
	Short: "A three dimensional Playfair cipher machine",
	Long: `cubigma encrypts/decrypts messages with a key-phrase-derived cipher that
generalizes the Playfair digraph cipher to rotating three dimensional symbol
cubes, optionally hiding the result inside a PNG image.`,
	Version: Version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.cubigma.yaml)")
	rootCmd.PersistentFlags().StringVarP(&inputFileName, "inputFile", "i", "-", "Name of the file holding the message to encrypt/decrypt.")
	rootCmd.PersistentFlags().StringVarP(&outputFileName, "outputFile", "o", "", "Name of the file receiving the encrypted/decrypted message.")
	rootCmd.PersistentFlags().StringVarP(&imageFileName, "image", "m", "", "PNG image to hide the message in (or recover it from).")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".cubigma" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".cubigma")
	}

	viper.SetDefault("cubeSize", 7)
	viper.SetDefault("totalRotors", 5)
	viper.SetDefault("activeRotorCount", 3)
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		log.WithField("config", viper.ConfigFileUsed()).Info("using config file")
	}
}

// initMachine obtains the key phrase and builds the cipher machine from the
// effective configuration.  The key phrase comes from either:
//  1. User input from the terminal (most secure)
//  2. The 'CUBIGMA_SECRET' environment variable (less secure)
//  3. Arguments from the entered command line (least secure - not recommended)
func initMachine(args []string) *machine.Machine {
	var secret string
	if len(args) == 0 {
		if viper.IsSet("CUBIGMA_SECRET") {
			secret = viper.GetString("CUBIGMA_SECRET")
		} else {
			if term.IsTerminal(int(os.Stdin.Fd())) {
				fmt.Fprintf(os.Stderr, "Enter the key phrase: ")
				byteSecret, err := term.ReadPassword(int(os.Stdin.Fd()))
				cobra.CheckErr(err)
				fmt.Fprintln(os.Stderr, "")
				secret = string(byteSecret)
			}
		}
	} else {
		secret = strings.Join(args, " ")
	}

	if len(secret) == 0 {
		cobra.CheckErr("You must supply a key phrase.")
	}

	pairs, err := machine.ParsePlugboardPairs(viper.GetStringSlice("plugboard"))
	cobra.CheckErr(err)
	size := viper.GetInt("cubeSize")
	cfg := machine.Config{
		KeyPhrase:        secret,
		Dims:             machine.Dims{X: size, Y: size, Z: size},
		TotalRotors:      viper.GetInt("totalRotors"),
		ActiveRotorCount: viper.GetInt("activeRotorCount"),
		ActiveRotors:     viper.GetIntSlice("activeRotors"),
		PlugboardPairs:   pairs,
		Salt:             viper.GetString("salt"),
	}
	m, err := machine.New(cfg)
	cobra.CheckErr(err)
	log.WithFields(log.Fields{
		"cubeSize":     size,
		"totalRotors":  cfg.TotalRotors,
		"activeRotors": cfg.ActiveRotorCount,
	}).Debug("machine prepared")
	return m
}

// useSteganography reports whether the chunked image pipeline should run
// instead of the plain string pipeline.
func useSteganography() bool {
	return viper.GetBool("steganography") || len(imageFileName) > 0
}

// readMessage returns the message to process, either from the input file or
// from stdin.
func readMessage() string {
	fin := os.Stdin
	if len(inputFileName) > 0 && inputFileName != "-" {
		var err error
		fin, err = os.Open(inputFileName)
		cobra.CheckErr(err)
		defer fin.Close()
	}
	raw, err := io.ReadAll(fin)
	cobra.CheckErr(err)
	return strings.TrimSuffix(string(raw), "\n")
}

// writeResult writes the processed message to the output file or stdout.
func writeResult(msg string) {
	fout := os.Stdout
	if len(outputFileName) > 0 && outputFileName != "-" {
		var err error
		fout, err = os.Create(outputFileName)
		cobra.CheckErr(err)
		defer fout.Close()
	}
	_, err := fmt.Fprintln(fout, msg)
	cobra.CheckErr(err)
}
