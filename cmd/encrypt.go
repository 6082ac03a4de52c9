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
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cubigma/cubigma/stego"
)

// encryptCmd represents the encrypt command
var encryptCmd = &cobra.Command{
	Use:   "encrypt",
	Short: "Encrypt a message with Cubigma",
	Long: `Encrypt a message with the Cubigma cipher machine.  With --image (or
steganography enabled in the config file) the ciphertext is split into five
chunks and hidden inside the given PNG image instead of being printed.`,
	Run: func(cmd *cobra.Command, args []string) {
		encrypt(args)
	},
}

func init() {
	rootCmd.AddCommand(encryptCmd)
}

func encrypt(args []string) {
	m := initMachine(args)
	message := readMessage()

	if useSteganography() {
		if len(imageFileName) == 0 {
			cobra.CheckErr("steganography needs a PNG image; supply one with --image.")
		}
		chunks, err := m.EncryptToChunks(message)
		cobra.CheckErr(err)
		cobra.CheckErr(stego.EmbedFile(imageFileName, stegoOutputName(), chunks))
		return
	}

	ciphertext, err := m.Encrypt(message)
	cobra.CheckErr(err)
	writeResult(ciphertext)
	log.WithField("symbols", len([]rune(ciphertext))).Debug("message encrypted")
}

// stegoOutputName returns the output image path: the -o flag when given,
// otherwise the input image with a .data.png suffix.
func stegoOutputName() string {
	if len(outputFileName) > 0 && outputFileName != "-" {
		return outputFileName
	}
	ext := filepath.Ext(imageFileName)
	return strings.TrimSuffix(imageFileName, ext) + ".data.png"
}
