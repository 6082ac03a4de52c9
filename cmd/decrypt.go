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
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cubigma/cubigma/stego"
)

// decryptCmd represents the decrypt command
var decryptCmd = &cobra.Command{
	Use:   "decrypt",
	Short: "Decrypt a message with Cubigma",
	Long: `Decrypt a message with the Cubigma cipher machine.  With --image the five
ciphertext chunks are recovered from the given PNG image first.`,
	Run: func(cmd *cobra.Command, args []string) {
		decrypt(args)
	},
}

func init() {
	rootCmd.AddCommand(decryptCmd)
}

func decrypt(args []string) {
	m := initMachine(args)

	if useSteganography() {
		if len(imageFileName) == 0 {
			cobra.CheckErr("steganography needs a PNG image; supply one with --image.")
		}
		chunks, err := stego.ExtractFile(imageFileName)
		cobra.CheckErr(err)
		message, err := m.DecryptFromChunks(chunks)
		cobra.CheckErr(err)
		writeResult(message)
		return
	}

	message, err := m.Decrypt(readMessage())
	cobra.CheckErr(err)
	writeResult(message)
	log.WithField("symbols", len([]rune(message))).Debug("message decrypted")
}
