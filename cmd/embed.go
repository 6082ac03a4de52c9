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
	"github.com/spf13/cobra"

	"github.com/cubigma/cubigma/stego"
)

// embedCmd represents the embed command
var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Encrypt a message and hide it inside a PNG image",
	Long:  `Encrypt a message into five Cubigma chunks and embed them in the PNG image given with --image.`,
	Run: func(cmd *cobra.Command, args []string) {
		embed(args)
	},
}

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Recover and decrypt a message hidden inside a PNG image",
	Long:  `Extract the five Cubigma chunks from the PNG image given with --image and decrypt the message.`,
	Run: func(cmd *cobra.Command, args []string) {
		extract(args)
	},
}

func init() {
	rootCmd.AddCommand(embedCmd)
	rootCmd.AddCommand(extractCmd)
}

func embed(args []string) {
	if len(imageFileName) == 0 {
		cobra.CheckErr("embed needs a PNG image; supply one with --image.")
	}
	m := initMachine(args)
	chunks, err := m.EncryptToChunks(readMessage())
	cobra.CheckErr(err)
	cobra.CheckErr(stego.EmbedFile(imageFileName, stegoOutputName(), chunks))
}

func extract(args []string) {
	if len(imageFileName) == 0 {
		cobra.CheckErr("extract needs a PNG image; supply one with --image.")
	}
	m := initMachine(args)
	chunks, err := stego.ExtractFile(imageFileName)
	cobra.CheckErr(err)
	message, err := m.DecryptFromChunks(chunks)
	cobra.CheckErr(err)
	writeResult(message)
}
