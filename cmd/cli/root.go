package main

import (
	"github.com/spf13/cobra"
)

var (
	modelName  string
	ollamaHost string
)

var rootCmd = &cobra.Command{
	Use:   "reviewctl",
	Short: "reviewctl is the command-line interface for the review agent.",
	Long:  `A CLI for reviewing local source files with the staged LLM pipeline, without going through the HTTP service.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	rootCmd.PersistentFlags().StringVarP(&modelName, "model", "m", "", "Model name to use for generation (overrides OLLAMA_MODEL)")
	rootCmd.PersistentFlags().StringVar(&ollamaHost, "host", "", "Base URL of the model server (overrides OLLAMA_HOST)")
}
