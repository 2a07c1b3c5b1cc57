package cli

import "github.com/spf13/cobra"

// NewRootCmd builds the vidscribe command tree.
func NewRootCmd(env *Env) *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "vidscribe",
		Short:         "Chunked speech-to-text for audio and video files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the YAML config file")

	root.AddCommand(newTranscribeCmd(env, &configPath))
	return root
}
