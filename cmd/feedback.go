package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/metrics"
	"github.com/spigell/interview-coach/internal/types"
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Score an interview transcript and print the feedback as JSON",
	RunE: func(cmd *cobra.Command, _ []string) error {
		log, err := newLogger()
		if err != nil {
			return err
		}

		config, err := getConfig(viper.GetViper())
		if err != nil {
			return err
		}

		interviewType, err := types.ParseInterviewType(cmd.Flag("type").Value.String())
		if err != nil {
			return err
		}

		transcript, err := readDocument(cmd.Flag("transcript").Value.String())
		if err != nil {
			return err
		}

		c, err := buildCoach(cmd.Context(), config.LLM, log, metrics.Nop())
		if err != nil {
			return err
		}

		feedback := c.GenerateFeedback(cmd.Context(), transcript, interviewType)
		if feedback.Fallback {
			log.Warn("printing fallback feedback", zap.String("reason", "language model unavailable or reply invalid"))
		}

		pretty, err := json.MarshalIndent(feedback, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(pretty))
		return err
	},
}

func init() {
	rootCmd.AddCommand(feedbackCmd)

	feedbackCmd.Flags().StringP("transcript", "t", "", "plain-text transcript file")
	feedbackCmd.Flags().String("type", string(types.HR), "interview type: HR, Technical or System Design")
	_ = feedbackCmd.MarkFlagRequired("transcript")
}
