package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/interview-coach/internal/metrics"
	"github.com/spigell/interview-coach/internal/types"
)

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Draft practice interview questions for a resume and job description",
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

		resume, err := readDocument(cmd.Flag("resume").Value.String())
		if err != nil {
			return err
		}

		job, err := readDocument(cmd.Flag("job").Value.String())
		if err != nil {
			return err
		}

		c, err := buildCoach(cmd.Context(), config.LLM, log, metrics.Nop())
		if err != nil {
			return err
		}

		questions := c.GenerateQuestions(cmd.Context(), resume, job, interviewType)

		pretty, err := json.MarshalIndent(questions, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(pretty))
		return err
	},
}

func init() {
	rootCmd.AddCommand(questionsCmd)

	questionsCmd.Flags().StringP("resume", "r", "", "resume file (PDF or text)")
	questionsCmd.Flags().StringP("job", "J", "", "job description file (PDF or text)")
	questionsCmd.Flags().String("type", string(types.Technical), "interview type: HR, Technical or System Design")
	_ = questionsCmd.MarkFlagRequired("resume")
	_ = questionsCmd.MarkFlagRequired("job")
}
