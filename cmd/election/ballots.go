package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"election/internal/election/models"
)

func init() {
	rootCmd.AddCommand(issueCmd, countCmd, invalidateCmd, verifyCmd)
}

var issueCmd = &cobra.Command{
	Use:   "issue <national-id>",
	Short: "Issue a ballot to a registered voter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		number, ok, err := current.service.IssueBallot(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), models.BallotVoterNotRegistered.String())
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), number)
		return nil
	},
}

var countCmd = &cobra.Command{
	Use:   "count <national-id> <ballot-number> <candidate-id> [comment]",
	Short: "Cast and count a ballot",
	Args:  cobra.RangeArgs(3, 4),
	RunE: func(cmd *cobra.Command, args []string) error {
		ballot := models.Ballot{BallotNumber: args[1], ChosenCandidateID: &args[2]}
		if len(args) == 4 {
			ballot.VoterComments = &args[3]
		}
		status, err := current.service.CountBallot(cmd.Context(), ballot, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), status.String())
		return nil
	},
}

var invalidateCmd = &cobra.Command{
	Use:   "invalidate <ballot-number>",
	Short: "Invalidate a ballot that has not been cast",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ok, err := current.service.InvalidateBallot(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ok)
		return nil
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify <national-id> <ballot-number>",
	Short: "Check that a ballot is valid and belongs to the voter",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ok, err := current.service.VerifyBallot(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ok)
		return nil
	},
}
