package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	candidateCmd.AddCommand(candidateAddCmd, candidateListCmd)
	rootCmd.AddCommand(candidateCmd, winnerCmd, commentsCmd, fraudCmd)
}

var candidateCmd = &cobra.Command{
	Use:   "candidate",
	Short: "Manage candidates",
}

var candidateAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a candidate",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := current.service.AddCandidate(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", c.ID, c.Name)
		return nil
	},
}

var candidateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List candidates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		all, err := current.service.Candidates(cmd.Context())
		if err != nil {
			return err
		}
		for _, c := range all {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", c.ID, c.Name)
		}
		return nil
	},
}

var winnerCmd = &cobra.Command{
	Use:   "winner",
	Short: "Show the candidate with the most counted votes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := current.service.ComputeElectionWinner(cmd.Context())
		if err != nil {
			return err
		}
		if w == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "no votes counted")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", w.ID, w.Name)
		return nil
	},
}

var commentsCmd = &cobra.Command{
	Use:   "comments",
	Short: "List redacted ballot comments",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		comments, err := current.service.GetAllBallotComments(cmd.Context())
		if err != nil {
			return err
		}
		for _, c := range comments {
			fmt.Fprintln(cmd.OutOrStdout(), c)
		}
		return nil
	},
}

var fraudCmd = &cobra.Command{
	Use:   "fraud",
	Short: "List voters flagged for fraud",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := current.service.GetAllFraudulentVoters(cmd.Context())
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Fprintln(cmd.OutOrStdout(), n)
		}
		return nil
	},
}
