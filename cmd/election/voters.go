package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"election/internal/election/models"
)

func init() {
	rootCmd.AddCommand(registerCmd, statusCmd, deleteVoterCmd)
}

var registerCmd = &cobra.Command{
	Use:   "register <first-name> <last-name> <national-id>",
	Short: "Register a voter",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		added, err := current.service.RegisterVoter(cmd.Context(), models.Voter{
			FirstName:  args[0],
			LastName:   args[1],
			NationalID: args[2],
		})
		if err != nil {
			return err
		}
		if !added {
			fmt.Fprintln(cmd.OutOrStdout(), "voter already registered")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), "voter registered")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status <national-id>",
	Short: "Show a voter's status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := current.service.VoterStatus(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), status.String())
		return nil
	},
}

var deleteVoterCmd = &cobra.Command{
	Use:   "delete-voter <national-id>",
	Short: "Remove a voter and their status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := current.service.DeleteVoter(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "voter deleted")
		return nil
	},
}
