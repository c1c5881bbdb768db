package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satchelhq/satchel/model"
)

// UserCmd groups the user subcommands
var UserCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
	Long: `Manage users: accounts identified by usersign with roles and a
password credential.

Examples:
  satchel user put cdent --password foobar --role ADMIN
  satchel user get cdent
  satchel user rm cdent`,
}

var userGetCmd = &cobra.Command{
	Use:   "get <usersign>",
	Short: "Show a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, client, err := openStore()
		if err != nil {
			return err
		}
		defer client.Close()

		user, err := s.GetUser(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		// never print the credential hash
		return render(struct {
			Name  string   `json:"name" yaml:"name"`
			Note  string   `json:"note" yaml:"note"`
			Roles []string `json:"roles" yaml:"roles"`
		}{user.Name, user.Note, user.Roles})
	},
}

var (
	userPasswordFlag string
	userNoteFlag     string
	userRolesFlag    []string
)

var userPutCmd = &cobra.Command{
	Use:   "put <usersign>",
	Short: "Create or update a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user := model.NewUser(args[0])
		user.Note = userNoteFlag
		user.Roles = userRolesFlag
		if userPasswordFlag != "" {
			if err := user.SetPassword(userPasswordFlag); err != nil {
				return err
			}
		}

		s, client, err := openStore()
		if err != nil {
			return err
		}
		defer client.Close()

		return s.PutUser(cmd.Context(), user)
	},
}

var userRmCmd = &cobra.Command{
	Use:   "rm <usersign>",
	Short: "Delete a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, client, err := openStore()
		if err != nil {
			return err
		}
		defer client.Close()

		return s.DeleteUser(cmd.Context(), args[0])
	},
}

var userLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List users",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, client, err := openStore()
		if err != nil {
			return err
		}
		defer client.Close()

		users, err := s.ListUsers(cmd.Context())
		if err != nil {
			return err
		}
		for _, user := range users {
			fmt.Println(user.Name)
		}
		return nil
	},
}

func init() {
	userPutCmd.Flags().StringVar(&userPasswordFlag, "password", "", "Password to hash and store")
	userPutCmd.Flags().StringVar(&userNoteFlag, "note", "", "Free-form note")
	userPutCmd.Flags().StringSliceVar(&userRolesFlag, "role", nil, "Role (repeatable)")

	UserCmd.AddCommand(userGetCmd)
	UserCmd.AddCommand(userPutCmd)
	UserCmd.AddCommand(userRmCmd)
	UserCmd.AddCommand(userLsCmd)
}
