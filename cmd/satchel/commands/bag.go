package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satchelhq/satchel/model"
)

// BagCmd groups the bag subcommands
var BagCmd = &cobra.Command{
	Use:   "bag",
	Short: "Manage bags",
	Long: `Manage bags: named containers of tiddlers with their own access policy.

Examples:
  satchel bag put drafts --desc "work in progress" --write cdent
  satchel bag get drafts
  satchel bag tiddlers drafts
  satchel bag rm drafts`,
}

var bagGetCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Show a bag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, client, err := openStore()
		if err != nil {
			return err
		}
		defer client.Close()

		bag, err := s.GetBag(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return render(bag)
	},
}

var (
	bagDescFlag   string
	bagPolicyFlag policyFlags
)

var bagPutCmd = &cobra.Command{
	Use:   "put <name>",
	Short: "Create or update a bag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, client, err := openStore()
		if err != nil {
			return err
		}
		defer client.Close()

		bag := model.NewBag(args[0])
		bag.Desc = bagDescFlag
		bag.Policy = bagPolicyFlag.policy()
		return s.PutBag(cmd.Context(), bag)
	},
}

var bagRmCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "Delete a bag and every tiddler it owns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, client, err := openStore()
		if err != nil {
			return err
		}
		defer client.Close()

		return s.DeleteBag(cmd.Context(), args[0])
	},
}

var bagLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List bags",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, client, err := openStore()
		if err != nil {
			return err
		}
		defer client.Close()

		bags, err := s.ListBags(cmd.Context())
		if err != nil {
			return err
		}
		for _, bag := range bags {
			fmt.Println(bag.Name)
		}
		return nil
	},
}

var bagTiddlersCmd = &cobra.Command{
	Use:   "tiddlers <name>",
	Short: "List the tiddlers owned by a bag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, client, err := openStore()
		if err != nil {
			return err
		}
		defer client.Close()

		tiddlers, err := s.ListBagTiddlers(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		for _, t := range tiddlers {
			fmt.Println(t.Title)
		}
		return nil
	},
}

// policyFlags collects the policy-related flags shared by bag put and
// recipe put.
type policyFlags struct {
	owner  string
	manage []string
	accept []string
	create []string
	read   []string
	write  []string
}

func (f *policyFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.owner, "owner", "", "Policy owner")
	cmd.Flags().StringSliceVar(&f.manage, "manage", nil, "Principals allowed to manage")
	cmd.Flags().StringSliceVar(&f.accept, "accept", nil, "Principals allowed to accept")
	cmd.Flags().StringSliceVar(&f.create, "create", nil, "Principals allowed to create")
	cmd.Flags().StringSliceVar(&f.read, "read", nil, "Principals allowed to read")
	cmd.Flags().StringSliceVar(&f.write, "write", nil, "Principals allowed to write")
}

func (f *policyFlags) policy() model.Policy {
	return model.Policy{
		Owner:  f.owner,
		Manage: f.manage,
		Accept: f.accept,
		Create: f.create,
		Read:   f.read,
		Write:  f.write,
	}
}

func init() {
	bagPutCmd.Flags().StringVar(&bagDescFlag, "desc", "", "Bag description")
	bagPolicyFlag.register(bagPutCmd)

	BagCmd.AddCommand(bagGetCmd)
	BagCmd.AddCommand(bagPutCmd)
	BagCmd.AddCommand(bagRmCmd)
	BagCmd.AddCommand(bagLsCmd)
	BagCmd.AddCommand(bagTiddlersCmd)
}
