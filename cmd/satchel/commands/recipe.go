package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/satchelhq/satchel/errors"
	"github.com/satchelhq/satchel/model"
)

// RecipeCmd groups the recipe subcommands
var RecipeCmd = &cobra.Command{
	Use:   "recipe",
	Short: "Manage recipes",
	Long: `Manage recipes: named, ordered compositions of (bag, filter) pairs.

Each --item takes "bag?filter"; the filter may be empty. Item order on
the command line is the order the recipe stores.

Examples:
  satchel recipe put cow --item "alpha?select=tag:systemConfig" --item "beta?"
  satchel recipe get cow
  satchel recipe rm cow`,
}

var recipeGetCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Show a recipe",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, client, err := openStore()
		if err != nil {
			return err
		}
		defer client.Close()

		recipe, err := s.GetRecipe(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return render(recipe)
	},
}

var (
	recipeDescFlag   string
	recipeItemsFlag  []string
	recipePolicyFlag policyFlags
)

var recipePutCmd = &cobra.Command{
	Use:   "put <name>",
	Short: "Create or update a recipe",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		items := make([]model.RecipeItem, 0, len(recipeItemsFlag))
		for _, raw := range recipeItemsFlag {
			bag, filter, found := strings.Cut(raw, "?")
			if !found {
				return errors.Newf("item %q must be of the form bag?filter", raw)
			}
			items = append(items, model.RecipeItem{Bag: bag, Filter: filter})
		}

		s, client, err := openStore()
		if err != nil {
			return err
		}
		defer client.Close()

		recipe := model.NewRecipe(args[0])
		recipe.Desc = recipeDescFlag
		recipe.Policy = recipePolicyFlag.policy()
		recipe.SetItems(items)
		return s.PutRecipe(cmd.Context(), recipe)
	},
}

var recipeRmCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "Delete a recipe",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, client, err := openStore()
		if err != nil {
			return err
		}
		defer client.Close()

		return s.DeleteRecipe(cmd.Context(), args[0])
	},
}

var recipeLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List recipes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, client, err := openStore()
		if err != nil {
			return err
		}
		defer client.Close()

		recipes, err := s.ListRecipes(cmd.Context())
		if err != nil {
			return err
		}
		for _, recipe := range recipes {
			fmt.Println(recipe.Name)
		}
		return nil
	},
}

func init() {
	recipePutCmd.Flags().StringVar(&recipeDescFlag, "desc", "", "Recipe description")
	recipePutCmd.Flags().StringArrayVar(&recipeItemsFlag, "item", nil, `Recipe item as "bag?filter" (repeatable, ordered)`)
	recipePolicyFlag.register(recipePutCmd)

	RecipeCmd.AddCommand(recipeGetCmd)
	RecipeCmd.AddCommand(recipePutCmd)
	RecipeCmd.AddCommand(recipeRmCmd)
	RecipeCmd.AddCommand(recipeLsCmd)
}
